// internal/repository/assessments.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"healing-guide/internal/models"
)

type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

func (r *AssessmentRepository) Create(ctx context.Context, a *models.Assessment) error {
	scores, err := json.Marshal(a.Constitution.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	recs, err := json.Marshal(a.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	var userID sql.NullInt64
	if a.UserID != nil {
		userID = sql.NullInt64{Int64: *a.UserID, Valid: true}
	}

	query := `
		INSERT INTO assessments (id, user_id, email, constitution, primary_dosha, secondary_dosha, scores, answers, recommendations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err = r.db.QueryRowContext(ctx, query,
		a.ID,
		userID,
		nullString(a.Email),
		a.Constitution.Constitution,
		string(a.Constitution.Primary),
		nullString(string(a.Constitution.Secondary)),
		scores,
		answers,
		recs,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

const assessmentColumns = `id, user_id, COALESCE(email, ''), constitution, primary_dosha, COALESCE(secondary_dosha, ''), scores, answers, recommendations, created_at`

func (r *AssessmentRepository) Get(ctx context.Context, id string) (*models.Assessment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE id = $1`, id)
	return scanAssessment(row)
}

// LatestByEmail returns the most recent assessment for email.
func (r *AssessmentRepository) LatestByEmail(ctx context.Context, email string) (*models.Assessment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE email = $1 ORDER BY created_at DESC LIMIT 1`,
		email,
	)
	return scanAssessment(row)
}

func scanAssessment(row *sql.Row) (*models.Assessment, error) {
	var (
		a                     models.Assessment
		userID                sql.NullInt64
		primary, secondary    string
		scores, answers, recs []byte
	)
	err := row.Scan(&a.ID, &userID, &a.Email, &a.Constitution.Constitution, &primary, &secondary, &scores, &answers, &recs, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan assessment: %w", err)
	}
	if userID.Valid {
		a.UserID = &userID.Int64
	}
	a.Constitution.Primary = models.Dosha(primary)
	a.Constitution.Secondary = models.Dosha(secondary)

	if err := json.Unmarshal(scores, &a.Constitution.Scores); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal(recs, &a.Recommendations); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return &a, nil
}
