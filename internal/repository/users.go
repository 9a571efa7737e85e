// internal/repository/users.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"healing-guide/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates the user or fills in the provided fields. Empty name,
// nil age and empty constitution leave the stored values untouched.
func (r *UserRepository) Upsert(ctx context.Context, email, name string, age *int, constitution string) (*models.UserProfile, error) {
	query := `
		INSERT INTO users (email, name, age, constitution)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, users.name),
			age = COALESCE(EXCLUDED.age, users.age),
			constitution = COALESCE(EXCLUDED.constitution, users.constitution),
			updated_at = NOW()
		RETURNING id, email, COALESCE(name, ''), age, COALESCE(constitution, ''), created_at, updated_at
	`

	var (
		u      models.UserProfile
		ageCol sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, email, nullString(name), nullInt(age), nullString(constitution)).
		Scan(&u.ID, &u.Email, &u.Name, &ageCol, &u.Constitution, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	if ageCol.Valid {
		a := int(ageCol.Int64)
		u.Age = &a
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	query := `
		SELECT id, email, COALESCE(name, ''), age, COALESCE(constitution, ''), created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var (
		u      models.UserProfile
		ageCol sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&u.ID, &u.Email, &u.Name, &ageCol, &u.Constitution, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if ageCol.Valid {
		a := int(ageCol.Int64)
		u.Age = &a
	}
	return &u, nil
}

// GetAge returns nil when the user or their age is unknown.
func (r *UserRepository) GetAge(ctx context.Context, email string) (*int, error) {
	var age sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT age FROM users WHERE email = $1`, email).Scan(&age)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user age: %w", err)
	}
	if !age.Valid {
		return nil, nil
	}
	a := int(age.Int64)
	return &a, nil
}
