// internal/repository/repository_test.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healing-guide/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var userColumns = []string{"id", "email", "name", "age", "constitution", "created_at", "updated_at"}

// ==========================
// Users
// ==========================

func TestUserRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()
	age := 42

	mock.ExpectQuery(`INSERT INTO users \(email, name, age, constitution\)`).
		WithArgs("jane@example.com", sql.NullString{String: "Jane", Valid: true}, sql.NullInt64{Int64: 42, Valid: true}, sql.NullString{}).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(7, "jane@example.com", "Jane", 42, "", now, now))

	u, err := repo.Upsert(context.Background(), "jane@example.com", "Jane", &age, "")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	require.NotNil(t, u.Age)
	assert.Equal(t, 42, *u.Age)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(mock sqlmock.Sqlmock)
		expectedErr error
		validate    func(t *testing.T, u *models.UserProfile)
	}{
		{
			name: "found without age",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, email`).
					WithArgs("a@b.co").
					WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "a@b.co", "", nil, "vata", time.Now(), time.Now()))
			},
			validate: func(t *testing.T, u *models.UserProfile) {
				assert.Nil(t, u.Age)
				assert.Equal(t, "vata", u.Constitution)
			},
		},
		{
			name: "missing user",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, email`).WithArgs("a@b.co").WillReturnError(sql.ErrNoRows)
			},
			expectedErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setup(mock)

			u, err := NewUserRepository(db).GetByEmail(context.Background(), "a@b.co")
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
				tt.validate(t, u)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetAge(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT age FROM users WHERE email = \$1`).WithArgs("x@y.io").WillReturnError(sql.ErrNoRows)
	age, err := repo.GetAge(context.Background(), "x@y.io")
	require.NoError(t, err)
	assert.Nil(t, age)

	mock.ExpectQuery(`SELECT age FROM users WHERE email = \$1`).WithArgs("x@y.io").
		WillReturnRows(sqlmock.NewRows([]string{"age"}).AddRow(55))
	age, err = repo.GetAge(context.Background(), "x@y.io")
	require.NoError(t, err)
	require.NotNil(t, age)
	assert.Equal(t, 55, *age)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Assessments
// ==========================

func TestAssessmentRepository_CreateAndGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssessmentRepository(db)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	a := &models.Assessment{
		ID:    "2b1f3c1e-0000-4000-8000-000000000001",
		Email: "a@b.co",
		Constitution: models.ConstitutionResult{
			Primary:      models.DoshaPitta,
			Scores:       models.DoshaScores{Vata: 3, Pitta: 12, Kapha: 3},
			Constitution: "pitta",
		},
		Answers:         []models.AssessmentAnswer{{QuestionID: 1, OptionIndex: 1}},
		Recommendations: models.Recommendations{Diet: []string{"Cooling foods"}},
	}

	mock.ExpectQuery(`INSERT INTO assessments`).
		WithArgs(a.ID, sql.NullInt64{}, sql.NullString{String: "a@b.co", Valid: true}, "pitta", "pitta", sql.NullString{},
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	require.NoError(t, repo.Create(context.Background(), a))
	assert.Equal(t, created, a.CreatedAt)

	scores, _ := json.Marshal(a.Constitution.Scores)
	answers, _ := json.Marshal(a.Answers)
	recs, _ := json.Marshal(a.Recommendations)
	mock.ExpectQuery(`SELECT id, user_id, .* FROM assessments WHERE id = \$1`).
		WithArgs(a.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "email", "constitution", "primary_dosha", "secondary_dosha", "scores", "answers", "recommendations", "created_at"}).
			AddRow(a.ID, nil, "a@b.co", "pitta", "pitta", "", scores, answers, recs, created))

	got, err := repo.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DoshaPitta, got.Constitution.Primary)
	assert.Equal(t, 12, got.Constitution.Scores.Pitta)
	assert.Equal(t, []string{"Cooling foods"}, got.Recommendations.Diet)
	assert.Nil(t, got.UserID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepository_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM assessments WHERE id = \$1`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := NewAssessmentRepository(db).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ==========================
// Newsletter
// ==========================

func TestNewsletterRepository_Subscribe(t *testing.T) {
	tests := []struct {
		name     string
		inserted bool
	}{
		{name: "new subscriber", inserted: true},
		{name: "reactivated subscriber", inserted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery(`INSERT INTO newsletter_subscriptions`).
				WithArgs("a@b.co", models.LeadMagnetSource, sql.NullString{}, sql.NullString{}).
				WillReturnRows(sqlmock.NewRows([]string{"id", "subscribed_at", "inserted"}).AddRow(3, time.Now(), tt.inserted))

			sub := &models.NewsletterSubscription{Email: "a@b.co", Source: models.LeadMagnetSource}
			created, err := NewNewsletterRepository(db).Subscribe(context.Background(), sub)
			require.NoError(t, err)
			assert.Equal(t, tt.inserted, created)
			assert.True(t, sub.IsActive)
			assert.Equal(t, int64(3), sub.ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNewsletterRepository_Unsubscribe(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNewsletterRepository(db)

	mock.ExpectExec(`UPDATE newsletter_subscriptions`).WithArgs("a@b.co").WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Unsubscribe(context.Background(), "a@b.co"))

	mock.ExpectExec(`UPDATE newsletter_subscriptions`).WithArgs("nobody@b.co").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Unsubscribe(context.Background(), "nobody@b.co"), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsletterRepository_Stats(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT\s+COUNT\(\*\) FILTER`).
		WithArgs(models.LeadMagnetSource).
		WillReturnRows(sqlmock.NewRows([]string{"active", "unsubscribed", "lead"}).AddRow(8, 2, 3))

	stats, err := NewNewsletterRepository(db).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, stats.TotalActive)
	assert.Equal(t, 2, stats.TotalUnsubscribed)
	assert.Equal(t, 3, stats.LeadMagnetSubscribers)
	assert.Equal(t, "37.5%", stats.ConversionRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, "0.0%", ConversionRate(0, 0))
	assert.Equal(t, "100.0%", ConversionRate(4, 4))
	assert.Equal(t, "33.3%", ConversionRate(1, 3))
}

// ==========================
// Premium
// ==========================

func TestPremiumRepository_Lifecycle(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPremiumRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO premium_subscriptions`).
		WithArgs("a@b.co", "monthly", 29.0, "usd", sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.UpsertPending(ctx, &models.PremiumSubscription{Email: "a@b.co", Tier: "monthly", Price: 29, Currency: "usd"}))

	mock.ExpectExec(`UPDATE premium_subscriptions\s+SET status = 'active',\s+tier = COALESCE\(\$2, tier\)`).
		WithArgs("a@b.co",
			sql.NullString{String: "annual", Valid: true},
			sql.NullFloat64{Float64: 290, Valid: true},
			sql.NullString{String: "usd", Valid: true},
			sql.NullString{String: "cus_1", Valid: true},
			sql.NullString{String: "sub_1", Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Activate(ctx, &models.PremiumSubscription{
		Email: "a@b.co", Tier: "annual", Price: 290, Currency: "usd",
		StripeCustomerID: "cus_1", StripeSubscriptionID: "sub_1",
	}))

	mock.ExpectExec(`UPDATE premium_subscriptions`).
		WithArgs("a@b.co", sql.NullString{}, sql.NullFloat64{}, sql.NullString{}, sql.NullString{}, sql.NullString{String: "sub_2", Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Activate(ctx, &models.PremiumSubscription{Email: "a@b.co", StripeSubscriptionID: "sub_2"}), ErrNotFound)

	mock.ExpectQuery(`UPDATE premium_subscriptions\s+SET status = 'canceled'`).
		WithArgs("sub_1").
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("a@b.co"))
	email, err := repo.CancelBySubscriptionID(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", email)

	mock.ExpectQuery(`UPDATE premium_subscriptions\s+SET status = 'canceled'`).
		WithArgs("sub_unknown").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.CancelBySubscriptionID(ctx, "sub_unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPremiumRepository_UpsertPendingKeepsActiveTier(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`tier = CASE WHEN premium_subscriptions.status = 'active' THEN premium_subscriptions.tier ELSE EXCLUDED.tier END,\s+` +
		`price = CASE WHEN premium_subscriptions.status = 'active' THEN premium_subscriptions.price ELSE EXCLUDED.price END`).
		WithArgs("a@b.co", "inner_circle", 99.0, "usd", sql.NullString{String: "cus_1", Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewPremiumRepository(db).UpsertPending(context.Background(), &models.PremiumSubscription{
		Email: "a@b.co", Tier: "inner_circle", Price: 99, Currency: "usd", StripeCustomerID: "cus_1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPremiumRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	activated := time.Now().Add(-time.Hour)

	mock.ExpectQuery(`FROM premium_subscriptions\s+WHERE email = \$1`).
		WithArgs("a@b.co").
		WillReturnRows(sqlmock.NewRows([]string{"email", "tier", "price", "currency", "status", "cus", "sub", "activated_at", "canceled_at"}).
			AddRow("a@b.co", "annual", 290.0, "usd", "active", "cus_1", "sub_1", activated, nil))

	p, err := NewPremiumRepository(db).GetByEmail(context.Background(), "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, models.PremiumActive, p.Status)
	assert.Equal(t, "sub_1", p.StripeSubscriptionID)
	require.NotNil(t, p.ActivatedAt)
	assert.Nil(t, p.CanceledAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Library and downloads
// ==========================

func TestLibraryRepository_Search(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM library_items WHERE is_published = TRUE AND category = \$1 AND title ILIKE \$2 ESCAPE`).
		WithArgs("herbs", "%ashwa%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`FROM library_items.*LIMIT \$3 OFFSET \$4`).
		WithArgs("herbs", "%ashwa%", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "category", "content_type", "description", "url", "tags", "is_published", "created_at"}).
			AddRow("herb-ashwagandha", "Ashwagandha", "herbs", "article", "Adaptogen", "", "{vata,strength}", true, now))

	page, err := NewLibraryRepository(db).Search(context.Background(), LibraryQuery{Category: "herbs", Search: "ashwa", Page: 2, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 11, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, []string{"vata", "strength"}, page.Items[0].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLibraryRepository_Search_EscapesWildcardsAndCapsPage(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM library_items WHERE is_published = TRUE AND title ILIKE \$1`).
		WithArgs(`%100\% pure\_ghee\\%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM library_items.*LIMIT \$2 OFFSET \$3`).
		WithArgs(`%100\% pure\_ghee\\%`, 20, (MaxLibraryPage-1)*20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "category", "content_type", "description", "url", "tags", "is_published", "created_at"}))

	page, err := NewLibraryRepository(db).Search(context.Background(), LibraryQuery{
		Search: `100% pure_ghee\`,
		Page:   math.MaxInt64 / 10,
		Size:   20,
	})
	require.NoError(t, err)
	assert.Equal(t, MaxLibraryPage, page.Page)
	assert.Empty(t, page.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLibraryRepository_Search_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM library_items WHERE is_published = TRUE$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM library_items`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "category", "content_type", "description", "url", "tags", "is_published", "created_at"}))

	page, err := NewLibraryRepository(db).Search(context.Background(), LibraryQuery{Page: 1, Size: 20})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestDownloadRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDownloadRepository(db)

	mock.ExpectExec(`INSERT INTO lead_magnet_downloads`).
		WithArgs(sql.NullString{}, sql.NullString{String: "10.0.0.1", Valid: true}, sql.NullString{String: "curl/8", Valid: true}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Record(context.Background(), "", "10.0.0.1", "curl/8"))

	mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(DISTINCT email\)`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "unique"}).AddRow(5, 2))
	total, unique, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, 2, unique)

	mock.ExpectExec(`INSERT INTO lead_magnet_downloads`).WillReturnError(errors.New("connection reset"))
	assert.Error(t, repo.Record(context.Background(), "a@b.co", "", ""))

	assert.NoError(t, mock.ExpectationsWereMet())
}
