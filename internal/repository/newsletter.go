// internal/repository/newsletter.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"healing-guide/internal/models"
)

type NewsletterRepository struct {
	db *sql.DB
}

func NewNewsletterRepository(db *sql.DB) *NewsletterRepository {
	return &NewsletterRepository{db: db}
}

// Subscribe inserts a subscriber or reactivates an existing one with the
// new source. created is false when the email was already known.
func (r *NewsletterRepository) Subscribe(ctx context.Context, sub *models.NewsletterSubscription) (created bool, err error) {
	query := `
		INSERT INTO newsletter_subscriptions (email, source, first_name, last_name, is_active, subscribed_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
		ON CONFLICT (email) DO UPDATE SET
			is_active = TRUE,
			source = EXCLUDED.source,
			first_name = COALESCE(EXCLUDED.first_name, newsletter_subscriptions.first_name),
			last_name = COALESCE(EXCLUDED.last_name, newsletter_subscriptions.last_name),
			subscribed_at = NOW(),
			unsubscribed_at = NULL
		RETURNING id, subscribed_at, (xmax = 0) AS inserted
	`
	err = r.db.QueryRowContext(ctx, query, sub.Email, sub.Source, nullString(sub.FirstName), nullString(sub.LastName)).
		Scan(&sub.ID, &sub.SubscribedAt, &created)
	if err != nil {
		return false, fmt.Errorf("upsert subscription: %w", err)
	}
	sub.IsActive = true
	sub.UnsubscribedAt = nil
	return created, nil
}

// Unsubscribe deactivates email. ErrNotFound when it was never subscribed.
func (r *NewsletterRepository) Unsubscribe(ctx context.Context, email string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE newsletter_subscriptions
		SET is_active = FALSE, unsubscribed_at = NOW()
		WHERE email = $1
	`, email)
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unsubscribe rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveSince returns the subscription date of an active subscriber, or
// ErrNotFound.
func (r *NewsletterRepository) ActiveSince(ctx context.Context, email string) (time.Time, error) {
	var subscribedAt time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT subscribed_at FROM newsletter_subscriptions
		WHERE email = $1 AND is_active = TRUE
	`, email).Scan(&subscribedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("get subscription: %w", err)
	}
	return subscribedAt, nil
}

// Stats aggregates subscriber counts in one pass.
func (r *NewsletterRepository) Stats(ctx context.Context) (*models.NewsletterStats, error) {
	var s models.NewsletterStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE NOT is_active),
			COUNT(*) FILTER (WHERE is_active AND source = $1)
		FROM newsletter_subscriptions
	`, models.LeadMagnetSource).Scan(&s.TotalActive, &s.TotalUnsubscribed, &s.LeadMagnetSubscribers)
	if err != nil {
		return nil, fmt.Errorf("newsletter stats: %w", err)
	}
	s.ConversionRate = ConversionRate(s.LeadMagnetSubscribers, s.TotalActive)
	return &s, nil
}

// CountBySource counts active subscribers that came in through source.
func (r *NewsletterRepository) CountBySource(ctx context.Context, source string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM newsletter_subscriptions
		WHERE source = $1 AND is_active = TRUE
	`, source).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by source: %w", err)
	}
	return n, nil
}

// ConversionRate formats part/whole as a percentage with one decimal.
// A zero whole is treated as one.
func ConversionRate(part, whole int) string {
	if whole < 1 {
		whole = 1
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(whole)*100)
}
