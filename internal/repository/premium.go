// internal/repository/premium.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"healing-guide/internal/models"
)

type PremiumRepository struct {
	db *sql.DB
}

func NewPremiumRepository(db *sql.DB) *PremiumRepository {
	return &PremiumRepository{db: db}
}

// UpsertPending records a checkout in progress for email. An active row
// keeps its tier and price until a completed checkout replaces them.
func (r *PremiumRepository) UpsertPending(ctx context.Context, p *models.PremiumSubscription) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO premium_subscriptions (email, tier, price, currency, status, stripe_customer_id)
		VALUES ($1, $2, $3, $4, 'pending', $5)
		ON CONFLICT (email) DO UPDATE SET
			tier = CASE WHEN premium_subscriptions.status = 'active' THEN premium_subscriptions.tier ELSE EXCLUDED.tier END,
			price = CASE WHEN premium_subscriptions.status = 'active' THEN premium_subscriptions.price ELSE EXCLUDED.price END,
			currency = CASE WHEN premium_subscriptions.status = 'active' THEN premium_subscriptions.currency ELSE EXCLUDED.currency END,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			status = CASE WHEN premium_subscriptions.status = 'active' THEN 'active' ELSE 'pending' END,
			updated_at = NOW()
	`, p.Email, p.Tier, p.Price, p.Currency, nullString(p.StripeCustomerID))
	if err != nil {
		return fmt.Errorf("upsert premium subscription: %w", err)
	}
	return nil
}

// Activate marks the record for p.Email active after a completed checkout
// and applies the purchased tier. An empty tier leaves the stored one.
func (r *PremiumRepository) Activate(ctx context.Context, p *models.PremiumSubscription) error {
	var price sql.NullFloat64
	if p.Tier != "" {
		price = sql.NullFloat64{Float64: p.Price, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE premium_subscriptions
		SET status = 'active',
			tier = COALESCE($2, tier),
			price = COALESCE($3, price),
			currency = COALESCE($4, currency),
			stripe_customer_id = COALESCE($5, stripe_customer_id),
			stripe_subscription_id = $6,
			activated_at = NOW(),
			canceled_at = NULL,
			updated_at = NOW()
		WHERE email = $1
	`, p.Email, nullString(p.Tier), price, nullString(p.Currency),
		nullString(p.StripeCustomerID), nullString(p.StripeSubscriptionID))
	if err != nil {
		return fmt.Errorf("activate premium subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CancelBySubscriptionID marks the Stripe subscription canceled and
// returns the owning email.
func (r *PremiumRepository) CancelBySubscriptionID(ctx context.Context, subscriptionID string) (string, error) {
	var email string
	err := r.db.QueryRowContext(ctx, `
		UPDATE premium_subscriptions
		SET status = 'canceled', canceled_at = NOW(), updated_at = NOW()
		WHERE stripe_subscription_id = $1
		RETURNING email
	`, subscriptionID).Scan(&email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("cancel premium subscription: %w", err)
	}
	return email, nil
}

func (r *PremiumRepository) GetByEmail(ctx context.Context, email string) (*models.PremiumSubscription, error) {
	var (
		p                       models.PremiumSubscription
		status                  string
		customerID, subID       sql.NullString
		activatedAt, canceledAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT email, tier, price, currency, status, stripe_customer_id, stripe_subscription_id, activated_at, canceled_at
		FROM premium_subscriptions
		WHERE email = $1
	`, email).Scan(&p.Email, &p.Tier, &p.Price, &p.Currency, &status, &customerID, &subID, &activatedAt, &canceledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get premium subscription: %w", err)
	}
	p.Status = models.PremiumStatus(status)
	p.StripeCustomerID = customerID.String
	p.StripeSubscriptionID = subID.String
	if activatedAt.Valid {
		p.ActivatedAt = &activatedAt.Time
	}
	if canceledAt.Valid {
		p.CanceledAt = &canceledAt.Time
	}
	return &p, nil
}
