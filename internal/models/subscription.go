// internal/models/subscription.go
package models

import "time"

const LeadMagnetSource = "lead_magnet_13_body_types"

type NewsletterSubscription struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Source         string     `json:"source"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	IsActive       bool       `json:"is_active"`
	SubscribedAt   time.Time  `json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
}

type PremiumStatus string

const (
	PremiumPending  PremiumStatus = "pending"
	PremiumActive   PremiumStatus = "active"
	PremiumCanceled PremiumStatus = "canceled"
)

// PremiumSubscription is the paid tier record.
type PremiumSubscription struct {
	Email                string        `json:"email"`
	Tier                 string        `json:"tier"`
	Price                float64       `json:"price"`
	Currency             string        `json:"currency"`
	Status               PremiumStatus `json:"status"`
	StripeCustomerID     string        `json:"-"`
	StripeSubscriptionID string        `json:"-"`
	ActivatedAt          *time.Time    `json:"activated_at,omitempty"`
	CanceledAt           *time.Time    `json:"canceled_at,omitempty"`
}

// SubscriptionStatus answers "may this email use gated features".
type SubscriptionStatus struct {
	Email            string     `json:"email"`
	Subscribed       bool       `json:"subscribed"`
	SubscriptionDate *time.Time `json:"subscription_date"`
	PremiumTier      string     `json:"premium_tier,omitempty"`
}

type NewsletterStats struct {
	TotalActive           int    `json:"total_active_subscribers"`
	TotalUnsubscribed     int    `json:"total_unsubscribed"`
	LeadMagnetSubscribers int    `json:"lead_magnet_subscribers"`
	ConversionRate        string `json:"conversion_rate"`
}
