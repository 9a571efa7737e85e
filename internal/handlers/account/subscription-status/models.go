// internal/handlers/account/subscription-status/models.go
package subscriptionstatus

import "time"

type Input struct {
	Email string `json:"email"`
}

// Output is the public subscription-status body.
type Output struct {
	Success          bool       `json:"success"`
	Subscribed       bool       `json:"subscribed"`
	SubscriptionDate *time.Time `json:"subscription_date"`
	PremiumTier      string     `json:"premium_tier,omitempty"`
}
