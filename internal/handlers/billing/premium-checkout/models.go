// internal/handlers/billing/premium-checkout/models.go
package premiumcheckout

import (
	"time"

	"healing-guide/internal/models"
)

type CheckoutInput struct {
	Email string `json:"email"`
	Tier  string `json:"tier"`
}

type CheckoutOutput struct {
	Success   bool   `json:"success"`
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

type WebhookOutput struct {
	Received bool   `json:"received"`
	Event    string `json:"event,omitempty"`
}

type SubscriptionOutput struct {
	Success     bool                 `json:"success"`
	Tier        string               `json:"tier"`
	Price       float64              `json:"price"`
	Currency    string               `json:"currency"`
	Status      models.PremiumStatus `json:"status"`
	ActivatedAt *time.Time           `json:"activated_at,omitempty"`
}
