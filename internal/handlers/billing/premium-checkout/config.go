// internal/handlers/billing/premium-checkout/config.go
package premiumcheckout

import "time"

// Tier is a purchasable premium plan.
type Tier struct {
	PriceID  string
	Price    float64
	Currency string
	Interval string
}

type Config struct {
	Timeout         time.Duration
	WebhookSecret   string
	SuccessURL      string
	CancelURL       string
	MaxWebhookBytes int64
	Tiers           map[string]Tier
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		MaxWebhookBytes: 65536,
		Tiers:           map[string]Tier{},
	}
}
