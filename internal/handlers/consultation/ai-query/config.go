// internal/handlers/consultation/ai-query/config.go
package aiquery

import "time"

type Config struct {
	// Timeout bounds the whole request including model retries.
	Timeout             time.Duration
	ContextTimeout      time.Duration
	RequireSubscription bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:             90 * time.Second,
		ContextTimeout:      5 * time.Second,
		RequireSubscription: true,
	}
}
