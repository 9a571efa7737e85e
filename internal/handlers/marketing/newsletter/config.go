// internal/handlers/marketing/newsletter/config.go
package newsletter

import "time"

type Config struct {
	Timeout time.Duration
	// SideEffectTimeout bounds each CRM, event and email call.
	SideEffectTimeout time.Duration
	DefaultSource     string
	DownloadPath      string
	// PublicURL prefixes links in outgoing email.
	PublicURL string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           15 * time.Second,
		SideEffectTimeout: 5 * time.Second,
		DefaultSource:     "unknown",
		DownloadPath:      "/api/lead-magnet/download",
	}
}
