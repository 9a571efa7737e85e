// internal/handlers/marketing/lead-magnet/config.go
package leadmagnet

import "time"

type Config struct {
	Timeout      time.Duration
	PDFPath      string
	DownloadName string
	RequireToken bool
	// DailyCounterTTL expires the per-day and per-month counters.
	DailyCounterTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         10 * time.Second,
		PDFPath:         "static/The_13_Ayurvedic_Body_Types.pdf",
		DownloadName:    "The_13_Ayurvedic_Body_Types.pdf",
		DailyCounterTTL: 400 * 24 * time.Hour,
	}
}
