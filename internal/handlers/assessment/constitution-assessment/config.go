// internal/handlers/assessment/constitution-assessment/config.go
package constitutionassessment

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
