// internal/handlers/account/user-profile/config.go
package userprofile

import "time"

type Config struct {
	Timeout time.Duration
	MinAge  int
	MaxAge  int
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		MinAge:  1,
		MaxAge:  120,
	}
}
