// internal/handlers/content/library/config.go
package library

import "time"

type Config struct {
	Timeout     time.Duration
	Index       string
	DefaultSize int
	MaxSize     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     5 * time.Second,
		Index:       "library",
		DefaultSize: 20,
		MaxSize:     100,
	}
}
