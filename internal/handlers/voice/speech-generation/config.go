// internal/handlers/voice/speech-generation/config.go
package speechgeneration

import "time"

type Config struct {
	DefaultVoiceID string
	ModelID        string
	Timeout        time.Duration
	MaxTextLength  int
}

func LoadConfig() *Config {
	return &Config{
		ModelID:       "eleven_multilingual_v2",
		Timeout:       60 * time.Second,
		MaxTextLength: 5000,
	}
}
