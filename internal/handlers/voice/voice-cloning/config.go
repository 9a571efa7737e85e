// internal/handlers/voice/voice-cloning/config.go
package voicecloning

import "time"

type Config struct {
	DefaultVoiceID    string
	Timeout           time.Duration
	MaxSampleBytes    int64
	AllowedExtensions []string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           2 * time.Minute,
		MaxSampleBytes:    25 << 20,
		AllowedExtensions: []string{"wav", "mp3", "m4a", "flac"},
	}
}
