// internal/handlers/consultation/avatar/config.go
package avatar

type Config struct {
	MaxScriptLength int
}

func LoadConfig() *Config {
	return &Config{
		MaxScriptLength: 5000,
	}
}
