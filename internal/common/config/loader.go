// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<env>.yaml and applies
// environment overrides. The environment comes from APP_ENVIRONMENT, then
// FLASK_ENV, then defaults to development.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := resolveEnvironment()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	cfg, err := finalize(v)
	if err != nil {
		return nil, err
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := finalize(v)
	if err != nil {
		return nil, err
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = resolveEnvironment()
	}
	return cfg, nil
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := overrideFromEnv(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func resolveEnvironment() string {
	if env := os.Getenv("APP_ENVIRONMENT"); env != "" {
		return env
	}
	if env := os.Getenv("FLASK_ENV"); env != "" {
		return env
	}
	return "development"
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory to the go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideFromEnv applies the well-known deployment variables. Vendor keys
// and PORT always win over file values; the rest only fill empty fields.
func overrideFromEnv(cfg *Config) error {
	setFromEnv(&cfg.APIs.OpenAI.APIKey, "OPENAI_API_KEY", true)
	setFromEnv(&cfg.APIs.ElevenLabs.APIKey, "ELEVENLABS_API_KEY", true)
	setFromEnv(&cfg.APIs.ElevenLabs.VoiceID, "DR_HELEN_VOICE_ID", true)

	if val := os.Getenv("APP_ENVIRONMENT"); val != "" {
		cfg.App.Environment = val
	} else if val := os.Getenv("FLASK_ENV"); val != "" {
		cfg.App.Environment = val
	}
	if val := os.Getenv("PORT"); val != "" {
		port, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("PORT must be a number, got %q", val)
		}
		cfg.App.Port = port
	}

	setFromEnv(&cfg.Database.Postgres.Host, "POSTGRES_HOST", false)
	setFromEnv(&cfg.Database.Postgres.Database, "POSTGRES_DB", false)
	setFromEnv(&cfg.Database.Postgres.User, "POSTGRES_USER", false)
	setFromEnv(&cfg.Database.Postgres.Password, "POSTGRES_PASSWORD", false)
	setFromEnv(&cfg.Database.Redis.Address, "REDIS_ADDRESS", false)
	setFromEnv(&cfg.Database.Redis.Password, "REDIS_PASSWORD", false)
	setFromEnv(&cfg.Database.Elasticsearch.URL, "ELASTICSEARCH_URL", false)

	setFromEnv(&cfg.Auth.Keycloak.URL, "KEYCLOAK_URL", false)
	setFromEnv(&cfg.Auth.Keycloak.Realm, "KEYCLOAK_REALM", false)
	setFromEnv(&cfg.Auth.Keycloak.ClientID, "KEYCLOAK_CLIENT_ID", false)
	setFromEnv(&cfg.Auth.Keycloak.ClientSecret, "KEYCLOAK_CLIENT_SECRET", false)
	setFromEnv(&cfg.Auth.DownloadTokens.Secret, "DOWNLOAD_TOKEN_SECRET", false)

	setFromEnv(&cfg.Integrations.Zoho.APIKey, "ZOHO_CRM_API_KEY", false)
	setFromEnv(&cfg.Integrations.Zoho.AuthToken, "ZOHO_CRM_OAUTH_TOKEN", false)
	setFromEnv(&cfg.Integrations.AWS.Region, "AWS_REGION", false)
	setFromEnv(&cfg.Integrations.Stripe.SecretKey, "STRIPE_SECRET_KEY", false)
	setFromEnv(&cfg.Integrations.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET", false)
	return nil
}

func setFromEnv(dst *string, key string, force bool) {
	if *dst != "" && !force {
		return
	}
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "healing-guide-api"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.App.Port == 0 {
		cfg.App.Port = 5000
	}
	if cfg.App.StaticDir == "" {
		cfg.App.StaticDir = "static"
	}

	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 25 << 20
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if cfg.Database.Elasticsearch.LibraryIndex == "" {
		cfg.Database.Elasticsearch.LibraryIndex = "library"
	}

	if cfg.Auth.Keycloak.AdminRole == "" {
		cfg.Auth.Keycloak.AdminRole = "healing-guide-admin"
	}
	if cfg.Auth.DownloadTokens.Issuer == "" {
		cfg.Auth.DownloadTokens.Issuer = cfg.App.Name
	}
	if cfg.Auth.DownloadTokens.TTL == 0 {
		cfg.Auth.DownloadTokens.TTL = 72
	}

	if cfg.Integrations.AWS.Region == "" {
		cfg.Integrations.AWS.Region = "us-east-1"
	}

	if cfg.APIs.OpenAI.BaseURL == "" {
		cfg.APIs.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.APIs.OpenAI.Model == "" {
		cfg.APIs.OpenAI.Model = "gpt-4"
	}
	if cfg.APIs.OpenAI.MaxTokens == 0 {
		cfg.APIs.OpenAI.MaxTokens = 1500
	}
	if cfg.APIs.OpenAI.Temperature == 0 {
		cfg.APIs.OpenAI.Temperature = 0.7
	}
	if cfg.APIs.OpenAI.Timeout == 0 {
		cfg.APIs.OpenAI.Timeout = 30000
	}
	if cfg.APIs.ElevenLabs.BaseURL == "" {
		cfg.APIs.ElevenLabs.BaseURL = "https://api.elevenlabs.io/v1"
	}
	if cfg.APIs.ElevenLabs.ModelID == "" {
		cfg.APIs.ElevenLabs.ModelID = "eleven_multilingual_v2"
	}
	if cfg.APIs.ElevenLabs.Timeout == 0 {
		cfg.APIs.ElevenLabs.Timeout = 60000
	}

	if cfg.LeadMagnet.PDFPath == "" {
		cfg.LeadMagnet.PDFPath = filepath.Join(cfg.App.StaticDir, "The_13_Ayurvedic_Body_Types.pdf")
	}
	if cfg.LeadMagnet.DownloadName == "" {
		cfg.LeadMagnet.DownloadName = "The_13_Ayurvedic_Body_Types.pdf"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1
	}

	if cfg.Handlers == nil {
		cfg.Handlers = map[string]HandlerConfig{}
	}
	for name, h := range cfg.Handlers {
		cfg.Handlers[name] = withHandlerDefaults(h)
	}
}

func withHandlerDefaults(h HandlerConfig) HandlerConfig {
	if h.Timeout == 0 {
		h.Timeout = 30000
	}
	if h.MaxRetries == 0 {
		h.MaxRetries = 2
	}
	if h.CacheTTL == 0 {
		h.CacheTTL = 300
	}
	return h
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.App.Port < 1 || cfg.App.Port > 65535 {
		return fmt.Errorf("app.port must be between 1 and 65535, got %d", cfg.App.Port)
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.App.IsProduction() && cfg.Auth.DownloadTokens.Secret == "" {
		return fmt.Errorf("auth.download_tokens.secret is required in production")
	}

	for name, tier := range cfg.Integrations.Stripe.Tiers {
		if tier.PriceID == "" {
			return fmt.Errorf("integrations.stripe.tiers.%s.price_id is required", name)
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetHandlerConfig retrieves handler-specific configuration with fallback to defaults
func GetHandlerConfig(cfg *Config, name string) HandlerConfig {
	if h, exists := cfg.Handlers[name]; exists {
		return h
	}
	return withHandlerDefaults(HandlerConfig{
		Enabled:             true,
		RequireSubscription: true,
	})
}

// IsHandlerEnabled checks if an endpoint group is enabled
func IsHandlerEnabled(cfg *Config, name string) bool {
	if h, exists := cfg.Handlers[name]; exists {
		return h.Enabled
	}
	return true
}
