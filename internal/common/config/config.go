// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig                `mapstructure:"app"`
	Server        ServerConfig             `mapstructure:"server"`
	Database      DatabaseConfig           `mapstructure:"database"`
	Handlers      map[string]HandlerConfig `mapstructure:"handlers"`
	Auth          AuthConfig               `mapstructure:"auth"`
	Integrations  IntegrationConfig        `mapstructure:"integrations"`
	APIs          APIsConfig               `mapstructure:"apis"`
	LeadMagnet    LeadMagnetConfig         `mapstructure:"lead_magnet"`
	Logging       LoggingConfig            `mapstructure:"logging"`
	Observability ObservabilityConfig      `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Port        int    `mapstructure:"port"`
	StaticDir   string `mapstructure:"static_dir"`
	// PublicURL prefixes links sent by email, e.g. https://yourhealingguide.com
	PublicURL string `mapstructure:"public_url"`
}

// IsProduction reports whether the service runs with production settings.
func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type ServerConfig struct {
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	MaxBodyBytes    int64    `mapstructure:"max_body_bytes"`
	// TrustedProxies are the CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	URL          string   `mapstructure:"url"`
	LibraryIndex string   `mapstructure:"library_index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

// Enabled reports whether any Elasticsearch endpoint is configured.
func (e ElasticsearchConfig) Enabled() bool {
	return e.GetURL() != ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HandlerConfig holds the settings shared by every endpoint group.
type HandlerConfig struct {
	Enabled             bool `mapstructure:"enabled"`
	Timeout             int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries          int  `mapstructure:"max_retries"` // upstream retries
	RateLimitPerMinute  int  `mapstructure:"rate_limit_per_minute"`
	RequireSubscription bool `mapstructure:"require_subscription"`
	CacheTTL            int  `mapstructure:"cache_ttl"` // seconds
}

// --- Specific Configuration Sections ---

// AuthConfig holds admin authentication and token signing settings.
type AuthConfig struct {
	Keycloak struct {
		URL          string `mapstructure:"url"`
		Realm        string `mapstructure:"realm"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		AdminRole    string `mapstructure:"admin_role"`
	} `mapstructure:"keycloak"`

	DownloadTokens struct {
		Secret string `mapstructure:"secret"`
		Issuer string `mapstructure:"issuer"`
		TTL    int    `mapstructure:"ttl"` // hours
	} `mapstructure:"download_tokens"`
}

// KeycloakEnabled reports whether admin routes can be authenticated.
func (a AuthConfig) KeycloakEnabled() bool {
	return a.Keycloak.URL != "" && a.Keycloak.Realm != "" && a.Keycloak.ClientID != ""
}

// StripeTier maps a plan name to its Stripe price.
type StripeTier struct {
	PriceID  string  `mapstructure:"price_id"`
	Price    float64 `mapstructure:"price"`
	Currency string  `mapstructure:"currency"`
	Interval string  `mapstructure:"interval"`
}

// IntegrationConfig holds settings for CRM, email, events and payments.
type IntegrationConfig struct {
	Zoho struct {
		APIKey    string `mapstructure:"api_key"`
		AuthToken string `mapstructure:"oauth_token"`
		BaseURL   string `mapstructure:"base_url"`
	} `mapstructure:"zoho"`

	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`

	Stripe struct {
		SecretKey     string                `mapstructure:"secret_key"`
		WebhookSecret string                `mapstructure:"webhook_secret"`
		SuccessURL    string                `mapstructure:"success_url"`
		CancelURL     string                `mapstructure:"cancel_url"`
		Tiers         map[string]StripeTier `mapstructure:"tiers"`
	} `mapstructure:"stripe"`
}

// APIsConfig holds settings for the AI and voice vendors.
type APIsConfig struct {
	OpenAI struct {
		BaseURL     string  `mapstructure:"base_url"`
		APIKey      string  `mapstructure:"api_key"`
		Model       string  `mapstructure:"model"`
		MaxTokens   int     `mapstructure:"max_tokens"`
		Temperature float64 `mapstructure:"temperature"`
		Timeout     int     `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"openai"`

	ElevenLabs struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		VoiceID string `mapstructure:"voice_id"`
		ModelID string `mapstructure:"model_id"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"elevenlabs"`
}

// LeadMagnetConfig locates the downloadable PDF.
type LeadMagnetConfig struct {
	PDFPath      string `mapstructure:"pdf_path"`
	DownloadName string `mapstructure:"download_name"`
	RequireToken bool   `mapstructure:"require_token"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ObservabilityConfig enables otel metrics and Jaeger tracing.
type ObservabilityConfig struct {
	ServiceName    string  `mapstructure:"service_name"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}
