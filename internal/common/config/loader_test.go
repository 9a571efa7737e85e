// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
app:
  name: healing-guide-api
  port: 5000
server:
  trusted_proxies: ["10.0.0.0/8"]
database:
  postgres:
    host: localhost
    database: healing_guide
  redis:
    address: localhost:6379
`

func writeConfig(t *testing.T, body string) string {
	t.Setenv("APP_ENVIRONMENT", "development")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))

	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.App.Port)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.Server.TrustedProxies)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "library", cfg.Database.Elasticsearch.LibraryIndex)
}

func TestLoadFromFile_PortFromEnvironment(t *testing.T) {
	tests := []struct {
		name      string
		port      string
		expect    int
		expectErr string
	}{
		{name: "numeric", port: "8080", expect: 8080},
		{name: "not a number", port: "80a", expectErr: `PORT must be a number, got "80a"`},
		{name: "out of range", port: "70000", expectErr: "app.port must be between 1 and 65535"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)

			cfg, err := LoadFromFile(writeConfig(t, minimalConfig))

			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, cfg.App.Port)
		})
	}
}

func TestLoadFromFile_MissingRequired(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("POSTGRES_HOST", "")

	_, err := LoadFromFile(writeConfig(t, "app:\n  port: 5000\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.postgres.host is required")
}
