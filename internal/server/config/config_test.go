package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/iudanet/itemsync/pkg/config"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.JWT.Secret = "0123456789abcdef"
	return cfg
}

func TestNewDefaultConfig_NeedsSecret(t *testing.T) {
	cfg := NewDefaultConfig()
	require.Error(t, cfg.Validate(), "secret has no default")

	require.NoError(t, validConfig().Validate())
	assert.Equal(t, ":8080", validConfig().HTTP.Address())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		mutate func(c *Config)
		name   string
	}{
		{name: "short secret", mutate: func(c *Config) { c.JWT.Secret = "short" }},
		{name: "refresh not longer than access", mutate: func(c *Config) { c.JWT.RefreshTokenTTL = c.JWT.AccessTokenTTL }},
		{name: "bad port", mutate: func(c *Config) { c.HTTP.Port = 70000 }},
		{name: "no db path", mutate: func(c *Config) { c.Database.Path = "" }},
		{name: "rate limit without window", mutate: func(c *Config) { c.RateLimit.Window = 0 }},
		{name: "negative rate limit", mutate: func(c *Config) { c.RateLimit.Requests = -1 }},
		{name: "no lock ttl", mutate: func(c *Config) { c.Realtime.LockTTL = 0 }},
		{name: "bad seed email", mutate: func(c *Config) { c.Seed.Email = "nope" }},
		{name: "seed without password", mutate: func(c *Config) { c.Seed.Email = "demo@example.com" }},
		{name: "seed role", mutate: func(c *Config) { c.Seed.Role = "root" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRateLimitConfig_Disabled(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit = RateLimitConfig{}
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.RateLimit.Enabled())
}

func TestLoad_YAMLWithEnv(t *testing.T) {
	t.Setenv("ITEMSYNC_JWT_SECRET", "super-secret-value-123")

	path := filepath.Join(t.TempDir(), "server.yaml")
	data := `
log_level: debug
http:
  host: 127.0.0.1
  port: 9090
database:
  path: /tmp/test.db
jwt:
  secret: ${ITEMSYNC_JWT_SECRET}
  access_token_ttl: 5m
seed:
  email: demo@example.com
  password: password123
  name: Demo
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg := NewDefaultConfig()
	require.NoError(t, pkgconfig.Load(path, cfg))

	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Address())
	assert.Equal(t, "super-secret-value-123", cfg.JWT.Secret)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenTTL, "default kept")
	assert.Equal(t, "manager", cfg.Seed.Role)
	assert.Equal(t, "Demo", cfg.Seed.Name)
}

func TestLoad_ShippedExample(t *testing.T) {
	t.Setenv("ITEMSYNC_JWT_SECRET", "example-secret-0123456789")
	t.Setenv("ITEMSYNC_SEED_EMAIL", "")
	t.Setenv("ITEMSYNC_SEED_PASSWORD", "")

	cfg := NewDefaultConfig()
	require.NoError(t, pkgconfig.Load(filepath.Join("..", "..", "..", "config", "server.yaml"), cfg))

	assert.Equal(t, "example-secret-0123456789", cfg.JWT.Secret)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Empty(t, cfg.Seed.Email)
}
