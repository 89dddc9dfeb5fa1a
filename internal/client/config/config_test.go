package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/iudanet/itemsync/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.Executor.Timeout)
	assert.Equal(t, 3, cfg.Executor.Attempts)
	assert.Equal(t, 3, cfg.Queue.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.Realtime.LockTTL)
	assert.True(t, cfg.Executor.Breaker.Enabled())
}

func TestConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "empty server url", mutate: func(c *Config) { c.Server.URL = "" }},
		{name: "bad build", mutate: func(c *Config) { c.Build = "v 1" }},
		{name: "empty db path", mutate: func(c *Config) { c.Storage.Path = "" }},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }},
		{name: "zero attempts", mutate: func(c *Config) { c.Executor.Attempts = 0 }},
		{name: "breaker without timeout", mutate: func(c *Config) { c.Executor.Breaker.OpenTimeout = 0 }},
		{name: "zero max retries", mutate: func(c *Config) { c.Queue.MaxRetries = 0 }},
		{name: "health path", mutate: func(c *Config) { c.Monitor.HealthPath = "health" }},
		{name: "max delay below base", mutate: func(c *Config) { c.Realtime.MaxReconnectDelay = time.Millisecond }},
		{name: "metrics addr", mutate: func(c *Config) { c.Metrics.Addr = "not an address" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestBreakerDisabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Executor.Breaker = BreakerConfig{}
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.Executor.Breaker.Enabled())
}

func TestServerURLs(t *testing.T) {
	s := ServerConfig{URL: "https://inventory.example.com/"}
	assert.Equal(t, "https://inventory.example.com/api", s.APIURL())

	ws, err := s.WebsocketURL("/ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://inventory.example.com/ws", ws)

	s = ServerConfig{URL: "http://localhost:8080"}
	ws, err = s.WebsocketURL("/ws")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", ws)
}

func TestLoadFromYAML(t *testing.T) {
	t.Setenv("ITEMSYNC_SERVER", "http://10.0.0.5:9000")
	path := filepath.Join(t.TempDir(), "client.yaml")
	content := `
server:
  url: ${ITEMSYNC_SERVER}
log:
  level: debug
  format: json
executor:
  timeout: 5s
queue:
  max_retries: 5
realtime:
  lock_ttl: 2m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := NewDefaultConfig()
	require.NoError(t, pkgconfig.Load(path, cfg))

	assert.Equal(t, "http://10.0.0.5:9000", cfg.Server.URL)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.Executor.Timeout)
	assert.Equal(t, 3, cfg.Executor.Attempts, "defaults are kept")
	assert.Equal(t, 5, cfg.Queue.MaxRetries)
	assert.Equal(t, 2*time.Minute, cfg.Realtime.LockTTL)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	c := LogConfig{Format: LogFormatJSON, Level: slog.LevelInfo}
	logger := c.NewLogger(&buf)

	logger.Debug("hidden")
	logger.Info("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"key":"value"`)
}
