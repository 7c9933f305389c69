package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, "./academx.db", cfg.Database.Path)
	assert.False(t, cfg.Chat.RequireMembership)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"zero port", func(c *Config) { c.HTTP.Port = 0 }},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }},
		{"empty host", func(c *Config) { c.HTTP.Host = "" }},
		{"negative read timeout", func(c *Config) { c.HTTP.ReadTimeout = -time.Second }},
		{"zero ping interval", func(c *Config) { c.WebSocket.PingInterval = 0 }},
		{"zero buffer size", func(c *Config) { c.WebSocket.BufferSize = 0 }},
		{"empty documents dir", func(c *Config) { c.Uploads.DocumentsDir = "" }},
		{"zero upload limit", func(c *Config) { c.Uploads.MaxSizeBytes = 0 }},
		{"zero session TTL", func(c *Config) { c.Session.TTL = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("ACADEMX_HTTP_PORT", "8080")
	t.Setenv("ACADEMX_DATABASE_PATH", "/tmp/test.db")
	t.Setenv("ACADEMX_SESSION_TTL", "2h")
	t.Setenv("ACADEMX_CHAT_REQUIRE_MEMBERSHIP", "true")

	cfg := LoadFromEnv()
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Chat.RequireMembership)
}

func TestLoadFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("ACADEMX_HTTP_PORT", "not-a-number")
	t.Setenv("ACADEMX_SESSION_TTL", "soon")

	cfg := LoadFromEnv()
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
}

func TestLoadFromFileOverridesEnv(t *testing.T) {
	t.Setenv("ACADEMX_HTTP_PORT", "8080")

	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"http": {"port": 9090, "read_timeout": "45s"},
		"database": {"path": "/data/academx.db"},
		"websocket": {"ping_interval": "15s"},
		"chat": {"require_membership": true}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 45*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "/data/academx.db", cfg.Database.Path)
	assert.Equal(t, 15*time.Second, cfg.WebSocket.PingInterval)
	assert.True(t, cfg.Chat.RequireMembership)
	// Untouched fields keep defaults.
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/config.json")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFallsBackWhenFileMissing(t *testing.T) {
	cfg := Load("/nonexistent/config.json")
	require.NotNil(t, cfg)
	assert.Equal(t, 3000, cfg.HTTP.Port)
}
