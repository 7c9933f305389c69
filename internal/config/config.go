package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the system-wide settings tree. Precedence when loading:
// JSON file > environment > defaults.
type Config struct {
	Database  *DatabaseConfig  `json:"database"`
	HTTP      *HTTPConfig      `json:"http"`
	WebSocket *WebSocketConfig `json:"websocket"`
	Uploads   *UploadsConfig   `json:"uploads"`
	Session   *SessionConfig   `json:"session"`
	Chat      *ChatConfig      `json:"chat"`
}

type DatabaseConfig struct {
	Path    string        `json:"path"`
	Timeout time.Duration `json:"timeout"`
}

type HTTPConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

type WebSocketConfig struct {
	PingInterval time.Duration `json:"ping_interval"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	BufferSize   int           `json:"buffer_size"`
}

type UploadsConfig struct {
	DocumentsDir string `json:"documents_dir"`
	AvatarsDir   string `json:"avatars_dir"`
	MaxSizeBytes int64  `json:"max_size_bytes"`
}

type SessionConfig struct {
	TTL time.Duration `json:"ttl"`
}

type ChatConfig struct {
	// RequireMembership rejects messages into rooms the sender never
	// joined. Off by default for compatibility with existing clients.
	RequireMembership bool `json:"require_membership"`
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: &DatabaseConfig{
			Path:    "./academx.db",
			Timeout: 30 * time.Second,
		},
		HTTP: &HTTPConfig{
			Host:         "0.0.0.0",
			Port:         3000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		WebSocket: &WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 10 * time.Second,
			BufferSize:   100,
		},
		Uploads: &UploadsConfig{
			DocumentsDir: "./uploads",
			AvatarsDir:   "./avatars",
			MaxSizeBytes: 20 << 20,
		},
		Session: &SessionConfig{
			TTL: 24 * time.Hour,
		},
		Chat: &ChatConfig{
			RequireMembership: false,
		},
	}
}

// Validate rejects configurations that could not serve.
func (c *Config) Validate() error {
	if c.Database == nil || c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Database.Timeout <= 0 {
		return fmt.Errorf("database timeout must be positive")
	}
	if c.HTTP == nil {
		return fmt.Errorf("HTTP configuration is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP port must be between 1 and 65535")
	}
	if c.HTTP.Host == "" {
		return fmt.Errorf("HTTP host cannot be empty")
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP timeouts must be positive")
	}
	if c.WebSocket == nil {
		return fmt.Errorf("WebSocket configuration is required")
	}
	if c.WebSocket.PingInterval <= 0 || c.WebSocket.ReadTimeout <= 0 || c.WebSocket.WriteTimeout <= 0 {
		return fmt.Errorf("WebSocket intervals must be positive")
	}
	if c.WebSocket.BufferSize <= 0 {
		return fmt.Errorf("WebSocket buffer size must be positive")
	}
	if c.Uploads == nil || c.Uploads.DocumentsDir == "" || c.Uploads.AvatarsDir == "" {
		return fmt.Errorf("upload directories are required")
	}
	if c.Uploads.MaxSizeBytes <= 0 {
		return fmt.Errorf("upload size limit must be positive")
	}
	if c.Session == nil || c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Chat == nil {
		return fmt.Errorf("chat configuration is required")
	}
	return nil
}

// LoadFromEnv overlays ACADEMX_* environment variables on the defaults.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("ACADEMX_HTTP_HOST"); v != "" {
		cfg.HTTP.Host = v
	}
	if v := os.Getenv("ACADEMX_HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = p
		}
	}
	if v := os.Getenv("ACADEMX_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("ACADEMX_DATABASE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Database.Timeout = d
		}
	}
	if v := os.Getenv("ACADEMX_UPLOADS_DIR"); v != "" {
		cfg.Uploads.DocumentsDir = v
	}
	if v := os.Getenv("ACADEMX_AVATARS_DIR"); v != "" {
		cfg.Uploads.AvatarsDir = v
	}
	if v := os.Getenv("ACADEMX_UPLOAD_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Uploads.MaxSizeBytes = n
		}
	}
	if v := os.Getenv("ACADEMX_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = d
		}
	}
	if v := os.Getenv("ACADEMX_WEBSOCKET_PING_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WebSocket.PingInterval = d
		}
	}
	if v := os.Getenv("ACADEMX_WEBSOCKET_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WebSocket.ReadTimeout = d
		}
	}
	if v := os.Getenv("ACADEMX_WEBSOCKET_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WebSocket.WriteTimeout = d
		}
	}
	if v := os.Getenv("ACADEMX_WEBSOCKET_BUFFER_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WebSocket.BufferSize = n
		}
	}
	if v := os.Getenv("ACADEMX_CHAT_REQUIRE_MEMBERSHIP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Chat.RequireMembership = b
		}
	}

	return cfg
}

// configFile mirrors Config with string durations for JSON readability.
type configFile struct {
	Database *struct {
		Path    string `json:"path"`
		Timeout string `json:"timeout"`
	} `json:"database"`
	HTTP *struct {
		Host         string `json:"host"`
		Port         int    `json:"port"`
		ReadTimeout  string `json:"read_timeout"`
		WriteTimeout string `json:"write_timeout"`
	} `json:"http"`
	WebSocket *struct {
		PingInterval string `json:"ping_interval"`
		ReadTimeout  string `json:"read_timeout"`
		WriteTimeout string `json:"write_timeout"`
		BufferSize   int    `json:"buffer_size"`
	} `json:"websocket"`
	Uploads *struct {
		DocumentsDir string `json:"documents_dir"`
		AvatarsDir   string `json:"avatars_dir"`
		MaxSizeBytes int64  `json:"max_size_bytes"`
	} `json:"uploads"`
	Session *struct {
		TTL string `json:"ttl"`
	} `json:"session"`
	Chat *struct {
		RequireMembership *bool `json:"require_membership"`
	} `json:"chat"`
}

// LoadFromFile overlays a JSON config file on env-resolved settings and
// validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file configFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := LoadFromEnv()

	if file.Database != nil {
		if file.Database.Path != "" {
			cfg.Database.Path = file.Database.Path
		}
		overlayDuration(&cfg.Database.Timeout, file.Database.Timeout)
	}
	if file.HTTP != nil {
		if file.HTTP.Host != "" {
			cfg.HTTP.Host = file.HTTP.Host
		}
		if file.HTTP.Port > 0 {
			cfg.HTTP.Port = file.HTTP.Port
		}
		overlayDuration(&cfg.HTTP.ReadTimeout, file.HTTP.ReadTimeout)
		overlayDuration(&cfg.HTTP.WriteTimeout, file.HTTP.WriteTimeout)
	}
	if file.WebSocket != nil {
		overlayDuration(&cfg.WebSocket.PingInterval, file.WebSocket.PingInterval)
		overlayDuration(&cfg.WebSocket.ReadTimeout, file.WebSocket.ReadTimeout)
		overlayDuration(&cfg.WebSocket.WriteTimeout, file.WebSocket.WriteTimeout)
		if file.WebSocket.BufferSize > 0 {
			cfg.WebSocket.BufferSize = file.WebSocket.BufferSize
		}
	}
	if file.Uploads != nil {
		if file.Uploads.DocumentsDir != "" {
			cfg.Uploads.DocumentsDir = file.Uploads.DocumentsDir
		}
		if file.Uploads.AvatarsDir != "" {
			cfg.Uploads.AvatarsDir = file.Uploads.AvatarsDir
		}
		if file.Uploads.MaxSizeBytes > 0 {
			cfg.Uploads.MaxSizeBytes = file.Uploads.MaxSizeBytes
		}
	}
	if file.Session != nil {
		overlayDuration(&cfg.Session.TTL, file.Session.TTL)
	}
	if file.Chat != nil && file.Chat.RequireMembership != nil {
		cfg.Chat.RequireMembership = *file.Chat.RequireMembership
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// Load resolves configuration with file > env > defaults precedence. An
// empty path skips the file layer; a missing file falls back to env.
func Load(path string) *Config {
	if path != "" {
		if cfg, err := LoadFromFile(path); err == nil {
			return cfg
		}
	}
	return LoadFromEnv()
}

func overlayDuration(dst *time.Duration, raw string) {
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*dst = d
	}
}
