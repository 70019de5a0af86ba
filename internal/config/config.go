package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/codefionn/workhub/internal/consts"
)

// Config represents the hub daemon configuration
type Config struct {
	// ListenAddr is the HTTP listen address serving the websocket endpoint
	ListenAddr string `json:"listen_addr"`

	// AuthToken is the static shared-secret token. When empty, local
	// connections are admitted without a credential and remote ones are
	// rejected unless a token store validates them.
	AuthToken string `json:"auth_token,omitempty"`

	// HeartbeatIntervalSeconds is the sweep interval for the heartbeat monitor
	HeartbeatIntervalSeconds int `json:"heartbeat_interval_seconds"`

	// HeartbeatTimeoutSeconds is the liveness timeout before eviction
	HeartbeatTimeoutSeconds int `json:"heartbeat_timeout_seconds"`

	LogLevel string `json:"log_level"` // debug, info, warn, error, none
	LogPath  string `json:"-"`
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, "workhub")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "workhub")
	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "workhub")
	}
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}

// Default returns a config populated with defaults
func Default() *Config {
	return &Config{
		ListenAddr:               "localhost:8937",
		HeartbeatIntervalSeconds: int(consts.DefaultHeartbeatInterval / time.Second),
		HeartbeatTimeoutSeconds:  int(consts.DefaultHeartbeatTimeout / time.Second),
		LogLevel:                 "info",
	}
}

// Load reads the config file at path, falling back to defaults for a
// missing file. Environment overrides are applied afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnv()

	if cfg.HeartbeatIntervalSeconds <= 0 {
		cfg.HeartbeatIntervalSeconds = int(consts.DefaultHeartbeatInterval / time.Second)
	}
	if cfg.HeartbeatTimeoutSeconds <= 0 {
		cfg.HeartbeatTimeoutSeconds = int(consts.DefaultHeartbeatTimeout / time.Second)
	}

	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("WORKHUB_ADDR")); v != "" {
		c.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("WORKHUB_AUTH_TOKEN")); v != "" {
		c.AuthToken = v
	}
	if v := strings.TrimSpace(os.Getenv("WORKHUB_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
}

// HeartbeatInterval returns the sweep interval as a duration
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalSeconds) * time.Second
}

// HeartbeatTimeout returns the liveness timeout as a duration
func (c *Config) HeartbeatTimeout() time.Duration {
	return time.Duration(c.HeartbeatTimeoutSeconds) * time.Second
}
