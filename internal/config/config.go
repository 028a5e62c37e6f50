package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete wsync configuration. It is shared by the serve,
// ingest, pull and show commands; each command reads the sections it needs.
type Config struct {
	Store   StoreConfig   `json:"store" mapstructure:"store"`
	Server  ServerConfig  `json:"server" mapstructure:"server"`
	Remote  RemoteConfig  `json:"remote" mapstructure:"remote"`
	Cache   CacheConfig   `json:"cache" mapstructure:"cache"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// StoreConfig locates the authoritative asset store.
type StoreConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// ServerConfig contains the asset provider settings.
type ServerConfig struct {
	ListenAddr      string `json:"listenAddr" mapstructure:"listenAddr"`
	ShutdownTimeout int    `json:"shutdownTimeoutSeconds" mapstructure:"shutdownTimeoutSeconds"`
}

// RemoteConfig contains settings for pulling from a remote provider.
type RemoteConfig struct {
	URL              string `json:"url" mapstructure:"url"`
	TimeoutSeconds   int    `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
	MaxRetries       int    `json:"maxRetries" mapstructure:"maxRetries"`
	RetryBaseDelayMs int    `json:"retryBaseDelayMs" mapstructure:"retryBaseDelayMs"`
}

// CacheConfig locates the local write-through cache used by pull.
type CacheConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: ".wsync/assets.db",
		},
		Server: ServerConfig{
			ListenAddr:      "127.0.0.1:8740",
			ShutdownTimeout: 10,
		},
		Remote: RemoteConfig{
			URL:              "",
			TimeoutSeconds:   30,
			MaxRetries:       3,
			RetryBaseDelayMs: 100,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    ".wsync/cache.db",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Timeout returns the remote request timeout as a duration.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// RetryBaseDelay returns the initial backoff delay as a duration.
func (r RemoteConfig) RetryBaseDelay() time.Duration {
	return time.Duration(r.RetryBaseDelayMs) * time.Millisecond
}

// Load reads configuration from <dir>/.wsync/config.json, falling back to
// defaults when no config file exists.
func Load(dir string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("server.listenAddr", defaults.Server.ListenAddr)
	v.SetDefault("server.shutdownTimeoutSeconds", defaults.Server.ShutdownTimeout)
	v.SetDefault("remote.url", defaults.Remote.URL)
	v.SetDefault("remote.timeoutSeconds", defaults.Remote.TimeoutSeconds)
	v.SetDefault("remote.maxRetries", defaults.Remote.MaxRetries)
	v.SetDefault("remote.retryBaseDelayMs", defaults.Remote.RetryBaseDelayMs)
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.path", defaults.Cache.Path)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(dir, ".wsync"))

	// WSYNC_REMOTE_URL overrides remote.url, and so on.
	v.SetEnvPrefix("WSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine: defaults and env overrides still apply.
	// Env overrides resolve during Unmarshal because every key has a default.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <dir>/.wsync/config.json.
func (c *Config) Save(dir string) error {
	configDir := filepath.Join(dir, ".wsync")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(configDir, "config.json"), data, 0o644)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("config error: store.path must not be empty")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("config error: server.shutdownTimeoutSeconds must not be negative")
	}
	if c.Remote.MaxRetries < 0 {
		return fmt.Errorf("config error: remote.maxRetries must not be negative")
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return fmt.Errorf("config error: logging.format must be human or json, got %q", c.Logging.Format)
	}
	return nil
}
