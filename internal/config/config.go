// Package config loads and saves the application configuration with viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig          `mapstructure:"server"`
	Feeds   map[string]FeedConfig `mapstructure:"feeds"`
	UI      UIConfig              `mapstructure:"ui"`
	Logging LoggingConfig         `mapstructure:"logging"`
	Data    DataConfig            `mapstructure:"data"`
}

// ServerConfig holds API server configuration
type ServerConfig struct {
	URL       string        `mapstructure:"url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // Requests per second, 0 disables
	Burst     int           `mapstructure:"burst"`
}

// FeedConfig overrides the paging of one feed. Zero values keep the default.
type FeedConfig struct {
	PageSize  int           `mapstructure:"page_size"`
	Lookahead int           `mapstructure:"lookahead"`
	Pacing    time.Duration `mapstructure:"pacing"` // Delay before each fetch
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultTab string `mapstructure:"default_tab"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DataConfig holds local storage configuration. An empty Dir keeps the
// session in memory only.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Timeout:   30 * time.Second,
			RateLimit: 5,
			Burst:     3,
		},
		Feeds: map[string]FeedConfig{},
		UI: UIConfig{
			DefaultTab: "home",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		Data: DataConfig{
			Dir: defaultDataPath(),
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "vidfeed", "vidfeed.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "vidfeed", "vidfeed.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "vidfeed")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "vidfeed")
	}
}

// defaultDataPath returns the default session directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "vidfeed")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "vidfeed", "data")
	}
}

// Loader reads and writes one config file. The zero value is not usable;
// use New or NewWithDir.
type Loader struct {
	v   *viper.Viper
	dir string
}

// New returns a loader for the default config directory
func New() *Loader {
	return NewWithDir(defaultConfigPath())
}

// NewWithDir returns a loader reading config.yaml from dir
func NewWithDir(dir string) *Loader {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	// Environment variable overrides, e.g. VIDFEED_SERVER_URL
	v.SetEnvPrefix("VIDFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, dir: dir}
}

// Path returns the config file location
func (l *Loader) Path() string {
	return filepath.Join(l.dir, "config.yaml")
}

// Load loads configuration from file and environment
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	// Env overrides only bind keys viper knows about
	for _, key := range []string{
		"server.url", "server.timeout", "server.rate_limit", "server.burst",
		"ui.default_tab", "logging.file", "logging.level", "data.dir",
	} {
		if err := l.v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if cfg.Feeds == nil {
		cfg.Feeds = map[string]FeedConfig{}
	}
	cfg.Logging.File = expandHome(cfg.Logging.File)
	cfg.Data.Dir = expandHome(cfg.Data.Dir)

	return cfg, nil
}

// Save writes cfg to the config file
func (l *Loader) Save(cfg *Config) error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	l.v.Set("server.url", cfg.Server.URL)
	l.v.Set("server.timeout", cfg.Server.Timeout.String())
	l.v.Set("server.rate_limit", cfg.Server.RateLimit)
	l.v.Set("server.burst", cfg.Server.Burst)

	for kind, feed := range cfg.Feeds {
		l.v.Set("feeds."+kind+".page_size", feed.PageSize)
		l.v.Set("feeds."+kind+".lookahead", feed.Lookahead)
		if feed.Pacing > 0 {
			l.v.Set("feeds."+kind+".pacing", feed.Pacing.String())
		}
	}

	l.v.Set("ui.default_tab", cfg.UI.DefaultTab)
	l.v.Set("logging.file", cfg.Logging.File)
	l.v.Set("logging.level", cfg.Logging.Level)
	l.v.Set("data.dir", cfg.Data.Dir)

	if err := l.v.WriteConfigAs(l.Path()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ClearServer forgets the server URL while preserving other settings
func (l *Loader) ClearServer(cfg *Config) error {
	cfg.Server.URL = ""
	return l.Save(cfg)
}

// IsConfigured returns true if a server URL is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}

// Feed returns the override for kind, if any
func (c *Config) Feed(kind string) FeedConfig {
	return c.Feeds[strings.ToLower(kind)]
}

// expandHome expands a leading ~ to the user's home directory
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
