// Package config provides configuration management for the trade journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	UserID      string        `mapstructure:"user_id"`
	DBPath      string        `mapstructure:"db_path"`
	Sync        SyncConfig    `mapstructure:"sync"`
	API         APIConfig     `mapstructure:"api"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately
}

// SyncConfig holds synchronization behavior configuration.
type SyncConfig struct {
	// Mode selects the order source: "live" calls the broker API,
	// "mock" uses the deterministic mock generator.
	Mode string `mapstructure:"mode"`
	// Interval is the minimum elapsed time before the scheduler
	// re-syncs an account.
	Interval time.Duration `mapstructure:"interval"`
	// Tick is how often the scheduler scans accounts.
	Tick time.Duration `mapstructure:"tick"`
	// Throttle is the delay between consecutive account syncs in a
	// bulk pass, to respect broker rate limits.
	Throttle time.Duration `mapstructure:"throttle"`
	// Lookback is the initial fetch window for an account that has
	// never been synced.
	Lookback time.Duration `mapstructure:"lookback"`
	// FetchTimeout bounds a single order-history request.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	// AutoSync enables the periodic scheduler under `journal serve`.
	AutoSync bool `mapstructure:"auto_sync"`
	// AnalyticsWorkers sizes the indicator-computation fan-out.
	AnalyticsWorkers int `mapstructure:"analytics_workers"`
}

// APIConfig holds HTTP API configuration.
type APIConfig struct {
	Port       int    `mapstructure:"port"`
	APIKey     string `mapstructure:"api_key"`
	CORSOrigin string `mapstructure:"cors_origin"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// Credentials holds broker API credentials.
type Credentials struct {
	Schwab SchwabCredentials `mapstructure:"schwab"`
}

// SchwabCredentials holds Schwab Trader API credentials.
type SchwabCredentials struct {
	ClientID string `mapstructure:"client_id"`
	BaseURL  string `mapstructure:"base_url"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trade-journal"
	}
	return filepath.Join(home, ".config", "trade-journal")
}

// Default returns the built-in configuration, used when no config file
// exists and as the base for file and environment overrides.
func Default() *Config {
	return &Config{
		UserID: "local",
		DBPath: filepath.Join(DefaultConfigDir(), "journal.db"),
		Sync: SyncConfig{
			Mode:             "mock",
			Interval:         15 * time.Minute,
			Tick:             60 * time.Second,
			Throttle:         time.Second,
			Lookback:         60 * 24 * time.Hour,
			FetchTimeout:     30 * time.Second,
			AutoSync:         false,
			AnalyticsWorkers: 4,
		},
		API: APIConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    true,
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Missing config file is fine: defaults apply.
			return nil
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCHWAB_CLIENT_ID"); v != "" {
		cfg.Credentials.Schwab.ClientID = v
		cfg.Sync.Mode = "live"
	}
	if v := os.Getenv("SCHWAB_BASE_URL"); v != "" {
		cfg.Credentials.Schwab.BaseURL = v
	}
	if v := os.Getenv("JOURNAL_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("JOURNAL_USER_ID"); v != "" {
		cfg.UserID = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Sync.Mode != "live" && c.Sync.Mode != "mock" {
		return fmt.Errorf("invalid sync mode: %s (must be 'live' or 'mock')", c.Sync.Mode)
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync interval must be positive")
	}
	if c.Sync.Tick <= 0 {
		return fmt.Errorf("sync tick must be positive")
	}
	if c.Sync.Lookback <= 0 {
		return fmt.Errorf("sync lookback must be positive")
	}
	if c.Sync.AnalyticsWorkers <= 0 {
		return fmt.Errorf("analytics_workers must be positive")
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port: %d", c.API.Port)
	}
	if c.Sync.Mode == "live" && c.Credentials.Schwab.ClientID == "" {
		return fmt.Errorf("live sync mode requires schwab client_id")
	}
	return nil
}

// IsMockMode returns true if the mock order source is enabled.
func (c *Config) IsMockMode() bool {
	return c.Sync.Mode == "mock"
}
