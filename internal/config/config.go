//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for storepulse.
// Configuration is loaded from config files and CLI flags (no environment
// variables). CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for storepulse.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`

	// Report holds configuration for the report subcommand.
	Report ReportConfig `mapstructure:"report"`

	// Serve holds configuration for the serve subcommand.
	Serve ServeConfig `mapstructure:"serve"`
}

// SeedConfig holds configuration for synthetic data generation.
type SeedConfig struct {
	// Stores is the number of stores to generate.
	Stores int `mapstructure:"stores"`

	// Products is the number of products to generate.
	Products int `mapstructure:"products"`

	// Days is the length of the generated sales history.
	Days int `mapstructure:"days"`

	// MaxDailySales caps the sale events generated per store per day.
	MaxDailySales int `mapstructure:"max_daily_sales"`

	// StartDate is the first sale date (YYYY-MM-DD). Empty means
	// Days before today.
	StartDate string `mapstructure:"start_date"`

	// RandomSeed makes generation reproducible when non-zero.
	RandomSeed uint64 `mapstructure:"random_seed"`
}

// ReportConfig holds configuration for the analytical reports.
type ReportConfig struct {
	// Grouping is the default rollup grouping for the summary report.
	Grouping string `mapstructure:"grouping"`

	// StoreTopN is the per-store ranking cutoff.
	StoreTopN int `mapstructure:"store_top_n"`

	// GlobalTopN is the global ranking cutoff.
	GlobalTopN int `mapstructure:"global_top_n"`

	// RiskTopN is the stockout-risk report cutoff.
	RiskTopN int `mapstructure:"risk_top_n"`

	// Format is the output format: table, csv, or json.
	Format string `mapstructure:"format"`
}

// ServeConfig holds configuration for the HTTP API.
type ServeConfig struct {
	// Host is the listen address.
	Host string `mapstructure:"host"`

	// Port is the listen port.
	Port int `mapstructure:"port"`

	// ReadTimeout is the request read timeout in seconds.
	ReadTimeout int `mapstructure:"read_timeout"`
}

// Addr returns the host:port listen address.
func (s ServeConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Seed: SeedConfig{
			Stores:        12,
			Products:      35,
			Days:          365,
			MaxDailySales: 40,
		},
		Report: ReportConfig{
			Grouping:   "product",
			StoreTopN:  10,
			GlobalTopN: 20,
			RiskTopN:   20,
			Format:     "table",
		},
		Serve: ServeConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			ReadTimeout: 10,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./storepulse.yaml
// 3. ~/.config/storepulse/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("storepulse")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "storepulse"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Seed.Stores < 1 {
		return fmt.Errorf("seed.stores must be at least 1")
	}
	if c.Seed.Products < 1 {
		return fmt.Errorf("seed.products must be at least 1")
	}
	if c.Seed.Days < 1 {
		return fmt.Errorf("seed.days must be at least 1")
	}
	if c.Seed.MaxDailySales < 1 {
		return fmt.Errorf("seed.max_daily_sales must be at least 1")
	}
	if c.Seed.StartDate != "" {
		if _, err := time.Parse("2006-01-02", c.Seed.StartDate); err != nil {
			return fmt.Errorf("seed.start_date must be YYYY-MM-DD: %w", err)
		}
	}
	return nil
}

// ValidateReport checks configuration required for the report command.
func (c *Config) ValidateReport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch c.Report.Format {
	case "table", "csv", "json":
	default:
		return fmt.Errorf("report.format must be table, csv, or json")
	}
	if c.Report.StoreTopN < 1 || c.Report.GlobalTopN < 1 || c.Report.RiskTopN < 1 {
		return fmt.Errorf("report cutoffs must be at least 1")
	}
	return nil
}

// ValidateServe checks configuration required for the serve command.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port must be between 1 and 65535")
	}
	if c.Serve.ReadTimeout < 1 {
		return fmt.Errorf("serve.read_timeout must be at least 1 second")
	}
	return nil
}
