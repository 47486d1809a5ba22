package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/branwick/lorekeeper/internal/models"
)

// DefaultStallWarnSeconds is how long a lock acquisition may wait before
// it is logged as a stalled key.
const DefaultStallWarnSeconds = 30

// Config holds all configuration for lorekeeper.
type Config struct {
	Campaign CampaignConfig  `mapstructure:"campaign"`
	Lock     LockConfig      `mapstructure:"lock"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	Modules  []models.Module `mapstructure:"modules"`
}

// CampaignConfig locates campaign data on disk.
type CampaignConfig struct {
	Root   string `mapstructure:"root"`
	Active string `mapstructure:"active"`
}

// LockConfig holds lock manager settings.
type LockConfig struct {
	StallWarnSeconds int `mapstructure:"stall_warn_seconds"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("campaign.root", filepath.Join(homeDir(), ".lorekeeper", "campaigns"))
	v.SetDefault("campaign.active", "")

	v.SetDefault("lock.stall_warn_seconds", DefaultStallWarnSeconds)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Config file: ~/.lorekeeper/config.yaml (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".lorekeeper"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("LOREKEEPER")
	v.AutomaticEnv()

	// Map specific env vars
	_ = v.BindEnv("campaign.root", "LOREKEEPER_CAMPAIGN_ROOT")
	_ = v.BindEnv("campaign.active", "LOREKEEPER_CAMPAIGN_ACTIVE")
	_ = v.BindEnv("logging.level", "LOREKEEPER_LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOREKEEPER_LOG_FORMAT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK — use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks invariants the rest of the system relies on.
func (c *Config) Validate() error {
	if c.Campaign.Root == "" {
		return fmt.Errorf("campaign.root must not be empty")
	}
	if c.Lock.StallWarnSeconds < 0 {
		return fmt.Errorf("lock.stall_warn_seconds must not be negative")
	}
	seen := make(map[string]bool, len(c.Modules))
	for _, m := range c.Modules {
		if m.ID == "" {
			return fmt.Errorf("modules entries must have an id")
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate module id %q", m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}

// ModuleSet merges the built-in modules with configured overrides and
// additions. Config entries with a builtin's id replace the builtin.
func (c *Config) ModuleSet() *models.ModuleSet {
	return models.NewModuleSet(append(models.BuiltinModules(), c.Modules...))
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
