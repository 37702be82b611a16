package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "tilitin.yaml"

// EnvPrefix prefixes environment overrides, e.g. TILITIN_DATABASE_URL.
const EnvPrefix = "TILITIN"

// Config represents the top-level tilitin.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Database DatabaseConfig `yaml:"database"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Log      LogConfig      `yaml:"log"`
}

// BusinessConfig identifies the bookkeeping entity.
type BusinessConfig struct {
	Name string `yaml:"name"`
	// Form selects the default chart of accounts.
	Form string `yaml:"form"`
}

// DatabaseConfig selects and authenticates the store engine.
type DatabaseConfig struct {
	URL         string `yaml:"url" envconfig:"url"`
	User        string `yaml:"user,omitempty"`
	Password    string `yaml:"password,omitempty"`
	AutoMigrate bool   `yaml:"auto_migrate" envconfig:"auto_migrate"`
}

// DispatchConfig sizes the worker pools.
type DispatchConfig struct {
	StoreWorkers      int `yaml:"store_workers" envconfig:"store_workers"`
	BackgroundWorkers int `yaml:"background_workers" envconfig:"background_workers"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Load reads a tilitin.yaml file from disk and applies environment
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with TILITIN_* variables that are set; unset ones
// leave the current values.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default(businessName, form string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
			Form: form,
		},
		Database: DatabaseConfig{
			URL:         "sqlite:tilitin.sqlite",
			AutoMigrate: true,
		},
		Dispatch: DispatchConfig{
			StoreWorkers:      4,
			BackgroundWorkers: runtime.NumCPU(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
