// Package config loads the employee client configuration from a YAML file,
// a .env file and EMPLOYEES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/employee-client/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// EMPLOYEES_API_BASE_URL for api.base_url.
const EnvPrefix = "EMPLOYEES"

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Paging  PagingConfig  `mapstructure:"paging"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
	FakeAPI FakeAPIConfig `mapstructure:"fake_api"`
}

// APIConfig describes the remote employee API
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// RetryConfig is the read retry policy
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay"`
}

// PagingConfig holds listing and export settings
type PagingConfig struct {
	PageSize      int `mapstructure:"page_size"`
	ExportWorkers int `mapstructure:"export_workers"`
}

// RedisConfig enables the conditional-GET response cache
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	File   string `mapstructure:"file"`
}

// FakeAPIConfig configures the built-in fake API server
type FakeAPIConfig struct {
	Addr string `mapstructure:"addr"`
	Seed int    `mapstructure:"seed"`
}

// Options selects where configuration is read from. Empty fields use the
// default locations.
type Options struct {
	// ConfigFile is an explicit YAML file. When empty, employees.yaml is
	// searched in the working directory and the user config directory.
	ConfigFile string

	// EnvFile is loaded into the process environment before overrides are
	// applied. Defaults to ".env"; a missing file is not an error.
	EnvFile string
}

// defaults returns the default configuration, keyed the way viper sees it.
func defaults() map[string]any {
	return map[string]any{
		"api.base_url":          "http://localhost:3000/api",
		"api.timeout":           30 * time.Second,
		"api.user_agent":        "employee-client/0.1.0",
		"retry.max_attempts":    3,
		"retry.delay":           3 * time.Second,
		"paging.page_size":      10,
		"paging.export_workers": 4,
		"redis.enabled":         false,
		"redis.addr":            "localhost:6379",
		"redis.password":        "",
		"redis.db":              0,
		"logging.level":         "info",
		"logging.pretty":        true,
		"logging.file":          "",
		"fake_api.addr":         ":3000",
		"fake_api.seed":         25,
	}
}

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "employee-client")
}

// Load reads configuration: defaults, then the YAML file, then the
// environment (including the .env file).
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading env file %s: %w", envFile, err)
	}

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("employees")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultConfigDir())
	}

	// Environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("api.base_url must be an http(s) URL (got %q)", c.API.BaseURL))
	}
	if c.Paging.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("paging.page_size must be > 0 (got %d)", c.Paging.PageSize))
	}
	if c.Paging.ExportWorkers <= 0 {
		errs = append(errs, fmt.Errorf("paging.export_workers must be > 0 (got %d)", c.Paging.ExportWorkers))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be >= 1 (got %d)", c.Retry.MaxAttempts))
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, fmt.Errorf("retry.delay must not be negative (got %s)", c.Retry.Delay))
	}
	if !logging.ValidLevel(logging.LogLevel(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
