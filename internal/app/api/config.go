package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"
)

// Config carries the settings of the API and worker processes.
type Config struct {
	Port              string `mapstructure:"port"`
	PostgresDSN       string `mapstructure:"postgres_dsn"`
	TemporalAddress   string `mapstructure:"temporal_address"`
	TemporalNamespace string `mapstructure:"temporal_namespace"`
	TemporalDisabled  bool   `mapstructure:"temporal_disabled"`
	PageSize          int    `mapstructure:"page_size"`
	MaxPageSize       int    `mapstructure:"max_page_size"`
	LogLevel          string `mapstructure:"log_level"`
	MetricsEnabled    bool   `mapstructure:"metrics_enabled"`
	Environment       string `mapstructure:"environment"`
}

// configKeys maps every setting onto the environment variable that overrides it.
var configKeys = map[string]string{
	"port":               "PORT",
	"postgres_dsn":       "POSTGRES_DSN",
	"temporal_address":   "TEMPORAL_ADDRESS",
	"temporal_namespace": "TEMPORAL_NAMESPACE",
	"temporal_disabled":  "TEMPORAL_DISABLED",
	"page_size":          "PAGE_SIZE",
	"max_page_size":      "MAX_PAGE_SIZE",
	"log_level":          "LOG_LEVEL",
	"metrics_enabled":    "METRICS_ENABLED",
	"environment":        "ENVIRONMENT",
}

// LoadConfig applies defaults, then the optional YAML file at path, then the environment,
// and validates the result. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("temporal_address", client.DefaultHostPort)
	v.SetDefault("temporal_namespace", client.DefaultNamespace)
	v.SetDefault("temporal_disabled", false)
	v.SetDefault("page_size", 10)
	v.SetDefault("max_page_size", 100)
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("environment", "local")

	for key, env := range configKeys {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.PostgresDSN = strings.TrimSpace(cfg.PostgresDSN)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the processes cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, errors.New("PAGE_SIZE must be a positive integer"))
	}
	if c.MaxPageSize <= 0 {
		errs = append(errs, errors.New("MAX_PAGE_SIZE must be a positive integer"))
	} else if c.PageSize > c.MaxPageSize {
		errs = append(errs, errors.New("PAGE_SIZE must not exceed MAX_PAGE_SIZE"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
