// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Session   SessionConfig   `mapstructure:"session"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"` // development, staging, production
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`
}

// ExtractorConfig holds the extraction service client settings.
type ExtractorConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
	CB      CBConfig      `mapstructure:"circuit_breaker"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// CacheConfig holds extraction cache settings.
type CacheConfig struct {
	MaxItems   int           `mapstructure:"max_items"`
	TrimTarget int           `mapstructure:"trim_target"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`

	// ServiceTTL overrides DefaultTTL per streaming service, keyed by service id.
	ServiceTTL map[string]time.Duration `mapstructure:"service_ttl"`
}

// ServiceOverrides returns ServiceTTL keyed by numeric service id.
func (c *CacheConfig) ServiceOverrides() (map[int]time.Duration, error) {
	overrides := make(map[int]time.Duration, len(c.ServiceTTL))
	for k, ttl := range c.ServiceTTL {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("cache.service_ttl: invalid service id %q: %w", k, err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("cache.service_ttl: ttl for service %d must be positive", id)
		}
		overrides[id] = ttl
	}

	return overrides, nil
}

// SessionConfig holds play queue session settings.
type SessionConfig struct {
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
	FetchWait    time.Duration `mapstructure:"fetch_wait"` // upper bound for ?wait=true fetches
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func (c *Config) Validate() error {
	var errs []error

	if c.Extractor.BaseURL == "" {
		errs = append(errs, errors.New("extractor.base_url is required"))
	}
	if c.Cache.MaxItems <= 0 {
		errs = append(errs, errors.New("cache.max_items must be positive"))
	}
	if c.Cache.TrimTarget < 0 || c.Cache.TrimTarget >= c.Cache.MaxItems {
		errs = append(errs, fmt.Errorf("cache.trim_target must be in [0, %d)", c.Cache.MaxItems))
	}
	if c.Cache.DefaultTTL <= 0 {
		errs = append(errs, errors.New("cache.default_ttl must be positive"))
	}
	if _, err := c.Cache.ServiceOverrides(); err != nil {
		errs = append(errs, err)
	}
	if c.Session.IdleTimeout <= 0 || c.Session.ReapInterval <= 0 {
		errs = append(errs, errors.New("session.idle_timeout and session.reap_interval must be positive"))
	}

	return errors.Join(errs...)
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "media-queue-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)

	// Extractor defaults
	v.SetDefault("extractor.base_url", "http://localhost:8081")
	v.SetDefault("extractor.timeout", "10s")
	v.SetDefault("extractor.retry.max_attempts", 3)
	v.SetDefault("extractor.retry.wait_time", "1s")
	v.SetDefault("extractor.retry.max_wait_time", "5s")
	v.SetDefault("extractor.circuit_breaker.max_requests", 3)
	v.SetDefault("extractor.circuit_breaker.interval", "60s")
	v.SetDefault("extractor.circuit_breaker.timeout", "30s")
	v.SetDefault("extractor.circuit_breaker.failure_ratio", 0.5)

	// Cache defaults
	v.SetDefault("cache.max_items", 60)
	v.SetDefault("cache.trim_target", 30)
	v.SetDefault("cache.default_ttl", "1h")
	v.SetDefault("cache.service_ttl", map[string]any{"1": "5m"}) // SoundCloud

	// Session defaults
	v.SetDefault("session.idle_timeout", "30m")
	v.SetDefault("session.reap_interval", "1m")
	v.SetDefault("session.fetch_wait", "15s")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)
}
