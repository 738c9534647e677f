package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
// The values are read by viper from a config file or environment
// variables; environment variables take precedence.
type Config struct {
	Hypixel    HypixelConfig
	Postgres   PostgresConfig
	Clickhouse ClickhouseConfig
	Valuation  ValuationConfig
	Prices     PricesConfig
	Pipeline   PipelineConfig
	Metrics    MetricsConfig
}

// HypixelConfig defines the auction API settings.
type HypixelConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// PostgresConfig defines the document store connection settings.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	PoolSize int    `mapstructure:"pool_size"`
}

// ClickhouseConfig defines the analytics store connection settings.
// An empty DSN disables cycle report archiving.
type ClickhouseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ValuationConfig defines the external valuation service settings.
type ValuationConfig struct {
	URL             string `mapstructure:"url"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
	CacheMaxEntries int    `mapstructure:"cache_max_entries"`
}

// PricesConfig defines the price snapshot settings.
type PricesConfig struct {
	CacheDir           string `mapstructure:"cache_dir"`
	RefreshEveryCycles int    `mapstructure:"refresh_every_cycles"`
}

// PipelineConfig defines the ingestion scheduling settings.
type PipelineConfig struct {
	MaxConcurrentPages int `mapstructure:"max_concurrent_pages"`
	CycleDelaySeconds  int `mapstructure:"cycle_delay_seconds"`
}

// MetricsConfig defines the observability endpoint settings.
// An empty Addr disables the metrics server.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoadConfig reads configuration from a config file in path plus
// environment variables. A missing config file is not an error as long
// as the required values arrive via environment.
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// setDefaults registers defaults for every key so AutomaticEnv can see
// them even when the config file omits the section.
func setDefaults(v *viper.Viper) {
	v.SetDefault("hypixel.base_url", "https://api.hypixel.net")
	v.SetDefault("hypixel.api_key", "")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.pool_size", 0)
	v.SetDefault("clickhouse.dsn", "")
	v.SetDefault("valuation.url", "http://localhost:5000")
	v.SetDefault("valuation.timeout_seconds", 30)
	v.SetDefault("valuation.cache_ttl_seconds", 300)
	v.SetDefault("valuation.cache_max_entries", 100000)
	v.SetDefault("prices.cache_dir", "cache")
	v.SetDefault("prices.refresh_every_cycles", 10)
	v.SetDefault("pipeline.max_concurrent_pages", 10)
	v.SetDefault("pipeline.cycle_delay_seconds", 30)
	v.SetDefault("metrics.addr", "")
}

// Validate checks that required values are present and numeric settings
// are sane.
func (c Config) Validate() error {
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Valuation.URL == "" {
		return errors.New("valuation.url is required")
	}
	if c.Pipeline.MaxConcurrentPages <= 0 {
		return errors.New("pipeline.max_concurrent_pages must be positive")
	}
	if c.Valuation.TimeoutSeconds <= 0 {
		return errors.New("valuation.timeout_seconds must be positive")
	}
	if c.Prices.RefreshEveryCycles <= 0 {
		return errors.New("prices.refresh_every_cycles must be positive")
	}
	return nil
}
