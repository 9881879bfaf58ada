// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Enrichment providers.
const (
	EnrichmentNone      = "none"
	EnrichmentHeuristic = "heuristic"
	EnrichmentRemote    = "remote"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Sources    SourcesConfig    `mapstructure:"sources"`
	Collector  CollectorConfig  `mapstructure:"collector"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Storage    StorageConfig    `mapstructure:"storage"`
	DB         DBConfig         `mapstructure:"db"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	PubSub     PubSubConfig     `mapstructure:"pubsub"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// SourcesConfig points at the source registry. An empty path uses the embedded default.
type SourcesConfig struct {
	Path string `mapstructure:"path"`
}

// CollectorConfig governs collection fan-out and per-source caps.
type CollectorConfig struct {
	HTMLConcurrency int `mapstructure:"html_concurrency"`
	FeedConcurrency int `mapstructure:"feed_concurrency"`
	HTMLDelayMs     int `mapstructure:"html_delay_ms"`
	FeedDelayMs     int `mapstructure:"feed_delay_ms"`
	HTMLLimit       int `mapstructure:"html_limit"`
	FeedLimit       int `mapstructure:"feed_limit"`
}

// HTTPConfig configures the page transport.
type HTTPConfig struct {
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RatePerHost    float64 `mapstructure:"rate_per_host"`
	Burst          int     `mapstructure:"burst"`
}

// StorageConfig selects the article store.
type StorageConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DBConfig controls access to Postgres.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int    `mapstructure:"max_conns"`
}

// EnrichmentConfig selects the enrichment service.
type EnrichmentConfig struct {
	Provider       string `mapstructure:"provider"`
	RemoteURL      string `mapstructure:"remote_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// WorkerConfig tunes the enrichment consume loop.
type WorkerConfig struct {
	DequeueTimeoutMs int `mapstructure:"dequeue_timeout_ms"`
	IdleSleepMs      int `mapstructure:"idle_sleep_ms"`
}

// SchedulerConfig controls periodic collection.
type SchedulerConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
}

// PubSubConfig holds metadata for publish-subscribe notifications. An empty
// project keeps events in memory.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
	v.SetDefault("sources.path", "")
	v.SetDefault("collector.html_concurrency", 5)
	v.SetDefault("collector.feed_concurrency", 10)
	v.SetDefault("collector.html_delay_ms", 1000)
	v.SetDefault("collector.feed_delay_ms", 500)
	v.SetDefault("collector.html_limit", 15)
	v.SetDefault("collector.feed_limit", 20)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.rate_per_host", 2.0)
	v.SetDefault("http.burst", 2)
	v.SetDefault("storage.driver", StorageSQLite)
	v.SetDefault("storage.sqlite_path", "data/news.db")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("enrichment.provider", EnrichmentHeuristic)
	v.SetDefault("enrichment.remote_url", "")
	v.SetDefault("enrichment.timeout_seconds", 20)
	v.SetDefault("worker.dequeue_timeout_ms", 1000)
	v.SetDefault("worker.idle_sleep_ms", 100)
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.interval_minutes", 30)
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	positive := []struct {
		key   string
		value int
	}{
		{"collector.html_concurrency", c.Collector.HTMLConcurrency},
		{"collector.feed_concurrency", c.Collector.FeedConcurrency},
		{"collector.html_limit", c.Collector.HTMLLimit},
		{"collector.feed_limit", c.Collector.FeedLimit},
		{"http.timeout_seconds", c.HTTP.TimeoutSeconds},
		{"http.burst", c.HTTP.Burst},
		{"enrichment.timeout_seconds", c.Enrichment.TimeoutSeconds},
		{"worker.dequeue_timeout_ms", c.Worker.DequeueTimeoutMs},
		{"worker.idle_sleep_ms", c.Worker.IdleSleepMs},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be > 0", p.key)
		}
	}
	if c.Collector.HTMLDelayMs < 0 || c.Collector.FeedDelayMs < 0 {
		return fmt.Errorf("collector delays must be >= 0")
	}
	if c.HTTP.RatePerHost <= 0 {
		return fmt.Errorf("http.rate_per_host must be > 0")
	}
	if c.Scheduler.Enabled && c.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler.interval_minutes must be > 0 when the scheduler is enabled")
	}

	switch c.Storage.Driver {
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path must be set for the sqlite driver")
		}
	case StoragePostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set for the postgres driver")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Enrichment.Provider {
	case EnrichmentNone, EnrichmentHeuristic:
	case EnrichmentRemote:
		if c.Enrichment.RemoteURL == "" {
			return fmt.Errorf("enrichment.remote_url must be set for the remote provider")
		}
	default:
		return fmt.Errorf("unknown enrichment.provider %q", c.Enrichment.Provider)
	}
	return nil
}

// FetchTimeout is the per-request transport timeout.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// EnrichmentTimeout bounds remote enrichment calls.
func (c Config) EnrichmentTimeout() time.Duration {
	return time.Duration(c.Enrichment.TimeoutSeconds) * time.Second
}

// SchedulerInterval is the gap between scheduled runs.
func (c Config) SchedulerInterval() time.Duration {
	return time.Duration(c.Scheduler.IntervalMinutes) * time.Minute
}
