// Package config loads runtime configuration from an optional YAML file,
// a .env file and TRENDLAB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/logging"
)

// EnvPrefix is the prefix for environment overrides, e.g. TRENDLAB_HTTP_ADDR.
const EnvPrefix = "TRENDLAB"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
)

// Config is the full application configuration.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	Ranking   RankingConfig   `mapstructure:"ranking"`
	Trend     TrendConfig     `mapstructure:"trend"`
	Ingestion IngestionConfig `mapstructure:"ingestion"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Report    ReportConfig    `mapstructure:"report"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	Mode            string        `mapstructure:"mode"`
}

// StoreConfig selects the snapshot store. With the postgres backend a
// non-empty ClickhouseDSN moves history snapshots to ClickHouse.
type StoreConfig struct {
	Backend       string `mapstructure:"backend"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"`
	MySQLDSN      string `mapstructure:"mysql_dsn"`
	Seed          bool   `mapstructure:"seed"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// BucketConfig is one configured price bucket. A nil Max is open-ended.
type BucketConfig struct {
	Label string   `mapstructure:"label"`
	Min   float64  `mapstructure:"min"`
	Max   *float64 `mapstructure:"max"`
}

type RankingConfig struct {
	Platforms           []string       `mapstructure:"platforms"`
	PriceBuckets        []BucketConfig `mapstructure:"price_buckets"`
	AttributeSampleSize int            `mapstructure:"attribute_sample_size"`
	DefaultLimit        int            `mapstructure:"default_limit"`
}

type TrendConfig struct {
	TopCategories int `mapstructure:"top_categories"`
	DefaultDays   int `mapstructure:"default_days"`
}

type IngestionConfig struct {
	FeedURL           string        `mapstructure:"feed_url"`
	Workers           int           `mapstructure:"workers"`
	BatchSize         int           `mapstructure:"batch_size"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
	MaxReconnectDelay time.Duration `mapstructure:"max_reconnect_delay"`
}

// ReportConfig schedules report files written by the server.
// A zero Interval disables the schedule.
type ReportConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	OutputDir string        `mapstructure:"output_dir"`
	Formats   []string      `mapstructure:"formats"`
	Platforms []string      `mapstructure:"platforms"`
	Days      int           `mapstructure:"days"`
}

type LLMConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration. path may be empty, in which case only defaults,
// .env and environment variables apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyFallbacks()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	cfg.applyFallbacks()
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.mode", "release")

	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("store.clickhouse_dsn", "")
	v.SetDefault("store.mysql_dsn", "")
	v.SetDefault("store.seed", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/trendlab.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 10)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("ranking.platforms", []string{domain.PlatformTikTok, domain.PlatformAmazon, domain.PlatformShopee})
	v.SetDefault("ranking.attribute_sample_size", 50)
	v.SetDefault("ranking.default_limit", 20)

	v.SetDefault("trend.top_categories", 5)
	v.SetDefault("trend.default_days", 30)

	v.SetDefault("ingestion.feed_url", "")
	v.SetDefault("ingestion.workers", 5)
	v.SetDefault("ingestion.batch_size", 50)
	v.SetDefault("ingestion.reconnect_delay", time.Second)
	v.SetDefault("ingestion.max_reconnect_delay", 30*time.Second)

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", 20*time.Second)

	v.SetDefault("report.interval", time.Duration(0))
	v.SetDefault("report.output_dir", "output")
	v.SetDefault("report.formats", []string{"markdown"})
	v.SetDefault("report.platforms", []string{""})
	v.SetDefault("report.days", 30)
}

// applyFallbacks replaces out-of-range numeric settings with defaults.
func (c *Config) applyFallbacks() {
	if c.Ranking.AttributeSampleSize <= 0 {
		c.Ranking.AttributeSampleSize = 50
	}
	if c.Ranking.DefaultLimit <= 0 {
		c.Ranking.DefaultLimit = 20
	}
	if len(c.Ranking.Platforms) == 0 {
		c.Ranking.Platforms = []string{domain.PlatformTikTok, domain.PlatformAmazon, domain.PlatformShopee}
	}
	for i, p := range c.Ranking.Platforms {
		c.Ranking.Platforms[i] = strings.ToLower(strings.TrimSpace(p))
	}
	if c.Trend.TopCategories <= 0 {
		c.Trend.TopCategories = 5
	}
	if c.Trend.DefaultDays <= 0 {
		c.Trend.DefaultDays = 30
	}
	if c.Ingestion.Workers <= 0 {
		c.Ingestion.Workers = 5
	}
	if c.Ingestion.BatchSize <= 0 {
		c.Ingestion.BatchSize = 50
	}
	c.Store.Backend = strings.ToLower(c.Store.Backend)
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("store.postgres_dsn is required for postgres backend")
		}
	case BackendMySQL:
		if c.Store.MySQLDSN == "" {
			return errors.New("store.mysql_dsn is required for mysql backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.LLM.Enabled && c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required when llm is enabled")
	}
	return nil
}

// Buckets converts configured buckets to domain buckets. Validation and
// fallback to defaults happen in the ranking engine.
func (r RankingConfig) Buckets() []domain.PriceBucket {
	if len(r.PriceBuckets) == 0 {
		return nil
	}
	out := make([]domain.PriceBucket, 0, len(r.PriceBuckets))
	for _, b := range r.PriceBuckets {
		bucket := domain.PriceBucket{Label: b.Label, Range: domain.PriceRange{Min: b.Min}}
		if b.Max != nil {
			upper := *b.Max
			bucket.Range.Max = &upper
		}
		out = append(out, bucket)
	}
	return out
}

// LoggingOptions maps the log section to logging options.
func (l LogConfig) LoggingOptions() logging.Options {
	return logging.Options{
		Level:      l.Level,
		Format:     l.Format,
		Output:     l.Output,
		FilePath:   l.FilePath,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// LookupEnv reports an environment value, used by cmd flag defaults.
func LookupEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
