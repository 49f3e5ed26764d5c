package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, []string{"tiktok", "amazon", "shopee"}, cfg.Ranking.Platforms)
	assert.Equal(t, 50, cfg.Ranking.AttributeSampleSize)
	assert.Equal(t, 5, cfg.Trend.TopCategories)
	assert.Equal(t, 5, cfg.Ingestion.Workers)
	assert.Equal(t, 20*time.Second, cfg.LLM.Timeout)
	assert.Nil(t, cfg.Ranking.Buckets())
	assert.Zero(t, cfg.Report.Interval)
	assert.Equal(t, "output", cfg.Report.OutputDir)
	assert.Equal(t, []string{"markdown"}, cfg.Report.Formats)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trendlab.yaml")
	content := `
http:
  addr: ":9090"
store:
  backend: POSTGRES
  postgres_dsn: "postgres://localhost/trends"
ranking:
  platforms: ["Amazon", " shopee "]
  price_buckets:
    - label: cheap
      min: 0
      max: 100
    - label: premium
      min: 100
trend:
  top_categories: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("TRENDLAB_LOG_LEVEL", "debug")
	t.Setenv("TRENDLAB_INGESTION_WORKERS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, []string{"amazon", "shopee"}, cfg.Ranking.Platforms)
	assert.Equal(t, 5, cfg.Trend.TopCategories)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Ingestion.Workers)

	buckets := cfg.Ranking.Buckets()
	require.Len(t, buckets, 2)
	assert.Equal(t, "cheap", buckets[0].Label)
	require.NotNil(t, buckets[0].Range.Max)
	assert.Equal(t, 100.0, *buckets[0].Range.Max)
	assert.Nil(t, buckets[1].Range.Max)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"memory ok", func(c *Config) {}, false},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = BackendPostgres }, true},
		{"mysql with dsn", func(c *Config) {
			c.Store.Backend = BackendMySQL
			c.Store.MySQLDSN = "root:pw@tcp(localhost:3306)/trends"
		}, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "sqlite" }, true},
		{"llm without key", func(c *Config) { c.LLM.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogConfig_LoggingOptions(t *testing.T) {
	cfg := Default()
	opts := cfg.Log.LoggingOptions()
	assert.Equal(t, "info", opts.Level)
	assert.Equal(t, "stdout", opts.Output)
	assert.Equal(t, 100, opts.MaxSizeMB)
}
