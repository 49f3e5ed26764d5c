package app

import (
	"log/slog"
	"time"

	"ecommerce-trend-lab/internal/analytics"
	"ecommerce-trend-lab/internal/api"
	"ecommerce-trend-lab/internal/config"
	"ecommerce-trend-lab/internal/ingestion"
	"ecommerce-trend-lab/internal/llm"
	"ecommerce-trend-lab/internal/observability"
	"ecommerce-trend-lab/internal/ranking"
	"ecommerce-trend-lab/internal/reporting"
	"ecommerce-trend-lab/internal/summary"
	"ecommerce-trend-lab/internal/trend"
)

// Components are the analysis services built over one set of stores.
type Components struct {
	Rankings  *ranking.Engine
	Trends    *trend.Analyzer
	Summaries *summary.Composer
	Analytics *analytics.Service
	Reports   *reporting.Generator
}

// NewComponents builds the analysis services. now may be nil.
func NewComponents(cfg *config.Config, stores *Stores, logger *slog.Logger, metrics *observability.Metrics, now func() time.Time) *Components {
	if now == nil {
		now = time.Now
	}

	rcfg := ranking.DefaultConfig()
	rcfg.Platforms = cfg.Ranking.Platforms
	rcfg.AttributeSampleSize = cfg.Ranking.AttributeSampleSize
	rcfg.DefaultLimit = cfg.Ranking.DefaultLimit
	if buckets := cfg.Ranking.Buckets(); len(buckets) > 0 {
		rcfg.PriceBuckets = buckets
	}

	engine := ranking.NewEngine(stores.Products, stores.History, rcfg,
		ranking.WithClock(now), ranking.WithLogger(logger), ranking.WithMetrics(metrics))
	analyzer := trend.NewAnalyzer(stores.History,
		trend.Config{TopCategories: cfg.Trend.TopCategories, DefaultDays: cfg.Trend.DefaultDays},
		trend.WithClock(now), trend.WithLogger(logger), trend.WithMetrics(metrics))
	composer := summary.NewComposer(analyzer, engine, 0, logger)
	stats := analytics.NewService(stores.Products)

	return &Components{
		Rankings:  engine,
		Trends:    analyzer,
		Summaries: composer,
		Analytics: stats,
		Reports: reporting.NewGenerator(composer, engine, analyzer, stats).
			WithClock(now).
			WithMetrics(metrics),
	}
}

// RouterDependencies adapts the components for api.NewRouter.
// The assistant is only wired when the LLM is enabled.
func (c *Components) RouterDependencies(cfg *config.Config, stores *Stores, logger *slog.Logger, metrics *observability.Metrics) api.Dependencies {
	var assistant api.Assistant
	if client := newLLMClient(cfg); client != nil {
		assistant = llm.NewAdvisor(client, c.Rankings, c.Summaries, stores.Products, logger)
	}
	return api.Dependencies{
		Products:    stores.Products,
		Rankings:    c.Rankings,
		Trends:      c.Trends,
		Summaries:   c.Summaries,
		Analytics:   c.Analytics,
		Assistant:   assistant,
		Logger:      logger,
		Metrics:     metrics,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	}
}

// NewIngestionRunner builds the feed pipeline: websocket source, cleaner,
// optional LLM enrichment and recorder.
func NewIngestionRunner(cfg *config.Config, stores *Stores, logger *slog.Logger, metrics *observability.Metrics) *ingestion.Runner {
	wsCfg := ingestion.DefaultWSSourceConfig()
	if cfg.Ingestion.ReconnectDelay > 0 {
		wsCfg.ReconnectDelay = cfg.Ingestion.ReconnectDelay
	}
	if cfg.Ingestion.MaxReconnectDelay > 0 {
		wsCfg.MaxReconnectDelay = cfg.Ingestion.MaxReconnectDelay
	}

	var annotator ingestion.Annotator
	if client := newLLMClient(cfg); client != nil {
		annotator = client
	}

	return ingestion.NewRunner(ingestion.RunnerOptions{
		Source:   ingestion.NewWSSource(cfg.Ingestion.FeedURL, &wsCfg, logger, metrics),
		Cleaner:  ingestion.NewCleaner(nil),
		Enricher: ingestion.NewEnricher(annotator, cfg.Ingestion.Workers, logger, metrics),
		Recorder: ingestion.NewRecorder(stores.Products, stores.History, metrics),
		Logger:   logger,
		Metrics:  metrics,
	})
}

func newLLMClient(cfg *config.Config) *llm.Client {
	if !cfg.LLM.Enabled {
		return nil
	}
	return llm.NewClient(llm.Config{
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		Timeout:    cfg.LLM.Timeout,
		MaxRetries: 3,
	})
}
