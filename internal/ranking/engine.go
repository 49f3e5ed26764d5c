// Package ranking produces ordered top-N product views over the current
// record set: hot, rising, per category, per price bucket, per platform,
// value-for-money and popular attributes.
//
// Every public operation degrades to an empty result on store failure.
// Failures are logged and counted in degraded_results_total; callers get
// no error.
package ranking

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/observability"
	"ecommerce-trend-lab/internal/scoring"
	"ecommerce-trend-lab/internal/storage"
)

// Operation names used for logs and metrics.
const (
	OpHotProducts       = "hot_products"
	OpRisingProducts    = "rising_products"
	OpCategoryRankings  = "category_rankings"
	OpPriceRange        = "price_range_rankings"
	OpCrossPlatform     = "cross_platform_comparison"
	OpPopularAttributes = "popular_attributes"
	OpValueRanking      = "value_ranking"
)

const defaultRisingDays = 7

// Engine computes rankings. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	products storage.ProductStore
	history  storage.HistoryStore
	cfg      Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logging.Component(logger, "ranking") }
}

// WithMetrics sets the metrics sink. Defaults to observability.DefaultMetrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates a ranking engine.
func NewEngine(products storage.ProductStore, history storage.HistoryStore, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		products: products,
		history:  history,
		cfg:      cfg.normalized(),
		logger:   logging.Component(nil, "ranking"),
		metrics:  observability.DefaultMetrics,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// HotProducts returns products ordered by popularity descending. Ties keep
// storage order. The time range is resolved and logged but does not filter,
// since current records only carry their latest state.
func (e *Engine) HotProducts(ctx context.Context, platform, category, timeRange string, limit int) []domain.RankingEntry {
	defer e.metrics.ObserveOperation(OpHotProducts, time.Now())

	tr := ParseTimeRange(timeRange)
	records, err := e.products.QueryCurrent(ctx, domain.ProductFilter{Platform: platform, Category: category})
	if err != nil {
		e.degrade(ctx, OpHotProducts, err)
		return []domain.RankingEntry{}
	}

	entries := e.rankByPopularity(ctx, records, e.limit(limit))
	e.logger.InfoContext(ctx, "generated hot products ranking",
		"platform", platform,
		"category", category,
		"time_range", tr.Token,
		"window_start", tr.Since(e.now()).UTC().Format(time.RFC3339),
		"items", len(entries),
	)
	return entries
}

// rankByPopularity scores valid records, stable-sorts them by popularity
// descending, truncates to limit and assigns 1-based ranks.
func (e *Engine) rankByPopularity(ctx context.Context, records []*domain.ProductRecord, limit int) []domain.RankingEntry {
	scored := e.scoreRecords(ctx, records)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].PopularityScore > scored[j].PopularityScore
	})
	return assignRanks(scored, limit)
}

// scoreRecords drops malformed records and recomputes derived fields on copies.
func (e *Engine) scoreRecords(ctx context.Context, records []*domain.ProductRecord) []domain.RankingEntry {
	out := make([]domain.RankingEntry, 0, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			e.skipMalformed(ctx, r, err)
			continue
		}
		p := r.Clone()
		scoring.Apply(p)
		out = append(out, domain.RankingEntry{ProductRecord: *p})
	}
	return out
}

func assignRanks(entries []domain.RankingEntry, limit int) []domain.RankingEntry {
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func (e *Engine) limit(n int) int {
	if n <= 0 {
		return e.cfg.DefaultLimit
	}
	return n
}

func (e *Engine) degrade(ctx context.Context, op string, err error) {
	e.logger.ErrorContext(ctx, "ranking degraded to empty result", "operation", op, "error", err)
	e.metrics.RecordDegraded(op)
}

func (e *Engine) skipMalformed(ctx context.Context, r *domain.ProductRecord, err error) {
	if r == nil {
		e.logger.WarnContext(ctx, "skipping nil product record")
		return
	}
	e.logger.WarnContext(ctx, "skipping malformed product record",
		"platform", r.Platform,
		"product_id", r.ProductID,
		"error", err,
	)
}
