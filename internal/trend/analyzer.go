// Package trend computes time-bucketed aggregates, growth rates and
// direction classifications over product history.
//
// All operations are pure functions of (clock, window, store contents).
// Store failures degrade to empty results and are counted in
// degraded_results_total.
package trend

import (
	"context"
	"log/slog"
	"time"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/logging"
	"ecommerce-trend-lab/internal/observability"
	"ecommerce-trend-lab/internal/storage"
)

// Operation names used for logs and metrics.
const (
	OpSalesTrend     = "sales_trend"
	OpRatingTrend    = "rating_trend"
	OpPriceTrend     = "price_trend"
	OpCategoryTrend  = "category_trend"
	OpPlatformTrend  = "platform_trend"
	OpSalesBreakdown = "sales_breakdown"
	OpSummary        = "trend_summary"
)

// Thresholds for labels and directions, in percent.
const (
	strongGrowthThreshold = 20.0
	declineThreshold      = -10.0
	explosiveThreshold    = 50.0
	priceRisingThreshold  = 10.0
	priceFallingThreshold = -10.0
)

// Config is the explicit configuration of the analyzer.
type Config struct {
	// TopCategories bounds category breakdowns.
	TopCategories int
	// DefaultDays replaces non-positive windows.
	DefaultDays int
}

// DefaultConfig keeps the top 5 categories over a 30 day window.
func DefaultConfig() Config {
	return Config{TopCategories: 5, DefaultDays: 30}
}

// Analyzer computes trends from a history store. Safe for concurrent use.
type Analyzer struct {
	history storage.HistoryStore
	cfg     Config
	logger  *slog.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock sets the time source. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = logging.Component(logger, "trend") }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// NewAnalyzer creates a trend analyzer.
func NewAnalyzer(history storage.HistoryStore, cfg Config, opts ...Option) *Analyzer {
	if cfg.TopCategories <= 0 {
		cfg.TopCategories = DefaultConfig().TopCategories
	}
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = DefaultConfig().DefaultDays
	}
	a := &Analyzer{
		history: history,
		cfg:     cfg,
		logger:  logging.Component(nil, "trend"),
		metrics: observability.DefaultMetrics,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// window resolves [now - days, now].
func (a *Analyzer) window(days int) domain.Period {
	if days <= 0 {
		days = a.cfg.DefaultDays
	}
	end := a.now().UTC()
	return domain.Period{Start: end.AddDate(0, 0, -days), End: end}
}

// load fetches valid snapshots for the filter. ok is false on store failure.
func (a *Analyzer) load(ctx context.Context, op string, filter domain.HistoryFilter) ([]*domain.HistorySnapshot, bool) {
	snaps, err := a.history.QueryHistory(ctx, filter)
	if err != nil {
		a.logger.ErrorContext(ctx, "trend degraded to empty result", "operation", op, "error", err)
		a.metrics.RecordDegraded(op)
		return nil, false
	}

	valid := make([]*domain.HistorySnapshot, 0, len(snaps))
	for _, s := range snaps {
		if err := s.Validate(); err != nil {
			a.logger.WarnContext(ctx, "skipping malformed history snapshot", "operation", op, "error", err)
			continue
		}
		valid = append(valid, s)
	}
	return valid, true
}

func historyFilter(scope domain.TrendScope, period domain.Period) domain.HistoryFilter {
	return domain.HistoryFilter{
		ProductID: scope.ProductID,
		Platform:  scope.Platform,
		Category:  scope.Category,
		Since:     period.Start,
		Until:     period.End,
	}
}

func directionOf(first, last float64) domain.Direction {
	switch {
	case last > first:
		return domain.DirectionRising
	case last < first:
		return domain.DirectionFalling
	default:
		return domain.DirectionStable
	}
}

func priceDirection(changeRate float64) domain.Direction {
	switch {
	case changeRate > priceRisingThreshold:
		return domain.DirectionRising
	case changeRate < priceFallingThreshold:
		return domain.DirectionFalling
	default:
		return domain.DirectionStable
	}
}

// GrowthLabel classifies overall sales growth.
func GrowthLabel(growth float64) string {
	switch {
	case growth > strongGrowthThreshold:
		return domain.LabelStrongGrowth
	case growth < declineThreshold:
		return domain.LabelDecline
	default:
		return domain.LabelStable
	}
}

// IsExplosive reports whether a category growth rate is flagged.
func IsExplosive(growth float64) bool {
	return growth > explosiveThreshold
}
