package reporting

import (
	"context"
	"fmt"
	"time"

	"ecommerce-trend-lab/internal/analytics"
	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/observability"
	"ecommerce-trend-lab/internal/summary"
)

const defaultLimit = 10

// Format names an output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatExcel    Format = "xlsx"
)

// Summaries composes trend summaries.
type Summaries interface {
	Compose(ctx context.Context, platform string, days int) summary.Summary
}

// Rankings produces the ranking lists included in a report.
type Rankings interface {
	HotProducts(ctx context.Context, platform, category, timeRange string, limit int) []domain.RankingEntry
	RisingProducts(ctx context.Context, platform, category string, days, limit int) []domain.RankingEntry
	ValueRanking(ctx context.Context, platform, category string, limit int) []domain.RankingEntry
}

// CategoryTrends produces the category breakdown.
type CategoryTrends interface {
	CategoryTrend(ctx context.Context, platform string, days int) domain.Breakdown
}

// PlatformStatsSource aggregates current records per platform.
type PlatformStatsSource interface {
	PlatformStats(ctx context.Context, category string) ([]analytics.PlatformStats, error)
}

// Generator produces reports from the analysis components.
type Generator struct {
	summaries Summaries
	rankings  Rankings
	trends    CategoryTrends
	stats     PlatformStatsSource
	limit     int
	metrics   *observability.Metrics
	now       func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. stats may be nil.
func NewGenerator(summaries Summaries, rankings Rankings, trends CategoryTrends, stats PlatformStatsSource) *Generator {
	return &Generator{
		summaries: summaries,
		rankings:  rankings,
		trends:    trends,
		stats:     stats,
		limit:     defaultLimit,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithLimit sets the number of entries per ranking list.
func (g *Generator) WithLimit(limit int) *Generator {
	if limit > 0 {
		g.limit = limit
	}
	return g
}

// WithMetrics counts rendered reports.
func (g *Generator) WithMetrics(m *observability.Metrics) *Generator {
	g.metrics = m
	return g
}

// Generate builds a report over the last days days. Analysis parts degrade
// to empty sections; only the platform stats query can fail.
func (g *Generator) Generate(ctx context.Context, platform string, days int) (*Report, error) {
	if days <= 0 {
		days = 30
	}

	r := &Report{
		GeneratedAt: g.now(),
		Platform:    platform,
		Days:        days,
		Summary:     g.summaries.Compose(ctx, platform, days),
		Categories:  categoryRows(g.trends.CategoryTrend(ctx, platform, days)),
		Hot:         rowsFromEntries(g.rankings.HotProducts(ctx, platform, "", "", g.limit)),
		Rising:      rowsFromEntries(g.rankings.RisingProducts(ctx, platform, "", days, g.limit)),
		Value:       rowsFromEntries(g.rankings.ValueRanking(ctx, platform, "", g.limit)),
	}

	if g.stats != nil {
		stats, err := g.stats.PlatformStats(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("platform stats: %w", err)
		}
		for _, s := range stats {
			if platform == "" || s.Platform == platform {
				r.Platforms = append(r.Platforms, s)
			}
		}
	}

	return r, nil
}

// Render encodes r in the given format.
func (g *Generator) Render(r *Report, format Format) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch format {
	case FormatMarkdown, "md", "":
		format = FormatMarkdown
		out = []byte(RenderMarkdown(r))
	case FormatCSV:
		out = []byte(RenderCSV(r.Hot))
	case FormatExcel, "excel":
		format = FormatExcel
		out, err = RenderExcel(r)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
	if err != nil {
		return nil, err
	}
	g.metrics.RecordReport(string(format))
	return out, nil
}
