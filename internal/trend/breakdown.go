package trend

import (
	"context"
	"sort"
	"time"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/scoring"
)

// Breakdown groupings.
const (
	GroupByCategory = "category"
	GroupByPlatform = "platform"
	GroupByTotal    = "total"
)

// unknownKey labels snapshots without a value for the grouping dimension.
const unknownKey = "unknown"

// CategoryTrend pivots daily summed sales into a date x category matrix over
// the continuous window, missing days filled with 0. Only the top categories
// by total volume are kept (ties by name); totals cover kept categories only.
func (a *Analyzer) CategoryTrend(ctx context.Context, platform string, days int) domain.Breakdown {
	defer a.metrics.ObserveOperation(OpCategoryTrend, time.Now())

	period := a.window(days)
	snaps, ok := a.load(ctx, OpCategoryTrend, historyFilter(domain.TrendScope{Platform: platform}, period))
	if !ok {
		return emptyBreakdown(GroupByCategory, period)
	}
	return buildBreakdown(snaps, GroupByCategory, period, a.cfg.TopCategories)
}

// PlatformTrend pivots daily summed sales into a date x platform matrix.
func (a *Analyzer) PlatformTrend(ctx context.Context, category string, days int) domain.Breakdown {
	defer a.metrics.ObserveOperation(OpPlatformTrend, time.Now())

	period := a.window(days)
	snaps, ok := a.load(ctx, OpPlatformTrend, historyFilter(domain.TrendScope{Category: category}, period))
	if !ok {
		return emptyBreakdown(GroupByPlatform, period)
	}
	return buildBreakdown(snaps, GroupByPlatform, period, 0)
}

// SalesBreakdown pivots sales by the dimension the scope leaves open:
// platform only groups by category, category only groups by platform, both
// yield a single total column and neither groups by platform.
func (a *Analyzer) SalesBreakdown(ctx context.Context, platform, category string, days int) domain.Breakdown {
	defer a.metrics.ObserveOperation(OpSalesBreakdown, time.Now())

	groupBy := breakdownDimension(platform, category)
	period := a.window(days)
	snaps, ok := a.load(ctx, OpSalesBreakdown, historyFilter(domain.TrendScope{Platform: platform, Category: category}, period))
	if !ok {
		return emptyBreakdown(groupBy, period)
	}
	return buildBreakdown(snaps, groupBy, period, 0)
}

func breakdownDimension(platform, category string) string {
	switch {
	case platform != "" && category == "":
		return GroupByCategory
	case platform == "" && category != "":
		return GroupByPlatform
	case platform != "" && category != "":
		return GroupByTotal
	default:
		return GroupByPlatform
	}
}

func emptyBreakdown(groupBy string, period domain.Period) domain.Breakdown {
	return domain.Breakdown{
		GroupBy:     groupBy,
		Dates:       []time.Time{},
		Keys:        []string{},
		Series:      map[string][]float64{},
		Totals:      map[string]float64{},
		GrowthRates: map[string]float64{},
		Total:       []float64{},
		Period:      period,
	}
}

// buildBreakdown sums sales per (day, key). topN > 0 keeps only the topN keys
// by total. A window without snapshots yields an empty breakdown.
func buildBreakdown(snaps []*domain.HistorySnapshot, groupBy string, period domain.Period, topN int) domain.Breakdown {
	b := emptyBreakdown(groupBy, period)
	if len(snaps) == 0 {
		return b
	}

	dates := dayRange(period)
	idx := dayIndex(dates)
	b.Dates = dates

	series := make(map[string][]float64)
	totals := make(map[string]float64)
	for _, s := range snaps {
		i, inWindow := idx[dayOf(s.Date)]
		if !inWindow {
			continue
		}
		key := keyOf(s, groupBy)
		row, ok := series[key]
		if !ok {
			row = make([]float64, len(dates))
			series[key] = row
		}
		row[i] += float64(s.SalesVolume)
		totals[key] += float64(s.SalesVolume)
	}

	keys := rankKeys(totals)
	if topN > 0 && len(keys) > topN {
		keys = keys[:topN]
	}

	b.Total = make([]float64, len(dates))
	for _, key := range keys {
		row := series[key]
		for i, v := range row {
			b.Total[i] += v
		}
		if groupBy == GroupByTotal {
			continue
		}
		b.Keys = append(b.Keys, key)
		b.Series[key] = row
		b.Totals[key] = totals[key]
		b.GrowthRates[key] = scoring.GrowthRate(row[0], row[len(row)-1])
	}
	b.GrowthRate = scoring.GrowthRate(b.Total[0], b.Total[len(b.Total)-1])
	return b
}

func keyOf(s *domain.HistorySnapshot, groupBy string) string {
	var key string
	switch groupBy {
	case GroupByCategory:
		key = s.Category
	case GroupByPlatform:
		key = s.Platform
	default:
		return GroupByTotal
	}
	if key == "" {
		return unknownKey
	}
	return key
}

// rankKeys orders keys by total descending, then name ascending.
func rankKeys(totals map[string]float64) []string {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if totals[keys[i]] != totals[keys[j]] {
			return totals[keys[i]] > totals[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
