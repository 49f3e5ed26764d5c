package ranking

import (
	"context"
	"sort"
	"time"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/scoring"
)

// RisingProducts ranks products by sales growth over the last days.
// Histories for all candidates are fetched in one query and grouped in
// memory. Products with fewer than two snapshots in the window keep a
// growth rate of 0.
func (e *Engine) RisingProducts(ctx context.Context, platform, category string, days, limit int) []domain.RankingEntry {
	defer e.metrics.ObserveOperation(OpRisingProducts, time.Now())

	if days <= 0 {
		days = defaultRisingDays
	}

	records, err := e.products.QueryCurrent(ctx, domain.ProductFilter{Platform: platform, Category: category})
	if err != nil {
		e.degrade(ctx, OpRisingProducts, err)
		return []domain.RankingEntry{}
	}
	if len(records) == 0 {
		return []domain.RankingEntry{}
	}

	// History is filtered by platform only; the candidate set carries the
	// category scope.
	snaps, err := e.history.QueryHistory(ctx, domain.HistoryFilter{
		Platform: platform,
		Since:    e.now().AddDate(0, 0, -days),
	})
	if err != nil {
		e.degrade(ctx, OpRisingProducts, err)
		return []domain.RankingEntry{}
	}
	series := e.groupHistory(ctx, snaps)

	entries := e.scoreRecords(ctx, records)
	for i := range entries {
		rate := growthOf(series[entries[i].Key()])
		entries[i].GrowthRate = &rate
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return *entries[i].GrowthRate > *entries[j].GrowthRate
	})
	entries = assignRanks(entries, e.limit(limit))

	e.logger.InfoContext(ctx, "generated rising products ranking",
		"platform", platform,
		"category", category,
		"days", days,
		"snapshots", len(snaps),
		"items", len(entries),
	)
	return entries
}

// groupHistory groups valid snapshots by product identity, ordered by date.
func (e *Engine) groupHistory(ctx context.Context, snaps []*domain.HistorySnapshot) map[string][]*domain.HistorySnapshot {
	groups := make(map[string][]*domain.HistorySnapshot)
	for _, s := range snaps {
		if err := s.Validate(); err != nil {
			attrs := []any{"error", err}
			if s != nil {
				attrs = append(attrs, "platform", s.Platform, "product_id", s.ProductID)
			}
			e.logger.WarnContext(ctx, "skipping malformed history snapshot", attrs...)
			continue
		}
		groups[s.Key()] = append(groups[s.Key()], s)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].Date.Before(g[j].Date) })
	}
	return groups
}

func growthOf(series []*domain.HistorySnapshot) float64 {
	if len(series) < 2 {
		return 0
	}
	first := series[0].SalesVolume
	last := series[len(series)-1].SalesVolume
	return scoring.GrowthRate(float64(first), float64(last))
}
