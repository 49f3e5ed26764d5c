package ranking

import (
	"context"
	"sort"
	"time"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/scoring"
)

// ValueRanking ranks products with price > 0 and rating > 0 by
// rating / ln(1+price) descending.
func (e *Engine) ValueRanking(ctx context.Context, platform, category string, limit int) []domain.RankingEntry {
	defer e.metrics.ObserveOperation(OpValueRanking, time.Now())

	records, err := e.products.QueryCurrent(ctx, domain.ProductFilter{Platform: platform, Category: category})
	if err != nil {
		e.degrade(ctx, OpValueRanking, err)
		return []domain.RankingEntry{}
	}

	scored := e.scoreRecords(ctx, records)
	entries := make([]domain.RankingEntry, 0, len(scored))
	for _, entry := range scored {
		score, ok := scoring.ValueScore(&entry.ProductRecord)
		if !ok {
			continue
		}
		entry.ValueScore = &score
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return *entries[i].ValueScore > *entries[j].ValueScore
	})
	return assignRanks(entries, e.limit(limit))
}
