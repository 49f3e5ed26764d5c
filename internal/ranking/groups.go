package ranking

import (
	"context"
	"time"

	"ecommerce-trend-lab/internal/domain"
)

// CategoryRankings returns a hot ranking per distinct category, optionally
// scoped to one platform. Categories without results are omitted.
func (e *Engine) CategoryRankings(ctx context.Context, platform string, limitPerCategory int) map[string][]domain.RankingEntry {
	defer e.metrics.ObserveOperation(OpCategoryRankings, time.Now())

	result := make(map[string][]domain.RankingEntry)

	categories, err := e.products.DistinctCategories(ctx, platform)
	if err != nil {
		e.degrade(ctx, OpCategoryRankings, err)
		return result
	}
	if len(categories) == 0 {
		return result
	}

	records, err := e.products.QueryCurrent(ctx, domain.ProductFilter{Platform: platform})
	if err != nil {
		e.degrade(ctx, OpCategoryRankings, err)
		return result
	}

	byCategory := make(map[string][]*domain.ProductRecord, len(categories))
	for _, r := range records {
		if r == nil {
			continue
		}
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	limit := e.limit(limitPerCategory)
	for _, category := range categories {
		if category == "" {
			continue
		}
		if entries := e.rankByPopularity(ctx, byCategory[category], limit); len(entries) > 0 {
			result[category] = entries
		}
	}
	return result
}

// PriceRangeRankings returns a hot ranking per price bucket. A bucket holds
// products with min <= price < max; a nil max is open-ended. Nil or invalid
// buckets fall back to the configured buckets. Empty buckets are omitted.
func (e *Engine) PriceRangeRankings(ctx context.Context, platform string, buckets []domain.PriceBucket, limitPerRange int) map[string][]domain.RankingEntry {
	defer e.metrics.ObserveOperation(OpPriceRange, time.Now())

	result := make(map[string][]domain.RankingEntry)

	if !ValidBuckets(buckets) {
		if buckets != nil {
			e.logger.WarnContext(ctx, "invalid price buckets, using defaults", "buckets", len(buckets))
		}
		buckets = e.cfg.PriceBuckets
	}

	records, err := e.products.QueryCurrent(ctx, domain.ProductFilter{Platform: platform})
	if err != nil {
		e.degrade(ctx, OpPriceRange, err)
		return result
	}

	limit := e.limit(limitPerRange)
	for _, b := range buckets {
		var inBucket []*domain.ProductRecord
		for _, r := range records {
			if r != nil && b.Range.Contains(r.Price) {
				inBucket = append(inBucket, r)
			}
		}
		if entries := e.rankByPopularity(ctx, inBucket, limit); len(entries) > 0 {
			result[b.Label] = entries
		}
	}
	return result
}

// CrossPlatformComparison returns an independent hot ranking per configured
// platform. Platforms without results are omitted.
func (e *Engine) CrossPlatformComparison(ctx context.Context, category string, limit int) map[string][]domain.RankingEntry {
	defer e.metrics.ObserveOperation(OpCrossPlatform, time.Now())

	result := make(map[string][]domain.RankingEntry)
	limit = e.limit(limit)

	for _, platform := range e.cfg.Platforms {
		records, err := e.products.QueryCurrent(ctx, domain.ProductFilter{Platform: platform, Category: category})
		if err != nil {
			e.degrade(ctx, OpCrossPlatform, err)
			return make(map[string][]domain.RankingEntry)
		}
		if entries := e.rankByPopularity(ctx, records, limit); len(entries) > 0 {
			result[platform] = entries
		}
	}
	return result
}
