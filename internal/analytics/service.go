// Package analytics computes descriptive statistics over current product
// records: price and rating distributions, keyword frequency and
// per-platform aggregates.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/storage"
)

// PriceDistribution summarises positive prices.
type PriceDistribution struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	StdDev float64 `json:"std"`
}

// RatingBucket counts ratings in [Min, Max). The last bucket includes 5.
type RatingBucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// KeywordReport lists keyword frequencies, most frequent first.
type KeywordReport struct {
	Keywords      []domain.KeywordCount `json:"keywords"`
	TotalKeywords int                   `json:"total_keywords"`
	Distinct      int                   `json:"distinct_keywords"`
}

// PlatformStats aggregates one platform's current records.
type PlatformStats struct {
	Platform      string  `json:"platform"`
	ProductCount  int     `json:"product_count"`
	AveragePrice  float64 `json:"average_price"`
	AverageRating float64 `json:"average_rating"`
	TotalSales    int64   `json:"total_sales"`
}

// SystemStats is an overview of what the store currently holds.
type SystemStats struct {
	TotalProducts   int             `json:"product_count"`
	TotalCategories int             `json:"category_count"`
	LastUpdated     *time.Time      `json:"last_update,omitempty"`
	Platforms       []PlatformStats `json:"platform_stats"`
}

// Service computes analytics from a product store.
type Service struct {
	products storage.ProductStore
}

// NewService creates an analytics service.
func NewService(products storage.ProductStore) *Service {
	return &Service{products: products}
}

// PriceDistribution returns statistics over positive prices matching filter.
func (s *Service) PriceDistribution(ctx context.Context, filter domain.ProductFilter) (PriceDistribution, error) {
	records, err := s.products.QueryCurrent(ctx, filter)
	if err != nil {
		return PriceDistribution{}, fmt.Errorf("query products: %w", err)
	}

	var prices stats.Float64Data
	for _, r := range records {
		if r != nil && r.Price > 0 {
			prices = append(prices, r.Price)
		}
	}
	return describePrices(prices), nil
}

func describePrices(prices stats.Float64Data) PriceDistribution {
	if len(prices) == 0 {
		return PriceDistribution{}
	}
	d := PriceDistribution{Count: len(prices)}
	d.Min, _ = stats.Min(prices)
	d.Max, _ = stats.Max(prices)
	d.Mean, _ = stats.Mean(prices)
	d.Median, _ = stats.Median(prices)
	d.P25, _ = stats.Percentile(prices, 25)
	d.P75, _ = stats.Percentile(prices, 75)
	d.StdDev, _ = stats.StandardDeviationPopulation(prices)
	for _, v := range []*float64{&d.P25, &d.P75} {
		if math.IsNaN(*v) {
			*v = d.Median
		}
	}
	return d
}

// RatingDistribution counts positive ratings in the five one-point buckets.
func (s *Service) RatingDistribution(ctx context.Context, filter domain.ProductFilter) ([]RatingBucket, error) {
	records, err := s.products.QueryCurrent(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	buckets := make([]RatingBucket, 5)
	for i := range buckets {
		buckets[i] = RatingBucket{Label: fmt.Sprintf("%d-%d", i, i+1), Min: float64(i), Max: float64(i + 1)}
	}
	for _, r := range records {
		if r == nil || !(r.Rating > 0) {
			continue
		}
		idx := int(math.Floor(math.Min(r.Rating, 5)))
		if idx >= len(buckets) {
			idx = len(buckets) - 1
		}
		buckets[idx].Count++
	}
	return buckets, nil
}

// Keywords counts trimmed, lower-cased keywords. limit <= 0 returns all.
// Ties are ordered by keyword.
func (s *Service) Keywords(ctx context.Context, filter domain.ProductFilter, limit int) (KeywordReport, error) {
	records, err := s.products.QueryCurrent(ctx, filter)
	if err != nil {
		return KeywordReport{}, fmt.Errorf("query products: %w", err)
	}

	counts := make(map[string]int)
	total := 0
	for _, r := range records {
		if r == nil {
			continue
		}
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			counts[kw]++
			total++
		}
	}

	report := KeywordReport{
		Keywords:      make([]domain.KeywordCount, 0, len(counts)),
		TotalKeywords: total,
		Distinct:      len(counts),
	}
	for kw, n := range counts {
		report.Keywords = append(report.Keywords, domain.KeywordCount{Keyword: kw, Count: n})
	}
	sort.Slice(report.Keywords, func(i, j int) bool {
		if report.Keywords[i].Count != report.Keywords[j].Count {
			return report.Keywords[i].Count > report.Keywords[j].Count
		}
		return report.Keywords[i].Keyword < report.Keywords[j].Keyword
	})
	if limit > 0 && len(report.Keywords) > limit {
		report.Keywords = report.Keywords[:limit]
	}
	return report, nil
}

// PlatformStats aggregates records per platform, sorted by platform name.
// Averages cover positive prices and ratings only.
func (s *Service) PlatformStats(ctx context.Context, category string) ([]PlatformStats, error) {
	records, err := s.products.QueryCurrent(ctx, domain.ProductFilter{Category: category})
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	type acc struct {
		stats   PlatformStats
		prices  stats.Float64Data
		ratings stats.Float64Data
	}
	byPlatform := make(map[string]*acc)
	for _, r := range records {
		if r == nil {
			continue
		}
		a, ok := byPlatform[r.Platform]
		if !ok {
			a = &acc{stats: PlatformStats{Platform: r.Platform}}
			byPlatform[r.Platform] = a
		}
		a.stats.ProductCount++
		a.stats.TotalSales += r.SalesVolume
		if r.Price > 0 {
			a.prices = append(a.prices, r.Price)
		}
		if r.Rating > 0 {
			a.ratings = append(a.ratings, r.Rating)
		}
	}

	out := make([]PlatformStats, 0, len(byPlatform))
	for _, a := range byPlatform {
		if len(a.prices) > 0 {
			a.stats.AveragePrice, _ = a.prices.Mean()
		}
		if len(a.ratings) > 0 {
			a.stats.AverageRating, _ = a.ratings.Mean()
		}
		out = append(out, a.stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out, nil
}

// SystemStats counts current records and categories and reports the latest
// collection time with the per-platform aggregates. LastUpdated is nil when
// no record carries a collection time.
func (s *Service) SystemStats(ctx context.Context) (SystemStats, error) {
	records, err := s.products.QueryCurrent(ctx, domain.ProductFilter{})
	if err != nil {
		return SystemStats{}, fmt.Errorf("query products: %w", err)
	}
	categories, err := s.products.DistinctCategories(ctx, "")
	if err != nil {
		return SystemStats{}, fmt.Errorf("list categories: %w", err)
	}
	platforms, err := s.PlatformStats(ctx, "")
	if err != nil {
		return SystemStats{}, err
	}

	out := SystemStats{TotalCategories: len(categories), Platforms: platforms}
	var latest time.Time
	for _, r := range records {
		if r == nil {
			continue
		}
		out.TotalProducts++
		if r.CollectedAt.After(latest) {
			latest = r.CollectedAt
		}
	}
	if !latest.IsZero() {
		latest = latest.UTC()
		out.LastUpdated = &latest
	}
	return out, nil
}
