package ranking

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"ecommerce-trend-lab/internal/domain"
)

const defaultTopKeywords = 10

// PopularAttributes analyses the top hot products: keyword frequency (top
// topK, ties in first-seen order), price stats over positive prices and
// rating stats over positive ratings. Returns zeroed stats when nothing
// qualifies.
func (e *Engine) PopularAttributes(ctx context.Context, platform, category string, topK int) domain.AttributeAnalysis {
	defer e.metrics.ObserveOperation(OpPopularAttributes, time.Now())

	if topK <= 0 {
		topK = defaultTopKeywords
	}
	result := domain.AttributeAnalysis{TopKeywords: []domain.KeywordCount{}}

	records, err := e.products.QueryCurrent(ctx, domain.ProductFilter{Platform: platform, Category: category})
	if err != nil {
		e.degrade(ctx, OpPopularAttributes, err)
		return result
	}

	hot := e.rankByPopularity(ctx, records, e.cfg.AttributeSampleSize)
	if len(hot) == 0 {
		return result
	}

	var prices, ratings []float64
	for i := range hot {
		if hot[i].Price > 0 {
			prices = append(prices, hot[i].Price)
		}
		if hot[i].Rating > 0 {
			ratings = append(ratings, hot[i].Rating)
		}
	}

	result.TopKeywords = topKeywords(hot, topK)
	result.PriceStats = priceStats(prices)
	result.RatingStats = ratingStats(ratings)
	result.TotalAnalyzed = len(hot)
	return result
}

func topKeywords(entries []domain.RankingEntry, k int) []domain.KeywordCount {
	counts := make(map[string]int)
	var order []string
	for i := range entries {
		for _, kw := range entries[i].Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			if _, seen := counts[kw]; !seen {
				order = append(order, kw)
			}
			counts[kw]++
		}
	}

	out := make([]domain.KeywordCount, 0, len(order))
	for _, kw := range order {
		out = append(out, domain.KeywordCount{Keyword: kw, Count: counts[kw]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func priceStats(prices []float64) domain.PriceStats {
	if len(prices) == 0 {
		return domain.PriceStats{}
	}
	data := stats.Float64Data(prices)
	lo, _ := data.Min()
	hi, _ := data.Max()
	mean, _ := data.Mean()
	median, _ := data.Median()
	return domain.PriceStats{Min: lo, Max: hi, Mean: mean, Median: median}
}

func ratingStats(ratings []float64) domain.RatingStats {
	if len(ratings) == 0 {
		return domain.RatingStats{}
	}
	data := stats.Float64Data(ratings)
	lo, _ := data.Min()
	hi, _ := data.Max()
	mean, _ := data.Mean()
	return domain.RatingStats{Min: lo, Max: hi, Mean: mean}
}
