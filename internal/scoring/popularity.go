// Package scoring derives popularity and value scores from a product's raw signals.
package scoring

import (
	"math"

	"ecommerce-trend-lab/internal/domain"
)

// Popularity weights and saturation points. Weights sum to 100.
const (
	salesWeight   = 60.0
	ratingWeight  = 25.0
	reviewsWeight = 15.0

	salesCap   = 1000.0
	reviewsCap = 500.0
	maxRating  = 5.0
)

// Popularity returns a score in [0, 100].
// Each signal is capped before weighting so none can dominate past its share.
func Popularity(p *domain.ProductRecord) float64 {
	if p == nil {
		return 0
	}

	sales := math.Min(nonNegative(float64(p.SalesVolume))/salesCap, 1)
	rating := math.Min(nonNegative(p.Rating), maxRating) / maxRating
	reviews := math.Min(nonNegative(float64(p.ReviewsCount))/reviewsCap, 1)

	return sales*salesWeight + rating*ratingWeight + reviews*reviewsWeight
}

// Apply recomputes the derived fields of p in place.
func Apply(p *domain.ProductRecord) {
	if p == nil {
		return
	}
	p.PopularityScore = Popularity(p)
	p.PriceTier = PriceTier(p)
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
