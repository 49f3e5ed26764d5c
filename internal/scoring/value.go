package scoring

import (
	"math"

	"github.com/shopspring/decimal"

	"ecommerce-trend-lab/internal/domain"
)

// Price tier labels.
const (
	TierGoodValue = "Good Value"
	TierFairValue = "Fair Value"
	TierExpensive = "Expensive"
	TierUnknown   = "Unknown"
)

const (
	goodValueThreshold = 1.0
	fairValueThreshold = 0.5
)

// ValueScore returns rating / ln(1+price).
// ok is false when price <= 0, rating <= 0, either input is infinite or
// the ratio is not finite (prices so small that ln(1+price) underflows to zero).
func ValueScore(p *domain.ProductRecord) (score float64, ok bool) {
	if p == nil || !(p.Price > 0) || !(p.Rating > 0) || math.IsInf(p.Price, 0) || math.IsInf(p.Rating, 0) {
		return 0, false
	}
	score = p.Rating / math.Log1p(p.Price)
	if math.IsInf(score, 0) || math.IsNaN(score) {
		return 0, false
	}
	return score, true
}

// PriceTier classifies a product by its value score.
func PriceTier(p *domain.ProductRecord) string {
	score, ok := ValueScore(p)
	if !ok {
		return TierUnknown
	}
	return TierForScore(score)
}

// TierForScore maps a value score to its tier label.
func TierForScore(score float64) string {
	switch {
	case score > goodValueThreshold:
		return TierGoodValue
	case score > fairValueThreshold:
		return TierFairValue
	default:
		return TierExpensive
	}
}

// GrowthRate returns (last-first)/first*100 rounded to 2 decimals, or 0 when first <= 0.
func GrowthRate(first, last float64) float64 {
	if !(first > 0) {
		return 0
	}
	return Round2((last - first) / first * 100)
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
