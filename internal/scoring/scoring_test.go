package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"ecommerce-trend-lab/internal/domain"
)

func TestPopularity(t *testing.T) {
	tests := []struct {
		name    string
		sales   int64
		rating  float64
		reviews int64
		want    float64
	}{
		{"zero", 0, 0, 0, 0},
		{"saturated", 5000, 5, 2000, 100},
		{"half sales only", 500, 0, 0, 30},
		{"rating only", 0, 4, 0, 20},
		{"reviews only", 0, 0, 250, 7.5},
		{"mixed", 100, 4.5, 50, 6 + 22.5 + 1.5},
		{"negative clamped", -10, -1, -5, 0},
		{"rating above five capped", 0, 9, 0, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &domain.ProductRecord{SalesVolume: tt.sales, Rating: tt.rating, ReviewsCount: tt.reviews}
			assert.InDelta(t, tt.want, Popularity(p), 1e-9)
		})
	}
}

func TestPopularity_BoundsAndMonotonic(t *testing.T) {
	prev := -1.0
	for sales := int64(0); sales <= 2000; sales += 100 {
		for _, rating := range []float64{0, 1, 2.5, 5} {
			p := &domain.ProductRecord{SalesVolume: sales, Rating: rating, ReviewsCount: 100}
			score := Popularity(p)
			if score < 0 || score > 100 {
				t.Fatalf("score out of bounds: %v", score)
			}
		}
		score := Popularity(&domain.ProductRecord{SalesVolume: sales, Rating: 3, ReviewsCount: 100})
		if score < prev {
			t.Errorf("popularity decreased at sales=%d: %v < %v", sales, score, prev)
		}
		prev = score
	}

	prev = -1
	for reviews := int64(0); reviews <= 1000; reviews += 50 {
		score := Popularity(&domain.ProductRecord{SalesVolume: 10, Rating: 3, ReviewsCount: reviews})
		if score < prev {
			t.Errorf("popularity decreased at reviews=%d", reviews)
		}
		prev = score
	}
}

func TestValueScore(t *testing.T) {
	tests := []struct {
		name   string
		price  float64
		rating float64
		ok     bool
	}{
		{"valid", 99, 4.5, true},
		{"zero price", 0, 4.5, false},
		{"negative price", -1, 4.5, false},
		{"zero rating", 10, 0, false},
		{"both zero", 0, 0, false},
		{"subnormal price", 5e-324, 4.5, false},
		{"infinite price", math.Inf(1), 4.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := ValueScore(&domain.ProductRecord{Price: tt.price, Rating: tt.rating})
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.rating/math.Log(1+tt.price), score, 1e-12)
			}
		})
	}
}

func TestPriceTier(t *testing.T) {
	assert.Equal(t, TierUnknown, PriceTier(&domain.ProductRecord{Price: 0, Rating: 4}))
	assert.Equal(t, TierUnknown, PriceTier(nil))
	assert.Equal(t, TierUnknown, PriceTier(&domain.ProductRecord{Price: 5e-324, Rating: 4}))
	// 4 / ln(2) = 5.77
	assert.Equal(t, TierGoodValue, PriceTier(&domain.ProductRecord{Price: 1, Rating: 4}))
	// 4.5 / ln(1000) = 0.65
	assert.Equal(t, TierFairValue, PriceTier(&domain.ProductRecord{Price: 999, Rating: 4.5}))
	// 1 / ln(10001) = 0.108
	assert.Equal(t, TierExpensive, PriceTier(&domain.ProductRecord{Price: 10000, Rating: 1}))

	assert.Equal(t, TierExpensive, TierForScore(0.5))
	assert.Equal(t, TierFairValue, TierForScore(1.0))
	assert.Equal(t, TierGoodValue, TierForScore(1.0001))
}

func TestGrowthRate(t *testing.T) {
	assert.Equal(t, 200.0, GrowthRate(100, 300))
	assert.Equal(t, 0.0, GrowthRate(0, 300))
	assert.Equal(t, 0.0, GrowthRate(150, 150))
	assert.Equal(t, -50.0, GrowthRate(200, 100))
	assert.Equal(t, 33.33, GrowthRate(3, 4))
}

func TestApply(t *testing.T) {
	p := &domain.ProductRecord{SalesVolume: 1000, Rating: 5, ReviewsCount: 500, Price: 1, PopularityScore: 3}
	Apply(p)
	assert.Equal(t, 100.0, p.PopularityScore)
	assert.Equal(t, TierGoodValue, p.PriceTier)
}
