package summary

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/logging"
)

type stubTrends struct {
	summary domain.TrendSummary
	panic   bool
}

func (s stubTrends) Summary(context.Context, string, int) domain.TrendSummary {
	if s.panic {
		panic("boom")
	}
	return s.summary
}

type stubHot []domain.RankingEntry

func (s stubHot) HotProducts(context.Context, string, string, string, int) []domain.RankingEntry {
	return s
}

func TestCompose_Full(t *testing.T) {
	period := domain.Period{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	trends := stubTrends{summary: domain.TrendSummary{
		OverallGrowth:       35.5,
		OverallLabel:        domain.LabelStrongGrowth,
		TopCategory:         &domain.CategoryGrowth{Category: "Beauty", Value: 12000},
		FastestCategory:     &domain.CategoryGrowth{Category: "Toys", Value: 80},
		ExplosiveCategories: []domain.CategoryGrowth{{Category: "Toys", Value: 80}},
		PriceChangeRate:     -12.5,
		PriceDirection:      domain.DirectionFalling,
		Period:              period,
	}}
	hot := stubHot{{ProductRecord: domain.ProductRecord{Name: "Lip Tint", Platform: "tiktok"}, Rank: 1}}

	got := NewComposer(trends, hot, 3, logging.Discard()).Compose(context.Background(), "tiktok", 30)

	assert.Empty(t, got.Error)
	assert.Equal(t, domain.DirectionRising, got.OverallDirection)
	assert.Equal(t, []string{"Toys"}, got.Explosive)
	require.Len(t, got.TopProducts, 1)
	assert.Contains(t, got.Narrative, "for tiktok (2024-06-01 to 2024-06-30)")
	assert.Contains(t, got.Narrative, "strong growth")
	assert.Contains(t, got.Narrative, "Toys shows explosive growth")
	assert.Contains(t, got.Narrative, "Prices are trending down")
	assert.Contains(t, got.Narrative, "Top category: Beauty (total sales 12000)")
	assert.Contains(t, got.Narrative, "Hottest product: Lip Tint on tiktok")
}

func TestCompose_PartialData(t *testing.T) {
	trends := stubTrends{summary: domain.TrendSummary{
		OverallLabel:   domain.LabelStable,
		PriceDirection: domain.DirectionStable,
		Error:          "failed to generate trend summary: no sales, category, price data",
	}}

	got := NewComposer(trends, stubHot(nil), 0, logging.Discard()).Compose(context.Background(), "", 7)

	assert.Contains(t, got.Error, "no sales")
	assert.Contains(t, got.Error, "no hot products")
	assert.NotNil(t, got.TopProducts)
	assert.Empty(t, got.TopProducts)
	assert.Equal(t, domain.DirectionStable, got.OverallDirection)
	assert.Contains(t, got.Narrative, "relatively stable")
	assert.Contains(t, got.Narrative, "partial data")
}

func TestCompose_RecoversPanic(t *testing.T) {
	c := NewComposer(stubTrends{panic: true}, stubHot(nil), 5, logging.Discard())

	var got Summary
	assert.NotPanics(t, func() { got = c.Compose(context.Background(), "amazon", 7) })
	assert.Contains(t, got.Error, "boom")
	assert.NotEmpty(t, got.Narrative)
}

func TestOverallDirection(t *testing.T) {
	assert.Equal(t, domain.DirectionRising, overallDirection(5.1))
	assert.Equal(t, domain.DirectionStable, overallDirection(5))
	assert.Equal(t, domain.DirectionStable, overallDirection(-5))
	assert.Equal(t, domain.DirectionFalling, overallDirection(-5.1))
}
