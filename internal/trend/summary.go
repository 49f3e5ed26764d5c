package trend

import (
	"context"
	"sort"
	"strings"
	"time"

	"ecommerce-trend-lab/internal/domain"
)

// Summary combines the sales breakdown, the category trend and the price
// trend of the window. Top and fastest-growing categories break ties by
// name. Missing parts set Error and the rest is kept.
func (a *Analyzer) Summary(ctx context.Context, platform string, days int) domain.TrendSummary {
	defer a.metrics.ObserveOperation(OpSummary, time.Now())

	sales := a.SalesBreakdown(ctx, platform, "", days)
	categories := a.CategoryTrend(ctx, platform, days)
	price := a.PriceTrend(ctx, domain.TrendScope{Platform: platform}, days)

	summary := domain.TrendSummary{
		OverallLabel:        domain.LabelStable,
		PriceDirection:      domain.DirectionStable,
		ExplosiveCategories: []domain.CategoryGrowth{},
		Period:              sales.Period,
	}

	var missing []string
	if sales.Empty() {
		missing = append(missing, "sales")
	} else {
		summary.Sales = &sales
		summary.OverallGrowth = sales.GrowthRate
		summary.OverallLabel = GrowthLabel(sales.GrowthRate)
	}

	if categories.Empty() {
		missing = append(missing, "category")
	} else {
		summary.Categories = &categories
		summary.TopCategory = maxByValue(categories.Totals)
		summary.FastestCategory = maxByValue(categories.GrowthRates)
		summary.ExplosiveCategories = explosive(categories.GrowthRates)
	}

	if price.Empty() {
		missing = append(missing, "price")
	} else {
		summary.Price = &price
		summary.PriceChangeRate = price.ChangeRate
		summary.PriceDirection = price.Direction
	}

	if len(missing) > 0 {
		summary.Error = "failed to generate trend summary: no " + strings.Join(missing, ", ") + " data"
		a.logger.WarnContext(ctx, "incomplete trend summary", "platform", platform, "days", days, "missing", missing)
	}
	return summary
}

// maxByValue returns the entry with the highest value, ties by smallest name.
func maxByValue(values map[string]float64) *domain.CategoryGrowth {
	var best *domain.CategoryGrowth
	for k, v := range values {
		if best == nil || v > best.Value || (v == best.Value && k < best.Category) {
			best = &domain.CategoryGrowth{Category: k, Value: v}
		}
	}
	return best
}

func explosive(rates map[string]float64) []domain.CategoryGrowth {
	out := []domain.CategoryGrowth{}
	for k, v := range rates {
		if IsExplosive(v) {
			out = append(out, domain.CategoryGrowth{Category: k, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Category < out[j].Category
	})
	return out
}
