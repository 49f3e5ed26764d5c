package trend

import (
	"context"
	"sort"
	"time"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/scoring"
)

// PriceTrend returns the daily mean price for the scope, forward-filled
// across gaps and never zero-filled. A product scope, or a scope naming both
// platform and category, is a single series. Otherwise prices are grouped by
// the open dimension (category for a platform scope, platform for the rest)
// and each day's value is the mean of the forward-filled group means. Days
// before the first observation are not emitted. Non-positive prices are not
// observations.
func (a *Analyzer) PriceTrend(ctx context.Context, scope domain.TrendScope, days int) domain.PriceTrend {
	defer a.metrics.ObserveOperation(OpPriceTrend, time.Now())

	period := a.window(days)
	result := domain.PriceTrend{
		Scope:     scope,
		Points:    []domain.SeriesPoint{},
		Direction: domain.DirectionStable,
		Period:    period,
	}

	snaps, ok := a.load(ctx, OpPriceTrend, historyFilter(scope, period))
	if !ok || len(snaps) == 0 {
		return result
	}

	groupBy := priceDimension(scope)
	aggs := make(map[string]*dailyAggregate)
	for _, s := range snaps {
		if !(s.Price > 0) {
			continue
		}
		key := keyOf(s, groupBy)
		agg, ok := aggs[key]
		if !ok {
			agg = newDailyAggregate()
			aggs[key] = agg
		}
		agg.add(s.Date, s.Price)
	}
	if len(aggs) == 0 {
		return result
	}

	dates := dayRange(period)
	filled := make(map[string][]*float64, len(aggs))
	for key, agg := range aggs {
		filled[key] = forwardFill(agg.meanPoints(), dates)
	}

	keys := make([]string, 0, len(filled))
	for k := range filled {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, day := range dates {
		var sum float64
		var n int
		for _, k := range keys {
			if v := filled[k][i]; v != nil {
				sum += *v
				n++
			}
		}
		if n > 0 {
			result.Points = append(result.Points, domain.SeriesPoint{Date: day, Value: sum / float64(n)})
		}
	}

	if groupBy != GroupByTotal {
		result.Groups = make(map[string][]domain.SeriesPoint, len(keys))
		for _, k := range keys {
			var pts []domain.SeriesPoint
			for i, v := range filled[k] {
				if v != nil {
					pts = append(pts, domain.SeriesPoint{Date: dates[i], Value: *v})
				}
			}
			result.Groups[k] = pts
		}
	}

	first, last := endpoints(result.Points)
	result.ChangeRate = scoring.GrowthRate(first, last)
	result.Direction = priceDirection(result.ChangeRate)
	return result
}

func priceDimension(scope domain.TrendScope) string {
	if scope.ProductID != "" {
		return GroupByTotal
	}
	return breakdownDimension(scope.Platform, scope.Category)
}
