package trend

import (
	"context"
	"time"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/scoring"
)

// SalesTrend returns the sales series for the scope over [now-days, now].
// A product scope yields one point per snapshot; other scopes sum sales per
// UTC day. Growth compares the first and last values.
func (a *Analyzer) SalesTrend(ctx context.Context, scope domain.TrendScope, days int) domain.TrendSeries {
	defer a.metrics.ObserveOperation(OpSalesTrend, time.Now())

	series := domain.TrendSeries{
		Metric:    domain.MetricSales,
		Scope:     scope,
		Points:    []domain.SeriesPoint{},
		Direction: domain.DirectionStable,
	}

	snaps, ok := a.load(ctx, OpSalesTrend, historyFilter(scope, a.window(days)))
	if !ok || len(snaps) == 0 {
		return series
	}

	if scope.ProductID != "" {
		series.Points = rawPoints(snaps, func(s *domain.HistorySnapshot) float64 { return float64(s.SalesVolume) })
	} else {
		agg := newDailyAggregate()
		for _, s := range snaps {
			agg.add(s.Date, float64(s.SalesVolume))
		}
		series.Points = agg.sumPoints()
	}

	first, last := endpoints(series.Points)
	series.GrowthRate = scoring.GrowthRate(first, last)
	series.Direction = directionOf(first, last)
	return series
}

// RatingTrend returns the rating series for the scope. Multi-product scopes
// average ratings per UTC day. Direction compares only the first and last
// samples.
func (a *Analyzer) RatingTrend(ctx context.Context, scope domain.TrendScope, days int) domain.TrendSeries {
	defer a.metrics.ObserveOperation(OpRatingTrend, time.Now())

	series := domain.TrendSeries{
		Metric:    domain.MetricRating,
		Scope:     scope,
		Points:    []domain.SeriesPoint{},
		Direction: domain.DirectionStable,
	}

	snaps, ok := a.load(ctx, OpRatingTrend, historyFilter(scope, a.window(days)))
	if !ok || len(snaps) == 0 {
		return series
	}

	if scope.ProductID != "" {
		series.Points = rawPoints(snaps, func(s *domain.HistorySnapshot) float64 { return s.Rating })
	} else {
		agg := newDailyAggregate()
		for _, s := range snaps {
			agg.add(s.Date, s.Rating)
		}
		series.Points = agg.meanPoints()
	}

	first, last := endpoints(series.Points)
	series.GrowthRate = scoring.GrowthRate(first, last)
	series.Direction = directionOf(first, last)
	return series
}

// rawPoints keeps one point per snapshot, dated by UTC day.
func rawPoints(snaps []*domain.HistorySnapshot, value func(*domain.HistorySnapshot) float64) []domain.SeriesPoint {
	out := make([]domain.SeriesPoint, len(snaps))
	for i, s := range snaps {
		out[i] = domain.SeriesPoint{Date: dayOf(s.Date), Value: value(s)}
	}
	return out
}

func endpoints(points []domain.SeriesPoint) (first, last float64) {
	if len(points) == 0 {
		return 0, 0
	}
	return points[0].Value, points[len(points)-1].Value
}
