package reporting

import (
	"time"

	"ecommerce-trend-lab/internal/analytics"
	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/summary"
)

// Report is a point-in-time market report for one platform (or all).
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Platform    string
	Days        int

	// Composed trend summary with narrative
	Summary summary.Summary

	// Category totals over the window, ordered like the category breakdown
	Categories []CategoryRow

	// Rankings
	Hot    []RankingRow
	Rising []RankingRow
	Value  []RankingRow

	// Per-platform aggregates of current records, sorted by platform
	Platforms []analytics.PlatformStats
}

// CategoryRow is one category's window total and growth.
type CategoryRow struct {
	Category   string
	Total      float64
	GrowthRate float64
}

// RankingRow is one flattened ranking entry.
type RankingRow struct {
	Rank        int
	Platform    string
	ProductID   string
	Name        string
	Category    string
	Price       float64
	Rating      float64
	SalesVolume int64
	Popularity  float64
	GrowthRate  *float64
	ValueScore  *float64
}

func rowsFromEntries(entries []domain.RankingEntry) []RankingRow {
	rows := make([]RankingRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, RankingRow{
			Rank:        e.Rank,
			Platform:    e.Platform,
			ProductID:   e.ProductID,
			Name:        e.Name,
			Category:    e.Category,
			Price:       e.Price,
			Rating:      e.Rating,
			SalesVolume: e.SalesVolume,
			Popularity:  e.PopularityScore,
			GrowthRate:  e.GrowthRate,
			ValueScore:  e.ValueScore,
		})
	}
	return rows
}

func categoryRows(b domain.Breakdown) []CategoryRow {
	rows := make([]CategoryRow, 0, len(b.Keys))
	for _, k := range b.Keys {
		rows = append(rows, CategoryRow{
			Category:   k,
			Total:      b.Totals[k],
			GrowthRate: b.GrowthRates[k],
		})
	}
	return rows
}
