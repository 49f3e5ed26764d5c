// Package verification checks stored products and history against the
// values the scoring rules and id scheme would produce today.
package verification

import (
	"context"
	"fmt"
	"math"
	"sort"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/idhash"
	"ecommerce-trend-lab/internal/scoring"
	"ecommerce-trend-lab/internal/storage"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence is a mismatch between a stored and a recomputed value.
type FieldDivergence struct {
	Field    string
	Expected interface{} // recomputed value
	Actual   interface{} // stored value
}

// Result is the verification of one product and its history.
type Result struct {
	Key         string
	Match       bool
	Snapshots   int
	Divergences []FieldDivergence
}

// Report aggregates results for every product in scope.
type Report struct {
	TotalProducts     int
	MatchedProducts   int
	DivergentProducts int
	OrphanSnapshots   int // snapshots without a current product
	Results           []Result
}

// OK reports whether nothing diverged.
func (r *Report) OK() bool {
	return r.DivergentProducts == 0 && r.OrphanSnapshots == 0
}

// Verifier walks the stores.
type Verifier struct {
	products storage.ProductStore
	history  storage.HistoryStore
}

// New creates a verifier.
func New(products storage.ProductStore, history storage.HistoryStore) *Verifier {
	return &Verifier{products: products, history: history}
}

// VerifyAll verifies every product matching filter. Results are sorted by key.
func (v *Verifier) VerifyAll(ctx context.Context, filter domain.ProductFilter) (*Report, error) {
	products, err := v.products.QueryCurrent(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	snapshots, err := v.history.QueryHistory(ctx, domain.HistoryFilter{
		Platform: filter.Platform,
		Category: filter.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	byKey := make(map[string][]*domain.HistorySnapshot)
	for _, s := range snapshots {
		byKey[s.Key()] = append(byKey[s.Key()], s)
	}

	report := &Report{Results: make([]Result, 0, len(products))}
	for _, p := range products {
		key := p.Key()
		snaps := byKey[key]
		delete(byKey, key)

		divs := CompareProduct(p)
		for _, s := range snaps {
			divs = append(divs, CompareSnapshot(p, s)...)
		}

		res := Result{Key: key, Match: len(divs) == 0, Snapshots: len(snaps), Divergences: divs}
		report.Results = append(report.Results, res)
		report.TotalProducts++
		if res.Match {
			report.MatchedProducts++
		} else {
			report.DivergentProducts++
		}
	}
	if filter.PriceRange == nil {
		for _, orphans := range byKey {
			report.OrphanSnapshots += len(orphans)
		}
	}

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Key < report.Results[j].Key
	})
	return report, nil
}

// CompareProduct checks the derived fields of p against a fresh computation.
func CompareProduct(p *domain.ProductRecord) []FieldDivergence {
	var divergences []FieldDivergence

	if want := scoring.Popularity(p); !floatEquals(want, p.PopularityScore) {
		divergences = append(divergences, FieldDivergence{
			Field:    "PopularityScore",
			Expected: want,
			Actual:   p.PopularityScore,
		})
	}

	if p.PriceTier != "" {
		if want := scoring.PriceTier(p); want != p.PriceTier {
			divergences = append(divergences, FieldDivergence{
				Field:    "PriceTier",
				Expected: want,
				Actual:   p.PriceTier,
			})
		}
	}

	if p.Rating < 0 || p.Rating > 5 {
		divergences = append(divergences, FieldDivergence{
			Field:    "Rating",
			Expected: "0..5",
			Actual:   p.Rating,
		})
	}

	return divergences
}

// CompareSnapshot checks that s belongs to p and carries its deterministic id.
func CompareSnapshot(p *domain.ProductRecord, s *domain.HistorySnapshot) []FieldDivergence {
	var divergences []FieldDivergence

	if s.SnapshotID != "" {
		if want := idhash.SnapshotID(s.Platform, s.ProductID, s.Date); want != s.SnapshotID {
			divergences = append(divergences, FieldDivergence{
				Field:    "SnapshotID@" + s.Date.UTC().Format("2006-01-02"),
				Expected: want,
				Actual:   s.SnapshotID,
			})
		}
	}

	if s.Category != "" && p.Category != "" && s.Category != p.Category {
		divergences = append(divergences, FieldDivergence{
			Field:    "Category@" + s.Date.UTC().Format("2006-01-02"),
			Expected: p.Category,
			Actual:   s.Category,
		})
	}

	if s.SalesVolume < 0 || s.Price < 0 {
		divergences = append(divergences, FieldDivergence{
			Field:    "Values@" + s.Date.UTC().Format("2006-01-02"),
			Expected: "non-negative",
			Actual:   fmt.Sprintf("price=%v sales=%d", s.Price, s.SalesVolume),
		})
	}

	return divergences
}

// floatEquals compares two floats with tolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
