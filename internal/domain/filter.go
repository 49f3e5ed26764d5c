package domain

import "time"

// PriceRange is a half-open interval [Min, Max). A nil Max is open-ended.
type PriceRange struct {
	Min float64  `json:"min"`
	Max *float64 `json:"max,omitempty"`
}

// Contains reports whether price falls inside the range.
func (r PriceRange) Contains(price float64) bool {
	if price < r.Min {
		return false
	}
	return r.Max == nil || price < *r.Max
}

// ProductFilter selects current records. Empty fields match everything.
type ProductFilter struct {
	Platform   string
	Category   string
	PriceRange *PriceRange
}

// Matches applies the filter to a single record.
func (f ProductFilter) Matches(p *ProductRecord) bool {
	if f.Platform != "" && p.Platform != f.Platform {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.PriceRange != nil && !f.PriceRange.Contains(p.Price) {
		return false
	}
	return true
}

// HistoryFilter selects snapshots with Date in [Since, Until].
// A zero Until means no upper bound.
type HistoryFilter struct {
	ProductID string
	Platform  string
	Category  string
	Since     time.Time
	Until     time.Time
}

// Matches applies the filter to a single snapshot.
func (f HistoryFilter) Matches(s *HistorySnapshot) bool {
	if f.ProductID != "" && s.ProductID != f.ProductID {
		return false
	}
	if f.Platform != "" && s.Platform != f.Platform {
		return false
	}
	if f.Category != "" && s.Category != f.Category {
		return false
	}
	if !f.Since.IsZero() && s.Date.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && s.Date.After(f.Until) {
		return false
	}
	return true
}

// PriceBucket is a labelled price range used by bucketed rankings.
type PriceBucket struct {
	Label string     `json:"label"`
	Range PriceRange `json:"range"`
}
