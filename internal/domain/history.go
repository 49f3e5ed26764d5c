package domain

import (
	"math"
	"time"
)

// HistorySnapshot is one immutable observation of a product.
// Snapshots for a product are append-only and ordered by Date.
type HistorySnapshot struct {
	SnapshotID   string    `json:"snapshot_id"` // deterministic, see idhash.SnapshotID
	ProductID    string    `json:"product_id"`
	Platform     string    `json:"platform"`
	Category     string    `json:"category"`
	Date         time.Time `json:"date"`
	Price        float64   `json:"price"`
	SalesVolume  int64     `json:"sales_volume"`
	Rating       float64   `json:"rating"`
	ReviewsCount int64     `json:"reviews_count"`
}

// Key returns the (platform, product_id) identity key.
func (s *HistorySnapshot) Key() string {
	return IdentityKey(s.Platform, s.ProductID)
}

// Validate rejects snapshots that would corrupt trend aggregates.
func (s *HistorySnapshot) Validate() error {
	switch {
	case s == nil:
		return ErrMalformedRecord
	case s.ProductID == "" || s.Date.IsZero():
		return ErrMalformedRecord
	case s.SalesVolume < 0 || s.ReviewsCount < 0:
		return ErrMalformedRecord
	case math.IsNaN(s.Price) || math.IsNaN(s.Rating):
		return ErrMalformedRecord
	}
	return nil
}

// SnapshotFromProduct builds the history row appended on every collection.
func SnapshotFromProduct(p *ProductRecord) *HistorySnapshot {
	return &HistorySnapshot{
		ProductID:    p.ProductID,
		Platform:     p.Platform,
		Category:     p.Category,
		Date:         p.CollectedAt.UTC(),
		Price:        p.Price,
		SalesVolume:  p.SalesVolume,
		Rating:       p.Rating,
		ReviewsCount: p.ReviewsCount,
	}
}
