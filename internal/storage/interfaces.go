package storage

import (
	"context"

	"ecommerce-trend-lab/internal/domain"
)

// ProductStore holds the current state of every listing.
type ProductStore interface {
	// Upsert inserts or replaces the record keyed by (platform, product_id).
	// Storage order is the order of first insertion and is kept on replace.
	Upsert(ctx context.Context, p *domain.ProductRecord) error

	// Get retrieves one record. Returns ErrNotFound if not exists.
	Get(ctx context.Context, platform, productID string) (*domain.ProductRecord, error)

	// QueryCurrent returns records matching the filter in storage order.
	QueryCurrent(ctx context.Context, filter domain.ProductFilter) ([]*domain.ProductRecord, error)

	// DistinctCategories returns the sorted set of non-empty categories,
	// optionally restricted to one platform.
	DistinctCategories(ctx context.Context, platform string) ([]string, error)
}

// HistoryStore holds append-only product snapshots.
type HistoryStore interface {
	// Append adds a snapshot. Returns ErrDuplicateKey if
	// (platform, product_id, date) already exists.
	Append(ctx context.Context, s *domain.HistorySnapshot) error

	// QueryHistory returns snapshots matching the filter, ordered by date ASC
	// then platform and product_id.
	QueryHistory(ctx context.Context, filter domain.HistoryFilter) ([]*domain.HistorySnapshot, error)
}
