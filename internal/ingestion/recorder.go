package ingestion

import (
	"context"
	"errors"
	"fmt"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/idhash"
	"ecommerce-trend-lab/internal/observability"
	"ecommerce-trend-lab/internal/scoring"
	"ecommerce-trend-lab/internal/storage"
)

// Recorder persists enriched products and their history snapshots.
type Recorder struct {
	products storage.ProductStore
	history  storage.HistoryStore
	metrics  *observability.Metrics
}

// NewRecorder creates a recorder.
func NewRecorder(products storage.ProductStore, history storage.HistoryStore, metrics *observability.Metrics) *Recorder {
	return &Recorder{products: products, history: history, metrics: metrics}
}

// Record upserts p and appends a snapshot dated at p.CollectedAt.
// It reports whether a new snapshot was stored; a snapshot already present
// for the same instant is not an error.
func (r *Recorder) Record(ctx context.Context, p *domain.ProductRecord) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	scoring.Apply(p)

	if err := r.products.Upsert(ctx, p); err != nil {
		return false, fmt.Errorf("upsert product %s: %w", p.Key(), err)
	}

	snap := domain.SnapshotFromProduct(p)
	snap.SnapshotID = idhash.SnapshotID(snap.Platform, snap.ProductID, snap.Date)

	stored := true
	if err := r.history.Append(ctx, snap); err != nil {
		if !errors.Is(err, storage.ErrDuplicateKey) {
			return false, fmt.Errorf("append snapshot %s: %w", snap.SnapshotID, err)
		}
		stored = false
	}

	r.metrics.RecordStored(stored)
	return stored, nil
}
