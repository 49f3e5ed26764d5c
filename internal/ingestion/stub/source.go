// Package stub provides in-memory ingestion sources for tests and demos.
package stub

import (
	"context"

	"ecommerce-trend-lab/internal/ingestion"
)

// StaticSource replays fixed batches, then closes its channel.
// Implements ingestion.Source.
type StaticSource struct {
	batches [][]ingestion.RawRecord
}

// NewStaticSource creates a source that delivers batches in order.
func NewStaticSource(batches ...[]ingestion.RawRecord) *StaticSource {
	return &StaticSource{batches: batches}
}

// Batches streams copies of the configured batches.
func (s *StaticSource) Batches(ctx context.Context) (<-chan []ingestion.RawRecord, error) {
	ch := make(chan []ingestion.RawRecord)
	go func() {
		defer close(ch)
		for _, b := range s.batches {
			batch := append([]ingestion.RawRecord(nil), b...)
			select {
			case ch <- batch:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

var _ ingestion.Source = (*StaticSource)(nil)
