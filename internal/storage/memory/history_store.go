package memory

import (
	"context"
	"sort"
	"sync"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/storage"
)

type historyKey struct {
	identity string
	date     int64 // unix nanoseconds
}

// HistoryStore is an in-memory implementation of storage.HistoryStore.
type HistoryStore struct {
	mu   sync.RWMutex
	data map[historyKey]*domain.HistorySnapshot
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		data: make(map[historyKey]*domain.HistorySnapshot),
	}
}

// Append adds a snapshot. Returns ErrDuplicateKey if (platform, product_id, date) exists.
func (s *HistoryStore) Append(_ context.Context, snap *domain.HistorySnapshot) error {
	if snap == nil || snap.ProductID == "" || snap.Date.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := historyKey{identity: snap.Key(), date: snap.Date.UnixNano()}
	if _, exists := s.data[k]; exists {
		return storage.ErrDuplicateKey
	}

	snapCopy := *snap
	snapCopy.Date = snap.Date.UTC()
	s.data[k] = &snapCopy
	return nil
}

// QueryHistory returns snapshots matching the filter ordered by date ASC.
func (s *HistoryStore) QueryHistory(_ context.Context, filter domain.HistoryFilter) ([]*domain.HistorySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.HistorySnapshot
	for _, snap := range s.data {
		if filter.Matches(snap) {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sortSnapshots(result)
	return result, nil
}

// sortSnapshots orders by date ASC, then platform, then product_id.
func sortSnapshots(snaps []*domain.HistorySnapshot) {
	sort.Slice(snaps, func(i, j int) bool {
		if !snaps[i].Date.Equal(snaps[j].Date) {
			return snaps[i].Date.Before(snaps[j].Date)
		}
		if snaps[i].Platform != snaps[j].Platform {
			return snaps[i].Platform < snaps[j].Platform
		}
		return snaps[i].ProductID < snaps[j].ProductID
	})
}

// Verify interface compliance at compile time.
var _ storage.HistoryStore = (*HistoryStore)(nil)
