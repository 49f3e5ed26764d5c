package memory

import (
	"context"
	"sort"
	"sync"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/storage"
)

// ProductStore is an in-memory implementation of storage.ProductStore.
type ProductStore struct {
	mu    sync.RWMutex
	order []string                         // identity keys in first-insertion order
	data  map[string]*domain.ProductRecord // keyed by platform|product_id
}

// NewProductStore creates a new in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{
		data: make(map[string]*domain.ProductRecord),
	}
}

// Upsert inserts or replaces the record keyed by (platform, product_id).
func (s *ProductStore) Upsert(_ context.Context, p *domain.ProductRecord) error {
	if p == nil || p.Platform == "" || p.ProductID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := p.Key()
	if _, exists := s.data[key]; !exists {
		s.order = append(s.order, key)
	}
	// Store a copy to prevent external mutation
	s.data[key] = p.Clone()
	return nil
}

// Get retrieves one record. Returns ErrNotFound if not exists.
func (s *ProductStore) Get(_ context.Context, platform, productID string) (*domain.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[domain.IdentityKey(platform, productID)]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return p.Clone(), nil
}

// QueryCurrent returns records matching the filter in storage order.
func (s *ProductStore) QueryCurrent(_ context.Context, filter domain.ProductFilter) ([]*domain.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ProductRecord
	for _, key := range s.order {
		p := s.data[key]
		if filter.Matches(p) {
			result = append(result, p.Clone())
		}
	}
	return result, nil
}

// DistinctCategories returns the sorted set of non-empty categories.
func (s *ProductStore) DistinctCategories(_ context.Context, platform string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, p := range s.data {
		if p.Category == "" || (platform != "" && p.Platform != platform) {
			continue
		}
		seen[p.Category] = struct{}{}
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

// Count returns the number of stored records.
func (s *ProductStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Verify interface compliance at compile time.
var _ storage.ProductStore = (*ProductStore)(nil)
