package storage

import (
	"context"
	"errors"
	"time"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/observability"
)

// InstrumentedProductStore records query latency and errors of a ProductStore.
type InstrumentedProductStore struct {
	next     ProductStore
	database string
	metrics  *observability.Metrics
}

// InstrumentProducts wraps next. database labels the metrics.
func InstrumentProducts(next ProductStore, database string, m *observability.Metrics) *InstrumentedProductStore {
	return &InstrumentedProductStore{next: next, database: database, metrics: m}
}

func (s *InstrumentedProductStore) observe(op string, start time.Time, err error) {
	s.metrics.RecordDBQuery(s.database, op, time.Since(start).Seconds(), err)
}

// Upsert delegates to the wrapped store.
func (s *InstrumentedProductStore) Upsert(ctx context.Context, p *domain.ProductRecord) (err error) {
	defer func(start time.Time) { s.observe("product_upsert", start, err) }(time.Now())
	return s.next.Upsert(ctx, p)
}

// Get delegates to the wrapped store. ErrNotFound is not counted as an error.
func (s *InstrumentedProductStore) Get(ctx context.Context, platform, productID string) (p *domain.ProductRecord, err error) {
	defer func(start time.Time) {
		observed := err
		if errors.Is(observed, ErrNotFound) {
			observed = nil
		}
		s.observe("product_get", start, observed)
	}(time.Now())
	return s.next.Get(ctx, platform, productID)
}

// QueryCurrent delegates to the wrapped store.
func (s *InstrumentedProductStore) QueryCurrent(ctx context.Context, filter domain.ProductFilter) (out []*domain.ProductRecord, err error) {
	defer func(start time.Time) { s.observe("product_query", start, err) }(time.Now())
	return s.next.QueryCurrent(ctx, filter)
}

// DistinctCategories delegates to the wrapped store.
func (s *InstrumentedProductStore) DistinctCategories(ctx context.Context, platform string) (out []string, err error) {
	defer func(start time.Time) { s.observe("product_categories", start, err) }(time.Now())
	return s.next.DistinctCategories(ctx, platform)
}

// InstrumentedHistoryStore records query latency and errors of a HistoryStore.
type InstrumentedHistoryStore struct {
	next     HistoryStore
	database string
	metrics  *observability.Metrics
}

// InstrumentHistory wraps next. database labels the metrics.
func InstrumentHistory(next HistoryStore, database string, m *observability.Metrics) *InstrumentedHistoryStore {
	return &InstrumentedHistoryStore{next: next, database: database, metrics: m}
}

// Append delegates to the wrapped store. ErrDuplicateKey is not counted as an error.
func (s *InstrumentedHistoryStore) Append(ctx context.Context, snap *domain.HistorySnapshot) (err error) {
	defer func(start time.Time) {
		observed := err
		if errors.Is(observed, ErrDuplicateKey) {
			observed = nil
		}
		s.metrics.RecordDBQuery(s.database, "history_append", time.Since(start).Seconds(), observed)
	}(time.Now())
	return s.next.Append(ctx, snap)
}

// QueryHistory delegates to the wrapped store.
func (s *InstrumentedHistoryStore) QueryHistory(ctx context.Context, filter domain.HistoryFilter) (out []*domain.HistorySnapshot, err error) {
	defer func(start time.Time) {
		s.metrics.RecordDBQuery(s.database, "history_query", time.Since(start).Seconds(), err)
	}(time.Now())
	return s.next.QueryHistory(ctx, filter)
}

var (
	_ ProductStore = (*InstrumentedProductStore)(nil)
	_ HistoryStore = (*InstrumentedHistoryStore)(nil)
)
