package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/storage"
)

func TestHistoryStore_AppendAndQuery(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Appended out of order on purpose
	snaps := []*domain.HistorySnapshot{
		{Platform: "amazon", ProductID: "p1", Date: base.AddDate(0, 0, 2), SalesVolume: 300},
		{Platform: "amazon", ProductID: "p1", Date: base, SalesVolume: 100},
		{Platform: "amazon", ProductID: "p1", Date: base.AddDate(0, 0, 1), SalesVolume: 150},
		{Platform: "shopee", ProductID: "p2", Date: base, SalesVolume: 10},
	}
	for _, s := range snaps {
		if err := store.Append(ctx, s); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	result, err := store.QueryHistory(ctx, domain.HistoryFilter{ProductID: "p1"})
	if err != nil {
		t.Fatalf("QueryHistory failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("Expected 3 snapshots, got %d", len(result))
	}
	for i, want := range []int64{100, 150, 300} {
		if result[i].SalesVolume != want {
			t.Errorf("position %d: expected %d, got %d", i, want, result[i].SalesVolume)
		}
	}

	result, _ = store.QueryHistory(ctx, domain.HistoryFilter{Since: base.AddDate(0, 0, 1)})
	if len(result) != 2 {
		t.Errorf("Expected 2 snapshots since day 1, got %d", len(result))
	}

	result, _ = store.QueryHistory(ctx, domain.HistoryFilter{Platform: "shopee"})
	if len(result) != 1 || result[0].ProductID != "p2" {
		t.Errorf("Expected shopee snapshot only, got %v", result)
	}
}

func TestHistoryStore_DuplicateKey(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	snap := &domain.HistorySnapshot{Platform: "amazon", ProductID: "p1", Date: date, SalesVolume: 1}
	if err := store.Append(ctx, snap); err != nil {
		t.Fatalf("First append failed: %v", err)
	}

	dup := &domain.HistorySnapshot{Platform: "amazon", ProductID: "p1", Date: date, SalesVolume: 999}
	err := store.Append(ctx, dup)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// The original snapshot is kept, not merged
	result, _ := store.QueryHistory(ctx, domain.HistoryFilter{ProductID: "p1"})
	if len(result) != 1 || result[0].SalesVolume != 1 {
		t.Errorf("Expected original snapshot to survive, got %v", result)
	}

	// Same product id on another platform is a different identity
	other := &domain.HistorySnapshot{Platform: "shopee", ProductID: "p1", Date: date}
	if err := store.Append(ctx, other); err != nil {
		t.Errorf("Expected append on another platform to succeed, got %v", err)
	}
}
