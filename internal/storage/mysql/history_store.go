package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/storage"
)

// HistoryStore implements storage.HistoryStore on gorm.
type HistoryStore struct {
	db *gorm.DB
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

var _ storage.HistoryStore = (*HistoryStore)(nil)

// Append adds a snapshot. Returns ErrDuplicateKey if (platform, product_id, date) exists.
func (s *HistoryStore) Append(ctx context.Context, snap *domain.HistorySnapshot) error {
	if snap == nil || snap.ProductID == "" || snap.Date.IsZero() {
		return storage.ErrInvalidInput
	}

	if err := s.db.WithContext(ctx).Create(toHistoryModel(snap)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("append snapshot: %w", err)
	}
	return nil
}

// QueryHistory returns snapshots matching the filter ordered by date ASC.
func (s *HistoryStore) QueryHistory(ctx context.Context, filter domain.HistoryFilter) ([]*domain.HistorySnapshot, error) {
	var models []historyModel
	err := s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return applyHistoryFilter(tx, filter).
			Order("snapshot_date ASC").Order("platform ASC").Order("product_id ASC").
			Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	snaps := make([]*domain.HistorySnapshot, 0, len(models))
	for i := range models {
		snaps = append(snaps, models[i].toDomain())
	}
	return snaps, nil
}

func applyHistoryFilter(q *gorm.DB, f domain.HistoryFilter) *gorm.DB {
	if f.ProductID != "" {
		q = q.Where("product_id = ?", f.ProductID)
	}
	if f.Platform != "" {
		q = q.Where("platform = ?", f.Platform)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if !f.Since.IsZero() {
		q = q.Where("snapshot_date >= ?", f.Since.UTC())
	}
	if !f.Until.IsZero() {
		q = q.Where("snapshot_date <= ?", f.Until.UTC())
	}
	return q
}
