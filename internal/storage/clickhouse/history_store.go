package clickhouse

import (
	"context"
	"fmt"
	"strings"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/storage"
)

// HistoryStore implements storage.HistoryStore using ClickHouse.
type HistoryStore struct {
	conn *Conn
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(conn *Conn) *HistoryStore {
	return &HistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

// Append adds a snapshot. Returns ErrDuplicateKey if (platform, product_id, snapshot_date) exists.
// MergeTree does not enforce uniqueness, so the key is checked before insert.
func (s *HistoryStore) Append(ctx context.Context, snap *domain.HistorySnapshot) error {
	if snap == nil || snap.ProductID == "" || snap.Date.IsZero() {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, snap)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO product_history (
			snapshot_id, platform, product_id, category, snapshot_date,
			price, sales_volume, rating, reviews_count
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		snap.SnapshotID, snap.Platform, snap.ProductID, snap.Category, snap.Date.UTC(),
		snap.Price, snap.SalesVolume, snap.Rating, snap.ReviewsCount,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// QueryHistory returns snapshots matching the filter ordered by date ASC.
func (s *HistoryStore) QueryHistory(ctx context.Context, filter domain.HistoryFilter) ([]*domain.HistorySnapshot, error) {
	where, args := historyWhere(filter)
	query := `
		SELECT snapshot_id, platform, product_id, category, snapshot_date,
			price, sales_volume, rating, reviews_count
		FROM product_history FINAL` + where + `
		ORDER BY snapshot_date ASC, platform ASC, product_id ASC
	`

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// exists checks if a snapshot with the same key exists.
func (s *HistoryStore) exists(ctx context.Context, snap *domain.HistorySnapshot) (bool, error) {
	query := `
		SELECT count(*) FROM product_history
		WHERE platform = ? AND product_id = ? AND snapshot_date = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, snap.Platform, snap.ProductID, snap.Date.UTC()).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func historyWhere(f domain.HistoryFilter) (string, []any) {
	var conds []string
	var args []any

	if f.ProductID != "" {
		conds = append(conds, "product_id = ?")
		args = append(args, f.ProductID)
	}
	if f.Platform != "" {
		conds = append(conds, "platform = ?")
		args = append(args, f.Platform)
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if !f.Since.IsZero() {
		conds = append(conds, "snapshot_date >= ?")
		args = append(args, f.Since.UTC())
	}
	if !f.Until.IsZero() {
		conds = append(conds, "snapshot_date <= ?")
		args = append(args, f.Until.UTC())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

// scanSnapshots scans multiple rows.
func scanSnapshots(rows chRows) ([]*domain.HistorySnapshot, error) {
	var snaps []*domain.HistorySnapshot

	for rows.Next() {
		var s domain.HistorySnapshot
		err := rows.Scan(
			&s.SnapshotID, &s.Platform, &s.ProductID, &s.Category, &s.Date,
			&s.Price, &s.SalesVolume, &s.Rating, &s.ReviewsCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		s.Date = s.Date.UTC()
		snaps = append(snaps, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snaps, nil
}
