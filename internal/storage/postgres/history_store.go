package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/storage"
)

// HistoryStore implements storage.HistoryStore using PostgreSQL.
type HistoryStore struct {
	db Connector
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(db Connector) *HistoryStore {
	return &HistoryStore{db: db}
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

// Append adds a snapshot. Returns ErrDuplicateKey if (platform, product_id, snapshot_date) exists.
func (s *HistoryStore) Append(ctx context.Context, snap *domain.HistorySnapshot) error {
	if snap == nil || snap.ProductID == "" || snap.Date.IsZero() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO product_history (
			snapshot_id, platform, product_id, category, snapshot_date,
			price, sales_volume, rating, reviews_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	return s.db.WithConn(ctx, func(q Querier) error {
		_, err := q.Exec(ctx, query,
			snap.SnapshotID,
			snap.Platform,
			snap.ProductID,
			snap.Category,
			snap.Date.UTC(),
			snap.Price,
			snap.SalesVolume,
			snap.Rating,
			snap.ReviewsCount,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("append snapshot: %w", err)
		}
		return nil
	})
}

// QueryHistory returns snapshots matching the filter ordered by date ASC.
func (s *HistoryStore) QueryHistory(ctx context.Context, filter domain.HistoryFilter) ([]*domain.HistorySnapshot, error) {
	where, args := historyWhere(filter)
	query := `
		SELECT snapshot_id, platform, product_id, category, snapshot_date,
			price, sales_volume, rating, reviews_count
		FROM product_history` + where + `
		ORDER BY snapshot_date ASC, platform ASC, product_id ASC
	`

	var snaps []*domain.HistorySnapshot
	err := s.db.WithConn(ctx, func(q Querier) error {
		rows, err := q.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		snaps, err = scanSnapshots(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return snaps, nil
}

func historyWhere(f domain.HistoryFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.Platform != "" {
		add("platform = $%d", f.Platform)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if !f.Since.IsZero() {
		add("snapshot_date >= $%d", f.Since.UTC())
	}
	if !f.Until.IsZero() {
		add("snapshot_date <= $%d", f.Until.UTC())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

// scanSnapshots scans multiple rows into HistorySnapshots.
func scanSnapshots(rows pgx.Rows) ([]*domain.HistorySnapshot, error) {
	var snaps []*domain.HistorySnapshot
	for rows.Next() {
		var s domain.HistorySnapshot
		err := rows.Scan(
			&s.SnapshotID,
			&s.Platform,
			&s.ProductID,
			&s.Category,
			&s.Date,
			&s.Price,
			&s.SalesVolume,
			&s.Rating,
			&s.ReviewsCount,
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
