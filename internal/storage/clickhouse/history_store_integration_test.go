package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/storage"
)

func TestHistoryStore_AppendAndQuery(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewHistoryStore(conn)
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	for i, sales := range []int64{100, 150, 300} {
		err := store.Append(ctx, &domain.HistorySnapshot{
			SnapshotID:  "snap",
			Platform:    "tiktok",
			ProductID:   "X",
			Category:    "Beauty",
			Date:        base.AddDate(0, 0, i),
			Price:       19.9,
			SalesVolume: sales,
			Rating:      4.7,
		})
		require.NoError(t, err)
	}

	err := store.Append(ctx, &domain.HistorySnapshot{Platform: "tiktok", ProductID: "X", Date: base})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	snaps, err := store.QueryHistory(ctx, domain.HistoryFilter{Platform: "tiktok", Since: base})
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, int64(100), snaps[0].SalesVolume)
	assert.Equal(t, int64(300), snaps[2].SalesVolume)
	assert.True(t, snaps[0].Date.Equal(base))
}
