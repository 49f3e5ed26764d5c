package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

// mockConnector runs every scoped operation against a pgxmock pool.
type mockConnector struct {
	pgxmock.PgxPoolIface
	acquired int
	released int
}

func (m *mockConnector) WithConn(_ context.Context, fn func(q Querier) error) error {
	m.acquired++
	defer func() { m.released++ }()
	return fn(m.PgxPoolIface)
}

func newMockConnector(t *testing.T) *mockConnector {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return &mockConnector{PgxPoolIface: mock}
}

// ptr is a helper to create pointers for test values
func ptr[T any](v T) *T {
	return &v
}
