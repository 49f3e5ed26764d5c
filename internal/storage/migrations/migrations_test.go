package migrations

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := `-- header comment
CREATE TABLE a (x Int32);

-- second
CREATE VIEW b AS SELECT 1;
`
	stmts := splitStatements(sql)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x Int32)", stmts[0])
	assert.Equal(t, "CREATE VIEW b AS SELECT 1", stmts[1])
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings("SELECT 'a''b'; SELECT 1;"))
	assert.Error(t, validateNoSemicolonInStrings("SELECT 'a;b';"))
}

func TestEmbeddedMigrationsLoad(t *testing.T) {
	pg, err := load(PostgresFS, "postgres")
	require.NoError(t, err)
	require.NotEmpty(t, pg)
	assert.Equal(t, "001_products.sql", pg[0].Name)

	ch, err := load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	for _, m := range ch {
		assert.NoError(t, validateNoSemicolonInStrings(m.SQL), m.Name)
	}
}

func TestRunPostgresMigrations(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS products`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS product_history`).
		WillReturnError(errors.New("permission denied"))

	applied, err := RunPostgresMigrations(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_product_history.sql")
	assert.Equal(t, []string{"001_products.sql"}, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/trends")
	require.NoError(t, err)
	assert.Equal(t, "trends", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}
