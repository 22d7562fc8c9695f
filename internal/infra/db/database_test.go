//go:build unit

package db_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"request-desk/internal/infra/db"
	"request-desk/internal/pkg/config"
	"request-desk/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	d, err := db.DialectFor(config.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, db.SQLite.Name, d.Name)

	_, err = db.DialectFor("mysql")
	require.ErrorContains(t, err, `no SQL dialect for driver "mysql"`)
	assert.Contains(t, strings.Join(errs.ExtractStackLines(err, 0), "\n"), "database.go")
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	store := config.StoreConfig{SQLitePath: filepath.Join(t.TempDir(), "desk.db")}

	conn, err := db.Open(db.SQLite, store.SQLiteDSN(), config.DBConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(ctx, conn, db.SQLite))
	// applying twice is a no-op
	require.NoError(t, db.Migrate(ctx, conn, db.SQLite))

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM requests").Scan(&n))
	assert.Zero(t, n)
}
