//go:build unit

package uow

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"request-desk/internal/infra/db"
	"request-desk/internal/pkg/config"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	store := config.StoreConfig{SQLitePath: filepath.Join(t.TempDir(), "uow.db")}
	conn, err := db.Open(db.SQLite, store.SQLiteDSN(), config.DBConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.Exec("CREATE TABLE counters (name TEXT PRIMARY KEY, n INTEGER NOT NULL)")
	require.NoError(t, err)
	return conn
}

func count(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM counters").Scan(&n))
	return n
}

func TestWithinCommitsAndRollsBack(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	u := NewSQLUoWWithOptions(conn, Options{Isolation: sql.LevelDefault, MaxRetries: 1, BaseBackoff: time.Millisecond})

	err := u.Within(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO counters (name, n) VALUES ('a', 1)")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count(t, conn))

	boom := errors.New("boom")
	err = u.Within(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO counters (name, n) VALUES ('b', 1)"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count(t, conn))
}

func TestWithinRetriesSerializationFailures(t *testing.T) {
	conn := openSQLite(t)
	u := NewSQLUoWWithOptions(conn, Options{MaxRetries: 2, BaseBackoff: time.Millisecond})

	t.Run("succeeds once the conflict clears", func(t *testing.T) {
		calls := 0
		err := u.Within(context.Background(), func(context.Context, *sql.Tx) error {
			calls++
			if calls < 3 {
				return &pgconn.PgError{Code: pgErrCodeSerializationFailure}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := u.Within(context.Background(), func(context.Context, *sql.Tx) error {
			calls++
			return &pgconn.PgError{Code: pgErrCodeDeadlockDetected}
		})
		assert.True(t, errors.Is(err, errMaxRetriesExceeded))
		assert.Equal(t, 3, calls)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		calls := 0
		err := u.Within(context.Background(), func(context.Context, *sql.Tx) error {
			calls++
			return &pgconn.PgError{Code: "23505"}
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestCalculateBackoff(t *testing.T) {
	base := 10 * time.Millisecond
	for attempt := range 4 {
		got := calculateBackoff(attempt, base)
		floor := time.Duration(1<<attempt) * base
		assert.GreaterOrEqual(t, got, floor)
		assert.Less(t, got, floor+floor/5+1)
	}
}
