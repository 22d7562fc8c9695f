//go:build unit || e2e

package dbtest

import (
	"context"
	"testing"
	"time"

	"request-desk/internal/domain/request"
	"request-desk/internal/infra/repository/converter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// InsertRequest writes a snapshot as-is, so tests can start from any status
// without walking the transitions through the API.
func InsertRequest(t *testing.T, db DBLike, snap request.Snapshot) int64 {
	t.Helper()

	row := converter.RequestToRow(request.Reconstruct(snap))
	var id int64
	err := db.QueryRow(context.Background(), `
		INSERT INTO requests (kind, title, description, status, amount, start_date, end_date, requester, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		row.Kind, row.Title, row.Description, row.Status, row.Amount, row.StartDate, row.EndDate,
		row.Requester, row.Notes, row.CreatedAt, row.UpdatedAt,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func CountRequests(t *testing.T, db DBLike) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(context.Background(), "SELECT COUNT(*) FROM requests").Scan(&n))
	return n
}

// ResetDB empties the requests table and restarts its id sequence.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, "TRUNCATE requests RESTART IDENTITY")
	return err
}
