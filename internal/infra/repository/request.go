package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"request-desk/internal/domain/request"
	"request-desk/internal/infra"
	"request-desk/internal/infra/db"
	"request-desk/internal/infra/repository/converter"
	"request-desk/internal/infra/uow"
	"request-desk/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type RequestRepository struct {
	db      *sql.DB
	dialect db.Dialect
	uow     *uow.SQLUoW
	logger  *slog.Logger
}

func NewRequestRepository(conn *sql.DB, dialect db.Dialect, logger *slog.Logger) *RequestRepository {
	opts := uow.DefaultOptions
	if dialect.Name == db.SQLite.Name {
		opts.Isolation = sql.LevelDefault
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestRepository{
		db:      conn,
		dialect: dialect,
		uow:     uow.NewSQLUoWWithOptions(conn, opts),
		logger:  logger,
	}
}

func (r *RequestRepository) Create(ctx context.Context, req *request.Request) (*request.Request, error) {
	row := converter.RequestToRow(req)
	b := newQueryBuilder(r.dialect)
	query := "INSERT INTO requests (kind, title, description, status, amount, start_date, end_date, requester, notes, created_at, updated_at) VALUES (" +
		b.arg(row.Kind) + ", " + b.arg(row.Title) + ", " + b.arg(row.Description) + ", " + b.arg(row.Status) + ", " +
		b.arg(row.Amount) + ", " + b.arg(row.StartDate) + ", " + b.arg(row.EndDate) + ", " + b.arg(row.Requester) + ", " +
		b.arg(row.Notes) + ", " + b.arg(row.CreatedAt) + ", " + b.arg(row.UpdatedAt) + ") RETURNING id"

	var id int64
	if err := r.db.QueryRowContext(ctx, query, b.args...).Scan(&id); err != nil {
		return nil, infra.WrapDBErr(r.logger, "failed to create request", err)
	}
	return req.WithID(id), nil
}

func (r *RequestRepository) Mutate(ctx context.Context, id int64, fn shared.MutateFunc) (*request.Request, error) {
	var updated *request.Request
	err := r.uow.Within(ctx, func(ctx context.Context, tx *sql.Tx) error {
		current, err := r.findForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		if err := r.update(ctx, tx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RequestRepository) Delete(ctx context.Context, id int64, guard shared.GuardFunc) error {
	return r.uow.Within(ctx, func(ctx context.Context, tx *sql.Tx) error {
		current, err := r.findForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(current); err != nil {
				return err
			}
		}
		b := newQueryBuilder(r.dialect)
		if _, err := tx.ExecContext(ctx, "DELETE FROM requests WHERE id = "+b.arg(id), b.args...); err != nil {
			return infra.WrapDBErr(r.logger, "failed to delete request", err)
		}
		return nil
	})
}

func (r *RequestRepository) FindByID(ctx context.Context, id int64) (*request.Request, error) {
	return r.findOne(ctx, r.db, id, "")
}

func (r *RequestRepository) List(ctx context.Context, opts shared.ListOptions) ([]*request.Request, error) {
	b := newQueryBuilder(r.dialect)
	b.applyFilter(opts.Filter)
	query := "SELECT " + converter.RequestColumns + " FROM requests" + b.whereClause() + b.orderBy(opts.Ordering) + b.page(opts.Page)

	rows, err := r.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, infra.WrapDBErr(r.logger, "failed to list requests", err)
	}
	defer rows.Close()

	out := []*request.Request{}
	for rows.Next() {
		var row converter.RequestRow
		if err := rows.Scan(row.ScanTargets()...); err != nil {
			return nil, infra.WrapDBErr(r.logger, "failed to scan request", err)
		}
		req, err := converter.RowToRequest(row)
		if err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptData, "invalid request row", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapDBErr(r.logger, "failed to iterate requests", err)
	}
	return out, nil
}

func (r *RequestRepository) Count(ctx context.Context, f shared.RequestFilter) (int, error) {
	b := newQueryBuilder(r.dialect)
	b.applyFilter(f)
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM requests"+b.whereClause(), b.args...).Scan(&n); err != nil {
		return 0, infra.WrapDBErr(r.logger, "failed to count requests", err)
	}
	return n, nil
}

func (r *RequestRepository) Statistics(ctx context.Context, f shared.RequestFilter) (*shared.RequestStatistics, error) {
	stats := shared.NewRequestStatistics()

	byStatus, err := r.groupCount(ctx, "status", f)
	if err != nil {
		return nil, err
	}
	for k, n := range byStatus {
		stats.ByStatus[request.Status(k)] = n
		stats.Total += n
	}

	byKind, err := r.groupCount(ctx, "kind", f)
	if err != nil {
		return nil, err
	}
	for k, n := range byKind {
		stats.ByKind[request.Kind(k)] = n
	}

	if stats.TotalApprovedAmount, err = r.approvedAmount(ctx, f); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *RequestRepository) groupCount(ctx context.Context, column string, f shared.RequestFilter) (map[string]int, error) {
	b := newQueryBuilder(r.dialect)
	b.applyFilter(f)
	query := "SELECT " + column + ", COUNT(*) FROM requests" + b.whereClause() + " GROUP BY " + column

	rows, err := r.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, infra.WrapDBErr(r.logger, "failed to count requests by "+column, err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, infra.WrapDBErr(r.logger, "failed to scan "+column+" count", err)
		}
		out[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapDBErr(r.logger, "failed to iterate "+column+" counts", err)
	}
	return out, nil
}

func (r *RequestRepository) approvedAmount(ctx context.Context, f shared.RequestFilter) (decimal.Decimal, error) {
	b := newQueryBuilder(r.dialect)
	b.applyFilter(f)
	b.where("status = " + b.arg(string(request.StatusApproved)))
	b.where("amount IS NOT NULL")

	if r.dialect.SumsAmounts() {
		var sum decimal.NullDecimal
		if err := r.db.QueryRowContext(ctx, "SELECT SUM(amount) FROM requests"+b.whereClause(), b.args...).Scan(&sum); err != nil {
			return decimal.Zero, infra.WrapDBErr(r.logger, "failed to sum approved amounts", err)
		}
		if !sum.Valid {
			return decimal.Zero, nil
		}
		return sum.Decimal, nil
	}

	rows, err := r.db.QueryContext(ctx, "SELECT amount FROM requests"+b.whereClause(), b.args...)
	if err != nil {
		return decimal.Zero, infra.WrapDBErr(r.logger, "failed to load approved amounts", err)
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var v decimal.Decimal
		if err := rows.Scan(&v); err != nil {
			return decimal.Zero, infra.WrapDBErr(r.logger, "failed to scan approved amount", err)
		}
		sum = sum.Add(v)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, infra.WrapDBErr(r.logger, "failed to iterate approved amounts", err)
	}
	return sum, nil
}

func (r *RequestRepository) findForUpdate(ctx context.Context, tx DBTX, id int64) (*request.Request, error) {
	return r.findOne(ctx, tx, id, r.dialect.LockClause())
}

func (r *RequestRepository) findOne(ctx context.Context, q DBTX, id int64, suffix string) (*request.Request, error) {
	b := newQueryBuilder(r.dialect)
	query := "SELECT " + converter.RequestColumns + " FROM requests WHERE id = " + b.arg(id) + suffix

	var row converter.RequestRow
	if err := q.QueryRowContext(ctx, query, b.args...).Scan(row.ScanTargets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, fmt.Sprintf("request %d not found", id), nil)
		}
		return nil, infra.WrapDBErr(r.logger, "failed to load request", err)
	}
	req, err := converter.RowToRequest(row)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptData, "invalid request row", err)
	}
	return req, nil
}

func (r *RequestRepository) update(ctx context.Context, tx DBTX, req *request.Request) error {
	row := converter.RequestToRow(req)
	b := newQueryBuilder(r.dialect)
	query := "UPDATE requests SET kind = " + b.arg(row.Kind) +
		", title = " + b.arg(row.Title) +
		", description = " + b.arg(row.Description) +
		", status = " + b.arg(row.Status) +
		", amount = " + b.arg(row.Amount) +
		", start_date = " + b.arg(row.StartDate) +
		", end_date = " + b.arg(row.EndDate) +
		", notes = " + b.arg(row.Notes) +
		", updated_at = " + b.arg(row.UpdatedAt) +
		" WHERE id = " + b.arg(row.ID)

	res, err := tx.ExecContext(ctx, query, b.args...)
	if err != nil {
		return infra.WrapDBErr(r.logger, "failed to update request", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, fmt.Sprintf("request %d not found", row.ID), nil)
	}
	return nil
}
