package converter

import (
	"database/sql"
	"time"

	"request-desk/internal/domain/request"
	"request-desk/internal/pkg/errs"
	"request-desk/internal/pkg/ptr"

	"github.com/shopspring/decimal"
)

// RequestRow mirrors one row of the requests table.
type RequestRow struct {
	ID          int64
	Kind        string
	Title       string
	Description string
	Status      string
	Amount      decimal.NullDecimal
	StartDate   sql.NullTime
	EndDate     sql.NullTime
	Requester   string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScanTargets lists the destinations in RequestColumns order.
func (row *RequestRow) ScanTargets() []any {
	return []any{
		&row.ID, &row.Kind, &row.Title, &row.Description, &row.Status, &row.Amount,
		&row.StartDate, &row.EndDate, &row.Requester, &row.Notes, &row.CreatedAt, &row.UpdatedAt,
	}
}

const RequestColumns = "id, kind, title, description, status, amount, start_date, end_date, requester, notes, created_at, updated_at"

func RequestToRow(r *request.Request) RequestRow {
	s := r.Snapshot()
	return RequestRow{
		ID:          s.ID,
		Kind:        string(s.Kind),
		Title:       s.Title,
		Description: s.Description,
		Status:      string(s.Status),
		Amount:      ptr.NullDecimal(s.Amount),
		StartDate:   ptr.NullTime(s.StartDate),
		EndDate:     ptr.NullTime(s.EndDate),
		Requester:   s.Requester,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt.UTC(),
		UpdatedAt:   s.UpdatedAt.UTC(),
	}
}

func RowToRequest(row RequestRow) (*request.Request, error) {
	kind, err := request.ParseKind(row.Kind)
	if err != nil {
		return nil, errs.Wrapf(err, "request %d", row.ID)
	}
	status, err := request.ParseStatus(row.Status)
	if err != nil {
		return nil, errs.Wrapf(err, "request %d", row.ID)
	}
	return request.Reconstruct(request.Snapshot{
		ID:          row.ID,
		Kind:        kind,
		Title:       row.Title,
		Description: row.Description,
		Status:      status,
		Amount:      ptr.DecimalFromNull(row.Amount),
		StartDate:   ptr.TimeFromNull(row.StartDate),
		EndDate:     ptr.TimeFromNull(row.EndDate),
		Requester:   row.Requester,
		Notes:       row.Notes,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}), nil
}
