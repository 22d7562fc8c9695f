package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the flat persisted form of a Request.
type Snapshot struct {
	ID          int64
	Kind        Kind
	Title       string
	Description string
	Status      Status
	Amount      *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Requester   string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r *Request) Snapshot() Snapshot {
	s := Snapshot{
		ID:          r.id,
		Kind:        r.kind,
		Title:       r.title.String(),
		Description: r.description.String(),
		Status:      r.status,
		StartDate:   r.startDate,
		EndDate:     r.endDate,
		Requester:   r.requester.String(),
		Notes:       r.notes.String(),
		CreatedAt:   r.createdAt,
		UpdatedAt:   r.updatedAt,
	}
	if r.amount != nil {
		v := r.amount.Decimal()
		s.Amount = &v
	}
	return s
}

// Reconstruct rebuilds a Request from stored data without re-running validation.
func Reconstruct(s Snapshot) *Request {
	r := &Request{
		id:          s.ID,
		kind:        s.Kind,
		title:       Title{text: s.Title},
		description: Description{text: s.Description},
		status:      s.Status,
		requester:   Requester{name: s.Requester},
		notes:       Notes{text: s.Notes},
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
	}
	if s.Amount != nil {
		r.amount = &Amount{value: *s.Amount}
	}
	if s.StartDate != nil {
		d := Day(*s.StartDate)
		r.startDate = &d
	}
	if s.EndDate != nil {
		d := Day(*s.EndDate)
		r.endDate = &d
	}
	return r
}
