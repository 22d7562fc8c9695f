package request

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	domreq "request-desk/internal/domain/request"
	"request-desk/internal/pkg/ptr"

	"github.com/shopspring/decimal"
)

// Date is a calendar day encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

func (d *Date) timePtr() *time.Time {
	if d == nil {
		return nil
	}
	return ptr.Of(d.Time)
}

// Nullable tells an absent field apart from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(b, []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) cleared() bool { return n.Set && n.Value == nil }

type CreateRequestRequest struct {
	Kind        string           `json:"kind" binding:"required,request_kind"`
	Title       string           `json:"title" binding:"max=200"`
	Description string           `json:"description" binding:"required"`
	Requester   string           `json:"requester" binding:"max=200"`
	Notes       string           `json:"notes" binding:"max=500"`
	Amount      *decimal.Decimal `json:"amount"`
	StartDate   *Date            `json:"start_date"`
	EndDate     *Date            `json:"end_date"`
}

func (r *CreateRequestRequest) ToDraft() domreq.Draft {
	return domreq.Draft{
		Kind:        domreq.Kind(r.Kind),
		Title:       r.Title,
		Description: r.Description,
		Requester:   r.Requester,
		Notes:       r.Notes,
		Amount:      r.Amount,
		StartDate:   r.StartDate.timePtr(),
		EndDate:     r.EndDate.timePtr(),
	}
}

// UpdateRequestRequest serves both PUT and PATCH. Absent fields keep their current value;
// amount, start_date and end_date accept null to remove the value.
type UpdateRequestRequest struct {
	Kind        *string                   `json:"kind" binding:"omitempty,request_kind"`
	Title       *string                   `json:"title" binding:"omitempty,max=200"`
	Description *string                   `json:"description"`
	Notes       *string                   `json:"notes" binding:"omitempty,max=500"`
	Amount      Nullable[decimal.Decimal] `json:"amount" swaggertype:"string"`
	StartDate   Nullable[Date]            `json:"start_date" swaggertype:"string" format:"date"`
	EndDate     Nullable[Date]            `json:"end_date" swaggertype:"string" format:"date"`
}

func (r *UpdateRequestRequest) ToPatch() domreq.Patch {
	p := domreq.Patch{
		Title:          r.Title,
		Description:    r.Description,
		Notes:          r.Notes,
		Amount:         r.Amount.Value,
		StartDate:      r.StartDate.Value.timePtr(),
		EndDate:        r.EndDate.Value.timePtr(),
		ClearAmount:    r.Amount.cleared(),
		ClearStartDate: r.StartDate.cleared(),
		ClearEndDate:   r.EndDate.cleared(),
	}
	if r.Kind != nil {
		p.Kind = ptr.Of(domreq.Kind(*r.Kind))
	}
	return p
}

type TransitionRequest struct {
	Notes string `json:"notes" binding:"max=500"`
}
