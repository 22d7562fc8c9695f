//go:build unit || e2e

package builder

import (
	"time"

	"request-desk/internal/domain/request"
	reqdto "request-desk/internal/handler/dto/request"

	"github.com/shopspring/decimal"
)

var DefaultNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

type RequestBuilder struct {
	Kind        string
	Title       string
	Description string
	Requester   string
	Notes       string
	Amount      *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Status      request.Status
	ID          int64
	Now         time.Time
}

func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		Kind:        string(request.KindSupport),
		Title:       "Printer on floor 3",
		Description: "The printer keeps jamming on every second page.",
		Requester:   "Ana Souza",
		Status:      request.StatusPending,
		ID:          1,
		Now:         DefaultNow,
	}
}

func (b *RequestBuilder) With(mutate func(*RequestBuilder)) *RequestBuilder {
	mutate(b)
	return b
}

func (b *RequestBuilder) WithKind(k request.Kind) *RequestBuilder {
	b.Kind = string(k)
	return b
}

func (b *RequestBuilder) WithDescription(s string) *RequestBuilder {
	b.Description = s
	return b
}

func (b *RequestBuilder) WithRequester(s string) *RequestBuilder {
	b.Requester = s
	return b
}

func (b *RequestBuilder) WithAmount(s string) *RequestBuilder {
	d := decimal.RequireFromString(s)
	b.Amount = &d
	return b
}

func (b *RequestBuilder) WithPeriod(start, end string) *RequestBuilder {
	s, _ := time.Parse(time.DateOnly, start)
	e, _ := time.Parse(time.DateOnly, end)
	b.StartDate, b.EndDate = &s, &e
	return b
}

func (b *RequestBuilder) WithStatus(s request.Status) *RequestBuilder {
	b.Status = s
	return b
}

func (b *RequestBuilder) WithID(id int64) *RequestBuilder {
	b.ID = id
	return b
}

func (b *RequestBuilder) At(t time.Time) *RequestBuilder {
	b.Now = t
	return b
}

// AsReimbursement switches to a monetary kind with a valid amount.
func (b *RequestBuilder) AsReimbursement() *RequestBuilder {
	return b.WithKind(request.KindReimbursement).WithAmount("150.25")
}

// AsVacation switches to a scheduling kind with a valid period.
func (b *RequestBuilder) AsVacation() *RequestBuilder {
	return b.WithKind(request.KindVacation).WithPeriod("2025-04-01", "2025-04-05")
}

// AsTraining needs both an amount and a period.
func (b *RequestBuilder) AsTraining() *RequestBuilder {
	return b.WithKind(request.KindTraining).WithAmount("1200.00").WithPeriod("2025-05-12", "2025-05-14")
}

func (b *RequestBuilder) BuildDraft() request.Draft {
	return request.Draft{
		Kind:        request.Kind(b.Kind),
		Title:       b.Title,
		Description: b.Description,
		Requester:   b.Requester,
		Notes:       b.Notes,
		Amount:      b.Amount,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
	}
}

// BuildDomain validates through NewRequest; the id and status are not applied.
func (b *RequestBuilder) BuildDomain() (*request.Request, error) {
	return request.NewRequest(b.BuildDraft(), b.Now)
}

// BuildStored skips validation and returns a request as a store would hand it back.
func (b *RequestBuilder) BuildStored() *request.Request {
	return request.Reconstruct(b.BuildSnapshot())
}

func (b *RequestBuilder) BuildSnapshot() request.Snapshot {
	return request.Snapshot{
		ID:          b.ID,
		Kind:        request.Kind(b.Kind),
		Title:       b.Title,
		Description: b.Description,
		Status:      b.Status,
		Amount:      b.Amount,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		Requester:   b.Requester,
		Notes:       b.Notes,
		CreatedAt:   b.Now,
		UpdatedAt:   b.Now,
	}
}

func (b *RequestBuilder) BuildCreateRequestDTO() reqdto.CreateRequestRequest {
	dto := reqdto.CreateRequestRequest{
		Kind:        b.Kind,
		Title:       b.Title,
		Description: b.Description,
		Requester:   b.Requester,
		Notes:       b.Notes,
		Amount:      b.Amount,
	}
	if b.StartDate != nil {
		dto.StartDate = &reqdto.Date{Time: *b.StartDate}
	}
	if b.EndDate != nil {
		dto.EndDate = &reqdto.Date{Time: *b.EndDate}
	}
	return dto
}
