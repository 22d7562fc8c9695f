package request

import (
	"time"

	"request-desk/internal/pkg/patch"

	"github.com/shopspring/decimal"
)

type Request struct {
	id          int64
	kind        Kind
	title       Title
	description Description
	status      Status
	amount      *Amount
	startDate   *time.Time
	endDate     *time.Time
	requester   Requester
	notes       Notes
	createdAt   time.Time
	updatedAt   time.Time
}

// Draft carries the caller-supplied fields of a new request.
type Draft struct {
	Kind        Kind
	Title       string
	Description string
	Requester   string
	Notes       string
	Amount      *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
}

// Patch lists the fields a generic update may change. Nil means unchanged;
// a Clear flag removes the optional value instead.
type Patch struct {
	Kind           *Kind
	Title          *string
	Description    *string
	Notes          *string
	Amount         *decimal.Decimal
	StartDate      *time.Time
	EndDate        *time.Time
	ClearAmount    bool
	ClearStartDate bool
	ClearEndDate   bool
}

func (p Patch) IsEmpty() bool {
	return p.Kind == nil && p.Title == nil && p.Description == nil && p.Notes == nil &&
		p.Amount == nil && p.StartDate == nil && p.EndDate == nil &&
		!p.ClearAmount && !p.ClearStartDate && !p.ClearEndDate
}

type validated struct {
	kind        Kind
	title       Title
	description Description
	requester   Requester
	notes       Notes
	amount      *Amount
	startDate   *time.Time
	endDate     *time.Time
}

func validate(d Draft) (validated, error) {
	var problems fieldErrors
	var v validated

	switch {
	case d.Kind == "":
		problems.add("kind", RuleRequired, "kind is required")
	case !d.Kind.IsValid():
		problems.add("kind", RuleInvalidChoice, "kind is not a known request kind")
	default:
		v.kind = d.Kind
	}

	var err error
	v.title, err = NewTitle(d.Title)
	problems.check(err)
	v.description, err = NewDescription(d.Description)
	problems.check(err)
	v.requester, err = NewRequester(d.Requester)
	problems.check(err)
	v.notes, err = NewNotes(d.Notes)
	problems.check(err)

	if d.Amount != nil {
		a, aerr := NewAmount(*d.Amount)
		problems.check(aerr)
		if aerr == nil {
			v.amount = &a
		}
	} else if v.kind.RequiresAmount() {
		problems.add("amount", RuleRequired, "amount is required for "+string(v.kind)+" requests")
	}

	if d.StartDate != nil {
		s := Day(*d.StartDate)
		v.startDate = &s
	}
	if d.EndDate != nil {
		e := Day(*d.EndDate)
		v.endDate = &e
	}
	if v.kind.RequiresPeriod() {
		if v.startDate == nil {
			problems.add("start_date", RuleRequired, "start date is required for "+string(v.kind)+" requests")
		}
		if v.endDate == nil {
			problems.add("end_date", RuleRequired, "end date is required for "+string(v.kind)+" requests")
		}
	}
	if v.startDate != nil && v.endDate != nil {
		_, perr := NewPeriod(*v.startDate, *v.endDate)
		problems.check(perr)
	}

	if err := problems.err(); err != nil {
		return validated{}, err
	}
	return v, nil
}

// NewRequest validates a draft and returns a pending request without an id.
func NewRequest(d Draft, now time.Time) (*Request, error) {
	v, err := validate(d)
	if err != nil {
		return nil, err
	}
	return &Request{
		kind:        v.kind,
		title:       v.title,
		description: v.description,
		status:      StatusPending,
		amount:      v.amount,
		startDate:   v.startDate,
		endDate:     v.endDate,
		requester:   v.requester,
		notes:       v.notes,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ApplyPatch merges p into the request. Nothing changes unless the merged view is valid.
func (r *Request) ApplyPatch(p Patch, now time.Time) error {
	if r.status.IsTerminal() {
		return &ValidationError{Fields: []FieldError{{
			Field:   "status",
			Rule:    RuleTerminal,
			Message: "a request in status " + string(r.status) + " can no longer be edited",
		}}}
	}

	d := r.draft()
	d.Kind = patch.Coalesce(p.Kind, d.Kind)
	d.Title = patch.Coalesce(p.Title, d.Title)
	d.Description = patch.Coalesce(p.Description, d.Description)
	d.Notes = patch.Coalesce(p.Notes, d.Notes)
	d.Amount = patch.Clearable(p.ClearAmount, p.Amount, d.Amount)
	d.StartDate = patch.Clearable(p.ClearStartDate, p.StartDate, d.StartDate)
	d.EndDate = patch.Clearable(p.ClearEndDate, p.EndDate, d.EndDate)

	v, err := validate(d)
	if err != nil {
		return err
	}

	r.kind = v.kind
	r.title = v.title
	r.description = v.description
	r.notes = v.notes
	r.amount = v.amount
	r.startDate = v.startDate
	r.endDate = v.endDate
	r.updatedAt = now
	return nil
}

// Apply moves the request along the status table. Non-empty notes replace the previous notes.
func (r *Request) Apply(action Action, notes string, now time.Time) error {
	if !CanApply(r.status, action) {
		return &TransitionError{From: r.status, Action: action}
	}
	var n Notes
	if notes != "" {
		var err error
		if n, err = NewNotes(notes); err != nil {
			return &ValidationError{Fields: []FieldError{err.(FieldError)}}
		}
	}

	r.status = action.Target()
	if n.String() != "" {
		r.notes = n
	}
	r.updatedAt = now
	return nil
}

func (r *Request) StartReview(notes string, now time.Time) error {
	return r.Apply(ActionStartReview, notes, now)
}

func (r *Request) Approve(notes string, now time.Time) error {
	return r.Apply(ActionApprove, notes, now)
}

func (r *Request) Reject(notes string, now time.Time) error {
	return r.Apply(ActionReject, notes, now)
}

func (r *Request) Cancel(notes string, now time.Time) error {
	return r.Apply(ActionCancel, notes, now)
}

// EnsureDeletable rejects removal of approved requests.
func (r *Request) EnsureDeletable() error {
	if r.status == StatusApproved {
		return &ConflictError{ID: r.id, Status: r.status, Reason: "approved requests cannot be deleted"}
	}
	return nil
}

func (r *Request) CanCancel() bool  { return r.status.IsOpen() }
func (r *Request) CanApprove() bool { return r.status.IsOpen() }

// DurationDays counts both ends of the date range.
func (r *Request) DurationDays() (int, bool) {
	if r.startDate == nil || r.endDate == nil {
		return 0, false
	}
	p, err := NewPeriod(*r.startDate, *r.endDate)
	if err != nil {
		return 0, false
	}
	return p.Days(), true
}

func (r *Request) Clone() *Request {
	c := *r
	if r.amount != nil {
		a := *r.amount
		c.amount = &a
	}
	if r.startDate != nil {
		s := *r.startDate
		c.startDate = &s
	}
	if r.endDate != nil {
		e := *r.endDate
		c.endDate = &e
	}
	return &c
}

// WithID returns a copy carrying the id assigned by a store.
func (r *Request) WithID(id int64) *Request {
	c := r.Clone()
	c.id = id
	return c
}

func (r *Request) draft() Draft {
	d := Draft{
		Kind:        r.kind,
		Title:       r.title.String(),
		Description: r.description.String(),
		Requester:   r.requester.String(),
		Notes:       r.notes.String(),
		StartDate:   r.startDate,
		EndDate:     r.endDate,
	}
	if r.amount != nil {
		v := r.amount.Decimal()
		d.Amount = &v
	}
	return d
}

func (r *Request) ID() int64                { return r.id }
func (r *Request) Kind() Kind               { return r.kind }
func (r *Request) Title() Title             { return r.title }
func (r *Request) Description() Description { return r.description }
func (r *Request) Status() Status           { return r.status }
func (r *Request) Amount() *Amount          { return r.amount }
func (r *Request) StartDate() *time.Time    { return r.startDate }
func (r *Request) EndDate() *time.Time      { return r.endDate }
func (r *Request) Requester() Requester     { return r.requester }
func (r *Request) Notes() Notes             { return r.notes }
func (r *Request) CreatedAt() time.Time     { return r.createdAt }
func (r *Request) UpdatedAt() time.Time     { return r.updatedAt }
