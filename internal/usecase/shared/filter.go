package shared

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"request-desk/internal/domain/request"

	"github.com/shopspring/decimal"
)

const MaxListLimit = 200

// RequestFilter narrows list, count and statistics queries. Zero fields match everything.
type RequestFilter struct {
	Kinds       []request.Kind
	Statuses    []request.Status
	CreatedFrom *time.Time // inclusive calendar day
	CreatedTo   *time.Time // inclusive calendar day
	StartFrom   *time.Time
	StartTo     *time.Time
	AmountMin   *decimal.Decimal
	AmountMax   *decimal.Decimal
	Requester   string
	Search      string
}

type OrderField string

const (
	OrderByCreatedAt OrderField = "created_at"
	OrderByUpdatedAt OrderField = "updated_at"
	OrderByStartDate OrderField = "start_date"
	OrderByAmount    OrderField = "amount"
)

func (f OrderField) IsValid() bool {
	switch f {
	case OrderByCreatedAt, OrderByUpdatedAt, OrderByStartDate, OrderByAmount:
		return true
	default:
		return false
	}
}

type Ordering struct {
	Field OrderField
	Desc  bool
}

// DefaultOrdering lists the newest requests first.
var DefaultOrdering = Ordering{Field: OrderByCreatedAt, Desc: true}

// ParseOrdering accepts "field" or "-field".
func ParseOrdering(s string) (Ordering, bool) {
	if s == "" {
		return DefaultOrdering, true
	}
	o := Ordering{}
	if strings.HasPrefix(s, "-") {
		o.Desc = true
		s = s[1:]
	}
	o.Field = OrderField(s)
	return o, o.Field.IsValid()
}

type Page struct {
	Limit  int // 0 returns every match
	Offset int
}

type ListOptions struct {
	Filter   RequestFilter
	Ordering Ordering
	Page     Page
}

// CreatedBefore is the exclusive upper bound for CreatedTo.
func (f RequestFilter) CreatedBefore() *time.Time {
	if f.CreatedTo == nil {
		return nil
	}
	t := request.Day(*f.CreatedTo).AddDate(0, 0, 1)
	return &t
}

func (f RequestFilter) CreatedAfter() *time.Time {
	if f.CreatedFrom == nil {
		return nil
	}
	t := request.Day(*f.CreatedFrom)
	return &t
}

// Matches evaluates the filter in memory.
func (f RequestFilter) Matches(r *request.Request) bool {
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, r.Kind()) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, r.Status()) {
		return false
	}
	if from := f.CreatedAfter(); from != nil && r.CreatedAt().Before(*from) {
		return false
	}
	if before := f.CreatedBefore(); before != nil && !r.CreatedAt().Before(*before) {
		return false
	}
	if f.StartFrom != nil || f.StartTo != nil {
		start := r.StartDate()
		if start == nil {
			return false
		}
		if f.StartFrom != nil && start.Before(request.Day(*f.StartFrom)) {
			return false
		}
		if f.StartTo != nil && start.After(request.Day(*f.StartTo)) {
			return false
		}
	}
	if f.AmountMin != nil || f.AmountMax != nil {
		amount := r.Amount()
		if amount == nil {
			return false
		}
		if f.AmountMin != nil && amount.Decimal().LessThan(*f.AmountMin) {
			return false
		}
		if f.AmountMax != nil && amount.Decimal().GreaterThan(*f.AmountMax) {
			return false
		}
	}
	if f.Requester != "" && !containsFold(r.Requester().String(), f.Requester) {
		return false
	}
	if f.Search != "" &&
		!containsFold(r.Title().String(), f.Search) &&
		!containsFold(r.Description().String(), f.Search) &&
		!containsFold(r.Requester().String(), f.Search) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// SortRequests orders rs in place. Ties fall back to id in the same direction.
// A missing start date or amount compares greater than any value.
func SortRequests(rs []*request.Request, o Ordering) {
	slices.SortStableFunc(rs, func(a, b *request.Request) int {
		c := compareField(a, b, o.Field)
		if c == 0 {
			c = cmp.Compare(a.ID(), b.ID())
		}
		if o.Desc {
			return -c
		}
		return c
	})
}

func compareField(a, b *request.Request, f OrderField) int {
	switch f {
	case OrderByUpdatedAt:
		return a.UpdatedAt().Compare(b.UpdatedAt())
	case OrderByStartDate:
		return compareNullable(a.StartDate(), b.StartDate(), func(x, y *time.Time) int { return x.Compare(*y) })
	case OrderByAmount:
		return compareNullable(a.Amount(), b.Amount(), func(x, y *request.Amount) int { return x.Decimal().Cmp(y.Decimal()) })
	default:
		return a.CreatedAt().Compare(b.CreatedAt())
	}
}

func compareNullable[T any](a, b *T, fn func(x, y *T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return fn(a, b)
	}
}

// Paginate slices rs according to p.
func Paginate[T any](rs []T, p Page) []T {
	if p.Offset >= len(rs) {
		return []T{}
	}
	rs = rs[max(p.Offset, 0):]
	if p.Limit > 0 && p.Limit < len(rs) {
		rs = rs[:p.Limit]
	}
	return rs
}
