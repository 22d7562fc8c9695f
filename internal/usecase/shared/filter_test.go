//go:build unit

package shared_test

import (
	"testing"
	"time"

	"request-desk/internal/domain/request"
	"request-desk/internal/usecase/shared"
	"request-desk/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ids(rs []*request.Request) []int64 {
	out := make([]int64, len(rs))
	for i, r := range rs {
		out[i] = r.ID()
	}
	return out
}

func day(s string) *time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return &t
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestRequestFilterMatches(t *testing.T) {
	support := builder.NewRequestBuilder().WithID(1).BuildStored()
	reimb := builder.NewRequestBuilder().WithID(2).AsReimbursement().WithStatus(request.StatusApproved).
		WithRequester("Carla Mendes").At(time.Date(2025, 3, 12, 23, 59, 0, 0, time.UTC)).BuildStored()
	vacation := builder.NewRequestBuilder().WithID(3).AsVacation().WithStatus(request.StatusUnderReview).BuildStored()

	all := []*request.Request{support, reimb, vacation}

	cases := []struct {
		name   string
		filter shared.RequestFilter
		want   []int64
	}{
		{name: "zero filter matches all", want: []int64{1, 2, 3}},
		{name: "kinds", filter: shared.RequestFilter{Kinds: []request.Kind{request.KindSupport, request.KindVacation}}, want: []int64{1, 3}},
		{name: "statuses", filter: shared.RequestFilter{Statuses: []request.Status{request.StatusApproved}}, want: []int64{2}},
		{name: "created_to is inclusive of the whole day", filter: shared.RequestFilter{CreatedFrom: day("2025-03-12"), CreatedTo: day("2025-03-12")}, want: []int64{2}},
		{name: "created_from excludes earlier days", filter: shared.RequestFilter{CreatedFrom: day("2025-03-11")}, want: []int64{2}},
		{name: "start range excludes requests without dates", filter: shared.RequestFilter{StartFrom: day("2025-04-01"), StartTo: day("2025-04-01")}, want: []int64{3}},
		{name: "amount range excludes requests without amount", filter: shared.RequestFilter{AmountMin: dec("150.25"), AmountMax: dec("150.25")}, want: []int64{2}},
		{name: "amount above max", filter: shared.RequestFilter{AmountMax: dec("100")}, want: []int64{}},
		{name: "requester is case-insensitive substring", filter: shared.RequestFilter{Requester: "MENDES"}, want: []int64{2}},
		{name: "search looks at description", filter: shared.RequestFilter{Search: "jamming"}, want: []int64{1, 2, 3}},
		{name: "search looks at requester", filter: shared.RequestFilter{Search: "carla"}, want: []int64{2}},
		{name: "search without hit", filter: shared.RequestFilter{Search: "nothing like this"}, want: []int64{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := []int64{}
			for _, r := range all {
				if tc.filter.Matches(r) {
					got = append(got, r.ID())
				}
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("matches mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortRequests(t *testing.T) {
	t0 := builder.DefaultNow
	r1 := builder.NewRequestBuilder().WithID(1).At(t0).BuildStored()
	r2 := builder.NewRequestBuilder().WithID(2).At(t0).AsReimbursement().WithAmount("10").BuildStored()
	r3 := builder.NewRequestBuilder().WithID(3).At(t0.Add(time.Hour)).AsReimbursement().WithAmount("5").BuildStored()
	r4 := builder.NewRequestBuilder().WithID(4).At(t0.Add(-time.Hour)).AsVacation().BuildStored()

	cases := []struct {
		ordering shared.Ordering
		want     []int64
	}{
		{ordering: shared.DefaultOrdering, want: []int64{3, 2, 1, 4}},
		{ordering: shared.Ordering{Field: shared.OrderByCreatedAt}, want: []int64{4, 1, 2, 3}},
		{ordering: shared.Ordering{Field: shared.OrderByAmount}, want: []int64{3, 2, 1, 4}},
		{ordering: shared.Ordering{Field: shared.OrderByAmount, Desc: true}, want: []int64{4, 1, 2, 3}},
		{ordering: shared.Ordering{Field: shared.OrderByStartDate}, want: []int64{4, 1, 2, 3}},
	}

	for _, tc := range cases {
		name := string(tc.ordering.Field)
		if tc.ordering.Desc {
			name = "-" + name
		}
		t.Run(name, func(t *testing.T) {
			rs := []*request.Request{r1, r2, r3, r4}
			shared.SortRequests(rs, tc.ordering)
			assert.Equal(t, tc.want, ids(rs))
		})
	}
}

func TestParseOrdering(t *testing.T) {
	o, ok := shared.ParseOrdering("")
	assert.True(t, ok)
	assert.Equal(t, shared.DefaultOrdering, o)

	o, ok = shared.ParseOrdering("-amount")
	assert.True(t, ok)
	assert.Equal(t, shared.Ordering{Field: shared.OrderByAmount, Desc: true}, o)

	_, ok = shared.ParseOrdering("title")
	assert.False(t, ok)
}

func TestPaginate(t *testing.T) {
	xs := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, shared.Paginate(xs, shared.Page{}))
	assert.Equal(t, []int{3, 4}, shared.Paginate(xs, shared.Page{Limit: 2, Offset: 2}))
	assert.Equal(t, []int{5}, shared.Paginate(xs, shared.Page{Limit: 10, Offset: 4}))
	assert.Empty(t, shared.Paginate(xs, shared.Page{Offset: 5}))
}

func TestRequestStatistics(t *testing.T) {
	stats := shared.NewRequestStatistics()
	stats.Add(builder.NewRequestBuilder().AsReimbursement().WithAmount("10.50").WithStatus(request.StatusApproved).BuildStored())
	stats.Add(builder.NewRequestBuilder().AsReimbursement().WithAmount("4.25").WithStatus(request.StatusApproved).BuildStored())
	stats.Add(builder.NewRequestBuilder().AsReimbursement().WithAmount("100").WithStatus(request.StatusPending).BuildStored())
	stats.Add(builder.NewRequestBuilder().WithStatus(request.StatusApproved).BuildStored())

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.ByStatus[request.StatusApproved])
	assert.Equal(t, 3, stats.ByKind[request.KindReimbursement])
	assert.Equal(t, "14.75", stats.TotalApprovedAmount.StringFixed(2))
}
