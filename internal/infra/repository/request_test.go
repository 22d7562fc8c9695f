//go:build unit

package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"request-desk/internal/domain/request"
	"request-desk/internal/infra"
	"request-desk/internal/infra/db"
	"request-desk/internal/infra/repository"
	"request-desk/internal/pkg/config"
	"request-desk/internal/usecase/shared"
	"request-desk/tests/common/builder"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RequestRepositoryTestSuite struct {
	suite.Suite
	repo *repository.RequestRepository
	ctx  context.Context
}

func TestRequestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RequestRepositoryTestSuite))
}

func (s *RequestRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	store := config.StoreConfig{SQLitePath: filepath.Join(s.T().TempDir(), "requests.db")}

	conn, err := db.Open(db.SQLite, store.SQLiteDSN(), config.DBConfig{})
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })

	s.Require().NoError(db.Migrate(s.ctx, conn, db.SQLite))
	s.repo = repository.NewRequestRepository(conn, db.SQLite, nil)
}

func (s *RequestRepositoryTestSuite) create(b *builder.RequestBuilder) *request.Request {
	r, err := b.BuildDomain()
	s.Require().NoError(err)
	created, err := s.repo.Create(s.ctx, r)
	s.Require().NoError(err)
	return created
}

func (s *RequestRepositoryTestSuite) ids(rs []*request.Request) []int64 {
	out := make([]int64, len(rs))
	for i, r := range rs {
		out[i] = r.ID()
	}
	return out
}

func (s *RequestRepositoryTestSuite) TestCreateAndFind() {
	created := s.create(builder.NewRequestBuilder().AsTraining().With(func(b *builder.RequestBuilder) {
		b.Notes = "budget line 4"
	}))
	s.Equal(int64(1), created.ID())

	got, err := s.repo.FindByID(s.ctx, created.ID())
	s.Require().NoError(err)
	if diff := cmp.Diff(created.Snapshot(), got.Snapshot()); diff != "" {
		s.T().Errorf("stored request mismatch (-want +got):\n%s", diff)
	}

	_, err = s.repo.FindByID(s.ctx, 42)
	s.True(infra.IsKind(err, infra.KindNotFound))
}

func (s *RequestRepositoryTestSuite) TestMutate() {
	created := s.create(builder.NewRequestBuilder())
	later := builder.DefaultNow.Add(time.Hour)

	s.Run("success: change is persisted", func() {
		updated, err := s.repo.Mutate(s.ctx, created.ID(), func(r *request.Request) error {
			return r.StartReview("picked up", later)
		})
		s.Require().NoError(err)
		s.Equal(request.StatusUnderReview, updated.Status())

		got, err := s.repo.FindByID(s.ctx, created.ID())
		s.Require().NoError(err)
		s.Equal(request.StatusUnderReview, got.Status())
		s.Equal("picked up", got.Notes().String())
		s.True(later.Equal(got.UpdatedAt()))
	})

	s.Run("error: fn failure rolls back", func() {
		_, err := s.repo.Mutate(s.ctx, created.ID(), func(r *request.Request) error {
			_ = r.Approve("", later)
			return errors.New("abort")
		})
		s.Require().Error(err)

		got, err := s.repo.FindByID(s.ctx, created.ID())
		s.Require().NoError(err)
		s.Equal(request.StatusUnderReview, got.Status())
	})

	s.Run("error: not found", func() {
		_, err := s.repo.Mutate(s.ctx, 404, func(*request.Request) error { return nil })
		s.True(infra.IsKind(err, infra.KindNotFound))
	})
}

func (s *RequestRepositoryTestSuite) TestDelete() {
	pending := s.create(builder.NewRequestBuilder())
	approved := s.create(builder.NewRequestBuilder())
	_, err := s.repo.Mutate(s.ctx, approved.ID(), func(r *request.Request) error {
		return r.Approve("", builder.DefaultNow)
	})
	s.Require().NoError(err)

	guard := func(r *request.Request) error { return r.EnsureDeletable() }

	s.Require().NoError(s.repo.Delete(s.ctx, pending.ID(), guard))
	_, err = s.repo.FindByID(s.ctx, pending.ID())
	s.True(infra.IsKind(err, infra.KindNotFound))

	err = s.repo.Delete(s.ctx, approved.ID(), guard)
	s.True(errors.Is(err, request.ErrConflict))
	_, err = s.repo.FindByID(s.ctx, approved.ID())
	s.NoError(err)

	err = s.repo.Delete(s.ctx, pending.ID(), guard)
	s.True(infra.IsKind(err, infra.KindNotFound))

	// ids are never reused
	next := s.create(builder.NewRequestBuilder())
	s.Equal(int64(3), next.ID())
}

func (s *RequestRepositoryTestSuite) TestListFiltersAndOrdering() {
	t0 := builder.DefaultNow
	s.create(builder.NewRequestBuilder().At(t0).WithRequester("Ana Souza"))
	s.create(builder.NewRequestBuilder().At(t0.Add(time.Minute)).AsReimbursement().WithAmount("30.00").WithRequester("Carla Mendes"))
	s.create(builder.NewRequestBuilder().At(t0.Add(2 * time.Minute)).AsReimbursement().WithAmount("4.50"))
	s.create(builder.NewRequestBuilder().At(t0.Add(24 * time.Hour)).AsVacation().WithDescription("Family trip 100% offline"))

	cases := []struct {
		name string
		opts shared.ListOptions
		want []int64
	}{
		{name: "default ordering is newest first", opts: shared.ListOptions{Ordering: shared.DefaultOrdering}, want: []int64{4, 3, 2, 1}},
		{name: "amount ascending puts missing amounts last", opts: shared.ListOptions{Ordering: shared.Ordering{Field: shared.OrderByAmount}}, want: []int64{3, 2, 1, 4}},
		{name: "amount descending puts missing amounts first", opts: shared.ListOptions{Ordering: shared.Ordering{Field: shared.OrderByAmount, Desc: true}}, want: []int64{4, 1, 2, 3}},
		{name: "start date ascending", opts: shared.ListOptions{Ordering: shared.Ordering{Field: shared.OrderByStartDate}}, want: []int64{4, 1, 2, 3}},
		{
			name: "kind filter",
			opts: shared.ListOptions{Filter: shared.RequestFilter{Kinds: []request.Kind{request.KindReimbursement}}, Ordering: shared.Ordering{Field: shared.OrderByCreatedAt}},
			want: []int64{2, 3},
		},
		{
			name: "amount range",
			opts: shared.ListOptions{Filter: shared.RequestFilter{AmountMin: decimalPtr("5")}, Ordering: shared.DefaultOrdering},
			want: []int64{2},
		},
		{
			name: "created day is inclusive",
			opts: shared.ListOptions{Filter: shared.RequestFilter{CreatedTo: timePtr(t0)}, Ordering: shared.DefaultOrdering},
			want: []int64{3, 2, 1},
		},
		{
			name: "requester is case-insensitive",
			opts: shared.ListOptions{Filter: shared.RequestFilter{Requester: "carla"}, Ordering: shared.DefaultOrdering},
			want: []int64{2},
		},
		{
			name: "search treats wildcards literally",
			opts: shared.ListOptions{Filter: shared.RequestFilter{Search: "100%"}, Ordering: shared.DefaultOrdering},
			want: []int64{4},
		},
		{
			name: "offset without limit",
			opts: shared.ListOptions{Ordering: shared.DefaultOrdering, Page: shared.Page{Offset: 3}},
			want: []int64{1},
		},
		{
			name: "limit and offset",
			opts: shared.ListOptions{Ordering: shared.DefaultOrdering, Page: shared.Page{Limit: 2, Offset: 1}},
			want: []int64{3, 2},
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			got, err := s.repo.List(s.ctx, tc.opts)
			s.Require().NoError(err)
			s.Equal(tc.want, s.ids(got))
		})
	}

	n, err := s.repo.Count(s.ctx, shared.RequestFilter{Kinds: []request.Kind{request.KindReimbursement}})
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *RequestRepositoryTestSuite) TestStatistics() {
	a := s.create(builder.NewRequestBuilder().AsReimbursement().WithAmount("10.10"))
	b := s.create(builder.NewRequestBuilder().AsTraining())
	s.create(builder.NewRequestBuilder().AsReimbursement().WithAmount("999"))
	s.create(builder.NewRequestBuilder())

	for _, id := range []int64{a.ID(), b.ID()} {
		_, err := s.repo.Mutate(s.ctx, id, func(r *request.Request) error {
			return r.Approve("", builder.DefaultNow)
		})
		s.Require().NoError(err)
	}

	stats, err := s.repo.Statistics(s.ctx, shared.RequestFilter{})
	s.Require().NoError(err)
	s.Equal(4, stats.Total)
	s.Equal(2, stats.ByStatus[request.StatusApproved])
	s.Equal(2, stats.ByStatus[request.StatusPending])
	s.Equal(2, stats.ByKind[request.KindReimbursement])
	s.True(decimal.RequireFromString("1210.10").Equal(stats.TotalApprovedAmount))

	filtered, err := s.repo.Statistics(s.ctx, shared.RequestFilter{Kinds: []request.Kind{request.KindSupport}})
	s.Require().NoError(err)
	s.Equal(1, filtered.Total)
	s.True(filtered.TotalApprovedAmount.IsZero())
}

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func timePtr(t time.Time) *time.Time {
	return &t
}
