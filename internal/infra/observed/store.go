package observed

import (
	"context"
	"time"

	"request-desk/internal/domain/request"
	"request-desk/internal/pkg/metrics"
	"request-desk/internal/usecase/shared"
)

// Store records operation counts and latency for any RequestStore.
type Store struct {
	next   shared.RequestStore
	driver string
}

func NewStore(next shared.RequestStore, driver string) *Store {
	return &Store{next: next, driver: driver}
}

func (s *Store) observe(op string, start time.Time, err error) {
	metrics.ObserveStore(s.driver, op, err, time.Since(start))
}

func (s *Store) Create(ctx context.Context, r *request.Request) (*request.Request, error) {
	start := time.Now()
	created, err := s.next.Create(ctx, r)
	s.observe("create", start, err)
	return created, err
}

func (s *Store) Mutate(ctx context.Context, id int64, fn shared.MutateFunc) (*request.Request, error) {
	start := time.Now()
	r, err := s.next.Mutate(ctx, id, fn)
	s.observe("mutate", start, err)
	return r, err
}

func (s *Store) Delete(ctx context.Context, id int64, guard shared.GuardFunc) error {
	start := time.Now()
	err := s.next.Delete(ctx, id, guard)
	s.observe("delete", start, err)
	return err
}

func (s *Store) FindByID(ctx context.Context, id int64) (*request.Request, error) {
	start := time.Now()
	r, err := s.next.FindByID(ctx, id)
	s.observe("find", start, err)
	return r, err
}

func (s *Store) List(ctx context.Context, opts shared.ListOptions) ([]*request.Request, error) {
	start := time.Now()
	rs, err := s.next.List(ctx, opts)
	s.observe("list", start, err)
	return rs, err
}

func (s *Store) Count(ctx context.Context, f shared.RequestFilter) (int, error) {
	start := time.Now()
	n, err := s.next.Count(ctx, f)
	s.observe("count", start, err)
	return n, err
}

func (s *Store) Statistics(ctx context.Context, f shared.RequestFilter) (*shared.RequestStatistics, error) {
	start := time.Now()
	stats, err := s.next.Statistics(ctx, f)
	s.observe("statistics", start, err)
	return stats, err
}
