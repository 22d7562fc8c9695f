package queries

//go:generate mockgen -source=request.go -destination=../../../tests/mock/queries/request.go -package=queriesmock

import (
	"context"

	"request-desk/internal/domain/request"
	"request-desk/internal/infra"
	"request-desk/internal/pkg/errs"
	"request-desk/internal/usecase/shared"
)

var (
	ErrRequestNotFound    = errs.ErrRequestNotFound
	ErrRequestQueryFailed = errs.New("request query failed")
	ErrInvalidOrdering    = errs.New("invalid ordering field")
)

type RequestList struct {
	Items []*request.Request
	Total int
}

type RequestQueries interface {
	Get(ctx context.Context, id int64) (*request.Request, error)
	List(ctx context.Context, opts shared.ListOptions) (*RequestList, error)
	Count(ctx context.Context, f shared.RequestFilter) (int, error)
	Statistics(ctx context.Context, f shared.RequestFilter) (*shared.RequestStatistics, error)
}

type requestQueriesImpl struct {
	store shared.RequestReadStore
}

func NewRequestQueries(store shared.RequestReadStore) RequestQueries {
	return &requestQueriesImpl{store: store}
}

func (q *requestQueriesImpl) Get(ctx context.Context, id int64) (*request.Request, error) {
	r, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, errs.Mark(err, ErrRequestQueryFailed)
	}
	return r, nil
}

func (q *requestQueriesImpl) List(ctx context.Context, opts shared.ListOptions) (*RequestList, error) {
	if opts.Ordering.Field == "" {
		opts.Ordering = shared.DefaultOrdering
	}
	if !opts.Ordering.Field.IsValid() {
		return nil, ErrInvalidOrdering
	}
	opts.Page.Limit = ValidateLimit(opts.Page.Limit)
	opts.Page.Offset = max(opts.Page.Offset, 0)

	items, err := q.store.List(ctx, opts)
	if err != nil {
		return nil, errs.Mark(err, ErrRequestQueryFailed)
	}
	total := len(items)
	if opts.Page.Limit > 0 || opts.Page.Offset > 0 {
		if total, err = q.store.Count(ctx, opts.Filter); err != nil {
			return nil, errs.Mark(err, ErrRequestQueryFailed)
		}
	}
	return &RequestList{Items: items, Total: total}, nil
}

func (q *requestQueriesImpl) Count(ctx context.Context, f shared.RequestFilter) (int, error) {
	n, err := q.store.Count(ctx, f)
	if err != nil {
		return 0, errs.Mark(err, ErrRequestQueryFailed)
	}
	return n, nil
}

func (q *requestQueriesImpl) Statistics(ctx context.Context, f shared.RequestFilter) (*shared.RequestStatistics, error) {
	stats, err := q.store.Statistics(ctx, f)
	if err != nil {
		return nil, errs.Mark(err, ErrRequestQueryFailed)
	}
	stats.TotalApprovedAmount = stats.TotalApprovedAmount.Round(request.AmountScale)
	return stats, nil
}

// ValidateLimit keeps an explicit page size within MaxListLimit. Zero means unpaged.
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 0
	}
	if limit > shared.MaxListLimit {
		return shared.MaxListLimit
	}
	return limit
}
