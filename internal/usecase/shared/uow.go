package shared

//go:generate mockgen -source=uow.go -destination=../../../tests/mock/shared/request_store.go -package=sharedmock

import (
	"context"

	"request-desk/internal/domain/request"
)

// MutateFunc edits a loaded request. Returning an error aborts the mutation and nothing is persisted.
type MutateFunc func(r *request.Request) error

// GuardFunc decides whether a loaded request may be removed.
type GuardFunc func(r *request.Request) error

type RequestReadStore interface {
	FindByID(ctx context.Context, id int64) (*request.Request, error)
	List(ctx context.Context, opts ListOptions) ([]*request.Request, error)
	Count(ctx context.Context, f RequestFilter) (int, error)
	Statistics(ctx context.Context, f RequestFilter) (*RequestStatistics, error)
}

// RequestStore is implemented by every persistence driver. Create, Mutate and Delete
// each run as one atomic unit: concurrent callers never observe or persist a half-applied change.
type RequestStore interface {
	RequestReadStore
	// Create assigns the next id and persists r.
	Create(ctx context.Context, r *request.Request) (*request.Request, error)
	// Mutate loads id, applies fn to a copy and persists the copy if fn succeeds.
	Mutate(ctx context.Context, id int64, fn MutateFunc) (*request.Request, error)
	// Delete loads id, runs guard and removes the request if guard succeeds.
	Delete(ctx context.Context, id int64, guard GuardFunc) error
}
