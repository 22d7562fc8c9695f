package commands

//go:generate mockgen -source=request.go -destination=../../../tests/mock/commands/request.go -package=commandsmock

import (
	"context"
	"log/slog"

	"request-desk/internal/domain/request"
	"request-desk/internal/infra"
	"request-desk/internal/pkg/clock"
	"request-desk/internal/pkg/errs"
	"request-desk/internal/pkg/metrics"
	"request-desk/internal/usecase/shared"

	"github.com/cockroachdb/errors"
)

var (
	ErrRequestNotFound      = errs.ErrRequestNotFound
	ErrEmptyPatch           = errs.New("no fields to update")
	ErrUnknownAction        = errs.New("unknown request action")
	ErrStoreOperationFailed = errs.ErrStoreOperationFailed
)

type RequestCommands interface {
	Create(ctx context.Context, draft request.Draft) (*request.Request, error)
	Update(ctx context.Context, id int64, p request.Patch) (*request.Request, error)
	Delete(ctx context.Context, id int64) error
	Transition(ctx context.Context, id int64, action request.Action, notes string) (*request.Request, error)
}

type requestCommandsImpl struct {
	store shared.RequestStore
	clock clock.Clock
}

func NewRequestCommands(store shared.RequestStore, clk clock.Clock) RequestCommands {
	return &requestCommandsImpl{store: store, clock: clk}
}

func (uc *requestCommandsImpl) Create(ctx context.Context, draft request.Draft) (*request.Request, error) {
	r, err := request.NewRequest(draft, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	created, err := uc.store.Create(ctx, r)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	slog.Info("request created", "id", created.ID(), "kind", created.Kind())
	return created, nil
}

func (uc *requestCommandsImpl) Update(ctx context.Context, id int64, p request.Patch) (*request.Request, error) {
	if p.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	updated, err := uc.store.Mutate(ctx, id, func(r *request.Request) error {
		return r.ApplyPatch(p, uc.clock.Now())
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return updated, nil
}

func (uc *requestCommandsImpl) Delete(ctx context.Context, id int64) error {
	err := uc.store.Delete(ctx, id, func(r *request.Request) error {
		return r.EnsureDeletable()
	})
	if err != nil {
		return mapStoreErr(err)
	}
	slog.Info("request deleted", "id", id)
	return nil
}

func (uc *requestCommandsImpl) Transition(ctx context.Context, id int64, action request.Action, notes string) (*request.Request, error) {
	if !action.IsValid() {
		return nil, ErrUnknownAction
	}
	updated, err := uc.store.Mutate(ctx, id, func(r *request.Request) error {
		return r.Apply(action, notes, uc.clock.Now())
	})
	metrics.RecordTransition(string(action), err)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	slog.Info("request status changed", "id", id, "action", action, "status", updated.Status())
	return updated, nil
}

// Domain errors pass through untouched; store failures become usecase sentinels.
func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, request.ErrValidation),
		errors.Is(err, request.ErrInvalidTransition),
		errors.Is(err, request.ErrConflict):
		return err
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, ErrRequestNotFound)
	default:
		return errs.Mark(err, ErrStoreOperationFailed)
	}
}
