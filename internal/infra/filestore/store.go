package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"request-desk/internal/domain/request"
	"request-desk/internal/infra"
	"request-desk/internal/pkg/errs"
	"request-desk/internal/usecase/shared"
)

var ErrCorruptDocument = errs.New("request document is corrupt")

type Options struct {
	// RecoverCorrupt moves an unreadable document aside and starts empty instead of failing.
	RecoverCorrupt bool
	Logger         *slog.Logger
}

// Store keeps every request in memory and rewrites the whole document on each mutation.
// A single mutex serialises all operations, reads included.
type Store struct {
	mu       sync.Mutex
	path     string
	requests map[int64]*request.Request
	nextID   int64
	logger   *slog.Logger
}

func Open(path string, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:     path,
		requests: map[int64]*request.Request{},
		nextID:   1,
		logger:   logger,
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("request document not found, starting empty", "path", path)
		return s.initEmpty()
	case err != nil:
		return nil, errs.Wrap(err, "read request document")
	}

	requests, nextID, err := decode(data)
	if err != nil {
		if !opts.RecoverCorrupt {
			return nil, errs.Mark(errs.Wrapf(err, "decode %s", path), ErrCorruptDocument)
		}
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
		if rerr := os.Rename(path, aside); rerr != nil {
			return nil, errs.Wrap(rerr, "move corrupt request document aside")
		}
		logger.Warn("request document is corrupt, moved aside and starting empty",
			"path", path, "moved_to", aside, "error", err.Error())
		return s.initEmpty()
	}

	s.requests = requests
	s.nextID = nextID
	logger.Info("request document loaded", "path", path, "requests", len(requests), "next_id", nextID)
	return s, nil
}

func (s *Store) initEmpty() (*Store, error) {
	if err := s.persist(); err != nil {
		return nil, errs.Wrap(err, "write empty request document")
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Create(ctx context.Context, r *request.Request) (*request.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	stored := r.WithID(id)
	s.requests[id] = stored
	s.nextID++
	if err := s.persist(); err != nil {
		delete(s.requests, id)
		s.nextID--
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "persist created request", err)
	}
	return stored.Clone(), nil
}

func (s *Store) Mutate(ctx context.Context, id int64, fn shared.MutateFunc) (*request.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.requests[id]
	if !ok {
		return nil, infra.WrapRepoErr(s.logger, infra.KindNotFound, fmt.Sprintf("request %d not found", id), nil)
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.requests[id] = next
	if err := s.persist(); err != nil {
		s.requests[id] = current
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "persist updated request", err)
	}
	return next.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, id int64, guard shared.GuardFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.requests[id]
	if !ok {
		return infra.WrapRepoErr(s.logger, infra.KindNotFound, fmt.Sprintf("request %d not found", id), nil)
	}
	if guard != nil {
		if err := guard(current.Clone()); err != nil {
			return err
		}
	}
	delete(s.requests, id)
	if err := s.persist(); err != nil {
		s.requests[id] = current
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "persist deletion", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*request.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, infra.WrapRepoErr(s.logger, infra.KindNotFound, fmt.Sprintf("request %d not found", id), nil)
	}
	return r.Clone(), nil
}

func (s *Store) List(ctx context.Context, opts shared.ListOptions) ([]*request.Request, error) {
	matches, err := s.matching(ctx, opts.Filter)
	if err != nil {
		return nil, err
	}
	shared.SortRequests(matches, opts.Ordering)
	return shared.Paginate(matches, opts.Page), nil
}

func (s *Store) Count(ctx context.Context, f shared.RequestFilter) (int, error) {
	matches, err := s.matching(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

func (s *Store) Statistics(ctx context.Context, f shared.RequestFilter) (*shared.RequestStatistics, error) {
	matches, err := s.matching(ctx, f)
	if err != nil {
		return nil, err
	}
	stats := shared.NewRequestStatistics()
	for _, r := range matches {
		stats.Add(r)
	}
	return stats, nil
}

func (s *Store) matching(ctx context.Context, f shared.RequestFilter) ([]*request.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*request.Request, 0, len(s.requests))
	for _, r := range s.requests {
		if f.Matches(r) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// persist must be called with mu held.
func (s *Store) persist() error {
	data, err := encode(s.requests, s.nextID)
	if err != nil {
		return err
	}
	return writeAtomic(s.path, data)
}
