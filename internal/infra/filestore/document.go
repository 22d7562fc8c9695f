package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"request-desk/internal/domain/request"
	"request-desk/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const dateLayout = time.DateOnly

// document is the on-disk layout: every request plus the next id to hand out.
type document struct {
	Requests []record `json:"requests"`
	NextID   int64    `json:"next_id"`
}

type record struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Amount      string    `json:"amount,omitempty"`
	StartDate   string    `json:"start_date,omitempty"`
	EndDate     string    `json:"end_date,omitempty"`
	Requester   string    `json:"requester,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRecord(r *request.Request) record {
	s := r.Snapshot()
	rec := record{
		ID:          s.ID,
		Kind:        string(s.Kind),
		Title:       s.Title,
		Description: s.Description,
		Status:      string(s.Status),
		Requester:   s.Requester,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.Amount != nil {
		rec.Amount = s.Amount.StringFixed(request.AmountScale)
	}
	if s.StartDate != nil {
		rec.StartDate = s.StartDate.Format(dateLayout)
	}
	if s.EndDate != nil {
		rec.EndDate = s.EndDate.Format(dateLayout)
	}
	return rec
}

func (rec record) toDomain() (*request.Request, error) {
	kind, err := request.ParseKind(rec.Kind)
	if err != nil {
		return nil, errs.Wrapf(err, "request %d", rec.ID)
	}
	status, err := request.ParseStatus(rec.Status)
	if err != nil {
		return nil, errs.Wrapf(err, "request %d", rec.ID)
	}
	s := request.Snapshot{
		ID:          rec.ID,
		Kind:        kind,
		Title:       rec.Title,
		Description: rec.Description,
		Status:      status,
		Requester:   rec.Requester,
		Notes:       rec.Notes,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.Amount != "" {
		a, err := decimal.NewFromString(rec.Amount)
		if err != nil {
			return nil, errs.Wrapf(err, "request %d: amount", rec.ID)
		}
		s.Amount = &a
	}
	if s.StartDate, err = parseDate(rec.StartDate); err != nil {
		return nil, errs.Wrapf(err, "request %d: start_date", rec.ID)
	}
	if s.EndDate, err = parseDate(rec.EndDate); err != nil {
		return nil, errs.Wrapf(err, "request %d: end_date", rec.ID)
	}
	return request.Reconstruct(s), nil
}

func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// decode validates the whole document before anything is loaded.
func decode(data []byte) (map[int64]*request.Request, int64, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, err
	}
	requests := make(map[int64]*request.Request, len(doc.Requests))
	var maxID int64
	for _, rec := range doc.Requests {
		if rec.ID <= 0 {
			return nil, 0, errs.Newf("request with invalid id %d", rec.ID)
		}
		if _, dup := requests[rec.ID]; dup {
			return nil, 0, errs.Newf("duplicate request id %d", rec.ID)
		}
		r, err := rec.toDomain()
		if err != nil {
			return nil, 0, err
		}
		requests[rec.ID] = r
		maxID = max(maxID, rec.ID)
	}
	return requests, max(doc.NextID, maxID+1), nil
}

func encode(requests map[int64]*request.Request, nextID int64) ([]byte, error) {
	doc := document{Requests: make([]record, 0, len(requests)), NextID: nextID}
	for _, r := range requests {
		doc.Requests = append(doc.Requests, toRecord(r))
	}
	sort.Slice(doc.Requests, func(i, j int) bool { return doc.Requests[i].ID < doc.Requests[j].ID })
	return json.MarshalIndent(doc, "", "  ")
}

// writeAtomic replaces path with data through a synced temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".requests-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
