package response

import (
	"time"

	domreq "request-desk/internal/domain/request"
	"request-desk/internal/usecase/queries"
	"request-desk/internal/usecase/shared"
)

type RequestResponse struct {
	ID           int64     `json:"id"`
	Kind         string    `json:"kind"`
	KindLabel    string    `json:"kind_label"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"status_label"`
	Amount       *string   `json:"amount"`
	StartDate    *string   `json:"start_date"`
	EndDate      *string   `json:"end_date"`
	DurationDays *int      `json:"duration_days"`
	Requester    string    `json:"requester"`
	Notes        string    `json:"notes"`
	CanCancel    bool      `json:"can_cancel"`
	CanApprove   bool      `json:"can_approve"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func FromRequest(r *domreq.Request) *RequestResponse {
	res := &RequestResponse{
		ID:          r.ID(),
		Kind:        r.Kind().String(),
		KindLabel:   r.Kind().Label(),
		Title:       r.Title().String(),
		Description: r.Description().String(),
		Status:      r.Status().String(),
		StatusLabel: r.Status().Label(),
		StartDate:   formatDate(r.StartDate()),
		EndDate:     formatDate(r.EndDate()),
		Requester:   r.Requester().String(),
		Notes:       r.Notes().String(),
		CanCancel:   r.CanCancel(),
		CanApprove:  r.CanApprove(),
		CreatedAt:   r.CreatedAt(),
		UpdatedAt:   r.UpdatedAt(),
	}
	if a := r.Amount(); a != nil {
		s := a.String()
		res.Amount = &s
	}
	if days, ok := r.DurationDays(); ok {
		res.DurationDays = &days
	}
	return res
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

type RequestListResponse struct {
	Requests []*RequestResponse `json:"requests"`
	Count    int                `json:"count"`
}

func FromRequestList(l *queries.RequestList) *RequestListResponse {
	items := make([]*RequestResponse, len(l.Items))
	for i, r := range l.Items {
		items[i] = FromRequest(r)
	}
	return &RequestListResponse{Requests: items, Count: l.Total}
}

type ActionResponse struct {
	Message string           `json:"message"`
	Request *RequestResponse `json:"request"`
}

type StatisticsResponse struct {
	Total               int            `json:"total"`
	ByStatus            map[string]int `json:"by_status"`
	ByKind              map[string]int `json:"by_kind"`
	TotalApprovedAmount string         `json:"total_approved_amount"`
}

// FromStatistics reports only the statuses and kinds that occur in the result.
func FromStatistics(s *shared.RequestStatistics) *StatisticsResponse {
	res := &StatisticsResponse{
		Total:               s.Total,
		ByStatus:            make(map[string]int, len(s.ByStatus)),
		ByKind:              make(map[string]int, len(s.ByKind)),
		TotalApprovedAmount: s.TotalApprovedAmount.StringFixed(domreq.AmountScale),
	}
	for st, n := range s.ByStatus {
		if n > 0 {
			res.ByStatus[st.String()] = n
		}
	}
	for k, n := range s.ByKind {
		if n > 0 {
			res.ByKind[k.String()] = n
		}
	}
	return res
}

type HealthResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	TotalRequests int    `json:"total_requests"`
}
