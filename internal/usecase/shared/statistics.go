package shared

import (
	"request-desk/internal/domain/request"

	"github.com/shopspring/decimal"
)

type RequestStatistics struct {
	Total               int
	ByStatus            map[request.Status]int
	ByKind              map[request.Kind]int
	TotalApprovedAmount decimal.Decimal
}

func NewRequestStatistics() *RequestStatistics {
	return &RequestStatistics{
		ByStatus:            map[request.Status]int{},
		ByKind:              map[request.Kind]int{},
		TotalApprovedAmount: decimal.Zero,
	}
}

// Add folds one request into the running totals.
func (s *RequestStatistics) Add(r *request.Request) {
	s.Total++
	s.ByStatus[r.Status()]++
	s.ByKind[r.Kind()]++
	if r.Status() == request.StatusApproved && r.Amount() != nil {
		s.TotalApprovedAmount = s.TotalApprovedAmount.Add(r.Amount().Decimal())
	}
}
