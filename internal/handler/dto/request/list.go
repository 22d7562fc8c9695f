package request

import (
	"strconv"
	"strings"
	"time"

	domreq "request-desk/internal/domain/request"
	"request-desk/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ParseFilter reads the filter query parameters shared by list and statistics.
// Every malformed parameter is reported, not just the first.
func ParseFilter(c *gin.Context) (shared.RequestFilter, error) {
	var (
		f    shared.RequestFilter
		errs = &domreq.ValidationError{}
	)

	for _, v := range multiValues(c, "kind") {
		k, err := domreq.ParseKind(v)
		if err != nil {
			errs.Fields = append(errs.Fields, invalidChoice("kind", v))
			continue
		}
		f.Kinds = append(f.Kinds, k)
	}
	for _, v := range multiValues(c, "status") {
		s, err := domreq.ParseStatus(v)
		if err != nil {
			errs.Fields = append(errs.Fields, invalidChoice("status", v))
			continue
		}
		f.Statuses = append(f.Statuses, s)
	}

	f.CreatedFrom = queryDate(c, "created_from", errs)
	f.CreatedTo = queryDate(c, "created_to", errs)
	f.StartFrom = queryDate(c, "start_from", errs)
	f.StartTo = queryDate(c, "start_to", errs)
	f.AmountMin = queryDecimal(c, "amount_min", errs)
	f.AmountMax = queryDecimal(c, "amount_max", errs)
	f.Requester = strings.TrimSpace(c.Query("requester"))
	f.Search = strings.TrimSpace(c.Query("search"))

	if len(errs.Fields) > 0 {
		return shared.RequestFilter{}, errs
	}
	return f, nil
}

// ParseListOptions adds ordering and paging to ParseFilter.
func ParseListOptions(c *gin.Context) (shared.ListOptions, error) {
	errs := &domreq.ValidationError{}

	f, err := ParseFilter(c)
	if err != nil {
		if verr, ok := err.(*domreq.ValidationError); ok {
			errs.Fields = append(errs.Fields, verr.Fields...)
		}
	}

	ordering, ok := shared.ParseOrdering(strings.TrimSpace(c.Query("ordering")))
	if !ok {
		errs.Fields = append(errs.Fields, invalidChoice("ordering", c.Query("ordering")))
	}

	limit := queryInt(c, "limit", errs)
	offset := queryInt(c, "offset", errs)

	if len(errs.Fields) > 0 {
		return shared.ListOptions{}, errs
	}
	return shared.ListOptions{
		Filter:   f,
		Ordering: ordering,
		Page:     shared.Page{Limit: limit, Offset: offset},
	}, nil
}

// multiValues accepts both ?kind=a&kind=b and ?kind=a,b.
func multiValues(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func queryDate(c *gin.Context, key string, errs *domreq.ValidationError) *time.Time {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		errs.Fields = append(errs.Fields, domreq.FieldError{Field: key, Rule: domreq.RuleInvalidChoice, Message: "must be a date (YYYY-MM-DD)"})
		return nil
	}
	return &t
}

func queryDecimal(c *gin.Context, key string, errs *domreq.ValidationError) *decimal.Decimal {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		errs.Fields = append(errs.Fields, domreq.FieldError{Field: key, Rule: domreq.RuleInvalidChoice, Message: "must be a decimal number"})
		return nil
	}
	return &d
}

func queryInt(c *gin.Context, key string, errs *domreq.ValidationError) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		errs.Fields = append(errs.Fields, domreq.FieldError{Field: key, Rule: domreq.RuleInvalidChoice, Message: "must be a non-negative integer"})
		return 0
	}
	return n
}

func invalidChoice(field, value string) domreq.FieldError {
	return domreq.FieldError{Field: field, Rule: domreq.RuleInvalidChoice, Message: strconv.Quote(value) + " is not a valid choice"}
}
