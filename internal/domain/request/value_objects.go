package request

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MinDescriptionLength = 10
	MaxDescriptionLength = 500
	MaxTitleLength       = 200
	MaxRequesterLength   = 200
	MaxNotesLength       = 500
	AmountScale          = 2
)

// amounts are stored as NUMERIC(10,2)
var maxAmount = decimal.New(1, 8)

type Title struct {
	text string
}

func NewTitle(s string) (Title, error) {
	t := strings.TrimSpace(s)
	if utf8.RuneCountInString(t) > MaxTitleLength {
		return Title{}, FieldError{Field: "title", Rule: RuleTooLong, Message: "title must be at most 200 characters"}
	}
	return Title{text: t}, nil
}

func (t Title) String() string { return t.text }

type Description struct {
	text string
}

func NewDescription(s string) (Description, error) {
	t := strings.TrimSpace(s)
	n := utf8.RuneCountInString(t)
	switch {
	case s == "":
		return Description{}, FieldError{Field: "description", Rule: RuleRequired, Message: "description is required"}
	case n == 0:
		return Description{}, FieldError{Field: "description", Rule: RuleBlank, Message: "description cannot be blank"}
	case n < MinDescriptionLength:
		return Description{}, FieldError{Field: "description", Rule: RuleTooShort, Message: "description must be at least 10 characters"}
	case n > MaxDescriptionLength:
		return Description{}, FieldError{Field: "description", Rule: RuleTooLong, Message: "description must be at most 500 characters"}
	}
	return Description{text: t}, nil
}

func (d Description) String() string { return d.text }

type Requester struct {
	name string
}

func NewRequester(s string) (Requester, error) {
	t := strings.TrimSpace(s)
	if utf8.RuneCountInString(t) > MaxRequesterLength {
		return Requester{}, FieldError{Field: "requester", Rule: RuleTooLong, Message: "requester must be at most 200 characters"}
	}
	return Requester{name: t}, nil
}

func (r Requester) String() string { return r.name }

type Notes struct {
	text string
}

func NewNotes(s string) (Notes, error) {
	t := strings.TrimSpace(s)
	if utf8.RuneCountInString(t) > MaxNotesLength {
		return Notes{}, FieldError{Field: "notes", Rule: RuleTooLong, Message: "notes must be at most 500 characters"}
	}
	return Notes{text: t}, nil
}

func (n Notes) String() string { return n.text }

type Amount struct {
	value decimal.Decimal
}

func NewAmount(v decimal.Decimal) (Amount, error) {
	if !v.IsPositive() {
		return Amount{}, FieldError{Field: "amount", Rule: RuleNonPositive, Message: "amount must be greater than zero"}
	}
	if !v.Equal(v.Round(AmountScale)) || v.GreaterThanOrEqual(maxAmount) {
		return Amount{}, FieldError{Field: "amount", Rule: RulePrecision, Message: "amount must have at most 8 integer digits and 2 decimal places"}
	}
	return Amount{value: v.Round(AmountScale)}, nil
}

func (a Amount) Decimal() decimal.Decimal { return a.value }

func (a Amount) String() string { return a.value.StringFixed(AmountScale) }

// Period is an inclusive range of calendar days.
type Period struct {
	start time.Time
	end   time.Time
}

func NewPeriod(start, end time.Time) (Period, error) {
	s, e := Day(start), Day(end)
	if e.Before(s) {
		return Period{}, FieldError{Field: "end_date", Rule: RuleOrder, Message: "end date must not be before start date"}
	}
	return Period{start: s, end: e}, nil
}

func (p Period) Days() int {
	return int(p.end.Sub(p.start).Hours()/24) + 1
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
