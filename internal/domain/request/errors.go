package request

import (
	"fmt"
	"strings"

	"request-desk/internal/pkg/errs"
)

var (
	ErrValidation        = errs.New("request validation failed")
	ErrInvalidTransition = errs.New("invalid status transition")
	ErrConflict          = errs.New("request state conflict")

	ErrUnknownKind   = errs.New("unknown request kind")
	ErrUnknownStatus = errs.New("unknown request status")
)

// Validation rules reported in FieldError.Rule.
const (
	RuleRequired      = "required"
	RuleBlank         = "blank"
	RuleTooShort      = "too_short"
	RuleTooLong       = "too_long"
	RuleInvalidChoice = "invalid_choice"
	RuleNonPositive   = "non_positive"
	RulePrecision     = "precision"
	RuleOrder         = "order"
	RuleTerminal      = "terminal"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Has reports whether a violation was recorded for field with the given rule.
func (e *ValidationError) Has(field, rule string) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Rule == rule {
			return true
		}
	}
	return false
}

type TransitionError struct {
	From   Status
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a request in status %q", e.Action, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

type ConflictError struct {
	ID     int64
	Status Status
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("request %d (%s): %s", e.ID, e.Status, e.Reason)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

type fieldErrors []FieldError

func (p *fieldErrors) add(field, rule, msg string) {
	*p = append(*p, FieldError{Field: field, Rule: rule, Message: msg})
}

func (p *fieldErrors) check(err error) {
	if err == nil {
		return
	}
	if fe, ok := err.(FieldError); ok {
		*p = append(*p, fe)
	}
}

func (p fieldErrors) err() error {
	if len(p) == 0 {
		return nil
	}
	return &ValidationError{Fields: p}
}
