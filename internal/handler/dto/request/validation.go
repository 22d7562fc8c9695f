package request

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	domreq "request-desk/internal/domain/request"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("request_kind", func(fl validator.FieldLevel) bool {
			return domreq.Kind(fl.Field().String()).IsValid()
		})
	})
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

var tagRules = map[string]string{
	"required":     domreq.RuleRequired,
	"max":          domreq.RuleTooLong,
	"min":          domreq.RuleTooShort,
	"request_kind": domreq.RuleInvalidChoice,
}

// FieldErrors converts binding failures into the same field list the domain reports.
// It returns nil when err is not a validator error.
func FieldErrors(err error) []domreq.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]domreq.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		rule, ok := tagRules[fe.Tag()]
		if !ok {
			rule = fe.Tag()
		}
		out = append(out, domreq.FieldError{
			Field:   fe.Field(),
			Rule:    rule,
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "request_kind":
		return "is not a valid request kind"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
