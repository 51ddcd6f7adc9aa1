package services

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sultan0alshami/wathiq-sub001/internal/common"
)

// ValidationError lists every problem found in a request. It matches
// common.ErrValidation with errors.Is.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return common.ErrValidation
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// describe turns validator output into client-facing messages keyed by the
// JSON field path, e.g. "trip.date must be a YYYY-MM-DD date".
func describe(err error) *ValidationError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Problems: []string{err.Error()}}
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}

		var msg string
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "datetime":
			msg = "must be a YYYY-MM-DD date"
		case "oneof":
			msg = "must be one of: " + fe.Param()
		case "min":
			msg = "must be at least " + fe.Param()
		case "max":
			switch fe.Kind() {
			case reflect.Slice:
				msg = "must contain at most " + fe.Param() + " items"
			case reflect.String:
				msg = "must be at most " + fe.Param() + " characters"
			default:
				msg = "must be at most " + fe.Param()
			}
		default:
			msg = fmt.Sprintf("failed %s validation", fe.Tag())
		}
		out.Problems = append(out.Problems, field+" "+msg)
	}
	return out
}
