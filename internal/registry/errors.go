package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/phonebook-api/internal/types"
)

// Error kinds returned by every Registry operation. Match with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("contact not found")
	ErrInvalidID   = errors.New("malformed id")
	ErrUnavailable = errors.New("storage unavailable")
)

// ValidationError lists every rule a request broke. It matches
// ErrValidation.
type ValidationError struct {
	Fields []types.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func duplicateName(name string) *ValidationError {
	return &ValidationError{Fields: []types.FieldError{{
		Field:   "name",
		Rule:    "unique",
		Message: fmt.Sprintf("field name must be unique, %q is taken", name),
	}}}
}

// fromValidator converts one validator.FieldError per failing field into a
// plain English sentence.
func fromValidator(errs validator.ValidationErrors) *ValidationError {
	fields := make([]types.FieldError, 0, len(errs))

	for _, e := range errs {
		var msg string
		switch e.ActualTag() {
		case "required":
			msg = fmt.Sprintf("field %s is required", e.Field())
		case "min":
			msg = fmt.Sprintf("field %s must be at least %s characters long", e.Field(), e.Param())
		default:
			msg = fmt.Sprintf("field %s is invalid", e.Field())
		}
		fields = append(fields, types.FieldError{Field: e.Field(), Rule: e.ActualTag(), Message: msg})
	}

	return &ValidationError{Fields: fields}
}
