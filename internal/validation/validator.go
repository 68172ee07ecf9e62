// Package validation adapts go-playground/validator to Echo and turns its
// failures into field-level error details that handlers return with a 422.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Detail describes one rejected field.  Loc is the path to the field, e.g.
// ["body", "price"] or ["query", "limit"].
type Detail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// Error is returned by Validate when one or more fields are invalid.
type Error struct {
	Details []Detail
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, strings.Join(d.Loc, ".")+": "+d.Msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewError builds a single-detail Error.
func NewError(loc []string, msg, typ string) *Error {
	return &Error{Details: []Detail{{Loc: loc, Msg: msg, Type: typ}}}
}

// Validator implements echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Validate checks i against its validate tags.  Field failures are returned
// as *Error; anything else (e.g. a non-struct argument) is returned as is.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{Details: make([]Detail, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		msg, typ := describe(fe)
		out.Details = append(out.Details, Detail{
			Loc:  []string{"body", fe.Field()},
			Msg:  msg,
			Type: typ,
		})
	}
	return out
}

func describe(fe validator.FieldError) (string, string) {
	switch fe.Tag() {
	case "required":
		return "field required", "value_error.missing"
	case "gte":
		return "ensure this value is greater than or equal to " + fe.Param(), "value_error.number.not_ge"
	case "http_url", "url":
		return "invalid or missing URL scheme", "value_error.url"
	}
	return "failed on the '" + fe.Tag() + "' rule", "value_error"
}
