// Package validation wraps a singleton go-playground validator and translates its errors.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	datePattern       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// FieldError is a single failed rule.
type FieldError struct {
	Field string
	Tag   string
	Param string
	Value interface{}
}

func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s failed %s=%s", e.Field, e.Tag, e.Param)
	}
	return fmt.Sprintf("%s failed %s", e.Field, e.Tag)
}

// RequestValidationError collects all failed rules of one struct.
type RequestValidationError struct {
	Errors []FieldError
}

func (ve *RequestValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Fields returns the names of the failing fields.
func (ve *RequestValidationError) Fields() []string {
	out := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		out = append(out, err.Field)
	}
	return out
}

// Validator returns the shared validator, registering custom rules on first use.
//
// Custom rules:
//   - identifier: ^[A-Za-z0-9_]+$
//   - isodate: empty or YYYY-MM-DD
//   - boolint: 0 or 1
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return identifierPattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || datePattern.MatchString(s)
		})
		_ = validate.RegisterValidation("boolint", func(fl validator.FieldLevel) bool {
			v := fl.Field().Int()
			return v == 0 || v == 1
		})
	})
	return validate
}

// ValidateStruct validates v and returns a *RequestValidationError on failure.
func ValidateStruct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &RequestValidationError{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return out
}
