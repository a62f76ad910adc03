// Package validation wraps a shared go-playground validator and turns its
// errors into field → message maps for 422 responses.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldErrors maps a JSON field name to a human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator returns the shared validator instance. Field names in errors are
// taken from json tags.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates s and returns FieldErrors, or nil when s is valid.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	out := make(FieldErrors, len(validationErrs))
	for _, fe := range validationErrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = translate(fe)
		}
	}
	return out
}

var messages = map[string]string{
	"required":  "is required",
	"email":     "must be a valid email address",
	"latitude":  "must be a valid latitude (-90 to 90)",
	"longitude": "must be a valid longitude (-180 to 180)",
}

var messagesWithParam = map[string]string{
	"oneof": "must be one of: %s",
	"gte":   "must be greater than or equal to %s",
	"lte":   "must be less than or equal to %s",
	"gt":    "must be greater than %s",
	"lt":    "must be less than %s",
}

func translate(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	if tmpl, ok := messagesWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Param())
	}

	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
