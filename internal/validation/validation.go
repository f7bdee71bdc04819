// Package validation runs declarative field checks on domain records and
// reports failures as field-level errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxEmailLength is the longest address accepted by the email rule.
const MaxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error is returned when a record fails validation. Entity names the record
// type ("event", "booking").
type Error struct {
	Entity string       `json:"entity"`
	Fields []FieldError `json:"fields"`
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Entity + " validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether the field failed validation.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// NewFieldError builds a single-field validation error.
func NewFieldError(entity, field, rule, message string) *Error {
	return &Error{
		Entity: entity,
		Fields: []FieldError{{Field: field, Rule: rule, Message: message}},
	}
}

// AsError extracts a validation error from err's chain.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return sf.Name
		}
		return name
	})

	err := v.RegisterValidation("email_simple", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register email_simple: %v", err))
	}

	return v
}

// IsEmail reports whether s looks like local@domain.tld with no whitespace
// and exactly one "@".
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Struct runs the `validate` tags of v. It returns nil or an *Error listing
// every failing field.
func Struct(entity string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate %s: %w", entity, err)
	}

	fields := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe.Tag(), fe.Param(), fe.Kind()),
		})
	}

	return &Error{Entity: entity, Fields: fields}
}

func message(rule, param string, kind reflect.Kind) string {
	collection := kind == reflect.Slice || kind == reflect.Array || kind == reflect.Map

	switch rule {
	case "required":
		return "is required"
	case "email_simple":
		return "must be a valid email address"
	case "min":
		if collection {
			return "must contain at least " + param + " item(s)"
		}
		return "must be at least " + param + " characters"
	case "max":
		if collection {
			return "must contain at most " + param + " item(s)"
		}
		return "must be at most " + param + " characters"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
