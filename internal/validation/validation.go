package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayouts are the accepted input formats for calendar dates
var DateLayouts = []string{"2006-01-02", time.RFC3339}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// maxbytes bounds the encoded length; max counts characters
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	return v
}

// FieldError is a single failed field with a human readable message
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Errors collects one message per offending field
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// Add appends a field error unless the field already has one
func (e Errors) Add(field, message, code string) Errors {
	for _, fe := range e {
		if fe.Field == field {
			return e
		}
	}
	return append(e, FieldError{Field: field, Message: message, Code: code})
}

// ValidateStruct validates a struct using go-playground/validator.
// Field failures are returned as Errors.
func ValidateStruct(s interface{}) error {
	if s == nil {
		return nil
	}

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validator: expected a struct, got %T", s)
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validation failed: %w", err)
	}

	result := make(Errors, 0, len(ve))
	for _, fe := range ve {
		result = result.Add(fe.Field(), messageFor(val.Type(), fe), fe.Tag())
	}
	return result
}

// ParseDate parses a YYYY-MM-DD or RFC 3339 date
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// messageFor builds the message for a failure. A `msg` struct tag overrides
// every rule except required.
func messageFor(typ reflect.Type, fe validator.FieldError) string {
	label := humanize(fe.Field())
	if f, ok := typ.FieldByName(fe.StructField()); ok {
		if msg := f.Tag.Get("msg"); msg != "" && fe.Tag() != "required" {
			return msg
		}
		if l := f.Tag.Get("label"); l != "" {
			label = l
		}
	}

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s field is required", label)
	case "email":
		return "Email is invalid"
	case "url":
		return "Not a valid URL"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", label, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", label, humanize(fe.Param()))
	case "isodate":
		return fmt.Sprintf("%s date is invalid", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func humanize(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
