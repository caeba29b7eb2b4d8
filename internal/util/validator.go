package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the only layout accepted for date-only query parameters.
const DateLayout = "2006-01-02"

// dateTimeLayouts are tried in order for timestamp fields in request bodies.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDateTime accepts RFC 3339, naive ISO timestamps and plain dates.
// Timestamps without an offset are taken as UTC. The result is in UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("date is empty")
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

var registerOnce sync.Once

// RegisterValidators names validation errors after json/form tags and adds
// the "currency" tag. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			_, err := models.ParseCurrency(fl.Field().String())
			return err == nil
		})
	})
}

// BindingError converts an error from gin's ShouldBind* into a 422
// validation failure with one entry per offending field.
func BindingError(err error) *apperr.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]apperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, apperr.FieldError{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
				Tag:     fe.Tag(),
			})
		}
		return apperr.Validation(details...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Validation(apperr.FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.String()),
			Tag:     "type",
		})
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return apperr.Validation(apperr.FieldError{
			Field:   "query",
			Message: fmt.Sprintf("invalid number %q", numErr.Num),
			Tag:     "type",
		})
	}

	var syntaxErr *json.SyntaxError
	if errors.Is(err, io.EOF) || errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperr.Validation(apperr.FieldError{
			Field:   "body",
			Message: "request body must be valid JSON",
			Tag:     "json",
		})
	}

	return apperr.Validation(apperr.FieldError{Field: "body", Message: err.Error()})
}

// FieldInvalid builds a single-field 422 failure.
func FieldInvalid(field, message string) *apperr.Error {
	return apperr.Validation(apperr.FieldError{Field: field, Message: message, Tag: "format"})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "currency":
		return fmt.Sprintf("%s must be one of %v", fe.Field(), models.Currencies)
	default:
		return fmt.Sprintf("%s failed on the %q rule", fe.Field(), fe.Tag())
	}
}
