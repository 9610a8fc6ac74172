// Package apperr defines the error kinds surfaced by the service layer and
// their mapping to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError points at a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

// Field is shorthand for a FieldError.
func Field(field, message string) FieldError {
	return FieldError{Field: field, Message: message}
}

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return joinFields(e.Fields)
}

// Validation builds a ValidationError from one or more field errors.
func Validation(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Validationf builds a ValidationError with a formatted message and no fields.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// MissingID is returned when a required document id is empty.
func MissingID(name string) *ValidationError {
	return &ValidationError{
		Message: name + " must be provided",
		Fields:  []FieldError{{Field: name, Message: "must be provided"}},
	}
}

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// PermissionError reports an authenticated caller acting on something
// that is not theirs.
type PermissionError struct {
	Resource string
	ID       int64
	Reason   string
}

func (e *PermissionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("permission denied on %s %d: %s", e.Resource, e.ID, e.Reason)
	}
	return fmt.Sprintf("permission denied on %s %d", e.Resource, e.ID)
}

// Permission builds a PermissionError.
func Permission(resource string, id int64, reason string) *PermissionError {
	return &PermissionError{Resource: resource, ID: id, Reason: reason}
}

// DibValidationError reports a claim that would overshoot the gift supply.
type DibValidationError struct {
	Fields []FieldError
}

func (e *DibValidationError) Error() string {
	return "dib validation failed: " + joinFields(e.Fields)
}

// GiftNotFoundError reports a dib referring to a gift that no longer exists.
type GiftNotFoundError struct {
	GiftID int64
}

func (e *GiftNotFoundError) Error() string {
	return fmt.Sprintf("gift %d not found", e.GiftID)
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		dib        *DibValidationError
		notFound   *NotFoundError
		gift       *GiftNotFoundError
		permission *PermissionError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation), errors.As(err, &dib):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.As(err, &gift):
		return http.StatusNotFound
	case errors.As(err, &permission):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// FieldsOf returns the field errors carried by err, if any.
func FieldsOf(err error) []FieldError {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Fields
	}
	var dib *DibValidationError
	if errors.As(err, &dib) {
		return dib.Fields
	}
	return nil
}

func joinFields(fields []FieldError) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Error())
	}
	return strings.Join(parts, "; ")
}
