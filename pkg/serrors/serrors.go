package serrors

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

// BaseError is a coded error shared by all structured failures.
type BaseError struct {
	Code    string
	Message string
}

func NewError(code, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrActionInFlight is returned when a mutation is attempted while another
// one still holds the action lock. It carries no state change.
var ErrActionInFlight = NewError("ACTION_IN_FLIGHT", "another action is still in progress, please wait")

// ErrSubmitDeclined is returned when the operator answers no to the save
// confirmation. Nothing was dispatched; the draft stays open and editable.
var ErrSubmitDeclined = NewError("SUBMIT_DECLINED", "the save was not confirmed")

// ValidationErrors maps a field name to a human-readable message. Field
// validation never leaves the client; a non-empty map blocks submission.
type ValidationErrors map[string]string

func (v ValidationErrors) Merge(other ValidationErrors) {
	for field, msg := range other {
		v[field] = msg
	}
}

// First returns the first invalid field following the given field order, so
// callers can focus the offending input. Fields not listed in order come
// last in unspecified order.
func (v ValidationErrors) First(order []string) (string, string) {
	for _, field := range order {
		if msg, ok := v[field]; ok {
			return field, msg
		}
	}
	for field, msg := range v {
		return field, msg
	}
	return "", ""
}

// DraftInvalidError aggregates field errors on a submit attempt. The draft
// stays open and editable.
type DraftInvalidError struct {
	Fields ValidationErrors
}

func (e *DraftInvalidError) Error() string {
	return fmt.Sprintf("draft has %d invalid field(s)", len(e.Fields))
}

// ConflictError is a server-side rejection (duplicate identifier, illegal
// state transition). Field errors are merged back into the open draft.
type ConflictError struct {
	Message string
	Fields  ValidationErrors
}

func (e *ConflictError) Error() string { return e.Message }

// TransportError is a network or server failure. The draft stays open and
// dirty so the operator can retry without re-entering data.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string { return e.Message }
func (e *TransportError) Unwrap() error { return e.Err }

// APIError is the raw failure shape produced by the remote roster API
// collaborator before classification.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api request failed with status %d", e.Status)
}

// Classify converts an arbitrary collaborator error into the console's error
// taxonomy. HTTP 409 (and 422 with field errors) become ConflictError,
// everything else a TransportError.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == 409 || (apiErr.Status == 422 && len(apiErr.Fields) > 0) {
			return &ConflictError{Message: apiErr.Error(), Fields: ValidationErrors(apiErr.Fields)}
		}
		return &TransportError{Message: apiErr.Error(), Err: err}
	}
	return &TransportError{Message: err.Error(), Err: err}
}

// ProcessValidatorErrors converts validator/v10 struct errors into field
// messages using the supplied label function for human field names.
func ProcessValidatorErrors(errs validator.ValidationErrors, label func(field string) string) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = messageFor(fe, label(fe.Field()))
	}
	return out
}

func messageFor(fe validator.FieldError, label string) string {
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", label, fe.Param())
	case "empno":
		return fmt.Sprintf("%s must be the letter E followed by digits", label)
	case "batchcode":
		return fmt.Sprintf("%s must look like DCP-12345", label)
	case "dateonly":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD form", label)
	case "username":
		return fmt.Sprintf("%s may only contain letters, digits, dots and underscores", label)
	case "gt", "gte":
		return fmt.Sprintf("%s must be a positive number", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
