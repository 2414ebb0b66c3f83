package inventory

import (
	"errors"
	"fmt"
)

var (
	ErrConsigned    = errors.New("material is consigned and read-only")
	ErrForbidden    = errors.New("permission denied")
	ErrNotConfirmed = errors.New("confirmation required")
	ErrInvalidValue = errors.New("invalid field value")
)

// FormErrors holds one flag per required creation field.
type FormErrors struct {
	Title  bool `json:"title"`
	Owner  bool `json:"owner"`
	Team   bool `json:"team"`
	Origin bool `json:"origin"`
}

func (e FormErrors) Any() bool {
	return e.Title || e.Owner || e.Team || e.Origin
}

// ValidationError is returned when required fields are missing. No request
// has been sent when it is returned.
type ValidationError struct {
	Fields FormErrors
}

func (e *ValidationError) Error() string {
	return "missing required fields"
}

// FieldError ties a rejected edit to its field.
type FieldError struct {
	Field Field
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
