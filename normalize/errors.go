package normalize

import (
	"errors"
	"fmt"
)

// ErrPriceResolution is returned when no price can be resolved for a record.
var ErrPriceResolution = errors.New("price, special price, and unit price are all missing")

// MissingFieldError is returned when a required text field has no value.
type MissingFieldError struct {
	Field   string
	Locator string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s (expected %q)", e.Field, e.Locator)
}

// FieldError wraps a price parse failure with the field it happened on.
type FieldError struct {
	Field   string
	Locator string
	Value   string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("failed to parse %s from %q: %v", e.Field, e.Locator, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
