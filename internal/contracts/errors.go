package contracts

import (
	"errors"
	"fmt"
)

// ValidationError rejects a bad store write (non-positive price, future
// date). It is fatal to that single write and never coerced away.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// FetchError marks a recoverable per-item provider failure. Ingestion skips
// the item, counts the failure, and moves on.
type FetchError struct {
	Item string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for %q: %v", e.Item, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError wraps err with the item it failed on.
func NewFetchError(item string, err error) *FetchError {
	return &FetchError{Item: item, Err: err}
}

// ConfigurationError means the configured provider (or another startup
// dependency) cannot be constructed. Fatal to the whole operation.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsFetch reports whether err is a FetchError.
func IsFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// ErrNotFound is returned by lookups for untracked identifiers.
var ErrNotFound = errors.New("not found")
