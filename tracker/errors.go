/*
errors.go - Error types for the tracker service

PURPOSE:
  The earnings engine never fails; every error a caller can see comes from
  input validation, the store, or a lookup that found nothing. They are
  collected here so the API layer can map them to status codes.

USAGE:
  if tracker.IsNotFound(err) { ... 404 ... }
  var verr *tracker.ValidationError
  if errors.As(err, &verr) { ... verr.Field ... }
*/
package tracker

import (
	"errors"
	"fmt"

	"github.com/warp/ridebook/calendar"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRecordNotFound is returned when no record exists for a date.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidRecord is returned when a record fails input validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidSettings is returned when settings or profile fail validation.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrInvalidPeriod is returned for malformed periods and months.
	ErrInvalidPeriod = calendar.ErrInvalidPeriod
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
	Err     error // ErrInvalidRecord or ErrInvalidSettings
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRecord) ||
		errors.Is(err, ErrInvalidSettings) ||
		errors.Is(err, ErrInvalidPeriod)
}
