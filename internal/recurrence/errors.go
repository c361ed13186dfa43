// Package recurrence normalizes raw reminder form submissions into
// canonical, timezone-normalized reminder records and renders stored
// records back into form-ready field values.  It is the validation
// core shared by the create and edit paths.
//
// The package surfaces exactly three error kinds: *MissingFieldError,
// *InvalidTimeError and the ErrPermission sentinel.  Handlers map
// these to 400/400/403 respectively; anything else escaping a request
// is treated as a generic server failure.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPermission is returned when a submission attempts to set a
// recipient other than the authenticated caller.  Repository-level
// scope misses surface the equivalent repository.ErrForbidden; both
// are access denials that must not reveal whether a target exists.
var ErrPermission = errors.New("permission denied")

// MissingFieldError reports every required field that was absent or
// blank in a submission.  All missing fields are collected before
// returning so the user can correct the whole form in one pass.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return "missing required field(s): " + strings.Join(e.Fields, ", ")
}

// InvalidTimeError reports a field whose value could not be
// understood: an unparseable date or time string, an unrecognized
// timezone name, or a malformed numeric recurrence value.
type InvalidTimeError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidTimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid value for %s: %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid value for %s: %q", e.Field, e.Value)
}

func (e *InvalidTimeError) Unwrap() error { return e.Err }
