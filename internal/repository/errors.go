// Package repository persists reminder and user records in MySQL.
// Sentinel errors defined here let handlers distinguish failure
// scenarios without inspecting driver errors.  ErrForbidden covers
// every ownership-scoped miss: a scoped update or delete that
// matched zero rows is reported the same way whether the row does
// not exist or belongs to someone else, so callers can never use the
// API to probe which ids exist.
package repository

import "errors"

// ErrForbidden is returned when a scoped operation touches no rows.
// Handlers translate this into an HTTP 403 response with a body that
// does not reveal whether the target exists.
var ErrForbidden = errors.New("forbidden")

// ErrRegistrationClosed is returned by the user upsert when a
// previously unseen Discord account logs in while new registration
// is administratively disabled.
var ErrRegistrationClosed = errors.New("registration closed")

// ErrSetupState is returned when an onboarding transition is applied
// out of order, e.g. requesting the test step before choosing a
// message preference.  Handlers translate this into HTTP 409.
var ErrSetupState = errors.New("setup step out of order")
