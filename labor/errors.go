/*
errors.go - Centralized error taxonomy for the wage engine

PURPOSE:
  All error kinds in one place. Domain packages wrap these sentinels with
  structured types carrying entity context, so callers can branch with
  errors.Is while operators still see which record failed.

ERROR CATEGORIES:
  1. NotFound     - Referenced contract/shift/salary/payment absent
  2. InvalidState - Transition attempted on a terminal or mismatched state
  3. Validation   - Malformed time ranges, out-of-window dates, bad fields
  4. Upstream     - Holiday source unreachable or returned garbage
  5. Unauthorized - Actor is not the required counterparty/owner

PROPAGATION POLICY:
  Validation and invalid-state errors surface synchronously and never
  partially mutate state. Per-item failures inside batch runs (horizon
  generation, payment sweep) are logged and counted, not rethrown.

USAGE:
  if labor.IsInvalidState(err) {
      // 409 to the caller
  }

SEE ALSO:
  - shift/correction.go: InvalidStateError on double resolution
  - payment/service.go: InvalidStateError on terminal transitions
*/
package labor

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState is returned when a state transition is attempted on a
	// terminal or mismatched state (e.g. resolving a resolved correction).
	ErrInvalidState = errors.New("invalid state transition")

	// ErrValidation is returned for malformed input: bad time ranges,
	// out-of-window dates, missing required fields.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream is returned when an external collaborator (the holiday
	// source) fails or hands back a payload we refuse to trust.
	ErrUpstream = errors.New("upstream source failed")

	// ErrUnauthorized is returned when the acting party is not the required
	// counterparty or owner for the operation.
	ErrUnauthorized = errors.New("actor not authorized")
)

// =============================================================================
// STRUCTURED ERRORS - Carry entity context
// =============================================================================

type NotFoundError struct {
	Entity string // "contract", "shift", "salary", "payment", ...
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type InvalidStateError struct {
	Entity  string
	ID      string
	Current string // state the record is actually in
	Attempt string // transition that was attempted
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s while %s", e.Entity, e.ID, e.Attempt, e.Current)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type UpstreamError struct {
	Source  string
	Year    int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s (year %d): %s", e.Source, e.Year, e.Message)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

type UnauthorizedError struct {
	Actor   Actor
	Message string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("actor %s (%s): %s", e.Actor.ID, e.Actor.Role, e.Message)
}

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }
func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsUpstream(err error) bool     { return errors.Is(err, ErrUpstream) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// IsClientError reports whether the failure is the caller's fault
// (maps to a 4xx at the API surface).
func IsClientError(err error) bool {
	return IsValidation(err) || IsInvalidState(err) || IsNotFound(err) || IsUnauthorized(err)
}
