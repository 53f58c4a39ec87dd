/*
Package shift manages dated work records and their correction workflow.

PURPOSE:
  Two responsibilities live here:
  1. The generator that projects a contract's weekly pattern into dated
     shift records, keeping a rolling two-month horizon populated without
     duplicates (generator.go).
  2. The correction state machine that lets either party retroactively
     amend a committed shift with counterparty approval (correction.go).

STATUS MODEL:
  SCHEDULED -> COMPLETED        (the shift was worked)
  SCHEDULED/COMPLETED -> DELETED (soft delete - row stays for audit)

  DELETED shifts are excluded from wage computation but never physically
  removed; every query that feeds pay or listings filters the status
  explicitly.

MIDNIGHT CROSSING:
  A shift whose end time is at or before its start time runs into the
  next day. Contract patterns disallow this (start < end enforced at
  construction), but manually entered and corrected shifts may cross
  midnight; the wage calculator splits the night-window overlap across
  the boundary.

SEE ALSO:
  - generator.go: Horizon projection
  - correction.go: Approval workflow
  - wage/calc.go: Consumes shifts per billing month
*/
package shift

import (
	"context"
	"time"

	"github.com/warp/wage-engine/labor"
)

// =============================================================================
// SHIFT - One dated work occurrence
// =============================================================================

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"
	StatusDeleted   Status = "DELETED"
)

type Shift struct {
	ID         string
	ContractID string
	WorkDate   labor.Date
	Start      labor.TimeOfDay
	End        labor.TimeOfDay
	Status     Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CrossesMidnight reports whether the shift runs past 24:00 into the
// next day (end at or before start).
func (s *Shift) CrossesMidnight() bool {
	return !s.End.After(s.Start)
}

// DurationMinutes returns the worked span, wrapping across midnight when
// needed.
func (s *Shift) DurationMinutes() int {
	return labor.DurationMinutes(s.Start, s.End)
}

func (s *Shift) Payable() bool {
	return s.Status == StatusScheduled || s.Status == StatusCompleted
}

// =============================================================================
// CORRECTION REQUEST - Proposed retroactive edit to a committed shift
// =============================================================================

type CorrectionStatus string

const (
	CorrectionPending  CorrectionStatus = "PENDING"
	CorrectionApproved CorrectionStatus = "APPROVED"
	CorrectionRejected CorrectionStatus = "REJECTED"
)

type CorrectionRequest struct {
	ID      string
	ShiftID string

	RequestedBy labor.Actor

	ProposedDate  labor.Date
	ProposedStart labor.TimeOfDay
	ProposedEnd   labor.TimeOfDay
	Reason        string

	Status CorrectionStatus

	// Review fields - set exactly once, at resolution, for both outcomes.
	ReviewedBy    *labor.Actor
	ReviewedAt    *time.Time
	ReviewComment string

	CreatedAt time.Time
}

// Resolved reports whether the request reached a terminal state.
func (r *CorrectionRequest) Resolved() bool {
	return r.Status != CorrectionPending
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

type Store interface {
	SaveShift(ctx context.Context, s *Shift) error
	GetShift(ctx context.Context, id string) (*Shift, error)
	ShiftExists(ctx context.Context, contractID string, date labor.Date) (bool, error)
	ListShiftsForMonth(ctx context.Context, contractID string, year int, month time.Month) ([]Shift, error)
	UpdateShiftStatus(ctx context.Context, id string, status Status) error

	SaveCorrectionRequest(ctx context.Context, r *CorrectionRequest) error
	GetCorrectionRequest(ctx context.Context, id string) (*CorrectionRequest, error)
	ListCorrectionsForShift(ctx context.Context, shiftID string) ([]CorrectionRequest, error)

	// ResolveCorrection persists the resolved request and, for approvals,
	// the amended shift in a single transaction - both or neither.
	ResolveCorrection(ctx context.Context, r *CorrectionRequest, amended *Shift) error

	SaveGenerationRun(ctx context.Context, run GenerationRun) error
}
