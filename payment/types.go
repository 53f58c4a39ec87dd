/*
Package payment tracks settlement of salary statements.

PURPOSE:
  One settlement record per salary, driven through a strict one-way state
  machine with calendar-driven automatic failure of stale records.

STATE FLOW:
  PENDING ──▶ COMPLETED   (transaction reference + completion time set)
     │
     └─────▶ FAILED      (failure reason set)

  Both outcomes are terminal. Any further transition attempt is an
  invalid-state error and leaves the record unchanged. The field
  invariants are one-to-one with the states: completion time and
  transaction reference exist iff COMPLETED, failure reason iff FAILED.

SEE ALSO:
  - service.go: Transitions and the daily expiry sweep
  - wage/types.go: The owning Salary
*/
package payment

import (
	"context"
	"time"

	"github.com/warp/wage-engine/labor"
)

// =============================================================================
// PAYMENT
// =============================================================================

type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodCash         Method = "cash"
	MethodDeepLink     Method = "deeplink"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

type Payment struct {
	ID       string
	SalaryID string
	Method   Method
	Status   Status

	// Set iff Status == COMPLETED.
	CompletedAt    *time.Time
	TransactionRef string

	// Set iff Status == FAILED.
	FailureReason string

	CreatedAt time.Time
}

func (p *Payment) Terminal() bool { return p.Status != StatusPending }

// NewPending builds the settlement record created alongside a salary.
func NewPending(salaryID string, method Method) *Payment {
	if method == "" {
		method = MethodBankTransfer
	}
	return &Payment{
		ID:        labor.NewID(),
		SalaryID:  salaryID,
		Method:    method,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// OverduePayment pairs a pending payment with its salary's due date for
// the expiry sweep.
type OverduePayment struct {
	Payment Payment
	DueDate labor.Date
}

type Store interface {
	GetPayment(ctx context.Context, id string) (*Payment, error)
	GetPaymentForSalary(ctx context.Context, salaryID string) (*Payment, error)

	// MarkPaymentCompleted / MarkPaymentFailed transition the record only
	// while it is still PENDING, atomically; a terminal record yields
	// labor.ErrInvalidState and stays untouched.
	MarkPaymentCompleted(ctx context.Context, id, transactionRef string, at time.Time) error
	MarkPaymentFailed(ctx context.Context, id, reason string) error

	// ListOverduePending returns every PENDING payment whose salary's due
	// date is strictly before asOf.
	ListOverduePending(ctx context.Context, asOf labor.Date) ([]OverduePayment, error)

	SaveSweepRun(ctx context.Context, run SweepRun) error
}

// SweepRun is the persisted audit record of one expiry sweep.
type SweepRun struct {
	ID          string
	AsOf        labor.Date
	Eligible    int
	Failed      int // transitioned to FAILED
	Errored     int // could not be processed this run
	StartedAt   time.Time
	CompletedAt time.Time
}
