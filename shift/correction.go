/*
correction.go - Correction request state machine

PURPOSE:
  Lets a party propose a change to a committed shift's date/time and lets
  the counterparty approve or reject it without breaking audit history.

STATE FLOW:
  PENDING ──▶ APPROVED   (shift overwritten with proposed values)
     │
     └─────▶ REJECTED   (shift untouched)

  Both outcomes are terminal. Resolving a resolved request is an
  invalid-state error, never a silent no-op.

ATOMICITY:
  Approval couples the shift overwrite and the request's status change in
  one store transaction: both commit or neither does. Rejection touches
  only the request's own review fields.

OWNERSHIP ASSERTIONS:
  Only a party to the shift's contract may propose, and only the
  counterparty of the requester may resolve. Contract/workplace ownership
  itself is pre-validated by the caller (identity is out of scope).

SEE ALSO:
  - types.go: CorrectionRequest and status constants
  - store/sqlite: ResolveCorrection transaction
*/
package shift

import (
	"context"
	"time"

	"github.com/warp/wage-engine/contract"
	"github.com/warp/wage-engine/labor"
	"github.com/warp/wage-engine/notify"
)

// =============================================================================
// WORKFLOW
// =============================================================================

type Workflow struct {
	Shifts    Store
	Contracts contract.Store
	Notifier  notify.Notifier
}

func NewWorkflow(shifts Store, contracts contract.Store, notifier notify.Notifier) *Workflow {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Workflow{Shifts: shifts, Contracts: contracts, Notifier: notifier}
}

// Proposal carries the requested replacement values for a shift.
type Proposal struct {
	Date   labor.Date
	Start  labor.TimeOfDay
	End    labor.TimeOfDay
	Reason string
}

// Propose opens a correction request on an existing, non-deleted shift.
func (w *Workflow) Propose(ctx context.Context, actor labor.Actor, shiftID string, p Proposal) (*CorrectionRequest, error) {
	s, err := w.Shifts.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if s.Status == StatusDeleted {
		return nil, &labor.InvalidStateError{Entity: "shift", ID: shiftID, Current: "DELETED", Attempt: "correct"}
	}

	c, err := w.Contracts.GetContract(ctx, s.ContractID)
	if err != nil {
		return nil, err
	}
	if err := w.assertParty(ctx, actor, c); err != nil {
		return nil, err
	}

	if p.Date.IsZero() {
		return nil, &labor.ValidationError{Field: "proposedDate", Message: "required"}
	}
	if !c.Covers(p.Date) {
		return nil, &labor.ValidationError{Field: "proposedDate", Message: "outside contract validity window"}
	}
	if p.Start.Equal(p.End) {
		return nil, &labor.ValidationError{Field: "proposedEnd", Message: "start and end must differ"}
	}

	r := &CorrectionRequest{
		ID:            labor.NewID(),
		ShiftID:       shiftID,
		RequestedBy:   actor,
		ProposedDate:  p.Date,
		ProposedStart: p.Start,
		ProposedEnd:   p.End,
		Reason:        p.Reason,
		Status:        CorrectionPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := w.Shifts.SaveCorrectionRequest(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Approve resolves a pending request in the requester's favor: the shift
// takes the proposed date/start/end and the request becomes APPROVED, as
// one atomic step.
func (w *Workflow) Approve(ctx context.Context, actor labor.Actor, requestID, comment string) (*CorrectionRequest, error) {
	r, s, err := w.loadForResolution(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reviewer := actor
	r.Status = CorrectionApproved
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &now
	r.ReviewComment = comment

	amended := *s
	amended.WorkDate = r.ProposedDate
	amended.Start = r.ProposedStart
	amended.End = r.ProposedEnd
	amended.UpdatedAt = now

	if err := w.Shifts.ResolveCorrection(ctx, r, &amended); err != nil {
		return nil, err
	}

	w.Notifier.Notify(ctx, notify.NewEvent(notify.EventShiftCorrected, map[string]string{
		"requestId": r.ID,
		"shiftId":   s.ID,
		"outcome":   string(CorrectionApproved),
		"workDate":  r.ProposedDate.String(),
		"start":     r.ProposedStart.String(),
		"end":       r.ProposedEnd.String(),
	}))

	return r, nil
}

// Reject resolves a pending request against the requester. The shift is
// left untouched; only the request's review fields change.
func (w *Workflow) Reject(ctx context.Context, actor labor.Actor, requestID, comment string) (*CorrectionRequest, error) {
	r, s, err := w.loadForResolution(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reviewer := actor
	r.Status = CorrectionRejected
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &now
	r.ReviewComment = comment

	if err := w.Shifts.ResolveCorrection(ctx, r, nil); err != nil {
		return nil, err
	}

	w.Notifier.Notify(ctx, notify.NewEvent(notify.EventShiftCorrected, map[string]string{
		"requestId": r.ID,
		"shiftId":   s.ID,
		"outcome":   string(CorrectionRejected),
	}))

	return r, nil
}

// loadForResolution fetches the request and its shift and checks every
// resolution precondition: request pending, resolver is the requester's
// counterparty on this contract.
func (w *Workflow) loadForResolution(ctx context.Context, actor labor.Actor, requestID string) (*CorrectionRequest, *Shift, error) {
	r, err := w.Shifts.GetCorrectionRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if r.Resolved() {
		return nil, nil, &labor.InvalidStateError{
			Entity: "correction request", ID: requestID,
			Current: string(r.Status), Attempt: "resolve",
		}
	}

	s, err := w.Shifts.GetShift(ctx, r.ShiftID)
	if err != nil {
		return nil, nil, err
	}
	c, err := w.Contracts.GetContract(ctx, s.ContractID)
	if err != nil {
		return nil, nil, err
	}

	if !r.RequestedBy.Counterparty(actor) {
		return nil, nil, &labor.UnauthorizedError{Actor: actor,
			Message: "only the counterparty of the requester may resolve"}
	}
	if err := w.assertParty(ctx, actor, c); err != nil {
		return nil, nil, err
	}

	return r, s, nil
}

// assertParty checks the actor is the contract's worker or the employer
// behind its workplace.
func (w *Workflow) assertParty(ctx context.Context, actor labor.Actor, c *contract.Contract) error {
	switch actor.Role {
	case labor.RoleWorker:
		if actor.ID != c.WorkerID {
			return &labor.UnauthorizedError{Actor: actor, Message: "not the contract's worker"}
		}
	case labor.RoleEmployer:
		wp, err := w.Contracts.GetWorkplace(ctx, c.WorkplaceID)
		if err != nil {
			return err
		}
		if actor.ID != wp.EmployerID {
			return &labor.UnauthorizedError{Actor: actor, Message: "not the contract's employer"}
		}
	default:
		return &labor.UnauthorizedError{Actor: actor, Message: "unknown role"}
	}
	return nil
}
