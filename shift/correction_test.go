package shift_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/wage-engine/contract"
	"github.com/warp/wage-engine/labor"
	"github.com/warp/wage-engine/notify"
	"github.com/warp/wage-engine/shift"
	"github.com/warp/wage-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type correctionFixture struct {
	store    *sqlite.Store
	workflow *shift.Workflow
	contract *contract.Contract
	shift    *shift.Shift
	worker   labor.Actor
	employer labor.Actor
}

func newCorrectionFixture(t *testing.T) *correctionFixture {
	t.Helper()
	store := newTestStore(t)
	wp := saveWorkplace(t, store, "emp-1")
	c := saveContract(t, store, "worker-1", wp.ID)

	gen := shift.NewGenerator(store, store)
	s, err := gen.AddManual(context.Background(), c.ID,
		labor.NewDate(2025, time.January, 7),
		labor.NewTimeOfDay(18, 0), labor.NewTimeOfDay(22, 0))
	require.NoError(t, err)

	return &correctionFixture{
		store:    store,
		workflow: shift.NewWorkflow(store, store, notify.Discard{}),
		contract: c,
		shift:    s,
		worker:   labor.Actor{ID: "worker-1", Role: labor.RoleWorker},
		employer: labor.Actor{ID: "emp-1", Role: labor.RoleEmployer},
	}
}

func (f *correctionFixture) propose(t *testing.T, actor labor.Actor) *shift.CorrectionRequest {
	t.Helper()
	r, err := f.workflow.Propose(context.Background(), actor, f.shift.ID, shift.Proposal{
		Date:   labor.NewDate(2025, time.January, 7),
		Start:  labor.NewTimeOfDay(18, 0),
		End:    labor.NewTimeOfDay(20, 0),
		Reason: "left early",
	})
	require.NoError(t, err)
	return r
}

// =============================================================================
// PROPOSAL TESTS
// =============================================================================

func TestPropose_CreatesPendingRequest(t *testing.T) {
	f := newCorrectionFixture(t)

	r := f.propose(t, f.worker)

	assert.Equal(t, shift.CorrectionPending, r.Status)
	assert.Equal(t, f.shift.ID, r.ShiftID)
	assert.Nil(t, r.ReviewedBy)

	// The shift is untouched while the request is pending.
	s, err := f.store.GetShift(context.Background(), f.shift.ID)
	require.NoError(t, err)
	assert.Equal(t, "22:00", s.End.String())
}

func TestPropose_NonPartyRejected(t *testing.T) {
	f := newCorrectionFixture(t)

	stranger := labor.Actor{ID: "worker-99", Role: labor.RoleWorker}
	_, err := f.workflow.Propose(context.Background(), stranger, f.shift.ID, shift.Proposal{
		Date:  labor.NewDate(2025, time.January, 7),
		Start: labor.NewTimeOfDay(18, 0),
		End:   labor.NewTimeOfDay(20, 0),
	})

	assert.True(t, labor.IsUnauthorized(err))
}

func TestPropose_DateOutsideWindowRejected(t *testing.T) {
	f := newCorrectionFixture(t)

	_, err := f.workflow.Propose(context.Background(), f.worker, f.shift.ID, shift.Proposal{
		Date:  labor.NewDate(2024, time.June, 1),
		Start: labor.NewTimeOfDay(18, 0),
		End:   labor.NewTimeOfDay(20, 0),
	})

	assert.True(t, labor.IsValidation(err))
}

func TestPropose_DeletedShiftRejected(t *testing.T) {
	f := newCorrectionFixture(t)
	gen := shift.NewGenerator(f.store, f.store)
	require.NoError(t, gen.Remove(context.Background(), f.shift.ID))

	_, err := f.workflow.Propose(context.Background(), f.worker, f.shift.ID, shift.Proposal{
		Date:  labor.NewDate(2025, time.January, 7),
		Start: labor.NewTimeOfDay(18, 0),
		End:   labor.NewTimeOfDay(20, 0),
	})

	assert.True(t, labor.IsInvalidState(err))
}

// =============================================================================
// RESOLUTION TESTS
// =============================================================================

func TestApprove_AmendsShiftAndClosesRequest(t *testing.T) {
	// GIVEN: A worker-proposed correction (18:00-22:00 -> 18:00-20:00)
	// WHEN: The employer approves
	// THEN: The shift takes the proposed times and the request records
	//       reviewer, time, and comment

	f := newCorrectionFixture(t)
	r := f.propose(t, f.worker)
	ctx := context.Background()

	resolved, err := f.workflow.Approve(ctx, f.employer, r.ID, "confirmed on CCTV")
	require.NoError(t, err)

	assert.Equal(t, shift.CorrectionApproved, resolved.Status)
	require.NotNil(t, resolved.ReviewedBy)
	assert.Equal(t, f.employer.ID, resolved.ReviewedBy.ID)
	assert.NotNil(t, resolved.ReviewedAt)
	assert.Equal(t, "confirmed on CCTV", resolved.ReviewComment)

	s, err := f.store.GetShift(ctx, f.shift.ID)
	require.NoError(t, err)
	assert.Equal(t, "18:00", s.Start.String())
	assert.Equal(t, "20:00", s.End.String())
}

func TestReject_LeavesShiftUntouched(t *testing.T) {
	f := newCorrectionFixture(t)
	r := f.propose(t, f.worker)
	ctx := context.Background()

	resolved, err := f.workflow.Reject(ctx, f.employer, r.ID, "shift log says otherwise")
	require.NoError(t, err)
	assert.Equal(t, shift.CorrectionRejected, resolved.Status)

	s, err := f.store.GetShift(ctx, f.shift.ID)
	require.NoError(t, err)
	assert.Equal(t, "22:00", s.End.String(), "rejection must not modify the shift")
}

func TestResolve_TerminalRequestRefused(t *testing.T) {
	// Approving or rejecting an already-resolved request is an
	// invalid-state error, never a silent no-op.
	f := newCorrectionFixture(t)
	r := f.propose(t, f.worker)
	ctx := context.Background()

	_, err := f.workflow.Approve(ctx, f.employer, r.ID, "")
	require.NoError(t, err)

	_, err = f.workflow.Approve(ctx, f.employer, r.ID, "")
	assert.True(t, labor.IsInvalidState(err))

	_, err = f.workflow.Reject(ctx, f.employer, r.ID, "")
	assert.True(t, labor.IsInvalidState(err))
}

func TestResolve_RequesterCannotSelfApprove(t *testing.T) {
	f := newCorrectionFixture(t)
	r := f.propose(t, f.worker)

	_, err := f.workflow.Approve(context.Background(), f.worker, r.ID, "")
	assert.True(t, labor.IsUnauthorized(err))
}

func TestResolve_CounterpartyMustBeContractParty(t *testing.T) {
	// An employer who is not behind this contract's workplace has the
	// right role but no standing.
	f := newCorrectionFixture(t)
	r := f.propose(t, f.worker)

	otherEmployer := labor.Actor{ID: "emp-99", Role: labor.RoleEmployer}
	_, err := f.workflow.Approve(context.Background(), otherEmployer, r.ID, "")
	assert.True(t, labor.IsUnauthorized(err))
}

func TestEmployerProposes_WorkerResolves(t *testing.T) {
	// Direction is symmetric: either party can propose, the other resolves.
	f := newCorrectionFixture(t)
	r := f.propose(t, f.employer)

	resolved, err := f.workflow.Approve(context.Background(), f.worker, r.ID, "")
	require.NoError(t, err)
	assert.Equal(t, shift.CorrectionApproved, resolved.Status)
}

func TestListCorrectionsForShift_KeepsFullHistory(t *testing.T) {
	f := newCorrectionFixture(t)
	ctx := context.Background()

	first := f.propose(t, f.worker)
	_, err := f.workflow.Reject(ctx, f.employer, first.ID, "no")
	require.NoError(t, err)

	second := f.propose(t, f.worker)
	_, err = f.workflow.Approve(ctx, f.employer, second.ID, "ok")
	require.NoError(t, err)

	history, err := f.store.ListCorrectionsForShift(ctx, f.shift.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, shift.CorrectionRejected, history[0].Status)
	assert.Equal(t, shift.CorrectionApproved, history[1].Status)
}
