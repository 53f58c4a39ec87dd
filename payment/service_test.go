package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/wage-engine/contract"
	"github.com/warp/wage-engine/labor"
	"github.com/warp/wage-engine/notify"
	"github.com/warp/wage-engine/payment"
	"github.com/warp/wage-engine/store/sqlite"
	"github.com/warp/wage-engine/wage"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func saveContract(t *testing.T, store *sqlite.Store) *contract.Contract {
	t.Helper()
	ctx := context.Background()
	wp := &contract.Workplace{ID: labor.NewID(), Name: "Cafe", EmployerID: "emp-1", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.SaveWorkplace(ctx, wp))

	pattern := []contract.WorkDay{
		{Weekday: 1, Start: labor.NewTimeOfDay(9, 0), End: labor.NewTimeOfDay(18, 0)},
	}
	c, err := contract.New("worker-1", wp.ID, labor.NewMoney(10000), pattern,
		labor.NewDate(2025, time.January, 1), nil, 25)
	require.NoError(t, err)
	require.NoError(t, store.SaveContract(ctx, c))
	return c
}

// savePendingPayment persists a minimal salary statement, which carries a
// fresh PENDING settlement record with it.
func savePendingPayment(t *testing.T, store *sqlite.Store, contractID string, month time.Month, due labor.Date) *payment.Payment {
	t.Helper()
	ctx := context.Background()
	s := &wage.Salary{
		ID:             labor.NewID(),
		ContractID:     contractID,
		Year:           2025,
		Month:          month,
		TotalHours:     labor.NewMoney(9),
		BasePay:        labor.NewMoney(80000),
		OvertimePay:    labor.NewMoney(15000),
		GrossPay:       labor.NewMoney(95000),
		TotalDeduction: labor.NewMoney(5000),
		NetPay:         labor.NewMoney(90000),
		PaymentDueDate: due,
		ComputedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.ReplaceSalary(ctx, s))

	p, err := store.GetPaymentForSalary(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, payment.StatusPending, p.Status)
	return p
}

// =============================================================================
// TRANSITION TESTS
// =============================================================================

func TestComplete_StampsRefAndTime(t *testing.T) {
	store := newTestStore(t)
	c := saveContract(t, store)
	p := savePendingPayment(t, store, c.ID, time.January, labor.NewDate(2025, time.February, 25))
	svc := payment.NewService(store, notify.Discard{})

	out, err := svc.Complete(context.Background(), p.ID, "txn-123")
	require.NoError(t, err)

	assert.Equal(t, payment.StatusCompleted, out.Status)
	assert.Equal(t, "txn-123", out.TransactionRef)
	require.NotNil(t, out.CompletedAt)
	assert.Empty(t, out.FailureReason)
}

func TestComplete_RequiresTransactionRef(t *testing.T) {
	store := newTestStore(t)
	c := saveContract(t, store)
	p := savePendingPayment(t, store, c.ID, time.January, labor.NewDate(2025, time.February, 25))
	svc := payment.NewService(store, notify.Discard{})

	_, err := svc.Complete(context.Background(), p.ID, "")
	assert.True(t, labor.IsValidation(err))
}

func TestFail_RecordsReason(t *testing.T) {
	store := newTestStore(t)
	c := saveContract(t, store)
	p := savePendingPayment(t, store, c.ID, time.January, labor.NewDate(2025, time.February, 25))
	svc := payment.NewService(store, notify.Discard{})

	out, err := svc.Fail(context.Background(), p.ID, "bank rejected the transfer")
	require.NoError(t, err)

	assert.Equal(t, payment.StatusFailed, out.Status)
	assert.Equal(t, "bank rejected the transfer", out.FailureReason)
	assert.Nil(t, out.CompletedAt)
}

func TestFail_RequiresReason(t *testing.T) {
	store := newTestStore(t)
	c := saveContract(t, store)
	p := savePendingPayment(t, store, c.ID, time.January, labor.NewDate(2025, time.February, 25))
	svc := payment.NewService(store, notify.Discard{})

	_, err := svc.Fail(context.Background(), p.ID, "")
	assert.True(t, labor.IsValidation(err))
}

func TestTransitions_AreTerminal(t *testing.T) {
	// GIVEN: A completed payment
	// WHEN: Any further transition is attempted
	// THEN: Invalid-state error, record unchanged

	store := newTestStore(t)
	c := saveContract(t, store)
	p := savePendingPayment(t, store, c.ID, time.January, labor.NewDate(2025, time.February, 25))
	svc := payment.NewService(store, notify.Discard{})
	ctx := context.Background()

	_, err := svc.Complete(ctx, p.ID, "txn-1")
	require.NoError(t, err)

	_, err = svc.Fail(ctx, p.ID, "too late")
	assert.True(t, labor.IsInvalidState(err))

	_, err = svc.Complete(ctx, p.ID, "txn-2")
	assert.True(t, labor.IsInvalidState(err))

	stored, err := store.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, stored.Status)
	assert.Equal(t, "txn-1", stored.TransactionRef)
}

func TestTransition_UnknownPayment(t *testing.T) {
	store := newTestStore(t)
	svc := payment.NewService(store, notify.Discard{})

	_, err := svc.Complete(context.Background(), "no-such-id", "txn-1")
	assert.True(t, labor.IsNotFound(err))
}

// =============================================================================
// EXPIRY SWEEP TESTS
// =============================================================================

func TestSweepExpired_FailsOverduePayments(t *testing.T) {
	// GIVEN: Payments due Feb 25 and Mar 25
	// WHEN: Sweeping as of Mar 1
	// THEN: Only the February-due record expires, with a dated reason

	store := newTestStore(t)
	c := saveContract(t, store)
	overdue := savePendingPayment(t, store, c.ID, time.January, labor.NewDate(2025, time.February, 25))
	fresh := savePendingPayment(t, store, c.ID, time.February, labor.NewDate(2025, time.March, 25))
	svc := payment.NewService(store, notify.Discard{})
	ctx := context.Background()

	report := svc.SweepExpired(ctx, labor.NewDate(2025, time.March, 1))

	assert.Equal(t, 1, report.Eligible)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 0, report.Errored)

	swept, err := store.GetPayment(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, swept.Status)
	assert.Equal(t, "payment due date 2025-02-25 passed without settlement", swept.FailureReason)

	kept, err := store.GetPayment(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, kept.Status)
}

func TestSweepExpired_DueDateItselfIsNotOverdue(t *testing.T) {
	// Strictly-before semantics: a payment is overdue the day after its
	// due date, not on it.
	store := newTestStore(t)
	c := saveContract(t, store)
	p := savePendingPayment(t, store, c.ID, time.January, labor.NewDate(2025, time.February, 25))
	svc := payment.NewService(store, notify.Discard{})
	ctx := context.Background()

	onTheDay := svc.SweepExpired(ctx, labor.NewDate(2025, time.February, 25))
	assert.Equal(t, 0, onTheDay.Eligible)

	dayAfter := svc.SweepExpired(ctx, labor.NewDate(2025, time.February, 26))
	assert.Equal(t, 1, dayAfter.Eligible)
	assert.Equal(t, 1, dayAfter.Failed)

	swept, err := store.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, swept.Status)
}

func TestSweepExpired_RerunIsSafe(t *testing.T) {
	store := newTestStore(t)
	c := saveContract(t, store)
	savePendingPayment(t, store, c.ID, time.January, labor.NewDate(2025, time.February, 25))
	svc := payment.NewService(store, notify.Discard{})
	ctx := context.Background()
	asOf := labor.NewDate(2025, time.March, 1)

	first := svc.SweepExpired(ctx, asOf)
	assert.Equal(t, 1, first.Failed)

	// The expired record is terminal now, so it is no longer eligible.
	second := svc.SweepExpired(ctx, asOf)
	assert.Equal(t, 0, second.Eligible)
	assert.Equal(t, 0, second.Failed)
	assert.Equal(t, 0, second.Errored)
}
