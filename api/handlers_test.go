/*
handlers_test.go - End-to-end handler tests

Drives the full router with httptest against an in-memory store:
contract onboarding, shift generation, the correction workflow, salary
computation, and the error-to-status mapping.
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/warp/wage-engine/calendar"
	"github.com/warp/wage-engine/labor"
	"github.com/warp/wage-engine/notify"
	"github.com/warp/wage-engine/payment"
	"github.com/warp/wage-engine/shift"
	"github.com/warp/wage-engine/store/sqlite"
	"github.com/warp/wage-engine/wage"
)

// =============================================================================
// TEST ENVIRONMENT
// =============================================================================

type testEnv struct {
	router http.Handler
	store  *sqlite.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cal := calendar.NewService(store, &calendar.StaticSource{
		Holidays: []calendar.Holiday{
			{ID: "h-1", Date: labor.NewDate(2025, 1, 1), Name: "New Year's Day", Type: "public"},
		},
	})
	gen := shift.NewGenerator(store, store)
	wf := shift.NewWorkflow(store, store, notify.Discard{})
	calc := wage.NewCalculator(store, store, cal, wage.DefaultRates(), notify.Discard{})
	pay := payment.NewService(store, notify.Discard{})

	h := NewHandler(store, gen, wf, calc, pay, cal)
	return &testEnv{router: NewRouter(h), store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// createContract onboards a workplace plus a Mon/Wed/Fri contract and
// returns the contract DTO.
func (e *testEnv) createContract(t *testing.T) ContractDTO {
	t.Helper()

	rec := e.do(t, "POST", "/api/workplaces", CreateWorkplaceRequest{
		Name: "Test Cafe", EmployerID: "emp-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating workplace, got %d: %s", rec.Code, rec.Body.String())
	}
	wp := decode[WorkplaceDTO](t, rec)

	rec = e.do(t, "POST", "/api/contracts", CreateContractRequest{
		WorkerID:    "worker-1",
		WorkplaceID: wp.ID,
		HourlyWage:  "10000",
		WorkDays: []WorkDayDTO{
			{Weekday: 1, Start: "09:00", End: "18:00"},
			{Weekday: 3, Start: "09:00", End: "18:00"},
			{Weekday: 5, Start: "09:00", End: "18:00"},
		},
		StartDate:  "2025-01-01",
		PaymentDay: 25,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating contract, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[ContractDTO](t, rec)
}

// =============================================================================
// CONTRACT LIFECYCLE
// =============================================================================

func TestContractLifecycle(t *testing.T) {
	env := newTestEnv(t)
	c := env.createContract(t)

	// GET round-trips what POST created
	rec := env.do(t, "GET", "/api/contracts/"+c.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	got := decode[ContractDTO](t, rec)
	if got.HourlyWage != "10000" {
		t.Errorf("Expected wage 10000, got %s", got.HourlyWage)
	}
	if len(got.WorkDays) != 3 {
		t.Errorf("Expected 3 work days, got %d", len(got.WorkDays))
	}

	// PATCH amends only what the body names
	newWage := "11500"
	rec = env.do(t, "PATCH", "/api/contracts/"+c.ID, AmendContractRequest{HourlyWage: &newWage})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 amending, got %d: %s", rec.Code, rec.Body.String())
	}
	amended := decode[ContractDTO](t, rec)
	if amended.HourlyWage != "11500" {
		t.Errorf("Expected amended wage 11500, got %s", amended.HourlyWage)
	}
	if amended.PaymentDay != 25 {
		t.Errorf("Payment day should be untouched, got %d", amended.PaymentDay)
	}

	// Terminate closes the validity window
	rec = env.do(t, "POST", "/api/contracts/"+c.ID+"/terminate", TerminateContractRequest{Date: "2025-06-30"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 terminating, got %d: %s", rec.Code, rec.Body.String())
	}
	terminated := decode[ContractDTO](t, rec)
	if terminated.Active {
		t.Error("Terminated contract should not be active")
	}
	if terminated.EndDate == nil || *terminated.EndDate != "2025-06-30" {
		t.Errorf("Expected end date 2025-06-30, got %v", terminated.EndDate)
	}

	// A second termination is a state conflict
	rec = env.do(t, "POST", "/api/contracts/"+c.ID+"/terminate", TerminateContractRequest{Date: "2025-07-31"})
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 on double termination, got %d", rec.Code)
	}
}

func TestCreateContract_UnknownWorkplace(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/contracts", CreateContractRequest{
		WorkerID:    "worker-1",
		WorkplaceID: "no-such-workplace",
		HourlyWage:  "10000",
		WorkDays:    []WorkDayDTO{{Weekday: 1, Start: "09:00", End: "18:00"}},
		StartDate:   "2025-01-01",
		PaymentDay:  25,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown workplace, got %d", rec.Code)
	}
}

// =============================================================================
// SHIFTS & SALARY
// =============================================================================

func TestGenerateShifts_ThenComputeSalary(t *testing.T) {
	env := newTestEnv(t)
	c := env.createContract(t)

	rec := env.do(t, "POST", "/api/contracts/"+c.ID+"/shifts/generate",
		GenerateShiftsRequest{Year: 2025, Month: 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 generating, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, "GET", "/api/contracts/"+c.ID+"/shifts?year=2025&month=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing shifts, got %d", rec.Code)
	}
	shifts := decode[[]ShiftDTO](t, rec)
	if len(shifts) != 14 {
		t.Fatalf("Expected 14 generated shifts for Jan 2025, got %d", len(shifts))
	}

	rec = env.do(t, "POST", "/api/contracts/"+c.ID+"/salary",
		ComputeSalaryRequest{Year: 2025, Month: 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 computing salary, got %d: %s", rec.Code, rec.Body.String())
	}
	sal := decode[SalaryDTO](t, rec)

	// 14 shifts x 9h: 8h base + 1h overtime each; Jan 1 is a holiday.
	if sal.TotalHours != "126" {
		t.Errorf("Expected 126 total hours, got %s", sal.TotalHours)
	}
	if sal.BasePay != "1120000" {
		t.Errorf("Expected base 1120000, got %s", sal.BasePay)
	}
	if sal.OvertimePay != "210000" {
		t.Errorf("Expected overtime 210000, got %s", sal.OvertimePay)
	}
	if sal.HolidayPay != "45000" {
		t.Errorf("Expected holiday pay 45000, got %s", sal.HolidayPay)
	}
	if sal.PaymentDueDate != "2025-02-25" {
		t.Errorf("Expected due date 2025-02-25, got %s", sal.PaymentDueDate)
	}

	// The statement's settlement record is reachable and pending
	rec = env.do(t, "GET", "/api/salaries/"+sal.ID+"/payment", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 fetching payment, got %d", rec.Code)
	}
	p := decode[PaymentDTO](t, rec)
	if p.Status != "PENDING" {
		t.Errorf("Expected PENDING payment, got %s", p.Status)
	}
}

func TestAddShift_CollisionMapsTo400(t *testing.T) {
	env := newTestEnv(t)
	c := env.createContract(t)

	body := AddShiftRequest{Date: "2025-01-07", Start: "10:00", End: "15:00"}
	rec := env.do(t, "POST", "/api/contracts/"+c.ID+"/shifts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 adding shift, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, "POST", "/api/contracts/"+c.ID+"/shifts", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for same-date collision, got %d", rec.Code)
	}
	errResp := decode[ErrorResponse](t, rec)
	if errResp.Error == "" {
		t.Error("Expected an error message in the body")
	}
}

func TestRemoveShift_Returns204AndExcludesFromPay(t *testing.T) {
	env := newTestEnv(t)
	c := env.createContract(t)

	rec := env.do(t, "POST", "/api/contracts/"+c.ID+"/shifts",
		AddShiftRequest{Date: "2025-01-07", Start: "09:00", End: "18:00"})
	s := decode[ShiftDTO](t, rec)

	rec = env.do(t, "DELETE", "/api/shifts/"+s.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 removing shift, got %d", rec.Code)
	}

	rec = env.do(t, "POST", "/api/contracts/"+c.ID+"/salary",
		ComputeSalaryRequest{Year: 2025, Month: 1})
	sal := decode[SalaryDTO](t, rec)
	if sal.GrossPay != "0" {
		t.Errorf("Removed shift must not be paid, gross = %s", sal.GrossPay)
	}
}

// =============================================================================
// CORRECTION WORKFLOW OVER HTTP
// =============================================================================

func TestCorrectionWorkflow(t *testing.T) {
	env := newTestEnv(t)
	c := env.createContract(t)

	rec := env.do(t, "POST", "/api/contracts/"+c.ID+"/shifts",
		AddShiftRequest{Date: "2025-01-07", Start: "09:00", End: "18:00"})
	s := decode[ShiftDTO](t, rec)

	// Worker proposes leaving two hours early
	rec = env.do(t, "POST", "/api/shifts/"+s.ID+"/corrections", ProposeCorrectionRequest{
		ActorID: "worker-1", ActorRole: "worker",
		Date: "2025-01-07", Start: "09:00", End: "16:00",
		Reason: "left early",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 proposing, got %d: %s", rec.Code, rec.Body.String())
	}
	cr := decode[CorrectionDTO](t, rec)
	if cr.Status != "PENDING" {
		t.Fatalf("Expected PENDING, got %s", cr.Status)
	}

	// The worker cannot resolve their own request
	rec = env.do(t, "POST", "/api/corrections/"+cr.ID+"/approve", ResolveCorrectionRequest{
		ActorID: "worker-1", ActorRole: "worker",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for self-approval, got %d", rec.Code)
	}

	// The employer approves; the shift takes the proposed times
	rec = env.do(t, "POST", "/api/corrections/"+cr.ID+"/approve", ResolveCorrectionRequest{
		ActorID: "emp-1", ActorRole: "employer", Comment: "confirmed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 approving, got %d: %s", rec.Code, rec.Body.String())
	}
	resolved := decode[CorrectionDTO](t, rec)
	if resolved.Status != "APPROVED" {
		t.Errorf("Expected APPROVED, got %s", resolved.Status)
	}

	rec = env.do(t, "GET", fmt.Sprintf("/api/contracts/%s/shifts?year=2025&month=1", c.ID), nil)
	shifts := decode[[]ShiftDTO](t, rec)
	if len(shifts) != 1 || shifts[0].End != "16:00" {
		t.Errorf("Expected amended shift ending 16:00, got %+v", shifts)
	}

	// Resolving again is a state conflict
	rec = env.do(t, "POST", "/api/corrections/"+cr.ID+"/reject", ResolveCorrectionRequest{
		ActorID: "emp-1", ActorRole: "employer",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 re-resolving, got %d", rec.Code)
	}
}

// =============================================================================
// PAYMENTS OVER HTTP
// =============================================================================

func TestPaymentEndpoints(t *testing.T) {
	env := newTestEnv(t)
	c := env.createContract(t)

	env.do(t, "POST", "/api/contracts/"+c.ID+"/shifts",
		AddShiftRequest{Date: "2025-01-07", Start: "09:00", End: "18:00"})
	rec := env.do(t, "POST", "/api/contracts/"+c.ID+"/salary",
		ComputeSalaryRequest{Year: 2025, Month: 1})
	sal := decode[SalaryDTO](t, rec)

	rec = env.do(t, "GET", "/api/salaries/"+sal.ID+"/payment", nil)
	p := decode[PaymentDTO](t, rec)

	// Completing without a transaction reference is a validation error
	rec = env.do(t, "POST", "/api/payments/"+p.ID+"/complete", CompletePaymentRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without transaction ref, got %d", rec.Code)
	}

	rec = env.do(t, "POST", "/api/payments/"+p.ID+"/complete",
		CompletePaymentRequest{TransactionRef: "txn-42"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 completing, got %d: %s", rec.Code, rec.Body.String())
	}
	done := decode[PaymentDTO](t, rec)
	if done.Status != "COMPLETED" || done.TransactionRef != "txn-42" {
		t.Errorf("Unexpected completed payment: %+v", done)
	}

	// Terminal records refuse further transitions
	rec = env.do(t, "POST", "/api/payments/"+p.ID+"/fail",
		FailPaymentRequest{Reason: "too late"})
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 failing a completed payment, got %d", rec.Code)
	}
}

// =============================================================================
// HOLIDAYS & HEALTH
// =============================================================================

func TestHolidayEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/holidays/refresh?year=2025", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 refreshing, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, "GET", "/api/holidays?year=2025", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing, got %d", rec.Code)
	}
	holidays := decode[[]HolidayDTO](t, rec)
	if len(holidays) != 1 || holidays[0].Name != "New Year's Day" {
		t.Errorf("Unexpected holidays: %+v", holidays)
	}

	rec = env.do(t, "GET", "/api/holidays?year=2025&month=2", nil)
	holidays = decode[[]HolidayDTO](t, rec)
	if len(holidays) != 0 {
		t.Errorf("Expected no February holidays, got %+v", holidays)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, "GET", "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from /healthz, got %d", rec.Code)
	}
}

func TestNotFoundMapsTo404(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, "GET", "/api/contracts/no-such-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}
