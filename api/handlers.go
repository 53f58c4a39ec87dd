/*
handlers.go - HTTP API handlers for the wage computation engine

PURPOSE:
  Exposes the wage engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Workplaces:
    POST   /api/workplaces                     Register workplace
    GET    /api/workplaces/{id}                Get workplace

  Contracts:
    POST   /api/contracts                      Create contract
    GET    /api/contracts/{id}                 Get contract
    PATCH  /api/contracts/{id}                 Amend wage/pattern/end date/payment day
    POST   /api/contracts/{id}/terminate       Terminate contract
    POST   /api/contracts/{id}/shifts          Add one-off shift
    GET    /api/contracts/{id}/shifts          List month's shifts (?year=&month=)
    POST   /api/contracts/{id}/shifts/generate Generate a month from the pattern
    POST   /api/contracts/{id}/salary          Compute monthly salary
    GET    /api/contracts/{id}/salary          Get computed salary (?year=&month=)

  Shifts:
    POST   /api/shifts/{id}/complete           Mark shift worked
    DELETE /api/shifts/{id}                    Soft-delete shift
    POST   /api/shifts/{id}/corrections        Propose correction
    GET    /api/shifts/{id}/corrections        List corrections

  Corrections:
    POST   /api/corrections/{id}/approve       Approve (counterparty only)
    POST   /api/corrections/{id}/reject        Reject (counterparty only)

  Payments:
    GET    /api/payments/{id}                  Get payment
    GET    /api/salaries/{id}/payment          Payment for a salary
    POST   /api/payments/{id}/complete         Settle payment
    POST   /api/payments/{id}/fail             Mark payment failed

  Holidays:
    GET    /api/holidays?year=&month=          List holidays
    POST   /api/holidays/refresh?year=         Re-sync a year from the source

  Admin:
    POST   /api/admin/horizon                  Run horizon extension now
    POST   /api/admin/sweep                    Run payment expiry sweep now

ARCHITECTURE:
  Handler struct holds all dependencies: the store plus one service per
  domain concern (generator, correction workflow, calculator, payments,
  calendar).

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic
  4. Serialize response
  5. Map domain errors to HTTP statuses

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 403: Actor is not a party / not the counterparty
  - 404: Resource not found
  - 409: Invalid state transition (already resolved, terminal payment)
  - 502: Holiday source unreachable or returned bad data
  - 500: Internal errors

SECURITY NOTE:
  Actor identity arrives in the request body; there is no authentication
  middleware. The engine assumes an upstream gateway has authenticated
  the caller.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/wage-engine/calendar"
	"github.com/warp/wage-engine/contract"
	"github.com/warp/wage-engine/labor"
	"github.com/warp/wage-engine/payment"
	"github.com/warp/wage-engine/shift"
	"github.com/warp/wage-engine/store/sqlite"
	"github.com/warp/wage-engine/wage"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       *sqlite.Store
	Generator   *shift.Generator
	Corrections *shift.Workflow
	Calculator  *wage.Calculator
	Payments    *payment.Service
	Calendar    *calendar.Service
}

// NewHandler wires a handler from the store and domain services.
func NewHandler(store *sqlite.Store, gen *shift.Generator, wf *shift.Workflow,
	calc *wage.Calculator, pay *payment.Service, cal *calendar.Service) *Handler {
	return &Handler{
		Store:       store,
		Generator:   gen,
		Corrections: wf,
		Calculator:  calc,
		Payments:    pay,
		Calendar:    cal,
	}
}

// =============================================================================
// WORKPLACE HANDLERS
// =============================================================================

// CreateWorkplace registers a workplace.
// POST /api/workplaces
func (h *Handler) CreateWorkplace(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.EmployerID == "" {
		writeError(w, http.StatusBadRequest, "name and employer_id are required", nil)
		return
	}

	wp := &contract.Workplace{
		ID:                     labor.NewID(),
		Name:                   req.Name,
		EmployerID:             req.EmployerID,
		FewerThanFiveEmployees: req.FewerThanFiveEmployees,
		PaidWeekends:           req.PaidWeekends,
		CreatedAt:              time.Now().UTC(),
	}
	if err := h.Store.SaveWorkplace(r.Context(), wp); err != nil {
		writeDomainError(w, "Failed to save workplace", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkplaceDTO(wp))
}

// GetWorkplace returns a single workplace.
// GET /api/workplaces/{id}
func (h *Handler) GetWorkplace(w http.ResponseWriter, r *http.Request) {
	wp, err := h.Store.GetWorkplace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get workplace", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkplaceDTO(wp))
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// CreateContract creates a validated contract.
// POST /api/contracts
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hourlyWage, err := labor.MoneyFromString(req.HourlyWage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hourly_wage", err)
		return
	}
	workDays, err := parseWorkDays(req.WorkDays)
	if err != nil {
		writeDomainError(w, "Invalid work_days", err)
		return
	}
	startDate, err := labor.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	var endDate *labor.Date
	if req.EndDate != nil {
		d, err := labor.ParseDate(*req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		endDate = &d
	}

	// The workplace must exist before a contract can reference it.
	if _, err := h.Store.GetWorkplace(r.Context(), req.WorkplaceID); err != nil {
		writeDomainError(w, "Unknown workplace", err)
		return
	}

	c, err := contract.New(req.WorkerID, req.WorkplaceID, hourlyWage, workDays,
		startDate, endDate, req.PaymentDay)
	if err != nil {
		writeDomainError(w, "Invalid contract", err)
		return
	}
	if err := h.Store.SaveContract(r.Context(), c); err != nil {
		writeDomainError(w, "Failed to save contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractDTO(c))
}

// GetContract returns a single contract.
// GET /api/contracts/{id}
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get contract", err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(c))
}

// AmendContract applies partial amendments to a contract.
// PATCH /api/contracts/{id}
func (h *Handler) AmendContract(w http.ResponseWriter, r *http.Request) {
	var req AmendContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get contract", err)
		return
	}

	if req.HourlyWage != nil {
		m, err := labor.MoneyFromString(*req.HourlyWage)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid hourly_wage", err)
			return
		}
		if err := c.AmendWage(m); err != nil {
			writeDomainError(w, "Invalid wage amendment", err)
			return
		}
	}
	if len(req.WorkDays) > 0 {
		workDays, err := parseWorkDays(req.WorkDays)
		if err != nil {
			writeDomainError(w, "Invalid work_days", err)
			return
		}
		if err := c.AmendWorkDays(workDays); err != nil {
			writeDomainError(w, "Invalid pattern amendment", err)
			return
		}
	}
	if req.EndDate != nil {
		d, err := labor.ParseDate(*req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		if err := c.AmendEndDate(&d); err != nil {
			writeDomainError(w, "Invalid end date amendment", err)
			return
		}
	}
	if req.PaymentDay != nil {
		if err := c.AmendPaymentDay(*req.PaymentDay); err != nil {
			writeDomainError(w, "Invalid payment day amendment", err)
			return
		}
	}

	if err := h.Store.SaveContract(r.Context(), c); err != nil {
		writeDomainError(w, "Failed to save contract", err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(c))
}

// TerminateContract ends a contract on the given date.
// POST /api/contracts/{id}/terminate
func (h *Handler) TerminateContract(w http.ResponseWriter, r *http.Request) {
	var req TerminateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := labor.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	c, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get contract", err)
		return
	}
	if err := c.Terminate(date); err != nil {
		writeDomainError(w, "Cannot terminate contract", err)
		return
	}
	if err := h.Store.SaveContract(r.Context(), c); err != nil {
		writeDomainError(w, "Failed to save contract", err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(c))
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns one billing month of shifts for a contract.
// GET /api/contracts/{id}/shifts?year=2025&month=1
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	shifts, err := h.Store.ListShiftsForMonth(r.Context(), chi.URLParam(r, "id"), year, month)
	if err != nil {
		writeDomainError(w, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, 0, len(shifts))
	for i := range shifts {
		dtos = append(dtos, toShiftDTO(&shifts[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddShift adds a one-off shift outside the weekly pattern.
// POST /api/contracts/{id}/shifts
func (h *Handler) AddShift(w http.ResponseWriter, r *http.Request) {
	var req AddShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := labor.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	start, err := labor.ParseTimeOfDay(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start", err)
		return
	}
	end, err := labor.ParseTimeOfDay(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end", err)
		return
	}

	s, err := h.Generator.AddManual(r.Context(), chi.URLParam(r, "id"), date, start, end)
	if err != nil {
		writeDomainError(w, "Failed to add shift", err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(s))
}

// GenerateShifts projects one contract's pattern into the target month.
// POST /api/contracts/{id}/shifts/generate
func (h *Handler) GenerateShifts(w http.ResponseWriter, r *http.Request) {
	var req GenerateShiftsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1-12", nil)
		return
	}

	c, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get contract", err)
		return
	}
	result, err := h.Generator.GenerateMonth(r.Context(), c, req.Year, time.Month(req.Month))
	if err != nil {
		writeDomainError(w, "Failed to generate shifts", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CompleteShift marks a scheduled shift as worked.
// POST /api/shifts/{id}/complete
func (h *Handler) CompleteShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Generator.MarkCompleted(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to complete shift", err)
		return
	}
	s, err := h.Store.GetShift(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to load shift", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(s))
}

// RemoveShift soft-deletes a shift. The row stays for audit; the wage
// calculator never sees it again.
// DELETE /api/shifts/{id}
func (h *Handler) RemoveShift(w http.ResponseWriter, r *http.Request) {
	if err := h.Generator.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to remove shift", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CORRECTION HANDLERS
// =============================================================================

// ProposeCorrection opens a correction request on a shift.
// POST /api/shifts/{id}/corrections
func (h *Handler) ProposeCorrection(w http.ResponseWriter, r *http.Request) {
	var req ProposeCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	actor, err := parseActor(req.ActorID, req.ActorRole)
	if err != nil {
		writeDomainError(w, "Invalid actor", err)
		return
	}
	date, err := labor.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	start, err := labor.ParseTimeOfDay(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start", err)
		return
	}
	end, err := labor.ParseTimeOfDay(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end", err)
		return
	}

	cr, err := h.Corrections.Propose(r.Context(), actor, chi.URLParam(r, "id"), shift.Proposal{
		Date: date, Start: start, End: end, Reason: req.Reason,
	})
	if err != nil {
		writeDomainError(w, "Failed to propose correction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCorrectionDTO(cr))
}

// ListCorrections returns a shift's correction history.
// GET /api/shifts/{id}/corrections
func (h *Handler) ListCorrections(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListCorrectionsForShift(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to list corrections", err)
		return
	}
	dtos := make([]CorrectionDTO, 0, len(requests))
	for i := range requests {
		dtos = append(dtos, toCorrectionDTO(&requests[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveCorrection approves a pending correction. Only the counterparty
// of the requester may approve.
// POST /api/corrections/{id}/approve
func (h *Handler) ApproveCorrection(w http.ResponseWriter, r *http.Request) {
	h.resolveCorrection(w, r, h.Corrections.Approve)
}

// RejectCorrection rejects a pending correction; the shift is untouched.
// POST /api/corrections/{id}/reject
func (h *Handler) RejectCorrection(w http.ResponseWriter, r *http.Request) {
	h.resolveCorrection(w, r, h.Corrections.Reject)
}

func (h *Handler) resolveCorrection(w http.ResponseWriter, r *http.Request,
	resolve func(ctx context.Context, actor labor.Actor, requestID, comment string) (*shift.CorrectionRequest, error)) {
	var req ResolveCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	actor, err := parseActor(req.ActorID, req.ActorRole)
	if err != nil {
		writeDomainError(w, "Invalid actor", err)
		return
	}

	cr, err := resolve(r.Context(), actor, chi.URLParam(r, "id"), req.Comment)
	if err != nil {
		writeDomainError(w, "Failed to resolve correction", err)
		return
	}
	writeJSON(w, http.StatusOK, toCorrectionDTO(cr))
}

// =============================================================================
// SALARY HANDLERS
// =============================================================================

// ComputeSalary computes (or recomputes) one billing month.
// POST /api/contracts/{id}/salary
func (h *Handler) ComputeSalary(w http.ResponseWriter, r *http.Request) {
	var req ComputeSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1-12", nil)
		return
	}

	sal, err := h.Calculator.ComputeSalary(r.Context(), chi.URLParam(r, "id"),
		req.Year, time.Month(req.Month))
	if err != nil {
		writeDomainError(w, "Failed to compute salary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSalaryDTO(sal))
}

// GetSalary returns the computed statement for a billing month.
// GET /api/contracts/{id}/salary?year=2025&month=1
func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	sal, err := h.Store.GetSalary(r.Context(), chi.URLParam(r, "id"), year, month)
	if err != nil {
		writeDomainError(w, "Failed to get salary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSalaryDTO(sal))
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// GetPayment returns a settlement record.
// GET /api/payments/{id}
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(p))
}

// GetPaymentForSalary returns the settlement record of a salary.
// GET /api/salaries/{id}/payment
func (h *Handler) GetPaymentForSalary(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPaymentForSalary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(p))
}

// CompletePayment settles a pending payment.
// POST /api/payments/{id}/complete
func (h *Handler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	var req CompletePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Payments.Complete(r.Context(), chi.URLParam(r, "id"), req.TransactionRef)
	if err != nil {
		writeDomainError(w, "Failed to complete payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(p))
}

// FailPayment marks a pending payment failed.
// POST /api/payments/{id}/fail
func (h *Handler) FailPayment(w http.ResponseWriter, r *http.Request) {
	var req FailPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Payments.Fail(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeDomainError(w, "Failed to fail payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(p))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns holidays for a year, optionally narrowed to a month.
// GET /api/holidays?year=2025[&month=1]
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year is required", err)
		return
	}

	var holidays []calendar.Holiday
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil || month < 1 || month > 12 {
			writeError(w, http.StatusBadRequest, "month must be 1-12", nil)
			return
		}
		holidays, err = h.Calendar.HolidaysForMonth(r.Context(), year, time.Month(month))
		if err != nil {
			writeDomainError(w, "Failed to list holidays", err)
			return
		}
	} else {
		holidays, err = h.Calendar.HolidaysFor(r.Context(), year)
		if err != nil {
			writeDomainError(w, "Failed to list holidays", err)
			return
		}
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, holiday := range holidays {
		dtos = append(dtos, toHolidayDTO(holiday))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RefreshHolidays re-syncs one year from the upstream source. On source
// failure the stored year stays as it was.
// POST /api/holidays/refresh?year=2025
func (h *Handler) RefreshHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year is required", err)
		return
	}

	if err := h.Calendar.RefreshYear(r.Context(), year); err != nil {
		writeDomainError(w, "Failed to refresh holidays", err)
		return
	}

	holidays, err := h.Calendar.HolidaysFor(r.Context(), year)
	if err != nil {
		writeDomainError(w, "Failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, holiday := range holidays {
		dtos = append(dtos, toHolidayDTO(holiday))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// TriggerHorizon runs the two-month horizon extension immediately.
// POST /api/admin/horizon
func (h *Handler) TriggerHorizon(w http.ResponseWriter, r *http.Request) {
	report := h.Generator.ExtendHorizon(r.Context(), time.Now())
	writeJSON(w, http.StatusOK, toHorizonReportDTO(report))
}

// TriggerSweep runs the payment expiry sweep immediately.
// POST /api/admin/sweep
func (h *Handler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	report := h.Payments.SweepExpired(r.Context(), labor.Today())
	writeJSON(w, http.StatusOK, toSweepReportDTO(report))
}

// =============================================================================
// HELPERS
// =============================================================================

func parseWorkDays(dtos []WorkDayDTO) ([]contract.WorkDay, error) {
	workDays := make([]contract.WorkDay, 0, len(dtos))
	for _, dto := range dtos {
		start, err := labor.ParseTimeOfDay(dto.Start)
		if err != nil {
			return nil, &labor.ValidationError{Field: "work_days.start", Message: err.Error()}
		}
		end, err := labor.ParseTimeOfDay(dto.End)
		if err != nil {
			return nil, &labor.ValidationError{Field: "work_days.end", Message: err.Error()}
		}
		workDays = append(workDays, contract.WorkDay{Weekday: dto.Weekday, Start: start, End: end})
	}
	return workDays, nil
}

func parseActor(id, role string) (labor.Actor, error) {
	if id == "" {
		return labor.Actor{}, &labor.ValidationError{Field: "actor_id", Message: "required"}
	}
	switch labor.Role(role) {
	case labor.RoleWorker, labor.RoleEmployer:
		return labor.Actor{ID: id, Role: labor.Role(role)}, nil
	default:
		return labor.Actor{}, &labor.ValidationError{Field: "actor_role",
			Message: "must be worker or employer"}
	}
}

func parseYearMonth(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year is required", err)
		return 0, 0, false
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1-12", nil)
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the domain error taxonomy to HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case labor.IsValidation(err):
		return http.StatusBadRequest
	case labor.IsUnauthorized(err):
		return http.StatusForbidden
	case labor.IsNotFound(err):
		return http.StatusNotFound
	case labor.IsInvalidState(err):
		return http.StatusConflict
	case labor.IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
