/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Workplaces/Contracts:
    WorkplaceDTO, CreateWorkplaceRequest
    ContractDTO, WorkDayDTO, CreateContractRequest, AmendContractRequest

  Shifts:
    ShiftDTO, AddShiftRequest

  Corrections:
    CorrectionDTO, ProposeCorrectionRequest, ResolveCorrectionRequest

  Salaries/Payments:
    SalaryDTO, PaymentDTO, CompletePaymentRequest, FailPaymentRequest

  Calendar:
    HolidayDTO

MONEY ENCODING:
  All money amounts travel as decimal strings ("10000", "98765.43"),
  never floats. Clients parse them with their own decimal library.

TIME ENCODING:
  Dates are "2006-01-02", times of day are "15:04", timestamps RFC3339.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/wage-engine/calendar"
	"github.com/warp/wage-engine/contract"
	"github.com/warp/wage-engine/payment"
	"github.com/warp/wage-engine/shift"
	"github.com/warp/wage-engine/wage"
)

// =============================================================================
// WORKPLACES & CONTRACTS
// =============================================================================

// WorkplaceDTO represents a workplace in API responses.
type WorkplaceDTO struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	EmployerID             string `json:"employer_id"`
	FewerThanFiveEmployees bool   `json:"fewer_than_five_employees"`
	PaidWeekends           bool   `json:"paid_weekends"`
	CreatedAt              string `json:"created_at,omitempty"`
}

// CreateWorkplaceRequest is the request to register a workplace.
type CreateWorkplaceRequest struct {
	Name                   string `json:"name"`
	EmployerID             string `json:"employer_id"`
	FewerThanFiveEmployees bool   `json:"fewer_than_five_employees"`
	PaidWeekends           bool   `json:"paid_weekends"`
}

// WorkDayDTO is one entry of a contract's weekly pattern.
// Weekday follows ISO-8601: 1=Monday .. 7=Sunday.
type WorkDayDTO struct {
	Weekday int    `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// ContractDTO represents a contract in API responses.
type ContractDTO struct {
	ID          string       `json:"id"`
	WorkerID    string       `json:"worker_id"`
	WorkplaceID string       `json:"workplace_id"`
	HourlyWage  string       `json:"hourly_wage"`
	WorkDays    []WorkDayDTO `json:"work_days"`
	StartDate   string       `json:"start_date"`
	EndDate     *string      `json:"end_date,omitempty"`
	PaymentDay  int          `json:"payment_day"`
	Active      bool         `json:"active"`
	CreatedAt   string       `json:"created_at,omitempty"`
	UpdatedAt   string       `json:"updated_at,omitempty"`
}

// CreateContractRequest is the request to create a contract.
type CreateContractRequest struct {
	WorkerID    string       `json:"worker_id"`
	WorkplaceID string       `json:"workplace_id"`
	HourlyWage  string       `json:"hourly_wage"`
	WorkDays    []WorkDayDTO `json:"work_days"`
	StartDate   string       `json:"start_date"`
	EndDate     *string      `json:"end_date,omitempty"`
	PaymentDay  int          `json:"payment_day"`
}

// AmendContractRequest carries the amendable fields; nil means unchanged.
type AmendContractRequest struct {
	HourlyWage *string      `json:"hourly_wage,omitempty"`
	WorkDays   []WorkDayDTO `json:"work_days,omitempty"`
	EndDate    *string      `json:"end_date,omitempty"`
	PaymentDay *int         `json:"payment_day,omitempty"`
}

// TerminateContractRequest ends a contract on the given date.
type TerminateContractRequest struct {
	Date string `json:"date"`
}

// =============================================================================
// SHIFTS
// =============================================================================

// ShiftDTO represents a shift in API responses.
type ShiftDTO struct {
	ID              string `json:"id"`
	ContractID      string `json:"contract_id"`
	WorkDate        string `json:"work_date"`
	Start           string `json:"start"`
	End             string `json:"end"`
	Status          string `json:"status"`
	CrossesMidnight bool   `json:"crosses_midnight"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// AddShiftRequest adds a one-off shift outside the weekly pattern.
type AddShiftRequest struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// GenerateShiftsRequest targets a billing month for on-demand generation.
type GenerateShiftsRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// HorizonReportDTO summarizes one generation batch.
type HorizonReportDTO struct {
	TargetYear  int      `json:"target_year"`
	TargetMonth int      `json:"target_month"`
	Contracts   int      `json:"contracts"`
	Created     int      `json:"created"`
	Skipped     int      `json:"skipped"`
	Failed      int      `json:"failed"`
	Errors      []string `json:"errors,omitempty"`
}

// =============================================================================
// CORRECTIONS
// =============================================================================

// CorrectionDTO represents a correction request in API responses.
type CorrectionDTO struct {
	ID            string  `json:"id"`
	ShiftID       string  `json:"shift_id"`
	RequestedBy   string  `json:"requested_by"`
	RequestedRole string  `json:"requested_role"`
	ProposedDate  string  `json:"proposed_date"`
	ProposedStart string  `json:"proposed_start"`
	ProposedEnd   string  `json:"proposed_end"`
	Reason        string  `json:"reason,omitempty"`
	Status        string  `json:"status"`
	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	ReviewComment string  `json:"review_comment,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// ProposeCorrectionRequest opens a correction on a shift.
type ProposeCorrectionRequest struct {
	ActorID   string `json:"actor_id"`
	ActorRole string `json:"actor_role"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Reason    string `json:"reason,omitempty"`
}

// ResolveCorrectionRequest approves or rejects a pending correction.
type ResolveCorrectionRequest struct {
	ActorID   string `json:"actor_id"`
	ActorRole string `json:"actor_role"`
	Comment   string `json:"comment,omitempty"`
}

// =============================================================================
// SALARIES & PAYMENTS
// =============================================================================

// SalaryDTO is the itemized monthly statement.
type SalaryDTO struct {
	ID         string `json:"id"`
	ContractID string `json:"contract_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`

	TotalHours string `json:"total_hours"`

	BasePay     string `json:"base_pay"`
	OvertimePay string `json:"overtime_pay"`
	NightPay    string `json:"night_pay"`
	HolidayPay  string `json:"holiday_pay"`
	GrossPay    string `json:"gross_pay"`

	NationalPension     string `json:"national_pension"`
	HealthInsurance     string `json:"health_insurance"`
	LongTermCare        string `json:"long_term_care"`
	EmploymentInsurance string `json:"employment_insurance"`
	IncomeTax           string `json:"income_tax"`
	LocalIncomeTax      string `json:"local_income_tax"`
	TotalDeduction      string `json:"total_deduction"`

	NetPay string `json:"net_pay"`

	PaymentDueDate string `json:"payment_due_date"`
	ComputedAt     string `json:"computed_at,omitempty"`
}

// ComputeSalaryRequest targets a billing month.
type ComputeSalaryRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PaymentDTO represents a settlement record.
type PaymentDTO struct {
	ID             string  `json:"id"`
	SalaryID       string  `json:"salary_id"`
	Method         string  `json:"method"`
	Status         string  `json:"status"`
	CompletedAt    *string `json:"completed_at,omitempty"`
	TransactionRef string  `json:"transaction_ref,omitempty"`
	FailureReason  string  `json:"failure_reason,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
}

// CompletePaymentRequest settles a pending payment.
type CompletePaymentRequest struct {
	TransactionRef string `json:"transaction_ref"`
}

// FailPaymentRequest marks a pending payment failed.
type FailPaymentRequest struct {
	Reason string `json:"reason"`
}

// SweepReportDTO summarizes one expiry sweep.
type SweepReportDTO struct {
	AsOf     string   `json:"as_of"`
	Eligible int      `json:"eligible"`
	Failed   int      `json:"failed"`
	Errored  int      `json:"errored"`
	Errors   []string `json:"errors,omitempty"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// HolidayDTO represents a public holiday.
type HolidayDTO struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Remarks string `json:"remarks,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the error body returned for non-2xx statuses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// DOMAIN -> DTO CONVERTERS
// =============================================================================

func toWorkplaceDTO(w *contract.Workplace) WorkplaceDTO {
	return WorkplaceDTO{
		ID:                     w.ID,
		Name:                   w.Name,
		EmployerID:             w.EmployerID,
		FewerThanFiveEmployees: w.FewerThanFiveEmployees,
		PaidWeekends:           w.PaidWeekends,
		CreatedAt:              w.CreatedAt.Format(time.RFC3339),
	}
}

func toContractDTO(c *contract.Contract) ContractDTO {
	workDays := make([]WorkDayDTO, 0, len(c.WorkDays))
	for _, wd := range c.WorkDays {
		workDays = append(workDays, WorkDayDTO{
			Weekday: wd.Weekday, Start: wd.Start.String(), End: wd.End.String(),
		})
	}
	dto := ContractDTO{
		ID:          c.ID,
		WorkerID:    c.WorkerID,
		WorkplaceID: c.WorkplaceID,
		HourlyWage:  c.HourlyWage.String(),
		WorkDays:    workDays,
		StartDate:   c.StartDate.String(),
		PaymentDay:  c.PaymentDay,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
	if c.EndDate != nil {
		dto.EndDate = strPtr(c.EndDate.String())
	}
	return dto
}

func toShiftDTO(s *shift.Shift) ShiftDTO {
	return ShiftDTO{
		ID:              s.ID,
		ContractID:      s.ContractID,
		WorkDate:        s.WorkDate.String(),
		Start:           s.Start.String(),
		End:             s.End.String(),
		Status:          string(s.Status),
		CrossesMidnight: s.CrossesMidnight(),
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       s.UpdatedAt.Format(time.RFC3339),
	}
}

func toCorrectionDTO(r *shift.CorrectionRequest) CorrectionDTO {
	dto := CorrectionDTO{
		ID:            r.ID,
		ShiftID:       r.ShiftID,
		RequestedBy:   r.RequestedBy.ID,
		RequestedRole: string(r.RequestedBy.Role),
		ProposedDate:  r.ProposedDate.String(),
		ProposedStart: r.ProposedStart.String(),
		ProposedEnd:   r.ProposedEnd.String(),
		Reason:        r.Reason,
		Status:        string(r.Status),
		ReviewComment: r.ReviewComment,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	if r.ReviewedBy != nil {
		dto.ReviewedBy = strPtr(r.ReviewedBy.ID)
	}
	if r.ReviewedAt != nil {
		dto.ReviewedAt = strPtr(r.ReviewedAt.Format(time.RFC3339))
	}
	return dto
}

func toSalaryDTO(s *wage.Salary) SalaryDTO {
	return SalaryDTO{
		ID:                  s.ID,
		ContractID:          s.ContractID,
		Year:                s.Year,
		Month:               int(s.Month),
		TotalHours:          s.TotalHours.String(),
		BasePay:             s.BasePay.String(),
		OvertimePay:         s.OvertimePay.String(),
		NightPay:            s.NightPay.String(),
		HolidayPay:          s.HolidayPay.String(),
		GrossPay:            s.GrossPay.String(),
		NationalPension:     s.NationalPension.String(),
		HealthInsurance:     s.HealthInsurance.String(),
		LongTermCare:        s.LongTermCare.String(),
		EmploymentInsurance: s.EmploymentInsurance.String(),
		IncomeTax:           s.IncomeTax.String(),
		LocalIncomeTax:      s.LocalIncomeTax.String(),
		TotalDeduction:      s.TotalDeduction.String(),
		NetPay:              s.NetPay.String(),
		PaymentDueDate:      s.PaymentDueDate.String(),
		ComputedAt:          s.ComputedAt.Format(time.RFC3339),
	}
}

func toPaymentDTO(p *payment.Payment) PaymentDTO {
	dto := PaymentDTO{
		ID:             p.ID,
		SalaryID:       p.SalaryID,
		Method:         string(p.Method),
		Status:         string(p.Status),
		TransactionRef: p.TransactionRef,
		FailureReason:  p.FailureReason,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
	if p.CompletedAt != nil {
		dto.CompletedAt = strPtr(p.CompletedAt.Format(time.RFC3339))
	}
	return dto
}

func toHolidayDTO(h calendar.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:      h.ID,
		Date:    h.Date.String(),
		Name:    h.Name,
		Type:    h.Type,
		Remarks: h.Remarks,
	}
}

func toHorizonReportDTO(r shift.HorizonReport) HorizonReportDTO {
	return HorizonReportDTO{
		TargetYear:  r.TargetYear,
		TargetMonth: int(r.TargetMonth),
		Contracts:   r.Contracts,
		Created:     r.Created,
		Skipped:     r.Skipped,
		Failed:      r.Failed,
		Errors:      errorStrings(r.Errors),
	}
}

func toSweepReportDTO(r payment.SweepReport) SweepReportDTO {
	return SweepReportDTO{
		AsOf:     r.AsOf.String(),
		Eligible: r.Eligible,
		Failed:   r.Failed,
		Errored:  r.Errored,
		Errors:   errorStrings(r.Errors),
	}
}

func errorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

func strPtr(s string) *string { return &s }
