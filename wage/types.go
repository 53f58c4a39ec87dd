package wage

import (
	"context"
	"time"

	"github.com/warp/wage-engine/labor"
	"github.com/warp/wage-engine/shift"
)

// =============================================================================
// SALARY - Itemized monthly wage statement
// =============================================================================

// Salary is the computed statement for one (contract, year, month).
// Invariants: GrossPay = BasePay + OvertimePay + NightPay + HolidayPay,
// NetPay = GrossPay - TotalDeduction, both within 0.01.
type Salary struct {
	ID         string
	ContractID string
	Year       int
	Month      time.Month

	TotalHours labor.Money // decimal hours, reuses the fixed-point carrier

	BasePay     labor.Money
	OvertimePay labor.Money
	NightPay    labor.Money
	HolidayPay  labor.Money
	GrossPay    labor.Money

	NationalPension     labor.Money
	HealthInsurance     labor.Money
	LongTermCare        labor.Money
	EmploymentInsurance labor.Money
	IncomeTax           labor.Money
	LocalIncomeTax      labor.Money
	TotalDeduction      labor.Money

	NetPay labor.Money

	PaymentDueDate labor.Date

	ComputedAt time.Time
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

type Store interface {
	// ListPayableShifts returns the month's SCHEDULED and COMPLETED shifts
	// for a contract. DELETED shifts never surface here.
	ListPayableShifts(ctx context.Context, contractID string, year int, month time.Month) ([]shift.Shift, error)

	// ReplaceSalary swaps any prior statement for the same (contract,
	// year, month) with this one and (re)creates its pending settlement
	// record, all in one transaction.
	ReplaceSalary(ctx context.Context, s *Salary) error

	GetSalary(ctx context.Context, contractID string, year int, month time.Month) (*Salary, error)
	GetSalaryByID(ctx context.Context, id string) (*Salary, error)
}

// HolidayChecker is the slice of the calendar the calculator needs.
type HolidayChecker interface {
	IsHoliday(ctx context.Context, date labor.Date) (bool, error)
}
