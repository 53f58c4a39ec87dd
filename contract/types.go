/*
Package contract defines employment contracts and workplaces.

PURPOSE:
  A Contract fixes a worker's hourly wage and recurring weekly schedule at
  a workplace. It is the single source from which dated shifts are
  projected and against which monthly salaries are computed.

KEY CONCEPTS:
  - WorkDay: one weekly pattern entry (weekday 1..7 plus start/end times)
  - Validity window: start date, optional end date; nothing is generated
    outside it
  - Soft termination: active=false + end date, never deletion - history
    stays intact for wage computation and audit

WORKPLACE SIZE RULE:
  Korean labor law exempts workplaces with fewer than five employees from
  overtime/night/holiday differentials. The flag lives on Workplace and
  the wage calculator branches on it before applying any premium.

SEE ALSO:
  - factory.go: Validated construction and amendments
  - shift/generator.go: Projects WorkDays into dated shifts
  - wage/calc.go: Consumes HourlyWage and the workplace flag
*/
package contract

import (
	"time"

	"github.com/warp/wage-engine/labor"
)

// =============================================================================
// WORKPLACE
// =============================================================================

// Workplace is the employer side of a contract.
type Workplace struct {
	ID         string
	Name       string
	EmployerID string

	// FewerThanFiveEmployees exempts the workplace from overtime, night,
	// and holiday pay differentials.
	FewerThanFiveEmployees bool

	// PaidWeekends extends the holiday premium to Saturday/Sunday work.
	PaidWeekends bool

	CreatedAt time.Time
}

// =============================================================================
// WEEKLY WORK PATTERN
// =============================================================================

// WorkDay is one entry of a contract's weekly pattern. Weekday uses ISO
// numbering: 1=Monday .. 7=Sunday.
type WorkDay struct {
	Weekday int
	Start   labor.TimeOfDay
	End     labor.TimeOfDay
}

// =============================================================================
// CONTRACT
// =============================================================================

type Contract struct {
	ID          string
	WorkerID    string
	WorkplaceID string

	HourlyWage labor.Money
	WorkDays   []WorkDay

	StartDate labor.Date
	EndDate   *labor.Date // nil = open-ended

	// PaymentDay is the day-of-month (1..31) wages fall due, clamped to
	// shorter months when the salary's due date is derived.
	PaymentDay int

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkDayOn returns the pattern entry for an ISO weekday, if configured.
func (c *Contract) WorkDayOn(weekday int) (WorkDay, bool) {
	for _, wd := range c.WorkDays {
		if wd.Weekday == weekday {
			return wd, true
		}
	}
	return WorkDay{}, false
}

// Covers reports whether a date falls inside the contract validity window.
func (c *Contract) Covers(date labor.Date) bool {
	if date.Before(c.StartDate) {
		return false
	}
	if c.EndDate != nil && date.After(*c.EndDate) {
		return false
	}
	return true
}

// Terminated reports whether the contract has been soft-terminated.
func (c *Contract) Terminated() bool { return !c.Active }
