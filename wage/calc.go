/*
calc.go - Monthly salary computation

PURPOSE:
  Aggregates a contract's shifts for a billing month, applies the pay
  differential rules against the holiday calendar, deducts the statutory
  percentages, and persists a fully itemized statement - replacing any
  prior statement for the same month.

PARTITION RULES (non-exclusive, additively combined):
  Base:     wage x hours, up to the daily threshold
  Overtime: hours beyond the threshold x wage x overtime multiplier
  Night:    overlap with 22:00-06:00 x wage x night premium (additive)
  Holiday:  full shift hours x wage x holiday premium, when the work date
            is a calendar holiday or (workplace opt-in) a weekend

  A workplace with fewer than five employees is exempt from all three
  differentials: every hour pays base rate.

MIDNIGHT CROSSING:
  A shift wrapping past 24:00 is unfolded onto a two-day minute axis so
  the night-window overlap splits correctly across the boundary.

REPLACE SEMANTICS:
  Recomputation is idempotent. The store swaps the prior statement and
  re-creates the pending settlement record in one transaction, so a
  correction approved after the first computation is fully reflected by
  simply computing again.

SEE ALSO:
  - rates.go: Multipliers, thresholds, deduction percentages
  - store/sqlite: ReplaceSalary transaction
*/
package wage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/wage-engine/contract"
	"github.com/warp/wage-engine/labor"
	"github.com/warp/wage-engine/notify"
	"github.com/warp/wage-engine/shift"
)

// =============================================================================
// CALCULATOR
// =============================================================================

type Calculator struct {
	Store     Store
	Contracts contract.Store
	Calendar  HolidayChecker
	Rates     Rates
	Notifier  notify.Notifier
}

func NewCalculator(store Store, contracts contract.Store, calendar HolidayChecker, rates Rates, notifier notify.Notifier) *Calculator {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Calculator{Store: store, Contracts: contracts, Calendar: calendar, Rates: rates, Notifier: notifier}
}

// ComputeSalary computes and persists the statement for one contract and
// billing month, replacing any prior statement for that month. A month
// with no payable shifts yields a zero-valued statement, not an error.
func (c *Calculator) ComputeSalary(ctx context.Context, contractID string, year int, month time.Month) (*Salary, error) {
	ct, err := c.Contracts.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	wp, err := c.Contracts.GetWorkplace(ctx, ct.WorkplaceID)
	if err != nil {
		return nil, err
	}

	shifts, err := c.Store.ListPayableShifts(ctx, contractID, year, month)
	if err != nil {
		return nil, fmt.Errorf("loading shifts for %d-%02d: %w", year, month, err)
	}

	totalHours := decimal.Zero
	base := decimal.Zero
	overtime := decimal.Zero
	night := decimal.Zero
	holiday := decimal.Zero

	for i := range shifts {
		isHoliday, err := c.Calendar.IsHoliday(ctx, shifts[i].WorkDate)
		if err != nil {
			return nil, err
		}
		b := PartitionShift(&shifts[i], ct.HourlyWage, isHoliday, wp, c.Rates)
		totalHours = totalHours.Add(b.Hours)
		base = base.Add(b.Base)
		overtime = overtime.Add(b.Overtime)
		night = night.Add(b.Night)
		holiday = holiday.Add(b.Holiday)
	}

	// Round each component once, at the end; gross is the sum of the
	// rounded components so additivity holds exactly.
	basePay := labor.NewMoneyFromDecimal(base.Round(2))
	overtimePay := labor.NewMoneyFromDecimal(overtime.Round(2))
	nightPay := labor.NewMoneyFromDecimal(night.Round(2))
	holidayPay := labor.NewMoneyFromDecimal(holiday.Round(2))
	gross := basePay.Add(overtimePay).Add(nightPay).Add(holidayPay)

	d := c.Rates.Deductions
	pension := gross.MulDecimal(d.NationalPension).Round2()
	health := gross.MulDecimal(d.HealthInsurance).Round2()
	care := gross.MulDecimal(d.LongTermCare).Round2()
	employment := gross.MulDecimal(d.EmploymentInsurance).Round2()
	incomeTax := gross.MulDecimal(d.IncomeTax).Round2()
	localTax := incomeTax.MulDecimal(d.LocalIncomeTaxOfIncomeTax).Round2()
	totalDeduction := pension.Add(health).Add(care).Add(employment).Add(incomeTax).Add(localTax)

	s := &Salary{
		ID:         labor.NewID(),
		ContractID: contractID,
		Year:       year,
		Month:      month,

		TotalHours: labor.NewMoneyFromDecimal(totalHours.Round(2)),

		BasePay:     basePay,
		OvertimePay: overtimePay,
		NightPay:    nightPay,
		HolidayPay:  holidayPay,
		GrossPay:    gross,

		NationalPension:     pension,
		HealthInsurance:     health,
		LongTermCare:        care,
		EmploymentInsurance: employment,
		IncomeTax:           incomeTax,
		LocalIncomeTax:      localTax,
		TotalDeduction:      totalDeduction,

		NetPay: gross.Sub(totalDeduction),

		PaymentDueDate: DueDate(ct.PaymentDay, year, month),
		ComputedAt:     time.Now().UTC(),
	}

	if err := c.Store.ReplaceSalary(ctx, s); err != nil {
		return nil, err
	}

	c.Notifier.Notify(ctx, notify.NewEvent(notify.EventSalaryComputed, map[string]string{
		"salaryId":   s.ID,
		"contractId": contractID,
		"period":     fmt.Sprintf("%d-%02d", year, month),
		"netPay":     s.NetPay.String(),
		"dueDate":    s.PaymentDueDate.String(),
	}))

	return s, nil
}

// DueDate places the contract's payment day in the month after the
// billing month, clamped to that month's length.
func DueDate(paymentDay, year int, month time.Month) labor.Date {
	next := labor.FirstOfMonth(year, month).AddMonths(1)
	return labor.ClampDayToMonth(next.Year(), next.Month(), paymentDay)
}

// =============================================================================
// SHIFT PARTITION - Pure per-shift pay breakdown
// =============================================================================

// Breakdown is one shift's contribution to the monthly components. All
// values are exact decimals; rounding happens once per statement.
type Breakdown struct {
	Hours    decimal.Decimal
	Base     decimal.Decimal
	Overtime decimal.Decimal
	Night    decimal.Decimal
	Holiday  decimal.Decimal
}

// PartitionShift splits one shift's worked hours into pay components.
func PartitionShift(s *shift.Shift, hourlyWage labor.Money, isHoliday bool, wp *contract.Workplace, rates Rates) Breakdown {
	minutes := s.DurationMinutes()
	hours := labor.HoursFromMinutes(minutes)
	wage := hourlyWage.Value

	b := Breakdown{Hours: hours}

	if wp.FewerThanFiveEmployees {
		// Exempt workplace: every hour at base rate, no differentials.
		b.Base = wage.Mul(hours)
		return b
	}

	baseHours := hours
	overtimeHours := decimal.Zero
	if hours.GreaterThan(rates.DailyBaseHours) {
		baseHours = rates.DailyBaseHours
		overtimeHours = hours.Sub(rates.DailyBaseHours)
	}
	b.Base = wage.Mul(baseHours)
	b.Overtime = wage.Mul(overtimeHours).Mul(rates.OvertimeMultiplier)

	nightHours := labor.HoursFromMinutes(nightOverlapMinutes(s.Start, s.End, rates))
	b.Night = wage.Mul(nightHours).Mul(rates.NightPremium)

	if isHoliday || (wp.PaidWeekends && s.WorkDate.IsWeekend()) {
		b.Holiday = wage.Mul(hours).Mul(rates.HolidayPremium)
	}

	return b
}

// nightOverlapMinutes computes the shift's overlap with the night window.
// The shift is unfolded onto a 0..2880 minute axis (two days) so a span
// crossing midnight overlaps the windows on both sides of the boundary.
func nightOverlapMinutes(start, end labor.TimeOfDay, rates Rates) int {
	from := start.Minutes
	to := end.Minutes
	if to <= from {
		to += labor.MinutesPerDay
	}

	// Night windows on the two-day axis: 00:00-06:00 and 22:00-06:00(+1)
	// of day one, then 22:00(+1) onward for spans reaching that far.
	windows := [][2]int{
		{0, rates.NightEnd.Minutes},
		{rates.NightStart.Minutes, labor.MinutesPerDay + rates.NightEnd.Minutes},
		{labor.MinutesPerDay + rates.NightStart.Minutes, 2 * labor.MinutesPerDay},
	}

	total := 0
	for _, w := range windows {
		lo := max(from, w[0])
		hi := min(to, w[1])
		if hi > lo {
			total += hi - lo
		}
	}
	return total
}
