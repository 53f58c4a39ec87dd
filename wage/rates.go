/*
rates.go - Pay differential and deduction configuration

PURPOSE:
  The multipliers, thresholds, and statutory deduction percentages the
  calculator applies are configuration, not hard-coded fact. Defaults
  follow Korean labor-law conventions; deployments override them.

EXEMPTION:
  A workplace flagged FewerThanFiveEmployees is exempt from the overtime,
  night, and holiday differentials - every worked hour pays base rate.
  The calculator branches on that flag before applying any premium.

SEE ALSO:
  - calc.go: The only consumer
*/
package wage

import (
	"github.com/shopspring/decimal"

	"github.com/warp/wage-engine/labor"
)

// =============================================================================
// RATES
// =============================================================================

// Rates configures the wage calculator.
type Rates struct {
	// DailyBaseHours is the statutory threshold: hours beyond it within a
	// single shift pay the overtime rate instead of base.
	DailyBaseHours decimal.Decimal

	// OvertimeMultiplier applies to hours beyond the threshold (1.5 means
	// those hours pay 150% of the hourly wage).
	OvertimeMultiplier decimal.Decimal

	// NightPremium is the ADDITIVE premium for the 22:00-06:00 overlap
	// (0.5 adds 50% of the wage on top of base/overtime already earned).
	NightPremium decimal.Decimal

	// HolidayPremium is the additive premium for holiday (and, where the
	// workplace opts in, weekend) work.
	HolidayPremium decimal.Decimal

	// Night window bounds.
	NightStart labor.TimeOfDay // 22:00
	NightEnd   labor.TimeOfDay // 06:00

	Deductions DeductionRates
}

// DeductionRates are the statutory percentage-of-gross deduction rules:
// the four major insurances plus income tax. Local income tax is derived
// as a fraction of income tax, per statute.
type DeductionRates struct {
	NationalPension           decimal.Decimal
	HealthInsurance           decimal.Decimal
	LongTermCare              decimal.Decimal
	EmploymentInsurance       decimal.Decimal
	IncomeTax                 decimal.Decimal
	LocalIncomeTaxOfIncomeTax decimal.Decimal
}

// DefaultRates returns the conventional configuration: 8h daily base,
// 1.5x overtime, 0.5x night and holiday premiums, 22:00-06:00 night
// window, and the employee-side statutory deduction percentages.
func DefaultRates() Rates {
	return Rates{
		DailyBaseHours:     decimal.NewFromInt(8),
		OvertimeMultiplier: decimal.NewFromFloat(1.5),
		NightPremium:       decimal.NewFromFloat(0.5),
		HolidayPremium:     decimal.NewFromFloat(0.5),
		NightStart:         labor.NewTimeOfDay(22, 0),
		NightEnd:           labor.NewTimeOfDay(6, 0),
		Deductions: DeductionRates{
			NationalPension:           decimal.NewFromFloat(0.045),
			HealthInsurance:           decimal.NewFromFloat(0.03545),
			LongTermCare:              decimal.NewFromFloat(0.004591),
			EmploymentInsurance:       decimal.NewFromFloat(0.009),
			IncomeTax:                 decimal.NewFromFloat(0.03),
			LocalIncomeTaxOfIncomeTax: decimal.NewFromFloat(0.1),
		},
	}
}
