/*
generator.go - Recurring shift projection

PURPOSE:
  Projects each contract's weekly work pattern into concrete dated shift
  records for a target month. The periodic driver always targets the
  month two calendar months ahead of the run date, so the system holds a
  contiguous two-month lookahead for every active contract.

IDEMPOTENCY:
  A shift is only created when no record exists for (contract, date).
  Re-running a month is safe and creates nothing new; the store also
  carries a UNIQUE(contract_id, work_date) index as a backstop.

BATCH ISOLATION:
  One contract's failure (malformed pattern, store error) never aborts
  the batch. Outcomes are tallied per contract, logged, and persisted as
  a generation run record for audit.

SEE ALSO:
  - contract/types.go: WorkDay pattern and validity window
  - api/scheduler.go: Monthly trigger (day 15)
*/
package shift

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/warp/wage-engine/contract"
	"github.com/warp/wage-engine/labor"
)

// =============================================================================
// GENERATOR
// =============================================================================

type Generator struct {
	Shifts    Store
	Contracts contract.Store
}

func NewGenerator(shifts Store, contracts contract.Store) *Generator {
	return &Generator{Shifts: shifts, Contracts: contracts}
}

// GenerateResult is the outcome of one contract/month projection.
type GenerateResult struct {
	ContractID string
	Year       int
	Month      time.Month
	Created    int
	Skipped    int // dates that already had a shift
}

// GenerateMonth projects one contract's pattern into the target month.
// Dates outside the contract validity window are ignored; dates that
// already have a shift are skipped. Safe to re-run.
func (g *Generator) GenerateMonth(ctx context.Context, c *contract.Contract, year int, month time.Month) (GenerateResult, error) {
	result := GenerateResult{ContractID: c.ID, Year: year, Month: month}

	if !c.Active {
		return result, nil
	}
	if len(c.WorkDays) == 0 {
		return result, &labor.ValidationError{Field: "workDays", Message: "contract has no weekly pattern"}
	}

	for day := 1; day <= labor.DaysInMonth(year, month); day++ {
		date := labor.NewDate(year, month, day)

		wd, ok := c.WorkDayOn(date.ISOWeekday())
		if !ok {
			continue
		}
		if !c.Covers(date) {
			continue
		}

		exists, err := g.Shifts.ShiftExists(ctx, c.ID, date)
		if err != nil {
			return result, fmt.Errorf("checking existing shift for %s: %w", date, err)
		}
		if exists {
			result.Skipped++
			continue
		}

		now := time.Now().UTC()
		s := &Shift{
			ID:         labor.NewID(),
			ContractID: c.ID,
			WorkDate:   date,
			Start:      wd.Start,
			End:        wd.End,
			Status:     StatusScheduled,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := g.Shifts.SaveShift(ctx, s); err != nil {
			return result, fmt.Errorf("saving shift for %s: %w", date, err)
		}
		result.Created++
	}

	return result, nil
}

// AddManual records an employer-entered shift outside the recurring
// pattern. The date must fall inside the contract window and must not
// collide with an existing shift.
func (g *Generator) AddManual(ctx context.Context, contractID string, date labor.Date, start, end labor.TimeOfDay) (*Shift, error) {
	c, err := g.Contracts.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !c.Covers(date) {
		return nil, &labor.ValidationError{Field: "workDate", Message: "outside contract validity window"}
	}
	if start.Equal(end) {
		return nil, &labor.ValidationError{Field: "end", Message: "start and end must differ"}
	}
	exists, err := g.Shifts.ShiftExists(ctx, contractID, date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &labor.ValidationError{Field: "workDate", Message: "shift already exists for this date"}
	}

	now := time.Now().UTC()
	s := &Shift{
		ID:         labor.NewID(),
		ContractID: contractID,
		WorkDate:   date,
		Start:      start,
		End:        end,
		Status:     StatusScheduled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := g.Shifts.SaveShift(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// MarkCompleted transitions a scheduled shift to COMPLETED.
func (g *Generator) MarkCompleted(ctx context.Context, shiftID string) error {
	s, err := g.Shifts.GetShift(ctx, shiftID)
	if err != nil {
		return err
	}
	if s.Status != StatusScheduled {
		return &labor.InvalidStateError{Entity: "shift", ID: shiftID, Current: string(s.Status), Attempt: "complete"}
	}
	return g.Shifts.UpdateShiftStatus(ctx, shiftID, StatusCompleted)
}

// Remove soft-deletes a shift. The row stays for wage history and audit.
func (g *Generator) Remove(ctx context.Context, shiftID string) error {
	s, err := g.Shifts.GetShift(ctx, shiftID)
	if err != nil {
		return err
	}
	if s.Status == StatusDeleted {
		return &labor.InvalidStateError{Entity: "shift", ID: shiftID, Current: "DELETED", Attempt: "delete"}
	}
	return g.Shifts.UpdateShiftStatus(ctx, shiftID, StatusDeleted)
}

// =============================================================================
// HORIZON EXTENSION - Batch run across all active contracts
// =============================================================================

// GenerationRun is the persisted audit record of one horizon run.
type GenerationRun struct {
	ID          string
	TargetYear  int
	TargetMonth time.Month
	Contracts   int
	Created     int
	Skipped     int
	Failed      int
	StartedAt   time.Time
	CompletedAt time.Time
}

// HorizonReport summarizes one batch run for logs and metrics.
type HorizonReport struct {
	TargetYear  int
	TargetMonth time.Month
	Contracts   int
	Created     int
	Skipped     int
	Failed      int
	Errors      []error
}

// ExtendHorizon generates the month two calendar months after now for
// every active contract. Per-contract failures are tallied, not fatal.
// The target is anchored to the first of the run month: Dec 31 + two
// months would normalize past February, so naive date addition picks
// the wrong month at the end of short-month boundaries.
func (g *Generator) ExtendHorizon(ctx context.Context, now time.Time) HorizonReport {
	target := labor.FirstOfMonth(now.Year(), now.Month()).AddMonths(2)
	return g.GenerateAll(ctx, target.Year(), target.Month())
}

// GenerateAll runs GenerateMonth for every active contract against one
// explicit target month.
func (g *Generator) GenerateAll(ctx context.Context, year int, month time.Month) HorizonReport {
	report := HorizonReport{TargetYear: year, TargetMonth: month}
	startedAt := time.Now().UTC()

	contracts, err := g.Contracts.ListActiveContracts(ctx)
	if err != nil {
		log.Printf("[Generator] Listing active contracts failed: %v", err)
		report.Errors = append(report.Errors, err)
		return report
	}
	report.Contracts = len(contracts)

	for i := range contracts {
		c := &contracts[i]
		result, err := g.GenerateMonth(ctx, c, year, month)
		report.Created += result.Created
		report.Skipped += result.Skipped
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Errorf("contract %s: %w", c.ID, err))
			log.Printf("[Generator] Contract %s failed for %d-%02d: %v", c.ID, year, month, err)
			continue
		}
	}

	run := GenerationRun{
		ID:          labor.NewID(),
		TargetYear:  year,
		TargetMonth: month,
		Contracts:   report.Contracts,
		Created:     report.Created,
		Skipped:     report.Skipped,
		Failed:      report.Failed,
		StartedAt:   startedAt,
		CompletedAt: time.Now().UTC(),
	}
	if err := g.Shifts.SaveGenerationRun(ctx, run); err != nil {
		log.Printf("[Generator] Saving run record failed: %v", err)
	}

	log.Printf("[Generator] %d-%02d: %d contracts, %d created, %d skipped, %d failed (%.2fs)",
		year, month, report.Contracts, report.Created, report.Skipped, report.Failed,
		time.Since(startedAt).Seconds())

	return report
}
