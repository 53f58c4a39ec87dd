package contract

import (
	"context"
	"time"

	"github.com/warp/wage-engine/labor"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the persistence surface the contract package needs.
type Store interface {
	SaveContract(ctx context.Context, c *Contract) error
	GetContract(ctx context.Context, id string) (*Contract, error)
	ListActiveContracts(ctx context.Context) ([]Contract, error)
	SaveWorkplace(ctx context.Context, w *Workplace) error
	GetWorkplace(ctx context.Context, id string) (*Workplace, error)
}

// =============================================================================
// VALIDATED CONSTRUCTION
// =============================================================================

// New builds a fully-validated contract. All precondition checks happen
// here; downstream code may assume a stored contract is well-formed.
func New(workerID, workplaceID string, hourlyWage labor.Money, workDays []WorkDay, startDate labor.Date, endDate *labor.Date, paymentDay int) (*Contract, error) {
	if workerID == "" {
		return nil, &labor.ValidationError{Field: "workerId", Message: "required"}
	}
	if workplaceID == "" {
		return nil, &labor.ValidationError{Field: "workplaceId", Message: "required"}
	}
	if hourlyWage.IsNegative() {
		return nil, &labor.ValidationError{Field: "hourlyWage", Message: "must not be negative"}
	}
	if err := validateWorkDays(workDays); err != nil {
		return nil, err
	}
	if startDate.IsZero() {
		return nil, &labor.ValidationError{Field: "startDate", Message: "required"}
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, &labor.ValidationError{Field: "endDate", Message: "must not precede start date"}
	}
	if paymentDay < 1 || paymentDay > 31 {
		return nil, &labor.ValidationError{Field: "paymentDay", Message: "must be between 1 and 31"}
	}

	now := time.Now().UTC()
	return &Contract{
		ID:          labor.NewID(),
		WorkerID:    workerID,
		WorkplaceID: workplaceID,
		HourlyWage:  hourlyWage,
		WorkDays:    workDays,
		StartDate:   startDate,
		EndDate:     endDate,
		PaymentDay:  paymentDay,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func validateWorkDays(workDays []WorkDay) error {
	seen := make(map[int]bool, len(workDays))
	for _, wd := range workDays {
		if wd.Weekday < 1 || wd.Weekday > 7 {
			return &labor.ValidationError{Field: "workDays", Message: "weekday must be 1..7"}
		}
		if seen[wd.Weekday] {
			return &labor.ValidationError{Field: "workDays", Message: "duplicate weekday in pattern"}
		}
		seen[wd.Weekday] = true
		// Pattern entries stay within one day; overnight spans are only
		// representable on concrete shifts.
		if !wd.Start.Before(wd.End) {
			return &labor.ValidationError{Field: "workDays", Message: "start time must precede end time"}
		}
	}
	return nil
}

// =============================================================================
// AMENDMENTS
// =============================================================================

func (c *Contract) AmendWage(wage labor.Money) error {
	if wage.IsNegative() {
		return &labor.ValidationError{Field: "hourlyWage", Message: "must not be negative"}
	}
	c.HourlyWage = wage
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Contract) AmendWorkDays(workDays []WorkDay) error {
	if err := validateWorkDays(workDays); err != nil {
		return err
	}
	c.WorkDays = workDays
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Contract) AmendEndDate(endDate *labor.Date) error {
	if endDate != nil && endDate.Before(c.StartDate) {
		return &labor.ValidationError{Field: "endDate", Message: "must not precede start date"}
	}
	c.EndDate = endDate
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Contract) AmendPaymentDay(day int) error {
	if day < 1 || day > 31 {
		return &labor.ValidationError{Field: "paymentDay", Message: "must be between 1 and 31"}
	}
	c.PaymentDay = day
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Terminate soft-terminates the contract: active goes false and the end
// date is pulled to the termination date. Terminated contracts never
// generate new shifts; existing records stay for wage history.
func (c *Contract) Terminate(date labor.Date) error {
	if !c.Active {
		return &labor.InvalidStateError{Entity: "contract", ID: c.ID, Current: "terminated", Attempt: "terminate"}
	}
	if date.Before(c.StartDate) {
		return &labor.ValidationError{Field: "terminationDate", Message: "must not precede start date"}
	}
	c.Active = false
	d := date
	c.EndDate = &d
	c.UpdatedAt = time.Now().UTC()
	return nil
}
