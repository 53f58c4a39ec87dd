package payment

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/warp/wage-engine/labor"
	"github.com/warp/wage-engine/notify"
)

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	Store    Store
	Notifier notify.Notifier
}

func NewService(store Store, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Service{Store: store, Notifier: notifier}
}

// Complete settles a pending payment: status COMPLETED, completion time
// stamped, external transaction reference recorded. Terminal records
// yield an invalid-state error and stay unchanged.
func (s *Service) Complete(ctx context.Context, paymentID, transactionRef string) (*Payment, error) {
	if transactionRef == "" {
		return nil, &labor.ValidationError{Field: "transactionRef", Message: "required"}
	}

	if err := s.Store.MarkPaymentCompleted(ctx, paymentID, transactionRef, time.Now().UTC()); err != nil {
		return nil, err
	}
	p, err := s.Store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify(ctx, notify.NewEvent(notify.EventPaymentCompleted, map[string]string{
		"paymentId":      p.ID,
		"salaryId":       p.SalaryID,
		"transactionRef": transactionRef,
	}))
	return p, nil
}

// Fail marks a pending payment FAILED with a reason. Same terminality
// rules as Complete.
func (s *Service) Fail(ctx context.Context, paymentID, reason string) (*Payment, error) {
	if reason == "" {
		return nil, &labor.ValidationError{Field: "reason", Message: "required"}
	}

	if err := s.Store.MarkPaymentFailed(ctx, paymentID, reason); err != nil {
		return nil, err
	}
	p, err := s.Store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify(ctx, notify.NewEvent(notify.EventPaymentFailed, map[string]string{
		"paymentId": p.ID,
		"salaryId":  p.SalaryID,
		"reason":    reason,
	}))
	return p, nil
}

// =============================================================================
// EXPIRY SWEEP
// =============================================================================

// SweepReport summarizes one expiry sweep for logs and metrics.
type SweepReport struct {
	AsOf     labor.Date
	Eligible int
	Failed   int
	Errored  int
	Errors   []error
}

// SweepExpired fails every payment still PENDING whose salary's due date
// has passed as of the run date. Each record is processed independently;
// one failure never blocks the rest, and re-running is always safe - the
// next sweep simply re-evaluates whatever is still eligible.
func (s *Service) SweepExpired(ctx context.Context, asOf labor.Date) SweepReport {
	report := SweepReport{AsOf: asOf}
	startedAt := time.Now().UTC()

	overdue, err := s.Store.ListOverduePending(ctx, asOf)
	if err != nil {
		log.Printf("[PaymentSweep] Listing overdue payments failed: %v", err)
		report.Errors = append(report.Errors, err)
		return report
	}
	report.Eligible = len(overdue)

	for _, o := range overdue {
		reason := fmt.Sprintf("payment due date %s passed without settlement", o.DueDate)
		if _, err := s.Fail(ctx, o.Payment.ID, reason); err != nil {
			report.Errored++
			report.Errors = append(report.Errors, fmt.Errorf("payment %s: %w", o.Payment.ID, err))
			log.Printf("[PaymentSweep] Payment %s failed to expire: %v", o.Payment.ID, err)
			continue
		}
		report.Failed++
	}

	run := SweepRun{
		ID:          labor.NewID(),
		AsOf:        asOf,
		Eligible:    report.Eligible,
		Failed:      report.Failed,
		Errored:     report.Errored,
		StartedAt:   startedAt,
		CompletedAt: time.Now().UTC(),
	}
	if err := s.Store.SaveSweepRun(ctx, run); err != nil {
		log.Printf("[PaymentSweep] Saving run record failed: %v", err)
	}

	log.Printf("[PaymentSweep] As of %s: %d eligible, %d expired, %d errored (%.2fs)",
		asOf, report.Eligible, report.Failed, report.Errored, time.Since(startedAt).Seconds())

	return report
}
