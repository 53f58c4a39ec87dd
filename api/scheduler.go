/*
scheduler.go - Periodic batch scheduler

PURPOSE:
  Runs the engine's three standing batch jobs on cron expressions:
  - Horizon extension: on the 15th of every month, generate shifts for
    the month two calendar months ahead.
  - Payment expiry sweep: daily at midnight, fail every payment still
    pending past its due date.
  - Token purge: daily at midnight, delete expired session tokens.

DESIGN:
  - Built on robfig/cron with standard 5-field expressions.
  - Each job is independent; a failing job logs and the others still run.
  - Jobs log a per-run summary line with duration for audits; the batch
    services additionally persist run records.
  - Manual triggering stays available via the admin endpoints, which call
    the same service methods.

SCHEDULES:
  "0 0 15 * *"  horizon extension (00:00 on the 15th)
  "0 0 * * *"   payment sweep (daily 00:00)
  "0 0 * * *"   token purge (daily 00:00)

USAGE:
  scheduler, err := NewScheduler(store, generator, payments)
  if err != nil { ... }
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - shift/generator.go: ExtendHorizon
  - payment/service.go: SweepExpired
  - store/sqlite/sqlite.go: PurgeExpiredTokens
*/
package api

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/warp/wage-engine/labor"
	"github.com/warp/wage-engine/payment"
	"github.com/warp/wage-engine/shift"
	"github.com/warp/wage-engine/store/sqlite"
)

// Cron expressions for the standing jobs.
const (
	horizonSchedule = "0 0 15 * *"
	sweepSchedule   = "0 0 * * *"
	purgeSchedule   = "0 0 * * *"
)

// Scheduler owns the cron runner and the three standing jobs.
type Scheduler struct {
	Store     *sqlite.Store
	Generator *shift.Generator
	Payments  *payment.Service

	cron *cron.Cron
}

// NewScheduler registers the standing jobs. The returned scheduler is
// not running until Start is called.
func NewScheduler(store *sqlite.Store, gen *shift.Generator, pay *payment.Service) (*Scheduler, error) {
	s := &Scheduler{
		Store:     store,
		Generator: gen,
		Payments:  pay,
		cron:      cron.New(),
	}

	if _, err := s.cron.AddFunc(horizonSchedule, s.runHorizon); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(sweepSchedule, s.runSweep); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(purgeSchedule, s.runTokenPurge); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("[Scheduler] Started: horizon %q, sweep %q, token purge %q",
		horizonSchedule, sweepSchedule, purgeSchedule)
}

// Stop stops the scheduler, waiting for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[Scheduler] Stopped")
}

// runHorizon generates shifts for the month two months out. Per-contract
// failures are already isolated inside GenerateAll; this just logs the
// tally.
func (s *Scheduler) runHorizon() {
	start := time.Now()
	report := s.Generator.ExtendHorizon(context.Background(), start)
	log.Printf("[Scheduler] Horizon %d-%02d: %d contracts, %d created, %d skipped, %d failed (%v)",
		report.TargetYear, int(report.TargetMonth), report.Contracts,
		report.Created, report.Skipped, report.Failed, time.Since(start))
}

func (s *Scheduler) runSweep() {
	start := time.Now()
	report := s.Payments.SweepExpired(context.Background(), labor.Today())
	log.Printf("[Scheduler] Sweep as of %s: %d eligible, %d failed, %d errored (%v)",
		report.AsOf, report.Eligible, report.Failed, report.Errored, time.Since(start))
}

func (s *Scheduler) runTokenPurge() {
	start := time.Now()
	purged, err := s.Store.PurgeExpiredTokens(context.Background(), start)
	if err != nil {
		log.Printf("[Scheduler] Token purge failed: %v", err)
		return
	}
	log.Printf("[Scheduler] Token purge: %d removed (%v)", purged, time.Since(start))
}
