package calendar

import (
	"context"
	"log"
	"time"

	"github.com/warp/wage-engine/labor"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

type Store interface {
	IsHoliday(ctx context.Context, date labor.Date) (bool, error)
	ListHolidaysYear(ctx context.Context, year int) ([]Holiday, error)
	ListHolidaysMonth(ctx context.Context, year int, month time.Month) ([]Holiday, error)

	// ReplaceHolidayYear swaps the year's full row set in one transaction:
	// delete-then-bulk-insert, commit or nothing.
	ReplaceHolidayYear(ctx context.Context, year int, holidays []Holiday) error
}

// =============================================================================
// SERVICE
// =============================================================================

// Service answers holiday lookups and drives the yearly refresh.
type Service struct {
	Store  Store
	Source Source
}

func NewService(store Store, source Source) *Service {
	return &Service{Store: store, Source: source}
}

// IsHoliday reports whether the date is in the holiday store. Weekday is
// irrelevant: a Saturday in the store is a holiday, a Monday too.
func (s *Service) IsHoliday(ctx context.Context, date labor.Date) (bool, error) {
	return s.Store.IsHoliday(ctx, date)
}

// HolidaysFor returns the year's holidays ordered by date.
func (s *Service) HolidaysFor(ctx context.Context, year int) ([]Holiday, error) {
	return s.Store.ListHolidaysYear(ctx, year)
}

// HolidaysForMonth returns one month's holidays ordered by date.
func (s *Service) HolidaysForMonth(ctx context.Context, year int, month time.Month) ([]Holiday, error) {
	return s.Store.ListHolidaysMonth(ctx, year, month)
}

// RefreshYear pulls the year from the source and replaces the stored set.
// Fetch and validation happen before any write; a source failure leaves
// the previous data untouched and surfaces an UpstreamError.
func (s *Service) RefreshYear(ctx context.Context, year int) error {
	holidays, err := s.Source.FetchYear(ctx, year)
	if err != nil {
		log.Printf("[Calendar] Refresh for %d failed, keeping existing data: %v", year, err)
		return err
	}

	if err := s.Store.ReplaceHolidayYear(ctx, year, holidays); err != nil {
		return err
	}

	log.Printf("[Calendar] Refreshed %d: %d holidays", year, len(holidays))
	return nil
}
