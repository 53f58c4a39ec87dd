/*
Package calendar is the authoritative public-holiday calendar.

PURPOSE:
  Answers one question for the wage calculator - "is this date a public
  holiday?" - and keeps the yearly holiday set refreshed from an external
  source without ever corrupting what is already stored.

REFRESH SEMANTICS:
  Refresh is all-or-nothing per year. The source payload is fetched and
  validated in full first; only then is the year's row set replaced inside
  a single store transaction. A failed fetch, a malformed payload, or a
  partial page rejects the whole refresh and leaves the previous data
  untouched.

WEEKENDS:
  Weekend status is NOT derived from this store. labor.Date computes it
  from the weekday, and the wage calculator evaluates holiday and weekend
  premiums as separate, non-exclusive conditions.

SEE ALSO:
  - source.go: The external pull interface and implementations
  - service.go: IsHoliday / HolidaysFor / RefreshYear
  - wage/calc.go: The only premium-eligibility consumer
*/
package calendar

import (
	"time"

	"github.com/warp/wage-engine/labor"
)

// Holiday is one public-holiday record. Date is unique in the store.
type Holiday struct {
	ID      string
	Date    labor.Date
	Name    string
	Type    string // e.g. "public", "substitute", "anniversary"
	Remarks string

	CreatedAt time.Time
}
