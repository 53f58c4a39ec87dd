/*
Package notify carries domain events to an external notifier.

PURPOSE:
  The engine raises events - shift corrected, salary computed, payment
  completed or failed - with just enough payload (ids, amounts, dates)
  for a downstream notifier to render user-facing messages. Formatting
  and delivery live outside this module.

SEE ALSO:
  - shift/correction.go, wage/calc.go, payment/service.go: Emitters
*/
package notify

import (
	"context"
	"log"
	"time"
)

// Event types raised by the engine.
const (
	EventShiftCorrected   = "shift.corrected"
	EventSalaryComputed   = "salary.computed"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
)

type Event struct {
	Type       string
	OccurredAt time.Time
	Payload    map[string]string
}

func NewEvent(eventType string, payload map[string]string) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Notifier consumes domain events. Implementations must not block the
// emitting operation on delivery.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// LogNotifier is the default sink: events go to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event Event) {
	log.Printf("[Notify] %s %v", event.Type, event.Payload)
}

// Discard drops events. Used in tests that don't assert on notifications.
type Discard struct{}

func (Discard) Notify(context.Context, Event) {}
