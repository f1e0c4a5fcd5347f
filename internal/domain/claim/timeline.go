package claim

import (
	"fmt"
	"time"

	"github.com/paidup/paidup/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Timeline events
// ─────────────────────────────────────────────────────────────────────────────

// EventType classifies an entry in the claim's chronology.  Closed enum; the
// deadline scheduler and recommender switch exhaustively on these variants.
type EventType string

const (
	EventContract         EventType = "contract"
	EventServiceDelivered EventType = "service_delivered"
	EventInvoice          EventType = "invoice"
	EventPaymentDue       EventType = "payment_due"
	EventPartPayment      EventType = "part_payment"
	EventPaymentReminder  EventType = "payment_reminder"
	EventChaser           EventType = "chaser"
	EventPromiseToPay     EventType = "promise_to_pay"
	EventLBASent          EventType = "lba_sent"
	EventAcknowledgment   EventType = "acknowledgment"
	EventCommunication    EventType = "communication"
)

var validEventTypes = map[EventType]bool{
	EventContract:         true,
	EventServiceDelivered: true,
	EventInvoice:          true,
	EventPaymentDue:       true,
	EventPartPayment:      true,
	EventPaymentReminder:  true,
	EventChaser:           true,
	EventPromiseToPay:     true,
	EventLBASent:          true,
	EventAcknowledgment:   true,
	EventCommunication:    true,
}

// Valid reports whether t is one of the declared variants.
func (t EventType) Valid() bool { return validEventTypes[t] }

// String returns the wire representation.
func (t EventType) String() string { return string(t) }

// TimelineEvent is one dated fact in the claim's chronology.
type TimelineEvent struct {
	Date        time.Time `json:"date"`
	Type        EventType `json:"type"`
	Description string    `json:"description,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Chronology validation
// ─────────────────────────────────────────────────────────────────────────────

// orderedPairs lists the chronology constraints in report priority order.
// For each pair, the first event of the earlier type must not post-date the
// first event of the later type.  The lba_sent pair is the strictest: sending
// a letter before action before payment even fell due undermines the letter's
// legal standing.
var orderedPairs = []struct {
	earlier EventType
	later   EventType
}{
	{EventContract, EventServiceDelivered},
	{EventServiceDelivered, EventInvoice},
	{EventContract, EventInvoice},
	{EventInvoice, EventPaymentDue},
	{EventPaymentDue, EventLBASent},
}

// eventTypeLabels renders enum variants for user-facing warning text.
var eventTypeLabels = map[EventType]string{
	EventContract:         "contract",
	EventServiceDelivered: "service delivered",
	EventInvoice:          "invoice",
	EventPaymentDue:       "payment due",
	EventLBASent:          "letter before action sent",
}

// FirstEventOfType returns the chronology's first entry of the given type,
// scanning by date rather than slice position.  The second return is false
// when no entry of that type exists.
func FirstEventOfType(events []TimelineEvent, t EventType) (TimelineEvent, bool) {
	var first TimelineEvent
	found := false
	for _, ev := range events {
		if ev.Type != t {
			continue
		}
		if !found || ev.Date.Before(first.Date) {
			first = ev
			found = true
		}
	}
	return first, found
}

// HasEvent reports whether any entry of the given type exists.
func HasEvent(events []TimelineEvent, t EventType) bool {
	_, ok := FirstEventOfType(events, t)
	return ok
}

// ValidateTimeline checks the chronology for illogical ordering and returns
// at most one warning: the first violated pair in fixed priority order.  The
// check is advisory and never blocks downstream computation, so the return is
// a string rather than an error.  Pairs with either side absent pass.
func ValidateTimeline(events []TimelineEvent) (warning string, ok bool) {
	for _, pair := range orderedPairs {
		earlier, haveEarlier := FirstEventOfType(events, pair.earlier)
		later, haveLater := FirstEventOfType(events, pair.later)
		if !haveEarlier || !haveLater {
			continue
		}
		if common.DateOnly(earlier.Date).After(common.DateOnly(later.Date)) {
			return fmt.Sprintf(
				"timeline looks out of order: %s (%s) is dated after %s (%s)",
				eventTypeLabels[pair.earlier], earlier.Date.Format("2 January 2006"),
				eventTypeLabels[pair.later], later.Date.Format("2 January 2006"),
			), false
		}
	}
	return "", true
}
