// Package deadline derives the procedural calendar of a debt claim: when
// payment fell due, when to chase, when the Pre-Action Protocol response
// window closes, and when filing at court becomes appropriate.  Derivation is
// a pure function of the claim snapshot and the already-stored deadlines;
// persistence goes through the Store port.
package deadline

import (
	"time"

	"github.com/paidup/paidup/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Types and statuses
// ─────────────────────────────────────────────────────────────────────────────

// Type identifies a procedural deadline.  Closed enum; the scheduler derives
// exactly one candidate per type per claim.
type Type string

const (
	TypePaymentDue   Type = "payment_due"
	TypeFirstChaser  Type = "first_chaser"
	TypeFinalDemand  Type = "final_demand"
	TypeLBASuggested Type = "lba_suggested"
	TypeLBAResponse  Type = "lba_response"
	TypeCourtFiling  Type = "court_filing"
)

var validTypes = map[Type]bool{
	TypePaymentDue:   true,
	TypeFirstChaser:  true,
	TypeFinalDemand:  true,
	TypeLBASuggested: true,
	TypeLBAResponse:  true,
	TypeCourtFiling:  true,
}

// Valid reports whether t is one of the declared variants.
func (t Type) Valid() bool { return validTypes[t] }

// String returns the wire representation.
func (t Type) String() string { return string(t) }

// Status is the lifecycle of a stored deadline.  A dismissed deadline is
// retained so the scheduler will not resurrect the same (type, due date)
// pair the user explicitly waved away.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDone      Status = "done"
	StatusDismissed Status = "dismissed"
)

// Valid reports whether s is one of the declared variants.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusDone || s == StatusDismissed
}

// String returns the wire representation.
func (s Status) String() string { return string(s) }

// legalReferences maps each deadline type to the protocol or statute it
// traces back to.  Every emitted deadline carries one.
var legalReferences = map[Type]string{
	TypePaymentDue:   "Invoice payment terms",
	TypeFirstChaser:  "Pre-Action Protocol for Debt Claims, para 3.1 (early engagement)",
	TypeFinalDemand:  "Pre-Action Protocol for Debt Claims, para 3.1 (early engagement)",
	TypeLBASuggested: "Pre-Action Protocol for Debt Claims, para 3.1 (letter of claim)",
	TypeLBAResponse:  "Pre-Action Protocol for Debt Claims, para 5.1 (response period)",
	TypeCourtFiling:  "CPR Part 7 (issuing the claim form)",
}

// LegalReference returns the citation for the deadline type.
func (t Type) LegalReference() string { return legalReferences[t] }

// ─────────────────────────────────────────────────────────────────────────────
// Deadline
// ─────────────────────────────────────────────────────────────────────────────

// Deadline is one entry in the claim's procedural calendar.  At most one
// non-dismissed deadline may exist per (ClaimID, Type); the store enforces
// this with an upsert keyed on that pair.
type Deadline struct {
	ID             common.ID `json:"id"`
	ClaimID        common.ID `json:"claim_id"`
	Type           Type      `json:"type"`
	DueDate        time.Time `json:"due_date"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	LegalReference string    `json:"legal_reference"`
	Status         Status    `json:"status"`
}

// Equal reports whether two deadlines carry identical values.  Used by
// idempotence checks; status is included.
func (d Deadline) Equal(other Deadline) bool {
	return d.ID == other.ID &&
		d.ClaimID == other.ClaimID &&
		d.Type == other.Type &&
		d.DueDate.Equal(other.DueDate) &&
		d.Title == other.Title &&
		d.Description == other.Description &&
		d.LegalReference == other.LegalReference &&
		d.Status == other.Status
}
