package claim

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Payment terms
// ─────────────────────────────────────────────────────────────────────────────

// PaymentTerms is the agreed settlement period printed on the invoice.
type PaymentTerms string

const (
	Terms7Days  PaymentTerms = "7_days"
	Terms14Days PaymentTerms = "14_days"
	Terms30Days PaymentTerms = "30_days"
	Terms60Days PaymentTerms = "60_days"
)

// paymentTermsOffsets maps each terms variant to its day count.  The map is
// the single source of truth for terms arithmetic; an unlisted value is
// invalid rather than defaulted.
var paymentTermsOffsets = map[PaymentTerms]int{
	Terms7Days:  7,
	Terms14Days: 14,
	Terms30Days: 30,
	Terms60Days: 60,
}

// Valid reports whether t is one of the declared variants.
func (t PaymentTerms) Valid() bool {
	_, ok := paymentTermsOffsets[t]
	return ok
}

// Days returns the settlement period in days.  Zero for invalid terms.
func (t PaymentTerms) Days() int { return paymentTermsOffsets[t] }

// String returns the wire representation.
func (t PaymentTerms) String() string { return string(t) }

// ─────────────────────────────────────────────────────────────────────────────
// Invoice
// ─────────────────────────────────────────────────────────────────────────────

// Invoice is the unpaid demand the claim is built on.  DueDate and
// PaymentTerms are both optional at capture time; EffectiveDueDate resolves
// them and refuses to guess when neither is present.
type Invoice struct {
	Reference    string          `json:"reference,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	DateIssued   time.Time       `json:"date_issued"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	PaymentTerms PaymentTerms    `json:"payment_terms,omitempty"`
}

// Validate checks amount positivity, issue-date presence, and the
// due-after-issue ordering when both dates are captured.
func (inv Invoice) Validate() error {
	if !inv.Amount.IsPositive() {
		return errors.NewValidation("invoice amount must be greater than zero", "amount")
	}
	if inv.DateIssued.IsZero() {
		return errors.NewValidation("invoice issue date is required", "date_issued")
	}
	if inv.DueDate != nil && inv.DueDate.Before(inv.DateIssued) {
		return errors.NewValidation("invoice due date precedes issue date", "due_date")
	}
	if inv.PaymentTerms != "" && !inv.PaymentTerms.Valid() {
		return errors.NewValidation("unrecognised payment terms: "+string(inv.PaymentTerms), "payment_terms")
	}
	return nil
}

// EffectiveDueDate resolves the date payment fell due: the explicit DueDate
// when present, otherwise DateIssued plus the payment-terms offset.  When
// neither is captured the result is a validation error; this layer never
// infers a default settlement period.
func (inv Invoice) EffectiveDueDate() (time.Time, error) {
	if inv.DueDate != nil {
		if inv.DueDate.Before(inv.DateIssued) {
			return time.Time{}, errors.NewValidation("invoice due date precedes issue date", "due_date")
		}
		return common.DateOnly(*inv.DueDate), nil
	}
	if inv.PaymentTerms != "" {
		if !inv.PaymentTerms.Valid() {
			return time.Time{}, errors.NewValidation("unrecognised payment terms: "+string(inv.PaymentTerms), "payment_terms")
		}
		if inv.DateIssued.IsZero() {
			return time.Time{}, errors.NewValidation("invoice issue date is required", "date_issued")
		}
		return common.DateOnly(inv.DateIssued).AddDate(0, 0, inv.PaymentTerms.Days()), nil
	}
	return time.Time{}, errors.NewValidation(
		"cannot determine when payment fell due: set a due date or payment terms",
		"due_date", "payment_terms")
}

// OverdueDays returns the whole days elapsed between the effective due date
// and asOf, floored at zero.  Errors propagate from EffectiveDueDate.
func (inv Invoice) OverdueDays(asOf time.Time) (int, error) {
	due, err := inv.EffectiveDueDate()
	if err != nil {
		return 0, err
	}
	days := common.DaysBetween(due, asOf)
	if days < 0 {
		return 0, nil
	}
	return days, nil
}
