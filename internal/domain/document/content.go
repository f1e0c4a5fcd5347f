package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/domain/interest"
	"github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// StatementOfTruth is the sworn declaration CPR Part 22 requires on a claim
// form.  It is embedded verbatim; paraphrasing or truncating it would
// invalidate the form.
const StatementOfTruth = "I believe that the facts stated in this claim form are true. " +
	"I understand that proceedings for contempt of court may be brought against anyone who makes, " +
	"or causes to be made, a false statement in a document verified by a statement of truth " +
	"without an honest belief in its truth."

// Section names shared with the form filler and the HTTP layer.
const (
	SectionSalutation       = "salutation"
	SectionParticulars      = "particulars"
	SectionAmounts          = "amounts"
	SectionStatementOfTruth = "statement_of_truth"
	SectionClosing          = "closing"
)

// Cache is the port for generated-document storage.  Implementations must
// tolerate concurrent reads; writes are serialised by the builder.
type Cache interface {
	// Get returns the cached document, or nil on a miss.
	Get(ctx context.Context, claimID common.ID, docType claim.DocumentType) (*claim.GeneratedDocument, error)

	// Set stores the document under (claimID, docType).
	Set(ctx context.Context, claimID common.ID, doc claim.GeneratedDocument) error
}

// Builder assembles document content.  Regeneration is fingerprint-driven:
// content is rebuilt only when a declared dependency of the document changes,
// and at most one build per (claim, document type) runs at a time.
type Builder struct {
	cache Cache
	group singleflight.Group
	now   func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the builder's time source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder constructs a Builder.  A nil cache disables caching; every call
// then rebuilds.
func NewBuilder(cache Cache, opts ...Option) *Builder {
	b := &Builder{cache: cache, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// fingerprintInputs is the declared dependency set of generated content.
// Anything outside this struct (free-text notes, the event timeline) can
// change without invalidating a cached document.
type fingerprintInputs struct {
	ClaimantName  string `json:"cn"`
	ClaimantType  string `json:"ct"`
	DefendantName string `json:"dn"`
	DefendantType string `json:"dt"`
	Reference     string `json:"ref"`
	Amount        string `json:"amt"`
	DateIssued    string `json:"iss"`
	DueDate       string `json:"due,omitempty"`
	PaymentTerms  string `json:"terms,omitempty"`
	DocumentType  string `json:"doc"`
	LBASentDate   string `json:"lba,omitempty"`
	InterestTotal string `json:"int,omitempty"`
	Compensation  string `json:"comp,omitempty"`
}

// Fingerprint hashes the declared dependency set for one document type.
func Fingerprint(state claim.State, docType claim.DocumentType, result *interest.Result) string {
	in := fingerprintInputs{
		ClaimantName:  state.Claimant.Name,
		ClaimantType:  string(state.Claimant.Type),
		DefendantName: state.Defendant.Name,
		DefendantType: string(state.Defendant.Type),
		Reference:     state.Invoice.Reference,
		Amount:        state.Invoice.Amount.String(),
		DateIssued:    state.Invoice.DateIssued.Format(time.DateOnly),
		PaymentTerms:  string(state.Invoice.PaymentTerms),
		DocumentType:  string(docType),
	}
	if state.Invoice.DueDate != nil {
		in.DueDate = state.Invoice.DueDate.Format(time.DateOnly)
	}
	if sentOn, ok := state.LBASentOn(); ok {
		in.LBASentDate = sentOn.Format(time.DateOnly)
	}
	if result != nil {
		in.InterestTotal = result.TotalInterest.String()
		in.Compensation = result.Compensation.String()
	}

	raw, _ := json.Marshal(in)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Generate assembles the document of the given type, serving from cache when
// the dependency fingerprint is unchanged.  Concurrent calls for the same
// (claim, type) coalesce onto one build; the second caller receives the
// first caller's result rather than racing it to the cache.
//
// The interest result is required for letters before action and Form N1 and
// optional for a polite chaser.
func (b *Builder) Generate(
	ctx context.Context,
	state claim.State,
	docType claim.DocumentType,
	result *interest.Result,
) (claim.GeneratedDocument, error) {
	if !docType.Valid() {
		return claim.GeneratedDocument{}, errors.NewValidation(
			"unrecognised document type: "+string(docType), "document_type")
	}
	if err := checkPrerequisites(state, docType, result); err != nil {
		return claim.GeneratedDocument{}, err
	}

	fingerprint := Fingerprint(state, docType, result)
	key := string(state.ID) + ":" + string(docType)

	v, err, _ := b.group.Do(key, func() (interface{}, error) {
		if b.cache != nil {
			cached, err := b.cache.Get(ctx, state.ID, docType)
			if err == nil && cached != nil && cached.Fingerprint == fingerprint {
				return *cached, nil
			}
		}

		doc := claim.GeneratedDocument{
			DocumentType: docType,
			Sections:     b.sections(state, docType, result),
			Fingerprint:  fingerprint,
			GeneratedAt:  b.now().UTC(),
		}
		if b.cache != nil {
			// Cache failures degrade to rebuild-on-next-call; they do not
			// fail the generation itself.
			_ = b.cache.Set(ctx, state.ID, doc)
		}
		return doc, nil
	})
	if err != nil {
		return claim.GeneratedDocument{}, err
	}
	return v.(claim.GeneratedDocument), nil
}

// checkPrerequisites names every missing field in one error so the caller
// can prompt for all of them at once.
func checkPrerequisites(state claim.State, docType claim.DocumentType, result *interest.Result) error {
	var missing []string
	if strings.TrimSpace(state.Claimant.Name) == "" {
		missing = append(missing, "claimant.name")
	}
	if strings.TrimSpace(state.Defendant.Name) == "" {
		missing = append(missing, "defendant.name")
	}
	if !state.Invoice.Amount.IsPositive() {
		missing = append(missing, "invoice.amount")
	}
	if result == nil && docType != claim.DocPoliteChaser {
		missing = append(missing, "interest")
	}
	if len(missing) > 0 {
		return errors.NewIncompleteData("cannot generate the document until required fields are set", missing...)
	}
	return nil
}

func (b *Builder) sections(state claim.State, docType claim.DocumentType, result *interest.Result) []claim.Section {
	switch docType {
	case claim.DocPoliteChaser:
		return politeChaserSections(state, result)
	case claim.DocLBA:
		return lbaSections(state, result)
	case claim.DocFormN1:
		return formN1Sections(state, result)
	default:
		return nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Rendering helpers
// ─────────────────────────────────────────────────────────────────────────────

// FormatMoney renders a sterling amount with exactly two decimal places.
func FormatMoney(amount decimal.Decimal) string {
	return "£" + amount.StringFixed(2)
}

// FormatDate renders a date in the long-form convention used across every
// generated document.
func FormatDate(t time.Time) string {
	return t.Format("2 January 2006")
}

func dueDateClause(inv claim.Invoice) string {
	if due, err := inv.EffectiveDueDate(); err == nil {
		return fmt.Sprintf(", which fell due for payment on %s", FormatDate(due))
	}
	return ""
}

func invoiceClause(inv claim.Invoice) string {
	if inv.Reference != "" {
		return fmt.Sprintf("invoice %s dated %s", inv.Reference, FormatDate(inv.DateIssued))
	}
	return fmt.Sprintf("our invoice dated %s", FormatDate(inv.DateIssued))
}

// ─────────────────────────────────────────────────────────────────────────────
// Per-document templates
// ─────────────────────────────────────────────────────────────────────────────

func politeChaserSections(state claim.State, result *interest.Result) []claim.Section {
	amounts := fmt.Sprintf("Amount outstanding: %s.", FormatMoney(state.Invoice.Amount))
	if result != nil && result.TotalInterest.IsPositive() {
		amounts += fmt.Sprintf(" Statutory interest accrued to %s: %s.",
			FormatDate(result.AsOfDate), FormatMoney(result.TotalInterest))
	}
	return []claim.Section{
		{Name: SectionSalutation, Text: fmt.Sprintf("Dear %s,", state.Defendant.Name)},
		{Name: SectionParticulars, Text: fmt.Sprintf(
			"We write regarding %s%s. According to our records this invoice remains unpaid. "+
				"We would be grateful if you could arrange payment, or contact us if there is a problem we should know about.",
			invoiceClause(state.Invoice), dueDateClause(state.Invoice))},
		{Name: SectionAmounts, Text: amounts},
		{Name: SectionClosing, Text: fmt.Sprintf(
			"We look forward to receiving your payment.\n\nYours sincerely,\n%s", state.Claimant.Name)},
	}
}

func lbaSections(state claim.State, result *interest.Result) []claim.Section {
	total := state.Invoice.Amount.Add(result.TotalInterest).Add(result.Compensation)

	var amounts strings.Builder
	fmt.Fprintf(&amounts, "Principal debt: %s.\n", FormatMoney(state.Invoice.Amount))
	fmt.Fprintf(&amounts, "Statutory interest to %s under the %s at %s%% per annum: %s.\n",
		FormatDate(result.AsOfDate), result.LegalReference,
		result.AnnualRatePercent.String(), FormatMoney(result.TotalInterest))
	if result.Compensation.IsPositive() {
		fmt.Fprintf(&amounts, "Fixed compensation under the Late Payment of Commercial Debts (Interest) Act 1998: %s.\n",
			FormatMoney(result.Compensation))
	}
	fmt.Fprintf(&amounts, "Total now due: %s.", FormatMoney(total))

	return []claim.Section{
		{Name: SectionSalutation, Text: fmt.Sprintf("Dear %s,", state.Defendant.Name)},
		{Name: SectionParticulars, Text: fmt.Sprintf(
			"LETTER BEFORE ACTION\n\n"+
				"This letter is sent in accordance with the Pre-Action Protocol for Debt Claims. "+
				"Despite previous reminders, %s%s remains unpaid. "+
				"Unless payment of the total below is received, we intend to issue court proceedings against you "+
				"without further notice. Court action may result in additional costs and interest being added to the debt "+
				"and may affect your credit rating.",
			invoiceClause(state.Invoice), dueDateClause(state.Invoice))},
		{Name: SectionAmounts, Text: amounts.String()},
		{Name: SectionClosing, Text: fmt.Sprintf(
			"Payment should be made within the response period set out in the Protocol. "+
				"If you dispute the debt or need time to pay, you must reply within that period.\n\n"+
				"Yours sincerely,\n%s", state.Claimant.Name)},
	}
}

func formN1Sections(state claim.State, result *interest.Result) []claim.Section {
	total := state.Invoice.Amount.Add(result.TotalInterest).Add(result.Compensation)

	var amounts strings.Builder
	fmt.Fprintf(&amounts, "Amount claimed: %s.\n", FormatMoney(state.Invoice.Amount))
	fmt.Fprintf(&amounts, "Interest: %s.\n", FormatMoney(result.TotalInterest))
	if result.Compensation.IsPositive() {
		fmt.Fprintf(&amounts, "Compensation: %s.\n", FormatMoney(result.Compensation))
	}
	fmt.Fprintf(&amounts, "Total: %s.", FormatMoney(total))

	particulars := fmt.Sprintf(
		"The Claimant claims the sum of %s in respect of %s%s. "+
			"The Defendant has failed to pay despite demand. "+
			"The Claimant further claims interest of %s under the %s at %s%% per annum to %s, continuing at the daily rate until judgment or sooner payment.",
		FormatMoney(state.Invoice.Amount), invoiceClause(state.Invoice), dueDateClause(state.Invoice),
		FormatMoney(result.TotalInterest), result.LegalReference,
		result.AnnualRatePercent.String(), FormatDate(result.AsOfDate))
	if result.Compensation.IsPositive() {
		particulars += fmt.Sprintf(
			" The Claimant also claims fixed compensation of %s under section 5A of the Late Payment of Commercial Debts (Interest) Act 1998.",
			FormatMoney(result.Compensation))
	}

	return []claim.Section{
		{Name: SectionParticulars, Text: particulars},
		{Name: SectionAmounts, Text: amounts.String()},
		{Name: SectionStatementOfTruth, Text: StatementOfTruth},
	}
}
