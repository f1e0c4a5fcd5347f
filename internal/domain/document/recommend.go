// Package document decides which legal instrument a claim calls for next and
// assembles that document's content.  Recommendation and generation are pure
// computations over the claim snapshot; caching and PDF rendering are
// infrastructure concerns behind ports.
package document

import (
	"fmt"
	"time"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/domain/deadline"
	"github.com/paidup/paidup/internal/domain/interest"
	"github.com/paidup/paidup/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Stages
// ─────────────────────────────────────────────────────────────────────────────

// Stage classifies how far along the recovery escalation path a claim is.
// Stages only ever move forward; the recommender never suggests stepping
// back down the path.
type Stage string

const (
	StageNoContact           Stage = "no_contact"
	StageChased              Stage = "chased"
	StageLBARequired         Stage = "lba_required"
	StageLBAAwaitingResponse Stage = "lba_awaiting_response"
	StageCourtReady          Stage = "court_ready"
)

// String returns the wire representation.
func (s Stage) String() string { return string(s) }

// stageRank orders stages along the escalation path.
var stageRank = map[Stage]int{
	StageNoContact:           0,
	StageChased:              1,
	StageLBARequired:         2,
	StageLBAAwaitingResponse: 3,
	StageCourtReady:          4,
}

// Precedes reports whether s comes before other on the escalation path.
func (s Stage) Precedes(other Stage) bool {
	return stageRank[s] < stageRank[other]
}

// ─────────────────────────────────────────────────────────────────────────────
// Recommendation
// ─────────────────────────────────────────────────────────────────────────────

// Recommendation is the recommender's verdict.  When Advisory is true the
// user has manually selected a document type; callers must keep the user's
// selection and surface Warnings rather than substituting PrimaryDocument.
type Recommendation struct {
	Stage           Stage                `json:"stage"`
	PrimaryDocument claim.DocumentType   `json:"primary_document"`
	Reason          string               `json:"reason"`
	Warnings        []string             `json:"warnings,omitempty"`
	Alternatives    []claim.DocumentType `json:"alternatives,omitempty"`
	Advisory        bool                 `json:"advisory,omitempty"`
	UserSelection   claim.DocumentType   `json:"user_selection,omitempty"`
}

// Recommender maps claim state to the next legal instrument.
type Recommender struct {
	calc     *interest.Calculator
	protocol deadline.Protocol

	// chaserOverdueDays is how far past due an invoice may be before a
	// polite reminder stops being the right instrument.
	chaserOverdueDays int
}

// NewRecommender constructs a Recommender.  chaserOverdueDays mirrors the
// protocol configuration's chaser threshold.
func NewRecommender(calc *interest.Calculator, protocol deadline.Protocol, chaserOverdueDays int) *Recommender {
	return &Recommender{calc: calc, protocol: protocol, chaserOverdueDays: chaserOverdueDays}
}

// Recommend classifies the claim's stage as of the given date and names the
// next document.  The classification never errors: missing prerequisites
// (empty timeline, an interest computation that fails) are reported as
// warnings and cap the stage below court-ready, because filing a claim form
// with an uncomputable interest figure would be defective.
func (r *Recommender) Recommend(state claim.State, asOf time.Time) Recommendation {
	asOf = common.DateOnly(asOf)

	var warnings []string
	if warning, ok := claim.ValidateTimeline(state.Timeline); !ok {
		warnings = append(warnings, warning)
	}

	prereqsMet := true
	if len(state.Timeline) == 0 {
		prereqsMet = false
		warnings = append(warnings, "the claim timeline is empty: add the key events before going to court")
	}
	if _, err := r.calc.Calculate(state, asOf); err != nil {
		prereqsMet = false
		warnings = append(warnings, "statutory interest cannot be computed yet: "+err.Error())
	}

	overdueDays, dueKnown := r.overdueDays(state, asOf)
	chased := claim.HasEvent(state.Timeline, claim.EventChaser) ||
		claim.HasEvent(state.Timeline, claim.EventPaymentReminder)

	rec := r.classify(state, asOf, overdueDays, dueKnown, chased, prereqsMet, &warnings)
	rec.Warnings = warnings

	if state.UserSelectedDocType && state.SelectedDocType != "" {
		rec.Advisory = true
		rec.UserSelection = state.SelectedDocType
		rec.Warnings = append(rec.Warnings, r.overrideWarnings(state, rec)...)
	}
	return rec
}

func (r *Recommender) classify(
	state claim.State,
	asOf time.Time,
	overdueDays int,
	dueKnown, chased, prereqsMet bool,
	warnings *[]string,
) Recommendation {
	if sentOn, sent := state.LBASentOn(); sent {
		windowEnds := sentOn.AddDate(0, 0, r.responseWindow(state.Defendant.Type))
		if asOf.After(windowEnds) {
			if prereqsMet {
				return Recommendation{
					Stage:           StageCourtReady,
					PrimaryDocument: claim.DocFormN1,
					Reason: fmt.Sprintf(
						"The letter before action response window closed on %s without settlement. A court claim can now be issued.",
						windowEnds.Format("2 January 2006")),
					Alternatives: []claim.DocumentType{claim.DocLBA},
				}
			}
			*warnings = append(*warnings,
				"the response window has closed but the claim is not ready to file")
		}
		return Recommendation{
			Stage:           StageLBAAwaitingResponse,
			PrimaryDocument: claim.DocLBA,
			Reason: fmt.Sprintf(
				"A letter before action was sent on %s. Wait for the response window to close on %s before escalating.",
				sentOn.Format("2 January 2006"), windowEnds.Format("2 January 2006")),
		}
	}

	if dueKnown && overdueDays > r.chaserOverdueDays {
		return Recommendation{
			Stage:           StageLBARequired,
			PrimaryDocument: claim.DocLBA,
			Reason: fmt.Sprintf(
				"The invoice is %d days overdue. The Pre-Action Protocol requires a letter before action ahead of court proceedings.",
				overdueDays),
			Alternatives: []claim.DocumentType{claim.DocPoliteChaser},
		}
	}

	if chased {
		return Recommendation{
			Stage:           StageChased,
			PrimaryDocument: claim.DocPoliteChaser,
			Reason:          "A reminder has already been sent. A follow-up chaser keeps the pressure on while the debt is still fresh.",
			Alternatives:    []claim.DocumentType{claim.DocLBA},
		}
	}

	return Recommendation{
		Stage:           StageNoContact,
		PrimaryDocument: claim.DocPoliteChaser,
		Reason:          "No payment reminder has been sent yet. Start with a polite chaser.",
		Alternatives:    []claim.DocumentType{claim.DocLBA},
	}
}

// overrideWarnings notes hazards in the user's manual document choice.
func (r *Recommender) overrideWarnings(state claim.State, rec Recommendation) []string {
	var out []string
	switch state.SelectedDocType {
	case claim.DocFormN1:
		if !state.LBASent() {
			out = append(out,
				"Form N1 selected but no letter before action has been sent; filing now risks costs sanctions under the Pre-Action Protocol")
		} else if rec.Stage.Precedes(StageCourtReady) {
			out = append(out, "Form N1 selected before the letter before action response window has closed")
		}
	case claim.DocPoliteChaser:
		if rec.Stage == StageCourtReady || rec.Stage == StageLBARequired {
			out = append(out, "a polite chaser is selected but the claim has progressed beyond informal reminders")
		}
	}
	return out
}

func (r *Recommender) overdueDays(state claim.State, asOf time.Time) (int, bool) {
	days, err := state.Invoice.OverdueDays(asOf)
	if err != nil {
		return 0, false
	}
	return days, true
}

// responseWindow mirrors the scheduler's window selection.  An unset
// defendant type gets the longer individual window.
func (r *Recommender) responseWindow(t claim.PartyType) int {
	if t == claim.PartyCompany {
		return r.protocol.ResponseWindowCompany
	}
	return r.protocol.ResponseWindowIndividual
}
