package claim

import (
	"time"

	"github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Document types
// ─────────────────────────────────────────────────────────────────────────────

// DocumentType names the legal instruments the engine can produce.
type DocumentType string

const (
	// DocPoliteChaser is an informal payment reminder.
	DocPoliteChaser DocumentType = "polite_chaser"

	// DocLBA is the formal letter before action required by the Pre-Action
	// Protocol for Debt Claims.
	DocLBA DocumentType = "lba"

	// DocFormN1 is the CPR Part 7 court claim form.
	DocFormN1 DocumentType = "form_n1"
)

// Valid reports whether t is one of the declared variants.
func (t DocumentType) Valid() bool {
	return t == DocPoliteChaser || t == DocLBA || t == DocFormN1
}

// String returns the wire representation.
func (t DocumentType) String() string { return string(t) }

// ─────────────────────────────────────────────────────────────────────────────
// Aggregate snapshot
// ─────────────────────────────────────────────────────────────────────────────

// State is a read-only snapshot of one claim: the parties, the invoice, the
// event chronology, and the document flags the capture flow maintains.  Core
// computations take this value and never mutate it; persistence belongs to
// the infrastructure layer.
type State struct {
	ID        common.ID       `json:"id"`
	Claimant  Party           `json:"claimant"`
	Defendant Party           `json:"defendant"`
	Invoice   Invoice         `json:"invoice"`
	Timeline  []TimelineEvent `json:"timeline,omitempty"`

	// UserSelectedDocType marks that the user manually chose a document
	// type; recommendations become advisory and must not override it.
	UserSelectedDocType bool         `json:"user_selected_doc_type,omitempty"`
	SelectedDocType     DocumentType `json:"selected_doc_type,omitempty"`

	// LBAAlreadySent and LBASentDate track the protocol milestone that
	// opens the statutory response window.
	LBAAlreadySent bool       `json:"lba_already_sent,omitempty"`
	LBASentDate    *time.Time `json:"lba_sent_date,omitempty"`

	// Notes is free text for the user's own records.  No derived value
	// depends on it.
	Notes string `json:"notes,omitempty"`
}

// Validate checks the structural invariants downstream computations rely on.
// Party-type completeness is deliberately not checked here; the interest
// calculator reports that case with its own error code.
func (s State) Validate() error {
	if s.ID == "" {
		return errors.NewValidation("claim id is required", "id")
	}
	if err := s.Invoice.Validate(); err != nil {
		return err
	}
	for _, ev := range s.Timeline {
		if !ev.Type.Valid() {
			return errors.NewValidation("unrecognised timeline event type: "+string(ev.Type), "timeline")
		}
		if ev.Date.IsZero() {
			return errors.NewValidation("timeline event is missing a date", "timeline")
		}
	}
	if s.SelectedDocType != "" && !s.SelectedDocType.Valid() {
		return errors.NewValidation("unrecognised document type: "+string(s.SelectedDocType), "selected_doc_type")
	}
	if s.LBAAlreadySent && s.LBASentDate == nil {
		if _, ok := FirstEventOfType(s.Timeline, EventLBASent); !ok {
			return errors.NewValidation("letter before action marked sent but no sent date recorded", "lba_sent_date")
		}
	}
	return nil
}

// LBASentOn resolves the date the letter before action went out: the explicit
// flag date when recorded, otherwise the first lba_sent timeline event.
func (s State) LBASentOn() (time.Time, bool) {
	if s.LBASentDate != nil {
		return common.DateOnly(*s.LBASentDate), true
	}
	if ev, ok := FirstEventOfType(s.Timeline, EventLBASent); ok {
		return common.DateOnly(ev.Date), true
	}
	return time.Time{}, false
}

// LBASent reports whether a letter before action has gone out, via either
// the explicit flag or the timeline.
func (s State) LBASent() bool {
	if s.LBAAlreadySent {
		return true
	}
	return HasEvent(s.Timeline, EventLBASent)
}

// ─────────────────────────────────────────────────────────────────────────────
// Generated documents
// ─────────────────────────────────────────────────────────────────────────────

// Section is one named block of generated document text.
type Section struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// GeneratedDocument is the output of one content build: ordered sections plus
// the dependency fingerprint the cache is keyed on.
type GeneratedDocument struct {
	DocumentType DocumentType `json:"document_type"`
	Sections     []Section    `json:"sections"`
	Fingerprint  string       `json:"fingerprint"`
	GeneratedAt  time.Time    `json:"generated_at"`
}

// SectionText returns the named section's text, or empty when absent.
func (d GeneratedDocument) SectionText(name string) string {
	for _, s := range d.Sections {
		if s.Name == name {
			return s.Text
		}
	}
	return ""
}
