package claim

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paidup/paidup/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

// ─────────────────────────────────────────────────────────────────────────────
// Party
// ─────────────────────────────────────────────────────────────────────────────

func TestParty_Validate(t *testing.T) {
	p := Party{Name: "Acme Ltd", Type: PartyCompany, CompanyNumber: "01234567"}
	assert.NoError(t, p.Validate())
}

func TestParty_Validate_MissingFields(t *testing.T) {
	err := Party{}.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.ElementsMatch(t, []string{"name", "type"}, errors.FieldsOf(err))
}

func TestParty_Validate_UnknownType(t *testing.T) {
	err := Party{Name: "X", Type: PartyType("partnership")}.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestParty_DisplayAddress(t *testing.T) {
	p := Party{AddressLine1: "1 High Street", City: "Leeds", Postcode: "LS1 1AA"}
	assert.Equal(t, "1 High Street, Leeds, LS1 1AA", p.DisplayAddress())
	assert.Equal(t, "", Party{}.DisplayAddress())
}

// ─────────────────────────────────────────────────────────────────────────────
// Invoice
// ─────────────────────────────────────────────────────────────────────────────

func TestInvoice_EffectiveDueDate_ExplicitDueDate(t *testing.T) {
	inv := Invoice{
		Amount:     decimal.NewFromInt(500),
		DateIssued: date(2024, 1, 1),
		DueDate:    datePtr(2024, 1, 31),
	}
	due, err := inv.EffectiveDueDate()
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 31), due)
}

func TestInvoice_EffectiveDueDate_FromTerms(t *testing.T) {
	inv := Invoice{
		Amount:       decimal.NewFromInt(500),
		DateIssued:   date(2024, 1, 1),
		PaymentTerms: Terms30Days,
	}
	due, err := inv.EffectiveDueDate()
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 31), due)
}

func TestInvoice_EffectiveDueDate_NeitherSet(t *testing.T) {
	inv := Invoice{Amount: decimal.NewFromInt(500), DateIssued: date(2024, 1, 1)}
	_, err := inv.EffectiveDueDate()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.ElementsMatch(t, []string{"due_date", "payment_terms"}, errors.FieldsOf(err))
}

func TestInvoice_Validate_DueBeforeIssued(t *testing.T) {
	inv := Invoice{
		Amount:     decimal.NewFromInt(500),
		DateIssued: date(2024, 2, 1),
		DueDate:    datePtr(2024, 1, 1),
	}
	assert.Error(t, inv.Validate())
}

func TestInvoice_Validate_NonPositiveAmount(t *testing.T) {
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		inv := Invoice{Amount: amount, DateIssued: date(2024, 1, 1)}
		assert.Error(t, inv.Validate())
	}
}

func TestInvoice_OverdueDays(t *testing.T) {
	inv := Invoice{
		Amount:     decimal.NewFromInt(500),
		DateIssued: date(2024, 1, 1),
		DueDate:    datePtr(2024, 1, 31),
	}

	days, err := inv.OverdueDays(date(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 30, days)

	// Not yet due: floored at zero, not negative.
	days, err = inv.OverdueDays(date(2024, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, 0, days)
}

func TestPaymentTerms_Days(t *testing.T) {
	assert.Equal(t, 7, Terms7Days.Days())
	assert.Equal(t, 14, Terms14Days.Days())
	assert.Equal(t, 30, Terms30Days.Days())
	assert.Equal(t, 60, Terms60Days.Days())
	assert.False(t, PaymentTerms("90_days").Valid())
}

// ─────────────────────────────────────────────────────────────────────────────
// Timeline validation
// ─────────────────────────────────────────────────────────────────────────────

func TestValidateTimeline_PaymentDueBeforeInvoice(t *testing.T) {
	events := []TimelineEvent{
		{Date: date(2024, 2, 1), Type: EventInvoice},
		{Date: date(2024, 1, 1), Type: EventPaymentDue},
	}
	warning, ok := ValidateTimeline(events)
	assert.False(t, ok)
	assert.NotEmpty(t, warning)
}

func TestValidateTimeline_ConsistentOrder(t *testing.T) {
	events := []TimelineEvent{
		{Date: date(2024, 1, 1), Type: EventInvoice},
		{Date: date(2024, 2, 1), Type: EventPaymentDue},
	}
	warning, ok := ValidateTimeline(events)
	assert.True(t, ok)
	assert.Empty(t, warning)
}

func TestValidateTimeline_EmptyAndOneSided(t *testing.T) {
	_, ok := ValidateTimeline(nil)
	assert.True(t, ok)

	_, ok = ValidateTimeline([]TimelineEvent{{Date: date(2024, 1, 1), Type: EventInvoice}})
	assert.True(t, ok)
}

func TestValidateTimeline_ReportsHighestPriorityPairOnly(t *testing.T) {
	// Both (contract, service_delivered) and (payment_due, lba_sent) are
	// violated; only the first pair in priority order is reported.
	events := []TimelineEvent{
		{Date: date(2024, 3, 1), Type: EventContract},
		{Date: date(2024, 1, 1), Type: EventServiceDelivered},
		{Date: date(2024, 5, 1), Type: EventPaymentDue},
		{Date: date(2024, 4, 1), Type: EventLBASent},
	}
	warning, ok := ValidateTimeline(events)
	assert.False(t, ok)
	assert.Contains(t, warning, "contract")
	assert.Contains(t, warning, "service delivered")
}

func TestValidateTimeline_UsesFirstEventOfEachType(t *testing.T) {
	// A later duplicate invoice entry must not mask the first one.
	events := []TimelineEvent{
		{Date: date(2024, 3, 1), Type: EventInvoice},
		{Date: date(2024, 1, 10), Type: EventInvoice},
		{Date: date(2024, 2, 1), Type: EventPaymentDue},
	}
	_, ok := ValidateTimeline(events)
	assert.True(t, ok)
}

func TestValidateTimeline_LBABeforePaymentDue(t *testing.T) {
	events := []TimelineEvent{
		{Date: date(2024, 2, 1), Type: EventPaymentDue},
		{Date: date(2024, 1, 15), Type: EventLBASent},
	}
	warning, ok := ValidateTimeline(events)
	assert.False(t, ok)
	assert.Contains(t, warning, "letter before action")
}

func TestFirstEventOfType(t *testing.T) {
	events := []TimelineEvent{
		{Date: date(2024, 2, 1), Type: EventChaser, Description: "second"},
		{Date: date(2024, 1, 1), Type: EventChaser, Description: "first"},
	}
	ev, ok := FirstEventOfType(events, EventChaser)
	require.True(t, ok)
	assert.Equal(t, "first", ev.Description)

	_, ok = FirstEventOfType(events, EventLBASent)
	assert.False(t, ok)
}

// ─────────────────────────────────────────────────────────────────────────────
// State
// ─────────────────────────────────────────────────────────────────────────────

func validState() State {
	return State{
		ID:       "2d4f0f8e-9a57-4c37-8a61-67a3a51fbc01",
		Claimant: Party{Name: "Acme Ltd", Type: PartyCompany},
		Defendant: Party{Name: "Jane Smith", Type: PartyIndividual},
		Invoice: Invoice{
			Reference:  "INV-001",
			Amount:     decimal.NewFromInt(1000),
			DateIssued: date(2024, 1, 1),
			DueDate:    datePtr(2024, 1, 31),
		},
	}
}

func TestState_Validate(t *testing.T) {
	assert.NoError(t, validState().Validate())
}

func TestState_Validate_BadTimelineEvent(t *testing.T) {
	s := validState()
	s.Timeline = []TimelineEvent{{Date: date(2024, 1, 1), Type: EventType("court_hearing")}}
	assert.Error(t, s.Validate())
}

func TestState_LBASentOn_FlagDateWins(t *testing.T) {
	s := validState()
	s.LBAAlreadySent = true
	s.LBASentDate = datePtr(2024, 3, 1)
	s.Timeline = []TimelineEvent{{Date: date(2024, 3, 5), Type: EventLBASent}}

	sent, ok := s.LBASentOn()
	require.True(t, ok)
	assert.Equal(t, date(2024, 3, 1), sent)
}

func TestState_LBASentOn_FallsBackToTimeline(t *testing.T) {
	s := validState()
	s.Timeline = []TimelineEvent{{Date: date(2024, 3, 5), Type: EventLBASent}}

	sent, ok := s.LBASentOn()
	require.True(t, ok)
	assert.Equal(t, date(2024, 3, 5), sent)
	assert.True(t, s.LBASent())
}

func TestState_LBASentOn_NotSent(t *testing.T) {
	s := validState()
	_, ok := s.LBASentOn()
	assert.False(t, ok)
	assert.False(t, s.LBASent())
}

func TestGeneratedDocument_SectionText(t *testing.T) {
	doc := GeneratedDocument{
		DocumentType: DocLBA,
		Sections: []Section{
			{Name: "salutation", Text: "Dear Jane Smith,"},
		},
	}
	assert.Equal(t, "Dear Jane Smith,", doc.SectionText("salutation"))
	assert.Equal(t, "", doc.SectionText("closing"))
}
