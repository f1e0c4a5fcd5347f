package deadline

import (
	"fmt"
	"sort"
	"time"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/pkg/types/common"
)

// idNamespace seeds deterministic deadline identities.  Re-running the
// scheduler on the same claim mints the same ID for the same type and due
// date.  The due date is part of the identity: a deadline re-derived on a
// new date is a new row, so a retained dismissed row never shares an ID with
// the candidate that replaces it.
const idNamespace = "paidup.deadline"

// Protocol carries the day offsets the scheduler anchors deadlines to.  The
// values mirror the protocol section of the service configuration; keeping a
// plain struct here leaves this package free of configuration imports.
type Protocol struct {
	// FirstChaserAfterDays and the two offsets below count from the
	// invoice's effective due date.
	FirstChaserAfterDays  int
	FinalDemandAfterDays  int
	LBASuggestedAfterDays int

	// ResponseWindowIndividual and ResponseWindowCompany count from the
	// date the letter before action was sent, per the Pre-Action Protocol
	// for Debt Claims: individuals get the longer window.
	ResponseWindowIndividual int
	ResponseWindowCompany    int

	// CourtFilingGraceAfterDays counts from the close of the response
	// window to the court-filing suggestion.
	CourtFilingGraceAfterDays int
}

// DefaultProtocol returns the shipped offsets.
func DefaultProtocol() Protocol {
	return Protocol{
		FirstChaserAfterDays:      7,
		FinalDemandAfterDays:      21,
		LBASuggestedAfterDays:     30,
		ResponseWindowIndividual:  30,
		ResponseWindowCompany:     14,
		CourtFilingGraceAfterDays: 7,
	}
}

// Scheduler derives candidate deadlines from a claim snapshot.
type Scheduler struct {
	protocol Protocol
}

// NewScheduler constructs a Scheduler over the given protocol offsets.
func NewScheduler(protocol Protocol) *Scheduler {
	return &Scheduler{protocol: protocol}
}

// Schedule derives the candidate deadlines for the claim, suppressing any
// that duplicate the stored set.  The function is pure and idempotent:
// identical inputs yield an identical candidate slice, element for element,
// in stable due-date order with deterministic IDs.
//
// A candidate is suppressed when a non-dismissed stored deadline of the same
// (claim, type) exists, or when a stored deadline of the same (type, due
// date) was dismissed.
func (s *Scheduler) Schedule(state claim.State, stored []Deadline) ([]Deadline, error) {
	due, err := state.Invoice.EffectiveDueDate()
	if err != nil {
		return nil, err
	}

	candidates := make([]Deadline, 0, 6)
	add := func(t Type, dueDate time.Time, title, description string) {
		day := common.DateOnly(dueDate)
		candidates = append(candidates, Deadline{
			ID: common.DeterministicID(idNamespace,
				fmt.Sprintf("%s:%s:%s", state.ID, t, day.Format(time.DateOnly))),
			ClaimID:        state.ID,
			Type:           t,
			DueDate:        day,
			Title:          title,
			Description:    description,
			LegalReference: t.LegalReference(),
			Status:         StatusPending,
		})
	}

	paymentDesc := "Payment of the invoice falls due."
	if state.Invoice.Reference != "" {
		paymentDesc = fmt.Sprintf("Payment of invoice %s falls due.", state.Invoice.Reference)
	}
	add(TypePaymentDue, due, "Payment due", paymentDesc)
	add(TypeFirstChaser, due.AddDate(0, 0, s.protocol.FirstChaserAfterDays),
		"Send a payment reminder",
		"The invoice is overdue. A polite chaser keeps the relationship intact and evidences early engagement.")
	add(TypeFinalDemand, due.AddDate(0, 0, s.protocol.FinalDemandAfterDays),
		"Send a final demand",
		"Payment remains outstanding. A firmer demand warns that formal action will follow.")

	if sentOn, sent := state.LBASentOn(); sent {
		window := s.responseWindow(state.Defendant.Type)
		windowEnds := sentOn.AddDate(0, 0, window)
		add(TypeLBAResponse, windowEnds,
			"Letter before action response window closes",
			fmt.Sprintf("The defendant has %d days from the letter before action to respond.", window))
		add(TypeCourtFiling, windowEnds.AddDate(0, 0, s.protocol.CourtFilingGraceAfterDays),
			"Consider issuing a court claim",
			"The response window has closed without settlement. Form N1 can now be issued.")
	} else {
		add(TypeLBASuggested, due.AddDate(0, 0, s.protocol.LBASuggestedAfterDays),
			"Send a letter before action",
			"The Pre-Action Protocol requires a formal letter of claim before court proceedings.")
	}

	candidates = suppressStored(candidates, stored)

	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].DueDate.Equal(candidates[j].DueDate) {
			return candidates[i].DueDate.Before(candidates[j].DueDate)
		}
		return candidates[i].Type < candidates[j].Type
	})
	return candidates, nil
}

// responseWindow returns the statutory response period for the defendant.
// An unset defendant type gets the longer individual window.
func (s *Scheduler) responseWindow(t claim.PartyType) int {
	if t == claim.PartyCompany {
		return s.protocol.ResponseWindowCompany
	}
	return s.protocol.ResponseWindowIndividual
}

func suppressStored(candidates, stored []Deadline) []Deadline {
	if len(stored) == 0 {
		return candidates
	}

	activeByType := make(map[Type]bool, len(stored))
	dismissed := make(map[string]bool, len(stored))
	for _, d := range stored {
		if d.Status == StatusDismissed {
			dismissed[string(d.Type)+"@"+common.DateOnly(d.DueDate).Format(time.DateOnly)] = true
			continue
		}
		activeByType[d.Type] = true
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if activeByType[c.Type] {
			continue
		}
		if dismissed[string(c.Type)+"@"+c.DueDate.Format(time.DateOnly)] {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
