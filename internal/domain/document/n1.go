package document

import (
	"time"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/domain/interest"
	"github.com/paidup/paidup/pkg/errors"
)

// Field names understood by the Form N1 filler's coordinate map.
const (
	FieldClaimantName     = "claimant_name"
	FieldClaimantAddress  = "claimant_address"
	FieldDefendantName    = "defendant_name"
	FieldDefendantAddress = "defendant_address"
	FieldBriefDetails     = "brief_details"
	FieldAmountClaimed    = "amount_claimed"
	FieldInterestAmount   = "interest_amount"
	FieldCompensation     = "compensation_amount"
	FieldTotalAmount      = "total_amount"
	FieldParticulars      = "particulars"
	FieldStatementOfTruth = "statement_of_truth"
	FieldSignatureName    = "signature_name"
	FieldSignatureDate    = "signature_date"
)

// BuildN1Fields assembles the values to overlay onto the claim form.  Both
// parties must be fully captured for a court document; missing fields are
// reported together so the caller can prompt once.
func BuildN1Fields(state claim.State, result interest.Result, asOf time.Time) (map[string]string, error) {
	var missing []string
	if state.Claimant.Name == "" {
		missing = append(missing, "claimant.name")
	}
	if state.Claimant.DisplayAddress() == "" {
		missing = append(missing, "claimant.address")
	}
	if state.Defendant.Name == "" {
		missing = append(missing, "defendant.name")
	}
	if state.Defendant.DisplayAddress() == "" {
		missing = append(missing, "defendant.address")
	}
	if !state.Invoice.Amount.IsPositive() {
		missing = append(missing, "invoice.amount")
	}
	if len(missing) > 0 {
		return nil, errors.NewIncompleteData("Form N1 requires fields that are not yet captured", missing...)
	}

	sections := formN1Sections(state, &result)
	doc := claim.GeneratedDocument{Sections: sections}
	total := state.Invoice.Amount.Add(result.TotalInterest).Add(result.Compensation)

	fields := map[string]string{
		FieldClaimantName:     state.Claimant.Name,
		FieldClaimantAddress:  state.Claimant.DisplayAddress(),
		FieldDefendantName:    state.Defendant.Name,
		FieldDefendantAddress: state.Defendant.DisplayAddress(),
		FieldBriefDetails:     briefDetails(state),
		FieldAmountClaimed:    FormatMoney(state.Invoice.Amount),
		FieldInterestAmount:   FormatMoney(result.TotalInterest),
		FieldTotalAmount:      FormatMoney(total),
		FieldParticulars:      doc.SectionText(SectionParticulars),
		FieldStatementOfTruth: StatementOfTruth,
		FieldSignatureName:    state.Claimant.Name,
		FieldSignatureDate:    FormatDate(asOf),
	}
	if result.Compensation.IsPositive() {
		fields[FieldCompensation] = FormatMoney(result.Compensation)
	}
	return fields, nil
}

func briefDetails(state claim.State) string {
	ref := state.Invoice.Reference
	if ref == "" {
		return "Claim for an unpaid invoice, plus statutory interest."
	}
	return "Claim for unpaid invoice " + ref + ", plus statutory interest."
}
