package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/pkg/errors"
)

func TestBuildN1Fields(t *testing.T) {
	state := builderState()
	result := builderResult(t, state)

	fields, err := BuildN1Fields(state, *result, date(2024, 5, 10))
	require.NoError(t, err)

	assert.Equal(t, "Acme Ltd", fields[FieldClaimantName])
	assert.Equal(t, "1 Works Rd, Leeds, LS1 1AA", fields[FieldClaimantAddress])
	assert.Equal(t, "Bolt Fabrication Ltd", fields[FieldDefendantName])
	assert.Equal(t, "£1000.00", fields[FieldAmountClaimed])
	assert.Equal(t, "£34.93", fields[FieldInterestAmount])
	assert.Equal(t, "£70.00", fields[FieldCompensation])
	assert.Equal(t, "£1104.93", fields[FieldTotalAmount])
	assert.Equal(t, StatementOfTruth, fields[FieldStatementOfTruth])
	assert.Equal(t, "10 May 2024", fields[FieldSignatureDate])
	assert.Contains(t, fields[FieldBriefDetails], "INV-001")
	assert.Contains(t, fields[FieldParticulars], "The Claimant claims")
}

func TestBuildN1Fields_MissingAddresses(t *testing.T) {
	state := builderState()
	state.Defendant.AddressLine1 = ""
	state.Defendant.City = ""
	state.Defendant.Postcode = ""

	_, err := BuildN1Fields(state, *builderResult(t, state), date(2024, 5, 10))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIncompleteData))
	assert.Contains(t, errors.FieldsOf(err), "defendant.address")
}

func TestBuildN1Fields_NoCompensationOutsideCommercialRegime(t *testing.T) {
	state := builderState()
	state.Defendant.Type = claim.PartyIndividual

	fields, err := BuildN1Fields(state, *builderResult(t, state), date(2024, 5, 10))
	require.NoError(t, err)
	_, present := fields[FieldCompensation]
	assert.False(t, present)
}
