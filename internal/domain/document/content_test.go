package document

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/domain/interest"
	"github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// memoryCache is an in-memory Cache for tests; it counts Set calls so the
// regeneration policy can be asserted.
type memoryCache struct {
	mu   sync.Mutex
	docs map[string]claim.GeneratedDocument
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{docs: make(map[string]claim.GeneratedDocument)}
}

func (c *memoryCache) Get(_ context.Context, claimID common.ID, docType claim.DocumentType) (*claim.GeneratedDocument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[string(claimID)+":"+string(docType)]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (c *memoryCache) Set(_ context.Context, claimID common.ID, doc claim.GeneratedDocument) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[string(claimID)+":"+string(doc.DocumentType)] = doc
	c.sets++
	return nil
}

func builderState() claim.State {
	return claim.State{
		ID:        "e2a1b0c9-8d7e-4f6a-b5c4-d3e2f1a0b9c8",
		Claimant:  claim.Party{Name: "Acme Ltd", Type: claim.PartyCompany, AddressLine1: "1 Works Rd", City: "Leeds", Postcode: "LS1 1AA"},
		Defendant: claim.Party{Name: "Bolt Fabrication Ltd", Type: claim.PartyCompany, AddressLine1: "2 Forge St", City: "Sheffield", Postcode: "S1 2BB"},
		Invoice: claim.Invoice{
			Reference:  "INV-001",
			Amount:     decimal.NewFromInt(1000),
			DateIssued: date(2024, 1, 1),
			DueDate:    datePtr(2024, 1, 31),
		},
		Timeline: []claim.TimelineEvent{{Date: date(2024, 1, 1), Type: claim.EventInvoice}},
	}
}

func builderResult(t *testing.T, state claim.State) *interest.Result {
	t.Helper()
	calc := interest.NewCalculator(interest.NewRates(8.0, 4.75, 8.0))
	result, err := calc.Calculate(state, date(2024, 5, 10))
	require.NoError(t, err)
	return &result
}

func TestGenerate_LBASections(t *testing.T) {
	b := NewBuilder(newMemoryCache())
	state := builderState()
	result := builderResult(t, state)

	doc, err := b.Generate(context.Background(), state, claim.DocLBA, result)
	require.NoError(t, err)

	assert.Equal(t, claim.DocLBA, doc.DocumentType)
	assert.Equal(t, "Dear Bolt Fabrication Ltd,", doc.SectionText(SectionSalutation))
	assert.Contains(t, doc.SectionText(SectionParticulars), "LETTER BEFORE ACTION")
	assert.Contains(t, doc.SectionText(SectionParticulars), "Pre-Action Protocol")
	assert.Contains(t, doc.SectionText(SectionAmounts), "£1000.00")
	assert.Contains(t, doc.SectionText(SectionAmounts), "£34.93")
	assert.Contains(t, doc.SectionText(SectionAmounts), "£70.00")
	assert.NotEmpty(t, doc.Fingerprint)
}

func TestGenerate_FormN1HasVerbatimStatementOfTruth(t *testing.T) {
	b := NewBuilder(newMemoryCache())
	state := builderState()

	doc, err := b.Generate(context.Background(), state, claim.DocFormN1, builderResult(t, state))
	require.NoError(t, err)
	assert.Equal(t, StatementOfTruth, doc.SectionText(SectionStatementOfTruth))
}

func TestGenerate_PoliteChaserWithoutInterest(t *testing.T) {
	b := NewBuilder(newMemoryCache())
	state := builderState()

	doc, err := b.Generate(context.Background(), state, claim.DocPoliteChaser, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.SectionText(SectionSalutation))
	assert.Contains(t, doc.SectionText(SectionAmounts), "£1000.00")
}

func TestGenerate_MissingPrerequisitesNamed(t *testing.T) {
	b := NewBuilder(newMemoryCache())
	state := builderState()
	state.Claimant.Name = ""
	state.Invoice.Amount = decimal.Zero

	_, err := b.Generate(context.Background(), state, claim.DocLBA, builderResult(t, builderState()))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIncompleteData))
	assert.ElementsMatch(t, []string{"claimant.name", "invoice.amount"}, errors.FieldsOf(err))
}

func TestGenerate_InterestRequiredForLBA(t *testing.T) {
	b := NewBuilder(newMemoryCache())

	_, err := b.Generate(context.Background(), builderState(), claim.DocLBA, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIncompleteData))
	assert.Contains(t, errors.FieldsOf(err), "interest")
}

func TestGenerate_CachedUntilDependencyChanges(t *testing.T) {
	cache := newMemoryCache()
	now := date(2024, 5, 10)
	b := NewBuilder(cache, WithClock(func() time.Time { return now }))
	state := builderState()
	result := builderResult(t, state)

	first, err := b.Generate(context.Background(), state, claim.DocLBA, result)
	require.NoError(t, err)

	// Unrelated mutation: notes do not belong to the dependency set.
	now = now.Add(48 * time.Hour)
	state.Notes = "called them twice, no answer"
	second, err := b.Generate(context.Background(), state, claim.DocLBA, result)
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.GeneratedAt, second.GeneratedAt, "cached document must be served unchanged")
	assert.Equal(t, 1, cache.sets)

	// Amount is a declared dependency: the document regenerates.
	state.Invoice.Amount = decimal.NewFromInt(1500)
	result2 := builderResult(t, state)
	third, err := b.Generate(context.Background(), state, claim.DocLBA, result2)
	require.NoError(t, err)

	assert.NotEqual(t, first.Fingerprint, third.Fingerprint)
	assert.NotEqual(t, first.GeneratedAt, third.GeneratedAt)
	assert.Equal(t, 2, cache.sets)
}

func TestGenerate_NilCacheRebuilds(t *testing.T) {
	b := NewBuilder(nil)
	state := builderState()

	_, err := b.Generate(context.Background(), state, claim.DocLBA, builderResult(t, state))
	assert.NoError(t, err)
}

func TestGenerate_ConcurrentCallsCoalesce(t *testing.T) {
	cache := newMemoryCache()
	b := NewBuilder(cache)
	state := builderState()
	result := builderResult(t, state)

	const callers = 16
	docs := make([]claim.GeneratedDocument, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := b.Generate(context.Background(), state, claim.DocLBA, result)
			assert.NoError(t, err)
			docs[i] = doc
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Equal(t, docs[0].Fingerprint, docs[i].Fingerprint)
		assert.Equal(t, docs[0].GeneratedAt, docs[i].GeneratedAt)
	}
}

func TestFingerprint_StableAcrossUnrelatedMutation(t *testing.T) {
	state := builderState()
	result := builderResult(t, state)

	before := Fingerprint(state, claim.DocLBA, result)
	state.Notes = "spoke to accounts payable"
	state.Timeline = append(state.Timeline,
		claim.TimelineEvent{Date: date(2024, 2, 1), Type: claim.EventCommunication})
	assert.Equal(t, before, Fingerprint(state, claim.DocLBA, result))

	state.Defendant.Name = "Different Ltd"
	assert.NotEqual(t, before, Fingerprint(state, claim.DocLBA, result))
}

func TestFingerprint_DiffersPerDocumentType(t *testing.T) {
	state := builderState()
	result := builderResult(t, state)
	assert.NotEqual(t,
		Fingerprint(state, claim.DocLBA, result),
		Fingerprint(state, claim.DocPoliteChaser, result))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "£1234.50", FormatMoney(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "£0.00", FormatMoney(decimal.Zero))
	assert.Equal(t, "2 January 2024", FormatDate(date(2024, 1, 2)))
}
