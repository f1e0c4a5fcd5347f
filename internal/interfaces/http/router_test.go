package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paidup/paidup/internal/application/claims"
	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/domain/deadline"
	"github.com/paidup/paidup/internal/domain/document"
	"github.com/paidup/paidup/internal/domain/interest"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	"github.com/paidup/paidup/internal/interfaces/http/handlers"
	appErrors "github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test harness
// ─────────────────────────────────────────────────────────────────────────────

type memClaimStore struct {
	claims map[common.ID]claim.State
}

func (s *memClaimStore) Save(_ context.Context, state claim.State) error {
	s.claims[state.ID] = state
	return nil
}

func (s *memClaimStore) FindByID(_ context.Context, id common.ID) (claim.State, error) {
	state, ok := s.claims[id]
	if !ok {
		return claim.State{}, appErrors.NotFound("claim not found")
	}
	return state, nil
}

func (s *memClaimStore) List(_ context.Context, _ common.Pagination) ([]claim.State, int64, error) {
	out := make([]claim.State, 0, len(s.claims))
	for _, c := range s.claims {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (s *memClaimStore) Delete(_ context.Context, id common.ID) error {
	delete(s.claims, id)
	return nil
}

type memDeadlineStore struct {
	rows map[common.ID]deadline.Deadline
}

func (s *memDeadlineStore) Upsert(_ context.Context, d deadline.Deadline) (bool, error) {
	existing, ok := s.rows[d.ID]
	if ok && existing.Equal(d) {
		return false, nil
	}
	s.rows[d.ID] = d
	return true, nil
}

func (s *memDeadlineStore) ListByClaim(_ context.Context, claimID common.ID) ([]deadline.Deadline, error) {
	var out []deadline.Deadline
	for _, d := range s.rows {
		if d.ClaimID == claimID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (s *memDeadlineStore) Dismiss(_ context.Context, id common.ID) error {
	d := s.rows[id]
	d.Status = deadline.StatusDismissed
	s.rows[id] = d
	return nil
}

func (s *memDeadlineStore) MarkDone(_ context.Context, id common.ID) error {
	d := s.rows[id]
	d.Status = deadline.StatusDone
	s.rows[id] = d
	return nil
}

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (http.Handler, *memClaimStore) {
	t.Helper()

	store := &memClaimStore{claims: map[common.ID]claim.State{}}
	calc := interest.NewCalculator(interest.NewRates(8, 4.75, 8))
	service := claims.NewService(claims.Deps{
		Claims:      store,
		Deadlines:   &memDeadlineStore{rows: map[common.ID]deadline.Deadline{}},
		Scheduler:   deadline.NewScheduler(deadline.DefaultProtocol()),
		Calculator:  calc,
		Recommender: document.NewRecommender(calc, deadline.DefaultProtocol(), 14),
		Builder:     document.NewBuilder(nil),
		Now:         func() time.Time { return testNow },
	})

	return NewRouter(RouterConfig{
		ClaimHandler:  handlers.NewClaimHandler(service, logging.NewNopLogger()),
		HealthHandler: handlers.NewHealthHandler(nil),
		Logger:        logging.NewNopLogger(),
	}), store
}

func seedClaim(t *testing.T, store *memClaimStore) claim.State {
	t.Helper()
	due := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	state := claim.State{
		ID: common.NewID(),
		Claimant: claim.Party{
			Name: "Acme Widgets Ltd", Type: claim.PartyCompany,
			AddressLine1: "1 Factory Lane", City: "Leeds", Postcode: "LS1 1AA",
		},
		Defendant: claim.Party{
			Name: "Retail Co Ltd", Type: claim.PartyCompany,
			AddressLine1: "2 Shop Street", City: "York", Postcode: "YO1 1BB",
		},
		Invoice: claim.Invoice{
			Reference:  "INV-001",
			Amount:     decimal.NewFromInt(1000),
			DateIssued: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			DueDate:    &due,
		},
		Timeline: []claim.TimelineEvent{
			{Type: claim.EventInvoice, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			{Type: claim.EventPaymentDue, Date: due},
		},
	}
	store.claims[state.ID] = state
	return state
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndGetClaim(t *testing.T) {
	router, store := newTestRouter(t)
	state := seedClaim(t, store)
	state.ID = ""

	rec := doJSON(t, router, http.MethodPost, "/api/v1/claims/", state)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created claim.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/claims/"+string(created.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateClaimValidationFailure(t *testing.T) {
	router, store := newTestRouter(t)
	state := seedClaim(t, store)
	state.ID = ""
	state.Claimant.Name = ""

	rec := doJSON(t, router, http.MethodPost, "/api/v1/claims/", state)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Code   string   `json:"code"`
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(appErrors.CodeValidation), resp.Code)
}

func TestInterestEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	state := seedClaim(t, store)

	rec := doJSON(t, router, http.MethodPost,
		"/api/v1/claims/"+string(state.ID)+"/interest?as_of=2024-05-10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result interest.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, interest.BasisB2B, result.RateBasis)
	assert.Equal(t, 100, result.DaysOverdue)
	assert.Equal(t, "34.93", result.TotalInterest.StringFixed(2))
}

func TestInterestIndeterminateBasisIs422(t *testing.T) {
	router, store := newTestRouter(t)
	state := seedClaim(t, store)
	state.Defendant.Type = ""
	store.claims[state.ID] = state

	rec := doJSON(t, router, http.MethodPost,
		"/api/v1/claims/"+string(state.ID)+"/interest", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestInterestUnknownClaimIs404(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost,
		"/api/v1/claims/"+string(common.NewID())+"/interest", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInterestBadAsOfIs400(t *testing.T) {
	router, store := newTestRouter(t)
	state := seedClaim(t, store)
	rec := doJSON(t, router, http.MethodPost,
		"/api/v1/claims/"+string(state.ID)+"/interest?as_of=garbage", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimelineValidateEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	state := seedClaim(t, store)

	rec := doJSON(t, router, http.MethodPost,
		"/api/v1/claims/"+string(state.ID)+"/timeline/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report claims.TimelineReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Consistent)
}

func TestDeadlineSyncEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	state := seedClaim(t, store)

	rec := doJSON(t, router, http.MethodPost,
		"/api/v1/claims/"+string(state.ID)+"/deadlines/sync", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result claims.SyncResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Deadlines)
	assert.Equal(t, len(result.Deadlines), result.Created)

	rec = doJSON(t, router, http.MethodGet,
		"/api/v1/claims/"+string(state.ID)+"/deadlines", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRecommendationEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	state := seedClaim(t, store)

	rec := doJSON(t, router, http.MethodPost,
		"/api/v1/claims/"+string(state.ID)+"/recommendation?as_of=2024-05-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var recommendation document.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recommendation))
	assert.NotEmpty(t, recommendation.Stage)
	assert.NotEmpty(t, recommendation.PrimaryDocument)
}

func TestGenerateDocumentEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	state := seedClaim(t, store)

	rec := doJSON(t, router, http.MethodPost,
		"/api/v1/claims/"+string(state.ID)+"/documents/lba", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc claim.GeneratedDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, claim.DocLBA, doc.DocumentType)
	assert.NotEmpty(t, doc.Sections)
}

func TestGenerateDocumentUnknownTypeIs400(t *testing.T) {
	router, store := newTestRouter(t)
	state := seedClaim(t, store)

	rec := doJSON(t, router, http.MethodPost,
		"/api/v1/claims/"+string(state.ID)+"/documents/subpoena", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFillN1NotConfiguredIs500(t *testing.T) {
	router, store := newTestRouter(t)
	state := seedClaim(t, store)

	rec := doJSON(t, router, http.MethodPost,
		"/api/v1/claims/"+string(state.ID)+"/documents/form_n1/n1.pdf", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDeleteClaim(t *testing.T) {
	router, store := newTestRouter(t)
	state := seedClaim(t, store)

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/claims/"+string(state.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, store.claims, state.ID)
}
