package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paidup/paidup/internal/application/claims"
	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	"github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// ClaimHandler exposes the engine's operations over a stored claim.
type ClaimHandler struct {
	service *claims.Service
	logger  logging.Logger
}

func NewClaimHandler(service *claims.Service, logger logging.Logger) *ClaimHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ClaimHandler{service: service, logger: logger.Named("http.claims")}
}

func claimID(r *http.Request) common.ID {
	return common.ID(chi.URLParam(r, "claimID"))
}

// ─────────────────────────────────────────────────────────────────────────────
// Claim CRUD
// ─────────────────────────────────────────────────────────────────────────────

func (h *ClaimHandler) Create(w http.ResponseWriter, r *http.Request) {
	var state claim.State
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeError(w, http.StatusBadRequest, errors.NewValidation("invalid request body"))
		return
	}
	state.ID = ""

	saved, err := h.service.SaveClaim(r.Context(), state)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *ClaimHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.GetClaim(r.Context(), claimID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *ClaimHandler) Update(w http.ResponseWriter, r *http.Request) {
	var state claim.State
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeError(w, http.StatusBadRequest, errors.NewValidation("invalid request body"))
		return
	}
	state.ID = claimID(r)

	if _, err := h.service.GetClaim(r.Context(), state.ID); err != nil {
		writeAppError(w, err)
		return
	}
	saved, err := h.service.SaveClaim(r.Context(), state)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type claimListResponse struct {
	Claims   []claim.State `json:"claims"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

func (h *ClaimHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	states, total, err := h.service.ListClaims(r.Context(), p)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claimListResponse{
		Claims: states, Total: total, Page: p.Page, PageSize: p.PageSize,
	})
}

func (h *ClaimHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteClaim(r.Context(), claimID(r)); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─────────────────────────────────────────────────────────────────────────────
// Engine operations
// ─────────────────────────────────────────────────────────────────────────────

func (h *ClaimHandler) CalculateInterest(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseAsOf(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	result, err := h.service.CalculateInterest(r.Context(), claimID(r), asOf)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ClaimHandler) ValidateTimeline(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ValidateTimeline(r.Context(), claimID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ClaimHandler) SyncDeadlines(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SyncDeadlines(r.Context(), claimID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ClaimHandler) ListDeadlines(w http.ResponseWriter, r *http.Request) {
	deadlines, err := h.service.ListDeadlines(r.Context(), claimID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deadlines)
}

func (h *ClaimHandler) DismissDeadline(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "deadlineID"))
	if err := h.service.DismissDeadline(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClaimHandler) CompleteDeadline(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "deadlineID"))
	if err := h.service.CompleteDeadline(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClaimHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseAsOf(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	rec, err := h.service.Recommend(r.Context(), claimID(r), asOf)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *ClaimHandler) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	docType := claim.DocumentType(chi.URLParam(r, "documentType"))
	doc, err := h.service.GenerateDocument(r.Context(), claimID(r), docType)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// FillN1 streams the rendered Form N1 PDF.
func (h *ClaimHandler) FillN1(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseAsOf(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	pdf, err := h.service.FillN1(r.Context(), claimID(r), asOf)
	if err != nil {
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="form-n1.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.logger.Warn("pdf response truncated", logging.Err(err))
	}
}
