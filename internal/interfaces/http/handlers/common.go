package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// parsePagination reads page and page_size query parameters.
func parsePagination(r *http.Request) common.Pagination {
	p := common.Pagination{Page: 1, PageSize: 20}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			p.PageSize = n
		}
	}
	return p
}

// parseAsOf reads an optional as_of=YYYY-MM-DD query parameter.  Zero time
// means "today".
func parseAsOf(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("as_of")
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, errors.NewValidation("as_of must be a YYYY-MM-DD date", "as_of")
	}
	return t, nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the error body every endpoint returns.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, statusCode int, err error) {
	writeJSON(w, statusCode, ErrorResponse{
		Code:    string(errors.GetCode(err)),
		Message: err.Error(),
		Fields:  errors.FieldsOf(err),
	})
}

// writeAppError maps error codes onto HTTP statuses.  Indeterminate basis and
// incomplete data are semantic failures of an otherwise well-formed request,
// hence 422 rather than 400.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.IsValidation(err):
		writeError(w, http.StatusBadRequest, err)
	case errors.IsCode(err, errors.CodeIndeterminateBasis),
		errors.IsCode(err, errors.CodeIncompleteData):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.IsNotFound(err):
		writeError(w, http.StatusNotFound, err)
	case errors.IsCode(err, errors.CodeConflict):
		writeError(w, http.StatusConflict, err)
	case errors.IsCode(err, errors.CodeTemplateMismatch):
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeError(w, http.StatusInternalServerError,
			errors.New(errors.CodeInternal, "internal server error"))
	}
}
