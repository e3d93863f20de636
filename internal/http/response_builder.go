// Package http provides HTTP server and handler implementations.
//
// This file implements JSON response writing and the mapping from domain
// errors to HTTP status codes.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"contas/internal/core"
)

// errorBody is the uniform JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// listEnvelope wraps paginated collections.
type listEnvelope struct {
	Items   any `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

func writeList(w http.ResponseWriter, items any, total int, p PageParams) {
	writeJSON(w, http.StatusOK, listEnvelope{
		Items:   items,
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
	})
}

// writeDomainError maps domain sentinel errors to HTTP status codes. Unknown
// errors become 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrDuplicateBill):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrBillClosed),
		errors.Is(err, core.ErrBillHasPayments):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrNoItems),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidRecurrence),
		errors.Is(err, core.ErrInvalidInstallments),
		errors.Is(err, core.ErrInvalidClosingDay),
		errors.Is(err, core.ErrInvalidDueDay),
		errors.Is(err, core.ErrPaymentExceedsBalance):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
