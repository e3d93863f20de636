package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"contas/internal/core"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", core.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("bill 3: %w", core.ErrNotFound), http.StatusNotFound},
		{"duplicate bill", core.ErrDuplicateBill, http.StatusConflict},
		{"bill closed", core.ErrBillClosed, http.StatusConflict},
		{"bill has payments", core.ErrBillHasPayments, http.StatusConflict},
		{"no items", core.ErrNoItems, http.StatusUnprocessableEntity},
		{"invalid amount", core.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{"overpayment", core.ErrPaymentExceedsBalance, http.StatusUnprocessableEntity},
		{"unknown error", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/bills/1", nil)

			writeDomainError(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if body.Error == "" {
				t.Error("error body should carry a message")
			}
		})
	}
}

func TestWriteDomainError_HidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bills/1", nil)

	writeDomainError(rec, req, fmt.Errorf("sql: database path /secret/contas.db locked"))

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body.Error != "internal error" {
		t.Errorf("error = %q, internal details should not leak", body.Error)
	}
}

func TestWriteList(t *testing.T) {
	rec := httptest.NewRecorder()

	writeList(rec, []string{"a", "b"}, 10, PageParams{Page: 2, PerPage: 2})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		Items   []string `json:"items"`
		Total   int      `json:"total"`
		Page    int      `json:"page"`
		PerPage int      `json:"per_page"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if len(envelope.Items) != 2 || envelope.Total != 10 || envelope.Page != 2 || envelope.PerPage != 2 {
		t.Errorf("envelope = %+v, want 2 items, total 10, page 2, per_page 2", envelope)
	}
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/wallets",
		strings.NewReader(`{"name": "Nubank", "surprise": true}`))

	var body createWalletRequest
	if decodeJSON(rec, req, &body) {
		t.Error("decodeJSON should reject unknown fields")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
