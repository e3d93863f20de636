package http

import (
	"net/http"
	"strings"
	"time"

	"contas/internal/core"
)

type createTransactionRequest struct {
	Flow         string   `json:"flow"`
	Kind         string   `json:"kind"`
	Description  string   `json:"description"`
	Amount       string   `json:"amount"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	WalletID     int64    `json:"wallet_id"`
	CreditCardID int64    `json:"credit_card_id"`
	TransferID   string   `json:"transfer_id"`
	Date         string   `json:"date"`
	DayOfMonth   int      `json:"day_of_month"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
}

type occurrenceResponse struct {
	OccurrenceID string   `json:"occurrence_id"`
	OriginalID   int64    `json:"original_id"`
	Flow         string   `json:"flow"`
	Kind         string   `json:"kind"`
	Description  string   `json:"description"`
	AmountCents  int64    `json:"amount_cents"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	WalletID     int64    `json:"wallet_id"`
	Date         string   `json:"date"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+err.Error())
		return
	}

	t := core.Transaction{
		Flow:         core.Flow(strings.ToUpper(req.Flow)),
		Kind:         core.Kind(strings.ToUpper(req.Kind)),
		Description:  sanitizeInput(req.Description),
		Amount:       core.Money{Cents: cents},
		Category:     sanitizeInput(req.Category),
		Tags:         req.Tags,
		WalletID:     req.WalletID,
		CreditCardID: req.CreditCardID,
		TransferID:   req.TransferID,
		DayOfMonth:   req.DayOfMonth,
	}
	if t.Date, err = parseOptionalDate(req.Date); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}
	if t.StartDate, err = parseOptionalDate(req.StartDate); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid start_date")
		return
	}
	if t.EndDate, err = parseOptionalDate(req.EndDate); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid end_date")
		return
	}

	id, err := s.transactions.CreateTransaction(r.Context(), t)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateOccurrences()
	if t.CreditCardID != 0 {
		s.usageCache.Delete(usageCacheKey(t.CreditCardID))
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// handleListExpanded lists the occurrences of a window: punctual records plus
// recurring firings, transfers excluded.
func (s *Server) handleListExpanded(w http.ResponseWriter, r *http.Request) {
	flow := core.Flow(strings.ToUpper(r.URL.Query().Get("flow")))
	if flow != core.FlowExpense && flow != core.FlowIncome {
		writeError(w, http.StatusBadRequest, "flow must be EXPENSE or INCOME")
		return
	}

	window, err := ParseWindowParams(r.URL.Query(), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page := ParsePageParams(r.URL.Query())

	key := occurrenceCacheKey(flow, window)
	occurrences, found := s.occurrenceCache.Get(key)
	if !found {
		occurrences, err = s.transactions.ListExpanded(r.Context(), flow, window.From, window.To)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.occurrenceCache.Set(key, occurrences)
	}

	pageItems, total := Slice(occurrences, page)
	out := make([]occurrenceResponse, 0, len(pageItems))
	for _, occ := range pageItems {
		out = append(out, occurrenceResponse{
			OccurrenceID: occ.OccurrenceID,
			OriginalID:   occ.OriginalID,
			Flow:         string(occ.Flow),
			Kind:         string(occ.Kind),
			Description:  occ.Description,
			AmountCents:  occ.Amount.Cents,
			Category:     occ.Category,
			Tags:         occ.Tags,
			WalletID:     occ.WalletID,
			Date:         occ.Date.String(),
		})
	}

	writeList(w, out, total, page)
}

func occurrenceCacheKey(flow core.Flow, window WindowParams) string {
	return string(flow) + ":" + window.From.String() + ":" + window.To.String()
}

func parseOptionalDate(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
