package http

import (
	"net/http"
	"strconv"
	"time"

	"contas/internal/core"
)

type createCardRequest struct {
	Name       string `json:"name"`
	Limit      string `json:"limit"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
}

type cardResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	LimitCents int64  `json:"limit_cents"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
}

type usageResponse struct {
	UsedCents       int64   `json:"used_cents"`
	AvailableCents  int64   `json:"available_cents"`
	UsagePercentage float64 `json:"usage_percentage"`
}

type closePeriodRequest struct {
	Year           int  `json:"year"`
	Month          int  `json:"month"`
	SuppressAlerts bool `json:"suppress_alerts"`
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	limitCents, err := core.ParseDecimalToCents(req.Limit)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid limit: "+err.Error())
		return
	}

	card := core.CreditCard{
		Name:       sanitizeInput(req.Name),
		Limit:      core.Money{Cents: limitCents},
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	}
	if err := card.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	id, err := s.purchases.CreateCard(r.Context(), card)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.purchases.ListCards(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardResponse{
			ID:         c.ID,
			Name:       c.Name,
			LimitCents: c.Limit.Cents,
			ClosingDay: c.ClosingDay,
			DueDay:     c.DueDay,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCardUsage(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := usageCacheKey(id)
	usage, found := s.usageCache.Get(key)
	if !found {
		usage, err = s.transactions.CardUsage(r.Context(), id, time.Now())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.usageCache.Set(key, usage)
	}

	writeJSON(w, http.StatusOK, usageResponse{
		UsedCents:       usage.UsedAmount.Cents,
		AvailableCents:  usage.AvailableLimit.Cents,
		UsagePercentage: usage.UsagePercentage,
	})
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bills, err := s.billing.ListBills(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	now := time.Now()
	out := make([]billResponse, 0, len(bills))
	for _, b := range bills {
		out = append(out, toBillResponse(b, now))
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClosePeriod(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req closePeriodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 1 {
		writeError(w, http.StatusBadRequest, "invalid period")
		return
	}

	period := core.BillingPeriod{Year: req.Year, Month: req.Month}
	bill, err := s.billing.ClosePeriod(r.Context(), id, period, req.SuppressAlerts)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBillResponse(bill, time.Now()))
}

func usageCacheKey(cardID int64) string {
	return "usage:" + strconv.FormatInt(cardID, 10)
}
