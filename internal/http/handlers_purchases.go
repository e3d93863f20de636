package http

import (
	"net/http"

	"contas/internal/core"
)

type createPurchaseRequest struct {
	CreditCardID int64    `json:"credit_card_id"`
	Description  string   `json:"description"`
	Amount       string   `json:"amount"`
	PurchaseDate string   `json:"purchase_date"`
	Installments int      `json:"installments"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
}

// updatePurchaseRequest is a partial update: empty strings, zero installments
// and nil tags keep the stored value.
type updatePurchaseRequest struct {
	Description  string   `json:"description"`
	Amount       string   `json:"amount"`
	PurchaseDate string   `json:"purchase_date"`
	Installments int      `json:"installments"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
}

type installmentResponse struct {
	ID          int64  `json:"id"`
	Number      int    `json:"number"`
	AmountCents int64  `json:"amount_cents"`
	DueDate     string `json:"due_date"`
	Period      string `json:"period"`
	BillID      int64  `json:"bill_id,omitempty"`
}

type createWalletRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+err.Error())
		return
	}
	purchaseDate, err := core.ParseDate(req.PurchaseDate)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid purchase_date")
		return
	}

	installments := req.Installments
	if installments == 0 {
		installments = 1
	}

	p := core.Purchase{
		CreditCardID: req.CreditCardID,
		Description:  sanitizeInput(req.Description),
		Amount:       core.Money{Cents: cents},
		PurchaseDate: purchaseDate,
		Installments: installments,
		Category:     sanitizeInput(req.Category),
		Tags:         req.Tags,
	}

	id, err := s.purchases.CreatePurchase(r.Context(), p)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updatePurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := s.purchases.GetPurchase(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if req.Description != "" {
		p.Description = sanitizeInput(req.Description)
	}
	if req.Amount != "" {
		cents, err := core.ParseDecimalToCents(req.Amount)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+err.Error())
			return
		}
		p.Amount = core.Money{Cents: cents}
	}
	if req.PurchaseDate != "" {
		if p.PurchaseDate, err = core.ParseDate(req.PurchaseDate); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid purchase_date")
			return
		}
	}
	if req.Installments != 0 {
		p.Installments = req.Installments
	}
	if req.Category != "" {
		p.Category = sanitizeInput(req.Category)
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}

	if err := s.purchases.UpdatePurchase(r.Context(), p); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.purchases.DeletePurchase(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListInstallments(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	installments, err := s.purchases.ListInstallments(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]installmentResponse, 0, len(installments))
	for _, inst := range installments {
		out = append(out, installmentResponse{
			ID:          inst.ID,
			Number:      inst.Number,
			AmountCents: inst.Amount.Cents,
			DueDate:     inst.DueDate.String(),
			Period:      inst.Period.String(),
			BillID:      inst.BillID,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var req createWalletRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := s.transactions.CreateWallet(r.Context(), core.Wallet{Name: sanitizeInput(req.Name)})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}
