package http

import (
	"net/http"
	"strings"
	"time"

	"contas/internal/core"
)

type billResponse struct {
	ID           int64  `json:"id"`
	CreditCardID int64  `json:"credit_card_id"`
	ClosingDate  string `json:"closing_date"`
	DueDate      string `json:"due_date"`
	TotalCents   int64  `json:"total_cents"`
	PaidCents    int64  `json:"paid_cents"`
	Status       string `json:"status"`
}

type paymentRequest struct {
	WalletID    int64  `json:"wallet_id"`
	Amount      string `json:"amount"`
	PaymentDate string `json:"payment_date"`
	Description string `json:"description"`
}

type paymentResponse struct {
	ID          int64  `json:"id"`
	WalletID    int64  `json:"wallet_id"`
	AmountCents int64  `json:"amount_cents"`
	PaymentDate string `json:"payment_date"`
	Description string `json:"description"`
}

type overrideStatusRequest struct {
	Status string `json:"status"`
}

func toBillResponse(b core.Bill, now time.Time) billResponse {
	return billResponse{
		ID:           b.ID,
		CreditCardID: b.CreditCardID,
		ClosingDate:  b.ClosingDate.String(),
		DueDate:      b.DueDate.String(),
		TotalCents:   b.TotalAmount.Cents,
		PaidCents:    b.PaidAmount.Cents,
		Status:       string(b.Status(now)),
	}
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bill, err := s.billing.GetBill(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBillResponse(bill, time.Now()))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.billing.DeleteBill(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleOverrideStatus(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req overrideStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status := core.BillStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if err := s.billing.OverrideStatus(r.Context(), id, status); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payments, err := s.billing.ListPayments(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentResponse{
			ID:          p.ID,
			WalletID:    p.WalletID,
			AmountCents: p.Amount.Cents,
			PaymentDate: p.PaymentDate.String(),
			Description: p.Description,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRegisterPayment(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req paymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+err.Error())
		return
	}
	paymentDate, err := core.ParseDate(req.PaymentDate)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid payment_date")
		return
	}

	payment := core.BillPayment{
		BillID:      id,
		WalletID:    req.WalletID,
		Amount:      core.Money{Cents: cents},
		PaymentDate: paymentDate,
		Description: sanitizeInput(req.Description),
	}

	paymentID, err := s.billing.RegisterPayment(r.Context(), payment)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": paymentID})
}

type importPurchasesRequest struct {
	SuppressAlerts bool                    `json:"suppress_alerts"`
	Purchases      []createPurchaseRequest `json:"purchases"`
}

type importResponse struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

func (s *Server) handleImportPurchases(w http.ResponseWriter, r *http.Request) {
	var req importPurchasesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]core.Purchase, 0, len(req.Purchases))
	for _, pr := range req.Purchases {
		cents, err := core.ParseDecimalToCents(pr.Amount)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+err.Error())
			return
		}
		purchaseDate, err := core.ParseDate(pr.PurchaseDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid purchase_date")
			return
		}
		installments := pr.Installments
		if installments == 0 {
			installments = 1
		}
		items = append(items, core.Purchase{
			CreditCardID: pr.CreditCardID,
			Description:  sanitizeInput(pr.Description),
			Amount:       core.Money{Cents: cents},
			PurchaseDate: purchaseDate,
			Installments: installments,
			Category:     sanitizeInput(pr.Category),
			Tags:         pr.Tags,
		})
	}

	result, err := s.importer.ImportPurchases(r.Context(), items, req.SuppressAlerts)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		Imported: result.Imported,
		Failed:   result.Failed,
	})
}
