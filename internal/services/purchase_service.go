package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/billing"
	"contas/internal/core"
	"contas/internal/storage"
)

// PurchaseService orchestrates credit-card purchase operations: splitting new
// purchases into installments and guarding edits against closed statements.
type PurchaseService struct {
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewPurchaseService(storage *storage.SQLiteRepository) *PurchaseService {
	return &PurchaseService{
		storage: storage,
		now:     time.Now,
	}
}

// CreateCard registers a credit card with its billing cycle configuration.
func (s *PurchaseService) CreateCard(ctx context.Context, card core.CreditCard) (int64, error) {
	if err := card.Validate(); err != nil {
		return 0, err
	}
	id, err := s.storage.CreateCard(ctx, card)
	if err != nil {
		return 0, fmt.Errorf("save card: %w", err)
	}
	slog.InfoContext(ctx, "Created credit card",
		"id", id, "name", card.Name, "closing_day", card.ClosingDay, "due_day", card.DueDay)
	return id, nil
}

func (s *PurchaseService) ListCards(ctx context.Context) ([]core.CreditCard, error) {
	return s.storage.ListCards(ctx)
}

func (s *PurchaseService) ListInstallments(ctx context.Context, purchaseID int64) ([]core.Installment, error) {
	if _, err := s.storage.GetPurchase(ctx, purchaseID); err != nil {
		return nil, err
	}
	return s.storage.ListInstallmentsByPurchase(ctx, purchaseID)
}

// CreatePurchase validates the purchase, computes its installment schedule
// from the card's billing cycle and persists everything atomically.
func (s *PurchaseService) CreatePurchase(ctx context.Context, p core.Purchase) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	card, err := s.storage.GetCard(ctx, p.CreditCardID)
	if err != nil {
		return 0, fmt.Errorf("load card: %w", err)
	}

	installments := billing.Schedule(p, card)

	id, err := s.storage.CreatePurchaseWithInstallments(ctx, p, installments)
	if err != nil {
		return 0, fmt.Errorf("save purchase: %w", err)
	}

	slog.InfoContext(ctx, "Created purchase",
		"id", id,
		"card_id", p.CreditCardID,
		"amount_cents", p.Amount.Cents,
		"installments", p.Installments)

	return id, nil
}

// GetPurchase loads one purchase.
func (s *PurchaseService) GetPurchase(ctx context.Context, id int64) (core.Purchase, error) {
	return s.storage.GetPurchase(ctx, id)
}

// UpdatePurchase rewrites a purchase and reschedules its installments from the
// card's billing cycle. Rejected with core.ErrBillClosed when any installment
// sits on a bill that is no longer pending; pending bills the old installments
// were on get their totals recomputed.
func (s *PurchaseService) UpdatePurchase(ctx context.Context, p core.Purchase) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.ensureEditable(ctx, p.ID); err != nil {
		return err
	}

	card, err := s.storage.GetCard(ctx, p.CreditCardID)
	if err != nil {
		return fmt.Errorf("load card: %w", err)
	}

	installments := billing.Schedule(p, card)

	if err := s.storage.UpdatePurchaseWithInstallments(ctx, p, installments); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Updated purchase",
		"id", p.ID,
		"amount_cents", p.Amount.Cents,
		"installments", p.Installments)
	return nil
}

// DeletePurchase removes a purchase and its installments. Same guard as
// UpdatePurchase: closed statements are immutable history.
func (s *PurchaseService) DeletePurchase(ctx context.Context, id int64) error {
	if err := s.ensureEditable(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeletePurchase(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Deleted purchase", "id", id)
	return nil
}

func (s *PurchaseService) ensureEditable(ctx context.Context, purchaseID int64) error {
	installments, err := s.storage.ListInstallmentsByPurchase(ctx, purchaseID)
	if err != nil {
		return fmt.Errorf("load installments: %w", err)
	}
	now := s.now()
	for _, inst := range installments {
		if inst.BillID == 0 {
			continue
		}
		bill, err := s.storage.GetBill(ctx, inst.BillID)
		if err != nil {
			return fmt.Errorf("load bill %d: %w", inst.BillID, err)
		}
		if !bill.Editable(now) {
			return fmt.Errorf("installment %d on bill %d (%s): %w",
				inst.Number, bill.ID, bill.Status(now), core.ErrBillClosed)
		}
	}
	return nil
}
