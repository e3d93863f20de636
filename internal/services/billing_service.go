package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/amqp"
	"contas/internal/billing"
	"contas/internal/core"
	"contas/internal/storage"
)

// BillingService owns the statement lifecycle: closing periods into bills,
// registering payments and deleting bills that were closed by mistake.
type BillingService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	now        func() time.Time
}

func NewBillingService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *BillingService {
	return &BillingService{
		storage:    storage,
		amqpClient: amqpClient,
		now:        time.Now,
	}
}

// ClosePeriod turns a card's unbilled installments for the period into a
// bill. The bill insert and the installment association are one transaction.
// Returns core.ErrDuplicateBill when the period is already closed and
// core.ErrNoItems when there is nothing to bill. suppressAlert skips the
// closed-bill notification, used by bulk imports of historical data.
func (s *BillingService) ClosePeriod(ctx context.Context, cardID int64, period core.BillingPeriod, suppressAlert bool) (core.Bill, error) {
	card, err := s.storage.GetCard(ctx, cardID)
	if err != nil {
		return core.Bill{}, fmt.Errorf("load card: %w", err)
	}

	closingDate := billing.ClosingDate(card, period)
	dueDate := billing.DueDate(card, period)

	if _, err := s.storage.FindBillByClosing(ctx, cardID, closingDate); err == nil {
		return core.Bill{}, fmt.Errorf("card %d closing %s: %w", cardID, closingDate, core.ErrDuplicateBill)
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.Bill{}, fmt.Errorf("check existing bill: %w", err)
	}

	installments, err := s.storage.ListUnbilledInstallments(ctx, cardID, period)
	if err != nil {
		return core.Bill{}, fmt.Errorf("load installments: %w", err)
	}
	if len(installments) == 0 {
		return core.Bill{}, fmt.Errorf("card %d period %s: %w", cardID, period, core.ErrNoItems)
	}

	bill := core.Bill{
		CreditCardID: cardID,
		ClosingDate:  closingDate,
		DueDate:      dueDate,
		TotalAmount:  core.Money{Cents: sumInstallments(installments)},
	}

	ids := make([]int64, 0, len(installments))
	for _, inst := range installments {
		ids = append(ids, inst.ID)
	}

	billID, err := s.storage.CreateBillWithItems(ctx, bill, ids)
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}
	bill.ID = billID

	slog.InfoContext(ctx, "Closed billing period",
		"bill_id", billID,
		"card_id", cardID,
		"period", period.String(),
		"closing_date", closingDate.String(),
		"total_cents", bill.TotalAmount.Cents,
		"items", len(installments))

	if !suppressAlert {
		s.publishAlert(ctx, amqp.NewBillAlertMessage(
			amqp.AlertBillClosed, billID, cardID, bill.TotalAmount.Cents, dueDate.String()))
	}

	return bill, nil
}

// RegisterPayment records a wallet payment against a bill. Payments that
// would push the paid total past the bill total are rejected with
// core.ErrPaymentExceedsBalance.
func (s *BillingService) RegisterPayment(ctx context.Context, p core.BillPayment) (int64, error) {
	if err := p.Amount.Validate(); err != nil {
		return 0, err
	}
	if err := p.PaymentDate.Validate(); err != nil {
		return 0, fmt.Errorf("invalid payment date: %w", err)
	}

	bill, err := s.storage.GetBill(ctx, p.BillID)
	if err != nil {
		return 0, err
	}
	if _, err := s.storage.GetWallet(ctx, p.WalletID); err != nil {
		return 0, err
	}

	if remaining := bill.TotalAmount.Cents - bill.PaidAmount.Cents; p.Amount.Cents > remaining {
		return 0, fmt.Errorf("payment %d exceeds remaining %d cents: %w",
			p.Amount.Cents, remaining, core.ErrPaymentExceedsBalance)
	}

	id, err := s.storage.RegisterPayment(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("register payment: %w", err)
	}

	slog.InfoContext(ctx, "Registered bill payment",
		"payment_id", id,
		"bill_id", p.BillID,
		"wallet_id", p.WalletID,
		"amount_cents", p.Amount.Cents)

	return id, nil
}

// DeleteBill reopens a closed period: installments go back to the unbilled
// pool and the bill disappears. Bills with payments cannot be deleted.
func (s *BillingService) DeleteBill(ctx context.Context, billID int64) error {
	if _, err := s.storage.GetBill(ctx, billID); err != nil {
		return err
	}

	n, err := s.storage.CountPayments(ctx, billID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("bill %d has %d payments: %w", billID, n, core.ErrBillHasPayments)
	}

	if err := s.storage.DeleteBill(ctx, billID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Deleted bill", "bill_id", billID)
	return nil
}

// OverrideStatus pins a bill's status manually. An empty status clears the
// override and the status is computed again from amounts and dates.
func (s *BillingService) OverrideStatus(ctx context.Context, billID int64, status core.BillStatus) error {
	if status != "" && !core.ValidBillStatus(status) {
		return fmt.Errorf("invalid bill status %q", status)
	}
	if err := s.storage.SetStatusOverride(ctx, billID, status); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Set bill status override", "bill_id", billID, "status", string(status))
	return nil
}

func (s *BillingService) GetBill(ctx context.Context, billID int64) (core.Bill, error) {
	return s.storage.GetBill(ctx, billID)
}

func (s *BillingService) ListBills(ctx context.Context, cardID int64) ([]core.Bill, error) {
	return s.storage.ListBillsByCard(ctx, cardID)
}

func (s *BillingService) ListPayments(ctx context.Context, billID int64) ([]core.BillPayment, error) {
	return s.storage.ListPayments(ctx, billID)
}

func (s *BillingService) publishAlert(ctx context.Context, msg *amqp.BillAlertMessage) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping bill alert", "kind", msg.Kind)
		return
	}
	if err := s.amqpClient.PublishBillAlert(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish bill alert",
			"kind", msg.Kind, "bill_id", msg.BillID, "error", err)
		// Don't fail the operation - the bill is already persisted
	}
}

func sumInstallments(installments []core.Installment) int64 {
	var total int64
	for _, inst := range installments {
		total += inst.Amount.Cents
	}
	return total
}

// Close closes both storage and AMQP connections
func (s *BillingService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close billing service: %v", errs)
	}

	return nil
}
