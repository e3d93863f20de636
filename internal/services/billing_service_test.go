package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/storage"
)

func TestNewBillingService(t *testing.T) {
	svc := NewBillingService(nil, nil)

	if svc == nil {
		t.Fatal("NewBillingService() returned nil")
	}
	if svc.now == nil {
		t.Error("clock should default to time.Now")
	}
}

func TestSumInstallments(t *testing.T) {
	tests := []struct {
		name         string
		installments []core.Installment
		want         int64
	}{
		{"empty", nil, 0},
		{"single", []core.Installment{{Amount: core.Money{Cents: 3334}}}, 3334},
		{
			"remainder split sums back",
			[]core.Installment{
				{Amount: core.Money{Cents: 3334}},
				{Amount: core.Money{Cents: 3333}},
				{Amount: core.Money{Cents: 3333}},
			},
			10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sumInstallments(tt.installments); got != tt.want {
				t.Errorf("sumInstallments() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOverrideStatus_RejectsUnknownStatus(t *testing.T) {
	svc := NewBillingService(nil, nil)

	if err := svc.OverrideStatus(context.Background(), 1, "CANCELLED"); err == nil {
		t.Error("unknown status should be rejected before touching storage")
	}
}

func TestPublishAlert_NilClientDoesNotPanic(t *testing.T) {
	svc := NewBillingService(nil, nil)

	msg := amqp.NewBillAlertMessage(amqp.AlertBillClosed, 1, 1, 10000, "2025-11-05")
	svc.publishAlert(context.Background(), msg)
}

func TestBillingService_Close(t *testing.T) {
	svc := NewBillingService(nil, nil)

	if err := svc.Close(); err != nil {
		t.Errorf("Close() with nothing to close should succeed, got %v", err)
	}
}

// newBillingFixture opens a migrated SQLite database in a temp directory with
// one card (closes on the 25th, due on the 5th) and one wallet.
func newBillingFixture(t *testing.T) (*storage.SQLiteRepository, int64, int64) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "contas.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	cardID, err := repo.CreateCard(ctx, core.CreditCard{
		Name:       "Nubank",
		Limit:      core.Money{Cents: 500000},
		ClosingDay: 25,
		DueDay:     5,
	})
	if err != nil {
		t.Fatalf("CreateCard() error = %v", err)
	}
	walletID, err := repo.CreateWallet(ctx, core.Wallet{Name: "Conta corrente"})
	if err != nil {
		t.Fatalf("CreateWallet() error = %v", err)
	}
	return repo, cardID, walletID
}

func TestClosePeriod(t *testing.T) {
	repo, cardID, _ := newBillingFixture(t)
	ctx := context.Background()

	purchases := NewPurchaseService(repo)
	purchaseID, err := purchases.CreatePurchase(ctx, core.Purchase{
		CreditCardID: cardID,
		Description:  "notebook",
		Amount:       core.Money{Cents: 10000},
		PurchaseDate: core.NewDate(2025, 10, 10),
		Installments: 3,
	})
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}

	svc := NewBillingService(repo, nil)
	period := core.BillingPeriod{Year: 2025, Month: 10}

	bill, err := svc.ClosePeriod(ctx, cardID, period, true)
	if err != nil {
		t.Fatalf("ClosePeriod() error = %v", err)
	}
	if bill.TotalAmount.Cents != 3334 {
		t.Errorf("bill total = %d, want 3334 (first installment carries the remainder)",
			bill.TotalAmount.Cents)
	}
	if bill.ClosingDate.String() != "2025-09-25" {
		t.Errorf("closing date = %s, want 2025-09-25", bill.ClosingDate)
	}
	if bill.DueDate.String() != "2025-10-05" {
		t.Errorf("due date = %s, want 2025-10-05", bill.DueDate)
	}

	// The close stamps the bill id on the period's installments and leaves
	// the later ones in the unbilled pool.
	installments, err := repo.ListInstallmentsByPurchase(ctx, purchaseID)
	if err != nil {
		t.Fatalf("ListInstallmentsByPurchase() error = %v", err)
	}
	if len(installments) != 3 {
		t.Fatalf("got %d installments, want 3", len(installments))
	}
	if installments[0].BillID != bill.ID {
		t.Errorf("first installment BillID = %d, want %d", installments[0].BillID, bill.ID)
	}
	for _, inst := range installments[1:] {
		if inst.BillID != 0 {
			t.Errorf("installment %d should stay unbilled, got bill %d", inst.Number, inst.BillID)
		}
	}

	if _, err := svc.ClosePeriod(ctx, cardID, period, true); !errors.Is(err, core.ErrDuplicateBill) {
		t.Errorf("second close error = %v, want ErrDuplicateBill", err)
	}

	empty := core.BillingPeriod{Year: 2026, Month: 1}
	if _, err := svc.ClosePeriod(ctx, cardID, empty, true); !errors.Is(err, core.ErrNoItems) {
		t.Errorf("empty period close error = %v, want ErrNoItems", err)
	}
}

func TestRegisterPayment_OverpayRejected(t *testing.T) {
	repo, cardID, walletID := newBillingFixture(t)
	ctx := context.Background()

	purchases := NewPurchaseService(repo)
	if _, err := purchases.CreatePurchase(ctx, core.Purchase{
		CreditCardID: cardID,
		Description:  "mercado",
		Amount:       core.Money{Cents: 3334},
		PurchaseDate: core.NewDate(2025, 10, 10),
		Installments: 1,
	}); err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}

	svc := NewBillingService(repo, nil)
	bill, err := svc.ClosePeriod(ctx, cardID, core.BillingPeriod{Year: 2025, Month: 10}, true)
	if err != nil {
		t.Fatalf("ClosePeriod() error = %v", err)
	}

	payment := core.BillPayment{
		BillID:      bill.ID,
		WalletID:    walletID,
		Amount:      core.Money{Cents: 2000},
		PaymentDate: core.NewDate(2025, 10, 3),
	}
	if _, err := svc.RegisterPayment(ctx, payment); err != nil {
		t.Fatalf("RegisterPayment() error = %v", err)
	}

	got, err := svc.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetBill() error = %v", err)
	}
	if got.PaidAmount.Cents != 2000 {
		t.Errorf("paid total = %d, want 2000", got.PaidAmount.Cents)
	}

	// 1334 cents remain; another 2000 overshoots.
	if _, err := svc.RegisterPayment(ctx, payment); !errors.Is(err, core.ErrPaymentExceedsBalance) {
		t.Errorf("overpay error = %v, want ErrPaymentExceedsBalance", err)
	}

	// The guard also lives in the payment transaction itself, so a write
	// racing past the service check still cannot exceed the total.
	if _, err := repo.RegisterPayment(ctx, payment); !errors.Is(err, core.ErrPaymentExceedsBalance) {
		t.Errorf("storage overpay error = %v, want ErrPaymentExceedsBalance", err)
	}

	payments, err := svc.ListPayments(ctx, bill.ID)
	if err != nil {
		t.Fatalf("ListPayments() error = %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("rejected payments should leave no rows, got %d payments", len(payments))
	}
	if got, err = svc.GetBill(ctx, bill.ID); err != nil || got.PaidAmount.Cents != 2000 {
		t.Errorf("paid total after rejections = %d (err %v), want 2000", got.PaidAmount.Cents, err)
	}
}

func TestPurchaseEdits_RejectedOnNonPendingBill(t *testing.T) {
	repo, cardID, walletID := newBillingFixture(t)
	ctx := context.Background()

	purchases := NewPurchaseService(repo)
	purchases.now = func() time.Time {
		return time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	}

	purchaseID, err := purchases.CreatePurchase(ctx, core.Purchase{
		CreditCardID: cardID,
		Description:  "farmácia",
		Amount:       core.Money{Cents: 3334},
		PurchaseDate: core.NewDate(2025, 10, 10),
		Installments: 1,
	})
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}

	svc := NewBillingService(repo, nil)
	bill, err := svc.ClosePeriod(ctx, cardID, core.BillingPeriod{Year: 2025, Month: 10}, true)
	if err != nil {
		t.Fatalf("ClosePeriod() error = %v", err)
	}

	// A partial payment moves the bill out of PENDING and freezes its
	// purchases.
	if _, err := svc.RegisterPayment(ctx, core.BillPayment{
		BillID:      bill.ID,
		WalletID:    walletID,
		Amount:      core.Money{Cents: 1000},
		PaymentDate: core.NewDate(2025, 10, 1),
	}); err != nil {
		t.Fatalf("RegisterPayment() error = %v", err)
	}

	p, err := purchases.GetPurchase(ctx, purchaseID)
	if err != nil {
		t.Fatalf("GetPurchase() error = %v", err)
	}
	p.Description = "farmácia 24h"

	if err := purchases.UpdatePurchase(ctx, p); !errors.Is(err, core.ErrBillClosed) {
		t.Errorf("UpdatePurchase() error = %v, want ErrBillClosed", err)
	}
	if err := purchases.DeletePurchase(ctx, purchaseID); !errors.Is(err, core.ErrBillClosed) {
		t.Errorf("DeletePurchase() error = %v, want ErrBillClosed", err)
	}
}
