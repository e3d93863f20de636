package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"contas/internal/billing"
	"contas/internal/core"
	"contas/internal/storage"
)

// ImportService loads purchases and transactions in bulk, typically from
// seed fixtures or another system's export. Bad rows are skipped and counted,
// not fatal.
type ImportService struct {
	storage      *storage.SQLiteRepository
	purchases    *PurchaseService
	transactions *TransactionService
	billing      *BillingService
	now          func() time.Time
}

func NewImportService(storage *storage.SQLiteRepository, purchases *PurchaseService, transactions *TransactionService, billingSvc *BillingService) *ImportService {
	return &ImportService{
		storage:      storage,
		purchases:    purchases,
		transactions: transactions,
		billing:      billingSvc,
		now:          time.Now,
	}
}

type ImportResult struct {
	Imported int
	Failed   int
}

// ImportPurchases creates each purchase and then closes any billing period
// that is already due for the affected cards, so imported history lands on
// bills right away. suppressAlerts silences the closed-bill notifications
// the backlog close would otherwise fire, one per historical statement.
func (s *ImportService) ImportPurchases(ctx context.Context, items []core.Purchase, suppressAlerts bool) (ImportResult, error) {
	var result ImportResult
	cardIDs := make(map[int64]bool)

	for i, p := range items {
		if _, err := s.purchases.CreatePurchase(ctx, p); err != nil {
			slog.WarnContext(ctx, "Skipping purchase during import",
				"index", i, "description", p.Description, "error", err)
			result.Failed++
			continue
		}
		cardIDs[p.CreditCardID] = true
		result.Imported++
	}

	today := core.DateOf(s.now())
	for cardID := range cardIDs {
		if err := s.closeDuePeriods(ctx, cardID, today, suppressAlerts); err != nil {
			slog.ErrorContext(ctx, "Failed to close periods after import",
				"card_id", cardID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Purchase import complete",
		"imported", result.Imported, "failed", result.Failed)

	return result, nil
}

// ImportTransactions bulk-creates expense/income records.
func (s *ImportService) ImportTransactions(ctx context.Context, items []core.Transaction) (ImportResult, error) {
	var result ImportResult

	for i, t := range items {
		if _, err := s.transactions.CreateTransaction(ctx, t); err != nil {
			slog.WarnContext(ctx, "Skipping transaction during import",
				"index", i, "description", t.Description, "error", err)
			result.Failed++
			continue
		}
		result.Imported++
	}

	slog.InfoContext(ctx, "Transaction import complete",
		"imported", result.Imported, "failed", result.Failed)

	return result, nil
}

// closeDuePeriods closes every past period of the card that still has
// unbilled installments, oldest first, up to the current cycle. Periods that
// are already closed or have nothing to bill are skipped.
func (s *ImportService) closeDuePeriods(ctx context.Context, cardID int64, today core.Date, suppressAlerts bool) error {
	card, err := s.storage.GetCard(ctx, cardID)
	if err != nil {
		return err
	}

	current := billing.PeriodClosingIn(card, today.Year(), today.Month())

	// Backlog window: a year of history is plenty for imports; anything
	// older has no unbilled installments to pick up anyway.
	year, month := core.AddMonths(current.Year, current.Month, -12)
	period := core.BillingPeriod{Year: year, Month: month}

	for period.Compare(current) < 0 || (period == current && billing.DueForClose(card, today)) {
		_, err := s.billing.ClosePeriod(ctx, cardID, period, suppressAlerts)
		if err != nil && !errors.Is(err, core.ErrNoItems) && !errors.Is(err, core.ErrDuplicateBill) {
			return err
		}
		y, m := core.AddMonths(period.Year, period.Month, 1)
		period = core.BillingPeriod{Year: y, Month: m}
	}
	return nil
}
