// Package worker runs the periodic billing sweep: closing statements whose
// closing day has passed and alerting on bills that went overdue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"contas/internal/amqp"
	"contas/internal/billing"
	"contas/internal/core"
	"contas/internal/services"
	"contas/internal/storage"
)

// maxConcurrentCards bounds the per-card close fan-out.
const maxConcurrentCards = 4

type BillingWorker struct {
	storage    *storage.SQLiteRepository
	billing    *services.BillingService
	amqpClient *amqp.Client
	now        func() time.Time
}

func NewBillingWorker(storage *storage.SQLiteRepository, billingSvc *services.BillingService, amqpClient *amqp.Client) *BillingWorker {
	return &BillingWorker{
		storage:    storage,
		billing:    billingSvc,
		amqpClient: amqpClient,
		now:        time.Now,
	}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (w *BillingWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := w.Sweep(ctx); err != nil {
		slog.ErrorContext(ctx, "Billing sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping billing worker", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				slog.ErrorContext(ctx, "Billing sweep failed", "error", err)
			}
		}
	}
}

// Sweep closes due statements for every card and publishes overdue alerts.
// Cards are processed concurrently; a failure on one card does not stop the
// others, the first error is reported after the sweep completes.
func (w *BillingWorker) Sweep(ctx context.Context) error {
	today := core.DateOf(w.now())

	cards, err := w.storage.ListCards(ctx)
	if err != nil {
		return fmt.Errorf("list cards: %w", err)
	}

	slog.InfoContext(ctx, "Starting billing sweep",
		"cards", len(cards),
		"date", today.String())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCards)

	for _, card := range cards {
		g.Go(func() error {
			return w.closeIfDue(gctx, card, today)
		})
	}

	closeErr := g.Wait()

	if err := w.alertOverdue(ctx, today); err != nil {
		slog.ErrorContext(ctx, "Overdue alert pass failed", "error", err)
	}

	return closeErr
}

// closeIfDue closes the card's current statement when the closing day has
// passed. Already-closed and empty periods are normal outcomes, not errors.
func (w *BillingWorker) closeIfDue(ctx context.Context, card core.CreditCard, today core.Date) error {
	if !billing.DueForClose(card, today) {
		return nil
	}

	period := billing.PeriodClosingIn(card, today.Year(), today.Month())

	bill, err := w.billing.ClosePeriod(ctx, card.ID, period, false)
	if errors.Is(err, core.ErrDuplicateBill) || errors.Is(err, core.ErrNoItems) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("close card %d period %s: %w", card.ID, period, err)
	}

	slog.InfoContext(ctx, "Auto-closed billing period",
		"card_id", card.ID,
		"bill_id", bill.ID,
		"period", period.String(),
		"total_cents", bill.TotalAmount.Cents)

	return nil
}

// alertOverdue publishes one alert per bill that crossed its due date, then
// marks it so the next sweep stays quiet.
func (w *BillingWorker) alertOverdue(ctx context.Context, today core.Date) error {
	bills, err := w.storage.ListOverdueUnnotified(ctx, today)
	if err != nil {
		return fmt.Errorf("list overdue bills: %w", err)
	}

	for _, bill := range bills {
		if w.amqpClient == nil {
			slog.WarnContext(ctx, "AMQP client not available, skipping overdue alert",
				"bill_id", bill.ID)
			continue
		}

		msg := amqp.NewBillAlertMessage(amqp.AlertBillOverdue,
			bill.ID, bill.CreditCardID, bill.TotalAmount.Cents, bill.DueDate.String())
		if err := w.amqpClient.PublishBillAlert(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish overdue alert",
				"bill_id", bill.ID, "error", err)
			continue
		}

		if err := w.storage.MarkOverdueNotified(ctx, bill.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark bill as notified",
				"bill_id", bill.ID, "error", err)
		}
	}

	return nil
}
