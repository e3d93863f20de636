package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"contas/internal/core"
	"contas/internal/credit"
	"contas/internal/recur"
	"contas/internal/storage"
)

// TransactionService stores expense/income records and materializes them into
// occurrences for calendar queries.
type TransactionService struct {
	storage *storage.SQLiteRepository
}

func NewTransactionService(storage *storage.SQLiteRepository) *TransactionService {
	return &TransactionService{storage: storage}
}

// CreateWallet registers a money source for bill payments.
func (s *TransactionService) CreateWallet(ctx context.Context, w core.Wallet) (int64, error) {
	if len(w.Name) == 0 {
		return 0, core.ErrEmptyDescription
	}
	id, err := s.storage.CreateWallet(ctx, w)
	if err != nil {
		return 0, fmt.Errorf("save wallet: %w", err)
	}
	slog.InfoContext(ctx, "Created wallet", "id", id, "name", w.Name)
	return id, nil
}

func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Created transaction",
		"id", id,
		"flow", string(t.Flow),
		"kind", string(t.Kind),
		"amount_cents", t.Amount.Cents)

	return id, nil
}

// ListExpanded returns every occurrence of the given flow inside the window:
// punctual records plus the monthly firings of recurring templates, transfers
// excluded, sorted by date then id. Windows where end precedes start yield an
// empty list.
func (s *TransactionService) ListExpanded(ctx context.Context, flow core.Flow, windowStart, windowEnd core.Date) ([]core.Occurrence, error) {
	if windowEnd.Before(windowStart) {
		return nil, nil
	}

	punctual, err := s.storage.ListPunctualInWindow(ctx, flow, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("load punctual transactions: %w", err)
	}
	recurring, err := s.storage.ListRecurring(ctx, flow)
	if err != nil {
		return nil, fmt.Errorf("load recurring transactions: %w", err)
	}

	occurrences := recur.Expand(append(punctual, recurring...), windowStart, windowEnd)

	sort.Slice(occurrences, func(i, j int) bool {
		if !occurrences[i].Date.Equal(occurrences[j].Date.Time) {
			return occurrences[i].Date.Before(occurrences[j].Date)
		}
		return occurrences[i].OccurrenceID < occurrences[j].OccurrenceID
	})

	return occurrences, nil
}

// CardUsage nets a card's expanded expenses against its expanded incomes and
// reports consumed and available limit.
func (s *TransactionService) CardUsage(ctx context.Context, cardID int64, asOf time.Time) (credit.Usage, error) {
	card, err := s.storage.GetCard(ctx, cardID)
	if err != nil {
		return credit.Usage{}, err
	}

	linked, err := s.storage.ListByCard(ctx, cardID)
	if err != nil {
		return credit.Usage{}, fmt.Errorf("load card transactions: %w", err)
	}

	var expenses, incomes []core.Transaction
	for _, t := range linked {
		if t.Flow == core.FlowIncome {
			incomes = append(incomes, t)
		} else {
			expenses = append(expenses, t)
		}
	}

	return credit.Compute(card, expenses, incomes, asOf), nil
}
