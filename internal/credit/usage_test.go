package credit

import (
	"testing"
	"time"

	"contas/internal/core"
)

var card = core.CreditCard{
	ID:         1,
	Name:       "Nubank",
	Limit:      core.Money{Cents: 100000}, // R$ 1000,00
	ClosingDay: 25,
	DueDay:     5,
}

func punctualExpense(id int64, cents int64, date core.Date) core.Transaction {
	return core.Transaction{
		ID:           id,
		Flow:         core.FlowExpense,
		Kind:         core.KindPunctual,
		Description:  "compra",
		Amount:       core.Money{Cents: cents},
		CreditCardID: card.ID,
		Date:         date,
	}
}

func TestCompute(t *testing.T) {
	asOf := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	expenses := []core.Transaction{
		punctualExpense(1, 30000, core.NewDate(2025, 10, 1)),
		punctualExpense(2, 20000, core.NewDate(2025, 10, 10)),
	}
	incomes := []core.Transaction{
		{
			ID:           3,
			Flow:         core.FlowIncome,
			Kind:         core.KindPunctual,
			Description:  "estorno",
			Amount:       core.Money{Cents: 10000},
			CreditCardID: card.ID,
			Date:         core.NewDate(2025, 10, 12),
		},
	}

	usage := Compute(card, expenses, incomes, asOf)

	if usage.UsedAmount.Cents != 40000 {
		t.Errorf("used = %d cents, want 40000", usage.UsedAmount.Cents)
	}
	if usage.AvailableLimit.Cents != 60000 {
		t.Errorf("available = %d cents, want 60000", usage.AvailableLimit.Cents)
	}
	if usage.UsagePercentage != 40.0 {
		t.Errorf("percentage = %.1f, want 40.0", usage.UsagePercentage)
	}
}

func TestCompute_RefundsNeverGoNegative(t *testing.T) {
	asOf := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	expenses := []core.Transaction{
		punctualExpense(1, 5000, core.NewDate(2025, 10, 1)),
	}
	incomes := []core.Transaction{
		{
			ID:           2,
			Flow:         core.FlowIncome,
			Kind:         core.KindPunctual,
			Description:  "cashback",
			Amount:       core.Money{Cents: 20000},
			CreditCardID: card.ID,
			Date:         core.NewDate(2025, 10, 5),
		},
	}

	usage := Compute(card, expenses, incomes, asOf)

	if usage.UsedAmount.Cents != 0 {
		t.Errorf("used = %d cents, want 0 (never negative)", usage.UsedAmount.Cents)
	}
	if usage.AvailableLimit.Cents != card.Limit.Cents {
		t.Errorf("available = %d cents, must not exceed the limit %d",
			usage.AvailableLimit.Cents, card.Limit.Cents)
	}
	if usage.UsagePercentage != 0 {
		t.Errorf("percentage = %.1f, want 0", usage.UsagePercentage)
	}
}

func TestCompute_OverLimitCapsPercentage(t *testing.T) {
	asOf := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	expenses := []core.Transaction{
		punctualExpense(1, 150000, core.NewDate(2025, 10, 1)),
	}

	usage := Compute(card, expenses, nil, asOf)

	if usage.UsedAmount.Cents != 150000 {
		t.Errorf("used = %d cents, want 150000", usage.UsedAmount.Cents)
	}
	if usage.AvailableLimit.Cents != -50000 {
		t.Errorf("available = %d cents, want -50000", usage.AvailableLimit.Cents)
	}
	if usage.UsagePercentage != 100 {
		t.Errorf("percentage = %.1f, capped at 100", usage.UsagePercentage)
	}
}

func TestCompute_CutoffIsEndOfTomorrow(t *testing.T) {
	asOf := time.Date(2025, 10, 15, 23, 0, 0, 0, time.UTC)

	expenses := []core.Transaction{
		punctualExpense(1, 10000, core.NewDate(2025, 10, 16)), // tomorrow counts
		punctualExpense(2, 99999, core.NewDate(2025, 10, 17)), // day after does not
	}

	usage := Compute(card, expenses, nil, asOf)

	if usage.UsedAmount.Cents != 10000 {
		t.Errorf("used = %d cents, want 10000 (only tomorrow's expense)", usage.UsedAmount.Cents)
	}
}

func TestCompute_ExpandsRecurringTemplates(t *testing.T) {
	asOf := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	expenses := []core.Transaction{
		{
			ID:           1,
			Flow:         core.FlowExpense,
			Kind:         core.KindRecurring,
			Description:  "streaming",
			Amount:       core.Money{Cents: 5000},
			CreditCardID: card.ID,
			DayOfMonth:   10,
			StartDate:    core.NewDate(2025, 1, 1),
		},
	}

	usage := Compute(card, expenses, nil, asOf)

	// Jan, Feb and Mar firings land before the cutoff.
	if usage.UsedAmount.Cents != 15000 {
		t.Errorf("used = %d cents, want 15000 (three firings)", usage.UsedAmount.Cents)
	}
}

func TestCompute_ZeroLimit(t *testing.T) {
	zeroCard := core.CreditCard{ID: 2, Limit: core.Money{Cents: 0}}
	asOf := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	usage := Compute(zeroCard, []core.Transaction{
		punctualExpense(1, 5000, core.NewDate(2025, 10, 1)),
	}, nil, asOf)

	if usage.UsagePercentage != 0 {
		t.Errorf("percentage = %.1f, want 0 for zero-limit card", usage.UsagePercentage)
	}
}
