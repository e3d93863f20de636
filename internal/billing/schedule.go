// Package billing computes installment schedules and billing-period dates
// for credit cards, and owns the statement close/aggregate logic used by the
// billing service.
package billing

import (
	"contas/internal/core"
)

// Schedule splits a purchase into installments and assigns each one to a
// billing period based on the card's closing and due days.
//
// The purchase amount is divided in cents; the division remainder goes to the
// first installment so the installment amounts always sum back to the exact
// purchase amount. A purchase made on or after the card's closing day missed
// the current statement and rolls every installment forward one cycle.
//
// The installment count must already be validated (1..12) by the caller.
func Schedule(p core.Purchase, card core.CreditCard) []core.Installment {
	n := p.Installments
	base := p.Amount.Cents / int64(n)
	remainder := p.Amount.Cents - base*int64(n)

	shift := 0
	if p.PurchaseDate.Day() >= card.ClosingDay {
		shift = 1
	}

	installments := make([]core.Installment, 0, n)
	for k := 1; k <= n; k++ {
		amount := base
		if k == 1 {
			amount += remainder
		}
		year, month := core.AddMonths(p.PurchaseDate.Year(), p.PurchaseDate.Month(), k-1+shift)
		dueDate := core.DateInMonth(year, month, card.DueDay)
		installments = append(installments, core.Installment{
			PurchaseID: p.ID,
			Number:     k,
			Amount:     core.Money{Cents: amount},
			DueDate:    dueDate,
			Period:     PeriodForDueDate(dueDate),
		})
	}
	return installments
}

// PeriodForDueDate identifies the statement an installment belongs to. A
// statement is keyed by its due month: the installment's due date already is
// the bill's due date.
func PeriodForDueDate(dueDate core.Date) core.BillingPeriod {
	return core.BillingPeriod{Year: dueDate.Year(), Month: dueDate.Month()}
}
