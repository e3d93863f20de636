// Package credit computes credit-card limit usage from card-linked expense
// and income records.
package credit

import (
	"time"

	"contas/internal/core"
	"contas/internal/recur"
)

// Usage is the consumed/available view of one card's limit.
type Usage struct {
	UsedAmount      core.Money
	AvailableLimit  core.Money
	UsagePercentage float64
}

// expansionFloor bounds the expansion window for templates with no start
// date on record.
var expansionFloor = core.NewDate(1900, 1, 1)

// Compute nets a card's expanded expenses against its expanded incomes as of
// asOf. Incomes are refunds/cashback and reduce usage. Expansion runs through
// the end of the day after asOf to absorb timezone skew between client and
// server clocks.
//
// Usage is never negative and the available limit never exceeds the card's
// nominal limit, even when refunds outweigh spending.
func Compute(card core.CreditCard, expenses, incomes []core.Transaction, asOf time.Time) Usage {
	cutoff := core.DateOf(asOf.AddDate(0, 0, 1))

	used := sumExpanded(expenses, cutoff) - sumExpanded(incomes, cutoff)
	if used < 0 {
		used = 0
	}

	limit := card.Limit.Cents
	available := limit - used
	if available > limit {
		available = limit
	}

	var pct float64
	if limit > 0 {
		pct = float64(used) / float64(limit) * 100
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
	}

	return Usage{
		UsedAmount:      core.Money{Cents: used},
		AvailableLimit:  core.Money{Cents: available},
		UsagePercentage: pct,
	}
}

func sumExpanded(transactions []core.Transaction, cutoff core.Date) int64 {
	var total int64
	for _, occ := range recur.Expand(transactions, expansionFloor, cutoff) {
		total += occ.Amount.Cents
	}
	return total
}
