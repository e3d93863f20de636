package recur

import (
	"fmt"
	"strings"

	"contas/internal/core"
)

// transferCategories mirrors the category names the wallet-transfer feature
// writes. Records in these categories are internal moves, not user-facing
// income or expense.
var transferCategories = map[string]struct{}{
	"transferência": {},
	"transferencia": {},
	"transfer":      {},
}

// IsTransferCategory reports whether the category marks an internal
// wallet-to-wallet transfer.
func IsTransferCategory(name string) bool {
	_, ok := transferCategories[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// OccurrenceID builds the deterministic identifier for one firing of a
// recurring transaction. The same template and month always produce the same
// id, and distinct months never collide.
func OccurrenceID(originalID int64, year, month int) string {
	return fmt.Sprintf("exp_%d_%04d%02d", originalID, year, month)
}

// Expand materializes every transaction in the window. Recurring templates
// are expanded to one occurrence per eligible month via OccurrencesInWindow;
// punctual records pass through unchanged when their date falls inside the
// window. Transfer-linked and transfer-category records are dropped. The
// result is unordered: sorting and pagination belong to the caller.
func Expand(transactions []core.Transaction, windowStart, windowEnd core.Date) []core.Occurrence {
	var out []core.Occurrence
	for _, t := range transactions {
		if t.TransferID != "" || IsTransferCategory(t.Category) {
			continue
		}
		switch t.Kind {
		case core.KindRecurring:
			for _, d := range OccurrencesInWindow(t.DayOfMonth, t.StartDate, t.EndDate, windowStart, windowEnd) {
				out = append(out, occurrence(t, d, OccurrenceID(t.ID, d.Year(), d.Month())))
			}
		case core.KindPunctual:
			if t.Date.Before(windowStart) || t.Date.After(windowEnd) {
				continue
			}
			out = append(out, occurrence(t, t.Date, fmt.Sprintf("%d", t.ID)))
		}
	}
	return out
}

func occurrence(t core.Transaction, date core.Date, id string) core.Occurrence {
	return core.Occurrence{
		OccurrenceID: id,
		OriginalID:   t.ID,
		Flow:         t.Flow,
		Kind:         t.Kind,
		Description:  t.Description,
		Amount:       t.Amount,
		Category:     t.Category,
		Tags:         t.Tags,
		WalletID:     t.WalletID,
		Date:         date,
	}
}
