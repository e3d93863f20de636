package billing

import (
	"contas/internal/core"
)

// ClosingDate returns the day the statement for the given due period closes.
// When the due day precedes the closing day the statement closed in the month
// before its due month (close on the 30th, due on the 7th of the next month).
// The day is clamped to the closing month's length.
func ClosingDate(card core.CreditCard, period core.BillingPeriod) core.Date {
	year, month := period.Year, period.Month
	if card.DueDay < card.ClosingDay {
		year, month = core.AddMonths(year, month, -1)
	}
	return core.DateInMonth(year, month, card.ClosingDay)
}

// DueDate returns the day the statement for the given period falls due,
// clamped to the month's length.
func DueDate(card core.CreditCard, period core.BillingPeriod) core.Date {
	return core.DateInMonth(period.Year, period.Month, card.DueDay)
}

// PeriodBounds returns the first and last day of the period's due month,
// the range used to select installments for a statement close.
func PeriodBounds(period core.BillingPeriod) (core.Date, core.Date) {
	first := core.NewDate(period.Year, period.Month, 1)
	last := core.NewDate(period.Year, period.Month, core.LastDayOfMonth(period.Year, period.Month))
	return first, last
}

// DueForClose reports whether the card's statement for the current cycle can
// be closed as of today: the closing day has passed.
func DueForClose(card core.CreditCard, today core.Date) bool {
	return today.Day() > card.ClosingDay
}

// PeriodClosingIn returns the due period of the statement whose closing date
// falls in the given calendar month. Inverse of ClosingDate for that month.
func PeriodClosingIn(card core.CreditCard, year, month int) core.BillingPeriod {
	if card.DueDay < card.ClosingDay {
		year, month = core.AddMonths(year, month, 1)
	}
	return core.BillingPeriod{Year: year, Month: month}
}
