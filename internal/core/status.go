package core

import "time"

// BillStatus is the lifecycle state of a credit-card statement.
type BillStatus string

const (
	StatusPending BillStatus = "PENDING"
	StatusPartial BillStatus = "PARTIAL"
	StatusPaid    BillStatus = "PAID"
	StatusOverdue BillStatus = "OVERDUE"
)

// ValidBillStatus reports whether s is one of the four lifecycle states.
func ValidBillStatus(s BillStatus) bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// ComputeBillStatus derives a bill's status from its amounts and due date.
// The status is a pure function of its inputs and is recomputed on every
// read; it is never stored as ground truth.
//
//	PAID    paid >= total (covers zero or negative totals)
//	OVERDUE paid < total and now is past the due date
//	PARTIAL 0 < paid < total and not overdue
//	PENDING otherwise
func ComputeBillStatus(totalCents, paidCents int64, dueDate Date, now time.Time) BillStatus {
	if paidCents >= totalCents {
		return StatusPaid
	}
	if DateOf(now).After(dueDate) {
		return StatusOverdue
	}
	if paidCents > 0 {
		return StatusPartial
	}
	return StatusPending
}

// Status resolves the bill's effective status at now, honoring a manual
// override when one is set.
func (b Bill) Status(now time.Time) BillStatus {
	if b.StatusOverride != "" {
		return b.StatusOverride
	}
	return ComputeBillStatus(b.TotalAmount.Cents, b.PaidAmount.Cents, b.DueDate, now)
}

// Editable reports whether installments on this bill may still be modified.
// Only pending bills accept changes; anything else is a closed statement.
func (b Bill) Editable(now time.Time) bool {
	return b.Status(now) == StatusPending
}
