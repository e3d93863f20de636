package core

import "errors"

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrInvalidRecurrence   = errors.New("invalid recurrence")
	ErrInvalidInstallments = errors.New("installment count must be between 1 and 12")
	ErrInvalidClosingDay   = errors.New("closing day must be between 1 and 31")
	ErrInvalidDueDay       = errors.New("due day must be between 1 and 31")

	// Billing lifecycle errors. Handlers map these to user-facing responses.
	ErrNoItems               = errors.New("no unbilled installments in period")
	ErrDuplicateBill         = errors.New("bill already exists for this card and period")
	ErrBillClosed            = errors.New("bill is no longer pending")
	ErrBillHasPayments       = errors.New("bill has registered payments")
	ErrPaymentExceedsBalance = errors.New("payment exceeds open balance")

	ErrNotFound = errors.New("not found")
)
