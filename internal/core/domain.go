package core

import (
	"fmt"
	"strings"
)

const (
	// Flow distinguishes money leaving from money entering a wallet.
	FlowExpense Flow = "EXPENSE"
	FlowIncome  Flow = "INCOME"

	// Kind distinguishes one-off records from monthly templates.
	KindPunctual  Kind = "PUNCTUAL"
	KindRecurring Kind = "RECURRING"
)

type (
	Flow string
	Kind string

	// Wallet is a money source used to pay bills. Only the fields the
	// billing engine needs are modeled here.
	Wallet struct {
		ID   int64
		Name string
	}

	// Transaction is an expense or income record. Punctual records carry a
	// concrete Date; recurring records are templates that fire once per
	// month on DayOfMonth between StartDate and EndDate (EndDate zero =
	// open-ended). Category, tags and wallet are passthrough metadata: the
	// expansion algorithm copies them verbatim.
	Transaction struct {
		ID           int64
		Flow         Flow
		Kind         Kind
		Description  string
		Amount       Money
		Category     string
		Tags         []string
		WalletID     int64
		CreditCardID int64  // 0 when not card-linked
		TransferID   string // non-empty for wallet-to-wallet moves

		Date Date // punctual: occurrence date

		DayOfMonth int  // recurring: nominal day, 1..31
		StartDate  Date // recurring: active from (inclusive)
		EndDate    Date // recurring: active until (inclusive), zero = open
	}

	// Occurrence is a single materialized firing of a transaction inside a
	// query window. Occurrences are never persisted; repeated expansions of
	// the same window yield the same OccurrenceIDs.
	Occurrence struct {
		OccurrenceID string
		OriginalID   int64
		Flow         Flow
		Kind         Kind
		Description  string
		Amount       Money
		Category     string
		Tags         []string
		WalletID     int64
		Date         Date
	}

	// CreditCard holds the billing cycle configuration: statements close on
	// ClosingDay and fall due on DueDay of the statement month.
	CreditCard struct {
		ID         int64
		Name       string
		Limit      Money
		ClosingDay int
		DueDay     int
	}

	// Purchase is a single credit-card transaction, possibly split into
	// installments. Immutable once any of its installments is on a bill
	// that is no longer pending.
	Purchase struct {
		ID           int64
		CreditCardID int64
		Description  string
		Amount       Money
		PurchaseDate Date
		Installments int
		Category     string
		Tags         []string
	}

	// Installment is one slice of a purchase, assigned to a billing period.
	// BillID is zero until the installment is associated with a bill.
	Installment struct {
		ID         int64
		PurchaseID int64
		Number     int // 1-based
		Amount     Money
		DueDate    Date
		Period     BillingPeriod
		BillID     int64
	}

	// BillingPeriod identifies a statement by its due month.
	BillingPeriod struct {
		Year  int
		Month int
	}

	// Bill is a credit-card statement for one period. TotalAmount always
	// equals the sum of associated installment amounts. Status is computed
	// from the amounts and dates on every read; StatusOverride, when set,
	// wins (manual override).
	Bill struct {
		ID             int64
		CreditCardID   int64
		ClosingDate    Date
		DueDate        Date
		TotalAmount    Money
		PaidAmount     Money
		StatusOverride BillStatus // empty unless manually overridden
	}

	// BillPayment is a payment registered against a bill from a wallet.
	BillPayment struct {
		ID          int64
		BillID      int64
		WalletID    int64
		Amount      Money
		PaymentDate Date
		Description string
	}
)

func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Compare orders periods chronologically.
func (p BillingPeriod) Compare(other BillingPeriod) int {
	a := p.Year*12 + p.Month
	b := other.Year*12 + other.Month
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return fmt.Errorf("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	switch t.Flow {
	case FlowExpense, FlowIncome:
	default:
		return fmt.Errorf("invalid flow %q", t.Flow)
	}
	switch t.Kind {
	case KindPunctual:
		if err := t.Date.Validate(); err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}
	case KindRecurring:
		if t.DayOfMonth < 1 || t.DayOfMonth > 31 {
			return fmt.Errorf("%w: day of month %d", ErrInvalidRecurrence, t.DayOfMonth)
		}
		if err := t.StartDate.Validate(); err != nil {
			return fmt.Errorf("%w: invalid start date", ErrInvalidRecurrence)
		}
	default:
		return fmt.Errorf("invalid kind %q", t.Kind)
	}
	return nil
}

func (c CreditCard) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyDescription
	}
	if c.Limit.Cents < 0 {
		return ErrInvalidAmount
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return ErrInvalidClosingDay
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return nil
}

func (p Purchase) Validate() error {
	if len(strings.TrimSpace(p.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if err := p.PurchaseDate.Validate(); err != nil {
		return fmt.Errorf("invalid purchase date: %w", err)
	}
	if p.Installments < 1 || p.Installments > 12 {
		return ErrInvalidInstallments
	}
	if p.CreditCardID == 0 {
		return fmt.Errorf("purchase requires a credit card")
	}
	return nil
}
