package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contas/internal/core"
)

// CreatePurchaseWithInstallments inserts a purchase and its installment rows
// in one transaction. Either all rows land or none do.
func (r *SQLiteRepository) CreatePurchaseWithInstallments(ctx context.Context, p core.Purchase, installments []core.Installment) (int64, error) {
	var purchaseID int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO purchases (credit_card_id, description, amount_cents, purchase_date, installments, category, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.CreditCardID, p.Description, p.Amount.Cents, p.PurchaseDate.String(),
			p.Installments, p.Category, tagsArg(p.Tags))
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		purchaseID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		for _, inst := range installments {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO installments (purchase_id, number, amount_cents, due_date, period_year, period_month)
				VALUES (?, ?, ?, ?, ?, ?)`,
				purchaseID, inst.Number, inst.Amount.Cents, inst.DueDate.String(),
				inst.Period.Year, inst.Period.Month)
			if err != nil {
				return fmt.Errorf("insert installment %d: %w", inst.Number, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purchaseID, nil
}

func (r *SQLiteRepository) GetPurchase(ctx context.Context, id int64) (core.Purchase, error) {
	var (
		p    core.Purchase
		tags string
		date string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, credit_card_id, description, amount_cents, purchase_date, installments, category, tags
		FROM purchases WHERE id = ?`, id).
		Scan(&p.ID, &p.CreditCardID, &p.Description, &p.Amount.Cents, &date, &p.Installments, &p.Category, &tags)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Purchase{}, fmt.Errorf("purchase %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Purchase{}, fmt.Errorf("query purchase: %w", err)
	}
	p.Tags = splitTags(tags)
	if p.PurchaseDate, err = core.ParseDate(date); err != nil {
		return core.Purchase{}, err
	}
	return p, nil
}

// UpdatePurchaseWithInstallments rewrites a purchase and replaces its
// installment rows in one transaction. Old installments come off their bills
// first and affected bill totals are recomputed, so a rescheduled purchase
// never leaves a stale total behind. The new installments land unbilled.
func (r *SQLiteRepository) UpdatePurchaseWithInstallments(ctx context.Context, p core.Purchase, installments []core.Installment) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		billIDs, err := affectedBillIDs(ctx, tx, p.ID)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE purchases
			SET description = ?, amount_cents = ?, purchase_date = ?, installments = ?, category = ?, tags = ?
			WHERE id = ?`,
			p.Description, p.Amount.Cents, p.PurchaseDate.String(),
			p.Installments, p.Category, tagsArg(p.Tags), p.ID)
		if err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("purchase %d: %w", p.ID, core.ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM installments WHERE purchase_id = ?`, p.ID); err != nil {
			return fmt.Errorf("delete old installments: %w", err)
		}
		for _, inst := range installments {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO installments (purchase_id, number, amount_cents, due_date, period_year, period_month)
				VALUES (?, ?, ?, ?, ?, ?)`,
				p.ID, inst.Number, inst.Amount.Cents, inst.DueDate.String(),
				inst.Period.Year, inst.Period.Month)
			if err != nil {
				return fmt.Errorf("insert installment %d: %w", inst.Number, err)
			}
		}

		return recomputeBillTotals(ctx, tx, billIDs)
	})
}

// affectedBillIDs lists the bills the purchase's installments currently sit on.
func affectedBillIDs(ctx context.Context, tx *sql.Tx, purchaseID int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT DISTINCT bill_id FROM installments
		WHERE purchase_id = ? AND bill_id IS NOT NULL`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("query affected bills: %w", err)
	}
	defer rows.Close()

	var billIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		billIDs = append(billIDs, id)
	}
	return billIDs, rows.Err()
}

func recomputeBillTotals(ctx context.Context, tx *sql.Tx, billIDs []int64) error {
	for _, billID := range billIDs {
		if _, err := tx.ExecContext(ctx, `
			UPDATE bills SET total_cents =
				(SELECT COALESCE(SUM(amount_cents), 0) FROM installments WHERE bill_id = ?)
			WHERE id = ?`, billID, billID); err != nil {
			return fmt.Errorf("recompute bill %d total: %w", billID, err)
		}
	}
	return nil
}

const installmentColumns = `id, purchase_id, number, amount_cents, due_date,
	period_year, period_month, COALESCE(bill_id, 0)`

func scanInstallment(row interface{ Scan(...any) error }) (core.Installment, error) {
	var (
		inst core.Installment
		due  string
	)
	err := row.Scan(&inst.ID, &inst.PurchaseID, &inst.Number, &inst.Amount.Cents,
		&due, &inst.Period.Year, &inst.Period.Month, &inst.BillID)
	if err != nil {
		return core.Installment{}, err
	}
	if inst.DueDate, err = core.ParseDate(due); err != nil {
		return core.Installment{}, err
	}
	return inst, nil
}

func collectInstallments(rows *sql.Rows) ([]core.Installment, error) {
	defer rows.Close()
	var out []core.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// ListInstallmentsByPurchase returns a purchase's installments ordered by
// number.
func (r *SQLiteRepository) ListInstallmentsByPurchase(ctx context.Context, purchaseID int64) ([]core.Installment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+installmentColumns+`
		FROM installments WHERE purchase_id = ? ORDER BY number`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("query installments: %w", err)
	}
	return collectInstallments(rows)
}

// ListUnbilledInstallments returns installments of a card's purchases that
// belong to the given period and are not yet on any bill.
func (r *SQLiteRepository) ListUnbilledInstallments(ctx context.Context, cardID int64, period core.BillingPeriod) ([]core.Installment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.purchase_id, i.number, i.amount_cents, i.due_date,
			i.period_year, i.period_month, COALESCE(i.bill_id, 0)
		FROM installments i
		JOIN purchases p ON p.id = i.purchase_id
		WHERE p.credit_card_id = ? AND i.period_year = ? AND i.period_month = ?
			AND i.bill_id IS NULL
		ORDER BY i.due_date, i.id`,
		cardID, period.Year, period.Month)
	if err != nil {
		return nil, fmt.Errorf("query unbilled installments: %w", err)
	}
	return collectInstallments(rows)
}

const billColumns = `id, credit_card_id, closing_date, due_date, total_cents, paid_cents, status_override`

func scanBill(row interface{ Scan(...any) error }) (core.Bill, error) {
	var (
		b        core.Bill
		closing  string
		due      string
		override string
	)
	err := row.Scan(&b.ID, &b.CreditCardID, &closing, &due,
		&b.TotalAmount.Cents, &b.PaidAmount.Cents, &override)
	if err != nil {
		return core.Bill{}, err
	}
	b.StatusOverride = core.BillStatus(override)
	if b.ClosingDate, err = core.ParseDate(closing); err != nil {
		return core.Bill{}, err
	}
	if b.DueDate, err = core.ParseDate(due); err != nil {
		return core.Bill{}, err
	}
	return b, nil
}

func (r *SQLiteRepository) GetBill(ctx context.Context, id int64) (core.Bill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx, `
		SELECT `+billColumns+` FROM bills WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, fmt.Errorf("bill %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Bill{}, fmt.Errorf("query bill: %w", err)
	}
	return b, nil
}

// FindBillByClosing looks up the bill for a card and closing date. Returns
// core.ErrNotFound when the period has not been closed.
func (r *SQLiteRepository) FindBillByClosing(ctx context.Context, cardID int64, closingDate core.Date) (core.Bill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE credit_card_id = ? AND closing_date = ?`,
		cardID, closingDate.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, core.ErrNotFound
	}
	if err != nil {
		return core.Bill{}, fmt.Errorf("query bill by closing date: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBillsByCard(ctx context.Context, cardID int64) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE credit_card_id = ? ORDER BY closing_date DESC`, cardID)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// CreateBillWithItems inserts a bill and stamps its id on the given
// installments atomically. A concurrent close of the same card and closing
// date trips the (credit_card_id, closing_date) unique constraint, so at most
// one bill exists per period.
func (r *SQLiteRepository) CreateBillWithItems(ctx context.Context, bill core.Bill, installmentIDs []int64) (int64, error) {
	var billID int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO bills (credit_card_id, closing_date, due_date, total_cents)
			VALUES (?, ?, ?, ?)`,
			bill.CreditCardID, bill.ClosingDate.String(), bill.DueDate.String(), bill.TotalAmount.Cents)
		if err != nil {
			return fmt.Errorf("insert bill: %w", err)
		}
		billID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		for _, id := range installmentIDs {
			res, err := tx.ExecContext(ctx, `
				UPDATE installments SET bill_id = ? WHERE id = ? AND bill_id IS NULL`,
				billID, id)
			if err != nil {
				return fmt.Errorf("associate installment %d: %w", id, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("installment %d already billed or missing: %w", id, core.ErrDuplicateBill)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return billID, nil
}

// RegisterPayment inserts the payment row and bumps the bill's paid total in
// one transaction. The paid total is guarded in the UPDATE itself, so two
// racing payments cannot push it past the bill total.
func (r *SQLiteRepository) RegisterPayment(ctx context.Context, p core.BillPayment) (int64, error) {
	var paymentID int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO bill_payments (bill_id, wallet_id, amount_cents, payment_date, description)
			VALUES (?, ?, ?, ?, ?)`,
			p.BillID, p.WalletID, p.Amount.Cents, p.PaymentDate.String(), p.Description)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		paymentID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx, `
			UPDATE bills SET paid_cents = paid_cents + ?
			WHERE id = ? AND paid_cents + ? <= total_cents`,
			p.Amount.Cents, p.BillID, p.Amount.Cents)
		if err != nil {
			return fmt.Errorf("update bill paid amount: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("payment of %d cents on bill %d: %w",
				p.Amount.Cents, p.BillID, core.ErrPaymentExceedsBalance)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return paymentID, nil
}

func (r *SQLiteRepository) ListPayments(ctx context.Context, billID int64) ([]core.BillPayment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, bill_id, wallet_id, amount_cents, payment_date, description
		FROM bill_payments WHERE bill_id = ? ORDER BY payment_date, id`, billID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []core.BillPayment
	for rows.Next() {
		var (
			p    core.BillPayment
			date string
		)
		if err := rows.Scan(&p.ID, &p.BillID, &p.WalletID, &p.Amount.Cents, &date, &p.Description); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		if p.PaymentDate, err = core.ParseDate(date); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *SQLiteRepository) CountPayments(ctx context.Context, billID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bill_payments WHERE bill_id = ?`, billID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return n, nil
}

// DeleteBill disassociates the bill's installments and removes the bill in
// one transaction. The installments return to the unbilled pool.
func (r *SQLiteRepository) DeleteBill(ctx context.Context, billID int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE installments SET bill_id = NULL WHERE bill_id = ?`, billID); err != nil {
			return fmt.Errorf("disassociate installments: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, billID)
		if err != nil {
			return fmt.Errorf("delete bill: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("bill %d: %w", billID, core.ErrNotFound)
		}
		return nil
	})
}

// DeletePurchase removes a purchase and, via ON DELETE CASCADE, its
// installments, then recomputes totals of any bills the installments were on.
func (r *SQLiteRepository) DeletePurchase(ctx context.Context, purchaseID int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		billIDs, err := affectedBillIDs(ctx, tx, purchaseID)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM purchases WHERE id = ?`, purchaseID)
		if err != nil {
			return fmt.Errorf("delete purchase: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("purchase %d: %w", purchaseID, core.ErrNotFound)
		}

		return recomputeBillTotals(ctx, tx, billIDs)
	})
}

// SetStatusOverride stores a manual status, or clears it when status is empty.
func (r *SQLiteRepository) SetStatusOverride(ctx context.Context, billID int64, status core.BillStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bills SET status_override = ? WHERE id = ?`, string(status), billID)
	if err != nil {
		return fmt.Errorf("set status override: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("bill %d: %w", billID, core.ErrNotFound)
	}
	return nil
}

// ListOverdueUnnotified returns bills past their due date, not fully paid and
// not yet alerted on.
func (r *SQLiteRepository) ListOverdueUnnotified(ctx context.Context, today core.Date) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE due_date < ? AND paid_cents < total_cents
			AND status_override = '' AND overdue_notified = 0
		ORDER BY due_date`, today.String())
	if err != nil {
		return nil, fmt.Errorf("query overdue bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (r *SQLiteRepository) MarkOverdueNotified(ctx context.Context, billID int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE bills SET overdue_notified = 1 WHERE id = ?`, billID); err != nil {
		return fmt.Errorf("mark overdue notified: %w", err)
	}
	return nil
}
