package storage

import (
	"context"
	"database/sql"
	"fmt"

	"contas/internal/core"
)

const transactionColumns = `id, flow, kind, description, amount_cents, category, tags,
	COALESCE(wallet_id, 0), COALESCE(credit_card_id, 0), transfer_id,
	date, day_of_month, start_date, end_date`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t          core.Transaction
		tags       string
		dayOfMonth sql.NullInt64
		date       sql.NullString
		startDate  sql.NullString
		endDate    sql.NullString
	)
	err := row.Scan(&t.ID, &t.Flow, &t.Kind, &t.Description, &t.Amount.Cents,
		&t.Category, &tags, &t.WalletID, &t.CreditCardID, &t.TransferID,
		&date, &dayOfMonth, &startDate, &endDate)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Tags = splitTags(tags)
	t.DayOfMonth = int(dayOfMonth.Int64)
	if t.Date, err = scanDate(date); err != nil {
		return core.Transaction{}, err
	}
	if t.StartDate, err = scanDate(startDate); err != nil {
		return core.Transaction{}, err
	}
	if t.EndDate, err = scanDate(endDate); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTransaction inserts a punctual or recurring record and returns its id.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (flow, kind, description, amount_cents, category, tags,
			wallet_id, credit_card_id, transfer_id, date, day_of_month, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, 0), NULLIF(?, 0), ?, ?, NULLIF(?, 0), ?, ?)`,
		t.Flow, t.Kind, t.Description, t.Amount.Cents, t.Category, tagsArg(t.Tags),
		t.WalletID, t.CreditCardID, t.TransferID,
		dateArg(t.Date), t.DayOfMonth, dateArg(t.StartDate), dateArg(t.EndDate))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return res.LastInsertId()
}

// ListPunctualInWindow returns one-off records of the given flow dated inside
// [start, end].
func (r *SQLiteRepository) ListPunctualInWindow(ctx context.Context, flow core.Flow, start, end core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE flow = ? AND kind = ? AND date >= ? AND date <= ?
		ORDER BY date, id`,
		flow, core.KindPunctual, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("query punctual transactions: %w", err)
	}
	return collectTransactions(rows)
}

// ListRecurring returns every recurring template of the given flow. Window
// filtering happens during expansion, not here, so templates straddling the
// window edge are not lost.
func (r *SQLiteRepository) ListRecurring(ctx context.Context, flow core.Flow) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE flow = ? AND kind = ?
		ORDER BY id`,
		flow, core.KindRecurring)
	if err != nil {
		return nil, fmt.Errorf("query recurring transactions: %w", err)
	}
	return collectTransactions(rows)
}

// ListByCard returns all records linked to a credit card, both kinds and both
// flows. Used by the limit-usage calculation.
func (r *SQLiteRepository) ListByCard(ctx context.Context, cardID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE credit_card_id = ?
		ORDER BY id`,
		cardID)
	if err != nil {
		return nil, fmt.Errorf("query card transactions: %w", err)
	}
	return collectTransactions(rows)
}
