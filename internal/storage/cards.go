package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contas/internal/core"
)

func (r *SQLiteRepository) CreateCard(ctx context.Context, card core.CreditCard) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO credit_cards (name, limit_cents, closing_day, due_day)
		VALUES (?, ?, ?, ?)`,
		card.Name, card.Limit.Cents, card.ClosingDay, card.DueDay)
	if err != nil {
		return 0, fmt.Errorf("insert credit card: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetCard(ctx context.Context, id int64) (core.CreditCard, error) {
	var card core.CreditCard
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, limit_cents, closing_day, due_day
		FROM credit_cards WHERE id = ?`, id).
		Scan(&card.ID, &card.Name, &card.Limit.Cents, &card.ClosingDay, &card.DueDay)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CreditCard{}, fmt.Errorf("credit card %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("query credit card: %w", err)
	}
	return card, nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, limit_cents, closing_day, due_day
		FROM credit_cards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query credit cards: %w", err)
	}
	defer rows.Close()

	var cards []core.CreditCard
	for rows.Next() {
		var card core.CreditCard
		if err := rows.Scan(&card.ID, &card.Name, &card.Limit.Cents, &card.ClosingDay, &card.DueDay); err != nil {
			return nil, fmt.Errorf("scan credit card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (r *SQLiteRepository) CreateWallet(ctx context.Context, w core.Wallet) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO wallets (name) VALUES (?)`, w.Name)
	if err != nil {
		return 0, fmt.Errorf("insert wallet: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetWallet(ctx context.Context, id int64) (core.Wallet, error) {
	var w core.Wallet
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM wallets WHERE id = ?`, id).
		Scan(&w.ID, &w.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Wallet{}, fmt.Errorf("wallet %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Wallet{}, fmt.Errorf("query wallet: %w", err)
	}
	return w, nil
}
