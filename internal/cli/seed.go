package cli

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"contas/internal/core"
	"contas/internal/services"
)

// SeedFile is the YAML fixture format consumed by `contas-cli seed`. Amounts
// are decimal strings ("1234.56"), dates are YYYY-MM-DD.
type SeedFile struct {
	Wallets []struct {
		Name string `yaml:"name"`
	} `yaml:"wallets"`

	Cards []struct {
		Name       string `yaml:"name"`
		Limit      string `yaml:"limit"`
		ClosingDay int    `yaml:"closing_day"`
		DueDay     int    `yaml:"due_day"`
	} `yaml:"cards"`

	Transactions []struct {
		Flow         string   `yaml:"flow"`
		Kind         string   `yaml:"kind"`
		Description  string   `yaml:"description"`
		Amount       string   `yaml:"amount"`
		Category     string   `yaml:"category"`
		Tags         []string `yaml:"tags"`
		WalletID     int64    `yaml:"wallet_id"`
		CreditCardID int64    `yaml:"credit_card_id"`
		Date         string   `yaml:"date"`
		DayOfMonth   int      `yaml:"day_of_month"`
		StartDate    string   `yaml:"start_date"`
		EndDate      string   `yaml:"end_date"`
	} `yaml:"transactions"`

	Purchases []struct {
		CreditCardID int64    `yaml:"credit_card_id"`
		Description  string   `yaml:"description"`
		Amount       string   `yaml:"amount"`
		PurchaseDate string   `yaml:"purchase_date"`
		Installments int      `yaml:"installments"`
		Category     string   `yaml:"category"`
		Tags         []string `yaml:"tags"`
	} `yaml:"purchases"`
}

// LoadSeedFile parses a YAML fixture.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// ApplySeed loads the fixture into the database: wallets and cards first,
// then transactions and purchases through the import service with alerts
// suppressed.
func ApplySeed(ctx context.Context, seed *SeedFile, transactions *services.TransactionService, purchases *services.PurchaseService, importer *services.ImportService) error {
	for _, w := range seed.Wallets {
		if _, err := transactions.CreateWallet(ctx, core.Wallet{Name: w.Name}); err != nil {
			return fmt.Errorf("seed wallet %q: %w", w.Name, err)
		}
	}

	for _, c := range seed.Cards {
		limit, err := core.ParseDecimalToCents(c.Limit)
		if err != nil {
			return fmt.Errorf("seed card %q: invalid limit: %w", c.Name, err)
		}
		card := core.CreditCard{
			Name:       c.Name,
			Limit:      core.Money{Cents: limit},
			ClosingDay: c.ClosingDay,
			DueDay:     c.DueDay,
		}
		if _, err := purchases.CreateCard(ctx, card); err != nil {
			return fmt.Errorf("seed card %q: %w", c.Name, err)
		}
	}

	items := make([]core.Transaction, 0, len(seed.Transactions))
	for _, t := range seed.Transactions {
		cents, err := core.ParseDecimalToCents(t.Amount)
		if err != nil {
			return fmt.Errorf("seed transaction %q: invalid amount: %w", t.Description, err)
		}
		tx := core.Transaction{
			Flow:         core.Flow(t.Flow),
			Kind:         core.Kind(t.Kind),
			Description:  t.Description,
			Amount:       core.Money{Cents: cents},
			Category:     t.Category,
			Tags:         t.Tags,
			WalletID:     t.WalletID,
			CreditCardID: t.CreditCardID,
			DayOfMonth:   t.DayOfMonth,
		}
		if tx.Date, err = parseSeedDate(t.Date); err != nil {
			return fmt.Errorf("seed transaction %q: %w", t.Description, err)
		}
		if tx.StartDate, err = parseSeedDate(t.StartDate); err != nil {
			return fmt.Errorf("seed transaction %q: %w", t.Description, err)
		}
		if tx.EndDate, err = parseSeedDate(t.EndDate); err != nil {
			return fmt.Errorf("seed transaction %q: %w", t.Description, err)
		}
		items = append(items, tx)
	}
	if _, err := importer.ImportTransactions(ctx, items); err != nil {
		return fmt.Errorf("seed transactions: %w", err)
	}

	bought := make([]core.Purchase, 0, len(seed.Purchases))
	for _, p := range seed.Purchases {
		cents, err := core.ParseDecimalToCents(p.Amount)
		if err != nil {
			return fmt.Errorf("seed purchase %q: invalid amount: %w", p.Description, err)
		}
		date, err := core.ParseDate(p.PurchaseDate)
		if err != nil {
			return fmt.Errorf("seed purchase %q: %w", p.Description, err)
		}
		installments := p.Installments
		if installments == 0 {
			installments = 1
		}
		bought = append(bought, core.Purchase{
			CreditCardID: p.CreditCardID,
			Description:  p.Description,
			Amount:       core.Money{Cents: cents},
			PurchaseDate: date,
			Installments: installments,
			Category:     p.Category,
			Tags:         p.Tags,
		})
	}
	if _, err := importer.ImportPurchases(ctx, bought, true); err != nil {
		return fmt.Errorf("seed purchases: %w", err)
	}

	return nil
}

func parseSeedDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
