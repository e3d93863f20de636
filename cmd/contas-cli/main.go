package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"contas/internal/amqp"
	"contas/internal/cli"
	"contas/internal/config"
	"contas/internal/core"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/storage"
)

type Params struct {
	Command string `descr:"What to run" alts:"bills,occurrences,usage,seed,alerts" strict:"true" positional:"true"`
	Card    int64  `descr:"Credit card id (bills, usage)"`
	Flow    string `descr:"Transaction flow (occurrences), defaults to EXPENSE" alts:"EXPENSE,INCOME" strict:"true"`
	From    string `descr:"Window start, YYYY-MM-DD (occurrences)"`
	To      string `descr:"Window end, YYYY-MM-DD (occurrences)"`
	File    string `descr:"YAML fixture path (seed)"`
}

func main() {
	boa.NewCmdT[Params]("contas-cli").
		WithShort("Inspect and seed the contas billing database").
		WithLong("Lists bills, expanded transaction occurrences and card usage straight from the SQLite database, loads YAML fixtures for local development and tails the bill-alert queue.").
		WithRunFunc(func(params *Params) {
			cli.LoadEnvFile()

			logger := cli.SetupLogger(log.ComponentCLI)
			cfg := cli.LoadAndValidateConfig(logger)

			ctx := context.Background()

			if params.Command == "alerts" {
				if err := runAlerts(ctx, cfg); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
				return
			}

			sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
			defer sqliteRepo.Close()

			var err error
			switch params.Command {
			case "bills":
				err = runBills(ctx, sqliteRepo, params.Card)
			case "occurrences":
				err = runOccurrences(ctx, sqliteRepo, params)
			case "usage":
				err = runUsage(ctx, sqliteRepo, params.Card)
			case "seed":
				err = runSeed(ctx, sqliteRepo, params.File)
			}

			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func runBills(ctx context.Context, repo *storage.SQLiteRepository, cardID int64) error {
	if cardID == 0 {
		return fmt.Errorf("--card is required")
	}

	billingService := services.NewBillingService(repo, nil)
	bills, err := billingService.ListBills(ctx, cardID)
	if err != nil {
		return err
	}
	if len(bills) == 0 {
		fmt.Println("No bills found.")
		return nil
	}

	now := time.Now()
	var totalCents, paidCents int64

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Closing", "Due", "Status", "Total", "Paid"})

	for _, bill := range bills {
		totalCents += bill.TotalAmount.Cents
		paidCents += bill.PaidAmount.Cents
		t.AppendRow(table.Row{
			bill.ID,
			bill.ClosingDate.String(),
			bill.DueDate.String(),
			colorStatus(bill.Status(now)),
			bill.TotalAmount.String(),
			bill.PaidAmount.String(),
		})
	}

	t.AppendSeparator()
	t.AppendFooter(table.Row{"", "", "",
		text.Bold.Sprint("Total"),
		text.Bold.Sprint(core.Money{Cents: totalCents}.String()),
		text.Bold.Sprint(core.Money{Cents: paidCents}.String()),
	})

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.Render()

	return nil
}

func runOccurrences(ctx context.Context, repo *storage.SQLiteRepository, params *Params) error {
	flow := core.Flow(params.Flow)
	if flow == "" {
		flow = core.FlowExpense
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	from := core.NewDate(year, month, 1)
	to := core.NewDate(year, month, core.LastDayOfMonth(year, month))

	var err error
	if params.From != "" {
		if from, err = core.ParseDate(params.From); err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
	}
	if params.To != "" {
		if to, err = core.ParseDate(params.To); err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
	}

	transactionService := services.NewTransactionService(repo)
	occurrences, err := transactionService.ListExpanded(ctx, flow, from, to)
	if err != nil {
		return err
	}
	if len(occurrences) == 0 {
		fmt.Printf("No %s occurrences between %s and %s.\n", flow, from, to)
		return nil
	}

	var totalCents int64

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Date", "Description", "Kind", "Category", "Amount"})

	for _, occ := range occurrences {
		totalCents += occ.Amount.Cents
		t.AppendRow(table.Row{
			occ.Date.String(),
			occ.Description,
			string(occ.Kind),
			occ.Category,
			occ.Amount.String(),
		})
	}

	t.AppendSeparator()
	t.AppendFooter(table.Row{"", "", "",
		text.Bold.Sprint("Total"),
		text.Bold.Sprint(core.Money{Cents: totalCents}.String()),
	})

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
	})
	t.Render()

	return nil
}

func runUsage(ctx context.Context, repo *storage.SQLiteRepository, cardID int64) error {
	if cardID == 0 {
		return fmt.Errorf("--card is required")
	}

	card, err := repo.GetCard(ctx, cardID)
	if err != nil {
		return err
	}

	transactionService := services.NewTransactionService(repo)
	usage, err := transactionService.CardUsage(ctx, cardID, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("%s (limit %s)\n", card.Name, card.Limit)
	fmt.Printf("  Used:      %s (%.1f%%)\n", usage.UsedAmount, usage.UsagePercentage)
	fmt.Printf("  Available: %s\n", usage.AvailableLimit)
	return nil
}

func runSeed(ctx context.Context, repo *storage.SQLiteRepository, path string) error {
	if path == "" {
		return fmt.Errorf("--file is required")
	}

	seed, err := cli.LoadSeedFile(path)
	if err != nil {
		return err
	}

	transactionService := services.NewTransactionService(repo)
	purchaseService := services.NewPurchaseService(repo)
	billingService := services.NewBillingService(repo, nil)
	importService := services.NewImportService(repo, purchaseService, transactionService, billingService)

	if err := cli.ApplySeed(ctx, seed, transactionService, purchaseService, importService); err != nil {
		return err
	}

	fmt.Printf("Seeded %d wallets, %d cards, %d transactions, %d purchases.\n",
		len(seed.Wallets), len(seed.Cards), len(seed.Transactions), len(seed.Purchases))
	return nil
}

func runAlerts(ctx context.Context, cfg *config.Config) error {
	if cfg.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL is not configured")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Tailing %s (Ctrl+C to stop)\n", cfg.AMQPQueue)
	err = client.ConsumeBillAlerts(ctx, func(msg *amqp.BillAlertMessage) error {
		fmt.Printf("%s  %-12s  bill=%d card=%d total=%s due=%s\n",
			msg.Timestamp.Format(time.RFC3339),
			msg.Kind,
			msg.BillID,
			msg.CardID,
			core.Money{Cents: msg.TotalCents},
			msg.DueDate)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func colorStatus(status core.BillStatus) string {
	switch status {
	case core.StatusPaid:
		return text.FgGreen.Sprint(string(status))
	case core.StatusOverdue:
		return text.FgRed.Sprint(string(status))
	case core.StatusPartial:
		return text.FgYellow.Sprint(string(status))
	default:
		return string(status)
	}
}
