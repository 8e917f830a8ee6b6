package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pocket/internal/database"
	"github.com/MrJamesThe3rd/pocket/internal/export"
	"github.com/MrJamesThe3rd/pocket/internal/importer"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want %s", s, time.DateOnly)
	}

	return d, nil
}

func (c *cli) summaryCmd() *cobra.Command {
	var filter ledger.Filter

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals, account balances and spending by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.Ledger.Summary(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Income:   %s\nExpenses: %s\nBalance:  %s\n\n",
				ledger.FormatAmount(s.Income), ledger.FormatAmount(s.Expenses), ledger.FormatAmount(s.Balance))

			accounts := newTable("Account", "Balance")
			for _, ab := range s.Accounts {
				accounts.Row(ab.Account.Name, ledger.FormatAmount(ab.Balance))
			}

			fmt.Fprintln(out, accounts.String())

			if len(s.Breakdown) > 0 {
				breakdown := newTable("Category", "Spent")
				for _, ct := range s.Breakdown {
					breakdown.Row(ct.Category.Name, ledger.FormatAmount(ct.Amount))
				}

				fmt.Fprintln(out, breakdown.String())
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&filter.AccountID, "account", ledger.AllAccounts, "Account id, or all")
	cmd.Flags().StringVar(&filter.Type, "type", ledger.AllTypes, "income, expense or all")

	return cmd
}

func (c *cli) accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.Ledger.Load(cmd.Context())
			if err != nil {
				return err
			}

			balances, err := ledger.AccountBalances(st.Accounts, st.Transactions)
			if err != nil {
				return err
			}

			t := newTable("ID", "Name", "Initial", "Balance")
			for _, ab := range balances {
				t.Row(ab.Account.ID, ab.Account.Name,
					ledger.FormatAmount(ab.Account.InitialBalance), ledger.FormatAmount(ab.Balance))
			}

			fmt.Fprintln(cmd.OutOrStdout(), t.String())

			return nil
		},
	}

	cmd.AddCommand(c.accountAddCmd())

	return cmd
}

func (c *cli) accountAddCmd() *cobra.Command {
	var (
		params  ledger.AccountParams
		initial string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Name = args[0]

			if initial != "" {
				cents, err := ledger.ParseAmount(initial)
				if err != nil {
					return err
				}

				params.InitialBalance = cents
			}

			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			acc, err := a.Ledger.CreateAccount(cmd.Context(), params)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created account %s (%s)\n", acc.ID, acc.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&params.ID, "id", "", "Account id (derived from the name when empty)")
	cmd.Flags().StringVar(&initial, "initial", "", "Initial balance, e.g. 100,00")

	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	var (
		params       ledger.CreateParams
		amount, date string
		typ          string
	)

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Record an income or expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := ledger.ParseAmount(amount)
			if err != nil {
				return err
			}

			params.Date, err = parseDate(date)
			if err != nil {
				return err
			}

			params.Description = args[0]
			params.Amount = cents
			params.Type = ledger.Type(typ)

			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			tx, err := a.Ledger.CreateTransaction(cmd.Context(), params)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s [%s] %s\n",
				tx.ID, tx.Date.Format(time.DateOnly), ledger.FormatAmount(tx.Amount), tx.Category, tx.Description)

			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, e.g. 12,50")
	cmd.Flags().StringVarP(&typ, "type", "t", string(ledger.TypeExpense), "income or expense")
	cmd.Flags().StringVar(&params.Category, "category", "", "Category id (suggested from the description when empty)")
	cmd.Flags().StringVar(&params.AccountID, "account", ledger.DefaultAccountID, "Account id")
	cmd.Flags().StringVar(&params.PaymentMethod, "method", "", "Payment method id")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func (c *cli) transferCmd() *cobra.Command {
	var (
		req          ledger.TransferRequest
		amount, date string
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between two accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cents, err := ledger.ParseAmount(amount)
			if err != nil {
				return err
			}

			req.Date, err = parseDate(date)
			if err != nil {
				return err
			}

			req.Amount = cents

			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.Ledger.Transfer(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "transfer %s: %s from %s to %s\n",
				t.TransferID, ledger.FormatAmount(t.Expense.Amount), t.Expense.AccountID, t.Income.AccountID)

			return nil
		},
	}

	cmd.Flags().StringVar(&req.FromAccountID, "from", "", "Source account id")
	cmd.Flags().StringVar(&req.ToAccountID, "to", "", "Destination account id")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, e.g. 50,00")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var (
		format string
		opts   importer.Options
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions from a pocket export or a bank statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Import.Import(cmd.Context(), importer.Format(format), f, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if opts.DryRun {
				fmt.Fprintf(out, "dry run: %d entries would be imported (%s)\n", res.Parsed, res.Charset)
			} else {
				fmt.Fprintf(out, "imported %d transactions and %d transfers (%s)\n",
					len(res.Transactions), len(res.Transfers), res.Charset)
			}

			for _, le := range res.Failed {
				fmt.Fprintf(out, "  rejected %v\n", le)
			}

			for _, le := range res.Skipped {
				fmt.Fprintf(out, "  skipped %v\n", le)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(importer.FormatPocket), "pocket or statement")
	cmd.Flags().StringVar(&opts.AccountID, "account", "", "Record every plain row on this account")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Parse and report without writing")

	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		output string
		format string
		filter = ledger.Filter{AccountID: ledger.AllAccounts, Type: ledger.AllTypes}
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as CSV or a plain-text report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()

				w = f
			}

			switch strings.ToLower(format) {
			case "csv":
				n, err := a.Export.CSV(cmd.Context(), w, filter)
				if err != nil {
					return err
				}

				if output != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %d transactions to %s\n", n, output)
				}

				return nil
			case "text":
				st, err := a.Ledger.Load(cmd.Context())
				if err != nil {
					return err
				}

				return export.WriteText(w, ledger.SortByDateDesc(ledger.FilterTransactions(st.Transactions, filter)), st)
			default:
				return fmt.Errorf("unknown export format %q", format)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or text")
	cmd.Flags().StringVar(&filter.AccountID, "account", ledger.AllAccounts, "Account id, or all")
	cmd.Flags().StringVar(&filter.Type, "type", ledger.AllTypes, "income, expense or all")

	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or with --down revert) the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.DemoMode() {
				return errors.New("the memory backend has no schema")
			}

			dialect, dsn, err := c.cfg.Database()
			if err != nil {
				return err
			}

			if down {
				if err := database.Rollback(dialect, dsn); err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), "schema reverted")

				return nil
			}

			if err := database.Migrate(dialect, dsn); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")

			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "Revert every migration")

	return cmd
}
