// Package export writes transactions out as CSV or as a plain-text report.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

// Columns is the header of the CSV format, shared with the importer.
var Columns = []string{"date", "description", "amount", "type", "category", "payment_method", "account", "transfer_id"}

const (
	DateLayout = "2006-01-02"
	Separator  = ';'
)

// Lister is the read side of *ledger.Service the exporter needs.
type Lister interface {
	ListTransactions(ctx context.Context, filter ledger.Filter) ([]ledger.Transaction, error)
}

// Names resolves ids for display. *ledger.State satisfies it.
type Names interface {
	CategoryName(id string) string
	AccountName(id string) string
}

type Service struct {
	transactions Lister
}

func NewService(transactions Lister) *Service {
	return &Service{transactions: transactions}
}

// CSV writes every transaction matching filter to w, newest first, and returns
// how many rows were written.
func (s *Service) CSV(ctx context.Context, w io.Writer, filter ledger.Filter) (int, error) {
	txs, err := s.transactions.ListTransactions(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	if err := WriteCSV(w, txs); err != nil {
		return 0, err
	}

	return len(txs), nil
}

// Filename is the suggested download name for an export taken at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("pocket_%s.csv", now.Format("20060102"))
}

func WriteCSV(w io.Writer, txs []ledger.Transaction) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, t := range txs {
		record := []string{
			t.Date.Format(DateLayout),
			t.Description,
			ledger.FormatAmount(t.Amount),
			string(t.Type),
			t.Category,
			t.PaymentMethod,
			t.AccountID,
			t.TransferID,
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing transaction %s: %w", t.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

// WriteText renders a one-line-per-transaction report suitable for pasting
// into a message.
func WriteText(w io.Writer, txs []ledger.Transaction, names Names) error {
	var sb strings.Builder

	for _, t := range txs {
		sign := "-"
		if t.Type == ledger.TypeIncome {
			sign = "+"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s%s | %s | %s\n",
			t.Date.Format(DateLayout),
			t.Description,
			sign, ledger.FormatAmount(t.Amount),
			names.CategoryName(t.Category),
			names.AccountName(t.AccountID),
		)
	}

	_, err := io.WriteString(w, sb.String())

	return err
}
