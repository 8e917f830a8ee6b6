package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

// Header landmarks used by Brazilian and Portuguese banks.
var (
	dateColumns   = []string{"data", "data mov.", "data lançamento", "data movimento"}
	descColumns   = []string{"descrição", "histórico", "lançamento", "descricao", "historico"}
	amountColumns = []string{"valor", "montante", "valor (r$)", "valor (eur)"}
)

var dateLayouts = []string{"02/01/2006", "02-01-2006", "2006-01-02"}

// StatementParser reads bank statements: any preamble, a header row with a
// date and an amount column, data rows, and an optional footer. Negative
// amounts become expenses.
type StatementParser struct{}

func (StatementParser) Parse(r io.Reader) (*Batch, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	batch := &Batch{}

	idxDate, idxDesc, idxAmount := -1, -1, -1
	headerFound := false

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if !headerFound {
			idxDate, idxDesc, idxAmount = findColumns(row)
			headerFound = idxDate >= 0 && idxAmount >= 0

			continue
		}

		if len(row) <= max(idxDate, idxDesc, idxAmount) {
			continue
		}

		// Rows without a date are balance lines or footers.
		date, err := parseDate(strings.TrimSpace(row[idxDate]))
		if err != nil {
			continue
		}

		amount, err := ledger.ParseAmount(row[idxAmount])
		if err != nil {
			batch.Skipped = append(batch.Skipped, LineError{Line: line, Err: err})
			continue
		}

		if amount == 0 {
			batch.Skipped = append(batch.Skipped, LineError{Line: line, Err: ledger.ErrInvalidAmount})
			continue
		}

		typ := ledger.TypeIncome
		if amount < 0 {
			typ = ledger.TypeExpense
			amount = -amount
		}

		description := ""
		if idxDesc >= 0 {
			description = strings.TrimSpace(row[idxDesc])
		}

		batch.Rows = append(batch.Rows, Row{
			Line: line,
			Params: ledger.CreateParams{
				Description: description,
				Amount:      amount,
				Type:        typ,
				Date:        date,
			},
		})
	}

	if !headerFound {
		return nil, fmt.Errorf("%w: no date and amount columns", ErrMissingHeader)
	}

	return batch, nil
}

func findColumns(row []string) (date, desc, amount int) {
	date, desc, amount = -1, -1, -1

	for i, col := range row {
		col = strings.ToLower(strings.TrimSpace(col))

		switch {
		case date < 0 && contains(dateColumns, col):
			date = i
		case desc < 0 && contains(descColumns, col):
			desc = i
		case amount < 0 && contains(amountColumns, col):
			amount = i
		}
	}

	return date, desc, amount
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
