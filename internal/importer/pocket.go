package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/pocket/internal/export"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

var (
	ErrMissingHeader      = errors.New("missing header")
	ErrIncompleteTransfer = errors.New("transfer needs exactly one expense and one income leg of the same amount and date")
)

var requiredColumns = []string{"date", "description", "amount", "type"}

// PocketParser reads files written by export.WriteCSV.
type PocketParser struct{}

func (PocketParser) Parse(r io.Reader) (*Batch, error) {
	reader := csv.NewReader(r)
	reader.Comma = export.Separator
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingHeader
		}

		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: column %q not found", ErrMissingHeader, col)
		}
	}

	field := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}

		return strings.TrimSpace(row[i])
	}

	batch := &Batch{}
	legs := newLegCollector()

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				batch.Skipped = append(batch.Skipped, LineError{Line: perr.Line, Err: perr.Err})
				continue
			}

			return nil, fmt.Errorf("reading csv: %w", err)
		}

		if isBlank(row) {
			continue
		}

		line, _ := reader.FieldPos(0)

		params, err := parsePocketRow(row, field)
		if err != nil {
			batch.Skipped = append(batch.Skipped, LineError{Line: line, Err: err})
			continue
		}

		if id := field(row, "transfer_id"); id != "" {
			legs.add(id, line, params)
			continue
		}

		batch.Rows = append(batch.Rows, Row{Line: line, Params: params})
	}

	transfers, skipped := legs.pairs()
	batch.Transfers = transfers
	batch.Skipped = append(batch.Skipped, skipped...)

	return batch, nil
}

func parsePocketRow(row []string, field func([]string, string) string) (ledger.CreateParams, error) {
	date, err := parseDate(field(row, "date"))
	if err != nil {
		return ledger.CreateParams{}, err
	}

	amount, err := ledger.ParseAmount(field(row, "amount"))
	if err != nil {
		return ledger.CreateParams{}, err
	}

	if amount <= 0 {
		return ledger.CreateParams{}, ledger.ErrInvalidAmount
	}

	typ := ledger.Type(strings.ToLower(field(row, "type")))
	if !typ.Valid() {
		return ledger.CreateParams{}, fmt.Errorf("%w: %q", ledger.ErrInvalidType, field(row, "type"))
	}

	return ledger.CreateParams{
		Description:   field(row, "description"),
		Amount:        amount,
		Type:          typ,
		Category:      field(row, "category"),
		Date:          date,
		PaymentMethod: field(row, "payment_method"),
		AccountID:     field(row, "account"),
	}, nil
}

type leg struct {
	line   int
	params ledger.CreateParams
}

// legCollector groups exported transfer legs by transfer id, keeping first-seen order.
type legCollector struct {
	order []string
	legs  map[string][]leg
}

func newLegCollector() *legCollector {
	return &legCollector{legs: make(map[string][]leg)}
}

func (c *legCollector) add(id string, line int, params ledger.CreateParams) {
	if _, seen := c.legs[id]; !seen {
		c.order = append(c.order, id)
	}

	c.legs[id] = append(c.legs[id], leg{line: line, params: params})
}

func (c *legCollector) pairs() ([]TransferRow, []LineError) {
	var (
		transfers []TransferRow
		skipped   []LineError
	)

	for _, id := range c.order {
		legs := c.legs[id]

		out, in, ok := splitLegs(legs)
		if !ok {
			for _, l := range legs {
				skipped = append(skipped, LineError{Line: l.line, Err: fmt.Errorf("%w: %s", ErrIncompleteTransfer, id)})
			}

			continue
		}

		transfers = append(transfers, TransferRow{
			Line: min(out.line, in.line),
			Request: ledger.TransferRequest{
				FromAccountID: out.params.AccountID,
				ToAccountID:   in.params.AccountID,
				Amount:        out.params.Amount,
				Date:          out.params.Date,
			},
		})
	}

	return transfers, skipped
}

func splitLegs(legs []leg) (out, in leg, ok bool) {
	if len(legs) != 2 || legs[0].params.Type == legs[1].params.Type {
		return leg{}, leg{}, false
	}

	out, in = legs[0], legs[1]
	if out.params.Type == ledger.TypeIncome {
		out, in = in, out
	}

	if out.params.Amount != in.params.Amount || !out.params.Date.Equal(in.params.Date) {
		return leg{}, leg{}, false
	}

	return out, in, true
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}
