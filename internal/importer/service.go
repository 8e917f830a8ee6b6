package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/pocket/internal/encoding"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

// Recorder is the write side of *ledger.Service the importer needs.
type Recorder interface {
	CreateTransaction(ctx context.Context, params ledger.CreateParams) (*ledger.Transaction, error)
	Transfer(ctx context.Context, req ledger.TransferRequest) (*ledger.Transfer, error)
}

type Options struct {
	// AccountID, when set, overrides the account of every plain row.
	AccountID string
	// DryRun parses and reports without writing.
	DryRun bool
}

type Result struct {
	Charset      string
	Transactions []ledger.Transaction
	Transfers    []ledger.Transfer
	// Failed lists lines that parsed but were rejected by the ledger.
	Failed  []LineError
	Skipped []LineError
	// Parsed counts rows and transfers that would be written; set on dry runs too.
	Parsed int
}

type Service struct {
	recorder Recorder
	parsers  map[Format]Parser
}

func NewService(recorder Recorder) *Service {
	return &Service{
		recorder: recorder,
		parsers: map[Format]Parser{
			FormatPocket:    PocketParser{},
			FormatStatement: StatementParser{},
		},
	}
}

// Import parses r in the given format and records every row through the
// ledger. A row the ledger rejects does not stop the others.
func (s *Service) Import(ctx context.Context, format Format, r io.Reader, opts Options) (*Result, error) {
	parser, ok := s.parsers[format]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	utf8, charset, err := encoding.Detect(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	batch, err := parser.Parse(utf8)
	if err != nil {
		return nil, fmt.Errorf("parsing %s file: %w", format, err)
	}

	res := &Result{
		Charset: charset,
		Skipped: batch.Skipped,
		Parsed:  len(batch.Rows) + len(batch.Transfers),
	}

	if opts.DryRun {
		return res, nil
	}

	for _, row := range batch.Rows {
		if opts.AccountID != "" {
			row.Params.AccountID = opts.AccountID
		}

		tx, err := s.recorder.CreateTransaction(ctx, row.Params)
		if err != nil {
			res.Failed = append(res.Failed, LineError{Line: row.Line, Err: err})
			continue
		}

		res.Transactions = append(res.Transactions, *tx)
	}

	for _, tr := range batch.Transfers {
		t, err := s.recorder.Transfer(ctx, tr.Request)
		if err != nil {
			res.Failed = append(res.Failed, LineError{Line: tr.Line, Err: err})
			continue
		}

		res.Transfers = append(res.Transfers, *t)
	}

	slog.InfoContext(ctx, "import finished",
		"format", format,
		"charset", charset,
		"transactions", len(res.Transactions),
		"transfers", len(res.Transfers),
		"failed", len(res.Failed),
		"skipped", len(res.Skipped))

	return res, nil
}
