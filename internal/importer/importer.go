// Package importer turns CSV files into ledger writes.
package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

type Format string

const (
	// FormatPocket is the format written by the export package.
	FormatPocket Format = "pocket"
	// FormatStatement is a bank statement with date, description and a signed amount.
	FormatStatement Format = "statement"
)

// Parser reads one file format.
type Parser interface {
	Parse(r io.Reader) (*Batch, error)
}

// Row is a plain transaction read from line Line of the file.
type Row struct {
	Line   int
	Params ledger.CreateParams
}

// TransferRow is a transfer reassembled from its two legs. Line is the first leg's line.
type TransferRow struct {
	Line    int
	Request ledger.TransferRequest
}

// Batch is everything a parser read from a file.
type Batch struct {
	Rows      []Row
	Transfers []TransferRow
	Skipped   []LineError
}

// LineError explains why a line was not imported.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}
