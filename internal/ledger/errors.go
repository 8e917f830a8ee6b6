package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidTransfer      = errors.New("source and destination accounts must differ")
	ErrInvalidType          = errors.New("type must be income or expense")
	ErrUnknownAccount       = errors.New("unknown account")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrMalformedTransaction = errors.New("malformed transaction")
	ErrNotFound             = errors.New("not found")
	ErrProtected            = errors.New("record is protected")
	ErrAlreadyExists        = errors.New("record already exists")
	ErrInUse                = errors.New("record is still referenced by transactions")
	ErrEmptyName            = errors.New("name must not be empty")
	ErrInvalidID            = errors.New("id must be non-empty, use only a-z, 0-9 and dashes, and not be \"all\"")
	ErrAmountOverflow       = errors.New("amount total overflows")
)

// TransferPartiallyFailedError is returned when the first leg of a transfer was
// persisted but the second was not. PersistedLegID identifies the stored leg so
// that it can be reconciled; Compensated reports whether it was already removed.
type TransferPartiallyFailedError struct {
	TransferID     string
	PersistedLegID string
	Compensated    bool
	Err            error
}

func (e *TransferPartiallyFailedError) Error() string {
	state := "left in place"
	if e.Compensated {
		state = "rolled back"
	}

	return fmt.Sprintf("transfer %s partially failed, leg %s %s: %v", e.TransferID, e.PersistedLegID, state, e.Err)
}

func (e *TransferPartiallyFailedError) Unwrap() error {
	return e.Err
}

// RepositoryError wraps a failure surfaced by a store without reinterpreting it.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// WrapRepo returns err wrapped in a RepositoryError, leaving nil and ledger
// sentinel errors (ErrNotFound, ErrProtected, ...) recognisable through errors.Is.
func WrapRepo(op string, err error) error {
	if err == nil {
		return nil
	}

	return &RepositoryError{Op: op, Err: err}
}
