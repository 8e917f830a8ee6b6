package ledger

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

const maxTransferIDAttempts = 8

var errTransferIDExhausted = errors.New("could not generate a unique transfer id")

// TransferRequest describes a movement of funds between two accounts.
type TransferRequest struct {
	FromAccountID string
	ToAccountID   string
	Amount        int64 // Amount in cents
	Date          time.Time
}

// Transfer is a pair of linked transactions: an expense on the source account
// and an income on the destination account, sharing TransferID.
type Transfer struct {
	TransferID string
	Expense    Transaction
	Income     Transaction
}

// Legs returns the expense leg followed by the income leg.
func (t Transfer) Legs() []Transaction {
	return []Transaction{t.Expense, t.Income}
}

// Builder constructs transfer pairs. NewID and Now are injectable so that
// tests can produce deterministic ids and timestamps.
type Builder struct {
	NewID func() string
	Now   func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{
		NewID: uuid.NewString,
		Now:   time.Now,
	}
}

// Build validates req against accounts and returns the two legs of the transfer.
// Nothing is generated unless every precondition holds. The transfer id is
// guaranteed not to collide with any id or transfer id in existing.
func (b *Builder) Build(accounts []Account, existing []Transaction, req TransferRequest) (Transfer, error) {
	if req.FromAccountID == req.ToAccountID {
		return Transfer{}, ErrInvalidTransfer
	}

	if req.Amount <= 0 {
		return Transfer{}, ErrInvalidAmount
	}

	if err := CheckAmount(req.Amount); err != nil {
		return Transfer{}, err
	}

	from, ok := findAccount(accounts, req.FromAccountID)
	if !ok {
		return Transfer{}, fmt.Errorf("%w: %s", ErrUnknownAccount, req.FromAccountID)
	}

	to, ok := findAccount(accounts, req.ToAccountID)
	if !ok {
		return Transfer{}, fmt.Errorf("%w: %s", ErrUnknownAccount, req.ToAccountID)
	}

	taken := make(map[string]struct{}, len(existing)*2)
	for _, t := range existing {
		taken[t.ID] = struct{}{}

		if t.TransferID != "" {
			taken[t.TransferID] = struct{}{}
		}
	}

	transferID, err := b.freshID(taken)
	if err != nil {
		return Transfer{}, err
	}

	expenseID, err := b.freshID(taken)
	if err != nil {
		return Transfer{}, err
	}

	incomeID, err := b.freshID(taken)
	if err != nil {
		return Transfer{}, err
	}

	now := b.Now()
	date := DateOnly(req.Date)

	return Transfer{
		TransferID: transferID,
		Expense: Transaction{
			ID:          expenseID,
			CreatedAt:   now,
			Description: "Transfer to " + to.Name,
			Amount:      req.Amount,
			Type:        TypeExpense,
			Category:    CategoryTransfer,
			Date:        date,
			AccountID:   from.ID,
			TransferID:  transferID,
		},
		Income: Transaction{
			ID:          incomeID,
			CreatedAt:   now,
			Description: "Transfer from " + from.Name,
			Amount:      req.Amount,
			Type:        TypeIncome,
			Category:    CategoryTransfer,
			Date:        date,
			AccountID:   to.ID,
			TransferID:  transferID,
		},
	}, nil
}

// freshID returns an id not present in taken and reserves it.
func (b *Builder) freshID(taken map[string]struct{}) (string, error) {
	for range maxTransferIDAttempts {
		id := b.NewID()
		if _, dup := taken[id]; dup || id == "" {
			continue
		}

		taken[id] = struct{}{}

		return id, nil
	}

	return "", errTransferIDExhausted
}

func findAccount(accounts []Account, id string) (Account, bool) {
	idx := slices.IndexFunc(accounts, func(a Account) bool { return a.ID == id })
	if idx < 0 {
		return Account{}, false
	}

	return accounts[idx], true
}
