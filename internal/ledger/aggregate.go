package ledger

import (
	"fmt"
	"slices"
)

// AllAccounts and AllTypes select every account or type in a Filter.
const (
	AllAccounts = "all"
	AllTypes    = "all"
)

// Filter narrows the transaction list shown to the user. Empty fields behave as "all".
type Filter struct {
	AccountID string
	Type      string
}

func (f Filter) matchesAccount(t Transaction) bool {
	return f.AccountID == "" || f.AccountID == AllAccounts || t.AccountID == f.AccountID
}

func (f Filter) matchesType(t Transaction) bool {
	return f.Type == "" || f.Type == AllTypes || string(t.Type) == f.Type
}

// CategoryTotal is the expense total of a single category.
type CategoryTotal struct {
	Category Category
	Amount   int64
}

// AccountBalance pairs an account with its balance over the full history.
type AccountBalance struct {
	Account Account
	Balance int64
}

// Validate reports whether a stored transaction carries every field the
// aggregation needs. A malformed record is a data-integrity bug.
func (t Transaction) Validate() error {
	switch {
	case t.ID == "":
		return fmt.Errorf("%w: missing id", ErrMalformedTransaction)
	case !t.Type.Valid():
		return fmt.Errorf("%w: transaction %s has type %q", ErrMalformedTransaction, t.ID, t.Type)
	case t.Amount < 0:
		return fmt.Errorf("%w: transaction %s has negative amount %d", ErrMalformedTransaction, t.ID, t.Amount)
	case t.Amount > MaxAmount:
		return fmt.Errorf("%w: transaction %s has amount %d above the maximum", ErrMalformedTransaction, t.ID, t.Amount)
	case t.AccountID == "":
		return fmt.Errorf("%w: transaction %s has no account", ErrMalformedTransaction, t.ID)
	}

	return nil
}

// FilterTransactions returns the transactions matching f, preserving input order.
func FilterTransactions(txs []Transaction, f Filter) []Transaction {
	out := make([]Transaction, 0, len(txs))

	for _, t := range txs {
		if f.matchesAccount(t) && f.matchesType(t) {
			out = append(out, t)
		}
	}

	return out
}

// TotalByType sums the amounts of all transactions of the given type.
func TotalByType(txs []Transaction, typ Type) (int64, error) {
	var total int64

	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return 0, err
		}

		if t.Type != typ {
			continue
		}

		var err error
		if total, err = addCents(total, t.Amount); err != nil {
			return 0, err
		}
	}

	return total, nil
}

// AccountBalanceOf returns the opening balance of acc plus its income minus its
// expenses over all transactions, regardless of any display filter.
func AccountBalanceOf(acc Account, all []Transaction) (int64, error) {
	balance := acc.InitialBalance

	for _, t := range all {
		if err := t.Validate(); err != nil {
			return 0, err
		}

		if t.AccountID != acc.ID {
			continue
		}

		delta := t.Amount
		if t.Type == TypeExpense {
			delta = -delta
		}

		var err error
		if balance, err = addCents(balance, delta); err != nil {
			return 0, fmt.Errorf("account %s: %w", acc.ID, err)
		}
	}

	return balance, nil
}

// BalanceOf looks up accountID among accounts and returns its balance.
func BalanceOf(accounts []Account, all []Transaction, accountID string) (int64, error) {
	idx := slices.IndexFunc(accounts, func(a Account) bool { return a.ID == accountID })
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}

	return AccountBalanceOf(accounts[idx], all)
}

// AccountBalances returns the balance of every account, in account order.
func AccountBalances(accounts []Account, all []Transaction) ([]AccountBalance, error) {
	out := make([]AccountBalance, 0, len(accounts))

	for _, acc := range accounts {
		b, err := AccountBalanceOf(acc, all)
		if err != nil {
			return nil, err
		}

		out = append(out, AccountBalance{Account: acc, Balance: b})
	}

	return out, nil
}

// OverallBalance sums the balances of all accounts. A transaction on an account
// that is not listed fails with ErrUnknownAccount, so the result always equals
// the opening balances plus all income minus all expenses.
func OverallBalance(accounts []Account, all []Transaction) (int64, error) {
	balances, err := AccountBalances(accounts, all)
	if err != nil {
		return 0, err
	}

	if err := checkOrphans(accounts, all); err != nil {
		return 0, err
	}

	return sumBalances(balances)
}

func sumBalances(balances []AccountBalance) (int64, error) {
	var (
		total int64
		err   error
	)

	for _, b := range balances {
		if total, err = addCents(total, b.Balance); err != nil {
			return 0, err
		}
	}

	return total, nil
}

// checkOrphans fails for the first transaction whose account is not listed.
func checkOrphans(accounts []Account, all []Transaction) error {
	known := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		known[a.ID] = struct{}{}
	}

	for _, t := range all {
		if _, ok := known[t.AccountID]; !ok {
			return fmt.Errorf("%w: %s on transaction %s", ErrUnknownAccount, t.AccountID, t.ID)
		}
	}

	return nil
}

// CategoryBreakdown returns the expense total per category in category order,
// omitting categories with nothing spent. Expenses with a category that is not
// in categories are not counted.
func CategoryBreakdown(txs []Transaction, categories []Category) ([]CategoryTotal, error) {
	sums := make(map[string]int64, len(categories))

	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return nil, err
		}

		if t.Type != TypeExpense {
			continue
		}

		sum, err := addCents(sums[t.Category], t.Amount)
		if err != nil {
			return nil, err
		}

		sums[t.Category] = sum
	}

	out := make([]CategoryTotal, 0, len(categories))

	for _, c := range categories {
		if sums[c.ID] == 0 {
			continue
		}

		out = append(out, CategoryTotal{Category: c, Amount: sums[c.ID]})
	}

	return out, nil
}

// SortByDateDesc returns a copy of txs ordered for display: newest date first,
// then most recently created first.
func SortByDateDesc(txs []Transaction) []Transaction {
	out := slices.Clone(txs)

	slices.SortStableFunc(out, func(a, b Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}

		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return out
}
