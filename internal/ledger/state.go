package ledger

// State is the in-memory snapshot a client session works on: every collection
// loaded from the repository plus the active display filter.
type State struct {
	Transactions   []Transaction
	Accounts       []Account
	Categories     []Category
	PaymentMethods []PaymentMethod
	Filter         Filter
}

// Summary is everything a dashboard needs, computed from a State.
type Summary struct {
	// Income and Expenses are totals over the filtered transactions.
	Income   int64
	Expenses int64

	// Accounts and Balance always reflect the full, unfiltered history.
	Accounts []AccountBalance
	Balance  int64

	Breakdown    []CategoryTotal
	Transactions []Transaction // Filtered, newest first
}

// Summarize computes the dashboard Summary of s. It is pure: the same State
// always yields the same Summary.
func Summarize(s State) (Summary, error) {
	filtered := FilterTransactions(s.Transactions, s.Filter)

	income, err := TotalByType(filtered, TypeIncome)
	if err != nil {
		return Summary{}, err
	}

	expenses, err := TotalByType(filtered, TypeExpense)
	if err != nil {
		return Summary{}, err
	}

	balances, err := AccountBalances(s.Accounts, s.Transactions)
	if err != nil {
		return Summary{}, err
	}

	if err := checkOrphans(s.Accounts, s.Transactions); err != nil {
		return Summary{}, err
	}

	overall, err := sumBalances(balances)
	if err != nil {
		return Summary{}, err
	}

	breakdown, err := CategoryBreakdown(filtered, s.Categories)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Income:       income,
		Expenses:     expenses,
		Accounts:     balances,
		Balance:      overall,
		Breakdown:    breakdown,
		Transactions: SortByDateDesc(filtered),
	}, nil
}

// Account returns the account with the given id.
func (s *State) Account(id string) (Account, bool) {
	return findAccount(s.Accounts, id)
}

// CategoryName resolves a category id for display, tolerating dangling references.
func (s *State) CategoryName(id string) string {
	for _, c := range s.Categories {
		if c.ID == id {
			return c.Name
		}
	}

	return "unknown"
}

// PaymentMethodName resolves a payment method id for display, tolerating dangling references.
func (s *State) PaymentMethodName(id string) string {
	for _, pm := range s.PaymentMethods {
		if pm.ID == id {
			return pm.Name
		}
	}

	return "unknown"
}

// AccountName resolves an account id for display.
func (s *State) AccountName(id string) string {
	if a, ok := s.Account(id); ok {
		return a.Name
	}

	return "unknown"
}
