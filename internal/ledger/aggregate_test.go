package ledger_test

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func fixture() ([]ledger.Account, []ledger.Transaction) {
	accounts := []ledger.Account{
		{ID: ledger.DefaultAccountID, Name: "Carteira"},
		{ID: "savings", Name: "Poupança", InitialBalance: 10000},
	}

	txs := []ledger.Transaction{
		{ID: "t1", Amount: 500000, Type: ledger.TypeIncome, Category: "salary", AccountID: ledger.DefaultAccountID, Date: day(1)},
		{ID: "t2", Amount: 12050, Type: ledger.TypeExpense, Category: "food", AccountID: ledger.DefaultAccountID, Date: day(2)},
		{ID: "t3", Amount: 3000, Type: ledger.TypeExpense, Category: "transport", AccountID: "savings", Date: day(3)},
		{ID: "t4", Amount: 999, Type: ledger.TypeExpense, Category: "ghost", AccountID: ledger.DefaultAccountID, Date: day(3)},
		{ID: "t5", Amount: 2000, Type: ledger.TypeIncome, Category: "other", AccountID: "savings", Date: day(4)},
	}

	return accounts, txs
}

func ids(txs []ledger.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}

	return out
}

func TestFilterTransactions(t *testing.T) {
	_, txs := fixture()

	tests := []struct {
		name   string
		filter ledger.Filter
		want   []string
	}{
		{name: "AllAll", filter: ledger.Filter{AccountID: ledger.AllAccounts, Type: ledger.AllTypes}, want: []string{"t1", "t2", "t3", "t4", "t5"}},
		{name: "ZeroValue", filter: ledger.Filter{}, want: []string{"t1", "t2", "t3", "t4", "t5"}},
		{name: "Account", filter: ledger.Filter{AccountID: "savings", Type: ledger.AllTypes}, want: []string{"t3", "t5"}},
		{name: "Type", filter: ledger.Filter{AccountID: ledger.AllAccounts, Type: "expense"}, want: []string{"t2", "t3", "t4"}},
		{name: "Both", filter: ledger.Filter{AccountID: ledger.DefaultAccountID, Type: "income"}, want: []string{"t1"}},
		{name: "UnknownAccount", filter: ledger.Filter{AccountID: "nope", Type: ledger.AllTypes}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(ledger.FilterTransactions(txs, tt.filter)))
		})
	}
}

func TestTotalByType(t *testing.T) {
	_, txs := fixture()

	income, err := ledger.TotalByType(txs, ledger.TypeIncome)
	require.NoError(t, err)
	assert.Equal(t, int64(502000), income)

	expense, err := ledger.TotalByType(txs, ledger.TypeExpense)
	require.NoError(t, err)
	assert.Equal(t, int64(16049), expense)

	empty, err := ledger.TotalByType(nil, ledger.TypeIncome)
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestTotalByType_Malformed(t *testing.T) {
	tests := []struct {
		name string
		tx   ledger.Transaction
	}{
		{name: "MissingID", tx: ledger.Transaction{Amount: 1, Type: ledger.TypeIncome, AccountID: "default"}},
		{name: "UnknownType", tx: ledger.Transaction{ID: "x", Amount: 1, Type: "refund", AccountID: "default"}},
		{name: "NegativeAmount", tx: ledger.Transaction{ID: "x", Amount: -1, Type: ledger.TypeExpense, AccountID: "default"}},
		{name: "MissingAccount", tx: ledger.Transaction{ID: "x", Amount: 1, Type: ledger.TypeExpense}},
		{name: "AmountAboveMax", tx: ledger.Transaction{ID: "x", Amount: ledger.MaxAmount + 1, Type: ledger.TypeIncome, AccountID: "default"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.TotalByType([]ledger.Transaction{tt.tx}, ledger.TypeIncome)
			assert.ErrorIs(t, err, ledger.ErrMalformedTransaction)

			_, err = ledger.AccountBalanceOf(ledger.DefaultAccount(), []ledger.Transaction{tt.tx})
			assert.ErrorIs(t, err, ledger.ErrMalformedTransaction)
		})
	}
}

func TestAccountBalances(t *testing.T) {
	accounts, txs := fixture()

	def, err := ledger.BalanceOf(accounts, txs, ledger.DefaultAccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(486951), def)

	savings, err := ledger.BalanceOf(accounts, txs, "savings")
	require.NoError(t, err)
	assert.Equal(t, int64(9000), savings)

	overall, err := ledger.OverallBalance(accounts, txs)
	require.NoError(t, err)
	assert.Equal(t, int64(495951), overall)

	_, err = ledger.BalanceOf(accounts, txs, "missing")
	assert.ErrorIs(t, err, ledger.ErrUnknownAccount)
}

func TestOverallBalance_Errors(t *testing.T) {
	tests := []struct {
		name     string
		accounts []ledger.Account
		txs      []ledger.Transaction
		wantErr  error
	}{
		{
			name:     "TransactionOnUnlistedAccount",
			accounts: []ledger.Account{ledger.DefaultAccount()},
			txs: []ledger.Transaction{
				{ID: "a", Amount: 100, Type: ledger.TypeIncome, AccountID: ledger.DefaultAccountID, Date: day(1)},
				{ID: "b", Amount: 40, Type: ledger.TypeExpense, AccountID: "gone", Date: day(2)},
			},
			wantErr: ledger.ErrUnknownAccount,
		},
		{
			name: "AccountBalanceOverflows",
			accounts: []ledger.Account{
				{ID: ledger.DefaultAccountID, Name: "Carteira", InitialBalance: math.MaxInt64 - 10},
			},
			txs: []ledger.Transaction{
				{ID: "a", Amount: 100, Type: ledger.TypeIncome, AccountID: ledger.DefaultAccountID, Date: day(1)},
			},
			wantErr: ledger.ErrAmountOverflow,
		},
		{
			name: "SumOfAccountsOverflows",
			accounts: []ledger.Account{
				{ID: "a", Name: "A", InitialBalance: math.MaxInt64/2 + 1},
				{ID: "b", Name: "B", InitialBalance: math.MaxInt64/2 + 1},
			},
			wantErr: ledger.ErrAmountOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.OverallBalance(tt.accounts, tt.txs)
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = ledger.Summarize(ledger.State{Accounts: tt.accounts, Transactions: tt.txs})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAccountBalance_IgnoresFilter(t *testing.T) {
	accounts, txs := fixture()

	filtered := ledger.FilterTransactions(txs, ledger.Filter{Type: "income"})

	full, err := ledger.AccountBalanceOf(accounts[0], txs)
	require.NoError(t, err)

	partial, err := ledger.AccountBalanceOf(accounts[0], filtered)
	require.NoError(t, err)

	assert.NotEqual(t, full, partial)
	assert.Equal(t, int64(486951), full)
}

func TestCategoryBreakdown(t *testing.T) {
	_, txs := fixture()

	got, err := ledger.CategoryBreakdown(txs, ledger.BuiltinCategories())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "food", got[0].Category.ID)
	assert.Equal(t, int64(12050), got[0].Amount)
	assert.Equal(t, "transport", got[1].Category.ID)
	assert.Equal(t, int64(3000), got[1].Amount)
}

func TestSortByDateDesc(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	txs := []ledger.Transaction{
		{ID: "a", Date: day(1), CreatedAt: created},
		{ID: "b", Date: day(3), CreatedAt: created},
		{ID: "c", Date: day(3), CreatedAt: created.Add(time.Minute)},
		{ID: "d", Date: day(2), CreatedAt: created},
	}

	got := ledger.SortByDateDesc(txs)
	assert.Equal(t, []string{"c", "b", "d", "a"}, ids(got))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(txs), "input must not be reordered")
}

func TestSummarize(t *testing.T) {
	accounts, txs := fixture()

	summary, err := ledger.Summarize(ledger.State{
		Transactions: txs,
		Accounts:     accounts,
		Categories:   ledger.BuiltinCategories(),
		Filter:       ledger.Filter{AccountID: "savings", Type: ledger.AllTypes},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2000), summary.Income)
	assert.Equal(t, int64(3000), summary.Expenses)
	assert.Equal(t, int64(495951), summary.Balance)
	require.Len(t, summary.Accounts, 2)
	assert.Equal(t, int64(486951), summary.Accounts[0].Balance)
	assert.Equal(t, int64(9000), summary.Accounts[1].Balance)
	require.Len(t, summary.Breakdown, 1)
	assert.Equal(t, "transport", summary.Breakdown[0].Category.ID)
	assert.Equal(t, []string{"t5", "t3"}, ids(summary.Transactions))
}

func TestSummarize_Empty(t *testing.T) {
	summary, err := ledger.Summarize(ledger.State{Accounts: []ledger.Account{ledger.DefaultAccount()}})
	require.NoError(t, err)

	assert.Zero(t, summary.Income)
	assert.Zero(t, summary.Expenses)
	assert.Zero(t, summary.Balance)
	assert.Empty(t, summary.Breakdown)
	assert.Empty(t, summary.Transactions)
}

func TestState_DisplayNames(t *testing.T) {
	accounts, txs := fixture()
	st := ledger.State{
		Transactions:   txs,
		Accounts:       accounts,
		Categories:     ledger.BuiltinCategories(),
		PaymentMethods: ledger.BuiltinPaymentMethods(),
	}

	assert.Equal(t, "Alimentação", st.CategoryName("food"))
	assert.Equal(t, "unknown", st.CategoryName("ghost"))
	assert.Equal(t, "Pix", st.PaymentMethodName("pix"))
	assert.Equal(t, "unknown", st.PaymentMethodName(""))
	assert.Equal(t, "Poupança", st.AccountName("savings"))
	assert.Equal(t, "unknown", st.AccountName("gone"))
}

// randomLedger builds accounts and transactions that only reference those accounts.
func randomLedger(r *rand.Rand) ([]ledger.Account, []ledger.Transaction) {
	n := 1 + r.IntN(5)
	accounts := make([]ledger.Account, n)

	for i := range accounts {
		accounts[i] = ledger.Account{
			ID:             fmt.Sprintf("acc-%d", i),
			Name:           fmt.Sprintf("Account %d", i),
			InitialBalance: r.Int64N(2_000_000) - 1_000_000,
		}
	}

	cats := ledger.BuiltinCategories()
	txs := make([]ledger.Transaction, r.IntN(200))

	for i := range txs {
		typ := ledger.TypeIncome
		if r.IntN(2) == 0 {
			typ = ledger.TypeExpense
		}

		category := cats[r.IntN(len(cats))].ID
		if r.IntN(10) == 0 {
			category = "dangling"
		}

		txs[i] = ledger.Transaction{
			ID:        fmt.Sprintf("tx-%d", i),
			Amount:    r.Int64N(1_000_000),
			Type:      typ,
			Category:  category,
			AccountID: accounts[r.IntN(n)].ID,
			Date:      day(1 + r.IntN(28)),
		}
	}

	return accounts, txs
}

func TestProperty_BalanceIdentity(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for i := range 200 {
		accounts, txs := randomLedger(r)

		overall, err := ledger.OverallBalance(accounts, txs)
		require.NoError(t, err)

		income, err := ledger.TotalByType(txs, ledger.TypeIncome)
		require.NoError(t, err)

		expense, err := ledger.TotalByType(txs, ledger.TypeExpense)
		require.NoError(t, err)

		var initial int64
		for _, a := range accounts {
			initial += a.InitialBalance
		}

		assert.Equal(t, initial+income-expense, overall, "iteration %d", i)
	}
}

func TestProperty_FilterComposition(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))

	for range 100 {
		accounts, txs := randomLedger(r)
		x := accounts[r.IntN(len(accounts))].ID

		byAccount := ledger.FilterTransactions(txs, ledger.Filter{AccountID: x, Type: ledger.AllTypes})
		byType := ledger.FilterTransactions(txs, ledger.Filter{AccountID: ledger.AllAccounts, Type: "income"})
		both := ledger.FilterTransactions(txs, ledger.Filter{AccountID: x, Type: "income"})

		inType := make(map[string]bool, len(byType))
		for _, tx := range byType {
			inType[tx.ID] = true
		}

		var intersection []string

		for _, tx := range byAccount {
			if inType[tx.ID] {
				intersection = append(intersection, tx.ID)
			}
		}

		if len(intersection) == 0 {
			assert.Empty(t, both)
			continue
		}

		assert.Equal(t, intersection, ids(both))
	}
}

func TestProperty_BreakdownExclusivity(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	cats := ledger.BuiltinCategories()

	known := make(map[string]bool, len(cats))
	for _, c := range cats {
		known[c.ID] = true
	}

	for range 100 {
		_, txs := randomLedger(r)

		breakdown, err := ledger.CategoryBreakdown(txs, cats)
		require.NoError(t, err)

		var sum int64
		for _, b := range breakdown {
			assert.NotZero(t, b.Amount)
			sum += b.Amount
		}

		expense, err := ledger.TotalByType(txs, ledger.TypeExpense)
		require.NoError(t, err)

		var dangling int64

		for _, tx := range txs {
			if tx.Type == ledger.TypeExpense && !known[tx.Category] {
				dangling += tx.Amount
			}
		}

		assert.Equal(t, expense-dangling, sum)
	}
}

func TestProperty_Idempotence(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	accounts, txs := randomLedger(r)

	st := ledger.State{
		Transactions: txs,
		Accounts:     accounts,
		Categories:   ledger.BuiltinCategories(),
		Filter:       ledger.Filter{AccountID: accounts[0].ID, Type: "expense"},
	}

	first, err := ledger.Summarize(st)
	require.NoError(t, err)

	second, err := ledger.Summarize(st)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
