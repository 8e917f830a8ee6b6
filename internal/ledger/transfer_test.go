package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// sequence returns an id generator yielding ids in order and counting calls.
func sequence(ids ...string) (func() string, *int) {
	calls := 0

	return func() string {
		id := ids[calls%len(ids)]
		calls++

		return id
	}, &calls
}

func testBuilder(ids ...string) (*ledger.Builder, *int) {
	next, calls := sequence(ids...)
	return &ledger.Builder{NewID: next, Now: func() time.Time { return fixedNow }}, calls
}

func scenarioAccounts() []ledger.Account {
	return []ledger.Account{
		{ID: ledger.DefaultAccountID, Name: "Carteira", InitialBalance: 0},
		{ID: "savings", Name: "Poupança", InitialBalance: 10000},
	}
}

func TestBuilder_Build(t *testing.T) {
	b, _ := testBuilder("tr-1", "leg-1", "leg-2")
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	got, err := b.Build(scenarioAccounts(), nil, ledger.TransferRequest{
		FromAccountID: ledger.DefaultAccountID,
		ToAccountID:   "savings",
		Amount:        5000,
		Date:          date,
	})
	require.NoError(t, err)

	assert.Equal(t, "tr-1", got.TransferID)

	assert.Equal(t, ledger.Transaction{
		ID:          "leg-1",
		CreatedAt:   fixedNow,
		Description: "Transfer to Poupança",
		Amount:      5000,
		Type:        ledger.TypeExpense,
		Category:    ledger.CategoryTransfer,
		Date:        date,
		AccountID:   ledger.DefaultAccountID,
		TransferID:  "tr-1",
	}, got.Expense)

	assert.Equal(t, ledger.Transaction{
		ID:          "leg-2",
		CreatedAt:   fixedNow,
		Description: "Transfer from Carteira",
		Amount:      5000,
		Type:        ledger.TypeIncome,
		Category:    ledger.CategoryTransfer,
		Date:        date,
		AccountID:   "savings",
		TransferID:  "tr-1",
	}, got.Income)

	assert.Equal(t, []ledger.Transaction{got.Expense, got.Income}, got.Legs())
}

func TestBuilder_Build_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     ledger.TransferRequest
		wantErr error
	}{
		{
			name:    "SameAccount",
			req:     ledger.TransferRequest{FromAccountID: "savings", ToAccountID: "savings", Amount: 100},
			wantErr: ledger.ErrInvalidTransfer,
		},
		{
			name:    "SameAccountWinsOverZeroAmount",
			req:     ledger.TransferRequest{FromAccountID: "savings", ToAccountID: "savings"},
			wantErr: ledger.ErrInvalidTransfer,
		},
		{
			name:    "ZeroAmount",
			req:     ledger.TransferRequest{FromAccountID: ledger.DefaultAccountID, ToAccountID: "savings"},
			wantErr: ledger.ErrInvalidAmount,
		},
		{
			name:    "NegativeAmount",
			req:     ledger.TransferRequest{FromAccountID: ledger.DefaultAccountID, ToAccountID: "savings", Amount: -5},
			wantErr: ledger.ErrInvalidAmount,
		},
		{
			name:    "AmountAboveMax",
			req:     ledger.TransferRequest{FromAccountID: ledger.DefaultAccountID, ToAccountID: "savings", Amount: ledger.MaxAmount + 1},
			wantErr: ledger.ErrInvalidAmount,
		},
		{
			name:    "UnknownSource",
			req:     ledger.TransferRequest{FromAccountID: "ghost", ToAccountID: "savings", Amount: 100},
			wantErr: ledger.ErrUnknownAccount,
		},
		{
			name:    "UnknownDestination",
			req:     ledger.TransferRequest{FromAccountID: "savings", ToAccountID: "ghost", Amount: 100},
			wantErr: ledger.ErrUnknownAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, calls := testBuilder("x")

			got, err := b.Build(scenarioAccounts(), nil, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, got.Legs()[0].ID)
			assert.Empty(t, got.TransferID)
			assert.Zero(t, *calls, "no id may be generated for an invalid request")
		})
	}
}

func TestBuilder_Build_NormalizesDate(t *testing.T) {
	b, _ := testBuilder("tr-1", "leg-1", "leg-2")

	got, err := b.Build(scenarioAccounts(), nil, ledger.TransferRequest{
		FromAccountID: ledger.DefaultAccountID,
		ToAccountID:   "savings",
		Amount:        100,
		Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60)),
	})
	require.NoError(t, err)

	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, got.Expense.Date)
	assert.Equal(t, want, got.Income.Date)
}

func TestBuilder_Build_AvoidsCollisions(t *testing.T) {
	existing := []ledger.Transaction{
		{ID: "taken-id", TransferID: "taken-transfer"},
	}

	b, _ := testBuilder("taken-id", "taken-transfer", "tr-1", "tr-1", "leg-1", "leg-2")

	got, err := b.Build(scenarioAccounts(), existing, ledger.TransferRequest{
		FromAccountID: ledger.DefaultAccountID,
		ToAccountID:   "savings",
		Amount:        100,
	})
	require.NoError(t, err)

	assert.Equal(t, "tr-1", got.TransferID)
	assert.Equal(t, "leg-1", got.Expense.ID)
	assert.Equal(t, "leg-2", got.Income.ID)
}

func TestBuilder_Build_ExhaustedIDs(t *testing.T) {
	b, _ := testBuilder("dup")

	_, err := b.Build(scenarioAccounts(), []ledger.Transaction{{ID: "dup"}}, ledger.TransferRequest{
		FromAccountID: ledger.DefaultAccountID,
		ToAccountID:   "savings",
		Amount:        100,
	})
	assert.Error(t, err)
}

func TestTransfer_Scenario(t *testing.T) {
	accounts := scenarioAccounts()
	b := ledger.NewBuilder()

	got, err := b.Build(accounts, nil, ledger.TransferRequest{
		FromAccountID: ledger.DefaultAccountID,
		ToAccountID:   "savings",
		Amount:        5000,
		Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.NotEqual(t, got.Expense.ID, got.Income.ID)
	assert.NotEqual(t, got.TransferID, got.Expense.ID)
	assert.Equal(t, got.Expense.TransferID, got.Income.TransferID)

	txs := got.Legs()

	def, err := ledger.BalanceOf(accounts, txs, ledger.DefaultAccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(-5000), def)

	savings, err := ledger.BalanceOf(accounts, txs, "savings")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), savings)

	overall, err := ledger.OverallBalance(accounts, txs)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), overall)
}

func TestProperty_TransferNeutrality(t *testing.T) {
	accounts, txs := fixture()
	b := ledger.NewBuilder()

	before, err := ledger.OverallBalance(accounts, txs)
	require.NoError(t, err)

	fromBefore, err := ledger.BalanceOf(accounts, txs, "savings")
	require.NoError(t, err)

	toBefore, err := ledger.BalanceOf(accounts, txs, ledger.DefaultAccountID)
	require.NoError(t, err)

	for _, amount := range []int64{1, 99, 12345, 10_000_000} {
		tr, err := b.Build(accounts, txs, ledger.TransferRequest{
			FromAccountID: "savings",
			ToAccountID:   ledger.DefaultAccountID,
			Amount:        amount,
			Date:          day(5),
		})
		require.NoError(t, err)

		after := append(append([]ledger.Transaction{}, txs...), tr.Legs()...)

		overall, err := ledger.OverallBalance(accounts, after)
		require.NoError(t, err)
		assert.Equal(t, before, overall)

		from, err := ledger.BalanceOf(accounts, after, "savings")
		require.NoError(t, err)
		assert.Equal(t, fromBefore-amount, from)

		to, err := ledger.BalanceOf(accounts, after, ledger.DefaultAccountID)
		require.NoError(t, err)
		assert.Equal(t, toBefore+amount, to)
	}
}
