package view

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocket/internal/export"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
	"github.com/MrJamesThe3rd/pocket/internal/ledger/memory"
)

func newLedger(t *testing.T) *ledger.Service {
	t.Helper()

	svc := ledger.NewService(memory.New())

	_, err := svc.CreateAccount(context.Background(), ledger.AccountParams{ID: "savings", Name: "Poupança", InitialBalance: 10000})
	require.NoError(t, err)

	return svc
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestParsePositiveAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "12,50", want: 1250},
		{input: "1.234,56", want: 123456},
		{input: " 7 ", want: 700},
		{input: "0", wantErr: true},
		{input: "-5", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePositiveAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate(" 2024-03-01 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("01/03/2024")
	assert.Error(t, err)
}

func TestTxFormValues_Params(t *testing.T) {
	v := newTxFormValues(time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC))
	v.Description = "  Mercado "
	v.Amount = "45,50"

	got, err := v.params()
	require.NoError(t, err)

	assert.Equal(t, ledger.CreateParams{
		Description: "Mercado",
		Amount:      4550,
		Type:        ledger.TypeExpense,
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		AccountID:   ledger.DefaultAccountID,
	}, got)

	v.Amount = "0"
	_, err = v.params()
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestTransferFormValues_Request(t *testing.T) {
	v := transferFormValues{From: ledger.DefaultAccountID, To: "savings", Amount: "50", Date: "2024-03-01"}

	got, err := v.request()
	require.NoError(t, err)

	assert.Equal(t, ledger.TransferRequest{
		FromAccountID: ledger.DefaultAccountID,
		ToAccountID:   "savings",
		Amount:        5000,
		Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}, got)

	v.Date = "yesterday"
	_, err = v.request()
	assert.Error(t, err)
}

func TestTransactionFormModel_CreateSuggestsOther(t *testing.T) {
	svc := newLedger(t)
	m := NewTransactionFormModel(svc)

	msg := m.createCmd(ledger.CreateParams{
		Description: "Padaria",
		Amount:      800,
		Type:        ledger.TypeExpense,
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		AccountID:   ledger.DefaultAccountID,
	})()

	created, ok := msg.(txCreatedMsg)
	require.True(t, ok)
	require.NoError(t, created.err)
	assert.Equal(t, ledger.CategoryOther, created.tx.Category)
}

func TestTransferModel_Transfer(t *testing.T) {
	svc := newLedger(t)
	m := NewTransferModel(svc)

	msg := m.transferCmd(ledger.TransferRequest{FromAccountID: "savings", ToAccountID: ledger.DefaultAccountID, Amount: 2500})()

	done, ok := msg.(transferDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, done.transfer.TransferID, done.transfer.Income.TransferID)

	msg = m.transferCmd(ledger.TransferRequest{FromAccountID: "savings", ToAccountID: "savings", Amount: 2500})()
	assert.ErrorIs(t, msg.(transferDoneMsg).err, ledger.ErrInvalidTransfer)
}

func TestListModel_FilterCycling(t *testing.T) {
	svc := newLedger(t)
	ctx := context.Background()

	_, err := svc.CreateTransaction(ctx, ledger.CreateParams{
		Description: "Salário", Amount: 300000, Type: ledger.TypeIncome, Category: "salary", AccountID: ledger.DefaultAccountID,
	})
	require.NoError(t, err)

	_, err = svc.CreateTransaction(ctx, ledger.CreateParams{
		Description: "Aluguel", Amount: 120000, Type: ledger.TypeExpense, Category: "rent", AccountID: "savings",
	})
	require.NoError(t, err)

	var model tea.Model = NewListModel(svc)
	model, _ = model.Update(model.(ListModel).loadCmd()())

	m := model.(ListModel)
	require.NotNil(t, m.st)
	assert.Equal(t, ledger.Filter{AccountID: ledger.AllAccounts, Type: ledger.AllTypes}, m.Filter())
	assert.Len(t, m.summary.Transactions, 2)

	model, _ = m.Update(key("t"))
	m = model.(ListModel)
	assert.Equal(t, string(ledger.TypeIncome), m.Filter().Type)
	assert.Len(t, m.summary.Transactions, 1)
	assert.Equal(t, int64(300000), m.summary.Income)
	assert.Zero(t, m.summary.Expenses)

	model, _ = m.Update(key("a"))
	m = model.(ListModel)
	assert.Equal(t, m.st.Accounts[0].ID, m.Filter().AccountID)

	// Cycling past the last account returns to all accounts.
	for range len(m.st.Accounts) {
		model, _ = m.Update(key("a"))
		m = model.(ListModel)
	}

	assert.Equal(t, ledger.AllAccounts, m.Filter().AccountID)

	model, _ = m.Update(key("t"))
	model, _ = model.Update(key("t"))
	m = model.(ListModel)
	assert.Equal(t, ledger.AllTypes, m.Filter().Type)
}

func TestDashboardModel_View(t *testing.T) {
	svc := newLedger(t)

	_, err := svc.CreateTransaction(context.Background(), ledger.CreateParams{
		Description: "Mercado", Amount: 2500, Type: ledger.TypeExpense, Category: "food", AccountID: "savings",
	})
	require.NoError(t, err)

	m := NewDashboardModel(svc)
	assert.Contains(t, m.View(), "Loading")

	model, _ := m.Update(m.Init()())
	view := model.View()

	assert.Contains(t, view, "Poupança")
	assert.Contains(t, view, "75.00")
	assert.Contains(t, view, "Alimentação")
}

func TestWriteExport(t *testing.T) {
	svc := newLedger(t)

	_, err := svc.CreateTransaction(context.Background(), ledger.CreateParams{
		Description: "Mercado", Amount: 2500, Type: ledger.TypeExpense, Category: "food", AccountID: ledger.DefaultAccountID,
	})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	path, count, err := writeExport(context.Background(), export.NewService(svc), exportFormValues{Dir: dir, Type: ledger.AllTypes}, now)
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, filepath.Join(dir, export.Filename(now)), path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(export.Columns, ";"), lines[0])
	assert.Contains(t, lines[1], "Mercado;25.00;expense;food")
}
