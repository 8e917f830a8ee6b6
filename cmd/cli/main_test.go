package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

func setupEnv(t *testing.T) {
	t.Helper()

	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "pocket.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestCLI_LedgerFlow(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")

	out, err = run(t, "accounts", "add", "Poupança", "--id", "savings", "--initial", "100,00")
	require.NoError(t, err)
	assert.Contains(t, out, "created account savings (Poupança)")

	out, err = run(t, "add", "Mercado", "--amount", "25,00", "--category", "food", "--date", "2024-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-01 25.00 [food] Mercado")

	out, err = run(t, "transfer", "--from", "savings", "--to", ledger.DefaultAccountID, "--amount", "10", "--date", "2024-03-02")
	require.NoError(t, err)
	assert.Contains(t, out, "10.00 from savings to default")

	out, err = run(t, "accounts")
	require.NoError(t, err)
	assert.Contains(t, out, "Poupança")
	assert.Contains(t, out, "90.00")
	assert.Contains(t, out, "-15.00")

	out, err = run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Balance:  75.00")
	assert.Contains(t, out, "Alimentação")

	out, err = run(t, "export", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "* 2024-03-01 | Mercado | -25.00 | Alimentação | Carteira")

	out, err = run(t, "migrate", "--down")
	require.NoError(t, err)
	assert.Contains(t, out, "schema reverted")
}

func TestCLI_Errors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "ZeroAmount", args: []string{"add", "Nada", "--amount", "0"}, wantErr: ledger.ErrInvalidAmount},
		{name: "UnknownAccount", args: []string{"add", "Café", "--amount", "5", "--account", "ghost"}, wantErr: ledger.ErrUnknownAccount},
		{name: "AmountAboveMax", args: []string{"add", "Big", "--amount", "99999999999999999999"}, wantErr: ledger.ErrInvalidAmount},
		{name: "AccountNamedAll", args: []string{"accounts", "add", "All"}, wantErr: ledger.ErrInvalidID},
		{name: "SameAccountTransfer", args: []string{"transfer", "--from", "default", "--to", "default", "--amount", "5"}, wantErr: ledger.ErrInvalidTransfer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCLI_MigrateRejectsMemoryBackend(t *testing.T) {
	setupEnv(t)
	t.Setenv("STORAGE_BACKEND", "memory")

	_, err := run(t, "migrate")
	assert.Error(t, err)
}

func TestCLI_BadDate(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "add", "Mercado", "--amount", "5", "--date", "03/01/2024")
	assert.ErrorContains(t, err, "invalid date")
}
