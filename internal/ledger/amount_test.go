package ledger_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "10", want: 1000},
		{input: "10.5", want: 1050},
		{input: "10,50", want: 1050},
		{input: " 1234.56 ", want: 123456},
		{input: "1.234,56", want: 123456},
		{input: "1,234.56", want: 123456},
		{input: "0.005", want: 1},
		{input: "0.004", want: 0},
		{input: "-12.30", want: -1230},
		{input: "", wantErr: true},
		{input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ledger.ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount_Bounds(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr error
	}{
		{input: "1000000000000.00", want: ledger.MaxAmount},
		{input: "-1000000000000", want: -ledger.MaxAmount},
		{input: "1000000000000.01", wantErr: ledger.ErrInvalidAmount},
		{input: "99999999999999999999", wantErr: ledger.ErrInvalidAmount},
		{input: "-99999999999999999999", wantErr: ledger.ErrInvalidAmount},
		{input: "1e30", wantErr: ledger.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ledger.ParseAmount(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckAmount(t *testing.T) {
	assert.NoError(t, ledger.CheckAmount(ledger.MaxAmount))
	assert.NoError(t, ledger.CheckAmount(-ledger.MaxAmount))
	assert.ErrorIs(t, ledger.CheckAmount(ledger.MaxAmount+1), ledger.ErrInvalidAmount)
	assert.ErrorIs(t, ledger.CheckAmount(math.MinInt64), ledger.ErrInvalidAmount)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", ledger.FormatAmount(0))
	assert.Equal(t, "0.05", ledger.FormatAmount(5))
	assert.Equal(t, "1234.56", ledger.FormatAmount(123456))
	assert.Equal(t, "-10.50", ledger.FormatAmount(-1050))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "saude-mental", ledger.Slugify("Saúde Mental"))
	assert.Equal(t, "conta-corrente", ledger.Slugify("  Conta   Corrente "))
	assert.Equal(t, "cafe", ledger.Slugify("Café"))
	assert.Equal(t, "", ledger.Slugify(""))
	assert.Equal(t, "conta-poupanca", ledger.Slugify("Conta/Poupança?"))
	assert.Equal(t, "a-b", ledger.Slugify("--a  &  b--"))
	assert.Equal(t, "", ledger.Slugify("?/#"))
}

func TestCheckID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{id: "savings"},
		{id: "conta-2"},
		{id: "", wantErr: true},
		{id: ledger.AllAccounts, wantErr: true},
		{id: "a/b", wantErr: true},
		{id: "what?", wantErr: true},
		{id: "Upper", wantErr: true},
		{id: "poupança", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ledger.CheckID(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrInvalidID)
				return
			}

			assert.NoError(t, err)
		})
	}
}
