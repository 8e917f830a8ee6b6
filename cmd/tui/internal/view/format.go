package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

const dbTimeout = 5 * time.Second

var (
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

// FormatAmount formats cents with two decimals, e.g. 123456 -> "1234.56".
func FormatAmount(cents int64) string {
	return ledger.FormatAmount(cents)
}

// FormatSigned prefixes an amount with + for income and - for expenses.
func FormatSigned(cents int64, typ ledger.Type) string {
	if typ == ledger.TypeIncome {
		return "+" + FormatAmount(cents)
	}

	return "-" + FormatAmount(cents)
}

func FormatBalance(cents int64) string {
	if cents < 0 {
		return expenseStyle.Render(FormatAmount(cents))
	}

	return incomeStyle.Render(FormatAmount(cents))
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ParseDate reads a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date must look like %s", time.DateOnly)
	}

	return t, nil
}

// ParsePositiveAmount parses a user-typed amount into cents, rejecting zero and negatives.
func ParsePositiveAmount(s string) (int64, error) {
	cents, err := ledger.ParseAmount(s)
	if err != nil {
		return 0, fmt.Errorf("not a valid amount")
	}

	if cents <= 0 {
		return 0, ledger.ErrInvalidAmount
	}

	return cents, nil
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
