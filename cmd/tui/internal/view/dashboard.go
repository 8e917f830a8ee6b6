package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

const barWidth = 30

type DashboardModel struct {
	CommonModel
	ledger *ledger.Service

	summary ledger.Summary
	loaded  bool
	err     error
}

func NewDashboardModel(svc *ledger.Service) DashboardModel {
	return DashboardModel{ledger: svc}
}

func (m DashboardModel) Title() string     { return "Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.loaded = true
		m.summary = msg.summary
		m.err = msg.err

		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if !m.loaded {
		return lipgloss.NewStyle().Padding(2).Render("Loading...")
	}

	s := m.summary

	totals := fmt.Sprintf("Balance  %s\nIncome   %s\nExpenses %s",
		FormatBalance(s.Balance),
		incomeStyle.Render(FormatAmount(s.Income)),
		expenseStyle.Render(FormatAmount(s.Expenses)))

	var accounts strings.Builder
	for _, a := range s.Accounts {
		fmt.Fprintf(&accounts, "%-20s %s\n", a.Account.Name, FormatBalance(a.Balance))
	}

	box := lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		box.Render("Totals\n\n"+totals),
		box.Render("Accounts\n\n"+strings.TrimRight(accounts.String(), "\n")),
	)

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, top, "", box.Render("Spending by category\n\n"+breakdown(s))),
	)
}

func breakdown(s ledger.Summary) string {
	if len(s.Breakdown) == 0 {
		return faintStyle.Render("No expenses yet.")
	}

	var largest int64
	for _, c := range s.Breakdown {
		largest = max(largest, c.Amount)
	}

	var sb strings.Builder

	for _, c := range s.Breakdown {
		width := max(1, int(c.Amount*barWidth/largest))
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Category.Color)).Render(strings.Repeat("█", width))
		fmt.Fprintf(&sb, "%-16s %s %s\n", c.Category.Name, bar, FormatAmount(c.Amount))
	}

	return strings.TrimRight(sb.String(), "\n")
}

type dashboardMsg struct {
	summary ledger.Summary
	err     error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		s, err := m.ledger.Summary(ctx, ledger.Filter{AccountID: ledger.AllAccounts, Type: ledger.AllTypes})

		return dashboardMsg{summary: s, err: err}
	}
}
