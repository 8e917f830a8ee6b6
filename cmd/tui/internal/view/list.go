package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateConfirm
)

var typeFilters = []string{ledger.AllTypes, string(ledger.TypeIncome), string(ledger.TypeExpense)}

type ListModel struct {
	CommonModel
	ledger *ledger.Service

	state   listState
	table   table.Model
	form    *huh.Form
	confirm *bool // Heap-allocated so the form binding survives model copies

	st      *ledger.State
	summary ledger.Summary

	// Filter cycling
	accountIdx int
	typeIdx    int

	loading bool
	err     error
	status  string
}

func NewListModel(svc *ledger.Service) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 12},
		{Title: "Description", Width: 36},
		{Title: "Category", Width: 16},
		{Title: "Account", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		ledger:  svc,
		table:   t,
		loading: true,
	}
}

func (m ListModel) Title() string { return "Transactions" }
func (m ListModel) ShortHelp() string {
	if m.state == listStateConfirm {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | a: account filter | t: type filter | x: delete | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

// Filter is the filter currently applied to the list.
func (m ListModel) Filter() ledger.Filter {
	f := ledger.Filter{AccountID: ledger.AllAccounts, Type: typeFilters[m.typeIdx]}

	if m.st != nil && m.accountIdx > 0 && m.accountIdx <= len(m.st.Accounts) {
		f.AccountID = m.st.Accounts[m.accountIdx-1].ID
	}

	return f
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.st = msg.st

		// An account deleted elsewhere must not leave the cursor past the end.
		if m.accountIdx > len(m.st.Accounts) {
			m.accountIdx = 0
		}

		m.refresh()

		return m, nil

	case listDeleteMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error deleting: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, tea.Batch(m.loadCmd(), changed)

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(5, msg.Height-10))
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "x":
			return m.enterConfirm()
		case "a":
			if m.st != nil {
				m.accountIdx = (m.accountIdx + 1) % (len(m.st.Accounts) + 1)
				m.refresh()
			}

			return m, nil
		case "t":
			m.typeIdx = (m.typeIdx + 1) % len(typeFilters)
			m.refresh()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) selected() (ledger.Transaction, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.summary.Transactions) {
		return ledger.Transaction{}, false
	}

	return m.summary.Transactions[idx], true
}

func (m ListModel) enterConfirm() (tea.Model, tea.Cmd) {
	tx, ok := m.selected()
	if !ok {
		return m, nil
	}

	title := fmt.Sprintf("Delete %q?", tx.Description)
	if tx.IsTransferLeg() {
		title = "Delete this transfer? Both legs will be removed."
	}

	m.confirm = new(false)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(title).
				Affirmative("Delete").
				Negative("Keep").
				Value(m.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.cancelConfirm()
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.confirm {
		return m.cancelConfirm()
	}

	return m, m.deleteCmd()
}

func (m ListModel) cancelConfirm() (tea.Model, tea.Cmd) {
	m.state = listStateBrowse
	m.form = nil
	m.table.Focus()

	return m, nil
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	f := m.Filter()

	accountLabel := "All"
	if f.AccountID != ledger.AllAccounts {
		accountLabel = m.st.AccountName(f.AccountID)
	}

	header := fmt.Sprintf(
		"Filter: [a] Account: %s | [t] Type: %s\nIncome %s | Expenses %s | Balance %s",
		activeStyle(accountLabel),
		activeStyle(f.Type),
		incomeStyle.Render(FormatAmount(m.summary.Income)),
		expenseStyle.Render(FormatAmount(m.summary.Expenses)),
		FormatBalance(m.summary.Balance),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateConfirm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

// refresh recomputes the filtered summary and table rows from the loaded state.
func (m *ListModel) refresh() {
	if m.st == nil {
		return
	}

	st := *m.st
	st.Filter = m.Filter()

	s, err := ledger.Summarize(st)
	if err != nil {
		m.err = err
		return
	}

	m.summary = s

	rows := make([]table.Row, 0, len(s.Transactions))
	for _, tx := range s.Transactions {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			FormatSigned(tx.Amount, tx.Type),
			tx.Description,
			st.CategoryName(tx.Category),
			st.AccountName(tx.AccountID),
		})
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

// Messages

type loadListMsg struct {
	st  *ledger.State
	err error
}

func (m ListModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		st, err := m.ledger.Load(ctx)

		return loadListMsg{st: st, err: err}
	}
}

type listDeleteMsg struct {
	err error
}

func (m ListModel) deleteCmd() tea.Cmd {
	tx, ok := m.selected()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return listDeleteMsg{err: m.ledger.DeleteTransaction(ctx, tx.ID)}
	}
}
