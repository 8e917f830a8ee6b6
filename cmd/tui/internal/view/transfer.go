package view

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

type transferFormValues struct {
	From   string
	To     string
	Amount string
	Date   string
}

func (v transferFormValues) request() (ledger.TransferRequest, error) {
	amount, err := ParsePositiveAmount(v.Amount)
	if err != nil {
		return ledger.TransferRequest{}, err
	}

	date, err := ParseDate(v.Date)
	if err != nil {
		return ledger.TransferRequest{}, err
	}

	return ledger.TransferRequest{
		FromAccountID: v.From,
		ToAccountID:   v.To,
		Amount:        amount,
		Date:          date,
	}, nil
}

type TransferModel struct {
	CommonModel
	ledger *ledger.Service
	now    func() time.Time

	st     *ledger.State
	form   *huh.Form
	values *transferFormValues

	err    error
	status string
}

func NewTransferModel(svc *ledger.Service) TransferModel {
	return TransferModel{ledger: svc, now: time.Now}
}

func (m TransferModel) Title() string     { return "Transfer" }
func (m TransferModel) ShortHelp() string { return "Tab: next field | Esc: back" }

func (m TransferModel) Init() tea.Cmd {
	return loadStateCmd(m.ledger)
}

func (m TransferModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.st = msg.st

		return m.reset()

	case transferDoneMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m.reset()
		}

		m.status = successStyle.Render(fmt.Sprintf("Moved %s from %s to %s.",
			FormatAmount(msg.transfer.Expense.Amount),
			m.st.AccountName(msg.transfer.Expense.AccountID),
			m.st.AccountName(msg.transfer.Income.AccountID)))

		model, cmd := m.reset()

		return model, tea.Batch(cmd, changed)

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	req, err := m.values.request()
	if err != nil {
		m.status = errorStyle.Render(err.Error())
		return m.reset()
	}

	return m, m.transferCmd(req)
}

func (m TransferModel) reset() (tea.Model, tea.Cmd) {
	m.values = &transferFormValues{Date: FormatDate(m.now())}
	if len(m.st.Accounts) > 0 {
		m.values.From = m.st.Accounts[0].ID
	}

	if len(m.st.Accounts) > 1 {
		m.values.To = m.st.Accounts[1].ID
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("From").
				Options(accountOptions(m.st.Accounts)...).
				Value(&m.values.From),

			huh.NewSelect[string]().
				Title("To").
				Options(accountOptions(m.st.Accounts)...).
				Value(&m.values.To),

			huh.NewInput().
				Title("Amount").
				Placeholder("0,00").
				Value(&m.values.Amount).
				Validate(func(s string) error {
					_, err := ParsePositiveAmount(s)
					return err
				}),

			huh.NewInput().
				Title("Date").
				Placeholder(time.DateOnly).
				Value(&m.values.Date).
				Validate(func(s string) error {
					_, err := ParseDate(s)
					return err
				}),
		),
	).WithWidth(50).WithShowHelp(false)

	return m, m.form.Init()
}

func (m TransferModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.form == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading...")
	}

	content := m.form.View()
	if m.status != "" {
		content = m.status + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

type transferDoneMsg struct {
	transfer *ledger.Transfer
	err      error
}

func (m TransferModel) transferCmd(req ledger.TransferRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		t, err := m.ledger.Transfer(ctx, req)

		return transferDoneMsg{transfer: t, err: err}
	}
}
