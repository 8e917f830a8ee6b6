package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

type txFormValues struct {
	Description   string
	Amount        string
	Type          ledger.Type
	Category      string
	PaymentMethod string
	AccountID     string
	Date          string
}

func newTxFormValues(now time.Time) *txFormValues {
	return &txFormValues{
		Type:      ledger.TypeExpense,
		AccountID: ledger.DefaultAccountID,
		Date:      FormatDate(now),
	}
}

// params converts the form input. An empty category is left for the suggester.
func (v txFormValues) params() (ledger.CreateParams, error) {
	amount, err := ParsePositiveAmount(v.Amount)
	if err != nil {
		return ledger.CreateParams{}, err
	}

	date, err := ParseDate(v.Date)
	if err != nil {
		return ledger.CreateParams{}, err
	}

	return ledger.CreateParams{
		Description:   strings.TrimSpace(v.Description),
		Amount:        amount,
		Type:          v.Type,
		Category:      v.Category,
		Date:          date,
		PaymentMethod: v.PaymentMethod,
		AccountID:     v.AccountID,
	}, nil
}

type TransactionFormModel struct {
	CommonModel
	ledger *ledger.Service
	now    func() time.Time

	st     *ledger.State
	form   *huh.Form
	values *txFormValues

	err    error
	status string
}

func NewTransactionFormModel(svc *ledger.Service) TransactionFormModel {
	return TransactionFormModel{ledger: svc, now: time.Now}
}

func (m TransactionFormModel) Title() string     { return "New Transaction" }
func (m TransactionFormModel) ShortHelp() string { return "Tab: next field | Esc: back" }

func (m TransactionFormModel) Init() tea.Cmd {
	return loadStateCmd(m.ledger)
}

func (m TransactionFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.st = msg.st

		return m.reset()

	case txCreatedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m.reset()
		}

		m.status = successStyle.Render(fmt.Sprintf("Saved %q (%s) as %s.",
			msg.tx.Description, FormatSigned(msg.tx.Amount, msg.tx.Type), m.st.CategoryName(msg.tx.Category)))

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

	params, err := m.values.params()
	if err != nil {
		m.status = errorStyle.Render(err.Error())
		return m.reset()
	}

	return m, m.createCmd(params)
}

func (m TransactionFormModel) reset() (tea.Model, tea.Cmd) {
	m.values = newTxFormValues(m.now())
	m.form = m.buildForm()

	return m, m.form.Init()
}

func (m TransactionFormModel) buildForm() *huh.Form {
	categories := []huh.Option[string]{huh.NewOption("Suggest from description", "")}
	for _, c := range m.st.Categories {
		if c.ID == ledger.CategoryTransfer {
			continue
		}

		categories = append(categories, huh.NewOption(c.Name, c.ID))
	}

	methods := []huh.Option[string]{huh.NewOption("None", "")}
	for _, pm := range m.st.PaymentMethods {
		methods = append(methods, huh.NewOption(pm.Name, pm.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Description").
				Value(&m.values.Description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("description cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Title("Amount").
				Placeholder("0,00").
				Value(&m.values.Amount).
				Validate(func(s string) error {
					_, err := ParsePositiveAmount(s)
					return err
				}),

			huh.NewSelect[ledger.Type]().
				Title("Type").
				Options(
					huh.NewOption("Expense", ledger.TypeExpense),
					huh.NewOption("Income", ledger.TypeIncome),
				).
				Value(&m.values.Type),

			huh.NewInput().
				Title("Date").
				Placeholder(time.DateOnly).
				Value(&m.values.Date).
				Validate(func(s string) error {
					_, err := ParseDate(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Category").
				Options(categories...).
				Value(&m.values.Category),

			huh.NewSelect[string]().
				Title("Payment method").
				Options(methods...).
				Value(&m.values.PaymentMethod),

			huh.NewSelect[string]().
				Title("Account").
				Options(accountOptions(m.st.Accounts)...).
				Value(&m.values.AccountID),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m TransactionFormModel) View() string {
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

func accountOptions(accounts []ledger.Account) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(accounts))
	for _, a := range accounts {
		opts = append(opts, huh.NewOption(a.Name, a.ID))
	}

	return opts
}

// Messages

type stateMsg struct {
	st  *ledger.State
	err error
}

func loadStateCmd(svc *ledger.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		st, err := svc.Load(ctx)

		return stateMsg{st: st, err: err}
	}
}

type txCreatedMsg struct {
	tx  *ledger.Transaction
	err error
}

func (m TransactionFormModel) createCmd(params ledger.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.ledger.CreateTransaction(ctx, params)

		return txCreatedMsg{tx: tx, err: err}
	}
}
