package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pocket/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/pocket/internal/app"
	"github.com/MrJamesThe3rd/pocket/internal/config"
	"github.com/MrJamesThe3rd/pocket/internal/logging"
)

const logFile = "pocket-tui.log"

type model struct {
	app *app.App

	currentView View

	dashboardView view.DashboardModel
	listView      view.ListModel
	formView      view.TransactionFormModel
	transferView  view.TransferModel
	importView    view.ImportModel
	exportView    view.ExportModel

	width  int
	height int
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewList      View = 2
	ViewForm      View = 3
	ViewTransfer  View = 4
	ViewImport    View = 5
	ViewExport    View = 6
)

func initialModel(a *app.App) model {
	return model{
		app:           a,
		currentView:   ViewMenu,
		dashboardView: view.NewDashboardModel(a.Ledger),
		listView:      view.NewListModel(a.Ledger),
		formView:      view.NewTransactionFormModel(a.Ledger),
		transferView:  view.NewTransferModel(a.Ledger),
		importView:    view.NewImportModel(a.Import),
		exportView:    view.NewExportModel(a.Export),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.ChangedMsg:
		slog.Debug("ledger changed", "view", m.currentView)
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewForm:
		var newModel tea.Model
		newModel, cmd = m.formView.Update(msg)
		m.formView = newModel.(view.TransactionFormModel)
	case ViewTransfer:
		var newModel tea.Model
		newModel, cmd = m.transferView.Update(msg)
		m.transferView = newModel.(view.TransferModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

// updateMenu opens a fresh copy of the chosen view so it reloads the ledger.
func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	size := func() tea.Msg { return tea.WindowSizeMsg{Width: m.width, Height: m.height} }

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewDashboard
		m.dashboardView = view.NewDashboardModel(m.app.Ledger)

		return m, m.dashboardView.Init()
	case "2":
		m.currentView = ViewList
		m.listView = view.NewListModel(m.app.Ledger)

		return m, tea.Batch(m.listView.Init(), size)
	case "3":
		m.currentView = ViewForm
		m.formView = view.NewTransactionFormModel(m.app.Ledger)

		return m, m.formView.Init()
	case "4":
		m.currentView = ViewTransfer
		m.transferView = view.NewTransferModel(m.app.Ledger)

		return m, m.transferView.Init()
	case "5":
		m.currentView = ViewImport
		m.importView = view.NewImportModel(m.app.Import)

		return m, m.importView.Init()
	case "6":
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(m.app.Export)

		return m, m.exportView.Init()
	}

	return m, nil
}

func (m model) current() view.View {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboardView
	case ViewList:
		return m.listView
	case ViewForm:
		return m.formView
	case ViewTransfer:
		return m.transferView
	case ViewImport:
		return m.importView
	case ViewExport:
		return m.exportView
	}

	return nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m model) View() string {
	v := m.current()
	if v == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			titleStyle.Render("Pocket") + "\n\n" +
				"1. Dashboard\n" +
				"2. Transactions\n" +
				"3. New Transaction\n" +
				"4. Transfer Between Accounts\n" +
				"5. Import CSV\n" +
				"6. Export CSV\n\n" +
				"q. Quit",
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(1, 2, 0).Render(titleStyle.Render(v.Title())),
		v.View(),
		lipgloss.NewStyle().Padding(0, 2).Render(helpStyle.Render(v.ShortHelp())),
	)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	slog.SetDefault(logging.NewTerminal(f, "tui", cfg.LogLevel()))

	a, err := app.New(cfg, nil)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
