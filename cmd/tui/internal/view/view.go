package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// View is a screen reachable from the main menu. Title and ShortHelp are
// rendered above and below it.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

var (
	_ View = DashboardModel{}
	_ View = ListModel{}
	_ View = TransactionFormModel{}
	_ View = TransferModel{}
	_ View = ImportModel{}
	_ View = ExportModel{}
)
