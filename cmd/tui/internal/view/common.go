package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// ChangedMsg is sent after a view wrote to the ledger, so others can reload.
type ChangedMsg struct{}

func changed() tea.Msg {
	return ChangedMsg{}
}
