// Package util holds small helpers shared by TUI components.
package util

import (
	tea "charm.land/bubbletea/v2"
)

// Model is a component that renders to a string.
type Model interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Model, tea.Cmd)
	View() string
}

// InfoMsg carries a short status line.
type InfoMsg struct {
	Msg string
}

// ErrorMsg carries an error to show in the banner.
type ErrorMsg struct {
	Err error
}

// CmdHandler wraps a message in a command.
func CmdHandler(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// ReportInfo returns a command emitting an InfoMsg.
func ReportInfo(msg string) tea.Cmd {
	return CmdHandler(InfoMsg{Msg: msg})
}

// ReportError returns a command emitting an ErrorMsg.
func ReportError(err error) tea.Cmd {
	return CmdHandler(ErrorMsg{Err: err})
}
