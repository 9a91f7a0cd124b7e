package tui

import (
	"promptforge/internal/app"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the terminal client over an already-built application and
// blocks until the user quits.
func Run(application *app.Application) error {
	m := NewModel(application)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
