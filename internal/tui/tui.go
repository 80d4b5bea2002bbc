package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/NamanBalaji/fget/internal/engine"
	"github.com/NamanBalaji/fget/internal/progress"
)

// Message types for the TUI
type (
	// ProgressMsg carries one observation from the engine.
	ProgressMsg struct {
		Progress progress.Progress
	}

	// FetchAddedMsg is sent when a new fetch is queued.
	FetchAddedMsg struct {
		ID uuid.UUID
	}

	// ErrorMsg is sent when an operation fails.
	ErrorMsg struct {
		Error error
	}

	// MessageTimeoutMsg clears a transient notification.
	MessageTimeoutMsg struct{}
)

// Run starts the TUI application. Blocks until the user quits.
func Run(eng *engine.Engine) error {
	model := NewModel(eng)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()

	return err
}
