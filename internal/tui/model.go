package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NamanBalaji/fget/internal/engine"
	"github.com/NamanBalaji/fget/internal/tui/components"
	"github.com/NamanBalaji/fget/internal/tui/styles"
)

const defaultWidth = 80

// Model is the bubbletea model for the fetch list.
type Model struct {
	engine *engine.Engine

	jobs   []engine.JobInfo
	width  int
	height int

	spin   spinner.Model
	adding bool
	input  textinput.Model

	notice   string
	quitting bool
}

// NewModel creates the initial TUI model.
func NewModel(eng *engine.Engine) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	ti := textinput.New()
	ti.Placeholder = "https://example.com/file"
	ti.CharLimit = 2048
	ti.Width = 60

	return &Model{
		engine: eng,
		jobs:   eng.List(),
		width:  defaultWidth,
		spin:   sp,
		input:  ti,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		listenProgress(m.engine),
	)
}

// listenProgress forwards engine observations into the bubbletea loop.
func listenProgress(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		return ProgressMsg{Progress: <-eng.ProgressChan()}
	}
}

func clearNoticeAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return MessageTimeoutMsg{}
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateAddModal(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "a":
			m.adding = true
			m.input.SetValue("")
			m.input.Focus()

			return m, textinput.Blink
		}

		return m, nil

	case ProgressMsg:
		m.jobs = m.engine.List()

		return m, listenProgress(m.engine)

	case FetchAddedMsg:
		m.jobs = m.engine.List()
		m.notice = "fetch queued"

		return m, clearNoticeAfter(2 * time.Second)

	case ErrorMsg:
		m.notice = msg.Error.Error()

		return m, clearNoticeAfter(4 * time.Second)

	case MessageTimeoutMsg:
		m.notice = ""

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *Model) updateAddModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.input.Blur()

		return m, nil

	case "enter":
		url := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()

		if url == "" {
			return m, nil
		}

		return m, func() tea.Msg {
			id, err := m.engine.Add(url, 1)
			if err != nil {
				return ErrorMsg{Error: err}
			}
			return FetchAddedMsg{ID: id}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder

	b.WriteString(styles.Header.Width(width).Render("fget"))
	b.WriteString("\n\n")

	if len(m.jobs) == 0 {
		b.WriteString(styles.Help.Render("no fetches yet"))
		b.WriteString("\n")
	}

	for _, job := range m.jobs {
		b.WriteString(components.FetchItem(job, width-2, m.spin.View()))
		b.WriteString("\n")
	}

	if m.adding {
		b.WriteString("\n")
		b.WriteString(styles.FormLabel.Render("URL:"))
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(styles.Help.Render("enter to queue, esc to cancel"))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorBar.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.helpView())

	return styles.App.Render(b.String())
}

func (m *Model) helpView() string {
	parts := []string{
		fmt.Sprintf("%s add", styles.HelpKey.Render("a")),
		fmt.Sprintf("%s quit", styles.HelpKey.Render("q")),
	}

	return styles.Help.Render(strings.Join(parts, lipgloss.NewStyle().Render("  ")))
}
