package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	gruvboxBg0    = lipgloss.Color("#282828")
	gruvboxBg1    = lipgloss.Color("#3c3836")
	gruvboxBg2    = lipgloss.Color("#504945")
	gruvboxFg0    = lipgloss.Color("#fbf1c7")
	gruvboxFg1    = lipgloss.Color("#ebdbb2")
	gruvboxFg2    = lipgloss.Color("#d5c4a1")
	gruvboxRed    = lipgloss.Color("#fb4934")
	gruvboxGreen  = lipgloss.Color("#b8bb26")
	gruvboxYellow = lipgloss.Color("#fabd2f")
	gruvboxBlue   = lipgloss.Color("#83a598")
	gruvboxOrange = lipgloss.Color("#fe8019")
)

var (
	App = lipgloss.NewStyle().
		Foreground(gruvboxFg1)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(gruvboxYellow).
		Background(gruvboxBg1).
		Padding(0, 2)

	ListItem = lipgloss.NewStyle().
			Padding(0, 1)

	SelectedItem = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(gruvboxYellow).
			Padding(0, 1)

	BarFilled = lipgloss.NewStyle().
			Foreground(gruvboxGreen)

	BarEmpty = lipgloss.NewStyle().
			Foreground(gruvboxBg2)

	StatusActive = lipgloss.NewStyle().
			Foreground(gruvboxGreen).
			Bold(true)

	StatusQueued = lipgloss.NewStyle().
			Foreground(gruvboxYellow).
			Bold(true)

	StatusCompleted = lipgloss.NewStyle().
			Foreground(gruvboxBlue).
			Bold(true)

	StatusFailed = lipgloss.NewStyle().
			Foreground(gruvboxRed).
			Bold(true)

	StatusCancelled = lipgloss.NewStyle().
			Foreground(gruvboxOrange).
			Bold(true)

	FormLabel = lipgloss.NewStyle().
			Foreground(gruvboxFg0).
			MarginRight(1)

	Help = lipgloss.NewStyle().
		Foreground(gruvboxFg2)

	HelpKey = lipgloss.NewStyle().
		Foreground(gruvboxYellow).
		Bold(true)

	ErrorBar = lipgloss.NewStyle().
			Foreground(gruvboxBg0).
			Background(gruvboxRed).
			Padding(0, 1)
)
