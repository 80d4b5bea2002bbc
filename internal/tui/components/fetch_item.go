package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/NamanBalaji/fget/internal/engine"
	"github.com/NamanBalaji/fget/internal/status"
	"github.com/NamanBalaji/fget/internal/tui/styles"
)

// FetchItem renders a single fetch entry given its info, width, and the
// current spinner frame (shown for active fetches with unknown totals).
func FetchItem(info engine.JobInfo, width int, spinnerFrame string) string {
	name := info.Filename
	if name == "" {
		name = info.URL
	}

	maxNameLen := 40
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	var statusLabel string

	switch info.Status {
	case status.Active:
		statusLabel = styles.StatusActive.Render("● active")
	case status.Completed:
		statusLabel = styles.StatusCompleted.Render("✔ completed")
	case status.Cancelled:
		statusLabel = styles.StatusCancelled.Render("⊘ cancelled")
	case status.Failed:
		statusLabel = styles.StatusFailed.Render("✖ failed")
	default:
		statusLabel = styles.StatusQueued.Render("○ queued")
	}

	knownTotal := info.Total >= 0

	percent := "  --  "
	if knownTotal && info.Total > 0 {
		percent = fmt.Sprintf("%.1f%%", float64(info.Received)/float64(info.Total)*100)
	} else if info.Status == status.Completed {
		percent = "100%"
	} else if info.Status == status.Active {
		percent = spinnerFrame
	}

	percentStyle := lipgloss.NewStyle().Width(8).Align(lipgloss.Right)
	formattedPercent := percentStyle.Render(percent)

	nameWidth := maxNameLen
	statusWidth := lipgloss.Width(statusLabel)

	remainingSpace := width - nameWidth - statusWidth - lipgloss.Width(formattedPercent) - 3
	if remainingSpace < 2 {
		remainingSpace = 2
	}

	padding := strings.Repeat(" ", remainingSpace)
	line1 := fmt.Sprintf("%-*s %s%s%s", nameWidth, name, statusLabel, padding, formattedPercent)

	barWidth := width - 2
	if barWidth < 10 {
		barWidth = 10
	}

	fraction := -1.0
	if knownTotal && info.Total > 0 {
		fraction = float64(info.Received) / float64(info.Total)
	} else if info.Status == status.Completed {
		fraction = 1.0
	}

	line2 := styles.ListItem.Render(ProgressBar(barWidth, fraction))

	total := "?"
	if knownTotal {
		total = FormatSize(info.Total)
	}
	sizeInfo := fmt.Sprintf("%s / %s", FormatSize(info.Received), total)

	speedInfo := "--/s"
	if info.Status == status.Active && info.Speed > 0 {
		speedInfo = FormatSize(info.Speed) + "/s"
	}

	eta := "--"
	switch {
	case info.Status == status.Completed:
		eta = "Done"
	case info.Status == status.Active && knownTotal && info.Speed > 0:
		eta = FormatETA(info.Total-info.Received, info.Speed)
	}

	infoLine := fmt.Sprintf("%s  %s  ETA: %s", sizeInfo, speedInfo, eta)
	if info.Error != "" {
		infoLine = info.Error
	}
	line3 := styles.ListItem.Faint(true).Render(infoLine)

	item := lipgloss.JoinVertical(lipgloss.Left, line1, line2, line3)

	return styles.ListItem.Width(width).Render(item)
}

// ProgressBar renders a bar of the given width. A negative fraction means
// the total is unknown and an indeterminate bar is drawn.
func ProgressBar(width int, fraction float64) string {
	if width < 1 {
		width = 1
	}

	if fraction < 0 {
		return styles.BarEmpty.Render(strings.Repeat("╌", width))
	}

	if fraction > 1 {
		fraction = 1
	}

	filled := int(fraction * float64(width))
	empty := width - filled

	return styles.BarFilled.Render(strings.Repeat("█", filled)) +
		styles.BarEmpty.Render(strings.Repeat("░", empty))
}

// FormatSize converts bytes into a human-readable string.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatETA estimates remaining time from bytes left and speed.
func FormatETA(remaining, speed int64) string {
	if speed <= 0 || remaining < 0 {
		return "--"
	}

	seconds := remaining / speed

	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm%ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%dh%dm", seconds/3600, (seconds%3600)/60)
	}
}
