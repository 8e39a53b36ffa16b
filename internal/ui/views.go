package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#005FAF"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	okIcon     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
	activeIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")
	errIcon    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AF0000")).Render("✗")
	queueIcon  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")

	activeBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#005FAF")).
			Padding(0, 1).
			Width(60)

	footerBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#888888")).
			Padding(0, 1).
			Width(60)
)

// renderProcessingView is the main view while the batch runs.
func renderProcessingView(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("NextLight Audio Analyzer"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Analyzing %d file(s)", m.TotalFiles)))
	b.WriteString("\n\n")

	for i, file := range m.Files {
		b.WriteString(renderFileEntry(file, i == m.CurrentIndex))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerBox.Render(fmt.Sprintf("File %d of %d (%d complete, %d failed)",
		m.CurrentIndex+1, m.TotalFiles, m.CompletedFiles, m.FailedFiles)))

	return b.String()
}

func renderFileEntry(file FileProgress, active bool) string {
	name := filepath.Base(file.Path)

	switch file.Status {
	case StatusComplete:
		return fmt.Sprintf(" %s %s\n   %s", okIcon, name, completedSummary(file))

	case StatusDecoding:
		return fmt.Sprintf(" %s %s\n   Decoding...", activeIcon, name)

	case StatusAnalyzing:
		return fmt.Sprintf(" %s %s\n%s", activeIcon, name, renderActiveDetails(file))

	case StatusError:
		return fmt.Sprintf(" %s %s\n   Error: %v", errIcon, name, file.Err)

	default:
		return fmt.Sprintf(" %s %s\n   Queued...", queueIcon, name)
	}
}

// renderActiveDetails is the bordered progress box for the file in flight.
func renderActiveDetails(file FileProgress) string {
	var content strings.Builder

	label := file.Label
	if label == "" {
		label = "Analyzing"
	}
	content.WriteString(label)
	content.WriteString("\n")
	content.WriteString(renderProgressBar(file.Percent, 40))
	content.WriteString("\n")

	// Show measurements as their fragments stream in.
	if l := file.Result.Loudness; l != nil {
		content.WriteString(fmt.Sprintf("\n%s LUFS | %s dBTP",
			formatDB(l.Integrated), formatDB(l.TruePeak)))
	}
	if s := file.Result.Stereo; s != nil {
		content.WriteString(fmt.Sprintf(" | width %.2f", s.Width))
	}

	content.WriteString(fmt.Sprintf("\n⏱  %.1fs elapsed", file.ElapsedTime.Seconds()))

	return activeBox.Render(content.String())
}

func renderProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %d%%", bar, percent)
}

// renderCompletionSummary is the final view once every file has finished.
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("Analysis Complete")
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, file := range m.Files {
		name := filepath.Base(file.Path)
		switch file.Status {
		case StatusComplete:
			b.WriteString(fmt.Sprintf(" %s %s\n   %s\n", okIcon, name, completedSummary(file)))
		case StatusError:
			b.WriteString(fmt.Sprintf(" %s %s\n   Error: %v\n", errIcon, name, file.Err))
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d of %d files analyzed successfully\n", m.CompletedFiles, m.TotalFiles))

	return b.String()
}

func completedSummary(file FileProgress) string {
	parts := []string{}
	if l := file.Result.Loudness; l != nil {
		parts = append(parts, fmt.Sprintf("%s LUFS", formatDB(l.Integrated)))
		parts = append(parts, fmt.Sprintf("%s dBTP", formatDB(l.TruePeak)))
	}
	if s := file.Result.Stereo; s != nil {
		parts = append(parts, fmt.Sprintf("width %.2f", s.Width))
	}
	if bk := file.BpmKey; bk != nil {
		if bk.BPM > 0 {
			parts = append(parts, fmt.Sprintf("%.0f BPM", bk.BPM))
		}
		if bk.Key != "" {
			parts = append(parts, fmt.Sprintf("%s %s", bk.Key, bk.Scale))
		}
	}
	if len(parts) == 0 {
		return "no measurements"
	}
	return strings.Join(parts, " | ")
}

func formatDB(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.1f", v)
}
