package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	passedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	durationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	summaryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Summary renders a one-line run summary, coloring each non-zero bucket.
func Summary(passed, failed, errored int) string {
	parts := []string{passedStyle.Render(fmt.Sprintf("%d passed", passed))}
	if failed > 0 {
		parts = append(parts, failedStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	if errored > 0 {
		parts = append(parts, failedStyle.Render(fmt.Sprintf("%d error", errored)))
	}
	return "  " + strings.Join(parts, ", ")
}
