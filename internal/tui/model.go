package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// CheckState represents the current state of a check in the TUI.
// Values intentionally mirror check.State for straightforward bridging
// via StatusUpdateMsg, keeping the tui package decoupled from check.
type CheckState string

const (
	CheckPending CheckState = "pending"
	CheckRunning CheckState = "running"
	CheckPassed  CheckState = "passed"
	CheckFailed  CheckState = "failed"
	CheckError   CheckState = "error"
)

// checkRow tracks the display state of a single check.
type checkRow struct {
	Name     string
	Status   CheckState
	Summary  string
	Duration time.Duration
}

// StatusUpdateMsg bridges runner status updates to the TUI.
type StatusUpdateMsg struct {
	Check    string
	Status   CheckState
	Progress string
	Summary  string
	Detail   string
	Duration time.Duration
}

func (StatusUpdateMsg) isDisplayEvent() {}

// RunDoneMsg signals that every check passed.
type RunDoneMsg struct{}

func (RunDoneMsg) isDisplayEvent() {}

// RunErrorMsg signals that the run ended with a failing check.
type RunErrorMsg struct {
	Err error
}

func (RunErrorMsg) isDisplayEvent() {}

// Model is the Bubble Tea model for check status display.
type Model struct {
	checks     []checkRow
	spinner    spinner.Model
	done       bool
	err        error
	cancelFunc func()
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithCancelFunc sets the function invoked when the user aborts the run.
func WithCancelFunc(cancel func()) ModelOption {
	return func(m *Model) { m.cancelFunc = cancel }
}

// NewModel creates a Model initialized with the given check names.
func NewModel(checkNames []string, opts ...ModelOption) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	checks := make([]checkRow, len(checkNames))
	for i, name := range checkNames {
		checks[i] = checkRow{Name: name, Status: CheckPending}
	}

	m := Model{
		checks:  checks,
		spinner: s,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatusUpdateMsg:
		for i := range m.checks {
			if m.checks[i].Name == msg.Check {
				m.checks[i].Status = msg.Status
				if msg.Summary != "" {
					m.checks[i].Summary = msg.Summary
				}
				if msg.Duration > 0 {
					m.checks[i].Duration = msg.Duration
				}
				break
			}
		}
		return m, nil

	case RunDoneMsg:
		m.done = true
		return m, tea.Quit

	case RunErrorMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.done = true
			if m.cancelFunc != nil {
				m.cancelFunc()
			}
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the check list with status indicators.
func (m Model) View() string {
	var s string

	for _, c := range m.checks {
		indicator := statusIndicator(c.Status, m.spinner.View())
		line := fmt.Sprintf("  %s %s", indicator, c.Name)

		if c.Duration > 0 {
			line += durationStyle.Render(fmt.Sprintf(" %.1fs", c.Duration.Seconds()))
		}
		if c.Summary != "" && c.Status != CheckRunning {
			line += summaryStyle.Render(" " + c.Summary)
		}

		s += line + "\n"
	}

	if m.done {
		s += "\n" + Summary(m.tally()) + "\n"
		if m.err != nil {
			s += errorStyle.Render(fmt.Sprintf("  %s", m.err)) + "\n"
		}
	}

	return s
}

// tally counts checks by final state.
func (m Model) tally() (passed, failed, errored int) {
	for _, c := range m.checks {
		switch c.Status {
		case CheckPassed:
			passed++
		case CheckFailed:
			failed++
		case CheckError:
			errored++
		}
	}
	return passed, failed, errored
}

// statusIndicator returns the styled indicator for a check status.
func statusIndicator(status CheckState, spinnerView string) string {
	switch status {
	case CheckPending:
		return pendingStyle.Render("○")
	case CheckRunning:
		return spinnerView
	case CheckPassed:
		return passedStyle.Render("✓")
	case CheckFailed, CheckError:
		return failedStyle.Render("✗")
	default:
		return "?"
	}
}
