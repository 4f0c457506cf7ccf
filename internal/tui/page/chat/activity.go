package chat

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/guilhermegouw/archlens/internal/tui/styles"
)

// Spinner animation frames (braille pattern).
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerInterval is the time between spinner frame updates.
const spinnerInterval = 100 * time.Millisecond

// StepStatus is the state of one pipeline step.
type StepStatus int

// Step status constants.
const (
	StepRunning StepStatus = iota
	StepDone
	StepFailed
)

// Step is one line of the activity log, e.g. a request or a viewer event.
type Step struct {
	Label  string
	Detail string
	Status StepStatus
}

// SpinnerTickMsg is sent to advance the spinner animation.
type SpinnerTickMsg struct{}

// ActivityPanel shows the in-flight request and recent diagram pipeline
// steps.
type ActivityPanel struct { //nolint:govet // fieldalignment: preserving logical field order
	spinner  int
	working  string
	steps    []Step
	width    int
	maxSteps int
}

// NewActivityPanel creates a new activity panel.
func NewActivityPanel() *ActivityPanel {
	return &ActivityPanel{maxSteps: 3}
}

// SetWorking shows label with a spinner. An empty label stops it.
func (a *ActivityPanel) SetWorking(label string) tea.Cmd {
	wasIdle := a.working == ""
	a.working = label
	if label != "" && wasIdle {
		return a.tickSpinner()
	}
	return nil
}

// Working reports whether the spinner is running.
func (a *ActivityPanel) Working() bool {
	return a.working != ""
}

// Add appends a step, keeping the most recent ones.
func (a *ActivityPanel) Add(step Step) {
	a.steps = append(a.steps, step)
	if len(a.steps) > a.maxSteps {
		a.steps = a.steps[len(a.steps)-a.maxSteps:]
	}
}

// Finish marks the most recent running step with label as done or failed.
func (a *ActivityPanel) Finish(label string, failed bool) {
	for i := len(a.steps) - 1; i >= 0; i-- {
		if a.steps[i].Label == label && a.steps[i].Status == StepRunning {
			a.steps[i].Status = StepDone
			if failed {
				a.steps[i].Status = StepFailed
			}
			return
		}
	}
}

// Steps returns the visible steps.
func (a *ActivityPanel) Steps() []Step {
	return a.steps
}

// Clear resets the panel.
func (a *ActivityPanel) Clear() {
	a.working = ""
	a.steps = nil
	a.spinner = 0
}

// SetWidth sets the panel width.
func (a *ActivityPanel) SetWidth(width int) {
	a.width = width
}

// Height returns the current height of the panel (0 when hidden).
func (a *ActivityPanel) Height() int {
	h := len(a.steps)
	if a.working != "" {
		h++
	}
	return h
}

// IsActive returns true if the panel has content to show.
func (a *ActivityPanel) IsActive() bool {
	return a.Height() > 0
}

// Frame returns the current spinner frame.
func (a *ActivityPanel) Frame() string {
	return spinnerFrames[a.spinner]
}

// Update advances the spinner.
func (a *ActivityPanel) Update(msg tea.Msg) (*ActivityPanel, tea.Cmd) {
	if _, ok := msg.(SpinnerTickMsg); ok && a.working != "" {
		a.spinner = (a.spinner + 1) % len(spinnerFrames)
		return a, a.tickSpinner()
	}
	return a, nil
}

func (a *ActivityPanel) tickSpinner() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

// View renders the panel.
func (a *ActivityPanel) View() string {
	if !a.IsActive() {
		return ""
	}
	t := styles.CurrentTheme()

	lines := make([]string, 0, a.Height())
	for i, s := range a.steps {
		prefix := "├─ "
		if i == len(a.steps)-1 && a.working == "" {
			prefix = "└─ "
		}
		line := t.S().Muted.Render(prefix) + a.statusStyle(t, s.Status).Render(s.Label)
		if s.Detail != "" {
			line += t.S().Muted.Render(": ") + t.S().Text.Render(s.Detail)
		}
		lines = append(lines, ansi.Truncate(line, max(10, a.width-2), "…"))
	}
	if a.working != "" {
		lines = append(lines, t.S().Info.Render(a.Frame()+" "+a.working))
	}

	return lipgloss.NewStyle().Padding(0, 1).Width(a.width).Render(strings.Join(lines, "\n"))
}

func (a *ActivityPanel) statusStyle(t *styles.Theme, status StepStatus) lipgloss.Style {
	switch status {
	case StepDone:
		return t.S().Success
	case StepFailed:
		return t.S().Error
	default:
		return t.S().Warning
	}
}
