package chat

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/archlens/internal/render"
	"github.com/guilhermegouw/archlens/internal/tui/styles"
)

// Status represents the current page status.
type Status int

// Status constants.
const (
	StatusReady Status = iota
	StatusLoading
	StatusError
)

// StatusBar displays the request status on the left and the render state
// on the right.
type StatusBar struct {
	status   Status
	errorMsg string
	info     string
	render   render.State
	viewer   string
	width    int
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	return &StatusBar{
		status: StatusReady,
	}
}

// SetStatus sets the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.status = status
	if status != StatusError {
		s.errorMsg = ""
	}
}

// Status returns the current status.
func (s *StatusBar) Status() Status {
	return s.status
}

// SetError sets an error message.
func (s *StatusBar) SetError(msg string) {
	s.status = StatusError
	s.errorMsg = msg
}

// SetInfo shows a transient note next to the status. Empty clears it.
func (s *StatusBar) SetInfo(info string) {
	s.info = info
}

// SetRender updates the render state shown on the right.
func (s *StatusBar) SetRender(state render.State, hasDiagram bool) {
	s.render = state
	if !hasDiagram {
		s.render = render.State{}
	}
}

// SetViewer sets the viewer address shown on the right.
func (s *StatusBar) SetViewer(addr string) {
	s.viewer = addr
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

func (s *StatusBar) left(t *styles.Theme) string {
	var text string
	var style lipgloss.Style

	switch s.status {
	case StatusLoading:
		text, style = "Analyzing...", t.S().Info
	case StatusError:
		text, style = "Error: "+s.errorMsg, t.S().Error
	default:
		text, style = "Ready", t.S().Success
	}
	out := style.Render(text)
	if s.info != "" {
		out += t.S().Muted.Render(" · " + s.info)
	}
	return out
}

func (s *StatusBar) right(t *styles.Theme) string {
	var parts []string
	if s.render.Strategy != "" {
		parts = append(parts, string(s.render.Strategy))
		parts = append(parts, fmt.Sprintf("zoom %d%%", zoomPercent(s.render.Zoom)))
	}
	if s.viewer != "" {
		parts = append(parts, s.viewer)
	}
	return t.S().Muted.Render(strings.Join(parts, " · "))
}

// View renders the status bar.
func (s *StatusBar) View() string {
	t := styles.CurrentTheme()

	barStyle := lipgloss.NewStyle().
		Width(s.width).
		Padding(0, 1).
		Background(t.BgSubtle)

	left := s.left(t)
	right := s.right(t)

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	content := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return barStyle.Render(content)
}

func zoomPercent(z float64) int {
	if z == 0 {
		z = render.DefaultZoom
	}
	return int(z*100 + 0.5)
}
