package sessions

import (
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/archlens/internal/tui/styles"
)

// HintMode selects which key hints are shown.
type HintMode int

const (
	// HintModeInput is shown while typing.
	HintModeInput HintMode = iota
	// HintModeLoading is shown while a request is in flight.
	HintModeLoading
	// HintModeSessions is shown while the session list has focus.
	HintModeSessions
	// HintModeModules is shown while the module list has focus.
	HintModeModules
)

// HintBar displays context-sensitive keyboard hints.
type HintBar struct {
	mode  HintMode
	width int
}

// NewHintBar creates a hint bar in input mode.
func NewHintBar() *HintBar {
	return &HintBar{mode: HintModeInput}
}

// SetMode sets the current hint mode.
func (h *HintBar) SetMode(mode HintMode) {
	h.mode = mode
}

// Mode returns the current hint mode.
func (h *HintBar) Mode() HintMode {
	return h.mode
}

// SetWidth sets the hint bar width.
func (h *HintBar) SetWidth(width int) {
	h.width = width
}

// Text returns the hints for the current mode.
func (h *HintBar) Text() string {
	switch h.mode {
	case HintModeLoading:
		return "[esc] abandon request  [ctrl+c] quit"
	case HintModeSessions:
		return "[↑↓] navigate  [enter] open  [n] new  [tab] next pane"
	case HintModeModules:
		return "[↑↓] navigate  [enter] drill down  [b] back  [tab] next pane"
	default:
		return "[enter] send  [tab] next pane  [/zoom in|out|reset]  [ctrl+c] quit"
	}
}

// View renders the hint bar.
func (h *HintBar) View() string {
	t := styles.CurrentTheme()
	return t.S().Muted.Width(h.width).Align(lipgloss.Center).Render(h.Text())
}
