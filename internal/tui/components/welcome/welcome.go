// Package welcome renders the empty state shown before a repository is
// analyzed.
package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/archlens/internal/tui/components/logo"
	"github.com/guilhermegouw/archlens/internal/tui/styles"
)

// Welcome is the empty-session screen.
type Welcome struct {
	width   int
	height  int
	backend string
}

// New creates a welcome screen naming the backend in use.
func New(backend string) *Welcome {
	return &Welcome{backend: backend}
}

// SetSize sets the welcome screen size.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// View renders the welcome screen centered in its area.
func (w *Welcome) View() string {
	t := styles.CurrentTheme()

	var head string
	if w.width >= logo.Width()+2 {
		head = logo.RenderWithTagline()
	} else {
		head = t.S().Title.Render("archlens")
	}

	lines := []string{
		head,
		"",
		t.S().Text.Render("Paste a GitHub repository link below to generate"),
		t.S().Text.Render("its architecture diagram, then ask follow-up questions."),
		"",
		t.S().Muted.Render("Click modules in the viewer, or use /drill <module>, to explore."),
	}
	if w.backend != "" {
		lines = append(lines, "", t.S().Subtle.Render("backend: "+w.backend))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.Place(w.width, w.height, lipgloss.Center, lipgloss.Center, content)
}
