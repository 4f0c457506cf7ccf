// Package panel draws bordered boxes with a title in the top border.
package panel

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/guilhermegouw/archlens/internal/tui/styles"
)

// Panel renders content inside a bordered box with a centered title.
type Panel struct {
	title   string
	footer  string
	content string
	width   int
	height  int
	focused bool
}

// New creates an empty panel.
func New() *Panel {
	return &Panel{}
}

// SetTitle sets the title shown in the top border.
func (p *Panel) SetTitle(title string) {
	p.title = title
}

// SetFooter sets a short label shown in the bottom border.
func (p *Panel) SetFooter(footer string) {
	p.footer = footer
}

// SetContent sets the content rendered inside the panel.
func (p *Panel) SetContent(content string) {
	p.content = content
}

// SetSize sets the outer dimensions.
func (p *Panel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetFocused sets whether the panel has focus (affects border color).
func (p *Panel) SetFocused(focused bool) {
	p.focused = focused
}

// InnerSize is the space available to content.
func (p *Panel) InnerSize() (int, int) {
	return max(1, p.width-4), max(1, p.height-2)
}

// View renders the panel.
func (p *Panel) View() string {
	t := styles.CurrentTheme()

	borderColor := t.Border
	if p.focused {
		borderColor = t.BorderFocus
	}
	border := lipgloss.NewStyle().Foreground(borderColor)

	// ╭ + inner + ╮ = width
	inner := max(4, p.width-2)
	contentWidth, contentHeight := p.InnerSize()

	top := border.Render("╭") + p.label(p.title, inner, t.S().Primary.Bold(true), border) + border.Render("╮")
	bottom := border.Render("╰") + p.label(p.footer, inner, t.S().Muted, border) + border.Render("╯")

	lines := strings.Split(p.content, "\n")
	out := make([]string, 0, contentHeight+2)
	out = append(out, top)
	for i := 0; i < contentHeight; i++ {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		out = append(out, border.Render("│ ")+Fit(line, contentWidth)+border.Render(" │"))
	}
	out = append(out, bottom)
	return strings.Join(out, "\n")
}

func (p *Panel) label(text string, width int, style, border lipgloss.Style) string {
	if text == "" {
		return border.Render(strings.Repeat("─", width))
	}
	text = ansi.Truncate(" "+text+" ", max(0, width-4), "…")
	rendered := style.Render(text)
	rest := max(0, width-lipgloss.Width(rendered))
	left := rest / 2
	return border.Render(strings.Repeat("─", left)) + rendered + border.Render(strings.Repeat("─", rest-left))
}

// Fit pads or truncates a styled line to exactly width cells.
func Fit(line string, width int) string {
	if ansi.StringWidth(line) > width {
		line = ansi.Truncate(line, width, "…")
	}
	if w := ansi.StringWidth(line); w < width {
		line += strings.Repeat(" ", width-w)
	}
	return line
}
