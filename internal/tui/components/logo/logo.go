// Package logo renders the archlens wordmark.
package logo

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/archlens/internal/tui/styles"
)

const wordmark = `
 ┏━┓┏━┓┏━╸╻ ╻╻  ┏━╸┏┓╻┏━┓
 ┣━┫┣┳┛┃  ┣━┫┃  ┣╸ ┃┗┫┗━┓
 ╹ ╹╹┗╸┗━╸╹ ╹┗━╸┗━╸╹ ╹┗━┛
`

// Tagline is shown under the wordmark.
const Tagline = "Architecture diagrams for any GitHub repository"

// Render returns the wordmark in the current theme's gradient.
func Render() string {
	t := styles.CurrentTheme()
	return styles.ApplyForegroundGrad(strings.Trim(wordmark, "\n"), t.Primary, t.Accent)
}

// RenderWithTagline returns the wordmark with the tagline below it.
func RenderWithTagline() string {
	t := styles.CurrentTheme()
	return lipgloss.JoinVertical(lipgloss.Center, Render(), "", t.S().Muted.Render(Tagline))
}

// Width returns the width of the wordmark.
func Width() int {
	return lipgloss.Width(strings.Trim(wordmark, "\n"))
}
