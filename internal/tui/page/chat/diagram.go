package chat

import (
	"fmt"
	"strings"

	"github.com/guilhermegouw/archlens/internal/explorer"
	"github.com/guilhermegouw/archlens/internal/render"
	"github.com/guilhermegouw/archlens/internal/svg"
	"github.com/guilhermegouw/archlens/internal/tui/components/panel"
	"github.com/guilhermegouw/archlens/internal/tui/styles"
)

// Diagram pane labels.
const (
	TitleOverview    = "Project Architecture Diagram"
	HintOverview     = "Click modules to explore"
	HintModule       = "Detailed module view"
	MsgLoadingDiagram = "Loading diagram..."
)

// DiagramInfo is everything the pane needs for one frame.
type DiagramInfo struct {
	State      render.State
	Content    string
	Inline     string
	Navigation explorer.Navigation
	Loading    bool
}

// DiagramPane shows where and how the current diagram is displayed.
type DiagramPane struct {
	panel  *panel.Panel
	offset int
	width  int
	height int
}

// NewDiagramPane creates an empty pane.
func NewDiagramPane() *DiagramPane {
	return &DiagramPane{panel: panel.New()}
}

// SetSize sets the outer size.
func (d *DiagramPane) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.panel.SetSize(width, height)
}

// Height returns the outer height.
func (d *DiagramPane) Height() int {
	return d.height
}

// SetFocused highlights the border.
func (d *DiagramPane) SetFocused(focused bool) {
	d.panel.SetFocused(focused)
}

// Scroll moves the inline source view by n lines.
func (d *DiagramPane) Scroll(n int) {
	d.offset = max(0, d.offset+n)
}

// ResetScroll returns to the first line.
func (d *DiagramPane) ResetScroll() {
	d.offset = 0
}

// Title returns the pane title for nav.
func Title(nav explorer.Navigation) string {
	if nav.IsOverview() {
		return TitleOverview
	}
	return "Module: " + nav.CurrentModule
}

// Body returns the pane content lines for info, limited to rows.
func (d *DiagramPane) Body(info DiagramInfo, rows int) []string {
	t := styles.CurrentTheme()

	lines := []string{}
	if info.Navigation.IsOverview() {
		lines = append(lines, t.S().Muted.Render(HintOverview))
	} else {
		lines = append(lines,
			t.S().Subtle.Render(info.Navigation.Breadcrumb()),
			t.S().Muted.Render(HintModule),
		)
	}
	lines = append(lines, "")

	switch {
	case info.Loading || (info.State.Phase == render.PhaseLoading && info.Content != ""):
		lines = append(lines, t.S().Info.Render(MsgLoadingDiagram))

	case info.State.Phase == render.PhaseError:
		lines = append(lines,
			t.S().Error.Render("Error: "+info.State.LastError),
			t.S().Muted.Render("SVG preview: ")+t.S().Subtle.Render(svg.Preview(info.Content)),
			t.S().Muted.Render("/retry to try another display mode"),
		)

	case info.State.Phase == render.PhaseDisplaying && info.State.Strategy == render.StrategyInline:
		lines = append(lines, d.inlineWindow(info.Inline, rows-len(lines))...)

	case info.State.Phase == render.PhaseDisplaying:
		lines = append(lines, t.S().Success.Render(fmt.Sprintf("Showing in viewer (%s)", info.State.Strategy)))
		if info.State.Handle != nil {
			lines = append(lines, t.S().Muted.Render(info.State.Handle.URL))
		}
		lines = append(lines, t.S().Muted.Render(fmt.Sprintf("zoom %d%%  ctrl+wheel or /zoom in|out|reset", zoomPercent(info.State.Zoom))))
	}

	if len(lines) > rows {
		lines = lines[:rows]
	}
	return lines
}

func (d *DiagramPane) inlineWindow(inline string, rows int) []string {
	if rows <= 0 {
		return nil
	}
	src := strings.Split(strings.TrimRight(inline, "\n"), "\n")
	if d.offset > len(src)-rows {
		d.offset = max(0, len(src)-rows)
	}
	end := min(len(src), d.offset+rows)
	return src[d.offset:end]
}

// View renders the pane.
func (d *DiagramPane) View(info DiagramInfo) string {
	d.panel.SetTitle(Title(info.Navigation))
	footer := ""
	if info.Content != "" {
		footer = fmt.Sprintf("SVG size: %d characters", len(info.Content))
	}
	d.panel.SetFooter(footer)
	_, rows := d.panel.InnerSize()
	d.panel.SetContent(strings.Join(d.Body(info, rows), "\n"))
	return d.panel.View()
}
