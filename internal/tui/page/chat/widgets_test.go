package chat

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/guilhermegouw/archlens/internal/blob"
	"github.com/guilhermegouw/archlens/internal/explorer"
	"github.com/guilhermegouw/archlens/internal/render"
)

func TestActivityPanel(t *testing.T) {
	a := NewActivityPanel()
	a.SetWidth(60)
	if a.IsActive() || a.View() != "" {
		t.Fatal("new panel should be hidden")
	}

	if cmd := a.SetWorking("Analyzing..."); cmd == nil {
		t.Error("starting work should schedule a spinner tick")
	}
	if cmd := a.SetWorking("Still analyzing..."); cmd != nil {
		t.Error("relabeling should not schedule a second tick")
	}

	frame := a.Frame()
	if _, cmd := a.Update(SpinnerTickMsg{}); cmd == nil || a.Frame() == frame {
		t.Error("tick did not advance the spinner")
	}

	for _, label := range []string{"one", "two", "three", "four"} {
		a.Add(Step{Label: label})
	}
	if steps := a.Steps(); len(steps) != 3 || steps[0].Label != "two" {
		t.Errorf("steps = %+v", steps)
	}
	a.Finish("four", true)
	if a.Steps()[2].Status != StepFailed {
		t.Error("Finish did not mark the step")
	}

	out := xansi.Strip(a.View())
	if !strings.Contains(out, "four") || !strings.Contains(out, "Still analyzing...") {
		t.Errorf("View() = %q", out)
	}
	if a.Height() != 4 {
		t.Errorf("Height() = %d", a.Height())
	}

	a.SetWorking("")
	if _, cmd := a.Update(SpinnerTickMsg{}); cmd != nil {
		t.Error("idle panel should stop ticking")
	}
	a.Clear()
	if a.IsActive() {
		t.Error("Clear() left content")
	}
}

func TestModulePanel(t *testing.T) {
	p := NewModulePanel()
	p.SetHeight(2)
	if !strings.Contains(p.View(), "No modules") {
		t.Error("empty panel text missing")
	}

	p.SetModules([]string{"api", "core", "storage"}, []string{"core"})
	p.SetFocused(true)
	press := func(code rune) tea.Msg {
		_, cmd := p.Update(tea.KeyPressMsg{Code: code})
		if cmd == nil {
			return nil
		}
		return cmd()
	}

	press(tea.KeyDown)
	press(tea.KeyDown)
	if p.Selected() != "storage" {
		t.Errorf("Selected() = %q", p.Selected())
	}
	out := xansi.Strip(p.View())
	if strings.Contains(out, "api") || !strings.Contains(out, "storage") {
		t.Errorf("window did not follow the cursor: %q", out)
	}
	if !strings.Contains(out, moduleIconCurrent+" core") {
		t.Errorf("current module not marked: %q", out)
	}

	if msg := press(tea.KeyEnter); msg != (DrillRequestMsg{Module: "storage"}) {
		t.Errorf("enter = %#v", msg)
	}
	if msg := press(tea.KeyBackspace); msg != (BackRequestMsg{}) {
		t.Errorf("backspace = %#v", msg)
	}

	p.SetModules([]string{"api"}, nil)
	if p.Selected() != "api" {
		t.Errorf("cursor not clamped: %q", p.Selected())
	}
}

func TestStatusBar(t *testing.T) {
	s := NewStatusBar()
	s.SetWidth(80)
	s.SetViewer("127.0.0.1:4000")

	if out := xansi.Strip(s.View()); !strings.Contains(out, "Ready") || !strings.Contains(out, "127.0.0.1:4000") {
		t.Errorf("View() = %q", out)
	}

	s.SetRender(render.State{Strategy: render.StrategyImage, Zoom: 1.5}, true)
	if out := xansi.Strip(s.View()); !strings.Contains(out, "image · zoom 150%") {
		t.Errorf("render state missing: %q", out)
	}
	s.SetRender(render.State{Strategy: render.StrategyImage}, false)
	if out := xansi.Strip(s.View()); strings.Contains(out, "zoom") {
		t.Errorf("render state shown without a diagram: %q", out)
	}

	s.SetError("backend unreachable")
	if s.Status() != StatusError || !strings.Contains(xansi.Strip(s.View()), "Error: backend unreachable") {
		t.Error("error not shown")
	}
	s.SetStatus(StatusLoading)
	if out := xansi.Strip(s.View()); !strings.Contains(out, "Analyzing...") || strings.Contains(out, "unreachable") {
		t.Errorf("loading view = %q", out)
	}
}

func TestDiagramPane_Body(t *testing.T) {
	d := NewDiagramPane()
	overviewNav := explorer.Overview()
	moduleNav := explorer.Overview()
	moduleNav.Push("parser")

	tests := []struct {
		name string
		info DiagramInfo
		want []string
	}{
		{
			name: "loading",
			info: DiagramInfo{Navigation: overviewNav, Loading: true},
			want: []string{HintOverview, MsgLoadingDiagram},
		},
		{
			name: "error",
			info: DiagramInfo{
				Navigation: overviewNav,
				Content:    "<svg>broken",
				State:      render.State{Phase: render.PhaseError, LastError: "no surface"},
			},
			want: []string{"Error: no surface", "<svg>broken...", "/retry"},
		},
		{
			name: "viewer",
			info: DiagramInfo{
				Navigation: overviewNav,
				Content:    "<svg/>",
				State: render.State{
					Phase:    render.PhaseDisplaying,
					Strategy: render.StrategyObject,
					Handle:   &blob.Handle{URL: "http://127.0.0.1:1/blob/x"},
					Zoom:     1.2,
				},
			},
			want: []string{"Showing in viewer (object)", "http://127.0.0.1:1/blob/x", "zoom 120%"},
		},
		{
			name: "module viewer",
			info: DiagramInfo{
				Navigation: moduleNav,
				Content:    "<svg/>",
				State: render.State{
					Phase:    render.PhaseDisplaying,
					Strategy: render.StrategyImage,
					Handle:   &blob.Handle{URL: "http://127.0.0.1:1/blob/y"},
					Zoom:     0.5,
				},
			},
			want: []string{"Project → parser", "Showing in viewer (image)", "zoom 50%"},
		},
		{
			name: "module inline",
			info: DiagramInfo{
				Navigation: moduleNav,
				Content:    "<svg/>",
				Inline:     "line one\nline two",
				State:      render.State{Phase: render.PhaseDisplaying, Strategy: render.StrategyInline},
			},
			want: []string{"Project → parser", HintModule, "line one", "line two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := xansi.Strip(strings.Join(d.Body(tt.info, 20), "\n"))
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Body() = %q, missing %q", out, want)
				}
			}
		})
	}
}

func TestDiagramPane_InlineScroll(t *testing.T) {
	d := NewDiagramPane()
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = string(rune('a' + i))
	}
	info := DiagramInfo{
		Navigation: explorer.Overview(),
		Inline:     strings.Join(lines, "\n"),
		State:      render.State{Phase: render.PhaseDisplaying, Strategy: render.StrategyInline},
	}

	// Two header lines leave three rows of source.
	d.Scroll(100)
	body := d.Body(info, 5)
	if got := strings.Join(body[2:], ""); got != "hij" {
		t.Errorf("scrolled window = %q, want clamped to the end", got)
	}
	d.ResetScroll()
	if got := strings.Join(d.Body(info, 5)[2:], ""); got != "abc" {
		t.Errorf("window after reset = %q", got)
	}
}

func TestInput_Placeholder(t *testing.T) {
	i := NewInput()
	i.SetInitialized(true)
	if i.Placeholder() != PlaceholderQuestion {
		t.Errorf("Placeholder() = %q", i.Placeholder())
	}
	i.Disable()
	if i.Focus() != nil || i.Focused() {
		t.Error("disabled input took focus")
	}
}
