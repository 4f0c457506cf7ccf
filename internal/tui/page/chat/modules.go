package chat

import (
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/guilhermegouw/archlens/internal/tui/styles"
	"github.com/guilhermegouw/archlens/internal/tui/util"
)

// Module status icons.
const (
	moduleIconCurrent = "◆"
	moduleIconVisited = "✓"
	moduleIconIdle    = "○"
)

// DrillRequestMsg asks the page to drill into Module.
type DrillRequestMsg struct {
	Module string
}

// BackRequestMsg asks the page to return to the overview.
type BackRequestMsg struct{}

// ModulePanel lists the drill-down targets of the displayed diagram.
type ModulePanel struct {
	modules []string
	path    []string
	cursor  int
	offset  int
	height  int
	focused bool
}

// NewModulePanel creates an empty panel.
func NewModulePanel() *ModulePanel {
	return &ModulePanel{}
}

// SetModules replaces the list. path is the current navigation path.
func (p *ModulePanel) SetModules(modules, path []string) {
	p.modules = modules
	p.path = path
	if p.cursor >= len(modules) {
		p.cursor = max(0, len(modules)-1)
	}
	p.ensureVisible()
}

// Modules returns the listed modules.
func (p *ModulePanel) Modules() []string {
	return p.modules
}

// SetHeight sets the visible row count.
func (p *ModulePanel) SetHeight(height int) {
	p.height = height
	p.ensureVisible()
}

// SetFocused toggles keyboard focus.
func (p *ModulePanel) SetFocused(focused bool) {
	p.focused = focused
}

// Selected returns the module under the cursor.
func (p *ModulePanel) Selected() string {
	if p.cursor >= 0 && p.cursor < len(p.modules) {
		return p.modules[p.cursor]
	}
	return ""
}

// Update handles navigation keys.
func (p *ModulePanel) Update(msg tea.Msg) (*ModulePanel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.modules)-1 {
			p.cursor++
		}
	case "enter":
		if m := p.Selected(); m != "" {
			return p, util.CmdHandler(DrillRequestMsg{Module: m})
		}
	case "b", "backspace":
		return p, util.CmdHandler(BackRequestMsg{})
	}
	p.ensureVisible()
	return p, nil
}

func (p *ModulePanel) ensureVisible() {
	rows := max(1, p.height)
	if p.cursor < p.offset {
		p.offset = p.cursor
	} else if p.cursor >= p.offset+rows {
		p.offset = p.cursor - rows + 1
	}
}

// View renders the list.
func (p *ModulePanel) View() string {
	t := styles.CurrentTheme()
	if len(p.modules) == 0 {
		return t.S().Muted.Render("No modules found.")
	}

	current := ""
	if n := len(p.path); n > 0 {
		current = p.path[n-1]
	}

	end := min(len(p.modules), p.offset+max(1, p.height))
	lines := make([]string, 0, end-p.offset)
	for i := p.offset; i < end; i++ {
		m := p.modules[i]
		icon, iconStyle := moduleIconIdle, t.S().Muted
		switch {
		case m == current:
			icon, iconStyle = moduleIconCurrent, t.S().Accent
		case slices.Contains(p.path, m):
			icon, iconStyle = moduleIconVisited, t.S().Success
		}
		nameStyle := t.S().Text
		if i == p.cursor && p.focused {
			nameStyle = t.S().Selected
		}
		lines = append(lines, iconStyle.Render(icon)+" "+nameStyle.Render(m))
	}
	return strings.Join(lines, "\n")
}
