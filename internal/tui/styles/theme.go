// Package styles holds the color theme and shared lipgloss styles.
package styles

import (
	"image/color"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Theme is a named palette.
type Theme struct { //nolint:govet // fieldalignment: grouped by role
	Name   string
	IsDark bool

	Primary   color.Color
	Secondary color.Color
	Tertiary  color.Color
	Accent    color.Color

	BgBase    color.Color
	BgSubtle  color.Color
	BgOverlay color.Color

	FgBase   color.Color
	FgMuted  color.Color
	FgSubtle color.Color

	Border      color.Color
	BorderFocus color.Color

	Success color.Color
	Error   color.Color
	Warning color.Color
	Info    color.Color

	once   sync.Once
	styles *Styles
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Base     lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Subtle   lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Primary  lipgloss.Style
	Accent   lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Info     lipgloss.Style
	Selected lipgloss.Style
	Banner   lipgloss.Style
}

// S returns the theme's styles, built on first use.
func (t *Theme) S() *Styles {
	t.once.Do(func() {
		base := lipgloss.NewStyle().Foreground(t.FgBase)
		t.styles = &Styles{
			Base:     base,
			Text:     base,
			Muted:    lipgloss.NewStyle().Foreground(t.FgMuted),
			Subtle:   lipgloss.NewStyle().Foreground(t.FgSubtle),
			Title:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
			Subtitle: lipgloss.NewStyle().Foreground(t.Secondary).Bold(true),
			Primary:  lipgloss.NewStyle().Foreground(t.Primary),
			Accent:   lipgloss.NewStyle().Foreground(t.Accent),
			Success:  lipgloss.NewStyle().Foreground(t.Success),
			Error:    lipgloss.NewStyle().Foreground(t.Error),
			Warning:  lipgloss.NewStyle().Foreground(t.Warning),
			Info:     lipgloss.NewStyle().Foreground(t.Info),
			Selected: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
			Banner: lipgloss.NewStyle().
				Foreground(t.Error).
				Background(Blend(t.BgBase, t.Error, 0.15)).
				Padding(0, 1),
		}
	})
	return t.styles
}

// Manager tracks the available themes and the current one.
type Manager struct {
	mu      sync.RWMutex
	themes  map[string]*Theme
	current *Theme
}

var (
	defaultManager *Manager
	managerOnce    sync.Once
)

// NewManager initializes the global theme manager with the default theme.
func NewManager() *Manager {
	managerOnce.Do(func() {
		def := NewDefaultTheme()
		defaultManager = &Manager{
			themes:  map[string]*Theme{def.Name: def},
			current: def,
		}
	})
	return defaultManager
}

// Register adds a theme.
func (m *Manager) Register(t *Theme) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themes[t.Name] = t
}

// SetTheme makes the named theme current. It reports whether it exists.
func (m *Manager) SetTheme(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.themes[name]
	if ok {
		m.current = t
	}
	return ok
}

// Current returns the current theme.
func (m *Manager) Current() *Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// CurrentTheme returns the current theme of the global manager.
func CurrentTheme() *Theme {
	return NewManager().Current()
}

// ParseHex parses "#rrggbb". Invalid input yields black.
func ParseHex(hex string) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// Blend mixes a toward b by t in [0,1], in Lab space.
func Blend(a, b color.Color, t float64) color.Color {
	ca, ok := colorful.MakeColor(a)
	if !ok {
		return b
	}
	cb, ok := colorful.MakeColor(b)
	if !ok {
		return a
	}
	return ca.BlendLab(cb, t).Clamped()
}

// ApplyForegroundGrad colors each line of text with a horizontal gradient
// from one color to another. Grapheme clusters are colored as a unit.
func ApplyForegroundGrad(text string, from, to color.Color) string {
	lines := strings.Split(text, "\n")
	width := 0
	for _, l := range lines {
		width = max(width, uniseg.GraphemeClusterCount(l))
	}
	if width == 0 {
		return text
	}

	ramp := make([]lipgloss.Style, width)
	for i := range ramp {
		t := 0.0
		if width > 1 {
			t = float64(i) / float64(width-1)
		}
		ramp[i] = lipgloss.NewStyle().Foreground(Blend(from, to, t))
	}

	var out strings.Builder
	for n, l := range lines {
		if n > 0 {
			out.WriteByte('\n')
		}
		g := uniseg.NewGraphemes(l)
		for i := 0; g.Next(); i++ {
			cluster := g.Str()
			if strings.TrimSpace(cluster) == "" {
				out.WriteString(cluster)
				continue
			}
			out.WriteString(ramp[i].Render(cluster))
		}
	}
	return out.String()
}
