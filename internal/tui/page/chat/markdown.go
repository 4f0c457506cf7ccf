package chat

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"github.com/guilhermegouw/archlens/internal/cache"
	"github.com/guilhermegouw/archlens/internal/tui/styles"
)

const (
	maxRenderers = 4
	maxRendered  = 256
)

type renderKey struct {
	width   int
	content string
}

// MarkdownRenderer renders assistant answers. Glamour renderers are cached
// per wrap width and output per width and content, so redrawing the
// message list does not re-render old answers.
type MarkdownRenderer struct {
	renderers *cache.LRU[int, *glamour.TermRenderer]
	rendered  *cache.LRU[renderKey, string]
}

// NewMarkdownRenderer creates a new markdown renderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		renderers: cache.New[int, *glamour.TermRenderer](maxRenderers),
		rendered:  cache.New[renderKey, string](maxRendered),
	}
}

// Render renders content for width columns. On failure the plain content
// is returned along with the error.
func (m *MarkdownRenderer) Render(content string, width int) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}

	width = max(10, width)
	key := renderKey{width: width, content: content}
	if out, ok := m.rendered.Get(key); ok {
		return out, nil
	}

	r, err := m.renderer(width)
	if err != nil {
		return content, err
	}
	out, err := r.Render(content)
	if err != nil {
		return content, err
	}
	out = strings.Trim(out, "\n")
	m.rendered.Put(key, out)
	return out, nil
}

// Cached reports how many widths have a renderer.
func (m *MarkdownRenderer) Cached() int {
	return m.renderers.Len()
}

func (m *MarkdownRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	if r, ok := m.renderers.Get(width); ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(markdownStyle(styles.CurrentTheme())),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.TrueColor),
	)
	if err != nil {
		return nil, err
	}
	m.renderers.Put(width, r)
	return r, nil
}

// markdownStyle adapts the glamour base style to the theme palette.
func markdownStyle(t *styles.Theme) ansi.StyleConfig {
	style := glamourstyles.DarkStyleConfig
	if !t.IsDark {
		style = glamourstyles.LightStyleConfig
	}
	style.Document.Margin = uintPtr(0)

	heading := hex(t.Primary)
	for _, h := range []*ansi.StyleBlock{&style.H1, &style.H2, &style.H3, &style.H4, &style.H5, &style.H6} {
		h.Prefix = ""
		h.Suffix = ""
		h.Color = &heading
		h.BackgroundColor = nil
		h.Bold = boolPtr(true)
	}
	style.H1.Color = strPtr(hex(t.Accent))

	style.Code.Color = strPtr(hex(t.Secondary))
	style.Code.BackgroundColor = nil
	if style.CodeBlock.Chroma != nil {
		// Copy so the shared base config is left untouched.
		chroma := *style.CodeBlock.Chroma
		chroma.Text.Color = strPtr(hex(t.FgBase))
		chroma.Keyword.Color = strPtr(hex(t.Primary))
		chroma.NameFunction.Color = strPtr(hex(t.Accent))
		chroma.Comment.Color = strPtr(hex(t.FgMuted))
		style.CodeBlock.Chroma = &chroma
	}

	style.Link.Color = strPtr(hex(t.Primary))
	style.LinkText.Color = strPtr(hex(t.Secondary))
	style.BlockQuote.Color = strPtr(hex(t.FgMuted))
	style.HorizontalRule.Color = strPtr(hex(t.FgSubtle))
	return style
}

func hex(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#ffffff"
	}
	return cf.Hex()
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool     { return &b }
func uintPtr(u uint) *uint     { return &u }
