package chat

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/archlens/internal/tui/styles"
)

// Input placeholders. The first message of a session is the repository
// link; later ones are questions about it.
const (
	PlaceholderLink     = "Enter GitHub repository link..."
	PlaceholderQuestion = "Enter your question..."
)

// Input is the chat input component.
type Input struct {
	textInput textinput.Model
	width     int
	enabled   bool
}

// NewInput creates a new input component.
func NewInput() *Input {
	ti := textinput.New()
	ti.Placeholder = PlaceholderLink
	ti.CharLimit = 2048
	// The page places the real terminal cursor.
	ti.SetVirtualCursor(false)
	ti.Focus()

	return &Input{
		textInput: ti,
		enabled:   true,
	}
}

// Init initializes the input.
func (i *Input) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input events.
func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	if !i.enabled {
		return i, nil
	}

	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

// View renders the input.
func (i *Input) View() string {
	t := styles.CurrentTheme()

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(0, 1).
		Width(i.width)

	if !i.enabled || !i.textInput.Focused() {
		inputStyle = inputStyle.BorderForeground(t.Border)
	}

	return inputStyle.Render(i.textInput.View())
}

// Height returns the rendered height including the border.
func (i *Input) Height() int {
	return 3
}

// SetWidth sets the input width.
func (i *Input) SetWidth(width int) {
	i.width = width
	i.textInput.SetWidth(max(1, width-6))
}

// SetInitialized switches the placeholder once a repository is loaded.
func (i *Input) SetInitialized(initialized bool) {
	if initialized {
		i.textInput.Placeholder = PlaceholderQuestion
	} else {
		i.textInput.Placeholder = PlaceholderLink
	}
}

// Placeholder returns the current placeholder.
func (i *Input) Placeholder() string {
	return i.textInput.Placeholder
}

// Value returns the current input value.
func (i *Input) Value() string {
	return i.textInput.Value()
}

// SetValue sets the input value.
func (i *Input) SetValue(value string) {
	i.textInput.SetValue(value)
}

// Clear clears the input.
func (i *Input) Clear() {
	i.textInput.SetValue("")
}

// Enable enables the input.
func (i *Input) Enable() {
	i.enabled = true
}

// Disable disables the input.
func (i *Input) Disable() {
	i.enabled = false
	i.textInput.Blur()
}

// IsEnabled returns whether the input is enabled.
func (i *Input) IsEnabled() bool {
	return i.enabled
}

// Focus focuses the input.
func (i *Input) Focus() tea.Cmd {
	if !i.enabled {
		return nil
	}
	return i.textInput.Focus()
}

// Blur removes focus from the input.
func (i *Input) Blur() {
	i.textInput.Blur()
}

// Focused reports whether the input has focus.
func (i *Input) Focused() bool {
	return i.textInput.Focused()
}

// Cursor returns the cursor for the input.
func (i *Input) Cursor() *tea.Cursor {
	return i.textInput.Cursor()
}
