package chat

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/archlens/internal/debug"
	"github.com/guilhermegouw/archlens/internal/message"
	"github.com/guilhermegouw/archlens/internal/tui/styles"
)

// wheelStep is how many lines one wheel notch scrolls.
const wheelStep = 3

// MessageList displays the conversation of the current session.
type MessageList struct {
	messages []*message.Message
	markdown *MarkdownRenderer
	viewport viewport.Model
	width    int
	height   int
}

// NewMessageList creates a new message list component.
func NewMessageList() *MessageList {
	return &MessageList{
		markdown: NewMarkdownRenderer(),
		viewport: viewport.New(),
	}
}

// SetMessages replaces the displayed messages and scrolls to the newest.
func (m *MessageList) SetMessages(messages []*message.Message) {
	m.messages = messages
	m.refresh()
	m.viewport.GotoBottom()
}

// Messages returns the displayed messages.
func (m *MessageList) Messages() []*message.Message {
	return m.messages
}

// SetSize sets the component size.
func (m *MessageList) SetSize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.width = width
	m.height = height
	m.viewport.SetWidth(width)
	m.viewport.SetHeight(height)
	m.refresh()
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// ScrollUp scrolls the list up by n lines.
func (m *MessageList) ScrollUp(n int) {
	m.viewport.ScrollUp(n)
}

// ScrollDown scrolls the list down by n lines.
func (m *MessageList) ScrollDown(n int) {
	m.viewport.ScrollDown(n)
}

// AtBottom reports whether the newest message is visible.
func (m *MessageList) AtBottom() bool {
	return m.viewport.AtBottom()
}

// Update handles scrolling input.
func (m *MessageList) Update(msg tea.Msg) (*MessageList, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseWheelMsg:
		switch msg.Button {
		case tea.MouseWheelUp:
			m.ScrollUp(wheelStep)
		case tea.MouseWheelDown:
			m.ScrollDown(wheelStep)
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			m.viewport.PageUp()
		case "pgdown":
			m.viewport.PageDown()
		}
	}
	return m, nil
}

func (m *MessageList) refresh() {
	if m.width <= 0 {
		return
	}
	rendered := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		rendered = append(rendered, m.renderMessage(msg))
	}
	m.viewport.SetContent(strings.Join(rendered, "\n\n"))
}

// View renders the message list.
func (m *MessageList) View() string {
	t := styles.CurrentTheme()

	if len(m.messages) == 0 {
		empty := t.S().Muted.Render("No messages yet.")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, empty)
	}
	return m.viewport.View()
}

func (m *MessageList) renderMessage(msg *message.Message) string {
	t := styles.CurrentTheme()
	width := max(10, m.width-2)

	switch msg.Role {
	case message.RoleUser:
		header := t.S().Text.Bold(true).Render("You")
		body := t.S().Text.Width(width).Render(msg.Content)
		return lipgloss.JoinVertical(lipgloss.Left, header, body)

	case message.RoleAssistant:
		parts := []string{t.S().Primary.Bold(true).Render("archlens")}
		if msg.Content != "" {
			body, err := m.markdown.Render(msg.Content, width)
			if err != nil {
				debug.Error("chat", err, "rendering markdown")
			}
			parts = append(parts, body)
		}
		if msg.HasDiagram() {
			parts = append(parts, t.S().Accent.Render(fmt.Sprintf("◇ diagram (%d characters)", len(msg.SVG))))
		}
		return lipgloss.JoinVertical(lipgloss.Left, parts...)

	default:
		return t.S().Muted.Render(msg.Content)
	}
}
