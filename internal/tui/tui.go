// Package tui provides the terminal user interface for archlens.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/guilhermegouw/archlens/internal/bridge"
	"github.com/guilhermegouw/archlens/internal/debug"
	"github.com/guilhermegouw/archlens/internal/pubsub"
	"github.com/guilhermegouw/archlens/internal/tui/page/chat"
	"github.com/guilhermegouw/archlens/internal/tui/styles"
)

// ErrNoTerminal is returned when stdin is not a TTY.
var ErrNoTerminal = errors.New("archlens requires an interactive terminal: stdin/stdout must be connected to a TTY")

// Model is the root TUI model.
type Model struct {
	chatPage *chat.Model
	width    int
	height   int
	ready    bool
}

// New creates the root model around the chat page.
func New(page *chat.Model) *Model {
	return &Model{chatPage: page}
}

// Init initializes the TUI.
func (m *Model) Init() tea.Cmd {
	return m.chatPage.Init()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		debug.Event("tui", "WindowSize", fmt.Sprintf("width=%d height=%d", msg.Width, msg.Height))
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.chatPage.SetSize(m.width, m.height)
		return m, nil
	case tea.MouseWheelMsg:
		debug.Event("tui", "MouseWheel", fmt.Sprintf("button=%v x=%d y=%d", msg.Button, msg.X, msg.Y))
	}

	_, cmd := m.chatPage.Update(msg)
	return m, cmd
}

// View renders the TUI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	if !m.ready {
		view.Content = "Loading..."
		return view
	}

	view.Content = m.chatPage.View()
	view.Cursor = m.chatPage.Cursor()
	return view
}

// Options configures Run.
type Options struct {
	Hub  *pubsub.Hub
	Chat chat.Deps
}

// Run starts the TUI program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrNoTerminal
	}

	styles.NewManager()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The bridge is created after the program, so the session hook is
	// wrapped to reach it.
	var tuiBridge *bridge.TUIBridge
	onSession := opts.Chat.OnSessionChange
	opts.Chat.OnSessionChange = func(id string) {
		if tuiBridge != nil {
			tuiBridge.SetSessionFilter(id)
		}
		if onSession != nil {
			onSession(id)
		}
	}

	model := New(chat.New(ctx, opts.Chat))
	// In Bubble Tea v2, AltScreen and MouseMode are set in View().
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if opts.Hub != nil {
		tuiBridge = bridge.NewTUIBridge(opts.Hub, p)
		tuiBridge.Start(ctx)
		defer tuiBridge.Stop()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
