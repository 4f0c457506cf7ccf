package tui

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/guilhermegouw/archlens/internal/blob"
	"github.com/guilhermegouw/archlens/internal/db"
	"github.com/guilhermegouw/archlens/internal/explorer"
	"github.com/guilhermegouw/archlens/internal/message"
	"github.com/guilhermegouw/archlens/internal/pubsub"
	"github.com/guilhermegouw/archlens/internal/render"
	"github.com/guilhermegouw/archlens/internal/session"
	"github.com/guilhermegouw/archlens/internal/tui/page/chat"
)

func newModel(t *testing.T) *Model {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	hub := pubsub.NewHub()
	t.Cleanup(func() {
		hub.Shutdown()
		_ = d.Close()
	})

	sessions := session.NewService(session.NewSQLiteStore(d.Conn()), hub.Session)
	messages := message.NewService(message.NewSQLiteStore(d.Conn()), hub.Session)
	page := chat.New(context.Background(), chat.Deps{
		// Requests are never executed here.
		Controller: explorer.New(nil, sessions, messages, hub.Diagram),
		Renderer:   render.New(blob.NewManager(""), render.Options{ArchitectureDiagram: true}),
		Backend:    "http://localhost:8000",
	})
	return New(page)
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := newModel(t)
	v := m.View()
	if v.Content != "Loading..." {
		t.Errorf("Content = %q, want Loading...", v.Content)
	}
	if !v.AltScreen || v.MouseMode != tea.MouseModeCellMotion {
		t.Errorf("AltScreen = %v, MouseMode = %v", v.AltScreen, v.MouseMode)
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := newModel(t)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if !m.ready || m.width != 100 || m.height != 30 {
		t.Fatalf("size not applied: ready=%v %dx%d", m.ready, m.width, m.height)
	}

	v := m.View()
	if v.Content == "" || v.Content == "Loading..." {
		t.Errorf("Content = %q, want the chat page", v.Content)
	}
	if v.Cursor == nil {
		t.Error("Cursor = nil, want the input cursor")
	}
}
