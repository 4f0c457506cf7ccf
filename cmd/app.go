package cmd

import (
	"fmt"
	"os"

	"github.com/guilhermegouw/archlens/internal/analyze"
	"github.com/guilhermegouw/archlens/internal/blob"
	"github.com/guilhermegouw/archlens/internal/config"
	"github.com/guilhermegouw/archlens/internal/db"
	"github.com/guilhermegouw/archlens/internal/debug"
	"github.com/guilhermegouw/archlens/internal/explorer"
	"github.com/guilhermegouw/archlens/internal/message"
	"github.com/guilhermegouw/archlens/internal/pubsub"
	"github.com/guilhermegouw/archlens/internal/render"
	"github.com/guilhermegouw/archlens/internal/session"
	"github.com/guilhermegouw/archlens/internal/surface"
	"github.com/guilhermegouw/archlens/internal/svg"
	"github.com/guilhermegouw/archlens/internal/tui"
	"github.com/guilhermegouw/archlens/internal/tui/page/chat"
)

// app holds the services one TUI run needs.
type app struct {
	db       *db.DB
	hub      *pubsub.Hub
	client   *analyze.Client
	blobs    *blob.Manager
	surface  *surface.Server
	renderer *render.Renderer
	ctrl     *explorer.Controller
}

// newApp wires the services. Without a viewer, or when the viewer cannot
// listen, diagrams are shown inline.
func newApp(cfg *config.Config, viewer bool) (*app, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}

	store, err := db.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	a := &app{
		db:     store,
		hub:    pubsub.NewHub(),
		client: analyze.NewClient(cfg.Backend.URL, analyze.WithTimeout(timeout)),
		blobs:  blob.NewManager(""),
	}

	var surf render.Surface
	if viewer {
		srv := surface.New(a.blobs, a.hub.Surface,
			surface.WithAddr(cfg.Viewer.Addr),
			surface.WithTitle("archlens"),
			surface.WithOpener(surface.SystemOpener(cfg.Viewer.OpenCommand)),
		)
		if err := srv.Listen(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: viewer disabled: %v\n", err)
			debug.Error("cmd", err, "starting viewer")
		} else {
			a.surface = srv
			surf = srv
		}
	}

	sessions := session.NewService(session.NewSQLiteStore(store.Conn()), a.hub.Session)
	messages := message.NewService(message.NewSQLiteStore(store.Conn()), a.hub.Session)
	a.ctrl = explorer.New(a.client, sessions, messages, a.hub.Diagram)
	a.renderer = render.New(a.blobs, render.Options{
		ArchitectureDiagram: true,
		Surface:             surf,
	})
	return a, nil
}

func (a *app) tuiOptions() tui.Options {
	deps := chat.Deps{
		Controller: a.ctrl,
		Renderer:   a.renderer,
		Backend:    a.client.BaseURL(),
	}
	if a.surface != nil {
		deps.Viewer = a.surface.BaseURL()
		deps.OnRepository = func(link string) {
			a.surface.SetTitle(svg.RepoName(link))
		}
	}
	return tui.Options{Hub: a.hub, Chat: deps}
}

// Close releases the diagram and shuts the services down.
func (a *app) Close() {
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.surface != nil {
		debug.Event("cmd", "Close", fmt.Sprintf("viewers=%d", a.surface.Viewers()))
	}
	debug.Event("cmd", "Brokers", a.hub.DebugString())
	a.hub.Shutdown()
	if err := a.db.Close(); err != nil {
		debug.Error("cmd", err, "closing session store")
	}
	live, created := a.blobs.Stats()
	debug.Event("cmd", "Close", fmt.Sprintf("blobs live=%d created=%d", live, created))
}
