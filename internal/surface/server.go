// Package surface serves diagrams to a local browser viewer. Blob handles are
// exposed over loopback HTTP, the viewer page embeds them, and a websocket
// carries zoom and reload pushes to the page and load failures, module
// clicks and wheel gestures back to the application.
package surface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/guilhermegouw/archlens/internal/blob"
	"github.com/guilhermegouw/archlens/internal/debug"
	"github.com/guilhermegouw/archlens/internal/events"
	"github.com/guilhermegouw/archlens/internal/pubsub"
)

// DefaultAddr binds an ephemeral loopback port.
const DefaultAddr = "127.0.0.1:0"

const writeTimeout = 2 * time.Second

// Server is the viewer surface.
type Server struct { //nolint:govet // fieldalignment: preserving logical field order
	blobs  *blob.Manager
	broker *pubsub.Broker[events.SurfaceEvent]
	opener Opener
	addr   string
	title  string

	router  chi.Router
	httpSrv *http.Server

	mu       sync.Mutex
	listener net.Listener
	baseURL  string
	clients  map[*client]struct{}
	// Last zoom pushed, replayed to pages that connect for the same handle.
	zoomID string
	zoom   float64
}

type client struct {
	handleID string
	mode     string
	conn     *websocket.Conn
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithOpener sets how viewer pages are opened.
func WithOpener(o Opener) Option {
	return func(s *Server) {
		s.opener = o
	}
}

// WithTitle sets the viewer page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// New creates a surface serving handles from blobs and publishing viewer
// events on broker.
func New(blobs *blob.Manager, broker *pubsub.Broker[events.SurfaceEvent], opts ...Option) *Server {
	s := &Server{
		blobs:   blobs,
		broker:  broker,
		opener:  SystemOpener(""),
		addr:    DefaultAddr,
		title:   "Architecture Diagram",
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.setupRouter()
	s.httpSrv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/blob/{id}", s.handleBlob)
	r.Get("/view/{id}", s.handleView)
	r.Get("/ws/{id}", s.handleWS)
	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetTitle changes the title used by viewer pages served afterwards.
func (s *Server) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// Listen binds the address and points blob URLs at it.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.baseURL = "http://" + ln.Addr().String()
	s.blobs.SetBaseURL(s.baseURL)
	debug.Event("surface", "Listen", s.baseURL)
	return nil
}

// BaseURL returns the root URL, empty before Listen.
func (s *Server) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL
}

// Run serves until ctx is done, then closes viewer connections and shuts
// the HTTP server down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpSrv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving viewer: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.closeClients()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ViewURL is the viewer page for handle id in mode.
func (s *Server) ViewURL(id, mode string) string {
	return fmt.Sprintf("%s/view/%s?mode=%s", s.BaseURL(), id, mode)
}

// Show displays h in mode. Connected viewers are redirected to the handle;
// without one a new viewer page is opened.
func (s *Server) Show(ctx context.Context, h *blob.Handle, mode string) error {
	if h == nil {
		return blob.ErrNoContent
	}
	if s.BaseURL() == "" {
		return ErrNotListening
	}
	if !validMode(mode) {
		return fmt.Errorf("unknown mode %q", mode)
	}

	if n := s.broadcast(nil, outbound{Type: "reload", ID: h.ID, Mode: mode}); n > 0 {
		debug.Event("surface", "Reload", fmt.Sprintf("id=%s mode=%s viewers=%d", h.ID, mode, n))
		return nil
	}

	url := s.ViewURL(h.ID, mode)
	debug.Event("surface", "Open", url)
	if err := s.opener(ctx, url); err != nil {
		return fmt.Errorf("opening viewer: %w", err)
	}
	return nil
}

// SetZoom pushes a zoom factor to viewers showing h. Pages that load h
// later receive it when they connect.
func (s *Server) SetZoom(h *blob.Handle, zoom float64) {
	if h == nil {
		return
	}
	s.mu.Lock()
	s.zoomID, s.zoom = h.ID, zoom
	s.mu.Unlock()
	s.broadcast(func(c *client) bool { return c.handleID == h.ID }, outbound{Type: "zoom", Zoom: zoom})
}

// Viewers returns the number of connected viewer pages.
func (s *Server) Viewers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ErrNotListening is returned by Show before Listen.
var ErrNotListening = errors.New("viewer surface is not listening")

type outbound struct {
	Type string  `json:"type"`
	ID   string  `json:"id,omitempty"`
	Mode string  `json:"mode,omitempty"`
	Zoom float64 `json:"zoom,omitempty"`
}

type inbound struct {
	Type    string `json:"type"`
	Module  string `json:"module,omitempty"`
	Notches int    `json:"notches,omitempty"`
	Ctrl    bool   `json:"ctrl,omitempty"`
}

func (s *Server) broadcast(match func(*client) bool, msg outbound) int {
	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		if match == nil || match(c) {
			targets = append(targets, c)
		}
	}
	s.mu.Unlock()

	sent := 0
	for _, c := range targets {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := wsjson.Write(ctx, c.conn, msg)
		cancel()
		if err != nil {
			debug.Error("surface", err, "push "+msg.Type)
			continue
		}
		sent++
	}
	return sent
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		_ = c.conn.Close(websocket.StatusGoingAway, "shutting down")
	}
}

func (s *Server) publish(ev events.SurfaceEvent) {
	if s.broker == nil {
		return
	}
	ev.Timestamp = time.Now()
	s.broker.Publish(ev)
}

func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	data, contentType, ok := s.blobs.Lookup(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "object"
	}
	if !validMode(mode) {
		http.Error(w, "unknown mode", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	title := s.title
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(viewerPage(id, mode, title)))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		debug.Error("surface", err, "websocket accept")
		return
	}
	defer conn.CloseNow() //nolint:errcheck // Best effort.

	c := &client{
		handleID: chi.URLParam(r, "id"),
		mode:     r.URL.Query().Get("mode"),
		conn:     conn,
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	zoom := 0.0
	if s.zoomID == c.handleID {
		zoom = s.zoom
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		s.publish(events.SurfaceEvent{Type: events.SurfaceEventDisconnected, HandleID: c.handleID, Mode: c.mode})
	}()

	ctx := r.Context()
	if zoom > 0 {
		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := wsjson.Write(writeCtx, conn, outbound{Type: "zoom", Zoom: zoom})
		cancel()
		if err != nil {
			debug.Error("surface", err, "replay zoom")
		}
	}
	s.publish(events.SurfaceEvent{Type: events.SurfaceEventConnected, HandleID: c.handleID, Mode: c.mode})

	for {
		var msg inbound
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}
		s.dispatch(c, msg)
	}
}

func (s *Server) dispatch(c *client, msg inbound) {
	ev := events.SurfaceEvent{HandleID: c.handleID, Mode: c.mode}
	switch msg.Type {
	case "error":
		ev.Type = events.SurfaceEventLoadFailed
	case "drill":
		if msg.Module == "" {
			return
		}
		ev.Type = events.SurfaceEventDrill
		ev.Module = msg.Module
	case "wheel":
		ev.Type = events.SurfaceEventWheel
		ev.Notches = msg.Notches
		ev.Ctrl = msg.Ctrl
	default:
		debug.Event("surface", "UnknownMessage", msg.Type)
		return
	}
	debug.Event("surface", string(ev.Type), fmt.Sprintf("id=%s mode=%s module=%s", ev.HandleID, ev.Mode, ev.Module))
	s.publish(ev)
}

func validMode(mode string) bool {
	return mode == "object" || mode == "image"
}
