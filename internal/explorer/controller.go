// Package explorer holds the chat session and diagram navigation state and
// turns user actions into backend requests.
//
// Every action is split in three steps so the UI loop never blocks:
// Begin* mutates state and returns a Pending request, Execute performs the
// backend call (safe to run in a goroutine), and Complete applies the result.
// Only the most recently issued request is ever applied.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/guilhermegouw/archlens/internal/analyze"
	"github.com/guilhermegouw/archlens/internal/debug"
	"github.com/guilhermegouw/archlens/internal/events"
	"github.com/guilhermegouw/archlens/internal/message"
	"github.com/guilhermegouw/archlens/internal/pubsub"
	"github.com/guilhermegouw/archlens/internal/session"
	"github.com/guilhermegouw/archlens/internal/svg"
)

var (
	// ErrInvalidDiagram is the cause of banners about rejected diagrams.
	ErrInvalidDiagram = errors.New("invalid diagram")
	// ErrNoSession is returned when an action needs a current session.
	ErrNoSession = errors.New("no current session")
)

// User-visible texts.
const (
	MsgNoResponse     = "No response received."
	MsgInvalidDiagram = "Invalid architecture diagram data. Please try a different repository link."
	MsgInvalidModule  = "Invalid module diagram data."
	MsgGenerateFailed = "Failed to generate architecture diagram. Please try another repository link."
	msgRequestFailed  = "Request failed: %v. Please check the backend is running."
	msgDrillFailed    = "Failed to drill down into %s: %v"
	msgBackFailed     = "Failed to return to overview: %v"
	msgModuleFallback = "Showing detailed view of %s module."
)

// Backend performs analysis requests.
type Backend interface {
	Analyze(ctx context.Context, req analyze.Request) (*analyze.Response, error)
}

// Kind is the action a Pending request belongs to.
type Kind string

const (
	KindSend  Kind = "send"
	KindDrill Kind = "drill"
	KindBack  Kind = "back"
)

// Pending is an issued request awaiting its result.
type Pending struct {
	Seq       uint64
	Kind      Kind
	SessionID string
	Module    string
	Initial   bool
	Request   analyze.Request

	// Navigation before the optimistic change, restored on failure.
	before Navigation
}

// Result is the outcome of Execute.
type Result struct {
	Response *analyze.Response
	Err      error
}

// workspace is the per-session repository state.
type workspace struct {
	link        string
	initialized bool
	nav         Navigation
	diagram     string
	errMsg      string
	cause       error
}

// Snapshot is a read-only view of the controller for rendering.
type Snapshot struct {
	SessionID   string
	Link        string
	Initialized bool
	Loading     bool
	Navigation  Navigation
	Diagram     string
	Error       string
	Cause       error
	Seq         uint64
}

// Controller coordinates sessions, navigation and backend requests.
type Controller struct {
	backend  Backend
	sessions *session.Service
	messages *message.Service
	diagrams *pubsub.Broker[events.DiagramEvent]

	mu         sync.Mutex
	seq        uint64
	inFlight   *Pending
	workspaces map[string]*workspace
}

// New creates a controller. diagrams may be nil.
func New(
	backend Backend,
	sessions *session.Service,
	messages *message.Service,
	diagrams *pubsub.Broker[events.DiagramEvent],
) *Controller {
	return &Controller{
		backend:    backend,
		sessions:   sessions,
		messages:   messages,
		diagrams:   diagrams,
		workspaces: make(map[string]*workspace),
	}
}

func (c *Controller) workspace(id string) *workspace {
	if id == "" {
		return &workspace{nav: Overview()}
	}
	ws, ok := c.workspaces[id]
	if !ok {
		ws = &workspace{nav: Overview()}
		c.workspaces[id] = ws
	}
	return ws
}

// fail records the banner on ws and announces it.
func (c *Controller) fail(sessionID string, ws *workspace, cause error, msg string) {
	ws.errMsg = msg
	ws.cause = cause
	debug.Event("explorer", "Error", fmt.Sprintf("session=%s %s", sessionID, msg))
	c.publish(events.DiagramEventFailed, sessionID, ws, msg)
}

func (ws *workspace) clearError() {
	ws.errMsg = ""
	ws.cause = nil
}

func (c *Controller) publish(typ events.DiagramEventType, sessionID string, ws *workspace, errText string) {
	if c.diagrams == nil {
		return
	}
	ev := events.NewDiagramEvent(typ, sessionID, c.seq, ws.nav.Path)
	ev.SVG = ws.diagram
	ev.Error = errText
	c.diagrams.Publish(ev)
}

// StartNewSession creates an empty session titled "New Session" and makes
// it current with a fresh overview.
func (c *Controller) StartNewSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.sessions.Create(ctx, session.DefaultTitle)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	ws := c.workspace(sess.ID)
	ws.clearError()
	c.publish(events.DiagramEventCleared, sess.ID, ws, "")
	debug.Event("explorer", "NewSession", sess.ID)
	return nil
}

// SwitchSession makes id current and clears the error banner.
func (c *Controller) SwitchSession(ctx context.Context, id string) error {
	if id == "" {
		return ErrNoSession
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.sessions.Switch(ctx, id); err != nil {
		return fmt.Errorf("switching session: %w", err)
	}
	ws := c.workspace(id)
	ws.clearError()
	if ws.diagram != "" {
		c.publish(events.DiagramEventUpdated, id, ws, "")
	} else {
		c.publish(events.DiagramEventCleared, id, ws, "")
	}
	return nil
}

// BeginSend appends the user message and prepares the backend request. It
// returns nil when input is blank or another request is in flight.
func (c *Controller) BeginSend(ctx context.Context, input string) (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.workspace(c.sessions.CurrentID()).clearError()
	if strings.TrimSpace(input) == "" || c.inFlight != nil {
		return nil, nil
	}

	sessionID := c.sessions.CurrentID()
	if sessionID == "" {
		sess, err := c.sessions.Create(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("creating session: %w", err)
		}
		sessionID = sess.ID
	}
	ws := c.workspace(sessionID)

	initial := !ws.initialized
	if initial {
		ws.link = input
	}

	user := &message.Message{SessionID: sessionID, Role: message.RoleUser, Content: input}
	if err := c.messages.Add(ctx, user); err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}
	_ = c.sessions.IncrementMessageCount(ctx, sessionID)

	history, err := c.messages.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	link := ws.link
	if link == "" {
		link = input
	}

	p := c.issue(KindSend, sessionID, ws)
	p.Initial = initial
	p.Request = analyze.Request{
		GitHubLink:   link,
		History:      message.History(history),
		ForceInitial: initial,
	}
	c.publish(events.DiagramEventRequested, sessionID, ws, "")
	return p, nil
}

// BeginDrillDown descends into module. It returns nil without a stored
// repository link or while another request is in flight.
func (c *Controller) BeginDrillDown(module string) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	sessionID := c.sessions.CurrentID()
	ws := c.workspace(sessionID)
	if ws.link == "" || c.inFlight != nil || module == "" {
		return nil
	}

	ws.clearError()
	p := c.issue(KindDrill, sessionID, ws)
	p.Module = module
	ws.nav.Push(module)
	p.Request = analyze.Request{
		GitHubLink:      ws.link,
		History:         []analyze.HistoryMessage{},
		DrillDownModule: module,
		CurrentPath:     ws.nav.Snapshot().Path,
	}
	c.publish(events.DiagramEventNavigated, sessionID, ws, "")
	return p
}

// BeginBackToOverview resets navigation and requests a fresh overview. It
// has the same guards as BeginDrillDown.
func (c *Controller) BeginBackToOverview() *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	sessionID := c.sessions.CurrentID()
	ws := c.workspace(sessionID)
	if ws.link == "" || c.inFlight != nil {
		return nil
	}

	ws.clearError()
	p := c.issue(KindBack, sessionID, ws)
	ws.nav.Reset()
	p.Request = analyze.Request{
		GitHubLink:   ws.link,
		History:      []analyze.HistoryMessage{},
		ForceInitial: true,
		CurrentPath:  []string{},
	}
	c.publish(events.DiagramEventNavigated, sessionID, ws, "")
	return p
}

func (c *Controller) issue(kind Kind, sessionID string, ws *workspace) *Pending {
	c.seq++
	p := &Pending{
		Seq:       c.seq,
		Kind:      kind,
		SessionID: sessionID,
		before:    ws.nav.Snapshot(),
	}
	c.inFlight = p
	debug.Event("explorer", "Issue", fmt.Sprintf("seq=%d kind=%s session=%s", p.Seq, kind, sessionID))
	return p
}

// Execute performs the backend call for p. It does not touch controller
// state.
func (c *Controller) Execute(ctx context.Context, p *Pending) Result {
	resp, err := c.backend.Analyze(ctx, p.Request)
	return Result{Response: resp, Err: err}
}

// Complete applies the result of p. Results of superseded or abandoned
// requests are dropped and Complete reports false.
func (c *Controller) Complete(ctx context.Context, p *Pending, r Result) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p == nil || p.Seq != c.seq {
		if p != nil {
			debug.Event("explorer", "Stale", fmt.Sprintf("seq=%d latest=%d", p.Seq, c.seq))
		}
		return false, nil
	}
	c.inFlight = nil

	ws := c.workspace(p.SessionID)
	resp := r.Response
	if r.Err == nil && resp == nil {
		resp = &analyze.Response{}
	}

	switch p.Kind {
	case KindSend:
		return true, c.completeSend(ctx, p, ws, resp, r.Err)
	case KindDrill:
		return true, c.completeDrill(ctx, p, ws, resp, r.Err)
	case KindBack:
		c.completeBack(p, ws, resp, r.Err)
	}
	return true, nil
}

func (c *Controller) completeSend(ctx context.Context, p *Pending, ws *workspace, resp *analyze.Response, err error) error {
	if err != nil {
		c.fail(p.SessionID, ws, err, fmt.Sprintf(msgRequestFailed, err))
		return nil
	}

	switch {
	case strings.TrimSpace(resp.SVG) != "":
		if svg.IsValid(resp.SVG) {
			ws.diagram = resp.SVG
			ws.initialized = true
			c.publish(events.DiagramEventUpdated, p.SessionID, ws, "")
		} else {
			c.fail(p.SessionID, ws, ErrInvalidDiagram, MsgInvalidDiagram)
		}
	case p.Initial:
		c.fail(p.SessionID, ws, ErrInvalidDiagram, MsgGenerateFailed)
	}

	text := resp.Text
	if text == "" {
		text = MsgNoResponse
	}
	return c.appendAssistant(ctx, p.SessionID, text, resp.SVG)
}

func (c *Controller) completeDrill(ctx context.Context, p *Pending, ws *workspace, resp *analyze.Response, err error) error {
	if err != nil {
		ws.nav.Restore(p.before)
		c.fail(p.SessionID, ws, err, fmt.Sprintf(msgDrillFailed, p.Module, err))
		return nil
	}

	if strings.TrimSpace(resp.SVG) != "" {
		if svg.IsValid(resp.SVG) {
			ws.diagram = resp.SVG
			c.publish(events.DiagramEventUpdated, p.SessionID, ws, "")
		} else {
			c.fail(p.SessionID, ws, ErrInvalidDiagram, MsgInvalidModule)
		}
	}

	text := resp.Text
	if text == "" {
		text = fmt.Sprintf(msgModuleFallback, p.Module)
	}
	return c.appendAssistant(ctx, p.SessionID, text, resp.SVG)
}

func (c *Controller) completeBack(p *Pending, ws *workspace, resp *analyze.Response, err error) {
	if err != nil {
		c.fail(p.SessionID, ws, err, fmt.Sprintf(msgBackFailed, err))
		return
	}
	if strings.TrimSpace(resp.SVG) != "" && svg.IsValid(resp.SVG) {
		ws.diagram = resp.SVG
		c.publish(events.DiagramEventUpdated, p.SessionID, ws, "")
	}
}

func (c *Controller) appendAssistant(ctx context.Context, sessionID, text, diagram string) error {
	if sessionID == "" {
		return nil
	}
	msg := &message.Message{
		SessionID: sessionID,
		Role:      message.RoleAssistant,
		Content:   text,
		SVG:       diagram,
	}
	if err := c.messages.Add(ctx, msg); err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	_ = c.sessions.IncrementMessageCount(ctx, sessionID)
	return nil
}

// Abandon gives up on the in-flight request. Its result will be dropped on
// arrival and any optimistic navigation change is undone.
func (c *Controller) Abandon() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.inFlight
	if p == nil {
		return false
	}
	c.seq++
	c.inFlight = nil

	ws := c.workspace(p.SessionID)
	if p.Kind != KindSend {
		ws.nav.Restore(p.before)
		c.publish(events.DiagramEventNavigated, p.SessionID, ws, "")
	}
	debug.Event("explorer", "Abandon", fmt.Sprintf("seq=%d", p.Seq))
	return true
}

// DismissError clears the error banner of the current session.
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workspace(c.sessions.CurrentID()).clearError()
}

// Loading reports whether a request is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight != nil
}

// Snapshot returns the state of the current session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.sessions.CurrentID()
	ws := c.workspace(id)
	return Snapshot{
		SessionID:   id,
		Link:        ws.link,
		Initialized: ws.initialized,
		Loading:     c.inFlight != nil,
		Navigation:  ws.nav.Snapshot(),
		Diagram:     ws.diagram,
		Error:       ws.errMsg,
		Cause:       ws.cause,
		Seq:         c.seq,
	}
}

// Messages returns the messages of the current session.
func (c *Controller) Messages(ctx context.Context) ([]*message.Message, error) {
	id := c.sessions.CurrentID()
	if id == "" {
		return nil, nil
	}
	return c.messages.List(ctx, id)
}

// Sessions returns every session.
func (c *Controller) Sessions(ctx context.Context) ([]*session.Session, error) {
	return c.sessions.List(ctx)
}

// Send runs a send action to completion.
func (c *Controller) Send(ctx context.Context, input string) error {
	p, err := c.BeginSend(ctx, input)
	if err != nil || p == nil {
		return err
	}
	_, err = c.Complete(ctx, p, c.Execute(ctx, p))
	return err
}

// DrillDown runs a drill-down action to completion.
func (c *Controller) DrillDown(ctx context.Context, module string) error {
	p := c.BeginDrillDown(module)
	if p == nil {
		return nil
	}
	_, err := c.Complete(ctx, p, c.Execute(ctx, p))
	return err
}

// BackToOverview runs a back-to-overview action to completion.
func (c *Controller) BackToOverview(ctx context.Context) error {
	p := c.BeginBackToOverview()
	if p == nil {
		return nil
	}
	_, err := c.Complete(ctx, p, c.Execute(ctx, p))
	return err
}
