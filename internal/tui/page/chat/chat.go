// Package chat provides the main archlens page: the conversation, the
// diagram pane and the session sidebar.
package chat

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/guilhermegouw/archlens/internal/bridge"
	"github.com/guilhermegouw/archlens/internal/debug"
	"github.com/guilhermegouw/archlens/internal/events"
	"github.com/guilhermegouw/archlens/internal/explorer"
	"github.com/guilhermegouw/archlens/internal/pubsub"
	"github.com/guilhermegouw/archlens/internal/render"
	"github.com/guilhermegouw/archlens/internal/tui/components/panel"
	"github.com/guilhermegouw/archlens/internal/tui/components/sessions"
	"github.com/guilhermegouw/archlens/internal/tui/components/welcome"
	"github.com/guilhermegouw/archlens/internal/tui/styles"
	"github.com/guilhermegouw/archlens/internal/tui/util"
)

// Layout constants.
const (
	sidebarWidth     = 32
	sidebarMinWidth  = 100
	diagramMinHeight = 8
)

// responseMsg carries the backend result of a pending request.
type responseMsg struct {
	pending *explorer.Pending
	result  explorer.Result
}

// focus identifies the pane receiving keys.
type focus int

const (
	focusInput focus = iota
	focusSessions
	focusModules
)

// Deps are the services the page drives.
type Deps struct {
	Controller *explorer.Controller
	Renderer   *render.Renderer
	// Backend is shown on the welcome screen.
	Backend string
	// Viewer is the address of the local viewer, if one runs.
	Viewer string
	// OnSessionChange is called when the current session changes.
	OnSessionChange func(id string)
	// OnRepository is called when the current repository link changes.
	OnRepository func(link string)
	// Clipboard writes text to the system clipboard.
	Clipboard func(text string) error
}

// Model is the chat page model.
type Model struct { //nolint:govet // fieldalignment: preserving logical field order
	ctx      context.Context
	ctrl     *explorer.Controller
	renderer *render.Renderer
	deps     Deps

	messages    *MessageList
	activity    *ActivityPanel
	modules     *ModulePanel
	sessionList *sessions.SessionList
	hints       *sessions.HintBar
	welcome     *welcome.Welcome
	diagram     *DiagramPane
	input       *Input
	status      *StatusBar

	sessionsPanel *panel.Panel
	modulesPanel  *panel.Panel

	commandRegistry *CommandRegistry

	snapshot  explorer.Snapshot
	sessionID string
	link      string
	shown     string
	pending   *explorer.Pending
	drills    []string
	notice    string
	focus     focus
	width     int
	height    int
}

// New creates the chat page.
func New(ctx context.Context, deps Deps) *Model {
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}
	m := &Model{
		ctx:           ctx,
		ctrl:          deps.Controller,
		renderer:      deps.Renderer,
		deps:          deps,
		messages:      NewMessageList(),
		activity:      NewActivityPanel(),
		modules:       NewModulePanel(),
		sessionList:   sessions.NewSessionList(),
		hints:         sessions.NewHintBar(),
		welcome:       welcome.New(deps.Backend),
		diagram:       NewDiagramPane(),
		input:         NewInput(),
		status:        NewStatusBar(),
		sessionsPanel: panel.New(),
		modulesPanel:  panel.New(),
	}
	m.sessionsPanel.SetTitle("Sessions")
	m.modulesPanel.SetTitle("Modules")
	m.status.SetViewer(deps.Viewer)
	// Activations from the viewer are queued and issued from Update.
	m.renderer.SetDrillDown(func(module string) {
		m.drills = append(m.drills, module)
	})
	return m
}

// Init loads the current session.
func (m *Model) Init() tea.Cmd {
	m.sync()
	m.refreshMessages()
	m.refreshSessions()
	return m.input.Init()
}

// Update handles messages.
//
//nolint:gocyclo // Dispatches every message type the page reacts to.
func (m *Model) Update(msg tea.Msg) (util.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		debug.Event("chat", "KeyMsg", fmt.Sprintf("key=%q", msg.String()))
		return m.handleKey(msg)

	case tea.MouseWheelMsg:
		return m.handleWheel(msg)

	case SpinnerTickMsg:
		var cmd tea.Cmd
		m.activity, cmd = m.activity.Update(msg)
		return m, cmd

	case responseMsg:
		return m.handleResponse(msg)

	case bridge.DiagramEventMsg:
		return m.handleDiagramEvent(msg.Event)

	case bridge.SurfaceEventMsg:
		return m.handleSurfaceEvent(msg.Event)

	case bridge.SessionEventMsg:
		return m.handleSessionEvent(msg.Event)

	case sessions.SessionSelectedMsg:
		return m.switchSession(msg.SessionID)

	case sessions.NewSessionMsg:
		return m.newSession()

	case DrillRequestMsg:
		return m.startRequest(m.ctrl.BeginDrillDown(msg.Module), "Load a repository before exploring modules")

	case BackRequestMsg:
		return m.startRequest(m.ctrl.BeginBackToOverview(), "Load a repository before returning to the overview")

	case ZoomMsg:
		m.zoom(msg.Direction)
		return m, nil

	case RetryRenderMsg:
		m.renderer.Retry(m.ctx)
		m.refreshRender()
		return m, nil

	case CopyDiagramMsg:
		return m, m.copyDiagram()

	case HelpMsg:
		m.notice = msg.Text
		return m, nil

	case UsageMsg:
		m.notice = "Usage: " + msg.Usage
		return m, nil

	case UnknownCommandMsg:
		m.notice = fmt.Sprintf("Unknown command: /%s (try /help)", msg.Command)
		return m, nil

	case util.InfoMsg:
		m.notice = msg.Msg
		return m, nil

	case util.ErrorMsg:
		m.status.SetError(msg.Err.Error())
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (util.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.ctrl.Loading() {
			m.abandon()
			return m, nil
		}
		return m, tea.Quit

	case "esc":
		switch {
		case m.ctrl.Loading():
			m.abandon()
		case m.notice != "":
			m.notice = ""
		default:
			m.ctrl.DismissError()
			m.sync()
		}
		return m, nil

	case "tab":
		return m, m.cycleFocus(1)

	case "shift+tab":
		return m, m.cycleFocus(-1)

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.messages, cmd = m.messages.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusSessions:
		m.sessionList, cmd = m.sessionList.Update(msg)
	case focusModules:
		m.modules, cmd = m.modules.Update(msg)
	default:
		if msg.String() == "enter" {
			return m.submit()
		}
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleWheel(msg tea.MouseWheelMsg) (util.Model, tea.Cmd) {
	notches := 0
	switch msg.Button {
	case tea.MouseWheelUp:
		notches = 1
	case tea.MouseWheelDown:
		notches = -1
	}
	if m.renderer.Wheel(notches, msg.Mod.Contains(tea.ModCtrl)) {
		m.refreshRender()
		return m, nil
	}
	var cmd tea.Cmd
	m.messages, cmd = m.messages.Update(msg)
	return m, cmd
}

// submit runs a slash command or sends the input to the backend.
func (m *Model) submit() (util.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}
	m.notice = ""

	if cmd := m.parseCommand(value); cmd != nil {
		m.input.Clear()
		return m, cmd
	}
	if m.ctrl.Loading() {
		m.notice = "A request is already in progress (esc to abandon)"
		return m, nil
	}

	p, err := m.ctrl.BeginSend(m.ctx, value)
	if err != nil {
		debug.Error("chat", err, "begin send")
		m.status.SetError(err.Error())
		return m, nil
	}
	m.input.Clear()
	m.refreshMessages()
	m.refreshSessions()
	return m.startRequest(p, "")
}

// startRequest shows progress for p and runs it. A nil p shows refusal.
func (m *Model) startRequest(p *explorer.Pending, refusal string) (util.Model, tea.Cmd) {
	if p == nil {
		if m.ctrl.Loading() {
			refusal = "A request is already in progress (esc to abandon)"
		}
		m.notice = refusal
		return m, nil
	}

	m.pending = p
	label, detail := stepFor(p)
	m.activity.Add(Step{Label: label, Detail: detail})
	m.input.Disable()
	m.sync()

	debug.Event("chat", "Request", fmt.Sprintf("seq=%d kind=%s", p.Seq, p.Kind))
	return m, tea.Batch(m.activity.SetWorking(workingLabel(p)), m.execute(p))
}

func (m *Model) execute(p *explorer.Pending) tea.Cmd {
	ctx := m.ctx
	ctrl := m.ctrl
	return func() tea.Msg {
		return responseMsg{pending: p, result: ctrl.Execute(ctx, p)}
	}
}

func (m *Model) handleResponse(msg responseMsg) (util.Model, tea.Cmd) {
	applied, err := m.ctrl.Complete(m.ctx, msg.pending, msg.result)
	if !applied {
		debug.Event("chat", "StaleResponse", fmt.Sprintf("seq=%d", msg.pending.Seq))
		return m, nil
	}
	if err != nil {
		debug.Error("chat", err, "completing request")
	}

	label, _ := stepFor(msg.pending)
	m.activity.Finish(label, msg.result.Err != nil)
	if m.pending == msg.pending {
		m.pending = nil
	}
	m.activity.SetWorking("")
	m.input.Enable()

	m.sync()
	m.refreshMessages()
	m.refreshSessions()
	if err != nil {
		m.status.SetError(err.Error())
	}
	if m.focus == focusInput {
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *Model) abandon() {
	p := m.pending
	if !m.ctrl.Abandon() {
		return
	}
	if p != nil {
		label, _ := stepFor(p)
		m.activity.Finish(label, true)
	}
	m.pending = nil
	m.activity.SetWorking("")
	m.input.Enable()
	m.notice = "Request abandoned"
	m.sync()
}

func (m *Model) handleDiagramEvent(ev pubsub.Event[events.DiagramEvent]) (util.Model, tea.Cmd) {
	d := ev.Payload
	debug.Event("chat", "DiagramEvent", fmt.Sprintf("type=%s session=%s seq=%d", d.Type, d.SessionID, d.Seq))
	if d.SessionID != m.sessionID {
		return m, nil
	}
	m.sync()
	return m, nil
}

func (m *Model) handleSurfaceEvent(ev pubsub.Event[events.SurfaceEvent]) (util.Model, tea.Cmd) {
	s := ev.Payload
	debug.Event("chat", "SurfaceEvent", fmt.Sprintf("type=%s handle=%s", s.Type, s.HandleID))

	switch s.Type {
	case events.SurfaceEventLoadFailed:
		from := m.renderer.State().Strategy
		m.renderer.ReportFailure(m.ctx, s.HandleID)
		if to := m.renderer.State().Strategy; to != from {
			m.activity.Add(Step{Label: "Viewer", Detail: fmt.Sprintf("%s failed, using %s", from, to), Status: StepFailed})
		}
		m.refreshRender()

	case events.SurfaceEventWheel:
		if m.showing(s.HandleID) && m.renderer.Wheel(s.Notches, s.Ctrl) {
			m.refreshRender()
		}

	case events.SurfaceEventDrill:
		// A tab left open on an older diagram must not drill the current one.
		if !m.showing(s.HandleID) {
			debug.Event("chat", "StaleDrill", s.HandleID)
			return m, nil
		}
		m.renderer.DrillDown(s.Module)
		return m, m.flushDrills()

	case events.SurfaceEventConnected:
		m.status.SetInfo("viewer connected")

	case events.SurfaceEventDisconnected:
		m.status.SetInfo("")
	}
	return m, nil
}

// showing reports whether id is the handle currently displayed.
func (m *Model) showing(id string) bool {
	h := m.renderer.State().Handle
	return h != nil && h.ID == id
}

// flushDrills issues queued module activations. Only the last one counts.
func (m *Model) flushDrills() tea.Cmd {
	if len(m.drills) == 0 {
		return nil
	}
	module := m.drills[len(m.drills)-1]
	m.drills = m.drills[:0]
	return util.CmdHandler(DrillRequestMsg{Module: module})
}

func (m *Model) handleSessionEvent(ev pubsub.Event[events.SessionEvent]) (util.Model, tea.Cmd) {
	s := ev.Payload
	m.refreshSessions()
	if s.Type == events.SessionEventMessageAdded && s.SessionID == m.sessionID {
		m.refreshMessages()
	}
	return m, nil
}

func (m *Model) switchSession(id string) (util.Model, tea.Cmd) {
	if id == m.sessionID {
		return m, nil
	}
	if m.deps.OnSessionChange != nil {
		m.deps.OnSessionChange(id)
	}
	if err := m.ctrl.SwitchSession(m.ctx, id); err != nil {
		debug.Error("chat", err, "switching session")
		m.status.SetError(err.Error())
		return m, nil
	}
	m.sync()
	m.refreshMessages()
	m.refreshSessions()
	return m, m.setFocus(focusInput)
}

func (m *Model) newSession() (util.Model, tea.Cmd) {
	if err := m.ctrl.StartNewSession(m.ctx); err != nil {
		debug.Error("chat", err, "starting session")
		m.status.SetError(err.Error())
		return m, nil
	}
	m.sync()
	m.refreshMessages()
	m.refreshSessions()
	return m, m.setFocus(focusInput)
}

func (m *Model) zoom(direction string) {
	switch direction {
	case "in":
		m.renderer.ZoomIn()
	case "out":
		m.renderer.ZoomOut()
	default:
		m.renderer.ResetZoom()
	}
	m.refreshRender()
}

func (m *Model) copyDiagram() tea.Cmd {
	h := m.renderer.State().Handle
	if h == nil || h.URL == "" {
		m.notice = "No diagram to copy"
		return nil
	}
	if err := m.deps.Clipboard(h.URL); err != nil {
		debug.Error("chat", err, "copying to clipboard")
		return util.ReportError(fmt.Errorf("copying diagram link: %w", err))
	}
	return util.ReportInfo("Copied " + h.URL)
}

// sync pulls the controller snapshot and brings the renderer and widgets
// in line with it.
func (m *Model) sync() {
	snap := m.ctrl.Snapshot()
	m.snapshot = snap

	if snap.SessionID != m.sessionID {
		m.sessionID = snap.SessionID
		m.diagram.ResetScroll()
		if m.deps.OnSessionChange != nil {
			m.deps.OnSessionChange(snap.SessionID)
		}
	}
	if snap.Link != m.link {
		m.link = snap.Link
		if m.deps.OnRepository != nil {
			m.deps.OnRepository(snap.Link)
		}
	}

	if snap.Diagram != m.shown {
		m.shown = snap.Diagram
		m.diagram.ResetScroll()
		if snap.Diagram == "" {
			m.renderer.Close()
		} else {
			m.renderer.SetContent(m.ctx, snap.Diagram)
		}
	}

	m.input.SetInitialized(snap.Initialized)
	switch {
	case snap.Loading:
		m.status.SetStatus(StatusLoading)
	case snap.Error != "":
		m.status.SetError(snap.Error)
	default:
		m.status.SetStatus(StatusReady)
	}
	m.refreshRender()
}

func (m *Model) refreshRender() {
	m.modules.SetModules(m.renderer.Modules(), m.snapshot.Navigation.Path)
	m.status.SetRender(m.renderer.State(), m.shown != "")
}

func (m *Model) refreshMessages() {
	msgs, err := m.ctrl.Messages(m.ctx)
	if err != nil {
		debug.Error("chat", err, "loading messages")
		return
	}
	m.messages.SetMessages(msgs)
}

func (m *Model) refreshSessions() {
	list, err := m.ctrl.Sessions(m.ctx)
	if err != nil {
		debug.Error("chat", err, "loading sessions")
		return
	}
	m.sessionList.SetSessions(list, m.sessionID)
}

func (m *Model) hasSidebar() bool {
	return m.width >= sidebarMinWidth
}

func (m *Model) cycleFocus(dir int) tea.Cmd {
	order := []focus{focusInput}
	if m.hasSidebar() {
		order = append(order, focusSessions, focusModules)
	}
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + dir + len(order)) % len(order)
	return m.setFocus(order[idx])
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.sessionList.SetFocused(f == focusSessions)
	m.modules.SetFocused(f == focusModules)
	m.sessionsPanel.SetFocused(f == focusSessions)
	m.modulesPanel.SetFocused(f == focusModules)
	if f == focusInput {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m *Model) hintMode() sessions.HintMode {
	switch {
	case m.ctrl.Loading():
		return sessions.HintModeLoading
	case m.focus == focusSessions:
		return sessions.HintModeSessions
	case m.focus == focusModules:
		return sessions.HintModeModules
	default:
		return sessions.HintModeInput
	}
}

func (m *Model) showDiagram() bool {
	return m.shown != "" || (m.snapshot.Loading && m.snapshot.Initialized)
}

func (m *Model) showWelcome() bool {
	return !m.snapshot.Initialized && len(m.messages.Messages()) == 0
}

// View renders the chat page.
func (m *Model) View() string {
	t := styles.CurrentTheme()

	mainWidth := m.width
	if m.hasSidebar() {
		mainWidth = m.width - sidebarWidth
	}

	m.activity.SetWidth(mainWidth)
	m.input.SetWidth(mainWidth - 2)
	m.status.SetWidth(m.width)
	m.hints.SetWidth(m.width)
	m.hints.SetMode(m.hintMode())

	var below []string
	if m.activity.IsActive() {
		below = append(below, m.activity.View())
	}
	if m.snapshot.Error != "" {
		below = append(below, t.S().Banner.Width(mainWidth).Render("✕ "+m.snapshot.Error+"  (esc to dismiss)"))
	}
	if m.notice != "" {
		below = append(below, t.S().Muted.Width(mainWidth).Padding(0, 1).Render(m.notice))
	}
	below = append(below, m.input.View())
	bottom := lipgloss.JoinVertical(lipgloss.Left, below...)

	// Main column height excludes the status and hint bars.
	bodyHeight := max(1, m.height-2)
	upperHeight := max(1, bodyHeight-lipgloss.Height(bottom))

	var upper string
	switch {
	case m.showWelcome():
		m.welcome.SetSize(mainWidth, upperHeight)
		upper = m.welcome.View()
	case m.showDiagram():
		diagramHeight := max(diagramMinHeight, upperHeight*2/5)
		if diagramHeight >= upperHeight {
			diagramHeight = upperHeight
		}
		m.diagram.SetSize(mainWidth, diagramHeight)
		m.messages.SetSize(mainWidth, max(1, upperHeight-diagramHeight))
		upper = m.diagram.View(m.diagramInfo())
		if upperHeight > diagramHeight {
			upper = lipgloss.JoinVertical(lipgloss.Left, upper, m.messages.View())
		}
	default:
		m.messages.SetSize(mainWidth, upperHeight)
		upper = m.messages.View()
	}
	upper = lipgloss.NewStyle().Width(mainWidth).Height(upperHeight).MaxHeight(upperHeight).Render(upper)
	main := lipgloss.JoinVertical(lipgloss.Left, upper, bottom)

	if m.hasSidebar() {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(bodyHeight), main)
	}
	return lipgloss.JoinVertical(lipgloss.Left, main, m.status.View(), m.hints.View())
}

func (m *Model) sidebarView(height int) string {
	sessionsHeight := max(4, height/2)
	modulesHeight := max(3, height-sessionsHeight)

	m.sessionsPanel.SetSize(sidebarWidth, sessionsHeight)
	w, h := m.sessionsPanel.InnerSize()
	m.sessionList.SetSize(w, h)
	m.sessionsPanel.SetFooter(fmt.Sprintf("%d", m.sessionList.Len()))
	m.sessionsPanel.SetContent(m.sessionList.View())

	m.modulesPanel.SetSize(sidebarWidth, modulesHeight)
	_, h = m.modulesPanel.InnerSize()
	m.modules.SetHeight(h)
	m.modulesPanel.SetFooter(fmt.Sprintf("%d", len(m.modules.Modules())))
	m.modulesPanel.SetContent(m.modules.View())

	return lipgloss.JoinVertical(lipgloss.Left, m.sessionsPanel.View(), m.modulesPanel.View())
}

func (m *Model) diagramInfo() DiagramInfo {
	return DiagramInfo{
		State:      m.renderer.State(),
		Content:    m.renderer.Content(),
		Inline:     m.renderer.Inline(),
		Navigation: m.snapshot.Navigation,
		Loading:    m.snapshot.Loading,
	}
}

// SetSize sets the chat page size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if !m.hasSidebar() && m.focus != focusInput {
		m.setFocus(focusInput)
	}
}

// Cursor returns the input cursor in page coordinates, or nil when the
// input is not focused.
func (m *Model) Cursor() *tea.Cursor {
	if m.focus != focusInput || !m.input.IsEnabled() {
		return nil
	}
	c := m.input.Cursor()
	if c == nil {
		return nil
	}
	if m.hasSidebar() {
		c.X += sidebarWidth
	}
	// Border and padding on the left, border on top.
	c.X += 2
	c.Y += m.height - 2 - m.input.Height() + 1
	return c
}

// Snapshot returns the state the page last rendered.
func (m *Model) Snapshot() explorer.Snapshot {
	return m.snapshot
}

// stepFor names the activity step for p.
func stepFor(p *explorer.Pending) (string, string) {
	switch p.Kind {
	case explorer.KindDrill:
		return "Drill down", p.Module
	case explorer.KindBack:
		return "Overview", p.Request.GitHubLink
	default:
		if p.Initial {
			return "Analyze", p.Request.GitHubLink
		}
		return "Question", ""
	}
}

func workingLabel(p *explorer.Pending) string {
	switch p.Kind {
	case explorer.KindDrill:
		return "Loading module " + p.Module + "..."
	case explorer.KindBack:
		return "Loading overview..."
	default:
		if p.Initial {
			return "Analyzing repository..."
		}
		return "Analyzing..."
	}
}
