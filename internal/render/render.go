// Package render displays SVG diagrams with a chain of fallback strategies:
// an <object> embed in the viewer surface, then an <img> embed, then the
// highlighted source inline in the terminal.
package render

import (
	"context"
	"fmt"
	"math"

	"github.com/guilhermegouw/archlens/internal/blob"
	"github.com/guilhermegouw/archlens/internal/debug"
	"github.com/guilhermegouw/archlens/internal/svg"
)

// Phase is the display phase of a Renderer.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseError      Phase = "error"
	PhaseDisplaying Phase = "displaying"
)

// Zoom bounds and steps.
const (
	MinZoom     = 0.3
	MaxZoom     = 3.0
	DefaultZoom = 1.0
	zoomFactor  = 1.2
	wheelFactor = 1.1
)

// MsgNoContent is the error shown when empty content is set.
const MsgNoContent = "No SVG content provided"

// State is a snapshot of the renderer.
type State struct {
	Phase     Phase
	Strategy  StrategyName
	Handle    *blob.Handle
	LastError string
	Zoom      float64
}

// Options configures a Renderer.
type Options struct {
	// ArchitectureDiagram enables zoom controls.
	ArchitectureDiagram bool
	// OnDrillDown is invoked when a module is activated in the diagram.
	OnDrillDown func(module string)
	// Surface shows blob handles. Without one only the inline strategy is used.
	Surface Surface
}

// Renderer owns one displayed diagram and the blob handle backing it.
// It is not safe for concurrent use; it lives on the UI loop.
type Renderer struct {
	opts       Options
	blobs      *blob.Manager
	strategies map[StrategyName]Strategy
	inline     *inlineStrategy

	state   State
	content string
	modules []string
}

// New creates a renderer that acquires handles from blobs.
func New(blobs *blob.Manager, opts Options) *Renderer {
	inline := &inlineStrategy{}
	return &Renderer{
		opts:   opts,
		blobs:  blobs,
		inline: inline,
		strategies: map[StrategyName]Strategy{
			StrategyObject: &surfaceStrategy{name: StrategyObject, surface: opts.Surface},
			StrategyImage:  &surfaceStrategy{name: StrategyImage, surface: opts.Surface},
			StrategyInline: inline,
		},
		state: State{
			Phase:    PhaseLoading,
			Strategy: StrategyObject,
			Zoom:     DefaultZoom,
		},
	}
}

// State returns the current render state.
func (r *Renderer) State() State {
	return r.state
}

// Content returns the normalized document being displayed.
func (r *Renderer) Content() string {
	return r.content
}

// Modules returns the drill-down targets found in the current document.
func (r *Renderer) Modules() []string {
	return r.modules
}

// Inline returns the highlighted source when the inline strategy is active.
func (r *Renderer) Inline() string {
	if r.state.Strategy != StrategyInline || r.state.Phase != PhaseDisplaying {
		return ""
	}
	return r.inline.out
}

func (r *Renderer) firstStrategy() StrategyName {
	if r.opts.Surface == nil {
		return StrategyInline
	}
	return StrategyObject
}

func (r *Renderer) nextStrategy(s StrategyName) StrategyName {
	if r.opts.Surface == nil {
		return StrategyInline
	}
	switch s {
	case StrategyObject:
		return StrategyImage
	case StrategyImage:
		return StrategyInline
	default:
		return StrategyObject
	}
}

// SetContent replaces the displayed document. The previous handle is
// released and a new one is acquired for the normalized content.
func (r *Renderer) SetContent(ctx context.Context, content string) {
	r.releaseHandle()
	r.content = ""
	r.modules = nil
	r.inline.out = ""

	if content == "" {
		r.fail(MsgNoContent)
		return
	}

	r.content = svg.Normalize(content)
	r.modules = svg.Modules(r.content)
	r.state.Phase = PhaseLoading
	r.state.Strategy = r.firstStrategy()

	if err := r.acquire(); err != nil {
		r.fail(err.Error())
		return
	}
	r.attempt(ctx)
}

func (r *Renderer) acquire() error {
	h, err := r.blobs.Create(r.content)
	if err != nil {
		return fmt.Errorf("creating blob: %w", err)
	}
	r.state.Handle = h
	return nil
}

func (r *Renderer) attempt(ctx context.Context) {
	s := r.strategies[r.state.Strategy]
	if err := s.Attempt(ctx, r.target()); err != nil {
		debug.Error("render", err, "attempt "+string(s.Name()))
		r.fail(err.Error())
		return
	}
	r.state.Phase = PhaseDisplaying
	r.state.LastError = ""
	debug.Event("render", "Displaying", "strategy="+string(s.Name()))
}

func (r *Renderer) target() Target {
	return Target{Handle: r.state.Handle, Content: r.content, Zoom: r.state.Zoom}
}

func (r *Renderer) fail(msg string) {
	r.state.Phase = PhaseError
	r.state.LastError = msg
	debug.Event("render", "Error", msg)
}

// ReportFailure is called when the surface could not load the handle with
// id. The renderer falls back to the next strategy. Reports for stale
// handles or outside the displaying phase are ignored.
func (r *Renderer) ReportFailure(ctx context.Context, id string) {
	if r.state.Phase != PhaseDisplaying || r.state.Handle == nil || r.state.Handle.ID != id {
		return
	}
	if r.state.Strategy == StrategyInline {
		return
	}

	from := r.state.Strategy
	r.state.Strategy = r.nextStrategy(from)
	debug.Event("render", "Fallback", fmt.Sprintf("%s -> %s", from, r.state.Strategy))
	r.attempt(ctx)
}

// Retry cycles to the next strategy and attempts again. It only acts in the
// error phase.
func (r *Renderer) Retry(ctx context.Context) {
	if r.state.Phase != PhaseError || r.content == "" {
		return
	}
	if r.state.Handle == nil || !r.blobs.Live(r.state.Handle) {
		if err := r.acquire(); err != nil {
			r.fail(err.Error())
			return
		}
	}
	r.state.Strategy = r.nextStrategy(r.state.Strategy)
	r.state.Phase = PhaseLoading
	r.attempt(ctx)
}

// Close releases the handle. The renderer returns to the loading phase.
func (r *Renderer) Close() {
	r.releaseHandle()
	r.content = ""
	r.modules = nil
	r.inline.out = ""
	r.state.Phase = PhaseLoading
	r.state.LastError = ""
}

func (r *Renderer) releaseHandle() {
	if r.state.Handle == nil {
		return
	}
	r.blobs.Release(r.state.Handle)
	r.state.Handle = nil
}

// ArchitectureDiagram reports whether zoom controls are enabled.
func (r *Renderer) ArchitectureDiagram() bool {
	return r.opts.ArchitectureDiagram
}

// ZoomIn scales up by 20%, capped at MaxZoom.
func (r *Renderer) ZoomIn() {
	r.setZoom(math.Min(r.state.Zoom*zoomFactor, MaxZoom))
}

// ZoomOut scales down by 20%, floored at MinZoom.
func (r *Renderer) ZoomOut() {
	r.setZoom(math.Max(r.state.Zoom/zoomFactor, MinZoom))
}

// ResetZoom restores the default scale.
func (r *Renderer) ResetZoom() {
	r.setZoom(DefaultZoom)
}

// Wheel applies a wheel gesture of notches (positive zooms in). It zooms and
// reports true, meaning the scroll is consumed, only when modifier is held.
func (r *Renderer) Wheel(notches int, modifier bool) bool {
	if !modifier || !r.opts.ArchitectureDiagram {
		return false
	}
	z := r.state.Zoom * math.Pow(wheelFactor, float64(notches))
	r.setZoom(math.Max(MinZoom, math.Min(z, MaxZoom)))
	return true
}

func (r *Renderer) setZoom(z float64) {
	if !r.opts.ArchitectureDiagram || z == r.state.Zoom {
		return
	}
	r.state.Zoom = z
	if r.opts.Surface != nil && r.state.Handle != nil && r.state.Strategy != StrategyInline {
		r.opts.Surface.SetZoom(r.state.Handle, z)
	}
}

// SetDrillDown replaces the drill-down capability.
func (r *Renderer) SetDrillDown(fn func(module string)) {
	r.opts.OnDrillDown = fn
}

// DrillDown forwards a module activation to the drill-down capability.
func (r *Renderer) DrillDown(module string) bool {
	if r.opts.OnDrillDown == nil || module == "" {
		return false
	}
	debug.Event("render", "DrillDown", module)
	r.opts.OnDrillDown(module)
	return true
}
