package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/guilhermegouw/archlens/internal/blob"
	"github.com/guilhermegouw/archlens/internal/svg"
)

const doc = `<svg xmlns="http://www.w3.org/2000/svg"><g class="node"><title>api</title></g></svg>`

type showCall struct {
	id   string
	mode string
}

type fakeSurface struct {
	shows []showCall
	zooms []float64
	fail  map[string]error
}

func (f *fakeSurface) Show(_ context.Context, h *blob.Handle, mode string) error {
	f.shows = append(f.shows, showCall{id: h.ID, mode: mode})
	return f.fail[mode]
}

func (f *fakeSurface) SetZoom(_ *blob.Handle, zoom float64) {
	f.zooms = append(f.zooms, zoom)
}

func newRenderer(surface Surface, arch bool) (*Renderer, *blob.Manager) {
	blobs := blob.NewManager("http://127.0.0.1:1")
	return New(blobs, Options{ArchitectureDiagram: arch, Surface: surface}), blobs
}

func TestRenderer_InitialState(t *testing.T) {
	r, _ := newRenderer(&fakeSurface{}, true)
	s := r.State()
	if s.Phase != PhaseLoading || s.Handle != nil || s.Zoom != DefaultZoom {
		t.Errorf("initial state = %+v", s)
	}
}

func TestRenderer_SetContent(t *testing.T) {
	t.Run("empty content is an error", func(t *testing.T) {
		r, _ := newRenderer(&fakeSurface{}, false)
		r.SetContent(context.Background(), "")
		s := r.State()
		if s.Phase != PhaseError || s.LastError != MsgNoContent {
			t.Errorf("state = %+v", s)
		}
	})

	t.Run("valid content displays with primary strategy", func(t *testing.T) {
		surface := &fakeSurface{}
		r, blobs := newRenderer(surface, false)
		r.SetContent(context.Background(), doc)

		s := r.State()
		if s.Phase != PhaseDisplaying || s.Strategy != StrategyObject {
			t.Fatalf("state = %+v", s)
		}
		if !blobs.Live(s.Handle) {
			t.Error("handle not live")
		}
		if len(surface.shows) != 1 || surface.shows[0].mode != "object" || surface.shows[0].id != s.Handle.ID {
			t.Errorf("shows = %+v", surface.shows)
		}
		if !strings.HasPrefix(r.Content(), svg.XMLDeclaration) {
			t.Error("content was not normalized")
		}
		if got := r.Modules(); len(got) != 1 || got[0] != "api" {
			t.Errorf("Modules() = %v", got)
		}
	})

	t.Run("replacing content releases previous handle", func(t *testing.T) {
		r, blobs := newRenderer(&fakeSurface{}, false)
		r.SetContent(context.Background(), doc)
		first := r.State().Handle
		r.SetContent(context.Background(), doc)
		second := r.State().Handle

		if blobs.Live(first) {
			t.Error("first handle still live")
		}
		if !blobs.Live(second) || first.ID == second.ID {
			t.Error("second handle should be new and live")
		}
		if live, _ := blobs.Stats(); live != 1 {
			t.Errorf("live handles = %d, want 1", live)
		}
	})

	t.Run("invalid content is repaired with placeholder", func(t *testing.T) {
		r, _ := newRenderer(&fakeSurface{}, false)
		r.SetContent(context.Background(), "garbage")
		if r.Content() != svg.Placeholder {
			t.Errorf("Content() = %q", r.Content())
		}
		if r.State().Phase != PhaseDisplaying {
			t.Errorf("phase = %s", r.State().Phase)
		}
	})

	t.Run("synchronous surface failure is an error", func(t *testing.T) {
		surface := &fakeSurface{fail: map[string]error{"object": errors.New("no browser")}}
		r, _ := newRenderer(surface, false)
		r.SetContent(context.Background(), doc)
		s := r.State()
		if s.Phase != PhaseError || !strings.Contains(s.LastError, "no browser") {
			t.Errorf("state = %+v", s)
		}
	})

	t.Run("without surface renders inline", func(t *testing.T) {
		r, _ := newRenderer(nil, false)
		r.SetContent(context.Background(), doc)
		s := r.State()
		if s.Phase != PhaseDisplaying || s.Strategy != StrategyInline {
			t.Errorf("state = %+v", s)
		}
		if r.Inline() == "" {
			t.Error("Inline() is empty")
		}
	})
}

func TestRenderer_ReportFailure(t *testing.T) {
	t.Run("falls back object to image to inline", func(t *testing.T) {
		surface := &fakeSurface{}
		r, _ := newRenderer(surface, false)
		r.SetContent(context.Background(), doc)
		id := r.State().Handle.ID

		r.ReportFailure(context.Background(), id)
		if s := r.State(); s.Strategy != StrategyImage || s.Phase != PhaseDisplaying {
			t.Fatalf("after first failure state = %+v", s)
		}
		if got := surface.shows[len(surface.shows)-1]; got.mode != "image" || got.id != id {
			t.Errorf("second show = %+v, want image on same handle", got)
		}

		r.ReportFailure(context.Background(), id)
		if s := r.State(); s.Strategy != StrategyInline || s.Phase != PhaseDisplaying {
			t.Fatalf("after second failure state = %+v", s)
		}

		r.ReportFailure(context.Background(), id)
		if s := r.State(); s.Strategy != StrategyInline {
			t.Errorf("inline should be terminal, got %s", s.Strategy)
		}
	})

	t.Run("secondary synchronous failure is an error", func(t *testing.T) {
		surface := &fakeSurface{fail: map[string]error{"image": errors.New("closed")}}
		r, _ := newRenderer(surface, false)
		r.SetContent(context.Background(), doc)
		r.ReportFailure(context.Background(), r.State().Handle.ID)
		if s := r.State(); s.Phase != PhaseError || s.Strategy != StrategyImage {
			t.Errorf("state = %+v", s)
		}
	})

	t.Run("stale handle is ignored", func(t *testing.T) {
		r, _ := newRenderer(&fakeSurface{}, false)
		r.SetContent(context.Background(), doc)
		stale := r.State().Handle.ID
		r.SetContent(context.Background(), doc)

		r.ReportFailure(context.Background(), stale)
		if s := r.State(); s.Strategy != StrategyObject {
			t.Errorf("strategy = %s, want object", s.Strategy)
		}
	})
}

func TestRenderer_Retry(t *testing.T) {
	surface := &fakeSurface{fail: map[string]error{"object": errors.New("boom")}}
	r, _ := newRenderer(surface, false)
	r.SetContent(context.Background(), doc)
	if r.State().Phase != PhaseError {
		t.Fatalf("phase = %s, want error", r.State().Phase)
	}

	r.Retry(context.Background())
	if s := r.State(); s.Phase != PhaseDisplaying || s.Strategy != StrategyImage {
		t.Errorf("after retry state = %+v", s)
	}

	// Retry only acts in the error phase.
	r.Retry(context.Background())
	if s := r.State(); s.Strategy != StrategyImage {
		t.Errorf("retry while displaying changed strategy to %s", s.Strategy)
	}
}

func TestRenderer_Close(t *testing.T) {
	r, blobs := newRenderer(&fakeSurface{}, false)
	r.SetContent(context.Background(), doc)
	h := r.State().Handle

	r.Close()
	r.Close()

	if blobs.Live(h) {
		t.Error("handle live after Close")
	}
	if s := r.State(); s.Handle != nil || s.Phase != PhaseLoading {
		t.Errorf("state after Close = %+v", s)
	}
}

func TestRenderer_Zoom(t *testing.T) {
	t.Run("zoom in is capped", func(t *testing.T) {
		r, _ := newRenderer(&fakeSurface{}, true)
		for i := 0; i < 7; i++ {
			r.ZoomIn()
		}
		if z := r.State().Zoom; z != MaxZoom {
			t.Errorf("Zoom = %v, want %v", z, MaxZoom)
		}
	})

	t.Run("zoom out is floored", func(t *testing.T) {
		r, _ := newRenderer(&fakeSurface{}, true)
		for i := 0; i < 7; i++ {
			r.ZoomOut()
		}
		if z := r.State().Zoom; z != MinZoom {
			t.Errorf("Zoom = %v, want %v", z, MinZoom)
		}
	})

	t.Run("reset restores default", func(t *testing.T) {
		r, _ := newRenderer(&fakeSurface{}, true)
		r.ZoomIn()
		r.ResetZoom()
		if z := r.State().Zoom; z != DefaultZoom {
			t.Errorf("Zoom = %v", z)
		}
	})

	t.Run("disabled for module diagrams", func(t *testing.T) {
		r, _ := newRenderer(&fakeSurface{}, false)
		r.ZoomIn()
		if z := r.State().Zoom; z != DefaultZoom {
			t.Errorf("Zoom = %v, want unchanged", z)
		}
		if r.Wheel(1, true) {
			t.Error("Wheel() consumed scroll on module diagram")
		}
	})

	t.Run("wheel requires modifier", func(t *testing.T) {
		r, _ := newRenderer(&fakeSurface{}, true)
		if r.Wheel(1, false) {
			t.Error("Wheel() without modifier consumed scroll")
		}
		if !r.Wheel(1, true) {
			t.Error("Wheel() with modifier did not consume scroll")
		}
		if z := r.State().Zoom; z <= DefaultZoom {
			t.Errorf("Zoom = %v, want > %v", z, DefaultZoom)
		}
		for i := 0; i < 50; i++ {
			r.Wheel(-1, true)
		}
		if z := r.State().Zoom; z != MinZoom {
			t.Errorf("Zoom = %v, want %v", z, MinZoom)
		}
	})

	t.Run("zoom needs architecture mode", func(t *testing.T) {
		r, _ := newRenderer(&fakeSurface{}, false)
		r.ZoomIn()
		if r.Wheel(1, true) {
			t.Error("Wheel() consumed scroll without architecture mode")
		}
		if z := r.State().Zoom; z != DefaultZoom {
			t.Errorf("Zoom = %v, want %v", z, DefaultZoom)
		}
	})

	t.Run("zoom is pushed to surface", func(t *testing.T) {
		surface := &fakeSurface{}
		r, _ := newRenderer(surface, true)
		r.SetContent(context.Background(), doc)
		before := len(surface.zooms)
		r.ZoomIn()
		if len(surface.zooms) != before+1 || surface.zooms[len(surface.zooms)-1] != r.State().Zoom {
			t.Errorf("zooms = %v", surface.zooms)
		}
	})
}

func TestRenderer_DrillDown(t *testing.T) {
	var got string
	r := New(blob.NewManager(""), Options{OnDrillDown: func(m string) { got = m }})
	if !r.DrillDown("parser") || got != "parser" {
		t.Errorf("DrillDown() forwarded %q", got)
	}

	bare := New(blob.NewManager(""), Options{})
	if bare.DrillDown("parser") {
		t.Error("DrillDown() without capability reported success")
	}
	bare.SetDrillDown(func(m string) { got = "late:" + m })
	if !bare.DrillDown("lexer") || got != "late:lexer" {
		t.Errorf("SetDrillDown() not used, got %q", got)
	}
}

func TestHighlight(t *testing.T) {
	if Highlight("") != "" {
		t.Error("Highlight(\"\") should be empty")
	}
	out := Highlight(doc)
	if !strings.Contains(out, "svg") || !strings.Contains(out, "\x1b[") {
		t.Errorf("Highlight() = %q, want ANSI-colored source", out)
	}
}
