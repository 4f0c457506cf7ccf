package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/guilhermegouw/archlens/internal/blob"
)

// ErrPrimitiveFailure marks a display primitive that could not show the
// diagram. It drives strategy fallback.
var ErrPrimitiveFailure = errors.New("render primitive failure")

// ErrSurfaceUnavailable is returned by surface strategies when no viewer
// surface is configured.
var ErrSurfaceUnavailable = errors.New("viewer surface unavailable")

// StrategyName identifies a display strategy.
type StrategyName string

const (
	// StrategyObject embeds the blob through an <object> element.
	StrategyObject StrategyName = "object"
	// StrategyImage embeds the blob through an <img> element.
	StrategyImage StrategyName = "image"
	// StrategyInline renders the document source in the terminal.
	StrategyInline StrategyName = "inline"
)

// Target is what a strategy is asked to display.
type Target struct {
	Handle  *blob.Handle
	Content string
	Zoom    float64
}

// Strategy is one way of displaying a diagram.
type Strategy interface {
	Name() StrategyName
	Attempt(ctx context.Context, t Target) error
}

// Surface is an external viewer able to show blob handles. Show may
// return before the viewer has loaded the document; load failures that
// happen later are reported back through Renderer.ReportFailure.
type Surface interface {
	Show(ctx context.Context, h *blob.Handle, mode string) error
	SetZoom(h *blob.Handle, zoom float64)
}

type surfaceStrategy struct {
	name    StrategyName
	surface Surface
}

func (s *surfaceStrategy) Name() StrategyName { return s.name }

func (s *surfaceStrategy) Attempt(ctx context.Context, t Target) error {
	if s.surface == nil {
		return fmt.Errorf("%w: %w", ErrPrimitiveFailure, ErrSurfaceUnavailable)
	}
	if t.Handle == nil {
		return fmt.Errorf("%w: no handle", ErrPrimitiveFailure)
	}
	if err := s.surface.Show(ctx, t.Handle, string(s.name)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPrimitiveFailure, s.name, err)
	}
	s.surface.SetZoom(t.Handle, t.Zoom)
	return nil
}

// inlineStrategy never fails; it only prepares terminal output.
type inlineStrategy struct {
	out string
}

func (s *inlineStrategy) Name() StrategyName { return StrategyInline }

func (s *inlineStrategy) Attempt(_ context.Context, t Target) error {
	s.out = Highlight(t.Content)
	return nil
}
