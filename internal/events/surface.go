package events

import "time"

// SurfaceEventType is the kind of a viewer surface event.
type SurfaceEventType string

// Surface event types.
const (
	SurfaceEventConnected    SurfaceEventType = "connected"
	SurfaceEventDisconnected SurfaceEventType = "disconnected"
	// SurfaceEventLoadFailed means the viewer could not load the blob.
	SurfaceEventLoadFailed SurfaceEventType = "load_failed"
	// SurfaceEventDrill means a module was clicked in the viewer.
	SurfaceEventDrill SurfaceEventType = "drill"
	// SurfaceEventWheel is a wheel gesture over the viewer.
	SurfaceEventWheel SurfaceEventType = "wheel"
)

// SurfaceEvent is sent by a viewer page over its websocket.
type SurfaceEvent struct {
	Type      SurfaceEventType
	HandleID  string
	Mode      string
	Module    string
	Notches   int
	Ctrl      bool
	Timestamp time.Time
}
