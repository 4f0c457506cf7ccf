// Package blob manages transient, revocable in-memory resources that back
// diagram payloads while they are displayed.
package blob

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/guilhermegouw/archlens/internal/debug"
)

// ContentTypeSVG is the content type of every blob created by Create.
const ContentTypeSVG = "image/svg+xml"

// ErrNoContent is returned when a handle is requested for empty content.
var ErrNoContent = errors.New("no content")

// Handle is a revocable reference to a blob. Its URL stays resolvable until
// the handle is released.
type Handle struct {
	ID          string
	URL         string
	ContentType string
	Size        int
}

type entry struct {
	data        []byte
	contentType string
}

// Manager creates and releases blob handles. It is safe for concurrent use:
// handles are created on the UI loop and read by the surface server.
type Manager struct {
	mu      sync.RWMutex
	base    string
	entries map[string]entry
	created int
}

// NewManager creates a manager whose handle URLs are rooted at baseURL
// (for example "http://127.0.0.1:7777"). An empty base yields "blob:" URLs.
func NewManager(baseURL string) *Manager {
	return &Manager{
		base:    strings.TrimRight(baseURL, "/"),
		entries: make(map[string]entry),
	}
}

// SetBaseURL changes the root used for handles created afterwards.
func (m *Manager) SetBaseURL(baseURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.base = strings.TrimRight(baseURL, "/")
}

// Create packages content as an SVG blob and returns a handle to it.
func (m *Manager) Create(content string) (*Handle, error) {
	if content == "" {
		return nil, ErrNoContent
	}

	id := uuid.New().String()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[id] = entry{data: []byte(content), contentType: ContentTypeSVG}
	m.created++

	h := &Handle{
		ID:          id,
		URL:         m.urlFor(id),
		ContentType: ContentTypeSVG,
		Size:        len(content),
	}
	debug.Event("blob", "Create", "id="+id)
	return h, nil
}

func (m *Manager) urlFor(id string) string {
	if m.base == "" {
		return "blob:" + id
	}
	return m.base + "/blob/" + id
}

// Release revokes a handle. Releasing nil or an already released handle is
// a no-op.
func (m *Manager) Release(h *Handle) {
	if h == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[h.ID]; !ok {
		return
	}
	delete(m.entries, h.ID)
	debug.Event("blob", "Release", "id="+h.ID)
}

// Lookup returns the bytes and content type behind a live handle id.
func (m *Manager) Lookup(id string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, "", false
	}
	return e.data, e.contentType, true
}

// Live reports whether the handle has not been released.
func (m *Manager) Live(h *Handle) bool {
	if h == nil {
		return false
	}
	_, _, ok := m.Lookup(h.ID)
	return ok
}

// Stats returns the number of live handles and the number ever created.
func (m *Manager) Stats() (live, created int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), m.created
}
