package facet

import "sync"

// Viewport is the mount point a host view exposes for facet implementations.
type Viewport interface {
	Clear()
	Mount(c Component)
}

// MemoryViewport holds at most one mounted component.
type MemoryViewport struct {
	mu      sync.Mutex
	current Component
}

// NewMemoryViewport creates an empty viewport.
func NewMemoryViewport() *MemoryViewport {
	return &MemoryViewport{}
}

// Clear implements Viewport.
func (v *MemoryViewport) Clear() {
	v.mu.Lock()
	v.current = nil
	v.mu.Unlock()
}

// Mount implements Viewport, replacing any mounted component.
func (v *MemoryViewport) Mount(c Component) {
	v.mu.Lock()
	v.current = c
	v.mu.Unlock()
}

// Current returns the mounted component, or nil.
func (v *MemoryViewport) Current() Component {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}
