package facet

import (
	"log/slog"
	"sync"

	"gemportal/internal/domain"
)

// State is a session's lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateQualifying
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateQualifying:
		return "QUALIFYING"
	case StateReady:
		return "READY"
	default:
		return "UNKNOWN"
	}
}

// NoActiveIndex marks a session with nothing selected.
const NoActiveIndex = -1

// SessionConfig holds everything a host view supplies when it opens.
type SessionConfig struct {
	ID string
	// HostTabs are the host's own tabs, always shown before any facet.
	HostTabs               []string
	Definitions            []domain.FacetDescriptor
	Context                map[string]any
	Identifier             string
	InheritedFacetsEnabled bool
	Resolver               Resolver
	Viewport               Viewport
	Logger                 *slog.Logger
}

// Session is one host view's tab strip. Its methods are safe for
// concurrent use.
type Session struct {
	id       string
	resolver Resolver
	viewport Viewport
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	context  map[string]any
	hostTabs []string
	facets   []Qualified
	active   int
	mounted  Component
}

// NewSession qualifies cfg.Definitions against cfg.Context and returns a
// Ready session with nothing active.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	viewport := cfg.Viewport
	if viewport == nil {
		viewport = NewMemoryViewport()
	}
	var resolver Resolver = DefaultFactory()
	if cfg.Resolver != nil {
		resolver = cfg.Resolver
	}
	s := &Session{
		id:       cfg.ID,
		resolver: resolver,
		viewport: viewport,
		logger:   logger,
		state:    StateUninitialized,
		context:  cloneData(cfg.Context),
		hostTabs: append([]string(nil), cfg.HostTabs...),
		active:   NoActiveIndex,
	}

	s.state = StateQualifying
	s.facets = DefineQualifiedFacets(cfg.Definitions, s.context, cfg.Identifier, cfg.InheritedFacetsEnabled)
	s.state = StateReady

	s.logger.Debug("facet session ready",
		"session", s.id, "host_tabs", len(s.hostTabs), "facets", len(s.facets))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Tabs returns the host tabs followed by the qualified facet titles.
func (s *Session) Tabs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabsLocked()
}

func (s *Session) tabsLocked() []string {
	out := make([]string, 0, len(s.hostTabs)+len(s.facets))
	out = append(out, s.hostTabs...)
	return append(out, Titles(s.facets)...)
}

// Facets returns a copy of the qualified facets.
func (s *Session) Facets() []Qualified {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Qualified, len(s.facets))
	for i, q := range s.facets {
		out[i] = Qualified{Descriptor: cloneDescriptor(q.Descriptor), Data: cloneData(q.Data)}
	}
	return out
}

// ActiveIndex returns the selected tab, or NoActiveIndex.
func (s *Session) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Activate selects the tab at index in the combined strip. The viewport is
// always cleared first. Out-of-range indices leave nothing selected; host
// tabs are selected without mounting anything. Selecting a facet mounts a
// fresh implementation with a copy of the facet's data.
func (s *Session) Activate(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewport.Clear()
	s.active = NoActiveIndex
	s.mounted = nil

	if index < 0 || index >= len(s.hostTabs)+len(s.facets) {
		return nil
	}

	pos := index - len(s.hostTabs)
	if pos < 0 {
		s.active = index
		return nil
	}

	q := s.facets[pos]
	c, err := s.resolver.Resolve(q.Descriptor.Kind)
	if err != nil {
		return err
	}
	c.SetData(cloneData(q.Data))
	s.viewport.Mount(c)
	s.active = index
	s.mounted = c

	s.logger.Debug("facet activated", "session", s.id, "index", index, "title", q.Descriptor.Title)
	return nil
}

// Clear deselects the current tab and empties the viewport.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport.Clear()
	s.active = NoActiveIndex
	s.mounted = nil
}

// Mounted returns the live facet implementation, or nil when none is mounted.
func (s *Session) Mounted() Component {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}
