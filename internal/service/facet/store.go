package facet

import (
	"log/slog"
	"sort"
	"sync"

	"gemportal/internal/domain"
)

// OpenRequest is what a host view sends when it opens.
type OpenRequest struct {
	HostTabs   []string
	Context    map[string]any
	Identifier string
}

// Store keeps the open sessions of all host views. Every session qualifies
// against the same read-only definitions.
type Store struct {
	definitions []domain.FacetDescriptor
	resolver    Resolver
	inherited   bool
	logger      *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates a Store. definitions are copied.
func NewStore(definitions []domain.FacetDescriptor, resolver Resolver, inheritedEnabled bool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	defs := make([]domain.FacetDescriptor, len(definitions))
	for i, d := range definitions {
		defs[i] = cloneDescriptor(d)
	}
	return &Store{
		definitions: defs,
		resolver:    resolver,
		inherited:   inheritedEnabled,
		logger:      logger,
		sessions:    make(map[string]*Session),
	}
}

// Definitions returns a copy of the registered definitions.
func (st *Store) Definitions() []domain.FacetDescriptor {
	out := make([]domain.FacetDescriptor, len(st.definitions))
	for i, d := range st.definitions {
		out[i] = cloneDescriptor(d)
	}
	return out
}

// Open creates and registers a session for a host view.
func (st *Store) Open(req OpenRequest) *Session {
	s := NewSession(SessionConfig{
		ID:                     domain.NewID(),
		HostTabs:               req.HostTabs,
		Definitions:            st.definitions,
		Context:                req.Context,
		Identifier:             req.Identifier,
		InheritedFacetsEnabled: st.inherited,
		Resolver:               st.resolver,
		Logger:                 st.logger,
	})

	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()
	return s
}

// Get returns an open session.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound("facet session %q not found", id)
	}
	return s, nil
}

// Close disposes of a session, unmounting whatever it shows.
func (st *Store) Close(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return domain.ErrNotFound("facet session %q not found", id)
	}
	s.Clear()
	return nil
}

// IDs returns the open session IDs in sorted order.
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
