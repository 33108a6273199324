package facet

import (
	"fmt"
	"strings"
	"sync"

	"gemportal/internal/domain"
)

// Component is a live facet implementation. SetData is its only input.
type Component interface {
	Kind() domain.FacetKind
	SetData(data map[string]any)
	// Describe returns the view model the host shell renders.
	Describe() map[string]any
}

// Resolver instantiates the implementation registered for a facet kind.
type Resolver interface {
	Resolve(kind domain.FacetKind) (Component, error)
}

// Constructor builds a fresh Component.
type Constructor func() Component

// Factory is a constructor table keyed by facet kind.
type Factory struct {
	mu    sync.RWMutex
	ctors map[domain.FacetKind]Constructor
}

// NewFactory creates an empty Factory.
func NewFactory() *Factory {
	return &Factory{ctors: make(map[domain.FacetKind]Constructor)}
}

// DefaultFactory creates a Factory with the built-in implementations.
func DefaultFactory() *Factory {
	f := NewFactory()
	f.Register(domain.FacetKindRESTExplorer, func() Component { return &RESTExplorer{} })
	f.Register(domain.FacetKindLog, func() Component { return &LogViewer{} })
	return f
}

// Register adds or replaces the constructor for kind.
func (f *Factory) Register(kind domain.FacetKind, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctors[kind] = ctor
}

// Check returns a ValidationError naming the first kind without a
// registered constructor.
func (f *Factory) Check(kinds ...domain.FacetKind) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, k := range kinds {
		if _, ok := f.ctors[k]; !ok {
			return domain.ErrValidation("no facet implementation registered for kind %q", k)
		}
	}
	return nil
}

// Resolve implements Resolver.
func (f *Factory) Resolve(kind domain.FacetKind) (Component, error) {
	f.mu.RLock()
	ctor, ok := f.ctors[kind]
	f.mu.RUnlock()
	if !ok {
		return nil, domain.ErrValidation("no facet implementation registered for kind %q", kind)
	}
	return ctor(), nil
}

// RESTExplorer lets an operator browse a gem's service API.
type RESTExplorer struct {
	data map[string]any
}

func (c *RESTExplorer) Kind() domain.FacetKind { return domain.FacetKindRESTExplorer }

func (c *RESTExplorer) SetData(data map[string]any) { c.data = data }

func (c *RESTExplorer) Describe() map[string]any {
	url := stringValue(c.data, domain.ContextKeyServiceURL)
	return map[string]any{
		"identifier":  stringValue(c.data, domain.FacetDataIdentifier),
		"service_url": url,
		"swagger_url": strings.TrimRight(url, "/") + "/service/swagger",
	}
}

// LogViewer shows the log stream of a gem's backing function.
type LogViewer struct {
	data map[string]any
}

func (c *LogViewer) Kind() domain.FacetKind { return domain.FacetKindLog }

func (c *LogViewer) SetData(data map[string]any) { c.data = data }

func (c *LogViewer) Describe() map[string]any {
	id := stringValue(c.data, domain.ContextKeyPhysicalResourceID)
	return map[string]any{
		"identifier":           stringValue(c.data, domain.FacetDataIdentifier),
		"physical_resource_id": id,
		"log_group":            "/aws/lambda/" + id,
	}
}

func stringValue(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
