package catalog

import (
	"sort"

	"gemportal/internal/domain"
)

// Compile-time check.
var _ domain.MetricRepository = (*Metrics)(nil)

type metricsFile struct {
	Metrics []domain.MetricDefinition `yaml:"metrics" validate:"dive"`
}

// Metrics is an immutable, in-memory metric catalog.
type Metrics struct {
	byName map[string]domain.MetricDefinition
}

// NewMetrics builds a catalog from defs. Duplicate names are rejected.
func NewMetrics(defs []domain.MetricDefinition) (*Metrics, error) {
	m := &Metrics{byName: make(map[string]domain.MetricDefinition, len(defs))}
	for _, d := range defs {
		if _, ok := m.byName[d.Name]; ok {
			return nil, domain.ErrConflict("metric %q defined more than once", d.Name)
		}
		d.UnionTables = append([]string(nil), d.UnionTables...)
		m.byName[d.Name] = d
	}
	return m, nil
}

// LoadMetrics reads a metrics YAML file. An empty path yields an empty
// catalog.
func LoadMetrics(path string) (*Metrics, error) {
	if path == "" {
		return NewMetrics(nil)
	}
	var f metricsFile
	if err := decodeFile(path, &f); err != nil {
		return nil, err
	}
	return NewMetrics(f.Metrics)
}

// ParseMetrics decodes a metrics document held in memory.
func ParseMetrics(data []byte) (*Metrics, error) {
	var f metricsFile
	if err := decode("metrics", data, &f); err != nil {
		return nil, err
	}
	return NewMetrics(f.Metrics)
}

// Get implements domain.MetricRepository.
func (m *Metrics) Get(name string) (*domain.MetricDefinition, error) {
	d, ok := m.byName[name]
	if !ok {
		return nil, domain.ErrNotFound("metric %q not found", name)
	}
	d.UnionTables = append([]string(nil), d.UnionTables...)
	return &d, nil
}

// List implements domain.MetricRepository. Results are sorted by name.
func (m *Metrics) List() []domain.MetricDefinition {
	out := make([]domain.MetricDefinition, 0, len(m.byName))
	for _, d := range m.byName {
		d.UnionTables = append([]string(nil), d.UnionTables...)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
