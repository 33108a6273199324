package catalog

import (
	"slices"

	"gemportal/internal/domain"
)

type facetsFile struct {
	Facets []domain.FacetDescriptor `yaml:"facets" validate:"dive"`
}

// LoadFacets reads facet definitions from a YAML file. A title may appear more
// than once; only an entry repeated field for field is rejected.
func LoadFacets(path string) ([]domain.FacetDescriptor, error) {
	var f facetsFile
	if err := decodeFile(path, &f); err != nil {
		return nil, err
	}
	return checkFacets(f.Facets)
}

// ParseFacets decodes a facets document held in memory.
func ParseFacets(data []byte) ([]domain.FacetDescriptor, error) {
	var f facetsFile
	if err := decode("facets", data, &f); err != nil {
		return nil, err
	}
	return checkFacets(f.Facets)
}

func checkFacets(defs []domain.FacetDescriptor) ([]domain.FacetDescriptor, error) {
	for i, d := range defs {
		for _, prev := range defs[:i] {
			if sameFacet(prev, d) {
				return nil, domain.ErrConflict("facet %q (order %d) defined more than once", d.Title, d.Order)
			}
		}
	}
	return defs, nil
}

func sameFacet(a, b domain.FacetDescriptor) bool {
	return a.Title == b.Title &&
		a.Order == b.Order &&
		a.Kind == b.Kind &&
		slices.Equal(a.RequiredContextKeys, b.RequiredContextKeys)
}
