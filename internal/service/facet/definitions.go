package facet

import "gemportal/internal/domain"

// BuiltinDefinitions returns the facets every gem resource may expose. The
// slice is freshly allocated on each call.
func BuiltinDefinitions() []domain.FacetDescriptor {
	return []domain.FacetDescriptor{
		{
			Title:               "REST Explorer",
			Kind:                domain.FacetKindRESTExplorer,
			Order:               0,
			RequiredContextKeys: []string{domain.ContextKeyServiceURL},
		},
		{
			Title:               "Log",
			Kind:                domain.FacetKindLog,
			Order:               1,
			RequiredContextKeys: []string{domain.ContextKeyPhysicalResourceID},
		},
	}
}
