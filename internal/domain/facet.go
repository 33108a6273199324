package domain

// FacetKind tags a known facet implementation.
type FacetKind string

// Known facet implementations.
const (
	FacetKindRESTExplorer FacetKind = "rest_explorer"
	FacetKindLog          FacetKind = "log"
)

// Context keys the built-in facets are gated on.
const (
	ContextKeyServiceURL         = "ServiceUrl"
	ContextKeyPhysicalResourceID = "physicalResourceId"
	FacetDataIdentifier          = "Identifier"
)

// FacetDescriptor declares an optional panel contributed to a host view's tab
// strip. Descriptors are shared process-wide and must not be mutated after
// startup; qualification copies what it needs into session-owned data.
type FacetDescriptor struct {
	Title               string    `yaml:"title" validate:"required"`
	Kind                FacetKind `yaml:"kind" validate:"required"`
	Order               int       `yaml:"order" validate:"min=0"`
	RequiredContextKeys []string  `yaml:"required_context_keys" validate:"dive,required"`
}
