// Package facet decides which optional panels a host view may show for an
// external resource and mounts the one the user selects.
//
// Facet descriptors are declared once per process. Each host view opens a
// Session that qualifies the descriptors against its own context, so
// concurrent sessions never share qualification data.
package facet

import (
	"sort"

	"gemportal/internal/domain"
)

// Qualified is a descriptor that applies to a session's context, paired
// with the session-owned data handed to its implementation.
type Qualified struct {
	Descriptor domain.FacetDescriptor
	Data       map[string]any
}

// DefineQualifiedFacets returns the descriptors that apply to ctx, sorted
// by Order with ties kept in declaration order.
//
// A descriptor qualifies as soon as one of its RequiredContextKeys, scanned
// in declared order, is present in ctx. Only that first key's value is
// copied into Data, next to identifier under "Identifier"; later keys are
// not consulted. With inheritedEnabled false no descriptor qualifies.
func DefineQualifiedFacets(defs []domain.FacetDescriptor, ctx map[string]any, identifier string, inheritedEnabled bool) []Qualified {
	if !inheritedEnabled {
		return nil
	}

	out := make([]Qualified, 0, len(defs))
	for _, def := range defs {
		for _, key := range def.RequiredContextKeys {
			value, ok := ctx[key]
			if !ok {
				continue
			}
			out = append(out, Qualified{
				Descriptor: cloneDescriptor(def),
				Data: map[string]any{
					key:                        value,
					domain.FacetDataIdentifier: identifier,
				},
			})
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Descriptor.Order < out[j].Descriptor.Order
	})
	return out
}

// Titles returns the titles of qualified facets in order.
func Titles(qs []Qualified) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Descriptor.Title
	}
	return out
}

func cloneDescriptor(d domain.FacetDescriptor) domain.FacetDescriptor {
	d.RequiredContextKeys = append([]string(nil), d.RequiredContextKeys...)
	return d
}

func cloneData(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
