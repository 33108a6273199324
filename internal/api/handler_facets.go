package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gemportal/internal/domain"
	"gemportal/internal/service/facet"
)

// FacetDefinition is a registered facet descriptor.
type FacetDefinition struct {
	Title               string   `json:"title"`
	Kind                string   `json:"kind"`
	Order               int      `json:"order"`
	RequiredContextKeys []string `json:"required_context_keys"`
}

// OpenSessionRequest is the body of POST /v1/facets/sessions.
type OpenSessionRequest struct {
	HostTabs   []string       `json:"host_tabs"`
	Context    map[string]any `json:"context"`
	Identifier string         `json:"identifier"`
}

// QualifiedFacet is a facet qualified for a session.
type QualifiedFacet struct {
	Title string         `json:"title"`
	Kind  string         `json:"kind"`
	Order int            `json:"order"`
	Data  map[string]any `json:"data"`
}

// FacetSession is the observable state of a facet session.
type FacetSession struct {
	ID          string           `json:"id"`
	State       string           `json:"state"`
	Tabs        []string         `json:"tabs"`
	Facets      []QualifiedFacet `json:"facets"`
	ActiveIndex int              `json:"active_index"`
	Mounted     map[string]any   `json:"mounted,omitempty"`
	MountedKind string           `json:"mounted_kind,omitempty"`
}

func (h *Handler) listFacetDefinitions(w http.ResponseWriter, _ *http.Request) {
	defs := h.facets.Definitions()
	out := make([]FacetDefinition, 0, len(defs))
	for _, d := range defs {
		keys := d.RequiredContextKeys
		if keys == nil {
			keys = []string{}
		}
		out = append(out, FacetDefinition{Title: d.Title, Kind: string(d.Kind), Order: d.Order, RequiredContextKeys: keys})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"definitions": out})
}

func (h *Handler) openFacetSession(w http.ResponseWriter, r *http.Request) {
	var body OpenSessionRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	s := h.facets.Open(facet.OpenRequest{
		HostTabs:   body.HostTabs,
		Context:    body.Context,
		Identifier: body.Identifier,
	})
	writeJSON(w, http.StatusCreated, sessionToAPI(s))
}

func (h *Handler) getFacetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.facets.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToAPI(s))
}

func (h *Handler) activateFacet(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, domain.ErrValidation("tab index must be an integer"))
		return
	}
	s, err := h.facets.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.Activate(index); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToAPI(s))
}

func (h *Handler) closeFacetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.facets.Close(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionToAPI(s *facet.Session) FacetSession {
	qs := s.Facets()
	out := FacetSession{
		ID:          s.ID(),
		State:       s.State().String(),
		Tabs:        s.Tabs(),
		Facets:      make([]QualifiedFacet, 0, len(qs)),
		ActiveIndex: s.ActiveIndex(),
	}
	for _, q := range qs {
		out.Facets = append(out.Facets, QualifiedFacet{
			Title: q.Descriptor.Title,
			Kind:  string(q.Descriptor.Kind),
			Order: q.Descriptor.Order,
			Data:  q.Data,
		})
	}
	if c := s.Mounted(); c != nil {
		out.MountedKind = string(c.Kind())
		out.Mounted = c.Describe()
	}
	return out
}
