package server

import (
	"net/http"
	"strconv"

	"github.com/mesh-intelligence/lineage/internal/dates"
	"github.com/mesh-intelligence/lineage/internal/tree"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// DateView is the JSON form of a resolved event date.
type DateView struct {
	Text        string `json:"text"`
	Year        int    `json:"year"`
	Qualifier   string `json:"qualifier"`
	Approximate bool   `json:"approximate"`
	Ranged      bool   `json:"ranged"`
	EventID     int64  `json:"event_id"`
	Place       string `json:"place,omitempty"`
}

func dateView(m dates.Match, place types.Place, hasPlace bool) *DateView {
	v := &DateView{
		Text:        m.Date.Text,
		Year:        m.Date.Year(),
		Qualifier:   m.Date.Qualifier.String(),
		Approximate: m.Date.Approximate(),
		Ranged:      m.Date.Ranged(),
		EventID:     int64(m.Event.ID),
	}
	if hasPlace {
		v.Place = place.Name
	}
	return v
}

func (s *Server) handlePartners(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"union_id": id, "partners": nonNil(s.rel.PartnersOf(id))})
}

// ChildView is one entry of a children listing.
type ChildView struct {
	ID       types.ID `json:"id"`
	Adopted  bool     `json:"adopted"`
	HasUnion bool     `json:"has_union"`
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	children := []ChildView{}
	for _, c := range s.rel.ChildrenOf(id) {
		children = append(children, ChildView{ID: c, Adopted: s.rel.IsAdopted(c), HasUnion: s.rel.HasUnion(c)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"union_id": id, "children": children})
}

func (s *Server) handleUnionDate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	d := s.rel.Dates()
	m, found := d.EarliestUnionDate(id)
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "no dated union event")
		return
	}
	place, hasPlace := d.EarliestUnionPlace(id)
	writeJSON(w, http.StatusOK, dateView(m, place, hasPlace))
}

func (s *Server) handleParents(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	union, found := s.rel.ParentsUnionOf(id)
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "no parents union")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"person_id": id, "union_id": union, "partners": nonNil(s.rel.PartnersOf(union))})
}

func (s *Server) handleUnions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"person_id": id, "unions": nonNil(s.rel.SiblingUnionsOf(id))})
}

func (s *Server) handleAdopted(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"person_id": id, "adopted": s.rel.IsAdopted(id)})
}

func (s *Server) handlePersonDates(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	d := s.rel.Dates()
	out := map[string]*DateView{"birth": nil, "death": nil}
	if m, found := d.EarliestBirth(id); found {
		place, hasPlace := d.BirthPlace(id)
		out["birth"] = dateView(m, place, hasPlace)
	}
	if m, found := d.LatestDeath(id); found {
		place, hasPlace := d.DeathPlace(id)
		out["death"] = dateView(m, place, hasPlace)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleTree serves GET /tree?union=&person=&depth=.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	union, ok := queryID(w, r, "union")
	if !ok {
		return
	}
	person, ok := queryID(w, r, "person")
	if !ok {
		return
	}
	builder := s.builder
	if raw := r.URL.Query().Get("depth"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err == nil && depth != builder.Depth() {
			builder, err = builder.WithDepth(depth, tree.WithLogger(s.logger))
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", tree.ErrInvalidDepth.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, builder.Build(union, person, types.NoID))
}

func nonNil(ids []types.ID) []types.ID {
	if ids == nil {
		return []types.ID{}
	}
	return ids
}
