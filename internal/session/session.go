// Package session couples a navigation history with tree assembly: each
// Session owns one History and rebuilds the tree for every focal point it
// moves to. A Registry hands out sessions to concurrent hosts.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/lineage/internal/metrics"
	"github.com/mesh-intelligence/lineage/internal/navigation"
	"github.com/mesh-intelligence/lineage/internal/relation"
	"github.com/mesh-intelligence/lineage/internal/tree"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// UnionPosition locates the focal union among the unions of one partner.
type UnionPosition struct {
	PartnerID   types.ID `json:"partner_id"`
	Index       int      `json:"index"`
	Count       int      `json:"count"`
	HasPrevious bool     `json:"has_previous"`
	HasNext     bool     `json:"has_next"`
}

// View is the state a host renders after each step.
type View struct {
	SessionID      string                `json:"session_id"`
	Focal          navigation.FocalPoint `json:"focal"`
	Tree           tree.Tree             `json:"tree"`
	Positions      []UnionPosition       `json:"positions,omitempty"`
	CanGoBack      bool                  `json:"can_go_back"`
	CanGoForward   bool                  `json:"can_go_forward"`
	ChildrenOffset int                   `json:"children_offset,omitempty"`
}

// Session is one browsing session. Its methods are safe for concurrent use;
// calls are serialised on the session's own lock.
type Session struct {
	id      string
	rel     *relation.Resolver
	builder *tree.Builder
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	history navigation.History
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Open moves to a person or union. With only a person given, the focal
// union is the person's first union, or none when the person has no
// partner. It returns false when the focal point did not change.
func (s *Session) Open(personID, unionID types.ID) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !unionID.Valid() && personID.Valid() {
		if unions := s.rel.SiblingUnionsOf(personID); len(unions) > 0 {
			unionID = unions[0]
		}
	}
	return s.navigate(personID, unionID)
}

// Back moves to the previous focal point.
func (s *Session) Back() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := s.history.GoBack()
	if moved {
		s.count(metrics.ActionBack)
	}
	return s.view(), moved
}

// Forward moves to the next focal point.
func (s *Session) Forward() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := s.history.GoForward()
	if moved {
		s.count(metrics.ActionForward)
	}
	return s.view(), moved
}

// NextUnion moves to the next union of a partner of the focal union, keeping
// that partner in focus.
func (s *Session) NextUnion(partnerID types.ID) (View, bool) {
	return s.stepUnion(partnerID, s.rel.NextUnion)
}

// PreviousUnion moves to the previous union of a partner of the focal union.
func (s *Session) PreviousUnion(partnerID types.ID) (View, bool) {
	return s.stepUnion(partnerID, s.rel.PreviousUnion)
}

func (s *Session) stepUnion(partnerID types.ID, step func(partnerID, unionID types.ID) (types.ID, bool)) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.history.Current()
	if !ok || !cur.UnionID.Valid() {
		return s.view(), false
	}
	next, ok := step(partnerID, cur.UnionID)
	if !ok {
		return s.view(), false
	}
	return s.navigate(partnerID, next)
}

// Parents moves to the parents' union of partner 1 or 2 of the focal union.
func (s *Session) Parents(side int) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.history.Current()
	if !ok {
		return s.view(), false
	}
	focal := s.build(cur).Focal()
	p := focal.Partner(side)
	if (side != 1 && side != 2) || !p.Known {
		return s.view(), false
	}
	union, ok := s.rel.ParentsUnionOf(p.ID)
	if !ok {
		return s.view(), false
	}
	return s.navigate(types.NoID, union)
}

// Child moves to a child of the focal union, showing the child's first
// union when the child has one.
func (s *Session) Child(childID types.ID) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.history.Current()
	if !ok || !cur.UnionID.Valid() {
		return s.view(), false
	}
	union, ok := s.rel.ParentsUnionOf(childID)
	if !ok || union != cur.UnionID {
		return s.view(), false
	}
	next := types.NoID
	if unions := s.rel.SiblingUnionsOf(childID); len(unions) > 0 {
		next = unions[0]
	}
	return s.navigate(childID, next)
}

// SetChildrenOffset records the children-row scroll offset of the focal
// union.
func (s *Session) SetChildrenOffset(offset int) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.history.Current(); ok && cur.UnionID.Valid() {
		s.history.SetChildrenOffset(cur.UnionID, offset)
	}
	return s.view()
}

// View returns the state at the current focal point.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// History returns the visited focal points, oldest first, and the index of
// the current one.
func (s *Session) History() ([]navigation.FocalPoint, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries(), s.history.Position()
}

func (s *Session) navigate(personID, unionID types.ID) (View, bool) {
	moved := s.history.NavigateTo(personID, unionID)
	if moved {
		s.count(metrics.ActionNavigate)
		s.logger.Debug("navigated", "session", s.id, "person_id", int64(personID), "union_id", int64(unionID))
	}
	return s.view(), moved
}

func (s *Session) count(action string) {
	if s.metrics != nil {
		s.metrics.IncrementNavigation(action)
	}
}

// view assembles the View for the current focal point. The caller holds mu.
func (s *Session) view() View {
	v := View{
		SessionID:    s.id,
		CanGoBack:    s.history.CanGoBack(),
		CanGoForward: s.history.CanGoForward(),
	}
	cur, ok := s.history.Current()
	if !ok {
		return v
	}
	v.Focal = cur
	v.Tree = s.build(cur)
	v.ChildrenOffset = s.history.ChildrenOffset(cur.UnionID)

	focal := v.Tree.Focal()
	if !focal.Known {
		return v
	}
	for _, p := range []tree.Partner{focal.Partner1, focal.Partner2} {
		if !p.Known {
			continue
		}
		unions := s.rel.SiblingUnionsOf(p.ID)
		idx, prev, next := relation.IndexAndNeighbors(focal.UnionID, unions)
		v.Positions = append(v.Positions, UnionPosition{
			PartnerID:   p.ID,
			Index:       idx,
			Count:       len(unions),
			HasPrevious: prev,
			HasNext:     next,
		})
	}
	return v
}

// build assembles the tree for a focal point. A focal union is shown with
// its own partner order; a person without a union becomes a single-partner
// family.
func (s *Session) build(f navigation.FocalPoint) tree.Tree {
	start := time.Now()
	var t tree.Tree
	if s.rel.UnionExists(f.UnionID) {
		t = s.builder.Build(f.UnionID, types.NoID, types.NoID)
	} else {
		t = s.builder.Build(types.NoID, f.PersonID, types.NoID)
	}
	if s.metrics != nil {
		s.metrics.ObserveTreeBuild(start)
	}
	return t
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
