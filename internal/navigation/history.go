// Package navigation keeps the back/forward history of visited focal points
// for one browsing session.
package navigation

import (
	"fmt"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

// FocalPoint is the (person, union) pair being viewed. Either may be NoID.
type FocalPoint struct {
	PersonID types.ID `json:"person_id,omitempty"`
	UnionID  types.ID `json:"union_id,omitempty"`
}

func (f FocalPoint) String() string {
	return fmt.Sprintf("person=%d union=%d", f.PersonID, f.UnionID)
}

// History is a linear back/forward list of focal points. The zero value is
// an empty history ready for use. A History is not safe for concurrent use;
// it belongs to a single session.
type History struct {
	entries []FocalPoint
	pos     int
	// offsets remembers the children-row scroll offset per union.
	offsets map[types.ID]int
}

// NavigateTo visits a focal point. Forward entries beyond the current
// position are discarded before the new point is appended. Visiting the
// current point again is a no-op and returns false.
func (h *History) NavigateTo(personID, unionID types.ID) bool {
	next := FocalPoint{PersonID: personID, UnionID: unionID}
	if cur, ok := h.Current(); ok && cur == next {
		return false
	}
	if len(h.entries) > 0 {
		h.entries = h.entries[:h.pos+1]
	}
	h.entries = append(h.entries, next)
	h.pos = len(h.entries) - 1
	return true
}

// GoBack moves one step back. It returns false at the start of the history.
func (h *History) GoBack() bool {
	if !h.CanGoBack() {
		return false
	}
	h.pos--
	return true
}

// GoForward moves one step forward. It returns false at the end of the
// history.
func (h *History) GoForward() bool {
	if !h.CanGoForward() {
		return false
	}
	h.pos++
	return true
}

// CanGoBack reports whether an earlier entry exists.
func (h *History) CanGoBack() bool {
	return len(h.entries) > 0 && h.pos > 0
}

// CanGoForward reports whether a later entry exists.
func (h *History) CanGoForward() bool {
	return h.pos < len(h.entries)-1
}

// Current returns the focal point at the current position. It reports false
// before the first navigation.
func (h *History) Current() (FocalPoint, bool) {
	if len(h.entries) == 0 {
		return FocalPoint{}, false
	}
	return h.entries[h.pos], true
}

// Position returns the index of the current entry, or -1 when empty.
func (h *History) Position() int {
	if len(h.entries) == 0 {
		return -1
	}
	return h.pos
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the visited focal points, oldest first.
func (h *History) Entries() []FocalPoint {
	out := make([]FocalPoint, len(h.entries))
	copy(out, h.entries)
	return out
}

// SetChildrenOffset records how far the children row of a union was
// scrolled. A non-positive offset clears the entry.
func (h *History) SetChildrenOffset(unionID types.ID, offset int) {
	if offset <= 0 {
		delete(h.offsets, unionID)
		return
	}
	if h.offsets == nil {
		h.offsets = make(map[types.ID]int)
	}
	h.offsets[unionID] = offset
}

// ChildrenOffset returns the recorded children-row offset of a union, 0 when
// none was recorded.
func (h *History) ChildrenOffset(unionID types.ID) int {
	return h.offsets[unionID]
}
