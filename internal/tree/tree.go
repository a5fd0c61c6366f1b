// Package tree assembles the bounded-depth family view around a focal union:
// the union itself with its children, each partner's parents' union, and
// for depth 4 each grandparent couple's union.
//
// Generation g of a Tree holds 2^g families. Family i of generation g has
// its first partner's parents at index 2i and its second partner's parents
// at index 2i+1 of generation g+1. Ancestors that are not recorded appear
// as empty placeholder families, so every slot is populated.
package tree

import (
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Partner is one partner slot of a family. Known is false for an empty slot.
type Partner struct {
	ID    types.ID `json:"id,omitempty"`
	Known bool     `json:"known"`
}

// Child is an entry of the focal union's descendants row.
type Child struct {
	ID       types.ID `json:"id"`
	Adopted  bool     `json:"adopted"`
	HasUnion bool     `json:"has_union"`
}

// Family is one union slot of the tree. Known is false for a placeholder or
// a synthetic union built around a single person.
type Family struct {
	UnionID  types.ID `json:"union_id,omitempty"`
	Known    bool     `json:"known"`
	Partner1 Partner  `json:"partner1"`
	Partner2 Partner  `json:"partner2"`
	Children []Child  `json:"children,omitempty"`
}

// Empty reports whether the family carries no union and no partner.
func (f Family) Empty() bool {
	return !f.Known && !f.Partner1.Known && !f.Partner2.Known
}

// Partner returns partner slot 1 or 2.
func (f Family) Partner(side int) Partner {
	if side == 2 {
		return f.Partner2
	}
	return f.Partner1
}

// Tree is the assembled family view.
type Tree struct {
	Depth       int        `json:"depth"`
	Generations [][]Family `json:"generations"`
}

// Focal returns the focal family.
func (t Tree) Focal() Family {
	if len(t.Generations) == 0 || len(t.Generations[0]) == 0 {
		return Family{}
	}
	return t.Generations[0][0]
}

// Generation returns the families of generation g, where 0 is the focal
// union, 1 the partners' parents and 2 the grandparents. It returns nil
// when g is out of range.
func (t Tree) Generation(g int) []Family {
	if g < 0 || g >= len(t.Generations) {
		return nil
	}
	return t.Generations[g]
}

// ParentsOf returns the parents' family of the given partner (1 or 2) of
// family index in generation g. It reports false when that generation is
// the last one of the tree.
func (t Tree) ParentsOf(g, index, side int) (Family, bool) {
	next := t.Generation(g + 1)
	i := 2*index + side - 1
	if side < 1 || side > 2 || i < 0 || i >= len(next) {
		return Family{}, false
	}
	return next[i], true
}

// Empty reports whether no slot of the tree carries data.
func (t Tree) Empty() bool {
	for _, gen := range t.Generations {
		for _, f := range gen {
			if !f.Empty() {
				return false
			}
		}
	}
	return true
}
