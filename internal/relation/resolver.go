// Package relation derives family relationships from group_junction rows:
// the partners and children of a union, the union a person was born or
// adopted into, and the unions a person is partner in.
//
// Every query reads the Store afresh. Missing or malformed references give
// empty results; invariant violations are reported to the Observer and
// resolved by taking the first candidate in ID order.
package relation

import (
	"log/slog"
	"slices"

	"github.com/mesh-intelligence/lineage/internal/dates"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// maxPartners is the number of partner slots a union has.
const maxPartners = 2

// Resolver answers relationship queries over a Store.
type Resolver struct {
	store   types.Store
	dates   *dates.Resolver
	observe Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithObserver sets the callback that receives inconsistencies.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		r.observe = o
	}
}

// WithDates sets the date resolver used for event lookups. By default the
// Resolver creates one over the same Store.
func WithDates(d *dates.Resolver) Option {
	return func(r *Resolver) {
		r.dates = d
	}
}

// New creates a Resolver over store. A nil store is a programming error and
// panics. Without WithObserver, inconsistencies are logged through
// slog.Default.
func New(store types.Store, opts ...Option) *Resolver {
	if store == nil {
		panic("relation: nil store")
	}
	r := &Resolver{store: store}
	for _, opt := range opts {
		opt(r)
	}
	if r.dates == nil {
		r.dates = dates.NewResolver(store)
	}
	if r.observe == nil {
		r.observe = LogObserver(slog.Default())
	}
	return r
}

// Dates returns the date resolver the Resolver uses.
func (r *Resolver) Dates() *dates.Resolver {
	return r.dates
}

// PersonExists reports whether a person row with the given ID exists.
func (r *Resolver) PersonExists(personID types.ID) bool {
	return r.exists(types.TablePerson, personID)
}

// UnionExists reports whether a group row with the given ID exists.
func (r *Resolver) UnionExists(unionID types.ID) bool {
	return r.exists(types.TableGroup, unionID)
}

func (r *Resolver) exists(table string, id types.ID) bool {
	if !id.Valid() {
		return false
	}
	_, err := r.store.GetTable(table).Get(id)
	return err == nil
}

// junctions returns the valid person junctions matching filter, in ID order.
func (r *Resolver) junctions(filter map[string]any) []types.Junction {
	var out []types.Junction
	for id, rec := range r.store.GetTable(types.TableGroupJunction).Fetch(filter).All() {
		j := types.JunctionOf(id, rec)
		if !j.Valid() || j.ReferenceTable != types.TablePerson {
			continue
		}
		out = append(out, j)
	}
	return out
}

// membersOf returns the existing persons holding role in the union.
func (r *Resolver) membersOf(unionID types.ID, role string) []types.ID {
	if !unionID.Valid() {
		return nil
	}
	var out []types.ID
	for _, j := range r.junctions(map[string]any{types.FieldGroupID: unionID}) {
		if j.Role == role && r.PersonExists(j.ReferenceID) {
			out = append(out, j.ReferenceID)
		}
	}
	return out
}

// PartnersOf returns the partners of a union in junction ID order. A union
// with more than two partners is reported and only the first two are
// returned.
func (r *Resolver) PartnersOf(unionID types.ID) []types.ID {
	partners := r.membersOf(unionID, types.RolePartner)
	if len(partners) > maxPartners {
		r.observe(Inconsistency{
			Kind:       KindExcessPartners,
			Subject:    unionID,
			Chosen:     partners[0],
			Candidates: slices.Clone(partners),
		})
		partners = partners[:maxPartners]
	}
	return partners
}

// ChildrenOf returns the children of a union in junction ID order.
func (r *Resolver) ChildrenOf(unionID types.ID) []types.ID {
	return r.membersOf(unionID, types.RoleChild)
}

// IsAdopted reports whether an adoption event references the person.
func (r *Resolver) IsAdopted(personID types.ID) bool {
	return len(r.dates.Events(types.TablePerson, personID, types.CategoryAdoption)) > 0
}

// ParentsUnionOf returns the union the person is child or adoptee of. When
// the person belongs to several, the first by junction ID wins and the
// inconsistency is reported.
func (r *Resolver) ParentsUnionOf(personID types.ID) (types.ID, bool) {
	unions := r.unionsOf(personID, func(j types.Junction) bool { return j.IsChild() })
	if len(unions) == 0 {
		return types.NoID, false
	}
	if len(unions) > 1 {
		r.observe(Inconsistency{
			Kind:       KindMultipleParentUnions,
			Subject:    personID,
			Chosen:     unions[0],
			Candidates: unions,
		})
	}
	return unions[0], true
}

// HasUnion reports whether the person is partner in any union.
func (r *Resolver) HasUnion(personID types.ID) bool {
	return len(r.SiblingUnionsOf(personID)) > 0
}

// SiblingUnionsOf returns every union the person is partner in, in junction
// ID order.
func (r *Resolver) SiblingUnionsOf(personID types.ID) []types.ID {
	return r.unionsOf(personID, func(j types.Junction) bool { return j.Role == types.RolePartner })
}

// unionsOf returns the distinct existing unions of the person's junctions
// accepted by keep, in junction ID order.
func (r *Resolver) unionsOf(personID types.ID, keep func(types.Junction) bool) []types.ID {
	if !personID.Valid() {
		return nil
	}
	var out []types.ID
	for _, j := range r.junctions(map[string]any{types.FieldReferenceID: personID}) {
		if !keep(j) || slices.Contains(out, j.GroupID) || !r.UnionExists(j.GroupID) {
			continue
		}
		out = append(out, j.GroupID)
	}
	return out
}

// IndexAndNeighbors locates unionID within siblings and reports whether a
// previous and a next union exist. The index is -1 when unionID is absent.
func IndexAndNeighbors(unionID types.ID, siblings []types.ID) (index int, hasPrevious, hasNext bool) {
	index = slices.Index(siblings, unionID)
	if index < 0 {
		return -1, false, false
	}
	return index, index > 0, index < len(siblings)-1
}

// OtherPartner returns the partner of the union who is not partnerID.
func (r *Resolver) OtherPartner(unionID, partnerID types.ID) (types.ID, bool) {
	for _, p := range r.PartnersOf(unionID) {
		if p != partnerID {
			return p, true
		}
	}
	return types.NoID, false
}

// NextUnion returns the union that follows unionID among the partner's
// unions.
func (r *Resolver) NextUnion(partnerID, unionID types.ID) (types.ID, bool) {
	return r.adjacentUnion(partnerID, unionID, 1)
}

// PreviousUnion returns the union that precedes unionID among the partner's
// unions.
func (r *Resolver) PreviousUnion(partnerID, unionID types.ID) (types.ID, bool) {
	return r.adjacentUnion(partnerID, unionID, -1)
}

func (r *Resolver) adjacentUnion(partnerID, unionID types.ID, step int) (types.ID, bool) {
	siblings := r.SiblingUnionsOf(partnerID)
	index, hasPrevious, hasNext := IndexAndNeighbors(unionID, siblings)
	if index < 0 || (step < 0 && !hasPrevious) || (step > 0 && !hasNext) {
		return types.NoID, false
	}
	return siblings[index+step], true
}
