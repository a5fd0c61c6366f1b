package tree

import (
	"errors"
	"log/slog"

	"github.com/mesh-intelligence/lineage/internal/relation"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// ErrInvalidDepth is returned for a depth other than 3 or 4.
var ErrInvalidDepth = errors.New("tree depth must be 3 or 4")

// Builder assembles Trees of a fixed depth.
type Builder struct {
	rel     *relation.Resolver
	depth   int
	logger  *slog.Logger
	onBuild func(Tree)
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger for build diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithBuildHook registers fn to be called with every assembled tree.
func WithBuildHook(fn func(Tree)) Option {
	return func(b *Builder) {
		b.onBuild = fn
	}
}

// NewBuilder creates a Builder producing trees of the given depth. A nil
// resolver is a programming error and panics.
func NewBuilder(rel *relation.Resolver, depth int, opts ...Option) (*Builder, error) {
	if rel == nil {
		panic("tree: nil resolver")
	}
	if depth != types.DepthParents && depth != types.DepthGrandparents {
		return nil, ErrInvalidDepth
	}
	b := &Builder{rel: rel, depth: depth, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// WithDepth returns a Builder of another depth that shares the resolver,
// logger and build hook of b. Options apply on top of the copied settings.
func (b *Builder) WithDepth(depth int, opts ...Option) (*Builder, error) {
	if depth != types.DepthParents && depth != types.DepthGrandparents {
		return nil, ErrInvalidDepth
	}
	c := *b
	c.depth = depth
	for _, opt := range opts {
		opt(&c)
	}
	return &c, nil
}

// Depth returns the number of generations the builder shows.
func (b *Builder) Depth() int {
	return b.depth
}

// Build assembles the tree around a union. Any argument may be NoID: unset
// partners are filled from the union's partners, and a union left unset
// around a known partner becomes a synthetic family with that partner.
func (b *Builder) Build(unionID, partner1, partner2 types.ID) Tree {
	focal := b.family(unionID, partner1, partner2)
	if focal.Known {
		focal.Children = b.children(focal.UnionID)
	}

	// The children row is the first generation, so depth d shows d-1
	// generations of unions. The loop bound is fixed, which keeps a cyclic
	// store from recursing forever.
	t := Tree{Depth: b.depth, Generations: [][]Family{{focal}}}
	for g := 1; g < b.depth-1; g++ {
		prev := t.Generations[g-1]
		next := make([]Family, 0, 2*len(prev))
		for _, f := range prev {
			next = append(next, b.parentsOf(f.Partner1), b.parentsOf(f.Partner2))
		}
		t.Generations = append(t.Generations, next)
	}

	b.logger.Debug("tree built",
		"union_id", int64(unionID),
		"partner1", int64(partner1),
		"partner2", int64(partner2),
		"depth", b.depth,
		"empty", t.Empty(),
	)
	if b.onBuild != nil {
		b.onBuild(t)
	}
	return t
}

// family resolves one union slot.
func (b *Builder) family(unionID, partner1, partner2 types.ID) Family {
	f := Family{
		Partner1: b.partner(partner1),
		Partner2: b.partner(partner2),
	}
	if !b.rel.UnionExists(unionID) {
		return f
	}
	f.UnionID, f.Known = unionID, true

	if f.Partner1.Known && f.Partner2.Known {
		return f
	}
	for _, p := range b.rel.PartnersOf(unionID) {
		switch {
		case p == f.Partner1.ID || p == f.Partner2.ID:
		case !f.Partner1.Known:
			f.Partner1 = Partner{ID: p, Known: true}
		case !f.Partner2.Known:
			f.Partner2 = Partner{ID: p, Known: true}
		}
	}
	return f
}

func (b *Builder) partner(id types.ID) Partner {
	if !b.rel.PersonExists(id) {
		return Partner{}
	}
	return Partner{ID: id, Known: true}
}

// parentsOf returns the parents' family of a partner, or a placeholder.
func (b *Builder) parentsOf(p Partner) Family {
	if !p.Known {
		return Family{}
	}
	union, ok := b.rel.ParentsUnionOf(p.ID)
	if !ok {
		return Family{}
	}
	return b.family(union, types.NoID, types.NoID)
}

func (b *Builder) children(unionID types.ID) []Child {
	ids := b.rel.ChildrenOf(unionID)
	out := make([]Child, 0, len(ids))
	for _, id := range ids {
		out = append(out, Child{
			ID:       id,
			Adopted:  b.rel.IsAdopted(id),
			HasUnion: b.rel.HasUnion(id),
		})
	}
	return out
}
