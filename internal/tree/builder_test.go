package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lineage/internal/relation"
	"github.com/mesh-intelligence/lineage/internal/store"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// newLineageStore builds three generations around union 1 (Anna and Bruno).
// Anna's parents are union 2 (Ezio and Franca); Ezio's parents are union 3
// (Gino and Ida). Bruno and Franca have no recorded parents. Child Dario is
// adopted and is himself a partner in union 4 with Luca.
func newLineageStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	put := func(table string, id types.ID, rec types.Record) {
		require.NoError(t, s.Put(table, id, rec))
	}
	names := []string{"Anna", "Bruno", "Carla", "Dario", "Ezio", "Franca", "Gino", "Ida", "Luca"}
	for i, name := range names {
		put(types.TablePerson, types.ID(i+1), types.Record{"name": name})
	}
	for id := types.ID(1); id <= 4; id++ {
		put(types.TableGroup, id, types.Record{"type": "marriage"})
	}
	junctions := []struct {
		group, person types.ID
		role          string
	}{
		{1, 1, types.RolePartner},
		{1, 2, types.RolePartner},
		{1, 3, types.RoleChild},
		{1, 4, types.RoleChild},
		{2, 5, types.RolePartner},
		{2, 6, types.RolePartner},
		{2, 1, types.RoleChild},
		{3, 7, types.RolePartner},
		{3, 8, types.RolePartner},
		{3, 5, types.RoleChild},
		{4, 4, types.RolePartner},
		{4, 9, types.RolePartner},
	}
	for i, j := range junctions {
		put(types.TableGroupJunction, types.ID(i+1), types.Record{
			"group_id":        j.group,
			"reference_table": types.TablePerson,
			"reference_id":    j.person,
			"role":            j.role,
		})
	}
	put(types.TableEventType, 1, types.Record{"type": "adoption", "category": "adoption"})
	put(types.TableEvent, 1, types.Record{"type_id": 1, "reference_table": "person", "reference_id": 4})
	return s
}

func newTestBuilder(t *testing.T, s types.Store, depth int) *Builder {
	t.Helper()
	b, err := NewBuilder(relation.New(s, relation.WithObserver(func(relation.Inconsistency) {})), depth)
	require.NoError(t, err)
	return b
}

func TestNewBuilderDepth(t *testing.T) {
	rel := relation.New(store.New())
	for _, depth := range []int{3, 4} {
		b, err := NewBuilder(rel, depth)
		require.NoError(t, err)
		assert.Equal(t, depth, b.Depth())
	}
	for _, depth := range []int{-1, 0, 2, 5} {
		_, err := NewBuilder(rel, depth)
		assert.ErrorIs(t, err, ErrInvalidDepth, "depth %d", depth)
	}
}

func TestNewBuilderNilResolverPanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = NewBuilder(nil, 3) })
}

func TestBuildDepthThree(t *testing.T) {
	b := newTestBuilder(t, newLineageStore(t), 3)
	tr := b.Build(1, types.NoID, types.NoID)

	require.Len(t, tr.Generations, 2)
	focal := tr.Focal()
	assert.Equal(t, Family{
		UnionID:  1,
		Known:    true,
		Partner1: Partner{ID: 1, Known: true},
		Partner2: Partner{ID: 2, Known: true},
		Children: []Child{
			{ID: 3},
			{ID: 4, Adopted: true, HasUnion: true},
		},
	}, focal)

	parents := tr.Generation(1)
	require.Len(t, parents, 2)
	assert.Equal(t, types.ID(2), parents[0].UnionID)
	assert.Equal(t, Partner{ID: 5, Known: true}, parents[0].Partner1)
	assert.Equal(t, Partner{ID: 6, Known: true}, parents[0].Partner2)
	assert.True(t, parents[1].Empty(), "Bruno has no recorded parents")
	assert.Nil(t, parents[0].Children, "only the focal union carries children")
}

func TestBuildDepthFour(t *testing.T) {
	b := newTestBuilder(t, newLineageStore(t), 4)
	tr := b.Build(1, types.NoID, types.NoID)

	require.Len(t, tr.Generations, 3)
	grand := tr.Generation(2)
	require.Len(t, grand, 4)
	assert.Equal(t, types.ID(3), grand[0].UnionID)
	assert.Equal(t, types.ID(7), grand[0].Partner1.ID)
	assert.Equal(t, types.ID(8), grand[0].Partner2.ID)
	for i := 1; i < 4; i++ {
		assert.True(t, grand[i].Empty(), "slot %d", i)
	}

	f, ok := tr.ParentsOf(1, 0, 1)
	require.True(t, ok)
	assert.Equal(t, grand[0], f)
	_, ok = tr.ParentsOf(2, 0, 1)
	assert.False(t, ok, "last generation has no parents row")
	_, ok = tr.ParentsOf(0, 0, 3)
	assert.False(t, ok)
}

func TestBuildKeepsGivenPartners(t *testing.T) {
	b := newTestBuilder(t, newLineageStore(t), 3)

	// The given partner keeps slot 2; the remaining union partner fills slot 1.
	tr := b.Build(1, types.NoID, 1)
	assert.Equal(t, Partner{ID: 2, Known: true}, tr.Focal().Partner1)
	assert.Equal(t, Partner{ID: 1, Known: true}, tr.Focal().Partner2)
	assert.True(t, tr.Generation(1)[0].Empty())
	assert.Equal(t, types.ID(2), tr.Generation(1)[1].UnionID)
}

func TestBuildSinglePerson(t *testing.T) {
	b := newTestBuilder(t, newLineageStore(t), 3)
	tr := b.Build(types.NoID, 1, types.NoID)

	focal := tr.Focal()
	assert.False(t, focal.Known)
	assert.Equal(t, Partner{ID: 1, Known: true}, focal.Partner1)
	assert.False(t, focal.Partner2.Known)
	assert.Empty(t, focal.Children)
	assert.Equal(t, types.ID(2), tr.Generation(1)[0].UnionID)
}

func TestBuildNoData(t *testing.T) {
	for _, depth := range []int{3, 4} {
		b := newTestBuilder(t, store.New(), depth)
		tr := b.Build(1, 2, 3)
		assert.True(t, tr.Empty())
		require.Len(t, tr.Generations, depth-1)
		for g, gen := range tr.Generations {
			assert.Len(t, gen, 1<<g)
		}
	}
}

func TestBuildUnionWithoutPartners(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Put(types.TableGroup, 1, types.Record{}))
	b := newTestBuilder(t, s, 3)

	focal := b.Build(1, types.NoID, types.NoID).Focal()
	assert.True(t, focal.Known)
	assert.False(t, focal.Partner1.Known)
	assert.False(t, focal.Partner2.Known)
}

func TestBuildTerminatesOnCycle(t *testing.T) {
	// Person 1 is a partner of union 1 and also its child.
	s := store.New()
	require.NoError(t, s.Put(types.TablePerson, 1, types.Record{}))
	require.NoError(t, s.Put(types.TableGroup, 1, types.Record{}))
	require.NoError(t, s.Put(types.TableGroupJunction, 1, types.Record{"group_id": 1, "reference_id": 1, "role": "partner"}))
	require.NoError(t, s.Put(types.TableGroupJunction, 2, types.Record{"group_id": 1, "reference_id": 1, "role": "child"}))
	b := newTestBuilder(t, s, 4)

	tr := b.Build(1, types.NoID, types.NoID)
	require.Len(t, tr.Generations, 3)
	assert.Equal(t, types.ID(1), tr.Generation(2)[0].UnionID)
}

func TestBuildHook(t *testing.T) {
	var built []Tree
	rel := relation.New(newLineageStore(t))
	b, err := NewBuilder(rel, 3, WithBuildHook(func(t Tree) { built = append(built, t) }))
	require.NoError(t, err)

	tr := b.Build(2, types.NoID, types.NoID)
	require.Len(t, built, 1)
	assert.Equal(t, tr, built[0])
}

func TestWithDepth(t *testing.T) {
	var built []Tree
	rel := relation.New(newLineageStore(t))
	b, err := NewBuilder(rel, 3, WithBuildHook(func(t Tree) { built = append(built, t) }))
	require.NoError(t, err)

	deeper, err := b.WithDepth(4)
	require.NoError(t, err)
	assert.Equal(t, 4, deeper.Depth())
	assert.Equal(t, 3, b.Depth())

	tr := deeper.Build(1, types.NoID, types.NoID)
	assert.Len(t, tr.Generations, 3)
	require.Len(t, built, 1)
	assert.Equal(t, 4, built[0].Depth)

	_, err = b.WithDepth(5)
	assert.ErrorIs(t, err, ErrInvalidDepth)
}

func TestBuildSeesMutations(t *testing.T) {
	s := newLineageStore(t)
	b := newTestBuilder(t, s, 3)
	require.False(t, b.Build(1, types.NoID, types.NoID).Generation(1)[1].Known)

	require.NoError(t, s.Put(types.TableGroup, 5, types.Record{}))
	require.NoError(t, s.Put(types.TableGroupJunction, 20, types.Record{"group_id": 5, "reference_id": 2, "role": "child"}))
	assert.Equal(t, types.ID(5), b.Build(1, types.NoID, types.NoID).Generation(1)[1].UnionID)
}
