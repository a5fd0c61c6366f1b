package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

var (
	pointA = FocalPoint{PersonID: 1, UnionID: 10}
	pointB = FocalPoint{PersonID: 2, UnionID: 10}
	pointC = FocalPoint{PersonID: 3, UnionID: 11}
	pointD = FocalPoint{UnionID: 12}
)

func visit(h *History, points ...FocalPoint) {
	for _, p := range points {
		h.NavigateTo(p.PersonID, p.UnionID)
	}
}

func TestEmptyHistory(t *testing.T) {
	var h History

	_, ok := h.Current()
	assert.False(t, ok)
	assert.False(t, h.CanGoBack())
	assert.False(t, h.CanGoForward())
	assert.False(t, h.GoBack())
	assert.False(t, h.GoForward())
	assert.Equal(t, -1, h.Position())
	assert.Zero(t, h.Len())
	assert.Empty(t, h.Entries())
}

func TestNavigateToAppends(t *testing.T) {
	var h History
	visit(&h, pointA, pointB, pointC)

	cur, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, pointC, cur)
	assert.Equal(t, []FocalPoint{pointA, pointB, pointC}, h.Entries())
	assert.True(t, h.CanGoBack())
	assert.False(t, h.CanGoForward())
}

func TestNavigateToSamePointIsNoop(t *testing.T) {
	var h History
	require.True(t, h.NavigateTo(1, 10))
	assert.False(t, h.NavigateTo(1, 10))
	assert.Equal(t, 1, h.Len())

	assert.True(t, h.NavigateTo(1, types.NoID), "a different union is a different point")
	assert.Equal(t, 2, h.Len())
}

func TestNavigateAfterBackTruncatesForward(t *testing.T) {
	var h History
	visit(&h, pointA, pointB, pointC)

	require.True(t, h.GoBack())
	cur, _ := h.Current()
	require.Equal(t, pointB, cur)

	h.NavigateTo(pointD.PersonID, pointD.UnionID)
	assert.Equal(t, []FocalPoint{pointA, pointB, pointD}, h.Entries())
	assert.False(t, h.CanGoForward())
	assert.Equal(t, 2, h.Position())
}

func TestNavigateToCurrentAfterBackKeepsForward(t *testing.T) {
	var h History
	visit(&h, pointA, pointB, pointC)
	h.GoBack()

	assert.False(t, h.NavigateTo(pointB.PersonID, pointB.UnionID))
	assert.True(t, h.CanGoForward())
	assert.Equal(t, 3, h.Len())
}

func TestBackThenForwardRestores(t *testing.T) {
	for n := 2; n <= 5; n++ {
		points := []FocalPoint{pointA, pointB, pointC, pointD, {PersonID: 9}}[:n]
		for steps := 1; steps < n; steps++ {
			var h History
			visit(&h, points...)
			for i := 0; i < steps-1; i++ {
				h.GoBack()
			}
			before, _ := h.Current()

			require.True(t, h.GoBack())
			require.True(t, h.GoForward())
			after, _ := h.Current()
			assert.Equal(t, before, after, "n=%d steps=%d", n, steps)
		}
	}
}

func TestBoundsAreNoops(t *testing.T) {
	var h History
	visit(&h, pointA, pointB)

	assert.True(t, h.GoBack())
	assert.False(t, h.GoBack())
	assert.Equal(t, 0, h.Position())
	assert.True(t, h.GoForward())
	assert.False(t, h.GoForward())
	assert.Equal(t, 1, h.Position())
}

func TestEntriesIsCopy(t *testing.T) {
	var h History
	visit(&h, pointA)
	e := h.Entries()
	e[0] = pointD

	cur, _ := h.Current()
	assert.Equal(t, pointA, cur)
}

func TestChildrenOffset(t *testing.T) {
	var h History
	assert.Zero(t, h.ChildrenOffset(10))

	h.SetChildrenOffset(10, 3)
	h.SetChildrenOffset(11, 1)
	assert.Equal(t, 3, h.ChildrenOffset(10))
	assert.Equal(t, 1, h.ChildrenOffset(11))

	h.SetChildrenOffset(10, 0)
	assert.Zero(t, h.ChildrenOffset(10))
}

func TestHistoriesAreIndependent(t *testing.T) {
	var a, b History
	visit(&a, pointA, pointB)
	a.SetChildrenOffset(10, 2)
	visit(&b, pointC)

	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 1, b.Len())
	assert.Zero(t, b.ChildrenOffset(10))
}

func TestFocalPointString(t *testing.T) {
	assert.Equal(t, "person=1 union=10", pointA.String())
}
