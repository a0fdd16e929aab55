package snap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fabworks/rackforge/internal/geom"
)

func testCamera() *geom.Camera {
	return geom.NewPerspectiveCamera(geom.V(0, 5, 20), geom.V(0, 5, 0), geom.V(0, 1, 0), math.Pi/4, 800, 600)
}

func TestListDeduplicates(t *testing.T) {
	l := NewList()
	l.AddVertex(geom.V(1, 2, 3), "post-1")
	l.AddVertex(geom.V(1, 2, 3), "post-2")
	require.Equal(t, 1, l.Len())
	require.Equal(t, "post-1", l.Points()[0].OriginID)
}

func TestListVertexWinsOverEdge(t *testing.T) {
	// edge first, vertex upgrades in place
	l := NewList()
	l.AddEdge(geom.V(0, 9, 0), "bearer")
	l.AddVertex(geom.V(0, 9, 0), "post")
	require.Equal(t, 1, l.Len())
	require.Equal(t, KindVertex, l.Points()[0].Kind)

	// vertex first, edge is dropped
	l = NewList()
	l.AddVertex(geom.V(0, 9, 0), "post")
	l.AddEdge(geom.V(0, 9, 0), "bearer")
	require.Equal(t, 1, l.Len())
	require.Equal(t, KindVertex, l.Points()[0].Kind)
}

func TestListClear(t *testing.T) {
	l := NewList()
	l.AddVertex(geom.V(1, 0, 0), "a")
	l.Clear()
	require.Equal(t, 0, l.Len())
	l.AddVertex(geom.V(1, 0, 0), "a")
	require.Equal(t, 1, l.Len())
}

func TestIndexReplaceGroup(t *testing.T) {
	x := NewIndex()
	x.ReplaceGroup("rack", []Point{
		{Pos: geom.V(0, 5, 0), Kind: KindVertex, OriginID: "a"},
		{Pos: geom.V(1, 5, 0), Kind: KindVertex, OriginID: "b"},
	})
	x.ReplaceGroup("shell", []Point{
		{Pos: geom.V(2, 5, 0), Kind: KindEdge, OriginID: "c"},
	})
	require.Equal(t, 3, x.Len())

	// replacing one group leaves the other intact
	x.ReplaceGroup("rack", []Point{{Pos: geom.V(0, 6, 0), Kind: KindVertex, OriginID: "d"}})
	require.Equal(t, 2, x.Len())

	// empty replacement drops the group
	x.ReplaceGroup("shell", nil)
	require.Equal(t, 1, x.Len())
}

func TestFindClosestPicksNearest(t *testing.T) {
	cam := testCamera()
	x := NewIndex()
	x.ReplaceGroup("rack", []Point{
		{Pos: geom.V(0, 5, 0), Kind: KindVertex, OriginID: "center"},
		{Pos: geom.V(3, 5, 0), Kind: KindVertex, OriginID: "right"},
	})

	sp, visible := cam.Project(geom.V(0, 5, 0))
	require.True(t, visible)

	got, ok := x.FindClosest(sp.X+5, sp.Y, cam, DefaultRadiusPx)
	require.True(t, ok)
	require.Equal(t, "center", got.OriginID)
}

func TestFindClosestRespectsRadius(t *testing.T) {
	cam := testCamera()
	x := NewIndex()
	x.ReplaceGroup("rack", []Point{{Pos: geom.V(0, 5, 0), Kind: KindVertex, OriginID: "a"}})

	sp, _ := cam.Project(geom.V(0, 5, 0))
	_, ok := x.FindClosest(sp.X+100, sp.Y, cam, DefaultRadiusPx)
	require.False(t, ok)

	// zero radius falls back to the default
	got, ok := x.FindClosest(sp.X+10, sp.Y, cam, 0)
	require.True(t, ok)
	require.Equal(t, "a", got.OriginID)
}

func TestFindClosestNilCamera(t *testing.T) {
	x := NewIndex()
	x.ReplaceGroup("rack", []Point{{Pos: geom.V(0, 5, 0), Kind: KindVertex}})
	_, ok := x.FindClosest(100, 100, nil, DefaultRadiusPx)
	require.False(t, ok)
}

func TestFindClosestSkipsPointsBehindCamera(t *testing.T) {
	cam := testCamera()
	x := NewIndex()
	x.ReplaceGroup("rack", []Point{{Pos: geom.V(0, 5, 40), Kind: KindVertex, OriginID: "behind"}})
	_, ok := x.FindClosest(400, 300, cam, DefaultRadiusPx)
	require.False(t, ok)
}
