package measure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fabworks/rackforge/internal/geom"
	"github.com/fabworks/rackforge/internal/snap"
)

func frontCamera(target geom.Vec3) *geom.Camera {
	eye := target.Add(geom.V(0, 0, 10))
	return geom.NewPerspectiveCamera(eye, target, geom.V(0, 1, 0), 0.9, 800, 600)
}

func indexWith(points ...geom.Vec3) *snap.Index {
	list := snap.NewList()
	for _, p := range points {
		list.AddVertex(p, "test")
	}
	idx := snap.NewIndex()
	idx.ReplaceGroup("test", list.Points())
	return idx
}

// clickAt projects a world point and clicks at its pixel position.
func clickAt(t *testing.T, tool *Tool, cam *geom.Camera, p geom.Vec3, shift bool) (Measurement, bool) {
	t.Helper()
	sp, visible := cam.Project(p)
	require.True(t, visible)
	return tool.Click(sp.X, sp.Y, shift)
}

func TestCreateMeasurementBetweenSnaps(t *testing.T) {
	idx := indexWith(geom.V(0, 0, 0), geom.V(3, 0, 0))
	cam := frontCamera(geom.V(1.5, 0, 0))

	var published [][]Measurement
	tool := NewTool(idx, SinkFunc(func(list []Measurement) {
		published = append(published, list)
	}), nil)
	tool.SetCamera(cam)
	tool.SetClock(func() time.Time { return time.Unix(1700000000, 0) })

	tool.Enable()
	require.Equal(t, StatePickingP1, tool.State())

	_, created := clickAt(t, tool, cam, geom.V(0, 0, 0), false)
	require.False(t, created)
	require.Equal(t, StatePickingP2, tool.State())

	m, created := clickAt(t, tool, cam, geom.V(3, 0, 0), false)
	require.True(t, created)
	require.InDelta(t, 3.0, m.Distance, 1e-9)
	require.Equal(t, "3'", m.Label())
	require.Equal(t, StatePickingP1, tool.State())
	require.Len(t, published, 1)
	require.Len(t, published[0], 1)
}

func TestSelectAndDelete(t *testing.T) {
	idx := indexWith(geom.V(0, 0, 0), geom.V(3, 0, 0))
	cam := frontCamera(geom.V(1.5, 0, 0))

	var last []Measurement
	tool := NewTool(idx, SinkFunc(func(list []Measurement) { last = list }), nil)
	tool.SetCamera(cam)
	tool.Enable()

	clickAt(t, tool, cam, geom.V(0, 0, 0), false)
	m, created := clickAt(t, tool, cam, geom.V(3, 0, 0), false)
	require.True(t, created)

	// Click the label anchor: off-snap, hits the measurement.
	clickAt(t, tool, cam, m.Anchor(), false)
	require.Equal(t, []int64{m.ID}, tool.Selected())

	tool.KeyPress("Delete", false)
	require.Empty(t, tool.Measurements())
	require.Empty(t, last)
}

func TestDeleteFallsBackToLastCreated(t *testing.T) {
	idx := indexWith(geom.V(0, 0, 0), geom.V(3, 0, 0), geom.V(0, 2, 0))
	cam := frontCamera(geom.V(1.5, 1, 0))
	tool := NewTool(idx, nil, nil)
	tool.SetCamera(cam)
	tool.Enable()

	clickAt(t, tool, cam, geom.V(0, 0, 0), false)
	clickAt(t, tool, cam, geom.V(3, 0, 0), false)
	clickAt(t, tool, cam, geom.V(0, 0, 0), false)
	clickAt(t, tool, cam, geom.V(0, 2, 0), false)
	require.Len(t, tool.Measurements(), 2)

	tool.KeyPress("Backspace", false)
	ms := tool.Measurements()
	require.Len(t, ms, 1)
	require.InDelta(t, 3.0, ms[0].Distance, 1e-9)
}

func TestClearAll(t *testing.T) {
	idx := indexWith(geom.V(0, 0, 0), geom.V(3, 0, 0))
	cam := frontCamera(geom.V(1.5, 0, 0))

	var last []Measurement
	tool := NewTool(idx, SinkFunc(func(list []Measurement) { last = list }), nil)
	tool.SetCamera(cam)
	tool.Enable()

	for i := 0; i < 3; i++ {
		clickAt(t, tool, cam, geom.V(0, 0, 0), false)
		clickAt(t, tool, cam, geom.V(3, 0, 0), false)
	}
	require.Len(t, tool.Measurements(), 3)

	tool.KeyPress("c", true)
	require.Empty(t, tool.Measurements())
	require.Empty(t, last)
}

func TestEscapeLadder(t *testing.T) {
	idx := indexWith(geom.V(0, 0, 0), geom.V(3, 0, 0))
	cam := frontCamera(geom.V(1.5, 0, 0))
	tool := NewTool(idx, nil, nil)
	tool.SetCamera(cam)
	tool.Enable()

	// Rung 1: cancel the partial pick.
	clickAt(t, tool, cam, geom.V(0, 0, 0), false)
	require.Equal(t, StatePickingP2, tool.State())
	tool.KeyPress("Escape", false)
	require.Equal(t, StatePickingP1, tool.State())

	// Rung 2: clear the selection.
	clickAt(t, tool, cam, geom.V(0, 0, 0), false)
	m, _ := clickAt(t, tool, cam, geom.V(3, 0, 0), false)
	clickAt(t, tool, cam, m.Anchor(), false)
	require.NotEmpty(t, tool.Selected())
	tool.KeyPress("Escape", false)
	require.Empty(t, tool.Selected())
	require.Equal(t, StatePickingP1, tool.State())

	// Rung 3: disable.
	tool.KeyPress("Escape", false)
	require.Equal(t, StateDisabled, tool.State())
	require.Len(t, tool.Measurements(), 1)
}

func TestAxisLockY(t *testing.T) {
	p1 := geom.V(1, 2, 3)
	idx := indexWith(p1)
	cam := frontCamera(p1)
	tool := NewTool(idx, nil, nil)
	tool.SetCamera(cam)
	tool.Enable()

	clickAt(t, tool, cam, p1, false)
	tool.SetAxisLock(AxisLock{Y: true})

	// Click toward a point two feet above and off to the side; only Y may
	// move, the rest clamps to the first endpoint.
	m, created := clickAt(t, tool, cam, geom.V(2.5, 4, 3), false)
	require.True(t, created)
	require.InDelta(t, 1.0, m.P2.X, 1e-6)
	require.InDelta(t, 3.0, m.P2.Z, 1e-6)
	require.InDelta(t, 4.0, m.P2.Y, 1e-6)
	require.InDelta(t, 2.0, m.Distance, 1e-6)
}

func TestAxisLockBeforeFirstPickHasNoEffect(t *testing.T) {
	idx := indexWith(geom.V(0, 0, 0), geom.V(3, 0, 0))
	cam := frontCamera(geom.V(1.5, 0, 0))
	tool := NewTool(idx, nil, nil)
	tool.SetCamera(cam)
	tool.SetAxisLock(AxisLock{X: true})
	tool.Enable()

	// First pick still snaps normally.
	clickAt(t, tool, cam, geom.V(0, 0, 0), false)
	require.Equal(t, StatePickingP2, tool.State())
}

func TestZeroDistanceFormatsAsZeroInches(t *testing.T) {
	p := geom.V(1, 1, 1)
	idx := indexWith(p)
	cam := frontCamera(p)
	tool := NewTool(idx, nil, nil)
	tool.SetCamera(cam)
	tool.Enable()

	clickAt(t, tool, cam, p, false)
	m, created := clickAt(t, tool, cam, p, false)
	require.True(t, created)
	require.Zero(t, m.Distance)
	require.Equal(t, `0"`, m.Label())
}

func TestHoverPreviewWhilePicking(t *testing.T) {
	idx := indexWith(geom.V(0, 0, 0), geom.V(3, 0, 0))
	cam := frontCamera(geom.V(1.5, 0, 0))
	tool := NewTool(idx, nil, nil)
	tool.SetCamera(cam)
	tool.Enable()

	sp, _ := cam.Project(geom.V(0, 0, 0))
	h := tool.PointerMove(sp.X, sp.Y)
	require.NotNil(t, h.Snap)
	require.Equal(t, snap.KindVertex, h.Snap.Kind)

	clickAt(t, tool, cam, geom.V(0, 0, 0), false)
	sp2, _ := cam.Project(geom.V(3, 0, 0))
	h = tool.PointerMove(sp2.X, sp2.Y)
	require.NotNil(t, h.Preview)
	require.NotNil(t, h.Distance)
	require.Equal(t, "3'", h.Label)
}

func TestRestoreAdvancesIDCounter(t *testing.T) {
	idx := indexWith(geom.V(0, 0, 0), geom.V(3, 0, 0))
	cam := frontCamera(geom.V(1.5, 0, 0))
	tool := NewTool(idx, nil, nil)
	tool.SetCamera(cam)

	tool.Restore([]Measurement{
		{ID: 7, P1: geom.V(0, 0, 0), P2: geom.V(3, 0, 0), CreatedAt: time.Unix(1, 0)},
	})
	ms := tool.Measurements()
	require.Len(t, ms, 1)
	require.InDelta(t, 3.0, ms[0].Distance, 1e-9)

	tool.Enable()
	clickAt(t, tool, cam, geom.V(0, 0, 0), false)
	m, _ := clickAt(t, tool, cam, geom.V(3, 0, 0), false)
	require.Equal(t, int64(8), m.ID)
}

func TestLabelsProjectAndHideBehindCamera(t *testing.T) {
	idx := indexWith(geom.V(0, 0, 0))
	cam := frontCamera(geom.V(0, 0, 0))
	tool := NewTool(idx, nil, nil)
	tool.SetCamera(cam)
	tool.Restore([]Measurement{
		{ID: 1, P1: geom.V(0, 0, 0), P2: geom.V(2, 0, 0)},
		{ID: 2, P1: geom.V(0, 0, 20), P2: geom.V(2, 0, 20)}, // behind the eye at z=10
	})

	labels := tool.Labels(cam)
	require.Len(t, labels, 2)
	require.True(t, labels[0].Visible)
	require.Equal(t, "2'", labels[0].Text)
	require.False(t, labels[1].Visible)
}
