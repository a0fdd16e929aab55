package builder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/domain/shell"
	"github.com/fabworks/rackforge/internal/scene"
	"github.com/fabworks/rackforge/internal/snap"
	"github.com/fabworks/rackforge/internal/units"
)

func defaultContext() rack.BuildingContext {
	sh := shell.Default()
	return rack.BuildingContext{
		CorridorHeight: sh.CorridorHeight.TotalFeet(),
		BeamDepth:      sh.BeamDepth.TotalFeet(),
	}
}

func TestBuildRackDeckMountBaseY(t *testing.T) {
	b := New(nil)
	// 15' corridor, 2' beam, no clearance, two 2' tiers: base lands at 9'.
	build := b.BuildRack(rack.Default(), defaultContext(), scene.DefaultMaterials(), snap.NewList())
	require.InDelta(t, 9.0, build.BaseY, 1e-9)
	require.Equal(t, 3, build.BeamRows)
	require.Equal(t, 4, build.Bays.Count)
	require.False(t, build.Bays.HasCustomLastBay)
	require.Greater(t, build.Node.MeshCount(), 0)
}

func TestBuildRackFloorMount(t *testing.T) {
	b := New(nil)
	p := rack.Default()
	p.MountType = rack.MountFloor
	build := b.BuildRack(p, defaultContext(), scene.DefaultMaterials(), snap.NewList())
	require.Zero(t, build.BaseY)
}

func TestBuildRackPartialLastBay(t *testing.T) {
	b := New(nil)
	p := rack.Default()
	p.RackLength = units.Dim(10, 0) // 10' at 3' bays: 3 full + 1' residual
	build := b.BuildRack(p, defaultContext(), scene.DefaultMaterials(), snap.NewList())
	require.Equal(t, 3, build.Bays.Count)
	require.True(t, build.Bays.HasCustomLastBay)
	require.InDelta(t, 1.0, build.Bays.LastBayWidth, 1e-9)

	// Post lines: 0,3,6,9 plus the closing line at 10.
	lines := postLines(build.Bays, 10)
	require.Equal(t, []float64{0, 3, 6, 9, 10}, lines)
}

func TestBuildRackInvalidParamsEmpty(t *testing.T) {
	b := New(nil)
	p := rack.Default()
	p.BayWidth = units.Dim(20, 0) // wider than the rack
	build := b.BuildRack(p, defaultContext(), scene.DefaultMaterials(), snap.NewList())
	require.True(t, build.Node.IsEmpty())
	require.Zero(t, build.BeamRows)
}

func TestBuildShellSubtree(t *testing.T) {
	b := New(nil)
	snaps := snap.NewList()
	node := b.BuildShell(shell.Default(), scene.DefaultMaterials(), snaps)
	// Floor, four walls, ceiling, roof, beam band.
	require.Equal(t, 8, node.MeshCount())
	require.Greater(t, snaps.Len(), 0)

	floorOnly := b.BuildFloorOnly(shell.Default(), scene.DefaultMaterials(), snap.NewList())
	require.Equal(t, 1, floorOnly.MeshCount())
}

func TestSnapDedupAcrossMembers(t *testing.T) {
	b := New(nil)
	snaps := snap.NewList()
	b.BuildRack(rack.Default(), defaultContext(), scene.DefaultMaterials(), snaps)

	seen := map[string]bool{}
	for _, p := range snaps.Points() {
		key := p.Pos.QuantizedKey()
		require.False(t, seen[key], "duplicate snap point at %v", p.Pos)
		seen[key] = true
	}
}

func TestBuildDuctOnTier(t *testing.T) {
	b := New(nil)
	p := rack.Default()
	item := mep.Item{
		ID:   1,
		Type: mep.TypeDuct,
		Tier: 2,
		Duct: &mep.DuctSpec{Width: 12, Height: 8},
	}
	node, yBottom := b.BuildMEPItem(item, p, 9.0, nil, scene.DefaultMaterials(), snap.NewList())
	// Tier 2 floor is base + 2' tier + 3" beam.
	require.InDelta(t, 9.0+2.0+0.25, yBottom, 1e-9)
	require.Equal(t, 1, node.MeshCount())
}

func TestBuildDuctWithInsulation(t *testing.T) {
	b := New(nil)
	item := mep.Item{
		ID:   2,
		Type: mep.TypeDuct,
		Tier: 1,
		Duct: &mep.DuctSpec{Width: 12, Height: 8, Insulation: 1},
	}
	node, _ := b.BuildMEPItem(item, rack.Default(), 9.0, nil, scene.DefaultMaterials(), snap.NewList())
	require.Equal(t, 2, node.MeshCount())
}

func TestBuildPipesRunCount(t *testing.T) {
	b := New(nil)
	item := mep.Item{
		ID:   3,
		Type: mep.TypePipe,
		Tier: 1,
		Pipe: &mep.PipeSpec{PipeType: "copper", Diameter: 2, Count: 3, Spacing: 4},
	}
	node, _ := b.BuildMEPItem(item, rack.Default(), 9.0, nil, scene.DefaultMaterials(), snap.NewList())
	require.Equal(t, 3, node.MeshCount())
}

func TestBuildMEPNoTierKeepsLastElevation(t *testing.T) {
	b := New(nil)
	item := mep.Item{
		ID:   4,
		Type: mep.TypeCableTray,
		Tier: mep.NoTier,
		Tray: &mep.TraySpec{TrayType: mep.TrayLadder, Width: 12, Height: 4},
	}
	last := 11.25
	_, yBottom := b.BuildMEPItem(item, rack.Default(), 9.0, &last, scene.DefaultMaterials(), snap.NewList())
	require.Equal(t, last, yBottom)

	// Without a remembered elevation it drops below the rack base.
	_, yBottom = b.BuildMEPItem(item, rack.Default(), 9.0, nil, scene.DefaultMaterials(), snap.NewList())
	require.Less(t, yBottom, 9.0)
}

func TestBuildMEPInvalidSpecEmpty(t *testing.T) {
	b := New(nil)
	item := mep.Item{ID: 5, Type: mep.TypeDuct, Tier: 1} // nil spec
	node, _ := b.BuildMEPItem(item, rack.Default(), 9.0, nil, scene.DefaultMaterials(), snap.NewList())
	require.True(t, node.IsEmpty())
}

func TestRunOffsetsCentered(t *testing.T) {
	offsets := runOffsets(3, 0.5, 2.0)
	require.Equal(t, []float64{1.5, 2.0, 2.5}, offsets)
	require.Equal(t, []float64{2.0}, runOffsets(1, 0.5, 2.0))
}
