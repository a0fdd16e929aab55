package builder

import (
	"github.com/fabworks/rackforge/internal/domain/shell"
	"github.com/fabworks/rackforge/internal/geom"
	"github.com/fabworks/rackforge/internal/scene"
	"github.com/fabworks/rackforge/internal/snap"
)

// corridorRunFeet is the modeled length of the corridor run along X. The
// shell is a context volume around the rack, not a surveyed building, so a
// fixed run is enough.
const corridorRunFeet = 30.0

// BuildShell constructs the full building shell subtree: floor slab, four
// transparent walls, suspended ceiling, roof slab, and the structural beam
// band under the roof. The corridor runs along X, centered at the origin,
// with the floor top at y=0.
func (b *Builder) BuildShell(p shell.Params, mats *scene.MaterialSet, snaps *snap.List) *scene.Node {
	root := scene.NewGroup("shell", "Building Shell")
	if err := p.Validate(); err != nil {
		b.log.Warn("shell build skipped", "error", err)
		return root
	}

	w := p.CorridorWidth.TotalFeet()
	h := p.CorridorHeight.TotalFeet()
	run := corridorRunFeet
	slab := p.SlabDepth.TotalFeet()
	wall := p.WallThickness.TotalFeet()
	ceil := p.CeilingHeight.TotalFeet()
	ceilDepth := p.CeilingDepth.TotalFeet()
	beam := p.BeamDepth.TotalFeet()

	b.buildFloor(root, mats, snaps, w, run, slab)

	// Side walls along the run, then end caps closing the corridor.
	for i, z := range []float64{-(w + wall) / 2, (w + wall) / 2} {
		b.addBox(root, nodeID("shell-wall-side", i), "Wall",
			geom.V(0, h/2, z), geom.V(run, h, wall), mats.Wall, snaps)
	}
	for i, x := range []float64{-(run + wall) / 2, (run + wall) / 2} {
		b.addBox(root, nodeID("shell-wall-end", i), "Wall",
			geom.V(x, h/2, 0), geom.V(wall, h, w+2*wall), mats.Wall, snaps)
	}

	// Suspended ceiling tile layer at its own height, below the structure.
	b.addBox(root, "shell-ceiling", "Ceiling",
		geom.V(0, ceil-ceilDepth/2, 0), geom.V(run, ceilDepth, w), mats.Ceiling, snaps)

	// Roof slab with the beam band hanging under it.
	b.addBox(root, "shell-roof", "Roof Slab",
		geom.V(0, h+slab/2, 0), geom.V(run, slab, w+2*wall), mats.Floor, snaps)
	b.addBox(root, "shell-beam", "Structural Beam",
		geom.V(0, h-beam/2, 0), geom.V(run, beam, w), mats.Beam, snaps)

	return root
}

// BuildFloorOnly constructs the reduced shell used by floor-only mode: just
// the slab, no walls or overhead structure.
func (b *Builder) BuildFloorOnly(p shell.Params, mats *scene.MaterialSet, snaps *snap.List) *scene.Node {
	root := scene.NewGroup("shell", "Building Shell")
	if err := p.Validate(); err != nil {
		b.log.Warn("shell build skipped", "error", err)
		return root
	}
	b.buildFloor(root, mats, snaps, p.CorridorWidth.TotalFeet(), corridorRunFeet, p.SlabDepth.TotalFeet())
	return root
}

func (b *Builder) buildFloor(root *scene.Node, mats *scene.MaterialSet, snaps *snap.List, width, run, slab float64) {
	b.addBox(root, "shell-floor", "Floor Slab",
		geom.V(0, -slab/2, 0), geom.V(run, slab, width), mats.Floor, snaps)
}
