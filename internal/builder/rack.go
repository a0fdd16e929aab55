package builder

import (
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/geom"
	"github.com/fabworks/rackforge/internal/scene"
	"github.com/fabworks/rackforge/internal/snap"
)

// RackBuild is the result of a rack construction pass. Besides the subtree
// it carries the derived layout figures the controller and MEP placement
// need: the computed base elevation and the bay breakdown.
type RackBuild struct {
	Node     *scene.Node
	BaseY    float64 // world feet, bottom of the posts
	Bays     rack.Bays
	BeamRows int // tier boundaries, always TierCount+1 on success
}

// BuildRack constructs the structural rack subtree: vertical posts at every
// bay line on both sides, longitudinal beams at every tier boundary, and
// transverse beams tying the sides together at each post line. The rack is
// centered on its position with length along X and width along Z; deck
// mounts hang from the corridor structure, floor mounts sit on the slab.
func (b *Builder) BuildRack(p rack.Params, ctx rack.BuildingContext, mats *scene.MaterialSet, snaps *snap.List) RackBuild {
	root := scene.NewGroup("rack", "Trade Rack")
	if err := p.Validate(); err != nil {
		b.log.Warn("rack build skipped", "error", err)
		return RackBuild{Node: root}
	}

	length := p.RackLength.TotalFeet()
	width := p.RackWidth.TotalFeet()
	post := p.PostSizeFeet()
	beam := p.BeamSizeFeet()
	totalH := p.TotalHeightFeet()
	bays := p.Bays()
	baseY := p.BaseY(ctx) + p.Position.Y

	// World-space X of every post line, rack-centered then offset.
	lines := postLines(bays, length)
	for i := range lines {
		lines[i] += p.Position.X - length/2
	}
	sides := []float64{p.Position.Z - width/2 + post/2, p.Position.Z + width/2 - post/2}

	for i, x := range lines {
		for j, z := range sides {
			b.addBox(root, nodeID("rack-post", i, j), "Post",
				geom.V(x, baseY+totalH/2, z), geom.V(post, totalH, post), mats.Steel, snaps)
		}
	}

	// Beam rows at the bottom of the rack and at the top of every tier.
	rows := make([]float64, 0, p.TierCount+1)
	y := baseY
	rows = append(rows, y)
	for _, th := range p.TierHeights {
		y += th.TotalFeet()
		rows = append(rows, y)
	}

	for r, rowY := range rows {
		cy := rowY + beam/2
		if r == len(rows)-1 {
			cy = rowY - beam/2 // top row tucks under the rack's total height
		}
		for j, z := range sides {
			b.addBox(root, nodeID("rack-beam-long", r, j), "Beam",
				geom.V(p.Position.X, cy, z), geom.V(length, beam, post), mats.Steel, snaps)
		}
		for i, x := range lines {
			b.addBox(root, nodeID("rack-beam-cross", r, i), "Beam",
				geom.V(x, cy, p.Position.Z), geom.V(post, beam, width-2*post), mats.Steel, snaps)
		}
	}

	return RackBuild{Node: root, BaseY: baseY, Bays: bays, BeamRows: len(rows)}
}

// postLines returns the rack-local X offsets (from the left end) of every
// post line: one per bay boundary, with an extra closing line when the last
// bay is a residual.
func postLines(bays rack.Bays, length float64) []float64 {
	lines := make([]float64, 0, bays.Count+2)
	for i := 0; i <= bays.Count; i++ {
		lines = append(lines, float64(i)*bays.Width)
	}
	if bays.HasCustomLastBay {
		lines = append(lines, length)
	}
	return lines
}
