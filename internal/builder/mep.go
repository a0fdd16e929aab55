package builder

import (
	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/geom"
	"github.com/fabworks/rackforge/internal/scene"
	"github.com/fabworks/rackforge/internal/snap"
)

// noTierDropFeet is how far below the rack base a No Tier item lands when
// it has no previous elevation to keep.
const noTierDropFeet = 1.0

// BuildMEPItem constructs the subtree for one MEP item, placed on the tier
// floor of its assigned tier. lastY carries the item's previous bottom
// elevation; it is only consulted for the No Tier bucket, so items whose
// tier vanished stay where they were. The returned bottom elevation is what
// the controller caches for the next rebuild.
func (b *Builder) BuildMEPItem(item mep.Item, rp rack.Params, baseY float64, lastY *float64, mats *scene.MaterialSet, snaps *snap.List) (*scene.Node, float64) {
	root := scene.NewGroup(nodeID("mep", item.ID), item.Name)
	if err := item.Validate(rp.TierCount); err != nil {
		b.log.Warn("mep item build skipped", "id", item.ID, "error", err)
		return root, baseY
	}

	yBottom := b.itemBottomY(item, rp, baseY, lastY)

	switch item.Type {
	case mep.TypeDuct:
		b.buildDuct(root, item, rp, yBottom, mats, snaps)
	case mep.TypePipe:
		b.buildPipes(root, item, rp, yBottom, mats, snaps)
	case mep.TypeConduit:
		b.buildConduits(root, item, rp, yBottom, mats, snaps)
	case mep.TypeCableTray:
		b.buildCableTray(root, item, rp, yBottom, mats, snaps)
	}
	return root, yBottom
}

// itemBottomY resolves the world Y the item rests on. Regular tiers put the
// item on the tier's bottom beam; AboveRack sits on the rack top, BelowRack
// hangs under the base.
func (b *Builder) itemBottomY(item mep.Item, rp rack.Params, baseY float64, lastY *float64) float64 {
	beam := rp.BeamSizeFeet()
	switch {
	case item.Tier >= 1:
		bottom, _, ok := rp.TierBounds(item.Tier)
		if ok {
			return baseY + bottom + beam
		}
	case item.Tier == mep.TierAbove:
		return baseY + rp.TotalHeightFeet()
	case item.Tier == mep.TierBelow:
		return baseY - itemHeightFeet(item)
	}
	// No Tier bucket: keep the last known elevation when there is one.
	if lastY != nil {
		return *lastY
	}
	return baseY - noTierDropFeet - itemHeightFeet(item)
}

// itemHeightFeet is the vertical extent of the item body in decimal feet.
func itemHeightFeet(item mep.Item) float64 {
	in := 0.0
	switch item.Type {
	case mep.TypeDuct:
		if item.Duct != nil {
			in = item.Duct.Height + 2*item.Duct.Insulation
		}
	case mep.TypePipe:
		if item.Pipe != nil {
			in = item.Pipe.Diameter
		}
	case mep.TypeConduit:
		if item.Conduit != nil {
			in = item.Conduit.Diameter
		}
	case mep.TypeCableTray:
		if item.Tray != nil {
			in = item.Tray.Height
		}
	}
	return in / inchesPerFoot
}

const inchesPerFoot = 12.0

func (b *Builder) buildDuct(root *scene.Node, item mep.Item, rp rack.Params, yBottom float64, mats *scene.MaterialSet, snaps *snap.List) {
	s := item.Duct
	w := s.Width / inchesPerFoot
	h := s.Height / inchesPerFoot
	t := s.Insulation / inchesPerFoot
	length := rp.RackLength.TotalFeet()
	cx := rp.Position.X
	cz := rp.Position.Z
	cy := yBottom + t + h/2 + s.Offset/inchesPerFoot

	b.addBox(root, nodeID("mep", item.ID, "duct"), "Duct",
		geom.V(cx, cy, cz), geom.V(length, h, w), mats.Duct.Tinted(item.Color), snaps)
	if t > 0 {
		b.addBox(root, nodeID("mep", item.ID, "insulation"), "Insulation",
			geom.V(cx, cy, cz), geom.V(length, h+2*t, w+2*t), mats.Insulation, snaps)
	}
}

func (b *Builder) buildPipes(root *scene.Node, item mep.Item, rp rack.Params, yBottom float64, mats *scene.MaterialSet, snaps *snap.List) {
	s := item.Pipe
	r := s.Diameter / inchesPerFoot / 2
	spacing := s.Spacing / inchesPerFoot
	length := rp.RackLength.TotalFeet()
	mat := mats.Pipe.Tinted(item.Color)
	for i, z := range runOffsets(s.Count, spacing, rp.Position.Z) {
		b.addCylinderX(root, nodeID("mep", item.ID, "pipe", i), "Pipe",
			geom.V(rp.Position.X, yBottom+r, z), r, length, mat, snaps)
	}
}

func (b *Builder) buildConduits(root *scene.Node, item mep.Item, rp rack.Params, yBottom float64, mats *scene.MaterialSet, snaps *snap.List) {
	s := item.Conduit
	r := s.Diameter / inchesPerFoot / 2
	spacing := s.Spacing / inchesPerFoot
	length := rp.RackLength.TotalFeet()
	mat := mats.Conduit.Tinted(item.Color)
	for i, z := range runOffsets(s.Count, spacing, rp.Position.Z) {
		b.addCylinderX(root, nodeID("mep", item.ID, "conduit", i), "Conduit",
			geom.V(rp.Position.X, yBottom+r, z), r, length, mat, snaps)
	}
}

// buildCableTray models the tray as an open trough: bottom plate plus two
// side rails running the rack length.
func (b *Builder) buildCableTray(root *scene.Node, item mep.Item, rp rack.Params, yBottom float64, mats *scene.MaterialSet, snaps *snap.List) {
	s := item.Tray
	w := s.Width / inchesPerFoot
	h := s.Height / inchesPerFoot
	plate := 0.5 / inchesPerFoot
	length := rp.RackLength.TotalFeet()
	cx := rp.Position.X
	cz := rp.Position.Z
	mat := mats.CableTray.Tinted(item.Color)

	b.addBox(root, nodeID("mep", item.ID, "tray-bottom"), "Cable Tray",
		geom.V(cx, yBottom+plate/2, cz), geom.V(length, plate, w), mat, snaps)
	for i, z := range []float64{cz - w/2 + plate/2, cz + w/2 - plate/2} {
		b.addBox(root, nodeID("mep", item.ID, "tray-rail", i), "Cable Tray",
			geom.V(cx, yBottom+h/2, z), geom.V(length, h, plate), mat, snaps)
	}
}

// runOffsets centers count parallel runs around centerZ with the given
// center-to-center spacing.
func runOffsets(count int, spacing, centerZ float64) []float64 {
	if count < 1 {
		count = 1
	}
	span := float64(count-1) * spacing
	out := make([]float64, count)
	for i := range out {
		out[i] = centerZ - span/2 + float64(i)*spacing
	}
	return out
}
