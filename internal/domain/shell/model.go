// Package shell models the building shell the rack corridor sits in.
package shell

import "github.com/fabworks/rackforge/internal/units"

// Params describes the corridor geometry around the rack. All dimensions are
// feet-and-inches pairs entered in the building form.
type Params struct {
	CorridorWidth  units.Dimension `json:"corridorWidth"`
	CorridorHeight units.Dimension `json:"corridorHeight"`
	CeilingHeight  units.Dimension `json:"ceilingHeight"`
	CeilingDepth   units.Dimension `json:"ceilingDepth"`
	SlabDepth      units.Dimension `json:"slabDepth"`
	WallThickness  units.Dimension `json:"wallThickness"`
	BeamDepth      units.Dimension `json:"beamDepth"`
}

// Default returns the shell parameters a fresh project starts with.
func Default() Params {
	return Params{
		CorridorWidth:  units.Dim(10, 0),
		CorridorHeight: units.Dim(15, 0),
		CeilingHeight:  units.Dim(9, 0),
		CeilingDepth:   units.Dim(0, 2),
		SlabDepth:      units.Dim(0, 8),
		WallThickness:  units.Dim(0, 6),
		BeamDepth:      units.Dim(2, 0),
	}
}

// Context is the subset of shell geometry the rack builder needs to anchor a
// deck-mounted rack vertically. It travels with every rack update.
type Context struct {
	CorridorHeight float64 `json:"corridorHeight"` // decimal feet
	BeamDepth      float64 `json:"beamDepth"`      // decimal feet
}

// BuildContext extracts the rack-anchoring context from the shell params.
func (p Params) BuildContext() Context {
	return Context{
		CorridorHeight: p.CorridorHeight.TotalFeet(),
		BeamDepth:      p.BeamDepth.TotalFeet(),
	}
}
