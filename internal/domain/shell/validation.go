package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrNonPositiveDimension indicates a shell dimension that is not > 0.
	ErrNonPositiveDimension = errors.New("shell dimension must be positive")
	// ErrCeilingAboveCorridor indicates ceilingHeight > corridorHeight.
	ErrCeilingAboveCorridor = errors.New("ceiling height exceeds corridor height")
)

// Validate checks the form-level invariants. Validation belongs at the form
// boundary; the geometry builder asserts these and refuses to build a
// partial shell when they fail.
func (p Params) Validate() error {
	dims := []struct {
		name string
		pos  bool
	}{
		{"corridorWidth", p.CorridorWidth.Positive()},
		{"corridorHeight", p.CorridorHeight.Positive()},
		{"ceilingHeight", p.CeilingHeight.Positive()},
		{"ceilingDepth", p.CeilingDepth.Positive()},
		{"slabDepth", p.SlabDepth.Positive()},
		{"wallThickness", p.WallThickness.Positive()},
		{"beamDepth", p.BeamDepth.Positive()},
	}
	for _, d := range dims {
		if !d.pos {
			return fmt.Errorf("%w: %s", ErrNonPositiveDimension, d.name)
		}
	}
	if p.CeilingHeight.TotalFeet() > p.CorridorHeight.TotalFeet() {
		return ErrCeilingAboveCorridor
	}
	return nil
}
