package shell

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fabworks/rackforge/internal/units"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsNonPositiveDimension(t *testing.T) {
	p := Default()
	p.WallThickness = units.Dim(0, 0)
	err := p.Validate()
	require.ErrorIs(t, err, ErrNonPositiveDimension)
	require.Contains(t, err.Error(), "wallThickness")
}

func TestValidateRejectsCeilingAboveCorridor(t *testing.T) {
	p := Default()
	p.CeilingHeight = units.Dim(16, 0)
	require.ErrorIs(t, p.Validate(), ErrCeilingAboveCorridor)
}

func TestBuildContext(t *testing.T) {
	ctx := Default().BuildContext()
	require.InDelta(t, 15, ctx.CorridorHeight, 1e-12)
	require.InDelta(t, 2, ctx.BeamDepth, 1e-12)
}
