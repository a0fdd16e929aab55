package rack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fabworks/rackforge/internal/units"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateErrors(t *testing.T) {
	t.Run("non positive dimension", func(t *testing.T) {
		p := Default()
		p.RackWidth = units.Dim(0, 0)
		require.ErrorIs(t, p.Validate(), ErrNonPositiveDimension)
	})
	t.Run("bay wider than rack", func(t *testing.T) {
		p := Default()
		p.BayWidth = units.Dim(20, 0)
		require.ErrorIs(t, p.Validate(), ErrBayWiderThanRack)
	})
	t.Run("tier count out of range", func(t *testing.T) {
		p := Default()
		p.TierCount = 6
		require.ErrorIs(t, p.Validate(), ErrTierCountOutOfRange)
	})
	t.Run("tier heights mismatch", func(t *testing.T) {
		p := Default()
		p.TierCount = 3
		require.ErrorIs(t, p.Validate(), ErrTierHeightsMismatch)
	})
	t.Run("unknown mount type", func(t *testing.T) {
		p := Default()
		p.MountType = "hanging"
		require.ErrorIs(t, p.Validate(), ErrUnknownMountType)
	})
}

func TestBays(t *testing.T) {
	p := Default() // 12' length, 3' bays
	b := p.Bays()
	require.Equal(t, 4, b.Count)
	require.False(t, b.HasCustomLastBay)

	p.RackLength = units.Dim(13, 6)
	b = p.Bays()
	require.Equal(t, 4, b.Count)
	require.True(t, b.HasCustomLastBay)
	require.InDelta(t, 1.5, b.LastBayWidth, 1e-9)
}

func TestTierBounds(t *testing.T) {
	p := Default()
	p.TierHeights = []units.Dimension{units.Dim(2, 0), units.Dim(3, 0)}

	bottom, top, ok := p.TierBounds(1)
	require.True(t, ok)
	require.InDelta(t, 0, bottom, 1e-12)
	require.InDelta(t, 2, top, 1e-12)

	bottom, top, ok = p.TierBounds(2)
	require.True(t, ok)
	require.InDelta(t, 2, bottom, 1e-12)
	require.InDelta(t, 5, top, 1e-12)

	_, _, ok = p.TierBounds(3)
	require.False(t, ok)
}

func TestResizeTiers(t *testing.T) {
	p := Default()
	p.ResizeTiers(4)
	require.Equal(t, 4, p.TierCount)
	require.Len(t, p.TierHeights, 4)
	require.Equal(t, units.Dim(2, 0), p.TierHeights[3])

	p.ResizeTiers(1)
	require.Equal(t, 1, p.TierCount)
	require.Len(t, p.TierHeights, 1)

	p.ResizeTiers(9)
	require.Equal(t, MaxTierCount, p.TierCount)
}

func TestBaseY(t *testing.T) {
	ctx := BuildingContext{CorridorHeight: 15, BeamDepth: 2}

	p := Default() // deck mount, 4' total, no top clearance
	require.InDelta(t, 9, p.BaseY(ctx), 1e-12)

	p.TopClearance = units.Dim(1, 0)
	require.InDelta(t, 8, p.BaseY(ctx), 1e-12)

	p.MountType = MountFloor
	require.InDelta(t, 0, p.BaseY(ctx), 1e-12)
}

func TestMemberSizes(t *testing.T) {
	p := Default()
	require.InDelta(t, 0.25, p.PostSizeFeet(), 1e-12) // standard 3"
	p.ColumnType = ClassHeavy
	require.InDelta(t, 4.0/12, p.PostSizeFeet(), 1e-12)
	p.BeamType = ClassLight
	require.InDelta(t, 2.0/12, p.BeamSizeFeet(), 1e-12)
}

func TestSavedConfigurationSortTime(t *testing.T) {
	saved := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := saved.Add(time.Hour)

	c := SavedConfiguration{SavedAt: saved}
	require.Equal(t, saved, c.SortTime())
	c.UpdatedAt = &updated
	require.Equal(t, updated, c.SortTime())
}
