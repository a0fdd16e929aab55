package optimizer

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinimumHeightOverlappingPair(t *testing.T) {
	rects := []Rect{
		{ID: 0, Width: 4, Height: 3},
		{ID: 1, Width: 4, Height: 2},
	}
	c := &Container{
		Width:  10,
		Height: 10,
		Bottom: []Placement{{RectID: 0, X: 0}},
		Top:    []Placement{{RectID: 1, X: 2}},
	}
	require.InDelta(t, 5.0, c.MinimumHeight(rects), 1e-9)
}

func TestMinimumHeightDisjointColumns(t *testing.T) {
	rects := []Rect{
		{ID: 0, Width: 4, Height: 3},
		{ID: 1, Width: 4, Height: 2},
	}
	c := &Container{
		Width:  10,
		Height: 10,
		Bottom: []Placement{{RectID: 0, X: 0}},
		Top:    []Placement{{RectID: 1, X: 5}},
	}
	require.InDelta(t, 3.0, c.MinimumHeight(rects), 1e-9)
}

func TestMinimumHeightSingleEdge(t *testing.T) {
	rects := []Rect{{ID: 0, Width: 4, Height: 3}}
	c := &Container{
		Width:  10,
		Height: 10,
		Bottom: []Placement{{RectID: 0, X: 0}},
	}
	require.InDelta(t, 3.0, c.MinimumHeight(rects), 1e-9)
}

func TestHasClashes(t *testing.T) {
	rects := []Rect{
		{ID: 0, Width: 4, Height: 3},
		{ID: 1, Width: 4, Height: 2},
	}
	c := &Container{
		Width:  10,
		Bottom: []Placement{{RectID: 0, X: 0}},
		Top:    []Placement{{RectID: 1, X: 2}},
	}

	c.Height = 4.5
	require.True(t, c.hasClashes(rects))

	c.Height = 5.0
	require.False(t, c.hasClashes(rects))
}

func TestLeftmostGap(t *testing.T) {
	rects := []Rect{
		{ID: 0, Width: 3, Height: 1},
		{ID: 1, Width: 2, Height: 1},
		{ID: 2, Width: 2, Height: 1},
	}
	edge := []Placement{
		{RectID: 0, X: 0},
		{RectID: 1, X: 6},
	}

	x, ok := leftmostGap(rects, edge, rects[2], 10)
	require.True(t, ok)
	require.InDelta(t, 3.0, x, 1e-9)

	_, ok = leftmostGap(rects, edge, Rect{Width: 4}, 10)
	require.False(t, ok)
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, Config{ContainerWidth: 10, MaxTotalHeight: 40}, nil)
	require.ErrorIs(t, err, ErrNoRectangles)

	_, err = New([]Rect{{Width: 2, Height: 2}}, Config{}, nil)
	require.ErrorIs(t, err, ErrInvalidConstraints)
}

func TestRunPacksEverythingOnEasyInput(t *testing.T) {
	rects := []Rect{
		{Width: 12, Height: 8},
		{Width: 10, Height: 6},
		{Width: 8, Height: 4},
		{Width: 6, Height: 6},
	}
	cfg := DefaultConfig()
	cfg.ContainerWidth = 48
	cfg.MaxTotalHeight = 60
	cfg.MaxContainers = 3
	cfg.PopulationSize = 40
	cfg.Generations = 60

	opt, err := New(rects, cfg, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	sol, err := opt.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(rects), sol.Placed)
	require.Empty(t, sol.Unplaced)
	require.NotEmpty(t, sol.Containers)

	for i := range sol.Containers {
		c := &sol.Containers[i]
		require.False(t, c.hasClashes(opt.rects), "container %d has clashes", i)
		require.GreaterOrEqual(t, c.Height, c.MinimumHeight(opt.rects)-1e-9)
	}
}

func TestRunDeterministicUnderSeed(t *testing.T) {
	rects := []Rect{
		{Width: 12, Height: 8},
		{Width: 10, Height: 6},
		{Width: 8, Height: 4},
	}
	cfg := DefaultConfig()
	cfg.ContainerWidth = 48
	cfg.MaxTotalHeight = 60
	cfg.PopulationSize = 30
	cfg.Generations = 25

	run := func() Solution {
		opt, err := New(rects, cfg, rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		sol, err := opt.Run(context.Background())
		require.NoError(t, err)
		return sol
	}
	require.Equal(t, run(), run())
}

func TestRunHonorsCancellation(t *testing.T) {
	rects := []Rect{{Width: 12, Height: 8}, {Width: 10, Height: 6}}
	cfg := DefaultConfig()
	cfg.ContainerWidth = 48
	cfg.MaxTotalHeight = 60

	opt, err := New(rects, cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = opt.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
