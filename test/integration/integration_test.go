package integration_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/fabworks/rackforge/internal/builder"
	"github.com/fabworks/rackforge/internal/controller"
	"github.com/fabworks/rackforge/internal/domain/manifest"
	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/domain/shell"
	"github.com/fabworks/rackforge/internal/geom"
	"github.com/fabworks/rackforge/internal/measure"
	"github.com/fabworks/rackforge/internal/scene"
	"github.com/fabworks/rackforge/internal/snap"
	"github.com/fabworks/rackforge/internal/sqlite"
	"github.com/fabworks/rackforge/internal/units"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db    *sqlite.DB
	svc   *manifest.Service
	ctrl  *controller.SceneController
	index *snap.Index
	tool  *measure.Tool
}

func newTestEnv(t *testing.T, dbPath string) *testEnv {
	t.Helper()

	db, err := sqlite.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.Default()
	svc := manifest.NewService(sqlite.NewKVRepository(db), sqlite.NewChangeLogRepository(db), logger)
	_, err = svc.InitializeProject(context.Background())
	require.NoError(t, err)

	index := snap.NewIndex()
	ctrl := controller.New(builder.New(logger), scene.DefaultMaterials(), index, logger, nil)
	ctrl.UpdateShell(svc.BuildingShell())
	if rp, ok := svc.ActiveRack(); ok {
		ctrl.UpdateRack(rp)
	}
	ctrl.SetMEPItems(svc.MEPItems().All())

	sink := measure.SinkFunc(func(list []measure.Measurement) {
		_ = svc.UpdateMeasurements(context.Background(), list)
	})
	tool := measure.NewTool(index, sink, logger)
	tool.Restore(svc.Measurements())

	return &testEnv{db: db, svc: svc, ctrl: ctrl, index: index, tool: tool}
}

func TestFullConfiguratorFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, filepath.Join(t.TempDir(), "flow.db"))

	// Corridor: 15' tall with a 2' deck beam.
	sp := shell.Default()
	require.NoError(t, env.svc.UpdateBuildingShell(ctx, sp))
	env.ctrl.UpdateShell(sp)

	// Deck-mounted rack, two 2' tiers: base lands at 15 - 2 - 0 - 4 = 9.
	rp := rack.Default()
	require.NoError(t, env.svc.UpdateRackParameters(ctx, rp))
	rb := env.ctrl.UpdateRack(rp)
	require.InDelta(t, 9.0, rb.BaseY, 1e-9)

	// Route a duct on tier 1 and confirm the scene picked it up.
	item, err := env.svc.AddMEPItem(ctx, mep.Item{
		Type: mep.TypeDuct,
		Name: "Supply Air",
		Tier: 1,
		Duct: &mep.DuctSpec{Width: 18, Height: 12},
	})
	require.NoError(t, err)
	env.ctrl.SetMEPItems(env.svc.MEPItems().All())
	_, ok := env.ctrl.MEPNode(item.ID)
	require.True(t, ok)

	// Snapshot, mutate, restore.
	cfg, err := env.svc.SaveConfigurationToList(ctx, "Corridor A")
	require.NoError(t, err)

	rp.TierCount = 3
	rp.TierHeights = append(rp.TierHeights, units.Dim(2, 0))
	require.NoError(t, env.svc.UpdateRackParameters(ctx, rp))

	restored, items, err := env.svc.RestoreConfiguration(ctx, cfg.ID)
	require.NoError(t, err)
	require.Equal(t, 2, restored.TierCount)
	require.Len(t, items, 1)
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	env := newTestEnv(t, dbPath)

	rp := rack.Default()
	rp.Position.X = 7.5
	require.NoError(t, env.svc.UpdateRackParameters(ctx, rp))

	_, err := env.svc.AddMEPItem(ctx, mep.Item{
		Type: mep.TypePipe,
		Name: "CHW",
		Tier: 2,
		Pipe: &mep.PipeSpec{PipeType: "copper", Diameter: 2, Count: 2, Spacing: 8},
	})
	require.NoError(t, err)

	projectID := env.svc.Manifest().ProjectID
	require.NoError(t, env.db.Close())

	// Same database file, fresh process state.
	env2 := newTestEnv(t, dbPath)
	m := env2.svc.Manifest()
	require.Equal(t, projectID, m.ProjectID)
	require.NotNil(t, m.TradeRacks.Active)
	require.InDelta(t, 7.5, m.TradeRacks.Active.Position.X, 1e-9)
	require.Equal(t, 1, m.MEPItems.TotalCount)
}

func TestMeasurementsSurviveRestart(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "measure.db")

	env := newTestEnv(t, dbPath)
	list := []measure.Measurement{
		{ID: 1, P1: geom.V(0, 9, 0), P2: geom.V(3, 9, 0)},
	}
	require.NoError(t, env.svc.UpdateMeasurements(ctx, list))
	require.NoError(t, env.db.Close())

	env2 := newTestEnv(t, dbPath)
	restored := env2.tool.Measurements()
	require.Len(t, restored, 1)
	require.Equal(t, `3'`, restored[0].Label())
}
