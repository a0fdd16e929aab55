package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/fabworks/rackforge/internal/builder"
	"github.com/fabworks/rackforge/internal/controller"
	"github.com/fabworks/rackforge/internal/domain/manifest"
	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/measure"
	"github.com/fabworks/rackforge/internal/scene"
	"github.com/fabworks/rackforge/internal/snap"
	"github.com/fabworks/rackforge/internal/sqlite"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func newTestServices(t *testing.T) Services {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())

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

	tool := measure.NewTool(index, measure.SinkFunc(func([]measure.Measurement) {}), logger)

	return Services{
		Project: svc,
		MEP:     svc,
		Scene:   ctrl,
		Measure: tool,
	}
}

func newTestSession(t *testing.T, s Services) *sdkmcp.ClientSession {
	t.Helper()

	server := NewServer(Config{Services: s, TransportMode: "stdio", Logger: slog.Default()})

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	ctx := context.Background()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientSession.Close() })

	return clientSession
}

func callTool[Out any](t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) Out {
	t.Helper()

	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.False(t, res.IsError, "tool %s returned error content", name)

	var out Out
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestGetProject(t *testing.T) {
	cs := newTestSession(t, newTestServices(t))

	out := callTool[ProjectResult](t, cs, "get_project", map[string]any{})
	require.NotEmpty(t, out.Manifest.ProjectID)
	require.NotNil(t, out.Manifest.TradeRacks.Active)
}

func TestUpdateRackRebuildsScene(t *testing.T) {
	s := newTestServices(t)
	cs := newTestSession(t, s)

	before := s.Scene.Generation()

	rp := rack.Default()
	rp.TierCount = 3
	rp.TierHeights = append(rp.TierHeights, rp.TierHeights[0])
	args := toArgs(t, UpdateRackParams{Rack: rp})

	out := callTool[RackResult](t, cs, "update_rack", args)
	require.Equal(t, 3, out.Rack.TierCount)
	require.InDelta(t, 6.0, out.TotalHeight, 1e-9)
	require.Greater(t, out.Generation, before)
}

func TestAddAndListMEPItems(t *testing.T) {
	cs := newTestSession(t, newTestServices(t))

	item := mep.Item{
		Type: mep.TypeDuct,
		Name: "Supply",
		Tier: 1,
		Duct: &mep.DuctSpec{Width: 18, Height: 12},
	}
	added := callTool[MEPItemResult](t, cs, "add_mep_item", toArgs(t, AddMEPItemParams{Item: item}))
	require.NotZero(t, added.Item.ID)

	listed := callTool[MEPItemsResult](t, cs, "list_mep_items", map[string]any{})
	require.Equal(t, 1, listed.Total)
	require.Equal(t, "Supply", listed.Items[0].Name)
}

func TestGetSceneReturnsFlattenedGraph(t *testing.T) {
	cs := newTestSession(t, newTestServices(t))

	out := callTool[SceneResult](t, cs, "get_scene", map[string]any{})
	require.NotEmpty(t, out.Nodes)
	require.Greater(t, out.MeshCount, 0)

	// The first node is the root; every other node links to a parent in
	// the list.
	ids := map[string]bool{out.Nodes[0].ID: true}
	require.Empty(t, out.Nodes[0].ParentID)
	for _, n := range out.Nodes[1:] {
		require.True(t, ids[n.ParentID], "node %s has unknown parent %q", n.ID, n.ParentID)
		ids[n.ID] = true
	}
}

func TestSaveAndRestoreConfiguration(t *testing.T) {
	cs := newTestSession(t, newTestServices(t))

	saved := callTool[ConfigurationResult](t, cs, "save_configuration", map[string]any{"name": "Baseline"})
	require.NotZero(t, saved.Configuration.ID)

	restored := callTool[RestoreResult](t, cs, "restore_configuration", map[string]any{"id": saved.Configuration.ID})
	require.Equal(t, saved.Configuration.Params.TierCount, restored.Rack.TierCount)

	list := callTool[ConfigurationsResult](t, cs, "list_configurations", map[string]any{})
	require.Len(t, list.Configurations, 1)
	require.NotNil(t, list.ActiveID)
}

func TestMeasureToolOverMCP(t *testing.T) {
	cs := newTestSession(t, newTestServices(t))

	callTool[CameraResult](t, cs, "set_camera", map[string]any{
		"eye":    map[string]any{"x": 0, "y": 10, "z": 30},
		"target": map[string]any{"x": 0, "y": 10, "z": 0},
	})
	state := callTool[MeasureStateResult](t, cs, "set_measure_enabled", map[string]any{"enabled": true})
	require.True(t, state.Enabled)
	require.Equal(t, measure.StatePickingP1, state.State)

	state = callTool[MeasureStateResult](t, cs, "set_axis_lock", map[string]any{"y": true})
	require.True(t, state.Lock.Y)

	out := callTool[MeasurementsResult](t, cs, "key_press", map[string]any{"key": "Escape"})
	require.Equal(t, measure.StatePickingP1, out.State)
}

func TestOptimizeTierPackingOverMCP(t *testing.T) {
	s := newTestServices(t)
	cs := newTestSession(t, s)

	_, err := s.MEP.AddMEPItem(context.Background(), mep.Item{
		Type: mep.TypeDuct, Name: "Supply", Tier: 1,
		Duct: &mep.DuctSpec{Width: 18, Height: 12},
	})
	require.NoError(t, err)
	_, err = s.MEP.AddMEPItem(context.Background(), mep.Item{
		Type: mep.TypePipe, Name: "CHW", Tier: 2,
		Pipe: &mep.PipeSpec{PipeType: "copper", Diameter: 2, Count: 3, Spacing: 6},
	})
	require.NoError(t, err)

	out := callTool[OptimizeResult](t, cs, "optimize_tier_packing", map[string]any{
		"seed":        int64(11),
		"generations": 40,
		"population":  30,
	})
	require.Equal(t, 2, out.Solution.Placed)
	require.Len(t, out.RectItemIDs, 2)
	require.NotEmpty(t, out.TierHeightsInches)
}

func TestToolErrorsCarryAPICodes(t *testing.T) {
	cs := newTestSession(t, newTestServices(t))

	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "restore_configuration",
		Arguments: map[string]any{"id": 999},
	})
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestMapError(t *testing.T) {
	apiErr := MapError(manifest.ErrConfigurationNotFound)
	require.NotNil(t, apiErr)
	require.Equal(t, "CONFIGURATION_NOT_FOUND", apiErr.Code)

	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(context.Canceled))
}

func TestMEPRects(t *testing.T) {
	items := []mep.Item{
		{ID: 1, Type: mep.TypeDuct, Duct: &mep.DuctSpec{Width: 18, Height: 12, Insulation: 1}},
		{ID: 2, Type: mep.TypePipe, Pipe: &mep.PipeSpec{Diameter: 2, Count: 3, Spacing: 6}},
		{ID: 3, Type: mep.TypeCableTray, Tray: &mep.TraySpec{Width: 12, Height: 4}},
		{ID: 4, Type: mep.TypeDuct}, // missing spec, skipped
	}
	rects, ids := mepRects(items)
	require.Len(t, rects, 3)
	require.Equal(t, []int64{1, 2, 3}, ids)
	require.InDelta(t, 20.0, rects[0].Width, 1e-9)  // insulation both sides
	require.InDelta(t, 14.0, rects[0].Height, 1e-9)
	require.InDelta(t, 14.0, rects[1].Width, 1e-9) // 2 + 2*6 center spacing
	require.InDelta(t, 2.0, rects[1].Height, 1e-9)
}

func toArgs(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}
