package mcp

import (
	"context"
	"math"
	"math/rand"

	"github.com/fabworks/rackforge/internal/domain/manifest"
	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/geom"
	"github.com/fabworks/rackforge/internal/measure"
	"github.com/fabworks/rackforge/internal/optimizer"
	"github.com/fabworks/rackforge/internal/scene"
	"github.com/fabworks/rackforge/internal/units"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// handle wraps a tool body with metrics and domain error mapping.
func handle[In, Out any](s Services, name string, fn func(ctx context.Context, in In) (Out, error)) func(context.Context, *sdkmcp.CallToolRequest, In) (*sdkmcp.CallToolResult, Out, error) {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, Out, error) {
		out, err := fn(ctx, in)
		s.Metrics.IncToolCall(name, err)
		if err != nil {
			var zero Out
			return nil, zero, toolError(err)
		}
		return nil, out, nil
	}
}

func registerTools(server *sdkmcp.Server, s Services) {
	// Project
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get the full project manifest: building shell, racks, MEP items, measurements, and change history",
	}, handle(s, "get_project", func(ctx context.Context, _ GetProjectParams) (ProjectResult, error) {
		return ProjectResult{Manifest: s.Project.Manifest()}, nil
	}))

	// Building shell
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_building_shell",
		Description: "Update corridor dimensions and rebuild the shell subtree",
	}, handle(s, "update_building_shell", func(ctx context.Context, in UpdateBuildingShellParams) (ShellResult, error) {
		if err := s.Project.UpdateBuildingShell(ctx, in.Shell); err != nil {
			return ShellResult{}, err
		}
		s.Scene.UpdateShell(in.Shell)
		return ShellResult{Shell: in.Shell, Generation: s.Scene.Generation()}, nil
	}))

	// Rack
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_rack",
		Description: "Update the active rack's parameters and rebuild the rack subtree",
	}, handle(s, "update_rack", func(ctx context.Context, in UpdateRackParams) (RackResult, error) {
		if err := s.Project.UpdateRackParameters(ctx, in.Rack); err != nil {
			return RackResult{}, err
		}
		rb := s.Scene.UpdateRack(in.Rack)
		return RackResult{
			Rack:        in.Rack,
			BaseY:       rb.BaseY,
			TotalHeight: in.Rack.TotalHeightFeet(),
			Generation:  s.Scene.Generation(),
		}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "new_rack",
		Description: "Replace the active rack with a fresh parameter set, discarding temporary state",
	}, handle(s, "new_rack", func(ctx context.Context, in NewRackParams) (RackResult, error) {
		if err := s.Project.NewRack(ctx, in.Rack); err != nil {
			return RackResult{}, err
		}
		rb := s.Scene.UpdateRack(in.Rack)
		return RackResult{
			Rack:        in.Rack,
			BaseY:       rb.BaseY,
			TotalHeight: in.Rack.TotalHeightFeet(),
			Generation:  s.Scene.Generation(),
		}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_rack_position",
		Description: "Move the active rack to a new world position and record the move in the change history",
	}, handle(s, "set_rack_position", func(ctx context.Context, in SetRackPositionParams) (RackResult, error) {
		rp, ok := s.Project.ActiveRack()
		if !ok {
			return RackResult{}, manifest.ErrNoActiveRack
		}
		oldPos := rp.Position
		rp.Position = in.Position
		if err := s.Project.UpdateRackParameters(ctx, rp); err != nil {
			return RackResult{}, err
		}
		if err := s.Project.AddRackPositionChange(ctx, oldPos, in.Position, "active"); err != nil {
			return RackResult{}, err
		}
		rb := s.Scene.UpdateRack(rp)
		return RackResult{
			Rack:        rp,
			BaseY:       rb.BaseY,
			TotalHeight: rp.TotalHeightFeet(),
			Generation:  s.Scene.Generation(),
		}, nil
	}))

	// Saved configurations
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "save_configuration",
		Description: "Snapshot the active rack and its MEP items into the saved configuration list",
	}, handle(s, "save_configuration", func(ctx context.Context, in SaveConfigurationParams) (ConfigurationResult, error) {
		cfg, err := s.Project.SaveConfigurationToList(ctx, in.Name)
		if err != nil {
			return ConfigurationResult{}, err
		}
		return ConfigurationResult{Configuration: cfg}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_configuration",
		Description: "Insert or update a saved configuration, optionally loading it as the active rack",
	}, handle(s, "update_configuration", func(ctx context.Context, in UpdateConfigurationParams) (ConfigurationResult, error) {
		cfg, err := s.Project.UpdateTradeRackConfiguration(ctx, in.Configuration, in.MakeActive)
		if err != nil {
			return ConfigurationResult{}, err
		}
		if in.MakeActive {
			if rp, ok := s.Project.ActiveRack(); ok {
				s.Scene.UpdateRack(rp)
			}
		}
		return ConfigurationResult{Configuration: cfg}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "restore_configuration",
		Description: "Load a saved configuration as the active rack, including its MEP item snapshot",
	}, handle(s, "restore_configuration", func(ctx context.Context, in ConfigurationIDParams) (RestoreResult, error) {
		rp, items, err := s.Project.RestoreConfiguration(ctx, in.ID)
		if err != nil {
			return RestoreResult{}, err
		}
		s.Scene.UpdateRack(rp)
		s.Scene.SetMEPItems(items)
		return RestoreResult{Rack: rp, Items: items}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_active_configuration",
		Description: "Mark a saved configuration as active without replacing the MEP set",
	}, handle(s, "set_active_configuration", func(ctx context.Context, in ConfigurationIDParams) (RackResult, error) {
		if err := s.Project.SetActiveConfiguration(ctx, in.ID); err != nil {
			return RackResult{}, err
		}
		rp, _ := s.Project.ActiveRack()
		rb := s.Scene.UpdateRack(rp)
		return RackResult{
			Rack:        rp,
			BaseY:       rb.BaseY,
			TotalHeight: rp.TotalHeightFeet(),
			Generation:  s.Scene.Generation(),
		}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "rename_configuration",
		Description: "Rename a saved configuration",
	}, handle(s, "rename_configuration", func(ctx context.Context, in RenameConfigurationParams) (ConfigurationsResult, error) {
		if err := s.Project.RenameConfiguration(ctx, in.ID, in.Name); err != nil {
			return ConfigurationsResult{}, err
		}
		return listConfigurations(s), nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_configuration",
		Description: "Delete a saved configuration; the active rack keeps its parameters if it was loaded from it",
	}, handle(s, "delete_configuration", func(ctx context.Context, in ConfigurationIDParams) (ConfigurationsResult, error) {
		if err := s.Project.DeleteTradeRackConfiguration(ctx, in.ID); err != nil {
			return ConfigurationsResult{}, err
		}
		return listConfigurations(s), nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_configurations",
		Description: "List saved configurations, newest first",
	}, handle(s, "list_configurations", func(ctx context.Context, _ GetProjectParams) (ConfigurationsResult, error) {
		return listConfigurations(s), nil
	}))

	// Storage
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "sync_storage",
		Description: "Reconcile the manifest with its flat storage mirrors; repeated calls are no-ops",
	}, handle(s, "sync_storage", func(ctx context.Context, _ SyncStorageParams) (SyncResult, error) {
		if err := s.Project.SyncManifestWithLocalStorage(ctx); err != nil {
			return SyncResult{}, err
		}
		if err := s.Project.SyncMEPItemsWithLocalStorage(ctx); err != nil {
			return SyncResult{}, err
		}
		m := s.Project.Manifest()
		return SyncResult{
			Synced:         true,
			Configurations: len(m.TradeRacks.Configurations),
			MEPItems:       m.MEPItems.TotalCount,
		}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_change_history",
		Description: "Get recorded parameter and position changes, oldest first, capped at the retention window",
	}, handle(s, "get_change_history", func(ctx context.Context, in ChangeHistoryParams) (ChangeHistoryResult, error) {
		changes := s.Project.ChangeHistory()
		if in.Limit > 0 && len(changes) > in.Limit {
			changes = changes[len(changes)-in.Limit:]
		}
		return ChangeHistoryResult{Changes: changes}, nil
	}))

	// MEP items
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_mep_item",
		Description: "Add a duct, pipe, conduit, or cable tray to the active rack",
	}, handle(s, "add_mep_item", func(ctx context.Context, in AddMEPItemParams) (MEPItemResult, error) {
		item, err := s.MEP.AddMEPItem(ctx, in.Item)
		if err != nil {
			return MEPItemResult{}, err
		}
		s.Scene.SetMEPItems(s.MEP.MEPItems().All())
		return MEPItemResult{Item: item}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_mep_item",
		Description: "Remove one MEP item by ID and type",
	}, handle(s, "remove_mep_item", func(ctx context.Context, in RemoveMEPItemParams) (MEPItemsResult, error) {
		if err := s.MEP.RemoveMEPItem(ctx, in.ID, in.Type); err != nil {
			return MEPItemsResult{}, err
		}
		items := s.MEP.MEPItems().All()
		s.Scene.SetMEPItems(items)
		return MEPItemsResult{Items: items, Total: len(items)}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_all_mep_items",
		Description: "Remove every MEP item from the active rack",
	}, handle(s, "remove_all_mep_items", func(ctx context.Context, _ RemoveAllMEPItemsParams) (MEPItemsResult, error) {
		if err := s.MEP.RemoveAllMEPItems(ctx); err != nil {
			return MEPItemsResult{}, err
		}
		s.Scene.SetMEPItems(nil)
		return MEPItemsResult{}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_mep_items",
		Description: "Bulk-update MEP items with a scope: 'all', 'color_change', or a single item type name",
	}, handle(s, "update_mep_items", func(ctx context.Context, in UpdateMEPItemsParams) (MEPItemsResult, error) {
		if err := s.MEP.UpdateMEPItems(ctx, in.Items, in.Scope); err != nil {
			return MEPItemsResult{}, err
		}
		items := s.MEP.MEPItems().All()
		s.Scene.SetMEPItems(items)
		return MEPItemsResult{Items: items, Total: len(items)}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_mep_items",
		Description: "List MEP items grouped across all trades",
	}, handle(s, "list_mep_items", func(ctx context.Context, _ ListMEPItemsParams) (MEPItemsResult, error) {
		items := s.MEP.MEPItems().All()
		return MEPItemsResult{Items: items, Total: len(items)}, nil
	}))

	// Scene
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_scene",
		Description: "Get the current scene graph with mesh counts and the rebuild generation",
	}, handle(s, "get_scene", func(ctx context.Context, _ GetSceneParams) (SceneResult, error) {
		root := s.Scene.Root()
		return SceneResult{
			Nodes:      flattenScene(root),
			MeshCount:  root.MeshCount(),
			Generation: s.Scene.Generation(),
		}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_subtree_visibility",
		Description: "Show or hide a scene subtree: shell, rack, mep, or a node ID",
	}, handle(s, "set_subtree_visibility", func(ctx context.Context, in SetVisibilityParams) (VisibilityResult, error) {
		found := s.Scene.SetVisibility(in.Target, in.Visible)
		return VisibilityResult{Target: in.Target, Visible: in.Visible, Found: found}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_snap_points",
		Description: "Get all snap points currently in the index",
	}, handle(s, "get_snap_points", func(ctx context.Context, _ GetSnapPointsParams) (SnapPointsResult, error) {
		points := s.Scene.SnapIndex().All()
		return SnapPointsResult{Points: points, Total: len(points)}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_camera",
		Description: "Set the perspective camera used for snapping, picking, and label projection",
	}, handle(s, "set_camera", func(ctx context.Context, in SetCameraParams) (CameraResult, error) {
		fov := in.FovY
		if fov <= 0 {
			fov = math.Pi / 4
		}
		vw, vh := in.ViewportWidth, in.ViewportHeight
		if vw <= 0 {
			vw = 1280
		}
		if vh <= 0 {
			vh = 720
		}
		cam := geom.NewPerspectiveCamera(in.Eye, in.Target, geom.V(0, 1, 0), fov, vw, vh)
		s.Scene.SetCamera(cam)
		s.Measure.SetCamera(cam)
		return CameraResult{Eye: in.Eye, Target: in.Target}, nil
	}))

	// Measurement tool
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_measure_enabled",
		Description: "Enable or disable the measurement tool; disabling clears any partial pick",
	}, handle(s, "set_measure_enabled", func(ctx context.Context, in SetMeasureEnabledParams) (MeasureStateResult, error) {
		if in.Enabled {
			s.Measure.Enable()
		} else {
			s.Measure.Disable()
		}
		return measureState(s), nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "pointer_move",
		Description: "Move the crosshair; returns the snapped hover and a live preview while picking the second point",
	}, handle(s, "pointer_move", func(ctx context.Context, in PointerMoveParams) (HoverResult, error) {
		hover := s.Measure.PointerMove(in.X, in.Y)
		return HoverResult{Hover: hover, State: s.Measure.State()}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "pointer_click",
		Description: "Click at screen coordinates: picks endpoints on snap points, or toggles measurement selection off-snap",
	}, handle(s, "pointer_click", func(ctx context.Context, in PointerClickParams) (ClickResult, error) {
		m, created := s.Measure.Click(in.X, in.Y, in.Shift)
		s.Metrics.SetMeasurements(len(s.Measure.Measurements()))
		res := ClickResult{Created: created, State: s.Measure.State()}
		if created {
			res.Measurement = &m
		}
		return res, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "key_press",
		Description: "Send a key to the measurement tool: Escape, Delete, Ctrl-A, Ctrl-C",
	}, handle(s, "key_press", func(ctx context.Context, in KeyPressParams) (MeasurementsResult, error) {
		s.Measure.KeyPress(in.Key, in.Ctrl)
		s.Metrics.SetMeasurements(len(s.Measure.Measurements()))
		return MeasurementsResult{
			Measurements: s.Measure.Measurements(),
			Selected:     s.Measure.Selected(),
			State:        s.Measure.State(),
		}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_axis_lock",
		Description: "Constrain the next measurement endpoint: set axes vary, unset axes clamp to the first point",
	}, handle(s, "set_axis_lock", func(ctx context.Context, in SetAxisLockParams) (MeasureStateResult, error) {
		s.Measure.SetAxisLock(measure.AxisLock{X: in.X, Y: in.Y, Z: in.Z})
		return measureState(s), nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_measurements",
		Description: "List measurements with formatted inch labels and current selection",
	}, handle(s, "list_measurements", func(ctx context.Context, _ ListMeasurementsParams) (MeasurementsResult, error) {
		return MeasurementsResult{
			Measurements: s.Measure.Measurements(),
			Selected:     s.Measure.Selected(),
			State:        s.Measure.State(),
		}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_labels",
		Description: "Project measurement labels through the current camera into screen space",
	}, handle(s, "get_labels", func(ctx context.Context, _ GetLabelsParams) (LabelsResult, error) {
		return LabelsResult{Labels: s.Measure.Labels(s.Scene.Camera())}, nil
	}))

	// Optimizer
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "optimize_tier_packing",
		Description: "Suggest tier heights and per-tier placements for the current MEP set using a genetic packer",
	}, handle(s, "optimize_tier_packing", func(ctx context.Context, in OptimizeTierPackingParams) (OptimizeResult, error) {
		return optimizeTierPacking(ctx, s, in)
	}))
}

func listConfigurations(s Services) ConfigurationsResult {
	m := s.Project.Manifest()
	return ConfigurationsResult{
		Configurations: s.Project.Configurations(),
		ActiveID:       m.TradeRacks.ActiveConfigurationID,
	}
}

func measureState(s Services) MeasureStateResult {
	return MeasureStateResult{
		Enabled: s.Measure.Enabled(),
		State:   s.Measure.State(),
		Lock:    s.Measure.Lock(),
	}
}

// flattenScene walks the scene graph depth-first into a flat node list,
// linking children to parents by id.
func flattenScene(root *scene.Node) []SceneNode {
	var out []SceneNode
	var walk func(n *scene.Node, parent string)
	walk = func(n *scene.Node, parent string) {
		if n == nil {
			return
		}
		out = append(out, SceneNode{
			ID:       n.ID,
			ParentID: parent,
			Name:     n.Name,
			Kind:     n.Kind,
			Visible:  n.Visible,
			Mesh:     n.Mesh,
		})
		for _, c := range n.Children {
			walk(c, n.ID)
		}
	}
	walk(root, "")
	return out
}

// optimizeTierPacking maps each MEP item to a width by height rectangle in
// inches and packs them into candidate tiers bounded by the corridor's
// available height under the beam.
func optimizeTierPacking(ctx context.Context, s Services, in OptimizeTierPackingParams) (OptimizeResult, error) {
	rp, ok := s.Project.ActiveRack()
	if !ok {
		return OptimizeResult{}, manifest.ErrNoActiveRack
	}
	shellParams := s.Project.BuildingShell()

	rects, itemIDs := mepRects(s.MEP.MEPItems().All())

	maxTiers := in.MaxTiers
	if maxTiers <= 0 {
		maxTiers = rack.MaxTierCount
	}

	cfg := optimizer.DefaultConfig()
	cfg.ContainerWidth = rp.RackWidth.TotalInches()
	cfg.MaxTotalHeight = (shellParams.CorridorHeight.TotalFeet() -
		shellParams.BeamDepth.TotalFeet() -
		rp.TopClearance.TotalFeet()) * units.InchesPerFoot
	cfg.MaxContainers = maxTiers
	if in.Generations > 0 {
		cfg.Generations = in.Generations
	}
	if in.Population > 0 {
		cfg.PopulationSize = in.Population
	}

	var rng *rand.Rand
	if in.Seed != 0 {
		rng = rand.New(rand.NewSource(in.Seed))
	}

	opt, err := optimizer.New(rects, cfg, rng)
	if err != nil {
		return OptimizeResult{}, err
	}
	sol, err := opt.Run(ctx)
	if err != nil {
		return OptimizeResult{}, err
	}

	heights := make([]float64, len(sol.Containers))
	for i, c := range sol.Containers {
		heights[i] = c.Height
	}
	return OptimizeResult{Solution: sol, TierHeightsInches: heights, RectItemIDs: itemIDs}, nil
}

// mepRects converts MEP items to packing rectangles in inches. The returned
// item ID slice maps rect IDs (indices) back to MEP item IDs.
func mepRects(items []mep.Item) ([]optimizer.Rect, []int64) {
	rects := make([]optimizer.Rect, 0, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		var w, h float64
		switch item.Type {
		case mep.TypeDuct:
			if item.Duct == nil {
				continue
			}
			w = item.Duct.Width + 2*item.Duct.Insulation
			h = item.Duct.Height + 2*item.Duct.Insulation
		case mep.TypePipe:
			if item.Pipe == nil {
				continue
			}
			n := float64(item.Pipe.Count)
			if n < 1 {
				n = 1
			}
			w = item.Pipe.Diameter + (n-1)*item.Pipe.Spacing
			h = item.Pipe.Diameter
		case mep.TypeConduit:
			if item.Conduit == nil {
				continue
			}
			n := float64(item.Conduit.Count)
			if n < 1 {
				n = 1
			}
			w = item.Conduit.Diameter + (n-1)*item.Conduit.Spacing
			h = item.Conduit.Diameter
		case mep.TypeCableTray:
			if item.Tray == nil {
				continue
			}
			w = item.Tray.Width
			h = item.Tray.Height
		default:
			continue
		}
		if w <= 0 || h <= 0 {
			continue
		}
		rects = append(rects, optimizer.Rect{Width: w, Height: h})
		ids = append(ids, item.ID)
	}
	return rects, ids
}
