package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `rackforge configures prefabricated multi-trade rack assemblies inside a corridor shell.

Core concepts (keep this mental model small):
- Building shell: corridor geometry (width, corridor height, ceiling, deck beam). World units are decimal feet.
- Trade rack: posts, longitudinal beams, and cross beams laid out in bays and tiers. Deck-mounted racks hang below the corridor beam; floor-mounted racks stand at y=0.
- MEP items: ducts, pipes, conduits, and cable trays placed on tiers (or above/below the rack). Dimensions are inches.
- Saved configurations: named snapshots of rack parameters plus the MEP set; restoring one replaces the active rack.
- Measurements: snap-to-snap distances with construction-fraction inch labels; axis locks constrain the second endpoint.

Rules of engagement (default workflow):
1) Orient: call get_project for the full manifest.
2) Shape the space: update_building_shell, then update_rack. Every edit rebuilds only the affected scene subtree.
3) Route trades: add_mep_item / update_mep_items / remove_mep_item. Items keep their last elevation if their tier disappears.
4) Measure: set_measure_enabled, set_camera, pointer_move / pointer_click on snap points; key_press for Escape, Delete, Ctrl-A, Ctrl-C.
5) Snapshot: save_configuration, restore_configuration, list_configurations.
6) Optimize: optimize_tier_packing suggests tier heights for the current MEP set.

Transport notes:
- HTTP: pass session id via Mcp-Session-Id header.
- Stdio: pass session id via _meta.session_id when supported.

Docs (progressive disclosure):
- rackforge://docs/index (what to read when)
- rackforge://docs/concepts (units, mounts, tiers, snap points)
- rackforge://docs/workflows/configuring
- rackforge://docs/workflows/measuring
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "rackforge://docs/index",
		Name:        "docs_index",
		Title:       "rackforge docs index",
		Description: "Entry point for agent-facing docs: what exists, what to read, and known limitations.",
		Content: `# rackforge: Agent Docs Index

This server is designed for **progressive disclosure**: keep your baseline context small and load deeper docs only when needed.

## Quick start (no deep docs)

1. ` + "`get_project`" + ` to orient (shell, active rack, MEP items, history).
2. ` + "`update_building_shell`" + ` / ` + "`update_rack`" + ` to shape the assembly.
3. ` + "`add_mep_item`" + ` to route trades onto tiers.
4. ` + "`set_camera`" + ` + ` + "`set_measure_enabled`" + ` + ` + "`pointer_click`" + ` to verify clearances.
5. ` + "`save_configuration`" + ` to snapshot work you want to return to.

## Docs (read on demand)

- ` + "`rackforge://docs/concepts`" + ` — units, mount types, tier math, snap points.
- ` + "`rackforge://docs/workflows/configuring`" + ` — the shell/rack/MEP editing loop.
- ` + "`rackforge://docs/workflows/measuring`" + ` — snapping, axis locks, selection, and keys.

## Capabilities & intentional limitations

- The scene graph returned by ` + "`get_scene`" + ` can be large; prefer ` + "`get_snap_points`" + ` or mesh counts when orienting.
- ` + "`optimize_tier_packing`" + ` is stochastic; pass ` + "`seed`" + ` for reproducible suggestions.
- Storage failures are logged and never fail a mutation; in-memory state is authoritative.
`,
	},
	{
		URI:         "rackforge://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Units, mounts, tiers, and snapping",
		Description: "Glossary and invariants for the configurator's world model.",
		Content: `# Concepts

## Units

- World coordinates and structural dimensions are **decimal feet**. Parameter records use feet-and-inches pairs.
- MEP cross-sections (duct width, pipe diameter) are **inches**.
- Measurement labels format world distances as inches with construction fractions in sixteenths, e.g. ` + "`37 3/8\"`" + `.

## Mount types

- **deck**: the rack hangs from the corridor's deck beam. Its base elevation is
  corridorHeight - beamDepth - topClearance - totalRackHeight.
- **floor**: the rack stands at y=0 and only the floor slab is rendered around it.

## Tiers and bays

- 1 to 5 tiers, each with its own height. Tier 1 is at the bottom.
- Bays divide the rack length; a trailing partial bay appears when the length is not an exact multiple of the bay width.
- MEP items reference tiers by number. Sentinels: above-rack, below-rack, and no-tier. An item whose tier disappears keeps its last elevation.

## Snap points

- Every structural member contributes corner vertices and edge midpoints; vertex points win over edge points at the same location.
- Snapping is screen-space: the closest point within a 30 px radius of the pointer.
`,
	},
	{
		URI:         "rackforge://docs/workflows/configuring",
		Name:        "docs_workflow_configuring",
		Title:       "Configuring a rack assembly",
		Description: "The shell, rack, and MEP editing loop.",
		Content: `# Workflow: configuring

1. ` + "`update_building_shell`" + ` with corridor dimensions. The shell subtree rebuilds; rack and MEP stay put.
2. ` + "`update_rack`" + ` with length, width, bay width, tier count and heights, mount type, and member classes.
   - A rack edit rebuilds the rack and MEP subtrees, and the shell too when the mount type changes.
3. ` + "`add_mep_item`" + ` per duct, pipe run, conduit run, or cable tray. Offsets are vertical, in inches, relative to the tier floor.
4. ` + "`set_rack_position`" + ` to slide the assembly along the corridor; moves land in the change history.
5. ` + "`save_configuration`" + ` names a snapshot (rack + MEP). ` + "`restore_configuration`" + ` loads one, replacing the active rack and, when the snapshot carries items, the MEP set.
6. ` + "`sync_storage`" + ` reconciles the manifest with its flat mirrors after external writes; a second call is a no-op.
`,
	},
	{
		URI:         "rackforge://docs/workflows/measuring",
		Name:        "docs_workflow_measuring",
		Title:       "Measuring distances",
		Description: "Snapping, axis locks, selection, and keyboard handling.",
		Content: `# Workflow: measuring

1. ` + "`set_camera`" + ` so screen-space snapping has a projection.
2. ` + "`set_measure_enabled`" + ` with enabled=true. The tool starts waiting for the first point.
3. ` + "`pointer_move`" + ` returns the hovered snap point, plus a live preview distance while the second point is pending.
4. ` + "`pointer_click`" + ` on a snap point picks an endpoint. Two picks create a measurement and the tool returns to waiting for a first point.
5. Axis locks (` + "`set_axis_lock`" + `): set axes vary, unset axes clamp to the first point's coordinate. With one free axis the second click resolves against a camera-facing plane through the first point.
6. Off-snap clicks near an existing measurement toggle its selection; shift extends the selection.
7. Keys via ` + "`key_press`" + `:
   - Escape: cancel the partial pick, else clear the selection, else disable the tool. One step per press.
   - Delete: remove selected measurements, else the most recently created one.
   - Ctrl-A: select all. Ctrl-C: remove all.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
