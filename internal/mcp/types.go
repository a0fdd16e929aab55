package mcp

import (
	"github.com/fabworks/rackforge/internal/domain/manifest"
	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/domain/shell"
	"github.com/fabworks/rackforge/internal/geom"
	"github.com/fabworks/rackforge/internal/measure"
	"github.com/fabworks/rackforge/internal/optimizer"
	"github.com/fabworks/rackforge/internal/scene"
	"github.com/fabworks/rackforge/internal/snap"
)

// Project

type GetProjectParams struct{}

type ProjectResult struct {
	Manifest manifest.Manifest `json:"manifest"`
}

// Building shell

type UpdateBuildingShellParams struct {
	Shell shell.Params `json:"shell"`
}

type ShellResult struct {
	Shell      shell.Params `json:"shell"`
	Generation uint64       `json:"generation"`
}

// Rack

type UpdateRackParams struct {
	Rack rack.Params `json:"rack"`
}

type NewRackParams struct {
	Rack rack.Params `json:"rack"`
}

type SetRackPositionParams struct {
	Position rack.Position `json:"position"`
}

type RackResult struct {
	Rack        rack.Params `json:"rack"`
	BaseY       float64     `json:"baseY"`
	TotalHeight float64     `json:"totalHeight"`
	Generation  uint64      `json:"generation"`
}

// Saved configurations

type SaveConfigurationParams struct {
	Name string `json:"name"`
}

type UpdateConfigurationParams struct {
	Configuration rack.SavedConfiguration `json:"configuration"`
	MakeActive    bool                    `json:"make_active,omitempty"`
}

type ConfigurationIDParams struct {
	ID int64 `json:"id"`
}

type RenameConfigurationParams struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ConfigurationResult struct {
	Configuration rack.SavedConfiguration `json:"configuration"`
}

type ConfigurationsResult struct {
	Configurations []rack.SavedConfiguration `json:"configurations"`
	ActiveID       *int64                    `json:"active_id,omitempty"`
}

type RestoreResult struct {
	Rack  rack.Params `json:"rack"`
	Items []mep.Item  `json:"items"`
}

// Storage

type SyncStorageParams struct{}

type SyncResult struct {
	Synced         bool `json:"synced"`
	Configurations int  `json:"configurations"`
	MEPItems       int  `json:"mep_items"`
}

type ChangeHistoryParams struct {
	Limit int `json:"limit,omitempty"`
}

type ChangeHistoryResult struct {
	Changes []manifest.ChangeRecord `json:"changes"`
}

// MEP items

type AddMEPItemParams struct {
	Item mep.Item `json:"item"`
}

type MEPItemResult struct {
	Item mep.Item `json:"item"`
}

type RemoveMEPItemParams struct {
	ID   int64        `json:"id"`
	Type mep.ItemType `json:"type"`
}

type RemoveAllMEPItemsParams struct{}

type UpdateMEPItemsParams struct {
	Items []mep.Item `json:"items"`
	Scope string     `json:"scope"`
}

type ListMEPItemsParams struct{}

type MEPItemsResult struct {
	Items []mep.Item `json:"items"`
	Total int        `json:"total"`
}

// Scene

type GetSceneParams struct{}

// SceneNode is one node of the scene graph flattened for transport. The
// tool schema is derived from the result type, so the recursive Children
// links become ParentID references instead.
type SceneNode struct {
	ID       string         `json:"id"`
	ParentID string         `json:"parentId,omitempty"`
	Name     string         `json:"name"`
	Kind     scene.NodeKind `json:"kind"`
	Visible  bool           `json:"visible"`
	Mesh     *scene.Mesh    `json:"mesh,omitempty"`
}

type SceneResult struct {
	Nodes      []SceneNode `json:"nodes"`
	MeshCount  int         `json:"mesh_count"`
	Generation uint64      `json:"generation"`
}

type SetVisibilityParams struct {
	Target  string `json:"target"`
	Visible bool   `json:"visible"`
}

type VisibilityResult struct {
	Target  string `json:"target"`
	Visible bool   `json:"visible"`
	Found   bool   `json:"found"`
}

type GetSnapPointsParams struct{}

type SnapPointsResult struct {
	Points []snap.Point `json:"points"`
	Total  int          `json:"total"`
}

type SetCameraParams struct {
	Eye            geom.Vec3 `json:"eye"`
	Target         geom.Vec3 `json:"target"`
	FovY           float64   `json:"fov_y,omitempty"`
	ViewportWidth  float64   `json:"viewport_width,omitempty"`
	ViewportHeight float64   `json:"viewport_height,omitempty"`
}

type CameraResult struct {
	Eye    geom.Vec3 `json:"eye"`
	Target geom.Vec3 `json:"target"`
}

// Measurement tool

type SetMeasureEnabledParams struct {
	Enabled bool `json:"enabled"`
}

type MeasureStateResult struct {
	Enabled bool             `json:"enabled"`
	State   measure.State    `json:"state"`
	Lock    measure.AxisLock `json:"lock"`
}

type PointerMoveParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type HoverResult struct {
	Hover measure.Hover `json:"hover"`
	State measure.State `json:"state"`
}

type PointerClickParams struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Shift bool    `json:"shift,omitempty"`
}

type ClickResult struct {
	Created     bool                 `json:"created"`
	Measurement *measure.Measurement `json:"measurement,omitempty"`
	State       measure.State        `json:"state"`
}

type KeyPressParams struct {
	Key  string `json:"key"`
	Ctrl bool   `json:"ctrl,omitempty"`
}

type SetAxisLockParams struct {
	X bool `json:"x,omitempty"`
	Y bool `json:"y,omitempty"`
	Z bool `json:"z,omitempty"`
}

type ListMeasurementsParams struct{}

type MeasurementsResult struct {
	Measurements []measure.Measurement `json:"measurements"`
	Selected     []int64               `json:"selected,omitempty"`
	State        measure.State         `json:"state"`
}

type GetLabelsParams struct{}

type LabelsResult struct {
	Labels []measure.Label `json:"labels"`
}

// Tier packing optimizer

type OptimizeTierPackingParams struct {
	Seed        int64 `json:"seed,omitempty"`
	Generations int   `json:"generations,omitempty"`
	Population  int   `json:"population,omitempty"`
	MaxTiers    int   `json:"max_tiers,omitempty"`
}

type OptimizeResult struct {
	Solution          optimizer.Solution `json:"solution"`
	TierHeightsInches []float64          `json:"tier_heights_inches"`
	RectItemIDs       []int64            `json:"rect_item_ids"`
}
