// Package controller implements the Scene Controller: the exclusive owner
// of the live scene graph. All subtree mutations flow through it; it
// disposes replaced geometry, swaps the matching snap index group, and
// notifies completion listeners. Calls are synchronous and serialized
// behind a mutex; dispose always completes before the next build begins.
package controller

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fabworks/rackforge/internal/builder"
	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/domain/rack"
	"github.com/fabworks/rackforge/internal/domain/shell"
	"github.com/fabworks/rackforge/internal/geom"
	"github.com/fabworks/rackforge/internal/metrics"
	"github.com/fabworks/rackforge/internal/scene"
	"github.com/fabworks/rackforge/internal/snap"
)

// Subtree names, used for snap index groups, metrics labels, and
// completion callbacks.
const (
	SubtreeShell = "shell"
	SubtreeRack  = "rack"
	SubtreeMEP   = "mep"
)

// RebuildListener is notified after a subtree rebuild completes. Replaces
// the timer-based refresh the panels used to rely on.
type RebuildListener func(subtree string, generation uint64)

// SceneController owns the renderer-facing scene graph.
type SceneController struct {
	mu    sync.Mutex
	log   *slog.Logger
	b     *builder.Builder
	mats  *scene.MaterialSet
	index *snap.Index
	met   *metrics.Metrics

	root      *scene.Node
	shellNode *scene.Node
	rackNode  *scene.Node
	mepGroup  *scene.Node

	shellParams shell.Params
	rackParams  rack.Params
	hasRack     bool
	rackBuild   builder.RackBuild

	mepItems []mep.Item
	mepNodes map[int64]*scene.Node
	mepLastY map[int64]float64

	camera     *geom.Camera
	generation uint64
	listeners  []RebuildListener
}

// New creates a controller with an empty scene root.
func New(b *builder.Builder, mats *scene.MaterialSet, index *snap.Index, log *slog.Logger, met *metrics.Metrics) *SceneController {
	if log == nil {
		log = slog.Default()
	}
	root := scene.NewGroup("root", "Scene")
	mepGroup := scene.NewGroup("mep-items", "MEP Items")
	root.Add(mepGroup)
	return &SceneController{
		log:      log,
		b:        b,
		mats:     mats,
		index:    index,
		met:      met,
		root:     root,
		mepGroup: mepGroup,
		mepNodes: make(map[int64]*scene.Node),
		mepLastY: make(map[int64]float64),
	}
}

// OnRebuild registers a completion listener.
func (c *SceneController) OnRebuild(l RebuildListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

func (c *SceneController) notifyLocked(subtree string) {
	gen := c.generation
	for _, l := range c.listeners {
		l(subtree, gen)
	}
}

// replaceChildLocked swaps old for fresh under the root, disposing old
// first.
func (c *SceneController) replaceChildLocked(old, fresh *scene.Node) {
	if old != nil {
		for i, child := range c.root.Children {
			if child == old {
				c.root.Children = append(c.root.Children[:i], c.root.Children[i+1:]...)
				break
			}
		}
		old.Dispose()
	}
	c.root.Add(fresh)
}

// UpdateShell rebuilds the building shell subtree. Floor-mounted racks get
// the floor-only shell.
func (c *SceneController) UpdateShell(p shell.Params) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shellParams = p
	c.rebuildShellLocked()
	c.notifyLocked(SubtreeShell)
}

func (c *SceneController) rebuildShellLocked() {
	start := time.Now()
	c.generation++

	snaps := snap.NewList()
	var fresh *scene.Node
	if c.hasRack && c.rackParams.MountType == rack.MountFloor {
		fresh = c.b.BuildFloorOnly(c.shellParams, c.mats, snaps)
	} else {
		fresh = c.b.BuildShell(c.shellParams, c.mats, snaps)
	}
	c.replaceChildLocked(c.shellNode, fresh)
	c.shellNode = fresh
	c.index.ReplaceGroup(SubtreeShell, snaps.Points())
	c.met.ObserveRebuild(SubtreeShell, time.Since(start))
	c.met.SetSnapPoints(c.index.Len())
}

// UpdateRack rebuilds the rack subtree and re-parents every MEP item, since
// tier elevations shift with the rack. A mount type change also swaps the
// shell between full and floor-only form.
func (c *SceneController) UpdateRack(p rack.Params) builder.RackBuild {
	c.mu.Lock()
	defer c.mu.Unlock()

	mountChanged := !c.hasRack || c.rackParams.MountType != p.MountType
	c.rackParams = p
	c.hasRack = true

	start := time.Now()
	c.generation++
	snaps := snap.NewList()
	build := c.b.BuildRack(p, c.buildingContextLocked(), c.mats, snaps)
	c.replaceChildLocked(c.rackNode, build.Node)
	c.rackNode = build.Node
	c.rackBuild = build
	c.index.ReplaceGroup(SubtreeRack, snaps.Points())
	c.met.ObserveRebuild(SubtreeRack, time.Since(start))

	if mountChanged {
		c.rebuildShellLocked()
	}
	c.rebuildMEPLocked()
	c.met.SetSnapPoints(c.index.Len())
	c.notifyLocked(SubtreeRack)
	return build
}

func (c *SceneController) buildingContextLocked() rack.BuildingContext {
	return rack.BuildingContext{
		CorridorHeight: c.shellParams.CorridorHeight.TotalFeet(),
		BeamDepth:      c.shellParams.BeamDepth.TotalFeet(),
	}
}

// SetMEPItems replaces the rendered MEP item set.
func (c *SceneController) SetMEPItems(items []mep.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mepItems = append(c.mepItems[:0], items...)
	c.rebuildMEPLocked()
	c.met.SetSnapPoints(c.index.Len())
	c.notifyLocked(SubtreeMEP)
}

// rebuildMEPLocked rebuilds the whole MEP group against the current rack.
// Items whose tier no longer exists render in the no-tier bucket at their
// last known elevation.
func (c *SceneController) rebuildMEPLocked() {
	start := time.Now()
	c.generation++

	c.mepGroup.Dispose()
	c.mepNodes = make(map[int64]*scene.Node)

	snaps := snap.NewList()
	baseY := c.rackBuild.BaseY
	for _, item := range c.mepItems {
		rendered := item
		if rendered.Tier >= 1 && rendered.Tier > c.rackParams.TierCount {
			c.log.Debug("mep item lost its tier", "id", item.ID, "tier", item.Tier)
			rendered.Tier = mep.NoTier
		}

		var lastY *float64
		if y, ok := c.mepLastY[item.ID]; ok {
			lastY = &y
		}
		node, yBottom := c.b.BuildMEPItem(rendered, c.rackParams, baseY, lastY, c.mats, snaps)
		c.mepLastY[item.ID] = yBottom
		c.mepGroup.Add(node)
		c.mepNodes[item.ID] = node
	}

	// Forget elevations for items that no longer exist.
	live := make(map[int64]bool, len(c.mepItems))
	for _, item := range c.mepItems {
		live[item.ID] = true
	}
	for id := range c.mepLastY {
		if !live[id] {
			delete(c.mepLastY, id)
		}
	}

	c.index.ReplaceGroup(SubtreeMEP, snaps.Points())
	c.met.ObserveRebuild(SubtreeMEP, time.Since(start))
}

// MEPNode returns the rendered subtree for one item id.
func (c *SceneController) MEPNode(id int64) (*scene.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.mepNodes[id]
	return n, ok
}

// SetVisibility toggles a subtree by name (shell, rack, mep) or a single
// MEP item by its node id.
func (c *SceneController) SetVisibility(target string, visible bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch target {
	case SubtreeShell:
		c.shellNode.SetVisible(visible)
	case SubtreeRack:
		c.rackNode.SetVisible(visible)
	case SubtreeMEP:
		c.mepGroup.SetVisible(visible)
	default:
		for _, node := range c.root.Children {
			if node.ID == target {
				node.SetVisible(visible)
				return true
			}
		}
		var found *scene.Node
		c.mepGroup.Traverse(func(n *scene.Node) {
			if n.ID == target {
				found = n
			}
		})
		if found == nil {
			return false
		}
		found.SetVisible(visible)
	}
	return true
}

// SetCamera installs the active camera pose.
func (c *SceneController) SetCamera(cam *geom.Camera) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.camera = cam
}

// Camera returns the active camera pose, if set.
func (c *SceneController) Camera() *geom.Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.camera
}

// SnapIndex returns the snap index the controller maintains.
func (c *SceneController) SnapIndex() *snap.Index {
	return c.index
}

// Root returns the scene root. The caller must treat it as read-only.
func (c *SceneController) Root() *scene.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.root
}

// RackBuild returns the layout figures from the last rack rebuild.
func (c *SceneController) RackBuild() builder.RackBuild {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rackBuild
}

// Generation returns the rebuild counter. A caller holding a stale
// generation knows its pending work was superseded.
func (c *SceneController) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}
