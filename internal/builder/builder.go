// Package builder holds the pure geometry construction for the configurator:
// building shell, trade rack, and MEP item subtrees, with snap points emitted
// as a side-output into the caller's list. Builders own no state beyond a
// logger; inputs in, outputs out.
package builder

import (
	"fmt"
	"log/slog"

	"github.com/fabworks/rackforge/internal/geom"
	"github.com/fabworks/rackforge/internal/scene"
	"github.com/fabworks/rackforge/internal/snap"
)

// Builder constructs scene subtrees. It assumes well-formed parameters
// (validation happens in the form layer) and asserts the invariants: on a
// violated precondition it logs a diagnostic and returns an empty node,
// never a partial scene.
type Builder struct {
	log *slog.Logger
}

// New creates a Builder. A nil logger falls back to the default.
func New(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{log: log}
}

// addBox creates a box mesh under parent and emits its snap points: the 8
// corners as vertices and the 12 distinct edge midpoints.
func (b *Builder) addBox(parent *scene.Node, id, name string, center, size geom.Vec3, mat *scene.Material, snaps *snap.List) *scene.Node {
	geo := scene.Box(center, size)
	node := scene.NewMesh(id, name, geo, mat)
	parent.Add(node)
	if snaps != nil {
		emitBoxSnaps(geo, id, snaps)
	}
	return node
}

// boxEdges are the 12 edges of a box as vertex index pairs, matching the
// vertex order produced by scene.Box.
var boxEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0}, // back face
	{4, 5}, {5, 6}, {6, 7}, {7, 4}, // front face
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // connectors
}

func emitBoxSnaps(geo *scene.Geometry, originID string, snaps *snap.List) {
	for _, v := range geo.Vertices {
		snaps.AddVertex(v, originID)
	}
	for _, e := range boxEdges {
		snaps.AddEdge(geo.Vertices[e[0]].Midpoint(geo.Vertices[e[1]]), originID)
	}
}

// addCylinderX creates a cylinder mesh (axis along X) under parent and
// emits snap points for the end-cap centers and ring extremes.
func (b *Builder) addCylinderX(parent *scene.Node, id, name string, center geom.Vec3, radius, length float64, mat *scene.Material, snaps *snap.List) *scene.Node {
	geo := scene.CylinderX(center, radius, length, 12)
	node := scene.NewMesh(id, name, geo, mat)
	parent.Add(node)
	if snaps != nil {
		for _, x := range []float64{center.X - length/2, center.X + length/2} {
			snaps.AddVertex(geom.V(x, center.Y, center.Z), id)
			snaps.AddEdge(geom.V(x, center.Y+radius, center.Z), id)
			snaps.AddEdge(geom.V(x, center.Y-radius, center.Z), id)
			snaps.AddEdge(geom.V(x, center.Y, center.Z+radius), id)
			snaps.AddEdge(geom.V(x, center.Y, center.Z-radius), id)
		}
	}
	return node
}

func nodeID(prefix string, parts ...any) string {
	id := prefix
	for _, p := range parts {
		id += fmt.Sprintf("-%v", p)
	}
	return id
}
