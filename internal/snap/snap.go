// Package snap maintains the set of snap points the measurement tool locks
// onto: primitive corners and edge midpoints emitted by the geometry
// builders. The index is rebuilt whenever a scene subtree is rebuilt.
package snap

import (
	"github.com/fabworks/rackforge/internal/geom"
)

// Kind tells the measurement tool which hover marker to show.
type Kind string

const (
	KindVertex Kind = "vertex"
	KindEdge   Kind = "edge"
)

// Point is a canonical snap location in world coordinates.
type Point struct {
	Pos      geom.Vec3 `json:"point"`
	Kind     Kind      `json:"type"`
	OriginID string    `json:"originId"`
}

// List collects snap points during a build, deduplicating on the 5-decimal
// quantized coordinate key. When a vertex and an edge midpoint coincide the
// vertex wins regardless of insertion order.
type List struct {
	points []Point
	byKey  map[string]int
}

// NewList returns an empty snap list.
func NewList() *List {
	return &List{byKey: make(map[string]int)}
}

// Add inserts a point, dropping exact duplicates. Double-counted points
// corrupt the measurement UX, so dedup here is mandatory.
func (l *List) Add(p Point) {
	key := p.Pos.QuantizedKey()
	if i, ok := l.byKey[key]; ok {
		if p.Kind == KindVertex && l.points[i].Kind == KindEdge {
			l.points[i] = p
		}
		return
	}
	l.byKey[key] = len(l.points)
	l.points = append(l.points, p)
}

// AddVertex is shorthand for Add with KindVertex.
func (l *List) AddVertex(pos geom.Vec3, originID string) {
	l.Add(Point{Pos: pos, Kind: KindVertex, OriginID: originID})
}

// AddEdge is shorthand for Add with KindEdge.
func (l *List) AddEdge(pos geom.Vec3, originID string) {
	l.Add(Point{Pos: pos, Kind: KindEdge, OriginID: originID})
}

// Clear empties the list for a rebuild.
func (l *List) Clear() {
	l.points = l.points[:0]
	l.byKey = make(map[string]int)
}

// Points returns the collected points. Callers must not mutate the slice.
func (l *List) Points() []Point { return l.points }

// Len returns the number of retained points.
func (l *List) Len() int { return len(l.points) }
