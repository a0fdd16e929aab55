package snap

import (
	"math"
	"sync"

	"github.com/fabworks/rackforge/internal/geom"
)

// DefaultRadiusPx is the screen-space pick radius for snap queries.
const DefaultRadiusPx = 30.0

// Index answers screen-space nearest-snap queries against the current
// camera. The Scene Controller replaces the contents of one group at a time
// as subtrees rebuild; groups keep the other subtrees' points stable.
type Index struct {
	mu     sync.RWMutex
	groups map[string][]Point
}

// NewIndex returns an empty snap index.
func NewIndex() *Index {
	return &Index{groups: make(map[string][]Point)}
}

// ReplaceGroup swaps the snap points for one subtree (shell, rack, mep).
func (x *Index) ReplaceGroup(group string, points []Point) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if len(points) == 0 {
		delete(x.groups, group)
		return
	}
	copied := make([]Point, len(points))
	copy(copied, points)
	x.groups[group] = copied
}

// Clear drops every snap point.
func (x *Index) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.groups = make(map[string][]Point)
}

// Len returns the total number of indexed points.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n := 0
	for _, pts := range x.groups {
		n += len(pts)
	}
	return n
}

// All returns a copy of every indexed point.
func (x *Index) All() []Point {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var out []Point
	for _, pts := range x.groups {
		out = append(out, pts...)
	}
	return out
}

// FindClosest projects every snap point with the camera and returns the one
// nearest to (screenX, screenY) within radiusPx pixels. On an exact distance
// tie a vertex beats an edge midpoint.
func (x *Index) FindClosest(screenX, screenY float64, cam *geom.Camera, radiusPx float64) (Point, bool) {
	if cam == nil {
		return Point{}, false
	}
	if radiusPx <= 0 {
		radiusPx = DefaultRadiusPx
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	best := Point{}
	bestDist := math.Inf(1)
	found := false
	for _, pts := range x.groups {
		for _, p := range pts {
			sp, visible := cam.Project(p.Pos)
			if !visible {
				continue
			}
			dx := sp.X - screenX
			dy := sp.Y - screenY
			d := math.Hypot(dx, dy)
			if d > radiusPx {
				continue
			}
			if d < bestDist || (d == bestDist && p.Kind == KindVertex && best.Kind == KindEdge) {
				best = p
				bestDist = d
				found = true
			}
		}
	}
	return best, found
}
