package scene

import (
	"math"

	"github.com/fabworks/rackforge/internal/geom"
)

// Geometry is an indexed triangle mesh with positions baked in world
// coordinates (decimal feet). Released geometries keep their metadata but
// drop vertex data, standing in for freed GPU buffers.
type Geometry struct {
	Vertices  []geom.Vec3 `json:"vertices"`
	Triangles [][3]int    `json:"triangles"`
	released  bool
}

// Release frees the vertex data. The Scene Controller calls this for every
// primitive it disposes.
func (g *Geometry) Release() {
	if g == nil || g.released {
		return
	}
	g.Vertices = nil
	g.Triangles = nil
	g.released = true
}

// Released reports whether the geometry's buffers have been freed.
func (g *Geometry) Released() bool { return g != nil && g.released }

// Box builds an axis-aligned rectangular prism centered at center with full
// extents size.
func Box(center, size geom.Vec3) *Geometry {
	hx, hy, hz := size.X/2, size.Y/2, size.Z/2
	v := []geom.Vec3{
		{X: center.X - hx, Y: center.Y - hy, Z: center.Z - hz},
		{X: center.X + hx, Y: center.Y - hy, Z: center.Z - hz},
		{X: center.X + hx, Y: center.Y + hy, Z: center.Z - hz},
		{X: center.X - hx, Y: center.Y + hy, Z: center.Z - hz},
		{X: center.X - hx, Y: center.Y - hy, Z: center.Z + hz},
		{X: center.X + hx, Y: center.Y - hy, Z: center.Z + hz},
		{X: center.X + hx, Y: center.Y + hy, Z: center.Z + hz},
		{X: center.X - hx, Y: center.Y + hy, Z: center.Z + hz},
	}
	t := [][3]int{
		{0, 2, 1}, {0, 3, 2}, // back
		{4, 5, 6}, {4, 6, 7}, // front
		{0, 1, 5}, {0, 5, 4}, // bottom
		{3, 7, 6}, {3, 6, 2}, // top
		{0, 4, 7}, {0, 7, 3}, // left
		{1, 2, 6}, {1, 6, 5}, // right
	}
	return &Geometry{Vertices: v, Triangles: t}
}

// Plane builds a thin horizontal quad centered at center spanning width (X)
// by depth (Z).
func Plane(center geom.Vec3, width, depth float64) *Geometry {
	hw, hd := width/2, depth/2
	v := []geom.Vec3{
		{X: center.X - hw, Y: center.Y, Z: center.Z - hd},
		{X: center.X + hw, Y: center.Y, Z: center.Z - hd},
		{X: center.X + hw, Y: center.Y, Z: center.Z + hd},
		{X: center.X - hw, Y: center.Y, Z: center.Z + hd},
	}
	t := [][3]int{{0, 1, 2}, {0, 2, 3}}
	return &Geometry{Vertices: v, Triangles: t}
}

// CylinderX builds a cylinder whose axis runs along +X, centered at center,
// with the given radius and length.
func CylinderX(center geom.Vec3, radius, length float64, segments int) *Geometry {
	if segments < 3 {
		segments = 12
	}
	hx := length / 2
	var v []geom.Vec3
	for _, x := range []float64{center.X - hx, center.X + hx} {
		for i := 0; i < segments; i++ {
			a := 2 * math.Pi * float64(i) / float64(segments)
			v = append(v, geom.Vec3{
				X: x,
				Y: center.Y + radius*math.Cos(a),
				Z: center.Z + radius*math.Sin(a),
			})
		}
	}
	// End-cap centers.
	v = append(v, geom.Vec3{X: center.X - hx, Y: center.Y, Z: center.Z})
	v = append(v, geom.Vec3{X: center.X + hx, Y: center.Y, Z: center.Z})

	var t [][3]int
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		// Side quad.
		t = append(t, [3]int{i, segments + i, segments + j})
		t = append(t, [3]int{i, segments + j, j})
		// Caps.
		t = append(t, [3]int{2 * segments, j, i})
		t = append(t, [3]int{2*segments + 1, segments + i, segments + j})
	}
	return &Geometry{Vertices: v, Triangles: t}
}
