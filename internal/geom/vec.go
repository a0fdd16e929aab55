// Package geom provides the small amount of linear algebra the configurator
// core needs: vectors, 4x4 matrices, rays, planes, and camera projection.
// World coordinates are decimal feet, Y up.
package geom

import (
	"fmt"
	"math"
)

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec3) DistanceTo(o Vec3) float64 { return v.Sub(o).Length() }

// Normalize returns the unit vector, or the zero vector unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Midpoint returns the point halfway between v and o.
func (v Vec3) Midpoint(o Vec3) Vec3 {
	return Vec3{(v.X + o.X) / 2, (v.Y + o.Y) / 2, (v.Z + o.Z) / 2}
}

// QuantizedKey collapses a point to a 5-decimal string key. Snap point
// deduplication relies on points that agree to 5 decimals on all axes
// mapping to the same key.
func (v Vec3) QuantizedKey() string {
	return fmt.Sprintf("%.5f,%.5f,%.5f", quantize(v.X), quantize(v.Y), quantize(v.Z))
}

func quantize(f float64) float64 {
	r := math.Round(f*1e5) / 1e5
	if r == 0 {
		return 0 // normalize -0
	}
	return r
}
