package geom

import "math"

// Ray is a half-line in world space. Dir is unit length.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// Plane is defined by a unit normal and any point on the plane.
type Plane struct {
	Normal Vec3
	Point  Vec3
}

// PlaneThrough builds a plane with the given normal passing through p.
func PlaneThrough(normal, p Vec3) Plane {
	return Plane{Normal: normal.Normalize(), Point: p}
}

// GroundPlane is the y=0 fallback plane used when an intersection plane is
// parallel to the pick ray.
func GroundPlane() Plane {
	return Plane{Normal: V(0, 1, 0), Point: Vec3{}}
}

// IntersectPlane returns the point where the ray crosses the plane. The
// boolean is false when the ray is parallel to the plane or the hit lies
// behind the ray origin.
func (r Ray) IntersectPlane(pl Plane) (Vec3, bool) {
	denom := r.Dir.Dot(pl.Normal)
	if math.Abs(denom) < 1e-9 {
		return Vec3{}, false
	}
	t := pl.Point.Sub(r.Origin).Dot(pl.Normal) / denom
	if t < 0 {
		return Vec3{}, false
	}
	return r.Origin.Add(r.Dir.Scale(t)), true
}

// ClosestPointOnSegment returns the point on segment [a,b] closest to p.
func ClosestPointOnSegment(p, a, b Vec3) Vec3 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return a
	}
	t := p.Sub(a).Dot(ab) / lenSq
	t = math.Max(0, math.Min(1, t))
	return a.Add(ab.Scale(t))
}
