package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVec3Basics(t *testing.T) {
	a := V(1, 2, 3)
	b := V(4, 5, 6)
	require.Equal(t, V(5, 7, 9), a.Add(b))
	require.Equal(t, V(-3, -3, -3), a.Sub(b))
	require.InDelta(t, 32, a.Dot(b), 1e-12)
	require.Equal(t, V(0, 0, 1), V(1, 0, 0).Cross(V(0, 1, 0)))
	require.InDelta(t, 5, V(3, 4, 0).Length(), 1e-12)
	require.InDelta(t, 1, V(2, -7, 0.5).Normalize().Length(), 1e-12)
	require.Equal(t, Vec3{}, Vec3{}.Normalize())
	require.Equal(t, V(2.5, 3.5, 4.5), a.Midpoint(b))
}

func TestQuantizedKeyNormalizesNegativeZero(t *testing.T) {
	require.Equal(t, V(0, 0, 0).QuantizedKey(), V(-0.0000001, 0, 0).QuantizedKey())
	require.NotEqual(t, V(0, 0, 0).QuantizedKey(), V(0.001, 0, 0).QuantizedKey())
}

func TestMat4InverseRoundTrip(t *testing.T) {
	view := LookAt(V(3, 4, 5), V(0, 1, 0), V(0, 1, 0))
	inv, ok := view.Inverse()
	require.True(t, ok)
	p, _ := view.Mul(inv).TransformPoint(V(1, 2, 3))
	require.InDelta(t, 1, p.X, 1e-9)
	require.InDelta(t, 2, p.Y, 1e-9)
	require.InDelta(t, 3, p.Z, 1e-9)
}

func TestCameraProjectCentersTarget(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 5, 20), V(0, 5, 0), V(0, 1, 0), math.Pi/4, 800, 600)

	sp, visible := cam.Project(V(0, 5, 0))
	require.True(t, visible)
	require.InDelta(t, 400, sp.X, 1e-6)
	require.InDelta(t, 300, sp.Y, 1e-6)

	// a point above the target projects higher on screen (smaller Y)
	up, visible := cam.Project(V(0, 8, 0))
	require.True(t, visible)
	require.Less(t, up.Y, sp.Y)

	// behind the camera
	_, visible = cam.Project(V(0, 5, 40))
	require.False(t, visible)
}

func TestCameraUnprojectRoundTrip(t *testing.T) {
	cam := NewPerspectiveCamera(V(10, 12, 18), V(2, 4, 0), V(0, 1, 0), math.Pi/3, 1280, 720)
	world := V(1, 4, 2)

	sp, visible := cam.Project(world)
	require.True(t, visible)

	ray, ok := cam.Unproject(sp.X, sp.Y)
	require.True(t, ok)

	// the ray must pass through the original world point
	closest := ClosestPointOnSegment(world, ray.Origin, ray.Origin.Add(ray.Dir.Scale(1000)))
	require.InDelta(t, 0, closest.DistanceTo(world), 1e-6)
}

func TestCameraForwardAndPosition(t *testing.T) {
	cam := NewPerspectiveCamera(V(0, 0, 10), V(0, 0, 0), V(0, 1, 0), math.Pi/4, 640, 480)
	pos := cam.Position()
	require.InDelta(t, 0, pos.X, 1e-9)
	require.InDelta(t, 10, pos.Z, 1e-9)
	fwd := cam.Forward()
	require.InDelta(t, -1, fwd.Z, 1e-9)
}

func TestRayIntersectPlane(t *testing.T) {
	ray := Ray{Origin: V(0, 10, 0), Dir: V(0, -1, 0)}
	hit, ok := ray.IntersectPlane(GroundPlane())
	require.True(t, ok)
	require.InDelta(t, 0, hit.Y, 1e-12)

	// parallel ray misses
	_, ok = Ray{Origin: V(0, 1, 0), Dir: V(1, 0, 0)}.IntersectPlane(GroundPlane())
	require.False(t, ok)

	// plane behind the origin misses
	_, ok = Ray{Origin: V(0, 10, 0), Dir: V(0, 1, 0)}.IntersectPlane(GroundPlane())
	require.False(t, ok)
}

func TestClosestPointOnSegment(t *testing.T) {
	a, b := V(0, 0, 0), V(10, 0, 0)
	require.Equal(t, V(4, 0, 0), ClosestPointOnSegment(V(4, 3, 0), a, b))
	// clamps to the endpoints
	require.Equal(t, a, ClosestPointOnSegment(V(-5, 1, 0), a, b))
	require.Equal(t, b, ClosestPointOnSegment(V(15, 1, 0), a, b))
	// degenerate segment
	require.Equal(t, a, ClosestPointOnSegment(V(3, 3, 3), a, a))
}
