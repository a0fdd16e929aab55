package geom

// Camera is the renderer's camera pose as reported by the client: view and
// projection matrices plus the viewport it projects into.
type Camera struct {
	View       Mat4    `json:"view"`
	Projection Mat4    `json:"projection"`
	ViewportW  float64 `json:"viewportWidth"`
	ViewportH  float64 `json:"viewportHeight"`
}

// NewPerspectiveCamera is a convenience constructor used mostly by tests.
func NewPerspectiveCamera(eye, target, up Vec3, fovY, viewportW, viewportH float64) *Camera {
	aspect := viewportW / viewportH
	return &Camera{
		View:       LookAt(eye, target, up),
		Projection: Perspective(fovY, aspect, 0.1, 1000),
		ViewportW:  viewportW,
		ViewportH:  viewportH,
	}
}

// ScreenPoint is a projected world point in pixel coordinates. Depth is the
// normalized device z; points with Depth >= 1 are behind the camera or past
// the far plane and must not be shown.
type ScreenPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Depth float64 `json:"depth"`
}

// Project maps a world point to viewport pixels. The boolean is false when
// the point is behind the camera.
func (c *Camera) Project(p Vec3) (ScreenPoint, bool) {
	ndc, w := c.Projection.Mul(c.View).TransformPoint(p)
	sp := ScreenPoint{
		X:     (ndc.X + 1) / 2 * c.ViewportW,
		Y:     (1 - ndc.Y) / 2 * c.ViewportH,
		Depth: ndc.Z,
	}
	if w <= 0 || ndc.Z >= 1 {
		return sp, false
	}
	return sp, true
}

// Forward returns the camera's viewing direction in world space.
func (c *Camera) Forward() Vec3 {
	inv, ok := c.View.Inverse()
	if !ok {
		return V(0, 0, -1)
	}
	return inv.TransformDirection(V(0, 0, -1)).Normalize()
}

// Position returns the camera's world position.
func (c *Camera) Position() Vec3 {
	inv, ok := c.View.Inverse()
	if !ok {
		return Vec3{}
	}
	p, _ := inv.TransformPoint(Vec3{})
	return p
}

// Unproject builds a world-space ray through the given viewport pixel.
func (c *Camera) Unproject(screenX, screenY float64) (Ray, bool) {
	inv, ok := c.Projection.Mul(c.View).Inverse()
	if !ok {
		return Ray{}, false
	}

	ndcX := screenX/c.ViewportW*2 - 1
	ndcY := 1 - screenY/c.ViewportH*2

	near, _ := inv.TransformPoint(V(ndcX, ndcY, -1))
	far, _ := inv.TransformPoint(V(ndcX, ndcY, 1))

	dir := far.Sub(near)
	if dir.Length() == 0 {
		return Ray{}, false
	}
	return Ray{Origin: near, Dir: dir.Normalize()}, true
}
