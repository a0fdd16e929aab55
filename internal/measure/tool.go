package measure

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/fabworks/rackforge/internal/geom"
	"github.com/fabworks/rackforge/internal/snap"
)

// AxisLock selects which axes the second endpoint may vary along. A set
// axis is free; unset axes are clamped to the first endpoint's coordinate.
// All false means no lock.
type AxisLock struct {
	X bool `json:"x"`
	Y bool `json:"y"`
	Z bool `json:"z"`
}

// None reports whether no axis lock is active.
func (a AxisLock) None() bool { return !a.X && !a.Y && !a.Z }

func (a AxisLock) count() int {
	n := 0
	for _, v := range [3]bool{a.X, a.Y, a.Z} {
		if v {
			n++
		}
	}
	return n
}

// Hover describes what the crosshair is over after a pointer move.
type Hover struct {
	Snap     *snap.Point `json:"snap,omitempty"`
	Preview  *geom.Vec3  `json:"preview,omitempty"`  // candidate p2 while picking
	Distance *float64    `json:"distance,omitempty"` // live preview distance
	Label    string      `json:"label,omitempty"`
}

// Tool is the measurement state machine. All methods are safe for
// concurrent use; the tool serializes its own state behind a mutex since
// pointer events and manifest restores arrive from different callers.
type Tool struct {
	mu    sync.Mutex
	log   *slog.Logger
	index *snap.Index
	sink  Sink
	clock func() time.Time

	state State
	cam   *geom.Camera
	lock  AxisLock

	p1    geom.Vec3
	hasP1 bool
	hover Hover

	measurements []Measurement
	selected     map[int64]bool
	nextID       int64
	lastCreated  int64
}

// NewTool creates a disabled measurement tool over the given snap index.
func NewTool(index *snap.Index, sink Sink, log *slog.Logger) *Tool {
	if log == nil {
		log = slog.Default()
	}
	return &Tool{
		log:      log,
		index:    index,
		sink:     sink,
		clock:    time.Now,
		state:    StateDisabled,
		selected: make(map[int64]bool),
		nextID:   1,
	}
}

// SetClock overrides the timestamp source. Tests use this.
func (t *Tool) SetClock(clock func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clock = clock
}

// Enable arms the tool for point picking.
func (t *Tool) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateDisabled {
		t.state = StatePickingP1
	}
}

// Disable cancels any partial pick and turns the tool off. Existing
// measurements stay.
func (t *Tool) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disableLocked()
}

func (t *Tool) disableLocked() {
	t.state = StateDisabled
	t.hasP1 = false
	t.hover = Hover{}
}

// Enabled reports whether the tool is armed.
func (t *Tool) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state != StateDisabled
}

// State returns the current picking state.
func (t *Tool) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SetCamera installs the camera pose used for snap queries, plane
// inference, and label projection.
func (t *Tool) SetCamera(cam *geom.Camera) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cam = cam
}

// SetAxisLock replaces the axis lock. With no first point chosen the lock
// simply waits; it only shapes the second pick.
func (t *Tool) SetAxisLock(lock AxisLock) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lock = lock
}

// Lock returns the current axis lock.
func (t *Tool) Lock() AxisLock {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lock
}

// PointerMove updates the hover marker and, while picking the second point,
// the live preview segment.
func (t *Tool) PointerMove(x, y float64) Hover {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hover = Hover{}
	if t.state == StateDisabled || t.cam == nil {
		return t.hover
	}

	if sp, ok := t.index.FindClosest(x, y, t.cam, snap.DefaultRadiusPx); ok {
		p := sp
		t.hover.Snap = &p
	}

	if t.state == StatePickingP2 {
		if p2, ok := t.resolveP2(x, y); ok {
			d := t.p1.DistanceTo(p2)
			t.hover.Preview = &p2
			t.hover.Distance = &d
			t.hover.Label = Measurement{Distance: d}.Label()
		}
	}
	return t.hover
}

// Click advances the picking cycle. While picking the first point, a click
// off any snap that lands on an existing measurement toggles its selection;
// shift keeps the rest of the selection. The created measurement, if any,
// is returned.
func (t *Tool) Click(x, y float64, shift bool) (Measurement, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateDisabled || t.cam == nil {
		return Measurement{}, false
	}

	switch t.state {
	case StatePickingP1:
		if sp, ok := t.index.FindClosest(x, y, t.cam, snap.DefaultRadiusPx); ok {
			t.p1 = sp.Pos
			t.hasP1 = true
			t.state = StatePickingP2
			return Measurement{}, false
		}
		if id, ok := t.hitMeasurement(x, y); ok {
			t.toggleSelection(id, shift)
		}
		// Off-snap, off-measurement clicks are ignored.
		return Measurement{}, false

	case StatePickingP2:
		p2, ok := t.resolveP2(x, y)
		if !ok {
			return Measurement{}, false
		}
		m := t.createLocked(t.p1, p2)
		t.hasP1 = false
		t.state = StatePickingP1
		return m, true
	}
	return Measurement{}, false
}

// resolveP2 computes the second endpoint for the pointer position,
// honoring the axis lock, then snap, then inferred planes.
func (t *Tool) resolveP2(x, y float64) (geom.Vec3, bool) {
	if !t.lock.None() {
		return t.resolveLocked(x, y)
	}
	if sp, ok := t.index.FindClosest(x, y, t.cam, snap.DefaultRadiusPx); ok {
		return sp.Pos, true
	}
	return t.planePick(x, y)
}

// resolveLocked applies the axis lock. With exactly one free axis the ray
// is intersected with a camera-facing plane through p1 containing that
// axis; the clamped coordinates always come from p1.
func (t *Tool) resolveLocked(x, y float64) (geom.Vec3, bool) {
	var hit geom.Vec3
	if t.lock.count() == 1 {
		axis := geom.V(0, 0, 0)
		switch {
		case t.lock.X:
			axis = geom.V(1, 0, 0)
		case t.lock.Y:
			axis = geom.V(0, 1, 0)
		case t.lock.Z:
			axis = geom.V(0, 0, 1)
		}
		h, ok := t.axisPlanePick(x, y, axis)
		if !ok {
			return geom.Vec3{}, false
		}
		hit = h
	} else {
		h, ok := t.planePick(x, y)
		if !ok {
			if sp, snapOK := t.index.FindClosest(x, y, t.cam, snap.DefaultRadiusPx); snapOK {
				h = sp.Pos
			} else {
				return geom.Vec3{}, false
			}
		}
		hit = h
	}

	p2 := t.p1
	if t.lock.X {
		p2.X = hit.X
	}
	if t.lock.Y {
		p2.Y = hit.Y
	}
	if t.lock.Z {
		p2.Z = hit.Z
	}
	return p2, true
}

// axisPlanePick intersects the mouse ray with a plane through p1 that
// contains the given axis and faces the camera as squarely as possible.
func (t *Tool) axisPlanePick(x, y float64, axis geom.Vec3) (geom.Vec3, bool) {
	ray, ok := t.cam.Unproject(x, y)
	if !ok {
		return geom.Vec3{}, false
	}
	fwd := t.cam.Forward()
	normal := fwd.Sub(axis.Scale(fwd.Dot(axis)))
	if normal.Length() < 1e-9 {
		// Camera looking straight down the axis: any perpendicular works.
		normal = geom.V(axis.Y, axis.Z, axis.X)
	}
	if hit, ok := ray.IntersectPlane(geom.PlaneThrough(normal.Normalize(), t.p1)); ok {
		return hit, true
	}
	if hit, ok := ray.IntersectPlane(geom.GroundPlane()); ok {
		return hit, true
	}
	return geom.Vec3{}, false
}

// planePick intersects the mouse ray with the plane through p1
// perpendicular to camera forward, falling back to the ground plane. A miss
// on both drops the event.
func (t *Tool) planePick(x, y float64) (geom.Vec3, bool) {
	ray, ok := t.cam.Unproject(x, y)
	if !ok {
		return geom.Vec3{}, false
	}
	if t.hasP1 {
		if hit, ok := ray.IntersectPlane(geom.PlaneThrough(t.cam.Forward(), t.p1)); ok {
			return hit, true
		}
	}
	if hit, ok := ray.IntersectPlane(geom.GroundPlane()); ok {
		return hit, true
	}
	return geom.Vec3{}, false
}

func (t *Tool) createLocked(p1, p2 geom.Vec3) Measurement {
	m := Measurement{
		ID:        t.nextID,
		P1:        p1,
		P2:        p2,
		Distance:  p1.DistanceTo(p2),
		CreatedAt: t.clock(),
	}
	t.nextID++
	t.lastCreated = m.ID
	t.measurements = append(t.measurements, m)
	t.publishLocked()
	t.log.Debug("measurement created", "id", m.ID, "distance", m.Distance)
	return m
}

// hitMeasurement finds a measurement whose projected endpoints or label
// anchor lie within the pick radius of the click.
func (t *Tool) hitMeasurement(x, y float64) (int64, bool) {
	bestID := int64(0)
	bestDist := math.Inf(1)
	for _, m := range t.measurements {
		for _, p := range []geom.Vec3{m.P1, m.P2, m.Anchor()} {
			sp, visible := t.cam.Project(p)
			if !visible {
				continue
			}
			d := math.Hypot(sp.X-x, sp.Y-y)
			if d <= snap.DefaultRadiusPx && d < bestDist {
				bestID = m.ID
				bestDist = d
			}
		}
	}
	return bestID, bestID != 0
}

func (t *Tool) toggleSelection(id int64, shift bool) {
	if shift {
		if t.selected[id] {
			delete(t.selected, id)
		} else {
			t.selected[id] = true
		}
		return
	}
	already := t.selected[id] && len(t.selected) == 1
	t.selected = make(map[int64]bool)
	if !already {
		t.selected[id] = true
	}
}

// KeyPress feeds a key event. Recognized keys: "Escape", "Delete",
// "Backspace", and "a"/"c" with ctrl (or cmd) held.
func (t *Tool) KeyPress(key string, ctrl bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case key == "Escape":
		t.escapeLocked()
	case key == "Delete" || key == "Backspace":
		t.deleteLocked()
	case ctrl && (key == "a" || key == "A"):
		for _, m := range t.measurements {
			t.selected[m.ID] = true
		}
	case ctrl && (key == "c" || key == "C"):
		t.clearLocked()
	}
}

// escapeLocked walks the escape ladder one rung per press: cancel the
// partial pick, then clear the selection, then disable the tool.
func (t *Tool) escapeLocked() {
	if t.state == StatePickingP2 {
		t.hasP1 = false
		t.hover = Hover{}
		t.state = StatePickingP1
		return
	}
	if len(t.selected) > 0 {
		t.selected = make(map[int64]bool)
		return
	}
	t.disableLocked()
}

// deleteLocked removes the selected measurements, or the last-created one
// when nothing is selected.
func (t *Tool) deleteLocked() {
	if len(t.measurements) == 0 {
		return
	}
	remove := t.selected
	if len(remove) == 0 {
		if t.lastCreated == 0 {
			remove = map[int64]bool{t.measurements[len(t.measurements)-1].ID: true}
		} else {
			remove = map[int64]bool{t.lastCreated: true}
		}
	}

	kept := t.measurements[:0]
	for _, m := range t.measurements {
		if !remove[m.ID] {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(t.measurements) {
		return
	}
	t.measurements = kept
	t.selected = make(map[int64]bool)
	if !t.hasMeasurement(t.lastCreated) {
		t.lastCreated = 0
		if n := len(t.measurements); n > 0 {
			t.lastCreated = t.measurements[n-1].ID
		}
	}
	t.publishLocked()
}

func (t *Tool) hasMeasurement(id int64) bool {
	for _, m := range t.measurements {
		if m.ID == id {
			return true
		}
	}
	return false
}

func (t *Tool) clearLocked() {
	if len(t.measurements) == 0 {
		return
	}
	t.measurements = nil
	t.selected = make(map[int64]bool)
	t.lastCreated = 0
	t.publishLocked()
}

// Clear removes every measurement.
func (t *Tool) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked()
}

// Measurements returns a copy of the current list in creation order.
func (t *Tool) Measurements() []Measurement {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Measurement, len(t.measurements))
	copy(out, t.measurements)
	return out
}

// Selected returns the ids in the selection set.
func (t *Tool) Selected() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]int64, 0, len(t.selected))
	for id := range t.selected {
		out = append(out, id)
	}
	return out
}

// Restore replays a persisted measurement list and pushes the id counter
// past the maximum restored id. It does not publish back to the sink.
func (t *Tool) Restore(list []Measurement) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.measurements = make([]Measurement, 0, len(list))
	maxID := int64(0)
	for _, m := range list {
		m.Distance = m.P1.DistanceTo(m.P2)
		t.measurements = append(t.measurements, m)
		if m.ID > maxID {
			maxID = m.ID
		}
	}
	t.selected = make(map[int64]bool)
	t.nextID = maxID + 1
	t.lastCreated = 0
}

func (t *Tool) publishLocked() {
	if t.sink == nil {
		return
	}
	list := make([]Measurement, len(t.measurements))
	copy(list, t.measurements)
	t.sink.UpdateMeasurements(list)
}
