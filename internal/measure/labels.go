package measure

import "github.com/fabworks/rackforge/internal/geom"

// Label is the screen-space placement of one measurement's distance text.
// The weak link back to the measurement is the id only.
type Label struct {
	MeasurementID int64   `json:"measurementId"`
	Text          string  `json:"text"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Depth         float64 `json:"depth"`
	Visible       bool    `json:"visible"`
}

// Labels projects every measurement's anchor through the given camera,
// falling back to the tool's installed camera when cam is nil. Anchors
// behind the camera produce hidden labels with their last text intact.
func (t *Tool) Labels(cam *geom.Camera) []Label {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cam == nil {
		cam = t.cam
	}
	out := make([]Label, 0, len(t.measurements))
	for _, m := range t.measurements {
		l := Label{MeasurementID: m.ID, Text: m.Label()}
		if cam != nil {
			sp, visible := cam.Project(m.Anchor())
			l.X = sp.X
			l.Y = sp.Y
			l.Depth = sp.Depth
			l.Visible = visible && sp.Depth < 1
		}
		out = append(out, l)
	}
	return out
}
