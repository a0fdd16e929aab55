// Package measure implements the interactive measurement tool: a state
// machine over pointer and key events that picks snap points, creates
// linear measurements, manages a selection set, and projects screen-space
// labels. The tool owns the measurement objects; the manifest only stores
// snapshots published through the Sink.
package measure

import (
	"time"

	"github.com/fabworks/rackforge/internal/geom"
	"github.com/fabworks/rackforge/internal/units"
)

// Measurement is one linear measurement between two world points. Endpoints
// are captured in the world frame at creation and never reprojected when
// geometry rebuilds.
type Measurement struct {
	ID        int64     `json:"id"`
	P1        geom.Vec3 `json:"p1"`
	P2        geom.Vec3 `json:"p2"`
	Distance  float64   `json:"distance"`
	CreatedAt time.Time `json:"createdAt"`
}

// Label returns the construction-style distance text.
func (m Measurement) Label() string {
	return units.FormatWorldDistance(m.Distance)
}

// Anchor is the 3D point the 2D label tracks: the dimension-line midpoint.
func (m Measurement) Anchor() geom.Vec3 {
	return m.P1.Midpoint(m.P2)
}

// Sink receives the full measurement list after every create, delete, or
// clear. The Persistence Manager implements it.
type Sink interface {
	UpdateMeasurements(list []Measurement)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(list []Measurement)

func (f SinkFunc) UpdateMeasurements(list []Measurement) { f(list) }

// State names the tool's position in the picking cycle.
type State string

const (
	StateDisabled  State = "disabled"
	StatePickingP1 State = "pickingFirst"
	StatePickingP2 State = "pickingSecond"
)

// Visual styling constants the renderer reads. The main line is cyan with
// camera-facing end caps; the offset dimension line is orange with short
// extension ticks from the endpoints.
const (
	MainLineColor      = "#00c8d6"
	DimensionLineColor = "#ff8c1a"
	DimensionOffsetFt  = 0.5
)
