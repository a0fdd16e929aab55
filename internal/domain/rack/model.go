// Package rack models the parametric trade rack: geometry parameters, bay
// and tier derivations, and saved configuration snapshots.
package rack

import (
	"time"

	"github.com/fabworks/rackforge/internal/domain/mep"
	"github.com/fabworks/rackforge/internal/units"
)

// MountType selects how the rack is supported.
type MountType string

const (
	// MountDeck hangs the rack from the corridor ceiling beam with a top
	// clearance gap.
	MountDeck MountType = "deck"
	// MountFloor stands the rack on the floor. Top clearance is ignored.
	MountFloor MountType = "floor"
)

// MemberClass maps to a steel member size in inches.
type MemberClass string

const (
	ClassStandard MemberClass = "standard"
	ClassHeavy    MemberClass = "heavy"
	ClassLight    MemberClass = "light"
)

// memberSizeInches maps a member class to its square cross-section in
// inches: standard 3", heavy 4", light 2".
func memberSizeInches(c MemberClass) float64 {
	switch c {
	case ClassHeavy:
		return 4
	case ClassLight:
		return 2
	default:
		return 3
	}
}

// Position is an explicit world placement for the rack origin.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Params is the rack parameter record edited by the rack form. Dimensions
// are feet-and-inches pairs; TierHeights always has TierCount entries.
type Params struct {
	RackLength   units.Dimension   `json:"rackLength"`
	RackWidth    units.Dimension   `json:"rackWidth"`
	BayWidth     units.Dimension   `json:"bayWidth"`
	TierCount    int               `json:"tierCount"`
	TierHeights  []units.Dimension `json:"tierHeights"`
	MountType    MountType         `json:"mountType"`
	ColumnType   MemberClass       `json:"columnType"`
	BeamType     MemberClass       `json:"beamType"`
	TopClearance units.Dimension   `json:"topClearance"`
	Position     Position          `json:"position"`
}

// Default returns the rack parameters a fresh project starts with.
func Default() Params {
	return Params{
		RackLength:   units.Dim(12, 0),
		RackWidth:    units.Dim(4, 0),
		BayWidth:     units.Dim(3, 0),
		TierCount:    2,
		TierHeights:  []units.Dimension{units.Dim(2, 0), units.Dim(2, 0)},
		MountType:    MountDeck,
		ColumnType:   ClassStandard,
		BeamType:     ClassStandard,
		TopClearance: units.Dim(0, 0),
	}
}

// PostSizeFeet returns the post cross-section in decimal feet.
func (p Params) PostSizeFeet() float64 {
	return memberSizeInches(p.ColumnType) / units.InchesPerFoot
}

// BeamSizeFeet returns the beam cross-section in decimal feet.
func (p Params) BeamSizeFeet() float64 {
	return memberSizeInches(p.BeamType) / units.InchesPerFoot
}

// TotalHeightFeet is the sum of the tier heights in decimal feet.
func (p Params) TotalHeightFeet() float64 {
	total := 0.0
	for _, h := range p.TierHeights {
		total += h.TotalFeet()
	}
	return total
}

// Bays derives the bay layout along the rack length. A trailing partial bay
// exists whenever the length is not an exact multiple of the bay width.
type Bays struct {
	Count            int     `json:"bayCount"`
	Width            float64 `json:"bayWidth"`     // decimal feet
	LastBayWidth     float64 `json:"lastBayWidth"` // decimal feet, 0 when none
	HasCustomLastBay bool    `json:"hasCustomLastBay"`
}

// Bays computes bayCount = floor(rackLength/bayWidth) with the trailing
// partial bay. A very small residual is kept as a partial bay; it is never
// merged into the previous bay.
func (p Params) Bays() Bays {
	length := p.RackLength.TotalFeet()
	width := p.BayWidth.TotalFeet()
	if length <= 0 || width <= 0 {
		return Bays{}
	}
	count := int(length / width)
	last := length - float64(count)*width
	if last < 1e-9 {
		last = 0
	}
	return Bays{
		Count:            count,
		Width:            width,
		LastBayWidth:     last,
		HasCustomLastBay: last > 0,
	}
}

// TierBounds returns the [bottom, top] Y extent of a tier in rack-local
// feet, measured from the rack base. Tier 1 is the bottom tier.
func (p Params) TierBounds(tier int) (bottom, top float64, ok bool) {
	if tier < 1 || tier > len(p.TierHeights) {
		return 0, 0, false
	}
	y := 0.0
	for i := 0; i < tier-1; i++ {
		y += p.TierHeights[i].TotalFeet()
	}
	return y, y + p.TierHeights[tier-1].TotalFeet(), true
}

// ResizeTiers adjusts TierHeights to n entries, padding with the 2'-0"
// default and truncating from the tail, then sets TierCount.
func (p *Params) ResizeTiers(n int) {
	if n < MinTierCount {
		n = MinTierCount
	}
	if n > MaxTierCount {
		n = MaxTierCount
	}
	for len(p.TierHeights) < n {
		p.TierHeights = append(p.TierHeights, units.Dim(2, 0))
	}
	p.TierHeights = p.TierHeights[:n]
	p.TierCount = n
}

// BaseY returns the world Y of the rack base for the given building
// context. Floor-mounted racks sit at y=0; deck-mounted racks hang so the
// rack top leaves topClearance below the ceiling beam.
func (p Params) BaseY(ctx BuildingContext) float64 {
	if p.MountType == MountFloor {
		return 0
	}
	return ctx.CorridorHeight - ctx.BeamDepth - p.TopClearance.TotalFeet() - p.TotalHeightFeet()
}

// BuildingContext carries the shell geometry a deck-mounted rack anchors
// against. It accompanies every rack update.
type BuildingContext struct {
	CorridorHeight float64 `json:"corridorHeight"`
	BeamDepth      float64 `json:"beamDepth"`
}

// SavedConfiguration is a named snapshot of the rack parameters, optionally
// with the MEP items that were installed when it was saved.
type SavedConfiguration struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Params      Params     `json:"params"`
	TotalHeight float64    `json:"totalHeight"`
	Position    Position   `json:"position"`
	SavedAt     time.Time  `json:"savedAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	MEPItems    []mep.Item `json:"mepItems,omitempty"`
}

// SortTime is the timestamp configurations order by, newest first.
func (c SavedConfiguration) SortTime() time.Time {
	if c.UpdatedAt != nil {
		return *c.UpdatedAt
	}
	return c.SavedAt
}
