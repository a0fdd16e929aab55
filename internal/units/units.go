// Package units handles the feet-and-inches dimension pairs used at the
// configurator boundary and their conversion to the decimal scalars the
// geometry builder works in. World geometry is in decimal feet; MEP item
// dimensions travel as inches.
package units

import "math"

const InchesPerFoot = 12.0

// Dimension is a feet-and-inches pair as entered in the forms.
// Feet is a whole count, Inches may be fractional.
type Dimension struct {
	Feet   int     `json:"feet"`
	Inches float64 `json:"inches"`
}

// Dim is a convenience constructor.
func Dim(feet int, inches float64) Dimension {
	return Dimension{Feet: feet, Inches: inches}
}

// TotalFeet converts the pair to a single decimal-feet scalar.
func (d Dimension) TotalFeet() float64 {
	return float64(d.Feet) + d.Inches/InchesPerFoot
}

// TotalInches converts the pair to a single decimal-inches scalar.
func (d Dimension) TotalInches() float64 {
	return float64(d.Feet)*InchesPerFoot + d.Inches
}

// IsZero reports whether the dimension is exactly zero.
func (d Dimension) IsZero() bool {
	return d.Feet == 0 && d.Inches == 0
}

// Positive reports whether the dimension is strictly greater than zero.
func (d Dimension) Positive() bool {
	return d.TotalInches() > 0
}

// FromFeet decomposes a decimal-feet scalar back into a feet/inches pair.
// Inches are kept fractional; no fraction snapping happens here.
func FromFeet(feet float64) Dimension {
	whole := math.Floor(feet)
	return Dimension{
		Feet:   int(whole),
		Inches: (feet - whole) * InchesPerFoot,
	}
}

func (d Dimension) String() string {
	return FormatInches(d.TotalInches())
}
