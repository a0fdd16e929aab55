package units

import (
	"fmt"
	"math"
)

// fractionTolerance is how close the fractional remainder must be to a
// sixteenth before it is printed as a construction fraction.
const fractionTolerance = 1.0 / 32.0

// FormatWorldDistance formats a world-space distance (decimal feet) in
// construction notation, e.g. 5', 5'-3", 5'-3 1/2", 3/4", 0".
func FormatWorldDistance(feet float64) string {
	return FormatInches(feet * InchesPerFoot)
}

// FormatInches formats a decimal-inch measure in construction notation. The
// fractional remainder snaps to the nearest sixteenth when within 1/32";
// otherwise it is dropped.
func FormatInches(totalInches float64) string {
	if totalInches < 0 {
		totalInches = -totalInches
	}

	feet := int(totalInches / InchesPerFoot)
	rem := totalInches - float64(feet)*InchesPerFoot
	whole := int(rem)
	frac := rem - float64(whole)

	num, den := snapFraction(frac)
	if num == 1 && den == 1 {
		// Fraction rounded up to a full inch.
		num, den = 0, 0
		whole++
		if whole == 12 {
			whole = 0
			feet++
		}
	}

	switch {
	case feet == 0 && whole == 0 && num == 0:
		return `0"`
	case feet == 0 && whole == 0:
		return fmt.Sprintf(`%d/%d"`, num, den)
	case feet == 0 && num == 0:
		return fmt.Sprintf(`%d"`, whole)
	case feet == 0:
		return fmt.Sprintf(`%d %d/%d"`, whole, num, den)
	case whole == 0 && num == 0:
		return fmt.Sprintf(`%d'`, feet)
	case num == 0:
		return fmt.Sprintf(`%d'-%d"`, feet, whole)
	default:
		return fmt.Sprintf(`%d'-%d %d/%d"`, feet, whole, num, den)
	}
}

// snapFraction snaps a fractional inch to the nearest sixteenth if within
// tolerance and reduces it. Returns (0,0) for no fraction and (1,1) when the
// remainder rounds up to a whole inch.
func snapFraction(frac float64) (num, den int) {
	nearest := math.Round(frac * 16)
	if math.Abs(frac-nearest/16) > fractionTolerance {
		return 0, 0
	}
	n := int(nearest)
	if n == 0 {
		return 0, 0
	}
	if n == 16 {
		return 1, 1
	}
	d := 16
	for n%2 == 0 {
		n /= 2
		d /= 2
	}
	return n, d
}
