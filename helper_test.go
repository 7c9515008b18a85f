package rocket

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const eps = 1e-3

// vectorsEqual returns whether two vectors are equal within a relative tolerance.
func vectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := len(a) - 1; i >= 0; i-- {
		if !scalar.EqualWithinRel(a[i], b[i], eps) && !scalar.EqualWithinAbs(a[i], b[i], 1e-9) {
			return false
		}
	}
	return true
}

// anglesEqual returns whether two angles in radians are equal.
func anglesEqual(a, b float64) (bool, error) {
	diff := math.Abs(a - b)
	if diff < 1e-9 || math.Abs(diff-2*math.Pi) < 1e-9 {
		return true, nil
	}
	return false, fmt.Errorf("difference of %3.10fπ", diff/math.Pi)
}
