package rocket

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// R3R1R3 performs a 3-1-3 Euler parameter rotation, i.e. R3(θ3)·R1(θ2)·R3(θ1).
// From Schaub and Junkins.
func R3R1R3(θ1, θ2, θ3 float64) *mat.Dense {
	sθ1, cθ1 := math.Sincos(θ1)
	sθ2, cθ2 := math.Sincos(θ2)
	sθ3, cθ3 := math.Sincos(θ3)
	return mat.NewDense(3, 3, []float64{cθ3*cθ1 - sθ3*cθ2*sθ1, cθ3*sθ1 + sθ3*cθ2*cθ1, sθ3 * sθ2,
		-sθ3*cθ1 - cθ3*cθ2*sθ1, -sθ3*sθ1 + cθ3*cθ2*cθ1, cθ3 * sθ2,
		sθ2 * sθ1, -sθ2 * cθ1, cθ2})
}

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat.Matrix, v []float64) []float64 {
	var rVec mat.VecDense
	rVec.MulVec(m, mat.NewVecDense(len(v), v))
	return []float64{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}

// PQW2ECI converts a perifocal vector to the body-centered inertial frame.
// The angles are the inclination, argument of periapsis and RAAN, all in radians.
func PQW2ECI(i, ω, Ω float64, vI []float64) []float64 {
	// PQW to ECI is the transpose of the ECI to PQW 3-1-3 sequence (Ω, i, ω).
	return MxV33(R3R1R3(Ω, i, ω).T(), vI)
}

// COE2Position returns the inertial position of the classical orbital elements
// (meters and radians). It fails if ν lies beyond the asymptote of an open orbit.
func COE2Position(a, e, i, Ω, ω, ν float64) ([]float64, error) {
	r, err := RadiusAtTrueAnomaly(a, e, ν)
	if err != nil {
		return nil, err
	}
	sν, cν := math.Sincos(ν)
	return PQW2ECI(i, ω, Ω, []float64{r * cν, r * sν, 0}), nil
}

// ECI2Geodetic returns the latitude, longitude (both radians) and altitude (meters)
// of an inertial position at t seconds past the epoch where the body's prime
// meridian was aligned with the inertial X axis.
// NOTE: this is a spherical body approximation and not a WGS84 geodetic solution.
func ECI2Geodetic(R []float64, t float64, body CentralBody) (lat, long, alt float64) {
	r := norm(R)
	if r == 0 {
		return 0, 0, -body.Radius
	}
	lat = math.Asin(R[2] / r)
	long = wrapπ(math.Atan2(R[1], R[0]) - body.RotationRate*t)
	alt = r - body.Radius
	return
}

// GEO2ECEF converts the provided altitude (meters) and latitude/longitude (radians)
// to a body fixed vector on a spherical body.
func GEO2ECEF(altitude, latitude, longitude float64, body CentralBody) []float64 {
	sLong, cLong := math.Sincos(longitude)
	sLat, cLat := math.Sincos(latitude)
	r := altitude + body.Radius
	return []float64{r * cLat * cLong, r * cLat * sLong, r * sLat}
}

// ECI2ECEF converts an inertial vector to body fixed for a body rotation angle θ in radians.
func ECI2ECEF(R []float64, θ float64) []float64 {
	return MxV33(R3(θ), R)
}

// ECEF2ECI converts a body fixed vector to inertial for a body rotation angle θ in radians.
func ECEF2ECI(R []float64, θ float64) []float64 {
	return MxV33(R3(-θ), R)
}
