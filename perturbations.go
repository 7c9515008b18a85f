package rocket

import "math"

// Perturbations defines which forces beyond point mass gravity act on a
// Cartesian state during integration.
type Perturbations struct {
	J2 bool // Oblateness of the central body
	// Arbitrary returns an additional acceleration (m/s^2) for the provided time, position and velocity.
	Arbitrary func(t float64, R, V []float64) []float64
}

func (p Perturbations) isEmpty() bool {
	return !p.J2 && p.Arbitrary == nil
}

// Perturb returns the perturbing acceleration at the provided state.
func (p Perturbations) Perturb(t float64, R, V []float64, body CentralBody) []float64 {
	pert := make([]float64, 3)
	if p.isEmpty() {
		return pert
	}
	if p.J2 {
		j2 := J2Acceleration(R, body)
		for i := 0; i < 3; i++ {
			pert[i] += j2[i]
		}
	}
	if p.Arbitrary != nil {
		extra := p.Arbitrary(t, R, V)
		for i := 0; i < 3 && i < len(extra); i++ {
			pert[i] += extra[i]
		}
	}
	return pert
}

// J2Acceleration returns the Cartesian acceleration due to J2 at the inertial position R.
func J2Acceleration(R []float64, body CentralBody) []float64 {
	x, y, z := R[0], R[1], R[2]
	z2 := z * z
	r2 := x*x + y*y + z2
	if r2 == 0 || body.J2 == 0 {
		return []float64{0, 0, 0}
	}
	r252 := math.Pow(r2, 5/2.)
	r272 := math.Pow(r2, 7/2.)
	accJ2 := (3 / 2.) * body.J2 * body.Radius * body.Radius * body.μ
	return []float64{
		accJ2 * (5*x*z2/r272 - x/r252),
		accJ2 * (5*y*z2/r272 - y/r252),
		accJ2 * (5*z*z2/r272 - 3*z/r252),
	}
}

// J2SecularRates returns the secular drift rates (rad/s) of the RAAN and of the
// argument of periapsis of a closed orbit due to the body's J2:
//
//	Ω̇ = -1.5·n·J2·(R/p)²·cos i
//	ω̇ = 0.75·n·J2·(R/p)²·(4 - 5·sin² i)
func J2SecularRates(a, e, i float64, body CentralBody) (Ωdot, ωdot float64, err error) {
	if a <= 0 || e < 0 || e >= 1 {
		return 0, 0, domainf("secular J2 rates need a closed orbit (a=%g, e=%g)", a, e)
	}
	n := math.Sqrt(body.μ / (a * a * a))
	p := a * (1 - e*e)
	k := n * body.J2 * (body.Radius / p) * (body.Radius / p)
	si, ci := math.Sincos(i)
	Ωdot = -1.5 * k * ci
	ωdot = 0.75 * k * (4 - 5*si*si)
	return
}

// J2Rates returns the secular RAAN and argument of periapsis rates of this orbit.
func (o OrbitElements) J2Rates() (Ωdot, ωdot float64, err error) {
	return J2SecularRates(o.a, o.e, o.i, o.Origin)
}
