package rocket

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const distanceε = 1 // meter

// OrbitElements defines an orbit via its classical orbital elements. Distances
// are in meters and angles in radians. Hyperbolic orbits carry a negative
// semi-major axis; parabolic orbits cannot be represented.
type OrbitElements struct {
	a, e, i, Ω, ω, ν float64
	Origin           CentralBody
}

// NewOrbitElements creates an orbit from the orbital elements.
// WARNING: Angles must be in degrees not radian.
func NewOrbitElements(a, e, i, Ω, ω, ν float64, c CentralBody) (*OrbitElements, error) {
	if !finite(a, e, i, Ω, ω, ν) {
		return nil, invalidf("non finite orbital elements")
	}
	if e < 0 {
		return nil, invalidf("eccentricity must be non negative (got %g)", e)
	}
	if i < 0 || i > 180 {
		return nil, invalidf("inclination must be within [0, 180] degrees (got %g)", i)
	}
	if kind, err := checkShape(a, e); err != nil {
		if kind == Parabolic {
			return nil, invalidf("%s", err)
		}
		return nil, err
	}
	o := &OrbitElements{a, e, i * deg2rad, Deg2rad(Ω), Deg2rad(ω), Deg2rad(ν), c}
	if _, err := o.RNorm(); err != nil {
		return nil, err
	}
	return o, nil
}

// Elements returns the six classical elements.
func (o OrbitElements) Elements() (a, e, i, Ω, ω, ν float64) {
	return o.a, o.e, o.i, o.Ω, o.ω, o.ν
}

// Type returns the conic classification of this orbit.
func (o OrbitElements) Type() OrbitType {
	kind, _ := Classify(o.e)
	return kind
}

// Energyξ returns the specific mechanical energy ξ.
func (o OrbitElements) Energyξ() float64 {
	return -o.Origin.μ / (2 * o.a)
}

// Tildeω returns the longitude of periapsis.
func (o OrbitElements) Tildeω() float64 {
	return math.Mod(o.ω+o.Ω, 2*math.Pi)
}

// TrueLongλ returns the *approximate* true longitude (cf. Vallado page 103).
// NOTE: One should only need this for equatorial orbits.
func (o OrbitElements) TrueLongλ() float64 {
	return math.Mod(o.ω+o.Ω+o.ν, 2*math.Pi)
}

// ArgLatitudeU returns the argument of latitude.
func (o OrbitElements) ArgLatitudeU() float64 {
	return math.Mod(o.ν+o.ω, 2*math.Pi)
}

// SemiParameter returns the semi-latus rectum.
func (o OrbitElements) SemiParameter() float64 {
	return o.a * (1 - o.e*o.e)
}

// Periapsis returns the periapsis radius, valid for both sign conventions of a.
func (o OrbitElements) Periapsis() float64 {
	return o.a * (1 - o.e)
}

// Apoapsis returns the apoapsis radius, or +Inf for hyperbolic orbits.
func (o OrbitElements) Apoapsis() float64 {
	if o.e >= 1 {
		return math.Inf(1)
	}
	return o.a * (1 + o.e)
}

// Period returns the period in seconds, see Period.
func (o OrbitElements) Period() (float64, error) {
	return Period(o.Origin.μ, o.a, o.e)
}

// MeanMotion returns the mean motion in rad/s.
func (o OrbitElements) MeanMotion() float64 {
	return MeanMotion(o.Origin.μ, o.a)
}

// RNorm returns the norm of the radius vector without computing the vector itself.
func (o OrbitElements) RNorm() (float64, error) {
	return ConicRadius(o.SemiParameter(), o.e, o.ν)
}

// VNorm returns the norm of the velocity vector without computing the vector itself.
func (o OrbitElements) VNorm() (float64, error) {
	r, err := o.RNorm()
	if err != nil {
		return 0, err
	}
	return SpeedAtRadius(o.Origin.μ, o.a, o.e, r)
}

// SinCosΦfpa returns the sine and cosine of the flight path angle.
// Use math.Atan2 on both to avoid the quadrant problem (Vallado page 105).
func (o OrbitElements) SinCosΦfpa() (sinΦ, cosΦ float64) {
	sinν, cosν := math.Sincos(o.ν)
	den := math.Sqrt(1 + 2*o.e*cosν + o.e*o.e)
	return o.e * sinν / den, (1 + o.e*cosν) / den
}

// RV returns the inertial position and velocity vectors.
func (o OrbitElements) RV() (R, V []float64, err error) {
	p := o.SemiParameter()
	r, err := ConicRadius(p, o.e, o.ν)
	if err != nil {
		return nil, nil, err
	}
	sinν, cosν := math.Sincos(o.ν)
	R = PQW2ECI(o.i, o.ω, o.Ω, []float64{r * cosν, r * sinν, 0})
	vp := math.Sqrt(o.Origin.μ / p)
	V = PQW2ECI(o.i, o.ω, o.Ω, []float64{-vp * sinν, vp * (o.e + cosν), 0})
	return R, V, nil
}

// H returns the specific angular momentum vector.
func (o OrbitElements) H() ([]float64, error) {
	R, V, err := o.RV()
	if err != nil {
		return nil, err
	}
	return cross(R, V), nil
}

// Propagate returns the orbit after dt seconds of unperturbed two-body motion.
func (o OrbitElements) Propagate(dt float64) (*OrbitElements, error) {
	M0, err := MeanFromTrue(o.ν, o.e)
	if err != nil {
		return nil, err
	}
	M := M0 + o.MeanMotion()*dt
	if o.e < 1 {
		M = wrapπ(M)
	}
	ν, err := TrueFromMean(M, o.e)
	if err != nil {
		return nil, err
	}
	next := o
	next.ν = wrap2π(ν)
	return &next, nil
}

// PropagateJ2 is Propagate plus the secular J2 drift of the RAAN and argument of periapsis.
func (o OrbitElements) PropagateJ2(dt float64) (*OrbitElements, error) {
	Ωdot, ωdot, err := o.J2Rates()
	if err != nil {
		return nil, err
	}
	next, err := o.Propagate(dt)
	if err != nil {
		return nil, err
	}
	next.Ω = wrap2π(o.Ω + Ωdot*dt)
	next.ω = wrap2π(o.ω + ωdot*dt)
	return next, nil
}

// String implements the stringer interface (hence the value receiver)
func (o OrbitElements) String() string {
	if o.e < eccentricityε {
		// Circular orbit
		if o.i > angleε {
			return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f u=%.3f", o.a, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.ArgLatitudeU()))
		}
		// Equatorial
		return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f λ=%.3f", o.a, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.TrueLongλ()))
	}
	return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f ω=%.3f ν=%.3f", o.a, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.ω), Rad2deg(o.ν))
}

// Equals returns whether two orbits are identical with free true anomaly.
// Use StrictlyEquals to also check true anomaly.
func (o OrbitElements) Equals(o1 OrbitElements) (bool, error) {
	if !o.Origin.Equals(o1.Origin) {
		return false, errors.New("different origin")
	}
	if !scalar.EqualWithinAbs(o.a, o1.a, distanceε) {
		return false, errors.New("semi major axis invalid")
	}
	if !scalar.EqualWithinAbs(o.e, o1.e, eccentricityε) {
		return false, errors.New("eccentricity invalid")
	}
	if !scalar.EqualWithinAbs(o.i, o1.i, angleε) {
		return false, errors.New("inclination invalid")
	}
	if o.i > angleε {
		if ok, _ := anglesClose(o.Ω, o1.Ω); !ok {
			return false, errors.New("RAAN invalid")
		}
	}
	if o.e < eccentricityε {
		// Circular orbit
		if o.i > angleε {
			if ok, _ := anglesClose(o.ArgLatitudeU(), o1.ArgLatitudeU()); !ok {
				return false, errors.New("argument of latitude invalid")
			}
		} else if ok, _ := anglesClose(o.TrueLongλ(), o1.TrueLongλ()); !ok {
			return false, errors.New("true longitude invalid")
		}
	} else if ok, _ := anglesClose(o.ω, o1.ω); !ok {
		return false, errors.New("argument of perigee invalid")
	}
	return true, nil
}

// StrictlyEquals returns whether two orbits are identical.
func (o OrbitElements) StrictlyEquals(o1 OrbitElements) (bool, error) {
	// Only check for non circular orbits
	if o.e > eccentricityε {
		if ok, _ := anglesClose(o.ν, o1.ν); !ok {
			return false, errors.New("true anomaly invalid")
		}
	}
	return o.Equals(o1)
}

func anglesClose(a, b float64) (bool, error) {
	if d := math.Abs(wrapπ(a - b)); d > angleε {
		return false, fmt.Errorf("difference of %3.10fπ", d/math.Pi)
	}
	return true, nil
}

// NewOrbitFromRV returns orbital elements from the R and V vectors (m and m/s).
func NewOrbitFromRV(R, V []float64, c CentralBody) (*OrbitElements, error) {
	// From Vallado's RV2COE, page 113
	hVec := cross(R, V)
	if norm(hVec) == 0 {
		return nil, domainf("rectilinear motion has no orbital plane")
	}
	n := cross([]float64{0, 0, 1}, hVec)
	v := norm(V)
	r := norm(R)
	ξ := (v*v)/2 - c.μ/r
	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((v*v-c.μ/r)*R[i] - dot(R, V)*V[i]) / c.μ
	}
	e := norm(eVec)
	if kind, _ := Classify(e); kind == Parabolic {
		return nil, undefinedf("parabolic state (e=%f) has no semi-major axis", e)
	}
	a := -c.μ / (2 * ξ)
	i := math.Acos(floatClamp(hVec[2] / norm(hVec)))
	var Ω, ω, ν float64
	if nNorm := norm(n); nNorm > 0 {
		Ω = math.Acos(floatClamp(n[0] / nNorm))
		if n[1] < 0 {
			Ω = 2*math.Pi - Ω
		}
		if e > eccentricityε {
			ω = math.Acos(floatClamp(dot(n, eVec) / (nNorm * e)))
			if eVec[2] < 0 {
				ω = 2*math.Pi - ω
			}
		}
	} else if e > eccentricityε {
		// Equatorial: the periapsis is measured from the X axis.
		ω = math.Atan2(eVec[1], eVec[0])
		if hVec[2] < 0 {
			ω = -ω
		}
	}
	if e > eccentricityε {
		ν = math.Acos(floatClamp(dot(eVec, R) / (e * r)))
		if dot(R, V) < 0 {
			ν = 2*math.Pi - ν
		}
	} else {
		// Circular: the anomaly is measured from the node, or from X if equatorial.
		var ref []float64
		if nNorm := norm(n); nNorm > 0 {
			ref = unit(n)
		} else {
			ref = []float64{1, 0, 0}
		}
		ν = math.Acos(floatClamp(dot(ref, R) / r))
		if dot(cross(ref, R), hVec) < 0 {
			ν = 2*math.Pi - ν
		}
	}
	return &OrbitElements{a, e, i, wrap2π(Ω), wrap2π(ω), wrap2π(ν), c}, nil
}

// floatClamp keeps rounding errors from pushing a cosine out of [-1, 1].
func floatClamp(c float64) float64 {
	return math.Max(-1, math.Min(1, c))
}

// Radii2ae returns the semi major axis and the eccentricty from the radii.
func Radii2ae(rA, rP float64) (a, e float64, err error) {
	if rA < rP {
		return 0, 0, invalidf("periapsis %g cannot be greater than apoapsis %g", rP, rA)
	}
	if rP <= 0 {
		return 0, 0, invalidf("periapsis must be positive (got %g)", rP)
	}
	a = (rP + rA) / 2
	e = (rA - rP) / (rA + rP)
	return
}
