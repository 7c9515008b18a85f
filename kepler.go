package rocket

import (
	"math"
)

const (
	eccentricityε = 5e-5                        // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	// denominators of the conic equation smaller than this are treated as the asymptote.
	conicDenominatorε = 1e-9
	newtonTolerance   = 1e-12
	newtonMaxIter     = 100
)

// OrbitType is derived from the eccentricity, never stored.
type OrbitType uint8

const (
	Circular OrbitType = iota + 1
	Elliptical
	Parabolic
	Hyperbolic
)

func (t OrbitType) String() string {
	switch t {
	case Circular:
		return "circular"
	case Elliptical:
		return "elliptical"
	case Parabolic:
		return "parabolic"
	case Hyperbolic:
		return "hyperbolic"
	}
	return "unknown"
}

// Closed returns whether the conic is an ellipse or a circle.
func (t OrbitType) Closed() bool {
	return t == Circular || t == Elliptical
}

// Classify returns the conic type of the eccentricity, using a tolerance around 0 and 1.
func Classify(e float64) (OrbitType, error) {
	switch {
	case math.IsNaN(e) || e < -eccentricityε:
		return 0, domainf("eccentricity %g", e)
	case math.Abs(e) < eccentricityε:
		return Circular, nil
	case math.Abs(e-1) < eccentricityε:
		return Parabolic, nil
	case e < 1:
		return Elliptical, nil
	default:
		return Hyperbolic, nil
	}
}

// checkShape enforces the sign convention: a > 0 for closed orbits and a < 0 for hyperbolas.
func checkShape(a, e float64) (OrbitType, error) {
	kind, err := Classify(e)
	if err != nil {
		return kind, err
	}
	switch kind {
	case Parabolic:
		return kind, undefinedf("semi-major axis is infinite for e=%g, use the semi-parameter", e)
	case Hyperbolic:
		if a >= 0 {
			return kind, invalidf("hyperbolic orbit (e=%g) requires a < 0, got %g", e, a)
		}
	default:
		if a <= 0 {
			return kind, invalidf("closed orbit (e=%g) requires a > 0, got %g", e, a)
		}
	}
	return kind, nil
}

// RadiusAtTrueAnomaly returns a(1-e²)/(1+e·cos ν). Hyperbolas use a < 0.
func RadiusAtTrueAnomaly(a, e, ν float64) (float64, error) {
	if _, err := checkShape(a, e); err != nil {
		return 0, err
	}
	return ConicRadius(a*(1-e*e), e, ν)
}

// ConicRadius returns p/(1+e·cos ν) for the semi-parameter p, which is valid
// for every conic including the parabola. It returns ErrOutOfDomain at or
// beyond the asymptote of an open orbit.
func ConicRadius(p, e, ν float64) (float64, error) {
	if p <= 0 || e < 0 {
		return 0, invalidf("conic needs p > 0 and e ≥ 0 (got %g, %g)", p, e)
	}
	den := 1 + e*math.Cos(ν)
	if den < conicDenominatorε {
		return 0, domainf("true anomaly %.6f rad is outside the asymptotes of e=%g", ν, e)
	}
	return p / den, nil
}

// HyperbolicTrueAnomalyLimit returns arccos(-1/e) - margin, which bounds the
// usable true anomalies of a hyperbola to ±limit.
func HyperbolicTrueAnomalyLimit(e, margin float64) (float64, error) {
	if e <= 1 {
		return 0, domainf("no asymptote for e=%g", e)
	}
	lim := math.Acos(-1/e) - margin
	if lim <= 0 {
		return 0, domainf("margin %g exceeds the asymptote angle of e=%g", margin, e)
	}
	return lim, nil
}

// SpeedAtRadius returns the vis-viva speed. Closed orbits use sqrt(μ(2/r - 1/a)),
// hyperbolas (a < 0) use sqrt(μ(2/r + 1/|a|)) and parabolas sqrt(2μ/r).
func SpeedAtRadius(μ, a, e, r float64) (float64, error) {
	if μ <= 0 {
		return 0, invalidf("μ must be positive (got %g)", μ)
	}
	if r <= 0 {
		return 0, domainf("radius %g", r)
	}
	kind, err := Classify(e)
	if err != nil {
		return 0, err
	}
	switch kind {
	case Parabolic:
		return math.Sqrt(2 * μ / r), nil
	case Hyperbolic:
		if a >= 0 {
			return 0, invalidf("hyperbolic orbit (e=%g) requires a < 0, got %g", e, a)
		}
		if rp := math.Abs(a) * (e - 1); r < rp*(1-1e-9) {
			return 0, domainf("radius %g is below periapsis %g", r, rp)
		}
		return math.Sqrt(μ * (2/r + 1/math.Abs(a))), nil
	default:
		if a <= 0 {
			return 0, invalidf("closed orbit (e=%g) requires a > 0, got %g", e, a)
		}
		rp, ra := a*(1-e), a*(1+e)
		if r < rp*(1-1e-9) || r > ra*(1+1e-9) {
			return 0, domainf("radius %g is outside [%g, %g]", r, rp, ra)
		}
		return math.Sqrt(math.Max(μ*(2/r-1/a), 0)), nil
	}
}

// SemiMajorAxisFromState returns -μ/(2ξ) from the specific energy ξ = v²/2 - μ/r.
func SemiMajorAxisFromState(μ, r, v float64) (float64, error) {
	if μ <= 0 || r <= 0 {
		return 0, invalidf("μ and r must be positive (got %g, %g)", μ, r)
	}
	ξ := v*v/2 - μ/r
	if math.Abs(ξ) < 1e-12*μ/r {
		return math.Inf(1), undefinedf("parabolic energy")
	}
	return -μ / (2 * ξ), nil
}

// Period returns the orbital period in seconds. Open orbits return +Inf with ErrUndefinedResult.
func Period(μ, a, e float64) (float64, error) {
	kind, err := checkShape(a, e)
	if kind == Parabolic || kind == Hyperbolic {
		return math.Inf(1), undefinedf("period of a %s orbit", kind)
	}
	if err != nil {
		return 0, err
	}
	if μ <= 0 {
		return 0, invalidf("μ must be positive (got %g)", μ)
	}
	return 2 * math.Pi * math.Sqrt(a*a*a/μ), nil
}

// MeanMotion returns sqrt(μ/|a|³) in rad/s.
func MeanMotion(μ, a float64) float64 {
	a = math.Abs(a)
	return math.Sqrt(μ / (a * a * a))
}

// EccentricFromTrue converts the true anomaly of a closed orbit to its eccentric anomaly.
func EccentricFromTrue(ν, e float64) float64 {
	sν, cν := math.Sincos(ν)
	den := 1 + e*cν
	return math.Atan2(math.Sqrt(1-e*e)*sν/den, (e+cν)/den)
}

// TrueFromEccentric converts the eccentric anomaly of a closed orbit to its true anomaly.
func TrueFromEccentric(E, e float64) float64 {
	sE, cE := math.Sincos(E)
	return math.Atan2(math.Sqrt(1-e*e)*sE, cE-e)
}

// MeanFromEccentric is Kepler's equation.
func MeanFromEccentric(E, e float64) float64 {
	return E - e*math.Sin(E)
}

// EccentricFromMean solves Kepler's equation M = E - e·sin E with Newton's method.
func EccentricFromMean(M, e float64) (float64, error) {
	if e < 0 || e >= 1 {
		return 0, domainf("elliptic anomaly for e=%g", e)
	}
	M = wrapπ(M)
	E := M
	if e > 0.8 {
		E = math.Pi * sign(M)
	}
	for i := 0; i < newtonMaxIter; i++ {
		δ := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= δ
		if math.Abs(δ) < newtonTolerance {
			return E, nil
		}
	}
	return E, nonconvf("Kepler's equation for M=%g and e=%g", M, e)
}

// HyperbolicFromTrue converts a hyperbolic true anomaly to the hyperbolic anomaly H.
func HyperbolicFromTrue(ν, e float64) (float64, error) {
	sν, cν := math.Sincos(ν)
	den := 1 + e*cν
	if e <= 1 || den < conicDenominatorε {
		return 0, domainf("true anomaly %.6f for e=%g", ν, e)
	}
	return math.Asinh(math.Sqrt(e*e-1) * sν / den), nil
}

// TrueFromHyperbolic converts the hyperbolic anomaly to the true anomaly.
func TrueFromHyperbolic(H, e float64) float64 {
	return 2 * math.Atan(math.Sqrt((e+1)/(e-1))*math.Tanh(H/2))
}

// MeanFromHyperbolic is the hyperbolic Kepler equation, M = e·sinh H - H.
func MeanFromHyperbolic(H, e float64) float64 {
	return e*math.Sinh(H) - H
}

// HyperbolicFromMean solves M = e·sinh H - H with Newton's method.
func HyperbolicFromMean(M, e float64) (float64, error) {
	if e <= 1 {
		return 0, domainf("hyperbolic anomaly for e=%g", e)
	}
	H := math.Asinh(M / e)
	for i := 0; i < newtonMaxIter; i++ {
		δ := (e*math.Sinh(H) - H - M) / (e*math.Cosh(H) - 1)
		H -= δ
		if math.Abs(δ) < newtonTolerance*math.Max(1, math.Abs(H)) {
			return H, nil
		}
	}
	return H, nonconvf("hyperbolic Kepler's equation for M=%g and e=%g", M, e)
}

// TrueFromMean returns the true anomaly of any conic from its mean anomaly. For
// parabolas the mean anomaly is the one of Barker's equation, M = D + D³/3 with D = tan(ν/2).
func TrueFromMean(M, e float64) (float64, error) {
	kind, err := Classify(e)
	if err != nil {
		return 0, err
	}
	switch kind {
	case Parabolic:
		B := 1.5 * M
		A := math.Cbrt(B + math.Sqrt(1+B*B))
		return 2 * math.Atan(A-1/A), nil
	case Hyperbolic:
		H, err := HyperbolicFromMean(M, e)
		if err != nil {
			return 0, err
		}
		return TrueFromHyperbolic(H, e), nil
	default:
		E, err := EccentricFromMean(M, e)
		if err != nil {
			return 0, err
		}
		return TrueFromEccentric(E, e), nil
	}
}

// MeanFromTrue is the inverse of TrueFromMean.
func MeanFromTrue(ν, e float64) (float64, error) {
	kind, err := Classify(e)
	if err != nil {
		return 0, err
	}
	switch kind {
	case Parabolic:
		D := math.Tan(ν / 2)
		return D + D*D*D/3, nil
	case Hyperbolic:
		H, err := HyperbolicFromTrue(ν, e)
		if err != nil {
			return 0, err
		}
		return MeanFromHyperbolic(H, e), nil
	default:
		return MeanFromEccentric(EccentricFromTrue(ν, e), e), nil
	}
}
