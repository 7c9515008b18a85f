package rocket

import (
	"math"
)

// HohmannTransfer is the two-burn transfer between two coplanar circular orbits.
// All values are derived once by NewHohmannTransfer.
type HohmannTransfer struct {
	R1, R2 float64 // radii of the departure and arrival orbits, m
	μ      float64
	// TargetRate is the mean angular rate of the target in rad/s.
	TargetRate   float64
	A, E         float64 // transfer ellipse
	TransferTime float64 // seconds
	ΔvDeparture  float64
	ΔvArrival    float64
	// PhaseAngle is how far the target must lead the origin at departure, in [0, 2π).
	PhaseAngle float64
}

// CircularRate returns the angular rate of a circular orbit of radius r.
func CircularRate(μ, r float64) float64 {
	return math.Sqrt(μ / (r * r * r))
}

// CircularSpeed returns the speed of a circular orbit of radius r.
func CircularSpeed(μ, r float64) float64 {
	return math.Sqrt(μ / r)
}

// NewHohmannTransfer computes the transfer from r1 to r2 about a body of
// gravitational parameter μ. ωTarget is the target's mean angular rate, usually
// CircularRate(μ, r2).
func NewHohmannTransfer(r1, r2, μ, ωTarget float64) (HohmannTransfer, error) {
	if r1 <= 0 || r2 <= 0 {
		return HohmannTransfer{}, invalidf("orbit radii must be positive (got %g, %g)", r1, r2)
	}
	if μ <= 0 {
		return HohmannTransfer{}, invalidf("μ must be positive (got %g)", μ)
	}
	if !finite(r1, r2, μ, ωTarget) {
		return HohmannTransfer{}, invalidf("non finite transfer parameters")
	}
	h := HohmannTransfer{R1: r1, R2: r2, μ: μ, TargetRate: ωTarget}
	h.A = (r1 + r2) / 2
	h.E = math.Abs(r2-r1) / (r2 + r1)
	h.TransferTime = math.Pi * math.Sqrt(h.A*h.A*h.A/μ)
	vt1 := math.Sqrt(μ * (2/r1 - 1/h.A))
	vt2 := math.Sqrt(μ * (2/r2 - 1/h.A))
	h.ΔvDeparture = math.Abs(vt1 - CircularSpeed(μ, r1))
	h.ΔvArrival = math.Abs(CircularSpeed(μ, r2) - vt2)
	h.PhaseAngle = wrap2π(math.Pi - ωTarget*h.TransferTime)
	return h, nil
}

// TotalΔv returns the sum of both burns.
func (h HohmannTransfer) TotalΔv() float64 {
	return h.ΔvDeparture + h.ΔvArrival
}

// SynodicPeriod returns the time between two identical departure geometries,
// or +Inf with ErrUndefinedResult when both orbits share the same rate.
func (h HohmannTransfer) SynodicPeriod() (float64, error) {
	Δω := math.Abs(CircularRate(h.μ, h.R1) - h.TargetRate)
	if Δω < 1e-15 {
		return math.Inf(1), undefinedf("no synodic period for equal angular rates")
	}
	return 2 * math.Pi / Δω, nil
}

// HohmannTrajectory samples the transfer in the plane of the orbits.
type HohmannTrajectory struct {
	Time        []float64
	Spacecraft  [][]float64
	Origin      [][]float64
	Destination [][]float64
}

// Trajectory returns n+1 evenly spaced samples of the spacecraft, the origin and the
// target from departure to arrival, with the origin at the angle θ0 at departure.
func (h HohmannTransfer) Trajectory(θ0 float64, n int) (HohmannTrajectory, error) {
	if n < 1 {
		return HohmannTrajectory{}, invalidf("at least one interval is needed (got %d)", n)
	}
	outward := h.R2 >= h.R1
	nT := MeanMotion(h.μ, h.A)
	ω1 := CircularRate(h.μ, h.R1)
	p := h.A * (1 - h.E*h.E)
	traj := HohmannTrajectory{
		Time:        make([]float64, n+1),
		Spacecraft:  make([][]float64, n+1),
		Origin:      make([][]float64, n+1),
		Destination: make([][]float64, n+1),
	}
	for k := 0; k <= n; k++ {
		t := h.TransferTime * float64(k) / float64(n)
		traj.Time[k] = t
		var ν float64
		if h.E > 0 {
			M := nT * t
			if !outward {
				// Inward transfers depart from the apoapsis.
				M += math.Pi
			}
			E, err := EccentricFromMean(M, h.E)
			if err != nil {
				return HohmannTrajectory{}, err
			}
			ν = TrueFromEccentric(E, h.E)
		} else {
			ν = nT * t
		}
		r, err := ConicRadius(p, h.E, ν)
		if err != nil {
			return HohmannTrajectory{}, err
		}
		θ := θ0 + ν
		if !outward {
			θ -= math.Pi
		}
		traj.Spacecraft[k] = polar(r, θ)
		traj.Origin[k] = polar(h.R1, θ0+ω1*t)
		traj.Destination[k] = polar(h.R2, θ0+h.PhaseAngle+h.TargetRate*t)
	}
	return traj, nil
}

func polar(r, θ float64) []float64 {
	s, c := math.Sincos(θ)
	return []float64{r * c, r * s, 0}
}
