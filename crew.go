package rocket

import (
	"fmt"
	"math"

	"github.com/ready-steady/ode/dopri"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

const (
	// SustainedGLimit is the NASA limit on the RMS acceleration felt by the crew.
	SustainedGLimit = 4.0
	// PeakGLimit is the NASA limit on the peak acceleration felt by the crew.
	PeakGLimit = 8.0
)

// DampingType classifies a seat by its damping ratio.
type DampingType uint8

const (
	Underdamped DampingType = iota + 1
	CriticallyDamped
	Overdamped
)

func (d DampingType) String() string {
	switch d {
	case Underdamped:
		return "underdamped"
	case CriticallyDamped:
		return "critically damped"
	case Overdamped:
		return "overdamped"
	}
	return fmt.Sprintf("DampingType(%d)", uint8(d))
}

// SeatParameters is a single degree of freedom model of a crew member in their seat.
type SeatParameters struct {
	Name               string
	Mass               float64 // kg, crew member and seat pan
	SpringStiffness    float64 // N/m
	DampingCoefficient float64 // N·s/m
}

// StandardSeat is a typical crew couch.
var StandardSeat = SeatParameters{Name: "Standard", Mass: 80, SpringStiffness: 50000, DampingCoefficient: 2000}

// Validate returns an ErrInvalidConfiguration when the seat cannot oscillate.
func (s SeatParameters) Validate() error {
	if !finite(s.Mass, s.SpringStiffness, s.DampingCoefficient) {
		return invalidf("seat %q has non finite parameters", s.Name)
	}
	if s.Mass <= 0 {
		return invalidf("seat %q mass must be positive (got %g kg)", s.Name, s.Mass)
	}
	if s.SpringStiffness <= 0 {
		return invalidf("seat %q stiffness must be positive (got %g N/m)", s.Name, s.SpringStiffness)
	}
	if s.DampingCoefficient < 0 {
		return invalidf("seat %q damping must not be negative (got %g N·s/m)", s.Name, s.DampingCoefficient)
	}
	return nil
}

// NaturalFrequency returns the undamped natural frequency in Hz.
func (s SeatParameters) NaturalFrequency() (float64, error) {
	if err := s.Validate(); err != nil {
		return math.NaN(), err
	}
	return math.Sqrt(s.SpringStiffness/s.Mass) / (2 * math.Pi), nil
}

// DampingRatio returns ζ = c/(2·sqrt(k·m)).
func (s SeatParameters) DampingRatio() (float64, error) {
	if err := s.Validate(); err != nil {
		return math.NaN(), err
	}
	return s.DampingCoefficient / (2 * math.Sqrt(s.SpringStiffness*s.Mass)), nil
}

// DampingType classifies the seat, with critical damping covering ζ in [0.9, 1.1].
func (s SeatParameters) DampingType() (DampingType, error) {
	ζ, err := s.DampingRatio()
	if err != nil {
		return 0, err
	}
	switch {
	case ζ < 0.9:
		return Underdamped, nil
	case ζ > 1.1:
		return Overdamped, nil
	default:
		return CriticallyDamped, nil
	}
}

func (s SeatParameters) String() string {
	return fmt.Sprintf("%s seat (m=%g kg, k=%g N/m, c=%g N·s/m)", s.Name, s.Mass, s.SpringStiffness, s.DampingCoefficient)
}

// SafetyLimits are the thresholds a crew response is assessed against, in g.
type SafetyLimits struct {
	SustainedG float64
	PeakG      float64
}

// DefaultSafetyLimits are the NASA human rating limits.
var DefaultSafetyLimits = SafetyLimits{SustainedG: SustainedGLimit, PeakG: PeakGLimit}

// Validate returns an ErrInvalidConfiguration unless both limits are positive.
func (l SafetyLimits) Validate() error {
	if !(l.SustainedG > 0) || !(l.PeakG > 0) || math.IsInf(l.SustainedG, 0) || math.IsInf(l.PeakG, 0) {
		return invalidf("safety limits must be positive and finite (got %+v)", l)
	}
	return nil
}

// CrewResponse is the solved seat response to an acceleration profile.
// Accelerations are in g, displacements in meters.
type CrewResponse struct {
	Seat         SeatParameters
	Time         []float64
	SpacecraftG  []float64
	CrewG        []float64
	Displacement []float64
	Velocity     []float64

	PeakSpacecraftG float64
	PeakCrewG       float64
	RMSSpacecraftG  float64
	RMSCrewG        float64
	MaxDisplacement float64
}

// CrewAssessment is the verdict of a CrewResponse against SafetyLimits.
type CrewAssessment struct {
	Limits      SafetyLimits
	SustainedOK bool
	PeakOK      bool
	Safe        bool
	// ReductionPercent is how much the seat lowers the peak g, negative when it amplifies it.
	ReductionPercent float64
}

// Assess checks the response against the limits.
func (r CrewResponse) Assess(limits SafetyLimits) (CrewAssessment, error) {
	if err := limits.Validate(); err != nil {
		return CrewAssessment{}, err
	}
	a := CrewAssessment{
		Limits:      limits,
		SustainedOK: r.RMSCrewG < limits.SustainedG,
		PeakOK:      r.PeakCrewG < limits.PeakG,
	}
	a.Safe = a.SustainedOK && a.PeakOK
	if r.PeakSpacecraftG > 0 {
		a.ReductionPercent = (1 - r.PeakCrewG/r.PeakSpacecraftG) * 100
	}
	return a, nil
}

const (
	// crewStepsPerPeriod is the resolution of the internal grid over one natural period of the seat.
	crewStepsPerPeriod = 64
	crewMaxGridPoints  = 1 << 20
)

// SimulateCrew solves m·x'' + c·x' + k·x = m·a(t) from rest with a Dormand-Prince
// integrator, the profile being linearly interpolated between its samples.
// The felt acceleration a − x'' = (c·x' + k·x)/m follows from the equation of
// motion. Peaks and RMS values are taken on an internal grid resolving the
// natural period of the seat; the response is reported at the profile sample times.
func SimulateCrew(seat SeatParameters, profile AccelerationProfile) (*CrewResponse, error) {
	if err := seat.Validate(); err != nil {
		return nil, err
	}
	n := profile.Len()
	if n < 2 {
		return nil, invalidf("crew simulation needs a profile of at least two samples")
	}
	cm := seat.DampingCoefficient / seat.Mass
	km := seat.SpringStiffness / seat.Mass
	period := 2 * math.Pi / math.Sqrt(km)
	grid, index := crewGrid(profile.Time, math.Max(period/crewStepsPerPeriod, profile.Duration()/crewMaxGridPoints))

	integrator, err := dopri.New(dopri.DefaultConfig())
	if err != nil {
		return nil, nonconvf("dopri setup: %s", err)
	}
	eom := func(t float64, y, f []float64) {
		f[0] = y[1]
		f[1] = profile.At(t) - cm*y[1] - km*y[0]
	}
	values, _, err := integrator.Compute(eom, []float64{0, 0}, grid)
	if err != nil {
		return nil, nonconvf("seat %q: %s", seat.Name, err)
	}
	// The output may or may not repeat the initial condition.
	ng := len(grid)
	offset := 0
	switch len(values) {
	case 2 * ng:
	case 2 * (ng - 1):
		offset = 1
	default:
		return nil, nonconvf("seat %q: integrator returned %d values for %d points", seat.Name, len(values), ng)
	}
	x := make([]float64, ng)
	v := make([]float64, ng)
	felt := make([]float64, ng)
	for k := offset; k < ng; k++ {
		x[k] = values[2*(k-offset)]
		v[k] = values[2*(k-offset)+1]
		felt[k] = (cm*v[k] + km*x[k]) / StandardGravity
		if !finite(x[k], v[k], felt[k]) {
			return nil, nonconvf("seat %q: non finite response at t=%g", seat.Name, grid[k])
		}
	}

	r := &CrewResponse{
		Seat:         seat,
		Time:         append([]float64(nil), profile.Time...),
		SpacecraftG:  make([]float64, n),
		CrewG:        make([]float64, n),
		Displacement: make([]float64, n),
		Velocity:     make([]float64, n),
	}
	for j, k := range index {
		r.SpacecraftG[j] = profile.Accel[j] / StandardGravity
		r.CrewG[j] = felt[k]
		r.Displacement[j] = x[k]
		r.Velocity[j] = v[k]
	}
	input := make([]float64, ng)
	for k, t := range grid {
		input[k] = profile.At(t) / StandardGravity
	}
	r.PeakSpacecraftG = peakAbs(r.SpacecraftG)
	r.PeakCrewG = peakAbs(felt)
	r.RMSSpacecraftG = rms(input, grid)
	r.RMSCrewG = rms(felt, grid)
	r.MaxDisplacement = peakAbs(x)
	return r, nil
}

// crewGrid subdivides every interval of times into steps no longer than h.
// index[j] is the position of times[j] in the grid.
func crewGrid(times []float64, h float64) (grid []float64, index []int) {
	index = make([]int, len(times))
	for j, t := range times {
		index[j] = len(grid)
		grid = append(grid, t)
		if j == len(times)-1 {
			break
		}
		Δ := times[j+1] - t
		m := int(math.Ceil(Δ/h - 1e-9))
		for k := 1; k < m; k++ {
			grid = append(grid, t+Δ*float64(k)/float64(m))
		}
	}
	return grid, index
}

// CompareSeats runs the same profile through each seat, in order.
func CompareSeats(profile AccelerationProfile, seats ...SeatParameters) ([]*CrewResponse, error) {
	if len(seats) == 0 {
		return nil, invalidf("no seat to compare")
	}
	out := make([]*CrewResponse, len(seats))
	for i, seat := range seats {
		r, err := SimulateCrew(seat, profile)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func peakAbs(v []float64) float64 {
	return math.Max(floats.Max(v), -floats.Min(v))
}

// rms is the time weighted root mean square of v sampled at t, by the trapezoidal rule.
func rms(v, t []float64) float64 {
	sq := make([]float64, len(v))
	floats.MulTo(sq, v, v)
	return math.Sqrt(integrate.Trapezoidal(t, sq) / (t[len(t)-1] - t[0]))
}
