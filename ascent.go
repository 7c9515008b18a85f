package rocket

import (
	"math"

	"github.com/ChristopherRabotin/ode"
	kitlog "github.com/go-kit/kit/log"
)

const (
	// DefaultAscentStep is the default RK4 step in seconds.
	DefaultAscentStep = 0.5
	// ImpactAltitude is the altitude below which the vehicle is considered to have hit the ground.
	ImpactAltitude = -100.0
	// VerticalRiseSpeed is the speed below which the default steering thrusts straight up.
	VerticalRiseSpeed     = 50.0
	defaultAscentMaxSteps = 2000000
)

// SteeringLaw returns the unit thrust direction for the time since lift off
// and the inertial position and velocity. It is only called while powered.
type SteeringLaw func(t float64, R, V []float64) []float64

// NewGravityTurn returns the vertical rise then gravity turn law: below
// verticalSpeed the thrust is radial, above it the thrust blends the radial and
// velocity directions with a pitch over fraction of min(t/pitchTime, 1)·maxBlend.
func NewGravityTurn(verticalSpeed, pitchTime, maxBlend float64) SteeringLaw {
	return func(t float64, R, V []float64) []float64 {
		radial := unit(R)
		if norm(V) < verticalSpeed {
			return radial
		}
		p := math.Min(t/pitchTime, 1) * maxBlend
		vHat := unit(V)
		dir := make([]float64, 3)
		for i := 0; i < 3; i++ {
			dir[i] = (1-p)*radial[i] + p*vHat[i]
		}
		return unit(dir)
	}
}

// GravityTurnSteering is the default steering law.
var GravityTurnSteering = NewGravityTurn(VerticalRiseSpeed, 60, 0.3)

// AscentPhase is the force law in effect at a sample.
type AscentPhase uint8

const (
	PhaseVertical AscentPhase = iota + 1
	PhaseGravityTurn
	PhaseCoast
)

func (p AscentPhase) String() string {
	switch p {
	case PhaseVertical:
		return "vertical"
	case PhaseGravityTurn:
		return "gravity turn"
	case PhaseCoast:
		return "coast"
	}
	return "unknown"
}

// AscentTermination is why an ascent integration stopped.
type AscentTermination uint8

const (
	AscentDurationElapsed AscentTermination = iota + 1
	AscentImpact
	AscentAborted // hit the step cap or diverged
)

func (a AscentTermination) String() string {
	switch a {
	case AscentDurationElapsed:
		return "duration elapsed"
	case AscentImpact:
		return "impact"
	case AscentAborted:
		return "aborted"
	}
	return "unknown"
}

// AscentConfig configures SimulateAscent. Zero values select the defaults.
type AscentConfig struct {
	Vehicle  VehicleParameters
	Body     CentralBody // Earth if unset
	Duration float64     // s, required
	Step     float64     // s, DefaultAscentStep if zero
	Steering SteeringLaw // GravityTurnSteering if nil
	// Launch site in degrees, on the surface.
	LaunchLatitude, LaunchLongitude float64
	// IncludeBodyRotation adds the surface velocity of the launch site.
	IncludeBodyRotation bool
	// InitialPosition and InitialVelocity override the launch site when both are set.
	InitialPosition, InitialVelocity []float64
	Perturbations                    Perturbations
	MaxSteps                         int // hard cap on RK4 steps
	Logger                           kitlog.Logger
}

func (c AscentConfig) withDefaults() AscentConfig {
	if c.Body.Radius == 0 {
		c.Body = Earth
	}
	if c.Step == 0 {
		c.Step = DefaultAscentStep
	}
	if c.Steering == nil {
		c.Steering = GravityTurnSteering
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = defaultAscentMaxSteps
	}
	c.Logger = loggerOrNop(c.Logger)
	return c
}

// Validate returns an ErrInvalidConfiguration before anything is integrated.
func (c AscentConfig) Validate() error {
	if err := c.Vehicle.Validate(); err != nil {
		return err
	}
	if !(c.Duration > 0) || !(c.Step > 0) || math.IsInf(c.Duration, 0) {
		return invalidf("ascent needs a finite positive duration and step (got %g s, %g s)", c.Duration, c.Step)
	}
	if c.Step > c.Duration {
		return invalidf("step %g s exceeds the duration %g s", c.Step, c.Duration)
	}
	if c.MaxSteps < 0 {
		return invalidf("negative step cap")
	}
	if (c.InitialPosition == nil) != (c.InitialVelocity == nil) {
		return invalidf("initial position and velocity must be provided together")
	}
	if c.InitialPosition != nil && (len(c.InitialPosition) != 3 || len(c.InitialVelocity) != 3) {
		return invalidf("initial state vectors must have three components")
	}
	if c.Body.Atmosphere != nil {
		if err := c.Body.Atmosphere.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AscentSample is the vehicle state at one integration step.
type AscentSample struct {
	Time            float64
	R, V            []float64
	Mass            float64
	Altitude        float64
	Speed           float64
	DynamicPressure float64 // Pa
	AccelerationG   float64 // |dV/dt| in g₀
	Phase           AscentPhase
}

// AscentResult is the immutable output of SimulateAscent.
type AscentResult struct {
	Vehicle     VehicleParameters
	Body        CentralBody
	Samples     []AscentSample
	Termination AscentTermination
}

// MaxQ returns the sample of maximum dynamic pressure.
func (r AscentResult) MaxQ() AscentSample {
	var best AscentSample
	for _, s := range r.Samples {
		if s.DynamicPressure > best.DynamicPressure {
			best = s
		}
	}
	return best
}

// MaxAltitude returns the sample of highest altitude.
func (r AscentResult) MaxAltitude() AscentSample {
	best := AscentSample{Altitude: math.Inf(-1)}
	for _, s := range r.Samples {
		if s.Altitude > best.Altitude {
			best = s
		}
	}
	return best
}

// PeakG returns the highest acceleration in g₀.
func (r AscentResult) PeakG() float64 {
	var peak float64
	for _, s := range r.Samples {
		peak = math.Max(peak, s.AccelerationG)
	}
	return peak
}

// Burnout returns the first coasting sample, if any.
func (r AscentResult) Burnout() (AscentSample, bool) {
	for _, s := range r.Samples {
		if s.Phase == PhaseCoast {
			return s, true
		}
	}
	return AscentSample{}, false
}

// AccelerationProfile returns the sensed acceleration magnitude (m/s^2) over time.
func (r AscentResult) AccelerationProfile() (AccelerationProfile, error) {
	times := make([]float64, len(r.Samples))
	accels := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		times[i] = s.Time
		accels[i] = s.AccelerationG * StandardGravity
	}
	return NewAccelerationProfile(times, accels)
}

// ascent implements the ode.Integrable interface over [R, V, m].
type ascent struct {
	cfg         AscentConfig
	state       []float64
	t           float64
	steps       int
	samples     []AscentSample
	termination AscentTermination
	err         error
}

// SimulateAscent integrates the ascent with a fixed step RK4 until the duration
// elapses or the vehicle impacts the surface. The samples gathered before an
// impact are returned. If the step cap is hit, the partial result is returned
// along with ErrNonConvergence.
func SimulateAscent(cfg AscentConfig) (*AscentResult, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &ascent{cfg: cfg, state: make([]float64, 7)}
	var R, V []float64
	if cfg.InitialPosition != nil {
		R, V = cfg.InitialPosition, cfg.InitialVelocity
	} else {
		R = GEO2ECEF(0, cfg.LaunchLatitude*deg2rad, cfg.LaunchLongitude*deg2rad, cfg.Body)
		V = []float64{0, 0, 0}
		if cfg.IncludeBodyRotation {
			V = cross([]float64{0, 0, cfg.Body.RotationRate}, R)
		}
	}
	copy(a.state[0:3], R)
	copy(a.state[3:6], V)
	a.state[6] = cfg.Vehicle.WetMass
	a.samples = make([]AscentSample, 0, int(cfg.Duration/cfg.Step)+2)
	if alt := norm(R) - cfg.Body.Radius; alt < ImpactAltitude {
		return nil, invalidf("initial altitude %g m is below the impact altitude", alt)
	}
	a.record(norm(R) - cfg.Body.Radius)

	logger := kitlog.With(cfg.Logger, "subsys", "ascent", "vehicle", cfg.Vehicle.Name)
	logger.Log("level", "info", "status", "started", "duration(s)", cfg.Duration, "step(s)", cfg.Step)
	ode.NewRK4(0, cfg.Step, a).Solve() // Blocking.
	res := &AscentResult{Vehicle: cfg.Vehicle, Body: cfg.Body, Samples: a.samples, Termination: a.termination}
	final := res.Samples[len(res.Samples)-1]
	logger.Log("level", "info", "status", "finished", "termination", a.termination, "samples", len(res.Samples),
		"t(s)", final.Time, "alt(km)", final.Altitude/1e3, "speed(m/s)", final.Speed, "mass(kg)", final.Mass)
	if a.err != nil {
		logger.Log("level", "critical", "err", a.err)
	}
	return res, a.err
}

// powered returns whether the engines run at this time and mass.
func (a *ascent) powered(t, m float64) bool {
	return a.cfg.Vehicle.SeaLevelThrust > 0 && t < a.cfg.Vehicle.BurnDuration && m > a.cfg.Vehicle.DryMass
}

func (a *ascent) phase(t float64, s []float64) AscentPhase {
	if !a.powered(t, s[6]) {
		return PhaseCoast
	}
	if norm(s[3:6]) < VerticalRiseSpeed {
		return PhaseVertical
	}
	return PhaseGravityTurn
}

// Stop implements the stop call of the integrator. The sample of the current
// state is recorded here since it is called before every step.
func (a *ascent) Stop(t float64) bool {
	if a.t > a.cfg.Duration+a.cfg.Step*1e-6 {
		a.termination = AscentDurationElapsed
		return true
	}
	if !finite(a.state...) {
		a.termination = AscentAborted
		a.err = nonconvf("ascent state diverged at t=%.1f s", a.t)
		return true
	}
	alt := norm(a.state[0:3]) - a.cfg.Body.Radius
	if alt < ImpactAltitude {
		a.termination = AscentImpact
		return true
	}
	a.record(alt)
	if a.steps >= a.cfg.MaxSteps {
		a.termination = AscentAborted
		a.err = nonconvf("ascent hit the cap of %d steps at t=%.1f s", a.cfg.MaxSteps, a.t)
		return true
	}
	return false
}

// record appends the current state unless it was already recorded.
func (a *ascent) record(alt float64) {
	if n := len(a.samples); n > 0 && a.samples[n-1].Time >= a.t {
		return
	}
	R, V := a.state[0:3], a.state[3:6]
	fDot := a.Func(a.t, a.state)
	speed := norm(V)
	a.samples = append(a.samples, AscentSample{
		Time:            a.t,
		R:               []float64{R[0], R[1], R[2]},
		V:               []float64{V[0], V[1], V[2]},
		Mass:            a.state[6],
		Altitude:        alt,
		Speed:           speed,
		DynamicPressure: 0.5 * a.cfg.Body.Density(alt) * speed * speed,
		AccelerationG:   norm(fDot[3:6]) / StandardGravity,
		Phase:           a.phase(a.t, a.state),
	})
}

// GetState returns the state for the integrator.
func (a *ascent) GetState() []float64 {
	s := make([]float64, 7)
	copy(s, a.state)
	return s
}

// SetState sets the updated state and advances the clock.
func (a *ascent) SetState(t float64, s []float64) {
	copy(a.state, s)
	// The step may overshoot the end of the propellant.
	if a.state[6] < a.cfg.Vehicle.DryMass {
		a.state[6] = a.cfg.Vehicle.DryMass
	}
	a.steps++
	a.t = float64(a.steps) * a.cfg.Step
}

// Func is the equation of motion: gravity, drag and thrust on [R, V, m].
func (a *ascent) Func(t float64, f []float64) (fDot []float64) {
	fDot = make([]float64, 7)
	R := []float64{f[0], f[1], f[2]}
	V := []float64{f[3], f[4], f[5]}
	m := f[6]
	body := a.cfg.Body
	r := norm(R)
	speed := norm(V)
	bodyAcc := -body.μ / (r * r * r)
	var drag float64
	if speed > 0 {
		ρ := body.Density(r - body.Radius)
		drag = 0.5 * ρ * speed * speed * a.cfg.Vehicle.DragCoefficient * a.cfg.Vehicle.ReferenceArea / m
	}
	vHat := unit(V)
	var thrust float64
	dir := []float64{0, 0, 0}
	if a.powered(t, m) {
		thrust = a.cfg.Vehicle.SeaLevelThrust / m
		dir = a.cfg.Steering(t, R, V)
		fDot[6] = -a.cfg.Vehicle.MassFlowRate()
	}
	pert := a.cfg.Perturbations.Perturb(t, R, V, body)
	for i := 0; i < 3; i++ {
		fDot[i] = V[i]
		fDot[i+3] = bodyAcc*R[i] - drag*vHat[i] + thrust*dir[i] + pert[i]
	}
	return
}
