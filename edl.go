package rocket

import (
	"math"
	"runtime"
	"sync"

	kitlog "github.com/go-kit/kit/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"
)

const (
	// DefaultEDLStep is the explicit Euler step in seconds.
	DefaultEDLStep = 0.1
	// DefaultEDLMaxDuration bounds the simulated time of an entry.
	DefaultEDLMaxDuration = 500.0
	// DefaultEDLSampleInterval is the minimum time between two retained samples.
	DefaultEDLSampleInterval = 0.3
	// DefaultTerminalSpeed is the speed under which the entry is considered over.
	DefaultTerminalSpeed = 50.0
)

// EDLTermination is why an entry integration stopped. All are normal.
type EDLTermination uint8

const (
	EDLGroundContact EDLTermination = iota + 1
	EDLTerminalSpeed
	EDLMaxDuration
)

func (e EDLTermination) String() string {
	switch e {
	case EDLGroundContact:
		return "ground contact"
	case EDLTerminalSpeed:
		return "terminal speed"
	case EDLMaxDuration:
		return "max duration"
	}
	return "unknown"
}

// EDLConfig configures SimulateEDL. Zero durations and speeds select the defaults.
type EDLConfig struct {
	Body            CentralBody // must have an atmosphere
	EntrySpeed      float64     // m/s
	FlightPathAngle float64     // degrees, negative when descending
	EntryAltitude   float64     // m, the atmosphere interface if zero
	Mass            float64     // kg
	DragCoefficient float64
	ReferenceArea   float64 // m^2
	Step            float64 // s
	MaxDuration     float64 // s
	SampleInterval  float64 // s
	TerminalSpeed   float64 // m/s
	MaxSteps        int
	Logger          kitlog.Logger
}

// MarsEntry is a capsule entering the Martian atmosphere.
var MarsEntry = EDLConfig{
	Body:            Mars,
	EntrySpeed:      5500,
	FlightPathAngle: -12,
	Mass:            1000,
	DragCoefficient: 1.5,
	ReferenceArea:   15,
}

func (c EDLConfig) withDefaults() EDLConfig {
	if c.Step == 0 {
		c.Step = DefaultEDLStep
	}
	if c.MaxDuration == 0 {
		c.MaxDuration = DefaultEDLMaxDuration
	}
	if c.SampleInterval == 0 {
		c.SampleInterval = DefaultEDLSampleInterval
	}
	if c.TerminalSpeed == 0 {
		c.TerminalSpeed = DefaultTerminalSpeed
	}
	if c.EntryAltitude == 0 && c.Body.Atmosphere != nil {
		c.EntryAltitude = c.Body.Atmosphere.InterfaceAltitude
	}
	if c.MaxSteps == 0 && c.Step > 0 {
		c.MaxSteps = int(math.Ceil(c.MaxDuration/c.Step)) + 1
	}
	c.Logger = loggerOrNop(c.Logger)
	return c
}

// Validate returns an ErrInvalidConfiguration before anything is integrated.
func (c EDLConfig) Validate() error {
	if c.Body.Atmosphere == nil {
		return invalidf("%s has no atmosphere to enter", c.Body.Name)
	}
	if err := c.Body.Atmosphere.Validate(); err != nil {
		return err
	}
	if !finite(c.EntrySpeed, c.FlightPathAngle, c.EntryAltitude, c.Mass, c.DragCoefficient, c.ReferenceArea) {
		return invalidf("non finite entry parameters")
	}
	if c.EntrySpeed <= c.TerminalSpeed {
		return invalidf("entry speed %g m/s does not exceed the terminal speed %g m/s", c.EntrySpeed, c.TerminalSpeed)
	}
	if c.FlightPathAngle <= -90 || c.FlightPathAngle >= 90 {
		return invalidf("flight path angle %g° outside of (-90°, 90°)", c.FlightPathAngle)
	}
	if c.Mass <= 0 || c.DragCoefficient <= 0 || c.ReferenceArea <= 0 {
		return invalidf("mass, drag coefficient and reference area must be positive")
	}
	if c.EntryAltitude <= 0 {
		return invalidf("entry altitude must be positive (got %g m)", c.EntryAltitude)
	}
	if !(c.Step > 0) || !(c.MaxDuration >= c.Step) || c.SampleInterval < 0 || !(c.TerminalSpeed > 0) {
		return invalidf("bad step %g s, max duration %g s, sample interval %g s or terminal speed %g m/s",
			c.Step, c.MaxDuration, c.SampleInterval, c.TerminalSpeed)
	}
	if c.MaxSteps < 0 {
		return invalidf("negative step cap")
	}
	return nil
}

// EDLSample is the entry state with its derived loads.
type EDLSample struct {
	Time            float64
	Altitude        float64 // m
	Speed           float64 // m/s
	FlightPathAngle float64 // radians
	DynamicPressure float64 // Pa
	GLoad           float64 // |dv/dt| in g₀
	Mach            float64
	HeatFlux        float64 // W/m^2, Sutton-Graves
}

// EDLResult is the immutable output of SimulateEDL.
type EDLResult struct {
	Config      EDLConfig
	Samples     []EDLSample
	Termination EDLTermination
}

// PeakG returns the sample of highest deceleration.
func (r EDLResult) PeakG() EDLSample {
	var best EDLSample
	for _, s := range r.Samples {
		if s.GLoad > best.GLoad {
			best = s
		}
	}
	return best
}

// PeakHeating returns the sample of highest heat flux.
func (r EDLResult) PeakHeating() EDLSample {
	var best EDLSample
	for _, s := range r.Samples {
		if s.HeatFlux > best.HeatFlux {
			best = s
		}
	}
	return best
}

// PeakDynamicPressure returns the sample of highest dynamic pressure.
func (r EDLResult) PeakDynamicPressure() EDLSample {
	var best EDLSample
	for _, s := range r.Samples {
		if s.DynamicPressure > best.DynamicPressure {
			best = s
		}
	}
	return best
}

// AccelerationProfile returns the deceleration felt during the entry, in m/s^2.
func (r EDLResult) AccelerationProfile() (AccelerationProfile, error) {
	times := make([]float64, len(r.Samples))
	accels := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		times[i] = s.Time
		accels[i] = s.GLoad * StandardGravity
	}
	return NewAccelerationProfile(times, accels)
}

// edlState is (h, v, γ) with the loads of that state.
type edlState struct {
	h, v, γ float64
	sample  EDLSample
	dv      float64
	dγ      float64
	dh      float64
}

func (c EDLConfig) derive(t, h, v, γ float64) edlState {
	body := c.Body
	atm := body.Atmosphere
	ρ := atm.Density(h)
	r := body.Radius + h
	g := body.μ / (r * r)
	q := 0.5 * ρ * v * v
	drag := q * c.DragCoefficient * c.ReferenceArea / c.Mass
	s := edlState{h: h, v: v, γ: γ}
	s.dv = -drag - g*math.Sin(γ)
	s.dγ = (v/r - g/v) * math.Cos(γ)
	s.dh = v * math.Sin(γ)
	s.sample = EDLSample{
		Time:            t,
		Altitude:        h,
		Speed:           v,
		FlightPathAngle: γ,
		DynamicPressure: q,
		GLoad:           math.Abs(s.dv) / StandardGravity,
		Mach:            atm.Mach(v),
		HeatFlux:        atm.SuttonGraves(ρ, v),
	}
	return s
}

// SimulateEDL integrates the planar entry with an explicit Euler scheme until
// the ground is reached, the speed falls under the terminal speed or the
// maximum duration elapses. Samples are retained at most every SampleInterval;
// the first and the final states are always retained.
// A non finite state or hitting MaxSteps returns the partial result along with
// ErrNonConvergence.
func SimulateEDL(cfg EDLConfig) (*EDLResult, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := kitlog.With(cfg.Logger, "subsys", "edl", "body", cfg.Body.Name)
	logger.Log("level", "info", "status", "started", "v0(m/s)", cfg.EntrySpeed, "fpa(deg)", cfg.FlightPathAngle)

	res := &EDLResult{Config: cfg}
	var err error
	t := 0.0
	s := cfg.derive(t, cfg.EntryAltitude, cfg.EntrySpeed, cfg.FlightPathAngle*deg2rad)
	res.Samples = append(res.Samples, s.sample)
	lastKept := 0.0
	for steps := 0; ; steps++ {
		switch {
		case s.h <= 0:
			res.Termination = EDLGroundContact
		case s.v < cfg.TerminalSpeed:
			res.Termination = EDLTerminalSpeed
		case t >= cfg.MaxDuration-cfg.Step*1e-6:
			res.Termination = EDLMaxDuration
		case steps >= cfg.MaxSteps:
			err = nonconvf("entry hit the cap of %d steps at t=%.1f s", cfg.MaxSteps, t)
		}
		if res.Termination != 0 || err != nil {
			break
		}
		h := s.h + s.dh*cfg.Step
		v := s.v + s.dv*cfg.Step
		γ := s.γ + s.dγ*cfg.Step
		t = float64(steps+1) * cfg.Step
		if !finite(h, v, γ) {
			err = nonconvf("entry state diverged at t=%.1f s", t)
			break
		}
		s = cfg.derive(t, h, v, γ)
		if t-lastKept > cfg.SampleInterval {
			res.Samples = append(res.Samples, s.sample)
			lastKept = t
		}
	}
	if last := res.Samples[len(res.Samples)-1]; last.Time < s.sample.Time {
		res.Samples = append(res.Samples, s.sample)
	}
	peak := res.PeakHeating()
	logger.Log("level", "info", "status", "finished", "termination", res.Termination, "samples", len(res.Samples),
		"t(s)", s.sample.Time, "alt(km)", s.h/1e3, "speed(m/s)", s.v,
		"peak_g", res.PeakG().GLoad, "peak_heat(W/m2)", peak.HeatFlux)
	if err != nil {
		logger.Log("level", "critical", "err", err)
	}
	return res, err
}

// EDLDispersion is a Monte Carlo study of an entry under correlated
// errors on the entry speed and flight path angle.
type EDLDispersion struct {
	Nominal     EDLConfig
	SpeedSigma  float64 // m/s
	AngleSigma  float64 // degrees
	Correlation float64 // between speed and angle errors, in [-1, 1]
	Runs        int
	Workers     int // runtime.NumCPU() if zero
	Seed        uint64
}

// DispersionRun is one entry of a dispersion study.
type DispersionRun struct {
	EntrySpeed, FlightPathAngle float64
	PeakG, PeakHeatFlux         float64
	Termination                 EDLTermination
	Err                         error
}

// DispersionSummary gathers the statistics of the successful runs.
type DispersionSummary struct {
	Runs                      []DispersionRun
	Failures                  int
	MeanPeakG, StdPeakG       float64
	MeanPeakHeat, StdPeakHeat float64
	MaxPeakG, MaxPeakHeat     float64
}

// Run draws the entry conditions then simulates them concurrently. Runs
// which fail are counted and kept with their error. The same seed always
// yields the same summary.
func (d EDLDispersion) Run() (*DispersionSummary, error) {
	if d.Runs <= 0 {
		return nil, invalidf("dispersion needs a positive number of runs (got %d)", d.Runs)
	}
	if d.SpeedSigma < 0 || d.AngleSigma < 0 || math.Abs(d.Correlation) > 1 || !finite(d.SpeedSigma, d.AngleSigma, d.Correlation) {
		return nil, invalidf("bad dispersion σv=%g, σγ=%g, ρ=%g", d.SpeedSigma, d.AngleSigma, d.Correlation)
	}
	nominal := d.Nominal.withDefaults()
	if err := nominal.Validate(); err != nil {
		return nil, err
	}
	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > d.Runs {
		workers = d.Runs
	}

	draws := make([][]float64, d.Runs)
	if d.SpeedSigma == 0 && d.AngleSigma == 0 {
		for i := range draws {
			draws[i] = []float64{nominal.EntrySpeed, nominal.FlightPathAngle}
		}
	} else {
		cov := d.Correlation * d.SpeedSigma * d.AngleSigma
		// A tiny floor keeps the covariance positive definite when a σ is zero.
		σv2 := math.Max(d.SpeedSigma*d.SpeedSigma, 1e-12)
		σγ2 := math.Max(d.AngleSigma*d.AngleSigma, 1e-12)
		if math.Abs(d.Correlation) == 1 {
			cov *= 1 - 1e-9
		}
		normal, ok := distmv.NewNormal(
			[]float64{nominal.EntrySpeed, nominal.FlightPathAngle},
			mat.NewSymDense(2, []float64{σv2, cov, cov, σγ2}),
			rand.NewSource(d.Seed))
		if !ok {
			return nil, invalidf("dispersion covariance is not positive definite")
		}
		for i := range draws {
			draws[i] = normal.Rand(nil)
		}
	}

	runs := make([]DispersionRun, d.Runs)
	jobs := make(chan int, d.Runs)
	for i := range runs {
		jobs <- i
	}
	close(jobs)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				cfg := nominal
				cfg.Logger = nil
				cfg.EntrySpeed, cfg.FlightPathAngle = draws[i][0], draws[i][1]
				run := DispersionRun{EntrySpeed: cfg.EntrySpeed, FlightPathAngle: cfg.FlightPathAngle}
				res, err := SimulateEDL(cfg)
				if err != nil {
					run.Err = err
				} else {
					run.Termination = res.Termination
					run.PeakG = res.PeakG().GLoad
					run.PeakHeatFlux = res.PeakHeating().HeatFlux
				}
				runs[i] = run
			}
		}()
	}
	wg.Wait()

	sum := &DispersionSummary{Runs: runs}
	var gs, heats []float64
	for _, r := range runs {
		if r.Err != nil {
			sum.Failures++
			continue
		}
		gs = append(gs, r.PeakG)
		heats = append(heats, r.PeakHeatFlux)
		sum.MaxPeakG = math.Max(sum.MaxPeakG, r.PeakG)
		sum.MaxPeakHeat = math.Max(sum.MaxPeakHeat, r.PeakHeatFlux)
	}
	if len(gs) == 0 {
		return sum, nonconvf("all %d dispersed entries failed", d.Runs)
	}
	sum.MeanPeakG, sum.StdPeakG = stat.MeanStdDev(gs, nil)
	sum.MeanPeakHeat, sum.StdPeakHeat = stat.MeanStdDev(heats, nil)
	if len(gs) == 1 {
		sum.StdPeakG, sum.StdPeakHeat = 0, 0
	}
	nominal.Logger.Log("level", "info", "subsys", "edl", "status", "dispersion", "runs", d.Runs, "failures", sum.Failures,
		"mean_peak_g", sum.MeanPeakG, "std_peak_g", sum.StdPeakG)
	return sum, nil
}
