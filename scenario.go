package rocket

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Scenario identifies one of the simulations a Runner can dispatch.
type Scenario uint8

const (
	ScenarioAscent Scenario = iota + 1
	ScenarioCrew
	ScenarioEDL
	ScenarioDispersion
	ScenarioHohmann
	ScenarioPorkchop
	ScenarioConstellation
	ScenarioRisk
)

var scenarioNames = [...]string{
	ScenarioAscent:        "ascent",
	ScenarioCrew:          "crew",
	ScenarioEDL:           "edl",
	ScenarioDispersion:    "dispersion",
	ScenarioHohmann:       "hohmann",
	ScenarioPorkchop:      "porkchop",
	ScenarioConstellation: "constellation",
	ScenarioRisk:          "risk",
}

// Scenarios lists every known scenario.
var Scenarios = []Scenario{
	ScenarioAscent, ScenarioCrew, ScenarioEDL, ScenarioDispersion,
	ScenarioHohmann, ScenarioPorkchop, ScenarioConstellation, ScenarioRisk,
}

func (s Scenario) String() string {
	if s == 0 || int(s) >= len(scenarioNames) {
		return "unknown"
	}
	return scenarioNames[s]
}

// ScenarioFromString returns the scenario of that name.
func ScenarioFromString(name string) (Scenario, error) {
	for _, s := range Scenarios {
		if strings.EqualFold(s.String(), name) {
			return s, nil
		}
	}
	return 0, invalidf("unknown scenario %q", name)
}

// Series is one named column of a TimeSeries.
type Series struct {
	Name   string
	Unit   string
	Values []float64
}

// TimeSeries is the uniform result of a scenario: columns sampled along X,
// which is time for the simulations and an index for the studies.
type TimeSeries struct {
	Scenario     Scenario
	Name         string
	XLabel       string
	X            []float64
	Series       []Series
	Scalars      map[string]float64
	Trajectories []Trajectory
	Body         CentralBody // trajectories are relative to this body
}

func newTimeSeries(s Scenario, name, xLabel string, n int) TimeSeries {
	return TimeSeries{Scenario: s, Name: name, XLabel: xLabel, X: make([]float64, n), Scalars: map[string]float64{}}
}

// add appends a column of length len(X) and returns it for filling.
func (ts *TimeSeries) add(name, unit string) []float64 {
	vals := make([]float64, len(ts.X))
	ts.Series = append(ts.Series, Series{Name: name, Unit: unit, Values: vals})
	return vals
}

// Len returns the number of samples.
func (ts TimeSeries) Len() int {
	return len(ts.X)
}

// Column returns the values of the named series.
func (ts TimeSeries) Column(name string) ([]float64, bool) {
	for _, s := range ts.Series {
		if s.Name == name {
			return s.Values, true
		}
	}
	return nil, false
}

// WriteCSV writes X and every series as comma separated columns.
func (ts TimeSeries) WriteCSV(w io.Writer) error {
	hdr := []string{ts.XLabel}
	for _, s := range ts.Series {
		if s.Unit != "" {
			hdr = append(hdr, fmt.Sprintf("%s (%s)", s.Name, s.Unit))
		} else {
			hdr = append(hdr, s.Name)
		}
	}
	if _, err := fmt.Fprintln(w, strings.Join(hdr, ",")); err != nil {
		return err
	}
	row := make([]string, len(hdr))
	for i, x := range ts.X {
		row[0] = strconv.FormatFloat(x, 'g', 10, 64)
		for j, s := range ts.Series {
			row[j+1] = strconv.FormatFloat(s.Values[i], 'g', 10, 64)
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, ",")); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary writes the scalars sorted by name.
func (ts TimeSeries) WriteSummary(w io.Writer) error {
	keys := make([]string, 0, len(ts.Scalars))
	for k := range ts.Scalars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if _, err := fmt.Fprintf(w, "%s (%s): %d samples\n", ts.Name, ts.Scenario, ts.Len()); err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "  %-28s %.6g\n", k, ts.Scalars[k]); err != nil {
			return err
		}
	}
	return nil
}

// ScenarioFunc computes a scenario from the configuration.
type ScenarioFunc func(context.Context, Config) (TimeSeries, error)

var scenarioFuncs = [...]ScenarioFunc{
	ScenarioAscent:        runAscent,
	ScenarioCrew:          runCrew,
	ScenarioEDL:           runEDL,
	ScenarioDispersion:    runDispersion,
	ScenarioHohmann:       runHohmann,
	ScenarioPorkchop:      runPorkchop,
	ScenarioConstellation: runConstellation,
	ScenarioRisk:          runRisk,
}

// Func returns the function computing the scenario.
func (s Scenario) Func() (ScenarioFunc, error) {
	if s == 0 || int(s) >= len(scenarioFuncs) {
		return nil, invalidf("unknown scenario %d", s)
	}
	return scenarioFuncs[s], nil
}

// RunnerConfig configures a Runner. Every field is optional.
type RunnerConfig struct {
	Registerer     prometheus.Registerer // no metrics if nil
	TracerProvider trace.TracerProvider  // the global provider if nil
	Logger         kitlog.Logger
}

// Runner dispatches scenarios, recording a span, a log line and metrics for each run.
type Runner struct {
	metrics *Metrics
	tracer  trace.Tracer
	base    kitlog.Logger // handed to the solvers
	logger  kitlog.Logger
}

// NewRunner returns a Runner. Metrics are only recorded with a Registerer.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	base := loggerOrNop(cfg.Logger)
	r := &Runner{base: base, logger: kitlog.With(base, "subsys", "runner")}
	if cfg.Registerer != nil {
		m, err := NewMetrics(cfg.Registerer)
		if err != nil {
			return nil, err
		}
		r.metrics = m
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	r.tracer = tp.Tracer(tracerName)
	return r, nil
}

// Metrics returns the collectors of the runner, nil without a Registerer.
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// Run computes the scenario. The context is only checked before starting
// since every scenario is a single blocking computation.
func (r *Runner) Run(ctx context.Context, s Scenario, cfg Config) (TimeSeries, error) {
	f, err := s.Func()
	if err != nil {
		return TimeSeries{}, err
	}
	ctx, span := r.tracer.Start(ctx, "scenario/"+s.String(), trace.WithAttributes(attribute.String("scenario", s.String())))
	defer span.End()
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TimeSeries{}, err
	}
	if cfg.Logger == nil {
		cfg.Logger = r.base
	}
	start := time.Now()
	r.logger.Log("level", "info", "status", "started", "scenario", s)
	ts, err := f(ctx, cfg)
	elapsed := time.Since(start)
	r.metrics.observe(s, elapsed.Seconds(), ts.Len(), err)
	span.SetAttributes(attribute.Int("samples", ts.Len()), attribute.String("outcome", Outcome(err)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Log("level", "error", "status", "failed", "scenario", s, "duration", elapsed, "err", err)
		return ts, err
	}
	ts.Scenario = s
	r.logger.Log("level", "info", "status", "finished", "scenario", s, "duration", elapsed, "samples", ts.Len())
	return ts, nil
}

func runAscent(_ context.Context, cfg Config) (TimeSeries, error) {
	ac := cfg.Ascent
	ac.Logger = cfg.Logger
	res, err := SimulateAscent(ac)
	if res == nil {
		return TimeSeries{}, err
	}
	ts := newTimeSeries(ScenarioAscent, ac.Vehicle.Name+" ascent", "time (s)", len(res.Samples))
	alt := ts.add("altitude", "m")
	speed := ts.add("speed", "m/s")
	mass := ts.add("mass", "kg")
	q := ts.add("dynamic_pressure", "Pa")
	g := ts.add("acceleration", "g")
	for i, s := range res.Samples {
		ts.X[i] = s.Time
		alt[i], speed[i], mass[i], q[i], g[i] = s.Altitude, s.Speed, s.Mass, s.DynamicPressure, s.AccelerationG
	}
	maxQ := res.MaxQ()
	ts.Scalars["max_q"] = maxQ.DynamicPressure
	ts.Scalars["max_q_time"] = maxQ.Time
	ts.Scalars["max_altitude"] = res.MaxAltitude().Altitude
	ts.Scalars["peak_g"] = res.PeakG()
	if b, ok := res.Burnout(); ok {
		ts.Scalars["burnout_time"] = b.Time
		ts.Scalars["burnout_speed"] = b.Speed
	}
	ts.Body = res.Body
	ts.Trajectories = []Trajectory{res.Trajectory(ac.Vehicle.Name)}
	return ts, err
}

func runCrew(_ context.Context, cfg Config) (TimeSeries, error) {
	profile, err := ReferenceProfile(cfg.Profile, cfg.ProfileStep)
	if err != nil {
		return TimeSeries{}, err
	}
	responses, err := CompareSeats(profile, cfg.Seats...)
	if err != nil {
		return TimeSeries{}, err
	}
	ts := newTimeSeries(ScenarioCrew, cfg.Profile.String(), "time (s)", profile.Len())
	copy(ts.X, profile.Time)
	copy(ts.add("spacecraft", "g"), responses[0].SpacecraftG)
	for _, r := range responses {
		copy(ts.add("crew["+r.Seat.Name+"]", "g"), r.CrewG)
		a, err := r.Assess(cfg.Limits)
		if err != nil {
			return TimeSeries{}, err
		}
		prefix := r.Seat.Name + "."
		ts.Scalars[prefix+"peak_g"] = r.PeakCrewG
		ts.Scalars[prefix+"rms_g"] = r.RMSCrewG
		ts.Scalars[prefix+"max_displacement"] = r.MaxDisplacement
		ts.Scalars[prefix+"reduction_percent"] = a.ReductionPercent
		ts.Scalars[prefix+"safe"] = boolToFloat(a.Safe)
	}
	ts.Scalars["spacecraft.peak_g"] = responses[0].PeakSpacecraftG
	ts.Scalars["spacecraft.rms_g"] = responses[0].RMSSpacecraftG
	return ts, nil
}

func runEDL(_ context.Context, cfg Config) (TimeSeries, error) {
	ec := cfg.EDL
	ec.Logger = cfg.Logger
	res, err := SimulateEDL(ec)
	if res == nil {
		return TimeSeries{}, err
	}
	ts := newTimeSeries(ScenarioEDL, ec.Body.Name+" entry", "time (s)", len(res.Samples))
	alt := ts.add("altitude", "m")
	speed := ts.add("speed", "m/s")
	γ := ts.add("flight_path_angle", "deg")
	q := ts.add("dynamic_pressure", "Pa")
	g := ts.add("deceleration", "g")
	mach := ts.add("mach", "")
	heat := ts.add("heat_flux", "W/m^2")
	for i, s := range res.Samples {
		ts.X[i] = s.Time
		alt[i], speed[i], γ[i] = s.Altitude, s.Speed, s.FlightPathAngle/deg2rad
		q[i], g[i], mach[i], heat[i] = s.DynamicPressure, s.GLoad, s.Mach, s.HeatFlux
	}
	peakG, peakHeat := res.PeakG(), res.PeakHeating()
	ts.Scalars["peak_g"] = peakG.GLoad
	ts.Scalars["peak_g_time"] = peakG.Time
	ts.Scalars["peak_heat_flux"] = peakHeat.HeatFlux
	ts.Scalars["peak_heat_time"] = peakHeat.Time
	ts.Scalars["peak_dynamic_pressure"] = res.PeakDynamicPressure().DynamicPressure
	ts.Scalars["termination"] = float64(res.Termination)
	return ts, err
}

func runDispersion(_ context.Context, cfg Config) (TimeSeries, error) {
	d := cfg.Dispersion
	d.Nominal = cfg.EDL
	d.Nominal.Logger = cfg.Logger
	sum, err := d.Run()
	if sum == nil {
		return TimeSeries{}, err
	}
	ts := newTimeSeries(ScenarioDispersion, cfg.EDL.Body.Name+" entry dispersion", "run", len(sum.Runs))
	speed := ts.add("entry_speed", "m/s")
	γ := ts.add("flight_path_angle", "deg")
	g := ts.add("peak_g", "g")
	heat := ts.add("peak_heat_flux", "W/m^2")
	for i, r := range sum.Runs {
		ts.X[i] = float64(i)
		speed[i], γ[i] = r.EntrySpeed, r.FlightPathAngle
		g[i], heat[i] = r.PeakG, r.PeakHeatFlux
		if r.Err != nil {
			g[i], heat[i] = math.NaN(), math.NaN()
		}
	}
	ts.Scalars["mean_peak_g"] = sum.MeanPeakG
	ts.Scalars["std_peak_g"] = sum.StdPeakG
	ts.Scalars["max_peak_g"] = sum.MaxPeakG
	ts.Scalars["mean_peak_heat_flux"] = sum.MeanPeakHeat
	ts.Scalars["std_peak_heat_flux"] = sum.StdPeakHeat
	ts.Scalars["max_peak_heat_flux"] = sum.MaxPeakHeat
	ts.Scalars["failures"] = float64(sum.Failures)
	return ts, err
}

func runHohmann(_ context.Context, cfg Config) (TimeSeries, error) {
	pc := cfg.Porkchop.withDefaults()
	if err := pc.Validate(); err != nil {
		return TimeSeries{}, err
	}
	h, err := NewHohmannTransfer(pc.Origin.Radius, pc.Destination.Radius, pc.Body.GM(), pc.Destination.Rate())
	if err != nil {
		return TimeSeries{}, err
	}
	traj, err := h.Trajectory(0, cfg.TransferSamples)
	if err != nil {
		return TimeSeries{}, err
	}
	ts := newTimeSeries(ScenarioHohmann, pc.Origin.Name+" to "+pc.Destination.Name, "time (days)", len(traj.Time))
	r := ts.add("spacecraft_radius", "AU")
	sep := ts.add("destination_distance", "AU")
	for i, t := range traj.Time {
		ts.X[i] = t / secondsPerDay
		r[i] = norm(traj.Spacecraft[i]) / AstronomicalUnit
		d := make([]float64, 3)
		for k := range d {
			d[k] = traj.Destination[i][k] - traj.Spacecraft[i][k]
		}
		sep[i] = norm(d) / AstronomicalUnit
	}
	ts.Scalars["departure_dv"] = h.ΔvDeparture
	ts.Scalars["arrival_dv"] = h.ΔvArrival
	ts.Scalars["total_dv"] = h.TotalΔv()
	ts.Scalars["transfer_time_days"] = h.TransferTime / secondsPerDay
	ts.Scalars["phase_angle_deg"] = h.PhaseAngle / deg2rad
	if syn, err := h.SynodicPeriod(); err == nil {
		ts.Scalars["synodic_period_days"] = syn / secondsPerDay
	}
	ts.Body = pc.Body
	ts.Trajectories = traj.Trajectories()
	return ts, nil
}

func runPorkchop(_ context.Context, cfg Config) (TimeSeries, error) {
	pc := cfg.Porkchop
	pc.Logger = cfg.Logger
	p, err := NewPorkchop(pc)
	if err != nil {
		return TimeSeries{}, err
	}
	ts := newTimeSeries(ScenarioPorkchop, pc.Origin.Name+" to "+pc.Destination.Name+" porkchop", "launch (days)", len(p.LaunchDays))
	copy(ts.X, p.LaunchDays)
	best := ts.add("best_dv", "m/s")
	arrival := ts.add("best_arrival", "days")
	for i, row := range p.Cost {
		best[i], arrival[i] = math.NaN(), math.NaN()
		for j, dv := range row {
			if !math.IsNaN(dv) && (math.IsNaN(best[i]) || dv < best[i]) {
				best[i], arrival[i] = dv, p.ArrivalDays[j]
			}
		}
	}
	opt, err := p.Optimal()
	if err != nil {
		return ts, err
	}
	ts.Scalars["hohmann_dv"] = p.Hohmann.TotalΔv()
	ts.Scalars["optimal_dv"] = opt.Δv
	ts.Scalars["optimal_launch_day"] = opt.LaunchDay
	ts.Scalars["optimal_arrival_day"] = opt.ArrivalDay
	ts.Scalars["optimal_launch_jd"] = opt.LaunchJD
	ts.Scalars["optimal_time_of_flight_days"] = opt.TimeOfFlight
	return ts, nil
}

func runConstellation(_ context.Context, cfg Config) (TimeSeries, error) {
	sats, err := cfg.Shell.Satellites(Earth)
	if err != nil {
		return TimeSeries{}, err
	}
	tracks, err := PropagateConstellation(sats, cfg.ShellDuration, cfg.ShellStep)
	if err != nil {
		return TimeSeries{}, err
	}
	lead := tracks[0]
	ts := newTimeSeries(ScenarioConstellation, cfg.Shell.String(), "time (s)", len(lead.Points))
	lat := ts.add("latitude["+lead.Name+"]", "deg")
	lon := ts.add("longitude["+lead.Name+"]", "deg")
	alt := ts.add("altitude["+lead.Name+"]", "m")
	for i, p := range lead.Points {
		ts.X[i] = p.Time
		lat[i], lon[i], alt[i] = p.Latitude, p.Longitude, p.Altitude
	}
	var maxLat, contact, maxEl float64
	var passes int
	ts.Trajectories = make([]Trajectory, len(tracks))
	for i, tr := range tracks {
		for _, p := range tr.Points {
			maxLat = math.Max(maxLat, math.Abs(p.Latitude))
		}
		ts.Trajectories[i] = tr.Trajectory()
		if cfg.Station.Body.Radius == 0 {
			continue
		}
		pp, err := cfg.Station.Passes(tr)
		if err != nil {
			return TimeSeries{}, err
		}
		passes += len(pp)
		for _, p := range pp {
			contact += p.Duration()
			maxEl = math.Max(maxEl, p.MaxElevation)
		}
	}
	ts.Scalars["satellites"] = float64(len(sats))
	ts.Scalars["max_latitude"] = maxLat
	if cfg.Station.Body.Radius > 0 {
		ts.Scalars["station_passes"] = float64(passes)
		ts.Scalars["station_contact_seconds"] = contact
		ts.Scalars["station_max_elevation"] = maxEl
	}
	ts.Scalars["speed"] = lead.Points[0].Speed
	if T, err := sats[0].Orbit.Period(); err == nil {
		ts.Scalars["period_minutes"] = T / 60
	}
	ts.Body = Earth
	return ts, nil
}

func runRisk(_ context.Context, cfg Config) (TimeSeries, error) {
	a, err := AssessMission(cfg.Mission)
	if err != nil {
		return TimeSeries{}, err
	}
	ts := newTimeSeries(ScenarioRisk, cfg.Mission.Name+" risk", "factor", len(a.Factors))
	score := ts.add("score", "")
	weight := ts.add("weight", "")
	for i, f := range a.Factors {
		ts.X[i] = float64(i)
		score[i], weight[i] = f.Score, f.Level.Weight()
		ts.Scalars["factor."+f.Name] = f.Score
	}
	ts.Scalars["overall_score"] = a.OverallScore
	ts.Scalars["overall_level"] = float64(a.OverallLevel)
	return ts, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
