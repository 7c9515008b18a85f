package rocket

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/soniakeys/meeus/v3/julian"
)

// AstronomicalUnit in meters.
const AstronomicalUnit = 1.495978707e11

const secondsPerDay = 86400.0

// PlanetOrbit is a circular coplanar heliocentric orbit.
type PlanetOrbit struct {
	Name   string
	Radius float64 // m
	Period float64 // s
	Phase  float64 // longitude at the epoch, radians
}

// EarthOrbit and MarsOrbit are the circular approximations of both planets,
// with Mars leading by 0.78 rad at the epoch.
var (
	EarthOrbit = PlanetOrbit{Name: "Earth", Radius: AstronomicalUnit, Period: 365.25 * secondsPerDay}
	MarsOrbit  = PlanetOrbit{Name: "Mars", Radius: 1.524 * AstronomicalUnit, Period: 686.98 * secondsPerDay, Phase: 0.78}
)

// Rate returns the mean angular rate in rad/s.
func (p PlanetOrbit) Rate() float64 {
	return 2 * math.Pi / p.Period
}

// Longitude returns the angular position t seconds after the epoch.
func (p PlanetOrbit) Longitude(t float64) float64 {
	return p.Phase + p.Rate()*t
}

// Position returns the position t seconds after the epoch.
func (p PlanetOrbit) Position(t float64) []float64 {
	return polar(p.Radius, p.Longitude(t))
}

func (p PlanetOrbit) validate() error {
	if !(p.Radius > 0) || !(p.Period > 0) || !finite(p.Radius, p.Period, p.Phase) {
		return invalidf("planet %q needs a positive radius and period", p.Name)
	}
	return nil
}

// PorkchopConfig is the launch and arrival grid. Days are counted from Epoch.
type PorkchopConfig struct {
	Origin, Destination         PlanetOrbit
	Body                        CentralBody // Sun if unset
	Epoch                       time.Time
	LaunchStart, LaunchEnd      float64 // days
	ArrivalStart, ArrivalEnd    float64 // days
	LaunchPoints, ArrivalPoints int
	Workers                     int // runtime.NumCPU() if zero
	Logger                      kitlog.Logger
}

// EarthMars2026 is the 2026 Earth to Mars window.
var EarthMars2026 = PorkchopConfig{
	Origin:        EarthOrbit,
	Destination:   MarsOrbit,
	Body:          Sun,
	Epoch:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	LaunchStart:   0,
	LaunchEnd:     500,
	ArrivalStart:  100,
	ArrivalEnd:    800,
	LaunchPoints:  100,
	ArrivalPoints: 100,
}

func (c PorkchopConfig) withDefaults() PorkchopConfig {
	if c.Body.Radius == 0 {
		c.Body = Sun
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	c.Logger = loggerOrNop(c.Logger)
	return c
}

// Validate returns an ErrInvalidConfiguration for an empty or reversed grid.
func (c PorkchopConfig) Validate() error {
	if err := c.Origin.validate(); err != nil {
		return err
	}
	if err := c.Destination.validate(); err != nil {
		return err
	}
	if c.LaunchPoints < 2 || c.ArrivalPoints < 2 {
		return invalidf("porkchop grid needs at least 2×2 points (got %d×%d)", c.LaunchPoints, c.ArrivalPoints)
	}
	if !(c.LaunchEnd > c.LaunchStart) || !(c.ArrivalEnd > c.ArrivalStart) {
		return invalidf("porkchop ranges must be increasing")
	}
	if !finite(c.LaunchStart, c.LaunchEnd, c.ArrivalStart, c.ArrivalEnd) {
		return invalidf("non finite porkchop range")
	}
	return nil
}

// Porkchop is the filled grid. Cost[i][j] is the Δv in m/s of launching on
// LaunchDays[i] and arriving on ArrivalDays[j], NaN when the arrival does not
// follow the launch.
type Porkchop struct {
	Config      PorkchopConfig
	Hohmann     HohmannTransfer
	LaunchDays  []float64
	ArrivalDays []float64
	Cost        [][]float64
}

// PorkchopCell is one launch and arrival pair of the grid.
type PorkchopCell struct {
	LaunchDay, ArrivalDay float64
	Launch, Arrival       time.Time
	LaunchJD, ArrivalJD   float64
	TimeOfFlight          float64 // days
	Δv                    float64 // m/s
}

func (c PorkchopCell) String() string {
	return fmt.Sprintf("launch %s, arrival %s (%.1f days): %.3f km/s",
		c.Launch.Format("2006-Jan-02"), c.Arrival.Format("2006-Jan-02"), c.TimeOfFlight, c.Δv/1e3)
}

// TransferCost is the heuristic Δv of leaving the origin at launch and
// reaching the destination at arrival, both in seconds after the epoch.
// The Hohmann total is penalized by 2000·ln(tof/t_H)² for the flight time and by
// 5000·(1 − sin(Δθ/2))² for the separation Δθ of both positions.
// This is not a Lambert solution. A non causal pair returns NaN.
func TransferCost(h HohmannTransfer, origin, destination PlanetOrbit, launch, arrival float64) float64 {
	tof := arrival - launch
	if !(tof > 0) {
		return math.NaN()
	}
	r1 := origin.Position(launch)
	r2 := destination.Position(arrival)
	cosΔθ := dot(r1, r2) / (norm(r1) * norm(r2))
	Δθ := math.Acos(floatClamp(cosΔθ))
	timeTerm := math.Log(tof / h.TransferTime)
	angleTerm := 1 - math.Sin(Δθ/2)
	return h.TotalΔv() + 2000*timeTerm*timeTerm + 5000*angleTerm*angleTerm
}

// NewPorkchop fills the grid. Launch rows are shared between a fixed pool
// of workers, each writing only its own rows.
func NewPorkchop(cfg PorkchopConfig) (*Porkchop, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	μ := cfg.Body.GM()
	h, err := NewHohmannTransfer(cfg.Origin.Radius, cfg.Destination.Radius, μ, cfg.Destination.Rate())
	if err != nil {
		return nil, err
	}
	p := &Porkchop{
		Config:      cfg,
		Hohmann:     h,
		LaunchDays:  linspace(cfg.LaunchStart, cfg.LaunchEnd, cfg.LaunchPoints),
		ArrivalDays: linspace(cfg.ArrivalStart, cfg.ArrivalEnd, cfg.ArrivalPoints),
		Cost:        make([][]float64, cfg.LaunchPoints),
	}
	logger := kitlog.With(cfg.Logger, "subsys", "porkchop")
	logger.Log("level", "info", "status", "started", "origin", cfg.Origin.Name, "destination", cfg.Destination.Name,
		"grid", fmt.Sprintf("%dx%d", cfg.LaunchPoints, cfg.ArrivalPoints), "workers", cfg.Workers)

	rows := make(chan int, cfg.LaunchPoints)
	for i := range p.Cost {
		rows <- i
	}
	close(rows)
	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func() {
			defer wg.Done()
			for i := range rows {
				row := make([]float64, cfg.ArrivalPoints)
				launch := p.LaunchDays[i] * secondsPerDay
				for j, arrivalDay := range p.ArrivalDays {
					row[j] = TransferCost(h, cfg.Origin, cfg.Destination, launch, arrivalDay*secondsPerDay)
				}
				p.Cost[i] = row
			}
		}()
	}
	wg.Wait()

	if best, err := p.Optimal(); err == nil {
		logger.Log("level", "info", "status", "finished", "optimal", best)
	} else {
		logger.Log("level", "warning", "status", "finished", "err", err)
	}
	return p, nil
}

// Cell returns the grid cell at launch index i and arrival index j.
func (p Porkchop) Cell(i, j int) PorkchopCell {
	c := PorkchopCell{
		LaunchDay:    p.LaunchDays[i],
		ArrivalDay:   p.ArrivalDays[j],
		TimeOfFlight: p.ArrivalDays[j] - p.LaunchDays[i],
		Δv:           p.Cost[i][j],
	}
	epochJD := julian.TimeToJD(p.Config.Epoch)
	c.LaunchJD = epochJD + c.LaunchDay
	c.ArrivalJD = epochJD + c.ArrivalDay
	c.Launch = julian.JDToTime(c.LaunchJD)
	c.Arrival = julian.JDToTime(c.ArrivalJD)
	return c
}

// Optimal returns the cheapest valid cell, or ErrUndefinedResult if no cell is valid.
func (p Porkchop) Optimal() (PorkchopCell, error) {
	bi, bj := -1, -1
	best := math.Inf(1)
	for i, row := range p.Cost {
		for j, dv := range row {
			if !math.IsNaN(dv) && dv < best {
				best, bi, bj = dv, i, j
			}
		}
	}
	if bi < 0 {
		return PorkchopCell{}, undefinedf("no launch precedes an arrival in the grid")
	}
	return p.Cell(bi, bj), nil
}

// WriteDat writes the grid as comma separated rows, one per launch day, with
// NaN for the invalid cells. The header lines start with %.
func (p Porkchop) WriteDat(w io.Writer) error {
	cfg := p.Config
	if _, err := fmt.Fprintf(w, "%% %s -> %s\n%% departure as new lines, arrival as new columns, km/s\n%% departure: %q, %g to %g days\n%% arrival: %q, %g to %g days\n",
		cfg.Origin.Name, cfg.Destination.Name,
		cfg.Epoch.Format("2006-Jan-02"), cfg.LaunchStart, cfg.LaunchEnd,
		cfg.Epoch.Format("2006-Jan-02"), cfg.ArrivalStart, cfg.ArrivalEnd); err != nil {
		return err
	}
	for _, row := range p.Cost {
		for j, dv := range row {
			sep := ","
			if j == len(row)-1 {
				sep = "\n"
			}
			if _, err := fmt.Fprintf(w, "%.4f%s", dv/1e3, sep); err != nil {
				return err
			}
		}
	}
	return nil
}

// linspace returns n evenly spaced values from start to end included.
func linspace(start, end float64, n int) []float64 {
	out := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = end
	return out
}
