package rocket

import (
	"errors"
	"math"
	"os"
	"testing"
)

func TestAscentFalcon9(t *testing.T) {
	res, err := SimulateAscent(AscentConfig{Vehicle: Falcon9, Duration: 300, Logger: NewLogger(os.Stdout, "test")})
	if err != nil {
		t.Fatal(err)
	}
	if res.Termination != AscentDurationElapsed {
		t.Fatalf("terminated with %s", res.Termination)
	}
	if exp := int(300/DefaultAscentStep) + 1; len(res.Samples) != exp {
		t.Fatalf("%d samples instead of %d", len(res.Samples), exp)
	}
	prevMass := math.Inf(1)
	prevPhase := PhaseVertical
	for i, s := range res.Samples {
		if s.Time != float64(i)*DefaultAscentStep {
			t.Fatalf("sample %d at t=%f", i, s.Time)
		}
		if s.Mass > prevMass {
			t.Fatalf("mass increased at t=%f: %f > %f", s.Time, s.Mass, prevMass)
		}
		if s.Mass < Falcon9.DryMass {
			t.Fatalf("mass %f below dry mass at t=%f", s.Mass, s.Time)
		}
		if s.Phase < prevPhase {
			t.Fatalf("phase went back from %s to %s at t=%f", prevPhase, s.Phase, s.Time)
		}
		if math.IsNaN(s.DynamicPressure) || s.DynamicPressure < 0 || math.IsNaN(s.AccelerationG) {
			t.Fatalf("invalid derived values at t=%f: %+v", s.Time, s)
		}
		prevMass = s.Mass
		prevPhase = s.Phase
	}
	burnout, ok := res.Burnout()
	if !ok {
		t.Fatal("no burnout within 300 s")
	}
	if burnout.Time < Falcon9.BurnDuration || burnout.Time > Falcon9.BurnDuration+DefaultAscentStep {
		t.Fatalf("burnout at %f s", burnout.Time)
	}
	if exp := Falcon9.WetMass - Falcon9.MassFlowRate()*Falcon9.BurnDuration; math.Abs(burnout.Mass-exp) > Falcon9.MassFlowRate()*DefaultAscentStep {
		t.Fatalf("burnout mass %f expected %f", burnout.Mass, exp)
	}
	if burnout.Altitude < 20e3 || burnout.Speed < 1000 {
		t.Fatalf("weak ascent: %f km at %f m/s", burnout.Altitude/1e3, burnout.Speed)
	}
	maxQ := res.MaxQ()
	if maxQ.DynamicPressure <= 0 || maxQ.Time <= 0 || maxQ.Time >= burnout.Time {
		t.Fatalf("max Q of %f Pa at %f s", maxQ.DynamicPressure, maxQ.Time)
	}
	if g := res.PeakG(); g < 1 || g > 10 {
		t.Fatalf("peak acceleration %f g", g)
	}
	profile, err := res.AccelerationProfile()
	if err != nil {
		t.Fatal(err)
	}
	if profile.Len() != len(res.Samples) {
		t.Fatal("profile length mismatch")
	}
}

func TestAscentEnergyConservation(t *testing.T) {
	ballistic := VehicleParameters{Name: "ballistic", WetMass: 1000, DryMass: 500, Isp: 300}
	r := Earth.Radius + 400e3
	vc := math.Sqrt(Earth.GM() / r)
	res, err := SimulateAscent(AscentConfig{
		Vehicle:         ballistic,
		Duration:        3000,
		InitialPosition: []float64{r, 0, 0},
		InitialVelocity: []float64{0, vc * 1.05, 100},
	})
	if err != nil {
		t.Fatal(err)
	}
	energy := func(s AscentSample) float64 {
		return 0.5*s.Speed*s.Speed - Earth.GM()/norm(s.R)
	}
	e0 := energy(res.Samples[0])
	for _, s := range res.Samples {
		if math.Abs((energy(s)-e0)/e0) > 1e-9 {
			t.Fatalf("energy drifted by %e at t=%f", (energy(s)-e0)/e0, s.Time)
		}
		if s.Mass != ballistic.WetMass {
			t.Fatal("mass changed without thrust")
		}
		if s.Phase != PhaseCoast {
			t.Fatalf("phase %s without thrust", s.Phase)
		}
	}
}

func TestAscentImpact(t *testing.T) {
	hopper := VehicleParameters{Name: "hopper", WetMass: 1000, DryMass: 900, SeaLevelThrust: 15000, Isp: 200, DragCoefficient: 0.5, ReferenceArea: 1, BurnDuration: 10}
	res, err := SimulateAscent(AscentConfig{Vehicle: hopper, Duration: 1000, Step: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Termination != AscentImpact {
		t.Fatalf("terminated with %s", res.Termination)
	}
	last := res.Samples[len(res.Samples)-1]
	if last.Time >= 1000 || last.Altitude < ImpactAltitude {
		t.Fatalf("last sample at t=%f alt=%f", last.Time, last.Altitude)
	}
	if top := res.MaxAltitude(); top.Altitude <= 0 {
		t.Fatalf("hopper never left the ground: %f", top.Altitude)
	}
}

func TestAscentSteeringLaw(t *testing.T) {
	radial := func(t float64, R, V []float64) []float64 { return unit(R) }
	res, err := SimulateAscent(AscentConfig{Vehicle: Falcon9, Duration: 100, Steering: radial})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range res.Samples {
		if s.R[1] != 0 || s.R[2] != 0 {
			t.Fatalf("vertical ascent left the X axis at t=%f: %+v", s.Time, s.R)
		}
	}
	// The default gravity turn leans the trajectory over.
	turned, _ := SimulateAscent(AscentConfig{Vehicle: Falcon9, Duration: 100, IncludeBodyRotation: true})
	last := turned.Samples[len(turned.Samples)-1]
	if math.Abs(last.R[1]) < 1 {
		t.Fatalf("gravity turn did not move downrange: %+v", last.R)
	}
}

func TestGravityTurnLaw(t *testing.T) {
	R := []float64{Earth.Radius, 0, 0}
	if dir := GravityTurnSteering(10, R, []float64{10, 0, 0}); !vectorsEqual(dir, []float64{1, 0, 0}) {
		t.Fatalf("slow vehicles thrust radially: %+v", dir)
	}
	dir := GravityTurnSteering(120, R, []float64{0, 100, 0})
	if !vectorsEqual(dir, unit([]float64{0.7, 0.3, 0})) {
		t.Fatalf("blend at full pitch over: %+v", dir)
	}
	dir = GravityTurnSteering(30, R, []float64{0, 100, 0})
	if !vectorsEqual(dir, unit([]float64{0.85, 0.15, 0})) {
		t.Fatalf("blend at half pitch over: %+v", dir)
	}
}

func TestAscentInvalid(t *testing.T) {
	bad := Falcon9
	bad.DryMass = bad.WetMass
	if _, err := SimulateAscent(AscentConfig{Vehicle: bad, Duration: 10}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("dry mass equal to wet mass accepted")
	}
	bad = Falcon9
	bad.WetMass = -1
	if _, err := SimulateAscent(AscentConfig{Vehicle: bad, Duration: 10}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("negative mass accepted")
	}
	if _, err := SimulateAscent(AscentConfig{Vehicle: Falcon9, Duration: -1}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("negative duration accepted")
	}
	if _, err := SimulateAscent(AscentConfig{Vehicle: Falcon9, Duration: 10, InitialPosition: []float64{1, 0, 0}}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("position without velocity accepted")
	}
}

func TestAscentStepCap(t *testing.T) {
	res, err := SimulateAscent(AscentConfig{Vehicle: Falcon9, Duration: 100, MaxSteps: 10})
	if !errors.Is(err, ErrNonConvergence) {
		t.Fatalf("expected a non convergence, got %v", err)
	}
	if res == nil || res.Termination != AscentAborted || len(res.Samples) != 11 {
		t.Fatalf("partial result not returned: %+v", res)
	}
}

func TestRocketEquation(t *testing.T) {
	Δv, err := TsiolkovskyΔv(300, 1000, 500)
	if err != nil {
		t.Fatal(err)
	}
	if exp := 300 * StandardGravity * math.Ln2; math.Abs(Δv-exp) > 1e-9 {
		t.Fatalf("Δv=%f expected %f", Δv, exp)
	}
	fuel, _ := RequiredPropellant(Δv, 300, 500)
	if math.Abs(fuel-500) > 1e-6 {
		t.Fatalf("propellant %f kg", fuel)
	}
	ratio, _ := MassRatio(Δv, 300)
	if math.Abs(ratio-2) > 1e-12 {
		t.Fatalf("mass ratio %f", ratio)
	}
	if _, err := TsiolkovskyΔv(300, 500, 1000); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("final mass above initial mass accepted")
	}
	ideal, _ := Falcon9.IdealΔv()
	missions := CapableMissions(ideal)
	if len(missions) != 0 {
		t.Fatalf("a single Falcon 9 stage cannot reach %+v", missions)
	}
	if all := CapableMissions(20000); len(all) != len(MissionBudgets) || all[0].Destination != "LEO" {
		t.Fatalf("capable missions %+v", all)
	}
	if p, err := PropellantFromString("Methalox"); err != nil || p.IspVacuum != 380 {
		t.Fatalf("methalox %+v (%v)", p, err)
	}
	if tw := Falcon9.ThrustToWeight(Earth); tw < 1.3 || tw > 1.5 {
		t.Fatalf("T/W %f", tw)
	}
}
