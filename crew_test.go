package rocket

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestSeatParameters(t *testing.T) {
	f, err := StandardSeat.NaturalFrequency()
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(f, 25/(2*math.Pi), 1e-12) {
		t.Fatalf("natural frequency %f Hz", f)
	}
	ζ, err := StandardSeat.DampingRatio()
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(ζ, 0.5, 1e-12) {
		t.Fatalf("damping ratio %f", ζ)
	}
	for _, c := range []struct {
		c   float64
		exp DampingType
	}{{2000, Underdamped}, {4000, CriticallyDamped}, {4200, CriticallyDamped}, {6000, Overdamped}} {
		seat := StandardSeat
		seat.DampingCoefficient = c.c
		if dt, err := seat.DampingType(); err != nil || dt != c.exp {
			t.Fatalf("c=%f: %s (%v) instead of %s", c.c, dt, err, c.exp)
		}
	}
}

func TestSeatInvalid(t *testing.T) {
	for _, seat := range []SeatParameters{
		{Name: "no spring", Mass: 80, SpringStiffness: 0, DampingCoefficient: 100},
		{Name: "negative spring", Mass: 80, SpringStiffness: -5, DampingCoefficient: 100},
		{Name: "massless", Mass: 0, SpringStiffness: 5000, DampingCoefficient: 100},
		{Name: "negative mass", Mass: -1, SpringStiffness: 5000, DampingCoefficient: 100},
		{Name: "NaN", Mass: math.NaN(), SpringStiffness: 5000},
	} {
		if _, err := seat.NaturalFrequency(); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("%s: natural frequency error %v", seat.Name, err)
		}
		if _, err := seat.DampingRatio(); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("%s: damping ratio error %v", seat.Name, err)
		}
		p, _ := StepProfile(StandardGravity, 1, 0.01)
		if _, err := SimulateCrew(seat, p); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("%s: simulation error %v", seat.Name, err)
		}
	}
}

func TestCrewPassivity(t *testing.T) {
	overdamped := SeatParameters{Name: "overdamped", Mass: 80, SpringStiffness: 50000, DampingCoefficient: 4800}
	step, err := StepProfile(3*StandardGravity, 2, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	r, err := SimulateCrew(overdamped, step)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.CrewG) != step.Len() || len(r.Displacement) != step.Len() {
		t.Fatal("response length mismatch")
	}
	if r.PeakCrewG > 1.2*r.PeakSpacecraftG {
		t.Fatalf("well damped seat amplifies: %f g felt for %f g", r.PeakCrewG, r.PeakSpacecraftG)
	}
	if last := r.CrewG[len(r.CrewG)-1]; !scalar.EqualWithinRel(last, 3, 1e-2) {
		t.Fatalf("steady state %f g", last)
	}
	// Static deflection m·a/k.
	if exp := 80 * 3 * StandardGravity / 50000; !scalar.EqualWithinRel(r.MaxDisplacement, exp, 1e-2) {
		t.Fatalf("max displacement %f m instead of %f m", r.MaxDisplacement, exp)
	}
	if r.Displacement[0] != 0 || r.Velocity[0] != 0 {
		t.Fatal("seat did not start at rest")
	}

	under, err := SimulateCrew(StandardSeat, step)
	if err != nil {
		t.Fatal(err)
	}
	if under.PeakCrewG < 1.2*under.PeakSpacecraftG {
		t.Fatalf("underdamped seat overshoot too small: %f g", under.PeakCrewG)
	}
}

func TestCrewAssess(t *testing.T) {
	seat := SeatParameters{Name: "stiff", Mass: 80, SpringStiffness: 50000, DampingCoefficient: 4800}
	mild, _ := StepProfile(3*StandardGravity, 2, 0.01)
	harsh, _ := StepProfile(9*StandardGravity, 2, 0.01)
	rs, err := CompareSeats(mild, seat, StandardSeat)
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 2 || rs[0].Seat.Name != "stiff" || rs[1].Seat != StandardSeat {
		t.Fatalf("unexpected comparison %+v", rs)
	}
	a, err := rs[0].Assess(DefaultSafetyLimits)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Safe || !a.SustainedOK || !a.PeakOK {
		t.Fatalf("3 g step unsafe: %+v", a)
	}
	r, err := SimulateCrew(seat, harsh)
	if err != nil {
		t.Fatal(err)
	}
	a, err = r.Assess(DefaultSafetyLimits)
	if err != nil {
		t.Fatal(err)
	}
	if a.Safe || a.PeakOK || a.SustainedOK {
		t.Fatalf("9 g step safe: %+v", a)
	}
	if a.ReductionPercent >= 0 {
		t.Fatalf("step overshoot reported as a reduction of %f%%", a.ReductionPercent)
	}
	if _, err := r.Assess(SafetyLimits{SustainedG: 4}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("missing peak limit accepted")
	}
	if _, err := CompareSeats(mild); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("empty comparison accepted")
	}
}

func TestCrewSamplingIndependence(t *testing.T) {
	dense, err := StepProfile(3*StandardGravity, 5, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	g3 := 3 * StandardGravity
	sparse, err := NewAccelerationProfile([]float64{0, 0.05, 0.3, 5}, []float64{g3, g3, g3, g3})
	if err != nil {
		t.Fatal(err)
	}
	rd, err := SimulateCrew(StandardSeat, dense)
	if err != nil {
		t.Fatal(err)
	}
	rs, err := SimulateCrew(StandardSeat, sparse)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinRel(rd.PeakCrewG, rs.PeakCrewG, 1e-2) {
		t.Fatalf("peak depends on the sampling: %f g dense, %f g sparse", rd.PeakCrewG, rs.PeakCrewG)
	}
	if rs.PeakCrewG < 3.6 {
		t.Fatalf("underdamped overshoot missed: %f g", rs.PeakCrewG)
	}
	if !scalar.EqualWithinRel(rd.RMSCrewG, rs.RMSCrewG, 2e-2) {
		t.Fatalf("RMS depends on the sampling: %f g dense, %f g sparse", rd.RMSCrewG, rs.RMSCrewG)
	}
	if len(rs.CrewG) != 4 || !scalar.EqualWithinRel(rs.CrewG[3], 3, 1e-2) || rs.CrewG[0] != 0 {
		t.Fatalf("sparse response %v", rs.CrewG)
	}
	a1, _ := rd.Assess(DefaultSafetyLimits)
	a2, _ := rs.Assess(DefaultSafetyLimits)
	if a1.Safe != a2.Safe || a1.PeakOK != a2.PeakOK {
		t.Fatalf("verdict depends on the sampling: %+v vs %+v", a1, a2)
	}
}

func TestCrewGrid(t *testing.T) {
	times := []float64{0, 0.1, 0.35, 0.4}
	grid, index := crewGrid(times, 0.1)
	exp := []float64{0, 0.1, 0.1 + 0.25/3, 0.1 + 0.5/3, 0.35, 0.4}
	if len(grid) != len(exp) {
		t.Fatalf("grid %v", grid)
	}
	for i := range exp {
		if !scalar.EqualWithinAbs(grid[i], exp[i], 1e-12) {
			t.Fatalf("grid %v instead of %v", grid, exp)
		}
	}
	for j, k := range index {
		if grid[k] != times[j] {
			t.Fatalf("sample %d mapped to %f", j, grid[k])
		}
	}
}

func TestDampingTypeString(t *testing.T) {
	if s := DampingType(0).String(); s != "DampingType(0)" {
		t.Fatal(s)
	}
	if s := Overdamped.String(); s != "overdamped" {
		t.Fatal(s)
	}
}
