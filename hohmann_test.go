package rocket

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	au    = 1.495978707e11
	dayS  = 86400.0
	marsT = 686.98 * dayS
)

func TestHohmannEarthMars(t *testing.T) {
	r1, r2 := au, 1.524*au
	h, err := NewHohmannTransfer(r1, r2, Sun.GM(), 2*math.Pi/marsT)
	if err != nil {
		t.Fatal(err)
	}
	if days := h.TransferTime / dayS; !scalar.EqualWithinAbs(days, 259, 2) {
		t.Fatalf("transfer time %f days", days)
	}
	if dv := h.TotalΔv() / 1e3; !scalar.EqualWithinAbs(dv, 5.65, 0.1) {
		t.Fatalf("total Δv %f km/s", dv)
	}
	if !scalar.EqualWithinRel(h.A, (r1+r2)/2, 1e-15) || !scalar.EqualWithinAbs(h.E, 0.524/2.524, 1e-12) {
		t.Fatalf("a=%f e=%f", h.A, h.E)
	}
	// Mars must lead Earth by about 44 degrees.
	if φ := h.PhaseAngle / deg2rad; !scalar.EqualWithinAbs(φ, 44, 2) {
		t.Fatalf("phase angle %f deg", φ)
	}
	if syn, err := h.SynodicPeriod(); err != nil || !scalar.EqualWithinAbs(syn/dayS, 780, 10) {
		t.Fatalf("synodic period %f days (%v)", syn/dayS, err)
	}
}

func TestHohmannSymmetry(t *testing.T) {
	μ := Earth.GM()
	for _, pair := range [][2]float64{
		{Earth.Radius + 200e3, 42164e3},
		{7000e3, 7100e3},
		{Earth.Radius + 400e3, 384400e3},
	} {
		out, _ := NewHohmannTransfer(pair[0], pair[1], μ, CircularRate(μ, pair[1]))
		in, _ := NewHohmannTransfer(pair[1], pair[0], μ, CircularRate(μ, pair[0]))
		if !scalar.EqualWithinRel(out.TotalΔv(), in.TotalΔv(), 1e-12) {
			t.Fatalf("%+v: %f != %f", pair, out.TotalΔv(), in.TotalΔv())
		}
		if !scalar.EqualWithinRel(out.TransferTime, in.TransferTime, 1e-15) {
			t.Fatal("transfer time depends on direction")
		}
	}
}

func TestHohmannLEOGEO(t *testing.T) {
	μ := 3.986004418e14
	h, _ := NewHohmannTransfer(6678e3, 42164e3, μ, CircularRate(μ, 42164e3))
	if !scalar.EqualWithinAbs(h.ΔvDeparture, 2426, 5) || !scalar.EqualWithinAbs(h.ΔvArrival, 1467, 5) {
		t.Fatalf("Δv1=%f Δv2=%f", h.ΔvDeparture, h.ΔvArrival)
	}
	if !scalar.EqualWithinAbs(h.TransferTime/3600, 5.275, 0.01) {
		t.Fatalf("tof %f h", h.TransferTime/3600)
	}
}

func TestHohmannPhaseNormalized(t *testing.T) {
	μ := Earth.GM()
	// A fast target makes π - ω·tof strongly negative.
	h, _ := NewHohmannTransfer(7000e3, 8000e3, μ, 1e-2)
	if h.PhaseAngle < 0 || h.PhaseAngle >= 2*math.Pi {
		t.Fatalf("phase angle %f not normalized", h.PhaseAngle)
	}
	raw := math.Pi - 1e-2*h.TransferTime
	if ok, err := anglesEqual(math.Mod(raw-h.PhaseAngle, 2*math.Pi), 0); !ok {
		t.Fatalf("normalized angle is not congruent: %s", err)
	}
}

func TestHohmannInvalid(t *testing.T) {
	if _, err := NewHohmannTransfer(0, 1, 1, 0); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("zero radius accepted")
	}
	if _, err := NewHohmannTransfer(1, 2, -1, 0); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("negative μ accepted")
	}
	same, err := NewHohmannTransfer(7000e3, 7000e3, Earth.GM(), CircularRate(Earth.GM(), 7000e3))
	if err != nil || same.TotalΔv() > 1e-9 {
		t.Fatalf("same orbit transfer: %f (%v)", same.TotalΔv(), err)
	}
	if _, err := same.SynodicPeriod(); !errors.Is(err, ErrUndefinedResult) {
		t.Fatal("synodic period of identical orbits must be undefined")
	}
}

func TestHohmannTrajectory(t *testing.T) {
	for _, radii := range [][2]float64{{au, 1.524 * au}, {1.524 * au, au}} {
		h, _ := NewHohmannTransfer(radii[0], radii[1], Sun.GM(), CircularRate(Sun.GM(), radii[1]))
		traj, err := h.Trajectory(0.3, 100)
		if err != nil {
			t.Fatal(err)
		}
		if !vectorsEqual(traj.Spacecraft[0], traj.Origin[0]) {
			t.Fatalf("spacecraft %+v does not depart from the origin %+v", traj.Spacecraft[0], traj.Origin[0])
		}
		last := len(traj.Time) - 1
		if !scalar.EqualWithinRel(traj.Time[last], h.TransferTime, 1e-12) {
			t.Fatal("last sample must be at arrival")
		}
		if !vectorsEqual(traj.Spacecraft[last], traj.Destination[last]) {
			t.Fatalf("spacecraft %+v misses the target %+v", traj.Spacecraft[last], traj.Destination[last])
		}
	}
	h, _ := NewHohmannTransfer(au, 2*au, Sun.GM(), 0)
	if _, err := h.Trajectory(0, 0); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("zero samples accepted")
	}
}
