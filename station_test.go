package rocket

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

var equatorStation = Station{Name: "equator", MinElevation: 10, Body: Earth}

func TestStationRangeElAz(t *testing.T) {
	r := Earth.Radius
	for _, tc := range []struct {
		name         string
		rECEF        []float64
		ρ, el, az    float64
		checkAzimuth bool
	}{
		{"zenith", []float64{r + 1e6, 0, 0}, 1e6, 90, 0, false},
		{"east", []float64{r, 1e6, 0}, 1e6, 0, 90, true},
		{"north", []float64{r, 0, 1e6}, 1e6, 0, 0, true},
		{"west", []float64{r, -1e6, 0}, 1e6, 0, 270, true},
	} {
		ρ, el, az := equatorStation.RangeElAz(tc.rECEF)
		if !scalar.EqualWithinAbs(ρ, tc.ρ, 1e-6) || !scalar.EqualWithinAbs(el, tc.el, 1e-9) {
			t.Fatalf("%s: range %f el %f", tc.name, ρ, el)
		}
		if tc.checkAzimuth && !scalar.EqualWithinAbs(az, tc.az, 1e-9) {
			t.Fatalf("%s: azimuth %f instead of %f", tc.name, az, tc.az)
		}
	}
	// Opposite side of the planet.
	if _, el, _ := equatorStation.RangeElAz([]float64{-r, 0, 0}); !scalar.EqualWithinAbs(el, -90, 1e-9) {
		t.Fatalf("el %f", el)
	}
}

func TestStationObserve(t *testing.T) {
	r := Earth.Radius + 1e6
	R := []float64{r, 0, 0}
	ωxR := cross([]float64{0, 0, Earth.RotationRate}, R)
	V := []float64{1000 + ωxR[0], ωxR[1], ωxR[2]}
	obs := equatorStation.Observe(GroundTrackPoint{R: R, V: V})
	if !obs.Visible || !scalar.EqualWithinAbs(obs.Range, 1e6, 1e-6) {
		t.Fatalf("%+v", obs)
	}
	if !scalar.EqualWithinAbs(obs.RangeRate, 1000, 1e-6) {
		t.Fatalf("range rate %f", obs.RangeRate)
	}
	// Half a sidereal day later the station faces away.
	half := math.Pi / Earth.RotationRate
	if obs := equatorStation.Observe(GroundTrackPoint{Time: half, R: R}); obs.Visible || obs.Elevation > -80 {
		t.Fatalf("%+v", obs)
	}
}

func TestStationPasses(t *testing.T) {
	overhead := func(t float64) []float64 {
		return ECEF2ECI([]float64{Earth.Radius + 5e5, 0, 0}, Earth.RotationRate*t)
	}
	track := GroundTrack{Name: "synthetic", Points: []GroundTrackPoint{
		{Time: 0, R: overhead(0)},
		{Time: 60, R: overhead(60)},
		{Time: 120, R: []float64{-Earth.Radius - 5e5, 0, 0}},
		{Time: 180, R: overhead(180)},
	}}
	passes, err := equatorStation.Passes(track)
	if err != nil {
		t.Fatal(err)
	}
	if len(passes) != 2 {
		t.Fatalf("%d passes: %+v", len(passes), passes)
	}
	if passes[0].Start != 0 || passes[0].End != 60 || passes[0].Duration() != 60 || passes[1].Start != 180 || passes[1].Duration() != 0 {
		t.Fatalf("%+v", passes)
	}
	for _, p := range passes {
		if !scalar.EqualWithinAbs(p.MaxElevation, 90, 1e-4) || !scalar.EqualWithinAbs(p.MinRange, 5e5, 1e-3) || p.Satellite != "synthetic" {
			t.Fatalf("%+v", p)
		}
	}

	track.Points[1].R = nil
	if _, err := equatorStation.Passes(track); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	bad := equatorStation
	bad.Latitude = 91
	if _, err := bad.Passes(GroundTrack{}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}

func TestStationGPSCoverage(t *testing.T) {
	sats, err := GPSShell.Satellites(Earth)
	if err != nil {
		t.Fatal(err)
	}
	tracks, err := PropagateConstellation(sats, 12*3600, 300)
	if err != nil {
		t.Fatal(err)
	}
	var total int
	for _, tr := range tracks {
		passes, err := DSS14Goldstone.Passes(tr)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range passes {
			if p.End < p.Start || p.MaxElevation < DSS14Goldstone.MinElevation || p.MinRange < GPSShell.Altitude-DSS14Goldstone.Altitude {
				t.Fatalf("%+v", p)
			}
		}
		total += len(passes)
	}
	if total == 0 {
		t.Fatal("no GPS satellite ever rose over Goldstone")
	}
}

func TestStationFromString(t *testing.T) {
	for name, exp := range map[string]Station{"DSS14": DSS14Goldstone, "canberra": DSS34Canberra, " dss65 ": DSS65Madrid} {
		s, err := StationFromString(name)
		if err != nil || s.Name != exp.Name {
			t.Fatalf("%q: %s (%v)", name, s, err)
		}
		if err := s.Validate(); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := StationFromString("arecibo"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}
