package rocket

import (
	"fmt"
	"math"
	"strings"
)

// WalkerShell is a Walker constellation shell i: T/P/F of identical circular orbits.
type WalkerShell struct {
	Name               string
	Altitude           float64 // m
	Inclination        float64 // degrees
	Planes             int
	SatellitesPerPlane int
	// PhasingFactor F shifts each plane by F·360°/T in argument of latitude.
	PhasingFactor int
	// RAANSpread is 360 for a Walker delta and 180 for a Walker star. Zero selects 360.
	RAANSpread float64
}

// Reference shells.
var (
	StarlinkShell = WalkerShell{Name: "Starlink", Altitude: 550e3, Inclination: 53, Planes: 72, SatellitesPerPlane: 22, PhasingFactor: 1}
	OneWebShell   = WalkerShell{Name: "OneWeb", Altitude: 1200e3, Inclination: 87.9, Planes: 18, SatellitesPerPlane: 36, RAANSpread: 180}
	IridiumShell  = WalkerShell{Name: "Iridium", Altitude: 780e3, Inclination: 86.4, Planes: 6, SatellitesPerPlane: 11, PhasingFactor: 2, RAANSpread: 180}
	GPSShell      = WalkerShell{Name: "GPS", Altitude: 20200e3, Inclination: 55, Planes: 6, SatellitesPerPlane: 4, PhasingFactor: 1}
	GalileoShell  = WalkerShell{Name: "Galileo", Altitude: 23222e3, Inclination: 56, Planes: 3, SatellitesPerPlane: 10, PhasingFactor: 1}
	GlonassShell  = WalkerShell{Name: "GLONASS", Altitude: 19130e3, Inclination: 64.8, Planes: 3, SatellitesPerPlane: 8, PhasingFactor: 1}
)

// ShellFromString returns the reference shell of that name.
func ShellFromString(name string) (WalkerShell, error) {
	for _, s := range []WalkerShell{StarlinkShell, OneWebShell, IridiumShell, GPSShell, GalileoShell, GlonassShell} {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return WalkerShell{}, invalidf("unknown constellation shell %q", name)
}

// Total returns the number of satellites T.
func (w WalkerShell) Total() int {
	return w.Planes * w.SatellitesPerPlane
}

// String returns the Walker notation.
func (w WalkerShell) String() string {
	return fmt.Sprintf("%s %g°: %d/%d/%d", w.Name, w.Inclination, w.Total(), w.Planes, w.PhasingFactor)
}

// Validate returns an ErrInvalidConfiguration for an empty or unphysical shell.
func (w WalkerShell) Validate(body CentralBody) error {
	if w.Planes <= 0 || w.SatellitesPerPlane <= 0 {
		return invalidf("shell %q needs at least one plane and one satellite per plane", w.Name)
	}
	if w.PhasingFactor < 0 || (w.PhasingFactor >= w.Planes && w.Planes > 1) {
		return invalidf("shell %q phasing factor %d outside of [0, %d)", w.Name, w.PhasingFactor, w.Planes)
	}
	if !(w.Altitude > 0) || !finite(w.Altitude, w.Inclination, w.RAANSpread) {
		return invalidf("shell %q altitude must be positive (got %g m)", w.Name, w.Altitude)
	}
	if w.Inclination < 0 || w.Inclination > 180 {
		return invalidf("shell %q inclination %g° outside of [0°, 180°]", w.Name, w.Inclination)
	}
	if w.RAANSpread < 0 || w.RAANSpread > 360 {
		return invalidf("shell %q RAAN spread %g° outside of [0°, 360°]", w.Name, w.RAANSpread)
	}
	if body.Radius <= 0 {
		return invalidf("shell %q has no central body", w.Name)
	}
	return nil
}

// Satellite is a named orbit of a constellation.
type Satellite struct {
	Name  string
	Orbit *OrbitElements
}

// Satellites returns the orbits of every satellite of the shell, plane by plane.
func (w WalkerShell) Satellites(body CentralBody) ([]Satellite, error) {
	if err := w.Validate(body); err != nil {
		return nil, err
	}
	spread := w.RAANSpread
	if spread == 0 {
		spread = 360
	}
	a := body.Radius + w.Altitude
	total := float64(w.Total())
	sats := make([]Satellite, 0, w.Total())
	for p := 0; p < w.Planes; p++ {
		Ω := spread / float64(w.Planes) * float64(p)
		for s := 0; s < w.SatellitesPerPlane; s++ {
			u := 360/float64(w.SatellitesPerPlane)*float64(s) + float64(w.PhasingFactor)*360/total*float64(p)
			o, err := NewOrbitElements(a, 0, w.Inclination, Ω, 0, math.Mod(u, 360), body)
			if err != nil {
				return nil, err
			}
			sats = append(sats, Satellite{Name: fmt.Sprintf("%s-%d-%d", w.Name, p, s), Orbit: o})
		}
	}
	return sats, nil
}

// GroundTrackPoint is a propagated satellite state over a rotating body.
type GroundTrackPoint struct {
	Time      float64
	R         []float64 // inertial position, m
	V         []float64 // inertial velocity, m/s
	Latitude  float64   // degrees
	Longitude float64   // degrees, in [-180, 180]
	Altitude  float64   // m
	Speed     float64   // m/s
}

// GroundTrack is the history of one satellite.
type GroundTrack struct {
	Name   string
	Points []GroundTrackPoint
}

// PropagateConstellation propagates every satellite with the secular J2 drift
// from t=0 to duration, every step seconds.
func PropagateConstellation(sats []Satellite, duration, step float64) ([]GroundTrack, error) {
	if !(step > 0) || !(duration >= 0) || math.IsInf(duration, 0) {
		return nil, invalidf("constellation propagation needs a positive step and a finite duration (got %g s, %g s)", step, duration)
	}
	n := int(math.Floor(duration/step+1e-9)) + 1
	tracks := make([]GroundTrack, len(sats))
	for k, sat := range sats {
		if sat.Orbit == nil {
			return nil, invalidf("satellite %q has no orbit", sat.Name)
		}
		body := sat.Orbit.Origin
		track := GroundTrack{Name: sat.Name, Points: make([]GroundTrackPoint, 0, n)}
		for j := 0; j < n; j++ {
			t := float64(j) * step
			o, err := sat.Orbit.PropagateJ2(t)
			if err != nil {
				return nil, fmt.Errorf("satellite %q: %w", sat.Name, err)
			}
			R, V, err := o.RV()
			if err != nil {
				return nil, fmt.Errorf("satellite %q: %w", sat.Name, err)
			}
			speed, err := o.VNorm()
			if err != nil {
				return nil, fmt.Errorf("satellite %q: %w", sat.Name, err)
			}
			lat, long, alt := ECI2Geodetic(R, t, body)
			track.Points = append(track.Points, GroundTrackPoint{
				Time:      t,
				R:         R,
				V:         V,
				Latitude:  lat / deg2rad,
				Longitude: long / deg2rad,
				Altitude:  alt,
				Speed:     speed,
			})
		}
		tracks[k] = track
	}
	return tracks, nil
}
