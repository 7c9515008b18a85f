package rocket

import (
	"fmt"
	"math"
	"strings"
)

// DefaultMinElevation is the elevation mask of the builtin stations, in degrees.
const DefaultMinElevation = 10.0

var (
	DSS14Goldstone = Station{Name: "DSS14 Goldstone", Latitude: 35.426667, Longitude: -116.889444, Altitude: 1001.39, MinElevation: DefaultMinElevation, Body: Earth}
	DSS34Canberra  = Station{Name: "DSS34 Canberra", Latitude: -35.398333, Longitude: 148.981944, Altitude: 691.75, MinElevation: DefaultMinElevation, Body: Earth}
	DSS65Madrid    = Station{Name: "DSS65 Madrid", Latitude: 40.427222, Longitude: -4.250556, Altitude: 834.94, MinElevation: DefaultMinElevation, Body: Earth}
)

// Station is a ground station fixed on a rotating spherical body.
type Station struct {
	Name                string
	Latitude, Longitude float64 // degrees
	Altitude            float64 // m
	MinElevation        float64 // degrees, visibility mask
	Body                CentralBody
}

// StationFromString returns the builtin station of that name (DSS14, DSS34 or DSS65).
func StationFromString(name string) (Station, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dss14", "goldstone":
		return DSS14Goldstone, nil
	case "dss34", "canberra":
		return DSS34Canberra, nil
	case "dss65", "madrid":
		return DSS65Madrid, nil
	default:
		return Station{}, invalidf("unknown station %q", name)
	}
}

func (s Station) String() string {
	return fmt.Sprintf("%s (%.4f°, %.4f°); alt = %.1f m; el > %.1f°", s.Name, s.Latitude, s.Longitude, s.Altitude, s.MinElevation)
}

// Validate returns an ErrInvalidConfiguration for a station off the body.
func (s Station) Validate() error {
	if !finite(s.Latitude, s.Longitude, s.Altitude, s.MinElevation) {
		return invalidf("station %q has non finite coordinates", s.Name)
	}
	if math.Abs(s.Latitude) > 90 {
		return invalidf("station %q latitude %g° outside of [-90°, 90°]", s.Name, s.Latitude)
	}
	if math.Abs(s.MinElevation) > 90 {
		return invalidf("station %q elevation mask %g° outside of [-90°, 90°]", s.Name, s.MinElevation)
	}
	if !(s.Body.Radius > 0) {
		return invalidf("station %q has no body", s.Name)
	}
	return nil
}

// ECEF returns the body fixed position of the station in meters.
func (s Station) ECEF() []float64 {
	return GEO2ECEF(s.Altitude, s.Latitude*deg2rad, s.Longitude*deg2rad, s.Body)
}

// RangeElAz returns the range (meters), elevation and azimuth (degrees, from
// north through east) of a body fixed position.
func (s Station) RangeElAz(rECEF []float64) (ρ, el, az float64) {
	ρECEF := make([]float64, 3)
	for i, r := range s.ECEF() {
		ρECEF[i] = rECEF[i] - r
	}
	ρ = norm(ρECEF)
	if ρ == 0 {
		return 0, 90, 0
	}
	rSEZ := MxV33(R3(s.Longitude*deg2rad), ρECEF)
	rSEZ = MxV33(R2(math.Pi/2-s.Latitude*deg2rad), rSEZ)
	el = math.Asin(floatClamp(rSEZ[2]/ρ)) / deg2rad
	az = wrap2π(math.Atan2(rSEZ[1], -rSEZ[0])) / deg2rad
	return
}

// Observation is the geometry of a satellite seen from a station.
type Observation struct {
	Time      float64 // s
	Range     float64 // m
	RangeRate float64 // m/s
	Elevation float64 // degrees
	Azimuth   float64 // degrees
	Visible   bool
}

// Observe returns the observation of a track point, whose body rotated by
// RotationRate·Time since the prime meridian was on the inertial X axis.
func (s Station) Observe(p GroundTrackPoint) Observation {
	θ := s.Body.RotationRate * p.Time
	rECEF := ECI2ECEF(p.R, θ)
	ρ, el, az := s.RangeElAz(rECEF)
	obs := Observation{Time: p.Time, Range: ρ, Elevation: el, Azimuth: az, Visible: el >= s.MinElevation}
	if len(p.V) == 3 && ρ > 0 {
		// Velocity relative to the rotating frame.
		vRel := make([]float64, 3)
		ωxR := cross([]float64{0, 0, s.Body.RotationRate}, p.R)
		for i := range vRel {
			vRel[i] = p.V[i] - ωxR[i]
		}
		vECEF := ECI2ECEF(vRel, θ)
		ρECEF := make([]float64, 3)
		for i, r := range s.ECEF() {
			ρECEF[i] = rECEF[i] - r
		}
		obs.RangeRate = dot(ρECEF, vECEF) / ρ
	}
	return obs
}

// Pass is a contiguous visibility window of a satellite, at the resolution
// of its track.
type Pass struct {
	Satellite    string
	Start, End   float64 // s
	MaxElevation float64 // degrees
	MinRange     float64 // m
}

// Duration returns the length of the pass in seconds.
func (p Pass) Duration() float64 {
	return p.End - p.Start
}

// Passes returns the visibility windows of the track over the station.
func (s Station) Passes(track GroundTrack) ([]Pass, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var passes []Pass
	var cur *Pass
	for _, p := range track.Points {
		if len(p.R) != 3 {
			return nil, invalidf("track %q has no position at t=%g", track.Name, p.Time)
		}
		obs := s.Observe(p)
		if !obs.Visible {
			cur = nil
			continue
		}
		if cur == nil {
			passes = append(passes, Pass{Satellite: track.Name, Start: obs.Time, MaxElevation: obs.Elevation, MinRange: obs.Range})
			cur = &passes[len(passes)-1]
		}
		cur.End = obs.Time
		cur.MaxElevation = math.Max(cur.MaxElevation, obs.Elevation)
		cur.MinRange = math.Min(cur.MinRange, obs.Range)
	}
	return passes, nil
}
