package rocket

import "math"

// Atmosphere is an isothermal exponential atmosphere plus the constants the
// entry heating model needs.
type Atmosphere struct {
	SurfaceDensity    float64 // kg/m^3
	ScaleHeight       float64 // m
	InterfaceAltitude float64 // m, where entry begins
	SpeedOfSound      float64 // m/s, taken as constant
	SuttonGravesK     float64 // heat flux constant, W/m^2 for SI density and speed
}

// EarthAtmosphere is the sea level exponential model.
var EarthAtmosphere = Atmosphere{
	SurfaceDensity:    1.225,
	ScaleHeight:       8500,
	InterfaceAltitude: 120e3,
	SpeedOfSound:      340,
	SuttonGravesK:     1.7415e-4,
}

// MarsAtmosphere is the thin CO2 atmosphere used for entry studies.
var MarsAtmosphere = Atmosphere{
	SurfaceDensity:    0.020,
	ScaleHeight:       11100,
	InterfaceAltitude: 125e3,
	SpeedOfSound:      240,
	SuttonGravesK:     1.83e-4,
}

// ExponentialDensity returns ρ₀·exp(-h/H). Below the reference surface the
// density is held at ρ₀.
// Both the ascent and the entry integrators go through this function.
func ExponentialDensity(h, ρ0, H float64) float64 {
	if h < 0 {
		return ρ0
	}
	return ρ0 * math.Exp(-h/H)
}

// Density returns the density at the provided altitude in meters.
func (a Atmosphere) Density(h float64) float64 {
	return ExponentialDensity(h, a.SurfaceDensity, a.ScaleHeight)
}

// Validate returns an error if the model cannot produce a finite density.
func (a Atmosphere) Validate() error {
	if a.SurfaceDensity < 0 || a.ScaleHeight <= 0 {
		return invalidf("atmosphere needs ρ₀ ≥ 0 and H > 0 (got %g, %g)", a.SurfaceDensity, a.ScaleHeight)
	}
	if a.SpeedOfSound <= 0 {
		return invalidf("atmosphere needs a positive speed of sound (got %g)", a.SpeedOfSound)
	}
	return nil
}

// SuttonGraves returns the stagnation point heat flux in W/m^2, k·sqrt(ρ)·v³.
func (a Atmosphere) SuttonGraves(ρ, v float64) float64 {
	return a.SuttonGravesK * math.Sqrt(ρ) * v * v * v
}

// Mach returns v over the local speed of sound.
func (a Atmosphere) Mach(v float64) float64 {
	return v / a.SpeedOfSound
}
