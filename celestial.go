package rocket

import (
	"fmt"
	"strings"
)

// G is the universal gravitational constant in m^3/(kg·s^2).
const G = 6.67430e-11

// CentralBody defines a celestial object. Its fields must not be modified
// after construction; use NewCentralBody.
type CentralBody struct {
	Name   string
	Mass   float64 // kg
	Radius float64 // equatorial radius, m
	μ      float64
	J2     float64
	// RotationRate is the mean angular velocity about the pole in rad/s.
	RotationRate float64
	Atmosphere   *Atmosphere
}

// NewCentralBody returns a body whose gravitational parameter is computed once from its mass.
func NewCentralBody(name string, mass, radius, j2, rate float64, atm *Atmosphere) (CentralBody, error) {
	if mass <= 0 || radius <= 0 {
		return CentralBody{}, invalidf("body %s needs a positive mass and radius (got %g kg, %g m)", name, mass, radius)
	}
	if j2 < 0 {
		return CentralBody{}, invalidf("body %s has a negative J2 (%g)", name, j2)
	}
	return CentralBody{Name: name, Mass: mass, Radius: radius, μ: G * mass, J2: j2, RotationRate: rate, Atmosphere: atm}, nil
}

func mustBody(name string, mass, radius, j2, rate float64, atm *Atmosphere) CentralBody {
	b, err := NewCentralBody(name, mass, radius, j2, rate, atm)
	if err != nil {
		panic(err)
	}
	return b
}

// GM returns μ in m^3/s^2.
func (c CentralBody) GM() float64 {
	return c.μ
}

// SurfaceGravity returns the gravitational acceleration at the mean radius.
func (c CentralBody) SurfaceGravity() float64 {
	return c.μ / (c.Radius * c.Radius)
}

// Density returns the atmospheric density at the given altitude, or zero for airless bodies.
func (c CentralBody) Density(altitude float64) float64 {
	if c.Atmosphere == nil {
		return 0
	}
	return c.Atmosphere.Density(altitude)
}

// String implements the Stringer interface.
func (c CentralBody) String() string {
	return fmt.Sprintf("body %s (μ=%.6e m^3/s^2, R=%.1f m)", c.Name, c.μ, c.Radius)
}

// Equals returns whether two bodies are the same.
func (c CentralBody) Equals(b CentralBody) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.μ == b.μ
}

// CentralBodyFromString returns the body matching the provided name.
func CentralBodyFromString(name string) (CentralBody, error) {
	switch strings.ToLower(name) {
	case "earth":
		return Earth, nil
	case "moon":
		return Moon, nil
	case "mars":
		return Mars, nil
	case "sun":
		return Sun, nil
	default:
		return CentralBody{}, invalidf("undefined central body %q", name)
	}
}

/* Definitions */

// Earth is home.
var Earth = mustBody("Earth", 5.972e24, 6378137, 1.08263e-3, 7.2921159e-5, &EarthAtmosphere)

// Moon is our closest neighbor and has no atmosphere.
var Moon = mustBody("Moon", 7.342e22, 1737400, 2.033e-4, 2.6617e-6, nil)

// Mars is the vacation place.
var Mars = mustBody("Mars", 6.39e23, 3.3895e6, 1.96045e-3, 7.088218e-5, &MarsAtmosphere)

// Sun is our closest star.
var Sun = mustBody("Sun", 1.989e30, 6.957e8, 2e-7, 2.865e-6, nil)
