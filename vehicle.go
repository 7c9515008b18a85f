package rocket

import (
	"math"
	"sort"
	"strings"
)

// VehicleParameters describes a launch vehicle as a single stage. It is never
// modified by the integrators.
type VehicleParameters struct {
	Name            string
	WetMass         float64 // kg, fully fueled
	DryMass         float64 // kg
	SeaLevelThrust  float64 // N
	Isp             float64 // s
	DragCoefficient float64
	ReferenceArea   float64 // m^2
	BurnDuration    float64 // s
}

// Falcon9 is the first stage used by the ascent examples.
var Falcon9 = VehicleParameters{
	Name:            "Falcon 9",
	WetMass:         549054,
	DryMass:         22200,
	SeaLevelThrust:  7607000,
	Isp:             282,
	DragCoefficient: 0.3,
	ReferenceArea:   10.5,
	BurnDuration:    162,
}

// Validate returns an ErrInvalidConfiguration if the vehicle is not physical.
func (v VehicleParameters) Validate() error {
	if !finite(v.WetMass, v.DryMass, v.SeaLevelThrust, v.Isp, v.DragCoefficient, v.ReferenceArea, v.BurnDuration) {
		return invalidf("vehicle %q has non finite parameters", v.Name)
	}
	if v.DryMass <= 0 {
		return invalidf("vehicle %q dry mass must be positive (got %g kg)", v.Name, v.DryMass)
	}
	if v.DryMass >= v.WetMass {
		return invalidf("vehicle %q dry mass %g kg must be below the wet mass %g kg", v.Name, v.DryMass, v.WetMass)
	}
	if v.SeaLevelThrust < 0 || v.BurnDuration < 0 {
		return invalidf("vehicle %q thrust and burn duration must be non negative", v.Name)
	}
	if v.Isp <= 0 {
		return invalidf("vehicle %q Isp must be positive (got %g s)", v.Name, v.Isp)
	}
	if v.DragCoefficient < 0 || v.ReferenceArea < 0 {
		return invalidf("vehicle %q drag coefficient and area must be non negative", v.Name)
	}
	return nil
}

// PropellantMass returns the loaded propellant.
func (v VehicleParameters) PropellantMass() float64 {
	return v.WetMass - v.DryMass
}

// MassFlowRate returns the propellant consumption in kg/s while the engines run.
func (v VehicleParameters) MassFlowRate() float64 {
	return v.SeaLevelThrust / (v.Isp * StandardGravity)
}

// ThrustToWeight returns the lift off thrust to weight ratio on the provided body.
func (v VehicleParameters) ThrustToWeight(body CentralBody) float64 {
	return v.SeaLevelThrust / (v.WetMass * body.SurfaceGravity())
}

// IdealΔv returns the rocket equation Δv of the full propellant load.
func (v VehicleParameters) IdealΔv() (float64, error) {
	return TsiolkovskyΔv(v.Isp, v.WetMass, v.DryMass)
}

// TsiolkovskyΔv returns Isp·g₀·ln(m0/mf).
func TsiolkovskyΔv(isp, m0, mf float64) (float64, error) {
	if isp <= 0 || m0 <= 0 || mf <= 0 {
		return 0, invalidf("Isp and masses must be positive (got %g s, %g kg, %g kg)", isp, m0, mf)
	}
	if mf > m0 {
		return 0, invalidf("final mass %g kg exceeds initial mass %g kg", mf, m0)
	}
	return isp * StandardGravity * math.Log(m0/mf), nil
}

// RequiredPropellant returns the propellant needed for a dry mass to achieve Δv.
func RequiredPropellant(Δv, isp, dryMass float64) (float64, error) {
	if isp <= 0 || dryMass <= 0 || Δv < 0 {
		return 0, invalidf("invalid propellant query (Δv=%g, Isp=%g, dry=%g)", Δv, isp, dryMass)
	}
	return dryMass * (math.Exp(Δv/(isp*StandardGravity)) - 1), nil
}

// MassRatio returns m0/mf needed for Δv.
func MassRatio(Δv, isp float64) (float64, error) {
	if isp <= 0 || Δv < 0 {
		return 0, invalidf("invalid mass ratio query (Δv=%g, Isp=%g)", Δv, isp)
	}
	return math.Exp(Δv / (isp * StandardGravity)), nil
}

// Propellant is a bipropellant combination.
type Propellant struct {
	Name         string
	IspSeaLevel  float64 // s
	IspVacuum    float64 // s
	Density      float64 // bulk density in kg/m^3
	ExampleStage string
}

// Propellants is the reference table of common propellant combinations.
var Propellants = map[string]Propellant{
	"kerolox":  {"RP-1/LOX", 282, 311, 1030, "Falcon 9 Merlin"},
	"hydrolox": {"LH2/LOX", 366, 452, 360, "RS-25"},
	"methalox": {"CH4/LOX", 327, 380, 830, "Raptor"},
	"solid":    {"APCP", 242, 268, 1800, "SRB"},
	"hypergol": {"UDMH/N2O4", 285, 316, 1180, "Proton"},
}

// PropellantFromString returns the propellant matching the name.
func PropellantFromString(name string) (Propellant, error) {
	p, ok := Propellants[strings.ToLower(name)]
	if !ok {
		return Propellant{}, invalidf("unknown propellant %q", name)
	}
	return p, nil
}

// MissionBudget is the total Δv needed from the surface of Earth to a destination.
type MissionBudget struct {
	Destination string
	Δv          float64 // m/s
}

// MissionBudgets are approximate surface to destination Δv budgets.
var MissionBudgets = []MissionBudget{
	{"LEO", 9400},
	{"GTO", 11900},
	{"GEO", 13800},
	{"Lunar orbit", 13500},
	{"Lunar surface", 15900},
	{"Mars transfer", 13000},
	{"Mars surface", 16700},
}

// CapableMissions returns the destinations reachable with Δv, cheapest first.
func CapableMissions(Δv float64) []MissionBudget {
	var reachable []MissionBudget
	for _, m := range MissionBudgets {
		if m.Δv <= Δv {
			reachable = append(reachable, m)
		}
	}
	sort.Slice(reachable, func(i, j int) bool { return reachable[i].Δv < reachable[j].Δv })
	return reachable
}
