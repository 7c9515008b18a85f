package rocket

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/viper"
)

// ConfigEnv names the environment variable holding the directory of conf.toml.
const ConfigEnv = "ROCKET_BASICS_CONFIG"

// Config gathers the inputs of every scenario.
type Config struct {
	Ascent      AscentConfig
	Seats       []SeatParameters
	Limits      SafetyLimits
	Profile     VehiclePhase
	ProfileStep float64 // s
	EDL         EDLConfig
	// Dispersion.Nominal is replaced by EDL when the dispersion is run.
	Dispersion EDLDispersion
	Porkchop   PorkchopConfig
	// TransferSamples is the number of intervals of the sampled Hohmann transfer.
	TransferSamples int
	Shell           WalkerShell
	ShellDuration   float64 // s
	ShellStep       float64 // s
	Station         Station // contacts of the constellation
	Mission         MissionProfile
	ExportPath      string
	Logger          kitlog.Logger
}

// DefaultConfig returns the configuration used when no conf.toml is found.
func DefaultConfig() Config {
	cfg, err := configFrom(newViper())
	if err != nil {
		panic(fmt.Errorf("default configuration: %w", err))
	}
	return cfg
}

// LoadConfig reads conf.toml from dir, or from the directory named by
// ROCKET_BASICS_CONFIG if dir is empty. Without either, the defaults are returned.
// Every key not set in the file keeps its default.
func LoadConfig(dir string) (Config, error) {
	if dir == "" {
		dir = os.Getenv(ConfigEnv)
	}
	v := newViper()
	if dir == "" {
		return configFrom(v)
	}
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return Config{}, invalidf("%s/conf.toml not found", dir)
		}
		return Config{}, invalidf("%s/conf.toml: %s", dir, err)
	}
	return configFrom(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults := map[string]interface{}{
		"general.export_path": "",

		"vehicle.name":             Falcon9.Name,
		"vehicle.wet_mass":         Falcon9.WetMass,
		"vehicle.dry_mass":         Falcon9.DryMass,
		"vehicle.thrust":           Falcon9.SeaLevelThrust,
		"vehicle.isp":              Falcon9.Isp,
		"vehicle.drag_coefficient": Falcon9.DragCoefficient,
		"vehicle.reference_area":   Falcon9.ReferenceArea,
		"vehicle.burn_duration":    Falcon9.BurnDuration,

		"ascent.body":          Earth.Name,
		"ascent.duration":      300.0,
		"ascent.step":          DefaultAscentStep,
		"ascent.latitude":      28.5,
		"ascent.longitude":     -80.6,
		"ascent.body_rotation": false,

		"seat.name":                StandardSeat.Name,
		"seat.mass":                StandardSeat.Mass,
		"seat.stiffness":           StandardSeat.SpringStiffness,
		"seat.damping":             StandardSeat.DampingCoefficient,
		"seat.comparison_dampings": []int{4000, 6000},

		"limits.sustained_g": SustainedGLimit,
		"limits.peak_g":      PeakGLimit,

		"profile.vehicle": "starship",
		"profile.phase":   "launch",
		"profile.step":    0.05,

		"edl.body":             MarsEntry.Body.Name,
		"edl.speed":            MarsEntry.EntrySpeed,
		"edl.angle":            MarsEntry.FlightPathAngle,
		"edl.altitude":         0.0,
		"edl.mass":             MarsEntry.Mass,
		"edl.drag_coefficient": MarsEntry.DragCoefficient,
		"edl.reference_area":   MarsEntry.ReferenceArea,
		"edl.step":             DefaultEDLStep,
		"edl.max_duration":     DefaultEDLMaxDuration,
		"edl.terminal_speed":   DefaultTerminalSpeed,

		"dispersion.runs":        100,
		"dispersion.speed_sigma": 50.0,
		"dispersion.angle_sigma": 0.5,
		"dispersion.correlation": 0.0,
		"dispersion.seed":        1,
		"dispersion.workers":     0,

		"porkchop.origin":           EarthMars2026.Origin.Name,
		"porkchop.destination":      EarthMars2026.Destination.Name,
		"porkchop.epoch":            EarthMars2026.Epoch.Format("2006-01-02"),
		"porkchop.launch_start":     EarthMars2026.LaunchStart,
		"porkchop.launch_end":       EarthMars2026.LaunchEnd,
		"porkchop.arrival_start":    EarthMars2026.ArrivalStart,
		"porkchop.arrival_end":      EarthMars2026.ArrivalEnd,
		"porkchop.launch_points":    EarthMars2026.LaunchPoints,
		"porkchop.arrival_points":   EarthMars2026.ArrivalPoints,
		"porkchop.workers":          0,
		"porkchop.transfer_samples": 200,

		"constellation.shell":     StarlinkShell.Name,
		"constellation.duration":  5760.0,
		"constellation.step":      60.0,
		"constellation.station":   "DSS14",
		"constellation.elevation": DefaultMinElevation,

		"mission.name":                   "Starlink Deployment",
		"mission.altitude_km":            550.0,
		"mission.inclination_deg":        53.0,
		"mission.is_geostationary":       false,
		"mission.has_propulsion":         true,
		"mission.has_tracking":           true,
		"mission.mass_kg":                800.0,
		"mission.cross_section_m2":       5.0,
		"mission.is_crewed":              false,
		"mission.is_interplanetary":      false,
		"mission.destination":            "LEO",
		"mission.uses_spectrum":          true,
		"mission.frequency_band":         "Ku/Ka",
		"mission.is_spectrum_licensed":   true,
		"mission.is_constellation":       true,
		"mission.constellation_size":     4500,
		"mission.has_controlled_reentry": true,
		"mission.reentry_over_ocean":     true,
		"mission.launch_site":            "Cape Canaveral",
		"mission.overflight_population":  false,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

func configFrom(v *viper.Viper) (Config, error) {
	var cfg Config
	cfg.ExportPath = v.GetString("general.export_path")

	vehicle := VehicleParameters{
		Name:            v.GetString("vehicle.name"),
		WetMass:         v.GetFloat64("vehicle.wet_mass"),
		DryMass:         v.GetFloat64("vehicle.dry_mass"),
		SeaLevelThrust:  v.GetFloat64("vehicle.thrust"),
		Isp:             v.GetFloat64("vehicle.isp"),
		DragCoefficient: v.GetFloat64("vehicle.drag_coefficient"),
		ReferenceArea:   v.GetFloat64("vehicle.reference_area"),
		BurnDuration:    v.GetFloat64("vehicle.burn_duration"),
	}
	ascentBody, err := CentralBodyFromString(v.GetString("ascent.body"))
	if err != nil {
		return cfg, err
	}
	cfg.Ascent = AscentConfig{
		Vehicle:             vehicle,
		Body:                ascentBody,
		Duration:            v.GetFloat64("ascent.duration"),
		Step:                v.GetFloat64("ascent.step"),
		LaunchLatitude:      v.GetFloat64("ascent.latitude"),
		LaunchLongitude:     v.GetFloat64("ascent.longitude"),
		IncludeBodyRotation: v.GetBool("ascent.body_rotation"),
	}

	seat := SeatParameters{
		Name:               v.GetString("seat.name"),
		Mass:               v.GetFloat64("seat.mass"),
		SpringStiffness:    v.GetFloat64("seat.stiffness"),
		DampingCoefficient: v.GetFloat64("seat.damping"),
	}
	cfg.Seats = []SeatParameters{seat}
	for _, c := range v.GetIntSlice("seat.comparison_dampings") {
		alt := seat
		alt.Name = fmt.Sprintf("c=%d", c)
		alt.DampingCoefficient = float64(c)
		cfg.Seats = append(cfg.Seats, alt)
	}
	cfg.Limits = SafetyLimits{SustainedG: v.GetFloat64("limits.sustained_g"), PeakG: v.GetFloat64("limits.peak_g")}
	cfg.Profile = VehiclePhase{Vehicle: v.GetString("profile.vehicle"), Phase: v.GetString("profile.phase")}
	cfg.ProfileStep = v.GetFloat64("profile.step")

	edlBody, err := CentralBodyFromString(v.GetString("edl.body"))
	if err != nil {
		return cfg, err
	}
	cfg.EDL = EDLConfig{
		Body:            edlBody,
		EntrySpeed:      v.GetFloat64("edl.speed"),
		FlightPathAngle: v.GetFloat64("edl.angle"),
		EntryAltitude:   v.GetFloat64("edl.altitude"),
		Mass:            v.GetFloat64("edl.mass"),
		DragCoefficient: v.GetFloat64("edl.drag_coefficient"),
		ReferenceArea:   v.GetFloat64("edl.reference_area"),
		Step:            v.GetFloat64("edl.step"),
		MaxDuration:     v.GetFloat64("edl.max_duration"),
		TerminalSpeed:   v.GetFloat64("edl.terminal_speed"),
	}
	cfg.Dispersion = EDLDispersion{
		SpeedSigma:  v.GetFloat64("dispersion.speed_sigma"),
		AngleSigma:  v.GetFloat64("dispersion.angle_sigma"),
		Correlation: v.GetFloat64("dispersion.correlation"),
		Runs:        v.GetInt("dispersion.runs"),
		Workers:     v.GetInt("dispersion.workers"),
		Seed:        v.GetUint64("dispersion.seed"),
	}

	origin, err := PlanetOrbitFromString(v.GetString("porkchop.origin"))
	if err != nil {
		return cfg, err
	}
	destination, err := PlanetOrbitFromString(v.GetString("porkchop.destination"))
	if err != nil {
		return cfg, err
	}
	epoch, err := time.Parse("2006-01-02", v.GetString("porkchop.epoch"))
	if err != nil {
		return cfg, invalidf("porkchop epoch: %s", err)
	}
	cfg.Porkchop = PorkchopConfig{
		Origin:        origin,
		Destination:   destination,
		Body:          Sun,
		Epoch:         epoch,
		LaunchStart:   v.GetFloat64("porkchop.launch_start"),
		LaunchEnd:     v.GetFloat64("porkchop.launch_end"),
		ArrivalStart:  v.GetFloat64("porkchop.arrival_start"),
		ArrivalEnd:    v.GetFloat64("porkchop.arrival_end"),
		LaunchPoints:  v.GetInt("porkchop.launch_points"),
		ArrivalPoints: v.GetInt("porkchop.arrival_points"),
		Workers:       v.GetInt("porkchop.workers"),
	}
	cfg.TransferSamples = v.GetInt("porkchop.transfer_samples")

	if cfg.Shell, err = ShellFromString(v.GetString("constellation.shell")); err != nil {
		return cfg, err
	}
	cfg.ShellDuration = v.GetFloat64("constellation.duration")
	cfg.ShellStep = v.GetFloat64("constellation.step")
	if cfg.Station, err = StationFromString(v.GetString("constellation.station")); err != nil {
		return cfg, err
	}
	cfg.Station.MinElevation = v.GetFloat64("constellation.elevation")
	if err := cfg.Station.Validate(); err != nil {
		return cfg, err
	}

	cfg.Mission = MissionProfile{
		Name:                 v.GetString("mission.name"),
		AltitudeKm:           v.GetFloat64("mission.altitude_km"),
		InclinationDeg:       v.GetFloat64("mission.inclination_deg"),
		IsGeostationary:      v.GetBool("mission.is_geostationary"),
		HasPropulsion:        v.GetBool("mission.has_propulsion"),
		HasTracking:          v.GetBool("mission.has_tracking"),
		MassKg:               v.GetFloat64("mission.mass_kg"),
		CrossSection:         v.GetFloat64("mission.cross_section_m2"),
		IsCrewed:             v.GetBool("mission.is_crewed"),
		IsInterplanetary:     v.GetBool("mission.is_interplanetary"),
		Destination:          v.GetString("mission.destination"),
		UsesSpectrum:         v.GetBool("mission.uses_spectrum"),
		FrequencyBand:        v.GetString("mission.frequency_band"),
		IsSpectrumLicensed:   v.GetBool("mission.is_spectrum_licensed"),
		IsConstellation:      v.GetBool("mission.is_constellation"),
		ConstellationSize:    v.GetInt("mission.constellation_size"),
		HasControlledReentry: v.GetBool("mission.has_controlled_reentry"),
		ReentryOverOcean:     v.GetBool("mission.reentry_over_ocean"),
		LaunchSite:           v.GetString("mission.launch_site"),
		OverflightPopulation: v.GetBool("mission.overflight_population"),
	}
	return cfg, nil
}

// PlanetOrbitFromString returns the circular heliocentric orbit of that planet.
func PlanetOrbitFromString(name string) (PlanetOrbit, error) {
	for _, p := range []PlanetOrbit{EarthOrbit, MarsOrbit} {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return PlanetOrbit{}, invalidf("no circular orbit known for %q", name)
}
