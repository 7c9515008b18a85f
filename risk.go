package rocket

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// RiskLevel grades a regulatory risk factor.
type RiskLevel uint8

const (
	RiskLow RiskLevel = iota + 1
	RiskMedium
	RiskHigh
	RiskCritical
)

func (l RiskLevel) String() string {
	switch l {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskCritical:
		return "CRITICAL"
	}
	return fmt.Sprintf("RiskLevel(%d)", uint8(l))
}

// Valid reports whether l is one of the four levels.
func (l RiskLevel) Valid() bool {
	return l >= RiskLow && l <= RiskCritical
}

// Weight is the emphasis of a factor of this level in the overall score, zero for an unknown level.
func (l RiskLevel) Weight() float64 {
	switch l {
	case RiskLow:
		return 1
	case RiskMedium:
		return 1.5
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	}
	return 0
}

// Color returns the hex color used when plotting this level.
func (l RiskLevel) Color() string {
	return map[RiskLevel]string{RiskLow: "#50e3c2", RiskMedium: "#f5e653", RiskHigh: "#ff9f43", RiskCritical: "#e63946"}[l]
}

// MarshalText allows levels to be used as JSON values.
func (l RiskLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, invalidf("unknown risk level %d", uint8(l))
	}
	return []byte(l.String()), nil
}

// riskLevelOf maps an overall score to its level.
func riskLevelOf(score float64) RiskLevel {
	switch {
	case score < 25:
		return RiskLow
	case score < 50:
		return RiskMedium
	case score < 75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// RiskFactor is one assessed regulatory concern, scored from 0 to 100.
type RiskFactor struct {
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Level       RiskLevel `json:"level"`
	Score       float64   `json:"score"`
	Description string    `json:"description"`
	Mitigation  string    `json:"mitigation,omitempty"`
	Regulation  string    `json:"regulation,omitempty"`
}

// Validate returns an ErrInvalidConfiguration for an unknown level or a score outside of [0, 100].
func (f RiskFactor) Validate() error {
	if !f.Level.Valid() {
		return invalidf("risk factor %q has no level", f.Name)
	}
	if !finite(f.Score) || f.Score < 0 || f.Score > 100 {
		return invalidf("risk factor %q score %g outside of [0, 100]", f.Name, f.Score)
	}
	return nil
}

// Regulatory thresholds.
const (
	DeorbitRuleYears      = 25.0
	LEOAltitudeLimit      = 2000.0  // km
	GeostationaryAltitude = 35786.0 // km
)

// MissionProfile is everything the risk calculator needs to know about a mission.
type MissionProfile struct {
	Name string `json:"name"`

	AltitudeKm      float64 `json:"altitude_km"`
	InclinationDeg  float64 `json:"inclination_deg"`
	IsGeostationary bool    `json:"is_geostationary"`

	HasPropulsion bool    `json:"has_propulsion"`
	HasTracking   bool    `json:"has_tracking"`
	MassKg        float64 `json:"mass_kg"`
	CrossSection  float64 `json:"cross_section_m2"`

	IsCrewed         bool   `json:"is_crewed"`
	IsInterplanetary bool   `json:"is_interplanetary"`
	Destination      string `json:"destination"`

	UsesSpectrum       bool   `json:"uses_spectrum"`
	FrequencyBand      string `json:"frequency_band"`
	IsSpectrumLicensed bool   `json:"is_spectrum_licensed"`

	IsConstellation   bool `json:"is_constellation"`
	ConstellationSize int  `json:"constellation_size"`

	HasControlledReentry bool `json:"has_controlled_reentry"`
	ReentryOverOcean     bool `json:"reentry_over_ocean"`

	LaunchSite           string `json:"launch_site"`
	OverflightPopulation bool   `json:"overflight_population"`
}

// NewMissionProfile returns a profile with the defaults of a licensed,
// maneuverable and trackable LEO satellite launched from Cape Canaveral.
func NewMissionProfile(name string, altitudeKm, inclinationDeg float64) MissionProfile {
	return MissionProfile{
		Name:                 name,
		AltitudeKm:           altitudeKm,
		InclinationDeg:       inclinationDeg,
		HasPropulsion:        true,
		HasTracking:          true,
		MassKg:               500,
		CrossSection:         5,
		Destination:          "LEO",
		UsesSpectrum:         true,
		FrequencyBand:        "Ku",
		IsSpectrumLicensed:   true,
		ConstellationSize:    1,
		HasControlledReentry: true,
		ReentryOverOcean:     true,
		LaunchSite:           "Cape Canaveral",
	}
}

// Validate returns an ErrInvalidConfiguration for a negative altitude or an empty constellation.
func (m MissionProfile) Validate() error {
	if !finite(m.AltitudeKm, m.InclinationDeg) || m.AltitudeKm < 0 {
		return invalidf("mission %q altitude must be positive (got %g km)", m.Name, m.AltitudeKm)
	}
	if m.IsConstellation && m.ConstellationSize < 1 {
		return invalidf("mission %q constellation has %d satellites", m.Name, m.ConstellationSize)
	}
	return nil
}

// RiskAssessment is the list of assessed factors and their weighted score.
type RiskAssessment struct {
	Mission      MissionProfile `json:"mission"`
	Factors      []RiskFactor   `json:"factors"`
	OverallScore float64        `json:"overall_score"`
	OverallLevel RiskLevel      `json:"overall_level"`
	Timestamp    time.Time      `json:"timestamp"`
}

// NewRiskAssessment validates the factors and computes the overall score as
// the level weighted mean of every factor score.
func NewRiskAssessment(m MissionProfile, factors ...RiskFactor) (*RiskAssessment, error) {
	if len(factors) == 0 {
		return nil, invalidf("mission %q has no risk factor", m.Name)
	}
	a := &RiskAssessment{Mission: m, Timestamp: time.Now().UTC()}
	for _, f := range factors {
		a.add(f)
	}
	if err := a.aggregate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *RiskAssessment) add(f RiskFactor) {
	a.Factors = append(a.Factors, f)
}

func (a *RiskAssessment) aggregate() error {
	var total, weights float64
	for _, f := range a.Factors {
		if err := f.Validate(); err != nil {
			return err
		}
		w := f.Level.Weight()
		total += f.Score * w
		weights += w
	}
	a.OverallScore = total / weights
	a.OverallLevel = riskLevelOf(a.OverallScore)
	return nil
}

// Category returns the factors of the provided category.
func (a RiskAssessment) Category(category string) []RiskFactor {
	var out []RiskFactor
	for _, f := range a.Factors {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// AssessMission scores the mission against debris, collision, spectrum, human
// safety, environmental and planetary protection rules.
func AssessMission(m MissionProfile) (*RiskAssessment, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	a := &RiskAssessment{Mission: m, Timestamp: time.Now().UTC()}
	for _, assess := range []func(*RiskAssessment, MissionProfile){
		assessDebris, assessCollision, assessSpectrum, assessHumanSafety, assessEnvironmental, assessPlanetaryProtection,
	} {
		assess(a, m)
	}
	if err := a.aggregate(); err != nil {
		return nil, err
	}
	return a, nil
}

// OrbitalLifetime is a coarse natural decay estimate in years.
func OrbitalLifetime(altitudeKm float64) float64 {
	switch {
	case altitudeKm < 400:
		return 1
	case altitudeKm < 600:
		return 5
	case altitudeKm < 800:
		return 25
	case altitudeKm < 1000:
		return 100
	default:
		return 500
	}
}

func assessDebris(a *RiskAssessment, m MissionProfile) {
	lifetime := OrbitalLifetime(m.AltitudeKm)
	f := RiskFactor{
		Name:       "Orbital Debris Compliance",
		Category:   "Debris",
		Mitigation: "Ensure propulsion for EOL deorbit or design for natural decay < 25 years.",
		Regulation: "UN Space Debris Mitigation Guidelines, FCC 47 CFR 25.114",
	}
	switch {
	case m.HasPropulsion && m.AltitudeKm < LEOAltitudeLimit:
		f.Score, f.Level = 10, RiskLow
		f.Description = "Satellite has propulsion for controlled deorbit."
	case lifetime <= DeorbitRuleYears:
		f.Score, f.Level = 30, RiskMedium
		f.Description = fmt.Sprintf("Natural decay within %.0f years (< 25 year rule).", lifetime)
	case m.AltitudeKm > 800:
		f.Score, f.Level = 80, RiskCritical
		f.Description = fmt.Sprintf("High altitude (%g km) with %.0f+ year lifetime.", m.AltitudeKm, lifetime)
	default:
		f.Score, f.Level = 60, RiskHigh
		f.Description = fmt.Sprintf("No propulsion, %.0f year estimated lifetime.", lifetime)
	}
	if m.IsConstellation && m.ConstellationSize > 100 {
		f.Score = capScore(f.Score * 1.5)
		f.Description += fmt.Sprintf(" Large constellation (%d sats) increases cumulative risk.", m.ConstellationSize)
	}
	a.add(f)
}

func assessCollision(a *RiskAssessment, m MissionProfile) {
	crowded := m.AltitudeKm > 350 && m.AltitudeKm < 650
	f := RiskFactor{
		Name:       "Collision Risk",
		Category:   "Collision",
		Mitigation: "Include propulsion system and ensure radar reflectivity > 10 cm².",
		Regulation: "18th Space Control Squadron Conjunction Assessments",
	}
	switch {
	case m.HasPropulsion && m.HasTracking:
		f.Score, f.Level = 15, RiskLow
		if crowded {
			f.Score = 25
		}
		f.Description = "Maneuverable and trackable. Can perform collision avoidance."
	case m.HasTracking:
		f.Score, f.Level = 50, RiskMedium
		if crowded {
			f.Score, f.Level = 65, RiskHigh
		}
		f.Description = "Trackable but non-maneuverable. Collision avoidance limited."
	case m.HasPropulsion:
		f.Score, f.Level = 55, RiskHigh
		f.Description = "Maneuverable but difficult to track. Coordination challenges."
	default:
		f.Score, f.Level = 85, RiskCritical
		f.Description = "Non-maneuverable and difficult to track. High collision risk."
	}
	if m.IsGeostationary {
		f.Score = capScore(f.Score + 20)
		f.Description += " GEO is a limited resource, collisions have outsized impact."
	}
	a.add(f)
}

func assessSpectrum(a *RiskAssessment, m MissionProfile) {
	f := RiskFactor{Name: "Spectrum Allocation", Category: "Spectrum"}
	if !m.UsesSpectrum {
		f.Score, f.Level = 5, RiskLow
		f.Description = "No RF communications. Spectrum regulations not applicable."
		f.Regulation = "N/A"
		a.add(f)
		return
	}
	f.Mitigation = "Obtain FCC license, coordinate with ITU, implement interference mitigation."
	f.Regulation = "FCC Part 25, ITU Radio Regulations"
	if m.IsSpectrumLicensed {
		f.Score, f.Level = 15, RiskLow
		f.Description = fmt.Sprintf("Licensed %s-band spectrum. FCC/ITU coordinated.", m.FrequencyBand)
	} else {
		f.Score, f.Level = 70, RiskHigh
		f.Description = fmt.Sprintf("Unlicensed %s-band use. Potential interference issues.", m.FrequencyBand)
	}
	if m.IsConstellation && m.ConstellationSize > 1000 {
		f.Score = capScore(f.Score + 25)
		f.Description += fmt.Sprintf(" Mega-constellation (%d sats) requires extensive coordination.", m.ConstellationSize)
		if f.Score > 50 {
			f.Level = RiskHigh
		}
	}
	a.add(f)
}

func assessHumanSafety(a *RiskAssessment, m MissionProfile) {
	if m.IsCrewed {
		a.add(RiskFactor{
			Name:        "Crew Safety",
			Category:    "Human Safety",
			Level:       RiskMedium,
			Score:       40,
			Description: "Crewed mission. Requires crew safety systems and abort capability.",
			Mitigation:  "Implement launch abort system, life support redundancy, crew escape systems.",
			Regulation:  "NASA-STD-3001, FAA 14 CFR Part 460",
		})
	}
	f := RiskFactor{
		Name:       "Public Safety (Reentry/Launch)",
		Category:   "Human Safety",
		Score:      20,
		Mitigation: "Target reentry over unpopulated areas, flight termination system for launch.",
		Regulation: "FAA 14 CFR Part 450, Range Safety Requirements",
	}
	switch {
	case !m.HasControlledReentry:
		f.Score += 40
		f.Level = RiskHigh
		f.Description = "Uncontrolled reentry. Impact location unpredictable."
	case !m.ReentryOverOcean:
		f.Score += 25
		f.Level = RiskMedium
		f.Description = "Controlled reentry but not targeting ocean. Some public risk."
	default:
		f.Level = RiskLow
		f.Description = "Controlled reentry targeting ocean. Minimal public risk."
	}
	if m.OverflightPopulation {
		f.Score += 20
		f.Description += " Launch trajectory overflies populated areas."
	}
	a.add(f)
}

func assessEnvironmental(a *RiskAssessment, m MissionProfile) {
	f := RiskFactor{
		Name:       "Environmental Impact",
		Category:   "Environmental",
		Mitigation: "Complete Environmental Impact Statement, implement wildlife mitigation.",
		Regulation: "National Environmental Policy Act (NEPA), FAA Environmental Review",
	}
	switch m.LaunchSite {
	case "Cape Canaveral", "Vandenberg":
		f.Score, f.Level = 20, RiskLow
		f.Description = fmt.Sprintf("Established launch site (%s). Environmental baseline known.", m.LaunchSite)
	case "Boca Chica":
		f.Score, f.Level = 45, RiskMedium
		f.Description = "Boca Chica near wildlife refuge. Enhanced environmental review required."
	default:
		f.Score, f.Level = 50, RiskMedium
		f.Description = fmt.Sprintf("Launch site (%s) environmental status unknown.", m.LaunchSite)
	}
	a.add(f)
}

func assessPlanetaryProtection(a *RiskAssessment, m MissionProfile) {
	if !m.IsInterplanetary {
		return
	}
	f := RiskFactor{
		Name:       "Planetary Protection",
		Category:   "Planetary Protection",
		Regulation: "COSPAR Planetary Protection Policy, NASA NPR 8020.12",
	}
	switch m.Destination {
	case "Mars", "Europa", "Enceladus", "Titan":
		f.Score, f.Level = 60, RiskHigh
		f.Description = fmt.Sprintf("Destination (%s) is a body of astrobiological interest.", m.Destination)
		f.Mitigation = "Spacecraft sterilization, bioburden reduction per COSPAR Category III/IV."
	default:
		f.Score, f.Level = 25, RiskLow
		f.Description = fmt.Sprintf("Destination (%s) has minimal planetary protection concerns.", m.Destination)
		f.Mitigation = "Standard cleanliness protocols."
	}
	a.add(f)
}

func capScore(s float64) float64 {
	if s > 100 {
		return 100
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// WriteReport writes the assessment as a plain text report.
func (a RiskAssessment) WriteReport(w io.Writer) error {
	heavy, light := strings.Repeat("=", 70), strings.Repeat("-", 70)
	m := a.Mission
	spectrum := "None"
	if m.UsesSpectrum {
		spectrum = m.FrequencyBand + "-band"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nSPACE MISSION REGULATORY RISK ASSESSMENT\n%s\n\n", heavy, heavy)
	fmt.Fprintf(&b, "Mission:    %s\nTimestamp:  %s\n\n", m.Name, a.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\nMISSION PARAMETERS\n%s\n", light, light)
	fmt.Fprintf(&b, "  Altitude:          %g km\n", m.AltitudeKm)
	fmt.Fprintf(&b, "  Inclination:       %g°\n", m.InclinationDeg)
	fmt.Fprintf(&b, "  Destination:       %s\n", m.Destination)
	fmt.Fprintf(&b, "  Propulsion:        %s\n", yesNo(m.HasPropulsion))
	fmt.Fprintf(&b, "  Trackable:         %s\n", yesNo(m.HasTracking))
	fmt.Fprintf(&b, "  Crewed:            %s\n", yesNo(m.IsCrewed))
	fmt.Fprintf(&b, "  Constellation:     %s\n", yesNo(m.IsConstellation))
	fmt.Fprintf(&b, "  Spectrum:          %s\n\n", spectrum)
	fmt.Fprintf(&b, "%s\nRISK FACTORS\n%s\n", light, light)
	for _, f := range a.Factors {
		fmt.Fprintf(&b, "\n[%s] %s\n", f.Level, f.Name)
		fmt.Fprintf(&b, "  Category:    %s\n", f.Category)
		fmt.Fprintf(&b, "  Score:       %.0f/100\n", f.Score)
		fmt.Fprintf(&b, "  Description: %s\n", f.Description)
		fmt.Fprintf(&b, "  Mitigation:  %s\n", f.Mitigation)
		fmt.Fprintf(&b, "  Regulation:  %s\n", f.Regulation)
	}
	fmt.Fprintf(&b, "\n%s\nOVERALL ASSESSMENT\n%s\n", light, light)
	fmt.Fprintf(&b, "  Overall Score: %.1f/100\n  Risk Level:    %s\n\n%s\n", a.OverallScore, a.OverallLevel, heavy)
	_, err := io.WriteString(w, b.String())
	return err
}
