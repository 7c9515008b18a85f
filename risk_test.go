package rocket

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestRiskStarlink(t *testing.T) {
	m := NewMissionProfile("Starlink v2 Mini Deployment", 550, 53)
	m.MassKg = 800
	m.IsConstellation = true
	m.ConstellationSize = 4500
	m.FrequencyBand = "Ku/Ka"
	a, err := AssessMission(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Factors) != 5 {
		t.Fatalf("%d factors instead of 5", len(a.Factors))
	}
	exp := map[string]float64{"Debris": 15, "Collision": 25, "Spectrum": 40, "Human Safety": 20, "Environmental": 20}
	for _, f := range a.Factors {
		if f.Level != RiskLow {
			t.Fatalf("%s is %s", f.Name, f.Level)
		}
		if f.Score != exp[f.Category] {
			t.Fatalf("%s scored %f instead of %f", f.Name, f.Score, exp[f.Category])
		}
	}
	if !scalar.EqualWithinAbs(a.OverallScore, 24, 1e-12) || a.OverallLevel != RiskLow {
		t.Fatalf("overall %f %s", a.OverallScore, a.OverallLevel)
	}
	if len(a.Category("Planetary Protection")) != 0 {
		t.Fatal("planetary protection assessed for an Earth orbiting mission")
	}
}

func TestRiskCrewedMars(t *testing.T) {
	m := NewMissionProfile("Starship Mars Crew Transfer", 250, 28.5)
	m.MassKg = 150000
	m.IsCrewed = true
	m.IsInterplanetary = true
	m.Destination = "Mars"
	m.FrequencyBand = "X/Ka"
	m.LaunchSite = "Boca Chica"
	a, err := AssessMission(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Factors) != 7 {
		t.Fatalf("%d factors instead of 7", len(a.Factors))
	}
	if hs := a.Category("Human Safety"); len(hs) != 2 || hs[0].Score != 40 || hs[0].Level != RiskMedium {
		t.Fatalf("human safety: %+v", hs)
	}
	if pp := a.Category("Planetary Protection"); len(pp) != 1 || pp[0].Level != RiskHigh {
		t.Fatalf("planetary protection: %+v", pp)
	}
	// (10+15+15+20 + 1.5·(40+45) + 2·60) / 9
	if !scalar.EqualWithinAbs(a.OverallScore, 307.5/9, 1e-9) || a.OverallLevel != RiskMedium {
		t.Fatalf("overall %f %s", a.OverallScore, a.OverallLevel)
	}
}

func TestRiskCubeSatDump(t *testing.T) {
	m := NewMissionProfile("Budget CubeSat Dump", 850, 98)
	m.HasPropulsion = false
	m.HasTracking = false
	m.MassKg = 50
	m.IsConstellation = true
	m.ConstellationSize = 200
	m.FrequencyBand = "UHF"
	m.IsSpectrumLicensed = false
	m.HasControlledReentry = false
	m.ReentryOverOcean = false
	m.LaunchSite = "Unknown"
	a, err := AssessMission(m)
	if err != nil {
		t.Fatal(err)
	}
	debris := a.Category("Debris")[0]
	if debris.Score != 100 || debris.Level != RiskCritical {
		t.Fatalf("debris: %+v", debris)
	}
	if c := a.Category("Collision")[0]; c.Score != 85 || c.Level != RiskCritical {
		t.Fatalf("collision: %+v", c)
	}
	if s := a.Category("Spectrum")[0]; s.Score != 70 || s.Level != RiskHigh {
		t.Fatalf("spectrum: %+v", s)
	}
	if r := a.Category("Human Safety")[0]; r.Score != 60 || r.Level != RiskHigh {
		t.Fatalf("reentry: %+v", r)
	}
	if !scalar.EqualWithinAbs(a.OverallScore, 890/11.5, 1e-9) || a.OverallLevel != RiskCritical {
		t.Fatalf("overall %f %s", a.OverallScore, a.OverallLevel)
	}
	var buf bytes.Buffer
	if err := a.WriteReport(&buf); err != nil {
		t.Fatal(err)
	}
	for _, exp := range []string{"Budget CubeSat Dump", "[CRITICAL] Orbital Debris Compliance", "Score:       100/100", "Risk Level:    CRITICAL", "UHF-band"} {
		if !strings.Contains(buf.String(), exp) {
			t.Fatalf("report does not contain %q:\n%s", exp, buf.String())
		}
	}
}

func TestRiskModifiers(t *testing.T) {
	geo := NewMissionProfile("GEO comsat", GeostationaryAltitude, 0)
	geo.IsGeostationary = true
	geo.HasPropulsion = false
	a, err := AssessMission(geo)
	if err != nil {
		t.Fatal(err)
	}
	if c := a.Category("Collision")[0]; c.Score != 70 || c.Level != RiskMedium {
		t.Fatalf("GEO collision: %+v", c)
	}
	if d := a.Category("Debris")[0]; d.Score != 80 || d.Level != RiskCritical {
		t.Fatalf("GEO debris: %+v", d)
	}

	quiet := NewMissionProfile("beacon", 500, 45)
	quiet.UsesSpectrum = false
	quiet.ReentryOverOcean = false
	quiet.OverflightPopulation = true
	if a, err = AssessMission(quiet); err != nil {
		t.Fatal(err)
	}
	if s := a.Category("Spectrum")[0]; s.Score != 5 || s.Regulation != "N/A" {
		t.Fatalf("spectrum: %+v", s)
	}
	if r := a.Category("Human Safety")[0]; r.Score != 65 || r.Level != RiskMedium {
		t.Fatalf("reentry: %+v", r)
	}

	for alt, exp := range map[float64]float64{300: 1, 400: 5, 700: 25, 999: 100, 1500: 500} {
		if l := OrbitalLifetime(alt); l != exp {
			t.Fatalf("lifetime at %f km: %f instead of %f", alt, l, exp)
		}
	}
	for score, exp := range map[float64]RiskLevel{0: RiskLow, 24.9: RiskLow, 25: RiskMedium, 50: RiskHigh, 74.9: RiskHigh, 75: RiskCritical} {
		if l := riskLevelOf(score); l != exp {
			t.Fatalf("score %f: %s instead of %s", score, l, exp)
		}
	}
}

func TestRiskInvalid(t *testing.T) {
	neg := NewMissionProfile("underground", -10, 0)
	if _, err := AssessMission(neg); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	empty := NewMissionProfile("empty", 500, 0)
	empty.IsConstellation = true
	empty.ConstellationSize = 0
	if _, err := AssessMission(empty); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}

func TestRiskFactorValidation(t *testing.T) {
	m := NewMissionProfile("custom", 500, 45)
	for _, f := range []RiskFactor{
		{Name: "no level", Score: 10},
		{Name: "negative", Level: RiskLow, Score: -1},
		{Name: "over", Level: RiskHigh, Score: 101},
		{Name: "level 9", Level: RiskLevel(9), Score: 10},
	} {
		if _, err := NewRiskAssessment(m, f); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("%s: expected invalid configuration, got %v", f.Name, err)
		}
	}
	if _, err := NewRiskAssessment(m); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("empty assessment: %v", err)
	}
	a, err := NewRiskAssessment(m,
		RiskFactor{Name: "a", Level: RiskLow, Score: 20},
		RiskFactor{Name: "b", Level: RiskCritical, Score: 80})
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(a.OverallScore, 65, 1e-12) || a.OverallLevel != RiskHigh {
		t.Fatalf("overall %f %s", a.OverallScore, a.OverallLevel)
	}
	var zero RiskLevel
	if zero.String() != "RiskLevel(0)" || zero.Weight() != 0 || zero.Valid() {
		t.Fatalf("zero level %s weighs %f", zero, zero.Weight())
	}
	if _, err := zero.MarshalText(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("zero level marshaled: %v", err)
	}
}
