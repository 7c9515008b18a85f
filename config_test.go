package rocket

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConf(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "conf.toml"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ascent.Vehicle != Falcon9 {
		t.Fatalf("vehicle %+v", cfg.Ascent.Vehicle)
	}
	if !cfg.Ascent.Body.Equals(Earth) || !cfg.EDL.Body.Equals(Mars) {
		t.Fatalf("bodies %s and %s", cfg.Ascent.Body, cfg.EDL.Body)
	}
	if len(cfg.Seats) != 3 || cfg.Seats[0] != StandardSeat || cfg.Seats[2].DampingCoefficient != 6000 {
		t.Fatalf("seats %+v", cfg.Seats)
	}
	if cfg.Limits != DefaultSafetyLimits {
		t.Fatalf("limits %+v", cfg.Limits)
	}
	if cfg.EDL.EntrySpeed != 5500 || cfg.EDL.FlightPathAngle != -12 {
		t.Fatalf("entry %+v", cfg.EDL)
	}
	if !cfg.Porkchop.Epoch.Equal(EarthMars2026.Epoch) || cfg.Porkchop.Destination != MarsOrbit || cfg.Porkchop.LaunchPoints != 100 {
		t.Fatalf("porkchop %+v", cfg.Porkchop)
	}
	if cfg.Shell != StarlinkShell || cfg.Station != DSS14Goldstone {
		t.Fatalf("shell %s, station %s", cfg.Shell, cfg.Station)
	}
	if cfg.Mission.ConstellationSize != 4500 || !cfg.Mission.HasPropulsion {
		t.Fatalf("mission %+v", cfg.Mission)
	}
	if DefaultConfig().Dispersion != cfg.Dispersion {
		t.Fatal("DefaultConfig differs from an empty load")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := writeConf(t, `
[edl]
speed = 6000.0
angle = -14.5

[seat]
damping = 4000.0
comparison_dampings = [5000]

[porkchop]
epoch = "2028-10-01"
launch_points = 20

[constellation]
shell = "gps"
station = "madrid"
elevation = 5.0

[mission]
is_crewed = true
launch_site = "Boca Chica"
`)
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EDL.EntrySpeed != 6000 || cfg.EDL.FlightPathAngle != -14.5 || cfg.EDL.Mass != MarsEntry.Mass {
		t.Fatalf("entry %+v", cfg.EDL)
	}
	if len(cfg.Seats) != 2 || cfg.Seats[0].DampingCoefficient != 4000 || cfg.Seats[1].DampingCoefficient != 5000 || cfg.Seats[1].Name != "c=5000" {
		t.Fatalf("seats %+v", cfg.Seats)
	}
	if !cfg.Porkchop.Epoch.Equal(time.Date(2028, 10, 1, 0, 0, 0, 0, time.UTC)) || cfg.Porkchop.LaunchPoints != 20 || cfg.Porkchop.ArrivalPoints != 100 {
		t.Fatalf("porkchop %+v", cfg.Porkchop)
	}
	if cfg.Shell != GPSShell || cfg.Station.Name != DSS65Madrid.Name || cfg.Station.MinElevation != 5 {
		t.Fatalf("shell %s, station %s", cfg.Shell, cfg.Station)
	}
	if !cfg.Mission.IsCrewed || cfg.Mission.LaunchSite != "Boca Chica" || cfg.Mission.AltitudeKm != 550 {
		t.Fatalf("mission %+v", cfg.Mission)
	}

	t.Setenv(ConfigEnv, dir)
	fromEnv, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if fromEnv.EDL.EntrySpeed != 6000 {
		t.Fatalf("%s was not used", ConfigEnv)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	for name, dir := range map[string]string{
		"missing":     t.TempDir(),
		"syntax":      writeConf(t, "[edl\nspeed = "),
		"body":        writeConf(t, "[edl]\nbody = \"Vulcan\"\n"),
		"planet":      writeConf(t, "[porkchop]\ndestination = \"Vulcan\"\n"),
		"epoch":       writeConf(t, "[porkchop]\nepoch = \"soon\"\n"),
		"shell":       writeConf(t, "[constellation]\nshell = \"none\"\n"),
		"ascent body": writeConf(t, "[ascent]\nbody = \"Vulcan\"\n"),
		"station":     writeConf(t, "[constellation]\nstation = \"arecibo\"\n"),
		"elevation":   writeConf(t, "[constellation]\nelevation = 95.0\n"),
	} {
		if _, err := LoadConfig(dir); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("%s: expected invalid configuration, got %v", name, err)
		}
	}
}
