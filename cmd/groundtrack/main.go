package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	rocket "github.com/svonstrauss/rocket-basics"
)

// Propagates a Walker shell, or the satellites of a TLE file, and writes their
// tracks for visualization.

const dateFormat = "2006-01-02 15:04:05"

var (
	shellName string
	tleFile   string
	epochStr  string
	duration  time.Duration
	step      time.Duration
	output    string
	statesDir string
	station   string
	verbose   bool
)

func init() {
	flag.StringVar(&shellName, "shell", "", "Walker shell (Starlink, OneWeb, Iridium, GPS, Galileo, GLONASS); constellation.shell if empty")
	flag.StringVar(&tleFile, "tle", "", "three line element file, used instead of the shell")
	flag.StringVar(&epochStr, "epoch", "", "start of the tracks in UTC ("+dateFormat+"), now if empty")
	flag.DurationVar(&duration, "duration", 96*time.Minute, "propagation duration")
	flag.DurationVar(&step, "step", time.Minute, "propagation step")
	flag.StringVar(&output, "out", "groundtrack.csv", "trajectory CSV for visualization")
	flag.StringVar(&statesDir, "states", "", "directory for one interpolated states file per satellite (none if empty)")
	flag.StringVar(&station, "station", "", "print the passes over this station (DSS14, DSS34, DSS65); -station config uses constellation.station")
	flag.BoolVar(&verbose, "verbose", false, "print the ground track of each satellite")
}

func main() {
	flag.Parse()
	cfg, err := rocket.LoadConfig("")
	if err != nil {
		log.Fatalf("configuration: %s", err)
	}
	logger := rocket.NewLogger(os.Stderr, "groundtrack")

	epoch := time.Now().UTC()
	if epochStr != "" {
		if epoch, err = time.Parse(dateFormat, epochStr); err != nil {
			log.Fatalf("could not read the epoch: %s", err)
		}
	}

	var sats []rocket.Satellite
	if tleFile != "" {
		if sats, err = readTLEs(tleFile, epoch); err != nil {
			log.Fatal(err)
		}
	} else {
		shell := cfg.Shell
		if shellName != "" {
			if shell, err = rocket.ShellFromString(shellName); err != nil {
				log.Fatal(err)
			}
		}
		if sats, err = shell.Satellites(rocket.Earth); err != nil {
			log.Fatal(err)
		}
	}
	logger.Log("level", "info", "satellites", len(sats), "duration", duration, "step", step)

	tracks, err := rocket.PropagateConstellation(sats, duration.Seconds(), step.Seconds())
	if err != nil {
		log.Fatal(err)
	}
	trajs := make([]rocket.Trajectory, len(tracks))
	for i, tr := range tracks {
		trajs[i] = tr.Trajectory()
		if verbose {
			for _, p := range tr.Points {
				fmt.Printf("%s\t%8.1f s\tlat %7.2f°\tlon %8.2f°\talt %8.1f km\n", tr.Name, p.Time, p.Latitude, p.Longitude, p.Altitude/1e3)
			}
		}
	}

	if station != "" {
		gs := cfg.Station
		if station != "config" {
			if gs, err = rocket.StationFromString(station); err != nil {
				log.Fatal(err)
			}
		}
		fmt.Printf("passes over %s\n", gs)
		for _, tr := range tracks {
			passes, err := gs.Passes(tr)
			if err != nil {
				log.Fatal(err)
			}
			for _, p := range passes {
				fmt.Printf("%s\t%s -> %s\t%6.1f min\tmax el %5.1f°\tmin range %9.1f km\n", p.Satellite,
					epoch.Add(time.Duration(p.Start*float64(time.Second))).Format(dateFormat),
					epoch.Add(time.Duration(p.End*float64(time.Second))).Format(dateFormat),
					p.Duration()/60, p.MaxElevation, p.MinRange/1e3)
			}
		}
	}

	f, err := os.Create(output)
	if err != nil {
		log.Fatal(err)
	}
	if err := rocket.WriteTrajectories(f, rocket.Earth, trajs...); err != nil {
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}

	if statesDir == "" {
		return
	}
	if err := os.MkdirAll(statesDir, 0o755); err != nil {
		log.Fatal(err)
	}
	for _, tr := range tracks {
		name := strings.NewReplacer(" ", "_", "/", "_").Replace(tr.Name)
		sf, err := os.Create(filepath.Join(statesDir, name+".e"))
		if err != nil {
			log.Fatal(err)
		}
		if err := rocket.WriteInterpolatedStates(sf, tr, epoch); err != nil {
			log.Fatal(err)
		}
		if err := sf.Close(); err != nil {
			log.Fatal(err)
		}
	}
	logger.Log("level", "info", "status", "states written", "dir", statesDir, "files", len(tracks))
}

// readTLEs reads name, line 1, line 2 triplets, skipping blank lines.
func readTLEs(path string, epoch time.Time) ([]rocket.Satellite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), " \r"); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines)%3 != 0 {
		return nil, fmt.Errorf("%s: %d lines is not a list of name and two line element triplets", path, len(lines))
	}
	sats := make([]rocket.Satellite, 0, len(lines)/3)
	for i := 0; i < len(lines); i += 3 {
		tle, err := rocket.ParseTLE(strings.TrimSpace(lines[i]), lines[i+1], lines[i+2])
		if err != nil {
			return nil, err
		}
		sat, err := rocket.SatelliteFromTLE(tle, epoch)
		if err != nil {
			return nil, err
		}
		sats = append(sats, sat)
	}
	return sats, nil
}
