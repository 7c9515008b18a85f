package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	rocket "github.com/svonstrauss/rocket-basics"
)

const dateFormat = "2006-01-02"

var (
	confDir       string
	output        string
	epoch         string
	launchPoints  int
	arrivalPoints int
	workers       int
	verbose       bool
)

func init() {
	flag.StringVar(&confDir, "config", "", "directory of conf.toml (defaults to $"+rocket.ConfigEnv+")")
	flag.StringVar(&output, "out", "porkchop.dat", "grid output file")
	flag.StringVar(&epoch, "epoch", "", "overrides porkchop.epoch (YYYY-MM-DD)")
	flag.IntVar(&launchPoints, "launch", 0, "overrides porkchop.launch_points")
	flag.IntVar(&arrivalPoints, "arrival", 0, "overrides porkchop.arrival_points")
	flag.IntVar(&workers, "workers", 0, "overrides porkchop.workers")
	flag.BoolVar(&verbose, "verbose", false, "log the grid progress")
}

func main() {
	flag.Parse()
	cfg, err := rocket.LoadConfig(confDir)
	if err != nil {
		log.Fatalf("configuration: %s", err)
	}
	pc := cfg.Porkchop
	if epoch != "" {
		if pc.Epoch, err = time.Parse(dateFormat, epoch); err != nil {
			log.Fatalf("could not read the epoch: %s", err)
		}
	}
	if launchPoints > 0 {
		pc.LaunchPoints = launchPoints
	}
	if arrivalPoints > 0 {
		pc.ArrivalPoints = arrivalPoints
	}
	if workers > 0 {
		pc.Workers = workers
	}
	if verbose {
		pc.Logger = rocket.NewLogger(os.Stderr, "porkchop")
	}

	p, err := rocket.NewPorkchop(pc)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(output)
	if err != nil {
		log.Fatal(err)
	}
	if err := p.WriteDat(f); err != nil {
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s -> %s: Hohmann baseline %.3f km/s\n", pc.Origin.Name, pc.Destination.Name, p.Hohmann.TotalΔv()/1e3)
	opt, err := p.Optimal()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("optimal: %s\n", opt)
	fmt.Printf("saved to %s\n", output)
}
