package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	rocket "github.com/svonstrauss/rocket-basics"
)

// Runs one or every scenario from conf.toml and writes the resulting columns.

const allScenarios = "all"

var (
	scenario    string
	confDir     string
	outDir      string
	exportPath  string
	metricsPath string
	tracing     bool
	summary     bool
	report      bool
)

func init() {
	flag.StringVar(&scenario, "scenario", allScenarios, "scenario to run, or `all`: "+scenarioList())
	flag.StringVar(&confDir, "config", "", "directory of conf.toml (defaults to $"+rocket.ConfigEnv+")")
	flag.StringVar(&outDir, "out", "", "directory for the <scenario>.csv columns (none if empty)")
	flag.StringVar(&exportPath, "export", "", "trajectory CSV for visualization (general.export_path if empty)")
	flag.StringVar(&metricsPath, "metrics", "", "Prometheus text file written after the runs")
	flag.BoolVar(&tracing, "trace", false, "export spans to stderr")
	flag.BoolVar(&summary, "summary", true, "print the scalar results")
	flag.BoolVar(&report, "report", true, "print the risk report with the risk scenario")
}

func scenarioList() string {
	names := make([]string, len(rocket.Scenarios))
	for i, s := range rocket.Scenarios {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}

func main() {
	flag.Parse()
	os.Exit(run(os.Stdout, os.Stderr))
}

// run returns the exit code once the tracer has been flushed.
func run(stdout, stderr io.Writer) int {
	logger := rocket.NewLogger(stderr, "simulate")
	fail := func(err error) int {
		logger.Log("level", "critical", "err", err)
		return 1
	}
	cfg, err := rocket.LoadConfig(confDir)
	if err != nil {
		return fail(fmt.Errorf("configuration: %w", err))
	}
	cfg.Logger = logger

	var scenarios []rocket.Scenario
	if scenario == allScenarios {
		scenarios = rocket.Scenarios
	} else {
		for _, name := range strings.Split(scenario, ",") {
			s, err := rocket.ScenarioFromString(strings.TrimSpace(name))
			if err != nil {
				return fail(err)
			}
			scenarios = append(scenarios, s)
		}
	}

	ctx := context.Background()
	shutdown, err := rocket.InitTracing(ctx, rocket.TracingConfig{Enabled: tracing, ServiceName: "rocket-simulate", Writer: stderr}, logger)
	if err != nil {
		return fail(fmt.Errorf("tracing: %w", err))
	}
	defer rocket.ShutdownTracing(ctx, shutdown, logger)

	reg := prometheus.NewRegistry()
	runner, err := rocket.NewRunner(rocket.RunnerConfig{Registerer: reg, Logger: logger})
	if err != nil {
		return fail(err)
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fail(err)
		}
	}
	if exportPath == "" {
		exportPath = cfg.ExportPath
	}
	var exported []rocket.Trajectory
	var exportBody rocket.CentralBody
	failed := 0
	for _, s := range scenarios {
		ts, err := runner.Run(ctx, s, cfg)
		if err != nil {
			// The runner already logged the failure.
			failed++
			continue
		}
		if summary {
			if err := ts.WriteSummary(stdout); err != nil {
				return fail(err)
			}
		}
		if s == rocket.ScenarioRisk && report {
			a, err := rocket.AssessMission(cfg.Mission)
			if err != nil {
				return fail(err)
			}
			if err := a.WriteReport(stdout); err != nil {
				return fail(err)
			}
		}
		if outDir != "" {
			if err := writeCSV(filepath.Join(outDir, s.String()+".csv"), ts); err != nil {
				return fail(err)
			}
		}
		if len(ts.Trajectories) == 0 {
			continue
		}
		// A single export file only holds trajectories about one body.
		if len(exported) == 0 {
			exportBody = ts.Body
		}
		if ts.Body.Equals(exportBody) {
			exported = append(exported, ts.Trajectories...)
		} else if exportPath != "" {
			logger.Log("level", "notice", "subsys", "export", "status", "skipped", "scenario", s, "body", ts.Body.Name, "export_body", exportBody.Name)
		}
	}

	if exportPath != "" && len(exported) > 0 {
		f, err := os.Create(exportPath)
		if err != nil {
			return fail(err)
		}
		if err := rocket.WriteTrajectories(f, exportBody, exported...); err != nil {
			f.Close()
			return fail(err)
		}
		if err := f.Close(); err != nil {
			return fail(err)
		}
		logger.Log("level", "info", "subsys", "export", "file", exportPath, "trajectories", len(exported))
	}
	if metricsPath != "" {
		if err := prometheus.WriteToTextfile(metricsPath, reg); err != nil {
			return fail(err)
		}
	}
	if failed > 0 {
		fmt.Fprintf(stderr, "%d of %d scenarios failed\n", failed, len(scenarios))
		return 1
	}
	return 0
}

func writeCSV(path string, ts rocket.TimeSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ts.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
