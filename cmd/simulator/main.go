package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/signalsfoundry/navigation-simulator/core"
	"github.com/signalsfoundry/navigation-simulator/internal/logging"
	"github.com/signalsfoundry/navigation-simulator/internal/observability"
	"github.com/signalsfoundry/navigation-simulator/kb"
	"github.com/signalsfoundry/navigation-simulator/output"
)

var sweepIntervals = []float64{10, 30, 60, 120, 300, 600, 1800, 3600}

func main() {
	scenario := flag.String("scenario", "compare", "scenario to run: coast | updates | sweep | compare | posfix | orbit")
	configPath := flag.String("config", "", "path to a YAML experiment configuration (overrides scenario presets)")
	imuName := flag.String("imu", "quantum", "IMU profile: classical | quantum")
	durationH := flag.Float64("duration", 1.0, "simulation duration in hours")
	dt := flag.Float64("dt", 1.0, "simulation step size in seconds")
	seed := flag.Int64("seed", 42, "random seed")
	interval := flag.Float64("interval", 60.0, "aiding update interval in seconds (updates/posfix scenarios)")
	outputDir := flag.String("output-dir", "results", "output directory for reports and plots")
	metricsAddr := flag.String("metrics-addr", "", "optional address to serve Prometheus /metrics on while running")

	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		fatal(ctx, log, "init tracing", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	metrics, err := observability.NewExperimentCollector(nil)
	if err != nil {
		fatal(ctx, log, "register metrics", err)
	}
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Warn(ctx, "metrics server stopped", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "serving metrics", logging.String("addr", *metricsAddr))
	}

	runner := core.NewRunner(log, metrics)
	duration := *durationH * 3600.0

	if *configPath != "" {
		cfg, err := core.LoadExperimentConfigFile(*configPath)
		if err != nil {
			fatal(ctx, log, "load config", err)
		}
		res, err := runner.Run(ctx, cfg)
		if err != nil {
			fatal(ctx, log, "run experiment", err)
		}
		saveResults(ctx, log, cfg.OutputDir, res)
		return
	}

	profile, err := core.IMUProfileByName(*imuName)
	if err != nil {
		fatal(ctx, log, "resolve IMU profile", err)
	}

	store := kb.NewResultStore()
	store.Subscribe(func(ev kb.Event) {
		log.Info(ctx, "trial complete", logging.String("experiment", ev.Experiment))
	})

	switch *scenario {
	case "coast":
		res, err := core.RunCoastScenario(ctx, runner, profile, duration, *dt, *seed)
		if err != nil {
			fatal(ctx, log, "coast scenario", err)
		}
		collect(store, res)
	case "updates":
		res, err := core.RunUpdatesScenario(ctx, runner, profile, *interval, duration, *dt, *seed)
		if err != nil {
			fatal(ctx, log, "updates scenario", err)
		}
		collect(store, res)
	case "posfix":
		res, err := core.RunPositionFixScenario(ctx, runner, profile, 100.0, *interval, duration, *dt, *seed)
		if err != nil {
			fatal(ctx, log, "position fix scenario", err)
		}
		collect(store, res)
	case "sweep":
		results, err := core.RunCadenceSweep(ctx, runner, profile, sweepIntervals, duration, *dt, *seed)
		if err != nil {
			fatal(ctx, log, "cadence sweep", err)
		}
		for _, res := range results {
			collect(store, res)
		}
		sweepPath := filepath.Join(*outputDir, "cadence_sweep.png")
		if err := os.MkdirAll(*outputDir, 0o755); err == nil {
			if err := output.SaveSweepPlot(sweepPath, sweepIntervals, results); err != nil {
				log.Warn(ctx, "save sweep plot", logging.String("error", err.Error()))
			}
		}
	case "compare":
		cmp, err := core.RunComparison(ctx, runner, duration, *dt, *seed)
		if err != nil {
			fatal(ctx, log, "comparison", err)
		}
		collect(store, cmp.Classical)
		collect(store, cmp.Quantum)
		ratio := cmp.Classical.FinalPositionErrorRMS() / cmp.Quantum.FinalPositionErrorRMS()
		fmt.Printf("Classical/quantum final position error ratio: %.1f×\n", ratio)
	case "orbit":
		runOrbitDemo(*dt, duration)
		return
	default:
		fatal(ctx, log, "select scenario", fmt.Errorf("unknown scenario %q", *scenario))
	}

	var all []*core.ExperimentResults
	for _, name := range store.Names() {
		res := store.Get(name)
		all = append(all, res)
		saveResults(ctx, log, *outputDir, res)
	}

	mdPath := filepath.Join(*outputDir, "comparison.md")
	mf, err := os.Create(mdPath)
	if err == nil {
		defer mf.Close()
		if err := output.WriteMarkdownComparison(mf, all); err != nil {
			log.Warn(ctx, "write comparison table", logging.String("error", err.Error()))
		}
	}

	fmt.Printf("Completed %d trial(s); results in %s\n", store.Len(), *outputDir)
}

// runOrbitDemo propagates a LEO orbit with the numeric J2 model and prints
// the drift against an SGP4 reference trajectory.
func runOrbitDemo(dt, duration float64) {
	// ISS sample TLE.
	tle1 := "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	tle2 := "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
	ref := core.NewSGP4Reference(tle1, tle2)

	start := time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC)
	pos := ref.PositionECEF(start)
	// Rough circular-orbit velocity tangent to the reference track.
	next := ref.PositionECEF(start.Add(time.Second))
	vel := next.Sub(pos)

	model := core.NewJ2Orbit()
	nSteps := int(duration / dt)
	for step := 0; step < nSteps; step++ {
		pos, vel = model.PropagateRK4(pos, vel, dt)
	}

	end := start.Add(time.Duration(duration * float64(time.Second)))
	refPos := ref.PositionECEF(end)
	fmt.Printf("After %.0fs: J2 propagated r=%.1f km, SGP4 reference r=%.1f km, separation %.1f km\n",
		duration, pos.Norm()/1000, refPos.Norm()/1000, pos.DistanceTo(refPos)/1000)
}

func collect(store *kb.ResultStore, res *core.ExperimentResults) {
	if err := store.Add(res); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

func saveResults(ctx context.Context, log logging.Logger, dir string, res *core.ExperimentResults) {
	if err := output.SaveAll(dir, res); err != nil {
		log.Warn(ctx, "save results",
			logging.String("experiment", res.Config.Name),
			logging.String("error", err.Error()),
		)
		return
	}
	fmt.Printf("%s: %d updates, final pos error %.3g m\n",
		res.Config.Name, res.NUpdates, res.FinalPositionErrorRMS())
}

func fatal(ctx context.Context, log logging.Logger, what string, err error) {
	log.Error(ctx, what, logging.String("error", err.Error()))
	os.Exit(1)
}
