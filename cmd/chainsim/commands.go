package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/chainsim/internal/analysis"
	"github.com/san-kum/chainsim/internal/chainbinom"
	"github.com/san-kum/chainsim/internal/config"
	"github.com/san-kum/chainsim/internal/export"
	"github.com/san-kum/chainsim/internal/metrics"
	"github.com/san-kum/chainsim/internal/models"
	"github.com/san-kum/chainsim/internal/storage"
	"github.com/san-kum/chainsim/internal/telemetry"
	"github.com/san-kum/chainsim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// resolveConfig picks the model file or preset and applies the flags that were
// set explicitly. The seed falls back to the environment and then the clock.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	case len(args) == 1:
		cfg = config.GetPreset(args[0], preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s/%s (models: %v, presets: %v)",
				args[0], preset, config.ListModels(), config.ListPresets(args[0]))
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("replicas") {
		cfg.Replicas = replicas
	}
	if flags.Changed("start") {
		cfg.Start = start
	}
	if flags.Changed("end") {
		cfg.End = end
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	switch {
	case flags.Changed("seed"):
		cfg.Seed = seed
	case cfg.Seed != 0:
	case envCfg.Seed != 0:
		cfg.Seed = envCfg.Seed
	default:
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup builds the model, initial state and simulator shared by run and ensemble.
func setup(cfg *config.Config) (*models.Model, *mat.Dense, *chainbinom.Simulator, error) {
	m, err := cfg.Model()
	if err != nil {
		return nil, nil, nil, err
	}
	x0, err := cfg.InitialState(m)
	if err != nil {
		return nil, nil, nil, err
	}
	sim := chainbinom.New(m.Hazard(), m.Stoichiometry(), chainbinom.WithLogger(logger))
	return m, x0, sim, nil
}

// serveMetrics attaches a prometheus recorder to sim and serves it on addr. The
// returned function stops the server.
func serveMetrics(addr string, sim *chainbinom.Simulator, compartments []string) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}
	reg := prometheus.NewRegistry()
	rec, err := telemetry.NewRecorder(reg, compartments)
	if err != nil {
		return nil, err
	}
	sim.AddObserver(rec)

	srv := &http.Server{Addr: addr, Handler: telemetry.Handler(reg), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func metricsAddress() string {
	if metricsAddr != "" {
		return metricsAddr
	}
	return envCfg.MetricsAddr
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	m, x0, sim, err := setup(cfg)
	if err != nil {
		return err
	}
	for _, metric := range metrics.ForModel(m) {
		sim.AddMetric(metric)
	}

	stop, err := serveMetrics(metricsAddress(), sim, m.Compartments)
	if err != nil {
		return err
	}
	defer stop()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	logger.Info("running simulation",
		"model", cfg.Name, "replicas", cfg.Replicas, "seed", cfg.Seed,
		"start", cfg.Start, "end", cfg.End, "dt", cfg.Dt)
	began := time.Now()

	result, err := sim.Run(ctx, x0, cfg.SimConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(began)

	runID, err := st.Save(runMetadata(cfg, m, result), result.Trajectory)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("chainsim " + cfg.Name))
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("time points: %d\n\n", result.Trajectory.Len())
	fmt.Println(viz.Panel.Render(viz.MetricsTable(result.Metrics)))
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	if numRuns < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", numRuns)
	}
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	m, x0, sim, err := setup(cfg)
	if err != nil {
		return err
	}

	stop, err := serveMetrics(metricsAddress(), sim, m.Compartments)
	if err != nil {
		return err
	}
	defer stop()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	ens := chainbinom.NewEnsemble(sim, numRuns, cfg.Seed).
		WithMetrics(func() []chainbinom.Metric { return metrics.ForModel(m) })

	logger.Info("running ensemble",
		"model", cfg.Name, "runs", numRuns, "replicas", cfg.Replicas, "seed_start", cfg.Seed)
	began := time.Now()

	results, err := ens.Run(ctx, x0, cfg.SimConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(began)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSEED\tID")
	for i, res := range results {
		runID, err := st.Save(runMetadata(cfg, m, res), res.Trajectory)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%d\t%s\n", i, res.Seed, runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\ncompleted %d runs in %v\n\n", len(results), elapsed)
	fmt.Println(viz.Panel.Render(ensembleSummary(results)))
	return nil
}

// ensembleSummary reports the mean of every metric across runs, with the
// standard deviation under "<name>_sd" when there is more than one run.
func ensembleSummary(results []*chainbinom.Result) string {
	values := make(map[string][]float64)
	for _, res := range results {
		for name, v := range res.Metrics {
			values[name] = append(values[name], v)
		}
	}
	summary := make(map[string]float64, 2*len(values))
	for name, vs := range values {
		mean, std := stat.MeanStdDev(vs, nil)
		summary[name] = mean
		if len(vs) > 1 {
			summary[name+"_sd"] = std
		}
	}
	return viz.MetricsTable(summary)
}

func runMetadata(cfg *config.Config, m *models.Model, res *chainbinom.Result) storage.RunMetadata {
	return storage.RunMetadata{
		Model:        cfg.Name,
		Seed:         res.Seed,
		Start:        cfg.Start,
		End:          cfg.End,
		Dt:           cfg.Dt,
		Replicas:     cfg.Replicas,
		Compartments: m.Compartments,
		Metrics:      res.Metrics,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tRANGE\tDT\tREPLICAS\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t[%g, %g)\t%g\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Start, run.End,
			run.Dt,
			run.Replicas,
			run.Seed,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *chainbinom.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, traj, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if traj.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(viz.Title.Render("run " + meta.ID))
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("time points: %d, replicas: %d\n\n", traj.Len(), meta.Replicas)

	fmt.Println(viz.PlotCompartments(traj, meta.Compartments, plotWidth, plotHeight))
	fmt.Println()

	if meta.Replicas < 2 {
		return nil
	}
	for s, name := range meta.Compartments {
		band, err := analysis.Summarize(traj, s, quantile, 1-quantile)
		if err != nil {
			return err
		}
		caption := fmt.Sprintf("%s: mean with %.0f%%-%.0f%% band", name, 100*quantile, 100*(1-quantile))
		fmt.Println(viz.PlotBand(band, caption, plotWidth, plotHeight))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if traj.Len() == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Println(viz.Title.Render("analysis " + meta.ID))
	fmt.Printf("model: %s\n\n", meta.Model)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPARTMENT\tPEAK TIME (MEAN)\tFINAL (MEAN)\tFINAL (SD)\tPERIOD")
	for s, name := range meta.Compartments {
		peakMean := stat.Mean(analysis.PeakTimes(traj, s), nil)
		finalMean, finalSD := stat.MeanStdDev(analysis.FinalCounts(traj, s), nil)

		period := "-"
		if p, err := analysis.DominantPeriod(traj.MeanSeries(s), meta.Dt); err == nil {
			period = fmt.Sprintf("%.3f", p)
		} else if !errors.Is(err, analysis.ErrNoPeriod) {
			return err
		}
		fmt.Fprintf(w, "%s\t%.3f\t%.2f\t%.2f\t%s\n", name, peakMean, finalMean, finalSD, period)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(meta.Metrics) > 0 {
		fmt.Println()
		fmt.Println(viz.Panel.Render(viz.MetricsTable(meta.Metrics)))
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, traj)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return export.WriteSVG(os.Stdout, traj, meta.Compartments, svgWidth, svgHeight)
}

func listPresets(cmd *cobra.Command, args []string) error {
	modelNames := config.ListModels()
	if len(args) == 1 {
		modelNames = []string{args[0]}
	}
	for _, name := range modelNames {
		presets := config.ListPresets(name)
		if len(presets) == 0 {
			fmt.Printf("no presets for model: %s\n", name)
			continue
		}
		fmt.Printf("presets for %s:\n", name)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}
