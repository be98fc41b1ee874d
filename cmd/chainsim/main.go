package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/chainsim/internal/config"
	"github.com/san-kum/chainsim/internal/logging"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	preset      string
	seed        int64
	replicas    int
	numRuns     int
	start       float64
	end         float64
	dt          float64
	logLevel    string
	metricsAddr string
	quantile    float64
	plotWidth   int
	plotHeight  int
	svgWidth    int
	svgHeight   int

	envCfg config.Env
	logger *slog.Logger
)

// main registers the chainsim commands and exits with status 1 on any error.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chainsim",
		Short:         "chain binomial compartmental simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			envCfg, err = config.LoadEnv()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("data") {
				dataDir = envCfg.DataDir
			}
			if !cmd.Flags().Changed("log-level") {
				logLevel = envCfg.LogLevel
			}
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = logging.New(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chainsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "simulate a model with every replica as one unit",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "repeat a simulation with consecutive seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of independent runs")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot compartment means and quantile bands",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().Float64Var(&quantile, "quantile", 0.05, "lower quantile of the band; the upper is 1-q")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "peak timing, final sizes and dominant period",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export compartment means as an SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list models and their presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, ensembleCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportSVGCmd, presetsCmd)
	return rootCmd
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "model file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "default", "preset of the named model")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: model file, CHAINSIM_SEED, then clock)")
	cmd.Flags().IntVar(&replicas, "replicas", 0, "units per run")
	cmd.Flags().Float64Var(&start, "start", 0, "start time")
	cmd.Flags().Float64Var(&end, "end", 0, "end time (exclusive)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "time step")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")
}
