package main

import (
	"os"

	"github.com/go-kit/kit/log"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	quiet      bool
	configFile string
	integrator string
	evaluator  string
	dt         float64
	steps      int
	micro      int
	scale      float64
	limit      int
	// phase plot axes
	xAxis    string
	yAxis    string
	midplane bool
	// axis profile
	axisRadius float64
	axisSpan   float64
	axisPoints int

	logger log.Logger
)

// main registers the cuspsim commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "cuspsim",
		Short:         "electron trajectories in current-loop magnetic fields",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(quiet)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cuspsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress operational logs")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario and store the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot z, r and speed of particle 0",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "projection of particle 0's trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xAxis, "x-axis", "x", "horizontal coordinate (x, y, z, r, speed)")
	phaseCmd.Flags().StringVar(&yAxis, "y-axis", "y", "vertical coordinate (x, y, z, r, speed)")
	phaseCmd.Flags().BoolVar(&midplane, "midplane", false, "plot z = 0 crossings instead")

	axisCmd := &cobra.Command{
		Use:   "axis",
		Short: "on-axis field profile of a single loop",
		RunE:  axisProfile,
	}
	axisCmd.Flags().Float64Var(&axisRadius, "radius", 1, "loop radius (m)")
	axisCmd.Flags().Float64Var(&axisSpan, "span", 3, "profile half-length in loop radii")
	axisCmd.Flags().IntVar(&axisPoints, "points", 13, "table rows")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "gyration spectrum of particle 0's radius",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenario presets",
		RunE:  listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run every integrator on one scenario and compare",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepIntegrators,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&limit, "jobs", 0, "concurrent runs (0 = unlimited)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, axisCmd, spectrumCmd, exportJSONCmd, presetsCmd, sweepCmd)
	addBatchCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().StringVar(&evaluator, "evaluator", "table", "field evaluator (table, interpolated, exact)")
	cmd.Flags().Float64Var(&dt, "dt", 2e-13, "micro timestep (s)")
	cmd.Flags().IntVar(&steps, "steps", 100, "macro-steps")
	cmd.Flags().IntVar(&micro, "micro", 5000, "micro-steps per macro-step")
	cmd.Flags().Float64Var(&scale, "scale", 1e20, "charge and mass scale factor")
}

func newLogger(quiet bool) log.Logger {
	if quiet {
		return log.NewNopLogger()
	}
	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	return log.With(l, "ts", log.DefaultTimestampUTC)
}
