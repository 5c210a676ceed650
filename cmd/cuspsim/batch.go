package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/cuspsim/internal/analysis"
	"github.com/san-kum/cuspsim/internal/automation"
	"github.com/san-kum/cuspsim/internal/export"
	"github.com/san-kum/cuspsim/internal/optim"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	svgOut    string
	svgX      string
	svgY      string
	svgWidth  int
	svgHeight int

	gridParams []string
	gridMetric string
	gridMax    bool

	trials    int
	posJitter float64
	velJitter float64
	seed      int64
)

func addBatchCommands(root *cobra.Command) {
	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw particle 0's trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&svgOut, "output", "o", "", "output file (default stdout)")
	svgCmd.Flags().StringVar(&svgX, "x-axis", "z", "horizontal coordinate (x, y, z, r, speed)")
	svgCmd.Flags().StringVar(&svgY, "y-axis", "r", "vertical coordinate (x, y, z, r, speed)")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	gridCmd := &cobra.Command{
		Use:   "grid [preset]",
		Short: "grid search scenario parameters for the best metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  gridSearch,
	}
	addScenarioFlags(gridCmd)
	gridCmd.Flags().StringArrayVar(&gridParams, "param", nil, "name=v1,v2,... (repeatable)")
	gridCmd.Flags().StringVar(&gridMetric, "metric", "energy_drift", "metric to optimise")
	gridCmd.Flags().BoolVar(&gridMax, "max", false, "maximise instead of minimise")

	mcCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "run randomly perturbed copies of a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  monteCarlo,
	}
	addScenarioFlags(mcCmd)
	mcCmd.Flags().IntVar(&trials, "trials", 16, "number of trials")
	mcCmd.Flags().Float64Var(&posJitter, "pos-jitter", 1e-4, "position jitter per axis (m)")
	mcCmd.Flags().Float64Var(&velJitter, "vel-jitter", 0.01, "velocity jitter per axis, fraction of speed")
	mcCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	mcCmd.Flags().IntVar(&limit, "jobs", 0, "concurrent trials (0 = unlimited)")

	root.AddCommand(svgCmd, gridCmd, mcCmd)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, history, err := loadRun(args[0])
	if err != nil {
		return err
	}
	h, ok := coords[svgX]
	if !ok {
		return fmt.Errorf("unknown coordinate: %s", svgX)
	}
	v, ok := coords[svgY]
	if !ok {
		return fmt.Errorf("unknown coordinate: %s", svgY)
	}

	// Coil cross-sections are only meaningful in the z-r plane.
	var markers []export.Marker
	if svgX == "z" && svgY == "r" {
		for i, l := range meta.Coils {
			markers = append(markers, export.Marker{
				At:    r2.Vec{X: l.Position.Z, Y: l.Radius},
				Label: fmt.Sprintf("coil %d (%gA)", i, l.Current),
			})
		}
	}

	proj := analysis.NewProjection(history, 0, h, v)
	out := os.Stdout
	if svgOut != "" {
		f, err := os.Create(svgOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return export.TrajectoryToSVG(out, proj.Points, markers, svgWidth, svgHeight, "#00ff88")
}

// parseGridParam splits "name=v1,v2".
func parseGridParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("param %q: want name=v1,v2,...", s)
	}
	var vals []float64
	for _, item := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(item), 64)
		if err != nil {
			return "", nil, fmt.Errorf("param %s: %w", name, err)
		}
		vals = append(vals, v)
	}
	return strings.TrimSpace(name), vals, nil
}

func gridSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	if len(gridParams) == 0 {
		return fmt.Errorf("at least one --param is required (available: %v)", optim.ParamNames())
	}

	names := make([]string, 0, len(gridParams))
	ranges := make([][]float64, 0, len(gridParams))
	for _, p := range gridParams {
		name, vals, err := parseGridParam(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	g, err := optim.NewGridSearch(names, ranges, gridMax)
	if err != nil {
		return err
	}

	logger.Log("level", "info", "component", "grid", "scenario", cfg.Name, "params", strings.Join(names, ","), "metric", gridMetric)
	best, value, failed, err := g.Search(cmd.Context(), cfg, gridMetric)
	if err != nil {
		return err
	}

	fmt.Println(header(fmt.Sprintf("grid search on %s", cfg.Name)))
	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Println("  " + kv(k, best[k]))
	}
	fmt.Println(kv(gridMetric, fmt.Sprintf("%.6g", value)))
	if failed > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("%d grid points failed", failed)))
	}
	return nil
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	mc := &automation.MonteCarloConfig{
		Base:           cfg,
		NumTrials:      trials,
		PositionJitter: posJitter,
		VelocityJitter: velJitter,
		Seed:           seed,
		Limit:          limit,
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), mc, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSTART R\tSTART Z\tFINAL R\tFINAL Z\tMAX R\tCONFINED")
	for _, r := range results {
		s, f := r.Initial[0], r.Final[0]
		fmt.Fprintf(w, "%d\t%.4e\t%.4e\t%.4e\t%.4e\t%.4e\t%.2f\n",
			r.TrialID, s.Radius(), s.Position.Z, f.Radius(), f.Position.Z, r.MaxRadius, r.Confinement)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	mean, std := automation.RadiusStats(results)
	fmt.Println(kv("stable", stable))
	fmt.Println(kv("unstable", unstable))
	fmt.Println(kv("max radius", fmt.Sprintf("%.4e ± %.2e m", mean, std)))
	return nil
}
