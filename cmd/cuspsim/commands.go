package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/cuspsim/internal/analysis"
	"github.com/san-kum/cuspsim/internal/config"
	"github.com/san-kum/cuspsim/internal/dynamo"
	"github.com/san-kum/cuspsim/internal/experiment"
	"github.com/san-kum/cuspsim/internal/field"
	"github.com/san-kum/cuspsim/internal/integrators"
	"github.com/san-kum/cuspsim/internal/sim"
	"github.com/san-kum/cuspsim/internal/storage"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

// loadScenario resolves the preset, then the config file, then any flag the
// user set explicitly.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("evaluator") {
		cfg.Evaluator = evaluator
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("micro") {
		cfg.MicroSteps = micro
	}
	if flags.Changed("scale") {
		cfg.Scale = scale
	}
	return cfg, cfg.Validate()
}

func metadataFor(res *experiment.Result, cfg *config.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Scenario:    cfg.Name,
		Integrator:  res.Config.Integrator,
		Evaluator:   cfg.Evaluator,
		Dt:          res.Config.Dt,
		Steps:       res.Config.Steps,
		MicroSteps:  res.Config.MicroSteps,
		ScaleFactor: cfg.Scale,
		Coils:       cfg.Coils,
		Metrics:     res.Metrics,
	}
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println("  " + kv(name, fmt.Sprintf("%.6g", m[name])))
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	fmt.Println(header(fmt.Sprintf("running %s scenario...", cfg.Name)))
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	runID, err := st.Save(metadataFor(res, cfg), res.History)
	if err != nil {
		return err
	}

	last := res.History[len(res.History)-1].Particles[0]
	summary := strings.Join([]string{
		kv("run id", runID),
		kv("completed in", res.Elapsed),
		kv("snapshots", len(res.History)),
		kv("simulated", fmt.Sprintf("%.4gs", res.Config.Duration())),
		kv("particle 0", fmt.Sprintf("r=%.4g z=%.4g |v|=%.4g", last.Radius(), last.Position.Z, last.Speed())),
	}, "\n")
	fmt.Println(panelStyle.Render(summary))
	fmt.Println(header("metrics:"))
	printMetrics(res.Metrics)
	return nil
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSIMULATED\tDT\tINTEG\tEVAL\tPARTICLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3es\t%.2es\t%s\t%s\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration(),
			run.Dt,
			run.Integrator,
			run.Evaluator,
			run.Particles,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []dynamo.Snapshot, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	history, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(history) == 0 {
		return nil, nil, fmt.Errorf("no data to plot")
	}
	return meta, history, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, history, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Println(kv("run", meta.ID))
	fmt.Println(kv("scenario", meta.Scenario))
	fmt.Println(kv("samples", len(history)))
	fmt.Println()

	plots := []struct {
		caption string
		coord   func(dynamo.Electron) float64
	}{
		{"z (m)", analysis.CoordZ},
		{"r (m)", analysis.CoordRadius},
		{"|v| (m/s)", analysis.CoordSpeed},
	}
	for _, p := range plots {
		data := analysis.Series(history, 0, p.coord)
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

var coords = map[string]func(dynamo.Electron) float64{
	"x":     analysis.CoordX,
	"y":     analysis.CoordY,
	"z":     analysis.CoordZ,
	"r":     analysis.CoordRadius,
	"speed": analysis.CoordSpeed,
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, history, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var (
		proj  *analysis.Projection
		title string
	)
	if midplane {
		proj = analysis.MidplaneCrossings(history, 0)
		title = "midplane crossings (x vs y)"
	} else {
		h, ok := coords[xAxis]
		if !ok {
			return fmt.Errorf("unknown coordinate: %s", xAxis)
		}
		v, ok := coords[yAxis]
		if !ok {
			return fmt.Errorf("unknown coordinate: %s", yAxis)
		}
		proj = analysis.NewProjection(history, 0, h, v)
		title = fmt.Sprintf("%s vs %s", xAxis, yAxis)
	}

	fmt.Println(kv("run", meta.ID))
	fmt.Println(header(title))
	if len(proj.Points) == 0 {
		fmt.Println(warnStyle.Render("no points"))
		return nil
	}
	fmt.Print(proj.ASCII(70, 25))
	return nil
}

func axisProfile(cmd *cobra.Command, args []string) error {
	if axisPoints < 2 {
		return fmt.Errorf("points must be at least 2, got %d", axisPoints)
	}
	loop, err := field.NewLoop(axisRadius, r3.Vec{}, 1)
	if err != nil {
		return err
	}
	b0 := loop.CentreField()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Z/A\tBZ (T)\tBZ/B0\tCLOSED FORM")

	series := make([]float64, 0, 80)
	for i := 0; i < axisPoints; i++ {
		beta := -axisSpan + 2*axisSpan*float64(i)/float64(axisPoints-1)
		b := loop.BField(r3.Vec{Z: beta * axisRadius})
		closed := 1 / math.Pow(1+beta*beta, 1.5)
		fmt.Fprintf(w, "%+.3f\t%.6e\t%.6f\t%.6f\n", beta, b.Z, b.Z/b0, closed)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for i := 0; i < cap(series); i++ {
		beta := -axisSpan + 2*axisSpan*float64(i)/float64(cap(series)-1)
		series = append(series, loop.BField(r3.Vec{Z: beta * axisRadius}).Z/b0)
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("Bz/B0 along the axis, 1 A loop"),
	))
	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	meta, history, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(history) < 4 {
		return fmt.Errorf("need at least 4 samples, got %d", len(history))
	}

	sample := history[1].Time - history[0].Time
	spectrum := analysis.NewSpectrum(analysis.Series(history, 0, analysis.CoordRadius), sample)

	// Local field at the starting point, for comparison.
	start := history[0].Particles[0]
	b := r3.Norm(field.Coils(meta.Coils).NetWith(start.Position, field.Exact))
	qm := sim.ElectronCharge / sim.ElectronMass

	fmt.Println(kv("run", meta.ID))
	fmt.Println(kv("samples", len(history)))
	fmt.Println(kv("sample interval", fmt.Sprintf("%.4es", sample)))
	fmt.Println(kv("dominant frequency", fmt.Sprintf("%.4e Hz", spectrum.Dominant())))
	fmt.Println(kv("cyclotron at start", fmt.Sprintf("%.4e Hz", analysis.CyclotronFrequency(qm, b))))
	fmt.Println(kv("nyquist", fmt.Sprintf("%.4e Hz", 0.5/sample)))
	fmt.Println()

	plotData := spectrum.Amplitudes
	if len(plotData) > 200 {
		plotData = plotData[:200]
	}
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("amplitude spectrum of r"),
	))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportRun(os.Stdout, args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tCOILS\tPARTICLES\tINTEG\tEVAL\tSIMULATED")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%.2es\n",
			name, len(p.Coils), len(p.Particles), p.Integrator, p.Evaluator, p.RunConfig().Duration())
	}
	return w.Flush()
}

func sweepIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	names := integrators.Names()
	results, err := experiment.Sweep(cmd.Context(), cfg, names, limit, logger)
	if err != nil {
		return err
	}

	fmt.Println(header(fmt.Sprintf("comparing integrators on %s (dt=%.2e, %d x %d ticks)",
		cfg.Name, cfg.Dt, cfg.Steps, cfg.MicroSteps)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL Z\tFINAL R\tENERGY DRIFT\tCONFINED\tRUN ID")
	for i, res := range results {
		runID, err := st.Save(metadataFor(res, cfg), res.History)
		if err != nil {
			return err
		}
		last := res.History[len(res.History)-1].Particles[0]
		fmt.Fprintf(w, "%s\t%.6e\t%.6e\t%.2e\t%.2f\t%s\n",
			names[i], last.Position.Z, last.Radius(),
			res.Metrics["energy_drift"], res.Metrics["confinement"], runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(kv("wall time", results[0].Elapsed))
	return nil
}
