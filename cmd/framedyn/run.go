package main

import (
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/analysis"
	"github.com/san-kum/framedyn/internal/assembly"
	"github.com/san-kum/framedyn/internal/config"
	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/experiment"
	"github.com/san-kum/framedyn/internal/export"
	"github.com/san-kum/framedyn/internal/loads"
	"github.com/san-kum/framedyn/internal/metrics"
	"github.com/san-kum/framedyn/internal/storage"
	"github.com/san-kum/framedyn/internal/viz"
)

// loadModel resolves a model argument and applies the flags the user set on
// top of the file or preset values.
func loadModel(cmd *cobra.Command, arg string) (*config.Config, error) {
	cfg, err := config.Resolve(arg)
	if err != nil {
		return nil, err
	}
	applyOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	a := &cfg.Analysis
	if changed("dt") {
		a.Dt = dt
	}
	if changed("time") {
		a.Duration = duration
	}
	if changed("scheme") {
		a.Scheme = scheme
	}
	if changed("beta") {
		a.Beta = beta
	}
	if changed("gamma") {
		a.Gamma = gamma
	}
	if changed("modes") {
		a.Modes = numModes
	}
	if changed("workers") {
		a.Workers = workers
	}
	if changed("mass") {
		cfg.Mass = massKind
	}
}

func peakAbs(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Max(floats.Max(x), -floats.Min(x))
}

// pickDOFs maps DOF labels to reduced indices. With no labels it picks the
// DOF whose history has the largest peak.
func pickDOFs(labels, want []string, history func(i int) []float64) ([]int, error) {
	if len(want) == 0 {
		best, peak := 0, -1.0
		for i := range labels {
			if p := peakAbs(history(i)); p > peak {
				best, peak = i, p
			}
		}
		return []int{best}, nil
	}
	out := make([]int, 0, len(want))
	for _, w := range want {
		i := slices.Index(labels, w)
		if i < 0 {
			return nil, fmt.Errorf("unknown or constrained DOF %q", w)
		}
		out = append(out, i)
	}
	return out, nil
}

func runModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadModel(cmd, args[0])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	if limit > 0 {
		registry.RegisterMetric("stability", func(_, _ mat.Symmetric) dynamo.Metric {
			return metrics.NewStability(limit)
		})
	}

	fmt.Fprintf(os.Stderr, "running %s (%d samples)...\n", cfg.Name, cfg.Samples())
	res, err := experiment.New(cfg, experiment.WithLogger(logger), experiment.WithRegistry(registry)).Run(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOut {
		return storage.ExportJSON(os.Stdout, res)
	}

	fmt.Println(viz.RunSummary(res))
	fmt.Println(viz.ModalTable(res.Modes, cfg.Analysis.Modes))

	labels := storage.DOFLabels(res)
	dofs, err := pickDOFs(labels, nil, func(i int) []float64 {
		x, _, _ := res.Response.History(i)
		return x
	})
	if err != nil {
		return err
	}
	x, _, _ := res.Response.History(dofs[0])
	fmt.Printf("%s  %s\n\n", viz.MetricLabel.Render(labels[dofs[0]]), viz.Sparkline(x, 60))

	if noSave {
		return nil
	}
	runID, err := storage.New(dataDir).Save(res)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func modalModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadModel(cmd, args[0])
	if err != nil {
		return err
	}
	res, err := experiment.New(cfg, experiment.WithLogger(logger)).Modal(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(cfg.Name))
	fmt.Print(viz.ModalTable(res.Modes, cfg.Analysis.Modes))
	for _, w := range res.Warnings {
		fmt.Println(viz.WarningText.Render("! " + w))
	}
	if shapeMode == 0 {
		return nil
	}

	if shapeMode < 1 || shapeMode > res.Modes.NumModes() {
		return fmt.Errorf("mode %d outside 1..%d", shapeMode, res.Modes.NumModes())
	}
	full, err := assembly.Expand(res.Modes.Mode(shapeMode-1), res.DOFs)
	if err != nil {
		return err
	}
	c, err := viz.RenderFrame(res.Mesh, full, 60, 16)
	if err != nil {
		return err
	}
	fmt.Printf("\nmode %d, omega = %.6g rad/s\n%s", shapeMode, res.Modes.Omegas[shapeMode-1], c.Render())

	if svgOut == "" {
		return nil
	}
	base, err := viz.Shape(res.Mesh, nil, 0, 1)
	if err != nil {
		return err
	}
	def, err := viz.Shape(res.Mesh, full, viz.AutoScale(res.Mesh, full, 0.25), viz.DefaultSegments)
	if err != nil {
		return err
	}
	f, err := os.Create(svgOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.FrameToSVG(f, export.DefaultSVGStyle, 800, 600, base, def); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return f.Close()
}

func phaseModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadModel(cmd, args[0])
	if err != nil {
		return err
	}
	res, err := experiment.New(cfg, experiment.WithLogger(logger)).Run(cmd.Context())
	if err != nil {
		return err
	}

	labels := storage.DOFLabels(res)
	dofs, err := pickDOFs(labels, dofLabels, func(i int) []float64 {
		x, _, _ := res.Response.History(i)
		return x
	})
	if err != nil {
		return err
	}

	for _, d := range dofs {
		pp, err := analysis.GeneratePhasePortrait(res.Response, d)
		if err != nil {
			return err
		}
		line := make(viz.Polyline, len(pp.X))
		for i := range pp.X {
			line[i] = viz.Point{X: pp.X[i], Y: pp.V[i]}
		}
		// displacement and velocity differ by orders of magnitude; normalize
		// both axes so the orbit fills the canvas
		minX, maxX, minV, maxV := pp.Bounds()
		sx, sv := math.Max(maxX-minX, 1e-300), math.Max(maxV-minV, 1e-300)
		for i := range line {
			line[i] = viz.Point{X: (line[i].X - minX) / sx, Y: (line[i].Y - minV) / sv}
		}
		c := viz.NewCanvas(60, 20)
		c.Draw([]viz.Polyline{line})

		fmt.Println(viz.Title.Render(fmt.Sprintf("%s  %s: velocity vs displacement", cfg.Name, labels[d])))
		fmt.Print(c)
		fmt.Printf("%s [%.4g, %.4g]  %s [%.4g, %.4g]  %s %d\n\n",
			viz.MetricLabel.Render("x"), minX, maxX,
			viz.MetricLabel.Render("v"), minV, maxV,
			viz.MetricLabel.Render("zero crossings"), pp.ZeroCrossings())
	}
	return nil
}

func sweepModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadModel(cmd, args[0])
	if err != nil {
		return err
	}
	res, err := experiment.New(cfg, experiment.WithLogger(logger)).Modal(cmd.Context())
	if err != nil {
		return err
	}

	labels := storage.DOFLabels(res)
	resp := len(labels) - 1
	if len(dofLabels) > 0 {
		if resp = slices.Index(labels, dofLabels[0]); resp < 0 {
			return fmt.Errorf("unknown or constrained DOF %q", dofLabels[0])
		}
	}
	load := resp
	if loadDOF != "" {
		if load = slices.Index(labels, loadDOF); load < 0 {
			return fmt.Errorf("unknown or constrained DOF %q", loadDOF)
		}
	}

	w1 := res.Modes.Omegas[0]
	lo, hi := omegaFrom, omegaTo
	if lo <= 0 {
		lo = w1 / 2
	}
	if hi <= 0 {
		hi = 2 * w1
	}
	omegas, err := loads.Linspace(lo, hi, sweepSteps)
	if err != nil {
		return err
	}

	damp, err := assembly.Rayleigh(res.M, res.K, res.Damping.Alpha, res.Damping.Beta)
	if err != nil {
		return err
	}
	sch, err := experiment.NewRegistry().GetScheme(cfg.Analysis)
	if err != nil {
		return err
	}
	t, err := loads.Grid(cfg.Analysis.Dt, cfg.Analysis.Duration)
	if err != nil {
		return err
	}

	points, err := analysis.FrequencySweep(analysis.Sweep{
		K: res.K, M: res.M, C: damp,
		Scheme:      sch,
		Time:        t,
		LoadDOF:     load,
		ResponseDOF: resp,
		Force:       force,
		Transient:   0.5,
	}, omegas, max(cfg.Analysis.Workers, 1))
	if err != nil {
		return err
	}

	amps := make([]float64, len(points))
	for i, p := range points {
		amps[i] = p.Amplitude
	}
	caption := fmt.Sprintf("%s amplitude, omega %.4g..%.4g rad/s", labels[resp], lo, hi)
	fmt.Println(viz.PlotSeries(viz.DefaultPlotOptions(caption), amps))
	if peak, ok := analysis.Resonance(points); ok {
		fmt.Printf("\n%s %.6g rad/s (amplitude %.4g), omega_1 = %.6g rad/s\n",
			viz.MetricLabel.Render("resonance"), peak.Omega, peak.Amplitude, w1)
	}
	return nil
}
