package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/analysis"
	"github.com/san-kum/framedyn/internal/assembly"
	"github.com/san-kum/framedyn/internal/export"
	"github.com/san-kum/framedyn/internal/metrics"
	"github.com/san-kum/framedyn/internal/storage"
	"github.com/san-kum/framedyn/internal/viz"
)

// storedRun is a run read back from the data directory.
type storedRun struct {
	meta   *storage.RunMetadata
	states [][]float64
	times  []float64
}

func loadRun(runID string) (*storedRun, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, fmt.Errorf("run %s has no displacement history: %w", runID, err)
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("no data to plot")
	}
	return &storedRun{meta: meta, states: states, times: times}, nil
}

func (r *storedRun) history(dof int) []float64 {
	out := make([]float64, len(r.states))
	for i, s := range r.states {
		if dof < len(s) {
			out[i] = s[dof]
		}
	}
	return out
}

func (r *storedRun) dofs() ([]int, error) {
	return pickDOFs(r.meta.DOFs, dofLabels, r.history)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSCHEME\tDT\tSTEPS\tDOF\tOMEGA_1")
	for _, run := range runs {
		omega := "-"
		if len(run.Omegas) > 0 {
			omega = fmt.Sprintf("%.4g", run.Omegas[0])
		}
		scheme := run.Scheme
		if scheme == "" {
			scheme = "modal"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%d\t%d\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			scheme,
			run.Dt,
			run.Steps,
			run.FreeDOF,
			omega,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	dofs, err := run.dofs()
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", run.meta.ID)
	fmt.Printf("model: %s\n", run.meta.Model)
	fmt.Printf("samples: %d\n\n", len(run.states))

	for _, d := range dofs {
		caption := fmt.Sprintf("%s displacement, t = %g..%g", run.meta.DOFs[d], run.times[0], run.times[len(run.times)-1])
		fmt.Println(viz.PlotSeries(viz.DefaultPlotOptions(caption), run.history(d)))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	dofs, err := run.dofs()
	if err != nil {
		return err
	}
	if len(run.times) < 2 {
		return fmt.Errorf("run %s has a single sample", run.meta.ID)
	}
	step := run.times[1] - run.times[0]

	for _, d := range dofs {
		x := run.history(d)
		spectrum := analysis.PowerSpectrum(x)
		// skip DC
		if len(spectrum) > 1 {
			spectrum = spectrum[1:]
		}
		caption := fmt.Sprintf("power spectrum (%s)", run.meta.DOFs[d])
		fmt.Println(viz.PlotSeries(viz.PlotOptions{Height: 15, Width: 80, Caption: caption}, spectrum))

		rms := metrics.NewRMS(d)
		for i, state := range run.states {
			rms.OnStep(i, run.times[i], state, nil, nil)
		}
		fmt.Printf("%s %.6g\n", viz.MetricLabel.Render("rms"), rms.Value())

		w, err := analysis.DominantFrequency(x, step)
		if err != nil {
			fmt.Println(viz.WarningText.Render("! " + err.Error()))
			continue
		}
		fmt.Printf("\n%s %.6g rad/s", viz.MetricLabel.Render("dominant"), w)
		if len(run.meta.Omegas) > 0 {
			nearest := run.meta.Omegas[0]
			for _, o := range run.meta.Omegas {
				if math.Abs(o-w) < math.Abs(nearest-w) {
					nearest = o
				}
			}
			fmt.Printf("  %s %.6g rad/s", viz.MetricLabel.Render("nearest mode"), nearest)
		}
		fmt.Print("\n\n")
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportFigures(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	name := func(base string) string { return filepath.Join(outDir, fmt.Sprintf("%s_%s.%s", runID, base, format)) }
	if _, err := export.Format(name("x")); err != nil {
		return err
	}

	if meta.Steps > 0 {
		run, err := loadRun(runID)
		if err != nil {
			return err
		}
		dofs, err := run.dofs()
		if err != nil {
			return err
		}
		labels := make([]string, len(dofs))
		rows := make([][]float64, len(dofs))
		for i, d := range dofs {
			labels[i], rows[i] = meta.DOFs[d], run.history(d)
		}
		p, err := export.PlotHistory(meta.Model, run.times, labels, rows)
		if err != nil {
			return err
		}
		if err := export.Save(p, name("history"), export.FigureWidth, export.FigureHeight); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", name("history"))
	}

	cfg, err := st.LoadModel(runID)
	if err != nil {
		return err
	}
	mesh, err := cfg.Mesh()
	if err != nil {
		return err
	}
	omegas, shapes, err := st.LoadModes(runID)
	if err != nil {
		return err
	}
	dofMap := assembly.NewDOFMap(mesh)
	for i := range min(figureModes, len(omegas)) {
		full, err := assembly.Expand(mat.Col(nil, i, shapes), dofMap)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s mode %d, omega = %.4g rad/s", meta.Model, i+1, omegas[i])
		p, err := export.PlotModeShape(title, mesh, full)
		if err != nil {
			return err
		}
		file := name(fmt.Sprintf("mode%d", i+1))
		if err := export.Save(p, file, export.FigureHeight, export.FigureHeight); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", file)
	}
	return nil
}
