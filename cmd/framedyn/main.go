package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/framedyn/internal/viz"
)

var (
	dataDir string
	verbose bool
	theme   string

	// analysis overrides
	dt        float64
	duration  float64
	scheme    string
	beta      float64
	gamma     float64
	numModes  int
	workers   int
	massKind  string
	jsonOut   bool
	limit     float64
	noSave    bool
	shapeMode int
	svgOut    string

	// run inspection
	dofLabels   []string
	outDir      string
	format      string
	figureModes int

	batchWorkers int

	// sweep
	loadDOF    string
	omegaFrom  float64
	omegaTo    float64
	sweepSteps int
	force      float64
)

var logger = slog.New(slog.DiscardHandler)

func main() {
	rootCmd := &cobra.Command{
		Use:           "framedyn",
		Short:         "planar frame dynamics: modal analysis and Newmark time integration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			t, ok := viz.GetTheme(theme)
			if !ok {
				return fmt.Errorf("unknown theme %q (available: %s)", theme, strings.Join(viz.ThemeNames(), ", "))
			}
			viz.ApplyTheme(t)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".framedyn", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "color theme")

	runCmd := &cobra.Command{
		Use:   "run [model.yaml|model/preset]",
		Short: "assemble, solve the modes and integrate a model",
		Args:  cobra.ExactArgs(1),
		RunE:  runModel,
	}
	addAnalysisFlags(runCmd)
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "print the full result as JSON")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().Float64Var(&limit, "limit", 0, "report the fraction of samples with every |x| within this limit")

	modalCmd := &cobra.Command{
		Use:   "modal [model.yaml|model/preset]",
		Short: "print the natural frequencies of a model",
		Args:  cobra.ExactArgs(1),
		RunE:  modalModel,
	}
	modalCmd.Flags().IntVar(&numModes, "modes", 0, "number of modes to list")
	modalCmd.Flags().StringVar(&massKind, "mass", "", "mass formulation (consistent, lumped)")
	modalCmd.Flags().IntVar(&shapeMode, "shape", 0, "draw mode shape n (1-based)")
	modalCmd.Flags().StringVar(&svgOut, "svg", "", "write the drawn mode shape to an svg file")

	phaseCmd := &cobra.Command{
		Use:   "phase [model.yaml|model/preset]",
		Short: "run a model and draw the phase portrait of one DOF",
		Args:  cobra.ExactArgs(1),
		RunE:  phaseModel,
	}
	addAnalysisFlags(phaseCmd)
	phaseCmd.Flags().StringSliceVar(&dofLabels, "dof", nil, "DOF to draw, e.g. n4.uy")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model.yaml|model/preset]",
		Short: "harmonic frequency sweep of one DOF",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepModel,
	}
	addAnalysisFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&loadDOF, "load", "", "loaded DOF (default: response DOF)")
	sweepCmd.Flags().StringSliceVar(&dofLabels, "dof", nil, "response DOF, e.g. n4.uy")
	sweepCmd.Flags().Float64Var(&omegaFrom, "from", 0, "lowest forcing frequency, rad/s (default: omega_1 / 2)")
	sweepCmd.Flags().Float64Var(&omegaTo, "to", 0, "highest forcing frequency, rad/s (default: 2 omega_1)")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 40, "number of frequencies")
	sweepCmd.Flags().Float64Var(&force, "force", 1000, "force amplitude")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot displacement histories of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&dofLabels, "dof", nil, "DOF to plot (default: largest response)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "power spectrum and dominant frequency of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringSliceVar(&dofLabels, "dof", nil, "DOF to analyze (default: largest response)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "write history and mode shape figures of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  exportFigures,
	}
	exportPNGCmd.Flags().StringSliceVar(&dofLabels, "dof", nil, "DOF to plot (default: largest response)")
	exportPNGCmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	exportPNGCmd.Flags().StringVar(&format, "format", "png", "image format (png, svg, pdf)")
	exportPNGCmd.Flags().IntVar(&figureModes, "modes", 3, "number of mode shape figures")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list built-in models and presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [glob]",
		Short: "run every model file matching a glob, e.g. 'models/**/*.yaml'",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "concurrent models")
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	watchCmd := &cobra.Command{
		Use:   "watch [model.yaml]",
		Short: "re-run modal analysis whenever a model file changes",
		Args:  cobra.ExactArgs(1),
		RunE:  watchModel,
	}
	watchCmd.Flags().IntVar(&numModes, "modes", 0, "number of modes to list")

	rootCmd.AddCommand(runCmd, modalCmd, phaseCmd, sweepCmd, listCmd, plotCmd, analyzeCmd,
		exportCmd, exportPNGCmd, presetsCmd, batchCmd, watchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0, "time step")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration")
	cmd.Flags().StringVar(&scheme, "scheme", "", "integration scheme (average, linear, newmark)")
	cmd.Flags().Float64Var(&beta, "beta", 0, "Newmark beta for --scheme newmark")
	cmd.Flags().Float64Var(&gamma, "gamma", 0, "Newmark gamma for --scheme newmark")
	cmd.Flags().IntVar(&numModes, "modes", 0, "number of modes to report")
	cmd.Flags().IntVar(&workers, "workers", 0, "assembly worker goroutines")
	cmd.Flags().StringVar(&massKind, "mass", "", "mass formulation (consistent, lumped)")
}
