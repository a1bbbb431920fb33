package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/san-kum/framedyn/internal/config"
	"github.com/san-kum/framedyn/internal/experiment"
	"github.com/san-kum/framedyn/internal/storage"
	"github.com/san-kum/framedyn/internal/viz"
)

func listPresets(cmd *cobra.Command, args []string) error {
	models := config.Models()
	if len(args) == 1 {
		if config.ListPresets(args[0]) == nil {
			return fmt.Errorf("unknown model %q (available: %s)", args[0], strings.Join(models, ", "))
		}
		models = args
	}
	for _, m := range models {
		fmt.Println(viz.Title.Render(m))
		for _, p := range config.ListPresets(m) {
			cfg := config.GetPreset(m, p)
			fmt.Printf("  %-10s %s\n", p, viz.Subtle.Render(fmt.Sprintf(
				"%d nodes, %d elements, dt=%g, %gs, %s",
				len(cfg.Nodes), len(cfg.Elements), cfg.Analysis.Dt, cfg.Analysis.Duration, cfg.Analysis.Scheme)))
		}
	}
	return nil
}

// globModels expands a doublestar pattern into model files, sorted.
func globModels(pattern string) ([]string, error) {
	paths, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no model files match %q", pattern)
	}
	return paths, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	paths, err := globModels(args[0])
	if err != nil {
		return err
	}

	cfgs := make([]*config.Config, 0, len(paths))
	var loadErrs []error
	for _, p := range paths {
		cfg, err := config.Load(p)
		if err != nil {
			loadErrs = append(loadErrs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		if cfg.Name == "" || cfg.Name == config.DefaultConfig().Name {
			cfg.Name = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		}
		cfgs = append(cfgs, cfg)
	}
	for _, err := range loadErrs {
		fmt.Fprintln(os.Stderr, viz.WarningText.Render("! "+err.Error()))
	}

	fmt.Fprintf(os.Stderr, "running %d models on %d workers...\n", len(cfgs), batchWorkers)
	results := experiment.NewBatch(cfgs, batchWorkers, experiment.WithLogger(logger)).Run(cmd.Context())

	st := storage.New(dataDir)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tSTATUS\tOMEGA_1\tPEAK\tDRIFT\tRUN")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\tfailed: %v\t-\t-\t-\t-\n", r.Name, r.Err)
			continue
		}
		runID := "-"
		if !noSave {
			if runID, err = st.Save(r.Result); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%s\tok\t%.4g\t%.4g\t%.2e\t%s\n", r.Name, r.Result.Modes.Omegas[0],
			r.Result.Metrics["peak_displacement"], r.Result.Metrics["energy_drift"], runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed := experiment.Failed(results) + len(loadErrs); failed > 0 {
		return fmt.Errorf("%d of %d models failed", failed, len(paths))
	}
	return nil
}

// watchFile calls fn once and then after every write to path, coalescing
// bursts of events within settle. It returns when ctx is done.
func watchFile(ctx context.Context, path string, settle time.Duration, log *slog.Logger, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	fn()
	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			log.Debug("model changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("fsnotify error", "error", err)
		case <-timer.C:
			fn()
		}
	}
}

func watchModel(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", path)

	return watchFile(cmd.Context(), path, 100*time.Millisecond, logger, func() {
		fmt.Println(viz.Separator(60))
		cfg, err := config.Load(path)
		if err == nil {
			applyOverrides(cmd, cfg)
			var res *experiment.Result
			if res, err = experiment.New(cfg, experiment.WithLogger(logger)).Modal(cmd.Context()); err == nil {
				fmt.Printf("%s  %s\n", viz.Title.Render(cfg.Name), viz.Subtle.Render(time.Now().Format("15:04:05")))
				fmt.Print(viz.ModalTable(res.Modes, cfg.Analysis.Modes))
				for _, w := range res.Warnings {
					fmt.Println(viz.WarningText.Render("! " + w))
				}
				return
			}
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Println(viz.WarningText.Render("! " + err.Error()))
	})
}
