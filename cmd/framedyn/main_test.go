package main

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/san-kum/framedyn/internal/config"
	"github.com/san-kum/framedyn/internal/dynamo"
)

func TestApplyOverrides(t *testing.T) {
	g := NewWithT(t)
	cmd := &cobra.Command{Use: "run"}
	addAnalysisFlags(cmd)
	g.Expect(cmd.Flags().Parse([]string{"--dt", "0.002", "--scheme", "linear", "--mass", "lumped"})).To(Succeed())

	cfg := config.GetPreset("cantilever", "pluck")
	before := cfg.Analysis
	applyOverrides(cmd, cfg)

	g.Expect(cfg.Analysis.Dt).To(Equal(0.002))
	g.Expect(cfg.Analysis.Scheme).To(Equal("linear"))
	g.Expect(cfg.Mass).To(Equal("lumped"))
	g.Expect(cfg.Analysis.Duration).To(Equal(before.Duration))
	g.Expect(cfg.Analysis.Modes).To(Equal(before.Modes))

	// the preset table is not touched
	g.Expect(config.GetPreset("cantilever", "pluck").Analysis.Scheme).To(Equal(before.Scheme))
}

func TestLoadModelRejectsBadOverride(t *testing.T) {
	g := NewWithT(t)
	cmd := &cobra.Command{Use: "run"}
	addAnalysisFlags(cmd)
	g.Expect(cmd.Flags().Parse([]string{"--dt", "-1"})).To(Succeed())
	_, err := loadModel(cmd, "two_dof")
	g.Expect(err).To(MatchError(dynamo.ErrValidation))

	_, err = loadModel(&cobra.Command{}, "no_such_model")
	g.Expect(err).To(MatchError(dynamo.ErrValidation))
}

func TestPickDOFs(t *testing.T) {
	g := NewWithT(t)
	labels := []string{"n1.ux", "n1.uy", "n1.rz"}
	hist := map[int][]float64{0: {0, 1}, 1: {0, -3}, 2: {2, 0}}
	history := func(i int) []float64 { return hist[i] }

	got, err := pickDOFs(labels, nil, history)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal([]int{1}))

	got, err = pickDOFs(labels, []string{"n1.rz", "n1.ux"}, history)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal([]int{2, 0}))

	_, err = pickDOFs(labels, []string{"n0.ux"}, history)
	g.Expect(err).To(HaveOccurred())
}

func TestGlobModels(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()
	g.Expect(os.MkdirAll(filepath.Join(dir, "a", "b"), 0755)).To(Succeed())
	for _, p := range []string{"one.yaml", "a/two.yaml", "a/b/three.yaml", "a/notes.txt"} {
		g.Expect(os.WriteFile(filepath.Join(dir, p), []byte("name: x\n"), 0644)).To(Succeed())
	}

	paths, err := globModels(filepath.Join(dir, "**", "*.yaml"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(paths).To(HaveLen(3))

	_, err = globModels(filepath.Join(dir, "*.json"))
	g.Expect(err).To(MatchError(ContainSubstring("no model files")))
}

func TestWatchFile(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "model.yaml")
	g.Expect(os.WriteFile(path, []byte("name: a\n"), 0644)).To(Succeed())

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 20*time.Millisecond, dynamo.NopLogger(), func() { calls.Add(1) })
	}()

	g.Eventually(calls.Load).Should(BeEquivalentTo(1))
	g.Expect(os.WriteFile(path, []byte("name: b\n"), 0644)).To(Succeed())
	g.Eventually(calls.Load, 5*time.Second).Should(BeNumerically(">=", 2))

	// other files in the directory are ignored
	time.Sleep(100 * time.Millisecond)
	n := calls.Load()
	g.Expect(os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), nil, 0644)).To(Succeed())
	g.Consistently(calls.Load, 200*time.Millisecond).Should(Equal(n))

	cancel()
	g.Eventually(done).Should(Receive(BeNil()))
}
