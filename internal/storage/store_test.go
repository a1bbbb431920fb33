package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/config"
	"github.com/san-kum/framedyn/internal/experiment"
)

func runTwoDOF(t *testing.T) *experiment.Result {
	t.Helper()
	cfg := config.GetPreset("two_dof", "bounce")
	cfg.Analysis.Duration = 0.005
	res, err := experiment.New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return res
}

func TestStoreSaveLoad(t *testing.T) {
	g := NewWithT(t)
	st := New(t.TempDir())
	res := runTwoDOF(t)

	runID, err := st.Save(res)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(runID).NotTo(BeEmpty())

	meta, err := st.Load(runID)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(meta.Model).To(Equal("two_dof"))
	g.Expect(meta.Scheme).To(Equal("average-acceleration"))
	g.Expect(meta.Steps).To(Equal(11))
	g.Expect(meta.FreeDOF).To(Equal(2))
	g.Expect(meta.DOFs).To(Equal([]string{"n1.uy", "n2.uy"}))
	g.Expect(meta.Omegas).To(Equal(res.Modes.Omegas))
	g.Expect(meta.Metrics).To(HaveKey("energy_drift"))

	states, times, err := st.LoadStates(runID)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(states).To(HaveLen(11))
	g.Expect(times).To(HaveLen(11))
	g.Expect(states[0]).To(Equal([]float64{0, 0.005}))
	g.Expect(states[10][1]).To(BeNumerically("~", res.Response.Displacement.At(1, 10), 1e-12))

	omegas, shapes, err := st.LoadModes(runID)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(omegas).To(HaveLen(2))
	g.Expect(omegas[1]).To(BeNumerically("~", res.Modes.Omegas[1], 1e-9*res.Modes.Omegas[1]))
	g.Expect(mat.EqualApprox(shapes, res.Modes.Shapes, 1e-9)).To(BeTrue())

	model, err := st.LoadModel(runID)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(model.Nodes).To(HaveLen(3))
}

func TestStoreModalOnly(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()
	st := New(dir)

	res, err := experiment.New(config.GetPreset("portal", "sway")).Modal(context.Background())
	g.Expect(err).NotTo(HaveOccurred())

	runID, err := st.Save(res)
	g.Expect(err).NotTo(HaveOccurred())

	_, err = os.Stat(filepath.Join(dir, runID, displacementFile))
	g.Expect(os.IsNotExist(err)).To(BeTrue())
	_, err = os.Stat(filepath.Join(dir, runID, modesFile))
	g.Expect(err).NotTo(HaveOccurred())

	meta, err := st.Load(runID)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(meta.Steps).To(BeZero())
	g.Expect(meta.Scheme).To(BeEmpty())
}

func TestStoreList(t *testing.T) {
	g := NewWithT(t)
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(runs).To(BeEmpty())

	res := runTwoDOF(t)
	first, err := st.Save(res)
	g.Expect(err).NotTo(HaveOccurred())
	second, err := st.Save(res)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(second).NotTo(Equal(first))

	runs, err = st.List()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(runs).To(HaveLen(2))
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runID, err := st.Save(runTwoDOF(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, displacementFile, modesFile, modelFile} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"":                "run",
		"portal/sway":     "portal-sway",
		"my frame (v2)":   "my-frame--v2-",
		"cantilever_long": "cantilever_long",
	}
	for in, want := range tests {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExportJSON(t *testing.T) {
	g := NewWithT(t)
	res := runTwoDOF(t)

	var buf bytes.Buffer
	g.Expect(ExportJSON(&buf, res)).To(Succeed())

	var data ExportData
	g.Expect(json.Unmarshal(buf.Bytes(), &data)).To(Succeed())
	g.Expect(data.Steps).To(Equal(11))
	g.Expect(data.Displacement).To(HaveLen(2))
	g.Expect(data.Displacement[1]).To(HaveLen(11))
	g.Expect(data.DOFs).To(Equal([]string{"n1.uy", "n2.uy"}))
}

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseFileReportsCloseError(t *testing.T) {
	g := NewWithT(t)
	diskFull := errors.New("no space left on device")

	var err error
	closeFile(failingCloser{diskFull}, "history.csv", &err)
	g.Expect(err).To(MatchError(diskFull))
	g.Expect(err.Error()).To(ContainSubstring("history.csv"))

	earlier := errors.New("encode failed")
	err = earlier
	closeFile(failingCloser{diskFull}, "history.csv", &err)
	g.Expect(err).To(BeIdenticalTo(earlier))

	err = nil
	closeFile(failingCloser{}, "history.csv", &err)
	g.Expect(err).NotTo(HaveOccurred())
}

func TestWriteHistoryClosesFile(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "x.csv")
	series := mat.NewDense(1, 2, []float64{0, 1})

	g.Expect(writeHistory(path, []string{"n0.uy"}, []float64{0, 0.1}, series)).To(Succeed())
	data, err := os.ReadFile(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(data)).To(Equal("time,n0.uy\n0,0\n0.1,1\n"))
}
