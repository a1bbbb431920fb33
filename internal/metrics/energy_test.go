package metrics

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/integrators"
)

var (
	_ dynamo.Metric = (*Energy)(nil)
	_ dynamo.Metric = (*EnergyDrift)(nil)
	_ dynamo.Metric = (*Stability)(nil)
	_ dynamo.Metric = (*PeakDisplacement)(nil)
	_ dynamo.Metric = (*RMS)(nil)
)

func twoDOF() (*mat.SymDense, *mat.SymDense) {
	k := mat.NewSymDense(2, []float64{27, -3, -3, 3})
	m := mat.NewSymDense(2, []float64{9, 0, 0, 1})
	return k, m
}

func TestEnergy(t *testing.T) {
	k, m := twoDOF()
	e := NewEnergy(k, m)

	// ½·(9·1²) + ½·(27·1 − 6·1·2 + 3·4) = 4.5 + 13.5
	e.OnStep(0, 0, []float64{1, 2}, []float64{1, 0}, nil)
	if got := e.Value(); math.Abs(got-18) > 1e-12 {
		t.Errorf("expected energy 18, got %f", got)
	}

	e.OnStep(1, 0.1, []float64{0, 0}, []float64{0, 0}, nil)
	if got := e.Value(); math.Abs(got-9) > 1e-12 {
		t.Errorf("expected mean energy 9, got %f", got)
	}
}

func TestEnergyReset(t *testing.T) {
	k, m := twoDOF()
	e := NewEnergy(k, m)

	e.OnStep(0, 0, []float64{1, 1}, []float64{1, 1}, nil)
	if e.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	e.Reset()
	if e.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDriftAverageAcceleration(t *testing.T) {
	g := NewWithT(t)
	k, m := twoDOF()

	drift := NewEnergyDrift(k, m)
	time := make([]float64, 2001)
	for i := range time {
		time[i] = float64(i) * 0.01
	}

	_, err := integrators.AverageAcceleration(integrators.WithObserver(drift)).Integrate(integrators.Problem{
		K: k, M: m, Time: time, X0: []float64{0.1, -0.2},
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(drift.Value()).To(BeNumerically("<", 1e-9))
	g.Expect(drift.Current()).To(BeNumerically(">", 0))

	drift.Reset()
	g.Expect(drift.Value()).To(BeZero())
}

func TestEnergyDriftDamped(t *testing.T) {
	g := NewWithT(t)
	k, m := twoDOF()

	drift := NewEnergyDrift(k, m)
	time := make([]float64, 1001)
	for i := range time {
		time[i] = float64(i) * 0.01
	}
	c := mat.NewSymDense(2, []float64{0.5, 0, 0, 0.5})

	_, err := integrators.AverageAcceleration(integrators.WithObserver(drift)).Integrate(integrators.Problem{
		K: k, M: m, C: c, Time: time, X0: []float64{0.1, -0.2},
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(drift.Value()).To(BeNumerically(">", 0.1))
}

func TestPeakDisplacement(t *testing.T) {
	g := NewWithT(t)
	p := NewPeakDisplacement()

	dof, _, _ := p.Where()
	g.Expect(dof).To(Equal(-1))

	p.OnStep(0, 0, []float64{0.1, 0.2}, nil, nil)
	p.OnStep(1, 0.5, []float64{-0.7, 0.3}, nil, nil)
	p.OnStep(2, 1.0, []float64{0.5, 0.6}, nil, nil)

	g.Expect(p.Value()).To(Equal(0.7))
	dof, step, at := p.Where()
	g.Expect(dof).To(Equal(0))
	g.Expect(step).To(Equal(1))
	g.Expect(at).To(Equal(0.5))

	p.Reset()
	g.Expect(p.Value()).To(BeZero())
}

func TestStability(t *testing.T) {
	s := NewStability(1)
	s.OnStep(0, 0, []float64{0.5, -0.5}, nil, nil)
	s.OnStep(1, 0, []float64{0.5, -1.5}, nil, nil)
	s.OnStep(2, 0, []float64{math.NaN(), 0}, nil, nil)
	s.OnStep(3, 0, []float64{1, 1}, nil, nil)

	if got := s.Value(); got != 0.5 {
		t.Errorf("expected stability 0.5, got %f", got)
	}
}

func TestRMS(t *testing.T) {
	r := NewRMS(1)
	if r.Name() != "rms_dof_1" {
		t.Errorf("unexpected name %q", r.Name())
	}
	r.OnStep(0, 0, []float64{9, 3}, nil, nil)
	r.OnStep(1, 0, []float64{9, -4}, nil, nil)
	r.OnStep(2, 0, []float64{9}, nil, nil)

	want := math.Sqrt(12.5)
	if got := r.Value(); math.Abs(got-want) > 1e-12 {
		t.Errorf("expected rms %f, got %f", want, got)
	}
}
