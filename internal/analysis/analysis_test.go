package analysis

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/integrators"
	"github.com/san-kum/framedyn/internal/modal"
)

func grid(dt float64, n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) * dt
	}
	return t
}

func TestPowerSpectrum(t *testing.T) {
	g := NewWithT(t)

	n := 64
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Cos(2 * math.Pi * 4 * float64(i) / float64(n))
	}
	ps := PowerSpectrum(data)
	g.Expect(ps).To(HaveLen(n/2 + 1))
	g.Expect(ps[4]).To(BeNumerically("~", float64(n)/2, 1e-9))
	g.Expect(ps[3]).To(BeNumerically("~", 0, 1e-9))
	g.Expect(PowerSpectrum(nil)).To(BeNil())
}

func TestDominantFrequency(t *testing.T) {
	g := NewWithT(t)

	dt := 0.01
	ts := grid(dt, 4096)
	series := make([]float64, len(ts))
	for i, ti := range ts {
		series[i] = 0.3 + 2*math.Sin(3*ti) + 0.2*math.Sin(11*ti)
	}

	w, err := DominantFrequency(series, dt)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(w).To(BeNumerically("~", 3, 0.05))
}

func TestDominantFrequencyErrors(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		dt     float64
	}{
		{"too short", []float64{1, 2, 3}, 0.1},
		{"zero spacing", []float64{1, 2, 3, 4}, 0},
		{"flat", []float64{2, 2, 2, 2, 2, 2}, 0.1},
		{"non-finite", []float64{1, math.Inf(1), 3, 4}, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			_, err := DominantFrequency(tt.series, tt.dt)
			g.Expect(err).To(MatchError(dynamo.ErrValidation))
		})
	}
}

func TestModalFrequencyMatchesResponse(t *testing.T) {
	g := NewWithT(t)

	k := mat.NewSymDense(2, []float64{27, -3, -3, 3})
	m := mat.NewSymDense(2, []float64{9, 0, 0, 1})
	modes, err := modal.Solve(k, m)
	g.Expect(err).NotTo(HaveOccurred())

	dt := 0.01
	res, err := integrators.AverageAcceleration().Integrate(integrators.Problem{
		K: k, M: m, Time: grid(dt, 4001), X0: modes.Mode(0),
	})
	g.Expect(err).NotTo(HaveOccurred())

	x, _, _ := res.History(1)
	w, err := DominantFrequency(x, dt)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(w).To(BeNumerically("~", modes.Omegas[0], 0.05))
}

func TestPhasePortrait(t *testing.T) {
	g := NewWithT(t)

	k := mat.NewSymDense(1, []float64{1})
	m := mat.NewSymDense(1, []float64{1})
	// two periods, stopping just short of the final peak
	res, err := integrators.AverageAcceleration().Integrate(integrators.Problem{
		K: k, M: m, Time: grid(4*math.Pi/400, 400), X0: []float64{1},
	})
	g.Expect(err).NotTo(HaveOccurred())

	p, err := GeneratePhasePortrait(res, 0)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p.X).To(HaveLen(400))
	g.Expect(p.ZeroCrossings()).To(Equal(4))

	minX, maxX, minV, maxV := p.Bounds()
	g.Expect(minX).To(BeNumerically("~", -1, 1e-3))
	g.Expect(maxX).To(BeNumerically("~", 1, 1e-3))
	g.Expect(minV).To(BeNumerically("~", -1, 1e-3))
	g.Expect(maxV).To(BeNumerically("~", 1, 1e-3))

	_, err = GeneratePhasePortrait(res, 1)
	g.Expect(err).To(MatchError(dynamo.ErrValidation))
	_, err = GeneratePhasePortrait(nil, 0)
	g.Expect(err).To(MatchError(dynamo.ErrValidation))
}

func TestFrequencySweep(t *testing.T) {
	g := NewWithT(t)

	// ζ = 0.05
	s := Sweep{
		K:         mat.NewSymDense(1, []float64{1}),
		M:         mat.NewSymDense(1, []float64{1}),
		C:         mat.NewSymDense(1, []float64{0.1}),
		Time:      grid(0.05, 4001),
		Force:     1,
		Transient: 0.5,
	}
	omegas := []float64{0.5, 1, 2}

	points, err := FrequencySweep(s, omegas, 2)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(points).To(HaveLen(3))

	for i, p := range points {
		r := omegas[i]
		want := 1 / math.Sqrt((1-r*r)*(1-r*r)+(0.1*r)*(0.1*r))
		g.Expect(p.Omega).To(Equal(r))
		g.Expect(p.Amplitude).To(BeNumerically("~", want, 0.05*want))
	}

	peak, ok := Resonance(points)
	g.Expect(ok).To(BeTrue())
	g.Expect(peak.Omega).To(Equal(1.0))

	_, ok = Resonance(nil)
	g.Expect(ok).To(BeFalse())
}

func TestFrequencySweepErrors(t *testing.T) {
	g := NewWithT(t)
	base := Sweep{
		K:    mat.NewSymDense(1, []float64{1}),
		M:    mat.NewSymDense(1, []float64{1}),
		Time: grid(0.1, 10),
	}

	bad := base
	bad.Transient = 1
	_, err := FrequencySweep(bad, []float64{1}, 1)
	g.Expect(err).To(MatchError(dynamo.ErrValidation))

	bad = base
	bad.LoadDOF = 2
	_, err = FrequencySweep(bad, []float64{1}, 1)
	g.Expect(err).To(MatchError(dynamo.ErrValidation))

	bad = base
	bad.M = mat.NewSymDense(2, nil)
	_, err = FrequencySweep(bad, []float64{1}, 1)
	g.Expect(err).To(MatchError(dynamo.ErrShapeMismatch))
}
