package experiment

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/framedyn/internal/config"
	"github.com/san-kum/framedyn/internal/dynamo"
)

type stepCounter struct{ n atomic.Int64 }

func (s *stepCounter) OnStep(int, float64, []float64, []float64, []float64) { s.n.Add(1) }

func TestRunPreset(t *testing.T) {
	g := NewWithT(t)

	cfg := config.GetPreset("two_dof", "bounce")
	counter := &stepCounter{}
	res, err := New(cfg, WithObserver(counter)).Run(context.Background())
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(res.DOFs.NumFree()).To(Equal(2))
	g.Expect(res.Modes.NumModes()).To(Equal(2))
	g.Expect(res.Response).NotTo(BeNil())
	g.Expect(res.Response.Steps()).To(Equal(cfg.Samples()))
	g.Expect(counter.n.Load()).To(Equal(int64(cfg.Samples())))

	g.Expect(res.Metrics).To(HaveKey("energy"))
	g.Expect(res.Metrics["energy_drift"]).To(BeNumerically("<", 1e-9))
	g.Expect(res.Metrics["peak_displacement"]).To(BeNumerically(">=", 0.005))
	g.Expect(res.Warnings).To(BeEmpty())

	x, _, _ := res.Response.At(0)
	g.Expect(x).To(Equal([]float64{0, 0.005}))
}

func TestModalCantilever(t *testing.T) {
	g := NewWithT(t)

	cfg := config.GetPreset("cantilever", "pluck")
	res, err := New(cfg).Modal(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Response).To(BeNil())

	s := config.Steel
	want := 1.87510407 * 1.87510407 * math.Sqrt(s.E*s.I/(s.Density*s.A*math.Pow(2, 4)))
	g.Expect(res.Modes.Omegas[0]).To(BeNumerically("~", want, 0.01*want))
}

func TestRayleighFromRatios(t *testing.T) {
	g := NewWithT(t)

	cfg := config.GetPreset("simply_supported", "step")
	cfg.Analysis.Duration = 0.01
	res, err := New(cfg).Run(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Damping.Alpha).To(BeNumerically(">", 0))
	g.Expect(res.Damping.Beta).To(BeNumerically(">", 0))

	zeta := res.Modes.DampingRatios(res.Damping.Alpha, res.Damping.Beta)
	g.Expect(zeta[0]).To(BeNumerically("~", 0.05, 1e-9))
	g.Expect(zeta[2]).To(BeNumerically("~", 0.05, 1e-9))
	g.Expect(zeta[1]).To(BeNumerically("<", 0.05))
}

func TestLinearAccelerationWarnsAndDiverges(t *testing.T) {
	g := NewWithT(t)

	cfg := config.GetPreset("cantilever", "pluck")
	cfg.Analysis.Scheme = "linear"
	cfg.Analysis.Duration = 0.002
	res, err := New(cfg).Run(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Warnings).To(ContainElement(ContainSubstring("stability limit")))

	cfg.Analysis.Duration = 0.5
	_, err = New(cfg).Run(context.Background())
	g.Expect(err).To(MatchError(dynamo.ErrUnstable))
}

func TestLoadOnConstrainedDOF(t *testing.T) {
	g := NewWithT(t)

	cfg := config.GetPreset("two_dof", "bounce")
	cfg.Analysis.Duration = 0.01
	cfg.Loads = append(cfg.Loads, config.LoadConfig{Node: 2, DOF: "ux", Kind: "step", Amplitude: 1})
	res, err := New(cfg).Run(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Warnings).To(ContainElement(ContainSubstring("constrained")))

	cfg.Initial = append(cfg.Initial, config.InitialConfig{Node: 0, DOF: "uy", Velocity: 1})
	_, err = New(cfg).Run(context.Background())
	g.Expect(err).To(MatchError(dynamo.ErrValidation))
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"unknown scheme", func(c *config.Config) { c.Analysis.Scheme = "rk4" }, dynamo.ErrValidation},
		{"bad newmark", func(c *config.Config) { c.Analysis.Scheme = "newmark" }, dynamo.ErrValidation},
		{"all fixed", func(c *config.Config) {
			for i := range c.Nodes {
				c.Nodes[i].Support = "clamped"
			}
		}, dynamo.ErrDegenerateModel},
		{"free floating", func(c *config.Config) {
			for i := range c.Nodes {
				c.Nodes[i].Support = ""
				c.Nodes[i].Fixed = nil
			}
		}, dynamo.ErrDegenerateModel},
		{"massless", func(c *config.Config) {
			s := c.Sections["main"]
			s.Density = 0
			c.Sections["main"] = s
		}, dynamo.ErrNonPhysical},
		{"damping mode out of range", func(c *config.Config) {
			c.Damping = config.DampingConfig{Ratios: []float64{0.02, 0.02}, Modes: [2]int{0, 5}}
		}, dynamo.ErrValidation},
		{"bad normalization", func(c *config.Config) { c.Analysis.Normalization = "unit-ish" }, dynamo.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			cfg := config.GetPreset("two_dof", "bounce")
			cfg.Analysis.Duration = 0.01
			tt.mutate(cfg)
			_, err := New(cfg).Run(context.Background())
			g.Expect(err).To(MatchError(tt.want))
		})
	}
}

func TestRunCancelled(t *testing.T) {
	g := NewWithT(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(config.GetPreset("portal", "sway")).Run(ctx)
	g.Expect(err).To(MatchError(context.Canceled))
}

func TestCustomNewmark(t *testing.T) {
	g := NewWithT(t)

	cfg := config.GetPreset("two_dof", "bounce")
	cfg.Analysis.Scheme = "newmark"
	cfg.Analysis.Beta = 0.3025
	cfg.Analysis.Gamma = 0.6
	cfg.Analysis.Duration = 0.05
	res, err := New(cfg).Run(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Response.Beta).To(Equal(0.3025))
	// γ > 1/2 dissipates energy
	g.Expect(res.Metrics["energy_drift"]).To(BeNumerically(">", 0))
}

func TestRegistry(t *testing.T) {
	g := NewWithT(t)

	r := NewRegistry()
	g.Expect(r.ListSchemes()).To(Equal([]string{"average", "linear", "newmark"}))

	s, err := r.GetScheme(config.AnalysisConfig{Scheme: "Average"})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Name()).To(Equal("average-acceleration"))

	cfg := config.GetPreset("two_dof", "bounce")
	res, err := New(cfg).Modal(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	names := []string{}
	for _, m := range r.DefaultMetrics(res.K, res.M) {
		names = append(names, m.Name())
	}
	g.Expect(names).To(Equal([]string{"energy", "energy_drift", "peak_displacement"}))
}

func TestBatch(t *testing.T) {
	g := NewWithT(t)

	good := config.GetPreset("two_dof", "bounce")
	good.Analysis.Duration = 0.01
	bad := config.GetPreset("two_dof", "bounce")
	bad.Name = "broken"
	bad.Analysis.Scheme = "euler"
	other := config.GetPreset("portal", "sway")
	other.Analysis.Duration = 0.01

	results := NewBatch([]*config.Config{good, bad, other}, 3).Run(context.Background())
	g.Expect(results).To(HaveLen(3))
	g.Expect(Failed(results)).To(Equal(1))
	g.Expect(results[0].Err).NotTo(HaveOccurred())
	g.Expect(results[1].Name).To(Equal("broken"))
	g.Expect(results[1].Err).To(MatchError(dynamo.ErrValidation))
	g.Expect(results[2].Result.Mesh.NumElements()).To(Equal(12))
}
