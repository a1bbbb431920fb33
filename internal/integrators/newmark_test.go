package integrators_test

import (
	"math"
	"slices"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/integrators"
)

func grid(dt float64, samples int) []float64 {
	t := make([]float64, samples)
	for i := range t {
		t[i] = float64(i) * dt
	}
	return t
}

func oscillator(m, k float64) (*mat.SymDense, *mat.SymDense) {
	return mat.NewSymDense(1, []float64{k}), mat.NewSymDense(1, []float64{m})
}

func constantLoad(rows int, samples int, value float64) *mat.Dense {
	f := mat.NewDense(rows, samples, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < samples; j++ {
			f.Set(i, j, value)
		}
	}
	return f
}

type countingObserver struct {
	steps []int
	times []float64
	kept  [][]float64 // copies of x
	held  [][]float64 // x as handed over
}

func (c *countingObserver) OnStep(step int, t float64, x, v, a []float64) {
	c.steps = append(c.steps, step)
	c.times = append(c.times, t)
	c.kept = append(c.kept, slices.Clone(x))
	c.held = append(c.held, x)
}

var _ = Describe("Newmark", func() {
	Describe("construction", func() {
		It("names the standard schemes", func() {
			Expect(integrators.AverageAcceleration().Name()).To(Equal("average-acceleration"))
			Expect(integrators.LinearAcceleration().Name()).To(Equal("linear-acceleration"))
			Expect(integrators.AverageAcceleration().Unconditional()).To(BeTrue())
			Expect(integrators.LinearAcceleration().Unconditional()).To(BeFalse())
		})

		It("rejects non-positive beta and negative gamma", func() {
			_, err := integrators.NewNewmark(0, 0.5)
			Expect(err).To(MatchError(dynamo.ErrValidation))
			_, err = integrators.NewNewmark(0.25, -0.1)
			Expect(err).To(MatchError(dynamo.ErrValidation))
			_, err = integrators.NewNewmark(math.NaN(), 0.5)
			Expect(err).To(MatchError(dynamo.ErrValidation))
		})

		It("computes the stability limit", func() {
			Expect(integrators.StableTimeStep(1.0/6.0, 0.5, 1)).To(BeNumerically("~", math.Sqrt(12), 1e-12))
			Expect(math.IsInf(integrators.StableTimeStep(0.25, 0.5, 100), 1)).To(BeTrue())
		})
	})

	Describe("single degree of freedom oscillator", func() {
		var (
			k, m    *mat.SymDense
			period  float64
			samples int
		)

		BeforeEach(func() {
			k, m = oscillator(1, 1)
			period = 2 * math.Pi
			samples = 201
		})

		It("stores the initial conditions and acceleration in column 0", func() {
			res, err := integrators.AverageAcceleration().Integrate(integrators.Problem{
				K: k, M: m,
				Time: grid(period/200, samples),
				X0:   []float64{1},
				V0:   []float64{0.5},
			})
			Expect(err).NotTo(HaveOccurred())
			x, v, a := res.At(0)
			Expect(x).To(Equal([]float64{1}))
			Expect(v).To(Equal([]float64{0.5}))
			Expect(a[0]).To(BeNumerically("~", -1, 1e-12))
		})

		It("follows cos(t) over one period and conserves energy", func() {
			time := grid(period/200, samples)
			res, err := integrators.AverageAcceleration().Integrate(integrators.Problem{
				K: k, M: m, Time: time, X0: []float64{1},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps()).To(Equal(samples))
			Expect(res.DOFs()).To(Equal(1))

			x, v, _ := res.History(0)
			for i, t := range time {
				Expect(x[i]).To(BeNumerically("~", math.Cos(t), 1e-3))
				energy := 0.5*v[i]*v[i] + 0.5*x[i]*x[i]
				Expect(energy).To(BeNumerically("~", 0.5, 1e-9))
			}
			Expect(x[samples-1]).To(BeNumerically("~", 1, 1e-3))
		})

		It("decays with viscous damping", func() {
			c := mat.NewSymDense(1, []float64{0.2})
			time := grid(0.01, 1001)
			res, err := integrators.AverageAcceleration().Integrate(integrators.Problem{
				K: k, M: m, C: c, Time: time, X0: []float64{1},
			})
			Expect(err).NotTo(HaveOccurred())

			x, _, _ := res.History(0)
			tail := 0.0
			for _, xi := range x[len(x)-700:] {
				tail = math.Max(tail, math.Abs(xi))
			}
			Expect(tail).To(BeNumerically("<", math.Exp(-0.1*3)+0.03))
			Expect(tail).To(BeNumerically(">", 0.2))
		})

		It("settles at the static deflection under a constant load", func() {
			c := mat.NewSymDense(1, []float64{1})
			time := grid(0.05, 801)
			res, err := integrators.AverageAcceleration().Integrate(integrators.Problem{
				K: k, M: m, C: c, Time: time,
				Loads: constantLoad(1, len(time), 2),
			})
			Expect(err).NotTo(HaveOccurred())
			x, v, _ := res.At(len(time) - 1)
			Expect(x[0]).To(BeNumerically("~", 2, 1e-3))
			Expect(v[0]).To(BeNumerically("~", 0, 1e-3))
		})

		It("warns and grows when linear acceleration exceeds its limit", func() {
			res, err := integrators.LinearAcceleration().Integrate(integrators.Problem{
				K: k, M: m, Time: grid(4, 15), X0: []float64{1},
				HighestOmega: 1,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Warnings).To(HaveLen(1))
			Expect(res.Warnings[0]).To(ContainSubstring("stability limit"))

			x, _, _ := res.History(0)
			Expect(math.Abs(x[len(x)-1])).To(BeNumerically(">", 10))
		})

		It("stays bounded for linear acceleration below its limit", func() {
			res, err := integrators.LinearAcceleration().Integrate(integrators.Problem{
				K: k, M: m, Time: grid(0.1, 1000), X0: []float64{1},
				HighestOmega: 1,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Warnings).To(BeEmpty())
			x, _, _ := res.History(0)
			for _, xi := range x {
				Expect(math.Abs(xi)).To(BeNumerically("<=", 1.01))
			}
		})

		It("reports divergence as an unstable step", func() {
			_, err := integrators.LinearAcceleration().Integrate(integrators.Problem{
				K: k, M: m, Time: grid(4, 2000), X0: []float64{1},
			})
			Expect(err).To(MatchError(dynamo.ErrUnstable))

			var stepErr *dynamo.StepError
			Expect(err).To(BeAssignableToTypeOf(stepErr))
			Expect(err.(*dynamo.StepError).Step).To(BeNumerically(">", 1000))
		})

		It("lets diverging states through when validation is off", func() {
			res, err := integrators.LinearAcceleration(integrators.WithStateValidation(false)).Integrate(integrators.Problem{
				K: k, M: m, Time: grid(4, 2000), X0: []float64{1},
			})
			Expect(err).NotTo(HaveOccurred())
			x, _, _ := res.At(res.Steps() - 1)
			Expect(dynamo.Finite(x)).To(BeFalse())
		})
	})

	Describe("step-wise runs", func() {
		It("moves through its stages and refuses extra steps", func() {
			k, m := oscillator(1, 1)
			run, err := integrators.AverageAcceleration().Start(integrators.Problem{
				K: k, M: m, Time: grid(0.1, 3), X0: []float64{1},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Stage()).To(Equal(integrators.Initialized))
			Expect(run.Result()).To(BeNil())

			Expect(run.Step()).To(Succeed())
			Expect(run.Stage()).To(Equal(integrators.Stepping))
			t, x, _, _ := run.Current()
			Expect(t).To(BeNumerically("~", 0.1, 1e-12))
			Expect(x[0]).To(BeNumerically("~", math.Cos(0.1), 1e-3))

			Expect(run.Step()).To(Succeed())
			Expect(run.Done()).To(BeTrue())
			Expect(run.Result()).NotTo(BeNil())
			Expect(run.Step()).To(MatchError(dynamo.ErrRunComplete))
		})

		It("completes immediately on a single sample", func() {
			k, m := oscillator(2, 8)
			run, err := integrators.AverageAcceleration().Start(integrators.Problem{
				K: k, M: m, Time: []float64{0}, X0: []float64{0.5},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Done()).To(BeTrue())
			res := run.Result()
			Expect(res.Steps()).To(Equal(1))
			x, _, a := res.At(0)
			Expect(x).To(Equal([]float64{0.5}))
			Expect(a[0]).To(BeNumerically("~", -2, 1e-12))
			Expect(run.Step()).To(MatchError(dynamo.ErrRunComplete))
		})

		It("calls observers once per sample", func() {
			k, m := oscillator(1, 4)
			obs := &countingObserver{}
			time := grid(0.05, 21)
			_, err := integrators.AverageAcceleration(integrators.WithObserver(obs)).Integrate(integrators.Problem{
				K: k, M: m, Time: time, X0: []float64{1},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.steps).To(HaveLen(len(time)))
			for i := range time {
				Expect(obs.steps[i]).To(Equal(i))
				Expect(obs.times[i]).To(Equal(time[i]))
			}
		})

		It("hands observers buffers that later steps overwrite", func() {
			k, m := oscillator(1, 4)
			obs := &countingObserver{}
			time := grid(0.05, 11)
			res, err := integrators.AverageAcceleration(integrators.WithObserver(obs)).Integrate(integrators.Problem{
				K: k, M: m, Time: time, X0: []float64{1},
			})
			Expect(err).NotTo(HaveOccurred())

			last := len(time) - 1
			final := []float64{res.Displacement.At(0, last-1), res.Displacement.At(0, last)}
			for i := range time {
				Expect(obs.kept[i][0]).To(Equal(res.Displacement.At(0, i)))
				Expect(obs.held[i][0]).To(BeElementOf(final))
			}
			Expect(obs.held[0][0]).NotTo(Equal(1.0))
		})
	})

	Describe("input validation", func() {
		var k, m *mat.SymDense

		BeforeEach(func() {
			k = mat.NewSymDense(2, []float64{6, -2, -2, 4})
			m = mat.NewSymDense(2, []float64{2, 0, 0, 1})
		})

		DescribeTable("shape mismatches",
			func(mutate func(*integrators.Problem)) {
				p := integrators.Problem{K: k, M: m, Time: grid(0.1, 5)}
				mutate(&p)
				_, err := integrators.AverageAcceleration().Integrate(p)
				Expect(err).To(MatchError(dynamo.ErrShapeMismatch))
			},
			Entry("loads time dimension", func(p *integrators.Problem) { p.Loads = constantLoad(2, 4, 1) }),
			Entry("loads rows", func(p *integrators.Problem) { p.Loads = constantLoad(3, 5, 1) }),
			Entry("initial displacement", func(p *integrators.Problem) { p.X0 = []float64{1} }),
			Entry("initial velocity", func(p *integrators.Problem) { p.V0 = []float64{1, 2, 3} }),
			Entry("damping", func(p *integrators.Problem) { p.C = mat.NewSymDense(3, nil) }),
			Entry("mass", func(p *integrators.Problem) { p.M = mat.NewSymDense(1, []float64{1}) }),
			Entry("empty time grid", func(p *integrators.Problem) { p.Time = nil }),
		)

		DescribeTable("invalid time grids",
			func(time []float64) {
				_, err := integrators.AverageAcceleration().Integrate(integrators.Problem{K: k, M: m, Time: time})
				Expect(err).To(MatchError(dynamo.ErrValidation))
			},
			Entry("non-uniform", []float64{0, 0.1, 0.25, 0.3}),
			Entry("decreasing", []float64{0, -0.1, -0.2}),
			Entry("repeated", []float64{0, 0, 0}),
			Entry("non-finite", []float64{0, math.NaN(), 0.2}),
		)

		It("rejects asymmetric stiffness", func() {
			asym := mat.NewDense(2, 2, []float64{6, -2, -1, 4})
			_, err := integrators.AverageAcceleration().Integrate(integrators.Problem{K: asym, M: m, Time: grid(0.1, 3)})
			Expect(err).To(MatchError(dynamo.ErrNonPhysical))
		})

		It("reports a singular system", func() {
			singular := mat.NewSymDense(2, []float64{1, -1, -1, 1})
			_, err := integrators.AverageAcceleration().Integrate(integrators.Problem{
				K: singular, M: mat.NewSymDense(2, nil), Time: grid(0.1, 3),
			})
			Expect(err).To(MatchError(dynamo.ErrSingularSystem))
		})

		It("reports an effective stiffness that the damping cancels exactly", func() {
			c := mat.NewSymDense(2, []float64{-17.0 / 4, 0.5, 0.5, -17.0 / 4})
			_, err := integrators.AverageAcceleration().Integrate(integrators.Problem{
				K:    mat.NewSymDense(2, []float64{2, -1, -1, 2}),
				M:    mat.NewSymDense(2, []float64{1, 0, 0, 1}),
				C:    c,
				Time: []float64{0, 0.5, 1},
			})
			Expect(err).To(MatchError(dynamo.ErrSingularSystem))
		})

		It("reports an effective stiffness that cancels to round-off", func() {
			// K + 400·M + 20·C with C = -401/20 leaves only rounding error
			_, err := integrators.AverageAcceleration().Integrate(integrators.Problem{
				K:    mat.NewSymDense(1, []float64{1}),
				M:    mat.NewSymDense(1, []float64{1}),
				C:    mat.NewSymDense(1, []float64{-401.0 / 20}),
				Time: []float64{0, 0.1, 0.2},
			})
			Expect(err).To(MatchError(dynamo.ErrSingularSystem))
			Expect(err.Error()).To(ContainSubstring("effective stiffness"))
		})

		It("accepts strong negative damping that leaves the effective stiffness regular", func() {
			_, err := integrators.AverageAcceleration().Integrate(integrators.Problem{
				K:    mat.NewSymDense(1, []float64{1}),
				M:    mat.NewSymDense(1, []float64{1}),
				C:    mat.NewSymDense(1, []float64{-10}),
				Time: []float64{0, 0.1, 0.2},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("requires stiffness and mass", func() {
			_, err := integrators.AverageAcceleration().Integrate(integrators.Problem{K: k, Time: grid(0.1, 3)})
			Expect(err).To(MatchError(dynamo.ErrValidation))
		})
	})
})
