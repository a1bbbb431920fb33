package integrators

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// Stage is the state of a Run.
type Stage int

const (
	Initialized Stage = iota // initial conditions and a₀ are set
	Stepping                 // at least one increment taken
	Complete                 // every requested sample produced
)

func (s Stage) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Stepping:
		return "stepping"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Run is one integration in progress. It is not safe for concurrent use.
type Run struct {
	scheme *Newmark
	n      int
	time   []float64
	dt     float64

	k, m, c *mat.SymDense
	loads   mat.Matrix
	solve   linearSolver

	// Newmark coefficients
	a1, a2, a3, a4 float64

	x, v, a    *mat.VecDense
	xn, vn, an *mat.VecDense
	f, tmp, w  *mat.VecDense

	step  int
	stage Stage
	res   *Result
}

// Start validates the problem, computes the initial acceleration from
// M·a₀ = F₀ − C·v₀ − K·x₀ and factorizes the effective stiffness.
func (nm *Newmark) Start(p Problem) (*Run, error) {
	if p.K == nil || p.M == nil {
		return nil, dynamo.Invalid("stiffness and mass matrices are required")
	}
	k, err := dynamo.AsSymmetric("stiffness", p.K, dynamo.DefaultSymmetryTol)
	if err != nil {
		return nil, err
	}
	m, err := dynamo.AsSymmetric("mass", p.M, dynamo.DefaultSymmetryTol)
	if err != nil {
		return nil, err
	}
	n := k.SymmetricDim()
	if m.SymmetricDim() != n {
		return nil, dynamo.Shape("mass", []int{m.SymmetricDim(), m.SymmetricDim()}, []int{n, n})
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty system", dynamo.ErrDegenerateModel)
	}

	dt, err := checkTimeGrid(p.Time)
	if err != nil {
		return nil, err
	}
	steps := len(p.Time)

	var c *mat.SymDense
	if p.C == nil {
		nm.logger.Debug("system is undamped")
	} else {
		if c, err = dynamo.AsSymmetric("damping", p.C, dynamo.DefaultSymmetryTol); err != nil {
			return nil, err
		}
		if c.SymmetricDim() != n {
			return nil, dynamo.Shape("damping", []int{c.SymmetricDim(), c.SymmetricDim()}, []int{n, n})
		}
	}

	if p.Loads == nil {
		nm.logger.Debug("there is no loading")
	} else if r, cols := p.Loads.Dims(); r != n || cols != steps {
		return nil, dynamo.Shape("loads", []int{r, cols}, []int{n, steps})
	}

	x0, err := vectorOrZero("initial displacement", p.X0, n)
	if err != nil {
		return nil, err
	}
	v0, err := vectorOrZero("initial velocity", p.V0, n)
	if err != nil {
		return nil, err
	}

	r := &Run{
		scheme: nm,
		n:      n,
		time:   dynamo.Clone(p.Time),
		dt:     dt,
		k:      k,
		m:      m,
		c:      c,
		loads:  p.Loads,
		x:      x0,
		v:      v0,
		a:      mat.NewVecDense(n, nil),
		xn:     mat.NewVecDense(n, nil),
		vn:     mat.NewVecDense(n, nil),
		an:     mat.NewVecDense(n, nil),
		f:      mat.NewVecDense(n, nil),
		tmp:    mat.NewVecDense(n, nil),
		w:      mat.NewVecDense(n, nil),
		res: &Result{
			Scheme:       nm.Name(),
			Beta:         nm.Beta,
			Gamma:        nm.Gamma,
			Dt:           dt,
			Time:         dynamo.Clone(p.Time),
			Displacement: mat.NewDense(n, steps, nil),
			Velocity:     mat.NewDense(n, steps, nil),
			Acceleration: mat.NewDense(n, steps, nil),
		},
	}

	if err := r.initialAcceleration(); err != nil {
		return nil, err
	}

	if !nm.Unconditional() && p.HighestOmega > 0 && steps > 1 {
		if limit := StableTimeStep(nm.Beta, nm.Gamma, p.HighestOmega); dt > limit {
			r.res.Warnings.Addf("dt %g exceeds the stability limit %g of %s for omega %g", dt, limit, nm.Name(), p.HighestOmega)
			nm.logger.Warn("time step above stability limit", "dt", dt, "limit", limit, "scheme", nm.Name())
		}
	}

	r.record(0)
	if steps == 1 {
		r.stage = Complete
		return r, nil
	}

	r.a1 = 1 / (nm.Beta * dt * dt)
	r.a2 = 1 / (nm.Beta * dt)
	r.a3 = 1 / (2 * nm.Beta)
	r.a4 = 1 / nm.Beta

	keff := mat.NewSymDense(n, nil)
	keff.CopySym(k)
	var scaled mat.SymDense
	scaled.ScaleSym(r.a1, m)
	keff.AddSym(keff, &scaled)
	scale := mat.Norm(k, math.Inf(1)) + r.a1*mat.Norm(m, math.Inf(1))
	if c != nil {
		scaled.ScaleSym(nm.Gamma*r.a2, c)
		keff.AddSym(keff, &scaled)
		scale += nm.Gamma * r.a2 * mat.Norm(c, math.Inf(1))
	}
	if r.solve, err = factorize("effective stiffness", keff, scale); err != nil {
		return nil, err
	}

	nm.logger.Info("newmark run initialized", "scheme", nm.Name(), "dof", n, "steps", steps, "dt", dt)
	return r, nil
}

func (r *Run) initialAcceleration() error {
	r.loadAt(0, r.f)
	r.w.MulVec(r.k, r.x)
	r.f.SubVec(r.f, r.w)
	if r.c != nil {
		r.w.MulVec(r.c, r.v)
		r.f.SubVec(r.f, r.w)
	}

	solveM, err := factorize("mass matrix", r.m, 0)
	if err != nil {
		return &dynamo.StepError{Step: 0, Time: r.time[0], Wrapped: err}
	}
	if err := solveM(r.a, r.f); err != nil {
		return &dynamo.StepError{Step: 0, Time: r.time[0], Wrapped: fmt.Errorf("%w: mass matrix: %v", dynamo.ErrSingularSystem, err)}
	}
	return nil
}

// Step advances the run by one time increment.
func (r *Run) Step() error {
	if r.stage == Complete {
		return dynamo.ErrRunComplete
	}

	next := r.step + 1
	nm := r.scheme
	g := nm.Gamma

	// F_eff = F(n+1) + M·(a1·x + a2·v + (a3−1)·a) + C·(γa2·x + (γa4−1)·v + Δt(γa3−1)·a)
	r.loadAt(next, r.f)

	r.tmp.ScaleVec(r.a1, r.x)
	r.tmp.AddScaledVec(r.tmp, r.a2, r.v)
	r.tmp.AddScaledVec(r.tmp, r.a3-1, r.a)
	r.w.MulVec(r.m, r.tmp)
	r.f.AddVec(r.f, r.w)

	if r.c != nil {
		r.tmp.ScaleVec(g*r.a2, r.x)
		r.tmp.AddScaledVec(r.tmp, g*r.a4-1, r.v)
		r.tmp.AddScaledVec(r.tmp, r.dt*(g*r.a3-1), r.a)
		r.w.MulVec(r.c, r.tmp)
		r.f.AddVec(r.f, r.w)
	}

	if err := r.solve(r.xn, r.f); err != nil {
		return &dynamo.StepError{Step: next, Time: r.time[next], Wrapped: fmt.Errorf("%w: %v", dynamo.ErrSingularSystem, err)}
	}

	// v(n+1) = γa2·(x(n+1) − x) − (γa4−1)·v − Δt(γa3−1)·a
	r.tmp.SubVec(r.xn, r.x)
	r.vn.ScaleVec(g*r.a2, r.tmp)
	r.vn.AddScaledVec(r.vn, -(g*r.a4 - 1), r.v)
	r.vn.AddScaledVec(r.vn, -r.dt*(g*r.a3-1), r.a)

	// a(n+1) = a1·(x(n+1) − x − Δt·v) − (a3−1)·a
	r.tmp.AddScaledVec(r.tmp, -r.dt, r.v)
	r.an.ScaleVec(r.a1, r.tmp)
	r.an.AddScaledVec(r.an, -(r.a3 - 1), r.a)

	if nm.validate && !(dynamo.Finite(r.xn.RawVector().Data) && dynamo.Finite(r.vn.RawVector().Data) && dynamo.Finite(r.an.RawVector().Data)) {
		return &dynamo.StepError{Step: next, Time: r.time[next], Wrapped: dynamo.ErrUnstable}
	}

	r.x, r.xn = r.xn, r.x
	r.v, r.vn = r.vn, r.v
	r.a, r.an = r.an, r.a
	r.step = next
	r.record(next)

	r.stage = Stepping
	if next == len(r.time)-1 {
		r.stage = Complete
		nm.logger.Debug("newmark run complete", "steps", len(r.time))
	}
	return nil
}

func (r *Run) loadAt(step int, dst *mat.VecDense) {
	if r.loads == nil {
		dst.Zero()
		return
	}
	for i := 0; i < r.n; i++ {
		dst.SetVec(i, r.loads.At(i, step))
	}
}

// record stores the current state in column step and hands the working
// buffers to the observers without copying.
func (r *Run) record(step int) {
	x, v, a := r.x.RawVector().Data, r.v.RawVector().Data, r.a.RawVector().Data
	r.res.Displacement.SetCol(step, x)
	r.res.Velocity.SetCol(step, v)
	r.res.Acceleration.SetCol(step, a)
	for _, obs := range r.scheme.observers {
		obs.OnStep(step, r.time[step], x, v, a)
	}
}

// Stage returns the current state of the run.
func (r *Run) Stage() Stage { return r.stage }

// Done reports whether every sample has been produced.
func (r *Run) Done() bool { return r.stage == Complete }

// StepIndex returns the index of the latest produced sample.
func (r *Run) StepIndex() int { return r.step }

// Current returns copies of the latest state.
func (r *Run) Current() (t float64, x, v, a []float64) {
	return r.time[r.step], dynamo.Clone(r.x.RawVector().Data), dynamo.Clone(r.v.RawVector().Data), dynamo.Clone(r.a.RawVector().Data)
}

// Result returns the response series once the run is complete, nil before.
func (r *Run) Result() *Result {
	if r.stage != Complete {
		return nil
	}
	return r.res
}
