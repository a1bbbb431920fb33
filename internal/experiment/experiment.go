package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/assembly"
	"github.com/san-kum/framedyn/internal/config"
	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/integrators"
	"github.com/san-kum/framedyn/internal/loads"
	"github.com/san-kum/framedyn/internal/modal"
	"github.com/san-kum/framedyn/internal/structure"
)

// Experiment runs the full pipeline for one model: mesh, assembly,
// reduction, modal analysis, damping and Newmark integration.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *slog.Logger
	observers []dynamo.Observer
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

// WithObserver attaches observers to the integration run.
func WithObserver(obs ...dynamo.Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, obs...) }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   dynamo.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rayleigh holds the damping coefficients of C = α·M + β·K.
type Rayleigh struct {
	Alpha, Beta float64
}

// Result bundles everything one experiment produced.
type Result struct {
	Name     string
	Config   *config.Config
	Mesh     *structure.Mesh
	DOFs     *assembly.DOFMap
	K, M     *mat.SymDense // reduced
	Modes    *modal.Result
	Damping  Rayleigh
	Response *integrators.Result // nil for modal-only runs
	Metrics  map[string]float64
	Warnings dynamo.Warnings
	Elapsed  time.Duration
}

// Modal builds the model and solves its eigenproblem without integrating.
func (e *Experiment) Modal(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, err := e.model(ctx)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

func (e *Experiment) model(ctx context.Context) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mesh, err := e.cfg.Mesh()
	if err != nil {
		return nil, fmt.Errorf("building mesh: %w", err)
	}
	sys, err := assembly.Assemble(mesh, assembly.WithLogger(e.logger), assembly.WithWorkers(e.cfg.Analysis.Workers))
	if err != nil {
		return nil, fmt.Errorf("assembling: %w", err)
	}
	k, m, err := sys.Reduced()
	if err != nil {
		return nil, fmt.Errorf("reducing: %w", err)
	}

	norm, err := ParseNormalization(e.cfg.Analysis.Normalization)
	if err != nil {
		return nil, err
	}
	modes, err := modal.Solve(k, m, modal.WithNormalization(norm), modal.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("modal analysis: %w", err)
	}

	res := &Result{
		Name:    e.cfg.Name,
		Config:  e.cfg,
		Mesh:    mesh,
		DOFs:    sys.DOFs,
		K:       k,
		M:       m,
		Modes:   modes,
		Metrics: make(map[string]float64),
	}
	res.Warnings = append(res.Warnings, sys.Warnings...)
	res.Warnings = append(res.Warnings, modes.Warnings...)

	if res.Damping, err = e.damping(modes); err != nil {
		return nil, err
	}

	e.logger.Info("model ready", "model", e.cfg.Name, "nodes", mesh.NumNodes(),
		"elements", mesh.NumElements(), "free_dof", sys.DOFs.NumFree(), "omega_1", modes.Omegas[0])
	return res, nil
}

func (e *Experiment) damping(modes *modal.Result) (Rayleigh, error) {
	d := e.cfg.Damping
	if len(d.Ratios) == 0 {
		return Rayleigh{Alpha: d.Alpha, Beta: d.Beta}, nil
	}

	i, j := d.Modes[0], d.Modes[1]
	if i == 0 && j == 0 {
		j = 1
	}
	n := modes.NumModes()
	if i < 0 || j < 0 || i >= n || j >= n {
		return Rayleigh{}, dynamo.Invalid("damping modes %d and %d outside the %d available", i, j, n)
	}
	alpha, beta, err := assembly.RayleighFromRatios(modes.Omegas[i], modes.Omegas[j], d.Ratios[0], d.Ratios[1])
	if err != nil {
		return Rayleigh{}, err
	}
	return Rayleigh{Alpha: alpha, Beta: beta}, nil
}

// Run performs the full pipeline. Cancelling ctx stops the integration
// between steps.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, err := e.model(ctx)
	if err != nil {
		return nil, err
	}

	n := res.DOFs.NumFree()
	var c *mat.SymDense
	if res.Damping.Alpha != 0 || res.Damping.Beta != 0 {
		if c, err = assembly.Rayleigh(res.M, res.K, res.Damping.Alpha, res.Damping.Beta); err != nil {
			return nil, err
		}
	}

	t, err := loads.Grid(e.cfg.Analysis.Dt, e.cfg.Analysis.Duration)
	if err != nil {
		return nil, err
	}
	f, err := e.loadMatrix(res, t)
	if err != nil {
		return nil, err
	}
	x0, v0, err := e.initialConditions(res)
	if err != nil {
		return nil, err
	}

	ms := e.registry.DefaultMetrics(res.K, res.M)
	observers := make([]dynamo.Observer, 0, len(ms)+len(e.observers))
	for _, m := range ms {
		observers = append(observers, m)
	}
	observers = append(observers, e.observers...)

	scheme, err := e.registry.GetScheme(e.cfg.Analysis,
		integrators.WithLogger(e.logger), integrators.WithObserver(observers...))
	if err != nil {
		return nil, err
	}

	run, err := scheme.Start(integrators.Problem{
		K:            res.K,
		M:            res.M,
		C:            c,
		Time:         t,
		Loads:        f,
		X0:           x0,
		V0:           v0,
		HighestOmega: res.Modes.HighestOmega(),
	})
	if err != nil {
		return nil, fmt.Errorf("starting integration: %w", err)
	}

	e.logger.Info("integrating", "model", e.cfg.Name, "scheme", scheme.Name(), "dof", n, "steps", len(t))
	for !run.Done() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := run.Step(); err != nil {
			return nil, err
		}
	}

	res.Response = run.Result()
	res.Warnings = append(res.Warnings, res.Response.Warnings...)
	for _, m := range ms {
		res.Metrics[m.Name()] = m.Value()
	}
	res.Elapsed = time.Since(start)

	e.logger.Info("experiment complete", "model", e.cfg.Name, "elapsed", res.Elapsed, "warnings", len(res.Warnings))
	return res, nil
}

// reducedDOF maps a node DOF of the model file to its reduced index. ok is
// false for a constrained DOF.
func reducedDOF(res *Result, nodeID int, dofName string) (idx int, ok bool, err error) {
	node, found := res.Mesh.Node(nodeID)
	if !found {
		return 0, false, dynamo.Invalid("unknown node %d", nodeID)
	}
	d, err := config.ParseDOF(dofName)
	if err != nil {
		return 0, false, err
	}
	idx, ok = res.DOFs.NodeDOF(node, d)
	return idx, ok, nil
}

func (e *Experiment) loadMatrix(res *Result, t []float64) (*mat.Dense, error) {
	var applied []loads.Applied
	for _, lc := range e.cfg.Loads {
		idx, free, err := reducedDOF(res, lc.Node, lc.DOF)
		if err != nil {
			return nil, err
		}
		if !free {
			res.Warnings.Addf("load on constrained %s of node %d ignored", lc.DOF, lc.Node)
			e.logger.Warn("load on constrained DOF", "node", lc.Node, "dof", lc.DOF)
			continue
		}
		l, err := lc.Load()
		if err != nil {
			return nil, err
		}
		applied = append(applied, loads.Applied{DOF: idx, Load: l})
	}
	return loads.Matrix(res.DOFs.NumFree(), t, applied...)
}

func (e *Experiment) initialConditions(res *Result) (x0, v0 []float64, err error) {
	if len(e.cfg.Initial) == 0 {
		return nil, nil, nil
	}
	n := res.DOFs.NumFree()
	x0, v0 = make([]float64, n), make([]float64, n)
	for _, ic := range e.cfg.Initial {
		idx, free, err := reducedDOF(res, ic.Node, ic.DOF)
		if err != nil {
			return nil, nil, err
		}
		if !free {
			return nil, nil, dynamo.Invalid("initial condition on constrained %s of node %d", ic.DOF, ic.Node)
		}
		x0[idx] += ic.Displacement
		v0[idx] += ic.Velocity
	}
	return x0, v0, nil
}
