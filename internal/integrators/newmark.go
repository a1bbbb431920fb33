package integrators

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// Newmark is the implicit Newmark-β family for M·a + C·v + K·x = F(t).
// β weights the acceleration inside a step, γ the velocity.
type Newmark struct {
	Beta  float64
	Gamma float64

	logger    *slog.Logger
	observers []dynamo.Observer
	validate  bool
}

// Option configures a Newmark scheme.
type Option func(*Newmark)

func WithLogger(l *slog.Logger) Option {
	return func(n *Newmark) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithObserver registers observers called for every produced sample.
func WithObserver(obs ...dynamo.Observer) Option {
	return func(n *Newmark) { n.observers = append(n.observers, obs...) }
}

// WithStateValidation toggles the NaN/Inf check after each step. It is on by
// default.
func WithStateValidation(on bool) Option {
	return func(n *Newmark) { n.validate = on }
}

// NewNewmark returns a scheme with the given parameters. β must be positive
// and γ non-negative.
func NewNewmark(beta, gamma float64, opts ...Option) (*Newmark, error) {
	if !(beta > 0) || math.IsInf(beta, 0) {
		return nil, dynamo.Invalid("newmark beta must be positive, got %g", beta)
	}
	if !(gamma >= 0) || math.IsInf(gamma, 0) {
		return nil, dynamo.Invalid("newmark gamma must be non-negative, got %g", gamma)
	}

	n := &Newmark{
		Beta:     beta,
		Gamma:    gamma,
		logger:   dynamo.NopLogger(),
		validate: true,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// AverageAcceleration returns β=1/4, γ=1/2: unconditionally stable for linear
// systems, no numerical damping.
func AverageAcceleration(opts ...Option) *Newmark {
	n, _ := NewNewmark(0.25, 0.5, opts...)
	return n
}

// LinearAcceleration returns β=1/6, γ=1/2: more accurate, but stable only for
// Δt below StableTimeStep.
func LinearAcceleration(opts ...Option) *Newmark {
	n, _ := NewNewmark(1.0/6.0, 0.5, opts...)
	return n
}

func (n *Newmark) Name() string {
	switch {
	case n.Gamma == 0.5 && n.Beta == 0.25:
		return "average-acceleration"
	case n.Gamma == 0.5 && n.Beta == 1.0/6.0:
		return "linear-acceleration"
	default:
		return fmt.Sprintf("newmark(beta=%g,gamma=%g)", n.Beta, n.Gamma)
	}
}

// Unconditional reports whether the scheme is stable for any Δt on linear
// systems (2β ≥ γ ≥ 1/2).
func (n *Newmark) Unconditional() bool {
	return n.Gamma >= 0.5 && 2*n.Beta >= n.Gamma
}

// StableTimeStep returns the largest stable Δt of a conditionally stable
// scheme for a highest angular frequency omega, 1/(ω·√(γ/2 − β)). It is +Inf
// for unconditionally stable parameters.
func StableTimeStep(beta, gamma, omega float64) float64 {
	if 2*beta >= gamma || omega <= 0 {
		return math.Inf(1)
	}
	return 1 / (omega * math.Sqrt(gamma/2-beta))
}

// Integrate runs the problem from the initial conditions to the last time
// sample.
func (n *Newmark) Integrate(p Problem) (*Result, error) {
	run, err := n.Start(p)
	if err != nil {
		return nil, err
	}
	for !run.Done() {
		if err := run.Step(); err != nil {
			return nil, err
		}
	}
	return run.Result(), nil
}
