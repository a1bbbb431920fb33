// Package modal extracts undamped eigenfrequencies and mode shapes from
// assembled stiffness and mass matrices.
package modal

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// Normalization selects how mode shapes are scaled.
type Normalization int

const (
	// MassNormalized scales every mode to φᵗMφ = 1.
	MassNormalized Normalization = iota
	// MaxNormalized scales every mode so its largest component is 1.
	MaxNormalized
)

func (n Normalization) String() string {
	if n == MaxNormalized {
		return "max"
	}
	return "mass"
}

// DefaultTolerance bounds the negative eigenvalues accepted as round-off,
// relative to the largest eigenvalue magnitude.
const DefaultTolerance = 1e-8

type options struct {
	norm   Normalization
	tol    float64
	logger *slog.Logger
}

// Option configures Solve.
type Option func(*options)

func WithNormalization(n Normalization) Option {
	return func(o *options) { o.norm = n }
}

func WithTolerance(tol float64) Option {
	return func(o *options) { o.tol = tol }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Solve solves K·φ = λ·M·φ. Eigenfrequencies ω = √λ are returned ascending,
// with the matching mode shapes as the columns of Result.Shapes.
//
// M is factorized as L·Lᵗ and the symmetric problem L⁻¹·K·L⁻ᵗ·y = λ·y is
// solved instead; φ = L⁻ᵗ·y is then mass normalized by construction.
func Solve(k, m mat.Matrix, opts ...Option) (*Result, error) {
	o := options{norm: MassNormalized, tol: DefaultTolerance, logger: dynamo.NopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	ks, err := dynamo.AsSymmetric("stiffness", k, dynamo.DefaultSymmetryTol)
	if err != nil {
		return nil, err
	}
	ms, err := dynamo.AsSymmetric("mass", m, dynamo.DefaultSymmetryTol)
	if err != nil {
		return nil, err
	}

	n := ks.SymmetricDim()
	if ms.SymmetricDim() != n {
		return nil, dynamo.Shape("mass", []int{ms.SymmetricDim(), ms.SymmetricDim()}, []int{n, n})
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty system", dynamo.ErrDegenerateModel)
	}

	var chol mat.Cholesky
	if !chol.Factorize(ms) {
		return nil, fmt.Errorf("%w: mass matrix is not positive definite", dynamo.ErrNonPhysical)
	}
	var l, linv mat.TriDense
	chol.LTo(&l)
	if err := linv.InverseTri(&l); err != nil {
		return nil, fmt.Errorf("%w: mass matrix is singular: %v", dynamo.ErrNonPhysical, err)
	}

	var tmp, a mat.Dense
	tmp.Mul(&linv, ks)
	a.Mul(&tmp, linv.T())

	as := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			as.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}

	var es mat.EigenSym
	if !es.Factorize(as, true) {
		return nil, fmt.Errorf("%w: eigen decomposition did not converge", dynamo.ErrNonPhysical)
	}
	lambda := es.Values(nil)
	var y mat.Dense
	es.VectorsTo(&y)

	var phi mat.Dense
	phi.Mul(linv.T(), &y)

	res := &Result{Normalization: o.norm}

	scale := 0.0
	for _, v := range lambda {
		scale = math.Max(scale, math.Abs(v))
	}
	for i, v := range lambda {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("%w: eigenvalue %d is NaN", dynamo.ErrNonPhysical, i)
		}
		if v >= 0 {
			continue
		}
		if v < -o.tol*scale {
			return nil, fmt.Errorf("%w: negative eigenvalue %g (stiffness not positive semi-definite)", dynamo.ErrNonPhysical, v)
		}
		res.Warnings.Addf("eigenvalue %d (%g) clamped to zero", i, v)
		o.logger.Warn("clamped negative eigenvalue", "index", i, "value", v)
		lambda[i] = 0
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return lambda[order[i]] < lambda[order[j]] })

	res.Omegas = make([]float64, n)
	res.Shapes = mat.NewDense(n, n, nil)
	col := make([]float64, n)
	for c, idx := range order {
		res.Omegas[c] = math.Sqrt(lambda[idx])
		mat.Col(col, idx, &phi)
		normalize(col, o.norm)
		res.Shapes.SetCol(c, col)
	}

	o.logger.Info("modal analysis complete", "dof", n,
		"omega_min", res.Omegas[0], "omega_max", res.Omegas[n-1])
	return res, nil
}

// normalize fixes the sign so the largest-magnitude component is positive
// and, for MaxNormalized, scales that component to 1.
func normalize(v []float64, norm Normalization) {
	peak := 0.0
	for _, x := range v {
		if math.Abs(x) > math.Abs(peak) {
			peak = x
		}
	}
	if peak == 0 {
		return
	}

	f := 1.0
	if peak < 0 {
		f = -1
	}
	if norm == MaxNormalized {
		f = 1 / peak
	}
	for i := range v {
		v[i] *= f
	}
}
