package assembly

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/structure"
)

type options struct {
	logger  *slog.Logger
	workers int
}

// Option configures Assemble.
type Option func(*options)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers assembles partial matrices on n goroutines and sums them.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// minChunk is the smallest element count handed to one assembly worker.
const minChunk = 32

// System holds the full (unconstrained) global matrices of a mesh.
type System struct {
	K, M     *mat.SymDense
	DOFs     *DOFMap
	Warnings dynamo.Warnings
}

// Assemble accumulates every element's global stiffness and mass into full
// matrices of order 3·nodes. The result does not depend on element order.
func Assemble(mesh *structure.Mesh, opts ...Option) (*System, error) {
	o := options{logger: dynamo.NopLogger(), workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	dofs := NewDOFMap(mesh)
	if dofs.NumFree() == 0 {
		return nil, fmt.Errorf("%w: all %d DOF are fixed", dynamo.ErrDegenerateModel, dofs.Total())
	}
	if err := checkConnected(mesh); err != nil {
		return nil, err
	}

	sys := &System{DOFs: dofs}
	elements := mesh.Elements()
	for _, el := range elements {
		if el.Density == 0 {
			sys.Warnings.Addf("element %d has no mass density", el.ID)
			o.logger.Warn("no mass density defined", "element", el.ID)
		}
	}

	n := dofs.Total()
	partK := make([]*mat.SymDense, max(o.workers, 1))
	partM := make([]*mat.SymDense, len(partK))

	dynamo.ParallelFor(len(elements), o.workers, minChunk, func(w, start, end int) {
		k := mat.NewSymDense(n, nil)
		m := mat.NewSymDense(n, nil)
		for _, el := range elements[start:end] {
			d := el.DOFs()
			scatter(k, el.GlobalStiffness(), d)
			scatter(m, el.GlobalMass(), d)
		}
		partK[w], partM[w] = k, m
	})

	sys.K = mat.NewSymDense(n, nil)
	sys.M = mat.NewSymDense(n, nil)
	for w := range partK {
		if partK[w] == nil {
			continue
		}
		sys.K.AddSym(sys.K, partK[w])
		sys.M.AddSym(sys.M, partM[w])
	}

	o.logger.Info("assembled system matrices",
		"nodes", mesh.NumNodes(), "elements", len(elements),
		"dof", n, "free", dofs.NumFree(), "fixed", dofs.NumFixed())
	return sys, nil
}

// scatter adds an element matrix into the rows and columns given by dofs.
func scatter(dst, el *mat.SymDense, dofs [6]int) {
	for i := 0; i < 6; i++ {
		for j := i; j < 6; j++ {
			I, J := dofs[i], dofs[j]
			dst.SetSym(I, J, dst.At(I, J)+el.At(i, j))
		}
	}
}

// checkConnected rejects free DOF that belong to nodes no element touches,
// since they have neither stiffness nor mass, and substructures that no
// support anchors: a connected group of elements without a single fixed DOF
// moves as a rigid body.
func checkConnected(mesh *structure.Mesh) error {
	parent := make([]int, mesh.NumNodes())
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	used := make([]bool, mesh.NumNodes())
	for _, el := range mesh.Elements() {
		a, b := el.Start().Index(), el.End().Index()
		used[a], used[b] = true, true
		if ra, rb := find(a), find(b); ra != rb {
			parent[ra] = rb
		}
	}

	anchored := make(map[int]bool)
	members := make(map[int][]int)
	var roots []int
	for i, ok := range used {
		n := mesh.NodeAt(i)
		if !ok {
			if n.Fixed != [structure.DOFsPerNode]bool{true, true, true} {
				return fmt.Errorf("%w: %s has free DOF but no element", dynamo.ErrDegenerateModel, n)
			}
			continue
		}
		r := find(i)
		if _, seen := members[r]; !seen {
			roots = append(roots, r)
		}
		members[r] = append(members[r], n.ID)
		if n.Fixed != [structure.DOFsPerNode]bool{} {
			anchored[r] = true
		}
	}
	for _, r := range roots {
		if !anchored[r] {
			return fmt.Errorf("%w: substructure of nodes %v is not anchored by any support",
				dynamo.ErrDegenerateModel, members[r])
		}
	}
	return nil
}

// Reduced returns K and M with the fixed DOF removed.
func (s *System) Reduced() (k, m *mat.SymDense, err error) {
	if k, err = Reduce(s.K, s.DOFs); err != nil {
		return nil, nil, err
	}
	if m, err = Reduce(s.M, s.DOFs); err != nil {
		return nil, nil, err
	}
	return k, m, nil
}
