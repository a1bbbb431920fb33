package assembly

import (
	"github.com/san-kum/framedyn/internal/structure"
)

// DOFMap is the bijection between node DOF and flat indices, together with
// the free/fixed partition of the flat space. It is immutable.
type DOFMap struct {
	total   int
	free    []int
	fixed   []int
	reduced []int
}

// NewDOFMap numbers the DOF of every node in arena order and partitions them
// by the nodes' boundary-condition flags.
func NewDOFMap(mesh *structure.Mesh) *DOFMap {
	total := mesh.NumDOF()
	d := &DOFMap{
		total:   total,
		free:    make([]int, 0, total),
		fixed:   make([]int, 0),
		reduced: make([]int, total),
	}

	for _, n := range mesh.Nodes() {
		for k, dof := range n.DOFs() {
			if n.Fixed[k] {
				d.fixed = append(d.fixed, dof)
				d.reduced[dof] = -1
				continue
			}
			d.reduced[dof] = len(d.free)
			d.free = append(d.free, dof)
		}
	}
	return d
}

func (d *DOFMap) Total() int    { return d.total }
func (d *DOFMap) NumFree() int  { return len(d.free) }
func (d *DOFMap) NumFixed() int { return len(d.fixed) }

// Free returns the full indices of the free DOF, ascending.
func (d *DOFMap) Free() []int { return append([]int(nil), d.free...) }

// Fixed returns the full indices of the constrained DOF, ascending.
func (d *DOFMap) Fixed() []int { return append([]int(nil), d.fixed...) }

// Reduced maps a full index to its reduced index; ok is false for fixed DOF.
func (d *DOFMap) Reduced(full int) (int, bool) {
	if full < 0 || full >= d.total {
		return -1, false
	}
	r := d.reduced[full]
	return r, r >= 0
}

// Full maps a reduced index back to the full index.
func (d *DOFMap) Full(reduced int) int { return d.free[reduced] }

// NodeDOF returns the reduced index of one DOF of a node.
func (d *DOFMap) NodeDOF(n structure.Node, dof structure.DOF) (int, bool) {
	return d.Reduced(n.DOF(dof))
}

// NodeDOFs returns the reduced indices of a node, -1 for fixed DOF.
func (d *DOFMap) NodeDOFs(n structure.Node) [structure.DOFsPerNode]int {
	var out [structure.DOFsPerNode]int
	for i, full := range n.DOFs() {
		out[i] = d.reduced[full]
	}
	return out
}
