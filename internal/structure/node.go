package structure

import "fmt"

// DOF identifies one of the three degrees of freedom of a planar node.
type DOF int

const (
	UX DOF = iota // translation along global x
	UY            // translation along global y
	RZ            // rotation about the out-of-plane axis
)

// DOFsPerNode is the number of degrees of freedom carried by every node.
const DOFsPerNode = 3

func (d DOF) String() string {
	switch d {
	case UX:
		return "ux"
	case UY:
		return "uy"
	case RZ:
		return "rz"
	default:
		return fmt.Sprintf("dof(%d)", int(d))
	}
}

// Node is a point of the frame. Its DOF numbers follow from its position in
// the owning mesh: node i carries 3i, 3i+1 and 3i+2.
type Node struct {
	ID    int
	X, Y  float64
	Fixed [DOFsPerNode]bool

	index int
}

// NewNode returns a free node that is not yet part of a mesh.
func NewNode(id int, x, y float64) Node {
	return Node{ID: id, X: x, Y: y, index: -1}
}

// Fix returns a copy of n with the given DOF constrained.
func (n Node) Fix(ux, uy, rz bool) Node {
	n.Fixed = [DOFsPerNode]bool{ux, uy, rz}
	return n
}

// Clamped fixes all three DOF.
func (n Node) Clamped() Node { return n.Fix(true, true, true) }

// Pinned fixes both translations and leaves the rotation free.
func (n Node) Pinned() Node { return n.Fix(true, true, false) }

// Roller fixes the vertical translation only.
func (n Node) Roller() Node { return n.Fix(false, true, false) }

// Index returns the arena index of the node, or -1 when it was never added to
// a mesh.
func (n Node) Index() int { return n.index }

// Placed reports whether the node belongs to a mesh.
func (n Node) Placed() bool { return n.index >= 0 }

// DOFs returns the global DOF numbers of the node.
func (n Node) DOFs() [DOFsPerNode]int {
	var dofs [DOFsPerNode]int
	for i := range dofs {
		dofs[i] = n.index*DOFsPerNode + i
	}
	return dofs
}

// DOF returns the global number of one DOF of the node.
func (n Node) DOF(d DOF) int {
	return n.index*DOFsPerNode + int(d)
}

// IsFixed reports whether DOF d of the node is constrained.
func (n Node) IsFixed(d DOF) bool {
	return n.Fixed[d]
}

func (n Node) String() string {
	return fmt.Sprintf("node %d (%.4g, %.4g)", n.ID, n.X, n.Y)
}
