package structure

import (
	"math"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// Mesh owns the nodes and elements of a frame. Nodes are addressed by their
// arena index, looked up by ID through an index table.
type Mesh struct {
	nodes    []Node
	elements []Element
	nodeIdx  map[int]int
	elemIDs  map[int]struct{}
}

func NewMesh() *Mesh {
	return &Mesh{
		nodes:    make([]Node, 0),
		elements: make([]Element, 0),
		nodeIdx:  make(map[int]int),
		elemIDs:  make(map[int]struct{}),
	}
}

// AddNode places n in the arena and returns the placed copy.
func (m *Mesh) AddNode(n Node) (Node, error) {
	if _, dup := m.nodeIdx[n.ID]; dup {
		return Node{}, dynamo.Invalid("duplicate node id %d", n.ID)
	}
	if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsInf(n.X, 0) || math.IsInf(n.Y, 0) {
		return Node{}, dynamo.Invalid("node %d has non-finite coordinates", n.ID)
	}

	n.index = len(m.nodes)
	m.nodes = append(m.nodes, n)
	m.nodeIdx[n.ID] = n.index
	return n, nil
}

// AddElement connects two nodes, given by ID, with a beam element.
func (m *Mesh) AddElement(id, startID, endID int, sec Section) (Element, error) {
	if _, dup := m.elemIDs[id]; dup {
		return Element{}, dynamo.Invalid("duplicate element id %d", id)
	}
	start, ok := m.Node(startID)
	if !ok {
		return Element{}, dynamo.Invalid("element %d: unknown start node %d", id, startID)
	}
	end, ok := m.Node(endID)
	if !ok {
		return Element{}, dynamo.Invalid("element %d: unknown end node %d", id, endID)
	}

	el, err := NewElement(id, start, end, sec)
	if err != nil {
		return Element{}, err
	}

	m.elements = append(m.elements, el)
	m.elemIDs[id] = struct{}{}
	return el, nil
}

// Node looks a node up by ID.
func (m *Mesh) Node(id int) (Node, bool) {
	idx, ok := m.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return m.nodes[idx], true
}

// NodeAt returns the node stored at arena index i.
func (m *Mesh) NodeAt(i int) Node { return m.nodes[i] }

// Nodes returns a copy of the node arena.
func (m *Mesh) Nodes() []Node {
	out := make([]Node, len(m.nodes))
	copy(out, m.nodes)
	return out
}

// Elements returns a copy of the element list, in insertion order.
func (m *Mesh) Elements() []Element {
	out := make([]Element, len(m.elements))
	copy(out, m.elements)
	return out
}

func (m *Mesh) NumNodes() int    { return len(m.nodes) }
func (m *Mesh) NumElements() int { return len(m.elements) }

// NumDOF returns 3·nodes.
func (m *Mesh) NumDOF() int { return DOFsPerNode * len(m.nodes) }

// TotalMass sums the element masses.
func (m *Mesh) TotalMass() float64 {
	total := 0.0
	for _, el := range m.elements {
		total += el.TotalMass()
	}
	return total
}
