package structure

import (
	"math"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// MassKind selects the element mass formulation.
type MassKind int

const (
	// Consistent uses the distributed (consistent) mass matrix.
	Consistent MassKind = iota
	// Lumped concentrates the mass at the nodes.
	Lumped
)

func (k MassKind) String() string {
	if k == Lumped {
		return "lumped"
	}
	return "consistent"
}

// Section holds the material and cross-section scalars of an element.
type Section struct {
	E       float64 // Young's modulus
	A       float64 // cross-sectional area
	I       float64 // second moment of area
	Density float64 // mass density
	Mass    MassKind
}

func (s Section) validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{{"E", s.E}, {"A", s.A}, {"I", s.I}} {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return dynamo.Invalid("section %s must be positive and finite, got %g", p.name, p.v)
		}
	}
	if s.Density < 0 || math.IsNaN(s.Density) || math.IsInf(s.Density, 0) {
		return dynamo.Invalid("section density must be non-negative and finite, got %g", s.Density)
	}
	return nil
}

// Element is a two-node planar Bernoulli-Euler beam. Length and angle are
// derived once, at construction.
type Element struct {
	ID int
	Section

	start, end Node
	length     float64
	angle      float64
}

// NewElement builds an element between two nodes of a mesh.
func NewElement(id int, start, end Node, sec Section) (Element, error) {
	if !start.Placed() || !end.Placed() {
		return Element{}, dynamo.Invalid("element %d: nodes must belong to a mesh", id)
	}
	if start.index == end.index {
		return Element{}, dynamo.Invalid("element %d: start and end are the same node %d", id, start.ID)
	}
	if !dynamo.Finite([]float64{start.X, start.Y, end.X, end.Y}) {
		return Element{}, dynamo.Invalid("element %d: non-finite node coordinates", id)
	}

	dx := end.X - start.X
	dy := end.Y - start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return Element{}, dynamo.Invalid("element %d: nodes %d and %d are coincident", id, start.ID, end.ID)
	}

	if err := sec.validate(); err != nil {
		return Element{}, err
	}

	return Element{
		ID:      id,
		Section: sec,
		start:   start,
		end:     end,
		length:  length,
		angle:   math.Atan2(dy, dx),
	}, nil
}

// Start returns the first node.
func (e Element) Start() Node { return e.start }

// End returns the second node.
func (e Element) End() Node { return e.end }

// Length returns the distance between the two nodes.
func (e Element) Length() float64 { return e.length }

// Angle returns the orientation atan2(Δy, Δx) in radians.
func (e Element) Angle() float64 { return e.angle }

// DOFs returns the global DOF numbers of the element, start node first.
func (e Element) DOFs() [2 * DOFsPerNode]int {
	var dofs [2 * DOFsPerNode]int
	s, t := e.start.DOFs(), e.end.DOFs()
	copy(dofs[:DOFsPerNode], s[:])
	copy(dofs[DOFsPerNode:], t[:])
	return dofs
}

// TotalMass returns the total mass ρAL of the element.
func (e Element) TotalMass() float64 {
	return e.Density * e.A * e.length
}
