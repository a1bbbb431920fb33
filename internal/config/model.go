package config

import (
	"strings"

	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/loads"
	"github.com/san-kum/framedyn/internal/structure"
)

func ParseDOF(s string) (structure.DOF, error) {
	switch strings.ToLower(s) {
	case "ux", "x":
		return structure.UX, nil
	case "uy", "y":
		return structure.UY, nil
	case "rz", "r", "theta":
		return structure.RZ, nil
	default:
		return 0, dynamo.Invalid("unknown DOF %q (want ux, uy or rz)", s)
	}
}

func ParseMassKind(s string) (structure.MassKind, error) {
	switch strings.ToLower(s) {
	case "", "consistent":
		return structure.Consistent, nil
	case "lumped":
		return structure.Lumped, nil
	default:
		return 0, dynamo.Invalid("unknown mass formulation %q", s)
	}
}

func (n NodeConfig) node() (structure.Node, error) {
	node := structure.NewNode(n.ID, n.X, n.Y)
	switch strings.ToLower(n.Support) {
	case "", "free":
	case "clamped", "fixed":
		node = node.Clamped()
	case "pinned", "hinge":
		node = node.Pinned()
	case "roller":
		node = node.Roller()
	default:
		return node, dynamo.Invalid("node %d has unknown support %q", n.ID, n.Support)
	}
	for _, f := range n.Fixed {
		d, err := ParseDOF(f)
		if err != nil {
			return node, err
		}
		node.Fixed[d] = true
	}
	return node, nil
}

// Mesh builds the frame described by the model.
func (c *Config) Mesh() (*structure.Mesh, error) {
	mass, err := ParseMassKind(c.Mass)
	if err != nil {
		return nil, err
	}

	mesh := structure.NewMesh()
	for _, nc := range c.Nodes {
		node, err := nc.node()
		if err != nil {
			return nil, err
		}
		if _, err := mesh.AddNode(node); err != nil {
			return nil, err
		}
	}

	for _, ec := range c.Elements {
		sc, ok := c.Sections[ec.Section]
		if !ok {
			return nil, dynamo.Invalid("element %d uses unknown section %q", ec.ID, ec.Section)
		}
		sec := structure.Section{E: sc.E, A: sc.A, I: sc.I, Density: sc.Density, Mass: mass}
		if _, err := mesh.AddElement(ec.ID, ec.Start, ec.End, sec); err != nil {
			return nil, err
		}
	}
	return mesh, nil
}

// Load returns the load history the entry describes.
func (l LoadConfig) Load() (loads.Load, error) {
	return loads.New(loads.Params{
		Kind:      l.Kind,
		Amplitude: l.Amplitude,
		Omega:     l.Omega,
		Phase:     l.Phase,
		Start:     l.Start,
		Duration:  l.Duration,
	})
}
