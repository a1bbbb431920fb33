package analysis

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/integrators"
)

// PhasePortrait holds the displacement-velocity trajectory of one DOF.
type PhasePortrait struct {
	DOF  int
	X, V []float64
}

// GeneratePhasePortrait extracts the phase trajectory of dof from a result.
func GeneratePhasePortrait(res *integrators.Result, dof int) (*PhasePortrait, error) {
	if res == nil {
		return nil, dynamo.Invalid("no result")
	}
	if dof < 0 || dof >= res.DOFs() {
		return nil, dynamo.Invalid("DOF %d outside [0,%d)", dof, res.DOFs())
	}
	x, v, _ := res.History(dof)
	return &PhasePortrait{DOF: dof, X: x, V: v}, nil
}

// Bounds returns the extent of the portrait.
func (p *PhasePortrait) Bounds() (minX, maxX, minV, maxV float64) {
	if len(p.X) == 0 {
		return 0, 0, 0, 0
	}
	return floats.Min(p.X), floats.Max(p.X), floats.Min(p.V), floats.Max(p.V)
}

// ZeroCrossings counts sign changes of the displacement, two per period of a
// free oscillation.
func (p *PhasePortrait) ZeroCrossings() int {
	n := 0
	for i := 1; i < len(p.X); i++ {
		if (p.X[i-1] < 0) != (p.X[i] < 0) {
			n++
		}
	}
	return n
}
