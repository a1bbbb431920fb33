package structure

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const ndof = 2 * DOFsPerNode

// LocalStiffness returns the 6×6 stiffness matrix in the element frame.
func (e Element) LocalStiffness() *mat.SymDense {
	L := e.length
	k1 := e.E * e.A / L
	k2 := 12 * e.E * e.I / (L * L * L)
	k3 := 6 * e.E * e.I / (L * L)
	k4 := 2 * e.E * e.I / L

	return mat.NewSymDense(ndof, []float64{
		k1, 0, 0, -k1, 0, 0,
		0, k2, k3, 0, -k2, k3,
		0, k3, 2 * k4, 0, -k3, k4,
		-k1, 0, 0, k1, 0, 0,
		0, -k2, -k3, 0, k2, -k3,
		0, k3, k4, 0, -k3, 2 * k4,
	})
}

// LocalMass returns the 6×6 mass matrix in the element frame, consistent or
// lumped according to the section.
func (e Element) LocalMass() *mat.SymDense {
	if e.Mass == Lumped {
		return e.lumpedMass()
	}

	L := e.length
	c := e.TotalMass() / 420
	LL := L * L

	m := mat.NewSymDense(ndof, []float64{
		140, 0, 0, 70, 0, 0,
		0, 156, 22 * L, 0, 54, -13 * L,
		0, 22 * L, 4 * LL, 0, 13 * L, -3 * LL,
		70, 0, 0, 140, 0, 0,
		0, 54, 13 * L, 0, 156, -22 * L,
		0, -13 * L, -3 * LL, 0, -22 * L, 4 * LL,
	})
	m.ScaleSym(c, m)
	return m
}

// lumpedMass puts half the mass on each translation and uses the HRZ rotary
// inertia mL²/78 so the matrix stays positive definite.
func (e Element) lumpedMass() *mat.SymDense {
	m := e.TotalMass()
	t := m / 2
	r := m * e.length * e.length / 78

	diag := []float64{t, t, r, t, t, r}
	lm := mat.NewSymDense(ndof, nil)
	for i, v := range diag {
		lm.SetSym(i, i, v)
	}
	return lm
}

// Rotation returns the matrix T mapping global element DOF to the element
// frame, u_local = T·u_global.
func (e Element) Rotation() *mat.Dense {
	c := math.Cos(e.angle)
	s := math.Sin(e.angle)

	return mat.NewDense(ndof, ndof, []float64{
		c, s, 0, 0, 0, 0,
		-s, c, 0, 0, 0, 0,
		0, 0, 1, 0, 0, 0,
		0, 0, 0, c, s, 0,
		0, 0, 0, -s, c, 0,
		0, 0, 0, 0, 0, 1,
	})
}

// GlobalStiffness returns Tᵗ·k·T.
func (e Element) GlobalStiffness() *mat.SymDense {
	return rotate(e.LocalStiffness(), e.Rotation())
}

// GlobalMass returns Tᵗ·m·T.
func (e Element) GlobalMass() *mat.SymDense {
	return rotate(e.LocalMass(), e.Rotation())
}

func rotate(local *mat.SymDense, t *mat.Dense) *mat.SymDense {
	var tmp, full mat.Dense
	tmp.Mul(t.T(), local)
	full.Mul(&tmp, t)

	// symmetrize the triple product
	out := mat.NewSymDense(ndof, nil)
	for i := 0; i < ndof; i++ {
		for j := i; j < ndof; j++ {
			out.SetSym(i, j, 0.5*(full.At(i, j)+full.At(j, i)))
		}
	}
	return out
}
