// Package loads builds time-varying nodal load matrices for the integrators.
//
// A [Load] is a scalar function of time. [Applied] binds one to a reduced DOF
// and [Matrix] samples every applied load on a time grid, producing the
// DOF × samples matrix the Newmark integrator consumes:
//
//	time, _ := loads.Linspace(0, 2, 201)
//	f, err := loads.Matrix(dofs.NumFree(), time,
//		loads.Applied{DOF: tip, Load: loads.Harmonic{Amplitude: 100, Omega: 12}},
//	)
package loads
