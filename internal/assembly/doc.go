// Package assembly turns a structure.Mesh into global system matrices.
//
// [Assemble] scatters every element's rotated stiffness and mass matrices into
// full-size K and M (three DOF per node). [Reduce] removes the rows and
// columns of constrained DOF, keeping the surviving DOF in their original
// order, as described by a [DOFMap].
package assembly
