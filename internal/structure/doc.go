// Package structure models planar frames built from Bernoulli-Euler beam
// elements.
//
// A [Mesh] is an arena of [Node] values plus a list of [Element] values.
// Elements refer to their nodes by arena index, never by pointer, so nodes
// are shared read-only between elements and carry no back references.
//
// Each element provides its 6×6 local stiffness and mass matrices (axial plus
// bending terms, no shear deformation) and the rotation matrix between the
// global and the element frame:
//
//	mesh := structure.NewMesh()
//	mesh.AddNode(structure.NewNode(1, 0, 0).Clamped())
//	mesh.AddNode(structure.NewNode(2, 4.5, 0))
//	el, err := mesh.AddElement(1, 1, 2, structure.Section{E: 210e9, A: 1e-4, I: 8.33e-8, Density: 7850})
//	k := el.GlobalStiffness()
package structure
