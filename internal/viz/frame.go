package viz

import (
	"math"

	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/structure"
)

// Point is a position in model coordinates.
type Point struct{ X, Y float64 }

// Polyline is one element drawn as connected points.
type Polyline []Point

// DefaultSegments is the number of chords each element is drawn with.
const DefaultSegments = 8

// Shape returns the frame outline displaced by scale·u, where u is a full
// length displacement vector (3 entries per node). Transverse deflection is
// interpolated with the cubic Hermite functions of the beam element so that
// nodal rotations bend the drawn members. A nil u gives the undeformed frame.
func Shape(mesh *structure.Mesh, u []float64, scale float64, segments int) ([]Polyline, error) {
	if u != nil && len(u) != mesh.NumDOF() {
		return nil, dynamo.Shape("displacement", []int{len(u)}, []int{mesh.NumDOF()})
	}
	if segments < 1 {
		segments = 1
	}

	out := make([]Polyline, 0, mesh.NumElements())
	for _, el := range mesh.Elements() {
		s, e := el.Start(), el.End()
		l := el.Length()
		c, sn := math.Cos(el.Angle()), math.Sin(el.Angle())

		var d [2 * structure.DOFsPerNode]float64
		if u != nil {
			for i, g := range el.DOFs() {
				d[i] = scale * u[g]
			}
		}
		// local axial and transverse components at both ends
		u1, w1 := c*d[0]+sn*d[1], -sn*d[0]+c*d[1]
		u2, w2 := c*d[3]+sn*d[4], -sn*d[3]+c*d[4]
		t1, t2 := d[2], d[5]

		line := make(Polyline, segments+1)
		for k := 0; k <= segments; k++ {
			xi := float64(k) / float64(segments)
			xi2, xi3 := xi*xi, xi*xi*xi
			ax := (1-xi)*u1 + xi*u2
			tr := (1-3*xi2+2*xi3)*w1 + (xi-2*xi2+xi3)*l*t1 +
				(3*xi2-2*xi3)*w2 + (xi3-xi2)*l*t2
			line[k] = Point{
				X: s.X + xi*(e.X-s.X) + c*ax - sn*tr,
				Y: s.Y + xi*(e.Y-s.Y) + sn*ax + c*tr,
			}
		}
		out = append(out, line)
	}
	return out, nil
}

// AutoScale returns the factor that makes the largest translation of u equal
// to frac of the larger model extent. It returns 0 when u has no translation.
func AutoScale(mesh *structure.Mesh, u []float64, frac float64) float64 {
	var peak float64
	for i := 0; i+1 < len(u); i += structure.DOFsPerNode {
		peak = max(peak, math.Hypot(u[i], u[i+1]))
	}
	if peak == 0 || mesh.NumNodes() == 0 {
		return 0
	}
	minX, maxX, minY, maxY := math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, n := range mesh.Nodes() {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	extent := math.Max(maxX-minX, maxY-minY)
	if extent == 0 {
		extent = 1
	}
	return frac * extent / peak
}

// Bounds returns the bounding box of every point of every shape.
func Bounds(shapes ...[]Polyline) (minX, maxX, minY, maxY float64) {
	minX, maxX, minY, maxY = math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, shape := range shapes {
		for _, line := range shape {
			for _, p := range line {
				minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
				minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
			}
		}
	}
	return minX, maxX, minY, maxY
}

// Draw plots the shapes on c with a common aspect-preserving scale, y up.
// The first shape goes on the Undeformed layer, the second on Deformed and
// any later ones on Overlay.
func (c *Canvas) Draw(shapes ...[]Polyline) {
	minX, maxX, minY, maxY := Bounds(shapes...)
	if math.IsInf(minX, 1) {
		return
	}
	pw, ph := c.Pixels()
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 && spanY == 0 {
		spanX = 1
	}
	k := math.Min(float64(pw-1)/spanX, float64(ph-1)/spanY)
	offX := (float64(pw-1) - k*spanX) / 2
	offY := (float64(ph-1) - k*spanY) / 2

	px := func(p Point) (int, int) {
		x := offX + k*(p.X-minX)
		y := float64(ph-1) - offY - k*(p.Y-minY)
		return int(math.Round(x)), int(math.Round(y))
	}
	for s, shape := range shapes {
		l := Layer(min(s, int(Overlay)))
		for _, line := range shape {
			for i := 1; i < len(line); i++ {
				x0, y0 := px(line[i-1])
				x1, y1 := px(line[i])
				c.DrawLine(x0, y0, x1, y1, l)
			}
		}
	}
}

// RenderFrame draws the undeformed frame and its shape under u on a w by h
// cell canvas. The displacement is scaled to a quarter of the model extent.
func RenderFrame(mesh *structure.Mesh, u []float64, w, h int) (*Canvas, error) {
	base, err := Shape(mesh, nil, 0, 1)
	if err != nil {
		return nil, err
	}
	c := NewCanvas(w, h)
	if u == nil {
		c.Draw(base)
		return c, nil
	}
	def, err := Shape(mesh, u, AutoScale(mesh, u, 0.25), DefaultSegments)
	if err != nil {
		return nil, err
	}
	c.Draw(base, def)
	return c, nil
}
