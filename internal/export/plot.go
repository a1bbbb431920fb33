// Package export writes frames, mode shapes and response histories to
// image files.
package export

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/structure"
	"github.com/san-kum/framedyn/internal/viz"
)

// Default figure size.
var (
	FigureWidth  = 8 * vg.Inch
	FigureHeight = 4 * vg.Inch
)

// Formats lists the file extensions Save understands.
var Formats = []string{"png", "svg", "pdf", "eps", "jpg", "tif"}

// Series is one labelled curve.
type Series struct {
	Label string
	X, Y  []float64
}

func xys(x, y []float64) (plotter.XYs, error) {
	if len(x) != len(y) {
		return nil, dynamo.Shape("series", []int{len(y)}, []int{len(x)})
	}
	pts := make(plotter.XYs, len(x))
	for i := range x {
		if !dynamo.Finite([]float64{x[i], y[i]}) {
			return nil, dynamo.Invalid("series point %d is not finite", i)
		}
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return pts, nil
}

// Lines plots the series against a shared pair of axes.
func Lines(title, xLabel, yLabel string, series ...Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	for i, s := range series {
		pts, err := xys(s.X, s.Y)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Label, err)
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Label, err)
		}
		l.LineStyle.Color = plotutil.Color(i)
		l.LineStyle.Width = vg.Points(1)
		p.Add(l)
		if s.Label != "" {
			p.Legend.Add(s.Label, l)
		}
	}
	p.Legend.Top = true
	return p, nil
}

// PlotHistory plots displacement time histories, one curve per label.
func PlotHistory(title string, t []float64, labels []string, rows [][]float64) (*plot.Plot, error) {
	if len(labels) != len(rows) {
		return nil, dynamo.Shape("labels", []int{len(labels)}, []int{len(rows)})
	}
	series := make([]Series, len(rows))
	for i, r := range rows {
		series[i] = Series{Label: labels[i], X: t, Y: r}
	}
	return Lines(title, "t [s]", "displacement", series...)
}

// PlotSpectrum plots a power spectrum against angular frequency. mags holds the
// n/2+1 magnitudes of a series of n samples taken at dt.
func PlotSpectrum(title string, mags []float64, n int, dt float64) (*plot.Plot, error) {
	if n < 2 || dt <= 0 {
		return nil, dynamo.Invalid("spectrum needs at least 2 samples and dt > 0")
	}
	omega := make([]float64, len(mags))
	for k := range omega {
		omega[k] = 2 * math.Pi * float64(k) / (float64(n) * dt)
	}
	return Lines(title, "omega [rad/s]", "|X|", Series{X: omega, Y: mags})
}

// PlotModeShape plots the undeformed frame, its nodes and the shape under the
// full displacement vector u scaled to a quarter of the model extent.
func PlotModeShape(title string, mesh *structure.Mesh, u []float64) (*plot.Plot, error) {
	base, err := viz.Shape(mesh, nil, 0, 1)
	if err != nil {
		return nil, err
	}
	def, err := viz.Shape(mesh, u, viz.AutoScale(mesh, u, 0.25), 16)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	for i, shape := range [][]viz.Polyline{base, def} {
		for _, line := range shape {
			pts := make(plotter.XYs, len(line))
			for j, pt := range line {
				pts[j] = plotter.XY{X: pt.X, Y: pt.Y}
			}
			l, err := plotter.NewLine(pts)
			if err != nil {
				return nil, err
			}
			l.LineStyle.Color = plotutil.Color(i)
			l.LineStyle.Width = vg.Points(1 + float64(i))
			if i == 0 {
				l.LineStyle.Dashes = plotutil.Dashes(1)
			}
			p.Add(l)
		}
	}

	nodes := make(plotter.XYs, 0, mesh.NumNodes())
	for _, n := range mesh.Nodes() {
		nodes = append(nodes, plotter.XY{X: n.X, Y: n.Y})
	}
	sc, err := plotter.NewScatter(nodes)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(2)
	p.Add(sc)

	// equal spans on both axes keep the frame undistorted on a square figure
	minX, maxX, minY, maxY := viz.Bounds(base, def)
	span := math.Max(math.Max(maxX-minX, maxY-minY), 1e-12) * 1.1
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	p.X.Min, p.X.Max = cx-span/2, cx+span/2
	p.Y.Min, p.Y.Max = cy-span/2, cy+span/2
	return p, nil
}

// Format returns the image format implied by a file name.
func Format(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range Formats {
		if ext == f {
			return f, nil
		}
	}
	return "", dynamo.Invalid("unsupported image format %q (want one of %s)", ext, strings.Join(Formats, ", "))
}

// Save writes p to path in the format given by its extension.
func Save(p *plot.Plot, path string, w, h vg.Length) error {
	if _, err := Format(path); err != nil {
		return err
	}
	return p.Save(w, h, path)
}

// Write renders p to w in the given format.
func Write(p *plot.Plot, out io.Writer, format string, w, h vg.Length) error {
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(out)
	return err
}
