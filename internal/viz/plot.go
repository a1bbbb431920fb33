package viz

import (
	"github.com/guptarohit/asciigraph"
)

// PlotOptions sizes a terminal chart.
type PlotOptions struct {
	Height  int
	Width   int
	Caption string
}

// DefaultPlotOptions matches an 80 column terminal.
func DefaultPlotOptions(caption string) PlotOptions {
	return PlotOptions{Height: 10, Width: 80, Caption: caption}
}

// Downsample keeps at most n evenly spaced entries of data, always including
// the last one.
func Downsample(data []float64, n int) []float64 {
	if n <= 0 || len(data) <= n {
		return data
	}
	if n == 1 {
		return data[len(data)-1:]
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = data[i*(len(data)-1)/(n-1)]
	}
	return out
}

// PlotSeries renders one or more series as an ASCII line chart.
func PlotSeries(opts PlotOptions, series ...[]float64) string {
	var data [][]float64
	for _, s := range series {
		if len(s) > 0 {
			data = append(data, Downsample(s, 4*opts.Width))
		}
	}
	if len(data) == 0 {
		return ""
	}
	o := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Precision(4),
	}
	if opts.Caption != "" {
		o = append(o, asciigraph.Caption(opts.Caption))
	}
	if len(data) == 1 {
		return asciigraph.Plot(data[0], o...)
	}
	return asciigraph.PlotMany(data, o...)
}
