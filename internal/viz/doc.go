// Package viz renders frames and response histories for the terminal.
//
// [Canvas] is a Braille raster; [Shape] turns a mesh and a displacement
// vector into polylines that [Canvas.Draw] plots with a common scale, so the
// undeformed and deformed frame can share one picture. [PlotSeries] wraps
// asciigraph for time histories and spectra, and [RunSummary] and
// [ModalTable] format results with lipgloss styles that [ApplyTheme] recolors.
package viz
