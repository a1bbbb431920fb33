package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/framedyn/internal/viz"
)

// SVGStyle colors a vector drawing. Strokes cycle over the shapes drawn.
type SVGStyle struct {
	Background string
	Strokes    []string
	Width      float64
}

// DefaultSVGStyle draws the first shape muted and the next ones bright.
var DefaultSVGStyle = SVGStyle{
	Background: "#0a0a0a",
	Strokes:    []string{"#666688", "#00ffff", "#ff00ff"},
	Width:      1.5,
}

// CanvasToSVG converts a Braille canvas to an SVG with one dot per lit
// sub-pixel, coloured by the cell's layer from DefaultSVGStyle.Strokes.
func CanvasToSVG(w io.Writer, c *viz.Canvas, scale float64) error {
	pw, ph := c.Pixels()
	width, height := float64(pw)*scale, float64(ph)*scale
	strokes := DefaultSVGStyle.Strokes

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, DefaultSVGStyle.Background)
	for y := range ph {
		for x := range pw {
			if !c.IsSet(x, y) {
				continue
			}
			fill := strokes[min(int(c.LayerAt(x, y)), len(strokes)-1)]
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n",
				(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, 0.4*scale, fill)
		}
	}
	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// FrameToSVG draws frame shapes as SVG paths on a width by height picture,
// scaled together and with y pointing up.
func FrameToSVG(w io.Writer, style SVGStyle, width, height int, shapes ...[]viz.Polyline) error {
	minX, maxX, minY, maxY := viz.Bounds(shapes...)
	if math.IsInf(minX, 1) {
		return fmt.Errorf("export: nothing to draw")
	}

	// 10% padding on every side
	pad := 0.1 * math.Max(math.Max(maxX-minX, maxY-minY), 1e-12)
	minX, maxX, minY, maxY = minX-pad, maxX+pad, minY-pad, maxY+pad
	k := math.Min(float64(width)/(maxX-minX), float64(height)/(maxY-minY))
	offX := (float64(width) - k*(maxX-minX)) / 2
	offY := (float64(height) - k*(maxY-minY)) / 2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, style.Background)

	for i, shape := range shapes {
		stroke := "#ffffff"
		if len(style.Strokes) > 0 {
			stroke = style.Strokes[i%len(style.Strokes)]
		}
		fmt.Fprintf(&sb, `<g fill="none" stroke="%s" stroke-width="%g">`+"\n", stroke, style.Width)
		for _, line := range shape {
			if len(line) < 2 {
				continue
			}
			sb.WriteString(`<path d="`)
			for j, p := range line {
				x := offX + k*(p.X-minX)
				y := float64(height) - offY - k*(p.Y-minY)
				if j == 0 {
					fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
				} else {
					fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
				}
			}
			sb.WriteString("\"/>\n")
		}
		sb.WriteString("</g>\n")
	}
	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
