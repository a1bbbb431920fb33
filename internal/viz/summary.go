package viz

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/framedyn/internal/experiment"
	"github.com/san-kum/framedyn/internal/modal"
)

func row(label, value string) string {
	return MetricLabel.Render(fmt.Sprintf("%-18s", label)) + MetricValue.Render(value)
}

// ModalTable lists the first n modes with angular frequency, frequency and
// period. n <= 0 lists all of them.
func ModalTable(modes *modal.Result, n int) string {
	if n <= 0 || n > modes.NumModes() {
		n = modes.NumModes()
	}
	freqs, periods := modes.Frequencies(), modes.Periods()

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%4s  %14s  %14s  %14s", "mode", "omega [rad/s]", "f [Hz]", "T [s]")))
	b.WriteByte('\n')
	for i := range n {
		period := "inf"
		if !math.IsInf(periods[i], 1) {
			period = fmt.Sprintf("%.6g", periods[i])
		}
		fmt.Fprintf(&b, "%4d  %s  %14.6g  %14s\n", i+1,
			MetricValue.Render(fmt.Sprintf("%14.6g", modes.Omegas[i])), freqs[i], period)
	}
	if n < modes.NumModes() {
		b.WriteString(Subtle.Render(fmt.Sprintf("... %d more", modes.NumModes()-n)))
		b.WriteByte('\n')
	}
	return b.String()
}

// RunSummary renders the model size, solver settings, metrics and warnings of
// a run inside a panel.
func RunSummary(res *experiment.Result) string {
	lines := []string{
		Title.Render(res.Name),
		row("nodes / elements", fmt.Sprintf("%d / %d", res.Mesh.NumNodes(), res.Mesh.NumElements())),
		row("free dof", fmt.Sprintf("%d of %d", res.DOFs.NumFree(), res.DOFs.Total())),
	}
	if res.Modes != nil && res.Modes.NumModes() > 0 {
		lines = append(lines, row("omega_1", fmt.Sprintf("%.6g rad/s", res.Modes.Omegas[0])))
	}
	if res.Damping.Alpha != 0 || res.Damping.Beta != 0 {
		lines = append(lines, row("rayleigh", fmt.Sprintf("a=%.4g b=%.4g", res.Damping.Alpha, res.Damping.Beta)))
	}
	if r := res.Response; r != nil {
		lines = append(lines,
			row("scheme", fmt.Sprintf("%s (beta=%g gamma=%g)", r.Scheme, r.Beta, r.Gamma)),
			row("samples", fmt.Sprintf("%d at dt=%g", r.Steps(), r.Dt)),
		)
	}
	for _, name := range slices.Sorted(maps.Keys(res.Metrics)) {
		lines = append(lines, row(name, fmt.Sprintf("%.6g", res.Metrics[name])))
	}
	lines = append(lines, row("elapsed", res.Elapsed.Round(time.Microsecond).String()))
	for _, w := range res.Warnings {
		lines = append(lines, WarningText.Render("! "+w))
	}
	return Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
