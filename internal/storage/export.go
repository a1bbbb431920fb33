package storage

import (
	"encoding/json"
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/experiment"
)

type ExportData struct {
	Model        string             `json:"model"`
	Scheme       string             `json:"scheme"`
	Dt           float64            `json:"dt"`
	Steps        int                `json:"steps"`
	DOFs         []string           `json:"dofs"`
	Omegas       []float64          `json:"omegas"`
	Times        []float64          `json:"times"`
	Displacement [][]float64        `json:"displacement"`
	Velocity     [][]float64        `json:"velocity"`
	Acceleration [][]float64        `json:"acceleration"`
	Metrics      map[string]float64 `json:"metrics"`
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}

// ExportJSON writes a result as one JSON document. Series are stored per
// DOF. Modal-only results carry no series.
func ExportJSON(w io.Writer, res *experiment.Result) error {
	data := ExportData{
		Model:   res.Name,
		DOFs:    DOFLabels(res),
		Omegas:  res.Modes.Omegas,
		Metrics: res.Metrics,
	}
	if r := res.Response; r != nil {
		data.Scheme = r.Scheme
		data.Dt = r.Dt
		data.Steps = r.Steps()
		data.Times = r.Time
		data.Displacement = rows(r.Displacement)
		data.Velocity = rows(r.Velocity)
		data.Acceleration = rows(r.Acceleration)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
