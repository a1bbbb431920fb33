package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/config"
	"github.com/san-kum/framedyn/internal/experiment"
	"github.com/san-kum/framedyn/internal/structure"
)

const (
	metadataFile     = "metadata.json"
	displacementFile = "displacement.csv"
	modesFile        = "modes.csv"
	modelFile        = "model.yaml"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Timestamp time.Time          `json:"timestamp"`
	Scheme    string             `json:"scheme,omitempty"`
	Beta      float64            `json:"beta,omitempty"`
	Gamma     float64            `json:"gamma,omitempty"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Nodes     int                `json:"nodes"`
	Elements  int                `json:"elements"`
	FreeDOF   int                `json:"free_dof"`
	DOFs      []string           `json:"dofs"`
	Omegas    []float64          `json:"omegas"`
	Alpha     float64            `json:"rayleigh_alpha"`
	BetaK     float64            `json:"rayleigh_beta"`
	Metrics   map[string]float64 `json:"metrics"`
	Warnings  []string           `json:"warnings,omitempty"`
}

// DOFLabels names the reduced DOF of a result as node.dof, e.g. "n3.uy".
func DOFLabels(res *experiment.Result) []string {
	labels := make([]string, res.DOFs.NumFree())
	for i := range labels {
		full := res.DOFs.Full(i)
		node := res.Mesh.NodeAt(full / structure.DOFsPerNode)
		labels[i] = fmt.Sprintf("n%d.%s", node.ID, structure.DOF(full%structure.DOFsPerNode))
	}
	return labels
}

// Save writes a run directory with the metadata, the model file, the mode
// table and, when the run integrated, the displacement history.
func (s *Store) Save(res *experiment.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	runID, runDir, err := s.newRunDir(res.Name)
	if err != nil {
		return "", err
	}

	labels := DOFLabels(res)
	meta := RunMetadata{
		ID:        runID,
		Model:     res.Name,
		Timestamp: time.Now(),
		Dt:        res.Config.Analysis.Dt,
		Duration:  res.Config.Analysis.Duration,
		Nodes:     res.Mesh.NumNodes(),
		Elements:  res.Mesh.NumElements(),
		FreeDOF:   res.DOFs.NumFree(),
		DOFs:      labels,
		Omegas:    res.Modes.Omegas,
		Alpha:     res.Damping.Alpha,
		BetaK:     res.Damping.Beta,
		Metrics:   res.Metrics,
		Warnings:  res.Warnings,
	}
	if r := res.Response; r != nil {
		meta.Scheme, meta.Beta, meta.Gamma = r.Scheme, r.Beta, r.Gamma
		meta.Dt = r.Dt
		meta.Steps = r.Steps()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, modelFile), res.Config); err != nil {
		return "", err
	}
	if err := writeModes(filepath.Join(runDir, modesFile), labels, res.Modes.Omegas, res.Modes.Shapes); err != nil {
		return "", err
	}
	if res.Response != nil {
		if err := writeHistory(filepath.Join(runDir, displacementFile), labels, res.Response.Time, res.Response.Displacement); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func (s *Store) newRunDir(name string) (string, string, error) {
	base := fmt.Sprintf("%s_%d", sanitize(name), time.Now().Unix())
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s_%d", base, i)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", err
		}
	}
}

func sanitize(name string) string {
	if name == "" {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, path, &err)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// closeFile closes c and reports its error through err unless an earlier
// error is already set. A failed close can lose buffered data.
func closeFile(c io.Closer, path string, err *error) {
	if closeErr := c.Close(); closeErr != nil && *err == nil {
		*err = fmt.Errorf("close %s: %w", path, closeErr)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

// writeHistory writes one row per time sample: time, then every DOF.
func writeHistory(path string, labels []string, times []float64, series *mat.Dense) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, path, &err)

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"time"}, labels...)); err != nil {
		return err
	}

	row := make([]string, len(labels)+1)
	for j, t := range times {
		row[0] = formatFloat(t)
		for i := range labels {
			row[i+1] = formatFloat(series.At(i, j))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeModes writes the angular frequencies as the first row, then one row
// per DOF with its mode shape components.
func writeModes(path string, labels []string, omegas []float64, shapes *mat.Dense) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, path, &err)

	w := csv.NewWriter(f)
	header := []string{"dof"}
	for k := range omegas {
		header = append(header, fmt.Sprintf("mode%d", k+1))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := []string{"omega"}
	for _, o := range omegas {
		row = append(row, formatFloat(o))
	}
	if err := w.Write(row); err != nil {
		return err
	}

	for i, label := range labels {
		row = append(row[:0], label)
		for k := range omegas {
			row = append(row, formatFloat(shapes.At(i, k)))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadModel reads back the model file of a run.
func (s *Store) LoadModel(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, modelFile))
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseRow(record []string) ([]float64, error) {
	out := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// LoadStates returns the displacement at every stored time sample, one slice
// of DOF values per sample, and the sample times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, displacementFile))
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		if len(records[i]) == 0 {
			continue
		}
		row, err := parseRow(records[i])
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", displacementFile, i+1, err)
		}
		times = append(times, row[0])
		states = append(states, row[1:])
	}

	return states, times, nil
}

// LoadModes returns the stored angular frequencies and mode shapes, one
// column per mode.
func (s *Store) LoadModes(runID string) ([]float64, *mat.Dense, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, modesFile))
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 3 {
		return nil, nil, fmt.Errorf("%s: no modes stored", modesFile)
	}

	omegas, err := parseRow(records[1][1:])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", modesFile, err)
	}
	shapes := mat.NewDense(len(records)-2, len(omegas), nil)
	for i, record := range records[2:] {
		row, err := parseRow(record[1:])
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", modesFile, i+3, err)
		}
		if len(row) != len(omegas) {
			return nil, nil, fmt.Errorf("%s line %d: %d values, want %d", modesFile, i+3, len(row), len(omegas))
		}
		shapes.SetRow(i, row)
	}
	return omegas, shapes, nil
}
