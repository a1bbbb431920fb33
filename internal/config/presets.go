package config

import (
	"maps"
	"slices"
)

// Steel is a rolled steel section of roughly IPE 200 size.
var Steel = SectionConfig{E: 2.1e11, A: 2.85e-3, I: 1.943e-5, Density: 7850}

// Cantilever is a horizontal beam of the given length clamped at x=0, split
// into n elements. Node n is the tip.
func Cantilever(length float64, n int, sec SectionConfig) *Config {
	cfg := DefaultConfig()
	cfg.Name = "cantilever"
	cfg.Sections["main"] = sec
	for i := 0; i <= n; i++ {
		nc := NodeConfig{ID: i, X: length * float64(i) / float64(n)}
		if i == 0 {
			nc.Support = "clamped"
		}
		cfg.Nodes = append(cfg.Nodes, nc)
	}
	for i := 0; i < n; i++ {
		cfg.Elements = append(cfg.Elements, ElementConfig{ID: i, Start: i, End: i + 1, Section: "main"})
	}
	return cfg
}

// SimplySupported is a horizontal beam pinned at x=0 and on a roller at
// x=length, split into n elements.
func SimplySupported(length float64, n int, sec SectionConfig) *Config {
	cfg := Cantilever(length, n, sec)
	cfg.Name = "simply_supported"
	cfg.Nodes[0].Support = "pinned"
	cfg.Nodes[n].Support = "roller"
	return cfg
}

// Portal is a single-bay frame with clamped column bases. Each member is
// split into n elements. The top corners are nodes n and 2n.
func Portal(height, width float64, n int, sec SectionConfig) *Config {
	cfg := DefaultConfig()
	cfg.Name = "portal"
	cfg.Sections["main"] = sec

	type point struct{ x, y float64 }
	var pts []point
	for i := 0; i <= n; i++ {
		pts = append(pts, point{0, height * float64(i) / float64(n)})
	}
	for i := 1; i <= n; i++ {
		pts = append(pts, point{width * float64(i) / float64(n), height})
	}
	for i := n - 1; i >= 0; i-- {
		pts = append(pts, point{width, height * float64(i) / float64(n)})
	}

	for i, p := range pts {
		nc := NodeConfig{ID: i, X: p.x, Y: p.y}
		if i == 0 || i == len(pts)-1 {
			nc.Support = "clamped"
		}
		cfg.Nodes = append(cfg.Nodes, nc)
	}
	for i := 0; i < len(pts)-1; i++ {
		cfg.Elements = append(cfg.Elements, ElementConfig{ID: i, Start: i, End: i + 1, Section: "main"})
	}
	return cfg
}

// TwoDOF is a two-element clamped beam whose inner and tip nodes may only
// move transversely, leaving exactly two free DOF.
func TwoDOF(length float64, sec SectionConfig) *Config {
	cfg := Cantilever(length, 2, sec)
	cfg.Name = "two_dof"
	cfg.Nodes[1].Fixed = []string{"ux", "rz"}
	cfg.Nodes[2].Fixed = []string{"ux", "rz"}
	return cfg
}

func withAnalysis(cfg *Config, dt, duration float64) *Config {
	cfg.Analysis.Dt = dt
	cfg.Analysis.Duration = duration
	return cfg
}

func withLoad(cfg *Config, l LoadConfig) *Config {
	cfg.Loads = append(cfg.Loads, l)
	return cfg
}

func withInitial(cfg *Config, ic InitialConfig) *Config {
	cfg.Initial = append(cfg.Initial, ic)
	return cfg
}

func withDamping(cfg *Config, d DampingConfig) *Config {
	cfg.Damping = d
	return cfg
}

var Presets = map[string]map[string]*Config{
	"cantilever": {
		"pluck": withInitial(withAnalysis(Cantilever(2, 10, Steel), 0.0005, 0.5),
			InitialConfig{Node: 10, DOF: "uy", Displacement: 0.01}),
		"harmonic": withDamping(withLoad(withAnalysis(Cantilever(2, 10, Steel), 0.0005, 1),
			LoadConfig{Node: 10, DOF: "uy", Kind: "harmonic", Amplitude: 1000, Omega: 100}),
			DampingConfig{Ratios: []float64{0.02, 0.02}, Modes: [2]int{0, 1}}),
		"impulse": withLoad(withAnalysis(Cantilever(2, 10, Steel), 0.0005, 0.5),
			LoadConfig{Node: 10, DOF: "uy", Kind: "impulse", Amplitude: 5000, Duration: 0.002}),
	},
	"simply_supported": {
		"step": withDamping(withLoad(withAnalysis(SimplySupported(6, 12, Steel), 0.001, 2),
			LoadConfig{Node: 6, DOF: "uy", Kind: "step", Amplitude: -10000}),
			DampingConfig{Ratios: []float64{0.05, 0.05}, Modes: [2]int{0, 2}}),
		"harmonic": withLoad(withAnalysis(SimplySupported(6, 12, Steel), 0.001, 2),
			LoadConfig{Node: 6, DOF: "uy", Kind: "harmonic", Amplitude: 2000, Omega: 40}),
	},
	"portal": {
		"sway": withLoad(withAnalysis(Portal(3, 4, 4, Steel), 0.001, 2),
			LoadConfig{Node: 4, DOF: "ux", Kind: "ramp", Amplitude: 20000, Duration: 0.1}),
		"shake": withDamping(withLoad(withAnalysis(Portal(3, 4, 4, Steel), 0.001, 3),
			LoadConfig{Node: 4, DOF: "ux", Kind: "harmonic", Amplitude: 5000, Omega: 60}),
			DampingConfig{Alpha: 0.5, Beta: 1e-4}),
	},
	"two_dof": {
		"bounce": withInitial(withAnalysis(TwoDOF(2, Steel), 0.0005, 0.5),
			InitialConfig{Node: 2, DOF: "uy", Displacement: 0.005}),
	},
}

// GetPreset returns a copy of a preset, nil when it does not exist.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names of a model in sorted order.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(modelPresets))
}

// Models returns the preset model names in sorted order.
func Models() []string {
	return slices.Sorted(maps.Keys(Presets))
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Sections = maps.Clone(c.Sections)
	if out.Sections == nil {
		out.Sections = map[string]SectionConfig{}
	}
	out.Nodes = slices.Clone(c.Nodes)
	for i := range out.Nodes {
		out.Nodes[i].Fixed = slices.Clone(c.Nodes[i].Fixed)
	}
	out.Elements = slices.Clone(c.Elements)
	out.Loads = slices.Clone(c.Loads)
	out.Initial = slices.Clone(c.Initial)
	out.Damping.Ratios = slices.Clone(c.Damping.Ratios)
	return &out
}
