package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/framedyn/internal/dynamo"
)

const (
	DefaultDt            = 0.001
	DefaultDuration      = 2.0
	DefaultScheme        = "average"
	DefaultMass          = "consistent"
	DefaultNormalization = "mass"
	DefaultModes         = 6
	DefaultWorkers       = 1
)

// Config is a frame model plus the analysis to run on it.
type Config struct {
	Name     string                   `yaml:"name"`
	Mass     string                   `yaml:"mass"`
	Sections map[string]SectionConfig `yaml:"sections"`
	Nodes    []NodeConfig             `yaml:"nodes"`
	Elements []ElementConfig          `yaml:"elements"`
	Loads    []LoadConfig             `yaml:"loads,omitempty"`
	Initial  []InitialConfig          `yaml:"initial,omitempty"`
	Damping  DampingConfig            `yaml:"damping,omitempty"`
	Analysis AnalysisConfig           `yaml:"analysis"`
}

type SectionConfig struct {
	E       float64 `yaml:"e"`
	A       float64 `yaml:"a"`
	I       float64 `yaml:"i"`
	Density float64 `yaml:"density"`
}

// NodeConfig places a node. Support is one of free, clamped, pinned or
// roller; Fixed lists individual DOF (ux, uy, rz) and adds to Support.
type NodeConfig struct {
	ID      int      `yaml:"id"`
	X       float64  `yaml:"x"`
	Y       float64  `yaml:"y"`
	Support string   `yaml:"support,omitempty"`
	Fixed   []string `yaml:"fixed,omitempty"`
}

type ElementConfig struct {
	ID      int    `yaml:"id"`
	Start   int    `yaml:"start"`
	End     int    `yaml:"end"`
	Section string `yaml:"section"`
}

// LoadConfig applies a load history to one DOF of a node.
type LoadConfig struct {
	Node      int     `yaml:"node"`
	DOF       string  `yaml:"dof"`
	Kind      string  `yaml:"kind"`
	Amplitude float64 `yaml:"amplitude"`
	Omega     float64 `yaml:"omega,omitempty"`
	Phase     float64 `yaml:"phase,omitempty"`
	Start     float64 `yaml:"start,omitempty"`
	Duration  float64 `yaml:"duration,omitempty"`
}

// InitialConfig sets the initial displacement and velocity of one DOF.
type InitialConfig struct {
	Node         int     `yaml:"node"`
	DOF          string  `yaml:"dof"`
	Displacement float64 `yaml:"displacement,omitempty"`
	Velocity     float64 `yaml:"velocity,omitempty"`
}

// DampingConfig gives Rayleigh damping either directly (Alpha, Beta) or as
// damping ratios of two modes.
type DampingConfig struct {
	Alpha  float64   `yaml:"alpha,omitempty"`
	Beta   float64   `yaml:"beta,omitempty"`
	Ratios []float64 `yaml:"ratios,omitempty"`
	Modes  [2]int    `yaml:"modes,omitempty"`
}

type AnalysisConfig struct {
	Scheme        string  `yaml:"scheme"`
	Beta          float64 `yaml:"beta,omitempty"`
	Gamma         float64 `yaml:"gamma,omitempty"`
	Dt            float64 `yaml:"dt"`
	Duration      float64 `yaml:"duration"`
	Modes         int     `yaml:"modes"`
	Normalization string  `yaml:"normalization"`
	Workers       int     `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "model",
		Mass:     DefaultMass,
		Sections: map[string]SectionConfig{},
		Analysis: AnalysisConfig{
			Scheme:        DefaultScheme,
			Dt:            DefaultDt,
			Duration:      DefaultDuration,
			Modes:         DefaultModes,
			Normalization: DefaultNormalization,
			Workers:       DefaultWorkers,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a model file over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrValidation, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the analysis settings and the references between model
// entries. Geometry and section values are checked when the mesh is built.
func (c *Config) Validate() error {
	a := c.Analysis
	if !(a.Dt > 0) {
		return dynamo.Invalid("analysis dt must be positive, got %g", a.Dt)
	}
	if !(a.Duration >= 0) {
		return dynamo.Invalid("analysis duration must be non-negative, got %g", a.Duration)
	}
	if a.Modes < 0 {
		return dynamo.Invalid("analysis modes must be non-negative, got %d", a.Modes)
	}
	if _, err := ParseMassKind(c.Mass); err != nil {
		return err
	}
	if len(c.Damping.Ratios) != 0 && len(c.Damping.Ratios) != 2 {
		return dynamo.Invalid("damping ratios need exactly two values, got %d", len(c.Damping.Ratios))
	}

	nodes := make(map[int]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		nodes[n.ID] = true
	}
	for _, e := range c.Elements {
		if _, ok := c.Sections[e.Section]; !ok {
			return dynamo.Invalid("element %d uses unknown section %q", e.ID, e.Section)
		}
	}
	for _, l := range c.Loads {
		if !nodes[l.Node] {
			return dynamo.Invalid("load on unknown node %d", l.Node)
		}
		if _, err := ParseDOF(l.DOF); err != nil {
			return err
		}
	}
	for _, ic := range c.Initial {
		if !nodes[ic.Node] {
			return dynamo.Invalid("initial condition on unknown node %d", ic.Node)
		}
		if _, err := ParseDOF(ic.DOF); err != nil {
			return err
		}
	}
	return nil
}

// Samples returns the number of time samples of the analysis.
func (c *Config) Samples() int {
	return int(c.Analysis.Duration/c.Analysis.Dt+0.5) + 1
}
