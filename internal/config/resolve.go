package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/framedyn/internal/dynamo"
)

// Resolve turns a command-line model argument into a configuration. It is
// either a model file, "model/preset" or a bare preset model name, which
// picks that model's first preset.
func Resolve(arg string) (*Config, error) {
	if _, err := os.Stat(arg); err == nil {
		return Load(arg)
	}

	model, preset, found := strings.Cut(arg, "/")
	names := ListPresets(model)
	if names == nil {
		return nil, fmt.Errorf("%w: %q is neither a model file nor a preset", dynamo.ErrValidation, arg)
	}
	if !found {
		preset = names[0]
	}
	cfg := GetPreset(model, preset)
	if cfg == nil {
		return nil, fmt.Errorf("%w: unknown preset %q for %s (have %s)", dynamo.ErrValidation, preset, model, strings.Join(names, ", "))
	}
	cfg.Name = model + "/" + preset
	return cfg, nil
}
