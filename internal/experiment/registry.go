package experiment

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/framedyn/internal/config"
	"github.com/san-kum/framedyn/internal/dynamo"
	"github.com/san-kum/framedyn/internal/integrators"
	"github.com/san-kum/framedyn/internal/metrics"
	"github.com/san-kum/framedyn/internal/modal"
)

// SchemeFactory builds a Newmark scheme from the analysis settings.
type SchemeFactory func(a config.AnalysisConfig, opts ...integrators.Option) (*integrators.Newmark, error)

// MetricFactory builds a metric for the reduced system matrices.
type MetricFactory func(k, m mat.Symmetric) dynamo.Metric

type Registry struct {
	schemes map[string]SchemeFactory
	metrics map[string]MetricFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		schemes: make(map[string]SchemeFactory),
		metrics: make(map[string]MetricFactory),
	}

	r.schemes["average"] = func(_ config.AnalysisConfig, opts ...integrators.Option) (*integrators.Newmark, error) {
		return integrators.AverageAcceleration(opts...), nil
	}
	r.schemes["linear"] = func(_ config.AnalysisConfig, opts ...integrators.Option) (*integrators.Newmark, error) {
		return integrators.LinearAcceleration(opts...), nil
	}
	r.schemes["newmark"] = func(a config.AnalysisConfig, opts ...integrators.Option) (*integrators.Newmark, error) {
		return integrators.NewNewmark(a.Beta, a.Gamma, opts...)
	}

	r.metrics["energy"] = func(k, m mat.Symmetric) dynamo.Metric { return metrics.NewEnergy(k, m) }
	r.metrics["energy_drift"] = func(k, m mat.Symmetric) dynamo.Metric { return metrics.NewEnergyDrift(k, m) }
	r.metrics["peak_displacement"] = func(_, _ mat.Symmetric) dynamo.Metric { return metrics.NewPeakDisplacement() }

	return r
}

// RegisterScheme adds or replaces a scheme.
func (r *Registry) RegisterScheme(name string, fn SchemeFactory) {
	r.schemes[strings.ToLower(name)] = fn
}

// RegisterMetric adds or replaces a default metric.
func (r *Registry) RegisterMetric(name string, fn MetricFactory) {
	r.metrics[name] = fn
}

func (r *Registry) GetScheme(a config.AnalysisConfig, opts ...integrators.Option) (*integrators.Newmark, error) {
	fn, ok := r.schemes[strings.ToLower(a.Scheme)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown scheme %q (have %s)", dynamo.ErrValidation, a.Scheme, strings.Join(r.ListSchemes(), ", "))
	}
	return fn(a, opts...)
}

func (r *Registry) ListSchemes() []string {
	return slices.Sorted(maps.Keys(r.schemes))
}

// DefaultMetrics returns a fresh instance of every registered metric, in
// name order.
func (r *Registry) DefaultMetrics(k, m mat.Symmetric) []dynamo.Metric {
	out := make([]dynamo.Metric, 0, len(r.metrics))
	for _, name := range slices.Sorted(maps.Keys(r.metrics)) {
		out = append(out, r.metrics[name](k, m))
	}
	return out
}

// ParseNormalization maps a model file value to a mode normalization.
func ParseNormalization(s string) (modal.Normalization, error) {
	switch strings.ToLower(s) {
	case "", "mass":
		return modal.MassNormalized, nil
	case "max", "unit":
		return modal.MaxNormalized, nil
	default:
		return 0, dynamo.Invalid("unknown normalization %q (want mass or max)", s)
	}
}
