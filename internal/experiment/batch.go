package experiment

import (
	"context"

	"github.com/san-kum/framedyn/internal/config"
	"github.com/san-kum/framedyn/internal/dynamo"
)

// BatchResult is the outcome of one model of a batch.
type BatchResult struct {
	Name   string
	Result *Result
	Err    error
}

// Batch runs several models concurrently. Observers passed in opts are
// shared by every run and must be safe for concurrent use.
type Batch struct {
	configs []*config.Config
	workers int
	opts    []Option
}

func NewBatch(configs []*config.Config, workers int, opts ...Option) *Batch {
	return &Batch{configs: configs, workers: workers, opts: opts}
}

// Run executes every model and reports each outcome in input order. A failing
// model does not stop the others.
func (b *Batch) Run(ctx context.Context) []BatchResult {
	out := make([]BatchResult, len(b.configs))

	dynamo.ParallelFor(len(b.configs), b.workers, 1, func(_, start, end int) {
		for i := start; i < end; i++ {
			cfg := b.configs[i]
			out[i].Name = cfg.Name
			out[i].Result, out[i].Err = New(cfg, b.opts...).Run(ctx)
		}
	})
	return out
}

// Failed counts the models that returned an error.
func Failed(results []BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
