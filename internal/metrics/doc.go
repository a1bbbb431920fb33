// Package metrics reduces integration runs to scalar figures.
//
// Every metric implements [dynamo.Metric] and is attached to a run with
// integrators.WithObserver, so it sees each sample as it is produced.
package metrics
