// Package metrics provides page build metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	asm := page.NewAssembler(store, fsys, page.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// Builds are batch jobs without an HTTP surface, so the Prometheus recorder is
// exported by writing a node-exporter textfile (WriteTextfile) after a run.
package metrics
