// Package metrics provides optional Prometheus instrumentation for layout
// resolution and clean runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	r := resolve.New(remapper, selector, resolve.WithRecorder(metrics.NewPrometheusRecorder(nil)))
//
// A CLI process is short-lived, so metrics are exported with WriteTextfile in
// the node_exporter textfile format rather than served over HTTP.
package metrics
