// Package metrics provides build observability for sitebuilder.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks:
//
//	engine := build.NewEngine(opts) // NoopRecorder
//	engine = engine.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// PrometheusRecorder registers its collectors on a caller-owned registry.
// WriteTextfile exports that registry in the node_exporter textfile format,
// which suits one-shot CLI builds that have no long-lived scrape endpoint.
package metrics
