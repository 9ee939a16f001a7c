// Package metrics provides build observability for SiteBuilder.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default and does nothing. PrometheusRecorder collects stage durations,
// stage results, build outcomes and page/file counts into a Prometheus
// registry; since the builder is a one-shot CLI rather than a server, the
// registry is exported with WriteTextfile for the node_exporter textfile
// collector instead of being scraped over HTTP.
package metrics
