// Package metrics provides observability hooks for pagetree operations.
//
// Components receive a Recorder through dependency injection. NoopRecorder
// is the default so callers never nil-check; PrometheusRecorder is injected
// when metrics are enabled in the configuration:
//
//	reg := prometheus.NewRegistry()
//	svc := pages.New(st, cfg, pages.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
