// Package metrics provides the observability hooks used by the page tracker.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks at call sites:
//
//	tracker := pipeline.New(sink, pipeline.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The Prometheus implementation registers its collectors on the registry it is
// given; HTTPHandler serves that registry for scraping.
package metrics
