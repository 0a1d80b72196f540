// Package observability decouples the driver packages from concrete metrics
// and tracing backends.
//
// Client packages report every completed operation as an OperationContext to
// a configured Observer. Two implementations ship with this repository:
//
//   - PrometheusObserver: counters and histograms on a Prometheus registry
//   - TracingObserver: client spans via OpenTelemetry
//
// MultiObserver combines them:
//
//	promObs, _ := observability.NewPrometheusObserver(prometheus.DefaultRegisterer, "myapp")
//	tracer, _ := observability.NewTracer(observability.TracerConfig{ServiceName: "importer"})
//	obs := observability.MultiObserver{promObs, observability.NewTracingObserver(tracer)}
//
//	client, _ := arcadedb.NewClient(cfg, log)
//	client.WithObserver(obs)
//
// Observers are optional everywhere; a nil observer costs one nil check per
// operation.
package observability
