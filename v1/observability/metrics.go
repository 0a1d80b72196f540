package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver records operation counts, latencies and sizes on a
// Prometheus registry. One instance serves all components of the driver; the
// component name becomes a label, not a metric name prefix.
type PrometheusObserver struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	sizes      *prometheus.HistogramVec
}

// NewPrometheusObserver registers the observer's collectors on the given
// registerer and returns the observer. Passing a namespace is optional; when
// set it prefixes every metric name.
func NewPrometheusObserver(reg prometheus.Registerer, namespace string) (*PrometheusObserver, error) {
	labels := []string{"component", "operation", "status"}

	o := &PrometheusObserver{
		operations: createCounterVec(namespace, "client_operations_total",
			"Total number of client operations, by component, operation and status.", labels),
		durations: createHistogramVec(namespace, "client_operation_duration_seconds",
			"Latency of client operations in seconds.", labels, prometheus.DefBuckets),
		sizes: createHistogramVec(namespace, "client_operation_size",
			"Operation magnitude: payload bytes or record counts.", labels,
			prometheus.ExponentialBuckets(1, 4, 10)),
	}

	for _, c := range []prometheus.Collector{o.operations, o.durations, o.sizes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ObserveOperation implements Observer.
func (o *PrometheusObserver) ObserveOperation(ctx OperationContext) {
	status := "ok"
	if ctx.Error != nil {
		status = "error"
	}

	o.operations.WithLabelValues(ctx.Component, ctx.Operation, status).Inc()
	o.durations.WithLabelValues(ctx.Component, ctx.Operation, status).Observe(ctx.Duration.Seconds())
	if ctx.Size > 0 {
		o.sizes.WithLabelValues(ctx.Component, ctx.Operation, status).Observe(float64(ctx.Size))
	}
}

// createCounterVec defines a new CounterVec with standard options.
func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// createHistogramVec defines a new HistogramVec with configurable buckets.
func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
