package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerConfig controls the OpenTelemetry setup for the driver.
type TracerConfig struct {
	// ServiceName identifies this service in trace backends.
	ServiceName string `yaml:"service_name" envconfig:"ARCADE_TRACER_SERVICE_NAME"`

	// AppEnv tags spans with the deployment environment.
	AppEnv string `yaml:"app_env" envconfig:"ARCADE_TRACER_APP_ENV"`

	// EnableExport turns on the OTLP HTTP exporter. When false, spans are
	// created but never leave the process, which keeps tests hermetic.
	EnableExport bool `yaml:"enable_export" envconfig:"ARCADE_TRACER_ENABLE_EXPORT"`
}

// Tracer wraps an OpenTelemetry tracer provider configured for the driver.
type Tracer struct {
	provider *sdktrace.TracerProvider
}

// NewTracer sets up the OpenTelemetry tracer provider, registers it globally
// and returns the wrapper. With EnableExport set, spans are batched to the
// OTLP HTTP endpoint taken from the standard OTEL_* environment variables.
func NewTracer(cfg TracerConfig) (*Tracer, error) {
	var options []sdktrace.TracerProviderOption

	if cfg.EnableExport {
		client := otlptracehttp.NewClient()
		exporter, err := otlptrace.New(context.Background(), client)
		if err != nil {
			return nil, err
		}
		options = append(options, sdktrace.WithBatcher(exporter))
	}

	options = append(options, sdktrace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := sdktrace.NewTracerProvider(options...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &Tracer{provider: tp}, nil
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

// TracingObserver turns completed operations into spans. Because operations
// are reported after the fact, spans are created with an explicit start
// timestamp derived from the reported duration.
type TracingObserver struct {
	tracer trace.Tracer
}

// NewTracingObserver builds an observer emitting spans through the given
// Tracer. A nil Tracer falls back to the global provider.
func NewTracingObserver(t *Tracer) *TracingObserver {
	if t == nil {
		return &TracingObserver{tracer: otel.Tracer("observability")}
	}
	return &TracingObserver{tracer: t.provider.Tracer("observability")}
}

// ObserveOperation implements Observer.
func (o *TracingObserver) ObserveOperation(opCtx OperationContext) {
	end := time.Now()
	start := end.Add(-opCtx.Duration)

	_, span := o.tracer.Start(context.Background(), opCtx.Component+"."+opCtx.Operation,
		trace.WithTimestamp(start),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	span.SetAttributes(
		attribute.String("component", opCtx.Component),
		attribute.String("operation", opCtx.Operation),
		attribute.String("resource", opCtx.Resource),
		attribute.String("sub_resource", opCtx.SubResource),
		attribute.Int64("size", opCtx.Size),
	)
	for k, v := range opCtx.Metadata {
		span.SetAttributes(attribute.String("meta."+k, toString(v)))
	}

	if opCtx.Error != nil {
		span.RecordError(opCtx.Error)
		span.SetStatus(codes.Error, opCtx.Error.Error())
	}

	span.End(trace.WithTimestamp(end))
}
