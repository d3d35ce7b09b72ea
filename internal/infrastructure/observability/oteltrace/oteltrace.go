// Package oteltrace backs the observability tracer port with OpenTelemetry.
package oteltrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

// Setup installs W3C trace-context and baggage propagation so inbound
// traceparent headers continue the caller's trace. Span export is left to
// whichever TracerProvider the deployment registers with otel.
func Setup() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

type tracer struct {
	t       trace.Tracer
	service string
}

// New returns a tracer from the global provider that tags spans with service.
func New(service string) observability.Tracer {
	return NewWithProvider(otel.GetTracerProvider(), service)
}

func NewWithProvider(tp trace.TracerProvider, service string) observability.Tracer {
	if service == "" {
		service = "minishop-orders"
	}
	return &tracer{t: tp.Tracer(service), service: service}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(append(attrs, attribute.String("service.name", t.service))...),
	)
}
