// Package observability declares the vendor-neutral signal ports of the order
// service and the catalogue of instruments it emits.
package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Observability interface {
	Tracer() Tracer
	Logger() Logger
	Metrics() Metrics
}

type Tracer interface {
	Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

type Logger interface {
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

type Field struct {
	Key   string
	Value any
}

func F(k string, v any) Field { return Field{Key: k, Value: v} }

// TraceFields returns trace_id and span_id for the span carried by ctx, or
// nothing when ctx holds no valid span.
func TraceFields(ctx context.Context) []Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []Field{
		F("trace_id", sc.TraceID().String()),
		F("span_id", sc.SpanID().String()),
	}
}

// Metrics resolves instruments by key. Unknown keys yield no-op instruments.
type Metrics interface {
	Counter(key MetricKey) Counter
	Histogram(key MetricKey) Histogram
}

type Counter interface {
	Add(delta float64, labels ...Label)
}

type Histogram interface {
	Observe(value float64, labels ...Label)
}

type Label struct{ Key, Value string }

func L(k, v string) Label { return Label{Key: k, Value: v} }

type MetricKey string

const (
	MUsecaseRequests         MetricKey = "usecase_requests_total"
	MUsecaseDuration         MetricKey = "usecase_duration_seconds"
	MHTTPRequests            MetricKey = "http_requests_total"
	MHTTPRequestDuration     MetricKey = "http_request_duration_seconds"
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"
	MOrderEvents             MetricKey = "order_events_total"
	MOutboxRelayed           MetricKey = "outbox_relayed_total"
)

type MetricKind int

const (
	KindCounter MetricKind = iota
	KindHistogram
)

// Metric describes one instrument. Labels fixes the label order; values
// missing at record time are reported as empty strings.
type Metric struct {
	Key     MetricKey
	Kind    MetricKind
	Help    string
	Labels  []string
	Buckets []float64
}

// Catalog is the complete set of instruments a provider registers.
var Catalog = []Metric{
	{Key: MUsecaseRequests, Kind: KindCounter, Help: "Use case executions by outcome.", Labels: []string{"use_case", "outcome"}},
	{Key: MUsecaseDuration, Kind: KindHistogram, Help: "Use case latency in seconds.", Labels: []string{"use_case"}},
	{Key: MHTTPRequests, Kind: KindCounter, Help: "HTTP requests by route and status.", Labels: []string{"method", "route", "status"}},
	{Key: MHTTPRequestDuration, Kind: KindHistogram, Help: "HTTP request latency in seconds.", Labels: []string{"method", "route"}},
	{Key: MExternalRequests, Kind: KindCounter, Help: "Calls to Redis and Kafka by outcome.", Labels: []string{"peer", "endpoint", "outcome"}},
	{Key: MExternalRequestDuration, Kind: KindHistogram, Help: "Latency of calls to Redis and Kafka in seconds.", Labels: []string{"peer", "endpoint"},
		Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}},
	{Key: MOrderEvents, Kind: KindCounter, Help: "Order and payment events observed on the bus.", Labels: []string{"event"}},
	{Key: MOutboxRelayed, Kind: KindCounter, Help: "Outbox records relayed by outcome.", Labels: []string{"event", "outcome"}},
}
