package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestCatalogKeysAreUnique(t *testing.T) {
	seen := map[MetricKey]bool{}
	for _, m := range Catalog {
		assert.False(t, seen[m.Key], "duplicate %s", m.Key)
		seen[m.Key] = true
		assert.NotEmpty(t, m.Help)
		assert.NotEmpty(t, m.Labels)
	}
}

func TestTraceFields(t *testing.T) {
	assert.Empty(t, TraceFields(context.Background()))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1},
		SpanID:  trace.SpanID{2},
	})
	fields := TraceFields(trace.ContextWithSpanContext(context.Background(), sc))
	assert.Equal(t, []Field{
		F("trace_id", sc.TraceID().String()),
		F("span_id", sc.SpanID().String()),
	}, fields)
}
