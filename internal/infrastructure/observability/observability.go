// Package observability assembles concrete observability providers.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

type provider struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics observability.Metrics
}

func (p *provider) Tracer() observability.Tracer   { return p.tracer }
func (p *provider) Logger() observability.Logger   { return p.logger }
func (p *provider) Metrics() observability.Metrics { return p.metrics }

// New assembles a provider. Nil ports fall back to no-ops.
func New(tracer observability.Tracer, logger observability.Logger, metrics observability.Metrics) observability.Observability {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &provider{tracer: tracer, logger: logger, metrics: metrics}
}

// NewPrometheus registers every instrument of observability.Catalog on reg
// and returns a provider that serves them.
func NewPrometheus(tracer observability.Tracer, logger observability.Logger, reg prometheus.Registerer) observability.Observability {
	return New(tracer, logger, Register(prometrics.New("", reg), observability.Catalog))
}

// catalogMetrics resolves keys to the instruments registered at start-up.
type catalogMetrics struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

// Register creates one instrument per descriptor on r.
func Register(r prometrics.Registry, catalog []observability.Metric) observability.Metrics {
	m := &catalogMetrics{
		counters:   make(map[observability.MetricKey]observability.Counter),
		histograms: make(map[observability.MetricKey]observability.Histogram),
	}
	for _, d := range catalog {
		switch d.Kind {
		case observability.KindCounter:
			m.counters[d.Key] = r.Counter(d)
		case observability.KindHistogram:
			m.histograms[d.Key] = r.Histogram(d)
		}
	}
	return m
}

func (m *catalogMetrics) Counter(key observability.MetricKey) observability.Counter {
	if c, ok := m.counters[key]; ok {
		return c
	}
	return observability.NopCounter()
}

func (m *catalogMetrics) Histogram(key observability.MetricKey) observability.Histogram {
	if h, ok := m.histograms[key]; ok {
		return h
	}
	return observability.NopHistogram()
}
