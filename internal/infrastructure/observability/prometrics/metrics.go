// Package prometrics backs the observability metric ports with Prometheus
// collectors.
package prometrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

// Registry registers each described instrument once and hands out recorders.
type Registry interface {
	Counter(m observability.Metric) observability.Counter
	Histogram(m observability.Metric) observability.Histogram
}

type registry struct {
	mu         sync.Mutex
	reg        prometheus.Registerer
	namespace  string
	counters   map[observability.MetricKey]*prometheus.CounterVec
	histograms map[observability.MetricKey]*prometheus.HistogramVec
}

// New registers collectors on reg, or on the default registerer when reg is nil.
func New(namespace string, reg prometheus.Registerer) Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &registry{
		reg:        reg,
		namespace:  namespace,
		counters:   make(map[observability.MetricKey]*prometheus.CounterVec),
		histograms: make(map[observability.MetricKey]*prometheus.HistogramVec),
	}
}

func (r *registry) Counter(m observability.Metric) observability.Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	cv, ok := r.counters[m.Key]
	if !ok {
		cv = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      string(m.Key),
			Help:      m.Help,
		}, m.Labels)
		r.reg.MustRegister(cv)
		r.counters[m.Key] = cv
	}
	return &counter{vec: cv, labels: m.Labels}
}

func (r *registry) Histogram(m observability.Metric) observability.Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	hv, ok := r.histograms[m.Key]
	if !ok {
		buckets := m.Buckets
		if len(buckets) == 0 {
			buckets = prometheus.DefBuckets
		}
		hv = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: r.namespace,
			Name:      string(m.Key),
			Help:      m.Help,
			Buckets:   buckets,
		}, m.Labels)
		r.reg.MustRegister(hv)
		r.histograms[m.Key] = hv
	}
	return &histogram{vec: hv, labels: m.Labels}
}

type counter struct {
	vec    *prometheus.CounterVec
	labels []string
}

func (c *counter) Add(d float64, labels ...observability.Label) {
	c.vec.WithLabelValues(values(c.labels, labels)...).Add(d)
}

type histogram struct {
	vec    *prometheus.HistogramVec
	labels []string
}

func (h *histogram) Observe(v float64, labels ...observability.Label) {
	h.vec.WithLabelValues(values(h.labels, labels)...).Observe(v)
}

// values orders the supplied labels by the declared names. Undeclared
// labels are dropped so a caller mistake cannot panic the collector.
func values(names []string, given []observability.Label) []string {
	out := make([]string, len(names))
	for i, name := range names {
		for _, l := range given {
			if l.Key == name {
				out[i] = l.Value
				break
			}
		}
	}
	return out
}
