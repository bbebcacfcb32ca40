package metrics

import "github.com/prometheus/client_golang/prometheus"

// PersistenceMetrics counts conversation writes per backend.
type PersistenceMetrics struct {
	writesTotal *prometheus.CounterVec
}

func NewPersistenceMetrics(reg prometheus.Registerer) *PersistenceMetrics {
	m := &PersistenceMetrics{
		writesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lyla",
			Subsystem: "persistence",
			Name:      "writes_total",
			Help:      "Conversation writes by backend and outcome",
		}, []string{"backend", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.writesTotal)
	return m
}

func (m *PersistenceMetrics) ObserveWrite(backend, status string) {
	if m == nil {
		return
	}
	m.writesTotal.WithLabelValues(backend, status).Inc()
}

// LLMMetrics tracks calls to the language model backend.
type LLMMetrics struct {
	requestsTotal *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	fallbacks     prometheus.Counter
}

func NewLLMMetrics(reg prometheus.Registerer) *LLMMetrics {
	m := &LLMMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lyla",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "LLM calls by outcome category",
		}, []string{"status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lyla",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Latency of LLM calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lyla",
			Subsystem: "llm",
			Name:      "narrative_fallbacks_total",
			Help:      "Times a templated fallback replaced LLM elaboration",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.latency, m.fallbacks)
	return m
}

func (m *LLMMetrics) ObserveRequest(status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(status).Inc()
	m.latency.WithLabelValues(status).Observe(seconds)
}

func (m *LLMMetrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}
