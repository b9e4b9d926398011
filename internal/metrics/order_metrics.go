package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики обработки intents заказов.
type OrderMetrics struct {
	// Счётчики intents по имени и исходу (ok / error).
	intentsTotal *prometheus.CounterVec

	// Гистограмма времени обработки intent'ов.
	intentDuration *prometheus.HistogramVec

	// Счётчики обращений к каталогу
	catalogLookups        prometheus.Counter
	catalogLookupFailures prometheus.Counter

	// Gauge для intents в обработке
	inflightIntents prometheus.Gauge
}

// NewOrderMetrics создаёт новый экземпляр метрик заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		intentsTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_intents_total",
			Help: "Total number of order intents processed, by intent and outcome",
		}, []string{"intent", "outcome"}),
		intentDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "orders_intent_duration_seconds",
			Help:    "Duration of order intent handling in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"intent"}),
		catalogLookups: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_catalog_lookups_total",
			Help: "Total number of catalog lookup requests sent",
		}),
		catalogLookupFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_catalog_lookup_failures_total",
			Help: "Total number of failed catalog lookup requests",
		}),
		inflightIntents: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "orders_inflight_intents",
			Help: "Number of order intents currently being handled",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordIntent фиксирует обработанный intent и его исход.
func (m *OrderMetrics) RecordIntent(intent string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.intentsTotal.WithLabelValues(intent, outcome).Inc()
}

// RecordIntentDuration записывает время обработки intent'а.
func (m *OrderMetrics) RecordIntentDuration(intent string, duration time.Duration) {
	m.intentDuration.WithLabelValues(intent).Observe(duration.Seconds())
}

// RecordIntentStarted увеличивает число intents в обработке.
func (m *OrderMetrics) RecordIntentStarted() {
	m.inflightIntents.Inc()
}

// RecordIntentFinished уменьшает число intents в обработке.
func (m *OrderMetrics) RecordIntentFinished() {
	m.inflightIntents.Dec()
}

// RecordCatalogLookup увеличивает счётчик запросов к каталогу.
func (m *OrderMetrics) RecordCatalogLookup() {
	m.catalogLookups.Inc()
}

// RecordCatalogLookupFailure увеличивает счётчик неудачных запросов к каталогу.
func (m *OrderMetrics) RecordCatalogLookupFailure() {
	m.catalogLookupFailures.Inc()
}
