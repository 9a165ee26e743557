package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ChatMetrics exposes counters/histograms for chat turns.
type ChatMetrics struct {
	turnsTotal     *prometheus.CounterVec
	turnLatency    *prometheus.HistogramVec
	bookingsTotal  prometheus.Counter
	customersTotal prometheus.Counter
	faultsTotal    *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Chat turns handled, by intent and ok flag",
		}, []string{"intent", "ok"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "chat",
			Name:      "turn_latency_seconds",
			Help:      "Latency of chat turn handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
		bookingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "chat",
			Name:      "bookings_created_total",
			Help:      "Tentative bookings created from chat",
		}),
		customersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "chat",
			Name:      "customers_saved_total",
			Help:      "Customer profiles saved from chat",
		}),
		faultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "chat",
			Name:      "faults_total",
			Help:      "Unexpected failures caught at the chat boundary",
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.turnLatency, m.bookingsTotal, m.customersTotal, m.faultsTotal)
	return m
}

func (m *ChatMetrics) ObserveTurn(intent string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent, strconv.FormatBool(ok)).Inc()
	m.turnLatency.WithLabelValues(intent).Observe(elapsed.Seconds())
}

func (m *ChatMetrics) BookingCreated() {
	if m == nil {
		return
	}
	m.bookingsTotal.Inc()
}

func (m *ChatMetrics) CustomerSaved() {
	if m == nil {
		return
	}
	m.customersTotal.Inc()
}

func (m *ChatMetrics) Fault(stage string) {
	if m == nil {
		return
	}
	m.faultsTotal.WithLabelValues(stage).Inc()
}
