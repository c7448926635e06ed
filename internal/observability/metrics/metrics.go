package metrics

import "github.com/prometheus/client_golang/prometheus"

// PortalMetrics exposes counters/histograms for the chat and booking flows.
type PortalMetrics struct {
	chatTurnsTotal  *prometheus.CounterVec
	bookingsTotal   *prometheus.CounterVec
	bookingLatency  prometheus.Histogram
	faqQueriesTotal *prometheus.CounterVec
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		chatTurnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "assistant",
			Name:      "chat_turns_total",
			Help:      "Chat turns handled, by conversation phase and outcome",
		}, []string{"phase", "outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "assistant",
			Name:      "bookings_total",
			Help:      "Booking attempts, by outcome",
		}, []string{"outcome"}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "assistant",
			Name:      "booking_latency_seconds",
			Help:      "Latency of the booking transaction",
			Buckets:   prometheus.DefBuckets,
		}),
		faqQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "faq",
			Name:      "queries_total",
			Help:      "FAQ questions answered, by match result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.chatTurnsTotal, m.bookingsTotal, m.bookingLatency, m.faqQueriesTotal)
	return m
}

func (m *PortalMetrics) ObserveChatTurn(phase, outcome string) {
	if m == nil {
		return
	}
	m.chatTurnsTotal.WithLabelValues(phase, outcome).Inc()
}

func (m *PortalMetrics) ObserveBooking(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
	m.bookingLatency.Observe(seconds)
}

func (m *PortalMetrics) ObserveFAQ(result string) {
	if m == nil {
		return
	}
	m.faqQueriesTotal.WithLabelValues(result).Inc()
}
