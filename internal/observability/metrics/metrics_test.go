package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveChatTurn(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPortalMetrics(reg)

	m.ObserveChatTurn("choose_doctor", "advanced")
	m.ObserveChatTurn("choose_doctor", "advanced")
	m.ObserveChatTurn("choose_slot", "reprompt")

	if got := testutil.ToFloat64(m.chatTurnsTotal.WithLabelValues("choose_doctor", "advanced")); got != 2 {
		t.Errorf("choose_doctor/advanced = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.chatTurnsTotal.WithLabelValues("choose_slot", "reprompt")); got != 1 {
		t.Errorf("choose_slot/reprompt = %v, want 1", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *PortalMetrics
	m.ObserveChatTurn("done", "noop")
	m.ObserveBooking("confirmed", 0.1)
	m.ObserveFAQ("matched")
}

func TestObserveBooking(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPortalMetrics(reg)

	m.ObserveBooking("confirmed", 0.05)
	m.ObserveBooking("slot_gone", 0.01)

	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("confirmed")); got != 1 {
		t.Errorf("bookings confirmed = %v, want 1", got)
	}
}
