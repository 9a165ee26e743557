package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestChatMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatMetrics(reg)

	m.ObserveTurn("booking", true, 20*time.Millisecond)
	m.ObserveTurn("booking", true, 10*time.Millisecond)
	m.ObserveTurn("fallback", false, time.Millisecond)
	m.BookingCreated()
	m.CustomerSaved()
	m.Fault("persist")

	if got := testutil.ToFloat64(m.turnsTotal.WithLabelValues("booking", "true")); got != 2 {
		t.Fatalf("expected 2 booking turns, got %v", got)
	}
	if got := testutil.ToFloat64(m.turnsTotal.WithLabelValues("fallback", "false")); got != 1 {
		t.Fatalf("expected 1 failed fallback turn, got %v", got)
	}
	if got := testutil.ToFloat64(m.bookingsTotal); got != 1 {
		t.Fatalf("expected 1 booking, got %v", got)
	}
	if got := testutil.ToFloat64(m.faultsTotal.WithLabelValues("persist")); got != 1 {
		t.Fatalf("expected 1 fault, got %v", got)
	}
	if n := testutil.CollectAndCount(m.turnLatency); n != 2 {
		t.Fatalf("expected 2 latency series, got %d", n)
	}
}

func TestChatMetricsNilSafe(t *testing.T) {
	var m *ChatMetrics
	m.ObserveTurn("booking", true, time.Millisecond)
	m.BookingCreated()
	m.CustomerSaved()
	m.Fault("session")
}
