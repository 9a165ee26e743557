package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/salon-concierge/internal/bookings"
	"github.com/wolfman30/salon-concierge/internal/catalog"
	"github.com/wolfman30/salon-concierge/internal/chat"
	"github.com/wolfman30/salon-concierge/internal/customers"
	"github.com/wolfman30/salon-concierge/internal/dialog"
	httpmiddleware "github.com/wolfman30/salon-concierge/internal/http/middleware"
	"github.com/wolfman30/salon-concierge/internal/observability/metrics"
	"github.com/wolfman30/salon-concierge/internal/session"
	"github.com/wolfman30/salon-concierge/internal/transcript"
	"github.com/wolfman30/salon-concierge/internal/webchat"
	"github.com/wolfman30/salon-concierge/pkg/logging"
)

func newTestRouter(t *testing.T, mutate func(*Config)) http.Handler {
	t.Helper()

	logger := logging.NewWithWriter("error", io.Discard)
	reg := prometheus.NewRegistry()
	sessions := session.NewMemoryStore(0, logger)
	history := transcript.NewMemoryStore(100)
	bookingSvc := bookings.NewService(bookings.NewInMemoryRepository(), nil, logger)
	engine := dialog.NewEngine(sessions, bookingSvc,
		customers.NewService(customers.NewInMemoryRepository(), logger),
		dialog.WithLogger(logger),
		dialog.WithTranscript(history),
		dialog.WithMetrics(metrics.NewChatMetrics(reg)),
	)

	cfg := &Config{
		Logger:             logger,
		ChatHandler:        chat.NewHandler(engine, sessions, history, logger),
		WebChatHandler:     webchat.NewHandler(engine, history, nil, logger),
		BookingsHandler:    bookings.NewHandler(bookingSvc, logger),
		CatalogHandler:     catalog.NewHandler(catalog.Default()),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"https://salon.example"},
	}
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", resp["status"])
	}
}

func TestRouterHealthReportsFailingCheck(t *testing.T) {
	router := newTestRouter(t, func(cfg *Config) {
		cfg.HealthChecks = map[string]HealthCheck{
			"redis":    func(context.Context) error { return errors.New("connection refused") },
			"postgres": func(context.Context) error { return nil },
		}
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" || resp.Checks["redis"] != "connection refused" || resp.Checks["postgres"] != "ok" {
		t.Fatalf("unexpected health body: %+v", resp)
	}
}

func TestRouterChatAndMetrics(t *testing.T) {
	router := newTestRouter(t, nil)

	body := `{"message":"Book haircut on 2025-12-20 at 15:00 for Rahul 9876543210 male 28","session_id":"r1"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("chat status = %d", rr.Code)
	}
	var res dialog.Result
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	if !res.OK || res.BookingID != 1 {
		t.Fatalf("unexpected chat result: %+v", res)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/sessions/r1", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"phase":"awaiting_yes_no"`) {
		t.Fatalf("session lookup = %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/bookings/1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("booking lookup status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `salon_chat_turns_total{intent="booking",ok="true"} 1`) {
		t.Fatalf("expected turn counter in metrics output, got:\n%s", rr.Body.String())
	}
}

func TestRouterCatalogAndWidget(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Haircut") {
		t.Fatalf("catalog = %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/chat/widget.js", nil))
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "application/javascript" {
		t.Fatalf("widget = %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://salon.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://salon.example" {
		t.Fatalf("missing allow origin header")
	}
}

func TestRouterRateLimitsChat(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newTestRouter(t, func(cfg *Config) {
		cfg.RateLimiter = httpmiddleware.NewRateLimiter(ctx, 0.001, 1)
	})

	send := func() int {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))
		return rr.Code
	}
	if got := send(); got != http.StatusOK {
		t.Fatalf("first chat = %d", got)
	}
	if got := send(); got != http.StatusTooManyRequests {
		t.Fatalf("second chat = %d, want 429", got)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health should not be rate limited, got %d", rr.Code)
	}
}
