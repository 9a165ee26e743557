package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-concierge/internal/app/bootstrap"
	appconfig "github.com/wolfman30/salon-concierge/internal/config"
	"github.com/wolfman30/salon-concierge/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Env:                "test",
		LogLevel:           "error",
		AnonymousSessionID: "anon",
		MetricsEnabled:     true,
		RateLimitRPS:       100,
		RateLimitBurst:     100,
		SessionBackend:     bootstrap.BackendMemory,
		SessionTTL:         time.Hour,
		StorageBackend:     bootstrap.BackendMemory,
		EmailProvider:      "none",
	}
}

func TestSetupMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false

	reg, handler := setupMetrics(cfg)
	assert.Nil(t, reg)
	assert.Nil(t, handler)
}

func TestServerWiresChatBookingAndMetrics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig()
	logger := logging.New("error")
	reg, metricsHandler := setupMetrics(cfg)
	require.NotNil(t, reg)

	app, err := bootstrap.BuildApp(ctx, cfg, nil, reg, logger)
	require.NoError(t, err)
	defer app.Close()

	srv := httptest.NewServer(buildRouter(ctx, cfg, app, metricsHandler, logger))
	defer srv.Close()

	body := `{"message":"Book a haircut on 2025-12-20 at 15:00 for Rahul 9876543210","session_id":"s1"}`
	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		OK     bool   `json:"ok"`
		Reply  string `json:"reply"`
		Intent string `json:"intent"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.OK)
	assert.Equal(t, "booking", out.Intent)
	assert.Contains(t, out.Reply, "Tentative booking created (ID 1)")

	listResp, err := http.Get(srv.URL + "/api/bookings/")
	require.NoError(t, err)
	defer listResp.Body.Close()
	assert.Equal(t, http.StatusOK, listResp.StatusCode)

	healthResp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer healthResp.Body.Close()
	assert.Equal(t, http.StatusOK, healthResp.StatusCode)

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	var sb strings.Builder
	_, _ = io.Copy(&sb, metricsResp.Body)
	assert.Contains(t, sb.String(), "salon_chat_turns_total")
	assert.Contains(t, sb.String(), "go_goroutines")
}

func TestBuildRouterWithoutRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig()
	cfg.RateLimitRPS = 0
	cfg.MetricsEnabled = false
	logger := logging.New("error")

	app, err := bootstrap.BuildApp(ctx, cfg, nil, nil, logger)
	require.NoError(t, err)
	defer app.Close()

	h := buildRouter(ctx, cfg, app, nil, logger)
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
