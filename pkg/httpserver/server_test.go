package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mselser95/polymarket-mirror/internal/circuitbreaker"
	"github.com/mselser95/polymarket-mirror/internal/exposure"
	"github.com/mselser95/polymarket-mirror/pkg/healthprobe"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

type fakeBreaker struct {
	status circuitbreaker.Status
}

func (f fakeBreaker) GetStatus() circuitbreaker.Status {
	return f.status
}

func get(t *testing.T, server *Server, path string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	server.server.Handler.ServeHTTP(w, req)

	return w.Result()
}

func newTestServer(exposureSource ExposureSource, breaker BreakerSource) *Server {
	return New(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: healthprobe.New(0),
		Exposure:      exposureSource,
		Breaker:       breaker,
	})
}

func TestNew(t *testing.T) {
	logger := zap.NewNop()
	healthChecker := healthprobe.New(0)

	server := New(&Config{
		Port:          "8080",
		Logger:        logger,
		HealthChecker: healthChecker,
	})

	if server == nil {
		t.Fatal("New() returned nil server")
	}
	if server.server == nil {
		t.Error("New() server.server is nil")
	}
	if server.logger != logger {
		t.Error("New() logger not set correctly")
	}
	if server.healthChecker != healthChecker {
		t.Error("New() healthChecker not set correctly")
	}
}

func TestHealthEndpoint(t *testing.T) {
	resp := get(t, newTestServer(nil, nil), "/health")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health endpoint status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		setReady       bool
		expectedStatus int
	}{
		{name: "not_ready", setReady: false, expectedStatus: http.StatusServiceUnavailable},
		{name: "ready", setReady: true, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			healthChecker := healthprobe.New(0)
			healthChecker.SetReady(tt.setReady)
			server := New(&Config{Port: "0", Logger: zap.NewNop(), HealthChecker: healthChecker})

			resp := get(t, server, "/ready")
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("Ready endpoint status = %d, want %d", resp.StatusCode, tt.expectedStatus)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	resp := get(t, newTestServer(nil, nil), "/metrics")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Metrics endpoint status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read metrics response body: %v", err)
	}
	if len(body) == 0 {
		t.Error("Metrics endpoint returned empty body")
	}
}

func TestExposureEndpoint(t *testing.T) {
	ledger := exposure.NewLedger()
	ledger.Seed("token-b", 25)
	ledger.Seed("token-a", 10.5)

	resp := get(t, newTestServer(ledger, nil), "/api/exposure")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Exposure endpoint status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body ExposureResponse
	err := json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		t.Fatalf("Failed to decode exposure response: %v", err)
	}

	if len(body.Tokens) != 2 {
		t.Fatalf("Tokens = %d, want 2", len(body.Tokens))
	}
	if body.Tokens[0].TokenID != "token-a" || body.Tokens[0].Shares != 10.5 {
		t.Errorf("Tokens[0] = %+v, want token-a/10.5", body.Tokens[0])
	}
	if body.TotalShares != 35.5 {
		t.Errorf("TotalShares = %v, want 35.5", body.TotalShares)
	}
}

func TestExposureEndpoint_Empty(t *testing.T) {
	resp := get(t, newTestServer(exposure.NewLedger(), nil), "/api/exposure")
	defer resp.Body.Close()

	var body ExposureResponse
	err := json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		t.Fatalf("Failed to decode exposure response: %v", err)
	}

	if body.Tokens == nil || len(body.Tokens) != 0 {
		t.Errorf("Tokens = %v, want empty list", body.Tokens)
	}
}

func TestBreakerEndpoint(t *testing.T) {
	breaker := fakeBreaker{status: circuitbreaker.Status{
		BuysEnabled:      false,
		LastBalance:      4.5,
		DisableThreshold: 10,
		EnableThreshold:  10,
	}}

	resp := get(t, newTestServer(nil, breaker), "/api/breaker")
	defer resp.Body.Close()

	var body circuitbreaker.Status
	err := json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		t.Fatalf("Failed to decode breaker response: %v", err)
	}

	if body.BuysEnabled {
		t.Error("BuysEnabled = true, want false")
	}
	if body.LastBalance != 4.5 {
		t.Errorf("LastBalance = %v, want 4.5", body.LastBalance)
	}
}

func TestStateEndpoints_OnlyWithComponents(t *testing.T) {
	server := newTestServer(nil, nil)

	for _, path := range []string{"/api/exposure", "/api/breaker"} {
		resp := get(t, server, path)
		resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s status = %d, want %d", path, resp.StatusCode, http.StatusNotFound)
		}
	}
}

func TestExposureEndpoint_MethodNotAllowed(t *testing.T) {
	server := newTestServer(exposure.NewLedger(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/exposure", nil)
	w := httptest.NewRecorder()
	server.server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Method not allowed status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	server := newTestServer(nil, nil)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start()
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case err := <-serverDone:
		if err != nil {
			t.Errorf("Start() returned error after shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after shutdown")
	}
}

func TestServer_Timeouts(t *testing.T) {
	server := newTestServer(nil, nil)

	if server.server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want %v", server.server.ReadTimeout, 15*time.Second)
	}
	if server.server.ReadHeaderTimeout != 10*time.Second {
		t.Errorf("ReadHeaderTimeout = %v, want %v", server.server.ReadHeaderTimeout, 10*time.Second)
	}
	if server.server.WriteTimeout != 15*time.Second {
		t.Errorf("WriteTimeout = %v, want %v", server.server.WriteTimeout, 15*time.Second)
	}
	if server.server.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want %v", server.server.IdleTimeout, 60*time.Second)
	}
}

func TestServer_RouteNotFound(t *testing.T) {
	resp := get(t, newTestServer(nil, nil), "/nonexistent")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Non-existent route status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestInstrument_CountsByRoutePattern(t *testing.T) {
	server := newTestServer(nil, nil)
	served := RequestsTotal.WithLabelValues("/health", "200")
	unmatched := RequestsTotal.WithLabelValues("unmatched", "404")
	servedBefore, unmatchedBefore := testutil.ToFloat64(served), testutil.ToFloat64(unmatched)

	get(t, server, "/health").Body.Close()
	get(t, server, "/nope").Body.Close()

	if got := testutil.ToFloat64(served) - servedBefore; got != 1 {
		t.Errorf("/health count delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(unmatched) - unmatchedBefore; got != 1 {
		t.Errorf("unmatched count delta = %v, want 1", got)
	}
}
