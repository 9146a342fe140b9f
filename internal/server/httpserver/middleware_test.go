package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/core/service"
	"github.com/yndnr/ledwall-go/internal/server/httpserver/handler"
	"github.com/yndnr/ledwall-go/internal/storage/memory"
	"github.com/yndnr/ledwall-go/internal/telemetry/logger"
	"github.com/yndnr/ledwall-go/internal/telemetry/metric"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mw("a"), mw("b"), mw("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("order = %v, want a,b,c", order)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		if !strings.HasPrefix(seen, "req-") {
			t.Errorf("request id = %q, want req- prefix", seen)
		}
		if rec.Header().Get("X-Request-ID") != seen {
			t.Errorf("header %q does not match context %q", rec.Header().Get("X-Request-ID"), seen)
		}
	})

	t.Run("keeps client id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", "client-1")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if seen != "client-1" {
			t.Errorf("request id = %q, want client-1", seen)
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		ids := make(map[string]bool)
		for i := 0; i < 100; i++ {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
			if ids[seen] {
				t.Fatalf("duplicate request id %q", seen)
			}
			ids[seen] = true
		}
	})
}

func TestRecover(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != domain.ErrInternalServer.Code {
		t.Errorf("expected X-Error-Code %s, got %s", domain.ErrInternalServer.Code, got)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantHeader string
		wantStatus int
	}{
		{"allowed origin", []string{"http://panel.local"}, "http://panel.local", "GET", "http://panel.local", http.StatusOK},
		{"wildcard", []string{"*"}, "http://x", "GET", "http://x", http.StatusOK},
		{"other origin", []string{"http://panel.local"}, "http://evil", "GET", "", http.StatusOK},
		{"preflight", []string{"*"}, "http://x", "OPTIONS", "http://x", http.StatusNoContent},
		{"preflight from unknown origin passes through", []string{"http://panel.local"}, "http://evil", "OPTIONS", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			CORS(tt.allowed)(okHandler()).ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRateLimiterRegistry(t *testing.T) {
	reg := NewRateLimiterRegistry(1, 2)
	now := time.Unix(1000, 0)
	reg.now = func() time.Time { return now }

	if !reg.Allow("a") || !reg.Allow("a") {
		t.Fatal("burst of 2 should be allowed")
	}
	if reg.Allow("a") {
		t.Error("third request should be limited")
	}
	if !reg.Allow("b") {
		t.Error("other client should have its own bucket")
	}

	now = now.Add(time.Second)
	if !reg.Allow("a") {
		t.Error("token should refill after one second")
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestRateLimiterRegistry_EvictsIdle(t *testing.T) {
	reg := NewRateLimiterRegistry(10, 10)
	now := time.Unix(1000, 0)
	reg.now = func() time.Time { return now }

	reg.Allow("stale")
	now = now.Add(time.Hour)
	for i := 0; i < 300; i++ {
		reg.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	reg.mu.Lock()
	_, ok := reg.limiters["stale"]
	reg.mu.Unlock()
	if ok {
		t.Error("idle client should be evicted")
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(NewRateLimiterRegistry(1, 1))(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	var body map[string]any
	json.NewDecoder(rec.Body).Decode(&body)
	if body["code"] != domain.ErrRateLimited.Code {
		t.Errorf("code = %v, want %s", body["code"], domain.ErrRateLimited.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		header map[string]string
		want   string
	}{
		{"remote addr", "192.0.2.1:1234", nil, "192.0.2.1"},
		{"ipv6", "[::1]:8080", nil, "::1"},
		{"x-forwarded-for", "192.0.2.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "203.0.113.5"},
		{"x-real-ip", "192.0.2.1:1234", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"no port", "192.0.2.1", nil, "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

// stubDisplay is a minimal handler.Display.
type stubDisplay struct{ mode domain.Mode }

func (d *stubDisplay) GoBlack(context.Context) error      { d.mode = domain.Dark; return nil }
func (d *stubDisplay) GoLive(context.Context) error       { d.mode = domain.Live; return nil }
func (d *stubDisplay) GoRoundRobin(context.Context) error { d.mode = domain.RoundRobin; return nil }
func (d *stubDisplay) GoSlot(_ context.Context, i int) error {
	d.mode = domain.ShowSlot(i)
	return nil
}
func (d *stubDisplay) ProcessLive(context.Context, []byte) (bool, error) { return false, nil }
func (d *stubDisplay) Mode() domain.Mode                               { return d.mode }

func testRouter(t *testing.T, mutate func(*RouterConfig)) (http.Handler, *metric.Registry) {
	t.Helper()
	slots, err := service.NewSlotService(memory.New(), service.SlotServiceConfig{NumSlots: 2, Logger: discardLogger()})
	if err != nil {
		t.Fatal(err)
	}
	reg := metric.NewRegistry()
	cfg := DefaultRouterConfig()
	cfg.Handler = handler.Config{Slots: slots, Display: &stubDisplay{}}
	cfg.Metrics = reg
	cfg.Logger = discardLogger()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRouter(cfg), reg
}

func TestNewRouter_Routes(t *testing.T) {
	router, _ := testRouter(t, nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/ready", http.StatusOK},
		{"GET", "/ping/x", http.StatusOK},
		{"GET", "/metrics", http.StatusOK},
		{"GET", "/v1/slots", http.StatusOK},
		{"GET", "/v1/slots/0", http.StatusNoContent},
		{"GET", "/v1/mode", http.StatusOK},
		{"POST", "/v1/mode/live", http.StatusOK},
		{"POST", "/v1/mode/slot/1", http.StatusOK},
		{"GET", "/v1/unknown", http.StatusNotFound},
		{"DELETE", "/v1/mode", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestNewRouter_RecordsMetricsByPattern(t *testing.T) {
	router, reg := testRouter(t, nil)

	for _, p := range []string{"/v1/slots/0", "/v1/slots/1"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", p, nil))
	}

	got := testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("GET", "/v1/slots/{index}", "204"))
	if got != 2 {
		t.Errorf("requests for /v1/slots/{index} = %v, want 2", got)
	}
}

func TestNewRouter_RateLimitSkipsHealth(t *testing.T) {
	router, _ := testRouter(t, func(c *RouterConfig) {
		c.RateLimit = 1
		c.RateBurst = 1
	})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("health request %d: status %d", i, rec.Code)
		}
	}

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/mode", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
}

func TestNewRouter_Preflight(t *testing.T) {
	router, _ := testRouter(t, func(c *RouterConfig) {
		c.CORSAllowedOrigins = []string{"http://panel.local"}
	})

	req := httptest.NewRequest("OPTIONS", "/v1/slots/0", nil)
	req.Header.Set("Origin", "http://panel.local")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://panel.local" {
		t.Error("missing Allow-Origin header")
	}
}
