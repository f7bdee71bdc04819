package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/eventbooking/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	connected := false

	r := NewRouter(RouterDeps{
		Env:         "dev",
		ServiceName: "eventbooking-test",
		Log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Prom:        prom,
		Gatherer:    reg,
		Ready: func() (string, bool) {
			if connected {
				return "connected", true
			}
			return "disconnected", false
		},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz before connect: got %d want 503", w.Code)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected a generated request id")
	}

	connected = true
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("readyz after connect: got %d want 200", w.Code)
	}
	if got := w.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("request id should be echoed: got %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: got %d want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "eventbooking_http_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
}
