package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadonamonday/crtvsite/internal/booking"
	"github.com/sadonamonday/crtvsite/internal/catalog"
	"github.com/sadonamonday/crtvsite/internal/http/handlers"
	httpmiddleware "github.com/sadonamonday/crtvsite/internal/http/middleware"
	"github.com/sadonamonday/crtvsite/internal/observability/metrics"
	"github.com/sadonamonday/crtvsite/internal/sessions"
	"github.com/sadonamonday/crtvsite/pkg/logging"
)

type staticLoader struct{}

func (staticLoader) Load(context.Context) catalog.Catalog {
	return catalog.Catalog{Services: catalog.DefaultFallback(), Source: catalog.SourceFallback}
}

func newTestRouter(t *testing.T, limiter *httpmiddleware.RateLimiter) http.Handler {
	t.Helper()

	logger := logging.Default()
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	store := sessions.NewStore(func(ctx context.Context) *booking.Controller {
		return booking.NewController(booking.ControllerConfig{
			Catalog:  staticLoader{}.Load(ctx),
			Observer: m,
		}, logger)
	}, time.Hour, logger)

	return New(&Config{
		Logger:              logger,
		CatalogHandler:      handlers.NewCatalogHandler(staticLoader{}, logger),
		AvailabilityHandler: handlers.NewAvailabilityHandler(nil),
		BookingHandler:      handlers.NewBookingHandler(store, logger),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  []string{"*"},
		RateLimiter:         limiter,
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/catalog", http.StatusOK},
		{http.MethodGet, "/api/catalog?category=combo", http.StatusOK},
		{http.MethodGet, "/api/availability/calendar", http.StatusOK},
		{http.MethodGet, "/api/availability/times?start=08:00", http.StatusOK},
		{http.MethodPost, "/api/bookings/sessions", http.StatusCreated},
		{http.MethodGet, "/api/bookings/sessions/missing", http.StatusNotFound},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/bookings/sessions", nil))
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/bookings/sessions/"+created.SessionID+"/next", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `crtv_booking_transitions_total{direction="next",result="blocked"} 1`)
}

func TestRouterRateLimitsAPI(t *testing.T) {
	router := newTestRouter(t, httpmiddleware.NewRateLimiter(0.001, 1))

	send := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "203.0.113.9:5555"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("/api/catalog"))
	assert.Equal(t, http.StatusTooManyRequests, send("/api/catalog"))
	assert.Equal(t, http.StatusOK, send("/health"), "health is not throttled")
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/bookings/sessions", nil)
	req.Header.Set("Origin", "https://crtv.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://crtv.example", rr.Header().Get("Access-Control-Allow-Origin"))
}
