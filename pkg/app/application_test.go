package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hostelbook/pkg/config"
	"hostelbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type routesFunc func(*httprouter.Router)

func (f routesFunc) RegisterRoutes(r *httprouter.Router) { f(r) }

func newTestConfig() *config.Config {
	return &config.Config{
		Port:              "8080",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1 << 20,
		Log:               logger.Discard(),
	}
}

func TestSetApp_RoutesHealthAndAPI(t *testing.T) {
	health := routesFunc(func(r *httprouter.Router) {
		r.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	api := routesFunc(func(r *httprouter.Router) {
		r.GET("/api/hostels", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			w.WriteHeader(http.StatusTeapot)
		})
	})

	a := NewApplication()
	a.SetApp(newTestConfig(), health, api)
	t.Cleanup(func() {
		a.rateLimiter.Stop()
		a.idempotencyStore.Stop()
	})

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusNoContent},
		{"/api/hostels", http.StatusTeapot},
		{"/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("GET %s: expected %d, got %d", tt.path, tt.want, rec.Code)
		}
	}
}
