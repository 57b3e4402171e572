package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hostelbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

func serve(t *testing.T, checks map[string]Check, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	router := httprouter.New()
	NewHandler(checks, logger.Discard()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func TestHealth(t *testing.T) {
	rec, resp := serve(t, nil, "/health")
	if rec.Code != http.StatusOK || resp.Status != "ok" {
		t.Errorf("unexpected health response %d %+v", rec.Code, resp)
	}
}

func TestReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]Check
		wantStatus int
		wantDeps   map[string]string
	}{
		{
			name:       "all reachable",
			checks:     map[string]Check{"mongo": ok, "redis": ok},
			wantStatus: http.StatusOK,
			wantDeps:   map[string]string{"mongo": "ok", "redis": "ok"},
		},
		{
			name:       "mongo down",
			checks:     map[string]Check{"mongo": down, "redis": ok},
			wantStatus: http.StatusServiceUnavailable,
			wantDeps:   map[string]string{"mongo": "error", "redis": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := serve(t, tt.checks, "/ready")
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			for dep, want := range tt.wantDeps {
				if resp.Dependencies[dep] != want {
					t.Errorf("dependency %s: expected %q, got %q", dep, want, resp.Dependencies[dep])
				}
			}
		})
	}
}
