package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yonasbekele/serenity-backend/pkg/config"
	"github.com/yonasbekele/serenity-backend/pkg/logger"
)

func testRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "development"
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 15}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRouter(RouterParams{Config: cfg, Logger: logg})
}

func TestHealthLive(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env := rec.Header().Get("X-Serenity-Env"); env != "development" {
		t.Fatalf("expected env header, got %q", env)
	}
}

func TestPublicPing(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := testRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/ping"},
		{http.MethodGet, "/api/v1/bookings/"},
		{http.MethodPost, "/api/v1/payments/initialize"},
		{http.MethodGet, "/api/v1/payments/transactions"},
		{http.MethodGet, "/api/v1/loyalty/tier"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
