package server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/services/health"
	"resume-tailor/internal/shared/auth"
	"resume-tailor/internal/shared/server"
)

func newRouter(t *testing.T, checks *health.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer, err := auth.NewSigner("router-secret", time.Hour, false)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return server.NewRouter(server.RouterDeps{Verifier: signer, Health: checks})
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
	return resp
}

func TestHealthIsPublic(t *testing.T) {
	resp := get(newRouter(t, health.NewService(time.Second)), "/api/v1/health")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestHealthReportsFailingCheck(t *testing.T) {
	checks := health.NewService(time.Second)
	checks.Add("database", func(ctx context.Context) error { return errors.New("connection refused") })

	resp := get(newRouter(t, checks), "/api/v1/health")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "database") {
		t.Fatalf("expected failing check in body, got %s", resp.Body.String())
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	resp := get(newRouter(t, nil), "/api/v1/resumes")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestMetricsExposed(t *testing.T) {
	resp := get(newRouter(t, nil), "/metrics")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestGenerateLimitDisabled(t *testing.T) {
	if server.GenerateLimit(0) != nil {
		t.Fatalf("expected no limiter for zero rate")
	}
	if server.GenerateLimit(5) == nil {
		t.Fatalf("expected limiter for positive rate")
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := server.Addr(in); got != want {
			t.Errorf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
