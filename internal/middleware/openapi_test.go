package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/boostmysites25/zippty-backend/internal/api"
	"github.com/boostmysites25/zippty-backend/internal/middleware"
)

func newValidatingHandler(t *testing.T, next http.Handler) http.Handler {
	t.Helper()
	v, err := api.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return middleware.RequestValidation(v)(next)
}

func TestRequestValidation_RejectsBadQuery(t *testing.T) {
	h := newValidatingHandler(t, okHandler())

	for _, q := range []string{"months=0", "months=abc", "months=-3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard/sales-analytics?"+q, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rr.Code)
		}
		if env := decodeEnvelope(t, rr); env.Message != `Invalid query parameter "months"` {
			t.Fatalf("%s: unexpected message %q", q, env.Message)
		}
	}
}

func TestRequestValidation_AcceptsValidQuery(t *testing.T) {
	h := newValidatingHandler(t, okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard/sales-analytics?months=6", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequestValidation_RejectsMalformedBody(t *testing.T) {
	h := newValidatingHandler(t, okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"email": 42}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Message != "Invalid request body" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestRequestValidation_BodyStillReadable(t *testing.T) {
	var got string
	h := newValidatingHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
	}))

	body := `{"email":"a@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != body {
		t.Fatalf("expected body %q, got %q", body, got)
	}
}

func TestRequestValidation_UnknownRoutePassesThrough(t *testing.T) {
	h := newValidatingHandler(t, okHandler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
