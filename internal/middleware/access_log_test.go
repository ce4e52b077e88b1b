package middleware_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/auth"
	"github.com/boostmysites25/zippty-backend/internal/logging"
	"github.com/boostmysites25/zippty-backend/internal/metrics"
	"github.com/boostmysites25/zippty-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func lastAccessEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var found map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		if entry["msg"] == "access" {
			found = entry
		}
	}
	if found == nil {
		t.Fatalf("no access log line in %q", buf.String())
	}
	return found
}

func TestAccessLog_RecordsRouteStatusAndAdmin(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	logging.InitWriter(&buf, "info")

	tokens := auth.NewTokenManager([]byte("test-secret"), time.Hour)
	a := auth.NewAuthenticator(tokens, admins{exists: true})
	tok, _, err := tokens.Issue(auth.Principal{ID: adminID, IsAdmin: true})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{}))
	r.With(middleware.AdminAuth(a, middleware.RequireAdmin, nil)).
		Get("/api/admin/users/{userId}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users/abc", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(httptest.NewRecorder(), req)

	entry := lastAccessEntry(t, &buf)
	if entry["route"] != "/api/admin/users/{userId}" {
		t.Fatalf("unexpected route %v", entry["route"])
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Fatalf("unexpected status %v", entry["status"])
	}
	if entry["admin_id"] != adminID {
		t.Fatalf("expected admin_id %q, got %v", adminID, entry["admin_id"])
	}
	if entry["request_id"] == "" || entry["request_id"] == nil {
		t.Fatalf("expected request_id")
	}
}

func TestAccessLog_ServerErrorsLogAtError(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	logging.InitWriter(&buf, "info")

	h := middleware.AccessLog(middleware.AccessLogOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if entry := lastAccessEntry(t, &buf); entry["level"] != "ERROR" {
		t.Fatalf("expected ERROR level, got %v", entry["level"])
	}
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(middleware.Metrics(m))
	r.Get("/api/admin/users/{userId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/admin/users/"+id, nil))
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/admin/users/{userId}", "404"))
	if got != 3 {
		t.Fatalf("expected 3 requests, got %v", got)
	}
	if inflight := testutil.ToFloat64(m.HTTPRequestsInFlight); inflight != 0 {
		t.Fatalf("expected 0 in flight, got %v", inflight)
	}
}
