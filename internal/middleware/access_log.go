package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type AccessLogOptions struct {
	TrustProxy bool
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteBytes  int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.wroteHeader {
		return
	}
	sr.status = code
	sr.wroteHeader = true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wroteHeader {
		sr.WriteHeader(http.StatusOK)
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.wroteBytes += n
	return n, err
}

func (sr *statusRecorder) Status() int {
	if sr.status == 0 {
		return http.StatusOK
	}
	return sr.status
}

// AccessLog logs one line per request and seeds the request-scoped log attrs.
func AccessLog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			requestID := chimw.GetReqID(r.Context())
			clientIP := ClientIP(r, opt.TrustProxy)

			ctx := logging.WithRequestContext(r.Context(), requestID, clientIP, r.Method+" "+r.URL.Path)
			r = r.WithContext(ctx)

			next.ServeHTTP(rec, r)

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.Status()),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
				slog.String("client_ip", clientIP),
				slog.String("user_agent", r.UserAgent()),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				attrs = append(attrs, slog.String("route", rctx.RoutePattern()))
			}
			if adminID := logging.AdminID(r.Context()); adminID != "" {
				attrs = append(attrs, slog.String("admin_id", adminID))
			}
			if rec.wroteBytes > 0 {
				attrs = append(attrs, slog.Int("response_bytes", rec.wroteBytes))
			}

			level := slog.LevelInfo
			if rec.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			slog.LogAttrs(r.Context(), level, "access", attrs...)
		})
	}
}
