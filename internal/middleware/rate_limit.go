package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimitOptions struct {
	TrustProxy bool
	Now        func() time.Time
}

type rateRule struct {
	routeKey string
	limit    int64
	window   time.Duration
}

var incrExpireScript = redis.NewScript(`
local v = redis.call('INCR', KEYS[1])
if v == 1 then
  redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {v, ttl}
`)

var rateRules = []rateRule{
	// Login: strict, per-IP.
	{routeKey: "admin_login", limit: 10, window: 1 * time.Minute},
	{routeKey: "admin_login", limit: 100, window: 24 * time.Hour},
	// Everything else under /api/admin: per-IP, loose.
	{routeKey: "admin_api", limit: 300, window: 1 * time.Minute},
}

// RateLimit applies Redis-backed fixed-window rate limiting per client IP.
// If Redis is unavailable (rdb == nil), it becomes a no-op.
func RateLimit(rdb *redis.Client, opt RateLimitOptions) func(http.Handler) http.Handler {
	if opt.Now == nil {
		opt.Now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rdb == nil {
				next.ServeHTTP(w, r)
				return
			}

			route := classifyRoute(r)
			if route == "" || route == "health" {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r, opt.TrustProxy)
			if strings.TrimSpace(ip) == "" {
				// Cannot identify; fail open to avoid accidental lockouts.
				next.ServeHTTP(w, r)
				return
			}
			now := opt.Now()

			for _, rr := range rateRules {
				if rr.routeKey != route {
					continue
				}
				count, ttl, resetUnix, err := hitFixedWindow(r.Context(), rdb, rr.routeKey, "ip:"+ip, rr.window, now)
				if err != nil {
					// Redis error: fail open.
					continue
				}
				remaining := rr.limit - count
				if remaining < 0 {
					remaining = 0
				}

				w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rr.limit, 10))
				w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetUnix, 10))

				if count > rr.limit {
					retryAfter := ttl
					if retryAfter <= 0 {
						retryAfter = int64(rr.window.Seconds())
					}
					w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
					writeEnvelope(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hitFixedWindow(ctx context.Context, rdb *redis.Client, routeKey string, subject string, window time.Duration, now time.Time) (count int64, ttlSeconds int64, resetUnix int64, err error) {
	windowSeconds := int64(window.Seconds())
	if windowSeconds <= 0 {
		return 0, 0, 0, nil
	}

	start := (now.Unix() / windowSeconds) * windowSeconds
	resetUnix = start + windowSeconds
	key := "rl:" + routeKey + ":" + subject + ":" + strconv.FormatInt(windowSeconds, 10) + ":" + strconv.FormatInt(start, 10)

	// Keep this fast; do not let Redis stalls block the API.
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()

	res, err := incrExpireScript.Run(ctx, rdb, []string{key}, windowSeconds).Result()
	if err != nil {
		return 0, 0, resetUnix, err
	}

	arr, ok := res.([]any)
	if !ok || len(arr) < 2 {
		return 0, 0, resetUnix, nil
	}
	if v, ok := arr[0].(int64); ok {
		count = v
	}
	if v, ok := arr[1].(int64); ok {
		ttlSeconds = v
	}
	return count, ttlSeconds, resetUnix, nil
}

// classifyRoute maps request paths to stable route keys for rate limiting and
// access control.
func classifyRoute(r *http.Request) string {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case r.Method == http.MethodGet && path == "/api/health":
		return "health"
	case r.Method == http.MethodPost && path == "/api/admin/login":
		return "admin_login"
	case strings.HasPrefix(path, "/api/admin/"):
		return "admin_api"
	default:
		return ""
	}
}
