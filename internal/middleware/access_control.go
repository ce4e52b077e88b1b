package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type AccessControlOptions struct {
	TrustProxy bool
}

// AccessControl rejects requests from denied client IPs before any handler
// runs.
//
// Redis keys:
//   - deny:ip (SET) permanent IP bans
//   - deny:ip:{ip} (STRING with TTL) temporary IP bans
//   - deny:route:{route} (SET) of "ip:{ip}" or "*" for per-route bans
func AccessControl(rdb *redis.Client, opt AccessControlOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rdb == nil {
				next.ServeHTTP(w, r)
				return
			}

			route := classifyRoute(r)
			if route == "health" {
				next.ServeHTTP(w, r)
				return
			}
			ip := ClientIP(r, opt.TrustProxy)

			ctx, cancel := context.WithTimeout(r.Context(), 250*time.Millisecond)
			defer cancel()

			if denied(ctx, rdb, route, ip) {
				writeEnvelope(w, http.StatusForbidden, "Access denied.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// denied fails open on Redis errors.
func denied(ctx context.Context, rdb *redis.Client, route, ip string) bool {
	if ip != "" {
		if ok, err := rdb.SIsMember(ctx, "deny:ip", ip).Result(); err == nil && ok {
			return true
		}
		if v, err := rdb.Get(ctx, "deny:ip:"+ip).Result(); err == nil && strings.TrimSpace(v) != "" {
			return true
		}
	}
	if route == "" {
		return false
	}
	key := "deny:route:" + route
	if ok, err := rdb.SIsMember(ctx, key, "*").Result(); err == nil && ok {
		return true
	}
	if ip != "" {
		if ok, err := rdb.SIsMember(ctx, key, "ip:"+ip).Result(); err == nil && ok {
			return true
		}
	}
	return false
}
