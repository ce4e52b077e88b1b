package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller's address for rate limiting, deny lists and logs.
//
// With trustProxy the left-most parseable X-Forwarded-For entry wins, then
// X-Real-Ip. Anything that does not parse as an IP is ignored so a forged
// header cannot smuggle arbitrary strings into Redis keys.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
			if ip := parseIP(part); ip != "" {
				return ip
			}
		}
		if ip := parseIP(r.Header.Get("X-Real-Ip")); ip != "" {
			return ip
		}
	}

	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if ip := parseIP(addr); ip != "" {
		return ip
	}
	return addr
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
