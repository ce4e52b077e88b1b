package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/auth"
)

type healthDetail struct {
	Server string `json:"server"`
	Uptime string `json:"uptime"`
}

// GetHealth pings the store. Signed-in admins also get server details; anyone
// else gets the bare status.
func (h API) GetHealth(w http.ResponseWriter, r *http.Request) {
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			slog.WarnContext(r.Context(), "health check failed", slog.String("error", err.Error()))
			writeFail(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	}

	var detail any
	if _, ok := auth.PrincipalFromContext(r.Context()); ok {
		d := healthDetail{Server: h.ServerName}
		if !h.StartedAt.IsZero() {
			d.Uptime = time.Since(h.StartedAt).Round(time.Second).String()
		}
		detail = d
	}
	writeOK(w, "OK", detail)
}
