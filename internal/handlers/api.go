// Package handlers exposes the admin services over HTTP using the uniform
// {status, message, data} envelope.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/api"
	"github.com/boostmysites25/zippty-backend/internal/auth"
	"github.com/boostmysites25/zippty-backend/internal/service"
	"github.com/boostmysites25/zippty-backend/internal/service/admin"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var (
	errEmptyBody = errors.New("empty body")
	validate     = validator.New(validator.WithRequiredStructEnabled())
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// API holds the services behind each admin route.
type API struct {
	Auth      *service.AuthService
	Dashboard *service.DashboardService
	Profile   *admin.ProfileService
	Users     *admin.UsersService
	Store     Pinger

	// ServerName and StartedAt are reported to signed-in admins on /api/health.
	ServerName string
	StartedAt  time.Time
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, api.Envelope{Status: true, Message: message, Data: data})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.Envelope{Status: false, Message: message})
}

// writeServiceError maps err onto the envelope. Anything that is not a
// *service.Error is logged and answered with 500 and the endpoint's fallback
// message, so storage details never reach the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var se *service.Error
	if errors.As(err, &se) {
		writeFail(w, se.Status, se.Message)
		return
	}
	slog.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeFail(w, http.StatusInternalServerError, fallback)
}

// decodeJSON reads a single JSON object from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, service.ValidationError(name + " must be an integer")
	}
	return n, nil
}

// principal returns the admin bound by the auth middleware.
func principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok || p.ID == "" {
		writeFail(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return auth.Principal{}, false
	}
	return p, true
}
