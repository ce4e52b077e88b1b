package middleware

import (
	"log/slog"
	"net/http"

	"github.com/boostmysites25/zippty-backend/internal/auth"
	"github.com/boostmysites25/zippty-backend/internal/logging"
	"github.com/boostmysites25/zippty-backend/internal/metrics"
)

// AuthMode selects how AdminAuth treats requests that fail authentication.
type AuthMode int

const (
	// RequireAdmin rejects the request.
	RequireAdmin AuthMode = iota
	// OptionalAdmin lets the request through without a principal.
	OptionalAdmin
)

func (m AuthMode) String() string {
	if m == OptionalAdmin {
		return "optional"
	}
	return "required"
}

type rejection struct {
	status  int
	message string
}

var rejections = map[auth.Outcome]rejection{
	auth.OutcomeNoToken:          {http.StatusUnauthorized, "Access denied. No token provided."},
	auth.OutcomeInvalidToken:     {http.StatusUnauthorized, "Invalid token."},
	auth.OutcomeExpired:          {http.StatusUnauthorized, "Token expired."},
	auth.OutcomeRevoked:          {http.StatusUnauthorized, "Token revoked."},
	auth.OutcomeForbidden:        {http.StatusForbidden, "Access denied. Admin privileges required."},
	auth.OutcomeUnknownPrincipal: {http.StatusUnauthorized, "Invalid token. Admin not found."},
	auth.OutcomeLookupFailed:     {http.StatusInternalServerError, "Internal server error."},
}

// AdminAuth authenticates the bearer token and binds the admin principal to
// the request context. In RequireAdmin mode every failure ends the request; in
// OptionalAdmin mode failures are logged and the request continues anonymously.
func AdminAuth(a *auth.Authenticator, mode AuthMode, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := authenticate(a, r)
			m.RecordAuthOutcome(mode.String(), res.Outcome.String())

			if res.OK() {
				ctx := auth.WithPrincipal(r.Context(), res.Principal)
				ctx = logging.WithAdminID(ctx, res.Principal.ID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if mode == OptionalAdmin {
				if res.Outcome != auth.OutcomeNoToken {
					slog.DebugContext(r.Context(), "optional admin auth skipped",
						slog.String("outcome", res.Outcome.String()),
						slog.String("path", r.URL.Path),
						slog.Any("error", res.Err),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			rej, ok := rejections[res.Outcome]
			if !ok {
				rej = rejection{http.StatusUnauthorized, "Invalid token."}
			}
			logUnauthorized(r, res)
			writeEnvelope(w, rej.status, rej.message)
		})
	}
}

func authenticate(a *auth.Authenticator, r *http.Request) auth.Result {
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return auth.Result{Outcome: auth.OutcomeInvalidToken, Err: auth.ErrMalformedToken}
	}
	return a.Authenticate(r.Context(), token)
}

func logUnauthorized(r *http.Request, res auth.Result) {
	attrs := []any{
		slog.String("reason", res.Outcome.String()),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.String("remote", r.RemoteAddr),
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, slog.String("user_agent", ua))
	}
	if res.Err != nil {
		attrs = append(attrs, slog.String("error", res.Err.Error()))
	}
	level := slog.LevelWarn
	if res.Outcome == auth.OutcomeLookupFailed {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "admin request rejected", attrs...)
}
