package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/boostmysites25/zippty-backend/internal/api"

	"github.com/getkin/kin-openapi/openapi3filter"
)

// RequestValidation rejects requests whose parameters or body do not match the
// OpenAPI document. Routes the document does not describe pass through.
func RequestValidation(v *api.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if v == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := v.ValidateRequest(r)
			if err == nil || errors.Is(err, api.ErrUnknownRoute) {
				next.ServeHTTP(w, r)
				return
			}
			slog.InfoContext(r.Context(), "request failed validation",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			writeEnvelope(w, http.StatusBadRequest, validationMessage(err))
		})
	}
}

func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return "Invalid request"
	}
	switch {
	case reqErr.Parameter != nil:
		return fmt.Sprintf("Invalid %s parameter %q", reqErr.Parameter.In, reqErr.Parameter.Name)
	case reqErr.RequestBody != nil:
		return "Invalid request body"
	default:
		return "Invalid request"
	}
}
