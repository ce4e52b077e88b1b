package auth

import (
	"context"
	"errors"
	"strings"
)

// Outcome classifies the result of authenticating a request.
type Outcome int

const (
	OutcomeAuthenticated Outcome = iota
	OutcomeNoToken
	OutcomeInvalidToken
	OutcomeExpired
	OutcomeRevoked
	OutcomeForbidden
	OutcomeUnknownPrincipal
	OutcomeLookupFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeNoToken:
		return "no_token"
	case OutcomeInvalidToken:
		return "invalid_token"
	case OutcomeExpired:
		return "expired"
	case OutcomeRevoked:
		return "revoked"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeUnknownPrincipal:
		return "unknown_principal"
	case OutcomeLookupFailed:
		return "lookup_failed"
	default:
		return "unknown"
	}
}

// Result is the discriminated outcome of Authenticate. Principal is set only
// when Outcome is OutcomeAuthenticated; Err carries the underlying cause otherwise.
type Result struct {
	Outcome   Outcome
	Principal Principal
	Err       error
}

func (r Result) OK() bool {
	return r.Outcome == OutcomeAuthenticated
}

// AdminLookup reports whether an admin record still exists.
type AdminLookup interface {
	AdminExists(ctx context.Context, adminID string) (bool, error)
}

// Authenticator turns a bearer token into an admin principal.
type Authenticator struct {
	tokens *TokenManager
	admins AdminLookup
}

func NewAuthenticator(tokens *TokenManager, admins AdminLookup) *Authenticator {
	return &Authenticator{tokens: tokens, admins: admins}
}

// Authenticate verifies the token and confirms the encoded admin still exists.
// The storage lookup runs only after the signature has been verified.
func (a *Authenticator) Authenticate(ctx context.Context, token string) Result {
	if strings.TrimSpace(token) == "" {
		return Result{Outcome: OutcomeNoToken}
	}

	claims, err := a.tokens.Parse(ctx, token)
	switch {
	case err == nil:
	case errors.Is(err, ErrTokenExpired):
		return Result{Outcome: OutcomeExpired, Err: err}
	case errors.Is(err, ErrTokenRevoked):
		return Result{Outcome: OutcomeRevoked, Err: err}
	default:
		return Result{Outcome: OutcomeInvalidToken, Err: err}
	}

	if !claims.IsAdmin || claims.AdminID == "" {
		return Result{Outcome: OutcomeForbidden, Err: errors.New("token lacks admin privilege")}
	}

	exists, err := a.admins.AdminExists(ctx, claims.AdminID)
	if err != nil {
		return Result{Outcome: OutcomeLookupFailed, Err: err}
	}
	if !exists {
		return Result{Outcome: OutcomeUnknownPrincipal, Err: errors.New("admin not found")}
	}

	return Result{
		Outcome: OutcomeAuthenticated,
		Principal: Principal{
			ID:      claims.AdminID,
			Email:   claims.Email,
			IsAdmin: claims.IsAdmin,
		},
	}
}

// BearerToken extracts the token from an Authorization header value.
// ok is false when the header is present but does not use the Bearer scheme.
func BearerToken(header string) (token string, ok bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", true
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), true
}
