package auth

import (
	"context"
)

// Principal is the admin identity attached to an authenticated request.
type Principal struct {
	ID      string `json:"adminId"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type contextKey int

const principalContextKey contextKey = 1

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	return p, ok
}
