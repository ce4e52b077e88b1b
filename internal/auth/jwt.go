package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenRevoked   = errors.New("token revoked")
)

const revokeKeyPrefix = "token:revoke:admin:"

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
	now    func() time.Time
}

// Claims is the signed admin identity payload.
type Claims struct {
	AdminID string `json:"adminId"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: secret, ttl: ttl, now: time.Now}
}

// SetRedis sets the Redis client for token revocation functionality
func (m *TokenManager) SetRedis(rdb *redis.Client) {
	m.redis = rdb
}

// SetClock overrides the issuance clock.
func (m *TokenManager) SetClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for the given admin principal.
func (m *TokenManager) Issue(p Principal) (token string, expiresAt time.Time, err error) {
	now := m.now().UTC()
	exp := now.Add(m.ttl)
	claims := Claims{
		AdminID: p.ID,
		Email:   p.Email,
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifies signature and expiry and returns the decoded claims.
// It does not check the admin flag; see Authenticator.
func (m *TokenManager) Parse(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMalformedToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrMalformedToken
	}
	if !parsed.Valid {
		return nil, ErrMalformedToken
	}

	if m.revoked(ctx, claims) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// RevokeAdminTokens invalidates every token issued to the admin before now.
// Without Redis this is a no-op and tokens expire naturally.
func (m *TokenManager) RevokeAdminTokens(ctx context.Context, adminID string) error {
	if m.redis == nil {
		return nil
	}
	// Tokens older than ttl are expired anyway, so the marker can expire with them.
	return m.redis.Set(ctx, revokeKeyPrefix+adminID, m.now().UTC().Format(time.RFC3339), m.ttl).Err()
}

func (m *TokenManager) revoked(ctx context.Context, claims *Claims) bool {
	if m.redis == nil || claims.IssuedAt == nil || claims.AdminID == "" {
		return false
	}
	revokedAfter, err := m.redis.Get(ctx, revokeKeyPrefix+claims.AdminID).Result()
	if err != nil || revokedAfter == "" {
		return false
	}
	revokedTime, err := time.Parse(time.RFC3339, revokedAfter)
	if err != nil {
		return false
	}
	return claims.IssuedAt.Time.Before(revokedTime)
}
