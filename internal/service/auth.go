package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/auth"
	"github.com/boostmysites25/zippty-backend/internal/logging"
	"github.com/boostmysites25/zippty-backend/internal/metrics"
	"github.com/boostmysites25/zippty-backend/internal/repository"
)

const msgInvalidCredentials = "Invalid credentials"

// AdminCredentialStore looks up admins for login.
type AdminCredentialStore interface {
	FindAdminByEmail(ctx context.Context, email string) (repository.Admin, error)
}

type AuthService struct {
	admins  AdminCredentialStore
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
}

func NewAuthService(admins AdminCredentialStore, tokens *auth.TokenManager, m *metrics.Metrics) *AuthService {
	return &AuthService{admins: admins, tokens: tokens, metrics: m}
}

type LoginResult struct {
	Admin     repository.Admin `json:"admin"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// Login verifies the admin's credentials and issues a token. An unknown email
// and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = auth.NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, ValidationError("Email and password are required")
	}

	admin, err := s.admins.FindAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.loginFailed(ctx, "unknown_email")
			return LoginResult{}, Unauthorized(msgInvalidCredentials)
		}
		return LoginResult{}, err
	}

	ok, err := auth.ComparePassword(admin.Password, password)
	if err != nil {
		slog.ErrorContext(ctx, "admin password hash unreadable", "admin_id", admin.ID.Hex(), "error", err)
	}
	if !ok {
		s.loginFailed(ctx, "bad_password", slog.String("admin_id", admin.ID.Hex()))
		return LoginResult{}, Unauthorized(msgInvalidCredentials)
	}

	token, exp, err := s.tokens.Issue(auth.Principal{ID: admin.ID.Hex(), Email: admin.Email, IsAdmin: true})
	if err != nil {
		return LoginResult{}, err
	}

	s.metrics.RecordLogin("success")
	logging.Audit(ctx, "admin.login", "success", slog.String("admin_id", admin.ID.Hex()))
	return LoginResult{Admin: admin.Sanitized(), Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, reason string, attrs ...slog.Attr) {
	s.metrics.RecordLogin("fail")
	logging.Audit(ctx, "admin.login", "fail", append(attrs, slog.String("reason", reason))...)
}
