package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/boostmysites25/zippty-backend/internal/auth"
	"github.com/boostmysites25/zippty-backend/internal/logging"
	"github.com/boostmysites25/zippty-backend/internal/repository"
	"github.com/boostmysites25/zippty-backend/internal/service"

	"github.com/go-playground/validator/v10"
)

const msgAdminNotFound = "Admin not found"

// AdminStore is the persistence used by ProfileService.
type AdminStore interface {
	FindAdminByID(ctx context.Context, adminID string) (repository.Admin, error)
	UpdateAdminProfile(ctx context.Context, adminID string, set map[string]any) (repository.Admin, error)
	UpdateAdminPassword(ctx context.Context, adminID, hash string) error
}

// TokenRevoker invalidates tokens issued before now.
type TokenRevoker interface {
	RevokeAdminTokens(ctx context.Context, adminID string) error
}

// ProfileService handles the signed-in admin's own profile
type ProfileService struct {
	store      AdminStore
	tokens     TokenRevoker
	bcryptCost int
	validate   *validator.Validate
}

// NewProfileService creates a new ProfileService
func NewProfileService(store AdminStore, tokens TokenRevoker, bcryptCost int) *ProfileService {
	return &ProfileService{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		validate:   validator.New(),
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, adminID string) (repository.Admin, error) {
	admin, err := s.store.FindAdminByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Admin{}, service.NotFound(msgAdminNotFound)
		}
		return repository.Admin{}, err
	}
	return admin.Sanitized(), nil
}

// UpdateProfile applies every field present in patch in a single update.
func (s *ProfileService) UpdateProfile(ctx context.Context, adminID string, patch ProfilePatch) (repository.Admin, error) {
	if patch.Name.Set {
		patch.Name.Value = strings.TrimSpace(patch.Name.Value)
		if patch.Name.Value == "" {
			return repository.Admin{}, service.ValidationError("Name cannot be empty")
		}
	}
	if patch.Email.Set {
		patch.Email.Value = auth.NormalizeEmail(patch.Email.Value)
		if err := s.validate.Var(patch.Email.Value, "required,email"); err != nil {
			return repository.Admin{}, service.ValidationError("Invalid email address")
		}
	}
	if patch.Empty() {
		return s.GetProfile(ctx, adminID)
	}

	admin, err := s.store.UpdateAdminProfile(ctx, adminID, patch.Fields())
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return repository.Admin{}, service.NotFound(msgAdminNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return repository.Admin{}, service.Conflict("Email already in use")
	default:
		return repository.Admin{}, err
	}

	logging.Audit(ctx, "admin.profile.update", "success", slog.String("admin_id", adminID))
	return admin.Sanitized(), nil
}

// ChangePassword replaces the admin's password after verifying the current
// one, then revokes every token issued before the change.
func (s *ProfileService) ChangePassword(ctx context.Context, adminID, current, next string) error {
	if current == "" || next == "" {
		return service.ValidationError("Current password and new password are required")
	}
	if err := auth.ValidatePassword(next); err != nil {
		return service.ValidationError("New password must be at least 6 characters long")
	}

	admin, err := s.store.FindAdminByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.NotFound(msgAdminNotFound)
		}
		return err
	}

	ok, err := auth.ComparePassword(admin.Password, current)
	if err != nil {
		return err
	}
	if !ok {
		logging.Audit(ctx, "admin.password.change", "fail", slog.String("admin_id", adminID), slog.String("reason", "bad_current_password"))
		return service.ValidationError("Current password is incorrect")
	}

	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.store.UpdateAdminPassword(ctx, adminID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.NotFound(msgAdminNotFound)
		}
		return err
	}

	if s.tokens != nil {
		if err := s.tokens.RevokeAdminTokens(ctx, adminID); err != nil {
			slog.WarnContext(ctx, "token revocation failed after password change", "admin_id", adminID, "error", err)
		}
	}
	logging.Audit(ctx, "admin.password.change", "success", slog.String("admin_id", adminID))
	return nil
}
