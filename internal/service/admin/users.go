package admin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/analytics"
	"github.com/boostmysites25/zippty-backend/internal/logging"
	"github.com/boostmysites25/zippty-backend/internal/repository"
	"github.com/boostmysites25/zippty-backend/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgUserNotFound  = "User not found"
	userRecentOrders = 5
)

// UserStore is the persistence used by UsersService.
type UserStore interface {
	FindUserByID(ctx context.Context, userID primitive.ObjectID) (repository.User, error)
	OrderStatsForUser(ctx context.Context, userID primitive.ObjectID) (repository.OrderStats, error)
	RecentOrdersForUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]repository.OrderView, error)
	SetUserBlocked(ctx context.Context, userID primitive.ObjectID, blocked bool) (repository.User, error)
	CountUserOrders(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteUser(ctx context.Context, userID primitive.ObjectID) error
	UserStats(ctx context.Context, monthStart time.Time) (repository.UserStats, error)
}

// UsersService handles admin user management operations
type UsersService struct {
	store UserStore
	now   func() time.Time
}

// NewUsersService creates a new UsersService
func NewUsersService(store UserStore) *UsersService {
	return &UsersService{store: store, now: time.Now}
}

type UserDetail struct {
	User         repository.User        `json:"user"`
	OrderStats   repository.OrderStats  `json:"orderStats"`
	RecentOrders []repository.OrderView `json:"recentOrders"`
}

func (s *UsersService) GetUser(ctx context.Context, userID string) (UserDetail, error) {
	oid, err := parseUserID(userID)
	if err != nil {
		return UserDetail{}, err
	}

	user, err := s.store.FindUserByID(ctx, oid)
	if err != nil {
		return UserDetail{}, mapUserErr(err)
	}
	stats, err := s.store.OrderStatsForUser(ctx, oid)
	if err != nil {
		return UserDetail{}, err
	}
	orders, err := s.store.RecentOrdersForUser(ctx, oid, userRecentOrders)
	if err != nil {
		return UserDetail{}, err
	}
	if orders == nil {
		orders = []repository.OrderView{}
	}
	return UserDetail{User: user, OrderStats: stats, RecentOrders: orders}, nil
}

// SetBlocked blocks or unblocks a user.
func (s *UsersService) SetBlocked(ctx context.Context, userID string, blocked bool) (repository.User, error) {
	oid, err := parseUserID(userID)
	if err != nil {
		return repository.User{}, err
	}
	user, err := s.store.SetUserBlocked(ctx, oid, blocked)
	if err != nil {
		return repository.User{}, mapUserErr(err)
	}

	event := "admin.user.unblock"
	if blocked {
		event = "admin.user.block"
	}
	logging.Audit(ctx, event, "success", slog.String("user_id", userID))
	return user, nil
}

// DeleteUser removes a user that has never placed an order.
func (s *UsersService) DeleteUser(ctx context.Context, userID string) error {
	oid, err := parseUserID(userID)
	if err != nil {
		return err
	}
	if _, err := s.store.FindUserByID(ctx, oid); err != nil {
		return mapUserErr(err)
	}

	n, err := s.store.CountUserOrders(ctx, oid)
	if err != nil {
		return err
	}
	if n > 0 {
		logging.Audit(ctx, "admin.user.delete", "fail", slog.String("user_id", userID), slog.String("reason", "has_orders"))
		return service.Conflict("Cannot delete user with existing orders")
	}

	if err := s.store.DeleteUser(ctx, oid); err != nil {
		return mapUserErr(err)
	}
	logging.Audit(ctx, "admin.user.delete", "success", slog.String("user_id", userID))
	return nil
}

// Stats summarizes users; "this month" is the current UTC calendar month.
func (s *UsersService) Stats(ctx context.Context) (repository.UserStats, error) {
	stats, err := s.store.UserStats(ctx, analytics.MonthStart(s.now(), 0))
	if err != nil {
		return repository.UserStats{}, err
	}
	if stats.TopCustomers == nil {
		stats.TopCustomers = []repository.TopCustomer{}
	}
	return stats, nil
}

func parseUserID(id string) (primitive.ObjectID, error) {
	oid, err := repository.ParseID(id)
	if err != nil {
		return primitive.NilObjectID, service.ValidationError("Invalid user id")
	}
	return oid, nil
}

func mapUserErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return service.NotFound(msgUserNotFound)
	}
	return err
}
