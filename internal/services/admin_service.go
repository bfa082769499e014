package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/wanderhub/auth-service/internal/apperrors"
	"github.com/wanderhub/auth-service/internal/models"
)

// UserAdminRepository is the subset of user data access the admin service needs
type UserAdminRepository interface {
	GetAll(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, userID int) (*models.User, error)
	SetDisabled(ctx context.Context, userID int, disabled bool) error
	UpdateRole(ctx context.Context, userID int, role models.Role) error
	UpdateRefreshToken(ctx context.Context, userID int, refreshToken *string) error
}

// LoginEventReader reads recorded authentication events
type LoginEventReader interface {
	GetByUserID(ctx context.Context, userID int, limit int) ([]*models.LoginEvent, error)
}

// adminService implements account administration
type adminService struct {
	userRepo    UserAdminRepository
	loginEvents LoginEventReader
	logger      *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo UserAdminRepository, loginEvents LoginEventReader, logger *zap.Logger) *adminService {
	return &adminService{
		userRepo:    userRepo,
		loginEvents: loginEvents,
		logger:      logger,
	}
}

// ListUsers returns all user accounts
func (s *adminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.GetAll(ctx)
}

// SetUserDisabled enables or disables an account. Disabling also clears the
// refresh token slot so the session cannot be refreshed back to life;
// outstanding access tokens are caught by the auth middleware's user lookup.
func (s *adminService) SetUserDisabled(ctx context.Context, userID int, disabled bool) (*models.User, error) {
	if err := s.userRepo.SetDisabled(ctx, userID, disabled); err != nil {
		return nil, err
	}

	if disabled {
		if err := s.userRepo.UpdateRefreshToken(ctx, userID, nil); err != nil {
			s.logger.Warn("failed to clear refresh token for disabled user",
				zap.Int("userId", userID), zap.Error(err))
		}
	}

	return s.userRepo.GetByID(ctx, userID)
}

// SetUserRole changes an account's role
func (s *adminService) SetUserRole(ctx context.Context, userID int, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role", "invalid role")
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}

// ListUserLoginEvents returns a user's most recent authentication events,
// newest first
func (s *adminService) ListUserLoginEvents(ctx context.Context, userID int, limit int) ([]*models.LoginEvent, error) {
	// The events table has no row for users that never logged in, so the
	// user lookup is what distinguishes "no activity" from "no such user"
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	return s.loginEvents.GetByUserID(ctx, userID, limit)
}
