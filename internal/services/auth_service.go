// Package services contains the business logic for authentication and
// account administration
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wanderhub/auth-service/internal/apperrors"
	"github.com/wanderhub/auth-service/internal/models"
	"github.com/wanderhub/auth-service/internal/token"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Create inserts a new user and sets its ID on success.
	Create(ctx context.Context, user *models.User) error
	// ExistsByEmail checks if a user with such email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ExistsByUsername checks if a user with such username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// GetByEmailWithPassword retrieves a user by email including the
	// password hash. Only the login path may use it.
	GetByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	// GetByID retrieves a user by ID without the password hash.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// UpdateRefreshToken stores the user's refresh token slot, nil clears it.
	UpdateRefreshToken(ctx context.Context, userID int, refreshToken *string) error
	// GetRefreshToken returns the stored refresh token, nil if the slot is empty.
	GetRefreshToken(ctx context.Context, userID int) (*string, error)
	// TouchLastActive updates the user's last activity timestamp.
	TouchLastActive(ctx context.Context, userID int) error
}

// LoginEventRepository records authentication events for analytics
type LoginEventRepository interface {
	Create(ctx context.Context, event *models.LoginEvent) error
}

// authService implements registration, login and session lifecycle
type authService struct {
	userRepo       UserRepository
	loginEventRepo LoginEventRepository
	tokenGenerator *token.Generator
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	loginEventRepo LoginEventRepository,
	tokenGenerator *token.Generator,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		loginEventRepo: loginEventRepo,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Register creates a new user account and logs it in immediately
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.Session, error) {
	normalizedUsername := strings.TrimSpace(req.Username)
	normalizedEmail := strings.TrimSpace(strings.ToLower(req.Email))

	// Fields are checked in a fixed order and the first failure wins, so
	// clients always see a deterministic message for the same bad input.
	if len(normalizedUsername) < 3 {
		return nil, apperrors.NewValidationError("username", "username must be at least 3 characters long")
	}
	if !emailRegex.MatchString(normalizedEmail) {
		return nil, apperrors.NewValidationError("email", "invalid email format")
	}
	if len(req.Password) < 6 {
		return nil, apperrors.NewValidationError("password", "password must be at least 6 characters long")
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, apperrors.NewValidationError("firstName", "first name is required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		return nil, apperrors.NewValidationError("lastName", "last name is required")
	}

	emailTaken, err := s.userRepo.ExistsByEmail(ctx, normalizedEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if emailTaken {
		return nil, apperrors.ErrEmailTaken
	}

	usernameTaken, err := s.userRepo.ExistsByUsername(ctx, normalizedUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if usernameTaken {
		return nil, apperrors.ErrUsernameTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     normalizedUsername,
		Email:        normalizedEmail,
		PasswordHash: string(passwordHash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         models.RoleUser, // Default role
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.recordLoginEvent(user.ID, "register")

	return s.issueSession(ctx, user)
}

// Login authenticates a user by email and password
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.userRepo.GetByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Same answer as a wrong password so callers cannot probe
			// which emails are registered
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	// Checked after the password so a disabled notice never leaks whether
	// the credentials were right
	if user.Disabled {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.userRepo.TouchLastActive(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last active", zap.Int("userId", user.ID), zap.Error(err))
	}

	s.recordLoginEvent(user.ID, "login")

	return s.issueSession(ctx, user)
}

// Refresh exchanges a valid refresh token for a new token pair. The incoming
// token must match the user's stored slot; a token that was rotated away or
// cleared by logout is rejected even when its signature is still valid.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	userID, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	stored, err := s.userRepo.GetRefreshToken(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	if stored == nil || *stored != refreshToken {
		return nil, apperrors.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	if user.Disabled {
		return nil, apperrors.ErrUnauthenticated
	}

	return s.issueSession(ctx, user)
}

// Logout clears the user's refresh token slot. Outstanding access tokens are
// stateless and stay valid until they expire.
func (s *authService) Logout(ctx context.Context, userID int) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, nil)
}

// CurrentUser returns the account behind an authenticated request
func (s *authService) CurrentUser(ctx context.Context, userID int) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// issueSession generates a token pair and stores the refresh token in the
// user's single slot, overwriting whatever was there. A login on a second
// device therefore invalidates the first device's refresh token.
func (s *authService) issueSession(ctx context.Context, user *models.User) (*models.Session, error) {
	accessToken, refreshToken, err := s.tokenGenerator.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.userRepo.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	user.PasswordHash = ""
	return &models.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// recordLoginEvent writes a telemetry row in a separate goroutine.
// Authentication must not fail or slow down because analytics is struggling,
// so errors are only logged.
func (s *authService) recordLoginEvent(userID int, action string) {
	go func() {
		ctx := context.Background()
		event := &models.LoginEvent{UserID: userID, Action: action}
		if err := s.loginEventRepo.Create(ctx, event); err != nil {
			s.logger.Warn("failed to record login event",
				zap.Int("userId", userID),
				zap.String("action", action),
				zap.Error(err),
			)
		}
	}()
}
