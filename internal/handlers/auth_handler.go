package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wanderhub/auth-service/internal/apperrors"
	"github.com/wanderhub/auth-service/internal/middleware"
	"github.com/wanderhub/auth-service/internal/models"
)

// refreshCookieName is the cookie carrying the refresh token
const refreshCookieName = "refreshToken"

// AuthService is the interface that wraps methods for authentication business logic
type AuthService interface {
	// Register validates the request, creates the account and logs it in.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.Session, error)
	// Login authenticates by email and password.
	Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error)
	// Refresh exchanges a refresh token for a new session.
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
	// Logout clears the user's refresh token slot.
	Logout(ctx context.Context, userID int) error
	// CurrentUser returns the account behind an authenticated request.
	CurrentUser(ctx context.Context, userID int) (*models.User, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService  AuthService
	isProduction bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger, isProduction bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		authService:  authService,
		isProduction: isProduction,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me", h.Me)
			r.Post("/logout", h.Logout)
		})
	})
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Register a new account and log it in immediately. The refresh token is set as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} map[string]any "User registered successfully"
// @Failure 400 {object} map[string]string "Invalid request body or duplicate email/username"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken)

	h.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": "user registered successfully",
		"token":   session.AccessToken,
		"user":    session.User,
	})
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticate with email and password. The refresh token is set as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} map[string]any "Login successful"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 403 {object} map[string]string "Account disabled"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken)

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"token": session.AccessToken,
		"user":  session.User,
	})
}

// RefreshRequest represents a token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /auth/refresh
// @Summary Refresh access token
// @Description Exchange the refresh token cookie (or request body) for a new token pair. The rotated refresh token replaces the cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token request (optional if using cookie)"
// @Success 200 {object} map[string]any "Tokens refreshed successfully"
// @Failure 401 {object} map[string]string "Missing, invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	// Refresh token comes from the cookie, with a body fallback for
	// non-browser clients
	var refreshToken string
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		refreshToken = cookie.Value
	} else {
		var req RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	if refreshToken == "" {
		h.RespondError(w, http.StatusUnauthorized, apperrors.ErrTokenMissing.Error())
		return
	}

	session, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken)

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"token": session.AccessToken,
		"user":  session.User,
	})
}

// Me handles GET /auth/me
// @Summary Get current user
// @Description Return the account behind the presented access token
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]any "Current user"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Failure 404 {object} map[string]string "User no longer exists"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, apperrors.ErrTokenMissing.Error())
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout handles POST /auth/logout
// @Summary Logout user
// @Description Clear the stored refresh token and expire the cookie. Outstanding access tokens stay valid until expiry.
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string "Logged out successfully"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, apperrors.ErrTokenMissing.Error())
		return
	}

	if err := h.authService.Logout(r.Context(), identity.UserID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.clearRefreshCookie(w)

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// setRefreshCookie stores the refresh token as an HTTP-only cookie (7 days)
func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   604800, // 7 days
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie expires the refresh token cookie
func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteStrictMode,
	})
}
