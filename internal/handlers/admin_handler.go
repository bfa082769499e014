package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wanderhub/auth-service/internal/models"
)

// AdminService is the interface that wraps methods for account administration
type AdminService interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	SetUserDisabled(ctx context.Context, userID int, disabled bool) (*models.User, error)
	SetUserRole(ctx context.Context, userID int, role models.Role) (*models.User, error)
	ListUserLoginEvents(ctx context.Context, userID int, limit int) ([]*models.LoginEvent, error)
}

// defaultLoginEventLimit caps the telemetry read when no limit is given
const defaultLoginEventLimit = 20

// AdminHandler handles admin HTTP requests
type AdminHandler struct {
	BaseHandler
	adminService AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		adminService: adminService,
	}
}

// RegisterRoutes registers all admin handler routes
// Note: This assumes the router is already scoped to /api/v1 and protected
// by the auth and admin-role middleware
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Patch("/{id}/status", h.SetStatus)
		r.Patch("/{id}/role", h.SetRole)
		r.Get("/{id}/logins", h.ListLoginEvents)
	})
}

// ListUsers handles GET /admin/users
// @Summary List all users
// @Description Return all user accounts, newest first
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]any "All users"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Failure 403 {object} map[string]string "Caller is not an admin"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// SetStatusRequest represents a status change request body
type SetStatusRequest struct {
	Disabled bool `json:"disabled"`
}

// SetStatus handles PATCH /admin/users/{id}/status
// @Summary Enable or disable a user account
// @Description Set the disabled flag on an account. Disabling also revokes the stored refresh token.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Param request body SetStatusRequest true "Status change request"
// @Success 200 {object} map[string]any "Updated user"
// @Failure 400 {object} map[string]string "Invalid user ID or request body"
// @Failure 404 {object} map[string]string "User not found"
// @Router /admin/users/{id}/status [patch]
func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.adminService.SetUserDisabled(r.Context(), userID, req.Disabled)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// SetRoleRequest represents a role change request body
type SetRoleRequest struct {
	Role models.Role `json:"role"`
}

// SetRole handles PATCH /admin/users/{id}/role
// @Summary Change a user's role
// @Description Set the account role to one of the known roles
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Param request body SetRoleRequest true "Role change request"
// @Success 200 {object} map[string]any "Updated user"
// @Failure 400 {object} map[string]string "Invalid user ID, request body or role"
// @Failure 404 {object} map[string]string "User not found"
// @Router /admin/users/{id}/role [patch]
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.adminService.SetUserRole(r.Context(), userID, req.Role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// ListLoginEvents handles GET /admin/users/{id}/logins
// @Summary List a user's login activity
// @Description Return the user's most recent registration and login events, newest first
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Param limit query int false "Maximum number of events (default 20)"
// @Success 200 {object} map[string]any "Login events"
// @Failure 400 {object} map[string]string "Invalid user ID or limit"
// @Failure 404 {object} map[string]string "User not found"
// @Router /admin/users/{id}/logins [get]
func (h *AdminHandler) ListLoginEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	limit := defaultLoginEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			h.RespondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	events, err := h.adminService.ListUserLoginEvents(r.Context(), userID, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"events": events})
}
