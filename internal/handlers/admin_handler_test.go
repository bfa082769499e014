package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wanderhub/auth-service/internal/apperrors"
	"github.com/wanderhub/auth-service/internal/models"
)

// mockAdminService is a mock implementation of AdminService
type mockAdminService struct {
	users       []*models.User
	user        *models.User
	events      []*models.LoginEvent
	err         error
	disabledArg *bool
	roleArg     *models.Role
	userIDArg   int
	limitArg    int
}

func (m *mockAdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users, nil
}

func (m *mockAdminService) SetUserDisabled(ctx context.Context, userID int, disabled bool) (*models.User, error) {
	m.userIDArg = userID
	m.disabledArg = &disabled
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockAdminService) SetUserRole(ctx context.Context, userID int, role models.Role) (*models.User, error) {
	m.userIDArg = userID
	m.roleArg = &role
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockAdminService) ListUserLoginEvents(ctx context.Context, userID int, limit int) ([]*models.LoginEvent, error) {
	m.userIDArg = userID
	m.limitArg = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

func newAdminRouter(svc AdminService) chi.Router {
	logger, _ := zap.NewDevelopment()
	handler := NewAdminHandler(svc, logger)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestAdminHandler_ListUsers(t *testing.T) {
	svc := &mockAdminService{users: []*models.User{
		{ID: 1, Username: "traveler"},
		{ID: 2, Username: "bob"},
	}}
	router := newAdminRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string][]map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp["users"], 2)
}

func TestAdminHandler_SetStatus(t *testing.T) {
	t.Run("disable user", func(t *testing.T) {
		svc := &mockAdminService{user: &models.User{ID: 2, Disabled: true}}
		router := newAdminRouter(svc)

		req := httptest.NewRequest(http.MethodPatch, "/admin/users/2/status", strings.NewReader(`{"disabled":true}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 2, svc.userIDArg)
		require.NotNil(t, svc.disabledArg)
		assert.True(t, *svc.disabledArg)
	})

	t.Run("invalid user id", func(t *testing.T) {
		router := newAdminRouter(&mockAdminService{})

		req := httptest.NewRequest(http.MethodPatch, "/admin/users/abc/status", strings.NewReader(`{"disabled":true}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid user id")
	})

	t.Run("unknown user", func(t *testing.T) {
		router := newAdminRouter(&mockAdminService{err: apperrors.ErrUserNotFound})

		req := httptest.NewRequest(http.MethodPatch, "/admin/users/42/status", strings.NewReader(`{"disabled":true}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAdminHandler_SetRole(t *testing.T) {
	t.Run("promote to admin", func(t *testing.T) {
		svc := &mockAdminService{user: &models.User{ID: 2, Role: models.RoleAdmin}}
		router := newAdminRouter(svc)

		req := httptest.NewRequest(http.MethodPatch, "/admin/users/2/role", strings.NewReader(`{"role":"admin"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, svc.roleArg)
		assert.Equal(t, models.RoleAdmin, *svc.roleArg)
	})

	t.Run("invalid role", func(t *testing.T) {
		router := newAdminRouter(&mockAdminService{err: apperrors.NewValidationError("role", "invalid role")})

		req := httptest.NewRequest(http.MethodPatch, "/admin/users/2/role", strings.NewReader(`{"role":"superuser"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid role")
	})
}

func TestAdminHandler_ListLoginEvents(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		svc := &mockAdminService{events: []*models.LoginEvent{
			{ID: 2, UserID: 1, Action: "login"},
			{ID: 1, UserID: 1, Action: "register"},
		}}
		router := newAdminRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/admin/users/1/logins", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, svc.userIDArg)
		assert.Equal(t, defaultLoginEventLimit, svc.limitArg)

		var resp map[string][]map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp["events"], 2)
		assert.Equal(t, "login", resp["events"][0]["action"])
	})

	t.Run("explicit limit", func(t *testing.T) {
		svc := &mockAdminService{}
		router := newAdminRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/admin/users/1/logins?limit=5", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 5, svc.limitArg)
	})

	t.Run("invalid limit", func(t *testing.T) {
		router := newAdminRouter(&mockAdminService{})

		req := httptest.NewRequest(http.MethodGet, "/admin/users/1/logins?limit=zero", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid limit")
	})

	t.Run("unknown user", func(t *testing.T) {
		router := newAdminRouter(&mockAdminService{err: apperrors.ErrUserNotFound})

		req := httptest.NewRequest(http.MethodGet, "/admin/users/42/logins", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
