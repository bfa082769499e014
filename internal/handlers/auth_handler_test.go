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
	"github.com/wanderhub/auth-service/internal/middleware"
	"github.com/wanderhub/auth-service/internal/models"
)

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	session    *models.Session
	user       *models.User
	err        error
	logoutErr  error
	loggedOut  bool
	refreshGot string
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	m.refreshGot = refreshToken
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockAuthService) Logout(ctx context.Context, userID int) error {
	if m.logoutErr != nil {
		return m.logoutErr
	}
	m.loggedOut = true
	return nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func testSession() *models.Session {
	return &models.Session{
		AccessToken:  "access.token.value",
		RefreshToken: "refresh.token.value",
		User:         &models.User{ID: 1, Username: "traveler", Email: "traveler@example.com", Role: models.RoleUser},
	}
}

// passthroughAuth stands in for the auth middleware in routing tests
func passthroughAuth(next http.Handler) http.Handler {
	return next
}

func newAuthRouter(svc AuthService) chi.Router {
	logger, _ := zap.NewDevelopment()
	handler := NewAuthHandler(svc, logger, false)

	r := chi.NewRouter()
	handler.RegisterRoutes(r, passthroughAuth)
	return r
}

func refreshCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == refreshCookieName {
			return cookie
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockAuthService{session: testSession()}
		router := newAuthRouter(svc)

		body := `{"username":"traveler","email":"traveler@example.com","password":"secret123","firstName":"Alice","lastName":"Nguyen"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "user registered successfully", resp["message"])
		assert.Equal(t, "access.token.value", resp["token"])

		user, ok := resp["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "traveler", user["username"])

		cookie := refreshCookie(t, rr)
		require.NotNil(t, cookie)
		assert.Equal(t, "refresh.token.value", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	})

	t.Run("invalid body", func(t *testing.T) {
		router := newAuthRouter(&mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid request body")
	})

	t.Run("duplicate email", func(t *testing.T) {
		router := newAuthRouter(&mockAuthService{err: apperrors.ErrEmailTaken})

		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "email is already registered")
	})

	t.Run("validation error", func(t *testing.T) {
		router := newAuthRouter(&mockAuthService{err: apperrors.NewValidationError("username", "username must be at least 3 characters long")})

		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "username must be at least 3 characters long")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockAuthService{session: testSession()}
		router := newAuthRouter(svc)

		body := `{"email":"traveler@example.com","password":"secret123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "access.token.value", resp["token"])
		assert.NotContains(t, resp, "message")

		cookie := refreshCookie(t, rr)
		require.NotNil(t, cookie)
		assert.Equal(t, "refresh.token.value", cookie.Value)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		router := newAuthRouter(&mockAuthService{err: apperrors.ErrInvalidCredentials})

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid credentials")
	})

	t.Run("disabled account", func(t *testing.T) {
		router := newAuthRouter(&mockAuthService{err: apperrors.ErrAccountDisabled})

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "your account has been disabled")
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("token from cookie", func(t *testing.T) {
		svc := &mockAuthService{session: testSession()}
		router := newAuthRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "cookie.refresh.token"})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "cookie.refresh.token", svc.refreshGot)

		// Rotated token replaces the cookie
		cookie := refreshCookie(t, rr)
		require.NotNil(t, cookie)
		assert.Equal(t, "refresh.token.value", cookie.Value)
	})

	t.Run("token from body", func(t *testing.T) {
		svc := &mockAuthService{session: testSession()}
		router := newAuthRouter(svc)

		body := `{"refreshToken":"body.refresh.token"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "body.refresh.token", svc.refreshGot)
	})

	t.Run("missing token", func(t *testing.T) {
		router := newAuthRouter(&mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "access denied, no token provided")
	})

	t.Run("invalid token", func(t *testing.T) {
		router := newAuthRouter(&mockAuthService{err: apperrors.ErrTokenInvalid})

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "stale.token"})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid token")
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	// Middleware stand-in that injects an identity, mirroring a valid token
	withIdentity := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithIdentity(r.Context(), middleware.Identity{UserID: 1, Role: models.RoleUser})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	t.Run("success clears cookie", func(t *testing.T) {
		svc := &mockAuthService{}
		handler := NewAuthHandler(svc, logger, false)

		r := chi.NewRouter()
		handler.RegisterRoutes(r, withIdentity)

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, svc.loggedOut)
		assert.Contains(t, rr.Body.String(), "logged out successfully")

		cookie := refreshCookie(t, rr)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Less(t, cookie.MaxAge, 0)
	})

	t.Run("no identity", func(t *testing.T) {
		svc := &mockAuthService{}
		handler := NewAuthHandler(svc, logger, false)

		r := chi.NewRouter()
		handler.RegisterRoutes(r, passthroughAuth)

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, svc.loggedOut)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	withIdentity := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithIdentity(r.Context(), middleware.Identity{UserID: 1, Role: models.RoleUser})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	t.Run("success", func(t *testing.T) {
		svc := &mockAuthService{user: &models.User{ID: 1, Username: "traveler"}}
		handler := NewAuthHandler(svc, logger, false)

		r := chi.NewRouter()
		handler.RegisterRoutes(r, withIdentity)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		user, ok := resp["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "traveler", user["username"])
	})

	t.Run("user vanished", func(t *testing.T) {
		svc := &mockAuthService{err: apperrors.ErrUserNotFound}
		handler := NewAuthHandler(svc, logger, false)

		r := chi.NewRouter()
		handler.RegisterRoutes(r, withIdentity)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
