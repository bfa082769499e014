package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/wanderhub/auth-service/internal/apperrors"
	"github.com/wanderhub/auth-service/internal/models"
	"github.com/wanderhub/auth-service/internal/token"
)

const identityKey contextKey = "identity"

// Identity is the authenticated caller bound to the request context
type Identity struct {
	UserID int
	Role   models.Role
}

// UserStore is the subset of the user repository the auth middleware needs
// to confirm that the token subject still exists and is active
type UserStore interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// AuthMiddleware validates the bearer access token, re-fetches the user and
// binds the caller's identity to the request context. Requests without a
// valid token belonging to an active account are rejected with 401.
func AuthMiddleware(tokenGenerator *token.Generator, users UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				unauthorized(w, apperrors.ErrTokenMissing.Error())
				return
			}

			userID, _, err := tokenGenerator.ValidateAccessToken(tokenString)
			if err != nil {
				if errors.Is(err, apperrors.ErrTokenExpired) {
					unauthorized(w, apperrors.ErrTokenExpired.Error())
					return
				}
				unauthorized(w, apperrors.ErrTokenInvalid.Error())
				return
			}

			// The token may outlive the account: confirm the user still
			// exists and has not been disabled since issuance. The role is
			// taken from the database, not the token, so role changes take
			// effect without waiting for the token to expire.
			user, err := users.GetByID(r.Context(), userID)
			if err != nil || user == nil || user.Disabled {
				unauthorized(w, apperrors.ErrUnauthenticated.Error())
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: user.ID, Role: user.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware binds the caller's identity when a valid token for
// an active account is presented, and otherwise lets the request through
// anonymously. It never rejects a request.
func OptionalAuthMiddleware(tokenGenerator *token.Generator, users UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, _, err := tokenGenerator.ValidateAccessToken(tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil || user == nil || user.Disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: user.ID, Role: user.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles restricts a route to callers whose role is in the allowed
// set. It runs after AuthMiddleware; a request with no identity in context
// is a gate failure like a wrong role and gets the same 403.
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if ok {
				for _, role := range roles {
					if identity.Role == role {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			forbidden(w, apperrors.ErrForbidden.Error())
		})
	}
}

// AdminOnly restricts a route to administrators
func AdminOnly() func(http.Handler) http.Handler {
	return RequireRoles(models.RoleAdmin)
}

// GetIdentity retrieves the authenticated identity from context
func GetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// WithIdentity binds an identity to the context. Exposed for handler tests
// that bypass the middleware.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// bearerToken extracts the token from the Authorization header.
// Expected format: "Bearer <token>"
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func unauthorized(w http.ResponseWriter, message string) {
	respondError(w, http.StatusUnauthorized, message)
}

func forbidden(w http.ResponseWriter, message string) {
	respondError(w, http.StatusForbidden, message)
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
