// Package token issues and verifies the signed credentials of the
// authentication core: short-lived access tokens carrying identity and role,
// and longer-lived refresh tokens carrying identity only.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wanderhub/auth-service/internal/apperrors"
	"github.com/wanderhub/auth-service/internal/models"
)

// Generator signs and validates JWT access and refresh tokens.
// Access and refresh tokens are signed with distinct secrets so a refresh
// token can never be presented where an access token is expected.
type Generator struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewGenerator creates a token generator. Secrets come from configuration;
// the config layer refuses to start without them.
func NewGenerator(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *Generator {
	return &Generator{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateTokens generates both access and refresh tokens for a user.
// The access token carries the user ID and role, the refresh token only the
// user ID.
func (g *Generator) GenerateTokens(userID int, role models.Role) (string, string, error) {
	accessToken, err := g.generateAccessToken(userID, role)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := g.generateRefreshToken(userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// generateAccessToken creates an access token with user ID and role in the payload
func (g *Generator) generateAccessToken(userID int, role models.Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(g.accessExpiry).Unix(),
		"type": "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(g.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// generateRefreshToken creates a refresh token carrying the user ID only
func (g *Generator) generateRefreshToken(userID int) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"iat":  now.Unix(),
		"exp":  now.Add(g.refreshExpiry).Unix(),
		"type": "refresh",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(g.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the user ID and role.
// Expired tokens yield apperrors.ErrTokenExpired; every other failure yields
// apperrors.ErrTokenInvalid.
func (g *Generator) ValidateAccessToken(tokenString string) (int, models.Role, error) {
	claims, err := g.parse(tokenString, g.accessSecret, "access")
	if err != nil {
		return 0, "", err
	}

	userID, err := subjectID(claims)
	if err != nil {
		return 0, "", err
	}

	roleStr, ok := claims["role"].(string)
	if !ok {
		return 0, "", fmt.Errorf("%w: role not found in token", apperrors.ErrTokenInvalid)
	}
	role := models.Role(roleStr)
	if !role.Valid() {
		return 0, "", fmt.Errorf("%w: unknown role %q", apperrors.ErrTokenInvalid, roleStr)
	}

	return userID, role, nil
}

// ValidateRefreshToken validates a refresh token and returns the user ID.
func (g *Generator) ValidateRefreshToken(tokenString string) (int, error) {
	claims, err := g.parse(tokenString, g.refreshSecret, "refresh")
	if err != nil {
		return 0, err
	}

	return subjectID(claims)
}

// parse verifies signature, expiry and token type against the given secret
func (g *Generator) parse(tokenString string, secret []byte, tokenType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, apperrors.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid token claims", apperrors.ErrTokenInvalid)
	}

	if typ, ok := claims["type"].(string); !ok || typ != tokenType {
		return nil, fmt.Errorf("%w: token is not a %s token", apperrors.ErrTokenInvalid, tokenType)
	}

	return claims, nil
}

// subjectID extracts the user ID from the sub claim (JWT decodes numbers as float64)
func subjectID(claims jwt.MapClaims) (int, error) {
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, fmt.Errorf("%w: subject not found in token", apperrors.ErrTokenInvalid)
	}
	return int(sub), nil
}
