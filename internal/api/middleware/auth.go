package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/envelope/internal/apierror"
	"github.com/phrazzld/envelope/internal/config"
	"github.com/phrazzld/envelope/internal/platform/logger"
)

// ErrMissingSecret is returned when a JWT authenticator is built without a
// signing secret.
var ErrMissingSecret = errors.New("jwt secret must be at least 32 characters")

// JWTAuthenticator validates HS256 bearer tokens. The token subject becomes
// the authenticated user ID.
type JWTAuthenticator struct {
	signingKey []byte
	realm      string
	timeFunc   func() time.Time // Injectable for testing
	clockSkew  time.Duration    // Allowed time difference for validation to handle clock drift
}

// NewJWTAuthenticator creates an authenticator from the auth configuration.
func NewJWTAuthenticator(cfg config.AuthConfig) (*JWTAuthenticator, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, ErrMissingSecret
	}
	return &JWTAuthenticator{
		signingKey: []byte(cfg.JWTSecret),
		realm:      cfg.Realm,
		timeFunc:   time.Now,
		clockSkew:  2 * time.Minute,
	}, nil
}

// Challenge returns the WWW-Authenticate value sent with 401 responses.
func (a *JWTAuthenticator) Challenge() string {
	return fmt.Sprintf("Bearer realm=%q", a.realm)
}

// Authenticate extracts and validates the bearer token of r and returns the
// token subject. A missing header yields a not-authenticated error; any
// other problem yields authentication-failed.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (string, error) {
	log := logger.FromContext(r.Context())

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", apierror.NotAuthenticated("")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", apierror.AuthenticationFailed("Invalid authorization format.")
	}

	now := a.timeFunc()
	token, err := jwt.ParseWithClaims(
		parts[1],
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(a.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("token validation failed: token expired", "error", err)
			return "", apierror.AuthenticationFailed("Token expired.")
		}
		log.Debug("token validation failed",
			"error", err,
			"error_type", fmt.Sprintf("%T", err))
		return "", apierror.AuthenticationFailed("Invalid token.")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		log.Debug("token validation failed: invalid claims")
		return "", apierror.AuthenticationFailed("Invalid token.")
	}

	log.Debug("token validated successfully",
		slog.String("user_id", claims.Subject),
		slog.String("token_id", claims.ID))
	return claims.Subject, nil
}

// IssueToken signs a token for subject that expires after ttl.
func (a *JWTAuthenticator) IssueToken(subject string, ttl time.Duration) (string, error) {
	now := a.timeFunc()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.New().String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}
	return signed, nil
}
