// Package rest provides the HTTP REST API for the SentinelLite backend.
// This file implements HS256 JWT issuance and bearer-token authentication
// middleware.
//
// # Authentication flow
//
// Login issues a compact HS256 JWT (sub = user id, email claim, exp).
// All requests to protected routes must include:
//
//	Authorization: Bearer <compact-JWT>
//
// The middleware validates the signature and expiry, injects the subject
// into the request context, and responds 401 with a JSON error body on any
// failure; the next handler is never called then. The dashboard client
// treats the token as an opaque string throughout.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sentinellite/sentinel/internal/model"
)

// contextKey is an unexported type for context keys in this package.
type contextKey int

const userIDKey contextKey = 0

// UserIDFromContext retrieves the authenticated user id injected by
// AuthMiddleware. ok is false for unauthenticated requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// IssueToken signs an HS256 JWT for user, valid for ttl.
func IssueToken(secret []byte, user model.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("rest: sign token: %w", err)
	}
	return signed, nil
}

// verifyToken validates an HS256 compact JWT and returns the subject.
func verifyToken(secret []byte, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// AuthMiddleware returns middleware enforcing bearer-token authentication
// on every request it wraps. A nil logger falls back to slog.Default().
func AuthMiddleware(secret []byte, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if !strings.HasPrefix(raw, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			token := strings.TrimPrefix(raw, "Bearer ")

			userID, err := verifyToken(secret, token)
			if err != nil {
				logger.Warn("rest: authentication failed",
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("error", err.Error()),
				)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
