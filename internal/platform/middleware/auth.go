package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator defines the interface for validating access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator.
type TokenClaims struct {
	UserID   string
	Username string
}

type contextKeyUserID struct{}
type contextKeyUsername struct{}

var (
	ContextKeyUserID   = contextKeyUserID{}
	ContextKeyUsername = contextKeyUsername{}
)

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetUsername retrieves the pseudonym from the context.
func GetUsername(ctx context.Context) string {
	username, ok := ctx.Value(ContextKeyUsername).(string)
	if !ok {
		return ""
	}
	return username
}

// OptionalAuth attaches identity to the context when a valid bearer token is
// present and passes the request through otherwise. Most routes accept
// anonymous callers; handlers that need the caller's identity fall back to
// the request body when no token was sent.
func OptionalAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				claims, err := validator.ValidateToken(after)
				if err != nil {
					logger.WarnContext(r.Context(), "ignoring invalid bearer token",
						"error", err,
						"request_id", GetRequestID(r.Context()),
					)
				} else {
					ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.UserID)
					ctx = context.WithValue(ctx, ContextKeyUsername, claims.Username)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
