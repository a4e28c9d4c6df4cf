package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sanjaibalajee/weebsworldxplorers/internal/auth"
	"github.com/sanjaibalajee/weebsworldxplorers/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"
	// UserNameKey is the context key for the authenticated user's name
	UserNameKey ContextKey = "user_name"
	// RoleKey is the context key for the authenticated user's role
	RoleKey ContextKey = "role"
)

// RoleAdmin is the privileged role allowed to manage the pot and create
// pot expenses.
const RoleAdmin = "admin"

// Auth validates the Bearer token and puts the user's identity and role on
// the request context.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserNameKey, claims.Name)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user ID from the request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// GetRole extracts the authenticated user's role from the request context
func GetRole(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}

// IsAdmin reports whether the authenticated user carries the admin role
func IsAdmin(ctx context.Context) bool {
	return GetRole(ctx) == RoleAdmin
}
