package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/tastesphere/internal/auth"
)

// Headers accepted from trusted front proxies.
const (
	UserIDHeader    = "X-User-ID"
	UserRoleHeader  = "X-User-Role"
	SessionIDHeader = "X-Session-ID"
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken extracts JWT token from cookie or Authorization header
func ExtractToken(r *http.Request) string {
	// Try cookie first (for browser)
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	// Fall back to Authorization header (for API clients)
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// Identify resolves the caller and stores it in the request context. A
// bearer token takes precedence; a bad token is rejected outright. Without
// a token the X-User-ID and X-User-Role headers are trusted when allowHeader
// is set. Requests
// with neither pass through anonymously.
func Identify(tokens *auth.TokenService, allowHeader bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString := ExtractToken(r); tokenString != "" && tokens != nil {
				id, err := tokens.Verify(tokenString)
				if err != nil {
					respondError(w, err.Error(), http.StatusUnauthorized)
					return
				}
				r = r.WithContext(auth.WithIdentity(r.Context(), id))
			} else if userID := r.Header.Get(UserIDHeader); allowHeader && userID != "" {
				id := auth.Identity{UserID: userID, Role: headerRole(r)}
				r = r.WithContext(auth.WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func headerRole(r *http.Request) string {
	switch role := r.Header.Get(UserRoleHeader); role {
	case auth.RoleSeller, auth.RoleAdmin:
		return role
	default:
		return auth.RoleCustomer
	}
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.FromContext(r.Context()); err != nil {
			respondError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole checks if the user has one of the required roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := auth.FromContext(r.Context())
			if err != nil {
				respondError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondError(w, "forbidden", http.StatusForbidden)
		})
	}
}
