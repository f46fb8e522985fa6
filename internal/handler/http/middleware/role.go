package middleware

import (
	"net/http"
	"slices"

	"github.com/sistema-nomina/backend-nomina/internal/domain/user"
	"github.com/sistema-nomina/backend-nomina/internal/handler/http/response"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/jwt"
)

// RequireRoles allows the request only when the token role is one of roles.
func RequireRoles(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := jwt.ClaimsFromContext(r.Context())
			if err != nil {
				response.HandleError(w, user.ErrRoleMissing)
				return
			}

			if !slices.Contains(roles, claims.Role) {
				response.HandleError(w, user.ErrInsufficientPermissions)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := jwt.ClaimsFromContext(r.Context())
			if err != nil {
				response.HandleError(w, user.ErrRoleMissing)
				return
			}

			if !user.HasPermission(claims.Role, permission) {
				response.HandleError(w, user.ErrInsufficientPermissions)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
