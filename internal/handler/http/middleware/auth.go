package middleware

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/sistema-nomina/backend-nomina/internal/domain/auth"
	"github.com/sistema-nomina/backend-nomina/internal/handler/http/response"
	jwtpkg "github.com/sistema-nomina/backend-nomina/internal/pkg/jwt"
)

// AuthRequired rejects requests whose bearer token is missing, expired or not an access token.
// It must run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		switch {
		case errors.Is(err, jwtauth.ErrNoTokenFound):
			response.HandleError(w, auth.ErrTokenMissing)
			return
		case errors.Is(err, jwtauth.ErrExpired), errors.Is(err, jwt.ErrTokenExpired()):
			response.HandleError(w, auth.ErrTokenExpired)
			return
		case err != nil, token == nil:
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		// tokens without a type claim are accepted as access tokens
		if tokenType, ok := claims[jwtpkg.ClaimType]; ok && tokenType != jwtpkg.TokenTypeAccess {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r)
	})
}
