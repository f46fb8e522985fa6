package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/sistema-nomina/backend-nomina/internal/domain/auth"
	"github.com/sistema-nomina/backend-nomina/internal/domain/user"
)

const (
	ClaimUserID   = "id_usuario"
	ClaimUsername = "username"
	ClaimRole     = "rol"
	ClaimType     = "type"

	TokenTypeAccess = "access"
)

type Service interface {
	GenerateAccessToken(userID int64, username string, role user.Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(userID int64, username string, role user.Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, fmt.Errorf("invalid access token expiration: %w", err)
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		ClaimUserID:   userID,
		ClaimUsername: username,
		ClaimRole:     string(role),
		ClaimType:     TokenTypeAccess,
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

// ClaimsFromContext reads the identity verified by jwtauth.Verifier.
func ClaimsFromContext(ctx context.Context) (user.Claims, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return user.Claims{}, auth.ErrInvalidToken
	}

	role, ok := claims[ClaimRole].(string)
	if !ok || role == "" {
		return user.Claims{}, user.ErrRoleMissing
	}

	c := user.Claims{Role: user.Role(role)}
	c.Username, _ = claims[ClaimUsername].(string)

	// numeric claims decode as float64
	switch id := claims[ClaimUserID].(type) {
	case float64:
		c.UserID = int64(id)
	case int64:
		c.UserID = id
	case int:
		c.UserID = int64(id)
	}

	return c, nil
}
