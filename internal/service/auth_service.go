package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rentloop/rentloop-api/internal/models"
	"github.com/rentloop/rentloop-api/pkg/config"
	appErrors "github.com/rentloop/rentloop-api/pkg/errors"
)

// AuthService validates access tokens minted by the identity service. Login,
// refresh, and password flows live there; the engine only needs to resolve
// the current actor from a bearer token.
type AuthService struct {
	config config.JWTConfig
}

// NewAuthService constructs the auth service.
func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{config: cfg}
}

// ValidateToken parses and verifies an access token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}
