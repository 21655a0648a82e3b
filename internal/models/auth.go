package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the custom claim set embedded in access tokens. The engine
// treats it as the opaque "current actor" handed over by the auth layer.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
