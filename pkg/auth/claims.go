package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/otka-dev/otka-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Email string
	Role  enums.UserRole
	JTI   string
}

// AccessTokenClaims represents the typed JWT issued to portal clients.
type AccessTokenClaims struct {
	Email string         `json:"email"`
	Role  enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
