package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a session token. Only the external
// subject id and the expiry are carried.
type TokenClaims struct {
	jwt.RegisteredClaims
	GoogleID string `json:"googleId"`
}
