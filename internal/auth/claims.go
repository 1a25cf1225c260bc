package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// The active flag mirrors the account status at token issuance; banned or
// deactivated accounts must not receive tokens with active=true.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	TokenType TokenType `json:"token_type"`
}
