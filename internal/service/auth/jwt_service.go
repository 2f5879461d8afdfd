package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines the token validation surface. Tokens are issued by the
// external identity provider; this service only verifies them and extracts
// the caller's identity.
type JWTService interface {
	// ValidateToken validates the provided token string and extracts the
	// claims. Returns the claims containing the user's identity if the token
	// is valid, or an error if validation fails (expired, invalid signature,
	// etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated claims extracted from a token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
