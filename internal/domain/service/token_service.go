package service

import (
	"time"

	"github.com/google/uuid"
)

// AccessClaims is the validated content of a short-lived access token.
type AccessClaims struct {
	UserID      uuid.UUID
	Email       string
	Permissions []string
}

// TokenService issues and validates stateless access tokens. Stateful
// credentials (sessions, refresh tokens, reset tokens) are handled by the
// credential lifecycle instead.
type TokenService interface {
	// GenerateAccessToken creates a signed access token for the user.
	GenerateAccessToken(userID uuid.UUID, email string, permissions []string) (string, error)

	// ValidateAccessToken verifies the signature and expiry of a token
	// and returns its claims.
	ValidateAccessToken(token string) (*AccessClaims, error)

	// AccessTokenTTL returns the configured access token lifetime.
	AccessTokenTTL() time.Duration
}

// TokenGenerator produces fresh opaque token strings for stateful
// credentials. Generation is separate from the lifecycle itself so tests
// can supply deterministic tokens.
type TokenGenerator interface {
	// Generate returns a new cryptographically random token string.
	Generate() (string, error)
}
