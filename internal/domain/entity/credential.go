package entity

import (
	"time"

	"github.com/google/uuid"
)

// CredentialKind identifies one of the three token-like entities managed
// by the credential lifecycle: sessions, refresh tokens, and password
// reset tokens. They share one policy: an opaque unique token string, an
// expiry, and a one-way retirement transition.
type CredentialKind string

const (
	// KindSession is a live authenticated browser/device context.
	// Sessions carry no terminal flag; retirement deletes the row.
	KindSession CredentialKind = "session"
	// KindRefreshToken is a long-lived credential-renewal capability,
	// retired by flipping isRevoked.
	KindRefreshToken CredentialKind = "refresh_token"
	// KindPasswordResetToken is a single-use reset capability, retired
	// by flipping isUsed.
	KindPasswordResetToken CredentialKind = "password_reset_token"
)

// String returns the string representation of the kind.
func (k CredentialKind) String() string {
	return string(k)
}

// IsValid checks if the kind is a known value.
func (k CredentialKind) IsValid() bool {
	switch k {
	case KindSession, KindRefreshToken, KindPasswordResetToken:
		return true
	default:
		return false
	}
}

// CredentialKinds lists every managed kind, useful for sweeps that cover
// all token-like entities.
var CredentialKinds = []CredentialKind{KindSession, KindRefreshToken, KindPasswordResetToken}

// ClientMeta carries optional client context recorded with a credential
// or an audit entry.
type ClientMeta struct {
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// Credential is the uniform view over the three token-like entities.
// The token string is the sole external handle; validity is always
// computed from Retired and ExpiresAt, never stored.
type Credential struct {
	ID        uuid.UUID      `json:"id"`
	Kind      CredentialKind `json:"kind"`
	Token     string         `json:"token"`
	UserID    uuid.UUID      `json:"userId"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Retired   bool           `json:"retired"` // isRevoked / isUsed, depending on kind
	CreatedAt time.Time      `json:"createdAt"`

	// Session-only fields.
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`
	IPAddress      *string    `json:"ipAddress,omitempty"`
	UserAgent      *string    `json:"userAgent,omitempty"`
}

// Valid reports whether the credential is usable at the given instant:
// not retired and not yet expired. Callers must evaluate all checks of a
// single operation against one now() snapshot.
func (c *Credential) Valid(now time.Time) bool {
	return !c.Retired && c.ExpiresAt.After(now)
}
