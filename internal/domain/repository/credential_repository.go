// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"time"

	"idhub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for credential persistence.
var (
	// ErrCredentialNotFound is returned when no credential matches the given token or ID.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrCredentialInvalid is returned when a conditional consume finds the
	// credential missing, already retired, or expired.
	ErrCredentialInvalid = errors.New("credential is invalid, expired, or already retired")
	// ErrActivityNotTracked is returned when Touch is called on a kind
	// without a last-activity column.
	ErrActivityNotTracked = errors.New("credential kind does not track activity")
)

// CredentialRepository is the uniform persistence contract shared by
// sessions, refresh tokens, and password reset tokens. One generic
// implementation backs all three kinds; only the terminal-flag semantics
// differ (sessions retire by deletion, the other kinds by a one-way flag).
type CredentialRepository interface {
	// Create persists a new credential. The token string must be unique;
	// the user reference must exist.
	Create(ctx context.Context, cred *entity.Credential) error

	// FindByToken retrieves a credential by its exact token string.
	// Returns ErrCredentialNotFound when no row matches.
	FindByToken(ctx context.Context, token string) (*entity.Credential, error)

	// Retire performs the one-way terminal transition for the credential.
	// Retiring an already-retired credential succeeds silently; only an
	// unknown token yields ErrCredentialNotFound. Sessions are deleted
	// outright and deleting an absent session is also a silent success.
	Retire(ctx context.Context, token string) error

	// Consume atomically validates and retires in a single conditional
	// write: the flag is flipped only while the credential is still
	// unretired and unexpired. Exactly one of any number of concurrent
	// callers wins; the rest get ErrCredentialInvalid.
	Consume(ctx context.Context, token string, now time.Time) (*entity.Credential, error)

	// RetireAllForUser retires every credential owned by the user,
	// regardless of current validity, and reports how many rows changed.
	RetireAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// SweepExpired deletes every row with expiresAt before now.
	// Rows created after the snapshot are never touched.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)

	// SweepRetired deletes every row whose terminal flag is set. For
	// sessions this is a no-op since retirement already deletes.
	SweepRetired(ctx context.Context) (int64, error)

	// ListForUser returns the user's credentials newest first. With
	// activeOnly, retired and expired rows are filtered out using the
	// given now snapshot.
	ListForUser(ctx context.Context, userID uuid.UUID, activeOnly bool, now time.Time) ([]*entity.Credential, error)

	// CountActiveForUser counts credentials that are unretired and
	// unexpired at the given instant.
	CountActiveForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)

	// Touch refreshes the session's last-activity timestamp. Kinds
	// without activity tracking return ErrActivityNotTracked.
	Touch(ctx context.Context, token string, at time.Time) error
}
