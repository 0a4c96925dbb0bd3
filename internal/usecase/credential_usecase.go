package usecase

import (
	"context"

	"idhub/internal/domain/entity"

	"github.com/google/uuid"
)

// IssueCredentialInput defines the data required to issue a credential.
// The expiry is derived from the configured TTL for the kind.
type IssueCredentialInput struct {
	Kind   entity.CredentialKind
	UserID uuid.UUID
	Meta   *entity.ClientMeta
}

// SweepReport summarizes a maintenance sweep across every credential kind.
type SweepReport struct {
	Expired map[entity.CredentialKind]int64 `json:"expired"`
	Retired map[entity.CredentialKind]int64 `json:"retired"`
}

// CredentialUsecase is the lifecycle surface over the three token-like
// entities. All validity decisions inside one call share a single time
// snapshot.
type CredentialUsecase interface {
	// Issue generates a fresh opaque token and persists the credential
	// with the kind's configured TTL.
	Issue(ctx context.Context, input IssueCredentialInput) (*entity.Credential, error)

	// Validate reports whether the token is usable right now. Unknown
	// tokens are simply invalid, not an error.
	Validate(ctx context.Context, kind entity.CredentialKind, token string) (bool, error)

	// Retire performs the one-way terminal transition. Idempotent.
	Retire(ctx context.Context, kind entity.CredentialKind, token string) error

	// RetireAllForUser retires every credential of the kind owned by the
	// user and reports the count. Zero when the user has none.
	RetireAllForUser(ctx context.Context, kind entity.CredentialKind, userID uuid.UUID) (int64, error)

	// ListForUser returns the user's credentials of the kind, newest first.
	ListForUser(ctx context.Context, kind entity.CredentialKind, userID uuid.UUID, activeOnly bool) ([]*entity.Credential, error)

	// CountActive counts the user's currently usable credentials of the kind.
	CountActive(ctx context.Context, kind entity.CredentialKind, userID uuid.UUID) (int64, error)

	// TouchSession refreshes a session's last-activity timestamp.
	TouchSession(ctx context.Context, token string) error

	// Sweep deletes expired rows for every kind and retired rows for the
	// flag-bearing kinds.
	Sweep(ctx context.Context) (*SweepReport, error)
}
