package usecase

import (
	"context"
	"time"

	"idhub/internal/domain/entity"

	"github.com/google/uuid"
)

// RecordAuditInput defines one append-only audit entry.
type RecordAuditInput struct {
	Action     string
	EntityType string
	EntityID   string
	UserID     uuid.UUID
	OldValue   *string
	NewValue   *string
	Meta       *entity.ClientMeta
}

// ListAuditInput narrows and paginates the audit trail.
type ListAuditInput struct {
	Page       int
	Limit      int
	UserID     *uuid.UUID
	EntityType string
	EntityID   string
	Action     string
}

// AuditUsecase defines the interface over the append-only audit trail.
// Entries are immutable; the only removals are retention-driven.
type AuditUsecase interface {
	// Record appends an entry. Failures are returned to the caller;
	// whether they abort the surrounding operation is the caller's call.
	Record(ctx context.Context, input RecordAuditInput) (*entity.AuditLog, error)

	// List returns a page of entries, newest first.
	List(ctx context.Context, input ListAuditInput) (*Page[*entity.AuditLog], error)

	// Statistics aggregates the trail: totals, per-action and
	// per-entity-type counts, and the trailing-24h count.
	Statistics(ctx context.Context) (*entity.AuditStatistics, error)

	// PurgeOlderThan removes entries created before the cutoff.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// PurgeForUser removes every entry recorded for the user.
	PurgeForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
