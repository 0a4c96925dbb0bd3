package repository

import (
	"context"
	"time"

	"idhub/internal/domain/entity"

	"github.com/google/uuid"
)

// AuditFilter narrows and paginates audit log listings.
type AuditFilter struct {
	Page       int
	Limit      int
	UserID     *uuid.UUID
	EntityType string
	EntityID   string
	Action     string
}

// AuditLogRepository defines persistence for the append-only audit log.
// There is deliberately no update operation: entries are immutable once
// written.
type AuditLogRepository interface {
	// Create appends a new audit record.
	Create(ctx context.Context, log *entity.AuditLog) error

	// List returns the filtered page of entries, newest first, plus the
	// total match count.
	List(ctx context.Context, filter AuditFilter) ([]*entity.AuditLog, int64, error)

	// Statistics aggregates the append log: total count, grouped counts
	// per action and entity type, and the count in the trailing 24 hours
	// relative to now.
	Statistics(ctx context.Context, now time.Time) (*entity.AuditStatistics, error)

	// DeleteOlderThan removes entries created before the cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteAllForUser removes every entry recorded for the user.
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
