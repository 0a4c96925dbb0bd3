package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is an immutable record of a state-changing action. Entries are
// append-only: there is no update path once a record is written.
type AuditLog struct {
	ID         uuid.UUID  `json:"id"`
	Action     string     `json:"action"`
	EntityType string     `json:"entityType"`
	EntityID   string     `json:"entityId"`
	UserID     uuid.UUID  `json:"userId"`
	OldValue   *string    `json:"oldValue,omitempty"`
	NewValue   *string    `json:"newValue,omitempty"`
	IPAddress  *string    `json:"ipAddress,omitempty"`
	UserAgent  *string    `json:"userAgent,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// AuditStatistics is an aggregate projection over the append log.
type AuditStatistics struct {
	Total         int64            `json:"total"`
	ByAction      map[string]int64 `json:"byAction"`
	ByEntityType  map[string]int64 `json:"byEntityType"`
	Last24Hours   int64            `json:"last24Hours"`
}
