package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role groups users under a named, ordered set of permission strings.
// Permission strings follow the "resource.action" convention, e.g.
// "users.create" or "audit.read".
type Role struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasPermission checks whether the role grants a specific permission.
func (r *Role) HasPermission(permission string) bool {
	return slices.Contains(r.Permissions, permission)
}
