package repository

import (
	"context"

	"idhub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for role persistence.
var (
	// ErrRoleNotFound is returned when a role lookup yields no row.
	ErrRoleNotFound = errors.New("role not found")
)

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {
	// Create persists a new role.
	Create(ctx context.Context, role *entity.Role) error

	// FindByID retrieves a role by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Role, error)

	// FindByName retrieves a role by its unique name.
	FindByName(ctx context.Context, name string) (*entity.Role, error)

	// Update persists changes to an existing role.
	Update(ctx context.Context, role *entity.Role) error

	// Delete permanently removes the role. Callers must guard against
	// deleting a role that still has users assigned.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns all roles ordered by name.
	List(ctx context.Context) ([]*entity.Role, error)
}
