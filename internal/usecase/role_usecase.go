package usecase

import (
	"context"

	"idhub/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateRoleInput defines the data required to create a role.
type CreateRoleInput struct {
	Name        string
	Description *string
	Permissions []string

	ActorID *uuid.UUID
	Meta    *entity.ClientMeta
}

// UpdateRoleInput carries the mutable role fields. Nil pointers leave the
// current value untouched; a non-nil Permissions slice replaces the whole set.
type UpdateRoleInput struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Permissions []string

	ActorID *uuid.UUID
	Meta    *entity.ClientMeta
}

// RoleUsecase defines the interface for role directory operations.
type RoleUsecase interface {
	// CreateRole creates a role with an ordered permission set.
	CreateRole(ctx context.Context, input CreateRoleInput) (*entity.Role, error)

	// GetRole retrieves a role by ID.
	GetRole(ctx context.Context, id uuid.UUID) (*entity.Role, error)

	// GetRoleByName retrieves a role by its unique name.
	GetRoleByName(ctx context.Context, name string) (*entity.Role, error)

	// UpdateRole applies partial changes to a role.
	UpdateRole(ctx context.Context, input UpdateRoleInput) (*entity.Role, error)

	// DeleteRole removes a role. The zero-assigned-users check and the
	// delete run inside one transaction, so a concurrent assignment
	// cannot slip between them.
	DeleteRole(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, meta *entity.ClientMeta) error

	// ListRoles returns every role ordered by name.
	ListRoles(ctx context.Context) ([]*entity.Role, error)
}
