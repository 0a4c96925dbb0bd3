// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"idhub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreateUserInput defines the data required to create a new account.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleID    uuid.UUID
	Phone     *string
	Avatar    *string

	// ActorID identifies who performs the action, for the audit trail.
	// Nil means a system action (e.g. the seed command).
	ActorID *uuid.UUID
	Meta    *entity.ClientMeta
}

// UpdateUserInput carries the mutable account fields. Nil pointers leave
// the current value untouched.
type UpdateUserInput struct {
	ID        uuid.UUID
	Email     *string
	FirstName *string
	LastName  *string
	RoleID    *uuid.UUID
	Phone     *string
	Avatar    *string

	ActorID *uuid.UUID
	Meta    *entity.ClientMeta
}

// ListUsersInput narrows and paginates the user directory listing.
type ListUsersInput struct {
	Page     int
	Limit    int
	IsActive *bool
	RoleID   *uuid.UUID
	Search   string
}

// UserUsecase defines the interface for account directory operations.
type UserUsecase interface {
	// CreateUser creates an account after verifying the role reference.
	CreateUser(ctx context.Context, input CreateUserInput) (*entity.User, error)

	// GetUser retrieves an account by ID. Deactivated accounts still resolve.
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// GetUserByEmail retrieves an account by email.
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)

	// UpdateUser applies partial changes and records before/after
	// snapshots in the audit log.
	UpdateUser(ctx context.Context, input UpdateUserInput) (*entity.User, error)

	// DeactivateUser soft-deletes the account and retires all of its
	// credentials.
	DeactivateUser(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, meta *entity.ClientMeta) error

	// DeleteUser permanently removes the account. Owned credentials
	// cascade; audit entries are retained.
	DeleteUser(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, meta *entity.ClientMeta) error

	// ListUsers returns a page of accounts wrapped in the pagination envelope.
	ListUsers(ctx context.Context, input ListUsersInput) (*Page[*entity.User], error)
}
