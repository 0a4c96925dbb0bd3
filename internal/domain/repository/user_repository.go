package repository

import (
	"context"

	"idhub/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for user persistence.
var (
	// ErrUserNotFound is returned when a user lookup yields no row.
	ErrUserNotFound = errors.New("user not found")
)

// UserFilter narrows and paginates user listings. Page is 1-based;
// Search matches first name, last name, or email case-insensitively.
type UserFilter struct {
	Page     int
	Limit    int
	IsActive *bool
	RoleID   *uuid.UUID
	Search   string
}

// UserRepository defines persistence operations for the user directory.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a user by ID. Soft-deleted (inactive) users are
	// still resolvable here.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a user by their unique email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Update persists changes to an existing user.
	Update(ctx context.Context, user *entity.User) error

	// UpdatePassword replaces only the stored password hash.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// SoftDelete flips isActive to false; the row remains queryable.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// HardDelete permanently removes the row.
	HardDelete(ctx context.Context, id uuid.UUID) error

	// List returns the filtered page of users plus the total match count.
	List(ctx context.Context, filter UserFilter) ([]*entity.User, int64, error)

	// CountByRole counts users currently referencing the given role.
	CountByRole(ctx context.Context, roleID uuid.UUID) (int64, error)
}
