package impl

import (
	"context"
	"encoding/json"
	"log/slog"

	"idhub/config"
	deliverycontext "idhub/internal/delivery/context"
	"idhub/internal/domain/entity"
	domainerrors "idhub/internal/domain/errors"
	"idhub/internal/domain/repository"
	"idhub/internal/domain/service"
	"idhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Audit actions recorded by the user directory.
const (
	auditActionUserCreate     = "user.create"
	auditActionUserUpdate     = "user.update"
	auditActionUserDeactivate = "user.deactivate"
	auditActionUserDelete     = "user.delete"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	hasher    service.PasswordHasher
	logger    *slog.Logger
}

// UserServiceParams holds dependencies for userService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Hasher    service.PasswordHasher
	Config    *config.Config
	Logger    *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager: params.TxManager,
		userRepo:  params.UserRepo,
		hasher:    params.Hasher,
		logger:    params.Logger,
	}
}

func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// userSnapshot is the audit view of an account: identifying and
// authorization-relevant fields only, never the password hash.
type userSnapshot struct {
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	RoleID    uuid.UUID `json:"roleId"`
	IsActive  bool      `json:"isActive"`
}

func snapshotUser(user *entity.User) *string {
	encoded, err := json.Marshal(userSnapshot{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RoleID:    user.RoleID,
		IsActive:  user.IsActive,
	})
	if err != nil {
		return nil
	}
	s := string(encoded)

	return &s
}

// actorOrSelf resolves the audit actor: the explicit actor when present,
// otherwise the subject itself (self-service and system flows).
func actorOrSelf(actorID *uuid.UUID, subject uuid.UUID) uuid.UUID {
	if actorID != nil {
		return *actorID
	}

	return subject
}

func recordEntityAudit(ctx context.Context, auditRepo repository.AuditLogRepository, action, entityType, entityID string, actorID uuid.UUID, oldValue, newValue *string, meta *entity.ClientMeta) error {
	log := &entity.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     actorID,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if meta != nil {
		if meta.IPAddress != "" {
			log.IPAddress = &meta.IPAddress
		}
		if meta.UserAgent != "" {
			log.UserAgent = &meta.UserAgent
		}
	}

	return auditRepo.Create(ctx, log)
}

// CreateUser creates an account after verifying the role reference
// inside the same transaction as the insert.
func (srv *userService) CreateUser(ctx context.Context, input usecase.CreateUserInput) (*entity.User, error) {
	srv.log(ctx).Info("Creating user", slog.String("email", input.Email))

	hashed, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	newUser := &entity.User{
		Email:     input.Email,
		Password:  hashed,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		RoleID:    input.RoleID,
		Phone:     input.Phone,
		Avatar:    input.Avatar,
		IsActive:  true,
	}

	err = srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		if _, err := factory.Roles().FindByID(ctx, input.RoleID); err != nil {
			if errors.Is(err, repository.ErrRoleNotFound) {
				return errors.Wrap(domainerrors.ErrInvalidRoleReference, "user creation failed")
			}

			return errors.Wrap(err, "failed to verify role reference")
		}

		if err := factory.Users().Create(ctx, newUser); err != nil {
			return errors.Wrap(err, "failed to create user")
		}

		return recordEntityAudit(ctx, factory.AuditLogs(), auditActionUserCreate, auditEntityUser,
			newUser.ID.String(), actorOrSelf(input.ActorID, newUser.ID), nil, snapshotUser(newUser), input.Meta)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute user creation transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user creation transaction")
	}

	srv.log(ctx).Debug("User created", slog.Any("userID", newUser.ID))

	return newUser, nil
}

// GetUser retrieves an account by ID. Deactivated accounts still resolve.
func (srv *userService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "get user failed")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

// GetUserByEmail retrieves an account by email.
func (srv *userService) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "get user failed")
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return user, nil
}

// UpdateUser applies partial changes and records before/after snapshots.
func (srv *userService) UpdateUser(ctx context.Context, input usecase.UpdateUserInput) (*entity.User, error) {
	srv.log(ctx).Info("Updating user", slog.Any("userID", input.ID))

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		userRepo := factory.Users()

		current, err := userRepo.FindByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "user update failed")
			}

			return errors.Wrap(err, "failed to load user for update")
		}
		before := snapshotUser(current)

		if input.Email != nil {
			current.Email = *input.Email
		}
		if input.FirstName != nil {
			current.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			current.LastName = *input.LastName
		}
		if input.RoleID != nil {
			if _, err := factory.Roles().FindByID(ctx, *input.RoleID); err != nil {
				if errors.Is(err, repository.ErrRoleNotFound) {
					return errors.Wrap(domainerrors.ErrInvalidRoleReference, "user update failed")
				}

				return errors.Wrap(err, "failed to verify role reference")
			}
			current.RoleID = *input.RoleID
		}
		if input.Phone != nil {
			current.Phone = input.Phone
		}
		if input.Avatar != nil {
			current.Avatar = input.Avatar
		}

		if err := userRepo.Update(ctx, current); err != nil {
			return errors.Wrap(err, "failed to update user")
		}
		updated = current

		return recordEntityAudit(ctx, factory.AuditLogs(), auditActionUserUpdate, auditEntityUser,
			current.ID.String(), actorOrSelf(input.ActorID, current.ID), before, snapshotUser(current), input.Meta)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute user update transaction", slog.Any("userID", input.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user update transaction")
	}

	return updated, nil
}

// DeactivateUser soft-deletes the account and retires all of its
// credentials so a disabled user cannot keep an authenticated foothold.
func (srv *userService) DeactivateUser(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, meta *entity.ClientMeta) error {
	srv.log(ctx).Info("Deactivating user", slog.Any("userID", id))

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		current, err := factory.Users().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "deactivation failed")
			}

			return errors.Wrap(err, "failed to load user for deactivation")
		}
		before := snapshotUser(current)

		if err := factory.Users().SoftDelete(ctx, id); err != nil {
			return errors.Wrap(err, "failed to deactivate user")
		}

		for _, kind := range []entity.CredentialKind{entity.KindSession, entity.KindRefreshToken} {
			if _, err := factory.Credentials(kind).RetireAllForUser(ctx, id); err != nil {
				return errors.Wrapf(err, "failed to retire %s credentials on deactivation", kind)
			}
		}

		current.IsActive = false

		return recordEntityAudit(ctx, factory.AuditLogs(), auditActionUserDeactivate, auditEntityUser,
			id.String(), actorOrSelf(actorID, id), before, snapshotUser(current), meta)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute user deactivation transaction", slog.Any("userID", id), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute user deactivation transaction")
	}

	return nil
}

// DeleteUser permanently removes the account. Owned credentials cascade
// at the schema level; the audit trail is retained.
func (srv *userService) DeleteUser(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, meta *entity.ClientMeta) error {
	srv.log(ctx).Info("Deleting user", slog.Any("userID", id))

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		current, err := factory.Users().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "deletion failed")
			}

			return errors.Wrap(err, "failed to load user for deletion")
		}

		if err := factory.Users().HardDelete(ctx, id); err != nil {
			return errors.Wrap(err, "failed to delete user")
		}

		return recordEntityAudit(ctx, factory.AuditLogs(), auditActionUserDelete, auditEntityUser,
			id.String(), actorOrSelf(actorID, id), snapshotUser(current), nil, meta)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute user deletion transaction", slog.Any("userID", id), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute user deletion transaction")
	}

	return nil
}

// ListUsers returns a page of accounts wrapped in the pagination envelope.
func (srv *userService) ListUsers(ctx context.Context, input usecase.ListUsersInput) (*usecase.Page[*entity.User], error) {
	page, limit := usecase.NormalizePageInput(input.Page, input.Limit)

	users, total, err := srv.userRepo.List(ctx, repository.UserFilter{
		Page:     page,
		Limit:    limit,
		IsActive: input.IsActive,
		RoleID:   input.RoleID,
		Search:   input.Search,
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list users", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list users")
	}

	return usecase.NewPage(users, page, limit, total), nil
}
