package impl

import (
	"context"
	"encoding/json"
	"log/slog"

	deliverycontext "idhub/internal/delivery/context"
	"idhub/internal/domain/entity"
	domainerrors "idhub/internal/domain/errors"
	"idhub/internal/domain/repository"
	"idhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Audit actions recorded by the role directory.
const (
	auditActionRoleCreate = "role.create"
	auditActionRoleUpdate = "role.update"
	auditActionRoleDelete = "role.delete"

	auditEntityRole = "role"
)

// roleService implements the RoleUsecase interface.
type roleService struct {
	txManager repository.TransactionManager
	roleRepo  repository.RoleRepository
	logger    *slog.Logger
}

// RoleServiceParams holds dependencies for roleService, injected by Fx.
type RoleServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	RoleRepo  repository.RoleRepository
	Logger    *slog.Logger
}

// NewRoleService is the constructor for roleService.
func NewRoleService(params RoleServiceParams) usecase.RoleUsecase {
	return &roleService{
		txManager: params.TxManager,
		roleRepo:  params.RoleRepo,
		logger:    params.Logger,
	}
}

func (srv *roleService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func snapshotRole(role *entity.Role) *string {
	encoded, err := json.Marshal(struct {
		Name        string   `json:"name"`
		Permissions []string `json:"permissions"`
	}{role.Name, role.Permissions})
	if err != nil {
		return nil
	}
	s := string(encoded)

	return &s
}

// systemActor is recorded when no authenticated actor is available
// (bootstrap and maintenance paths).
var systemActor = uuid.Nil

func actorOrSystem(actorID *uuid.UUID) uuid.UUID {
	if actorID != nil {
		return *actorID
	}

	return systemActor
}

// CreateRole creates a role with an ordered permission set.
func (srv *roleService) CreateRole(ctx context.Context, input usecase.CreateRoleInput) (*entity.Role, error) {
	srv.log(ctx).Info("Creating role", slog.String("name", input.Name))

	role := &entity.Role{
		Name:        input.Name,
		Description: input.Description,
		Permissions: input.Permissions,
	}

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		if err := factory.Roles().Create(ctx, role); err != nil {
			return errors.Wrap(err, "failed to create role")
		}

		return recordEntityAudit(ctx, factory.AuditLogs(), auditActionRoleCreate, auditEntityRole,
			role.ID.String(), actorOrSystem(input.ActorID), nil, snapshotRole(role), input.Meta)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute role creation transaction", slog.String("name", input.Name), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute role creation transaction")
	}

	return role, nil
}

// GetRole retrieves a role by ID.
func (srv *roleService) GetRole(ctx context.Context, id uuid.UUID) (*entity.Role, error) {
	role, err := srv.roleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil, errors.Wrap(domainerrors.ErrRoleNotFound, "get role failed")
		}

		return nil, errors.Wrap(err, "failed to find role by id")
	}

	return role, nil
}

// GetRoleByName retrieves a role by its unique name.
func (srv *roleService) GetRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	role, err := srv.roleRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil, errors.Wrap(domainerrors.ErrRoleNotFound, "get role failed")
		}

		return nil, errors.Wrap(err, "failed to find role by name")
	}

	return role, nil
}

// UpdateRole applies partial changes to a role.
func (srv *roleService) UpdateRole(ctx context.Context, input usecase.UpdateRoleInput) (*entity.Role, error) {
	srv.log(ctx).Info("Updating role", slog.Any("roleID", input.ID))

	var updated *entity.Role
	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		roleRepo := factory.Roles()

		current, err := roleRepo.FindByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, repository.ErrRoleNotFound) {
				return errors.Wrap(domainerrors.ErrRoleNotFound, "role update failed")
			}

			return errors.Wrap(err, "failed to load role for update")
		}
		before := snapshotRole(current)

		if input.Name != nil {
			current.Name = *input.Name
		}
		if input.Description != nil {
			current.Description = input.Description
		}
		if input.Permissions != nil {
			current.Permissions = input.Permissions
		}

		if err := roleRepo.Update(ctx, current); err != nil {
			return errors.Wrap(err, "failed to update role")
		}
		updated = current

		return recordEntityAudit(ctx, factory.AuditLogs(), auditActionRoleUpdate, auditEntityRole,
			current.ID.String(), actorOrSystem(input.ActorID), before, snapshotRole(current), input.Meta)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute role update transaction", slog.Any("roleID", input.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute role update transaction")
	}

	return updated, nil
}

// DeleteRole removes a role. The assigned-users count and the delete run
// in one transaction so a concurrent assignment cannot slip in between.
func (srv *roleService) DeleteRole(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, meta *entity.ClientMeta) error {
	srv.log(ctx).Info("Deleting role", slog.Any("roleID", id))

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		current, err := factory.Roles().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrRoleNotFound) {
				return errors.Wrap(domainerrors.ErrRoleNotFound, "role deletion failed")
			}

			return errors.Wrap(err, "failed to load role for deletion")
		}

		assigned, err := factory.Users().CountByRole(ctx, id)
		if err != nil {
			return errors.Wrap(err, "failed to count users assigned to role")
		}
		if assigned > 0 {
			return errors.Wrapf(domainerrors.ErrRoleInUse, "%d users still assigned", assigned)
		}

		if err := factory.Roles().Delete(ctx, id); err != nil {
			return errors.Wrap(err, "failed to delete role")
		}

		return recordEntityAudit(ctx, factory.AuditLogs(), auditActionRoleDelete, auditEntityRole,
			id.String(), actorOrSystem(actorID), snapshotRole(current), nil, meta)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute role deletion transaction", slog.Any("roleID", id), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute role deletion transaction")
	}

	return nil
}

// ListRoles returns every role ordered by name.
func (srv *roleService) ListRoles(ctx context.Context) ([]*entity.Role, error) {
	roles, err := srv.roleRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list roles")
	}

	return roles, nil
}
