package postgres

import (
	"context"
	"encoding/json"

	"idhub/internal/domain/entity"
	domainerrors "idhub/internal/domain/errors"
	"idhub/internal/domain/repository"
	"idhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository is the constructor for roleRepository.
func NewRoleRepository(db *gorm.DB) repository.RoleRepository {
	return &roleRepository{db: db}
}

// Create persists a new role.
func (repo *roleRepository) Create(ctx context.Context, role *entity.Role) error {
	m, err := fromRoleDomain(role)
	if err != nil {
		return err
	}

	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrRoleNameTaken
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create role")
	}

	role.ID = m.ID
	role.CreatedAt = m.CreatedAt
	role.UpdatedAt = m.UpdatedAt

	return nil
}

// FindByID retrieves a role by ID.
func (repo *roleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Role, error) {
	var m model.RoleModel
	err := repo.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoleNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toRoleDomain(&m)
}

// FindByName retrieves a role by its unique name.
func (repo *roleRepository) FindByName(ctx context.Context, name string) (*entity.Role, error) {
	var m model.RoleModel
	err := repo.db.WithContext(ctx).Where("name = ?", name).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoleNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toRoleDomain(&m)
}

// Update persists changes to an existing role.
func (repo *roleRepository) Update(ctx context.Context, role *entity.Role) error {
	m, err := fromRoleDomain(role)
	if err != nil {
		return err
	}

	res := repo.db.WithContext(ctx).
		Model(&model.RoleModel{}).
		Where("id = ?", role.ID).
		Updates(map[string]any{
			"name":        m.Name,
			"description": m.Description,
			"permissions": m.Permissions,
		})
	if res.Error != nil {
		if isUniqueConstraintViolation(res.Error) {
			return domainerrors.ErrRoleNameTaken
		}

		return domainerrors.NewDatabaseExecuteError(res.Error, "failed to update role")
	}
	if res.RowsAffected == 0 {
		return repository.ErrRoleNotFound
	}

	return nil
}

// Delete permanently removes the role. The in-use guard lives in the
// usecase layer inside the same transaction as the count check.
func (repo *roleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.RoleModel{})
	if res.Error != nil {
		if isForeignKeyConstraintViolation(res.Error) {
			return domainerrors.ErrRoleInUse
		}

		return errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrRoleNotFound
	}

	return nil
}

// List returns all roles ordered by name.
func (repo *roleRepository) List(ctx context.Context) ([]*entity.Role, error) {
	var models []model.RoleModel
	if err := repo.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	roles := make([]*entity.Role, 0, len(models))
	for i := range models {
		role, err := toRoleDomain(&models[i])
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	return roles, nil
}

// --- Mapper Functions ---

// toRoleDomain decodes the JSON-encoded permission column. Element order
// survives the round trip.
func toRoleDomain(data *model.RoleModel) (*entity.Role, error) {
	if data == nil {
		return nil, nil
	}

	permissions := make([]string, 0)
	if data.Permissions != "" {
		if err := json.Unmarshal([]byte(data.Permissions), &permissions); err != nil {
			return nil, errors.Wrapf(err, "failed to decode permissions for role %s", data.ID)
		}
	}

	return &entity.Role{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Permissions: permissions,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}, nil
}

func fromRoleDomain(data *entity.Role) (*model.RoleModel, error) {
	if data == nil {
		return nil, nil
	}

	permissions := data.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	encoded, err := json.Marshal(permissions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode role permissions")
	}

	return &model.RoleModel{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Permissions: string(encoded),
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}, nil
}
