package postgres

import (
	"testing"

	"idhub/internal/domain/entity"
	domainerrors "idhub/internal/domain/errors"
	"idhub/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewRoleRepository(db)

	desc := "full access"
	role := &entity.Role{
		Name:        "admin",
		Description: &desc,
		Permissions: []string{"users.create", "users.delete", "audit.read"},
	}
	require.NoError(t, repo.Create(t.Context(), role))
	assert.NotEqual(t, uuid.Nil, role.ID)

	byID, err := repo.FindByID(t.Context(), role.ID)
	require.NoError(t, err)
	// Permission order survives the round trip.
	assert.Equal(t, []string{"users.create", "users.delete", "audit.read"}, byID.Permissions)
	assert.True(t, byID.HasPermission("audit.read"))
	assert.False(t, byID.HasPermission("roles.delete"))

	byName, err := repo.FindByName(t.Context(), "admin")
	require.NoError(t, err)
	assert.Equal(t, role.ID, byName.ID)
}

func TestRoleRepository_CreateDuplicateName(t *testing.T) {
	db := newTestDB(t)
	repo := NewRoleRepository(db)

	require.NoError(t, repo.Create(t.Context(), &entity.Role{Name: "admin"}))

	err := repo.Create(t.Context(), &entity.Role{Name: "admin"})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrRoleNameTaken.ErrorCode(), appErr.ErrorCode())
}

func TestRoleRepository_FindNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewRoleRepository(db)

	_, err := repo.FindByID(t.Context(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrRoleNotFound)

	_, err = repo.FindByName(t.Context(), "ghost")
	assert.ErrorIs(t, err, repository.ErrRoleNotFound)
}

func TestRoleRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := NewRoleRepository(db)

	role := &entity.Role{Name: "support", Permissions: []string{"users.read"}}
	require.NoError(t, repo.Create(t.Context(), role))

	role.Permissions = []string{"users.read", "users.update"}
	require.NoError(t, repo.Update(t.Context(), role))

	updated, err := repo.FindByID(t.Context(), role.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"users.read", "users.update"}, updated.Permissions)

	missing := &entity.Role{ID: uuid.New(), Name: "nope"}
	assert.ErrorIs(t, repo.Update(t.Context(), missing), repository.ErrRoleNotFound)
}

func TestRoleRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewRoleRepository(db)

	role := &entity.Role{Name: "temporary"}
	require.NoError(t, repo.Create(t.Context(), role))

	require.NoError(t, repo.Delete(t.Context(), role.ID))

	_, err := repo.FindByID(t.Context(), role.ID)
	assert.ErrorIs(t, err, repository.ErrRoleNotFound)

	assert.ErrorIs(t, repo.Delete(t.Context(), role.ID), repository.ErrRoleNotFound)
}

func TestRoleRepository_ListOrderedByName(t *testing.T) {
	db := newTestDB(t)
	repo := NewRoleRepository(db)

	for _, name := range []string{"viewer", "admin", "member"} {
		require.NoError(t, repo.Create(t.Context(), &entity.Role{Name: name}))
	}

	roles, err := repo.List(t.Context())
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, "admin", roles[0].Name)
	assert.Equal(t, "member", roles[1].Name)
	assert.Equal(t, "viewer", roles[2].Name)
}

func TestRoleRepository_EmptyPermissionsDecodeAsEmptySlice(t *testing.T) {
	db := newTestDB(t)
	repo := NewRoleRepository(db)

	role := &entity.Role{Name: "bare"}
	require.NoError(t, repo.Create(t.Context(), role))

	found, err := repo.FindByID(t.Context(), role.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.Permissions)
	assert.Empty(t, found.Permissions)
}
