package impl

import (
	"testing"

	domainerrors "idhub/internal/domain/errors"
	"idhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleService_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)

	role, err := env.roles.CreateRole(t.Context(), usecase.CreateRoleInput{
		Name:        "admin",
		Permissions: []string{"users.create", "users.delete", "roles.create"},
	})
	require.NoError(t, err)

	found, err := env.roles.GetRoleByName(t.Context(), "admin")
	require.NoError(t, err)
	assert.Equal(t, role.ID, found.ID)
	assert.Equal(t, []string{"users.create", "users.delete", "roles.create"}, found.Permissions)

	assert.EqualValues(t, 1, env.auditCount(t, auditActionRoleCreate))
}

func TestRoleService_CreateDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	env.createRole(t, "admin", nil)

	_, err := env.roles.CreateRole(t.Context(), usecase.CreateRoleInput{Name: "admin"})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrRoleNameTaken.ErrorCode(), appErr.ErrorCode())
}

func TestRoleService_UpdateRole(t *testing.T) {
	env := newTestEnv(t)
	role := env.createRole(t, "support", []string{"users.read"})

	updated, err := env.roles.UpdateRole(t.Context(), usecase.UpdateRoleInput{
		ID:          role.ID,
		Permissions: []string{"users.read", "users.update"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"users.read", "users.update"}, updated.Permissions)
	assert.Equal(t, "support", updated.Name)
}

func TestRoleService_DeleteRoleGuarded(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")

	// The user's role cannot be deleted while assigned.
	err := env.roles.DeleteRole(t.Context(), user.RoleID, nil, nil)
	assert.ErrorIs(t, err, domainerrors.ErrRoleInUse)

	_, err = env.roles.GetRole(t.Context(), user.RoleID)
	assert.NoError(t, err)

	// Once the user is gone, the role can be removed.
	require.NoError(t, env.users.DeleteUser(t.Context(), user.ID, nil, nil))
	require.NoError(t, env.roles.DeleteRole(t.Context(), user.RoleID, nil, nil))

	_, err = env.roles.GetRole(t.Context(), user.RoleID)
	assert.ErrorIs(t, err, domainerrors.ErrRoleNotFound)
}

func TestRoleService_DeleteUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	err := env.roles.DeleteRole(t.Context(), uuid.New(), nil, nil)
	assert.ErrorIs(t, err, domainerrors.ErrRoleNotFound)
}

func TestRoleService_ListRoles(t *testing.T) {
	env := newTestEnv(t)
	env.createRole(t, "viewer", nil)
	env.createRole(t, "admin", nil)

	roles, err := env.roles.ListRoles(t.Context())
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "admin", roles[0].Name)
	assert.Equal(t, "viewer", roles[1].Name)
}
