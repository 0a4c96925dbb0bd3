package impl

import (
	"fmt"
	"testing"

	"idhub/internal/domain/entity"
	domainerrors "idhub/internal/domain/errors"
	"idhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUser(t *testing.T) {
	env := newTestEnv(t)
	role := env.createRole(t, "member", []string{"users.read"})

	user, err := env.users.CreateUser(t.Context(), usecase.CreateUserInput{
		Email:     "alice@example.com",
		Password:  "s3cret-pass",
		FirstName: "Alice",
		LastName:  "Ng",
		RoleID:    role.ID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.True(t, user.IsActive)
	// The stored password is a hash, never the plaintext.
	assert.NotEqual(t, "s3cret-pass", user.Password)

	assert.EqualValues(t, 1, env.auditCount(t, auditActionUserCreate))
}

func TestUserService_CreateUserUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.CreateUser(t.Context(), usecase.CreateUserInput{
		Email:     "alice@example.com",
		Password:  "s3cret-pass",
		FirstName: "Alice",
		LastName:  "Ng",
		RoleID:    uuid.New(),
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRoleReference)

	// The failed transaction must not have left an audit entry behind.
	assert.Zero(t, env.auditCount(t, auditActionUserCreate))
}

func TestUserService_CreateUserDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "s3cret-pass")
	role := env.createRole(t, "other", nil)

	_, err := env.users.CreateUser(t.Context(), usecase.CreateUserInput{
		Email:     "alice@example.com",
		Password:  "s3cret-pass",
		FirstName: "Clone",
		LastName:  "Ng",
		RoleID:    role.ID,
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrEmailAlreadyRegistered.ErrorCode(), appErr.ErrorCode())
}

func TestUserService_UpdateUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")

	newFirst := "Alicia"
	updated, err := env.users.UpdateUser(t.Context(), usecase.UpdateUserInput{
		ID:        user.ID,
		FirstName: &newFirst,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.FirstName)
	// Untouched fields keep their values.
	assert.Equal(t, "alice@example.com", updated.Email)

	assert.EqualValues(t, 1, env.auditCount(t, auditActionUserUpdate))
}

func TestUserService_UpdateUserUnknownRole(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")

	ghost := uuid.New()
	_, err := env.users.UpdateUser(t.Context(), usecase.UpdateUserInput{
		ID:     user.ID,
		RoleID: &ghost,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRoleReference)
}

func TestUserService_DeactivateUserRetiresCredentials(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")

	login, err := env.auths.Login(t.Context(), usecase.LoginInput{Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, env.users.DeactivateUser(t.Context(), user.ID, nil, nil))

	// Still resolvable, but inactive.
	found, err := env.users.GetUser(t.Context(), user.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	valid, err := env.credentials.Validate(t.Context(), entity.KindSession, login.SessionToken)
	require.NoError(t, err)
	assert.False(t, valid)
	valid, err = env.credentials.Validate(t.Context(), entity.KindRefreshToken, login.RefreshToken)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestUserService_DeleteUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")

	require.NoError(t, env.users.DeleteUser(t.Context(), user.ID, nil, nil))

	_, err := env.users.GetUser(t.Context(), user.ID)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)

	// The deletion itself is on the record.
	assert.EqualValues(t, 1, env.auditCount(t, auditActionUserDelete))
}

func TestUserService_ListUsersEnvelope(t *testing.T) {
	env := newTestEnv(t)
	role := env.createRole(t, "member", nil)

	for i := 0; i < 25; i++ {
		_, err := env.users.CreateUser(t.Context(), usecase.CreateUserInput{
			Email:     fmt.Sprintf("user%02d@example.com", i),
			Password:  "s3cret-pass",
			FirstName: fmt.Sprintf("First%02d", i),
			LastName:  "Smith",
			RoleID:    role.ID,
		})
		require.NoError(t, err)
	}

	page, err := env.users.ListUsers(t.Context(), usecase.ListUsersInput{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.Limit)
	assert.EqualValues(t, 25, page.Pagination.Total)
	// 25 rows at 10 per page round up to 3 pages.
	assert.Equal(t, 3, page.Pagination.Pages)

	// Out-of-range pages return an empty items array, not null.
	page, err = env.users.ListUsers(t.Context(), usecase.ListUsersInput{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.EqualValues(t, 25, page.Pagination.Total)
}
