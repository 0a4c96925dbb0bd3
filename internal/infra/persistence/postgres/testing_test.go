package postgres

import (
	"testing"

	"idhub/internal/domain/entity"
	"idhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database and migrates the
// full schema. Each test gets its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, model.AutoMigrate(db))

	return db
}

// seedRole inserts a role directly through the repository and returns it.
func seedRole(t *testing.T, db *gorm.DB, name string, permissions []string) *entity.Role {
	t.Helper()

	role := &entity.Role{
		Name:        name,
		Permissions: permissions,
	}
	require.NoError(t, NewRoleRepository(db).Create(t.Context(), role))
	require.NotEqual(t, uuid.Nil, role.ID)

	return role
}

// seedUser inserts a user with a fresh role and returns it.
func seedUser(t *testing.T, db *gorm.DB, email string) *entity.User {
	t.Helper()

	role := seedRole(t, db, "role-for-"+email, []string{"users.read"})

	user := &entity.User{
		Email:     email,
		Password:  "$2a$10$examplehashexamplehashexamplehashexampleha",
		FirstName: "Test",
		LastName:  "User",
		RoleID:    role.ID,
		IsActive:  true,
	}
	require.NoError(t, NewUserRepository(db).Create(t.Context(), user))
	require.NotEqual(t, uuid.Nil, user.ID)

	return user
}
