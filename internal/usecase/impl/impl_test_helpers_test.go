package impl

import (
	"io"
	"log/slog"
	"testing"

	"idhub/config"
	"idhub/internal/domain/entity"
	"idhub/internal/domain/repository"
	"idhub/internal/infra/auth"
	"idhub/internal/infra/persistence/model"
	"idhub/internal/infra/persistence/postgres"
	"idhub/internal/usecase"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the services against an in-memory SQLite store so the
// full transaction paths are exercised without mocks.
type testEnv struct {
	db          *gorm.DB
	cfg         *config.Config
	users       usecase.UserUsecase
	roles       usecase.RoleUsecase
	auths       usecase.AuthUsecase
	credentials usecase.CredentialUsecase
	audits      usecase.AuditUsecase

	userRepo  repository.UserRepository
	auditRepo repository.AuditLogRepository
	credRepos map[entity.CredentialKind]repository.CredentialRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-access-secret"
	cfg.Auth = &config.AuthConfig{BcryptCost: bcrypt.MinCost}

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	txManager := postgres.NewTransactionManager(db)
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	auditRepo := postgres.NewAuditLogRepository(db)
	credRepos := postgres.NewCredentialRepositories(db)

	hasher := auth.NewBcryptHasher(cfg)
	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)
	tokenGen := auth.NewTokenGenerator()

	env := &testEnv{
		db:        db,
		cfg:       cfg,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		credRepos: credRepos,
	}

	env.users = NewUserService(UserServiceParams{
		TxManager: txManager,
		UserRepo:  userRepo,
		Hasher:    hasher,
		Config:    cfg,
		Logger:    discard,
	})
	env.roles = NewRoleService(RoleServiceParams{
		TxManager: txManager,
		RoleRepo:  roleRepo,
		Logger:    discard,
	})
	env.auths = NewAuthService(AuthServiceParams{
		TxManager:    txManager,
		UserRepo:     userRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		TokenGen:     tokenGen,
		Config:       cfg,
		Logger:       discard,
	})
	env.credentials = NewCredentialService(CredentialServiceParams{
		Repos:    credRepos,
		TokenGen: tokenGen,
		Config:   cfg,
		Logger:   discard,
	})
	env.audits = NewAuditService(AuditServiceParams{
		AuditRepo: auditRepo,
		Logger:    discard,
	})

	return env
}

// createRole provisions a role through the service layer.
func (env *testEnv) createRole(t *testing.T, name string, permissions []string) *entity.Role {
	t.Helper()

	role, err := env.roles.CreateRole(t.Context(), usecase.CreateRoleInput{
		Name:        name,
		Permissions: permissions,
	})
	require.NoError(t, err)

	return role
}

// createUser provisions an account with a known password.
func (env *testEnv) createUser(t *testing.T, email, password string) *entity.User {
	t.Helper()

	role := env.createRole(t, "role-"+email, []string{"users.read"})
	user, err := env.users.CreateUser(t.Context(), usecase.CreateUserInput{
		Email:     email,
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
		RoleID:    role.ID,
	})
	require.NoError(t, err)

	return user
}

// auditCount counts entries matching the action.
func (env *testEnv) auditCount(t *testing.T, action string) int64 {
	t.Helper()

	_, total, err := env.auditRepo.List(t.Context(), repository.AuditFilter{Page: 1, Limit: 1, Action: action})
	require.NoError(t, err)

	return total
}
