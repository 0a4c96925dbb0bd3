// Command seed bootstraps the baseline roles and the initial admin
// account. It is safe to run repeatedly: existing roles and accounts are
// left untouched.
package main

import (
	"context"
	"log/slog"
	"os"

	"idhub/config"
	"idhub/internal/domain/entity"
	domainerrors "idhub/internal/domain/errors"
	"idhub/internal/infra/auth"
	logs "idhub/internal/infra/log"
	"idhub/internal/infra/persistence/model"
	"idhub/internal/infra/persistence/postgres"
	"idhub/internal/usecase"
	"idhub/internal/usecase/impl"

	"github.com/pkg/errors"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@idhub.local"
	defaultAdminPassword = "ChangeMe-123"
)

var adminPermissions = []string{
	"users.read", "users.write", "users.delete",
	"roles.read", "roles.write", "roles.delete",
	"audit.read", "audit.purge",
	"maintenance.sweep",
}

var userPermissions = []string{
	"users.read",
}

func main() {
	if err := run(); err != nil {
		slog.Error("Seed failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return errors.Wrap(err, "failed to build logger")
	}

	if err := cfg.Validate(logger); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if cfg.Postgres == nil {
		return errors.New("postgres configuration is missing")
	}

	dsn, err := cfg.Postgres.DSN()
	if err != nil {
		return errors.Wrap(err, "failed to resolve PostgreSQL DSN")
	}

	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to open PostgreSQL")
	}

	if err := model.AutoMigrate(db); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}

	txManager := postgres.NewTransactionManager(db)
	userRepo := postgres.NewUserRepository(db)
	hasher := auth.NewBcryptHasher(cfg)

	roles := impl.NewRoleService(impl.RoleServiceParams{
		TxManager: txManager,
		RoleRepo:  postgres.NewRoleRepository(db),
		Logger:    logger,
	})
	users := impl.NewUserService(impl.UserServiceParams{
		TxManager: txManager,
		UserRepo:  userRepo,
		Hasher:    hasher,
		Config:    cfg,
		Logger:    logger,
	})

	ctx := context.Background()

	adminRole, err := ensureRole(ctx, roles, "admin", "Full administrative access", adminPermissions)
	if err != nil {
		return err
	}
	if _, err := ensureRole(ctx, roles, "user", "Regular account", userPermissions); err != nil {
		return err
	}

	if err := ensureAdminAccount(ctx, users, logger, adminRole); err != nil {
		return err
	}

	logger.Info("Seed completed")

	return nil
}

func ensureRole(ctx context.Context, roles usecase.RoleUsecase, name, description string, permissions []string) (*entity.Role, error) {
	role, err := roles.CreateRole(ctx, usecase.CreateRoleInput{
		Name:        name,
		Description: &description,
		Permissions: permissions,
	})
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, domainerrors.ErrRoleNameTaken) {
		return nil, errors.Wrapf(err, "failed to create role %q", name)
	}

	role, err = roles.GetRoleByName(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load existing role %q", name)
	}

	return role, nil
}

func ensureAdminAccount(ctx context.Context, users usecase.UserUsecase, logger *slog.Logger, adminRole *entity.Role) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = defaultAdminEmail
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
		logger.Warn("Using the default admin password, change it after the first login",
			slog.String("email", email))
	}

	_, err := users.CreateUser(ctx, usecase.CreateUserInput{
		Email:     email,
		Password:  password,
		FirstName: "System",
		LastName:  "Administrator",
		RoleID:    adminRole.ID,
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrEmailAlreadyRegistered) {
			logger.Info("Admin account already exists", slog.String("email", email))

			return nil
		}

		return errors.Wrap(err, "failed to create admin account")
	}

	logger.Info("Admin account created", slog.String("email", email))

	return nil
}
