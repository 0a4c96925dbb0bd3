package impl

import (
	"context"
	"log/slog"
	"time"

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

// Audit actions recorded by the authentication flows.
const (
	auditActionLogin          = "auth.login"
	auditActionRefresh        = "auth.refresh"
	auditActionLogout         = "auth.logout"
	auditActionLogoutAll      = "auth.logout_all"
	auditActionForgotPassword = "auth.forgot_password"
	auditActionResetPassword  = "auth.reset_password"
	auditActionChangePassword = "auth.change_password"

	auditEntityUser = "user"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	tokenGen     service.TokenGenerator
	ttls         credentialTTLs
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	TokenGen     service.TokenGenerator
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		tokenGen:     params.TokenGen,
		ttls:         newCredentialTTLs(params.Config),
		logger:       params.Logger,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// newCredential assembles an unsaved credential of the kind with a fresh
// token and the configured TTL.
func (srv *authService) newCredential(kind entity.CredentialKind, userID uuid.UUID, meta *entity.ClientMeta) (*entity.Credential, error) {
	token, err := srv.tokenGen.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate credential token")
	}

	cred := &entity.Credential{
		Kind:      kind,
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(srv.ttls.forKind(kind)),
	}
	if kind == entity.KindSession && meta != nil {
		if meta.IPAddress != "" {
			cred.IPAddress = &meta.IPAddress
		}
		if meta.UserAgent != "" {
			cred.UserAgent = &meta.UserAgent
		}
	}

	return cred, nil
}

func recordAudit(ctx context.Context, auditRepo repository.AuditLogRepository, action string, userID uuid.UUID, meta *entity.ClientMeta) error {
	log := &entity.AuditLog{
		Action:     action,
		EntityType: auditEntityUser,
		EntityID:   userID.String(),
		UserID:     userID,
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

func rolePermissions(user *entity.User) []string {
	if user.Role == nil {
		return nil
	}

	return user.Role.Permissions
}

// Login orchestrates the user login process.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.String("reason", "unknown email"))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to load user for login")
	}

	// Check password outside the transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, user.Password) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.String("reason", "password mismatch"))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	if !user.IsActive {
		srv.log(ctx).Warn("Login rejected for deactivated account", slog.Any("userID", user.ID))

		return nil, errors.Wrap(domainerrors.ErrAccountDisabled, "login failed")
	}

	accessToken, err := srv.tokenService.GenerateAccessToken(user.ID, user.Email, rolePermissions(user))
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	session, err := srv.newCredential(entity.KindSession, user.ID, input.Meta)
	if err != nil {
		return nil, err
	}
	refresh, err := srv.newCredential(entity.KindRefreshToken, user.ID, nil)
	if err != nil {
		return nil, err
	}

	err = srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		if err := factory.Credentials(entity.KindSession).Create(ctx, session); err != nil {
			return errors.Wrap(err, "failed to create session")
		}
		if err := factory.Credentials(entity.KindRefreshToken).Create(ctx, refresh); err != nil {
			return errors.Wrap(err, "failed to create refresh token")
		}

		return recordAudit(ctx, factory.AuditLogs(), auditActionLogin, user.ID, input.Meta)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute login transaction", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute login transaction")
	}

	srv.log(ctx).Info("User logged in", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		SessionToken: session.Token,
		RefreshToken: refresh.Token,
		User:         user,
	}, nil
}

// Refresh atomically consumes the presented refresh token and issues a
// replacement pair. The conditional consume guarantees a token can only
// ever be traded in once, even under concurrent presentation.
func (srv *authService) Refresh(ctx context.Context, input usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	srv.log(ctx).Debug("Attempting token refresh")

	var accessToken string
	var newRefresh *entity.Credential

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		refreshRepo := factory.Credentials(entity.KindRefreshToken)

		consumed, err := refreshRepo.Consume(ctx, input.RefreshToken, time.Now())
		if err != nil {
			if errors.Is(err, repository.ErrCredentialInvalid) {
				return errors.Wrap(domainerrors.ErrCredentialInvalid, "refresh token rejected")
			}

			return errors.Wrap(err, "failed to consume refresh token")
		}

		user, err := factory.Users().FindByID(ctx, consumed.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to load user for refresh")
		}
		if !user.IsActive {
			return errors.Wrap(domainerrors.ErrAccountDisabled, "refresh rejected")
		}

		accessToken, err = srv.tokenService.GenerateAccessToken(user.ID, user.Email, rolePermissions(user))
		if err != nil {
			return errors.Wrap(err, "failed to generate access token")
		}

		newRefresh, err = srv.newCredential(entity.KindRefreshToken, user.ID, nil)
		if err != nil {
			return err
		}
		if err := refreshRepo.Create(ctx, newRefresh); err != nil {
			return errors.Wrap(err, "failed to create rotated refresh token")
		}

		return recordAudit(ctx, factory.AuditLogs(), auditActionRefresh, user.ID, input.Meta)
	})
	if err != nil {
		srv.log(ctx).Warn("Token refresh failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute refresh transaction")
	}

	return &usecase.RefreshOutput{
		AccessToken:  accessToken,
		RefreshToken: newRefresh.Token,
	}, nil
}

// Logout ends the session and retires the accompanying refresh token.
// Unknown tokens are tolerated so logout never fails the client.
func (srv *authService) Logout(ctx context.Context, input usecase.LogoutInput) error {
	srv.log(ctx).Debug("Attempting logout")

	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		sessionRepo := factory.Credentials(entity.KindSession)

		var userID *uuid.UUID
		session, err := sessionRepo.FindByToken(ctx, input.SessionToken)
		switch {
		case err == nil:
			userID = &session.UserID
		case errors.Is(err, repository.ErrCredentialNotFound):
			// Already gone; logout stays idempotent.
		default:
			return errors.Wrap(err, "failed to look up session")
		}

		if err := sessionRepo.Retire(ctx, input.SessionToken); err != nil {
			return errors.Wrap(err, "failed to end session")
		}

		if input.RefreshToken != "" {
			err := factory.Credentials(entity.KindRefreshToken).Retire(ctx, input.RefreshToken)
			if err != nil && !errors.Is(err, repository.ErrCredentialNotFound) {
				return errors.Wrap(err, "failed to retire refresh token")
			}
		}

		if userID == nil {
			return nil
		}

		return recordAudit(ctx, factory.AuditLogs(), auditActionLogout, *userID, input.Meta)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute logout transaction", slog.Any("error", err))

		return errors.Wrap(err, "failed to execute logout transaction")
	}

	srv.log(ctx).Info("User logged out")

	return nil
}

// LogoutAll retires every session and refresh token of the user.
func (srv *authService) LogoutAll(ctx context.Context, userID uuid.UUID, meta *entity.ClientMeta) (int64, error) {
	srv.log(ctx).Info("Logging out all devices", slog.Any("userID", userID))

	var total int64
	err := srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		sessions, err := factory.Credentials(entity.KindSession).RetireAllForUser(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to retire sessions")
		}
		refreshTokens, err := factory.Credentials(entity.KindRefreshToken).RetireAllForUser(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to retire refresh tokens")
		}
		total = sessions + refreshTokens

		return recordAudit(ctx, factory.AuditLogs(), auditActionLogoutAll, userID, meta)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute logout-all transaction", slog.Any("userID", userID), slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to execute logout-all transaction")
	}

	return total, nil
}

// ForgotPassword issues a single-use reset token. Unknown or deactivated
// accounts produce an empty output instead of an error, so the endpoint
// does not disclose which emails exist.
func (srv *authService) ForgotPassword(ctx context.Context, input usecase.ForgotPasswordInput) (*usecase.ForgotPasswordOutput, error) {
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Password reset requested for unknown email", slog.String("email", input.Email))

			return &usecase.ForgotPasswordOutput{}, nil
		}

		return nil, errors.Wrap(err, "failed to load user for password reset")
	}
	if !user.IsActive {
		srv.log(ctx).Warn("Password reset requested for deactivated account", slog.Any("userID", user.ID))

		return &usecase.ForgotPasswordOutput{}, nil
	}

	reset, err := srv.newCredential(entity.KindPasswordResetToken, user.ID, nil)
	if err != nil {
		return nil, err
	}

	err = srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		if err := factory.Credentials(entity.KindPasswordResetToken).Create(ctx, reset); err != nil {
			return errors.Wrap(err, "failed to create password reset token")
		}

		return recordAudit(ctx, factory.AuditLogs(), auditActionForgotPassword, user.ID, input.Meta)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute forgot-password transaction", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute forgot-password transaction")
	}

	srv.log(ctx).Info("Password reset token issued", slog.Any("userID", user.ID))

	return &usecase.ForgotPasswordOutput{ResetToken: reset.Token}, nil
}

// ResetPassword consumes the reset token, replaces the password, and
// retires every live credential of the user in one transaction.
func (srv *authService) ResetPassword(ctx context.Context, input usecase.ResetPasswordInput) error {
	hashed, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	err = srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		consumed, err := factory.Credentials(entity.KindPasswordResetToken).Consume(ctx, input.Token, time.Now())
		if err != nil {
			if errors.Is(err, repository.ErrCredentialInvalid) {
				return errors.Wrap(domainerrors.ErrCredentialInvalid, "password reset rejected")
			}

			return errors.Wrap(err, "failed to consume password reset token")
		}

		if err := factory.Users().UpdatePassword(ctx, consumed.UserID, hashed); err != nil {
			return errors.Wrap(err, "failed to update password")
		}

		if _, err := factory.Credentials(entity.KindSession).RetireAllForUser(ctx, consumed.UserID); err != nil {
			return errors.Wrap(err, "failed to retire sessions after password reset")
		}
		if _, err := factory.Credentials(entity.KindRefreshToken).RetireAllForUser(ctx, consumed.UserID); err != nil {
			return errors.Wrap(err, "failed to retire refresh tokens after password reset")
		}

		return recordAudit(ctx, factory.AuditLogs(), auditActionResetPassword, consumed.UserID, input.Meta)
	})
	if err != nil {
		srv.log(ctx).Warn("Password reset failed", slog.Any("error", err))

		return errors.Wrap(err, "failed to execute password reset transaction")
	}

	srv.log(ctx).Info("Password reset completed")

	return nil
}

// ChangePassword verifies the old password before replacing it, then
// retires every live credential of the user.
func (srv *authService) ChangePassword(ctx context.Context, input usecase.ChangePasswordInput) error {
	user, err := srv.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrUserNotFound, "change password failed")
		}

		return errors.Wrap(err, "failed to load user for password change")
	}

	if !srv.hasher.Check(input.OldPassword, user.Password) {
		srv.log(ctx).Warn("Password change rejected", slog.Any("userID", input.UserID), slog.String("reason", "old password mismatch"))

		return errors.Wrap(domainerrors.ErrInvalidCredentials, "change password failed")
	}

	hashed, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	err = srv.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		if err := factory.Users().UpdatePassword(ctx, input.UserID, hashed); err != nil {
			return errors.Wrap(err, "failed to update password")
		}

		if _, err := factory.Credentials(entity.KindSession).RetireAllForUser(ctx, input.UserID); err != nil {
			return errors.Wrap(err, "failed to retire sessions after password change")
		}
		if _, err := factory.Credentials(entity.KindRefreshToken).RetireAllForUser(ctx, input.UserID); err != nil {
			return errors.Wrap(err, "failed to retire refresh tokens after password change")
		}

		return recordAudit(ctx, factory.AuditLogs(), auditActionChangePassword, input.UserID, input.Meta)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute password change transaction", slog.Any("userID", input.UserID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute password change transaction")
	}

	srv.log(ctx).Info("Password changed", slog.Any("userID", input.UserID))

	return nil
}
