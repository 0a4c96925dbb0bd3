// Package impl contains the implementation of the application's business logic.
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

const (
	defaultSessionTTL       = 24 * time.Hour
	defaultRefreshTokenTTL  = 30 * 24 * time.Hour
	defaultPasswordResetTTL = time.Hour
)

// credentialTTLs resolves the per-kind lifetimes from configuration,
// falling back to defaults when a value is unset.
type credentialTTLs struct {
	session       time.Duration
	refreshToken  time.Duration
	passwordReset time.Duration
}

func newCredentialTTLs(cfg *config.Config) credentialTTLs {
	ttls := credentialTTLs{
		session:       defaultSessionTTL,
		refreshToken:  defaultRefreshTokenTTL,
		passwordReset: defaultPasswordResetTTL,
	}
	if cfg == nil || cfg.Auth == nil {
		return ttls
	}

	if cfg.Auth.SessionTTL > 0 {
		ttls.session = cfg.Auth.SessionTTL
	}
	if cfg.Auth.RefreshTokenTTL > 0 {
		ttls.refreshToken = cfg.Auth.RefreshTokenTTL
	}
	if cfg.Auth.PasswordResetTTL > 0 {
		ttls.passwordReset = cfg.Auth.PasswordResetTTL
	}

	return ttls
}

func (t credentialTTLs) forKind(kind entity.CredentialKind) time.Duration {
	switch kind {
	case entity.KindSession:
		return t.session
	case entity.KindRefreshToken:
		return t.refreshToken
	default:
		return t.passwordReset
	}
}

// credentialService implements the CredentialUsecase interface on top of
// the kind-indexed repository set.
type credentialService struct {
	repos    map[entity.CredentialKind]repository.CredentialRepository
	tokenGen service.TokenGenerator
	ttls     credentialTTLs
	logger   *slog.Logger
}

// CredentialServiceParams holds dependencies for credentialService, injected by Fx.
type CredentialServiceParams struct {
	fx.In

	Repos    map[entity.CredentialKind]repository.CredentialRepository
	TokenGen service.TokenGenerator
	Config   *config.Config
	Logger   *slog.Logger
}

// NewCredentialService is the constructor for credentialService.
func NewCredentialService(params CredentialServiceParams) usecase.CredentialUsecase {
	return &credentialService{
		repos:    params.Repos,
		tokenGen: params.TokenGen,
		ttls:     newCredentialTTLs(params.Config),
		logger:   params.Logger,
	}
}

func (srv *credentialService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *credentialService) repo(kind entity.CredentialKind) (repository.CredentialRepository, error) {
	repo, ok := srv.repos[kind]
	if !ok {
		return nil, errors.Errorf("unknown credential kind %q", kind)
	}

	return repo, nil
}

// Issue generates a fresh opaque token and persists the credential.
func (srv *credentialService) Issue(ctx context.Context, input usecase.IssueCredentialInput) (*entity.Credential, error) {
	repo, err := srv.repo(input.Kind)
	if err != nil {
		return nil, err
	}

	token, err := srv.tokenGen.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate credential token")
	}

	cred := &entity.Credential{
		Kind:      input.Kind,
		Token:     token,
		UserID:    input.UserID,
		ExpiresAt: time.Now().Add(srv.ttls.forKind(input.Kind)),
	}
	if input.Kind == entity.KindSession && input.Meta != nil {
		if input.Meta.IPAddress != "" {
			cred.IPAddress = &input.Meta.IPAddress
		}
		if input.Meta.UserAgent != "" {
			cred.UserAgent = &input.Meta.UserAgent
		}
	}

	if err := repo.Create(ctx, cred); err != nil {
		srv.log(ctx).Error("Failed to issue credential",
			slog.String("kind", input.Kind.String()), slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue credential")
	}

	srv.log(ctx).Debug("Issued credential",
		slog.String("kind", input.Kind.String()), slog.Any("userID", input.UserID))

	return cred, nil
}

// Validate reports whether the token is usable at this instant. All
// checks share one time snapshot.
func (srv *credentialService) Validate(ctx context.Context, kind entity.CredentialKind, token string) (bool, error) {
	repo, err := srv.repo(kind)
	if err != nil {
		return false, err
	}

	now := time.Now()

	cred, err := repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return false, nil
		}

		return false, errors.Wrap(err, "failed to look up credential")
	}

	return cred.Valid(now), nil
}

// Retire performs the one-way terminal transition.
func (srv *credentialService) Retire(ctx context.Context, kind entity.CredentialKind, token string) error {
	repo, err := srv.repo(kind)
	if err != nil {
		return err
	}

	if err := repo.Retire(ctx, token); err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return domainerrors.ErrCredentialInvalid.WrapMessage("cannot retire unknown credential")
		}

		return errors.Wrap(err, "failed to retire credential")
	}

	return nil
}

// RetireAllForUser retires every credential of the kind owned by the user.
func (srv *credentialService) RetireAllForUser(ctx context.Context, kind entity.CredentialKind, userID uuid.UUID) (int64, error) {
	repo, err := srv.repo(kind)
	if err != nil {
		return 0, err
	}

	count, err := repo.RetireAllForUser(ctx, userID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to retire user credentials")
	}

	if count > 0 {
		srv.log(ctx).Info("Retired user credentials",
			slog.String("kind", kind.String()), slog.Any("userID", userID), slog.Int64("count", count))
	}

	return count, nil
}

// ListForUser returns the user's credentials of the kind, newest first.
func (srv *credentialService) ListForUser(ctx context.Context, kind entity.CredentialKind, userID uuid.UUID, activeOnly bool) ([]*entity.Credential, error) {
	repo, err := srv.repo(kind)
	if err != nil {
		return nil, err
	}

	creds, err := repo.ListForUser(ctx, userID, activeOnly, time.Now())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user credentials")
	}

	return creds, nil
}

// CountActive counts the user's currently usable credentials of the kind.
func (srv *credentialService) CountActive(ctx context.Context, kind entity.CredentialKind, userID uuid.UUID) (int64, error) {
	repo, err := srv.repo(kind)
	if err != nil {
		return 0, err
	}

	count, err := repo.CountActiveForUser(ctx, userID, time.Now())
	if err != nil {
		return 0, errors.Wrap(err, "failed to count active credentials")
	}

	return count, nil
}

// TouchSession refreshes a session's last-activity timestamp.
func (srv *credentialService) TouchSession(ctx context.Context, token string) error {
	repo, err := srv.repo(entity.KindSession)
	if err != nil {
		return err
	}

	if err := repo.Touch(ctx, token, time.Now()); err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return domainerrors.ErrCredentialInvalid.WrapMessage("cannot touch unknown session")
		}

		return errors.Wrap(err, "failed to touch session")
	}

	return nil
}

// Sweep removes expired rows for every kind and retired rows for the
// flag-bearing kinds. The expiry snapshot is taken once, so rows issued
// during the sweep are never collected.
func (srv *credentialService) Sweep(ctx context.Context) (*usecase.SweepReport, error) {
	now := time.Now()
	report := &usecase.SweepReport{
		Expired: make(map[entity.CredentialKind]int64, len(entity.CredentialKinds)),
		Retired: make(map[entity.CredentialKind]int64, len(entity.CredentialKinds)),
	}

	for _, kind := range entity.CredentialKinds {
		repo, err := srv.repo(kind)
		if err != nil {
			return nil, err
		}

		expired, err := repo.SweepExpired(ctx, now)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to sweep expired %s credentials", kind)
		}
		report.Expired[kind] = expired

		retired, err := repo.SweepRetired(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to sweep retired %s credentials", kind)
		}
		report.Retired[kind] = retired
	}

	srv.log(ctx).Info("Credential sweep completed",
		slog.Any("expired", report.Expired), slog.Any("retired", report.Retired))

	return report, nil
}
