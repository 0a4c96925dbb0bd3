package postgres

import (
	"context"
	"time"

	"idhub/internal/domain/entity"
	domainerrors "idhub/internal/domain/errors"
	"idhub/internal/domain/repository"
	"idhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// credentialSchema captures what differs between the three token-like
// entities: the terminal-flag column (empty for sessions) and whether
// retirement deletes the row instead of flipping a flag.
type credentialSchema struct {
	kind           entity.CredentialKind
	flagColumn     string
	retireByDelete bool
	tracksActivity bool
}

// credentialRepository is the single implementation behind
// repository.CredentialRepository for every credential kind. The model
// type parameter selects the table; the schema selects the flag semantics.
type credentialRepository[M any] struct {
	db         *gorm.DB
	schema     credentialSchema
	toDomain   func(*M) *entity.Credential
	fromDomain func(*entity.Credential) *M
}

// NewSessionRepository is the constructor for the session-backed credential repository.
func NewSessionRepository(db *gorm.DB) repository.CredentialRepository {
	return &credentialRepository[model.SessionModel]{
		db: db,
		schema: credentialSchema{
			kind:           entity.KindSession,
			retireByDelete: true,
			tracksActivity: true,
		},
		toDomain:   toSessionDomain,
		fromDomain: fromSessionDomain,
	}
}

// NewRefreshTokenRepository is the constructor for the refresh-token-backed credential repository.
func NewRefreshTokenRepository(db *gorm.DB) repository.CredentialRepository {
	return &credentialRepository[model.RefreshTokenModel]{
		db: db,
		schema: credentialSchema{
			kind:       entity.KindRefreshToken,
			flagColumn: "is_revoked",
		},
		toDomain:   toRefreshTokenDomain,
		fromDomain: fromRefreshTokenDomain,
	}
}

// NewPasswordResetTokenRepository is the constructor for the reset-token-backed credential repository.
func NewPasswordResetTokenRepository(db *gorm.DB) repository.CredentialRepository {
	return &credentialRepository[model.PasswordResetTokenModel]{
		db: db,
		schema: credentialSchema{
			kind:       entity.KindPasswordResetToken,
			flagColumn: "is_used",
		},
		toDomain:   toPasswordResetTokenDomain,
		fromDomain: fromPasswordResetTokenDomain,
	}
}

// NewCredentialRepositories builds the kind-indexed repository set used
// by the lifecycle services and sweeps.
func NewCredentialRepositories(db *gorm.DB) map[entity.CredentialKind]repository.CredentialRepository {
	return map[entity.CredentialKind]repository.CredentialRepository{
		entity.KindSession:            NewSessionRepository(db),
		entity.KindRefreshToken:       NewRefreshTokenRepository(db),
		entity.KindPasswordResetToken: NewPasswordResetTokenRepository(db),
	}
}

// Create persists a new credential of this repository's kind.
func (repo *credentialRepository[M]) Create(ctx context.Context, cred *entity.Credential) error {
	m := repo.fromDomain(cred)

	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrCredentialConflict.WrapMessage("credential token already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrInvalidUserReference.WrapMessage("credential references unknown user")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "missing required credential field")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create credential")
	}

	// Update the entity with generated values.
	created := repo.toDomain(m)
	cred.ID = created.ID
	cred.CreatedAt = created.CreatedAt
	cred.Kind = repo.schema.kind

	return nil
}

// FindByToken retrieves a credential by its exact token string.
func (repo *credentialRepository[M]) FindByToken(ctx context.Context, token string) (*entity.Credential, error) {
	var m M
	err := repo.db.WithContext(ctx).Where("token = ?", token).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCredentialNotFound
		}

		return nil, errors.WithStack(err)
	}

	return repo.toDomain(&m), nil
}

// Retire performs the one-way terminal transition. Already-retired
// credentials are left untouched and the call succeeds; only an unknown
// token for flag-bearing kinds is an error.
func (repo *credentialRepository[M]) Retire(ctx context.Context, token string) error {
	if repo.schema.retireByDelete {
		// Sessions end by deletion. Deleting an already-ended session is
		// a silent success to keep retirement idempotent.
		if err := repo.db.WithContext(ctx).Where("token = ?", token).Delete(new(M)).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	res := repo.db.WithContext(ctx).
		Model(new(M)).
		Where("token = ? AND "+repo.schema.flagColumn+" = ?", token, false).
		Update(repo.schema.flagColumn, true)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}

	if res.RowsAffected == 0 {
		// Either the credential is already retired (fine) or it does not
		// exist (caller error).
		if _, err := repo.FindByToken(ctx, token); err != nil {
			return err
		}
	}

	return nil
}

// Consume atomically validates and retires the credential. The guard
// predicate is re-evaluated by the store inside the conditional write, so
// concurrent consumers cannot both succeed.
func (repo *credentialRepository[M]) Consume(ctx context.Context, token string, now time.Time) (*entity.Credential, error) {
	cred, err := repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, repository.ErrCredentialInvalid
		}

		return nil, err
	}

	var res *gorm.DB
	if repo.schema.retireByDelete {
		res = repo.db.WithContext(ctx).
			Where("token = ? AND expires_at > ?", token, now).
			Delete(new(M))
	} else {
		res = repo.db.WithContext(ctx).
			Model(new(M)).
			Where("token = ? AND "+repo.schema.flagColumn+" = ? AND expires_at > ?", token, false, now).
			Update(repo.schema.flagColumn, true)
	}
	if res.Error != nil {
		return nil, errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race, already retired, or expired.
		return nil, repository.ErrCredentialInvalid
	}

	cred.Retired = true

	return cred, nil
}

// RetireAllForUser retires every credential owned by the user regardless
// of its current validity state.
func (repo *credentialRepository[M]) RetireAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var res *gorm.DB
	if repo.schema.retireByDelete {
		res = repo.db.WithContext(ctx).Where("user_id = ?", userID).Delete(new(M))
	} else {
		res = repo.db.WithContext(ctx).
			Model(new(M)).
			Where("user_id = ? AND "+repo.schema.flagColumn+" = ?", userID, false).
			Update(repo.schema.flagColumn, true)
	}
	if res.Error != nil {
		return 0, errors.WithStack(res.Error)
	}

	return res.RowsAffected, nil
}

// SweepExpired deletes every row whose expiry lies before the given
// snapshot. Rows issued after the snapshot are untouched by construction.
func (repo *credentialRepository[M]) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Where("expires_at < ?", now).Delete(new(M))
	if res.Error != nil {
		return 0, errors.WithStack(res.Error)
	}

	return res.RowsAffected, nil
}

// SweepRetired deletes every row whose terminal flag is set. Sessions
// have no flag; their retirement already deleted the row.
func (repo *credentialRepository[M]) SweepRetired(ctx context.Context) (int64, error) {
	if repo.schema.flagColumn == "" {
		return 0, nil
	}

	res := repo.db.WithContext(ctx).Where(repo.schema.flagColumn+" = ?", true).Delete(new(M))
	if res.Error != nil {
		return 0, errors.WithStack(res.Error)
	}

	return res.RowsAffected, nil
}

// ListForUser returns the user's credentials, newest first.
func (repo *credentialRepository[M]) ListForUser(ctx context.Context, userID uuid.UUID, activeOnly bool, now time.Time) ([]*entity.Credential, error) {
	query := repo.db.WithContext(ctx).Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("expires_at > ?", now)
		if repo.schema.flagColumn != "" {
			query = query.Where(repo.schema.flagColumn+" = ?", false)
		}
	}

	var models []M
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	creds := make([]*entity.Credential, 0, len(models))
	for i := range models {
		creds = append(creds, repo.toDomain(&models[i]))
	}

	return creds, nil
}

// CountActiveForUser counts unretired, unexpired credentials for the user.
func (repo *credentialRepository[M]) CountActiveForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	query := repo.db.WithContext(ctx).
		Model(new(M)).
		Where("user_id = ? AND expires_at > ?", userID, now)
	if repo.schema.flagColumn != "" {
		query = query.Where(repo.schema.flagColumn+" = ?", false)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, errors.WithStack(err)
	}

	return count, nil
}

// Touch refreshes the session's last-activity timestamp.
func (repo *credentialRepository[M]) Touch(ctx context.Context, token string, at time.Time) error {
	if !repo.schema.tracksActivity {
		return repository.ErrActivityNotTracked
	}

	res := repo.db.WithContext(ctx).
		Model(new(M)).
		Where("token = ?", token).
		Update("last_activity_at", at)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrCredentialNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toSessionDomain(data *model.SessionModel) *entity.Credential {
	if data == nil {
		return nil
	}

	lastActivity := data.LastActivityAt

	return &entity.Credential{
		ID:             data.ID,
		Kind:           entity.KindSession,
		Token:          data.Token,
		UserID:         data.UserID,
		ExpiresAt:      data.ExpiresAt,
		CreatedAt:      data.CreatedAt,
		LastActivityAt: &lastActivity,
		IPAddress:      data.IPAddress,
		UserAgent:      data.UserAgent,
	}
}

func fromSessionDomain(data *entity.Credential) *model.SessionModel {
	if data == nil {
		return nil
	}

	m := &model.SessionModel{
		ID:        data.ID,
		Token:     data.Token,
		UserID:    data.UserID,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
		IPAddress: data.IPAddress,
		UserAgent: data.UserAgent,
	}
	if data.LastActivityAt != nil {
		m.LastActivityAt = *data.LastActivityAt
	}

	return m
}

func toRefreshTokenDomain(data *model.RefreshTokenModel) *entity.Credential {
	if data == nil {
		return nil
	}

	return &entity.Credential{
		ID:        data.ID,
		Kind:      entity.KindRefreshToken,
		Token:     data.Token,
		UserID:    data.UserID,
		ExpiresAt: data.ExpiresAt,
		Retired:   data.IsRevoked,
		CreatedAt: data.CreatedAt,
	}
}

func fromRefreshTokenDomain(data *entity.Credential) *model.RefreshTokenModel {
	if data == nil {
		return nil
	}

	return &model.RefreshTokenModel{
		ID:        data.ID,
		Token:     data.Token,
		UserID:    data.UserID,
		ExpiresAt: data.ExpiresAt,
		IsRevoked: data.Retired,
		CreatedAt: data.CreatedAt,
	}
}

func toPasswordResetTokenDomain(data *model.PasswordResetTokenModel) *entity.Credential {
	if data == nil {
		return nil
	}

	return &entity.Credential{
		ID:        data.ID,
		Kind:      entity.KindPasswordResetToken,
		Token:     data.Token,
		UserID:    data.UserID,
		ExpiresAt: data.ExpiresAt,
		Retired:   data.IsUsed,
		CreatedAt: data.CreatedAt,
	}
}

func fromPasswordResetTokenDomain(data *entity.Credential) *model.PasswordResetTokenModel {
	if data == nil {
		return nil
	}

	return &model.PasswordResetTokenModel{
		ID:        data.ID,
		Token:     data.Token,
		UserID:    data.UserID,
		ExpiresAt: data.ExpiresAt,
		IsUsed:    data.Retired,
		CreatedAt: data.CreatedAt,
	}
}
