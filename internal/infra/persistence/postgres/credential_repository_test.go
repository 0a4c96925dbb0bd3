package postgres

import (
	"testing"
	"time"

	"idhub/internal/domain/entity"
	domainerrors "idhub/internal/domain/errors"
	"idhub/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func credentialRepos(db *gorm.DB) map[entity.CredentialKind]repository.CredentialRepository {
	return map[entity.CredentialKind]repository.CredentialRepository{
		entity.KindSession:            NewSessionRepository(db),
		entity.KindRefreshToken:       NewRefreshTokenRepository(db),
		entity.KindPasswordResetToken: NewPasswordResetTokenRepository(db),
	}
}

func newCredential(userID uuid.UUID, token string, expiresAt time.Time) *entity.Credential {
	return &entity.Credential{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
}

func TestCredentialRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	now := time.Now()

	for kind, repo := range credentialRepos(db) {
		t.Run(kind.String(), func(t *testing.T) {
			cred := newCredential(user.ID, "tok-"+kind.String(), now.Add(time.Hour))
			require.NoError(t, repo.Create(t.Context(), cred))
			assert.NotEqual(t, uuid.Nil, cred.ID)
			assert.Equal(t, kind, cred.Kind)

			found, err := repo.FindByToken(t.Context(), cred.Token)
			require.NoError(t, err)
			assert.Equal(t, cred.ID, found.ID)
			assert.Equal(t, user.ID, found.UserID)
			assert.False(t, found.Retired)
			assert.True(t, found.Valid(now))
		})
	}
}

func TestCredentialRepository_CreateDuplicateToken(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	repo := NewRefreshTokenRepository(db)

	first := newCredential(user.ID, "dup-token", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(t.Context(), first))

	second := newCredential(user.ID, "dup-token", time.Now().Add(time.Hour))
	err := repo.Create(t.Context(), second)
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrCredentialConflict.ErrorCode(), appErr.ErrorCode())
}

func TestCredentialRepository_FindByTokenNotFound(t *testing.T) {
	db := newTestDB(t)

	for kind, repo := range credentialRepos(db) {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := repo.FindByToken(t.Context(), "missing")
			assert.ErrorIs(t, err, repository.ErrCredentialNotFound)
		})
	}
}

func TestCredentialRepository_ExpiredAtIssuanceIsInvalid(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	now := time.Now()

	for kind, repo := range credentialRepos(db) {
		t.Run(kind.String(), func(t *testing.T) {
			cred := newCredential(user.ID, "expired-"+kind.String(), now.Add(-time.Minute))
			require.NoError(t, repo.Create(t.Context(), cred))

			found, err := repo.FindByToken(t.Context(), cred.Token)
			require.NoError(t, err)
			assert.False(t, found.Valid(now))

			count, err := repo.CountActiveForUser(t.Context(), user.ID, now)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestCredentialRepository_RetireIsOneWayAndIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	now := time.Now()
	repo := NewRefreshTokenRepository(db)

	cred := newCredential(user.ID, "retire-me", now.Add(time.Hour))
	require.NoError(t, repo.Create(t.Context(), cred))

	require.NoError(t, repo.Retire(t.Context(), cred.Token))

	found, err := repo.FindByToken(t.Context(), cred.Token)
	require.NoError(t, err)
	assert.True(t, found.Retired)
	assert.False(t, found.Valid(now))

	// Second retirement is a silent success and changes nothing.
	require.NoError(t, repo.Retire(t.Context(), cred.Token))

	found, err = repo.FindByToken(t.Context(), cred.Token)
	require.NoError(t, err)
	assert.True(t, found.Retired)
}

func TestCredentialRepository_RetireUnknownToken(t *testing.T) {
	db := newTestDB(t)

	err := NewRefreshTokenRepository(db).Retire(t.Context(), "missing")
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)

	// Deleting an absent session is a silent success.
	assert.NoError(t, NewSessionRepository(db).Retire(t.Context(), "missing"))
}

func TestCredentialRepository_SessionRetireDeletesRow(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	repo := NewSessionRepository(db)

	cred := newCredential(user.ID, "session-token", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(t.Context(), cred))

	require.NoError(t, repo.Retire(t.Context(), cred.Token))

	_, err := repo.FindByToken(t.Context(), cred.Token)
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)
}

func TestCredentialRepository_ConsumeHappyPath(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	now := time.Now()

	for kind, repo := range credentialRepos(db) {
		t.Run(kind.String(), func(t *testing.T) {
			cred := newCredential(user.ID, "consume-"+kind.String(), now.Add(time.Hour))
			require.NoError(t, repo.Create(t.Context(), cred))

			consumed, err := repo.Consume(t.Context(), cred.Token, now)
			require.NoError(t, err)
			assert.Equal(t, user.ID, consumed.UserID)
			assert.True(t, consumed.Retired)
		})
	}
}

func TestCredentialRepository_ConsumeExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	now := time.Now()

	for kind, repo := range credentialRepos(db) {
		t.Run(kind.String(), func(t *testing.T) {
			cred := newCredential(user.ID, "once-"+kind.String(), now.Add(time.Hour))
			require.NoError(t, repo.Create(t.Context(), cred))

			_, err := repo.Consume(t.Context(), cred.Token, now)
			require.NoError(t, err)

			// The second attempt always loses.
			_, err = repo.Consume(t.Context(), cred.Token, now)
			assert.ErrorIs(t, err, repository.ErrCredentialInvalid)
		})
	}
}

func TestCredentialRepository_ConsumeExpired(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	now := time.Now()
	repo := NewPasswordResetTokenRepository(db)

	cred := newCredential(user.ID, "stale-token", now.Add(-time.Minute))
	require.NoError(t, repo.Create(t.Context(), cred))

	_, err := repo.Consume(t.Context(), cred.Token, now)
	assert.ErrorIs(t, err, repository.ErrCredentialInvalid)

	// The failed consume must not have flipped the flag.
	found, err := repo.FindByToken(t.Context(), cred.Token)
	require.NoError(t, err)
	assert.False(t, found.Retired)
}

func TestCredentialRepository_ConsumeUnknownToken(t *testing.T) {
	db := newTestDB(t)

	for kind, repo := range credentialRepos(db) {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := repo.Consume(t.Context(), "missing", time.Now())
			assert.ErrorIs(t, err, repository.ErrCredentialInvalid)
		})
	}
}

func TestCredentialRepository_RetireAllForUser(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")
	now := time.Now()

	for kind, repo := range credentialRepos(db) {
		t.Run(kind.String(), func(t *testing.T) {
			for _, token := range []string{"a-" + kind.String(), "b-" + kind.String()} {
				require.NoError(t, repo.Create(t.Context(), newCredential(owner.ID, token, now.Add(time.Hour))))
			}
			require.NoError(t, repo.Create(t.Context(), newCredential(other.ID, "keep-"+kind.String(), now.Add(time.Hour))))

			affected, err := repo.RetireAllForUser(t.Context(), owner.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 2, affected)

			count, err := repo.CountActiveForUser(t.Context(), owner.ID, now)
			require.NoError(t, err)
			assert.Zero(t, count)

			// The other user's credential is untouched.
			count, err = repo.CountActiveForUser(t.Context(), other.ID, now)
			require.NoError(t, err)
			assert.EqualValues(t, 1, count)
		})
	}
}

func TestCredentialRepository_SweepExpiredKeepsLiveRows(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	now := time.Now()

	for kind, repo := range credentialRepos(db) {
		t.Run(kind.String(), func(t *testing.T) {
			live := newCredential(user.ID, "live-"+kind.String(), now.Add(time.Hour))
			dead := newCredential(user.ID, "dead-"+kind.String(), now.Add(-time.Hour))
			require.NoError(t, repo.Create(t.Context(), live))
			require.NoError(t, repo.Create(t.Context(), dead))

			swept, err := repo.SweepExpired(t.Context(), now)
			require.NoError(t, err)
			assert.EqualValues(t, 1, swept)

			_, err = repo.FindByToken(t.Context(), live.Token)
			assert.NoError(t, err)
			_, err = repo.FindByToken(t.Context(), dead.Token)
			assert.ErrorIs(t, err, repository.ErrCredentialNotFound)
		})
	}
}

func TestCredentialRepository_SweepRetired(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	now := time.Now()
	repo := NewRefreshTokenRepository(db)

	retired := newCredential(user.ID, "retired-token", now.Add(time.Hour))
	live := newCredential(user.ID, "live-token", now.Add(time.Hour))
	require.NoError(t, repo.Create(t.Context(), retired))
	require.NoError(t, repo.Create(t.Context(), live))
	require.NoError(t, repo.Retire(t.Context(), retired.Token))

	swept, err := repo.SweepRetired(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 1, swept)

	_, err = repo.FindByToken(t.Context(), live.Token)
	assert.NoError(t, err)
	_, err = repo.FindByToken(t.Context(), retired.Token)
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)
}

func TestCredentialRepository_SweepRetiredSessionsNoop(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	repo := NewSessionRepository(db)

	cred := newCredential(user.ID, "session-token", time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(t.Context(), cred))

	swept, err := repo.SweepRetired(t.Context())
	require.NoError(t, err)
	assert.Zero(t, swept)

	_, err = repo.FindByToken(t.Context(), cred.Token)
	assert.NoError(t, err)
}

func TestCredentialRepository_ListForUser(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	now := time.Now()
	repo := NewRefreshTokenRepository(db)

	live := newCredential(user.ID, "live-token", now.Add(time.Hour))
	expired := newCredential(user.ID, "expired-token", now.Add(-time.Hour))
	retired := newCredential(user.ID, "retired-token", now.Add(time.Hour))
	for _, cred := range []*entity.Credential{live, expired, retired} {
		require.NoError(t, repo.Create(t.Context(), cred))
	}
	require.NoError(t, repo.Retire(t.Context(), retired.Token))

	all, err := repo.ListForUser(t.Context(), user.ID, false, now)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := repo.ListForUser(t.Context(), user.ID, true, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, live.Token, active[0].Token)
}

func TestCredentialRepository_Touch(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	now := time.Now()

	sessions := NewSessionRepository(db)
	cred := newCredential(user.ID, "session-token", now.Add(time.Hour))
	require.NoError(t, sessions.Create(t.Context(), cred))

	at := now.Add(10 * time.Minute)
	require.NoError(t, sessions.Touch(t.Context(), cred.Token, at))

	found, err := sessions.FindByToken(t.Context(), cred.Token)
	require.NoError(t, err)
	require.NotNil(t, found.LastActivityAt)
	assert.WithinDuration(t, at, *found.LastActivityAt, time.Second)

	assert.ErrorIs(t, sessions.Touch(t.Context(), "missing", at), repository.ErrCredentialNotFound)

	err = NewRefreshTokenRepository(db).Touch(t.Context(), "any", at)
	assert.ErrorIs(t, err, repository.ErrActivityNotTracked)
}
