package postgres

import (
	"testing"
	"time"

	"idhub/internal/domain/entity"
	"idhub/internal/domain/repository"
	"idhub/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionManager_CommitOnSuccess(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	tm := NewTransactionManager(db)
	now := time.Now()

	err := tm.Execute(t.Context(), func(f repository.RepositoryFactory) error {
		cred := &entity.Credential{
			Token:     "tx-token",
			UserID:    user.ID,
			ExpiresAt: now.Add(time.Hour),
		}

		return f.Credentials(entity.KindRefreshToken).Create(t.Context(), cred)
	})
	require.NoError(t, err)

	_, err = NewRefreshTokenRepository(db).FindByToken(t.Context(), "tx-token")
	assert.NoError(t, err)
}

func TestTransactionManager_RollbackOnError(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	tm := NewTransactionManager(db)
	now := time.Now()

	boom := errors.New("boom")
	err := tm.Execute(t.Context(), func(f repository.RepositoryFactory) error {
		cred := &entity.Credential{
			Token:     "doomed-token",
			UserID:    user.ID,
			ExpiresAt: now.Add(time.Hour),
		}
		if err := f.Credentials(entity.KindRefreshToken).Create(t.Context(), cred); err != nil {
			return err
		}

		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = NewRefreshTokenRepository(db).FindByToken(t.Context(), "doomed-token")
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)
}

func TestTransactionManager_RollbackOnPanic(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "owner@example.com")
	tm := NewTransactionManager(db)
	now := time.Now()

	require.Panics(t, func() {
		_ = tm.Execute(t.Context(), func(f repository.RepositoryFactory) error {
			cred := &entity.Credential{
				Token:     "panic-token",
				UserID:    user.ID,
				ExpiresAt: now.Add(time.Hour),
			}
			_ = f.Credentials(entity.KindRefreshToken).Create(t.Context(), cred)
			panic("unexpected")
		})
	})

	_, err := NewRefreshTokenRepository(db).FindByToken(t.Context(), "panic-token")
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)
}
