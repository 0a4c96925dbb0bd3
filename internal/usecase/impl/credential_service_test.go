package impl

import (
	"testing"
	"time"

	"idhub/internal/domain/entity"
	domainerrors "idhub/internal/domain/errors"
	"idhub/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialService_IssueThenValid(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")

	for _, kind := range entity.CredentialKinds {
		t.Run(kind.String(), func(t *testing.T) {
			cred, err := env.credentials.Issue(t.Context(), usecase.IssueCredentialInput{
				Kind:   kind,
				UserID: user.ID,
			})
			require.NoError(t, err)
			assert.Len(t, cred.Token, 64)
			assert.True(t, cred.ExpiresAt.After(time.Now()))

			valid, err := env.credentials.Validate(t.Context(), kind, cred.Token)
			require.NoError(t, err)
			assert.True(t, valid)
		})
	}
}

func TestCredentialService_IssueSessionCarriesClientMeta(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")

	cred, err := env.credentials.Issue(t.Context(), usecase.IssueCredentialInput{
		Kind:   entity.KindSession,
		UserID: user.ID,
		Meta:   &entity.ClientMeta{IPAddress: "203.0.113.7", UserAgent: "test-agent"},
	})
	require.NoError(t, err)

	sessions, err := env.credentials.ListForUser(t.Context(), entity.KindSession, user.ID, true)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, cred.Token, sessions[0].Token)
	require.NotNil(t, sessions[0].IPAddress)
	assert.Equal(t, "203.0.113.7", *sessions[0].IPAddress)
	require.NotNil(t, sessions[0].UserAgent)
	assert.Equal(t, "test-agent", *sessions[0].UserAgent)
}

func TestCredentialService_ValidateUnknownTokenIsFalse(t *testing.T) {
	env := newTestEnv(t)

	valid, err := env.credentials.Validate(t.Context(), entity.KindRefreshToken, "missing")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestCredentialService_RetireIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")

	cred, err := env.credentials.Issue(t.Context(), usecase.IssueCredentialInput{
		Kind:   entity.KindPasswordResetToken,
		UserID: user.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.credentials.Retire(t.Context(), entity.KindPasswordResetToken, cred.Token))
	require.NoError(t, env.credentials.Retire(t.Context(), entity.KindPasswordResetToken, cred.Token))

	valid, err := env.credentials.Validate(t.Context(), entity.KindPasswordResetToken, cred.Token)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestCredentialService_RetireUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	err := env.credentials.Retire(t.Context(), entity.KindRefreshToken, "missing")
	assert.ErrorIs(t, err, domainerrors.ErrCredentialInvalid)
}

func TestCredentialService_Sweep(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")

	live, err := env.credentials.Issue(t.Context(), usecase.IssueCredentialInput{
		Kind:   entity.KindRefreshToken,
		UserID: user.ID,
	})
	require.NoError(t, err)

	retired, err := env.credentials.Issue(t.Context(), usecase.IssueCredentialInput{
		Kind:   entity.KindRefreshToken,
		UserID: user.ID,
	})
	require.NoError(t, err)
	require.NoError(t, env.credentials.Retire(t.Context(), entity.KindRefreshToken, retired.Token))

	report, err := env.credentials.Sweep(t.Context())
	require.NoError(t, err)
	assert.Zero(t, report.Expired[entity.KindRefreshToken])
	assert.EqualValues(t, 1, report.Retired[entity.KindRefreshToken])

	// The live credential survived the sweep.
	valid, err := env.credentials.Validate(t.Context(), entity.KindRefreshToken, live.Token)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestCredentialService_TouchSession(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")

	cred, err := env.credentials.Issue(t.Context(), usecase.IssueCredentialInput{
		Kind:   entity.KindSession,
		UserID: user.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.credentials.TouchSession(t.Context(), cred.Token))

	err = env.credentials.TouchSession(t.Context(), "missing")
	assert.ErrorIs(t, err, domainerrors.ErrCredentialInvalid)
}
