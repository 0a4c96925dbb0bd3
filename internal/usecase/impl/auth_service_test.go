package impl

import (
	"testing"

	"idhub/internal/domain/entity"
	domainerrors "idhub/internal/domain/errors"
	"idhub/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")

	out, err := env.auths.Login(t.Context(), usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Meta:     &entity.ClientMeta{IPAddress: "203.0.113.7", UserAgent: "test-agent"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.SessionToken)
	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, user.ID, out.User.ID)

	// Session and refresh token are live.
	valid, err := env.credentials.Validate(t.Context(), entity.KindSession, out.SessionToken)
	require.NoError(t, err)
	assert.True(t, valid)
	valid, err = env.credentials.Validate(t.Context(), entity.KindRefreshToken, out.RefreshToken)
	require.NoError(t, err)
	assert.True(t, valid)

	assert.EqualValues(t, 1, env.auditCount(t, auditActionLogin))
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "s3cret-pass")

	_, err := env.auths.Login(t.Context(), usecase.LoginInput{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	// Unknown email fails the same way so the two cases are
	// indistinguishable to the caller.
	_, err = env.auths.Login(t.Context(), usecase.LoginInput{Email: "ghost@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_LoginDeactivatedAccount(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")
	require.NoError(t, env.users.DeactivateUser(t.Context(), user.ID, nil, nil))

	_, err := env.auths.Login(t.Context(), usecase.LoginInput{Email: "alice@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, domainerrors.ErrAccountDisabled)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "s3cret-pass")

	login, err := env.auths.Login(t.Context(), usecase.LoginInput{Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	out, err := env.auths.Refresh(t.Context(), usecase.RefreshInput{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEqual(t, login.RefreshToken, out.RefreshToken)

	// The old token was consumed; presenting it again fails.
	_, err = env.auths.Refresh(t.Context(), usecase.RefreshInput{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrCredentialInvalid)

	// The rotated token works.
	_, err = env.auths.Refresh(t.Context(), usecase.RefreshInput{RefreshToken: out.RefreshToken})
	assert.NoError(t, err)
}

func TestAuthService_RefreshUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auths.Refresh(t.Context(), usecase.RefreshInput{RefreshToken: "bogus"})
	assert.ErrorIs(t, err, domainerrors.ErrCredentialInvalid)
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice@example.com", "s3cret-pass")

	login, err := env.auths.Login(t.Context(), usecase.LoginInput{Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	err = env.auths.Logout(t.Context(), usecase.LogoutInput{
		SessionToken: login.SessionToken,
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)

	valid, err := env.credentials.Validate(t.Context(), entity.KindSession, login.SessionToken)
	require.NoError(t, err)
	assert.False(t, valid)
	valid, err = env.credentials.Validate(t.Context(), entity.KindRefreshToken, login.RefreshToken)
	require.NoError(t, err)
	assert.False(t, valid)

	// Logging out again is harmless.
	assert.NoError(t, env.auths.Logout(t.Context(), usecase.LogoutInput{SessionToken: login.SessionToken}))
}

func TestAuthService_LogoutAll(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "s3cret-pass")

	for i := 0; i < 3; i++ {
		_, err := env.auths.Login(t.Context(), usecase.LoginInput{Email: "alice@example.com", Password: "s3cret-pass"})
		require.NoError(t, err)
	}

	// 3 sessions + 3 refresh tokens.
	retired, err := env.auths.LogoutAll(t.Context(), user.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 6, retired)

	count, err := env.credentials.CountActive(t.Context(), entity.KindSession, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = env.credentials.CountActive(t.Context(), entity.KindRefreshToken, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Nothing left: the second pass retires zero.
	retired, err = env.auths.LogoutAll(t.Context(), user.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, retired)
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "old-pass")

	login, err := env.auths.Login(t.Context(), usecase.LoginInput{Email: "alice@example.com", Password: "old-pass"})
	require.NoError(t, err)

	forgot, err := env.auths.ForgotPassword(t.Context(), usecase.ForgotPasswordInput{Email: "alice@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, forgot.ResetToken)

	err = env.auths.ResetPassword(t.Context(), usecase.ResetPasswordInput{
		Token:       forgot.ResetToken,
		NewPassword: "new-pass",
	})
	require.NoError(t, err)

	// Every pre-existing credential is dead.
	valid, err := env.credentials.Validate(t.Context(), entity.KindSession, login.SessionToken)
	require.NoError(t, err)
	assert.False(t, valid)
	valid, err = env.credentials.Validate(t.Context(), entity.KindRefreshToken, login.RefreshToken)
	require.NoError(t, err)
	assert.False(t, valid)

	// The old password no longer works, the new one does.
	_, err = env.auths.Login(t.Context(), usecase.LoginInput{Email: "alice@example.com", Password: "old-pass"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	out, err := env.auths.Login(t.Context(), usecase.LoginInput{Email: "alice@example.com", Password: "new-pass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)

	// The reset token is single-use.
	err = env.auths.ResetPassword(t.Context(), usecase.ResetPasswordInput{
		Token:       forgot.ResetToken,
		NewPassword: "another-pass",
	})
	assert.ErrorIs(t, err, domainerrors.ErrCredentialInvalid)
}

func TestAuthService_ForgotPasswordUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.auths.ForgotPassword(t.Context(), usecase.ForgotPasswordInput{Email: "ghost@example.com"})
	require.NoError(t, err)
	assert.Empty(t, out.ResetToken)
}

func TestAuthService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice@example.com", "old-pass")

	login, err := env.auths.Login(t.Context(), usecase.LoginInput{Email: "alice@example.com", Password: "old-pass"})
	require.NoError(t, err)

	err = env.auths.ChangePassword(t.Context(), usecase.ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "wrong",
		NewPassword: "new-pass",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	err = env.auths.ChangePassword(t.Context(), usecase.ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "old-pass",
		NewPassword: "new-pass",
	})
	require.NoError(t, err)

	valid, err := env.credentials.Validate(t.Context(), entity.KindSession, login.SessionToken)
	require.NoError(t, err)
	assert.False(t, valid)

	_, err = env.auths.Login(t.Context(), usecase.LoginInput{Email: "alice@example.com", Password: "new-pass"})
	assert.NoError(t, err)

	assert.EqualValues(t, 1, env.auditCount(t, auditActionChangePassword))
}
