package usecase

import (
	"context"

	"idhub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
	Meta     *entity.ClientMeta
}

// RefreshInput carries the refresh token to be rotated.
type RefreshInput struct {
	RefreshToken string
	Meta         *entity.ClientMeta
}

// LogoutInput ends one session. The refresh token is retired alongside
// when the client supplies it.
type LogoutInput struct {
	SessionToken string
	RefreshToken string
	Meta         *entity.ClientMeta
}

// ForgotPasswordInput starts the password reset flow.
type ForgotPasswordInput struct {
	Email string
	Meta  *entity.ClientMeta
}

// ResetPasswordInput completes the password reset flow with the token
// from ForgotPassword.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
	Meta        *entity.ClientMeta
}

// ChangePasswordInput replaces the password of an authenticated user.
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
	Meta        *entity.ClientMeta
}

// --- Output DTOs ---

// LoginOutput returns the credentials issued by a successful login.
type LoginOutput struct {
	AccessToken  string
	SessionToken string
	RefreshToken string
	User         *entity.User
}

// RefreshOutput returns the rotated credential pair.
type RefreshOutput struct {
	AccessToken  string
	RefreshToken string
}

// ForgotPasswordOutput carries the reset token for delivery to the user.
// ResetToken is empty when the email is unknown; the flow still reports
// success so account existence is not disclosed.
type ForgotPasswordOutput struct {
	ResetToken string
}

// AuthUsecase defines the authentication flows built on top of the
// credential lifecycle.
type AuthUsecase interface {
	// Login verifies the password, rejects deactivated accounts, and
	// issues a session, a refresh token, and an access token.
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)

	// Refresh atomically consumes the presented refresh token and issues
	// a replacement pair. A consumed or expired token always fails.
	Refresh(ctx context.Context, input RefreshInput) (*RefreshOutput, error)

	// Logout ends the session and retires the accompanying refresh token.
	Logout(ctx context.Context, input LogoutInput) error

	// LogoutAll retires every session and refresh token of the user and
	// reports how many credentials were retired.
	LogoutAll(ctx context.Context, userID uuid.UUID, meta *entity.ClientMeta) (int64, error)

	// ForgotPassword issues a single-use password reset token.
	ForgotPassword(ctx context.Context, input ForgotPasswordInput) (*ForgotPasswordOutput, error)

	// ResetPassword consumes the reset token, replaces the password, and
	// retires every session and refresh token of the user.
	ResetPassword(ctx context.Context, input ResetPasswordInput) error

	// ChangePassword verifies the old password, replaces it, and retires
	// every session and refresh token of the user.
	ChangePassword(ctx context.Context, input ChangePasswordInput) error
}
