package ports

import (
	"context"

	"github.com/spaceyatech/identity-api/internal/core/domain"
)

// RegisterInput carries validated registration data.
type RegisterInput struct {
	Username    string
	Email       string
	PhoneNumber string
	Password    string
}

// ProfileUpdateInput carries a profile update for the authenticated user.
type ProfileUpdateInput struct {
	Username    string
	Email       string
	PhoneNumber string
}

// UserService implements registration, the confirm/reset signed-token flows,
// password management and the admin read surface.
type UserService interface {
	// Register creates a Client user with an unconfirmed email and issues
	// the confirm-email signed token. A duplicate username, email or phone
	// number is reported with an error naming that field (intentionally
	// disclosive).
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// ConfirmEmail verifies a confirm token, cross-checks it against the
	// user's stored latest token and marks the email confirmed.
	ConfirmEmail(ctx context.Context, token string) error
	// ResendConfirmation issues a new confirm token, superseding any
	// outstanding one. Rate-limited per email.
	ResendConfirmation(ctx context.Context, email string) error
	// ChangePassword verifies the current password and applies the new one.
	ChangePassword(ctx context.Context, user *domain.User, current, newPassword, confirm string) error
	// ForgotPassword issues a reset token for a confirmed email. The caller
	// must not learn whether the email exists.
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword verifies a reset token and applies the new password.
	ResetPassword(ctx context.Context, token, newPassword, confirm string) error
	// UpdateProfile applies username/email/phone changes. An email change
	// resets the confirmation flag and issues a new confirm token.
	UpdateProfile(ctx context.Context, user *domain.User, in ProfileUpdateInput) (*domain.User, error)
	Get(ctx context.Context, uuid string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
