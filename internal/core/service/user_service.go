package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/password"
	"github.com/spaceyatech/identity-api/internal/core/ports"
	"github.com/spaceyatech/identity-api/internal/core/token"
)

// UserService implements registration, the signed-token confirm/reset flows
// and password management. Email delivery is out of scope: links are logged
// where the mailer would be invoked.
type UserService struct {
	users      ports.UserRepository
	codec      *token.Codec
	hasher     *password.Hasher
	limiter    ports.VerificationLimiter
	confirmTTL time.Duration
	resetTTL   time.Duration
	log        zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	codec *token.Codec,
	hasher *password.Hasher,
	limiter ports.VerificationLimiter,
	confirmTTL, resetTTL time.Duration,
	log zerolog.Logger,
) *UserService {
	if confirmTTL <= 0 {
		confirmTTL = 2 * time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &UserService{
		users:      users,
		codec:      codec,
		hasher:     hasher,
		limiter:    limiter,
		confirmTTL: confirmTTL,
		resetTTL:   resetTTL,
		log:        log,
	}
}

// Register creates a Client user with an unconfirmed email and issues the
// confirm-email token. Registration is intentionally disclosive: a duplicate
// username, email or phone number surfaces an error naming that field.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	confirmToken, err := s.codec.Issue(in.Email, s.confirmTTL)
	if err != nil {
		return nil, fmt.Errorf("issue confirm token: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		UUID:         uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
		EmailToken:   confirmToken,
		Roles:        []string{domain.RoleClient},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.mailLink("confirm-email", created.Email, confirmToken)
	return created, nil
}

// ConfirmEmail verifies a confirm token, cross-checks it against the stored
// latest token and marks the email confirmed. A superseded token fails the
// cross-check and is reported as expired, same as the real thing.
func (s *UserService) ConfirmEmail(ctx context.Context, tokenStr string) error {
	if tokenStr == "" {
		return domain.ErrTokenMissing
	}

	email, err := s.codec.Verify(tokenStr)
	if err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.IsEmailConfirmed {
		return domain.ErrAlreadyConfirmed
	}
	if user.EmailToken == "" || user.EmailToken != tokenStr {
		return domain.ErrTokenExpired
	}

	return s.users.ConfirmEmail(ctx, user.UUID)
}

// ResendConfirmation issues a new confirm token for an unconfirmed email,
// superseding any outstanding one. The unknown-email case is disclosive by
// design (the UI tells the user to fix the address).
func (s *UserService) ResendConfirmation(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsEmailConfirmed {
		return domain.ErrAlreadyConfirmed
	}

	if err := s.allowSend(ctx, email); err != nil {
		return err
	}

	confirmToken, err := s.codec.Issue(user.Email, s.confirmTTL)
	if err != nil {
		return fmt.Errorf("issue confirm token: %w", err)
	}
	if err := s.users.SetEmailToken(ctx, user.UUID, confirmToken); err != nil {
		return fmt.Errorf("store confirm token: %w", err)
	}

	s.mailLink("confirm-email", user.Email, confirmToken)
	return nil
}

// ChangePassword verifies the caller's current password and applies the new
// one. The caller is the identity resolved by the authorization guard, never
// a request-body claim.
func (s *UserService) ChangePassword(ctx context.Context, user *domain.User, current, newPassword, confirm string) error {
	if newPassword != confirm {
		return domain.ErrPasswordMismatch
	}
	if current == newPassword {
		return domain.ErrSamePassword
	}
	if !s.hasher.Verify(user.PasswordHash, current) {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.UUID, hash)
}

// ForgotPassword issues a password-reset token carrying the user's id. The
// response never discloses whether the email exists; an unconfirmed email is
// the one deliberate exception and gets the resend-confirmation affordance.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Str("email", email).Msg("password reset requested for unknown email")
			return nil
		}
		return err
	}
	if !user.IsEmailConfirmed {
		return domain.ErrEmailNotConfirmed
	}

	if err := s.allowSend(ctx, email); err != nil {
		return err
	}

	resetToken, err := s.codec.Issue(user.UUID, s.resetTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	if err := s.users.SetEmailToken(ctx, user.UUID, resetToken); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.mailLink("forgot-password", user.Email, resetToken)
	return nil
}

// ResetPassword applies a new password after verifying the reset token and
// cross-checking it against the stored latest token. On success the stored
// token is cleared, making the link single-use.
func (s *UserService) ResetPassword(ctx context.Context, tokenStr, newPassword, confirm string) error {
	if tokenStr == "" {
		return domain.ErrTokenMissing
	}
	if newPassword != confirm {
		return domain.ErrPasswordMismatch
	}

	userUUID, err := s.codec.Verify(tokenStr)
	if err != nil {
		return err
	}

	user, err := s.users.FindByUUID(ctx, userUUID)
	if err != nil {
		return err
	}
	if user.EmailToken == "" || user.EmailToken != tokenStr {
		return domain.ErrTokenExpired
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.UUID, hash); err != nil {
		return err
	}
	return s.users.SetEmailToken(ctx, user.UUID, "")
}

// UpdateProfile applies username/email/phone changes for the authenticated
// user. Changing the email resets the confirmation flag and issues a new
// confirm token for the new address.
func (s *UserService) UpdateProfile(ctx context.Context, user *domain.User, in ports.ProfileUpdateInput) (*domain.User, error) {
	updated := *user

	if in.Username != "" && in.Username != user.Username {
		updated.Username = in.Username
	}
	if in.PhoneNumber != "" && in.PhoneNumber != user.PhoneNumber {
		updated.PhoneNumber = in.PhoneNumber
	}
	emailChanged := in.Email != "" && in.Email != user.Email
	if emailChanged {
		confirmToken, err := s.codec.Issue(in.Email, s.confirmTTL)
		if err != nil {
			return nil, fmt.Errorf("issue confirm token: %w", err)
		}
		updated.Email = in.Email
		updated.EmailToken = confirmToken
		// A changed address must be confirmed again before it can log in.
		updated.IsEmailConfirmed = false
	}

	if err := s.users.UpdateProfile(ctx, &updated); err != nil {
		return nil, err
	}
	// The link goes out only once the new address is persisted.
	if emailChanged {
		s.mailLink("confirm-email", updated.Email, updated.EmailToken)
	}
	return &updated, nil
}

func (s *UserService) Get(ctx context.Context, userUUID string) (*domain.User, error) {
	return s.users.FindByUUID(ctx, userUUID)
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// allowSend applies the per-email resend limit. A limiter outage is logged
// and the send proceeds; rate limiting is best-effort, the token flows are not.
func (s *UserService) allowSend(ctx context.Context, email string) error {
	if s.limiter == nil {
		return nil
	}
	ok, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("verification limiter unavailable, sending anyway")
		return nil
	}
	if !ok {
		return domain.ErrTooManyRequests
	}
	return nil
}

// mailLink stands in for the mailer: the link and token are logged so the
// flow is exercisable without an email provider.
func (s *UserService) mailLink(flow, email, tok string) {
	s.log.Info().
		Str("flow", flow).
		Str("email", email).
		Str("token", tok).
		Msg("verification link issued")
}
