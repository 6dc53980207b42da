package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/ports"
	"github.com/spaceyatech/identity-api/internal/core/token"
)

const testEmailSecret = "email-secret"

type stubLimiter struct {
	allow bool
	err   error
	calls int
}

func (l *stubLimiter) Allow(context.Context, string) (bool, error) {
	l.calls++
	return l.allow, l.err
}

func newUserService(repo *stubUserRepo, limiter ports.VerificationLimiter) *UserService {
	return NewUserService(
		repo,
		token.NewCodec(testEmailSecret),
		testHasher(),
		limiter,
		2*time.Hour,
		time.Hour,
		zerolog.Nop(),
	)
}

func TestUserService_Register(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo, &stubLimiter{allow: true})

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.PasswordHash == "s3cret" {
		t.Fatalf("expected password to be hashed")
	}
	if !testHasher().Verify(user.PasswordHash, "s3cret") {
		t.Fatalf("stored hash does not match password")
	}
	if user.IsEmailConfirmed {
		t.Fatalf("a new user must start unconfirmed")
	}
	if !user.HasAnyRole(domain.RoleClient) {
		t.Fatalf("expected Client role, got %v", user.Roles)
	}

	payload, err := token.NewCodec(testEmailSecret).Verify(user.EmailToken)
	if err != nil {
		t.Fatalf("stored confirm token invalid: %v", err)
	}
	if payload != "alice@example.com" {
		t.Fatalf("confirm token carries %q, want the email", payload)
	}
}

func TestUserService_Register_DuplicateDisclosesField(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo, &stubLimiter{allow: true})

	first := ports.RegisterInput{Username: "bob", Email: "bob@example.com", PhoneNumber: "111222333", Password: "pw"}
	if _, err := svc.Register(context.Background(), first); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	cases := []struct {
		name string
		in   ports.RegisterInput
		want error
	}{
		{"username taken", ports.RegisterInput{Username: "bob", Email: "other@example.com", PhoneNumber: "444555666", Password: "pw"}, domain.ErrUsernameExists},
		{"email taken", ports.RegisterInput{Username: "carol", Email: "bob@example.com", PhoneNumber: "444555666", Password: "pw"}, domain.ErrEmailExists},
		{"phone taken", ports.RegisterInput{Username: "carol", Email: "other@example.com", PhoneNumber: "111222333", Password: "pw"}, domain.ErrPhoneExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !domain.IsUserConflict(err) {
				t.Fatalf("IsUserConflict(%v) = false, want true", err)
			}
		})
	}
}

func TestUserService_ConfirmEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo, &stubLimiter{allow: true})

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ConfirmEmail(context.Background(), user.EmailToken); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	stored, _ := repo.FindByUUID(context.Background(), user.UUID)
	if !stored.IsEmailConfirmed {
		t.Fatalf("expected email to be confirmed")
	}
	if stored.EmailToken != "" {
		t.Fatalf("expected stored token to be cleared")
	}

	if err := svc.ConfirmEmail(context.Background(), user.EmailToken); !errors.Is(err, domain.ErrAlreadyConfirmed) {
		t.Fatalf("expected ErrAlreadyConfirmed on reuse, got %v", err)
	}
	if err := svc.ConfirmEmail(context.Background(), ""); !errors.Is(err, domain.ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestUserService_ConfirmEmail_SupersededToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo, &stubLimiter{allow: true})

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	first := user.EmailToken

	// Tokens embed an issued-at timestamp; stall so the resent one differs.
	time.Sleep(1100 * time.Millisecond)
	if err := svc.ResendConfirmation(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("resend failed: %v", err)
	}

	stored, _ := repo.FindByUUID(context.Background(), user.UUID)
	if stored.EmailToken == first {
		t.Fatalf("expected resend to issue a different token")
	}

	if err := svc.ConfirmEmail(context.Background(), first); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("superseded token: expected ErrTokenExpired, got %v", err)
	}
	if err := svc.ConfirmEmail(context.Background(), stored.EmailToken); err != nil {
		t.Fatalf("latest token must confirm: %v", err)
	}
}

func TestUserService_ResendConfirmation(t *testing.T) {
	repo := newStubUserRepo()
	limiter := &stubLimiter{allow: true}
	svc := newUserService(repo, limiter)

	seedUser(t, repo, "alice", "alice@example.com", "pw", false)
	seedUser(t, repo, "bob", "bob@example.com", "pw", true)

	if err := svc.ResendConfirmation(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	if err := svc.ResendConfirmation(context.Background(), "bob@example.com"); !errors.Is(err, domain.ErrAlreadyConfirmed) {
		t.Fatalf("expected ErrAlreadyConfirmed, got %v", err)
	}
	if err := svc.ResendConfirmation(context.Background(), "ghost@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_ResendConfirmation_RateLimited(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo, &stubLimiter{allow: false})

	seedUser(t, repo, "alice", "alice@example.com", "pw", false)

	if err := svc.ResendConfirmation(context.Background(), "alice@example.com"); !errors.Is(err, domain.ErrTooManyRequests) {
		t.Fatalf("expected ErrTooManyRequests, got %v", err)
	}
}

func TestUserService_ResendConfirmation_LimiterOutage(t *testing.T) {
	repo := newStubUserRepo()
	limiter := &stubLimiter{err: errors.New("redis down")}
	svc := newUserService(repo, limiter)

	seedUser(t, repo, "alice", "alice@example.com", "pw", false)

	if err := svc.ResendConfirmation(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("a limiter outage must not block the send, got %v", err)
	}
	if limiter.calls != 1 {
		t.Fatalf("expected the limiter to be consulted")
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo, &stubLimiter{allow: true})

	user := seedUser(t, repo, "alice", "alice@example.com", "oldpass", true)

	if err := svc.ChangePassword(context.Background(), user, "oldpass", "newpass", "different"); !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), user, "oldpass", "oldpass", "oldpass"); !errors.Is(err, domain.ErrSamePassword) {
		t.Fatalf("expected ErrSamePassword, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), user, "wrong", "newpass", "newpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user, "oldpass", "newpass", "newpass"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	stored, _ := repo.FindByUUID(context.Background(), user.UUID)
	if !testHasher().Verify(stored.PasswordHash, "newpass") {
		t.Fatalf("expected new password to verify")
	}
	if testHasher().Verify(stored.PasswordHash, "oldpass") {
		t.Fatalf("old password must no longer verify")
	}
}

func TestUserService_ForgotPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo, &stubLimiter{allow: true})

	alice := seedUser(t, repo, "alice", "alice@example.com", "pw", true)
	seedUser(t, repo, "carol", "carol@example.com", "pw", false)

	if err := svc.ForgotPassword(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("unknown email must not be disclosed, got %v", err)
	}
	if err := svc.ForgotPassword(context.Background(), "carol@example.com"); !errors.Is(err, domain.ErrEmailNotConfirmed) {
		t.Fatalf("expected ErrEmailNotConfirmed, got %v", err)
	}

	if err := svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	stored, _ := repo.FindByUUID(context.Background(), alice.UUID)
	if stored.EmailToken == "" {
		t.Fatalf("expected a reset token to be stored")
	}
	payload, err := token.NewCodec(testEmailSecret).Verify(stored.EmailToken)
	if err != nil {
		t.Fatalf("stored reset token invalid: %v", err)
	}
	if payload != alice.UUID {
		t.Fatalf("reset token carries %q, want the user id", payload)
	}
}

func TestUserService_ResetPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo, &stubLimiter{allow: true})

	alice := seedUser(t, repo, "alice", "alice@example.com", "oldpass", true)
	if err := svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	stored, _ := repo.FindByUUID(context.Background(), alice.UUID)
	reset := stored.EmailToken

	if err := svc.ResetPassword(context.Background(), reset, "newpass", "different"); !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}

	if err := svc.ResetPassword(context.Background(), reset, "newpass", "newpass"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	stored, _ = repo.FindByUUID(context.Background(), alice.UUID)
	if !testHasher().Verify(stored.PasswordHash, "newpass") {
		t.Fatalf("expected new password to verify")
	}
	if stored.EmailToken != "" {
		t.Fatalf("expected the reset token to be cleared")
	}

	// The link is single-use.
	if err := svc.ResetPassword(context.Background(), reset, "again", "again"); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("reused link: expected ErrTokenExpired, got %v", err)
	}
}

func TestUserService_ResetPassword_ExpiredToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo, &stubLimiter{allow: true})

	alice := seedUser(t, repo, "alice", "alice@example.com", "oldpass", true)

	expired, err := token.NewCodec(testEmailSecret).Issue(alice.UUID, -time.Minute)
	if err != nil {
		t.Fatalf("issue expired token: %v", err)
	}
	if err := repo.SetEmailToken(context.Background(), alice.UUID, expired); err != nil {
		t.Fatalf("store token: %v", err)
	}

	if err := svc.ResetPassword(context.Background(), expired, "newpass", "newpass"); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	stored, _ := repo.FindByUUID(context.Background(), alice.UUID)
	if !testHasher().Verify(stored.PasswordHash, "oldpass") {
		t.Fatalf("an expired link must leave the password unchanged")
	}
}

func TestUserService_UpdateProfile_EmailChangeResetsConfirmation(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo, &stubLimiter{allow: true})

	alice := seedUser(t, repo, "alice", "alice@example.com", "pw", true)

	updated, err := svc.UpdateProfile(context.Background(), alice, ports.ProfileUpdateInput{
		Email: "alice@new.example.com",
	})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.IsEmailConfirmed {
		t.Fatalf("a changed email must be confirmed again")
	}
	if updated.EmailToken == "" {
		t.Fatalf("expected a new confirm token for the new address")
	}

	payload, err := token.NewCodec(testEmailSecret).Verify(updated.EmailToken)
	if err != nil {
		t.Fatalf("confirm token invalid: %v", err)
	}
	if payload != "alice@new.example.com" {
		t.Fatalf("confirm token carries %q, want the new email", payload)
	}

	if err := svc.ConfirmEmail(context.Background(), updated.EmailToken); err != nil {
		t.Fatalf("confirming the new address failed: %v", err)
	}
	stored, _ := repo.FindByUUID(context.Background(), alice.UUID)
	if !stored.IsEmailConfirmed {
		t.Fatalf("expected the new address to be confirmed")
	}
}

func TestUserService_UpdateProfile_NoLinkWhenWriteFails(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice", "alice@example.com", "pw", true)
	bob := seedUser(t, repo, "bob", "bob@example.com", "pw", true)

	var logs bytes.Buffer
	svc := NewUserService(
		repo,
		token.NewCodec(testEmailSecret),
		testHasher(),
		&stubLimiter{allow: true},
		2*time.Hour,
		time.Hour,
		zerolog.New(&logs),
	)

	_, err := svc.UpdateProfile(context.Background(), bob, ports.ProfileUpdateInput{
		Email: "alice@example.com",
	})
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if strings.Contains(logs.String(), "verification link issued") {
		t.Fatalf("no confirmation link may be sent for an address that was never stored")
	}

	stored, _ := repo.FindByUUID(context.Background(), bob.UUID)
	if stored.Email != "bob@example.com" || !stored.IsEmailConfirmed {
		t.Fatalf("a failed update must leave the profile untouched, got %+v", stored)
	}
}

func TestUserService_UpdateProfile_UsernameOnlyKeepsConfirmation(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo, &stubLimiter{allow: true})

	alice := seedUser(t, repo, "alice", "alice@example.com", "pw", true)

	updated, err := svc.UpdateProfile(context.Background(), alice, ports.ProfileUpdateInput{
		Username: "alice2",
	})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.Username != "alice2" {
		t.Fatalf("expected username to change, got %q", updated.Username)
	}
	if !updated.IsEmailConfirmed {
		t.Fatalf("a username change must not reset email confirmation")
	}
}
