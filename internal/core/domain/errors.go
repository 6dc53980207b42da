package domain

import "errors"

// Recoverable, user-facing outcomes. Anything not in this list (storage
// unavailability, signing failures) is wrapped and surfaced as a generic
// internal error instead.
var (
	ErrInvalidCredentials = errors.New("wrong username or password")
	ErrEmailNotConfirmed  = errors.New("email is not confirmed")
	ErrAlreadyConfirmed   = errors.New("email is already confirmed")

	ErrTokenMissing   = errors.New("token is required")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenRevoked   = errors.New("token has been revoked")
	ErrTokenMalformed = errors.New("token is invalid")
	ErrTokenNotFresh  = errors.New("fresh token required")

	ErrPasswordMismatch = errors.New("new password and confirmation do not match")
	ErrSamePassword     = errors.New("new password must differ from the current password")

	ErrAccessDenied = errors.New("you don't have the permission")

	// Registration conflicts name the offending field so the user knows
	// what to change. ErrUserExists is the fallback when the field cannot
	// be determined.
	ErrUserExists     = errors.New("user already exists")
	ErrUsernameExists = errors.New("a user with that username already exists")
	ErrEmailExists    = errors.New("a user with that email already exists")
	ErrPhoneExists    = errors.New("a user with that phone number already exists")
	ErrUserNotFound   = errors.New("user not found")

	ErrRoleExists   = errors.New("role already exists")
	ErrRoleNotFound = errors.New("role not found")

	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")

	ErrTooManyRequests = errors.New("too many verification requests")
)

// IsUserConflict reports whether err is a duplicate-registration error, for
// any of the uniquely indexed user fields.
func IsUserConflict(err error) bool {
	return errors.Is(err, ErrUserExists) ||
		errors.Is(err, ErrUsernameExists) ||
		errors.Is(err, ErrEmailExists) ||
		errors.Is(err, ErrPhoneExists)
}
