package ports

import (
	"context"

	"github.com/spaceyatech/identity-api/internal/core/domain"
)

// UserRepository defines user persistence. Mutations are single-document
// operations so concurrent requests for the same user never need in-process
// locking.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUUID(ctx context.Context, uuid string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)

	// SetEmailToken overwrites the stored latest signed token; an empty
	// value clears it.
	SetEmailToken(ctx context.Context, uuid, token string) error
	// ConfirmEmail marks the email confirmed and clears the stored token.
	ConfirmEmail(ctx context.Context, uuid string) error
	// SetAuthToken records the latest issued access token on the user.
	SetAuthToken(ctx context.Context, uuid, token string) error
	UpdatePassword(ctx context.Context, uuid, passwordHash string) error
	// UpdateProfile persists username, email, phone number, the email
	// confirmation flag and the stored email token in one write.
	UpdateProfile(ctx context.Context, user *domain.User) error
	// GrantRole appends a role name to the user's role set; granting an
	// already-held role is a no-op.
	GrantRole(ctx context.Context, uuid, roleName string) error
}
