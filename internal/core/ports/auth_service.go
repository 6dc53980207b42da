package ports

import (
	"context"

	"github.com/spaceyatech/identity-api/internal/core/domain"
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService mints and validates session bearer tokens.
type AuthService interface {
	// Login verifies credentials and returns a fresh access token plus a
	// refresh token. Unknown username and wrong password are
	// indistinguishable to the caller.
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	// Refresh mints a new, non-fresh access token from a valid refresh token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Logout revokes the presented access token's jti. Idempotent.
	Logout(ctx context.Context, accessToken string) error
	// ResolveIdentity validates the bearer token (signature, expiry,
	// revocation ledger) and loads the user it denotes.
	ResolveIdentity(ctx context.Context, bearerToken string) (*domain.User, error)
	// TokenFresh reports whether the bearer token was minted by a direct
	// login rather than a refresh.
	TokenFresh(bearerToken string) bool
}
