package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/password"
	"github.com/spaceyatech/identity-api/internal/core/ports"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// AuthService mints, refreshes and revokes session tokens and resolves
// identities from presented bearer tokens.
type AuthService struct {
	users      ports.UserRepository
	blocklist  ports.BlocklistRepository
	hasher     *password.Hasher
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(users ports.UserRepository, blocklist ports.BlocklistRepository, hasher *password.Hasher, secret string, accessTTL, refreshTTL time.Duration) *AuthService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		blocklist:  blocklist,
		hasher:     hasher,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Login verifies credentials and returns a fresh access token and a refresh
// token. An unknown username and a wrong password produce the same error so
// the response never reveals whether the account exists.
func (s *AuthService) Login(ctx context.Context, username, pass string) (*ports.TokenPair, error) {
	if username == "" || pass == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsEmailConfirmed {
		return nil, domain.ErrEmailNotConfirmed
	}

	if !s.hasher.Verify(user.PasswordHash, pass) {
		return nil, domain.ErrInvalidCredentials
	}

	access, err := s.mint(user.UUID, tokenTypeAccess, s.accessTTL, true)
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}
	refresh, err := s.mint(user.UUID, tokenTypeRefresh, s.refreshTTL, false)
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}

	// Legacy manual-verification paths read this copy; authorization never does.
	if err := s.users.SetAuthToken(ctx, user.UUID, access); err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}

	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh validates a refresh token and mints a new, non-fresh access token
// for the same subject. The refresh token itself is neither rotated nor
// revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken)
	if err != nil {
		return "", err
	}
	if typ, _ := claims["typ"].(string); typ != tokenTypeRefresh {
		return "", domain.ErrTokenMalformed
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return "", err
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrTokenMalformed
	}

	access, err := s.mint(sub, tokenTypeAccess, s.accessTTL, false)
	if err != nil {
		return "", fmt.Errorf("mint access token: %w", err)
	}
	return access, nil
}

// Logout records the access token's jti in the revocation ledger. Revoking an
// already-revoked token is a no-op.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.parse(accessToken)
	if err != nil {
		return err
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return domain.ErrTokenMalformed
	}

	if err := s.blocklist.Revoke(ctx, jti, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// ResolveIdentity validates the bearer token's signature and expiry, consults
// the revocation ledger, and loads the user the token denotes. Expiry and
// revocation are independent checks; a valid token whose subject has vanished
// fails closed with ErrUserNotFound.
func (s *AuthService) ResolveIdentity(ctx context.Context, bearerToken string) (*domain.User, error) {
	claims, err := s.parse(bearerToken)
	if err != nil {
		return nil, err
	}
	if typ, _ := claims["typ"].(string); typ != tokenTypeAccess {
		return nil, domain.ErrTokenMalformed
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, domain.ErrTokenMalformed
	}

	user, err := s.users.FindByUUID(ctx, sub)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// TokenFresh reports whether the token was minted by a direct login.
func (s *AuthService) TokenFresh(bearerToken string) bool {
	claims, err := s.parse(bearerToken)
	if err != nil {
		return false
	}
	fresh, _ := claims["fresh"].(bool)
	return fresh
}

func (s *AuthService) mint(subject, typ string, ttl time.Duration, fresh bool) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   subject,
		"jti":   uuid.NewString(),
		"typ":   typ,
		"fresh": fresh,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *AuthService) parse(tokenStr string) (jwt.MapClaims, error) {
	if tokenStr == "" {
		return nil, domain.ErrTokenMissing
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenMalformed
	}
	if !tkn.Valid {
		return nil, domain.ErrTokenMalformed
	}
	return claims, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims jwt.MapClaims) error {
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return domain.ErrTokenMalformed
	}

	revoked, err := s.blocklist.IsRevoked(ctx, jti)
	if err != nil {
		return fmt.Errorf("blocklist lookup: %w", err)
	}
	if revoked {
		return domain.ErrTokenRevoked
	}
	return nil
}
