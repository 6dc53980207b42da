package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/password"
)

const testSecret = "test-secret"

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		switch {
		case u.Username == user.Username:
			return nil, domain.ErrUsernameExists
		case u.Email == user.Email:
			return nil, domain.ErrEmailExists
		case user.PhoneNumber != "" && u.PhoneNumber == user.PhoneNumber:
			return nil, domain.ErrPhoneExists
		}
	}
	r.users[user.UUID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByUUID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) SetEmailToken(_ context.Context, id, token string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.EmailToken = token
	return nil
}

func (r *stubUserRepo) ConfirmEmail(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsEmailConfirmed = true
	u.EmailToken = ""
	return nil
}

func (r *stubUserRepo) SetAuthToken(_ context.Context, id, token string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.AuthToken = token
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, user *domain.User) error {
	u, ok := r.users[user.UUID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for id, other := range r.users {
		if id != user.UUID && other.Email == user.Email {
			return domain.ErrEmailExists
		}
	}
	u.Username = user.Username
	u.Email = user.Email
	u.PhoneNumber = user.PhoneNumber
	u.IsEmailConfirmed = user.IsEmailConfirmed
	u.EmailToken = user.EmailToken
	return nil
}

func (r *stubUserRepo) GrantRole(_ context.Context, id, roleName string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	for _, have := range u.Roles {
		if have == roleName {
			return nil
		}
	}
	u.Roles = append(u.Roles, roleName)
	return nil
}

type stubBlocklist struct {
	entries []domain.RevokedToken
}

func (b *stubBlocklist) Revoke(_ context.Context, jti string, when time.Time) error {
	for _, e := range b.entries {
		if e.JTI == jti {
			return nil
		}
	}
	b.entries = append(b.entries, domain.RevokedToken{JTI: jti, RevokedAt: when})
	return nil
}

func (b *stubBlocklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	for _, e := range b.entries {
		if e.JTI == jti {
			return true, nil
		}
	}
	return false, nil
}

func testHasher() *password.Hasher {
	return password.NewHasher(bcrypt.MinCost)
}

func seedUser(t *testing.T, repo *stubUserRepo, username, email, pass string, confirmed bool) *domain.User {
	t.Helper()
	hash, err := testHasher().Hash(pass)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &domain.User{
		UUID:             uuid.NewString(),
		Username:         username,
		Email:            email,
		PasswordHash:     hash,
		IsEmailConfirmed: confirmed,
		Roles:            []string{domain.RoleClient},
	}
	created, err := repo.Create(context.Background(), user)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return created
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	blocklist := &stubBlocklist{}
	svc := NewAuthService(repo, blocklist, testHasher(), testSecret, time.Hour, 24*time.Hour)

	alice := seedUser(t, repo, "alice", "alice@example.com", "s3cret", true)

	pair, err := svc.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}

	claims := parseTestToken(t, pair.AccessToken)
	if claims["sub"] != alice.UUID {
		t.Fatalf("expected sub %s, got %v", alice.UUID, claims["sub"])
	}
	if claims["typ"] != "access" {
		t.Fatalf("expected typ access, got %v", claims["typ"])
	}
	if fresh, _ := claims["fresh"].(bool); !fresh {
		t.Fatalf("expected login access token to be fresh")
	}
	if jti, _ := claims["jti"].(string); jti == "" {
		t.Fatalf("expected a jti claim")
	}

	refreshClaims := parseTestToken(t, pair.RefreshToken)
	if refreshClaims["typ"] != "refresh" {
		t.Fatalf("expected typ refresh, got %v", refreshClaims["typ"])
	}

	stored, _ := repo.FindByUUID(context.Background(), alice.UUID)
	if stored.AuthToken != pair.AccessToken {
		t.Fatalf("expected latest access token to be recorded on the user")
	}
}

func TestAuthService_Login_BadCredentialsIndistinguishable(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubBlocklist{}, testHasher(), testSecret, time.Hour, 24*time.Hour)

	seedUser(t, repo, "bob", "bob@example.com", "goodpass", true)

	_, wrongPass := svc.Login(context.Background(), "bob", "badpass")
	_, unknownUser := svc.Login(context.Background(), "ghost", "whatever")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if !errors.Is(unknownUser, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown username: expected ErrInvalidCredentials, got %v", unknownUser)
	}
	if wrongPass.Error() != unknownUser.Error() {
		t.Fatalf("errors must be indistinguishable: %q vs %q", wrongPass, unknownUser)
	}
}

func TestAuthService_Login_UnconfirmedEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubBlocklist{}, testHasher(), testSecret, time.Hour, 24*time.Hour)

	seedUser(t, repo, "carol", "carol@example.com", "s3cret", false)

	if _, err := svc.Login(context.Background(), "carol", "s3cret"); !errors.Is(err, domain.ErrEmailNotConfirmed) {
		t.Fatalf("expected ErrEmailNotConfirmed, got %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubBlocklist{}, testHasher(), testSecret, time.Hour, 24*time.Hour)

	alice := seedUser(t, repo, "alice", "alice@example.com", "s3cret", true)

	pair, err := svc.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	access, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	claims := parseTestToken(t, access)
	if claims["typ"] != "access" {
		t.Fatalf("expected typ access, got %v", claims["typ"])
	}
	if claims["sub"] != alice.UUID {
		t.Fatalf("expected sub %s, got %v", alice.UUID, claims["sub"])
	}
	if fresh, _ := claims["fresh"].(bool); fresh {
		t.Fatalf("refreshed access token must not be fresh")
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubBlocklist{}, testHasher(), testSecret, time.Hour, 24*time.Hour)

	seedUser(t, repo, "alice", "alice@example.com", "s3cret", true)
	pair, _ := svc.Login(context.Background(), "alice", "s3cret")

	if _, err := svc.Refresh(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestAuthService_Logout_RevokesAndIsIdempotent(t *testing.T) {
	repo := newStubUserRepo()
	blocklist := &stubBlocklist{}
	svc := NewAuthService(repo, blocklist, testHasher(), testSecret, time.Hour, 24*time.Hour)

	seedUser(t, repo, "alice", "alice@example.com", "s3cret", true)
	pair, _ := svc.Login(context.Background(), "alice", "s3cret")

	if _, err := svc.ResolveIdentity(context.Background(), pair.AccessToken); err != nil {
		t.Fatalf("resolve before logout failed: %v", err)
	}

	if err := svc.Logout(context.Background(), pair.AccessToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.ResolveIdentity(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after logout, got %v", err)
	}

	firstRevokedAt := blocklist.entries[0].RevokedAt
	if err := svc.Logout(context.Background(), pair.AccessToken); err != nil {
		t.Fatalf("second logout must be a no-op, got %v", err)
	}
	if len(blocklist.entries) != 1 {
		t.Fatalf("expected a single ledger entry, got %d", len(blocklist.entries))
	}
	if !blocklist.entries[0].RevokedAt.Equal(firstRevokedAt) {
		t.Fatalf("second logout must not rewrite the revocation time")
	}
}

func TestAuthService_ResolveIdentity_Errors(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubBlocklist{}, testHasher(), testSecret, time.Hour, 24*time.Hour)

	seedUser(t, repo, "alice", "alice@example.com", "s3cret", true)
	pair, _ := svc.Login(context.Background(), "alice", "s3cret")

	if _, err := svc.ResolveIdentity(context.Background(), ""); !errors.Is(err, domain.ErrTokenMissing) {
		t.Fatalf("empty token: expected ErrTokenMissing, got %v", err)
	}
	if _, err := svc.ResolveIdentity(context.Background(), "garbage"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("garbage token: expected ErrTokenMalformed, got %v", err)
	}
	if _, err := svc.ResolveIdentity(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("refresh token: expected ErrTokenMalformed, got %v", err)
	}

	expired := mintTestToken(t, "some-uuid", "access", -time.Minute)
	if _, err := svc.ResolveIdentity(context.Background(), expired); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expired token: expected ErrTokenExpired, got %v", err)
	}

	vanished := mintTestToken(t, "no-such-user", "access", time.Hour)
	if _, err := svc.ResolveIdentity(context.Background(), vanished); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("vanished subject: expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_TokenFresh(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubBlocklist{}, testHasher(), testSecret, time.Hour, 24*time.Hour)

	seedUser(t, repo, "alice", "alice@example.com", "s3cret", true)
	pair, _ := svc.Login(context.Background(), "alice", "s3cret")

	if !svc.TokenFresh(pair.AccessToken) {
		t.Fatalf("login access token must be fresh")
	}
	if svc.TokenFresh(pair.RefreshToken) {
		t.Fatalf("refresh token must not be fresh")
	}

	refreshed, _ := svc.Refresh(context.Background(), pair.RefreshToken)
	if svc.TokenFresh(refreshed) {
		t.Fatalf("refreshed access token must not be fresh")
	}
	if svc.TokenFresh("garbage") {
		t.Fatalf("garbage must not be fresh")
	}
}

func parseTestToken(t *testing.T, tok string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	return claims
}

func mintTestToken(t *testing.T, subject, typ string, ttl time.Duration) string {
	t.Helper()
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   subject,
		"jti":   uuid.NewString(),
		"typ":   typ,
		"fresh": false,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("mint test token: %v", err)
	}
	return tok
}
