package domain

import "time"

// Built-in role names. Client is assigned at registration; Admin and
// SuperAdmin gate the management surface.
const (
	RoleClient     = "Client"
	RoleAdmin      = "Admin"
	RoleSuperAdmin = "SuperAdmin"
)

// SeedRoles is the role set guaranteed to exist at startup.
var SeedRoles = []string{RoleClient, RoleAdmin, RoleSuperAdmin}

// User models an account holder. PasswordHash is never serialized.
// EmailToken holds the latest issued confirm/reset token: issuing a new one
// overwrites it, which is what invalidates any older, still-unexpired token.
// AuthToken mirrors the latest access token for legacy manual verification
// paths only; authorization decisions never read it.
type User struct {
	UUID             string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PhoneNumber      string    `json:"phone_number"`
	PasswordHash     string    `json:"-"`
	IsEmailConfirmed bool      `json:"is_verified"`
	EmailToken       string    `json:"-"`
	AuthToken        string    `json:"-"`
	Roles            []string  `json:"roles"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasAnyRole reports whether the user holds at least one of the given role
// names. An empty user role set never matches.
func (u *User) HasAnyRole(names ...string) bool {
	for _, have := range u.Roles {
		for _, want := range names {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Role is a named permission bucket, many-to-many with users.
type Role struct {
	UUID      string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Account is a profile sub-account owned by a user. DisplayPhoto is a stored
// file name; upload/serving happens elsewhere.
type Account struct {
	UUID         string    `json:"id"`
	Name         string    `json:"name"`
	BioData      string    `json:"bio_data"`
	DisplayPhoto string    `json:"display_photo"`
	UserUUID     string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RevokedToken is an append-only blocklist entry. Once a jti is recorded it
// never authorizes again, regardless of the token's own expiry.
type RevokedToken struct {
	JTI       string    `json:"jti"`
	RevokedAt time.Time `json:"revoked_at"`
}
