package ports

import (
	"context"

	"github.com/spaceyatech/identity-api/internal/core/domain"
)

// RoleService manages the role catalogue and role grants.
type RoleService interface {
	Create(ctx context.Context, name string) (*domain.Role, error)
	Get(ctx context.Context, uuid string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Rename(ctx context.Context, uuid, name string) (*domain.Role, error)
	Delete(ctx context.Context, uuid string) error
	// Grant adds an existing role to a user.
	Grant(ctx context.Context, userUUID, roleName string) error
	// Seed ensures the built-in roles exist.
	Seed(ctx context.Context) error
}
