package ports

import (
	"context"

	"github.com/spaceyatech/identity-api/internal/core/domain"
)

// RoleRepository defines role persistence.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	FindByUUID(ctx context.Context, uuid string) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Rename(ctx context.Context, uuid, name string) error
	Delete(ctx context.Context, uuid string) error
}
