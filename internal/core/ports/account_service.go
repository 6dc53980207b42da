package ports

import (
	"context"

	"github.com/spaceyatech/identity-api/internal/core/domain"
)

// AccountInput carries sub-account fields.
type AccountInput struct {
	Name         string
	BioData      string
	DisplayPhoto string
}

// AccountService manages a user's profile sub-accounts. Every operation is
// scoped to the owning user; an account belonging to someone else behaves as
// if it did not exist.
type AccountService interface {
	Create(ctx context.Context, ownerUUID string, in AccountInput) (*domain.Account, error)
	Get(ctx context.Context, ownerUUID, accountUUID string) (*domain.Account, error)
	ListMine(ctx context.Context, ownerUUID string) ([]*domain.Account, error)
	Update(ctx context.Context, ownerUUID, accountUUID string, in AccountInput) (*domain.Account, error)
	Delete(ctx context.Context, ownerUUID, accountUUID string) error
}
