package ports

import (
	"context"

	"github.com/spaceyatech/identity-api/internal/core/domain"
)

// AccountRepository defines sub-account persistence.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUUID(ctx context.Context, uuid string) (*domain.Account, error)
	ListByUser(ctx context.Context, userUUID string) ([]*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, uuid string) error
}
