package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/ports"
)

const defaultDisplayPhoto = "default-avatar.png"

// AccountService manages profile sub-accounts. Every operation is scoped to
// the owner; someone else's account behaves as if it did not exist.
type AccountService struct {
	accounts ports.AccountRepository
}

func NewAccountService(accounts ports.AccountRepository) *AccountService {
	return &AccountService{accounts: accounts}
}

func (s *AccountService) Create(ctx context.Context, ownerUUID string, in ports.AccountInput) (*domain.Account, error) {
	photo := in.DisplayPhoto
	if photo == "" {
		photo = defaultDisplayPhoto
	}

	now := time.Now().UTC()
	account := &domain.Account{
		UUID:         uuid.NewString(),
		Name:         in.Name,
		BioData:      in.BioData,
		DisplayPhoto: photo,
		UserUUID:     ownerUUID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.accounts.Create(ctx, account)
}

func (s *AccountService) Get(ctx context.Context, ownerUUID, accountUUID string) (*domain.Account, error) {
	account, err := s.accounts.FindByUUID(ctx, accountUUID)
	if err != nil {
		return nil, err
	}
	if account.UserUUID != ownerUUID {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

func (s *AccountService) ListMine(ctx context.Context, ownerUUID string) ([]*domain.Account, error) {
	return s.accounts.ListByUser(ctx, ownerUUID)
}

func (s *AccountService) Update(ctx context.Context, ownerUUID, accountUUID string, in ports.AccountInput) (*domain.Account, error) {
	account, err := s.Get(ctx, ownerUUID, accountUUID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		account.Name = in.Name
	}
	if in.BioData != "" {
		account.BioData = in.BioData
	}
	if in.DisplayPhoto != "" {
		account.DisplayPhoto = in.DisplayPhoto
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) Delete(ctx context.Context, ownerUUID, accountUUID string) error {
	if _, err := s.Get(ctx, ownerUUID, accountUUID); err != nil {
		return err
	}
	return s.accounts.Delete(ctx, accountUUID)
}
