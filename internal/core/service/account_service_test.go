package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/ports"
)

type stubAccountRepo struct {
	accounts map[string]*domain.Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Name == account.Name {
			return nil, domain.ErrAccountExists
		}
	}
	clone := *account
	r.accounts[account.UUID] = &clone
	return &clone, nil
}

func (r *stubAccountRepo) FindByUUID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := r.accounts[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) ListByUser(_ context.Context, userUUID string) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, a := range r.accounts {
		if a.UserUUID == userUUID {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubAccountRepo) Update(_ context.Context, account *domain.Account) error {
	if _, ok := r.accounts[account.UUID]; !ok {
		return domain.ErrAccountNotFound
	}
	clone := *account
	r.accounts[account.UUID] = &clone
	return nil
}

func (r *stubAccountRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

func TestAccountService_CreateDefaults(t *testing.T) {
	svc := NewAccountService(newStubAccountRepo())

	account, err := svc.Create(context.Background(), "owner-1", ports.AccountInput{Name: "personal"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if account.DisplayPhoto != defaultDisplayPhoto {
		t.Fatalf("expected default photo, got %q", account.DisplayPhoto)
	}
	if account.UserUUID != "owner-1" {
		t.Fatalf("expected owner to be recorded, got %q", account.UserUUID)
	}
}

func TestAccountService_OwnerScoping(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo)

	mine, err := svc.Create(context.Background(), "owner-1", ports.AccountInput{Name: "personal"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Another user must not see, update or delete it.
	if _, err := svc.Get(context.Background(), "owner-2", mine.UUID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("foreign get: expected ErrAccountNotFound, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "owner-2", mine.UUID, ports.AccountInput{Name: "stolen"}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("foreign update: expected ErrAccountNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "owner-2", mine.UUID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("foreign delete: expected ErrAccountNotFound, got %v", err)
	}

	got, err := svc.Get(context.Background(), "owner-1", mine.UUID)
	if err != nil {
		t.Fatalf("owner get failed: %v", err)
	}
	if got.Name != "personal" {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestAccountService_UpdateAndList(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo)

	account, err := svc.Create(context.Background(), "owner-1", ports.AccountInput{Name: "personal", BioData: "hi"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(context.Background(), "owner-1", account.UUID, ports.AccountInput{BioData: "hello"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.BioData != "hello" || updated.Name != "personal" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	list, err := svc.ListMine(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 account, got %d", len(list))
	}

	if err := svc.Delete(context.Background(), "owner-1", account.UUID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	list, _ = svc.ListMine(context.Background(), "owner-1")
	if len(list) != 0 {
		t.Fatalf("expected no accounts after delete, got %d", len(list))
	}
}
