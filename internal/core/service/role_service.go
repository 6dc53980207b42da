package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spaceyatech/identity-api/internal/core/domain"
	"github.com/spaceyatech/identity-api/internal/core/ports"
)

// RoleService manages the role catalogue and role grants.
type RoleService struct {
	roles ports.RoleRepository
	users ports.UserRepository
	log   zerolog.Logger
}

func NewRoleService(roles ports.RoleRepository, users ports.UserRepository, log zerolog.Logger) *RoleService {
	return &RoleService{roles: roles, users: users, log: log}
}

func (s *RoleService) Create(ctx context.Context, name string) (*domain.Role, error) {
	now := time.Now().UTC()
	role := &domain.Role{
		UUID:      uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.roles.Create(ctx, role)
}

func (s *RoleService) Get(ctx context.Context, roleUUID string) (*domain.Role, error) {
	return s.roles.FindByUUID(ctx, roleUUID)
}

func (s *RoleService) List(ctx context.Context) ([]*domain.Role, error) {
	return s.roles.List(ctx)
}

func (s *RoleService) Rename(ctx context.Context, roleUUID, name string) (*domain.Role, error) {
	if err := s.roles.Rename(ctx, roleUUID, name); err != nil {
		return nil, err
	}
	return s.roles.FindByUUID(ctx, roleUUID)
}

func (s *RoleService) Delete(ctx context.Context, roleUUID string) error {
	return s.roles.Delete(ctx, roleUUID)
}

// Grant adds an existing role to a user. Granting a role the user already
// holds is a no-op.
func (s *RoleService) Grant(ctx context.Context, userUUID, roleName string) error {
	if _, err := s.roles.FindByName(ctx, roleName); err != nil {
		return err
	}
	if _, err := s.users.FindByUUID(ctx, userUUID); err != nil {
		return err
	}
	return s.users.GrantRole(ctx, userUUID, roleName)
}

// Seed ensures the built-in roles exist. Safe to run on every startup.
func (s *RoleService) Seed(ctx context.Context) error {
	for _, name := range domain.SeedRoles {
		_, err := s.roles.FindByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrRoleNotFound) {
			return fmt.Errorf("seed roles: %w", err)
		}
		if _, err := s.Create(ctx, name); err != nil && !errors.Is(err, domain.ErrRoleExists) {
			return fmt.Errorf("seed roles: %w", err)
		}
		s.log.Info().Str("role", name).Msg("seeded role")
	}
	return nil
}
