package role

import (
	"context"

	"github.com/google/uuid"

	"github.com/go-auth-api/internal/domain"
)

type Service interface {
	List(ctx context.Context) ([]domain.Role, error)
	Get(ctx context.Context, roleID string) (*domain.Role, error)
	Create(ctx context.Context, input domain.RoleInput) (*domain.Role, error)
	Update(ctx context.Context, roleID string, input domain.RoleInput) (*domain.Role, error)
	Delete(ctx context.Context, roleID string) error
}

type roleStore interface {
	List(ctx context.Context) ([]domain.Role, error)
	Get(ctx context.Context, roleID string) (*domain.Role, error)
	Put(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, roleID string, name string, enable *bool) error
}

type service struct {
	repo roleStore
}

func NewService(repo roleStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]domain.Role, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, roleID string) (*domain.Role, error) {
	return s.repo.Get(ctx, roleID)
}

func (s *service) Create(ctx context.Context, input domain.RoleInput) (*domain.Role, error) {
	role := &domain.Role{
		RoleID: uuid.NewString(),
		Name:   input.Name,
		Enable: true,
	}
	if err := s.repo.Put(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *service) Update(ctx context.Context, roleID string, input domain.RoleInput) (*domain.Role, error) {
	if err := s.repo.Update(ctx, roleID, input.Name, input.Enable); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, roleID)
}

// Delete disables the catalog entry rather than removing the row, so user
// rows referencing the role name stay consistent.
func (s *service) Delete(ctx context.Context, roleID string) error {
	disabled := false
	role, err := s.repo.Get(ctx, roleID)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, roleID, role.Name, &disabled)
}
