package authorization

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-api/internal/domain"
)

// Service manages the lifecycle of authorization session records: created
// unauthorized, promoted by OTP verification, enriched with account state,
// and revoked on logout. Records expire on their own when left alone.
type Service interface {
	// Create stores a fresh record under sessionToken, unauthorized and with
	// unknown active state.
	Create(ctx context.Context, sessionToken, userID, authorizationToken string) error
	Get(ctx context.Context, sessionToken string) (*domain.Authorization, error)
	// Activate flips the record to authorized without touching its TTL.
	Activate(ctx context.Context, sessionToken string) error
	// MarkActive backfills the record's active flag and role list from the
	// account row, preserving TTL, and returns the refreshed record.
	MarkActive(ctx context.Context, sessionToken string) (*domain.Authorization, error)
	// Revoke deletes the record. Revoking an absent session is not an error.
	Revoke(ctx context.Context, sessionToken string) error
}

type authorizationStore interface {
	Put(ctx context.Context, sessionToken string, a *domain.Authorization, ttl time.Duration) error
	Get(ctx context.Context, sessionToken string) (*domain.Authorization, error)
	Authorize(ctx context.Context, sessionToken string) error
	SetActive(ctx context.Context, sessionToken string, active bool, roles []string) error
	Revoke(ctx context.Context, sessionToken string) (bool, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type roleStore interface {
	RolesFor(ctx context.Context, userID string) ([]string, error)
}

type service struct {
	repo  authorizationStore
	users userStore
	roles roleStore
	ttl   time.Duration
}

type ServiceDeps struct {
	Repo  authorizationStore
	Users userStore
	Roles roleStore
	TTL   time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:  deps.Repo,
		users: deps.Users,
		roles: deps.Roles,
		ttl:   deps.TTL,
	}
}

func (s *service) Create(ctx context.Context, sessionToken, userID, authorizationToken string) error {
	a := &domain.Authorization{
		UserID:             userID,
		AuthorizationToken: authorizationToken,
		IsAuthorize:        false,
		Expiration:         int64(s.ttl.Seconds()),
		Active:             domain.ActiveUnknown,
	}
	return s.repo.Put(ctx, sessionToken, a, s.ttl)
}

func (s *service) Get(ctx context.Context, sessionToken string) (*domain.Authorization, error) {
	return s.repo.Get(ctx, sessionToken)
}

func (s *service) Activate(ctx context.Context, sessionToken string) error {
	return s.repo.Authorize(ctx, sessionToken)
}

func (s *service) MarkActive(ctx context.Context, sessionToken string) (*domain.Authorization, error) {
	rec, err := s.repo.Get(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("load account for session: %w", err)
	}

	roles, err := s.roles.RolesFor(ctx, rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("load roles for session: %w", err)
	}
	if len(roles) == 0 {
		// No catalog entry for the account's role; fall back to the raw role
		// column so the record is never left without one.
		roles = []string{user.Role}
	}

	if err := s.repo.SetActive(ctx, sessionToken, user.Enable, roles); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, sessionToken)
}

func (s *service) Revoke(ctx context.Context, sessionToken string) error {
	deleted, err := s.repo.Revoke(ctx, sessionToken)
	if err != nil {
		return err
	}
	if !deleted {
		slog.Debug("revoke of absent session", "noop", true)
	}
	return nil
}
