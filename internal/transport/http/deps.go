package http

import (
	"context"
	"time"

	"github.com/go-auth-api/internal/domain"
)

// UserRepository is the minimal interface the router requires from the user store.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
}

// RoleRepository is the minimal interface the router requires from the role catalog.
type RoleRepository interface {
	List(ctx context.Context) ([]domain.Role, error)
	Get(ctx context.Context, roleID string) (*domain.Role, error)
	Put(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, roleID string, name string, enable *bool) error
	RolesFor(ctx context.Context, userID string) ([]string, error)
}

// OTPRepository is the minimal interface the router requires from the OTP record store.
type OTPRepository interface {
	Put(ctx context.Context, email string, rec *domain.OTPRecord, ttl time.Duration) error
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	Delete(ctx context.Context, email string) error
	RecordFailure(ctx context.Context, email string, maxRetries int) (bool, error)
}

// AuthorizationRepository is the minimal interface the router requires from
// the session record store.
type AuthorizationRepository interface {
	Put(ctx context.Context, sessionToken string, a *domain.Authorization, ttl time.Duration) error
	Get(ctx context.Context, sessionToken string) (*domain.Authorization, error)
	Authorize(ctx context.Context, sessionToken string) error
	SetActive(ctx context.Context, sessionToken string, active bool, roles []string) error
	Revoke(ctx context.Context, sessionToken string) (bool, error)
}
