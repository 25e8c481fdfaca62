package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/go-auth-api/internal/domain"
)

// RoleRepo provides typed Postgres operations for the roles catalog.
type RoleRepo struct {
	db *pgxpool.Pool
}

func NewRoleRepo(db *pgxpool.Pool) *RoleRepo {
	return &RoleRepo{db: db}
}

func (r *RoleRepo) Put(ctx context.Context, role *domain.Role) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO roles (role_id, name, enable) VALUES ($1, $2, $3)`,
		role.RoleID, role.Name, role.Enable)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (r *RoleRepo) Get(ctx context.Context, roleID string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRow(ctx,
		`SELECT role_id, name, enable FROM roles WHERE role_id = $1`,
		roleID).Scan(&role.RoleID, &role.Name, &role.Enable)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("role not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return &role, nil
}

func (r *RoleRepo) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.Query(ctx,
		`SELECT role_id, name, enable FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.RoleID, &role.Name, &role.Enable); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return roles, nil
}

func (r *RoleRepo) Update(ctx context.Context, roleID string, name string, enable *bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE roles SET name = $1, enable = COALESCE($2, enable) WHERE role_id = $3`,
		name, enable, roleID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("role not found: %w", domain.ErrNotFound)
	}
	return nil
}

// RolesFor returns the ordered role names granted to a user: the enabled
// catalog entries matching the user's role column.
func (r *RoleRepo) RolesFor(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT r.name FROM roles r
		 JOIN users u ON u.role = r.name
		 WHERE u.user_id = $1 AND r.enable
		 ORDER BY r.name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return names, nil
}
