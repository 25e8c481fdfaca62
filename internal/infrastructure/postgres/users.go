package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/go-auth-api/internal/domain"
)

const userColumns = `user_id, username, email, phone, password_hash, role,
	first_name, last_name, email_confirmed, auth_provider, google_sub,
	enable, deleted_at, created_at, updated_at`

// UserRepo provides typed Postgres operations for the users table.
type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.UserID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName, &u.EmailConfirmed, &u.AuthProvider, &u.GoogleSub,
		&u.Enable, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return &u, nil
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		u.UserID, u.Username, u.Email, u.Phone, u.PasswordHash, u.Role,
		u.FirstName, u.LastName, u.EmailConfirmed, u.AuthProvider, u.GoogleSub,
		u.Enable, u.DeletedAt, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = $1 AND deleted_at IS NULL`,
		userID))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND deleted_at IS NULL`,
		email))
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 AND deleted_at IS NULL`,
		username))
}

// List returns a page of non-deleted users, newest first.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE deleted_at IS NULL
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return users, nil
}

// updatableUserColumns guards the dynamic SET clause against unexpected keys.
var updatableUserColumns = map[string]bool{
	"username":        true,
	"email":           true,
	"phone":           true,
	"password_hash":   true,
	"role":            true,
	"first_name":      true,
	"last_name":       true,
	"email_confirmed": true,
	"google_sub":      true,
	"auth_provider":   true,
	"enable":          true,
}

// Update applies a partial column update. updated_at is always refreshed.
func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	sets := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+2)
	i := 1
	for col, val := range updates {
		if !updatableUserColumns[col] {
			return fmt.Errorf("unknown user column %q: %w", col, domain.ErrBadRequest)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", i))
	args = append(args, time.Now().UTC())
	i++
	args = append(args, userID)

	tag, err := r.db.Exec(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+fmt.Sprintf(` WHERE user_id = $%d AND deleted_at IS NULL`, i),
		args...)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return nil
}

// SoftDelete stamps deleted_at and disables the account.
func (r *UserRepo) SoftDelete(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET deleted_at = $1, enable = false, updated_at = $1
		 WHERE user_id = $2 AND deleted_at IS NULL`,
		time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return nil
}
