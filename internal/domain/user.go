package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"
)

type User struct {
	UserID         string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone"`
	PasswordHash   string     `json:"-"`
	Role           string     `json:"role"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	EmailConfirmed bool       `json:"email_confirmed"`
	AuthProvider   string     `json:"auth_provider,omitempty"` // "local" | "google"
	GoogleSub      string     `json:"-"`
	Enable         bool       `json:"enable"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created"`
	UpdatedAt      time.Time  `json:"updated"`
}

type CreateUserRequest struct {
	Username  string  `json:"username" validate:"required"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone"`
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	// Channel selects where the sign-up OTP is delivered: "email" (default) or "sms".
	Channel string `json:"channel" validate:"omitempty,oneof=email sms"`
}

type UpdateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	Enable    *bool   `json:"enable"`
}
