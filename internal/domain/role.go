package domain

type Role struct {
	RoleID string `json:"id"`
	Name   string `json:"name"`
	Enable bool   `json:"enable"`
}

type RoleInput struct {
	Name   string `json:"name" validate:"required"`
	Enable *bool  `json:"enable"`
}
