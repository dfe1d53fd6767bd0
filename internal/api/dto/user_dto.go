package dto

import (
	"strings"

	"github.com/spec-kit/admin-console/internal/domain"
)

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials converts the payload, trimming the email.
func (r LoginRequest) Credentials() domain.Credentials {
	return domain.Credentials{Email: strings.TrimSpace(r.Email), Password: r.Password}
}

// UserRequest payload for POST /user and PUT /user/{id}.
type UserRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Gender   domain.Gender   `json:"gender"`
	Role     domain.UserRole `json:"role"`
}

// User converts the payload, normalising enum casing.
func (r UserRequest) User() domain.User {
	return domain.User{
		Email:    strings.TrimSpace(r.Email),
		Password: r.Password,
		Gender:   domain.Gender(strings.ToUpper(string(r.Gender))),
		Role:     domain.UserRole(strings.ToUpper(string(r.Role))),
	}
}
