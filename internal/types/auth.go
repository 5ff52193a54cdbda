package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Session identifies the authenticated caller.
type Session struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   Role      `json:"role"`
}

// LoginResponse represents the login response with session data and authentication token.
type LoginResponse struct {
	Session Session `json:"session"`
	Token   string  `json:"token"`
}
