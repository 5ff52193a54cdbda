package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/talent-pool/internal/config"
	"github.com/jonathan/talent-pool/internal/types"
)

// UserLookup finds accounts by email for login.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
}

// UserService provides business logic for login
type UserService struct {
	users          UserLookup
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(users UserLookup, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		users:          users,
		passwordConfig: passwordConfig,
	}
}

// Login verifies credentials and returns the caller's session.
// Unknown emails, accounts without a password and wrong passwords all yield ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.Session, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		s.passwordConfig.VerifyMissing(req.Password)
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	if !user.Role.Valid() {
		return nil, fmt.Errorf("user %s has unknown role %q", user.ID, user.Role)
	}

	return &types.Session{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}, nil
}
