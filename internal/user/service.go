package user

import (
	"context"
	"errors"

	"github.com/sanjaibalajee/weebsworldxplorers/internal/auth"
)

// Common errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrIncorrectPIN = errors.New("incorrect PIN")
)

// Service handles user business logic
type Service struct {
	store Store
	jwt   *auth.JWTManager
}

// NewService creates a new user service with dependencies injected
func NewService(store Store, jwt *auth.JWTManager) *Service {
	return &Service{store: store, jwt: jwt}
}

// Login verifies the user's PIN and issues a session token carrying their
// role.
func (s *Service) Login(ctx context.Context, userID, pin string) (*User, string, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrUserNotFound
	}
	if user.PIN != pin {
		return nil, "", ErrIncorrectPIN
	}

	token, err := s.jwt.Generate(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List retrieves all users
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}
