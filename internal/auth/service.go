package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/marginboard/marginboard/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Register creates a new account with a bcrypt hashed password. An
// existing username is left untouched and reported as taken.
func (s *Service) Register(ctx context.Context, username, password, nickname string) (*User, error) {
	username = strings.TrimSpace(username)
	nickname = strings.TrimSpace(nickname)
	if username == "" {
		return nil, errors.New("auth: username required")
	}
	if password == "" {
		return nil, errors.New("auth: password required")
	}
	if nickname == "" {
		nickname = username
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, shared.ErrUsernameTaken
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, User{
		Username:     username,
		PasswordHash: string(hash),
		Nickname:     nickname,
	})
}
