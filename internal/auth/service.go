package auth

import (
	"Linkfolio-Backend/internal/domain"
	"Linkfolio-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("malformed email")
)

// Service implements account registration and login.
type Service struct {
	storage   repository.Storage
	passwords *PasswordService
	tokens    *JWTService
	log       *zap.Logger
}

// NewService creates a new auth service.
func NewService(storage repository.Storage, passwords *PasswordService, tokens *JWTService, log *zap.Logger) *Service {
	return &Service{
		storage:   storage,
		passwords: passwords,
		tokens:    tokens,
		log:       log,
	}
}

// Register creates an account and returns an access token for it.
func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	if err := IsValidPassword(password); err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrInvalidPassword, err)
	}

	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.storage.CreateUser(ctx, email, hash)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("registered user", zap.Int64("user_id", user.ID))

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and returns an access token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if err := s.passwords.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.storage.UpdateUser(ctx, user); err != nil {
		s.log.Warn("failed to record login time", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}
