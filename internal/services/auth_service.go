package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/auth-api/internal/auth"
	"github.com/isdelr/auth-api/internal/config"
	"github.com/isdelr/auth-api/internal/models"
	"github.com/isdelr/auth-api/internal/store"
	"github.com/rs/zerolog/log"
)

// AuthServiceProvider defines the interface for the credential lifecycle.
type AuthServiceProvider interface {
	Register(ctx context.Context, input RegisterInput) (models.User, error)
	Login(ctx context.Context, input LoginInput) (LoginResult, error)
	RequestPasswordReset(ctx context.Context, input ResetRequestInput) (string, error)
	UpdatePassword(ctx context.Context, input UpdatePasswordInput) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token string
	User  models.User
}

// AuthService provides registration, login and password reset.
type AuthService struct {
	store         store.UserStore
	hasher        *auth.PasswordHasher
	tokens        *auth.TokenService
	loginTokenTTL time.Duration
	resetTokenTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, userStore store.UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenService) *AuthService {
	return &AuthService{
		store:         userStore,
		hasher:        hasher,
		tokens:        tokens,
		loginTokenTTL: cfg.LoginTokenTTL,
		resetTokenTTL: cfg.ResetTokenTTL,
	}
}

// Register creates a new user, hashing their password.
// The returned user never carries the password hash.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	if err := validateInput(input); err != nil {
		return models.User{}, err
	}

	_, err := s.store.FindByEmail(ctx, input.Email)
	if err == nil {
		return models.User{}, ErrDuplicateEmail
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, fmt.Errorf("failed to look up email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.store.Insert(ctx, models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, store.ErrDuplicateEmail) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")
	return user.Sanitized(), nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	if err := validateInput(input); err != nil {
		return LoginResult{}, err
	}

	user, err := s.findByEmail(ctx, input.Email)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	token, err := s.tokens.Issue(user, s.loginTokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: user.Sanitized()}, nil
}

// RequestPasswordReset issues a short-lived token for the account behind
// input.Email. Delivering it is up to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, input ResetRequestInput) (string, error) {
	if err := validateInput(input); err != nil {
		return "", err
	}

	user, err := s.findByEmail(ctx, input.Email)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user, s.resetTokenTTL)
	if err != nil {
		return "", err
	}
	log.Info().Str("user_id", user.ID).Msg("Password reset token issued")
	return token, nil
}

// UpdatePassword sets a new password for the user named by a reset token.
// The token is checked before the store is touched. The read and the write
// are not atomic; concurrent updates for one user are last-write-wins.
func (s *AuthService) UpdatePassword(ctx context.Context, input UpdatePasswordInput) error {
	claims, err := s.tokens.Verify(input.Token)
	if err != nil {
		return err
	}

	if err := validateInput(input); err != nil {
		return err
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.store.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	log.Info().Str("user_id", user.ID).Msg("Password updated")
	return nil
}

// GetUserByID retrieves a user without the password hash.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("failed to look up user: %w", err)
	}
	return user.Sanitized(), nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("failed to look up email: %w", err)
	}
	return user, nil
}
