package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"web-store/internal/auth"
	"web-store/internal/domain"
	"web-store/internal/repository"
)

var (
	// ErrValidation indicates malformed or missing registration input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateLogin is returned when the login is already taken.
	ErrDuplicateLogin = errors.New("login already registered")
	// ErrDuplicateEmail is returned when the email is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUserNotFound indicates no user matches the given login or id.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials indicates the password did not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const maxIdentifierLen = 50

// UserService registers and authenticates users.
type UserService interface {
	Register(ctx context.Context, login, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, login, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

// Register validates the input, hashes the password, and persists a new
// non-admin user. Login and email uniqueness is pre-checked against the
// store, with the storage-layer UNIQUE constraint as the authoritative
// backstop under concurrent registrations.
func (s *userService) Register(ctx context.Context, login, email, password string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	email = strings.TrimSpace(email)

	if login == "" {
		return nil, fmt.Errorf("%w: login is required", ErrValidation)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(login) > maxIdentifierLen {
		return nil, fmt.Errorf("%w: login must be at most %d characters", ErrValidation, maxIdentifierLen)
	}
	if len(email) > maxIdentifierLen {
		return nil, fmt.Errorf("%w: email must be at most %d characters", ErrValidation, maxIdentifierLen)
	}

	if _, err := s.users.GetByLogin(ctx, login); err == nil {
		return nil, ErrDuplicateLogin
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) {
			return nil, fmt.Errorf("%w: password is required", ErrValidation)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// Self-registration never grants the admin role.
	user := &domain.User{
		Login:        login,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      false,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateLogin):
			return nil, ErrDuplicateLogin
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		default:
			return nil, err
		}
	}

	return sanitizeUser(user), nil
}

// Authenticate verifies a login/password pair. Not-found and bad-password
// outcomes stay distinct here for logging; the transport layer collapses them
// into one generic denial.
func (s *userService) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Login:     user.Login,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
