package repository

import (
	"context"
	"errors"

	"web-store/internal/domain"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateLogin is returned when the login uniqueness constraint is
	// violated, either by the pre-insert check or by the storage layer itself.
	ErrDuplicateLogin = errors.New("login already registered")
	// ErrDuplicateEmail is the email counterpart of ErrDuplicateLogin.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
