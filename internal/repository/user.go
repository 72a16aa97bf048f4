package repository

import (
	"context"
	"errors"
	"time"

	"login-portal/internal/domain"
)

// ErrUserNotFound is returned by lookups that match no row.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines persistence operations for User entities.
//
// Create enforces username and email uniqueness at the storage layer and
// reports a violation as an apperror.ConflictError naming the taken field.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Messages used for uniqueness conflicts, shared by every implementation.
const (
	MsgUsernameTaken = "Username already exists"
	MsgEmailTaken    = "Email already in use"
)
