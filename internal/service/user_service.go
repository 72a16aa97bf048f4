package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"login-portal/internal/apperror"
	"login-portal/internal/domain"
	"login-portal/internal/password"
	"login-portal/internal/repository"
)

// User-facing messages. Unknown usernames and wrong passwords deliberately
// share MsgInvalidCredentials.
const (
	MsgAllFieldsRequired   = "All fields are required"
	MsgCredentialsRequired = "Username and password are required"
	MsgInvalidCredentials  = "Invalid username or password"
	MsgRegistered          = "Registration successful!"
	MsgLoggedIn            = "Login successful!"
	MsgLoggedOut           = "You have been logged out successfully"
)

// SessionStarter establishes a session for an authenticated user. End
// revokes it again when the login cannot be completed.
type SessionStarter interface {
	Start(ctx context.Context, userID int64, username string) error
	End(ctx context.Context) error
}

// UserService describes the account lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, sess SessionStarter, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	hasher password.Hasher
	logger *logrus.Logger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(users repository.UserRepository, hasher password.Hasher, logger *logrus.Logger) UserService {
	if logger == nil {
		logger = logrus.New()
	}
	return &userService{
		users:  users,
		hasher: hasher,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return nil, apperror.NewValidationError(MsgAllFieldsRequired)
	}

	// Fast-path checks for friendly messages; the unique constraints enforced
	// by Create remain authoritative under concurrent registrations.
	if err := s.ensureAbsent(ctx, s.users.GetByUsername, username, repository.MsgUsernameTaken); err != nil {
		return nil, err
	}
	if err := s.ensureAbsent(ctx, s.users.GetByEmail, email, repository.MsgEmailTaken); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if apperror.Is(err, apperror.ValidationError) {
			return nil, err
		}
		s.logger.WithError(err).Error("hash password")
		return nil, apperror.NewInternalError("hash password", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if apperror.Is(err, apperror.ConflictError) {
			return nil, err
		}
		s.logger.WithError(err).WithField("username", username).Error("create user")
		return nil, storageError("create user", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return sanitizeUser(user), nil
}

func (s *userService) ensureAbsent(ctx context.Context, lookup func(context.Context, string) (*domain.User, error), value, conflictMsg string) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return apperror.NewConflictError(conflictMsg, nil)
	case errors.Is(err, repository.ErrUserNotFound):
		return nil
	default:
		s.logger.WithError(err).Error("lookup user")
		return storageError("lookup user", err)
	}
}

func (s *userService) Login(ctx context.Context, sess SessionStarter, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.NewValidationError(MsgCredentialsRequired)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn a verification anyway so timing does not reveal unknown usernames.
			s.hasher.Verify(password, s.dummy())
			return nil, apperror.NewAuthenticationError(MsgInvalidCredentials)
		}
		s.logger.WithError(err).Error("lookup user")
		return nil, storageError("lookup user", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.WithField("user_id", user.ID).Info("login rejected")
		return nil, apperror.NewAuthenticationError(MsgInvalidCredentials)
	}

	if err := sess.Start(ctx, user.ID, user.Username); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("start session")
		return nil, apperror.NewInternalError("start session", err)
	}

	at := s.now()
	if !at.After(user.CreatedAt) {
		at = user.CreatedAt.Add(time.Microsecond)
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, at); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("update last login")
		if endErr := sess.End(ctx); endErr != nil {
			s.logger.WithError(endErr).WithField("user_id", user.ID).Error("revoke session after failed login")
		}
		return nil, storageError("update last login", err)
	}
	user.LastLogin = &at

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user logged in")
	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// dummy returns a hash of a random-looking string, computed once, used to
// equalize login timing for unknown usernames.
func (s *userService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			s.logger.WithError(err).Warn("compute dummy hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func storageError(op string, err error) error {
	if ae, ok := apperror.FromError(err); ok && ae.Type == apperror.StorageError {
		return ae
	}
	return apperror.NewStorageError(op, err)
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	out := &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
	if user.LastLogin != nil {
		t := *user.LastLogin
		out.LastLogin = &t
	}
	return out
}
