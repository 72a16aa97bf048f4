package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"login-portal/internal/apperror"
	"login-portal/internal/domain"
	"login-portal/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	last_login DATETIME
);
`

const selectUser = `
SELECT id, username, email, password_hash, created_at, last_login
FROM users
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, email, password_hash, created_at, last_login)
VALUES (?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		nullTime(user.LastLogin),
	)
	if err != nil {
		if conflict := uniqueViolation(err); conflict != nil {
			return 0, conflict
		}
		return 0, apperror.NewStorageError("insert user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperror.NewStorageError("user last insert id", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`WHERE username = ?`, username)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`WHERE email = ?`, email)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, at, id)
	if err != nil {
		return apperror.NewStorageError("update last login", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.NewStorageError("update last login rows", err)
	}
	if n == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user      domain.User
		lastLogin sql.NullTime
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&lastLogin,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, apperror.NewStorageError("scan user", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	return &user, nil
}

// uniqueViolation converts a UNIQUE constraint failure into a ConflictError
// naming the offending column, or returns nil for any other error.
func uniqueViolation(err error) error {
	var sqliteErr *moderncsqlite.Error
	isUnique := errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	msg := strings.ToLower(err.Error())
	if !isUnique && !strings.Contains(msg, "unique constraint") {
		return nil
	}
	if strings.Contains(msg, "users.email") {
		return apperror.NewConflictError(repository.MsgEmailTaken, err)
	}
	return apperror.NewConflictError(repository.MsgUsernameTaken, err)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
