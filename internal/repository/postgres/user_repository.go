package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"login-portal/internal/apperror"
	"login-portal/internal/domain"
	"login-portal/internal/repository"
)

const uniqueViolationCode = "23505"

const selectUser = `SELECT id, username, email, password_hash, created_at, last_login FROM users `

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	return Migrate(ctx, r.db)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	var lastLogin sql.NullTime
	if user.LastLogin != nil {
		lastLogin = sql.NullTime{Time: *user.LastLogin, Valid: true}
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at, last_login) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		user.Username, user.Email, user.PasswordHash, user.CreatedAt, lastLogin,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			if pgErr.ConstraintName == "users_email_key" {
				return 0, apperror.NewConflictError(repository.MsgEmailTaken, err)
			}
			return 0, apperror.NewConflictError(repository.MsgUsernameTaken, err)
		}
		return 0, apperror.NewStorageError("insert user", err)
	}
	return user.ID, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, selectUser+`WHERE username = $1`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, selectUser+`WHERE email = $1`, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, selectUser+`WHERE id = $1`, id)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
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

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		user      domain.User
		lastLogin sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &lastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, apperror.NewStorageError("select user", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	return &user, nil
}
