package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"login-portal/internal/apperror"
	"login-portal/internal/domain"
	"login-portal/internal/repository"
)

func newTestRepo(t *testing.T) repository.UserRepository {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(ctx))
	return repo
}

func TestCreateAndLookup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "$2a$hash"}
	id, err := repo.Create(ctx, user)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)
	assert.Equal(t, "alice@example.com", byName.Email)
	assert.Equal(t, "$2a$hash", byName.PasswordHash)
	assert.Nil(t, byName.LastLogin)
	assert.WithinDuration(t, user.CreatedAt, byName.CreatedAt, time.Second)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestLookupMissing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	_, err = repo.GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUniqueConstraints(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Username: "alice", Email: "other@example.com", PasswordHash: "h2"})
	require.Error(t, err)
	ae, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ConflictError, ae.Type)
	assert.Equal(t, repository.MsgUsernameTaken, ae.Message)

	_, err = repo.Create(ctx, &domain.User{Username: "bob", Email: "alice@example.com", PasswordHash: "h3"})
	require.Error(t, err)
	ae, ok = apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ConflictError, ae.Type)
	assert.Equal(t, repository.MsgEmailTaken, ae.Message)

	original, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", original.Email)
	assert.Equal(t, "h1", original.PasswordHash)
}

func TestUpdateLastLogin(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	_, err := repo.Create(ctx, user)
	require.NoError(t, err)

	at := user.CreatedAt.Add(time.Minute)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.WithinDuration(t, at, *got.LastLogin, time.Millisecond)

	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, user.ID+100, at), repository.ErrUserNotFound)
}
