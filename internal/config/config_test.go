package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = strings.Repeat("k", 32)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOGIN_SESSION_SECRET", secret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/users.db", cfg.Database.Path)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "login_session", cfg.Session.CookieName)
	assert.False(t, cfg.Session.Secure)
	assert.Equal(t, "bcrypt", cfg.Password.Algorithm)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOGIN_SESSION_SECRET", secret)
	t.Setenv("LOGIN_SESSION_TTL", "30m")
	t.Setenv("LOGIN_SESSION_SECURE", "true")
	t.Setenv("LOGIN_DATABASE_DRIVER", "postgres")
	t.Setenv("LOGIN_DATABASE_DSN", "postgres://app@localhost/app")
	t.Setenv("LOGIN_REDIS_ADDR", "localhost:6379")
	t.Setenv("LOGIN_PASSWORD_ALGORITHM", "argon2id")
	t.Setenv("LOGIN_PASSWORD_COST", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://app@localhost/app", cfg.Database.DSN)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "argon2id", cfg.Password.Algorithm)
	assert.Equal(t, 3, cfg.Password.Cost)
}

func TestLoadFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOGIN_SESSION_SECRET="+secret+"\nLOGIN_SERVER_ADDR=127.0.0.1:9000\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LOGIN_SESSION_SECRET")
		os.Unsetenv("LOGIN_SERVER_ADDR")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, secret, cfg.Session.Secret)
}

func TestLoadRejectsMalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("LOGIN_SESSION_SECRET", secret)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("bad-key=1\n"), 0o600))

	_, err := Load()
	assert.ErrorContains(t, err, ".env")
}

func TestLoadRejectsMalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("LOGIN_SESSION_SECRET", secret)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed\n"), 0o600))

	_, err := Load()
	assert.ErrorContains(t, err, "config file")
}

func TestLoadStorageSkipsSessionSettings(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOGIN_SESSION_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "session secret")

	cfg, err := LoadStorage()
	require.NoError(t, err)
	assert.Equal(t, "data/users.db", cfg.Database.Path)

	t.Setenv("LOGIN_DATABASE_DRIVER", "postgres")
	_, err = LoadStorage()
	assert.ErrorContains(t, err, "dsn")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.Session.Secret = secret
		c.Session.TTL = time.Hour
		c.Database.Driver = "sqlite"
		c.Database.Path = "x.db"
		return c
	}
	require.NoError(t, valid().Validate())

	c := valid()
	c.Session.Secret = "short"
	assert.ErrorContains(t, c.Validate(), "session secret")

	c = valid()
	c.Database.Driver = "postgres"
	assert.ErrorContains(t, c.Validate(), "dsn")

	c = valid()
	c.Database.Driver = "mysql"
	assert.ErrorContains(t, c.Validate(), "unsupported")

	c = valid()
	c.Session.TTL = 0
	assert.ErrorContains(t, c.Validate(), "ttl")

	c = valid()
	c.Session.Secret = ""
	c.Session.TTL = 0
	assert.NoError(t, c.ValidateDatabase())
}
