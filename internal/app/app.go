// Package app assembles the storage, service and session layers from
// configuration. It is shared by the server and the operator CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"login-portal/internal/config"
	"login-portal/internal/password"
	"login-portal/internal/repository"
	"login-portal/internal/repository/postgres"
	"login-portal/internal/repository/sqlite"
	"login-portal/internal/service"
	"login-portal/internal/session"
)

// Deps holds the long-lived components built from configuration.
type Deps struct {
	DB    *sql.DB
	Repo  repository.UserRepository
	Users service.UserService

	closers []func() error
	logger  *logrus.Logger
}

// Build opens the configured database, prepares its schema and constructs
// the user service.
func Build(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*Deps, error) {
	db, repo, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps := &Deps{DB: db, Repo: repo, logger: logger}
	deps.closers = append(deps.closers, db.Close)

	if err := repo.Init(ctx); err != nil {
		deps.Close()
		return nil, fmt.Errorf("init user repository: %w", err)
	}

	hasher, err := password.New(cfg.Password.Algorithm, cfg.Password.Cost)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	deps.Users = service.NewUserService(repo, hasher, logger)
	return deps, nil
}

func openRepository(ctx context.Context, cfg config.Config) (*sql.DB, repository.UserRepository, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, postgres.NewUserRepository(db), nil
	case "sqlite", "":
		db, err := sqlite.Open(ctx, cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, sqlite.NewUserRepository(db), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// BuildSessions creates the session manager, backed by Redis when an address
// is configured and by process memory otherwise.
func BuildSessions(ctx context.Context, cfg config.Config, logger *logrus.Logger, deps *Deps) (*session.Manager, error) {
	var store session.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		deps.closers = append(deps.closers, client.Close)
		store = session.NewRedisStore(client, cfg.Redis.Prefix)
		logger.Infof("using redis session store at %s", cfg.Redis.Addr)
	} else {
		store = session.NewMemoryStore()
		logger.Warn("no redis address configured, sessions are kept in memory")
	}

	return session.NewManager(session.Config{
		Store:      store,
		Secret:     []byte(cfg.Session.Secret),
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
		Logger:     logger,
	})
}

// Close releases everything Build and BuildSessions opened, newest first.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil && d.logger != nil {
			d.logger.WithError(err).Warn("close dependency")
		}
	}
	d.closers = nil
}
