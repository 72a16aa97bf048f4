package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Log struct {
		Level string
	}
	Database struct {
		Driver string
		Path   string
		DSN    string
	}
	Session struct {
		Secret     string
		TTL        time.Duration
		CookieName string
		Secure     bool
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}
	Password struct {
		Algorithm string
		Cost      int
	}
	CORS struct {
		Origins []string
	}
}

// Load reads configuration from environment variables and optional config files.
// Variables use the LOGIN_ prefix, e.g. LOGIN_SESSION_SECRET.
func Load() (Config, error) {
	cfg, err := read()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadStorage is Load for tools that only touch the credential store; session
// settings are not required.
func LoadStorage() (Config, error) {
	cfg, err := read()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func read() (Config, error) {
	// a missing .env is fine; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("LOGIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/users.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.cookiename", "login_session")
	v.SetDefault("session.secure", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "login:session")
	v.SetDefault("password.algorithm", "bcrypt")
	v.SetDefault("password.cost", 0)
	v.SetDefault("cors.origins", []string{})

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	if len(c.Session.Secret) < 32 {
		return errors.New("session secret must be at least 32 characters (LOGIN_SESSION_SECRET)")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	return c.ValidateDatabase()
}

// ValidateDatabase checks the credential store settings only.
func (c Config) ValidateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}
