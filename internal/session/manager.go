// Package session establishes, queries and tears down server-side login
// sessions. The browser only holds an opaque token inside an HMAC-signed
// cookie; the session record itself lives in a Store.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"login-portal/internal/domain"
)

const (
	DefaultCookieName = "login_session"
	DefaultTTL        = 12 * time.Hour

	tokenKey  = "token"
	handleKey = "session.handle"
)

// Config configures a Manager.
type Config struct {
	Store      Store
	Secret     []byte
	CookieName string
	TTL        time.Duration
	Secure     bool
	Logger     *logrus.Logger
}

// Manager issues per-request Handles.
type Manager struct {
	store   Store
	cookies cookie.Store
	name    string
	ttl     time.Duration
	options sessions.Options
	logger  *logrus.Logger
	now     func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, errors.New("session store is required")
	}
	if len(cfg.Secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	options := sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	cookies := cookie.NewStore(cfg.Secret)
	cookies.Options(options)

	return &Manager{
		store:   cfg.Store,
		cookies: cookies,
		name:    cfg.CookieName,
		ttl:     cfg.TTL,
		options: options,
		logger:  cfg.Logger,
		now:     time.Now,
	}, nil
}

// Middleware loads the signed session cookie; it must run before For is used.
func (m *Manager) Middleware() gin.HandlerFunc {
	return sessions.Sessions(m.name, m.cookies)
}

// CookieName is the name of the cookie carrying the session token.
func (m *Manager) CookieName() string {
	return m.name
}

// For returns the session handle bound to the current request.
func (m *Manager) For(c *gin.Context) *Handle {
	if v, ok := c.Get(handleKey); ok {
		if h, ok := v.(*Handle); ok {
			return h
		}
	}
	h := &Handle{m: m, cookie: sessions.Default(c)}
	c.Set(handleKey, h)
	return h
}

// Handle is the request-scoped view of a client's session.
type Handle struct {
	m      *Manager
	cookie sessions.Session

	loaded  bool
	current *domain.Session
}

func (h *Handle) token() string {
	token, _ := h.cookie.Get(tokenKey).(string)
	return token
}

// Start binds the client to userID under a freshly generated token. Any
// record held under the previous token is removed.
func (h *Handle) Start(ctx context.Context, userID int64, username string) error {
	if old := h.token(); old != "" {
		if err := h.m.store.Delete(ctx, old); err != nil {
			h.m.logger.WithError(err).Warn("delete previous session")
		}
	}

	token, err := newToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}

	now := h.m.now().UTC()
	record := &domain.Session{
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(h.m.ttl),
	}
	if err := h.m.store.Save(ctx, token, record, h.m.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	h.cookie.Clear()
	h.cookie.Options(h.m.options)
	h.cookie.Set(tokenKey, token)
	if err := h.cookie.Save(); err != nil {
		return fmt.Errorf("write session cookie: %w", err)
	}

	h.loaded = true
	h.current = record
	return nil
}

// Current returns the live session record, or false for anonymous clients.
func (h *Handle) Current(ctx context.Context) (*domain.Session, bool) {
	if h.loaded {
		return h.current, h.current != nil
	}
	h.loaded = true

	token := h.token()
	if token == "" {
		return nil, false
	}

	record, err := h.m.store.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.m.logger.WithError(err).Error("load session")
		}
		return nil, false
	}
	if record.UserID == 0 || record.Expired(h.m.now()) {
		if err := h.m.store.Delete(ctx, token); err != nil {
			h.m.logger.WithError(err).Warn("delete expired session")
		}
		return nil, false
	}

	h.current = record
	return record, true
}

// IsActive reports whether the client has an authenticated session.
func (h *Handle) IsActive(ctx context.Context) bool {
	_, ok := h.Current(ctx)
	return ok
}

// CurrentUserID returns the authenticated user's id.
func (h *Handle) CurrentUserID(ctx context.Context) (int64, bool) {
	record, ok := h.Current(ctx)
	if !ok {
		return 0, false
	}
	return record.UserID, true
}

// End deletes the session record and expires the client cookie.
func (h *Handle) End(ctx context.Context) error {
	var storeErr error
	if token := h.token(); token != "" {
		storeErr = h.m.store.Delete(ctx, token)
	}

	h.loaded = true
	h.current = nil

	h.cookie.Clear()
	expired := h.m.options
	expired.MaxAge = -1
	h.cookie.Options(expired)
	if err := h.cookie.Save(); err != nil {
		return fmt.Errorf("expire session cookie: %w", err)
	}
	if storeErr != nil {
		return fmt.Errorf("delete session: %w", storeErr)
	}
	return nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
