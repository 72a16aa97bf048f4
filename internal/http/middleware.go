package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"login-portal/internal/domain"
	"login-portal/internal/service"
	"login-portal/internal/session"
)

// ContextSessionKey holds the *domain.Session of an authenticated request.
const ContextSessionKey = "auth.session"

const (
	requestIDHeader  = "X-Request-ID"
	msgLoginRequired = "Login required"
)

// RequireAuth redirects anonymous visitors to redirectTarget and lets
// authenticated requests through.
func RequireAuth(sessions *session.Manager, redirectTarget string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessions.For(c).Current(c.Request.Context())
		if !ok {
			c.Redirect(http.StatusFound, redirectTarget)
			c.Abort()
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// RequireAuthAPI is the JSON variant of RequireAuth.
func RequireAuthAPI(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessions.For(c).Current(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, service.Result{Message: msgLoginRequired})
			return
		}
		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// SessionFromContext returns the session stored by RequireAuth.
func SessionFromContext(c *gin.Context) (*domain.Session, bool) {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*domain.Session)
	return sess, ok
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}
