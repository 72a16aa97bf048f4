package http

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"login-portal/internal/service"
	"login-portal/internal/session"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const (
	loginPath     = "/login"
	registerPath  = "/register"
	dashboardPath = "/dashboard"
	logoutPath    = "/logout"
)

// Handler wires HTTP routes to the auth service and session manager.
type Handler struct {
	users       service.UserService
	sessions    *session.Manager
	logger      *logrus.Logger
	corsOrigins []string
}

func NewHandler(users service.UserService, sessions *session.Manager, logger *logrus.Logger, corsOrigins []string) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:       users,
		sessions:    sessions,
		logger:      logger,
		corsOrigins: corsOrigins,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(template.Must(
		template.New("pages").Funcs(template.FuncMap{
			"formatTime":    formatTime,
			"formatTimePtr": formatTimePtr,
		}).ParseFS(templatesFS, "templates/*.tmpl"),
	))

	router.Use(requestLogger(h.logger))
	if len(h.corsOrigins) > 0 {
		// router-level so preflight requests reach it before route matching
		router.Use(cors.New(cors.Config{
			AllowOrigins:     h.corsOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(h.sessions.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/", h.index)
	router.GET(loginPath, h.loginPage)
	router.POST(loginPath, h.loginSubmit)
	router.GET(registerPath, h.registerPage)
	router.POST(registerPath, h.registerSubmit)
	router.GET(logoutPath, h.logout)
	router.GET(dashboardPath, RequireAuth(h.sessions, loginPath), h.dashboard)

	api := router.Group("/api")
	{
		api.POST("/register", h.apiRegister)
		api.POST("/login", h.apiLogin)
		api.POST("/logout", h.apiLogout)
		api.GET("/me", RequireAuthAPI(h.sessions), h.apiMe)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	return formatTime(*t)
}
