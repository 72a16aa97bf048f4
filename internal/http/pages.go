package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"login-portal/internal/apperror"
	"login-portal/internal/domain"
	"login-portal/internal/repository"
	"login-portal/internal/service"
)

const msgInvalidForm = "Invalid form submission"

type pageData struct {
	Title         string
	Authenticated bool
	Message       string
	Error         string
	Username      string
	Email         string
	User          *domain.User
}

func redirectWithMessage(c *gin.Context, path, message string) {
	c.Redirect(http.StatusFound, path+"?message="+url.QueryEscape(message))
}

func (h *Handler) index(c *gin.Context) {
	if h.sessions.For(c).IsActive(c.Request.Context()) {
		c.Redirect(http.StatusFound, dashboardPath)
		return
	}
	c.Redirect(http.StatusFound, loginPath)
}

func (h *Handler) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", pageData{
		Title:         "Login",
		Authenticated: h.sessions.For(c).IsActive(c.Request.Context()),
		Message:       c.Query("message"),
	})
}

func (h *Handler) loginSubmit(c *gin.Context) {
	username := c.PostForm("username")
	if _, ok := c.GetPostForm("login"); !ok {
		c.HTML(http.StatusBadRequest, "login.tmpl", pageData{Title: "Login", Error: msgInvalidForm, Username: username})
		return
	}

	_, err := h.users.Login(c.Request.Context(), h.sessions.For(c), username, c.PostForm("password"))
	if err != nil {
		c.HTML(apperror.StatusCode(err), "login.tmpl", pageData{
			Title:    "Login",
			Error:    service.ResultFromError(err).Message,
			Username: username,
		})
		return
	}

	c.Redirect(http.StatusFound, dashboardPath)
}

func (h *Handler) registerPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.tmpl", pageData{
		Title:         "Register",
		Authenticated: h.sessions.For(c).IsActive(c.Request.Context()),
	})
}

func (h *Handler) registerSubmit(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	if _, ok := c.GetPostForm("register"); !ok {
		c.HTML(http.StatusBadRequest, "register.tmpl", pageData{Title: "Register", Error: msgInvalidForm, Username: username, Email: email})
		return
	}

	if _, err := h.users.Register(c.Request.Context(), username, email, c.PostForm("password")); err != nil {
		c.HTML(apperror.StatusCode(err), "register.tmpl", pageData{
			Title:    "Register",
			Error:    service.ResultFromError(err).Message,
			Username: username,
			Email:    email,
		})
		return
	}

	redirectWithMessage(c, loginPath, service.MsgRegistered)
}

func (h *Handler) dashboard(c *gin.Context) {
	sess, _ := SessionFromContext(c)

	user, err := h.users.GetByID(c.Request.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// account vanished under a live session
			if endErr := h.sessions.For(c).End(c.Request.Context()); endErr != nil {
				h.logger.WithError(endErr).Warn("end orphaned session")
			}
			c.Redirect(http.StatusFound, loginPath)
			return
		}
		h.logger.WithError(err).WithField("user_id", sess.UserID).Error("load dashboard user")
		c.String(http.StatusInternalServerError, apperror.GenericMessage)
		return
	}

	c.HTML(http.StatusOK, "dashboard.tmpl", pageData{
		Title:         "Dashboard",
		Authenticated: true,
		User:          user,
	})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.sessions.For(c).End(c.Request.Context()); err != nil {
		h.logger.WithError(err).Warn("end session")
	}
	redirectWithMessage(c, loginPath, service.MsgLoggedOut)
}
