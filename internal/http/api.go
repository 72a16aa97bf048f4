package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"login-portal/internal/apperror"
	"login-portal/internal/domain"
	"login-portal/internal/repository"
	"login-portal/internal/service"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	CreatedAt string  `json:"created_at"`
	LastLogin *string `json:"last_login,omitempty"`
}

type loginResponse struct {
	service.Result
	User UserResponse `json:"user"`
}

func userToResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLogin != nil {
		v := user.LastLogin.Format(time.RFC3339)
		resp.LastLogin = &v
	}
	return resp
}

func (h *Handler) apiRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, service.Result{Message: "Invalid JSON body"})
		return
	}

	if _, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		c.JSON(apperror.StatusCode(err), service.ResultFromError(err))
		return
	}
	c.JSON(http.StatusCreated, service.OK(service.MsgRegistered))
}

func (h *Handler) apiLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, service.Result{Message: "Invalid JSON body"})
		return
	}

	user, err := h.users.Login(c.Request.Context(), h.sessions.For(c), req.Username, req.Password)
	if err != nil {
		c.JSON(apperror.StatusCode(err), service.ResultFromError(err))
		return
	}
	c.JSON(http.StatusOK, loginResponse{Result: service.OK(service.MsgLoggedIn), User: userToResponse(user)})
}

func (h *Handler) apiLogout(c *gin.Context) {
	if err := h.sessions.For(c).End(c.Request.Context()); err != nil {
		h.logger.WithError(err).Warn("end session")
	}
	c.JSON(http.StatusOK, service.OK(service.MsgLoggedOut))
}

func (h *Handler) apiMe(c *gin.Context) {
	sess, _ := SessionFromContext(c)

	user, err := h.users.GetByID(c.Request.Context(), sess.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		if endErr := h.sessions.For(c).End(c.Request.Context()); endErr != nil {
			h.logger.WithError(endErr).Warn("end orphaned session")
		}
		c.JSON(http.StatusUnauthorized, service.Result{Message: msgLoginRequired})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("user_id", sess.UserID).Error("load current user")
		c.JSON(http.StatusInternalServerError, service.Result{Message: apperror.GenericMessage})
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}
