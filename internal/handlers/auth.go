package handlers

import (
	"net/http"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/middleware"
	"github.com/avkrapivin/top-me-up-sub000/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users         *services.UserService
	notifications *services.NotificationService
	log           *zap.Logger
}

func NewAuthHandler(users *services.UserService, notifications *services.NotificationService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, notifications: notifications, log: log}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) startSession(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionUserKey, userID)
	if err := session.Save(); err != nil {
		return apperr.Wrap(err, "save session")
	}
	return nil
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := bindJSON(c, &req); err != nil {
		Fail(c, h.log, err)
		return
	}
	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	if err := h.startSession(c, user.ID); err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		Fail(c, h.log, err)
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	if err := h.startSession(c, user.ID); err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		Fail(c, h.log, apperr.Wrap(err, "clear session"))
		return
	}
	OK(c, http.StatusOK, nil)
}

// Me returns the signed-in user with the unread notification count.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	unread, err := h.notifications.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		Fail(c, h.log, apperr.Wrap(err, "count notifications"))
		return
	}
	OK(c, http.StatusOK, gin.H{"user": user, "unreadNotifications": unread})
}
