package handlers

import (
	"net/http"

	"github.com/avkrapivin/top-me-up-sub000/internal/middleware"
	"github.com/avkrapivin/top-me-up-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	log           *zap.Logger
}

func NewNotificationHandler(notifications *services.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log}
}

func (h *NotificationHandler) List(c *gin.Context) {
	feed, err := h.notifications.Latest(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, feed)
}

func (h *NotificationHandler) Read(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), middleware.ViewerID(c), id); err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, nil)
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), middleware.ViewerID(c)); err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, nil)
}
