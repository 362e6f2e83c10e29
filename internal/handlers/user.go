package handlers

import (
	"net/http"

	"github.com/avkrapivin/top-me-up-sub000/internal/middleware"
	"github.com/avkrapivin/top-me-up-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	users *services.UserService
	log   *zap.Logger
}

func NewUserHandler(users *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName" binding:"required,notblank,max=50"`
}

// Profile serves GET /api/users/:id.
func (h *UserHandler) Profile(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	profile, err := h.users.Profile(c.Request.Context(), id)
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, profile)
}

// UpdateSettings serves PUT /api/users/me.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req updateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		Fail(c, h.log, err)
		return
	}
	user, err := h.users.UpdateDisplayName(c.Request.Context(), middleware.ViewerID(c), req.DisplayName)
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, user)
}
