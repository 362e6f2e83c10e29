package handlers

import (
	"net/http"
	"strconv"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/middleware"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"
	"github.com/avkrapivin/top-me-up-sub000/internal/services"
	"github.com/avkrapivin/top-me-up-sub000/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ListHandler struct {
	lists *services.ListService
	log   *zap.Logger
}

func NewListHandler(lists *services.ListService, log *zap.Logger) *ListHandler {
	return &ListHandler{lists: lists, log: log}
}

func pageParam(c *gin.Context) (int, error) {
	raw := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, apperr.InvalidArgument("invalid page")
	}
	return page, nil
}

// Index serves GET /api/lists?category=&page=.
func (h *ListHandler) Index(c *gin.Context) {
	h.page(c, store.ListFilter{Category: models.Category(c.Query("category"))})
}

// ByUser serves GET /api/users/:id/lists.
func (h *ListHandler) ByUser(c *gin.Context) {
	userID, err := idParam(c, "id")
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	h.page(c, store.ListFilter{UserID: userID})
}

func (h *ListHandler) page(c *gin.Context, filter store.ListFilter) {
	page, err := pageParam(c)
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	result, err := h.lists.Page(c.Request.Context(), filter, page)
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, result)
}

func (h *ListHandler) Show(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	list, err := h.lists.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, list)
}

func (h *ListHandler) Create(c *gin.Context) {
	var req services.ListInput
	if err := bindJSON(c, &req); err != nil {
		Fail(c, h.log, err)
		return
	}
	list, err := h.lists.Create(c.Request.Context(), middleware.ViewerID(c), req)
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusCreated, list)
}

func (h *ListHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	var req services.ListInput
	if err := bindJSON(c, &req); err != nil {
		Fail(c, h.log, err)
		return
	}
	list, err := h.lists.Update(c.Request.Context(), id, middleware.ViewerID(c), req)
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, list)
}

func (h *ListHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	if err := h.lists.Delete(c.Request.Context(), id, middleware.ViewerID(c)); err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, gin.H{"_id": id})
}
