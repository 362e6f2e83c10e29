package handlers

import (
	"net/http"
	"strconv"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/middleware"
	"github.com/avkrapivin/top-me-up-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments *services.CommentService
	log      *zap.Logger
}

func NewCommentHandler(comments *services.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

type createCommentRequest struct {
	Content         string `json:"content" binding:"required,notblank,max=500"`
	ParentCommentID *uint  `json:"parentCommentId"`
}

type editCommentRequest struct {
	Content string `json:"content" binding:"required,notblank,max=500"`
}

// parseLimit reads ?limit=. Absent or empty means the default; anything else
// must be a number in range.
func parseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > services.MaxCommentLimit {
		return 0, apperr.InvalidArgument("limit must be between 1 and %d", services.MaxCommentLimit)
	}
	return limit, nil
}

// Thread serves GET /api/lists/:id/comments.
func (h *CommentHandler) Thread(c *gin.Context) {
	listID, err := idParam(c, "id")
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	limit, err := parseLimit(c)
	if err != nil {
		Fail(c, h.log, err)
		return
	}

	page, err := h.comments.Thread(c.Request.Context(), services.ThreadQuery{
		ListID:   listID,
		Limit:    limit,
		Cursor:   c.Query("cursor"),
		ViewerID: middleware.ViewerID(c),
	})
	if err != nil {
		Fail(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       page.Roots,
		"pagination": page.Pagination,
	})
}

func (h *CommentHandler) Create(c *gin.Context) {
	listID, err := idParam(c, "id")
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	var req createCommentRequest
	if err := bindJSON(c, &req); err != nil {
		Fail(c, h.log, err)
		return
	}

	node, err := h.comments.Create(c.Request.Context(), services.CreateCommentInput{
		ListID:          listID,
		UserID:          middleware.ViewerID(c),
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
	})
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusCreated, node)
}

func (h *CommentHandler) Edit(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	var req editCommentRequest
	if err := bindJSON(c, &req); err != nil {
		Fail(c, h.log, err)
		return
	}

	node, err := h.comments.Edit(c.Request.Context(), id, middleware.ViewerID(c), req.Content)
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, node)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id, middleware.ViewerID(c)); err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, gin.H{"_id": id, "isDeleted": true})
}

func (h *CommentHandler) Like(c *gin.Context) {
	h.toggleLike(c, true)
}

func (h *CommentHandler) Unlike(c *gin.Context) {
	h.toggleLike(c, false)
}

func (h *CommentHandler) toggleLike(c *gin.Context, like bool) {
	id, err := idParam(c, "id")
	if err != nil {
		Fail(c, h.log, err)
		return
	}

	var state *services.LikeState
	if like {
		state, err = h.comments.Like(c.Request.Context(), id, middleware.ViewerID(c))
	} else {
		state, err = h.comments.Unlike(c.Request.Context(), id, middleware.ViewerID(c))
	}
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, state)
}
