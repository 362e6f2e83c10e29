package handlers

import (
	"context"
	"net/http"

	"github.com/avkrapivin/top-me-up-sub000/internal/contentsearch"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Searcher interface {
	Search(ctx context.Context, category models.Category, query string) ([]contentsearch.Result, error)
}

type SearchHandler struct {
	search Searcher
	log    *zap.Logger
}

func NewSearchHandler(search Searcher, log *zap.Logger) *SearchHandler {
	return &SearchHandler{search: search, log: log}
}

// Search serves GET /api/search/:category?q=.
func (h *SearchHandler) Search(c *gin.Context) {
	results, err := h.search.Search(c.Request.Context(), models.Category(c.Param("category")), c.Query("q"))
	if err != nil {
		Fail(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, results)
}
