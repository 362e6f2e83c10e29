package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/services"
	"github.com/avkrapivin/top-me-up-sub000/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shareDescriptionLength = 160

type ShareHandler struct {
	lists   *services.ListService
	preview *services.PreviewRenderer
	siteURL string
	log     *zap.Logger
}

func NewShareHandler(lists *services.ListService, preview *services.PreviewRenderer, siteURL string, log *zap.Logger) *ShareHandler {
	return &ShareHandler{
		lists:   lists,
		preview: preview,
		siteURL: strings.TrimRight(siteURL, "/"),
		log:     log,
	}
}

// Preview serves GET /api/lists/:id/preview.png.
func (h *ShareHandler) Preview(c *gin.Context) {
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
	png, err := h.preview.Render(list)
	if err != nil {
		Fail(c, h.log, apperr.Wrap(err, "render preview"))
		return
	}
	c.Header("Cache-Control", "public, max-age=600")
	c.Data(http.StatusOK, "image/png", png)
}

// Page serves GET /share/lists/:slug, the crawler-facing page of a list.
func (h *ShareHandler) Page(c *gin.Context) {
	list, err := h.lists.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		status := apperr.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("load shared list failed", zap.String("slug", c.Param("slug")), zap.Error(err))
		}
		c.HTML(status, "error.html", gin.H{
			"Title": "Not available",
			"Error": apperr.PublicMessage(err),
		})
		return
	}

	description := utils.HTMLToText(string(list.DescriptionHTML))
	if description == "" {
		description = fmt.Sprintf("A top %d of %s on TopMeUp", len(list.Items), list.Category)
	}
	if runes := []rune(description); len(runes) > shareDescriptionLength {
		description = string(runes[:shareDescriptionLength-1]) + "…"
	}
	author := ""
	if list.Author != nil {
		author = list.Author.DisplayName
	}

	c.HTML(http.StatusOK, "share.html", gin.H{
		"Title":       list.Title,
		"Category":    string(list.Category),
		"Description": description,
		"Author":      author,
		"Items":       list.Items,
		"ShareURL":    fmt.Sprintf("%s/share/lists/%s", h.siteURL, list.Slug),
		"ImageURL":    fmt.Sprintf("%s/api/lists/%d/preview.png", h.siteURL, list.ID),
		"AppURL":      fmt.Sprintf("%s/lists/%d", h.siteURL, list.ID),
	})
}
