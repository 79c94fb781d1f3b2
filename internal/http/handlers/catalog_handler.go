package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sponsorship-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
)

type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCategories GET /categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListClientLogos GET /client-logos
func (h *CatalogHandler) ListClientLogos(c *gin.Context) {
	logos, err := h.catalog.ClientLogos(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client_logos": logos})
}

// ListSuccessStories GET /success-stories
func (h *CatalogHandler) ListSuccessStories(c *gin.Context) {
	stories, err := h.catalog.SuccessStories(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success_stories": stories})
}

// GetSuccessStory GET /success-stories/:id, где id uuid или slug
func (h *CatalogHandler) GetSuccessStory(c *gin.Context) {
	story, err := h.catalog.SuccessStory(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}
