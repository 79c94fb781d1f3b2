package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sponsorship-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
)

// ProfileHandler обслуживает профили всех типов.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler создаёт хэндлер профилей.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetMe обрабатывает GET /profile.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), actor.ID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe обрабатывает PUT /profile.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	var req service.UpdateProfileInput
	if !common.BindJSON(c, &req) {
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), actor.ID, req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetPublic обрабатывает GET /profiles/:userId. Контакты не отдаются.
func (h *ProfileHandler) GetPublic(c *gin.Context) {
	userID, ok := common.UUIDParam(c, "userId")
	if !ok {
		return
	}

	profile, err := h.profiles.GetPublic(c.Request.Context(), userID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Enrich обрабатывает POST /profile/enrich.
func (h *ProfileHandler) Enrich(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	var req struct {
		Platform string `json:"platform" binding:"required"`
		Handle   string `json:"handle" binding:"required"`
	}
	if !common.BindJSON(c, &req) {
		return
	}

	socialMedia, err := h.profiles.Enrich(c.Request.Context(), actor.ID, req.Platform, req.Handle)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"social_media": socialMedia})
}
