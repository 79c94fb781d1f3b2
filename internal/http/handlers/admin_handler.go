package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
)

// AdminHandler модерация объявлений и назначение встреч.
type AdminHandler struct {
	moderation *service.ModerationService
	matches    *service.MatchService
}

func NewAdminHandler(moderation *service.ModerationService, matches *service.MatchService) *AdminHandler {
	return &AdminHandler{moderation: moderation, matches: matches}
}

// ListOpportunities обрабатывает GET /admin/opportunities?status=pending.
func (h *AdminHandler) ListOpportunities(c *gin.Context) {
	items, err := h.moderation.Opportunities(c.Request.Context(), c.Query("status"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"opportunities": items})
}

func (h *AdminHandler) ListPosts(c *gin.Context) {
	items, err := h.moderation.Posts(c.Request.Context(), c.Query("status"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": items})
}

// Approve возвращает хэндлер POST /admin/{opportunities|posts}/:id/approve.
func (h *AdminHandler) Approve(kind valueobject.ListingKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := common.UUIDParam(c, "id")
		if !ok {
			return
		}

		state, err := h.moderation.Approve(c.Request.Context(), kind, id)
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// Reject возвращает хэндлер POST /admin/{opportunities|posts}/:id/reject {reason}.
func (h *AdminHandler) Reject(kind valueobject.ListingKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := common.UUIDParam(c, "id")
		if !ok {
			return
		}

		// пустую причину отклоняет сервис, поэтому поле не required
		var req struct {
			Reason string `json:"reason"`
		}
		if !common.BindJSON(c, &req) {
			return
		}

		state, err := h.moderation.Reject(c.Request.Context(), kind, id, req.Reason)
		if err != nil {
			common.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// ScheduleMeeting обрабатывает PUT /admin/matches/:id/meeting.
func (h *AdminHandler) ScheduleMeeting(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req service.MeetingInput
	if !common.BindJSON(c, &req) {
		return
	}

	view, err := h.matches.ScheduleMeeting(c.Request.Context(), actor, id, req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
