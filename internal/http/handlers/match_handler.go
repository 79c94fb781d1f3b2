package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/sponsorship-backend/internal/domain/valueobject"
	"github.com/ignatzorin/sponsorship-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
)

// MatchHandler лайки брендов и решения владельцев объявлений.
type MatchHandler struct {
	matches *service.MatchService
}

func NewMatchHandler(matches *service.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// Create обрабатывает POST /matches {opportunity_id | post_id}.
func (h *MatchHandler) Create(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	var req struct {
		OpportunityID *uuid.UUID `json:"opportunity_id"`
		PostID        *uuid.UUID `json:"post_id"`
	}
	if !common.BindJSON(c, &req) {
		return
	}

	var (
		kind      valueobject.ListingKind
		listingID uuid.UUID
	)
	switch {
	case req.OpportunityID != nil && req.PostID == nil:
		kind, listingID = valueobject.ListingOpportunity, *req.OpportunityID
	case req.PostID != nil && req.OpportunityID == nil:
		kind, listingID = valueobject.ListingPost, *req.PostID
	default:
		common.RespondError(c, apperror.New(apperror.ErrCodeValidation, "нужно указать ровно одно из opportunity_id или post_id"))
		return
	}

	match, err := h.matches.Like(c.Request.Context(), actor, kind, listingID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

// Decide обрабатывает PUT /matches/:id/status {status: accepted|rejected}.
func (h *MatchHandler) Decide(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !common.BindJSON(c, &req) {
		return
	}

	result, err := h.matches.Decide(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MatchHandler) Get(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.matches.Get(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListMy обрабатывает GET /matches/my?status=.
func (h *MatchHandler) ListMy(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	items, err := h.matches.ListMy(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": items})
}

// CalendarURL обрабатывает GET /matches/:id/calendar.
func (h *MatchHandler) CalendarURL(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	link, err := h.matches.CalendarURL(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"google_calendar_url": link})
}

// CalendarICS обрабатывает GET /matches/:id/calendar.ics.
func (h *MatchHandler) CalendarICS(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	ics, filename, err := h.matches.CalendarICS(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}
