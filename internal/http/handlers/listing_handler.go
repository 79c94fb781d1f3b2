package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sponsorship-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
)

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OpportunityHandler возможности создателей и организаторов.
type OpportunityHandler struct {
	listings *service.ListingService
}

func NewOpportunityHandler(listings *service.ListingService) *OpportunityHandler {
	return &OpportunityHandler{listings: listings}
}

// Create обрабатывает POST /opportunities.
func (h *OpportunityHandler) Create(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	var req service.OpportunityInput
	if !common.BindJSON(c, &req) {
		return
	}

	o, err := h.listings.CreateOpportunity(c.Request.Context(), actor, req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// Update обрабатывает PUT /opportunities/:id. Модерация начинается заново.
func (h *OpportunityHandler) Update(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req service.OpportunityInput
	if !common.BindJSON(c, &req) {
		return
	}

	o, err := h.listings.UpdateOpportunity(c.Request.Context(), actor, id, req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OpportunityHandler) Get(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	o, err := h.listings.GetOpportunity(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// SetStatus обрабатывает PATCH /opportunities/:id/status {status: active|paused}.
func (h *OpportunityHandler) SetStatus(c *gin.Context) {
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

	if err := h.listings.SetOpportunityStatus(c.Request.Context(), actor, id, req.Status); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *OpportunityHandler) Delete(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.listings.DeleteOpportunity(c.Request.Context(), actor, id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMy обрабатывает GET /opportunities/my, включая причины отклонения.
func (h *OpportunityHandler) ListMy(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	items, err := h.listings.MyOpportunities(c.Request.Context(), actor)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"opportunities": items})
}

// PostHandler публикации инфлюенсеров.
type PostHandler struct {
	listings *service.ListingService
}

func NewPostHandler(listings *service.ListingService) *PostHandler {
	return &PostHandler{listings: listings}
}

// Create обрабатывает POST /posts.
func (h *PostHandler) Create(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	var req service.PostInput
	if !common.BindJSON(c, &req) {
		return
	}

	p, err := h.listings.CreatePost(c.Request.Context(), actor, req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PostHandler) Update(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req service.PostInput
	if !common.BindJSON(c, &req) {
		return
	}

	p, err := h.listings.UpdatePost(c.Request.Context(), actor, id, req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) Get(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.listings.GetPost(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) SetStatus(c *gin.Context) {
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

	if err := h.listings.SetPostStatus(c.Request.Context(), actor, id, req.Status); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *PostHandler) Delete(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.listings.DeletePost(c.Request.Context(), actor, id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) ListMy(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	items, err := h.listings.MyPosts(c.Request.Context(), actor)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": items})
}
