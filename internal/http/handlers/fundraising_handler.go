package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sponsorship-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
)

type FundraisingHandler struct {
	fundraising *service.FundraisingService
}

func NewFundraisingHandler(fundraising *service.FundraisingService) *FundraisingHandler {
	return &FundraisingHandler{fundraising: fundraising}
}

// Total GET /fundraising/total
func (h *FundraisingHandler) Total(c *gin.Context) {
	total, err := h.fundraising.Total(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, total)
}
