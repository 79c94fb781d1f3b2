package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/sponsorship-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
)

// DiscoveryHandler лента для брендов и агентств.
type DiscoveryHandler struct {
	discovery *service.DiscoveryService
}

func NewDiscoveryHandler(discovery *service.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: discovery}
}

// Opportunities обрабатывает GET /discover/opportunities.
func (h *DiscoveryHandler) Opportunities(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	filter, swiped, err := parseFeedQuery(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	items, err := h.discovery.Opportunities(c.Request.Context(), actor, filter, swiped)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"opportunities": items})
}

// Posts обрабатывает GET /discover/posts.
func (h *DiscoveryHandler) Posts(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	filter, swiped, err := parseFeedQuery(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	items, err := h.discovery.Posts(c.Request.Context(), actor, filter, swiped)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": items})
}

// parseFeedQuery читает фильтры ленты и список пропущенных свайпом id (exclude=a,b,c).
func parseFeedQuery(c *gin.Context) (models.FeedFilter, []uuid.UUID, error) {
	filter := models.FeedFilter{
		Location: strings.TrimSpace(c.Query("location")),
		Search:   strings.TrimSpace(c.Query("search")),
		AdType:   strings.TrimSpace(c.Query("ad_type")),
	}

	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, nil, apperror.New(apperror.ErrCodeValidation, "category_id должен быть валидным UUID")
		}
		filter.CategoryID = &id
	}

	var err error
	if filter.PriceMin, err = parsePrice(c, "price_min"); err != nil {
		return filter, nil, err
	}
	if filter.PriceMax, err = parsePrice(c, "price_max"); err != nil {
		return filter, nil, err
	}

	var swiped []uuid.UUID
	if raw := c.Query("exclude"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return filter, nil, apperror.New(apperror.ErrCodeValidation, "exclude должен содержать UUID через запятую")
			}
			swiped = append(swiped, id)
		}
	}
	return filter, swiped, nil
}

func parsePrice(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, key+" должен быть числом")
	}
	return &v, nil
}
