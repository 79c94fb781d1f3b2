package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sponsorship-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
)

// MediaHandler управляет загрузкой и удалением медиафайлов.
type MediaHandler struct {
	media *service.MediaService
}

// NewMediaHandler создаёт новый хэндлер.
func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Upload обрабатывает POST /media (multipart, поле file).
func (h *MediaHandler) Upload(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, apperror.New(apperror.ErrCodeValidation, "поле file обязательно"))
		return
	}
	if file.Size == 0 {
		common.RespondError(c, apperror.New(apperror.ErrCodeValidation, "файл не может быть пустым"))
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondError(c, apperror.Internal(err))
		return
	}
	defer src.Close()

	media, err := h.media.Upload(c.Request.Context(), actor.ID, file.Filename, src)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, media)
}

// Delete обрабатывает DELETE /media/:id.
func (h *MediaHandler) Delete(c *gin.Context) {
	actor, ok := common.RequireActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.media.Delete(c.Request.Context(), actor.ID, id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
