package common

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/sponsorship-backend/internal/http/middleware"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
)

var (
	// ErrUserNotFound возвращается, если в контексте нет пользователя.
	ErrUserNotFound = errors.New("пользователь не найден в контексте")

	// ErrInvalidUUID возвращается при ошибке разбора UUID.
	ErrInvalidUUID = errors.New("неверный формат UUID")
)

// CurrentUserID извлекает userID из gin контекста.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, ErrUserNotFound
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrUserNotFound
	}

	return userID, nil
}

// OptionalUserID возвращает userID, если запрос авторизован.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, err := CurrentUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// CurrentActor собирает пользователя и тип его аккаунта.
func CurrentActor(c *gin.Context) (service.Actor, error) {
	userID, err := CurrentUserID(c)
	if err != nil {
		return service.Actor{}, err
	}
	raw, exists := c.Get(middleware.ContextUserTypeKey)
	if !exists {
		return service.Actor{}, ErrUserNotFound
	}
	userType, ok := raw.(models.UserType)
	if !ok {
		return service.Actor{}, ErrUserNotFound
	}
	return service.Actor{ID: userID, UserType: userType}, nil
}

// RequireActor отвечает 401, если пользователя нет в контексте.
func RequireActor(c *gin.Context) (service.Actor, bool) {
	actor, err := CurrentActor(c)
	if err != nil {
		RespondError(c, apperror.New(apperror.ErrCodeUnauthorized, "требуется авторизация"))
		return service.Actor{}, false
	}
	return actor, true
}

// ParseUUIDParam разбирает UUID из параметра пути.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	if param == "" {
		return uuid.Nil, fmt.Errorf("параметр %s отсутствует", paramName)
	}

	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return parsed, nil
}

// UUIDParam разбирает параметр и сам отвечает 400 при ошибке.
func UUIDParam(c *gin.Context, paramName string) (uuid.UUID, bool) {
	id, err := ParseUUIDParam(c, paramName)
	if err != nil {
		RespondError(c, apperror.Validation(err))
		return uuid.Nil, false
	}
	return id, true
}

// BindJSON разбирает тело запроса и отвечает 400 при ошибке.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		RespondError(c, apperror.Wrap(err, apperror.ErrCodeValidation, fmt.Sprintf("ошибка валидации запроса: %v", err)))
		return false
	}
	return true
}

// RespondError отдаёт ошибку сервиса в формате {"error": "..."}.
func RespondError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

// ParseIntQuery читает целочисленный query параметр со значением по умолчанию.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetPagination извлекает limit и offset с ограничениями.
func GetPagination(c *gin.Context) (limit, offset int) {
	limit = ParseIntQuery(c, "limit", 20)
	offset = ParseIntQuery(c, "offset", 0)
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return
}
