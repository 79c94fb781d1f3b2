package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
)

const internalErrorMessage = "внутренняя ошибка сервера"

// ErrorHandler отвечает на ошибки, которые хэндлеры положили в c.Errors, если ответ ещё не записан.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}

// WriteError отдаёт {"error": ...} со статусом из AppError.
// Ошибки без AppError считаются внутренними и не раскрываются клиенту.
func WriteError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := internalErrorMessage
	if appErr, ok := apperror.As(err); ok {
		status = appErr.HTTPStatus
		message = appErr.Message
	}

	entry := logger.Log.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request error")
	} else {
		entry.Debug("request error")
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
