package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/sponsorship-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
	"github.com/ignatzorin/sponsorship-backend/internal/validation"
)

// OTPHandler проксирует отправку и проверку кода подтверждения телефона.
type OTPHandler struct {
	otp *service.OTPService
}

func NewOTPHandler(otp *service.OTPService) *OTPHandler {
	return &OTPHandler{otp: otp}
}

// Send обрабатывает POST /twilio/send-otp {phone} → {sid}.
func (h *OTPHandler) Send(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required,e164"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, otpBindError(err))
		return
	}

	sid, err := h.otp.Send(c.Request.Context(), req.Phone)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sid": sid})
}

// Verify обрабатывает POST /twilio/verify-otp {phone, code} → {sid, status}.
// Авторизованному пользователю телефон сохраняется в профиль.
func (h *OTPHandler) Verify(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required,e164"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, otpBindError(err))
		return
	}

	v, err := h.otp.Verify(c.Request.Context(), common.OptionalUserID(c), req.Phone, req.Code)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sid": v.SID, "status": v.Status})
}

// otpBindError отдаёт для телефона то же сообщение, что и проверка в сервисе.
func otpBindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.New(apperror.ErrCodeBadRequest, "некорректное тело запроса")
	}
	for _, fe := range verrs {
		if fe.Field() != "Phone" {
			continue
		}
		phone, _ := fe.Value().(string)
		if phoneErr := validation.ValidatePhoneE164(phone); phoneErr != nil {
			return apperror.Validation(phoneErr)
		}
	}
	return apperror.Validation(verrs)
}
