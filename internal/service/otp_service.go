package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sponsorship-backend/internal/logger"
	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/twilio"
	"github.com/ignatzorin/sponsorship-backend/internal/validation"
)

// VerifyClient провайдер одноразовых кодов.
type VerifyClient interface {
	Configured() bool
	StartVerification(ctx context.Context, phone string) (*twilio.Verification, error)
	CheckVerification(ctx context.Context, phone, code string) (*twilio.Verification, error)
}

// PhoneVerifier отмечает телефон профиля подтверждённым.
type PhoneVerifier interface {
	MarkPhoneVerified(ctx context.Context, userID uuid.UUID, phone string) error
}

// OTPService проксирует отправку и проверку кода к провайдеру.
type OTPService struct {
	client   VerifyClient
	profiles PhoneVerifier
}

func NewOTPService(client VerifyClient, profiles PhoneVerifier) *OTPService {
	return &OTPService{client: client, profiles: profiles}
}

// Send отправляет код и возвращает sid верификации.
func (s *OTPService) Send(ctx context.Context, phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if err := validation.ValidatePhoneE164(phone); err != nil {
		return "", apperror.Validation(err)
	}
	if !s.client.Configured() {
		return "", apperror.New(apperror.ErrCodeInternal, twilio.ErrNotConfigured.Error())
	}

	v, err := s.client.StartVerification(ctx, phone)
	if err != nil {
		return "", providerError(err)
	}
	return v.SID, nil
}

// Verify проверяет код. Успех только при статусе approved.
// userID задан, если запрос пришёл от авторизованного пользователя.
func (s *OTPService) Verify(ctx context.Context, userID *uuid.UUID, phone, code string) (*twilio.Verification, error) {
	phone = strings.TrimSpace(phone)
	code = strings.TrimSpace(code)
	if err := validation.ValidatePhoneE164(phone); err != nil {
		return nil, apperror.Validation(err)
	}
	if err := validation.ValidateOTPCode(code); err != nil {
		return nil, apperror.Validation(err)
	}
	if !s.client.Configured() {
		return nil, apperror.New(apperror.ErrCodeInternal, twilio.ErrNotConfigured.Error())
	}

	v, err := s.client.CheckVerification(ctx, phone, code)
	if err != nil {
		var apiErr *twilio.APIError
		// 404 от провайдера верификация истекла или уже использована
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, apperror.ErrInvalidOTP
		}
		return nil, providerError(err)
	}
	if v.Status != twilio.StatusApproved {
		return nil, apperror.ErrInvalidOTP
	}

	if userID != nil && s.profiles != nil {
		if err := s.profiles.MarkPhoneVerified(ctx, *userID, phone); err != nil {
			// код уже принят провайдером, отвечаем успехом
			logger.Log.WithFields(logrus.Fields{
				"user_id": *userID,
				"error":   err.Error(),
			}).Warn("otp service: не удалось сохранить подтверждённый телефон")
		}
	}
	return v, nil
}

// providerError сохраняет статус и сообщение провайдера.
func providerError(err error) error {
	if errors.Is(err, twilio.ErrNotConfigured) {
		return apperror.New(apperror.ErrCodeInternal, err.Error())
	}
	var apiErr *twilio.APIError
	if errors.As(err, &apiErr) {
		e := apperror.WithStatus(apperror.ErrCodeUpstream, apiErr.StatusCode, apiErr.Message)
		e.Cause = err
		return e
	}
	logger.Log.WithField("error", err.Error()).Warn("otp service: провайдер недоступен")
	return apperror.Wrap(err, apperror.ErrCodeUpstream, "verification provider is unavailable")
}
