package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sponsorship-backend/internal/pkg/apperror"
	"github.com/ignatzorin/sponsorship-backend/internal/twilio"
)

const testPhone = "+15551234567"

func TestOTPService_Send(t *testing.T) {
	client := new(mockVerifyClient)
	svc := NewOTPService(client, nil)

	client.On("Configured").Return(true)
	client.On("StartVerification", mock.Anything, testPhone).Return(&twilio.Verification{SID: "VE1", Status: "pending"}, nil)

	sid, err := svc.Send(context.Background(), testPhone)
	require.NoError(t, err)
	assert.Equal(t, "VE1", sid)
}

func TestOTPService_Send_InvalidPhone(t *testing.T) {
	client := new(mockVerifyClient)
	svc := NewOTPService(client, nil)

	for _, phone := range []string{"", "5551234567", "+0123", "+1 555 123"} {
		_, err := svc.Send(context.Background(), phone)
		assert.True(t, apperror.IsValidation(err), phone)
	}
	client.AssertNotCalled(t, "StartVerification", mock.Anything, mock.Anything)
}

func TestOTPService_NotConfigured(t *testing.T) {
	client := new(mockVerifyClient)
	client.On("Configured").Return(false)
	svc := NewOTPService(client, nil)

	_, err := svc.Send(context.Background(), testPhone)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	assert.Equal(t, "Twilio credentials are not configured", appErr.Message)
}

func TestOTPService_ProviderStatusPassedThrough(t *testing.T) {
	client := new(mockVerifyClient)
	client.On("Configured").Return(true)
	client.On("StartVerification", mock.Anything, testPhone).
		Return(nil, &twilio.APIError{StatusCode: http.StatusTooManyRequests, Code: 60203, Message: "Max send attempts reached"})
	svc := NewOTPService(client, nil)

	_, err := svc.Send(context.Background(), testPhone)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, appErr.HTTPStatus)
	assert.Equal(t, "Max send attempts reached", appErr.Message)
}

func TestOTPService_Verify_OnlyApproved(t *testing.T) {
	for _, status := range []string{"pending", "canceled", "denied"} {
		client := new(mockVerifyClient)
		client.On("Configured").Return(true)
		client.On("CheckVerification", mock.Anything, testPhone, "123456").Return(&twilio.Verification{SID: "VE1", Status: status}, nil)
		svc := NewOTPService(client, nil)

		_, err := svc.Verify(context.Background(), nil, testPhone, "123456")
		assert.ErrorIs(t, err, apperror.ErrInvalidOTP, status)
		appErr, _ := apperror.As(err)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
		assert.Equal(t, "Invalid or expired OTP", appErr.Message)
	}
}

func TestOTPService_Verify_ExpiredIsInvalid(t *testing.T) {
	client := new(mockVerifyClient)
	client.On("Configured").Return(true)
	client.On("CheckVerification", mock.Anything, testPhone, "123456").
		Return(nil, &twilio.APIError{StatusCode: http.StatusNotFound, Message: "Not Found"})
	svc := NewOTPService(client, nil)

	_, err := svc.Verify(context.Background(), nil, testPhone, "123456")
	assert.ErrorIs(t, err, apperror.ErrInvalidOTP)
}

func TestOTPService_Verify_StoresPhoneForUser(t *testing.T) {
	client := new(mockVerifyClient)
	profiles := new(mockPhoneVerifier)
	userID := uuid.New()

	client.On("Configured").Return(true)
	client.On("CheckVerification", mock.Anything, testPhone, "123456").
		Return(&twilio.Verification{SID: "VE1", Status: twilio.StatusApproved, Valid: true}, nil)
	profiles.On("MarkPhoneVerified", mock.Anything, userID, testPhone).Return(nil)

	svc := NewOTPService(client, profiles)
	v, err := svc.Verify(context.Background(), &userID, testPhone, "123456")
	require.NoError(t, err)
	assert.Equal(t, twilio.StatusApproved, v.Status)
	profiles.AssertExpectations(t)

	// без пользователя профиль не трогаем
	_, err = svc.Verify(context.Background(), nil, testPhone, "123456")
	require.NoError(t, err)
	profiles.AssertNumberOfCalls(t, "MarkPhoneVerified", 1)
}
