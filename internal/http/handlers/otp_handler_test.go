package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sponsorship-backend/internal/service"
	"github.com/ignatzorin/sponsorship-backend/internal/twilio"
)

type stubVerifyClient struct {
	configured bool
	status     string
	sent       []string
}

func (s *stubVerifyClient) Configured() bool { return s.configured }

func (s *stubVerifyClient) StartVerification(_ context.Context, phone string) (*twilio.Verification, error) {
	s.sent = append(s.sent, phone)
	return &twilio.Verification{SID: "VE123", To: phone, Status: "pending"}, nil
}

func (s *stubVerifyClient) CheckVerification(_ context.Context, phone, _ string) (*twilio.Verification, error) {
	return &twilio.Verification{SID: "VE123", To: phone, Status: s.status}, nil
}

func setupOTPRouter(client *stubVerifyClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOTPHandler(service.NewOTPService(client, nil))
	r := gin.New()
	r.POST("/twilio/send-otp", h.Send)
	r.POST("/twilio/verify-otp", h.Verify)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestOTPHandler_Send(t *testing.T) {
	client := &stubVerifyClient{configured: true}
	w, body := postJSON(t, setupOTPRouter(client), "/twilio/send-otp", map[string]string{"phone": "+15551234567"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "VE123", body["sid"])
	assert.Equal(t, []string{"+15551234567"}, client.sent)
}

func TestOTPHandler_Send_BadPhone(t *testing.T) {
	client := &stubVerifyClient{configured: true}
	r := setupOTPRouter(client)

	for _, phone := range []string{"5551234567", "+0551234567", ""} {
		w, body := postJSON(t, r, "/twilio/send-otp", map[string]string{"phone": phone})
		assert.Equal(t, http.StatusBadRequest, w.Code, phone)
		assert.NotEmpty(t, body["error"])
	}
	assert.Empty(t, client.sent)
}

func TestOTPHandler_NotConfigured(t *testing.T) {
	w, body := postJSON(t, setupOTPRouter(&stubVerifyClient{}), "/twilio/send-otp", map[string]string{"phone": "+15551234567"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Twilio credentials are not configured", body["error"])
}

func TestOTPHandler_Verify(t *testing.T) {
	w, body := postJSON(t, setupOTPRouter(&stubVerifyClient{configured: true, status: twilio.StatusApproved}),
		"/twilio/verify-otp", map[string]string{"phone": "+15551234567", "code": "123456"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "VE123", body["sid"])
	assert.Equal(t, "approved", body["status"])
}

func TestOTPHandler_Verify_NotApproved(t *testing.T) {
	w, body := postJSON(t, setupOTPRouter(&stubVerifyClient{configured: true, status: "pending"}),
		"/twilio/verify-otp", map[string]string{"phone": "+15551234567", "code": "123456"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired OTP", body["error"])
}
